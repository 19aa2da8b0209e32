package config

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"4180"`

	// Database
	DatabasePath string `envconfig:"DATABASE_PATH" default:"./data.db"`

	// Strava API
	StravaClientID         string `envconfig:"STRAVA_CLIENT_ID" required:"true"`
	StravaClientSecret     string `envconfig:"STRAVA_CLIENT_SECRET" required:"true"`
	StravaClubID           string `envconfig:"STRAVA_CLUB_ID" required:"true"`
	StravaServiceAthleteID string `envconfig:"STRAVA_SERVICE_ATHLETE_ID"`

	// Token encryption key, base64-encoded, must decode to 32 bytes
	AppEncryptionKey string `envconfig:"APP_ENCRYPTION_KEY" required:"true"`

	// Application
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	AppBaseURL string `envconfig:"APP_BASE_URL" default:"http://localhost:4180"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	// Poll trigger auth
	JobsRunnerSecret string `envconfig:"JOBS_RUNNER_SECRET"`

	// Poll defaults
	PollPerPage int `envconfig:"POLL_PER_PAGE" default:"30"`
	PollPages   int `envconfig:"POLL_PAGES" default:"3"`

	// Optional in-process poll schedule (cron expression; empty disables)
	PollCron string `envconfig:"POLL_CRON"`

	// Roster metadata file (JSON; empty means no roster)
	RosterPath string `envconfig:"ROSTER_PATH"`

	// Training-volume heuristic threshold, percent week-over-week increase
	RiskSpikeThresholdPct float64 `envconfig:"RISK_SPIKE_THRESHOLD_PCT" default:"10"`

	// Metrics
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	MetricsHost    string `envconfig:"METRICS_HOST" default:"localhost"`
	MetricsPort    int    `envconfig:"METRICS_PORT" default:"9180"`
}

// Load reads configuration from the environment, loading a .env file first
// if one is present. It fails fast on missing required variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks constraints the envconfig tags cannot express
func (c *Config) Validate() error {
	key, err := base64.StdEncoding.DecodeString(c.AppEncryptionKey)
	if err != nil {
		return fmt.Errorf("APP_ENCRYPTION_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("APP_ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}

	if c.PollPerPage < 1 || c.PollPerPage > 200 {
		return fmt.Errorf("POLL_PER_PAGE must be between 1 and 200")
	}
	if c.PollPages < 1 || c.PollPages > 20 {
		return fmt.Errorf("POLL_PAGES must be between 1 and 20")
	}

	// Clamp rather than reject: the spike heuristic is defined for 10-15%
	if c.RiskSpikeThresholdPct < 10 {
		c.RiskSpikeThresholdPct = 10
	}
	if c.RiskSpikeThresholdPct > 15 {
		c.RiskSpikeThresholdPct = 15
	}

	if c.AppEnv == "production" && c.JobsRunnerSecret == "" {
		return fmt.Errorf("JOBS_RUNNER_SECRET is required in production")
	}

	return nil
}

// EncryptionKey returns the decoded 32-byte encryption key.
// Validate must have succeeded first.
func (c *Config) EncryptionKey() []byte {
	key, _ := base64.StdEncoding.DecodeString(c.AppEncryptionKey)
	return key
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AllowUnauthenticatedPoll reports whether the poll endpoint may be called
// without credentials (local development convenience only)
func (c *Config) AllowUnauthenticatedPoll() bool {
	return !c.IsProduction() && strings.Contains(c.AppBaseURL, "localhost")
}
