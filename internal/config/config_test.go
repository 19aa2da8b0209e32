package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"testing"
)

func validKey() string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32))
}

func setRequiredEnv(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "client-id")
	t.Setenv("STRAVA_CLIENT_SECRET", "client-secret")
	t.Setenv("STRAVA_CLUB_ID", "12345")
	t.Setenv("APP_ENCRYPTION_KEY", validKey())
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != 4180 {
		t.Errorf("Port = %d, want 4180", cfg.Port)
	}
	if cfg.PollPerPage != 30 || cfg.PollPages != 3 {
		t.Errorf("Poll defaults = %d/%d, want 30/3", cfg.PollPerPage, cfg.PollPages)
	}
	if cfg.RiskSpikeThresholdPct != 10 {
		t.Errorf("RiskSpikeThresholdPct = %v, want 10", cfg.RiskSpikeThresholdPct)
	}
	if cfg.IsProduction() {
		t.Error("Expected development by default")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv registers the restore; the variable itself must be absent
	t.Setenv("STRAVA_CLUB_ID", "")
	os.Unsetenv("STRAVA_CLUB_ID")

	if _, err := Load(); err == nil {
		t.Error("Expected missing STRAVA_CLUB_ID to fail")
	}
}

func TestValidateEncryptionKey(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("APP_ENCRYPTION_KEY", "not-base64!!!")
	if _, err := Load(); err == nil {
		t.Error("Expected non-base64 key to fail")
	}

	t.Setenv("APP_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
	if _, err := Load(); err == nil {
		t.Error("Expected short key to fail")
	}
}

func TestValidateRequiresSecretInProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Error("Expected production without JOBS_RUNNER_SECRET to fail")
	}

	t.Setenv("JOBS_RUNNER_SECRET", "s3cret")
	if _, err := Load(); err != nil {
		t.Errorf("Unexpected error with secret set: %v", err)
	}
}

func TestRiskThresholdClamped(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("RISK_SPIKE_THRESHOLD_PCT", "5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.RiskSpikeThresholdPct != 10 {
		t.Errorf("Threshold = %v, want clamped to 10", cfg.RiskSpikeThresholdPct)
	}

	t.Setenv("RISK_SPIKE_THRESHOLD_PCT", "50")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.RiskSpikeThresholdPct != 15 {
		t.Errorf("Threshold = %v, want clamped to 15", cfg.RiskSpikeThresholdPct)
	}
}

func TestEncryptionKeyDecodes(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	key := cfg.EncryptionKey()
	if len(key) != 32 {
		t.Errorf("Key length = %d, want 32", len(key))
	}
}

func TestAllowUnauthenticatedPoll(t *testing.T) {
	tests := []struct {
		env     string
		baseURL string
		want    bool
	}{
		{"development", "http://localhost:4180", true},
		{"development", "https://runclub.example.com", false},
		{"production", "http://localhost:4180", false},
	}

	for _, tt := range tests {
		cfg := &Config{AppEnv: tt.env, AppBaseURL: tt.baseURL}
		if got := cfg.AllowUnauthenticatedPoll(); got != tt.want {
			t.Errorf("AllowUnauthenticatedPoll(%s, %s) = %v, want %v", tt.env, tt.baseURL, got, tt.want)
		}
	}
}
