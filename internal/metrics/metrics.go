package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// Poll results
	ResultSuccess = "success"
	ResultFailure = "failure"

	// Ingestion results
	ResultInserted  = "inserted"
	ResultDuplicate = "duplicate"

	// Public refresh gate results
	ResultAllowed   = "allowed"
	ResultThrottled = "throttled"

	// HTTP endpoints
	EndpointClubPoll      = "club_poll"
	EndpointPublicRefresh = "public_refresh"
	EndpointClubStats     = "club_stats"
	EndpointTimeseries    = "club_timeseries"
	EndpointLatest        = "club_latest"
	EndpointActivities    = "activities"
	EndpointAthletes      = "athletes"
	EndpointTrainingData  = "training_data"
	EndpointTeamStats     = "team_stats"
	EndpointWeeklyWinners = "weekly_winners"
	EndpointOAuthStart    = "oauth_start"
	EndpointOAuthCallback = "oauth_callback"
	EndpointHealth        = "health"

	// Strava API operations
	OpExchangeCode       = "token_exchange"
	OpRefreshToken       = "token_refresh"
	OpListClubActivities = "list_club_activities"

	// Rate limit types
	RateLimit15Min = "15min"
	RateLimitDaily = "daily"

	// Rate limit buckets
	BucketLimit = "limit"
	BucketUsage = "usage"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "status_code"},
	)
)

// Poll Metrics
var (
	PollRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_poll_runs_total",
			Help: "Total number of club feed poll runs by result",
		},
		[]string{"result"},
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "club_poll_duration_seconds",
			Help:    "Time spent on one club feed poll run",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	ActivitiesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_activities_ingested_total",
			Help: "Total number of fetched club feed activities by ingestion result",
		},
		[]string{"result"},
	)
)

// Public Refresh Metrics
var (
	RefreshRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "public_refresh_requests_total",
			Help: "Total number of public refresh requests by gate result",
		},
		[]string{"result"},
	)
)

// Strava API Metrics
var (
	StravaAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strava_api_requests_total",
			Help: "Total number of Strava API requests",
		},
		[]string{"operation", "status_code"},
	)

	StravaAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strava_api_request_duration_seconds",
			Help:    "Strava API request latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation", "status_code"},
	)

	StravaRateLimitUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strava_rate_limit_usage",
			Help: "Strava API rate limit usage as reported by response headers",
		},
		[]string{"limit_type", "bucket"},
	)
)

// Storage Metrics
var (
	StoredActivitiesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stored_activities_total",
			Help: "Number of deduplicated activities currently stored",
		},
	)

	LastPollAgeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "last_poll_age_seconds",
			Help: "Seconds since the most recent activity was first seen",
		},
	)
)
