package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"runclub-dashboard/internal/metrics"
)

const (
	defaultBaseURL  = "https://www.strava.com/api/v3"
	defaultTokenURL = "https://www.strava.com/oauth/token"
	authorizeURL    = "https://www.strava.com/oauth/authorize"

	// Scope requested when linking a service account
	Scope = "read,activity:read_all"
)

// Client is a Strava API client for the OAuth token endpoint and the club
// activities feed. Upstream calls are single-shot: a failed call fails the
// enclosing operation with no retry.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	logger       *slog.Logger
	rateLimiter  *RateLimiter

	baseURL  string
	tokenURL string
}

// APIError is a non-success response from the upstream API
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava api error: status %d: %s", e.Status, e.Body)
}

// NewClient creates a new Strava API client
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       slog.Default(),
		rateLimiter:  NewRateLimiter(),
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
	}
}

// SetBaseURL overrides the API base URL (used in tests)
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetTokenURL overrides the token endpoint URL (used in tests)
func (c *Client) SetTokenURL(u string) { c.tokenURL = u }

// TokenAthlete is the athlete summary embedded in a token exchange response
type TokenAthlete struct {
	ID        int64   `json:"id"`
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
}

// TokenResponse represents the response from a token exchange or refresh
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    int64         `json:"expires_at"`
	ExpiresIn    int           `json:"expires_in"`
	Scope        *string       `json:"scope"`
	Athlete      *TokenAthlete `json:"athlete"`
}

// AuthorizeURL builds the browser authorization URL for the OAuth start
// redirect
func (c *Client) AuthorizeURL(redirectURI, state string) string {
	params := url.Values{
		"client_id":       {c.clientID},
		"redirect_uri":    {redirectURI},
		"response_type":   {"code"},
		"approval_prompt": {"auto"},
		"scope":           {Scope},
		"state":           {state},
	}
	return fmt.Sprintf("%s?%s", authorizeURL, params.Encode())
}

// ExchangeCode exchanges an authorization code for a token pair
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	return c.tokenRequest(ctx, metrics.OpExchangeCode, url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
	})
}

// RefreshToken exchanges a refresh token for a new token pair
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.tokenRequest(ctx, metrics.OpRefreshToken, url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	})
}

func (c *Client) tokenRequest(ctx context.Context, op string, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.StravaAPIRequestsTotal.WithLabelValues(op, "error").Inc()
		c.logger.Error(op+" failed", "error", err, "duration_ms", duration.Milliseconds())
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	defer resp.Body.Close()

	statusStr := strconv.Itoa(resp.StatusCode)
	metrics.StravaAPIRequestsTotal.WithLabelValues(op, statusStr).Inc()
	metrics.StravaAPIRequestDuration.WithLabelValues(op, statusStr).Observe(duration.Seconds())

	c.logger.Info(op, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}

	return &tokenResp, nil
}

// ClubActivity is one entry of the club activities feed. The feed exposes
// no stable activity id; RawID is kept only in case upstream ever adds one.
type ClubActivity struct {
	Athlete *struct {
		Firstname *string `json:"firstname"`
		Lastname  *string `json:"lastname"`
	} `json:"athlete"`
	Name               *string  `json:"name"`
	Type               *string  `json:"type"`
	SportType          *string  `json:"sport_type"`
	Distance           *float64 `json:"distance"`
	MovingTime         *int64   `json:"moving_time"`
	ElapsedTime        *int64   `json:"elapsed_time"`
	TotalElevationGain *float64 `json:"total_elevation_gain"`
	RawID              *int64   `json:"id"`

	// Complete payload as received, stored for forward compatibility
	Raw json.RawMessage `json:"-"`
}

// ListClubActivities fetches one page of the club activities feed
func (c *Client) ListClubActivities(ctx context.Context, accessToken, clubID string, page, perPage int) ([]ClubActivity, error) {
	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	endpoint := fmt.Sprintf("%s/clubs/%s/activities?%s", c.baseURL, clubID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.StravaAPIRequestsTotal.WithLabelValues(metrics.OpListClubActivities, "error").Inc()
		c.logger.Error("list club activities failed", "error", err, "page", page)
		return nil, fmt.Errorf("list club activities failed: %w", err)
	}
	defer resp.Body.Close()

	statusStr := strconv.Itoa(resp.StatusCode)
	metrics.StravaAPIRequestsTotal.WithLabelValues(metrics.OpListClubActivities, statusStr).Inc()
	metrics.StravaAPIRequestDuration.WithLabelValues(metrics.OpListClubActivities, statusStr).Observe(duration.Seconds())

	c.parseRateLimitHeaders(resp.Header)

	c.logger.Info("list_club_activities",
		"club_id", clubID, "page", page, "per_page", perPage,
		"status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	// Decode twice: typed fields for dedup and raw payloads for storage
	var activities []ClubActivity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("club activities response is not an array: %w", err)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("club activities response is not an array: %w", err)
	}
	for i := range activities {
		activities[i].Raw = raws[i]
	}

	return activities, nil
}

// parseRateLimitHeaders extracts rate limit information from response headers
func (c *Client) parseRateLimitHeaders(headers http.Header) {
	limitHeader := headers.Get("X-RateLimit-Limit")
	usageHeader := headers.Get("X-RateLimit-Usage")

	if limitHeader == "" || usageHeader == "" {
		return
	}

	limits := strings.Split(limitHeader, ",")
	usages := strings.Split(usageHeader, ",")
	if len(limits) != 2 || len(usages) != 2 {
		return
	}

	limit15, _ := strconv.Atoi(strings.TrimSpace(limits[0]))
	limitDaily, _ := strconv.Atoi(strings.TrimSpace(limits[1]))
	usage15, _ := strconv.Atoi(strings.TrimSpace(usages[0]))
	usageDaily, _ := strconv.Atoi(strings.TrimSpace(usages[1]))

	c.rateLimiter.Update(limit15, usage15, limitDaily, usageDaily)

	metrics.StravaRateLimitUsage.WithLabelValues(metrics.RateLimit15Min, metrics.BucketLimit).Set(float64(limit15))
	metrics.StravaRateLimitUsage.WithLabelValues(metrics.RateLimit15Min, metrics.BucketUsage).Set(float64(usage15))
	metrics.StravaRateLimitUsage.WithLabelValues(metrics.RateLimitDaily, metrics.BucketLimit).Set(float64(limitDaily))
	metrics.StravaRateLimitUsage.WithLabelValues(metrics.RateLimitDaily, metrics.BucketUsage).Set(float64(usageDaily))

	c.logger.Debug("rate_limit",
		"limit_15min", limit15,
		"usage_15min", usage15,
		"limit_daily", limitDaily,
		"usage_daily", usageDaily,
	)
}

// RateLimitStatus returns the most recently observed rate limit status
func (c *Client) RateLimitStatus() RateLimitStatus {
	return c.rateLimiter.Status()
}
