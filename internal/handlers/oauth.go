package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strconv"

	"runclub-dashboard/internal/config"
	"runclub-dashboard/internal/crypto"
	"runclub-dashboard/internal/database"
	"runclub-dashboard/internal/strava"
)

const (
	stateCookieName   = "strava_oauth_state"
	stateCookieMaxAge = 600
)

// OAuthHandler handles the one-time account linking flow. The service polls
// the club feed with a single authorized account; these endpoints exist to
// link (or re-link) it.
type OAuthHandler struct {
	config *config.Config
	db     *database.DB
	client *strava.Client
	logger *slog.Logger
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(cfg *config.Config, db *database.DB, client *strava.Client) *OAuthHandler {
	return &OAuthHandler{
		config: cfg,
		db:     db,
		client: client,
		logger: slog.Default(),
	}
}

// HandleAuthStart handles GET /api/auth/strava/start: sets a short-lived
// state cookie and redirects to the authorization page
func (h *OAuthHandler) HandleAuthStart(w http.ResponseWriter, r *http.Request) {
	state, err := generateRandomState()
	if err != nil {
		h.logger.Error("Failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start authorization")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/auth/strava",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	authURL := h.client.AuthorizeURL(h.redirectURI(), state)
	h.logger.Info("Starting OAuth flow", "state", state)

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// HandleCallback handles GET /api/auth/strava/callback: validates the state
// cookie, exchanges the code, and stores the athlete identity plus the
// sealed token pair
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Warn("OAuth authorization denied", "error", errParam)
		writeError(w, http.StatusBadRequest, "authorization denied: "+errParam)
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "missing code or state parameter")
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != state {
		h.logger.Warn("OAuth state mismatch", "has_cookie", err == nil)
		writeError(w, http.StatusBadRequest, "invalid or expired state")
		return
	}
	clearStateCookie(w, h.config.IsProduction())

	tokenResp, err := h.client.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Error("Failed to exchange code", "error", err)
		writeError(w, http.StatusBadGateway, "failed to exchange authorization code")
		return
	}

	if tokenResp.Athlete == nil {
		writeError(w, http.StatusBadGateway, "token response is missing athlete data")
		return
	}
	athleteID := strconv.FormatInt(tokenResp.Athlete.ID, 10)

	if err := h.db.UpsertAthlete(&database.Athlete{
		ID:        athleteID,
		Firstname: tokenResp.Athlete.Firstname,
		Lastname:  tokenResp.Athlete.Lastname,
	}); err != nil {
		h.logger.Error("Failed to upsert athlete", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store athlete")
		return
	}

	key := h.config.EncryptionKey()
	refreshEnc, err := crypto.EncryptString(tokenResp.RefreshToken, key)
	if err != nil {
		h.logger.Error("Failed to encrypt refresh token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store tokens")
		return
	}
	accessEnc, err := crypto.EncryptString(tokenResp.AccessToken, key)
	if err != nil {
		h.logger.Error("Failed to encrypt access token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store tokens")
		return
	}

	if err := h.db.UpsertAthleteToken(&database.AthleteToken{
		AthleteID:       athleteID,
		RefreshTokenEnc: refreshEnc,
		AccessTokenEnc:  accessEnc,
		ExpiresAt:       tokenResp.ExpiresAt,
		Scope:           tokenResp.Scope,
	}); err != nil {
		h.logger.Error("Failed to upsert athlete token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store tokens")
		return
	}

	h.logger.Info("OAuth flow completed", "athlete_id", athleteID)

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"athleteId": athleteID,
		"message":   "account linked; set STRAVA_SERVICE_ATHLETE_ID=" + athleteID + " to poll with it",
	})
}

func (h *OAuthHandler) redirectURI() string {
	return h.config.AppBaseURL + "/api/auth/strava/callback"
}

func clearStateCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/api/auth/strava",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateRandomState generates a cryptographically secure random state
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
