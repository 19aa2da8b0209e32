package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"runclub-dashboard/internal/config"
	"runclub-dashboard/internal/poller"
)

// ClubPoller is the poll operation as the HTTP layer sees it
type ClubPoller interface {
	Poll(ctx context.Context, perPage, pages int) (*poller.Result, error)
}

// PollHandler handles the scheduled poll trigger endpoint
type PollHandler struct {
	config *config.Config
	poller ClubPoller
	logger *slog.Logger
}

// NewPollHandler creates a new poll handler
func NewPollHandler(cfg *config.Config, p ClubPoller) *PollHandler {
	return &PollHandler{
		config: cfg,
		poller: p,
		logger: slog.Default(),
	}
}

// HandlePoll handles GET|POST /api/cron/club-poll
// Query parameters:
//   - perPage: activities per page (1-200, default from config)
//   - pages: maximum pages to fetch (1-20, default from config)
//
// Authentication: Bearer JOBS_RUNNER_SECRET, a matching `secret` query
// parameter, an `X-Cron: 1` header, or nothing at all when running
// unauthenticated local development.
func (h *PollHandler) HandlePoll(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.logger.Warn("Unauthorized poll request", "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	perPage, err := clampedIntParam(r, "perPage", h.config.PollPerPage, 1, 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pages, err := clampedIntParam(r, "pages", h.config.PollPages, 1, 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.poller.Poll(r.Context(), perPage, pages)
	if err != nil {
		h.logger.Error("Poll failed", "error", err)
		writeError(w, pollErrorStatus(err), "poll failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"clubId":   result.ClubID,
		"fetched":  result.Fetched,
		"inserted": result.Inserted,
		"perPage":  result.PerPage,
		"pages":    result.Pages,
	})
}

func (h *PollHandler) authorized(r *http.Request) bool {
	if secret := h.config.JobsRunnerSecret; secret != "" {
		if r.Header.Get("Authorization") == "Bearer "+secret {
			return true
		}
		if r.URL.Query().Get("secret") == secret {
			return true
		}
	}
	if r.Header.Get("X-Cron") == "1" {
		return true
	}
	return h.config.AllowUnauthenticatedPoll()
}

// clampedIntParam parses an optional integer query parameter, substituting
// the default when absent and clamping into [min, max]
func clampedIntParam(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return clamp(def, min, max), nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name}
	}
	return clamp(v, min, max), nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

type paramError struct{ name string }

func (e *paramError) Error() string {
	return "invalid " + e.name + " parameter"
}
