package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"runclub-dashboard/internal/database"
	"runclub-dashboard/internal/metrics"
)

const (
	refreshStateID  = "public"
	refreshCooldown = 10 * time.Minute

	// The public trigger fetches deeper than the cron default so a stale
	// dashboard catches up in one click
	refreshPerPage = 50
	refreshPages   = 3
)

// RefreshHandler handles the unauthenticated public refresh trigger with a
// database-backed cooldown
type RefreshHandler struct {
	db     *database.DB
	poller ClubPoller
	logger *slog.Logger
	now    func() time.Time
}

// NewRefreshHandler creates a new refresh handler
func NewRefreshHandler(db *database.DB, p ClubPoller) *RefreshHandler {
	return &RefreshHandler{
		db:     db,
		poller: p,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// HandleRefresh handles POST /api/public/refresh.
//
// The trigger timestamp is written before the poll is dispatched and is
// never rolled back on failure: a failed attempt still consumes the
// cooldown window, because retry storms against the upstream API are the
// thing the gate exists to prevent.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	last, err := h.db.GetRefreshState(refreshStateID)
	if err != nil {
		h.logger.Error("Failed to read refresh state", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read refresh state")
		return
	}

	now := h.now()
	elapsed := now.Sub(time.Unix(last, 0))
	if last > 0 && elapsed < refreshCooldown {
		retryAfter := int(math.Ceil((refreshCooldown - elapsed).Seconds()))
		metrics.RefreshRequestsTotal.WithLabelValues(metrics.ResultThrottled).Inc()
		h.logger.Info("Public refresh throttled", "retry_after_s", retryAfter)

		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"ok":                false,
			"error":             "refresh is on cooldown",
			"retryAfterSeconds": retryAfter,
		})
		return
	}

	if err := h.db.SetRefreshState(refreshStateID, now.Unix()); err != nil {
		h.logger.Error("Failed to record refresh trigger", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record refresh trigger")
		return
	}

	metrics.RefreshRequestsTotal.WithLabelValues(metrics.ResultAllowed).Inc()

	result, err := h.poller.Poll(r.Context(), refreshPerPage, refreshPages)
	if err != nil {
		h.logger.Error("Public refresh poll failed", "error", err)
		writeError(w, http.StatusBadGateway, "refresh failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"triggeredAt": now.UTC().Format(time.RFC3339),
		"result":      result,
	})
}
