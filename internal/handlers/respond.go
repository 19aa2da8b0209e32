// Package handlers implements the HTTP surface: poll triggers, the public
// refresh gate, the read-only query endpoints, and the OAuth linking flow.
// Every response is a JSON envelope; errors never escape a handler.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"runclub-dashboard/internal/poller"
	"runclub-dashboard/internal/strava"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// pollErrorStatus maps a poll failure onto an HTTP status: a missing token
// row is a configuration problem, an upstream rejection is a bad gateway,
// anything else (storage, decoding) is internal.
func pollErrorStatus(err error) int {
	if errors.Is(err, poller.ErrTokenNotConfigured) {
		return http.StatusInternalServerError
	}
	var apiErr *strava.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
