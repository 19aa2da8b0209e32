package metrics

import (
	"context"
	"log/slog"
	"time"
)

// DB interface for storage gauge queries
type DB interface {
	CountActivities() (int, error)
	LastFetchedAt() (int64, error)
}

// StartStorageCollector starts a background goroutine that periodically
// refreshes the storage gauges from the database
func StartStorageCollector(ctx context.Context, db DB, interval time.Duration) {
	logger := slog.Default()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect once immediately
	collectStorageGauges(db, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Storage collector stopping")
			return
		case <-ticker.C:
			collectStorageGauges(db, logger)
		}
	}
}

func collectStorageGauges(db DB, logger *slog.Logger) {
	if total, err := db.CountActivities(); err != nil {
		logger.Error("Failed to count stored activities", "error", err)
	} else {
		StoredActivitiesTotal.Set(float64(total))
	}

	if last, err := db.LastFetchedAt(); err != nil {
		logger.Error("Failed to get last fetch time", "error", err)
	} else if last > 0 {
		LastPollAgeSeconds.Set(time.Since(time.Unix(last, 0)).Seconds())
	}
}
