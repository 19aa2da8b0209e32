// Package scheduler runs the club feed poll on an in-process cron schedule.
// It is optional: without a schedule expression the service only polls when
// an HTTP trigger asks it to.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"runclub-dashboard/internal/config"
	"runclub-dashboard/internal/poller"
)

// ClubPoller is the poll operation as the scheduler sees it
type ClubPoller interface {
	Poll(ctx context.Context, perPage, pages int) (*poller.Result, error)
}

// Scheduler wraps a cron runner around the poller
type Scheduler struct {
	cfg    *config.Config
	poller ClubPoller
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a scheduler
func New(cfg *config.Config, p ClubPoller) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		poller: p,
		cron:   cron.New(),
		logger: slog.Default(),
	}
}

// Start registers the poll job and starts the cron runner. A no-op when no
// schedule is configured.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.PollCron == "" {
		s.logger.Info("No poll schedule configured, scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.PollCron, func() {
		start := time.Now()
		result, err := s.poller.Poll(ctx, s.cfg.PollPerPage, s.cfg.PollPages)
		if err != nil {
			s.logger.Error("Scheduled poll failed", "error", err)
			return
		}
		s.logger.Info("Scheduled poll complete",
			"fetched", result.Fetched,
			"inserted", result.Inserted,
			"duration_ms", time.Since(start).Milliseconds())
	}); err != nil {
		return fmt.Errorf("failed to schedule poll: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Poll scheduled", "schedule", s.cfg.PollCron)
	return nil
}

// Stop stops the cron runner and waits for a running job to finish
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
}
