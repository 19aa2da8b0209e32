// Package poller ingests the club activity feed: it keeps the service
// account's access token fresh, walks the paginated feed, and inserts each
// activity under its content-derived dedupe hash.
package poller

import (
	"context"
	"log/slog"
	"time"

	"runclub-dashboard/internal/config"
	"runclub-dashboard/internal/database"
	"runclub-dashboard/internal/metrics"
	"runclub-dashboard/internal/strava"
)

// Poller drives club feed ingestion
type Poller struct {
	cfg    *config.Config
	db     *database.DB
	client *strava.Client
	logger *slog.Logger
	now    func() time.Time
}

// Result reports one poll invocation
type Result struct {
	ClubID   string `json:"clubId"`
	Fetched  int    `json:"fetched"`
	Inserted int    `json:"inserted"`
	PerPage  int    `json:"perPage"`
	Pages    int    `json:"pages"`
}

// New creates a poller
func New(cfg *config.Config, db *database.DB, client *strava.Client) *Poller {
	return &Poller{
		cfg:    cfg,
		db:     db,
		client: client,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// Poll fetches up to pages pages of perPage activities each and inserts
// the unseen ones. Callers are responsible for clamping perPage to 1-200
// and pages to 1-20.
//
// Page iteration stops early when a page comes back empty, comes back
// short, or — from page 2 on — no page so far produced an insertion,
// which signals the remaining pages were already seen. The early exit is
// an efficiency heuristic only; re-fetching seen activities is always a
// safe no-op thanks to the dedupe constraint.
func (p *Poller) Poll(ctx context.Context, perPage, pages int) (*Result, error) {
	accessToken, err := p.AccessToken(ctx)
	if err != nil {
		metrics.PollRunsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, err
	}

	result := &Result{
		ClubID:  p.cfg.StravaClubID,
		PerPage: perPage,
		Pages:   pages,
	}

	start := p.now()

	for page := 1; page <= pages; page++ {
		activities, err := p.client.ListClubActivities(ctx, accessToken, p.cfg.StravaClubID, page, perPage)
		if err != nil {
			metrics.PollRunsTotal.WithLabelValues(metrics.ResultFailure).Inc()
			return nil, err
		}

		result.Fetched += len(activities)
		if len(activities) == 0 {
			break
		}

		for i := range activities {
			inserted, err := p.ingest(&activities[i])
			if err != nil {
				metrics.PollRunsTotal.WithLabelValues(metrics.ResultFailure).Inc()
				return nil, err
			}
			if inserted {
				result.Inserted++
				metrics.ActivitiesIngestedTotal.WithLabelValues(metrics.ResultInserted).Inc()
			} else {
				metrics.ActivitiesIngestedTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
			}
		}

		if result.Inserted == 0 && page >= 2 {
			p.logger.Info("poll early exit: no new activities", "page", page)
			break
		}

		if len(activities) < perPage {
			break
		}
	}

	metrics.PollRunsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.PollDuration.Observe(p.now().Sub(start).Seconds())

	p.logger.Info("poll complete",
		"club_id", result.ClubID,
		"fetched", result.Fetched,
		"inserted", result.Inserted)

	return result, nil
}

func (p *Poller) ingest(a *strava.ClubActivity) (bool, error) {
	record := &database.ClubFeedActivity{
		ClubID:              p.cfg.StravaClubID,
		Name:                a.Name,
		Type:                a.Type,
		SportType:           a.SportType,
		DistanceM:           a.Distance,
		MovingTimeS:         a.MovingTime,
		ElapsedTimeS:        a.ElapsedTime,
		TotalElevationGainM: a.TotalElevationGain,
		DedupeHash:          DedupeHash(a),
		RawJSON:             string(a.Raw),
		FetchedAt:           p.now().Unix(),
	}

	if name := DisplayName(a); name != "" {
		record.AthleteName = &name
	}

	return p.db.InsertClubFeedActivity(record)
}
