package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"runclub-dashboard/internal/config"
	"runclub-dashboard/internal/database"
	"runclub-dashboard/internal/roster"
	"runclub-dashboard/internal/stats"
)

// QueryHandler serves the read-only dashboard endpoints. Each request loads
// a snapshot from the store and hands it to the pure aggregation functions.
type QueryHandler struct {
	db     *database.DB
	config *config.Config
	roster *roster.Roster
	logger *slog.Logger
	now    func() time.Time
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(db *database.DB, cfg *config.Config, r *roster.Roster) *QueryHandler {
	return &QueryHandler{
		db:     db,
		config: cfg,
		roster: r,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// activityRecord is the wire shape of one activity in query responses
type activityRecord struct {
	AthleteName string  `json:"athleteName"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	SportType   string  `json:"sportType"`
	DistanceKm  float64 `json:"distanceKm"`
	MovingTimeS int64   `json:"movingTimeS"`
	SeenAt      string  `json:"seenAt"`
}

// HandleClubStats handles GET /api/club/stats?days=1..365 or ?period=week
func (h *QueryHandler) HandleClubStats(w http.ResponseWriter, r *http.Request) {
	cutoff, ok := h.cutoffParams(w, r)
	if !ok {
		return
	}

	runs, ok := h.loadRunsSince(w, cutoff)
	if !ok {
		return
	}

	overall, athletes := stats.Leaderboard(runs)
	if athletes == nil {
		athletes = []stats.AthleteStats{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"overall":  overall,
		"athletes": athletes,
	})
}

// HandleTimeseries handles GET /api/club/timeseries?days&bucket=day|week
func (h *QueryHandler) HandleTimeseries(w http.ResponseWriter, r *http.Request) {
	bucket := stats.BucketDay
	switch r.URL.Query().Get("bucket") {
	case "", "day":
	case "week":
		bucket = stats.BucketWeek
	default:
		writeError(w, http.StatusBadRequest, "bucket must be day or week")
		return
	}

	days, err := clampedIntParam(r, "days", 30, 1, 365)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runs, ok := h.loadRunsSince(w, stats.CutoffForDays(h.now(), days))
	if !ok {
		return
	}

	points := stats.TimeSeries(runs, bucket)
	if points == nil {
		points = []stats.Point{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "points": points})
}

// HandleLatest handles GET /api/club/latest?limit=1..50
func (h *QueryHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	limit, err := clampedIntParam(r, "limit", 10, 1, 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.db.ListLatestRuns(limit)
	if err != nil {
		h.logger.Error("Failed to list latest runs", "error", err)
		writeError(w, http.StatusBadGateway, "failed to load activities")
		return
	}

	lastPoll, err := h.db.LastFetchedAt()
	if err != nil {
		h.logger.Error("Failed to get last poll time", "error", err)
		writeError(w, http.StatusBadGateway, "failed to load activities")
		return
	}

	var lastPollStr *string
	if lastPoll > 0 {
		s := time.Unix(lastPoll, 0).UTC().Format(time.RFC3339)
		lastPollStr = &s
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"activities": toRecords(rows),
		"lastPoll":   lastPollStr,
	})
}

// HandleActivities handles GET /api/activities/{period}, period week|month
func (h *QueryHandler) HandleActivities(w http.ResponseWriter, r *http.Request) {
	period := chi.URLParam(r, "period")
	cutoff, ok := stats.CutoffForPeriod(h.now(), period)
	if !ok {
		writeError(w, http.StatusBadRequest, "period must be week or month")
		return
	}

	rows, err := h.db.ListActivitiesSince(cutoff)
	if err != nil {
		h.logger.Error("Failed to list activities", "error", err)
		writeError(w, http.StatusBadGateway, "failed to load activities")
		return
	}

	records := []activityRecord{}
	for _, rec := range toRecords(rows) {
		if rec.SportType == "Run" || rec.Type == "Run" {
			records = append(records, rec)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"period":     period,
		"activities": records,
	})
}

// HandleAthletes handles GET /api/athletes
func (h *QueryHandler) HandleAthletes(w http.ResponseWriter, r *http.Request) {
	members := h.roster.Members()
	if members == nil {
		members = []roster.Member{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "athletes": members})
}

// HandleTrainingData handles GET /api/athletes/training_data: the weekly
// distance series plus flagged weeks for every roster athlete
func (h *QueryHandler) HandleTrainingData(w http.ResponseWriter, r *http.Request) {
	runs, ok := h.loadAllRuns(w)
	if !ok {
		return
	}

	athletes := make(map[string]stats.TrainingData, len(h.roster.Members()))
	for _, m := range h.roster.Members() {
		athletes[m.Name] = stats.TrainingVolume(runs, m.Name, h.config.RiskSpikeThresholdPct)
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "athletes": athletes})
}

// HandleTeamStats handles GET /api/team_stats
func (h *QueryHandler) HandleTeamStats(w http.ResponseWriter, r *http.Request) {
	runs, ok := h.loadAllRuns(w)
	if !ok {
		return
	}

	teams := stats.TeamComparison(runs, h.roster)
	if teams.Bulls == nil {
		teams.Bulls = []stats.AthleteTotal{}
	}
	if teams.Sharks == nil {
		teams.Sharks = []stats.AthleteTotal{}
	}
	if teams.Weekly == nil {
		teams.Weekly = []stats.TeamWeekPoint{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "teams": teams})
}

// HandleWeeklyWinners handles GET /api/weekly_winners?week=YYYY-MM-DD,
// defaulting to the current week
func (h *QueryHandler) HandleWeeklyWinners(w http.ResponseWriter, r *http.Request) {
	week := stats.WeekStart(h.now())
	if raw := r.URL.Query().Get("week"); raw != "" {
		parsed, err := stats.ParseWeekKey(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "week must be a YYYY-MM-DD date")
			return
		}
		week = parsed
	}

	runs, ok := h.loadAllRuns(w)
	if !ok {
		return
	}

	leaderboard := stats.WeeklyWinners(runs, week)
	if leaderboard.Winners == nil {
		leaderboard.Winners = []stats.WeeklyWinner{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "leaderboard": leaderboard})
}

// HandleHealth handles GET /health
func (h *QueryHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Health(); err != nil {
		h.logger.Error("Health check failed", "error", err)
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// cutoffParams resolves the stats range: ?period=week wins over ?days,
// which defaults to a rolling 30 days
func (h *QueryHandler) cutoffParams(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	if period := r.URL.Query().Get("period"); period != "" {
		cutoff, ok := stats.CutoffForPeriod(h.now(), period)
		if !ok {
			writeError(w, http.StatusBadRequest, "period must be week or month")
			return time.Time{}, false
		}
		return cutoff, true
	}

	days, err := clampedIntParam(r, "days", 30, 1, 365)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return time.Time{}, false
	}
	return stats.CutoffForDays(h.now(), days), true
}

func (h *QueryHandler) loadRunsSince(w http.ResponseWriter, cutoff time.Time) ([]stats.Activity, bool) {
	rows, err := h.db.ListActivitiesSince(cutoff)
	if err != nil {
		h.logger.Error("Failed to list activities", "error", err)
		writeError(w, http.StatusBadGateway, "failed to load activities")
		return nil, false
	}
	return stats.FilterRuns(toActivities(rows), cutoff), true
}

func (h *QueryHandler) loadAllRuns(w http.ResponseWriter) ([]stats.Activity, bool) {
	rows, err := h.db.ListAllActivities()
	if err != nil {
		h.logger.Error("Failed to list activities", "error", err)
		writeError(w, http.StatusBadGateway, "failed to load activities")
		return nil, false
	}
	return stats.FilterRuns(toActivities(rows), time.Time{}), true
}

func toActivities(rows []*database.ClubFeedActivity) []stats.Activity {
	activities := make([]stats.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, stats.Activity{
			AthleteName:  strVal(row.AthleteName),
			ActivityName: strVal(row.Name),
			Type:         strVal(row.Type),
			SportType:    strVal(row.SportType),
			DistanceM:    floatVal(row.DistanceM),
			SeenAt:       time.Unix(row.FetchedAt, 0).UTC(),
		})
	}
	return activities
}

func toRecords(rows []*database.ClubFeedActivity) []activityRecord {
	records := make([]activityRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, activityRecord{
			AthleteName: strVal(row.AthleteName),
			Name:        strVal(row.Name),
			Type:        strVal(row.Type),
			SportType:   strVal(row.SportType),
			DistanceKm:  floatVal(row.DistanceM) / 1000,
			MovingTimeS: intVal(row.MovingTimeS),
			SeenAt:      time.Unix(row.FetchedAt, 0).UTC().Format(time.RFC3339),
		})
	}
	return records
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func intVal(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
