package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"runclub-dashboard/internal/config"
	"runclub-dashboard/internal/database"
	"runclub-dashboard/internal/roster"
)

// Fixed "now" for query tests: Wednesday 2025-01-08 noon UTC
var queryNow = time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

func setupQueryTest(t *testing.T) (*QueryHandler, *database.DB) {
	t.Helper()

	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{RiskSpikeThresholdPct: 10}
	clubRoster := roster.New([]roster.Member{
		{ID: "1", Name: "A", Team: roster.TeamBulls, Event: roster.EventHalf},
		{ID: "2", Name: "B", Team: roster.TeamSharks, Event: roster.EventFull},
	})

	h := NewQueryHandler(db, cfg, clubRoster)
	h.now = func() time.Time { return queryNow }
	return h, db
}

func seedRun(t *testing.T, db *database.DB, hash, athlete string, distanceM float64, seenAt time.Time) {
	t.Helper()

	name := "Morning Run"
	runType := "Run"
	inserted, err := db.InsertClubFeedActivity(&database.ClubFeedActivity{
		ClubID:      "12345",
		AthleteName: &athlete,
		Name:        &name,
		Type:        &runType,
		SportType:   &runType,
		DistanceM:   &distanceM,
		DedupeHash:  hash,
		RawJSON:     "{}",
		FetchedAt:   seenAt.Unix(),
	})
	if err != nil {
		t.Fatalf("Failed to seed run: %v", err)
	}
	if !inserted {
		t.Fatalf("Seed run %s was deduplicated", hash)
	}
}

func seedSpecExample(t *testing.T, db *database.DB) {
	seedRun(t, db, "h1", "A", 5000, time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC))
	seedRun(t, db, "h2", "A", 3000, time.Date(2025, 1, 7, 8, 0, 0, 0, time.UTC))
	seedRun(t, db, "h3", "B", 10000, time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC))
}

func TestHandleClubStats(t *testing.T) {
	h, db := setupQueryTest(t)
	seedSpecExample(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/club/stats?days=7", nil)
	rec := httptest.NewRecorder()

	h.HandleClubStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		OK      bool `json:"ok"`
		Overall struct {
			TotalRuns int     `json:"totalRuns"`
			TotalKm   float64 `json:"totalKm"`
			Longest   *struct {
				AthleteName string  `json:"athleteName"`
				Km          float64 `json:"km"`
			} `json:"longest"`
		} `json:"overall"`
		Athletes []struct {
			AthleteName string  `json:"athleteName"`
			Runs        int     `json:"runs"`
			TotalKm     float64 `json:"totalKm"`
		} `json:"athletes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !body.OK || body.Overall.TotalRuns != 3 {
		t.Errorf("Unexpected overall: %+v", body.Overall)
	}
	if body.Overall.Longest == nil || body.Overall.Longest.AthleteName != "B" {
		t.Errorf("Unexpected longest: %+v", body.Overall.Longest)
	}
	if len(body.Athletes) != 2 || body.Athletes[0].AthleteName != "B" || body.Athletes[1].Runs != 2 {
		t.Errorf("Unexpected athletes: %+v", body.Athletes)
	}
}

func TestHandleClubStatsBadInput(t *testing.T) {
	h, _ := setupQueryTest(t)

	for _, target := range []string{
		"/api/club/stats?period=year",
		"/api/club/stats?days=abc",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()

		h.HandleClubStats(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleTimeseries(t *testing.T) {
	h, db := setupQueryTest(t)
	seedSpecExample(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/club/timeseries?days=7&bucket=day", nil)
	rec := httptest.NewRecorder()

	h.HandleTimeseries(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var body struct {
		OK     bool `json:"ok"`
		Points []struct {
			Day         string  `json:"day"`
			AthleteName string  `json:"athleteName"`
			Km          float64 `json:"km"`
		} `json:"points"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	// A and B on Jan 6, then A on Jan 7, sorted day then athlete
	if len(body.Points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(body.Points))
	}
	if body.Points[0].Day != "2025-01-06" || body.Points[0].AthleteName != "A" {
		t.Errorf("Unexpected first point: %+v", body.Points[0])
	}
	if body.Points[2].Day != "2025-01-07" {
		t.Errorf("Unexpected last point: %+v", body.Points[2])
	}
}

func TestHandleTimeseriesBadBucket(t *testing.T) {
	h, _ := setupQueryTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/club/timeseries?bucket=month", nil)
	rec := httptest.NewRecorder()

	h.HandleTimeseries(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestHandleLatest(t *testing.T) {
	h, db := setupQueryTest(t)
	seedSpecExample(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/club/latest?limit=2", nil)
	rec := httptest.NewRecorder()

	h.HandleLatest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var body struct {
		OK         bool             `json:"ok"`
		Activities []activityRecord `json:"activities"`
		LastPoll   *string          `json:"lastPoll"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(body.Activities) != 2 {
		t.Fatalf("Expected 2 activities, got %d", len(body.Activities))
	}
	// Newest first: A's Jan 7 run leads
	if body.Activities[0].AthleteName != "A" || body.Activities[0].DistanceKm != 3 {
		t.Errorf("Unexpected newest activity: %+v", body.Activities[0])
	}
	if body.LastPoll == nil {
		t.Error("Expected lastPoll to be set")
	}
}

func queryRouter(h *QueryHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/activities/{period}", h.HandleActivities)
	return r
}

func TestHandleActivities(t *testing.T) {
	h, db := setupQueryTest(t)
	seedSpecExample(t, db)
	// A run from the previous week, outside the "week" window
	seedRun(t, db, "h4", "A", 7000, time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC))

	router := queryRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/activities/week", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var body struct {
		OK         bool             `json:"ok"`
		Period     string           `json:"period"`
		Activities []activityRecord `json:"activities"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Period != "week" || len(body.Activities) != 3 {
		t.Errorf("Expected 3 activities this week, got %d (%+v)", len(body.Activities), body)
	}
}

func TestHandleActivitiesBadPeriod(t *testing.T) {
	h, _ := setupQueryTest(t)
	router := queryRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/activities/year", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestHandleAthletes(t *testing.T) {
	h, _ := setupQueryTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/athletes", nil)
	rec := httptest.NewRecorder()

	h.HandleAthletes(rec, req)

	var body struct {
		OK       bool            `json:"ok"`
		Athletes []roster.Member `json:"athletes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Athletes) != 2 || body.Athletes[0].Team != roster.TeamBulls {
		t.Errorf("Unexpected roster: %+v", body.Athletes)
	}
}

func TestHandleTeamStats(t *testing.T) {
	h, db := setupQueryTest(t)
	seedSpecExample(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/team_stats", nil)
	rec := httptest.NewRecorder()

	h.HandleTeamStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var body struct {
		OK    bool `json:"ok"`
		Teams struct {
			TotalBullsKm  float64 `json:"totalBullsKm"`
			TotalSharksKm float64 `json:"totalSharksKm"`
		} `json:"teams"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Teams.TotalBullsKm != 8 || body.Teams.TotalSharksKm != 10 {
		t.Errorf("Unexpected team totals: %+v", body.Teams)
	}
}

func TestHandleWeeklyWinners(t *testing.T) {
	h, db := setupQueryTest(t)
	seedSpecExample(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/weekly_winners?week=2025-01-08", nil)
	rec := httptest.NewRecorder()

	h.HandleWeeklyWinners(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var body struct {
		OK          bool `json:"ok"`
		Leaderboard struct {
			WeekStart string `json:"weekStart"`
			Winners   []struct {
				AthleteName string  `json:"athleteName"`
				TotalKm     float64 `json:"totalKm"`
				Streak      int     `json:"streak"`
			} `json:"winners"`
		} `json:"leaderboard"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body.Leaderboard.WeekStart != "2025-01-06" {
		t.Errorf("WeekStart = %q, want 2025-01-06", body.Leaderboard.WeekStart)
	}
	if len(body.Leaderboard.Winners) != 2 || body.Leaderboard.Winners[0].AthleteName != "B" {
		t.Errorf("Unexpected winners: %+v", body.Leaderboard.Winners)
	}
}

func TestHandleWeeklyWinnersBadWeek(t *testing.T) {
	h, _ := setupQueryTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/weekly_winners?week=noise", nil)
	rec := httptest.NewRecorder()

	h.HandleWeeklyWinners(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestHandleTrainingData(t *testing.T) {
	h, db := setupQueryTest(t)
	seedSpecExample(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/athletes/training_data", nil)
	rec := httptest.NewRecorder()

	h.HandleTrainingData(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var body struct {
		OK       bool `json:"ok"`
		Athletes map[string]struct {
			Weekly []struct {
				Week string  `json:"week"`
				Km   float64 `json:"km"`
			} `json:"weekly"`
		} `json:"athletes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(body.Athletes) != 2 {
		t.Fatalf("Expected 2 roster athletes, got %d", len(body.Athletes))
	}
	a := body.Athletes["A"]
	if len(a.Weekly) != 1 || a.Weekly[0].Km != 8 {
		t.Errorf("Unexpected weekly series for A: %+v", a.Weekly)
	}
}
