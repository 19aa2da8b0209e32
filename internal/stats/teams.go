package stats

import (
	"sort"

	"runclub-dashboard/internal/roster"
)

// AthleteTotal is one athlete's total distance within a team
type AthleteTotal struct {
	AthleteName string  `json:"athleteName"`
	TotalKm     float64 `json:"totalKm"`
}

// TeamWeekPoint is one week of the team comparison series. Cumulative sums
// run from the start of the queried range and never reset at calendar
// boundaries.
type TeamWeekPoint struct {
	WeekStart    string  `json:"weekStart"`
	BullsKm      float64 `json:"bullsKm"`
	SharksKm     float64 `json:"sharksKm"`
	BullsCumKm   float64 `json:"bullsCumKm"`
	SharksCumKm  float64 `json:"sharksCumKm"`
}

// TeamStats is the full team comparison payload
type TeamStats struct {
	TotalBullsKm  float64        `json:"totalBullsKm"`
	TotalSharksKm float64        `json:"totalSharksKm"`
	Bulls         []AthleteTotal `json:"bulls"`
	Sharks        []AthleteTotal `json:"sharks"`
	Weekly        []TeamWeekPoint `json:"weekly"`
}

// TeamComparison splits the run set into the two fixed teams using the
// roster and computes per-athlete totals plus a weekly series with running
// cumulative sums. Athletes missing from the roster are ignored.
func TeamComparison(runs []Activity, r *roster.Roster) TeamStats {
	athleteM := make(map[string]float64)
	weekTeamM := make(map[string]map[roster.Team]float64)

	for _, run := range runs {
		team := r.TeamOf(run.AthleteName)
		if team == "" {
			continue
		}

		athleteM[run.AthleteName] += run.DistanceM

		week := WeekKey(run.SeenAt)
		if weekTeamM[week] == nil {
			weekTeamM[week] = make(map[roster.Team]float64)
		}
		weekTeamM[week][team] += run.DistanceM
	}

	var out TeamStats
	for name, m := range athleteM {
		total := AthleteTotal{AthleteName: name, TotalKm: m / 1000}
		switch r.TeamOf(name) {
		case roster.TeamBulls:
			out.Bulls = append(out.Bulls, total)
			out.TotalBullsKm += total.TotalKm
		case roster.TeamSharks:
			out.Sharks = append(out.Sharks, total)
			out.TotalSharksKm += total.TotalKm
		}
	}

	sortTotals := func(totals []AthleteTotal) {
		sort.Slice(totals, func(i, j int) bool {
			if totals[i].TotalKm != totals[j].TotalKm {
				return totals[i].TotalKm > totals[j].TotalKm
			}
			return totals[i].AthleteName < totals[j].AthleteName
		})
	}
	sortTotals(out.Bulls)
	sortTotals(out.Sharks)

	weeks := make([]string, 0, len(weekTeamM))
	for week := range weekTeamM {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)

	var bullsCum, sharksCum float64
	for _, week := range weeks {
		bullsM := weekTeamM[week][roster.TeamBulls]
		sharksM := weekTeamM[week][roster.TeamSharks]
		bullsCum += bullsM / 1000
		sharksCum += sharksM / 1000
		out.Weekly = append(out.Weekly, TeamWeekPoint{
			WeekStart:   week,
			BullsKm:     bullsM / 1000,
			SharksKm:    sharksM / 1000,
			BullsCumKm:  bullsCum,
			SharksCumKm: sharksCum,
		})
	}

	return out
}
