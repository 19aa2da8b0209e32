package stats

import (
	"sort"
	"time"
)

// WeeklyWinner is one row of the weekly-winners leaderboard
type WeeklyWinner struct {
	AthleteName string  `json:"athleteName"`
	TotalKm     float64 `json:"totalKm"`
	Streak      int     `json:"streak"`
}

// WeeklyLeaderboard is the weekly-winners view for one selected week
type WeeklyLeaderboard struct {
	WeekStart  string         `json:"weekStart"`
	WeekNumber int            `json:"weekNumber"`
	Winners    []WeeklyWinner `json:"winners"`
}

// WeeklyWinners ranks athletes by distance within the selected week and
// counts each winner's streak: consecutive weeks with nonzero distance
// ending at the selected week. Athletes with no distance in the selected
// week are excluded entirely.
func WeeklyWinners(runs []Activity, weekStart time.Time) WeeklyLeaderboard {
	weekStart = WeekStart(weekStart)
	selectedKey := weekStart.Format(dateLayout)

	// athlete -> week key -> km
	athleteWeeks := make(map[string]map[string]float64)
	var earliest time.Time

	for _, r := range runs {
		if earliest.IsZero() || r.SeenAt.Before(earliest) {
			earliest = r.SeenAt
		}

		weeks := athleteWeeks[r.AthleteName]
		if weeks == nil {
			weeks = make(map[string]float64)
			athleteWeeks[r.AthleteName] = weeks
		}
		weeks[WeekKey(r.SeenAt)] += r.DistanceM / 1000
	}

	var winners []WeeklyWinner
	for name, weeks := range athleteWeeks {
		totalKm := weeks[selectedKey]
		if totalKm == 0 {
			continue
		}

		streak := 0
		for check := weekStart; weeks[check.Format(dateLayout)] > 0; check = check.AddDate(0, 0, -7) {
			streak++
		}

		winners = append(winners, WeeklyWinner{AthleteName: name, TotalKm: totalKm, Streak: streak})
	}

	sort.Slice(winners, func(i, j int) bool {
		if winners[i].TotalKm != winners[j].TotalKm {
			return winners[i].TotalKm > winners[j].TotalKm
		}
		return winners[i].AthleteName < winners[j].AthleteName
	})

	weekNumber := 1
	if !earliest.IsZero() {
		firstWeek := WeekStart(earliest)
		weekNumber = int(weekStart.Sub(firstWeek)/(7*24*time.Hour)) + 1
	}

	return WeeklyLeaderboard{
		WeekStart:  selectedKey,
		WeekNumber: weekNumber,
		Winners:    winners,
	}
}
