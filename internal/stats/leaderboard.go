package stats

import (
	"math"
	"sort"
)

// AthleteStats is the per-athlete leaderboard row
type AthleteStats struct {
	AthleteName string  `json:"athleteName"`
	Runs        int     `json:"runs"`
	TotalKm     float64 `json:"totalKm"`
	LongestKm   float64 `json:"longestKm"`
	ShortestKm  float64 `json:"shortestKm"`
}

// NameKm pairs an athlete with a distance superlative
type NameKm struct {
	AthleteName string  `json:"athleteName"`
	Km          float64 `json:"km"`
}

// NameRuns pairs an athlete with a run-count superlative
type NameRuns struct {
	AthleteName string `json:"athleteName"`
	Runs        int    `json:"runs"`
}

// OverallStats summarizes the whole club over the queried range
type OverallStats struct {
	TotalRuns int      `json:"totalRuns"`
	TotalKm   float64  `json:"totalKm"`
	Longest   *NameKm  `json:"longest"`
	Shortest  *NameKm  `json:"shortest"`
	MostRuns  *NameRuns `json:"mostRuns"`
}

// Leaderboard computes per-athlete stats and overall superlatives for a
// pre-filtered run set. Athletes are sorted by total distance descending.
// The shortest superlative only considers strictly positive distances.
func Leaderboard(runs []Activity) (OverallStats, []AthleteStats) {
	type agg struct {
		runs   int
		totalM float64
		minM   float64
		maxM   float64
	}

	byAthlete := make(map[string]*agg)
	var names []string

	totalRuns := 0
	totalM := 0.0

	for _, r := range runs {
		totalRuns++
		totalM += r.DistanceM

		cur, ok := byAthlete[r.AthleteName]
		if !ok {
			cur = &agg{minM: math.Inf(1)}
			byAthlete[r.AthleteName] = cur
			names = append(names, r.AthleteName)
		}
		cur.runs++
		cur.totalM += r.DistanceM
		cur.minM = math.Min(cur.minM, r.DistanceM)
		cur.maxM = math.Max(cur.maxM, r.DistanceM)
	}

	athletes := make([]AthleteStats, 0, len(names))
	for _, name := range names {
		a := byAthlete[name]
		shortest := 0.0
		if !math.IsInf(a.minM, 1) {
			shortest = a.minM / 1000
		}
		athletes = append(athletes, AthleteStats{
			AthleteName: name,
			Runs:        a.runs,
			TotalKm:     a.totalM / 1000,
			LongestKm:   a.maxM / 1000,
			ShortestKm:  shortest,
		})
	}

	var longest, shortest *NameKm
	var mostRuns *NameRuns
	for i := range athletes {
		a := &athletes[i]
		if longest == nil || a.LongestKm > longest.Km {
			longest = &NameKm{AthleteName: a.AthleteName, Km: a.LongestKm}
		}
		if a.ShortestKm > 0 && (shortest == nil || a.ShortestKm < shortest.Km) {
			shortest = &NameKm{AthleteName: a.AthleteName, Km: a.ShortestKm}
		}
		if mostRuns == nil || a.Runs > mostRuns.Runs {
			mostRuns = &NameRuns{AthleteName: a.AthleteName, Runs: a.Runs}
		}
	}

	sort.SliceStable(athletes, func(i, j int) bool {
		return athletes[i].TotalKm > athletes[j].TotalKm
	})

	overall := OverallStats{
		TotalRuns: totalRuns,
		TotalKm:   totalM / 1000,
		Longest:   longest,
		Shortest:  shortest,
		MostRuns:  mostRuns,
	}

	return overall, athletes
}
