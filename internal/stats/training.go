package stats

import "sort"

// RiskVolumeSpike flags a week whose distance jumped more than the
// configured threshold over the previous week
const RiskVolumeSpike = "volume_spike"

// WeekVolume is one week of an athlete's distance series
type WeekVolume struct {
	Week string  `json:"week"`
	Km   float64 `json:"km"`
}

// RiskyWeek is a week flagged by the training-volume heuristic
type RiskyWeek struct {
	Week      string   `json:"week"`
	RiskCount int      `json:"riskCount"`
	Risks     []string `json:"risks"`
}

// TrainingData is one athlete's weekly volume plus flagged weeks.
// The risk flags are a rule-of-thumb heuristic, not a medical signal.
type TrainingData struct {
	Weekly     []WeekVolume `json:"weekly"`
	RiskyWeeks []RiskyWeek  `json:"riskyWeeks"`
}

// TrainingVolume builds the per-week distance series for one athlete and
// flags weeks whose distance exceeds the previous week's by more than
// spikeThresholdPct percent. Weeks following a zero-distance week are never
// flagged: there is no baseline to spike from.
func TrainingVolume(runs []Activity, athleteName string, spikeThresholdPct float64) TrainingData {
	weekM := make(map[string]float64)
	for _, r := range runs {
		if r.AthleteName != athleteName {
			continue
		}
		weekM[WeekKey(r.SeenAt)] += r.DistanceM
	}

	weeks := make([]string, 0, len(weekM))
	for week := range weekM {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)

	data := TrainingData{}
	for _, week := range weeks {
		data.Weekly = append(data.Weekly, WeekVolume{Week: week, Km: weekM[week] / 1000})
	}

	factor := 1 + spikeThresholdPct/100
	for i := 1; i < len(weeks); i++ {
		prev, err := ParseWeekKey(weeks[i-1])
		if err != nil {
			continue
		}
		cur, err := ParseWeekKey(weeks[i])
		if err != nil {
			continue
		}
		// Only adjacent calendar weeks compare; a gap week means zero
		// baseline and no flag
		if cur.Sub(prev).Hours() != 7*24 {
			continue
		}

		prevM := weekM[weeks[i-1]]
		curM := weekM[weeks[i]]
		if prevM > 0 && curM > prevM*factor {
			data.RiskyWeeks = append(data.RiskyWeeks, RiskyWeek{
				Week:      weeks[i],
				RiskCount: 1,
				Risks:     []string{RiskVolumeSpike},
			})
		}
	}

	return data
}
