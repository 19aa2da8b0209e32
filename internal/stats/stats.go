// Package stats derives every dashboard view from an in-memory snapshot of
// club feed activities. All functions are pure: no I/O, no shared state.
// Distances stay in meters until a value crosses into an output type.
package stats

import "time"

// Activity is the aggregation engine's view of one stored feed record
type Activity struct {
	AthleteName  string
	ActivityName string
	Type         string
	SportType    string
	DistanceM    float64
	SeenAt       time.Time
}

// IsRun reports whether an activity counts as a run. The sport_type field is
// authoritative; the coarser type field is checked for records ingested
// before sport_type existed.
func IsRun(a Activity) bool {
	return a.SportType == "Run" || a.Type == "Run"
}

// FilterRuns returns the named run activities seen at or after the cutoff
func FilterRuns(activities []Activity, cutoff time.Time) []Activity {
	var runs []Activity
	for _, a := range activities {
		if !IsRun(a) || a.AthleteName == "" {
			continue
		}
		if a.SeenAt.Before(cutoff) {
			continue
		}
		runs = append(runs, a)
	}
	return runs
}

// CutoffForDays returns the start of a rolling n-day window ending now
func CutoffForDays(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// CutoffForPeriod maps a named time filter to its cutoff instant:
// "week" is the start of the current week, "month" a rolling 30 days.
// The second return value is false for unknown period names.
func CutoffForPeriod(now time.Time, period string) (time.Time, bool) {
	switch period {
	case "week":
		return WeekStart(now), true
	case "month":
		return CutoffForDays(now, 30), true
	default:
		return time.Time{}, false
	}
}
