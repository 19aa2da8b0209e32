package stats

import "sort"

// Bucket selects the time-series bucketing granularity
type Bucket int

const (
	BucketDay Bucket = iota
	BucketWeek
)

// Point is one time-series entry: distance per bucket per athlete
type Point struct {
	Day         string  `json:"day"`
	AthleteName string  `json:"athleteName"`
	Km          float64 `json:"km"`
}

// TimeSeries sums run distance per calendar day (or Monday-anchored week
// start) per athlete. Output is sorted by bucket key ascending, then athlete
// name ascending within a tied bucket.
func TimeSeries(runs []Activity, bucket Bucket) []Point {
	type key struct {
		day     string
		athlete string
	}

	meters := make(map[key]float64)
	for _, r := range runs {
		var day string
		if bucket == BucketWeek {
			day = WeekKey(r.SeenAt)
		} else {
			day = DayKey(r.SeenAt)
		}
		meters[key{day, r.AthleteName}] += r.DistanceM
	}

	points := make([]Point, 0, len(meters))
	for k, m := range meters {
		points = append(points, Point{Day: k.day, AthleteName: k.athlete, Km: m / 1000})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Day != points[j].Day {
			return points[i].Day < points[j].Day
		}
		return points[i].AthleteName < points[j].AthleteName
	})

	return points
}
