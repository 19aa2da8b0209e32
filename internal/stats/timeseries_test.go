package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSeriesByDay(t *testing.T) {
	runs := []Activity{
		run("B", 3000, day("2025-01-07")),
		run("A", 5000, day("2025-01-06")),
		run("A", 2000, day("2025-01-06")),
	}

	points := TimeSeries(runs, BucketDay)

	require.Len(t, points, 2)

	// Sorted by day ascending, athlete ascending; same-day runs summed
	assert.Equal(t, Point{Day: "2025-01-06", AthleteName: "A", Km: 7}, points[0])
	assert.Equal(t, Point{Day: "2025-01-07", AthleteName: "B", Km: 3}, points[1])
}

func TestTimeSeriesByWeek(t *testing.T) {
	runs := []Activity{
		run("A", 5000, day("2025-01-06")), // week of Jan 6
		run("A", 3000, day("2025-01-09")), // same week
		run("A", 4000, day("2025-01-13")), // next week
	}

	points := TimeSeries(runs, BucketWeek)

	require.Len(t, points, 2)
	assert.Equal(t, Point{Day: "2025-01-06", AthleteName: "A", Km: 8}, points[0])
	assert.Equal(t, Point{Day: "2025-01-13", AthleteName: "A", Km: 4}, points[1])
}

func TestTimeSeriesAthleteOrderWithinDay(t *testing.T) {
	runs := []Activity{
		run("Zoe", 1000, day("2025-01-06")),
		run("Amy", 2000, day("2025-01-06")),
	}

	points := TimeSeries(runs, BucketDay)

	require.Len(t, points, 2)
	assert.Equal(t, "Amy", points[0].AthleteName)
	assert.Equal(t, "Zoe", points[1].AthleteName)
}

func TestTimeSeriesEmpty(t *testing.T) {
	assert.Empty(t, TimeSeries(nil, BucketDay))
}
