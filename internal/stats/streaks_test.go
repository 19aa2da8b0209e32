package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyWinners(t *testing.T) {
	selected := day("2025-01-20")
	runs := []Activity{
		run("A", 5000, day("2025-01-20")),
		run("A", 3000, day("2025-01-21")),
		run("B", 10000, day("2025-01-22")),
	}

	lb := WeeklyWinners(runs, selected)

	assert.Equal(t, "2025-01-20", lb.WeekStart)
	require.Len(t, lb.Winners, 2)

	// km desc within the selected week
	assert.Equal(t, "B", lb.Winners[0].AthleteName)
	assert.InDelta(t, 10, lb.Winners[0].TotalKm, 1e-9)
	assert.Equal(t, "A", lb.Winners[1].AthleteName)
	assert.InDelta(t, 8, lb.Winners[1].TotalKm, 1e-9)
}

func TestWeeklyWinnersStreak(t *testing.T) {
	selected := day("2025-01-27")
	runs := []Activity{
		// A ran the selected week and the two before it, then a gap
		run("A", 5000, day("2025-01-27")),
		run("A", 5000, day("2025-01-20")),
		run("A", 5000, day("2025-01-13")),
		run("A", 5000, day("2024-12-30")), // gap at 2025-01-06 breaks the streak
		// B only ran the selected week
		run("B", 4000, day("2025-01-28")),
	}

	lb := WeeklyWinners(runs, selected)

	require.Len(t, lb.Winners, 2)
	assert.Equal(t, "A", lb.Winners[0].AthleteName)
	assert.Equal(t, 3, lb.Winners[0].Streak)
	assert.Equal(t, "B", lb.Winners[1].AthleteName)
	assert.Equal(t, 1, lb.Winners[1].Streak)
}

func TestWeeklyWinnersExcludesZeroWeekAthletes(t *testing.T) {
	selected := day("2025-01-20")
	runs := []Activity{
		run("A", 5000, day("2025-01-20")),
		run("B", 9000, day("2025-01-13")), // previous week only
	}

	lb := WeeklyWinners(runs, selected)

	require.Len(t, lb.Winners, 1)
	assert.Equal(t, "A", lb.Winners[0].AthleteName)
}

func TestWeeklyWinnersWeekNumber(t *testing.T) {
	runs := []Activity{
		run("A", 5000, day("2025-01-06")), // earliest run week
		run("A", 5000, day("2025-01-22")),
	}

	lb := WeeklyWinners(runs, day("2025-01-22"))

	// Third week since the earliest run week
	assert.Equal(t, 3, lb.WeekNumber)
}

func TestWeeklyWinnersMidWeekInputSnapsToMonday(t *testing.T) {
	runs := []Activity{run("A", 5000, day("2025-01-21"))}

	lb := WeeklyWinners(runs, day("2025-01-23")) // Thursday

	assert.Equal(t, "2025-01-20", lb.WeekStart)
	require.Len(t, lb.Winners, 1)
}
