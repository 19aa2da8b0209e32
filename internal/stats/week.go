package stats

import "time"

const dateLayout = "2006-01-02"

// WeekStart returns the Monday 00:00 UTC that starts the week containing t
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	// time.Weekday has Sunday == 0; shift so Monday anchors the week
	offset := (weekday + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// WeekKey formats the Monday-anchored week start of t as yyyy-mm-dd
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(dateLayout)
}

// DayKey formats the UTC calendar day of t as yyyy-mm-dd
func DayKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseWeekKey parses a yyyy-mm-dd week key and snaps it to its Monday
func ParseWeekKey(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return WeekStart(t), nil
}
