package planner

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod is returned for a malformed period key.
var ErrInvalidPeriod = errors.New("invalid period id")

// PeriodID returns the ISO-8601 week key of t, e.g. "2026-W42".
// Plans are keyed by week.
func PeriodID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParsePeriodID validates a week key and returns its ISO year and week.
func ParsePeriodID(id string) (year, week int, err error) {
	if _, err := fmt.Sscanf(id, "%04d-W%02d", &year, &week); err != nil || len(id) != 8 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, id)
	}
	if week < 1 || week > 53 || PeriodID(WeekStart(year, week)) != id {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, id)
	}
	return year, week, nil
}

// WeekStart returns the Monday (UTC midnight) of the given ISO week.
func WeekStart(year, week int) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7)
}
