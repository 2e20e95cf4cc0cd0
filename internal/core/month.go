package core

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM" (zero-padded).
// It is the bucket key for the budget aggregate.
type MonthKey string

const monthLayout = "2006-01"

// MonthOf returns the month key the given date falls in.
func MonthOf(t time.Time) MonthKey {
	return MonthKey(t.Format(monthLayout))
}

func (m MonthKey) Validate() error {
	if _, err := time.Parse(monthLayout, string(m)); err != nil {
		return fmt.Errorf("%w %q: want YYYY-MM", ErrInvalidMonth, string(m))
	}
	return nil
}

// Bounds returns the half-open [start, end) range covering the month.
func (m MonthKey) Bounds() (time.Time, time.Time, error) {
	start, err := time.Parse(monthLayout, string(m))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w %q: want YYYY-MM", ErrInvalidMonth, string(m))
	}
	return start, start.AddDate(0, 1, 0), nil
}

// DaysInMonth returns the number of calendar days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
