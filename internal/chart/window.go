package chart

import (
	"fmt"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	DefaultWindowDays = 30
)

// Window is an inclusive local calendar window:
// Start is at local midnight, End at 23:59:59.999 of its day.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of calendar days in [Start.date, End.date).
func (w Window) Days() int {
	return daysBetween(startOfDay(w.Start), startOfDay(w.End))
}

// ResolveWindow turns the optional start/end date params (YYYY-MM-DD, empty
// meaning absent) into a window in now's location. The default window ends
// today and starts DefaultWindowDays before the end day.
func ResolveWindow(startParam, endParam string, now time.Time) (Window, error) {
	loc := now.Location()

	endDay := startOfDay(now)
	if endParam != "" {
		d, err := time.ParseInLocation(DateLayout, endParam, loc)
		if err != nil {
			return Window{}, fmt.Errorf("%w: end date [%s]: %w", ErrInvalidDate, endParam, err)
		}
		endDay = d
	}
	end := endOfDay(endDay)

	start := time.Date(end.Year(), end.Month(), end.Day()-DefaultWindowDays, 0, 0, 0, 0, loc)
	if startParam != "" {
		d, err := time.ParseInLocation(DateLayout, startParam, loc)
		if err != nil {
			return Window{}, fmt.Errorf("%w: start date [%s]: %w", ErrInvalidDate, startParam, err)
		}
		start = d
	}

	if start.After(end) {
		return Window{}, fmt.Errorf(
			"%w: start [%s] is after end [%s]",
			ErrInvalidDate, start.Format(DateLayout), end.Format(DateLayout),
		)
	}

	return Window{Start: start, End: end}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// dayIndex is the number of days between the Unix epoch and t's calendar date.
// DST shifts don't matter, the date is re-anchored in UTC.
func dayIndex(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func daysBetween(from, to time.Time) int {
	n := int(dayIndex(to) - dayIndex(from))
	if n < 0 {
		return 0
	}
	return n
}
