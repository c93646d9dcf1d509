package chart

import (
	"slices"
	"time"
)

// DuplicateGroup marks a calendar day with more than one observation.
type DuplicateGroup struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// FindDuplicates groups observations by their calendar day in loc and returns
// the days having more than one observation, ascending by date.
func FindDuplicates(observations []Observation, loc *time.Location) []DuplicateGroup {
	// keyed by day index, time.Time is not a reliable map key
	day2count := make(map[int64]int)
	day2date := make(map[int64]time.Time)
	for _, o := range observations {
		local := o.Timestamp.In(loc)
		idx := dayIndex(local)
		day2count[idx]++
		if _, ok := day2date[idx]; !ok {
			day2date[idx] = startOfDay(local)
		}
	}

	duplicates := make([]DuplicateGroup, 0)
	for idx, count := range day2count {
		if count < 2 {
			continue
		}
		duplicates = append(duplicates, DuplicateGroup{
			Date:  day2date[idx],
			Count: count,
		})
	}

	slices.SortFunc(duplicates, func(a, b DuplicateGroup) int {
		return a.Date.Compare(b.Date)
	})

	return duplicates
}
