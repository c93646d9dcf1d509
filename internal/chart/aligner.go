package chart

import "time"

// DaySlot is one calendar day of the gap-filled series; Value is nil on days
// without observations.
type DaySlot struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

func (s DaySlot) HasValue() bool {
	return s.Value != nil
}

// Align merges observations (ascending by timestamp) against every calendar
// day in [window.Start.date, window.End.date). The end day itself is not part
// of the series.
//
// A day takes the value of its first observation. The cursor then skips every
// other observation of that day, so extra same-day readings never shift the
// following days; FindDuplicates reports them instead.
func Align(observations []Observation, window Window) []DaySlot {
	loc := window.Start.Location()
	first := startOfDay(window.Start)
	days := window.Days()

	slots := make([]DaySlot, 0, days)
	i := 0
	for n := 0; n < days; n++ {
		day := time.Date(first.Year(), first.Month(), first.Day()+n, 0, 0, 0, 0, loc)
		slot := DaySlot{Date: day}

		// rows before the current day (should not happen with a proper fetch)
		for i < len(observations) && observations[i].Timestamp.In(loc).Before(day) {
			i++
		}

		if i < len(observations) && sameDay(observations[i].Timestamp.In(loc), day) {
			v := observations[i].Value.Float64()
			slot.Value = &v
			for i < len(observations) && sameDay(observations[i].Timestamp.In(loc), day) {
				i++
			}
		}

		slots = append(slots, slot)
	}

	return slots
}
