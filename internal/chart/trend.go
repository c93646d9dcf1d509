package chart

import (
	"fmt"
	"math"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down" // downward or flat
)

func (d Direction) Glyph() string {
	if d == DirectionUp {
		return "↑"
	}
	return "↓"
}

// TrendSummary holds the OLS slope (value change per day) and the extrema and
// last value of the observed points.
type TrendSummary struct {
	Slope     float64 `json:"slope"`
	MinValue  float64 `json:"minValue"`
	MaxValue  float64 `json:"maxValue"`
	LastValue float64 `json:"lastValue"`
}

func (t TrendSummary) Direction() Direction {
	if t.Slope > 0 {
		return DirectionUp
	}
	return DirectionDown
}

// EstimateTrend fits value against the calendar day index of each observation
// with ordinary least squares. Only real observations contribute, never the
// gap-filled slots.
//
// It fails with ErrInsufficientData for fewer than two observations, or when
// all of them fall on the same day (zero denominator).
func EstimateTrend(observations []Observation) (TrendSummary, error) {
	n := len(observations)
	if n < 2 {
		return TrendSummary{}, fmt.Errorf("%w: %d observations", ErrInsufficientData, n)
	}

	var sumX, sumY, sumXY, sumXX float64
	minValue := math.Inf(1)
	maxValue := math.Inf(-1)
	last := observations[0]
	// x is counted from the first observation's day, the slope is origin independent
	origin := dayIndex(observations[0].Timestamp)
	for _, o := range observations {
		x := float64(dayIndex(o.Timestamp) - origin)
		y := o.Value.Float64()

		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x

		minValue = math.Min(minValue, y)
		maxValue = math.Max(maxValue, y)
		if !o.Timestamp.Before(last.Timestamp) {
			last = o
		}
	}

	fn := float64(n)
	denominator := fn*sumXX - sumX*sumX
	if denominator == 0 {
		return TrendSummary{}, fmt.Errorf("%w: all observations on the same day", ErrInsufficientData)
	}

	return TrendSummary{
		Slope:     (fn*sumXY - sumX*sumY) / denominator,
		MinValue:  minValue,
		MaxValue:  maxValue,
		LastValue: last.Value.Float64(),
	}, nil
}
