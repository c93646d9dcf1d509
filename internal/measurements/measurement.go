package measurements

import (
	"errors"
	"time"

	"github.com/2beens/weighttracker/internal/chart"
)

const Kind = "weight"

var ErrMeasurementNotFound = errors.New("measurement not found")

// Measurement is a single weight reading in kilograms.
type Measurement struct {
	ID       int64       `json:"id"`
	UserID   int         `json:"userId"`
	DateTime time.Time   `json:"dateTime"`
	Weight   chart.Value `json:"weight"`
}

func (m Measurement) Observation() chart.Observation {
	return chart.Observation{
		ID:        m.ID,
		Timestamp: m.DateTime,
		Value:     m.Weight,
	}
}
