package impedance

import (
	"errors"
	"time"

	"github.com/2beens/weighttracker/internal/chart"
)

const Kind = "impedance"

var ErrImpedanceNotFound = errors.New("impedance not found")

// Impedance is a body impedance reading in ohms, as reported by a bioimpedance scale.
type Impedance struct {
	ID         int64       `json:"id"`
	UserID     int         `json:"userId"`
	MeasuredAt time.Time   `json:"measuredAt"`
	Ohms       chart.Value `json:"ohms"`
}
