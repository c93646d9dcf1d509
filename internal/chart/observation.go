package chart

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Value is a non-negative measurement reading (kilograms, ohms, ...).
// The only way to get a non-zero Value is through NewValue or json.Unmarshal,
// both of which reject negative numbers.
type Value struct {
	v float64
}

func NewValue(v float64) (Value, error) {
	if v < 0 {
		return Value{}, fmt.Errorf("%w: %v", ErrNegativeValue, v)
	}
	return Value{v: v}, nil
}

func (v Value) Float64() float64 {
	return v.v
}

func (v Value) String() string {
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	parsed, err := NewValue(f)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Observation is one dated reading of a user, as fetched from a repository.
type Observation struct {
	ID        int64
	Timestamp time.Time
	Value     Value
}

func NewObservation(id int64, timestamp time.Time, value float64) (Observation, error) {
	v, err := NewValue(value)
	if err != nil {
		return Observation{}, err
	}
	return Observation{
		ID:        id,
		Timestamp: timestamp,
		Value:     v,
	}, nil
}
