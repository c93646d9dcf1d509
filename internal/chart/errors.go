package chart

import "errors"

var (
	ErrNegativeValue    = errors.New("value cannot be negative")
	ErrInvalidDate      = errors.New("invalid date")
	ErrWindowTooLarge   = errors.New("date window too large")
	ErrInsufficientData = errors.New("insufficient data")
)
