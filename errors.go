package hyperloglog

import "errors"

var (
	// ErrInvalidConfig is returned by New when the precision is out of range.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrIncompatiblePrecision is returned when merging sketches built with
	// different precisions.
	ErrIncompatiblePrecision = errors.New("precisions must be equal")
)
