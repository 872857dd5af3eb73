package keyhole

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension reports an input that is missing, non-finite or
	// not positive.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrDegenerateGeometry reports inputs that are individually valid but
	// cannot form a working slot, such as a head no wider than the shank.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrInvalidTolerance reports a tolerance that is negative or non-finite.
	ErrInvalidTolerance = errors.New("invalid tolerance")
)

// DimensionError names the offending field. It wraps one of the sentinel
// errors above.
type DimensionError struct {
	Field  string
	Value  float64
	Reason string
	Err    error
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%v: %s = %g: %s", e.Err, e.Field, e.Value, e.Reason)
}

func (e *DimensionError) Unwrap() error {
	return e.Err
}

func invalid(field string, v float64, reason string) error {
	return &DimensionError{Field: field, Value: v, Reason: reason, Err: ErrInvalidDimension}
}

func degenerate(field string, v float64, reason string) error {
	return &DimensionError{Field: field, Value: v, Reason: reason, Err: ErrDegenerateGeometry}
}
