package numflat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for malformed inputs: nil or empty
	// datasets, mismatched vector dimensions, out-of-range parameters.
	// It is detected eagerly at the API boundary, before any computation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFittingFailure is returned when a statistical model cannot be
	// validly constructed from the given data: a singular covariance,
	// a near-zero variance dimension, or a component collapsing to zero
	// effective population. The underlying numerical cause can be
	// accessed via errors.Unwrap.
	ErrFittingFailure = errors.New("fitting failure")
)

// ErrDimensionMismatch indicates that a vector's dimensionality does not
// match the model or dataset it is used with.
//
// It unwraps to ErrInvalidArgument.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return ErrInvalidArgument }

// InvalidArgumentf wraps ErrInvalidArgument with formatted context.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// FittingFailure wraps ErrFittingFailure around an underlying numerical
// cause. If cause is nil, the message alone is used.
func FittingFailure(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrFittingFailure, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrFittingFailure, msg, cause)
}
