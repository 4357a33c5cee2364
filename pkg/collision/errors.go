package collision

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when no points are supplied.
	ErrEmptyInput = errors.New("collision: empty point set")

	// ErrDegenerateInput matches every *DegenerateInputError via errors.Is.
	ErrDegenerateInput = errors.New("collision: degenerate point set")

	// ErrInvalidMethod matches every *InvalidMethodError via errors.Is.
	ErrInvalidMethod = errors.New("collision: invalid method")
)

// DegenerateInputError reports a point set that lacks the dimensionality an
// operation needs: collinear points for orientation, coplanar points for a
// hull.
type DegenerateInputError struct {
	Op     string // operation that rejected the input ("estimate", "hull")
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("collision: %s: degenerate input: %s", e.Op, e.Reason)
}

// Is lets errors.Is(err, ErrDegenerateInput) match.
func (e *DegenerateInputError) Is(target error) bool {
	return target == ErrDegenerateInput
}

// InvalidMethodError reports an unrecognized method selector.
type InvalidMethodError struct {
	Method string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("collision: invalid method %q, expected %q or %q", e.Method, MethodConvex, MethodBox)
}

// Is lets errors.Is(err, ErrInvalidMethod) match.
func (e *InvalidMethodError) Is(target error) bool {
	return target == ErrInvalidMethod
}

func degenerate(op, format string, args ...interface{}) error {
	return &DegenerateInputError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
