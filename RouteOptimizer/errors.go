package RouteOptimizer

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when Optimize is called without points.
	ErrEmptyInput = errors.New("route optimizer: no points supplied")
	// ErrInvalidCoordinate is returned for NaN, infinite or out-of-range coordinates.
	ErrInvalidCoordinate = errors.New("route optimizer: invalid coordinate")
	// ErrDuplicateName is returned when two points share a name and duplicates are rejected.
	ErrDuplicateName = errors.New("route optimizer: duplicate point name")
	// ErrUnsupportedAlgorithm is returned for an unknown Options.Algorithm.
	ErrUnsupportedAlgorithm = errors.New("route optimizer: unsupported algorithm")
	// ErrTooManyPoints is returned when exhaustive search is requested above Options.ExactLimit.
	ErrTooManyPoints = errors.New("route optimizer: too many points for exact search")
)

// CoordinateError describes the point that failed validation.
type CoordinateError struct {
	Index int
	Name  string
	Lat   float64
	Lon   float64
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%v: point %d (%q) has lat=%v lon=%v", ErrInvalidCoordinate, e.Index, e.Name, e.Lat, e.Lon)
}

func (e *CoordinateError) Unwrap() error { return ErrInvalidCoordinate }

// ErrorKind maps an optimizer error to the status string reported to callers.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrEmptyInput):
		return "EmptyInput"
	case errors.Is(err, ErrInvalidCoordinate):
		return "InvalidCoordinate"
	case errors.Is(err, ErrDuplicateName):
		return "DuplicateName"
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return "UnsupportedAlgorithm"
	case errors.Is(err, ErrTooManyPoints):
		return "TooManyPoints"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	default:
		return "InternalError"
	}
}
