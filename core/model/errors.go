package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefinedMetric reports a zero denominator or a subset with no data.
	ErrUndefinedMetric = errors.New("undefined metric")
	// ErrInsufficientData reports a windowed calculation below its floor.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrReferenceCycleMissing reports a baseline with no resolvable cycle.
	ErrReferenceCycleMissing = errors.New("reference cycle missing")
)

// SchemaViolation is returned when input rows are missing a column or carry a
// value of the wrong type or range. It is fatal to the whole request.
type SchemaViolation struct {
	Column string
	Row    int
	Msg    string
}

func (e *SchemaViolation) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("schema violation: column %q row %d: %s", e.Column, e.Row, e.Msg)
	}
	return fmt.Sprintf("schema violation: column %q: %s", e.Column, e.Msg)
}

// InsufficientDataError carries the floor a windowed calculation did not meet.
type InsufficientDataError struct {
	What  string
	Floor int
	Got   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %s %d below floor %d", ErrInsufficientData, e.What, e.Got, e.Floor)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// Reason is the machine-readable code attached to an unavailable metric.
type Reason string

const (
	ReasonUndefinedMetric       Reason = "UndefinedMetric"
	ReasonInsufficientData      Reason = "InsufficientData"
	ReasonReferenceCycleMissing Reason = "ReferenceCycleMissing"
)

// ReasonOf maps an error to its reason code. Unknown errors are reported as
// undefined metrics.
func ReasonOf(err error) Reason {
	switch {
	case errors.Is(err, ErrInsufficientData):
		return ReasonInsufficientData
	case errors.Is(err, ErrReferenceCycleMissing):
		return ReasonReferenceCycleMissing
	default:
		return ReasonUndefinedMetric
	}
}
