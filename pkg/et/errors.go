package et

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by errors.Is against the typed errors below
var (
	ErrMissingInput  = errors.New("missing input")
	ErrDomain        = errors.New("value outside physical domain")
	ErrShapeMismatch = errors.New("series length mismatch")
)

// MissingInputError is returned when a quantity a formula needs cannot be derived
// from the inputs the caller supplied.
type MissingInputError struct {
	Input string // name of the missing input
	Need  string // what it was needed for
}

func (e *MissingInputError) Error() string {
	if e.Need == "" {
		return fmt.Sprintf("missing input: %s", e.Input)
	}
	return fmt.Sprintf("missing input: %s (needed for %s)", e.Input, e.Need)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// DomainError is returned when an input produces a physically invalid configuration,
// e.g. a polar latitude/declination pair or a zero wind speed under a wind-divided resistance.
type DomainError struct {
	Quantity string
	Index    int // day index of the offending value, -1 for scalars
	Value    float64
	Reason   string
}

func (e *DomainError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s = %g: %s", e.Quantity, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s[%d] = %g: %s", e.Quantity, e.Index, e.Value, e.Reason)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// at returns a copy of the error positioned at day index i
func (e *DomainError) at(i int) *DomainError {
	c := *e
	c.Index = i
	return &c
}

// ShapeMismatchError is returned when a series does not line up with the day index of a call.
type ShapeMismatchError struct {
	Name string
	Got  int
	Want int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("series %s has %d values, expected %d", e.Name, e.Got, e.Want)
}

func (e *ShapeMismatchError) Is(target error) bool { return target == ErrShapeMismatch }

// asDomain positions a scalar DomainError at index i; other errors pass through.
func asDomain(err error, i int) error {
	var de *DomainError
	if errors.As(err, &de) {
		return de.at(i)
	}
	return err
}
