package trit

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when a cell is constructed from a value outside {0,1,2}.
var ErrInvalidState = errors.New("invalid trit state")

// ErrRealityLeak is returned when an operation needs a scalar reading from a cell
// that currently holds the forbidden bit pair 11.
var ErrRealityLeak = errors.New("reality leak: cell in forbidden state 11")

// IsRealityLeak reports whether err was caused by a forbidden-state read.
func IsRealityLeak(err error) bool {
	return errors.Is(err, ErrRealityLeak)
}

func invalidState(v int) error {
	return fmt.Errorf("%w: %d (must be 0, 1 or 2)", ErrInvalidState, v)
}
