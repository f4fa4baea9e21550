package pacing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidArgument reports a rejected constructor or config value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidHandle reports an operation on a released or unknown handle.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrWrongKind reports a handle used with the other component's operation.
	ErrWrongKind = fmt.Errorf("%w: wrong kind", ErrInvalidHandle)
)

func checkInterval(component string, interval float64) error {
	if math.IsNaN(interval) || math.IsInf(interval, 0) {
		return fmt.Errorf("%w: %s interval %v must be finite", ErrInvalidArgument, component, interval)
	}
	if interval < 0 {
		return fmt.Errorf("%w: %s interval %v cannot be negative", ErrInvalidArgument, component, interval)
	}
	return nil
}
