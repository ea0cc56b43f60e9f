package board

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Sentinel errors for the board store. Validation errors are surfaced
// synchronously to the caller that attempted the mutation; execution-time
// errors during automation runs are recorded in run history instead.
var (
	// ErrNotFound indicates an unknown column, item, group, or automation ID.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSettings indicates column settings are absent or malformed
	// for a column type that requires them.
	ErrInvalidSettings = errors.New("invalid column settings")

	// ErrValueTypeMismatch indicates a value whose kind does not match the
	// owning column's type contract.
	ErrValueTypeMismatch = errors.New("value type mismatch")

	// ErrValueOutOfRange indicates a value of the right kind but outside the
	// column's accepted range (timeline start after end, progress outside
	// 0-100, status ID not among the configured labels).
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidAutomation indicates an automation missing a trigger or with
	// zero actions.
	ErrInvalidAutomation = errors.New("invalid automation")

	// ErrCycleDetected indicates an automation chain exceeded the configured
	// depth bound (automation triggering automation).
	ErrCycleDetected = errors.New("automation cycle detected")
)

// ActionError records which action in an automation's sequence failed and why.
// Earlier actions are not rolled back; the run is recorded as a partial failure.
type ActionError struct {
	Index      int
	ActionType ActionType
	Cause      error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d (%s) failed: %v", e.Index, e.ActionType, e.Cause)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

// IsNotFound returns true if the error indicates a missing record, either the
// package sentinel or a raw Redis "key not found" (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, redis.Nil)
}
