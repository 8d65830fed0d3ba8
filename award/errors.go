/*
errors.go - Centralized error types for the pay engine

PURPOSE:
  All error values in one place for consistency and discoverability.
  Precondition violations carry the exact user-facing message the
  surrounding application surfaces as a validation error.

ERROR CATEGORIES:
  1. Shift/break precondition violations - caller input errors
  2. Pay-guide configuration errors - malformed award setup

Missing rule matches are NOT errors: an uncovered sub-interval is simply
paid at the base rate, and zeroed overtime rules are silently skipped
because the engine processes externally-authored tables it does not own.
*/
package award

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrShiftTooShort is returned when a shift's end equals its start.
	ErrShiftTooShort = errors.New("Shift must be at least 1 minute long")

	// ErrEndBeforeStart is returned when a shift ends before it starts.
	ErrEndBeforeStart = errors.New("End time must be after start time")

	// ErrBreakEndBeforeStart is returned when a break's end is not after
	// its start.
	ErrBreakEndBeforeStart = errors.New("Break end time must be after break start time")

	// ErrBreakOutsideShift is returned when a break extends beyond the
	// shift span.
	ErrBreakOutsideShift = errors.New("Break periods must be within shift duration")

	// ErrBreaksExceedShift is returned when total break time is at least
	// the shift duration.
	ErrBreaksExceedShift = errors.New("Total break time cannot exceed shift duration")

	// Pay-guide configuration errors. These indicate a caller bug, not
	// bad shift input.
	ErrNegativeBaseRate     = errors.New("base rate cannot be negative")
	ErrInvalidMaximumHours  = errors.New("maximum shift hours must be positive")
	ErrNegativeMinimumHours = errors.New("minimum shift hours cannot be negative")
	ErrMinimumAboveMaximum  = errors.New("minimum shift hours cannot exceed maximum shift hours")
)

// IsPreconditionError reports whether the error is a shift/break input
// violation the caller should surface as a user-facing validation error.
// Never retried.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrShiftTooShort) ||
		errors.Is(err, ErrEndBeforeStart) ||
		errors.Is(err, ErrBreakEndBeforeStart) ||
		errors.Is(err, ErrBreakOutsideShift) ||
		errors.Is(err, ErrBreaksExceedShift)
}

// IsConfigError reports whether the error indicates malformed pay-guide
// configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNegativeBaseRate) ||
		errors.Is(err, ErrInvalidMaximumHours) ||
		errors.Is(err, ErrNegativeMinimumHours) ||
		errors.Is(err, ErrMinimumAboveMaximum)
}
