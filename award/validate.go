package award

import "time"

// =============================================================================
// PRECONDITION CHECKS - Shift, break, and pay-guide validation
// =============================================================================

// ValidateShiftTimes checks the basic shift interval preconditions.
func ValidateShiftTimes(start, end time.Time) error {
	if end.Equal(start) {
		return ErrShiftTooShort
	}
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// ValidateBreaks checks every break against the shift span. Breaks must
// be positive-length, contained in [start, end], and sum to strictly less
// than the shift duration.
func ValidateBreaks(start, end time.Time, breaks []BreakPeriod) error {
	for _, b := range breaks {
		if !b.End.After(b.Start) {
			return ErrBreakEndBeforeStart
		}
		if b.Start.Before(start) || b.End.After(end) {
			return ErrBreakOutsideShift
		}
	}
	if TotalBreak(breaks) >= end.Sub(start) {
		return ErrBreaksExceedShift
	}
	return nil
}

// Validate checks the pay-guide configuration. The timezone is checked
// separately by NewClock.
func (g PayGuide) Validate() error {
	if g.BaseRate.IsNegative() {
		return ErrNegativeBaseRate
	}
	if !g.MaximumShiftHours.IsPositive() {
		return ErrInvalidMaximumHours
	}
	if g.MinimumShiftHours.IsNegative() {
		return ErrNegativeMinimumHours
	}
	if g.MinimumShiftHours.GreaterThan(g.MaximumShiftHours) {
		return ErrMinimumAboveMaximum
	}
	return nil
}
