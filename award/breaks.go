package award

import "time"

// =============================================================================
// BREAK OVERLAP - Unpaid time inside a rule period
// =============================================================================

// BreakOverlap returns the total time within p covered by the given
// breaks. Intervals are half-open, so a break touching a period boundary
// exactly does not overlap it.
func BreakOverlap(p Period, breaks []BreakPeriod) time.Duration {
	var total time.Duration
	for _, b := range breaks {
		if ov, ok := Intersect(p.Start, p.End, b.Start, b.End); ok {
			total += ov.Duration()
		}
	}
	return total
}

// TotalBreak returns the summed duration of all breaks.
func TotalBreak(breaks []BreakPeriod) time.Duration {
	var total time.Duration
	for _, b := range breaks {
		total += b.Duration()
	}
	return total
}

// InBreak reports whether the minute starting at t falls inside any break.
func InBreak(t time.Time, breaks []BreakPeriod) bool {
	for _, b := range breaks {
		if !t.Before(b.Start) && t.Before(b.End) {
			return true
		}
	}
	return false
}
