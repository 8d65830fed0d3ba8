/*
calc.go - Worked-hours math and rounding policy

Stateless helpers shared by the rule engine, the pay calculator, and the
tax package's callers. Free functions: no configuration or identity is
needed, so there is no calculator object to construct.

ROUNDING:
  Money rounds half-up. decimal's Round is half-away-from-zero, which is
  identical for the non-negative values produced here. Final monetary
  outputs carry exactly two decimal places; intermediates keep full
  precision.
*/
package award

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	sixty        = decimal.NewFromInt(60)
	overtimeTier = decimal.NewFromInt(3) // hours paid at the first tier
)

// HoursIn converts a duration to decimal hours at minute granularity.
func HoursIn(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Minute)).Div(sixty)
}

// WorkedHours returns the hours worked in a shift after deducting breaks.
func WorkedHours(shift Period, breaks []BreakPeriod) decimal.Decimal {
	worked := shift.Duration() - BreakOverlap(shift, breaks)
	return HoursIn(worked)
}

// OvertimeHours returns the worked hours beyond the maximum shift hours,
// floored at zero.
func OvertimeHours(worked, maximumShiftHours decimal.Decimal) decimal.Decimal {
	ot := worked.Sub(maximumShiftHours)
	if ot.IsNegative() {
		return decimal.Zero
	}
	return ot
}

// SplitOvertime splits resolved overtime hours into the first-three-hours
// tier and the beyond-three-hours tier.
func SplitOvertime(hours decimal.Decimal) (first, beyond decimal.Decimal) {
	if hours.LessThanOrEqual(overtimeTier) {
		return hours, decimal.Zero
	}
	return overtimeTier, hours.Sub(overtimeTier)
}

// RoundCents rounds to two decimal places, half-up.
func RoundCents(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// RoundDollars rounds to a whole dollar, half-up.
func RoundDollars(d decimal.Decimal) decimal.Decimal { return d.Round(0) }
