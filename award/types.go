/*
Package award computes shift pay under Australian casual/award rules.

PURPOSE:
  This package contains the pure calculation core: given a worked shift,
  its unpaid breaks, a pay guide, and externally-authored penalty and
  overtime rule tables, it resolves which rule wins for every sub-interval
  of the shift and produces a full pay breakdown.

KEY CONCEPTS IN THIS FILE (types.go):
  - PayGuide: Base rate, shift-hour bounds, and the award's timezone
  - PenaltyRule / OvertimeRule: Closed set of rule shapes, matched by
    local day-of-week, local time window, or public holiday
  - Period: A derived absolute [start, end) interval, never persisted
  - ShiftPayBreakdown: The calculation output

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Purity: No I/O, no clocks, no shared mutable state; every call owns
     its working state, so concurrent use is safe
  3. Local time: All rule matching happens in the award's IANA timezone;
     inputs and outputs are absolute instants

SEE ALSO:
  - clock.go: Timezone-local wall-clock arithmetic
  - engine.go: Rule resolution (the hard part)
  - calculator.go: Shift pay orchestration
*/
package award

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY GUIDE - Base configuration for an award
// =============================================================================

// PayGuide holds the base rate and shift rules for one award agreement.
// It is immutable input, owned by the configuration layer.
type PayGuide struct {
	ID       string
	Name     string
	BaseRate decimal.Decimal // dollars per hour

	// Shifts shorter than MinimumShiftHours are paid as if they ran to
	// start + MinimumShiftHours. Worked hours beyond MaximumShiftHours
	// are overtime.
	MinimumShiftHours decimal.Decimal
	MaximumShiftHours decimal.Decimal

	// Timezone is the IANA zone all rule windows are expressed in,
	// e.g. "Australia/Sydney".
	Timezone string

	EffectiveFrom time.Time
	EffectiveTo   time.Time // zero value = open-ended
}

// =============================================================================
// RULES - Penalty and overtime time frames
// =============================================================================

// TimeWindow is the shared matching predicate for penalty and overtime
// rules. All fields are optional; an empty window matches unconditionally.
type TimeWindow struct {
	// Day restricts the rule to one local day of week.
	// nil = any day. Sunday=0 .. Saturday=6 (time.Weekday numbering).
	Day *time.Weekday

	// Start/End are local wall-clock bounds in "HH:MM" form. The window
	// may wrap past midnight (End <= Start as minute-of-day); "24:00"
	// means end of day. Empty Start means the whole local day.
	Start string
	End   string

	// OnPublicHoliday makes the rule match on active public holiday
	// dates instead of Day.
	OnPublicHoliday bool
}

// RuleKind discriminates the closed set of rule shapes.
type RuleKind string

const (
	KindPenalty  RuleKind = "penalty"
	KindOvertime RuleKind = "overtime"
)

// PenaltyRule applies a single multiplier to time matched by its window.
type PenaltyRule struct {
	ID         string
	Name       string
	Window     TimeWindow
	Multiplier decimal.Decimal
}

// OvertimeRule carries two multipliers: one for the first three overtime
// hours and one for hours beyond that.
type OvertimeRule struct {
	ID         string
	Name       string
	Window     TimeWindow
	FirstTier  decimal.Decimal // first 3 overtime hours
	SecondTier decimal.Decimal // beyond 3 hours
}

// Active reports whether the rule should be considered at all.
// Externally-authored tables may contain zeroed rows; those are skipped
// rather than rejected.
func (r OvertimeRule) Active() bool {
	return r.FirstTier.IsPositive() && r.SecondTier.IsPositive()
}

// PublicHoliday is a local calendar date in the pay guide's timezone.
type PublicHoliday struct {
	ID     string
	Date   string // "2006-01-02" local date
	Name   string
	Active bool
}

// BreakPeriod is an unpaid absolute [Start, End) interval within a shift.
type BreakPeriod struct {
	Start time.Time
	End   time.Time
}

// Duration returns the break length.
func (b BreakPeriod) Duration() time.Duration { return b.End.Sub(b.Start) }

// =============================================================================
// PERIOD - Derived absolute interval, internal only
// =============================================================================

// Period is a half-open absolute interval [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// Duration returns the period length.
func (p Period) Duration() time.Duration { return p.End.Sub(p.Start) }

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool { return p.Start.IsZero() && p.End.IsZero() }

func (p Period) String() string {
	return "[" + p.Start.Format(time.RFC3339) + ", " + p.End.Format(time.RFC3339) + ")"
}

// =============================================================================
// OUTPUT RECORDS
// =============================================================================

// AppliedPenalty records one penalty rule's resolved contribution.
type AppliedPenalty struct {
	RuleID     string
	Name       string
	Multiplier decimal.Decimal
	Hours      decimal.Decimal
	Pay        decimal.Decimal // cents precision
	Start      time.Time
	End        time.Time
}

// AppliedOvertime records one overtime tier's resolved contribution.
// A rule resolving more than three hours produces two records, one per
// tier.
type AppliedOvertime struct {
	RuleID     string
	Name       string
	Multiplier decimal.Decimal
	Hours      decimal.Decimal
	Pay        decimal.Decimal // cents precision
	Start      time.Time
	End        time.Time
}

// ShiftPayBreakdown is the full result for one worked shift.
// Monetary fields are rounded to cents; intermediate math keeps full
// precision.
type ShiftPayBreakdown struct {
	TotalHours decimal.Decimal

	BaseHours decimal.Decimal
	BasePay   decimal.Decimal

	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal

	PenaltyHours decimal.Decimal
	PenaltyPay   decimal.Decimal

	TotalPay decimal.Decimal

	Penalties []AppliedPenalty
	Overtimes []AppliedOvertime
}
