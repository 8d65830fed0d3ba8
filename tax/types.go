/*
Package tax derives Australian statutory withholding from period gross
pay: PAYG income tax per ATO Schedule 1 coefficient tables, and STSL
(study loan) repayment per Schedule 8.

PURPOSE:
  Stateless per call. Given immutable settings, coefficient tables, and a
  year-to-date snapshot, it returns a withholding breakdown plus the
  updated snapshot. The snapshot update is the only thing a caller should
  persist, and callers must serialize updates per (user, tax year).

CONVENTIONS (reproduced exactly from the ATO formulas):
  - Gross converts to a weekly equivalent with the period's exact factor.
    The monthly factor DIFFERS between PAYG (x12/52.18) and STSL (x3/13);
    the two are not unified.
  - The weekly equivalent is floored to whole dollars and 0.99 is added
    before bracket lookup and formula application.
  - withholding = A x earnings - B, floored at zero.
  - PAYG and STSL round to whole dollars independently, half-up; net pay
    keeps cents.

A missing bracket row resolves to zero withholding rather than an error:
sparse or unbounded-top-bracket tables are legitimate, and pay processing
must not block on incomplete tables. Callers should log the fallback.
*/
package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY PERIOD
// =============================================================================

// PayPeriodType is the cadence gross pay is expressed in.
type PayPeriodType string

const (
	PeriodWeekly      PayPeriodType = "weekly"
	PeriodFortnightly PayPeriodType = "fortnightly"
	PeriodMonthly     PayPeriodType = "monthly"
)

// =============================================================================
// SCALES
// =============================================================================

// Scale selects a withholding table based on residency/TFN/exemption
// status.
type Scale string

const (
	Scale1 Scale = "1" // no tax-free threshold claimed
	Scale2 Scale = "2" // tax-free threshold claimed
	Scale3 Scale = "3" // foreign resident
	Scale4 Scale = "4" // no TFN provided
	Scale5 Scale = "5" // full Medicare levy exemption
	Scale6 Scale = "6" // half Medicare levy exemption

	// STSL Schedule 8 scales.
	StslWithThreshold Scale = "WITH_TFT_OR_FR"
	StslNoThreshold   Scale = "NO_TFT"
)

// MedicareExemption is the levy exemption level claimed by the user.
type MedicareExemption string

const (
	MedicareNone MedicareExemption = ""
	MedicareHalf MedicareExemption = "half"
	MedicareFull MedicareExemption = "full"
)

// Settings are the per-user flags that pick the withholding scales.
type Settings struct {
	ClaimsTaxFreeThreshold bool
	ForeignResident        bool
	HasTFN                 bool
	MedicareExemption      MedicareExemption

	// HasSTSLDebt enables the Schedule 8 loan repayment component.
	HasSTSLDebt bool
}

// =============================================================================
// COEFFICIENT TABLES
// =============================================================================

// Coefficient is one bracket row of an ATO linear withholding table:
// withholding = A x earnings - B for weekly earnings in
// [EarningsFrom, EarningsTo). A nil EarningsTo is an unbounded top
// bracket. Brackets per scale are assumed contiguous and non-overlapping;
// the calculator does not validate this.
type Coefficient struct {
	Scale        Scale
	EarningsFrom decimal.Decimal
	EarningsTo   *decimal.Decimal
	A            decimal.Decimal
	B            decimal.Decimal
}

// StslRate is a Schedule 8 bracket row. Same shape as Coefficient; the
// scale is StslWithThreshold or StslNoThreshold and B is normally zero.
type StslRate = Coefficient

// =============================================================================
// RESULTS
// =============================================================================

// Result is the withholding breakdown for one pay period.
type Result struct {
	Gross     decimal.Decimal
	Scale     Scale
	StslScale Scale

	// Whole dollars, rounded independently.
	Payg decimal.Decimal
	Stsl decimal.Decimal

	TotalWithheld decimal.Decimal
	Net           decimal.Decimal // cents

	// MissingBracket is set when earnings were positive but no bracket
	// row matched, so a component fell back to zero. Callers should log
	// this for visibility; it is deliberately not an error.
	MissingBracket bool

	CalculatedAt time.Time
}

// YearToDate is the running per-user, per-tax-year withholding total.
// The Australian tax year runs July 1 to June 30; TaxYear is the calendar
// year the financial year ends in (2025 = FY 2024-25).
type YearToDate struct {
	UserID  string
	TaxYear int

	Gross         decimal.Decimal
	Payg          decimal.Decimal
	Stsl          decimal.Decimal
	TotalWithheld decimal.Decimal

	UpdatedAt time.Time
}
