package tax

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedPayPeriod indicates a caller bug: an unknown pay-period
// type reached the calculator.
var ErrUnsupportedPayPeriod = errors.New("unsupported pay period type")

var (
	two         = decimal.NewFromInt(2)
	three       = decimal.NewFromInt(3)
	twelve      = decimal.NewFromInt(12)
	thirteen    = decimal.NewFromInt(13)
	paygWeeksPA = decimal.RequireFromString("52.18")
	adjustment  = decimal.RequireFromString("0.99")
)

// Calculator computes PAYG and STSL withholding against fixed coefficient
// tables. The tables are read-only for the calculator's lifetime, so
// concurrent calls are safe.
type Calculator struct {
	coefficients []Coefficient
	stslRates    []StslRate
}

// NewCalculator builds a calculator over the given PAYG and STSL tables.
func NewCalculator(coefficients []Coefficient, stslRates []StslRate) *Calculator {
	return &Calculator{coefficients: coefficients, stslRates: stslRates}
}

// NewDefaultCalculator uses the bundled 2024-25 tables.
func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultCoefficients(), DefaultStslRates())
}

// =============================================================================
// SCALE RESOLUTION
// =============================================================================

// ScaleFor resolves the PAYG scale from user settings, in priority order:
// no TFN beats everything, then foreign residency, then Medicare
// exemptions, then the tax-free threshold claim.
func ScaleFor(s Settings) Scale {
	switch {
	case !s.HasTFN:
		return Scale4
	case s.ForeignResident:
		return Scale3
	case s.MedicareExemption == MedicareFull:
		return Scale5
	case s.MedicareExemption == MedicareHalf:
		return Scale6
	case s.ClaimsTaxFreeThreshold:
		return Scale2
	default:
		return Scale1
	}
}

// StslScaleFor resolves the Schedule 8 scale.
func StslScaleFor(s Settings) Scale {
	if s.ClaimsTaxFreeThreshold || s.ForeignResident {
		return StslWithThreshold
	}
	return StslNoThreshold
}

// =============================================================================
// CALCULATE
// =============================================================================

// Calculate derives the withholding breakdown for one period's gross pay
// and rolls it onto the year-to-date snapshot. The returned snapshot is
// the only mutation the caller should persist.
func (c *Calculator) Calculate(gross decimal.Decimal, period PayPeriodType, settings Settings, ytd YearToDate, at time.Time) (Result, YearToDate, error) {
	if err := validatePeriod(period); err != nil {
		return Result{}, YearToDate{}, err
	}

	res := Result{
		Gross:        gross,
		Scale:        ScaleFor(settings),
		StslScale:    StslScaleFor(settings),
		CalculatedAt: at,
	}

	// PAYG: period -> weekly equivalent -> floor + 0.99 -> bracket
	// formula -> back to the period's cadence -> whole dollars.
	weekly := toWeeklyPayg(gross, period)
	adjusted := adjust(weekly)
	w, found := applyBracket(c.coefficients, res.Scale, adjusted)
	if !found && adjusted.IsPositive() {
		res.MissingBracket = true
	}
	res.Payg = fromWeeklyPayg(w, period).Round(0)

	// STSL: identical shape, its own monthly factor and scale.
	res.Stsl = decimal.Zero
	if settings.HasSTSLDebt {
		stslWeekly := adjust(toWeeklyStsl(gross, period))
		s, found := applyBracket(c.stslRates, res.StslScale, stslWeekly)
		if !found && stslWeekly.IsPositive() {
			res.MissingBracket = true
		}
		res.Stsl = fromWeeklyStsl(s, period).Round(0)
	}

	res.TotalWithheld = res.Payg.Add(res.Stsl)
	res.Net = gross.Sub(res.TotalWithheld).Round(2)

	updated := ytd
	updated.Gross = ytd.Gross.Add(gross)
	updated.Payg = ytd.Payg.Add(res.Payg)
	updated.Stsl = ytd.Stsl.Add(res.Stsl)
	updated.TotalWithheld = ytd.TotalWithheld.Add(res.TotalWithheld)
	updated.UpdatedAt = at

	return res, updated, nil
}

func validatePeriod(p PayPeriodType) error {
	switch p {
	case PeriodWeekly, PeriodFortnightly, PeriodMonthly:
		return nil
	default:
		return ErrUnsupportedPayPeriod
	}
}

// =============================================================================
// WEEKLY-EQUIVALENT CONVERSION
// =============================================================================
// The PAYG and STSL formulas use different monthly factors (12/52.18 vs
// 3/13). Both are reproduced exactly rather than unified.

func toWeeklyPayg(gross decimal.Decimal, p PayPeriodType) decimal.Decimal {
	switch p {
	case PeriodFortnightly:
		return gross.Div(two)
	case PeriodMonthly:
		return gross.Mul(twelve).Div(paygWeeksPA)
	default:
		return gross
	}
}

func fromWeeklyPayg(weekly decimal.Decimal, p PayPeriodType) decimal.Decimal {
	switch p {
	case PeriodFortnightly:
		return weekly.Mul(two)
	case PeriodMonthly:
		return weekly.Mul(paygWeeksPA).Div(twelve)
	default:
		return weekly
	}
}

func toWeeklyStsl(gross decimal.Decimal, p PayPeriodType) decimal.Decimal {
	switch p {
	case PeriodFortnightly:
		return gross.Div(two)
	case PeriodMonthly:
		return gross.Mul(three).Div(thirteen)
	default:
		return gross
	}
}

func fromWeeklyStsl(weekly decimal.Decimal, p PayPeriodType) decimal.Decimal {
	switch p {
	case PeriodFortnightly:
		return weekly.Mul(two)
	case PeriodMonthly:
		return weekly.Mul(thirteen).Div(three)
	default:
		return weekly
	}
}

// adjust applies the ATO's documented convention: floor the weekly
// equivalent to whole dollars and add 99 cents. Required for table-exact
// results.
func adjust(weekly decimal.Decimal) decimal.Decimal {
	return weekly.Floor().Add(adjustment)
}

// =============================================================================
// BRACKET LOOKUP
// =============================================================================

// applyBracket finds the first row for the scale containing the adjusted
// earnings and applies the linear formula, floored at zero. found=false
// means no row matched and the component falls back to zero.
func applyBracket(rows []Coefficient, scale Scale, earnings decimal.Decimal) (decimal.Decimal, bool) {
	for _, r := range rows {
		if r.Scale != scale {
			continue
		}
		if earnings.LessThan(r.EarningsFrom) {
			continue
		}
		if r.EarningsTo != nil && !earnings.LessThan(*r.EarningsTo) {
			continue
		}
		w := earnings.Mul(r.A).Sub(r.B)
		if w.IsNegative() {
			return decimal.Zero, true
		}
		return w, true
	}
	return decimal.Zero, false
}

// =============================================================================
// TAX YEAR
// =============================================================================

// TaxYearFor returns the Australian tax year (July 1 - June 30) that
// contains t, identified by the calendar year the financial year ends in.
func TaxYearFor(t time.Time) int {
	if t.Month() >= time.July {
		return t.Year() + 1
	}
	return t.Year()
}
