/*
calculator.go - Shift pay orchestration

Calculate is a pure function of its inputs plus the pay guide and rule
tables fixed at construction: identical inputs always produce identical
output, and concurrent calls are safe.
*/
package award

import (
	"time"

	"github.com/shopspring/decimal"
)

// Calculator turns a worked shift into a full pay breakdown.
type Calculator struct {
	guide  PayGuide
	engine *Engine
}

// NewCalculator builds a calculator for one pay guide and its rule
// tables. Configuration errors surface here, not at calculation time.
func NewCalculator(guide PayGuide, penalties []PenaltyRule, overtimes []OvertimeRule, holidays []PublicHoliday) (*Calculator, error) {
	engine, err := NewEngine(guide, penalties, overtimes, holidays)
	if err != nil {
		return nil, err
	}
	return &Calculator{guide: guide, engine: engine}, nil
}

// Engine exposes the underlying rule engine.
func (c *Calculator) Engine() *Engine { return c.engine }

// Calculate resolves the pay for a shift worked from start to end with
// the given unpaid breaks.
//
// A shift shorter than the guide's minimum shift hours has its end
// extended to start + minimum before rule resolution, so the padded tail
// is subject to whatever rule applies at that later clock time rather
// than being forced to base rate.
func (c *Calculator) Calculate(start, end time.Time, breaks []BreakPeriod) (*ShiftPayBreakdown, error) {
	if err := ValidateShiftTimes(start, end); err != nil {
		return nil, err
	}
	if err := ValidateBreaks(start, end, breaks); err != nil {
		return nil, err
	}

	if c.guide.MinimumShiftHours.IsPositive() {
		minDur := time.Duration(c.guide.MinimumShiftHours.Mul(sixty).IntPart()) * time.Minute
		if end.Sub(start) < minDur {
			end = start.Add(minDur)
		}
	}

	shift := Period{Start: start, End: end}
	total := WorkedHours(shift, breaks)

	res := c.engine.Resolve(shift, breaks)

	baseHours := total.Sub(res.PenaltyHours).Sub(res.OvertimeHours)
	if baseHours.IsNegative() {
		baseHours = decimal.Zero
	}
	basePay := baseHours.Mul(c.guide.BaseRate)
	totalPay := basePay.Add(res.OvertimePay).Add(res.PenaltyPay)

	return &ShiftPayBreakdown{
		TotalHours:    total.Round(2),
		BaseHours:     baseHours.Round(2),
		BasePay:       RoundCents(basePay),
		OvertimeHours: res.OvertimeHours.Round(2),
		OvertimePay:   RoundCents(res.OvertimePay),
		PenaltyHours:  res.PenaltyHours.Round(2),
		PenaltyPay:    RoundCents(res.PenaltyPay),
		TotalPay:      RoundCents(totalPay),
		Penalties:     res.Penalties,
		Overtimes:     res.Overtimes,
	}, nil
}
