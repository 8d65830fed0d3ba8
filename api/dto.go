/*
dto.go - Request/response data structures

PURPOSE:
  Defines the JSON shapes crossing the HTTP boundary. Money and hours are
  serialized as decimal strings, never floats: clients echo these values
  onto payslips and must not reformat them.

CONVERSION PATTERN:
  - Request DTOs parse/validate into domain types
  - Domain results convert to response DTOs via toXxxDTO functions
  - Timestamps are RFC3339; local dates are YYYY-MM-DD

SEE ALSO:
  - handlers.go: Handler implementations using these DTOs
  - factory/guide.go: The guide configuration JSON shape (reused as-is)
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/wage-engine/award"
	"github.com/warp/wage-engine/store"
	"github.com/warp/wage-engine/tax"
)

// money renders a monetary amount with exactly two decimal places.
// decimal.String trims trailing zeros, which would turn 203.20 into
// "203.2" on a payslip.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// SHIFTS
// =============================================================================

// BreakDTO is one unpaid break interval.
type BreakDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalculateShiftRequest submits a worked shift for calculation.
type CalculateShiftRequest struct {
	UserID  string     `json:"user_id"`
	GuideID string     `json:"guide_id"`
	Start   time.Time  `json:"start"`
	End     time.Time  `json:"end"`
	Breaks  []BreakDTO `json:"breaks,omitempty"`

	// DryRun calculates without persisting the shift.
	DryRun bool `json:"dry_run,omitempty"`
}

// AppliedRuleDTO is one resolved penalty or overtime contribution.
type AppliedRuleDTO struct {
	RuleID     string    `json:"rule_id"`
	Name       string    `json:"name"`
	Multiplier string    `json:"multiplier"`
	Hours      string    `json:"hours"`
	Pay        string    `json:"pay"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// BreakdownDTO is the full pay breakdown for one shift.
type BreakdownDTO struct {
	TotalHours    string           `json:"total_hours"`
	BaseHours     string           `json:"base_hours"`
	BasePay       string           `json:"base_pay"`
	OvertimeHours string           `json:"overtime_hours"`
	OvertimePay   string           `json:"overtime_pay"`
	PenaltyHours  string           `json:"penalty_hours"`
	PenaltyPay    string           `json:"penalty_pay"`
	TotalPay      string           `json:"total_pay"`
	Penalties     []AppliedRuleDTO `json:"penalties"`
	Overtimes     []AppliedRuleDTO `json:"overtimes"`
}

// ShiftDTO is a persisted shift with its breakdown.
type ShiftDTO struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	GuideID   string        `json:"guide_id"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Breaks    []BreakDTO    `json:"breaks,omitempty"`
	Breakdown *BreakdownDTO `json:"breakdown,omitempty"`
	CreatedAt time.Time     `json:"created_at,omitempty"`
}

func toBreakdownDTO(bd *award.ShiftPayBreakdown) *BreakdownDTO {
	if bd == nil {
		return nil
	}
	dto := &BreakdownDTO{
		TotalHours:    bd.TotalHours.String(),
		BaseHours:     bd.BaseHours.String(),
		BasePay:       money(bd.BasePay),
		OvertimeHours: bd.OvertimeHours.String(),
		OvertimePay:   money(bd.OvertimePay),
		PenaltyHours:  bd.PenaltyHours.String(),
		PenaltyPay:    money(bd.PenaltyPay),
		TotalPay:      money(bd.TotalPay),
		Penalties:     []AppliedRuleDTO{},
		Overtimes:     []AppliedRuleDTO{},
	}
	for _, p := range bd.Penalties {
		dto.Penalties = append(dto.Penalties, AppliedRuleDTO{
			RuleID:     p.RuleID,
			Name:       p.Name,
			Multiplier: p.Multiplier.String(),
			Hours:      p.Hours.String(),
			Pay:        money(p.Pay),
			Start:      p.Start,
			End:        p.End,
		})
	}
	for _, o := range bd.Overtimes {
		dto.Overtimes = append(dto.Overtimes, AppliedRuleDTO{
			RuleID:     o.RuleID,
			Name:       o.Name,
			Multiplier: o.Multiplier.String(),
			Hours:      o.Hours.String(),
			Pay:        money(o.Pay),
			Start:      o.Start,
			End:        o.End,
		})
	}
	return dto
}

func toShiftDTO(s store.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:        s.ID,
		UserID:    s.UserID,
		GuideID:   s.GuideID,
		Start:     s.Start,
		End:       s.End,
		Breakdown: toBreakdownDTO(s.Breakdown),
		CreatedAt: s.CreatedAt,
	}
	for _, b := range s.Breaks {
		dto.Breaks = append(dto.Breaks, BreakDTO{Start: b.Start, End: b.End})
	}
	return dto
}

func toBreakPeriods(breaks []BreakDTO) []award.BreakPeriod {
	out := make([]award.BreakPeriod, 0, len(breaks))
	for _, b := range breaks {
		out = append(out, award.BreakPeriod{Start: b.Start, End: b.End})
	}
	return out
}

// =============================================================================
// GUIDES
// =============================================================================

// GuideSummaryDTO is a pay guide without its rule tables.
type GuideSummaryDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	BaseRate          string `json:"base_rate"`
	MinimumShiftHours string `json:"minimum_shift_hours"`
	MaximumShiftHours string `json:"maximum_shift_hours"`
	Timezone          string `json:"timezone"`
}

func toGuideSummaryDTO(g award.PayGuide) GuideSummaryDTO {
	return GuideSummaryDTO{
		ID:                g.ID,
		Name:              g.Name,
		BaseRate:          money(g.BaseRate),
		MinimumShiftHours: g.MinimumShiftHours.String(),
		MaximumShiftHours: g.MaximumShiftHours.String(),
		Timezone:          g.Timezone,
	}
}

// =============================================================================
// TAX SETTINGS / PAY PERIODS
// =============================================================================

// TaxSettingsDTO is a user's withholding declaration.
type TaxSettingsDTO struct {
	ClaimsTaxFreeThreshold bool   `json:"claims_tax_free_threshold"`
	ForeignResident        bool   `json:"foreign_resident"`
	HasTFN                 bool   `json:"has_tfn"`
	MedicareExemption      string `json:"medicare_exemption,omitempty"` // "", "half", "full"
	HasSTSLDebt            bool   `json:"has_stsl_debt"`
	PayPeriodType          string `json:"pay_period_type"` // weekly, fortnightly, monthly
}

func toTaxSettingsDTO(ts store.TaxSettings) TaxSettingsDTO {
	return TaxSettingsDTO{
		ClaimsTaxFreeThreshold: ts.Settings.ClaimsTaxFreeThreshold,
		ForeignResident:        ts.Settings.ForeignResident,
		HasTFN:                 ts.Settings.HasTFN,
		MedicareExemption:      string(ts.Settings.MedicareExemption),
		HasSTSLDebt:            ts.Settings.HasSTSLDebt,
		PayPeriodType:          string(ts.PayPeriodType),
	}
}

// SyncPayPeriodRequest triggers a pay-period sync.
type SyncPayPeriodRequest struct {
	Start time.Time `json:"start"`
}

// TaxResultDTO is the withholding breakdown for one period.
type TaxResultDTO struct {
	Gross          string `json:"gross"`
	Scale          string `json:"scale"`
	StslScale      string `json:"stsl_scale,omitempty"`
	Payg           string `json:"payg"`
	Stsl           string `json:"stsl"`
	TotalWithheld  string `json:"total_withheld"`
	Net            string `json:"net"`
	MissingBracket bool   `json:"missing_bracket,omitempty"`
}

// PayPeriodDTO is a synced pay period.
type PayPeriodDTO struct {
	ID       string        `json:"id"`
	UserID   string        `json:"user_id"`
	Type     string        `json:"type"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Gross    string        `json:"gross"`
	Result   *TaxResultDTO `json:"result,omitempty"`
	SyncedAt time.Time     `json:"synced_at"`
}

func toTaxResultDTO(res *tax.Result) *TaxResultDTO {
	if res == nil {
		return nil
	}
	return &TaxResultDTO{
		Gross:          money(res.Gross),
		Scale:          string(res.Scale),
		StslScale:      string(res.StslScale),
		Payg:           money(res.Payg),
		Stsl:           money(res.Stsl),
		TotalWithheld:  money(res.TotalWithheld),
		Net:            money(res.Net),
		MissingBracket: res.MissingBracket,
	}
}

func toPayPeriodDTO(p store.PayPeriod) PayPeriodDTO {
	return PayPeriodDTO{
		ID:       p.ID,
		UserID:   p.UserID,
		Type:     string(p.Type),
		Start:    p.Start,
		End:      p.End,
		Gross:    money(p.Gross),
		Result:   toTaxResultDTO(p.Result),
		SyncedAt: p.SyncedAt,
	}
}

// YearToDateDTO is the running totals for one tax year.
type YearToDateDTO struct {
	UserID        string    `json:"user_id"`
	TaxYear       int       `json:"tax_year"`
	Gross         string    `json:"gross"`
	Payg          string    `json:"payg"`
	Stsl          string    `json:"stsl"`
	TotalWithheld string    `json:"total_withheld"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

func toYearToDateDTO(ytd tax.YearToDate) YearToDateDTO {
	return YearToDateDTO{
		UserID:        ytd.UserID,
		TaxYear:       ytd.TaxYear,
		Gross:         money(ytd.Gross),
		Payg:          money(ytd.Payg),
		Stsl:          money(ytd.Stsl),
		TotalWithheld: money(ytd.TotalWithheld),
		UpdatedAt:     ytd.UpdatedAt,
	}
}
