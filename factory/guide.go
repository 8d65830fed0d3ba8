/*
Package factory provides JSON to Go pay-guide conversion.

PURPOSE:
  Converts JSON award definitions into award.PayGuide, rule tables,
  holiday lists, and tax coefficient tables. This enables award
  configuration without code changes - payroll admins can define awards
  in JSON, and the factory creates the proper Go structs.

WHY JSON?
  - Non-developers can modify award tables
  - Version control for award definitions
  - Database storage of award configs
  - New financial-year tax tables ship as data

JSON SCHEMA:
  {
    "pay_guide": {
      "id": "retail-casual",
      "name": "Retail Casual",
      "base_rate": "25.41",
      "minimum_shift_hours": "3",
      "maximum_shift_hours": "11",
      "timezone": "Australia/Sydney",
      "effective_from": "2024-07-01",
      "effective_to": "2025-06-30"
    },
    "penalty_time_frames": [
      {"id": "sat", "name": "Saturday", "day": 6, "multiplier": "1.5"},
      {"id": "night", "name": "Night", "start": "22:00", "end": "06:00",
       "multiplier": "1.75"},
      {"id": "hol", "name": "Public holiday", "on_public_holiday": true,
       "multiplier": "2.5"}
    ],
    "overtime_time_frames": [
      {"id": "ot", "name": "Overtime", "first_tier": "1.75",
       "second_tier": "2.25"}
    ],
    "public_holidays": [
      {"id": "xmas", "date": "2025-12-25", "name": "Christmas Day",
       "active": true}
    ],
    "tax_tables": {
      "coefficients": [
        {"scale": "2", "from": "865", "to": "1282",
         "a": "0.3227", "b": "180.0385"}
      ],
      "stsl_rates": [
        {"scale": "WITH_TFT_OR_FR", "from": "1439", "to": "1525",
         "a": "0.0350"}
      ]
    }
  }

KEY FEATURES:
  - Validates structure and date/time formats at parse time
  - Day-of-week as 0=Sunday..6=Saturday
  - Omitted tax tables fall back to the bundled 2024-25 defaults
  - Builds a ready-to-use award.Calculator

USAGE:
  cfg, err := factory.ParseConfig(jsonBytes)
  calc, err := cfg.BuildCalculator()
  taxCalc := cfg.BuildTaxCalculator()

SEE ALSO:
  - award/types.go: PayGuide and rule type definitions
  - tax/tables.go: bundled coefficient data
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/wage-engine/award"
	"github.com/warp/wage-engine/tax"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// Config is the JSON representation of a full award configuration.
type Config struct {
	PayGuide  PayGuideJSON   `json:"pay_guide"`
	Penalties []FrameJSON    `json:"penalty_time_frames,omitempty"`
	Overtimes []FrameJSON    `json:"overtime_time_frames,omitempty"`
	Holidays  []HolidayJSON  `json:"public_holidays,omitempty"`
	TaxTables *TaxTablesJSON `json:"tax_tables,omitempty"`
}

// PayGuideJSON is the JSON representation of a pay guide.
type PayGuideJSON struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	BaseRate          decimal.Decimal `json:"base_rate"`
	MinimumShiftHours decimal.Decimal `json:"minimum_shift_hours"`
	MaximumShiftHours decimal.Decimal `json:"maximum_shift_hours"`
	Timezone          string          `json:"timezone,omitempty"` // Default Australia/Sydney
	EffectiveFrom     string          `json:"effective_from,omitempty"`
	EffectiveTo       string          `json:"effective_to,omitempty"`
}

// FrameJSON is one penalty or overtime time frame. Penalty frames carry
// "multiplier"; overtime frames carry "first_tier" and "second_tier".
type FrameJSON struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Day             *int            `json:"day,omitempty"` // 0=Sunday..6=Saturday
	Start           string          `json:"start,omitempty"`
	End             string          `json:"end,omitempty"`
	OnPublicHoliday bool            `json:"on_public_holiday,omitempty"`
	Multiplier      decimal.Decimal `json:"multiplier,omitempty"`
	FirstTier       decimal.Decimal `json:"first_tier,omitempty"`
	SecondTier      decimal.Decimal `json:"second_tier,omitempty"`
}

// HolidayJSON is one public-holiday row.
type HolidayJSON struct {
	ID     string `json:"id"`
	Date   string `json:"date"` // YYYY-MM-DD, local to the guide's timezone
	Name   string `json:"name,omitempty"`
	Active bool   `json:"active"`
}

// TaxTablesJSON carries replacement withholding tables.
type TaxTablesJSON struct {
	Coefficients []TaxRowJSON `json:"coefficients,omitempty"`
	StslRates    []TaxRowJSON `json:"stsl_rates,omitempty"`
}

// TaxRowJSON is one coefficient row. An empty "to" means open-ended.
type TaxRowJSON struct {
	Scale string           `json:"scale"`
	From  decimal.Decimal  `json:"from"`
	To    *decimal.Decimal `json:"to,omitempty"`
	A     decimal.Decimal  `json:"a"`
	B     decimal.Decimal  `json:"b,omitempty"`
}

// DefaultTimezone applies when a guide omits its timezone.
const DefaultTimezone = "Australia/Sydney"

const dateLayout = "2006-01-02"

// =============================================================================
// PARSING
// =============================================================================

// ParseConfig parses a JSON document into a Config. Structural and format
// errors surface here; semantic validation (multiplier signs, window
// bounds) happens when the calculator is built.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.PayGuide.ID == "" {
		return nil, fmt.Errorf("pay_guide.id is required")
	}
	for _, h := range cfg.Holidays {
		if _, err := time.Parse(dateLayout, h.Date); err != nil {
			return nil, fmt.Errorf("holiday %q: invalid date %q: %w", h.ID, h.Date, err)
		}
	}
	for _, f := range cfg.Penalties {
		if f.Day != nil && (*f.Day < 0 || *f.Day > 6) {
			return nil, fmt.Errorf("penalty frame %q: day must be 0-6, got %d", f.ID, *f.Day)
		}
	}
	for _, f := range cfg.Overtimes {
		if f.Day != nil && (*f.Day < 0 || *f.Day > 6) {
			return nil, fmt.Errorf("overtime frame %q: day must be 0-6, got %d", f.ID, *f.Day)
		}
	}
	return &cfg, nil
}

// =============================================================================
// DOMAIN CONVERSION
// =============================================================================

// Guide converts the pay-guide section to the domain type.
func (c *Config) Guide() (award.PayGuide, error) {
	g := award.PayGuide{
		ID:                c.PayGuide.ID,
		Name:              c.PayGuide.Name,
		BaseRate:          c.PayGuide.BaseRate,
		MinimumShiftHours: c.PayGuide.MinimumShiftHours,
		MaximumShiftHours: c.PayGuide.MaximumShiftHours,
		Timezone:          c.PayGuide.Timezone,
	}
	if g.Timezone == "" {
		g.Timezone = DefaultTimezone
	}

	var err error
	if c.PayGuide.EffectiveFrom != "" {
		g.EffectiveFrom, err = time.Parse(dateLayout, c.PayGuide.EffectiveFrom)
		if err != nil {
			return award.PayGuide{}, fmt.Errorf("invalid effective_from: %w", err)
		}
	}
	if c.PayGuide.EffectiveTo != "" {
		g.EffectiveTo, err = time.Parse(dateLayout, c.PayGuide.EffectiveTo)
		if err != nil {
			return award.PayGuide{}, fmt.Errorf("invalid effective_to: %w", err)
		}
	}
	return g, nil
}

// PenaltyRules converts the penalty frames.
func (c *Config) PenaltyRules() []award.PenaltyRule {
	rules := make([]award.PenaltyRule, 0, len(c.Penalties))
	for _, f := range c.Penalties {
		rules = append(rules, award.PenaltyRule{
			ID:         f.ID,
			Name:       f.Name,
			Window:     frameWindow(f),
			Multiplier: f.Multiplier,
		})
	}
	return rules
}

// OvertimeRules converts the overtime frames.
func (c *Config) OvertimeRules() []award.OvertimeRule {
	rules := make([]award.OvertimeRule, 0, len(c.Overtimes))
	for _, f := range c.Overtimes {
		rules = append(rules, award.OvertimeRule{
			ID:         f.ID,
			Name:       f.Name,
			Window:     frameWindow(f),
			FirstTier:  f.FirstTier,
			SecondTier: f.SecondTier,
		})
	}
	return rules
}

// PublicHolidays converts the holiday rows.
func (c *Config) PublicHolidays() []award.PublicHoliday {
	hols := make([]award.PublicHoliday, 0, len(c.Holidays))
	for _, h := range c.Holidays {
		hols = append(hols, award.PublicHoliday{
			ID:     h.ID,
			Date:   h.Date,
			Name:   h.Name,
			Active: h.Active,
		})
	}
	return hols
}

func frameWindow(f FrameJSON) award.TimeWindow {
	w := award.TimeWindow{
		Start:           f.Start,
		End:             f.End,
		OnPublicHoliday: f.OnPublicHoliday,
	}
	if f.Day != nil {
		day := time.Weekday(*f.Day)
		w.Day = &day
	}
	return w
}

// BuildCalculator assembles the pay calculator for this configuration.
// Semantic errors (bad windows, negative rates) surface here.
func (c *Config) BuildCalculator() (*award.Calculator, error) {
	guide, err := c.Guide()
	if err != nil {
		return nil, err
	}
	return award.NewCalculator(guide, c.PenaltyRules(), c.OvertimeRules(), c.PublicHolidays())
}

// BuildTaxCalculator assembles the tax calculator. Omitted tables fall
// back to the bundled 2024-25 defaults per section.
func (c *Config) BuildTaxCalculator() *tax.Calculator {
	coefficients := tax.DefaultCoefficients()
	stslRates := tax.DefaultStslRates()
	if c.TaxTables != nil {
		if len(c.TaxTables.Coefficients) > 0 {
			coefficients = taxRows(c.TaxTables.Coefficients)
		}
		if len(c.TaxTables.StslRates) > 0 {
			stslRates = taxRows(c.TaxTables.StslRates)
		}
	}
	return tax.NewCalculator(coefficients, stslRates)
}

func taxRows(rows []TaxRowJSON) []tax.Coefficient {
	out := make([]tax.Coefficient, 0, len(rows))
	for _, r := range rows {
		c := tax.Coefficient{
			Scale:        tax.Scale(r.Scale),
			EarningsFrom: r.From,
			A:            r.A,
			B:            r.B,
		}
		if r.To != nil {
			upper := *r.To
			c.EarningsTo = &upper
		}
		out = append(out, c)
	}
	return out
}

// =============================================================================
// REVERSE CONVERSION
// =============================================================================

// FromDomain builds a Config from domain values, for serving stored
// configurations back out as JSON.
func FromDomain(guide award.PayGuide, penalties []award.PenaltyRule, overtimes []award.OvertimeRule, holidays []award.PublicHoliday) Config {
	cfg := Config{
		PayGuide: PayGuideJSON{
			ID:                guide.ID,
			Name:              guide.Name,
			BaseRate:          guide.BaseRate,
			MinimumShiftHours: guide.MinimumShiftHours,
			MaximumShiftHours: guide.MaximumShiftHours,
			Timezone:          guide.Timezone,
		},
	}
	if !guide.EffectiveFrom.IsZero() {
		cfg.PayGuide.EffectiveFrom = guide.EffectiveFrom.Format(dateLayout)
	}
	if !guide.EffectiveTo.IsZero() {
		cfg.PayGuide.EffectiveTo = guide.EffectiveTo.Format(dateLayout)
	}
	for _, r := range penalties {
		f := frameJSON(r.Window)
		f.ID, f.Name, f.Multiplier = r.ID, r.Name, r.Multiplier
		cfg.Penalties = append(cfg.Penalties, f)
	}
	for _, r := range overtimes {
		f := frameJSON(r.Window)
		f.ID, f.Name = r.ID, r.Name
		f.FirstTier, f.SecondTier = r.FirstTier, r.SecondTier
		cfg.Overtimes = append(cfg.Overtimes, f)
	}
	for _, h := range holidays {
		cfg.Holidays = append(cfg.Holidays, HolidayJSON{
			ID: h.ID, Date: h.Date, Name: h.Name, Active: h.Active,
		})
	}
	return cfg
}

func frameJSON(w award.TimeWindow) FrameJSON {
	f := FrameJSON{
		Start:           w.Start,
		End:             w.End,
		OnPublicHoliday: w.OnPublicHoliday,
	}
	if w.Day != nil {
		day := int(*w.Day)
		f.Day = &day
	}
	return f
}
