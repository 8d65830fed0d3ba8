package factory_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/wage-engine/factory"
	"github.com/warp/wage-engine/tax"
)

const retailCasualJSON = `{
  "pay_guide": {
    "id": "retail-casual",
    "name": "Retail Casual",
    "base_rate": "25.41",
    "minimum_shift_hours": "3",
    "maximum_shift_hours": "11",
    "effective_from": "2024-07-01"
  },
  "penalty_time_frames": [
    {"id": "sat", "name": "Saturday", "day": 6, "multiplier": "1.5"},
    {"id": "night", "name": "Night", "start": "22:00", "end": "06:00", "multiplier": "1.75"},
    {"id": "hol", "name": "Public holiday", "on_public_holiday": true, "multiplier": "2.5"}
  ],
  "overtime_time_frames": [
    {"id": "ot", "name": "Overtime", "first_tier": "1.75", "second_tier": "2.25"}
  ],
  "public_holidays": [
    {"id": "xmas", "date": "2025-12-25", "name": "Christmas Day", "active": true}
  ]
}`

func TestParseConfig_FullDocument(t *testing.T) {
	cfg, err := factory.ParseConfig([]byte(retailCasualJSON))
	require.NoError(t, err)

	guide, err := cfg.Guide()
	require.NoError(t, err)
	assert.Equal(t, "retail-casual", guide.ID)
	assert.True(t, guide.BaseRate.Equal(decimal.RequireFromString("25.41")))
	assert.Equal(t, factory.DefaultTimezone, guide.Timezone, "omitted timezone defaults")
	assert.Equal(t, 2024, guide.EffectiveFrom.Year())

	penalties := cfg.PenaltyRules()
	require.Len(t, penalties, 3)
	require.NotNil(t, penalties[0].Window.Day)
	assert.Equal(t, time.Saturday, *penalties[0].Window.Day)
	assert.Nil(t, penalties[1].Window.Day)
	assert.Equal(t, "22:00", penalties[1].Window.Start)
	assert.True(t, penalties[2].Window.OnPublicHoliday)

	overtimes := cfg.OvertimeRules()
	require.Len(t, overtimes, 1)
	assert.True(t, overtimes[0].Active())

	holidays := cfg.PublicHolidays()
	require.Len(t, holidays, 1)
	assert.Equal(t, "2025-12-25", holidays[0].Date)
}

func TestParseConfig_Rejections(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed JSON", `{`},
		{"missing guide id", `{"pay_guide": {"name": "x"}}`},
		{"bad holiday date", `{"pay_guide": {"id": "g"}, "public_holidays": [{"id": "h", "date": "25/12/2025"}]}`},
		{"day out of range", `{"pay_guide": {"id": "g"}, "penalty_time_frames": [{"id": "p", "day": 7, "multiplier": "1.5"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.ParseConfig([]byte(tt.json))
			assert.Error(t, err)
		})
	}
}

func TestBuildCalculator_EndToEnd(t *testing.T) {
	cfg, err := factory.ParseConfig([]byte(retailCasualJSON))
	require.NoError(t, err)

	calc, err := cfg.BuildCalculator()
	require.NoError(t, err)

	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// Saturday shift: the configured 1.5x frame applies to every hour.
	start := time.Date(2025, time.March, 8, 10, 0, 0, 0, loc)
	bd, err := calc.Calculate(start, start.Add(8*time.Hour), nil)
	require.NoError(t, err)
	assert.True(t, bd.PenaltyHours.Equal(decimal.NewFromInt(8)), "penalty hours = %v", bd.PenaltyHours)
}

func TestBuildTaxCalculator_DefaultsAndOverride(t *testing.T) {
	cfg, err := factory.ParseConfig([]byte(retailCasualJSON))
	require.NoError(t, err)

	// No tax_tables section: bundled defaults apply.
	c := cfg.BuildTaxCalculator()
	settings := tax.Settings{HasTFN: true, ClaimsTaxFreeThreshold: true}
	res, _, err := c.Calculate(decimal.NewFromInt(2000), tax.PeriodFortnightly, settings, tax.YearToDate{}, time.Now())
	require.NoError(t, err)
	assert.True(t, res.Payg.Equal(decimal.NewFromInt(286)), "payg = %v", res.Payg)

	// Replacement table: a single flat 10% row.
	override := `{
	  "pay_guide": {"id": "g"},
	  "tax_tables": {"coefficients": [{"scale": "2", "from": "0", "a": "0.10"}]}
	}`
	cfg, err = factory.ParseConfig([]byte(override))
	require.NoError(t, err)
	c = cfg.BuildTaxCalculator()
	res, _, err = c.Calculate(decimal.NewFromInt(1000), tax.PeriodWeekly, settings, tax.YearToDate{}, time.Now())
	require.NoError(t, err)
	// 1000.99 * 0.10 = 100.099 -> 100
	assert.True(t, res.Payg.Equal(decimal.NewFromInt(100)), "payg = %v", res.Payg)
}

func TestFromDomain_RoundTrips(t *testing.T) {
	cfg, err := factory.ParseConfig([]byte(retailCasualJSON))
	require.NoError(t, err)

	guide, err := cfg.Guide()
	require.NoError(t, err)
	out := factory.FromDomain(guide, cfg.PenaltyRules(), cfg.OvertimeRules(), cfg.PublicHolidays())

	data, err := json.Marshal(out)
	require.NoError(t, err)
	back, err := factory.ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, cfg.PayGuide.ID, back.PayGuide.ID)
	assert.Len(t, back.Penalties, len(cfg.Penalties))
	assert.Len(t, back.Overtimes, len(cfg.Overtimes))
	assert.Len(t, back.Holidays, len(cfg.Holidays))
	require.NotNil(t, back.Penalties[0].Day)
	assert.Equal(t, 6, *back.Penalties[0].Day)
}
