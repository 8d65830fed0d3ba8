/*
Package store defines the persistence interfaces and record types for the
wage engine.

PURPOSE:
  Separates storage contracts from implementations. The engine packages
  (award, tax) stay pure; everything the application persists goes
  through these interfaces. store/sqlite provides the production
  implementation.

RECORDS:
  Shift:       A worked shift with its stored pay breakdown
  PayPeriod:   A synced pay period with its stored withholding result
  TaxSettings: Per-user withholding declaration (TFN, threshold, STSL)

Pay guides, their time frames, and public holidays are stored relationally
so individual frames can be listed and edited without rewriting the guide.
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/wage-engine/award"
	"github.com/warp/wage-engine/tax"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Shift is a persisted worked shift. The breakdown is stored alongside
// the inputs so a recalculation under changed rules is always detectable.
type Shift struct {
	ID        string
	UserID    string
	GuideID   string
	Start     time.Time
	End       time.Time
	Breaks    []award.BreakPeriod
	Breakdown *award.ShiftPayBreakdown
	CreatedAt time.Time
}

// PayPeriod is a synced pay period: the gross summed from its shifts and
// the withholding result calculated from it.
type PayPeriod struct {
	ID       string
	UserID   string
	Type     tax.PayPeriodType
	Start    time.Time
	End      time.Time
	Gross    decimal.Decimal
	Result   *tax.Result
	SyncedAt time.Time
}

// TaxSettings is a user's withholding declaration plus their pay cadence.
type TaxSettings struct {
	UserID        string
	Settings      tax.Settings
	PayPeriodType tax.PayPeriodType
	UpdatedAt     time.Time
}

// GuideStore persists pay guides with their rule tables and holidays.
type GuideStore interface {
	SaveGuide(ctx context.Context, guide award.PayGuide, penalties []award.PenaltyRule, overtimes []award.OvertimeRule, holidays []award.PublicHoliday) error
	GetGuide(ctx context.Context, id string) (award.PayGuide, []award.PenaltyRule, []award.OvertimeRule, []award.PublicHoliday, error)
	ListGuides(ctx context.Context) ([]award.PayGuide, error)
}

// ShiftStore persists calculated shifts.
type ShiftStore interface {
	SaveShift(ctx context.Context, shift Shift) error
	GetShift(ctx context.Context, id string) (Shift, error)
	ListShifts(ctx context.Context, userID string, from, to time.Time) ([]Shift, error)
}

// PayPeriodStore persists synced pay periods and year-to-date snapshots.
type PayPeriodStore interface {
	SavePayPeriod(ctx context.Context, period PayPeriod) error
	GetPayPeriod(ctx context.Context, userID string, periodType tax.PayPeriodType, start time.Time) (PayPeriod, error)
	ListPayPeriods(ctx context.Context, userID string) ([]PayPeriod, error)
	SaveYearToDate(ctx context.Context, ytd tax.YearToDate) error
	GetYearToDate(ctx context.Context, userID string, taxYear int) (tax.YearToDate, error)
}

// TaxSettingsStore persists per-user withholding declarations.
type TaxSettingsStore interface {
	SaveTaxSettings(ctx context.Context, settings TaxSettings) error
	GetTaxSettings(ctx context.Context, userID string) (TaxSettings, error)
}

// Store is the full persistence surface the application wires together.
type Store interface {
	GuideStore
	ShiftStore
	PayPeriodStore
	TaxSettingsStore
}
