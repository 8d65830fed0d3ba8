/*
Package payperiod synchronizes pay periods with their withholding.

PURPOSE:
  A pay period's gross is the sum of the stored shift totals inside it.
  The sync job recomputes that gross, runs the tax calculator against the
  user's declaration, and persists both the period result and the updated
  year-to-date snapshot.

DESIGN:
  - Updates for one (user, tax year) are serialized with a keyed mutex,
    so concurrent syncs cannot interleave their read-modify-write of the
    year-to-date row.
  - Re-syncing an existing period first backs its previous contribution
    out of the year-to-date totals, then applies the fresh result. Syncs
    are therefore idempotent per period.
  - A missing coefficient bracket is not an error: the result is flagged
    and logged, and the component withholds zero.

USAGE:
  syncer := payperiod.NewSyncer(st, taxCalc, logger)
  period, err := syncer.Sync(ctx, "u1", periodStart)

SEE ALSO:
  - tax/calculator.go: The withholding math
  - store/store.go: PayPeriodStore, ShiftStore, TaxSettingsStore
*/
package payperiod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/wage-engine/store"
	"github.com/warp/wage-engine/tax"
)

// Syncer recomputes pay periods and rolls their withholding onto the
// year-to-date totals.
type Syncer struct {
	store  store.Store
	calc   *tax.Calculator
	logger *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // one per (user, tax year)
}

// NewSyncer creates a syncer over the given store and tax calculator.
func NewSyncer(st store.Store, calc *tax.Calculator, logger *log.Logger) *Syncer {
	return &Syncer{
		store:  st,
		calc:   calc,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Span returns the half-open [start, end) interval of the period of the
// given cadence starting at start. Months use calendar arithmetic.
func Span(periodType tax.PayPeriodType, start time.Time) (time.Time, time.Time, error) {
	switch periodType {
	case tax.PeriodWeekly:
		return start, start.AddDate(0, 0, 7), nil
	case tax.PeriodFortnightly:
		return start, start.AddDate(0, 0, 14), nil
	case tax.PeriodMonthly:
		return start, start.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, tax.ErrUnsupportedPayPeriod
	}
}

// Sync recomputes the pay period starting at start for one user: sums the
// stored shift totals inside the period, calculates withholding, and
// persists the period and the updated year-to-date snapshot.
func (s *Syncer) Sync(ctx context.Context, userID string, start time.Time) (store.PayPeriod, error) {
	settings, err := s.store.GetTaxSettings(ctx, userID)
	if err != nil {
		return store.PayPeriod{}, fmt.Errorf("tax settings for %q: %w", userID, err)
	}

	periodStart, periodEnd, err := Span(settings.PayPeriodType, start)
	if err != nil {
		return store.PayPeriod{}, err
	}

	// The payment date anchors the tax year: a period paid at its end
	// belongs to the year containing that end.
	taxYear := tax.TaxYearFor(periodEnd)

	lock := s.lockFor(userID, taxYear)
	lock.Lock()
	defer lock.Unlock()

	shifts, err := s.store.ListShifts(ctx, userID, periodStart, periodEnd)
	if err != nil {
		return store.PayPeriod{}, fmt.Errorf("shifts for %q: %w", userID, err)
	}
	gross := decimal.Zero
	for _, shift := range shifts {
		if shift.Breakdown == nil {
			continue
		}
		gross = gross.Add(shift.Breakdown.TotalPay)
	}

	ytd, err := s.store.GetYearToDate(ctx, userID, taxYear)
	if err != nil {
		return store.PayPeriod{}, err
	}

	// Re-sync: back the period's previous contribution out of the
	// running totals before applying the fresh result.
	periodID := uuid.NewString()
	existing, err := s.store.GetPayPeriod(ctx, userID, settings.PayPeriodType, periodStart)
	switch {
	case err == nil:
		periodID = existing.ID
		if existing.Result != nil {
			ytd.Gross = ytd.Gross.Sub(existing.Gross)
			ytd.Payg = ytd.Payg.Sub(existing.Result.Payg)
			ytd.Stsl = ytd.Stsl.Sub(existing.Result.Stsl)
			ytd.TotalWithheld = ytd.TotalWithheld.Sub(existing.Result.TotalWithheld)
		}
	case errors.Is(err, store.ErrNotFound):
		// First sync of this period.
	default:
		return store.PayPeriod{}, err
	}

	now := time.Now().UTC()
	result, ytd, err := s.calc.Calculate(gross, settings.PayPeriodType, settings.Settings, ytd, now)
	if err != nil {
		return store.PayPeriod{}, err
	}
	if result.MissingBracket {
		s.logger.Warn("no coefficient bracket matched, component withheld zero",
			"user", userID, "gross", gross.String(), "scale", result.Scale)
	}

	period := store.PayPeriod{
		ID:       periodID,
		UserID:   userID,
		Type:     settings.PayPeriodType,
		Start:    periodStart,
		End:      periodEnd,
		Gross:    gross,
		Result:   &result,
		SyncedAt: now,
	}
	if err := s.store.SavePayPeriod(ctx, period); err != nil {
		return store.PayPeriod{}, err
	}
	if err := s.store.SaveYearToDate(ctx, ytd); err != nil {
		return store.PayPeriod{}, err
	}

	s.logger.Info("pay period synced",
		"user", userID,
		"period", string(settings.PayPeriodType),
		"start", periodStart.Format("2006-01-02"),
		"shifts", len(shifts),
		"gross", gross.String(),
		"withheld", result.TotalWithheld.String(),
	)

	return period, nil
}

func (s *Syncer) lockFor(userID string, taxYear int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s/%d", userID, taxYear)
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}
