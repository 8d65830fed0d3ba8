/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements store.Store using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  pay_guides:      Guide configuration (rates, hour limits, timezone)
  time_frames:     Penalty and overtime rule rows, keyed to their guide
  public_holidays: Holiday dates per guide
  shifts:          Calculated shifts with their stored breakdown
  pay_periods:     Synced periods with their stored withholding result
  tax_settings:    Per-user withholding declarations
  year_to_date:    Running tax-year totals, one row per (user, tax year)

NUMERIC STORAGE:
  All money and hour values are stored as decimal strings, never REAL.
  Withholding and pay amounts must round-trip exactly.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./data/wage.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/store.go: Interface definitions
  - payperiod/: The sync job writing pay_periods and year_to_date
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/wage-engine/award"
	"github.com/warp/wage-engine/store"
	"github.com/warp/wage-engine/tax"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Pay guides
	CREATE TABLE IF NOT EXISTS pay_guides (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_rate TEXT NOT NULL,
		minimum_shift_hours TEXT NOT NULL,
		maximum_shift_hours TEXT NOT NULL,
		timezone TEXT NOT NULL,
		effective_from TEXT,
		effective_to TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Penalty and overtime rule rows. kind discriminates; overtime rows
	-- leave multiplier NULL and penalty rows leave the tiers NULL.
	CREATE TABLE IF NOT EXISTS time_frames (
		id TEXT NOT NULL,
		guide_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		day INTEGER,
		start_time TEXT,
		end_time TEXT,
		on_public_holiday BOOLEAN NOT NULL DEFAULT FALSE,
		multiplier TEXT,
		first_tier TEXT,
		second_tier TEXT,
		position INTEGER NOT NULL,
		PRIMARY KEY (guide_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_time_frames_guide
		ON time_frames(guide_id, kind, position);

	-- Public holidays, local dates per guide
	CREATE TABLE IF NOT EXISTS public_holidays (
		id TEXT NOT NULL,
		guide_id TEXT NOT NULL,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (guide_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_public_holidays_guide_date
		ON public_holidays(guide_id, date);

	-- Calculated shifts with their stored breakdown
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		guide_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		breaks_json TEXT,
		breakdown_json TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: summing a user's shifts inside a pay period
	CREATE INDEX IF NOT EXISTS idx_shifts_user_start
		ON shifts(user_id, start_at);

	-- Synced pay periods with their stored withholding result
	CREATE TABLE IF NOT EXISTS pay_periods (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		period_type TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		gross TEXT NOT NULL,
		result_json TEXT,
		synced_at TEXT NOT NULL,
		UNIQUE(user_id, period_type, start_at)
	);

	CREATE INDEX IF NOT EXISTS idx_pay_periods_user
		ON pay_periods(user_id, start_at);

	-- Per-user withholding declarations
	CREATE TABLE IF NOT EXISTS tax_settings (
		user_id TEXT PRIMARY KEY,
		settings_json TEXT NOT NULL,
		period_type TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Running tax-year totals
	CREATE TABLE IF NOT EXISTS year_to_date (
		user_id TEXT NOT NULL,
		tax_year INTEGER NOT NULL,
		gross TEXT NOT NULL,
		payg TEXT NOT NULL,
		stsl TEXT NOT NULL,
		total_withheld TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, tax_year)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// GUIDE STORE (store.GuideStore interface)
// =============================================================================

// SaveGuide upserts a guide and replaces its rule tables and holidays
// atomically.
func (s *Store) SaveGuide(ctx context.Context, guide award.PayGuide, penalties []award.PenaltyRule, overtimes []award.OvertimeRule, holidays []award.PublicHoliday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO pay_guides
		(id, name, base_rate, minimum_shift_hours, maximum_shift_hours,
		 timezone, effective_from, effective_to, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			base_rate = excluded.base_rate,
			minimum_shift_hours = excluded.minimum_shift_hours,
			maximum_shift_hours = excluded.maximum_shift_hours,
			timezone = excluded.timezone,
			effective_from = excluded.effective_from,
			effective_to = excluded.effective_to,
			updated_at = excluded.updated_at
	`,
		guide.ID, guide.Name,
		guide.BaseRate.String(),
		guide.MinimumShiftHours.String(),
		guide.MaximumShiftHours.String(),
		guide.Timezone,
		nullTime(guide.EffectiveFrom), nullTime(guide.EffectiveTo),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save pay guide: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM time_frames WHERE guide_id = ?`, guide.ID); err != nil {
		return fmt.Errorf("failed to clear time frames: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM public_holidays WHERE guide_id = ?`, guide.ID); err != nil {
		return fmt.Errorf("failed to clear holidays: %w", err)
	}

	frameQuery := `
		INSERT INTO time_frames
		(id, guide_id, kind, name, day, start_time, end_time,
		 on_public_holiday, multiplier, first_tier, second_tier, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, r := range penalties {
		_, err = tx.ExecContext(ctx, frameQuery,
			r.ID, guide.ID, string(award.KindPenalty), r.Name,
			nullDay(r.Window.Day), nullString(r.Window.Start), nullString(r.Window.End),
			r.Window.OnPublicHoliday,
			r.Multiplier.String(), nil, nil, i,
		)
		if err != nil {
			return fmt.Errorf("failed to save penalty frame %q: %w", r.ID, err)
		}
	}
	for i, r := range overtimes {
		_, err = tx.ExecContext(ctx, frameQuery,
			r.ID, guide.ID, string(award.KindOvertime), r.Name,
			nullDay(r.Window.Day), nullString(r.Window.Start), nullString(r.Window.End),
			r.Window.OnPublicHoliday,
			nil, r.FirstTier.String(), r.SecondTier.String(), i,
		)
		if err != nil {
			return fmt.Errorf("failed to save overtime frame %q: %w", r.ID, err)
		}
	}

	for _, h := range holidays {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO public_holidays (id, guide_id, date, name, active)
			VALUES (?, ?, ?, ?, ?)
		`, h.ID, guide.ID, h.Date, h.Name, h.Active)
		if err != nil {
			return fmt.Errorf("failed to save holiday %q: %w", h.ID, err)
		}
	}

	return tx.Commit()
}

// GetGuide loads a guide with its rule tables and holidays.
func (s *Store) GetGuide(ctx context.Context, id string) (award.PayGuide, []award.PenaltyRule, []award.OvertimeRule, []award.PublicHoliday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guide, err := s.scanGuide(s.db.QueryRowContext(ctx, `
		SELECT id, name, base_rate, minimum_shift_hours, maximum_shift_hours,
		       timezone, effective_from, effective_to
		FROM pay_guides WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return award.PayGuide{}, nil, nil, nil, store.ErrNotFound
	}
	if err != nil {
		return award.PayGuide{}, nil, nil, nil, err
	}

	penalties, overtimes, err := s.loadFrames(ctx, id)
	if err != nil {
		return award.PayGuide{}, nil, nil, nil, err
	}

	holidays, err := s.loadHolidays(ctx, id)
	if err != nil {
		return award.PayGuide{}, nil, nil, nil, err
	}

	return guide, penalties, overtimes, holidays, nil
}

// ListGuides returns all pay guides without their rule tables.
func (s *Store) ListGuides(ctx context.Context) ([]award.PayGuide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, base_rate, minimum_shift_hours, maximum_shift_hours,
		       timezone, effective_from, effective_to
		FROM pay_guides ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pay guides: %w", err)
	}
	defer rows.Close()

	var guides []award.PayGuide
	for rows.Next() {
		g, err := s.scanGuide(rows)
		if err != nil {
			return nil, err
		}
		guides = append(guides, g)
	}
	return guides, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanGuide(row rowScanner) (award.PayGuide, error) {
	var (
		g                  award.PayGuide
		baseRate, min, max string
		from, to           sql.NullString
	)
	err := row.Scan(&g.ID, &g.Name, &baseRate, &min, &max, &g.Timezone, &from, &to)
	if err != nil {
		return g, err
	}
	if g.BaseRate, err = decimal.NewFromString(baseRate); err != nil {
		return g, fmt.Errorf("failed to parse base_rate: %w", err)
	}
	if g.MinimumShiftHours, err = decimal.NewFromString(min); err != nil {
		return g, fmt.Errorf("failed to parse minimum_shift_hours: %w", err)
	}
	if g.MaximumShiftHours, err = decimal.NewFromString(max); err != nil {
		return g, fmt.Errorf("failed to parse maximum_shift_hours: %w", err)
	}
	g.EffectiveFrom = parseNullTime(from)
	g.EffectiveTo = parseNullTime(to)
	return g, nil
}

func (s *Store) loadFrames(ctx context.Context, guideID string) ([]award.PenaltyRule, []award.OvertimeRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, day, start_time, end_time, on_public_holiday,
		       multiplier, first_tier, second_tier
		FROM time_frames WHERE guide_id = ? ORDER BY kind, position
	`, guideID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query time frames: %w", err)
	}
	defer rows.Close()

	var penalties []award.PenaltyRule
	var overtimes []award.OvertimeRule
	for rows.Next() {
		var (
			id, kind, name              string
			day                         sql.NullInt64
			start, end                  sql.NullString
			onHoliday                   bool
			mult, firstTier, secondTier sql.NullString
		)
		err := rows.Scan(&id, &kind, &name, &day, &start, &end, &onHoliday,
			&mult, &firstTier, &secondTier)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan time frame: %w", err)
		}

		window := award.TimeWindow{
			Start:           start.String,
			End:             end.String,
			OnPublicHoliday: onHoliday,
		}
		if day.Valid {
			d := time.Weekday(day.Int64)
			window.Day = &d
		}

		switch award.RuleKind(kind) {
		case award.KindPenalty:
			m, err := decimal.NewFromString(mult.String)
			if err != nil {
				return nil, nil, fmt.Errorf("frame %q: failed to parse multiplier: %w", id, err)
			}
			penalties = append(penalties, award.PenaltyRule{
				ID: id, Name: name, Window: window, Multiplier: m,
			})
		case award.KindOvertime:
			first, err := decimal.NewFromString(firstTier.String)
			if err != nil {
				return nil, nil, fmt.Errorf("frame %q: failed to parse first_tier: %w", id, err)
			}
			second, err := decimal.NewFromString(secondTier.String)
			if err != nil {
				return nil, nil, fmt.Errorf("frame %q: failed to parse second_tier: %w", id, err)
			}
			overtimes = append(overtimes, award.OvertimeRule{
				ID: id, Name: name, Window: window,
				FirstTier: first, SecondTier: second,
			})
		default:
			return nil, nil, fmt.Errorf("frame %q: unknown kind %q", id, kind)
		}
	}
	return penalties, overtimes, rows.Err()
}

func (s *Store) loadHolidays(ctx context.Context, guideID string) ([]award.PublicHoliday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, name, active
		FROM public_holidays WHERE guide_id = ? ORDER BY date
	`, guideID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []award.PublicHoliday
	for rows.Next() {
		var h award.PublicHoliday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.Active); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// SHIFT STORE (store.ShiftStore interface)
// =============================================================================

// breakJSON is the storage shape of one break interval.
type breakJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SaveShift upserts a calculated shift.
func (s *Store) SaveShift(ctx context.Context, shift store.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	breaks := make([]breakJSON, 0, len(shift.Breaks))
	for _, b := range shift.Breaks {
		breaks = append(breaks, breakJSON{Start: b.Start, End: b.End})
	}
	breaksData, err := json.Marshal(breaks)
	if err != nil {
		return fmt.Errorf("failed to marshal breaks: %w", err)
	}

	var breakdownData []byte
	if shift.Breakdown != nil {
		if breakdownData, err = json.Marshal(shift.Breakdown); err != nil {
			return fmt.Errorf("failed to marshal breakdown: %w", err)
		}
	}

	createdAt := shift.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shifts
		(id, user_id, guide_id, start_at, end_at, breaks_json, breakdown_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			guide_id = excluded.guide_id,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			breaks_json = excluded.breaks_json,
			breakdown_json = excluded.breakdown_json
	`,
		shift.ID, shift.UserID, shift.GuideID,
		shift.Start.UTC().Format(time.RFC3339),
		shift.End.UTC().Format(time.RFC3339),
		string(breaksData), nullBytes(breakdownData),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save shift: %w", err)
	}
	return nil
}

// GetShift loads one shift by ID.
func (s *Store) GetShift(ctx context.Context, id string) (store.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, guide_id, start_at, end_at, breaks_json, breakdown_json, created_at
		FROM shifts WHERE id = ?
	`, id)
	shift, err := scanShift(row)
	if err == sql.ErrNoRows {
		return store.Shift{}, store.ErrNotFound
	}
	return shift, err
}

// ListShifts returns a user's shifts starting inside [from, to), ordered
// by start time. This is the pay-period sync query.
func (s *Store) ListShifts(ctx context.Context, userID string, from, to time.Time) ([]store.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, guide_id, start_at, end_at, breaks_json, breakdown_json, created_at
		FROM shifts
		WHERE user_id = ? AND start_at >= ? AND start_at < ?
		ORDER BY start_at ASC
	`, userID, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []store.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

func scanShift(row rowScanner) (store.Shift, error) {
	var (
		shift          store.Shift
		startAt, endAt string
		breaksData     sql.NullString
		breakdownData  sql.NullString
		createdAt      string
	)
	err := row.Scan(&shift.ID, &shift.UserID, &shift.GuideID,
		&startAt, &endAt, &breaksData, &breakdownData, &createdAt)
	if err != nil {
		return shift, err
	}

	if shift.Start, err = time.Parse(time.RFC3339, startAt); err != nil {
		return shift, fmt.Errorf("failed to parse shift start: %w", err)
	}
	if shift.End, err = time.Parse(time.RFC3339, endAt); err != nil {
		return shift, fmt.Errorf("failed to parse shift end: %w", err)
	}
	shift.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if breaksData.Valid && breaksData.String != "" {
		var breaks []breakJSON
		if err := json.Unmarshal([]byte(breaksData.String), &breaks); err != nil {
			return shift, fmt.Errorf("failed to unmarshal breaks: %w", err)
		}
		for _, b := range breaks {
			shift.Breaks = append(shift.Breaks, award.BreakPeriod{Start: b.Start, End: b.End})
		}
	}
	if breakdownData.Valid && breakdownData.String != "" {
		var bd award.ShiftPayBreakdown
		if err := json.Unmarshal([]byte(breakdownData.String), &bd); err != nil {
			return shift, fmt.Errorf("failed to unmarshal breakdown: %w", err)
		}
		shift.Breakdown = &bd
	}

	return shift, nil
}

// =============================================================================
// PAY PERIOD STORE (store.PayPeriodStore interface)
// =============================================================================

// SavePayPeriod upserts a synced pay period, keyed on
// (user, period type, start).
func (s *Store) SavePayPeriod(ctx context.Context, period store.PayPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resultData []byte
	if period.Result != nil {
		var err error
		if resultData, err = json.Marshal(period.Result); err != nil {
			return fmt.Errorf("failed to marshal tax result: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pay_periods
		(id, user_id, period_type, start_at, end_at, gross, result_json, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, period_type, start_at) DO UPDATE SET
			end_at = excluded.end_at,
			gross = excluded.gross,
			result_json = excluded.result_json,
			synced_at = excluded.synced_at
	`,
		period.ID, period.UserID, string(period.Type),
		period.Start.UTC().Format(time.RFC3339),
		period.End.UTC().Format(time.RFC3339),
		period.Gross.String(), nullBytes(resultData),
		period.SyncedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save pay period: %w", err)
	}
	return nil
}

// GetPayPeriod loads one pay period by its natural key.
func (s *Store) GetPayPeriod(ctx context.Context, userID string, periodType tax.PayPeriodType, start time.Time) (store.PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, period_type, start_at, end_at, gross, result_json, synced_at
		FROM pay_periods
		WHERE user_id = ? AND period_type = ? AND start_at = ?
	`, userID, string(periodType), start.UTC().Format(time.RFC3339))
	period, err := scanPayPeriod(row)
	if err == sql.ErrNoRows {
		return store.PayPeriod{}, store.ErrNotFound
	}
	return period, err
}

// ListPayPeriods returns a user's synced pay periods ordered by start.
func (s *Store) ListPayPeriods(ctx context.Context, userID string) ([]store.PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, period_type, start_at, end_at, gross, result_json, synced_at
		FROM pay_periods WHERE user_id = ? ORDER BY start_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pay periods: %w", err)
	}
	defer rows.Close()

	var periods []store.PayPeriod
	for rows.Next() {
		period, err := scanPayPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

func scanPayPeriod(row rowScanner) (store.PayPeriod, error) {
	var (
		period                 store.PayPeriod
		periodType             string
		startAt, endAt, synced string
		gross                  string
		resultData             sql.NullString
	)
	err := row.Scan(&period.ID, &period.UserID, &periodType,
		&startAt, &endAt, &gross, &resultData, &synced)
	if err != nil {
		return period, err
	}

	period.Type = tax.PayPeriodType(periodType)
	if period.Start, err = time.Parse(time.RFC3339, startAt); err != nil {
		return period, fmt.Errorf("failed to parse period start: %w", err)
	}
	if period.End, err = time.Parse(time.RFC3339, endAt); err != nil {
		return period, fmt.Errorf("failed to parse period end: %w", err)
	}
	period.SyncedAt, _ = time.Parse(time.RFC3339, synced)
	if period.Gross, err = decimal.NewFromString(gross); err != nil {
		return period, fmt.Errorf("failed to parse gross: %w", err)
	}

	if resultData.Valid && resultData.String != "" {
		var res tax.Result
		if err := json.Unmarshal([]byte(resultData.String), &res); err != nil {
			return period, fmt.Errorf("failed to unmarshal tax result: %w", err)
		}
		period.Result = &res
	}

	return period, nil
}

// SaveYearToDate upserts the running totals for one (user, tax year).
func (s *Store) SaveYearToDate(ctx context.Context, ytd tax.YearToDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO year_to_date
		(user_id, tax_year, gross, payg, stsl, total_withheld, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, tax_year) DO UPDATE SET
			gross = excluded.gross,
			payg = excluded.payg,
			stsl = excluded.stsl,
			total_withheld = excluded.total_withheld,
			updated_at = excluded.updated_at
	`,
		ytd.UserID, ytd.TaxYear,
		ytd.Gross.String(), ytd.Payg.String(), ytd.Stsl.String(),
		ytd.TotalWithheld.String(),
		ytd.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save year-to-date: %w", err)
	}
	return nil
}

// GetYearToDate loads the running totals for one (user, tax year). A
// missing row returns a zeroed snapshot, not an error: the first sync of
// a tax year starts from zero.
func (s *Store) GetYearToDate(ctx context.Context, userID string, taxYear int) (tax.YearToDate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		ytd                      tax.YearToDate
		gross, payg, stsl, total string
		updated                  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, tax_year, gross, payg, stsl, total_withheld, updated_at
		FROM year_to_date WHERE user_id = ? AND tax_year = ?
	`, userID, taxYear).Scan(&ytd.UserID, &ytd.TaxYear, &gross, &payg, &stsl, &total, &updated)
	if err == sql.ErrNoRows {
		return tax.YearToDate{
			UserID:  userID,
			TaxYear: taxYear,
			Gross:   decimal.Zero, Payg: decimal.Zero,
			Stsl: decimal.Zero, TotalWithheld: decimal.Zero,
		}, nil
	}
	if err != nil {
		return ytd, fmt.Errorf("failed to load year-to-date: %w", err)
	}

	if ytd.Gross, err = decimal.NewFromString(gross); err != nil {
		return ytd, fmt.Errorf("failed to parse ytd gross: %w", err)
	}
	if ytd.Payg, err = decimal.NewFromString(payg); err != nil {
		return ytd, fmt.Errorf("failed to parse ytd payg: %w", err)
	}
	if ytd.Stsl, err = decimal.NewFromString(stsl); err != nil {
		return ytd, fmt.Errorf("failed to parse ytd stsl: %w", err)
	}
	if ytd.TotalWithheld, err = decimal.NewFromString(total); err != nil {
		return ytd, fmt.Errorf("failed to parse ytd total: %w", err)
	}
	ytd.UpdatedAt, _ = time.Parse(time.RFC3339, updated)

	return ytd, nil
}

// =============================================================================
// TAX SETTINGS STORE (store.TaxSettingsStore interface)
// =============================================================================

// SaveTaxSettings upserts a user's withholding declaration.
func (s *Store) SaveTaxSettings(ctx context.Context, settings store.TaxSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settingsData, err := json.Marshal(settings.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal tax settings: %w", err)
	}

	updatedAt := settings.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tax_settings (user_id, settings_json, period_type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			settings_json = excluded.settings_json,
			period_type = excluded.period_type,
			updated_at = excluded.updated_at
	`,
		settings.UserID, string(settingsData),
		string(settings.PayPeriodType),
		updatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save tax settings: %w", err)
	}
	return nil
}

// GetTaxSettings loads a user's withholding declaration.
func (s *Store) GetTaxSettings(ctx context.Context, userID string) (store.TaxSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		settings     store.TaxSettings
		settingsData string
		periodType   string
		updated      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, settings_json, period_type, updated_at
		FROM tax_settings WHERE user_id = ?
	`, userID).Scan(&settings.UserID, &settingsData, &periodType, &updated)
	if err == sql.ErrNoRows {
		return store.TaxSettings{}, store.ErrNotFound
	}
	if err != nil {
		return store.TaxSettings{}, fmt.Errorf("failed to load tax settings: %w", err)
	}

	if err := json.Unmarshal([]byte(settingsData), &settings.Settings); err != nil {
		return store.TaxSettings{}, fmt.Errorf("failed to unmarshal tax settings: %w", err)
	}
	settings.PayPeriodType = tax.PayPeriodType(periodType)
	settings.UpdatedAt, _ = time.Parse(time.RFC3339, updated)

	return settings, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, s.String)
	return t
}

func nullDay(d *time.Weekday) any {
	if d == nil {
		return nil
	}
	return int64(*d)
}
