/*
handlers.go - HTTP API handlers for the wage engine

PURPOSE:
  Exposes the award pay and withholding engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Guides:
    GET    /api/guides                   List pay guides
    POST   /api/guides                   Create/replace a guide from config JSON
    GET    /api/guides/{id}              Get full guide config

  Shifts:
    POST   /api/shifts                   Calculate (and store) a shift
    GET    /api/shifts/{id}              Get a stored shift
    GET    /api/users/{id}/shifts        List a user's shifts in a range

  Tax:
    GET    /api/users/{id}/tax-settings  Get withholding declaration
    PUT    /api/users/{id}/tax-settings  Update withholding declaration
    POST   /api/users/{id}/pay-periods/sync  Sync one pay period
    GET    /api/users/{id}/pay-periods   List synced pay periods
    GET    /api/users/{id}/ytd           Year-to-date totals

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Syncer: Pay-period synchronization
  - Cached per-guide calculators (rule tables rarely change)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/wage-engine/award"
	"github.com/warp/wage-engine/factory"
	"github.com/warp/wage-engine/payperiod"
	"github.com/warp/wage-engine/store"
	"github.com/warp/wage-engine/tax"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  store.Store
	Syncer *payperiod.Syncer
	Logger *log.Logger

	// Per-guide calculators, invalidated when a guide is saved.
	mu          sync.RWMutex
	calculators map[string]*award.Calculator
}

// NewHandler creates a new handler with the given store and syncer.
func NewHandler(st store.Store, syncer *payperiod.Syncer, logger *log.Logger) *Handler {
	return &Handler{
		Store:       st,
		Syncer:      syncer,
		Logger:      logger,
		calculators: make(map[string]*award.Calculator),
	}
}

// calculatorFor returns the cached calculator for a guide, building it
// from the stored tables on first use.
func (h *Handler) calculatorFor(r *http.Request, guideID string) (*award.Calculator, error) {
	h.mu.RLock()
	calc, ok := h.calculators[guideID]
	h.mu.RUnlock()
	if ok {
		return calc, nil
	}

	guide, penalties, overtimes, holidays, err := h.Store.GetGuide(r.Context(), guideID)
	if err != nil {
		return nil, err
	}
	calc, err = award.NewCalculator(guide, penalties, overtimes, holidays)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.calculators[guideID] = calc
	h.mu.Unlock()
	return calc, nil
}

func (h *Handler) invalidateCalculator(guideID string) {
	h.mu.Lock()
	delete(h.calculators, guideID)
	h.mu.Unlock()
}

// =============================================================================
// GUIDE HANDLERS
// =============================================================================

// CreateGuide creates or replaces a pay guide from a config document.
func (h *Handler) CreateGuide(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	cfg, err := factory.ParseConfig(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid guide config", err)
		return
	}
	// Building the calculator validates the guide and every rule window.
	if _, err := cfg.BuildCalculator(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid guide config", err)
		return
	}

	guide, err := cfg.Guide()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid guide config", err)
		return
	}
	err = h.Store.SaveGuide(r.Context(), guide, cfg.PenaltyRules(), cfg.OvertimeRules(), cfg.PublicHolidays())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save guide", err)
		return
	}
	h.invalidateCalculator(guide.ID)

	h.Logger.Info("guide saved", "guide", guide.ID,
		"penalties", len(cfg.Penalties), "overtimes", len(cfg.Overtimes))
	writeJSON(w, http.StatusCreated, factory.FromDomain(guide, cfg.PenaltyRules(), cfg.OvertimeRules(), cfg.PublicHolidays()))
}

// ListGuides returns all pay guides.
func (h *Handler) ListGuides(w http.ResponseWriter, r *http.Request) {
	guides, err := h.Store.ListGuides(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list guides", err)
		return
	}

	dtos := make([]GuideSummaryDTO, len(guides))
	for i, g := range guides {
		dtos[i] = toGuideSummaryDTO(g)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetGuide returns one guide with its full rule tables.
func (h *Handler) GetGuide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	guide, penalties, overtimes, holidays, err := h.Store.GetGuide(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Guide not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get guide", err)
		return
	}

	writeJSON(w, http.StatusOK, factory.FromDomain(guide, penalties, overtimes, holidays))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// CalculateShift calculates pay for a worked shift and, unless dry_run is
// set, persists it.
func (h *Handler) CalculateShift(w http.ResponseWriter, r *http.Request) {
	var req CalculateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.GuideID == "" {
		writeError(w, http.StatusBadRequest, "guide_id is required", nil)
		return
	}
	if !req.DryRun && req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	calc, err := h.calculatorFor(r, req.GuideID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Guide not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load guide", err)
		return
	}

	breaks := toBreakPeriods(req.Breaks)
	breakdown, err := calc.Calculate(req.Start, req.End, breaks)
	if err != nil {
		status := http.StatusInternalServerError
		if award.IsPreconditionError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Shift calculation failed", err)
		return
	}

	if req.DryRun {
		writeJSON(w, http.StatusOK, toBreakdownDTO(breakdown))
		return
	}

	shift := store.Shift{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		GuideID:   req.GuideID,
		Start:     req.Start,
		End:       req.End,
		Breaks:    breaks,
		Breakdown: breakdown,
	}
	if err := h.Store.SaveShift(r.Context(), shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save shift", err)
		return
	}

	h.Logger.Info("shift calculated", "shift", shift.ID, "user", req.UserID,
		"total", breakdown.TotalPay.String())
	writeJSON(w, http.StatusCreated, toShiftDTO(shift))
}

// GetShift returns one stored shift.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	shift, err := h.Store.GetShift(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(shift))
}

// ListUserShifts returns a user's shifts, optionally bounded by
// from/to query parameters (RFC3339).
func (h *Handler) ListUserShifts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	from := time.Time{}
	to := time.Now().UTC().AddDate(1, 0, 0)
	var err error
	if q := r.URL.Query().Get("from"); q != "" {
		if from, err = time.Parse(time.RFC3339, q); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from parameter (use RFC3339)", err)
			return
		}
	}
	if q := r.URL.Query().Get("to"); q != "" {
		if to, err = time.Parse(time.RFC3339, q); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to parameter (use RFC3339)", err)
			return
		}
	}

	shifts, err := h.Store.ListShifts(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TAX SETTINGS HANDLERS
// =============================================================================

// GetTaxSettings returns a user's withholding declaration.
func (h *Handler) GetTaxSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	settings, err := h.Store.GetTaxSettings(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Tax settings not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get tax settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toTaxSettingsDTO(settings))
}

// UpdateTaxSettings replaces a user's withholding declaration.
func (h *Handler) UpdateTaxSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req TaxSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	exemption := tax.MedicareExemption(req.MedicareExemption)
	switch exemption {
	case tax.MedicareNone, tax.MedicareHalf, tax.MedicareFull:
	default:
		writeError(w, http.StatusBadRequest, "medicare_exemption must be empty, half, or full", nil)
		return
	}
	periodType := tax.PayPeriodType(req.PayPeriodType)
	switch periodType {
	case tax.PeriodWeekly, tax.PeriodFortnightly, tax.PeriodMonthly:
	default:
		writeError(w, http.StatusBadRequest, "pay_period_type must be weekly, fortnightly, or monthly", nil)
		return
	}

	settings := store.TaxSettings{
		UserID: userID,
		Settings: tax.Settings{
			ClaimsTaxFreeThreshold: req.ClaimsTaxFreeThreshold,
			ForeignResident:        req.ForeignResident,
			HasTFN:                 req.HasTFN,
			MedicareExemption:      exemption,
			HasSTSLDebt:            req.HasSTSLDebt,
		},
		PayPeriodType: periodType,
	}
	if err := h.Store.SaveTaxSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save tax settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toTaxSettingsDTO(settings))
}

// =============================================================================
// PAY PERIOD HANDLERS
// =============================================================================

// SyncPayPeriod recomputes one pay period and its withholding.
func (h *Handler) SyncPayPeriod(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req SyncPayPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Start.IsZero() {
		writeError(w, http.StatusBadRequest, "start is required", nil)
		return
	}

	period, err := h.Syncer.Sync(r.Context(), userID, req.Start)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Tax settings not found for user", err)
		return
	}
	if errors.Is(err, tax.ErrUnsupportedPayPeriod) {
		writeError(w, http.StatusBadRequest, "Unsupported pay period type", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Pay period sync failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayPeriodDTO(period))
}

// ListPayPeriods returns a user's synced pay periods.
func (h *Handler) ListPayPeriods(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	periods, err := h.Store.ListPayPeriods(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pay periods", err)
		return
	}

	dtos := make([]PayPeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPayPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetYearToDate returns the running totals for one tax year. The year
// query parameter defaults to the current tax year.
func (h *Handler) GetYearToDate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	taxYear := tax.TaxYearFor(time.Now())
	if q := r.URL.Query().Get("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year parameter", err)
			return
		}
		taxYear = y
	}

	ytd, err := h.Store.GetYearToDate(r.Context(), userID, taxYear)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get year-to-date", err)
		return
	}
	writeJSON(w, http.StatusOK, toYearToDateDTO(ytd))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
