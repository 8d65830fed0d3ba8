/*
engine.go - Penalty/overtime rule resolution

PURPOSE:
  Resolves which rule wins for every sub-interval of a shift. This is the
  hardest part of the system: rule windows are local wall-clock
  predicates, shifts are absolute intervals possibly crossing local
  midnight and DST transitions, and overlapping rules must collapse to
  exactly one winner per instant.

ALGORITHM:
  1. Expand each rule window across the local calendar days spanning the
     shift: a day matches on day-of-week (or unconditionally, or on
     public holiday), the window's absolute bounds are computed per day
     (handling midnight wrap), and the overlap with the shift is kept.
     Day-of-week is evaluated once per local day, so a Friday window
     wrapping into Saturday splits correctly across the two days.
  2. Find the overtime transition instant by walking minute-by-minute
     from shift start, skipping break minutes, until the maximum-shift
     worked-minute budget is exhausted. Breaks never count toward the
     threshold.
  3. Collect every active penalty period, plus (only when overtime hours
     exist) each applicable overtime rule's [transition, shift end)
     period, into one candidate list.
  4. Cut the union of candidate periods at every distinct boundary
     instant; for each minimal segment pick the fully-covering candidate
     with the greatest multiplier (overtime wins ties), then merge
     adjacent segments selecting the same rule. No double-counting: one
     winner per instant.
  5. Price each winner: gross minutes minus overlapping break minutes,
     penalties capped at the shift's remaining regular hours (overtime is
     carved out first), overtime split into its two tiers at the
     three-hour mark.

Uncovered segments carry no rule and are paid at the base rate by the
calculator.
*/
package award

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Engine resolves penalty and overtime rules for shifts under one pay
// guide. Construct once, use from any number of goroutines: all state is
// read-only after NewEngine.
type Engine struct {
	guide     PayGuide
	clock     Clock
	penalties []PenaltyRule
	overtimes []OvertimeRule
	holidays  map[string]bool // active holiday local dates
}

// NewEngine validates the pay guide and rule tables and builds an engine.
// Rule windows are checked here so resolution never has to handle a
// malformed table row.
func NewEngine(guide PayGuide, penalties []PenaltyRule, overtimes []OvertimeRule, holidays []PublicHoliday) (*Engine, error) {
	if err := guide.Validate(); err != nil {
		return nil, err
	}
	clock, err := NewClock(guide.Timezone)
	if err != nil {
		return nil, err
	}
	for _, r := range penalties {
		if err := validateWindow(r.Window); err != nil {
			return nil, fmt.Errorf("penalty rule %q: %w", r.ID, err)
		}
		if r.Multiplier.IsNegative() {
			return nil, fmt.Errorf("penalty rule %q: multiplier cannot be negative", r.ID)
		}
	}
	for _, r := range overtimes {
		if err := validateWindow(r.Window); err != nil {
			return nil, fmt.Errorf("overtime rule %q: %w", r.ID, err)
		}
	}

	hol := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		if h.Active {
			hol[h.Date] = true
		}
	}

	return &Engine{
		guide:     guide,
		clock:     clock,
		penalties: penalties,
		overtimes: overtimes,
		holidays:  hol,
	}, nil
}

// Clock exposes the engine's timezone clock.
func (e *Engine) Clock() Clock { return e.clock }

func validateWindow(w TimeWindow) error {
	if w.Start == "" && w.End == "" {
		return nil
	}
	if w.Start == "" || w.End == "" {
		return errors.New("time window must have both start and end")
	}
	if w.Start == endOfDay {
		return errors.New(`time window cannot start at "24:00"`)
	}
	if _, _, err := parseClockTime(w.Start); err != nil {
		return err
	}
	if _, _, err := parseClockTime(w.End); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// RESOLUTION RESULT
// =============================================================================

// Resolution is the engine's output: every applied rule with its resolved
// hours and pay. Hours and pay here are per-record; the calculator folds
// them into the shift breakdown.
type Resolution struct {
	Penalties []AppliedPenalty
	Overtimes []AppliedOvertime

	PenaltyHours decimal.Decimal
	PenaltyPay   decimal.Decimal

	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal
}

// candidate is one rule period competing for shift sub-intervals.
// kind discriminates the closed rule union; rank is the multiplier used
// for highest-rate selection (the first tier for overtime).
type candidate struct {
	kind     RuleKind
	penalty  PenaltyRule
	overtime OvertimeRule
	rank     decimal.Decimal
	period   Period
}

// segment is a minimal shift sub-interval with its winning candidate.
type segment struct {
	period Period
	cand   *candidate
}

// =============================================================================
// RESOLVE - The main entry point
// =============================================================================

// Resolve tags every rule-covered sub-interval of the shift with its
// winning rule and prices it. The shift must already be validated and
// minimum-hours extended by the caller.
func (e *Engine) Resolve(shift Period, breaks []BreakPeriod) Resolution {
	worked := WorkedHours(shift, breaks)
	potential := OvertimeHours(worked, e.guide.MaximumShiftHours)

	var candidates []*candidate

	for i := range e.penalties {
		r := e.penalties[i]
		for _, p := range e.expandWindow(r.Window, shift) {
			candidates = append(candidates, &candidate{
				kind:    KindPenalty,
				penalty: r,
				rank:    r.Multiplier,
				period:  p,
			})
		}
	}

	if potential.IsPositive() {
		otSpan := Period{Start: e.overtimeTransition(shift, breaks), End: shift.End}
		for i := range e.overtimes {
			r := e.overtimes[i]
			if !r.Active() {
				continue
			}
			if !e.windowActivates(r.Window, shift, otSpan) {
				continue
			}
			candidates = append(candidates, &candidate{
				kind:     KindOvertime,
				overtime: r,
				rank:     r.FirstTier,
				period:   otSpan,
			})
		}
	}

	segments := selectWinners(candidates)
	return e.price(breaks, worked, segments)
}

// =============================================================================
// WINDOW EXPANSION - Local days to absolute periods
// =============================================================================

// expandWindow walks the local calendar days spanning the shift and emits
// one absolute period per matching day with nonzero shift overlap.
func (e *Engine) expandWindow(w TimeWindow, shift Period) []Period {
	var out []Period
	it := e.clock.Days(shift)
	for {
		day, ok := it.Next()
		if !ok {
			break
		}
		if w.OnPublicHoliday {
			// Holiday frames guard on the local date, not day-of-week.
			if !e.holidays[e.clock.LocalDate(day.Start)] {
				continue
			}
		} else if w.Day != nil && e.clock.DayOfWeek(day.Start) != *w.Day {
			continue
		}

		win, err := e.windowBounds(w, day)
		if err != nil {
			// Windows are validated at construction; unreachable.
			continue
		}
		if ov, ok := Intersect(win.Start, win.End, shift.Start, shift.End); ok {
			out = append(out, ov)
		}
	}
	return out
}

// windowBounds computes the absolute bounds of a window anchored on one
// local day. A wrapping window ends on the following local day.
func (e *Engine) windowBounds(w TimeWindow, day Period) (Period, error) {
	if w.Start == "" {
		return day, nil
	}
	start, err := e.clock.LocalTime(day.Start, w.Start)
	if err != nil {
		return Period{}, err
	}
	wraps, err := TimeWraps(w.Start, w.End)
	if err != nil {
		return Period{}, err
	}
	anchor := day.Start
	if wraps {
		anchor = day.End // next local day
	}
	end, err := e.clock.LocalTime(anchor, w.End)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: start, End: end}, nil
}

// windowActivates reports whether an overtime rule's own day/time/holiday
// predicate touches the overtime span. An empty window is unconditional.
func (e *Engine) windowActivates(w TimeWindow, shift, otSpan Period) bool {
	if w.Day == nil && w.Start == "" && !w.OnPublicHoliday {
		return true
	}
	for _, p := range e.expandWindow(w, shift) {
		if _, ok := Intersect(p.Start, p.End, otSpan.Start, otSpan.End); ok {
			return true
		}
	}
	return false
}

// =============================================================================
// OVERTIME TRANSITION - Minute walk with break skipping
// =============================================================================

// overtimeTransition returns the instant at which the cumulative worked
// minutes reach the maximum-shift budget. Break minutes do not count.
func (e *Engine) overtimeTransition(shift Period, breaks []BreakPeriod) time.Time {
	budget := e.guide.MaximumShiftHours.Mul(sixty).IntPart()
	var worked int64
	for t := shift.Start; t.Before(shift.End); t = t.Add(time.Minute) {
		if InBreak(t, breaks) {
			continue
		}
		if worked == budget {
			return t
		}
		worked++
	}
	return shift.End
}

// =============================================================================
// HIGHEST-RATE SELECTION
// =============================================================================

// selectWinners cuts the candidate periods at every distinct boundary and
// picks the best fully-covering candidate per minimal segment, merging
// adjacent segments won by the same candidate.
func selectWinners(candidates []*candidate) []segment {
	if len(candidates) == 0 {
		return nil
	}

	bounds := make([]time.Time, 0, len(candidates)*2)
	for _, c := range candidates {
		bounds = append(bounds, c.period.Start, c.period.End)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i].Before(bounds[j]) })
	uniq := bounds[:1]
	for _, b := range bounds[1:] {
		if !b.Equal(uniq[len(uniq)-1]) {
			uniq = append(uniq, b)
		}
	}

	var segs []segment
	for i := 0; i+1 < len(uniq); i++ {
		seg := Period{Start: uniq[i], End: uniq[i+1]}
		best := bestCandidate(candidates, seg)
		if best == nil {
			continue
		}
		if n := len(segs); n > 0 && segs[n-1].cand == best && segs[n-1].period.End.Equal(seg.Start) {
			segs[n-1].period.End = seg.End
			continue
		}
		segs = append(segs, segment{period: seg, cand: best})
	}
	return segs
}

// bestCandidate picks the greatest-multiplier candidate whose period
// fully covers the segment. At equal multipliers overtime beats penalty.
func bestCandidate(candidates []*candidate, seg Period) *candidate {
	var best *candidate
	for _, c := range candidates {
		if c.period.Start.After(seg.Start) || c.period.End.Before(seg.End) {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		switch {
		case c.rank.GreaterThan(best.rank):
			best = c
		case c.rank.Equal(best.rank) && c.kind == KindOvertime && best.kind == KindPenalty:
			best = c
		}
	}
	return best
}

// =============================================================================
// PRICING - Break deduction, regular-hours cap, tier split
// =============================================================================

func (e *Engine) price(breaks []BreakPeriod, worked decimal.Decimal, segs []segment) Resolution {
	var res Resolution
	rate := e.guide.BaseRate

	// Overtime first: its hours are carved out of the regular pool before
	// penalties are capped.
	type otAggregate struct {
		rule    OvertimeRule
		hours   decimal.Decimal
		periods []Period
	}
	var otAggs []*otAggregate
	otIndex := map[string]*otAggregate{}

	for _, s := range segs {
		if s.cand.kind != KindOvertime {
			continue
		}
		hours := HoursIn(s.period.Duration() - BreakOverlap(s.period, breaks))
		if !hours.IsPositive() {
			continue
		}
		agg := otIndex[s.cand.overtime.ID]
		if agg == nil {
			agg = &otAggregate{rule: s.cand.overtime}
			otIndex[s.cand.overtime.ID] = agg
			otAggs = append(otAggs, agg)
		}
		agg.hours = agg.hours.Add(hours)
		agg.periods = append(agg.periods, s.period)
	}

	for _, agg := range otAggs {
		first, beyond := SplitOvertime(agg.hours)
		start := agg.periods[0].Start
		end := agg.periods[len(agg.periods)-1].End

		if beyond.IsPositive() {
			cut := tierBoundary(agg.periods, breaks, overtimeTier.Mul(sixty).IntPart())
			res.Overtimes = append(res.Overtimes,
				AppliedOvertime{
					RuleID:     agg.rule.ID,
					Name:       agg.rule.Name,
					Multiplier: agg.rule.FirstTier,
					Hours:      first,
					Pay:        RoundCents(first.Mul(rate).Mul(agg.rule.FirstTier)),
					Start:      start,
					End:        cut,
				},
				AppliedOvertime{
					RuleID:     agg.rule.ID,
					Name:       agg.rule.Name,
					Multiplier: agg.rule.SecondTier,
					Hours:      beyond,
					Pay:        RoundCents(beyond.Mul(rate).Mul(agg.rule.SecondTier)),
					Start:      cut,
					End:        end,
				})
		} else {
			res.Overtimes = append(res.Overtimes, AppliedOvertime{
				RuleID:     agg.rule.ID,
				Name:       agg.rule.Name,
				Multiplier: agg.rule.FirstTier,
				Hours:      first,
				Pay:        RoundCents(first.Mul(rate).Mul(agg.rule.FirstTier)),
				Start:      start,
				End:        end,
			})
		}
		res.OvertimeHours = res.OvertimeHours.Add(agg.hours)
	}
	for _, ot := range res.Overtimes {
		res.OvertimePay = res.OvertimePay.Add(ot.Pay)
	}

	// Penalties, chronologically, capped at the remaining regular hours.
	remaining := worked.Sub(res.OvertimeHours)
	for _, s := range segs {
		if s.cand.kind != KindPenalty {
			continue
		}
		hours := HoursIn(s.period.Duration() - BreakOverlap(s.period, breaks))
		if hours.GreaterThan(remaining) {
			hours = remaining
		}
		if !hours.IsPositive() {
			continue
		}
		remaining = remaining.Sub(hours)

		r := s.cand.penalty
		pay := RoundCents(hours.Mul(rate).Mul(r.Multiplier))
		res.Penalties = append(res.Penalties, AppliedPenalty{
			RuleID:     r.ID,
			Name:       r.Name,
			Multiplier: r.Multiplier,
			Hours:      hours,
			Pay:        pay,
			Start:      s.period.Start,
			End:        s.period.End,
		})
		res.PenaltyHours = res.PenaltyHours.Add(hours)
		res.PenaltyPay = res.PenaltyPay.Add(pay)
	}

	return res
}

// tierBoundary walks the overtime periods minute by minute, skipping
// breaks, and returns the instant the first-tier budget is spent.
func tierBoundary(periods []Period, breaks []BreakPeriod, budgetMinutes int64) time.Time {
	var worked int64
	for _, p := range periods {
		for t := p.Start; t.Before(p.End); t = t.Add(time.Minute) {
			if InBreak(t, breaks) {
				continue
			}
			if worked == budgetMinutes {
				return t
			}
			worked++
		}
	}
	return periods[len(periods)-1].End
}
