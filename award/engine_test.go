package award_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/wage-engine/award"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func weekday(d time.Weekday) *time.Weekday { return &d }

func testGuide() award.PayGuide {
	return award.PayGuide{
		ID:                "guide-1",
		Name:              "Retail Casual",
		BaseRate:          dec("25.41"),
		MinimumShiftHours: decimal.Zero,
		MaximumShiftHours: dec("11"),
		Timezone:          "Australia/Sydney",
	}
}

func newEngine(t *testing.T, guide award.PayGuide, penalties []award.PenaltyRule, overtimes []award.OvertimeRule, holidays []award.PublicHoliday) *award.Engine {
	t.Helper()
	engine, err := award.NewEngine(guide, penalties, overtimes, holidays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return engine
}

func saturdayPenalty(mult string) award.PenaltyRule {
	return award.PenaltyRule{
		ID:         "pen-sat",
		Name:       "Saturday",
		Window:     award.TimeWindow{Day: weekday(time.Saturday)},
		Multiplier: dec(mult),
	}
}

// =============================================================================
// WINDOW EXPANSION
// =============================================================================

func TestEngine_WholeDayPenalty_IntersectsShift(t *testing.T) {
	// GIVEN: A Saturday whole-day penalty and a Saturday shift
	// WHEN: Resolving
	// THEN: The penalty covers exactly the worked shift

	engine := newEngine(t, testGuide(), []award.PenaltyRule{saturdayPenalty("1.5")}, nil, nil)

	// March 8 2025 is a Saturday.
	shift := award.Period{
		Start: syd(2025, time.March, 8, 10, 0),
		End:   syd(2025, time.March, 8, 18, 0),
	}
	res := engine.Resolve(shift, nil)

	if len(res.Penalties) != 1 {
		t.Fatalf("expected 1 penalty, got %d", len(res.Penalties))
	}
	p := res.Penalties[0]
	if !p.Start.Equal(shift.Start) || !p.End.Equal(shift.End) {
		t.Errorf("expected penalty over %v, got [%v, %v)", shift, p.Start, p.End)
	}
	if !p.Hours.Equal(dec("8")) {
		t.Errorf("expected 8 hours, got %v", p.Hours)
	}
}

func TestEngine_DayRuleDoesNotMatchOtherDays(t *testing.T) {
	// GIVEN: A Saturday penalty and a Monday shift
	// WHEN: Resolving
	// THEN: Nothing applies

	engine := newEngine(t, testGuide(), []award.PenaltyRule{saturdayPenalty("1.5")}, nil, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 10, 10, 0), // Monday
		End:   syd(2025, time.March, 10, 18, 0),
	}
	res := engine.Resolve(shift, nil)

	if len(res.Penalties) != 0 {
		t.Fatalf("expected no penalties, got %d", len(res.Penalties))
	}
}

func TestEngine_WrappingWindow_AnchoredOnMatchingDay(t *testing.T) {
	// GIVEN: A Friday 22:00-06:00 night window (wraps past midnight)
	// WHEN: Resolving a shift running Friday evening into Saturday morning
	// THEN: The window is anchored on Friday and covers into Saturday,
	//       because day-of-week is evaluated once per local day

	night := award.PenaltyRule{
		ID:         "pen-night",
		Name:       "Friday night",
		Window:     award.TimeWindow{Day: weekday(time.Friday), Start: "22:00", End: "06:00"},
		Multiplier: dec("1.75"),
	}
	engine := newEngine(t, testGuide(), []award.PenaltyRule{night}, nil, nil)

	// March 7 2025 is a Friday.
	shift := award.Period{
		Start: syd(2025, time.March, 7, 21, 0),
		End:   syd(2025, time.March, 8, 6, 0),
	}
	res := engine.Resolve(shift, nil)

	if len(res.Penalties) != 1 {
		t.Fatalf("expected 1 penalty, got %d", len(res.Penalties))
	}
	p := res.Penalties[0]
	if !p.Start.Equal(syd(2025, time.March, 7, 22, 0)) || !p.End.Equal(syd(2025, time.March, 8, 6, 0)) {
		t.Errorf("expected [Fri 22:00, Sat 06:00), got [%v, %v)", p.Start, p.End)
	}
	if !p.Hours.Equal(dec("8")) {
		t.Errorf("expected 8 hours, got %v", p.Hours)
	}
}

func TestEngine_WindowEndingAtEndOfDay(t *testing.T) {
	// GIVEN: An evening window ending at "24:00"
	// WHEN: Resolving a shift past midnight
	// THEN: The window ends exactly at local midnight

	evening := award.PenaltyRule{
		ID:         "pen-evening",
		Name:       "Evening",
		Window:     award.TimeWindow{Start: "18:00", End: "24:00"},
		Multiplier: dec("1.25"),
	}
	engine := newEngine(t, testGuide(), []award.PenaltyRule{evening}, nil, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 10, 17, 0),
		End:   syd(2025, time.March, 11, 1, 0),
	}
	res := engine.Resolve(shift, nil)

	// The window matches both local days: [Mon 18:00, Tue 00:00) and the
	// Tuesday evening window which misses the shift.
	if len(res.Penalties) != 1 {
		t.Fatalf("expected 1 penalty, got %d", len(res.Penalties))
	}
	p := res.Penalties[0]
	if !p.End.Equal(syd(2025, time.March, 11, 0, 0)) {
		t.Errorf("expected end at local midnight, got %v", p.End)
	}
	if !p.Hours.Equal(dec("6")) {
		t.Errorf("expected 6 hours, got %v", p.Hours)
	}
}

func TestEngine_HolidayWindow_GuardsOnLocalDate(t *testing.T) {
	// GIVEN: A public-holiday penalty and a holiday on Dec 25
	// WHEN: Resolving shifts on and off the holiday
	// THEN: The rule applies only on the holiday date

	holiday := award.PenaltyRule{
		ID:         "pen-hol",
		Name:       "Public holiday",
		Window:     award.TimeWindow{OnPublicHoliday: true},
		Multiplier: dec("2.5"),
	}
	holidays := []award.PublicHoliday{
		{ID: "h1", Date: "2025-12-25", Name: "Christmas Day", Active: true},
		{ID: "h2", Date: "2025-12-26", Name: "Boxing Day", Active: false},
	}
	engine := newEngine(t, testGuide(), []award.PenaltyRule{holiday}, nil, holidays)

	onHoliday := award.Period{
		Start: syd(2025, time.December, 25, 9, 0),
		End:   syd(2025, time.December, 25, 17, 0),
	}
	res := engine.Resolve(onHoliday, nil)
	if len(res.Penalties) != 1 || !res.PenaltyHours.Equal(dec("8")) {
		t.Fatalf("expected 8 holiday hours, got %v", res.PenaltyHours)
	}

	// Inactive holiday date: no match.
	inactive := award.Period{
		Start: syd(2025, time.December, 26, 9, 0),
		End:   syd(2025, time.December, 26, 17, 0),
	}
	res = engine.Resolve(inactive, nil)
	if len(res.Penalties) != 0 {
		t.Fatal("inactive holiday must not match")
	}
}

// =============================================================================
// OVERTIME TRANSITION
// =============================================================================

func TestEngine_OvertimeTransition_SkipsBreakMinutes(t *testing.T) {
	// GIVEN: maximumShiftHours=11 and a 30 minute break mid-shift
	// WHEN: Resolving a 12.5 hour shift span
	// THEN: The overtime span starts 11 worked hours in - break excluded

	overtime := award.OvertimeRule{
		ID:         "ot-std",
		Name:       "Overtime",
		FirstTier:  dec("1.75"),
		SecondTier: dec("2.25"),
	}
	engine := newEngine(t, testGuide(), nil, []award.OvertimeRule{overtime}, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 10, 8, 0),
		End:   syd(2025, time.March, 10, 20, 30),
	}
	breaks := []award.BreakPeriod{
		{Start: syd(2025, time.March, 10, 12, 0), End: syd(2025, time.March, 10, 12, 30)},
	}
	res := engine.Resolve(shift, breaks)

	if len(res.Overtimes) != 1 {
		t.Fatalf("expected 1 overtime record, got %d", len(res.Overtimes))
	}
	ot := res.Overtimes[0]
	// 4h worked 08:00-12:00, break, then 7h more reaches the 11h budget
	// at 19:30.
	if !ot.Start.Equal(syd(2025, time.March, 10, 19, 30)) {
		t.Errorf("expected overtime from 19:30, got %v", ot.Start)
	}
	if !res.OvertimeHours.Equal(dec("1")) {
		t.Errorf("expected 1 overtime hour, got %v", res.OvertimeHours)
	}
	if !ot.Multiplier.Equal(dec("1.75")) {
		t.Errorf("expected first tier multiplier, got %v", ot.Multiplier)
	}
}

func TestEngine_OvertimeSplit_TwoTiers(t *testing.T) {
	// GIVEN: 15 worked hours against an 11 hour maximum (4h overtime)
	// WHEN: Resolving
	// THEN: Two records: 3h at the first tier, 1h at the second

	overtime := award.OvertimeRule{
		ID:         "ot-std",
		Name:       "Overtime",
		FirstTier:  dec("1.75"),
		SecondTier: dec("2.25"),
	}
	engine := newEngine(t, testGuide(), nil, []award.OvertimeRule{overtime}, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 10, 8, 0),
		End:   syd(2025, time.March, 10, 23, 0),
	}
	res := engine.Resolve(shift, nil)

	if len(res.Overtimes) != 2 {
		t.Fatalf("expected 2 overtime records, got %d", len(res.Overtimes))
	}
	first, second := res.Overtimes[0], res.Overtimes[1]
	if !first.Hours.Equal(dec("3")) || !first.Multiplier.Equal(dec("1.75")) {
		t.Errorf("first tier: got %vh at %v", first.Hours, first.Multiplier)
	}
	if !second.Hours.Equal(dec("1")) || !second.Multiplier.Equal(dec("2.25")) {
		t.Errorf("second tier: got %vh at %v", second.Hours, second.Multiplier)
	}
	if !first.End.Equal(syd(2025, time.March, 10, 22, 0)) || !second.Start.Equal(first.End) {
		t.Errorf("tier boundary should be 22:00, got %v / %v", first.End, second.Start)
	}
}

func TestEngine_InactiveOvertimeRule_Skipped(t *testing.T) {
	// GIVEN: An overtime rule with a zeroed multiplier
	// WHEN: Resolving a shift with overtime hours
	// THEN: The rule is silently skipped (externally-authored tables)

	overtime := award.OvertimeRule{
		ID:         "ot-zero",
		Name:       "Misconfigured",
		FirstTier:  decimal.Zero,
		SecondTier: dec("2.25"),
	}
	engine := newEngine(t, testGuide(), nil, []award.OvertimeRule{overtime}, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 10, 8, 0),
		End:   syd(2025, time.March, 10, 20, 0),
	}
	res := engine.Resolve(shift, nil)

	if len(res.Overtimes) != 0 || !res.OvertimeHours.IsZero() {
		t.Errorf("inactive rule must yield no overtime, got %v", res.OvertimeHours)
	}
}

func TestEngine_OvertimeRulePredicate_MustMatch(t *testing.T) {
	// GIVEN: An overtime rule restricted to Sundays
	// WHEN: Resolving a Monday shift with overtime hours
	// THEN: The rule does not activate

	overtime := award.OvertimeRule{
		ID:         "ot-sun",
		Name:       "Sunday overtime",
		Window:     award.TimeWindow{Day: weekday(time.Sunday)},
		FirstTier:  dec("2"),
		SecondTier: dec("2.5"),
	}
	engine := newEngine(t, testGuide(), nil, []award.OvertimeRule{overtime}, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 10, 8, 0), // Monday
		End:   syd(2025, time.March, 10, 20, 0),
	}
	res := engine.Resolve(shift, nil)

	if len(res.Overtimes) != 0 {
		t.Error("Sunday overtime rule must not activate on a Monday")
	}
}

// =============================================================================
// HIGHEST-RATE SELECTION
// =============================================================================

func TestEngine_OverlappingPenalties_HighestMultiplierWins(t *testing.T) {
	// GIVEN: A Saturday 1.5x rule and a night 1.75x rule overlapping it
	// WHEN: Resolving a shift spanning both windows
	// THEN: Each sub-segment goes to the greater multiplier, with no
	//       double counting

	night := award.PenaltyRule{
		ID:         "pen-night",
		Name:       "Friday night",
		Window:     award.TimeWindow{Day: weekday(time.Friday), Start: "22:00", End: "06:00"},
		Multiplier: dec("1.75"),
	}
	engine := newEngine(t, testGuide(),
		[]award.PenaltyRule{saturdayPenalty("1.5"), night}, nil, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 7, 21, 0), // Friday
		End:   syd(2025, time.March, 8, 8, 0),  // Saturday
	}
	res := engine.Resolve(shift, nil)

	if len(res.Penalties) != 2 {
		t.Fatalf("expected 2 penalty records, got %d", len(res.Penalties))
	}
	// [22:00, 06:00) night at 1.75 beats Saturday's 1.5 after midnight;
	// [06:00, 08:00) falls to the Saturday rule.
	first, second := res.Penalties[0], res.Penalties[1]
	if !first.Multiplier.Equal(dec("1.75")) || !first.Hours.Equal(dec("8")) {
		t.Errorf("night segment: got %vh at %v", first.Hours, first.Multiplier)
	}
	if !second.Multiplier.Equal(dec("1.5")) || !second.Hours.Equal(dec("2")) {
		t.Errorf("saturday segment: got %vh at %v", second.Hours, second.Multiplier)
	}
	// One winner per instant: hours sum to worked hours minus the
	// uncovered first hour.
	if !res.PenaltyHours.Equal(dec("10")) {
		t.Errorf("expected 10 penalty hours, got %v", res.PenaltyHours)
	}
}

func TestEngine_EqualMultiplier_OvertimeBeatsPenalty(t *testing.T) {
	// GIVEN: A 1.75x Saturday penalty and a 1.75x overtime rule both
	//        covering the overtime span
	// WHEN: Resolving
	// THEN: The overtime rule wins the tie

	overtime := award.OvertimeRule{
		ID:         "ot-std",
		Name:       "Overtime",
		FirstTier:  dec("1.75"),
		SecondTier: dec("2.25"),
	}
	engine := newEngine(t, testGuide(),
		[]award.PenaltyRule{saturdayPenalty("1.75")},
		[]award.OvertimeRule{overtime}, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 8, 8, 0), // Saturday
		End:   syd(2025, time.March, 8, 20, 0),
	}
	res := engine.Resolve(shift, nil)

	if !res.OvertimeHours.Equal(dec("1")) {
		t.Errorf("expected 1 overtime hour, got %v", res.OvertimeHours)
	}
	// Penalty takes the 11 regular hours only.
	if !res.PenaltyHours.Equal(dec("11")) {
		t.Errorf("expected 11 penalty hours, got %v", res.PenaltyHours)
	}
}

func TestEngine_HigherPenaltyBeatsOvertime(t *testing.T) {
	// GIVEN: A 2.5x holiday penalty and a 1.75x/2.25x overtime rule
	// WHEN: The overtime span falls inside the holiday window
	// THEN: The penalty wins the span; overtime resolves no hours

	holiday := award.PenaltyRule{
		ID:         "pen-hol",
		Name:       "Public holiday",
		Window:     award.TimeWindow{OnPublicHoliday: true},
		Multiplier: dec("2.5"),
	}
	overtime := award.OvertimeRule{
		ID:         "ot-std",
		Name:       "Overtime",
		FirstTier:  dec("1.75"),
		SecondTier: dec("2.25"),
	}
	holidays := []award.PublicHoliday{{ID: "h1", Date: "2025-12-25", Active: true}}
	engine := newEngine(t, testGuide(), []award.PenaltyRule{holiday}, []award.OvertimeRule{overtime}, holidays)

	shift := award.Period{
		Start: syd(2025, time.December, 25, 8, 0),
		End:   syd(2025, time.December, 25, 20, 0),
	}
	res := engine.Resolve(shift, nil)

	if len(res.Overtimes) != 0 {
		t.Fatalf("expected no overtime records, got %d", len(res.Overtimes))
	}
	// The penalty would cover all 12 hours, but resolved hours are
	// capped at the remaining regular hours.
	if !res.PenaltyHours.Equal(dec("12")) {
		t.Errorf("expected 12 penalty hours, got %v", res.PenaltyHours)
	}
}

// =============================================================================
// BREAK DEDUCTION INSIDE RULE PERIODS
// =============================================================================

func TestEngine_BreakInsidePenaltyPeriod_ReducesExactly(t *testing.T) {
	// GIVEN: A 45 minute break fully inside a Saturday penalty period
	// WHEN: Resolving
	// THEN: The penalty hours drop by exactly the break duration

	engine := newEngine(t, testGuide(), []award.PenaltyRule{saturdayPenalty("1.5")}, nil, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 8, 10, 0),
		End:   syd(2025, time.March, 8, 18, 0),
	}
	breaks := []award.BreakPeriod{
		{Start: syd(2025, time.March, 8, 13, 0), End: syd(2025, time.March, 8, 13, 45)},
	}
	res := engine.Resolve(shift, breaks)

	if !res.PenaltyHours.Equal(dec("7.25")) {
		t.Errorf("expected 7.25 penalty hours, got %v", res.PenaltyHours)
	}
}

func TestEngine_BreakSplitAcrossTwoPeriods_ReducesEachProportionally(t *testing.T) {
	// GIVEN: Two adjacent penalty windows and one break straddling their
	//        boundary
	// WHEN: Resolving
	// THEN: Each period loses exactly its contained share of the break

	day := award.PenaltyRule{
		ID:         "pen-day",
		Name:       "Saturday day",
		Window:     award.TimeWindow{Day: weekday(time.Saturday), Start: "08:00", End: "14:00"},
		Multiplier: dec("1.5"),
	}
	// Different multiplier so the two segments stay distinct records.
	afternoon := award.PenaltyRule{
		ID:         "pen-arvo",
		Name:       "Saturday afternoon",
		Window:     award.TimeWindow{Day: weekday(time.Saturday), Start: "14:00", End: "20:00"},
		Multiplier: dec("1.75"),
	}
	engine := newEngine(t, testGuide(), []award.PenaltyRule{day, afternoon}, nil, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 8, 10, 0),
		End:   syd(2025, time.March, 8, 18, 0),
	}
	breaks := []award.BreakPeriod{
		{Start: syd(2025, time.March, 8, 13, 30), End: syd(2025, time.March, 8, 14, 30)},
	}
	res := engine.Resolve(shift, breaks)

	if len(res.Penalties) != 2 {
		t.Fatalf("expected 2 penalty records, got %d", len(res.Penalties))
	}
	// Day window 10:00-14:00 loses 30m, afternoon 14:00-18:00 loses 30m.
	if !res.Penalties[0].Hours.Equal(dec("3.5")) {
		t.Errorf("day window: expected 3.5 hours, got %v", res.Penalties[0].Hours)
	}
	if !res.Penalties[1].Hours.Equal(dec("3.5")) {
		t.Errorf("afternoon window: expected 3.5 hours, got %v", res.Penalties[1].Hours)
	}
}

// =============================================================================
// SEGMENT INVARIANTS
// =============================================================================

func TestEngine_SelectedSegments_PartitionWorkedTime(t *testing.T) {
	// GIVEN: Overlapping rules covering the whole shift
	// WHEN: Resolving
	// THEN: Applied records are contiguous, non-overlapping, and their
	//       hours sum to worked hours

	night := award.PenaltyRule{
		ID:         "pen-night",
		Name:       "Night",
		Window:     award.TimeWindow{Start: "22:00", End: "06:00"},
		Multiplier: dec("1.75"),
	}
	engine := newEngine(t, testGuide(),
		[]award.PenaltyRule{saturdayPenalty("1.5"), night}, nil, nil)

	shift := award.Period{
		Start: syd(2025, time.March, 8, 20, 0),
		End:   syd(2025, time.March, 9, 4, 0),
	}
	breaks := []award.BreakPeriod{
		{Start: syd(2025, time.March, 9, 1, 0), End: syd(2025, time.March, 9, 1, 30)},
	}
	res := engine.Resolve(shift, breaks)

	var prevEnd time.Time
	total := decimal.Zero
	for i, p := range res.Penalties {
		if i > 0 && p.Start.Before(prevEnd) {
			t.Errorf("records overlap: %v starts before %v", p.Start, prevEnd)
		}
		prevEnd = p.End
		total = total.Add(p.Hours)
	}
	worked := award.WorkedHours(shift, breaks)
	if !total.Equal(worked) {
		t.Errorf("segment hours %v != worked hours %v", total, worked)
	}
}
