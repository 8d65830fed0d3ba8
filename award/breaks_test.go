package award_test

import (
	"testing"
	"time"

	"github.com/warp/wage-engine/award"
)

func TestBreakOverlap_SumsOnlyContainedPortions(t *testing.T) {
	// GIVEN: A rule period and breaks inside, straddling, and outside it
	// WHEN: Computing break overlap
	// THEN: Only the contained portions count

	p := award.Period{
		Start: syd(2025, time.March, 10, 12, 0),
		End:   syd(2025, time.March, 10, 18, 0),
	}
	breaks := []award.BreakPeriod{
		{Start: syd(2025, time.March, 10, 13, 0), End: syd(2025, time.March, 10, 13, 30)}, // inside: 30m
		{Start: syd(2025, time.March, 10, 17, 45), End: syd(2025, time.March, 10, 18, 15)}, // straddles end: 15m
		{Start: syd(2025, time.March, 10, 9, 0), End: syd(2025, time.March, 10, 9, 30)},   // outside: 0
	}

	if got := award.BreakOverlap(p, breaks); got != 45*time.Minute {
		t.Errorf("expected 45m, got %v", got)
	}
}

func TestBreakOverlap_TouchingBoundaryDoesNotOverlap(t *testing.T) {
	// GIVEN: A break ending exactly at the period start
	// WHEN: Computing overlap
	// THEN: Zero - intervals are half-open

	p := award.Period{
		Start: syd(2025, time.March, 10, 12, 0),
		End:   syd(2025, time.March, 10, 18, 0),
	}
	breaks := []award.BreakPeriod{
		{Start: syd(2025, time.March, 10, 11, 30), End: syd(2025, time.March, 10, 12, 0)},
	}

	if got := award.BreakOverlap(p, breaks); got != 0 {
		t.Errorf("expected no overlap, got %v", got)
	}
}

func TestInBreak_HalfOpen(t *testing.T) {
	b := []award.BreakPeriod{
		{Start: syd(2025, time.March, 10, 13, 0), End: syd(2025, time.March, 10, 13, 30)},
	}

	if !award.InBreak(syd(2025, time.March, 10, 13, 0), b) {
		t.Error("break start minute is inside the break")
	}
	if award.InBreak(syd(2025, time.March, 10, 13, 30), b) {
		t.Error("break end minute is outside the break")
	}
}
