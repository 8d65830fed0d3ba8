/*
clock.go - Timezone-local wall-clock arithmetic

PURPOSE:
  Rule windows are written in local wall-clock terms ("Saturday",
  "18:00-24:00") but shifts are absolute instants. This file provides the
  primitives that bridge the two: local midnight, local day-of-week,
  wrap detection, and open-interval intersection.

DST:
  All day arithmetic goes through time.Date in the award's location, so
  a "day" may be 23 or 25 hours long across daylight-saving transitions.
  NextLocalDay strictly increases regardless.

SEE ALSO:
  - engine.go: Per-day window expansion built on these primitives
*/
package award

import (
	"fmt"
	"time"
)

// endOfDay is the "24:00" sentinel meaning local midnight of the next day.
const endOfDay = "24:00"

// Clock performs wall-clock arithmetic in one fixed timezone.
type Clock struct {
	loc *time.Location
}

// NewClock loads the IANA timezone for a pay guide.
func NewClock(tz string) (Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return Clock{loc: loc}, nil
}

// Location returns the underlying location.
func (c Clock) Location() *time.Location { return c.loc }

// LocalMidnight returns the absolute instant of 00:00 local time on the
// local date containing t.
func (c Clock) LocalMidnight(t time.Time) time.Time {
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.loc)
}

// NextLocalDay returns local midnight one calendar day after the local
// date containing t. Strictly increases even across DST transitions.
func (c Clock) NextLocalDay(t time.Time) time.Time {
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, c.loc)
}

// DayOfWeek returns the local day of week (Sunday=0 .. Saturday=6).
func (c Clock) DayOfWeek(t time.Time) time.Weekday {
	return t.In(c.loc).Weekday()
}

// LocalDate returns the local calendar date of t as "2006-01-02".
// Used as the key for public holiday lookup.
func (c Clock) LocalDate(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

// LocalTime returns the absolute instant for the given "HH:MM" wall-clock
// time on the local date containing t. "24:00" means local midnight of
// the next day.
func (c Clock) LocalTime(t time.Time, hhmm string) (time.Time, error) {
	h, m, err := parseClockTime(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	if h == 24 {
		return c.NextLocalDay(t), nil
	}
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), h, m, 0, 0, c.loc), nil
}

// TimeWraps reports whether a local [start, end) window crosses local
// midnight. start == end and any end <= start (as minute-of-day) count
// as a wrap; a "24:00" end never wraps, it is exactly end of day.
func TimeWraps(start, end string) (bool, error) {
	sh, sm, err := parseClockTime(start)
	if err != nil {
		return false, err
	}
	eh, em, err := parseClockTime(end)
	if err != nil {
		return false, err
	}
	if eh == 24 {
		return false, nil
	}
	return eh*60+em <= sh*60+sm, nil
}

// Intersect returns the overlap of two absolute intervals, treating both
// as open: touching boundaries yield no overlap.
func Intersect(aStart, aEnd, bStart, bEnd time.Time) (Period, bool) {
	s := aStart
	if bStart.After(s) {
		s = bStart
	}
	e := aEnd
	if bEnd.Before(e) {
		e = bEnd
	}
	if !e.After(s) {
		return Period{}, false
	}
	return Period{Start: s, End: e}, true
}

// parseClockTime parses "HH:MM". "24:00" is allowed as an exact sentinel.
func parseClockTime(s string) (hour, minute int, err error) {
	if s == endOfDay {
		return 24, 0, nil
	}
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return hour, minute, nil
}

// =============================================================================
// DAY ITERATOR - One local-day window per step
// =============================================================================

// DayIterator walks the local calendar days spanning an absolute interval,
// yielding one [midnight, next-midnight) window per step. It holds its own
// cursor so each day's rule resolution is independently testable.
type DayIterator struct {
	clock Clock
	next  time.Time
	until time.Time
}

// Days returns an iterator over the local days overlapping span.
func (c Clock) Days(span Period) *DayIterator {
	return &DayIterator{
		clock: c,
		next:  c.LocalMidnight(span.Start),
		until: span.End,
	}
}

// Next yields the next local-day window, or ok=false when the span is
// exhausted.
func (it *DayIterator) Next() (day Period, ok bool) {
	if !it.next.Before(it.until) {
		return Period{}, false
	}
	start := it.next
	end := it.clock.NextLocalDay(start)
	it.next = end
	return Period{Start: start, End: end}, true
}
