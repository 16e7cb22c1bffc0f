package ics

import (
	"fmt"
	"time"
)

// DayClass classifies one day of the reporting year. Values 0..6 are the
// plain weekday (Sunday..Saturday); the named values override it.
type DayClass uint8

const (
	// Holiday marks a day flagged by the public-holiday calendar.
	Holiday DayClass = 7
	// NotApplicable marks slot 365 when the year has no day 366.
	NotApplicable DayClass = 8
)

func (c DayClass) String() string {
	switch {
	case c < 7:
		return time.Weekday(c).String()
	case c == Holiday:
		return "holiday"
	default:
		return "n/a"
	}
}

// Workday reports whether the day counts towards work and vacation totals:
// Monday..Friday, not holiday-flagged.
func (c DayClass) Workday() bool {
	return c >= DayClass(time.Monday) && c <= DayClass(time.Friday)
}

// WorkdayCalendar is the per-day-of-year classification table for exactly one
// reporting year. It is built once per run and mutated only by holiday
// flagging while the public-holiday source is parsed.
type WorkdayCalendar struct {
	days      [366]DayClass
	beginYear time.Time
	endYear   time.Time
}

// NewWorkdayCalendar builds the calendar for the year implied by the report
// parameters (year <= 0 selects the current year).
func NewWorkdayCalendar(year int) *WorkdayCalendar {
	c := &WorkdayCalendar{}
	begin, end := PeriodBounds(year, 0)
	c.beginYear = begin
	c.endYear = end

	jan1 := int(begin.Weekday())
	for i := range c.days {
		c.days[i] = DayClass((i + jan1) % 7)
	}
	if end.Add(-time.Second).YearDay() != 366 {
		c.days[365] = NotApplicable
	}
	return c
}

// Year returns the [begin, end) window of the calendar's year.
func (c *WorkdayCalendar) Year() (begin, end time.Time) {
	return c.beginYear, c.endYear
}

// Class returns the classification of day-of-year index yday (0-based).
func (c *WorkdayCalendar) Class(yday int) DayClass {
	return c.days[yday]
}

// FlagHoliday applies a committed holiday-source event to the table: each day
// index from the event's start day-of-year up to, but excluding, its end
// day-of-year is overridden with Holiday.
//
// A non-day event is rejected. A non-recurring event entirely outside the
// calendar year is dropped silently. An event whose start day index is not
// strictly below its end day index is rejected as end-before-start, except
// for ranges wrapping into January 1 of the following year.
func (c *WorkdayCalendar) FlagHoliday(e *Event) error {
	if !e.DayEvent {
		return fmt.Errorf("holiday %q is not a dayevent", e.Subject)
	}

	if !e.RecurringYearly &&
		(!e.Start.Before(c.endYear) || e.End.Before(c.beginYear)) {
		return nil
	}

	b := e.Start.YearDay() - 1
	end := e.End.YearDay() - 1
	if b >= end && !(end == 0 && e.Start.Year()+1 == e.End.Year()) {
		return fmt.Errorf("holiday %q has begin after end", e.Subject)
	}
	for i := b; i < end; i++ {
		c.days[i] = Holiday
	}
	return nil
}

// WorkdaysBetween counts workdays over the inclusive day-of-year range
// covered by [begin, end]. Both bounds are interpreted in local time and
// reduced to their day-of-year index, matching the calendar's table.
func (c *WorkdayCalendar) WorkdaysBetween(begin, end time.Time) int {
	n := 0
	for i := begin.YearDay() - 1; i <= end.YearDay()-1; i++ {
		if c.days[i].Workday() {
			n++
		}
	}
	return n
}

// PeriodBounds resolves the reporting window. year <= 0 selects the current
// year. month == 0 selects the whole year, 1..12 a single month, and any
// negative value the current month.
func PeriodBounds(year, month int) (begin, end time.Time) {
	now := time.Now()
	y := now.Year()
	if year > 0 {
		y = year
	}

	m := int(now.Month())
	switch {
	case month > 0:
		m = month
	case month == 0:
		m = 1
	}

	begin = time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.Local)
	if month == 0 {
		end = begin.AddDate(1, 0, 0)
	} else {
		end = begin.AddDate(0, 1, 0)
	}
	return begin, end
}
