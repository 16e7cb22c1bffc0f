package ics

import (
	"log"
	"strings"
	"time"
)

// Line markers recognized by the parser. Matching is case-sensitive and
// prefix-based; any other line is ignored.
const (
	markerBegin     = "BEGIN:VEVENT"
	markerEnd       = "END:VEVENT"
	markerSummary   = "SUMMARY:"
	markerLocation  = "LOCATION:"
	markerStart     = "DTSTART:"
	markerStartDate = "DTSTART;VALUE=DATE:"
	markerEnd2      = "DTEND:"
	markerEndDate   = "DTEND;VALUE=DATE:"
	markerYearly    = "RRULE:FREQ=YEARLY"
)

// Parser consumes logical ICS lines for one calendar source. Events of a
// user-owned source are committed into Store; events of the user-less
// public-holiday source are applied to Calendar instead.
//
// At most one event is staged at a time. A BEGIN while an event is already
// staged discards the pending one with a warning; an END without a staged
// event is a no-op. Both recoveries are local and non-fatal.
type Parser struct {
	User     string
	Store    *Store
	Calendar *WorkdayCalendar
	Log      *log.Logger

	incubator *Event
	stampErr  error
}

// Feed processes one logical line.
func (p *Parser) Feed(line string) error {
	switch {
	case strings.HasPrefix(line, markerBegin):
		p.open()
	case strings.HasPrefix(line, markerEnd):
		p.commit()
	}

	if p.incubator == nil {
		// Property lines outside BEGIN/END, or after a discarded event.
		return nil
	}

	switch {
	case strings.HasPrefix(line, markerSummary):
		p.incubator.Subject = line[len(markerSummary):]
	case strings.HasPrefix(line, markerLocation):
		p.incubator.Onsite = true
	case strings.HasPrefix(line, markerStartDate):
		p.incubator.Start = p.stamp(line[len(markerStartDate):], true)
		p.incubator.DayEvent = true
	case strings.HasPrefix(line, markerStart):
		p.incubator.Start = p.stamp(line[len(markerStart):], false)
	case strings.HasPrefix(line, markerEndDate):
		p.incubator.End = p.stamp(line[len(markerEndDate):], true)
		p.incubator.DayEvent = true
	case strings.HasPrefix(line, markerEnd2):
		p.incubator.End = p.stamp(line[len(markerEnd2):], false)
	case strings.HasPrefix(line, markerYearly):
		p.incubator.RecurringYearly = true
	}
	return nil
}

func (p *Parser) open() {
	if p.incubator != nil {
		p.warnf("incubator is in use, cleaning up for new calendar entry")
	}
	p.incubator = &Event{User: p.User}
	p.stampErr = nil
}

func (p *Parser) commit() {
	e := p.incubator
	if e == nil {
		return
	}
	p.incubator = nil

	if p.stampErr != nil {
		p.warnf("discarding event %q: %v", e.Subject, p.stampErr)
		return
	}
	if e.Start.IsZero() || e.End.IsZero() {
		p.warnf("discarding event %q: missing boundary", e.Subject)
		return
	}

	if e.User == "" {
		if err := p.Calendar.FlagHoliday(e); err != nil {
			p.warnf("%v", err)
		}
		return
	}

	if e.End.Before(e.Start) {
		p.warnf("discarding event %q: end before start", e.Subject)
		return
	}
	p.Store.Insert(e)
}

func (p *Parser) stamp(s string, dayevent bool) time.Time {
	t, err := ParseStamp(s, dayevent)
	if err != nil {
		p.stampErr = err
	}
	return t
}

func (p *Parser) warnf(format string, args ...any) {
	if p.Log != nil {
		p.Log.Printf(format, args...)
	}
}
