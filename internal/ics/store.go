package ics

import (
	"strings"
	"time"
)

// Store holds the committed events of one run, ordered ascending by start
// time. Ordering is maintained on insertion. Among day-events of one user no
// two stored entries overlap or touch: consecutive or overlapping vacation
// declarations are merged into a single span when inserted.
type Store struct {
	events []*Event
}

// Len returns the number of stored events.
func (s *Store) Len() int { return len(s.events) }

// Insert commits a fully-decoded event.
//
// The scan first looks for a same-user day-event whose range overlaps or
// touches the new one; on a match the existing entry is extended to the union
// and the new event is discarded. Otherwise the event is spliced in before
// the first entry with an equal or later start, keeping the store sorted with
// a stable tie-break.
func (s *Store) Insert(n *Event) {
	for i, e := range s.events {
		if n.User == e.User && n.DayEvent && e.DayEvent {
			if within(e.Start, n.Start, e.End) || within(e.Start, n.End, e.End) {
				if n.End.After(e.End) {
					e.End = n.End
				}
				if n.Start.Before(e.Start) {
					e.Start = n.Start
				}
				return
			}
		}

		if !e.Start.Before(n.Start) {
			s.events = append(s.events, nil)
			copy(s.events[i+1:], s.events[i:])
			s.events[i] = n
			return
		}
	}
	s.events = append(s.events, n)
}

// within reports lo <= t <= hi.
func within(lo, t, hi time.Time) bool {
	return !t.Before(lo) && !t.After(hi)
}

// FilterProject drops every event that is a day-event or whose subject does
// not start with project. Used when the report is scoped to one project;
// vacations carry no project and never contribute to a project report.
func (s *Store) FilterProject(project string) {
	kept := s.events[:0]
	for _, e := range s.events {
		if e.DayEvent || !strings.HasPrefix(e.Subject, project) {
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.events); i++ {
		s.events[i] = nil
	}
	s.events = kept
}
