package ics

import (
	"testing"
	"time"
)

type recorder struct {
	headers int
	lines   []TimeSlotInfo
	footers int
	footer  TimeSlotInfo
}

func (r *recorder) Header(tsi *TimeSlotInfo)   { r.headers++ }
func (r *recorder) Timeline(tsi *TimeSlotInfo) { r.lines = append(r.lines, *tsi) }
func (r *recorder) Footer(tsi *TimeSlotInfo)   { r.footers++; r.footer = *tsi }

func july(d, h, m int) time.Time {
	return time.Date(2023, 7, d, h, m, 0, 0, time.Local)
}

func runJuly(t *testing.T, agg *Aggregator) *recorder {
	t.Helper()
	rec := &recorder{}
	agg.Calendar = NewWorkdayCalendar(2023)
	agg.Renderer = rec
	agg.Year = 2023
	agg.Month = 7
	agg.Run()
	if rec.headers != 1 || rec.footers != 1 {
		t.Fatalf("header/footer calls = %d/%d, want 1/1", rec.headers, rec.footers)
	}
	if agg.Store.Len() != 0 {
		t.Fatalf("store not consumed, len = %d", agg.Store.Len())
	}
	return rec
}

func TestAggregateSingleDayOnsiteEvent(t *testing.T) {
	s := &Store{}
	s.Insert(&Event{User: "u", Subject: "proj", Start: july(5, 9, 0), End: july(5, 10, 0), Onsite: true})
	rec := runJuly(t, &Aggregator{Store: s})

	if len(rec.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(rec.lines))
	}
	l := rec.lines[0]
	if l.MDay != 5 || l.Mon != 7 || l.SHour != 9 || l.SMin != 0 || l.EHour != 10 || l.EMin != 0 {
		t.Fatalf("unexpected cursor %+v", l)
	}
	if l.WorkHoursCH != 100 || !l.Onsite {
		t.Fatalf("duration/onsite wrong: %+v", l)
	}
	if rec.footer.SumOnsiteCH != 100 || rec.footer.SumRemoteCH != 0 {
		t.Fatalf("totals onsite=%d remote=%d, want 100/0", rec.footer.SumOnsiteCH, rec.footer.SumRemoteCH)
	}
}

func TestAggregateMidnightSpanningEvent(t *testing.T) {
	s := &Store{}
	s.Insert(&Event{User: "u", Subject: "proj", Start: july(10, 22, 0), End: july(12, 2, 0)})
	rec := runJuly(t, &Aggregator{Store: s})

	if len(rec.lines) != 3 {
		t.Fatalf("segments = %d, want 3", len(rec.lines))
	}
	var sum int64
	for i, l := range rec.lines {
		sum += l.WorkHoursCH
		if i > 0 && l.MDay <= rec.lines[i-1].MDay {
			t.Fatalf("day fields not strictly increasing: %d then %d", rec.lines[i-1].MDay, l.MDay)
		}
	}
	if sum != 2800 {
		t.Fatalf("segment sum = %d centihours, want 2800", sum)
	}
	if rec.lines[0].EHour != 24 || rec.lines[1].WorkHoursCH != 2400 || rec.lines[2].EHour != 2 {
		t.Fatalf("unexpected segments %+v", rec.lines)
	}
	if rec.footer.SumRemoteCH != 2800 {
		t.Fatalf("remote total = %d, want 2800", rec.footer.SumRemoteCH)
	}
}

func TestAggregateClipsToWindow(t *testing.T) {
	s := &Store{}
	s.Insert(&Event{User: "u", Subject: "proj", Start: time.Date(2023, 6, 30, 23, 0, 0, 0, time.Local), End: july(1, 2, 0)})
	rec := runJuly(t, &Aggregator{Store: s})

	if len(rec.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(rec.lines))
	}
	l := rec.lines[0]
	if l.MDay != 1 || l.SHour != 0 || l.EHour != 2 || l.WorkHoursCH != 200 {
		t.Fatalf("clipping wrong: %+v", l)
	}
}

func TestAggregateVacationDays(t *testing.T) {
	s := &Store{}
	// Monday 2023-07-17 up to Saturday 2023-07-22 (exclusive end): five workdays.
	s.Insert(&Event{User: "u", Subject: "vacation", Start: july(17, 0, 0), End: july(22, 0, 0), DayEvent: true})
	rec := runJuly(t, &Aggregator{Store: s})

	if len(rec.lines) != 0 {
		t.Fatalf("day-event emitted %d timeline lines", len(rec.lines))
	}
	if rec.footer.VMonth != 5 || rec.footer.VYear != 5 {
		t.Fatalf("vacation month/year = %d/%d, want 5/5", rec.footer.VMonth, rec.footer.VYear)
	}
}

func TestAggregateUserFooterMath(t *testing.T) {
	s := &Store{}
	s.Insert(&Event{User: "u", Subject: "proj", Start: july(5, 9, 0), End: july(5, 10, 0), Onsite: true})
	s.Insert(&Event{User: "u", Subject: "vacation", Start: july(17, 0, 0), End: july(22, 0, 0), DayEvent: true})

	terms := &UserTerms{MonthHours: 160, VacationDays: 30}
	agg := &Aggregator{Store: s, User: "u", Terms: terms}
	rec := runJuly(t, agg)

	cal := NewWorkdayCalendar(2023)
	begin, end := cal.Year()
	yearWorkdays := cal.WorkdaysBetween(begin, end.Add(-time.Second))
	vdayHours := int(float64(terms.MonthHours)*12.0/float64(yearWorkdays) + .5)
	wantBalance := int64(100) + int64(5*vdayHours-160)*100
	if rec.footer.BalanceCH != wantBalance {
		t.Fatalf("balance = %d, want %d", rec.footer.BalanceCH, wantBalance)
	}
	if rec.footer.VLeft != 25 {
		t.Fatalf("vacation left = %d, want 25", rec.footer.VLeft)
	}
	if !rec.footer.UserLimit {
		t.Fatalf("userlimit not set")
	}
}

func TestAggregateYearWindow(t *testing.T) {
	s := &Store{}
	// Vacation in March plus one in July; a July-only report sees one,
	// the year counter sees both.
	s.Insert(&Event{User: "u", Subject: "spring", Start: time.Date(2023, 3, 6, 0, 0, 0, 0, time.Local),
		End: time.Date(2023, 3, 8, 0, 0, 0, 0, time.Local), DayEvent: true})
	s.Insert(&Event{User: "u", Subject: "summer", Start: july(17, 0, 0), End: july(19, 0, 0), DayEvent: true})
	rec := runJuly(t, &Aggregator{Store: s})

	if rec.footer.VMonth != 2 {
		t.Fatalf("month vacation = %d, want 2", rec.footer.VMonth)
	}
	if rec.footer.VYear != 4 {
		t.Fatalf("year vacation = %d, want 4", rec.footer.VYear)
	}
}
