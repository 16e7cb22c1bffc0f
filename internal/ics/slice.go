package ics

import "time"

// TimeSlotInfo is the transient record handed to the renderer: the current
// timeline cursor plus the running totals. Centihour fields (CH suffix) carry
// hours multiplied by 100.
type TimeSlotInfo struct {
	User         string
	UserLimit    bool
	Project      string
	ProjectLimit bool

	MDay, Mon, Year int
	SHour, SMin     int
	EHour, EMin     int
	AllYear         bool
	Onsite          bool

	// Vacation days within the reporting month, the full year, and the
	// user's remaining allowance.
	VMonth, VYear, VLeft int

	WorkHoursCH  int64
	SumOnsiteCH  int64
	SumRemoteCH  int64
	BalanceCH    int64
	RateOnsiteCH int64
	RateRemoteCH int64
}

// Renderer receives the three ordered callbacks of a report run: one header,
// one timeline call per emitted work segment, one footer. The renderer owns
// all formatting; the engine only populates TimeSlotInfo.
type Renderer interface {
	Header(tsi *TimeSlotInfo)
	Timeline(tsi *TimeSlotInfo)
	Footer(tsi *TimeSlotInfo)
}

// UserTerms are the contract figures of the user a report is scoped to.
type UserTerms struct {
	MonthHours   int
	VacationDays int
}

// Aggregator walks the Store once in sorted order, slices every event
// intersecting the reporting window into per-day segments, and accumulates
// onsite/remote centihours and vacation days. The Store is consumed
// destructively and must not be reused afterwards.
type Aggregator struct {
	Store    *Store
	Calendar *WorkdayCalendar
	Renderer Renderer

	// Year and Month select the reporting window with PeriodBounds
	// semantics: month 0 is the whole year.
	Year  int
	Month int

	// User/Terms scope the report to one user; Terms enables the footer
	// balance computation. Project/rates scope it to one project.
	User         string
	Terms        *UserTerms
	Project      string
	RateOnsiteCH int64
	RateRemoteCH int64
}

// Run performs the single aggregation pass.
func (a *Aggregator) Run() {
	beginMonth, endMonth := PeriodBounds(a.Year, a.Month)
	beginYear, endYear := a.Calendar.Year()

	tsi := &TimeSlotInfo{
		Mon:     int(beginMonth.Month()),
		Year:    beginMonth.Year(),
		AllYear: a.Month == 0,
	}
	if a.Terms != nil {
		tsi.UserLimit = true
		tsi.User = a.User
	}
	if a.Project != "" {
		tsi.ProjectLimit = true
		tsi.Project = a.Project
		tsi.RateOnsiteCH = a.RateOnsiteCH
		tsi.RateRemoteCH = a.RateRemoteCH
	}

	a.Renderer.Header(tsi)

	for i, e := range a.Store.events {
		tsi.Onsite = e.Onsite
		tsi.User = e.User
		tsi.Project = e.Subject

		if e.Start.Before(endMonth) && e.End.After(beginMonth) {
			d := a.slice(e, beginMonth, endMonth, tsi)
			if e.DayEvent {
				tsi.VMonth += a.Calendar.WorkdaysBetween(
					laterOf(e.Start, beginMonth),
					earlierOf(e.End, endMonth).Add(-time.Second))
			} else if e.Onsite {
				tsi.SumOnsiteCH += centihours(d)
			} else {
				tsi.SumRemoteCH += centihours(d)
			}
		}
		if e.DayEvent && e.Start.Before(endYear) && e.End.After(beginYear) {
			tsi.VYear += a.Calendar.WorkdaysBetween(
				laterOf(e.Start, beginYear),
				earlierOf(e.End, endYear).Add(-time.Second))
		}

		a.Store.events[i] = nil
	}
	a.Store.events = nil

	if a.Terms != nil {
		yearWorkdays := a.Calendar.WorkdaysBetween(beginYear, endYear.Add(-time.Second))
		vdayHours := int(float64(a.Terms.MonthHours)*12.0/float64(yearWorkdays) + .5)
		months := 12
		if a.Month != 0 {
			months = 1
		}
		tsi.BalanceCH = tsi.SumOnsiteCH + tsi.SumRemoteCH +
			int64(tsi.VMonth*vdayHours-a.Terms.MonthHours*months)*100
		tsi.VLeft = a.Terms.VacationDays - tsi.VYear
	}

	a.Renderer.Footer(tsi)
}

// slice clips one event to the window, emits its timeline segments, and
// returns the clipped duration. Day-events emit nothing; they only contribute
// to the vacation counters handled by the caller.
func (a *Aggregator) slice(e *Event, begin, end time.Time, tsi *TimeSlotInfo) time.Duration {
	startTS := laterOf(e.Start, begin)
	endTS := earlierOf(e.End, end)
	diff := endTS.Sub(startTS)
	if e.DayEvent {
		return diff
	}

	s := startTS.Local()
	en := endTS.Local()
	eod := time.Date(s.Year(), s.Month(), s.Day()+1, 0, 0, 0, 0, time.Local)

	tsi.MDay = s.Day()
	tsi.Mon = int(s.Month())
	tsi.SHour, tsi.SMin = s.Hour(), s.Minute()

	if s.YearDay() >= en.YearDay() {
		tsi.EHour, tsi.EMin = en.Hour(), en.Minute()
		tsi.WorkHoursCH = centihours(endTS.Sub(startTS))
		a.Renderer.Timeline(tsi)
		return diff
	}

	// Spans midnight: start day up to 24:00, one full line per whole
	// intervening day, then the tail segment on the end day.
	tsi.EHour, tsi.EMin = 24, 0
	tsi.WorkHoursCH = centihours(eod.Sub(startTS))
	a.Renderer.Timeline(tsi)

	tsi.SHour, tsi.SMin = 0, 0
	tsi.WorkHoursCH = 24 * 100
	for en.YearDay() > eod.YearDay() {
		tsi.MDay = eod.Day()
		tsi.Mon = int(eod.Month())
		eod = eod.AddDate(0, 0, 1)
		a.Renderer.Timeline(tsi)
	}
	if endTS.After(eod) {
		tsi.MDay = en.Day()
		tsi.Mon = int(en.Month())
		tsi.EHour, tsi.EMin = en.Hour(), en.Minute()
		tsi.WorkHoursCH = centihours(endTS.Sub(eod))
		a.Renderer.Timeline(tsi)
	}
	return diff
}

// centihours converts an elapsed duration to centihours, one unit per 36s.
func centihours(d time.Duration) int64 {
	return int64(d/time.Second) / 36
}

func laterOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}

func earlierOf(a, b time.Time) time.Time {
	if a.After(b) {
		return b
	}
	return a
}
