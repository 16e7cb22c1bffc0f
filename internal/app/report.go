// Package app wires configuration, calendar fetching, parsing, and
// aggregation into one report run shared by the CLI and the HTTP
// server.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/thpox/caltimist/internal/config"
	"github.com/thpox/caltimist/internal/fetch"
	"github.com/thpox/caltimist/internal/ics"
)

// Options selects the reporting window and scope. Year -1 means the
// current year, Month -1 the current month and 0 the whole year.
type Options struct {
	Year    int
	Month   int
	User    string
	Project string
}

// Validate checks the window bounds and applies the year-without-month
// rule: an explicit year with no explicit month reports the whole
// year.
func (o *Options) Validate() error {
	if o.Month < -1 || o.Month > 12 {
		return fmt.Errorf("month %d out of range", o.Month)
	}
	if o.Year != -1 && o.Year < 1970 {
		return fmt.Errorf("year %d out of range", o.Year)
	}
	if o.Year > 0 && o.Month == -1 {
		o.Month = 0
	}
	return nil
}

// Runner executes report runs against a loaded configuration.
type Runner struct {
	Config *config.Config
	Fetch  *fetch.Client
	Log    *log.Logger
}

// Report fetches the public-holiday calendar and the calendars of the
// selected users, parses them into a fresh store, and runs the
// aggregation pass against renderer. The options must have been
// validated.
func (r *Runner) Report(ctx context.Context, opts Options, renderer ics.Renderer) error {
	cal := ics.NewWorkdayCalendar(opts.Year)
	store := &ics.Store{}

	if url := r.Config.General.PublicHolidays; url != "" {
		if err := r.ingest(ctx, "", url, store, cal); err != nil {
			return fmt.Errorf("public holiday calendar: %w", err)
		}
	}

	matched := false
	for i := range r.Config.Users {
		u := &r.Config.Users[i]
		if opts.User != "" && u.Name != opts.User {
			continue
		}
		matched = true
		if err := r.ingest(ctx, u.Name, u.Cal, store, cal); err != nil {
			return fmt.Errorf("calendar of %s: %w", u.Name, err)
		}
	}
	if opts.User != "" && !matched {
		return fmt.Errorf("unknown user %q", opts.User)
	}

	if opts.Project != "" {
		store.FilterProject(opts.Project)
	}

	agg := &ics.Aggregator{
		Store:    store,
		Calendar: cal,
		Renderer: renderer,
		Year:     opts.Year,
		Month:    opts.Month,
		User:     opts.User,
		Project:  opts.Project,
	}
	if opts.User != "" {
		if u, ok := r.Config.UserByName(opts.User); ok {
			agg.Terms = &ics.UserTerms{
				MonthHours:   u.MonthHours,
				VacationDays: u.Vacation,
			}
		}
	}
	if opts.Project != "" {
		if p, ok := r.Config.ProjectByName(opts.Project); ok {
			agg.RateOnsiteCH = p.OnsiteCentis
			agg.RateRemoteCH = p.RemoteCentis
		}
	}
	agg.Run()
	return nil
}

// ingest streams one calendar through the line assembler into a parser
// scoped to user (the empty user marks the holiday source).
func (r *Runner) ingest(ctx context.Context, user, url string, store *ics.Store, cal *ics.WorkdayCalendar) error {
	p := &ics.Parser{User: user, Store: store, Calendar: cal, Log: r.Log}
	asm := ics.NewLineAssembler(p.Feed)
	if err := r.Fetch.Fetch(ctx, url, asm); err != nil {
		return err
	}
	return asm.Flush()
}
