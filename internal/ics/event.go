package ics

import "time"

// Event is one committed calendar entry. User is empty for entries coming
// from the public-holiday source; those never reach the Store and are applied
// to the WorkdayCalendar instead.
type Event struct {
	User    string
	Subject string
	Start   time.Time
	End     time.Time

	// DayEvent marks entries declared with date-only boundaries
	// (vacations, holidays).
	DayEvent bool
	// RecurringYearly marks entries that apply to every year regardless of
	// their literal year (RRULE:FREQ=YEARLY).
	RecurringYearly bool
	// Onsite is set when the source carried a LOCATION property.
	Onsite bool
}
