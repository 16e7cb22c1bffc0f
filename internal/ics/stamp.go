package ics

import (
	"errors"
	"fmt"
	"time"
)

// ErrBadStamp is returned for date/date-time literals that cannot be decoded.
// Callers must treat the owning event as having no usable boundary.
var ErrBadStamp = errors.New("bad ICS timestamp")

const (
	stampDateLen     = len("yyyymmdd")
	stampDateTimeLen = len("yyyymmddThhmmssZ")
)

// ParseStamp decodes an ICS date (yyyymmdd) or date-time (yyyymmddThhmmss[Z])
// literal into an absolute timestamp in the process's local timezone.
//
// dayevent forces date-only decoding: the time-of-day fields stay zero even
// when the literal carries them. A trailing Z shifts the raw local-time value
// by the host's UTC offset; no named timezone is consulted. That matches what
// the report host sees for its own zone and is knowingly off for calendars
// declared in another one.
func ParseStamp(s string, dayevent bool) (time.Time, error) {
	if len(s) < stampDateLen {
		return time.Time{}, fmt.Errorf("%w: %q too short", ErrBadStamp, s)
	}

	var year, mon, day int
	if err := scanDigits(s[0:4], &year); err != nil {
		return time.Time{}, err
	}
	if err := scanDigits(s[4:6], &mon); err != nil {
		return time.Time{}, err
	}
	if err := scanDigits(s[6:8], &day); err != nil {
		return time.Time{}, err
	}

	if dayevent || len(s) != stampDateTimeLen {
		return time.Date(year, time.Month(mon), day, 0, 0, 0, 0, time.Local), nil
	}

	var hour, min, sec int
	if err := scanDigits(s[9:11], &hour); err != nil {
		return time.Time{}, err
	}
	if err := scanDigits(s[11:13], &min); err != nil {
		return time.Time{}, err
	}
	if err := scanDigits(s[13:15], &sec); err != nil {
		return time.Time{}, err
	}

	t := time.Date(year, time.Month(mon), day, hour, min, sec, 0, time.Local)
	if s[15] == 'Z' {
		_, offset := t.Zone()
		t = t.Add(time.Duration(offset) * time.Second)
	}
	return t, nil
}

func scanDigits(s string, out *int) error {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: %q is not numeric", ErrBadStamp, s)
		}
		n = n*10 + int(c-'0')
	}
	*out = n
	return nil
}
