// Package report renders aggregated time slots as text or HTML
// tables.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/thpox/caltimist/internal/ics"
)

const (
	decimalSep     = ","
	currencySymbol = "€"
)

var ErrUnknownFormat = errors.New("unknown output format")

// New returns the renderer registered under name, writing to w.
func New(name string, w io.Writer) (ics.Renderer, error) {
	switch name {
	case "text":
		return NewText(w), nil
	case "html":
		return NewHTML(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatCentiHours renders centihours as industry hours, e.g. 825 ->
// "08,25h". The fraction keeps its magnitude for negative values; the
// sign is carried by the hour part only, so balances between -1h and
// 0h render without a sign.
func FormatCentiHours(ch int64) string {
	hours, frac := ch/100, ch%100
	if frac < 0 {
		frac = -frac
	}
	sign := ""
	if hours < 0 {
		sign, hours = "-", -hours
	}
	return fmt.Sprintf("%s%02d%s%02dh", sign, hours, decimalSep, frac)
}

// FormatPrice renders a centi-euro amount, e.g. 123456 -> "1234,56€".
func FormatPrice(p int64) string {
	return fmt.Sprintf("%d%s%02d%s", p/100, decimalSep, p%100, currencySymbol)
}

func formatDate(tsi *ics.TimeSlotInfo) string {
	return fmt.Sprintf("%02d.%02d.", tsi.MDay, tsi.Mon)
}

func formatTime(hour, min int) string {
	return fmt.Sprintf("%02d:%02d", hour, min)
}

func periodLabel(tsi *ics.TimeSlotInfo) string {
	if tsi.AllYear {
		return fmt.Sprintf("1-12/%d", tsi.Year)
	}
	return fmt.Sprintf("%d/%d", tsi.Mon, tsi.Year)
}

func locationLabel(onsite bool) string {
	if onsite {
		return "onsite"
	}
	return "remote"
}
