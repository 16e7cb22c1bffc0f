package report

import (
	"fmt"
	"html"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/thpox/caltimist/internal/ics"
)

// HTML renders time slots as an HTML table, with the sums and the
// vacation balance as trailing footer rows.
type HTML struct {
	w  io.Writer
	tw table.Writer
}

func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

func (h *HTML) Header(tsi *ics.TimeSlotInfo) {
	caption := periodLabel(tsi)
	if tsi.UserLimit {
		caption += "&nbsp;" + html.EscapeString(tsi.User)
	}
	fmt.Fprintf(h.w, "<p>%s</p>\n", caption)

	h.tw = table.NewWriter()
	h.tw.SetOutputMirror(h.w)
	header := table.Row{"Date", "Starttime", "Endtime", "Duration", "Location"}
	if !tsi.UserLimit {
		header = append(header, "User")
	}
	if !tsi.ProjectLimit {
		header = append(header, "Project")
	}
	h.tw.AppendHeader(header)
}

func (h *HTML) Timeline(tsi *ics.TimeSlotInfo) {
	row := table.Row{
		formatDate(tsi),
		formatTime(tsi.SHour, tsi.SMin),
		formatTime(tsi.EHour, tsi.EMin),
		FormatCentiHours(tsi.WorkHoursCH),
		locationLabel(tsi.Onsite),
	}
	if !tsi.UserLimit {
		row = append(row, tsi.User)
	}
	if !tsi.ProjectLimit {
		row = append(row, tsi.Project)
	}
	h.tw.AppendRow(row)
}

func (h *HTML) Footer(tsi *ics.TimeSlotInfo) {
	h.tw.AppendFooter(table.Row{fmt.Sprintf("Onsite: %s Remote: %s worktime balance: %s",
		FormatCentiHours(tsi.SumOnsiteCH),
		FormatCentiHours(tsi.SumRemoteCH),
		FormatCentiHours(tsi.BalanceCH))})
	h.tw.AppendFooter(table.Row{fmt.Sprintf("vacation: %ddays (left: %ddays)",
		tsi.VMonth, tsi.VLeft)})
	h.tw.RenderHTML()
}
