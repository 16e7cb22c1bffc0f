package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/thpox/caltimist/internal/ics"
)

// Text renders time slots as a plain table followed by a summary
// block. Columns for user and project appear only when the report is
// not already limited to a single one.
type Text struct {
	w  io.Writer
	tw table.Writer
}

func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) Header(tsi *ics.TimeSlotInfo) {
	line := periodLabel(tsi)
	if tsi.UserLimit {
		line += "\t" + tsi.User
	}
	if tsi.ProjectLimit {
		line += "\tProjekt " + tsi.Project
	}
	fmt.Fprintln(t.w, line)

	t.tw = table.NewWriter()
	t.tw.SetOutputMirror(t.w)
	header := table.Row{"Date", "Starttime", "Endtime", "Duration", "Location"}
	if !tsi.UserLimit {
		header = append(header, "User")
	}
	if !tsi.ProjectLimit {
		header = append(header, "Project")
	}
	t.tw.AppendHeader(header)
}

func (t *Text) Timeline(tsi *ics.TimeSlotInfo) {
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
	t.tw.AppendRow(row)
}

func (t *Text) Footer(tsi *ics.TimeSlotInfo) {
	t.tw.Render()

	fmt.Fprintf(t.w, "Onsite: %s\tRemote: %s\n",
		FormatCentiHours(tsi.SumOnsiteCH), FormatCentiHours(tsi.SumRemoteCH))
	if tsi.ProjectLimit {
		onsite := tsi.SumOnsiteCH * tsi.RateOnsiteCH / 100
		remote := tsi.SumRemoteCH * tsi.RateRemoteCH / 100
		fmt.Fprintf(t.w, "amount onsite => %s\n", FormatPrice(onsite))
		fmt.Fprintf(t.w, "amount remote => %s\n", FormatPrice(remote))
		fmt.Fprintf(t.w, "amount sum => %s\n", FormatPrice(onsite+remote))
	} else if tsi.UserLimit {
		fmt.Fprintf(t.w, "worktime balance: %s\tvacation: %ddays (left: %ddays)\n",
			FormatCentiHours(tsi.BalanceCH), tsi.VMonth, tsi.VLeft)
	}
}
