package formatter

import (
	"strconv"
	"time"

	"clockin/internal/domain"
	"clockin/internal/history"
)

// EntryHeaders are the history table columns.
var EntryHeaders = []string{"Date", "Day", "Check In", "Check Out", "Total Time"}

// EntryRow renders one entry with clock times in loc using timeFormat.
func EntryRow(entry *domain.TimeEntry, timeFormat string, loc *time.Location) []string {
	checkOut := "-"
	if entry.CheckOut != nil {
		checkOut = entry.CheckOut.In(loc).Format(timeFormat)
	}
	totalTime := entry.TotalTime
	if totalTime == "" {
		totalTime = history.FormatElapsed(entry.Duration())
	}
	return []string{
		entry.CheckIn.In(loc).Format(domain.DateLayout),
		entry.CheckIn.In(loc).Weekday().String(),
		entry.CheckIn.In(loc).Format(timeFormat),
		checkOut,
		totalTime,
	}
}

// EntryRows renders every entry.
func EntryRows(entries []*domain.TimeEntry, timeFormat string, loc *time.Location) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, EntryRow(entry, timeFormat, loc))
	}
	return rows
}

// TotalRow is the highlighted row shown under a filtered table.
func TotalRow(summary *history.Summary) []string {
	return []string{"Total", "", "", "", summary.FormattedTotal}
}

// HistoryTable renders the summary; the total row appears only when a range is set.
func HistoryTable(summary *history.Summary, timeFormat string, loc *time.Location) string {
	rows := EntryRows(summary.Entries, timeFormat, loc)
	if summary.Range == nil {
		return RenderTable(EntryHeaders, rows)
	}
	return RenderTableWithFooter(EntryHeaders, rows, TotalRow(summary))
}

// DailyHeaders are the per-day summary columns.
var DailyHeaders = []string{"Date", "Day", "Entries", "Total Time"}

// DailyRows renders per-day totals.
func DailyRows(totals []history.DailyTotal) [][]string {
	rows := make([][]string, 0, len(totals))
	for _, total := range totals {
		rows = append(rows, []string{
			total.Date,
			total.Day,
			strconv.Itoa(total.Entries),
			history.FormatElapsed(total.Total),
		})
	}
	return rows
}
