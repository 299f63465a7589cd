package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockin/internal/domain"
	"clockin/internal/history"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"A", "Long header"}, [][]string{{"value", "x"}})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
	assert.Contains(t, lines[2], "value")
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}))
}

func TestEntryRow(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC)
	entry := domain.NewTimeEntry("jane@example.com", checkIn, checkIn.Add(90*time.Minute))

	row := EntryRow(entry, "03:04 PM", time.UTC)

	assert.Equal(t, []string{"3/4/2024", "Monday", "09:05 AM", "10:35 AM", "1h : 30min : 0sec"}, row)
}

func TestEntryRow_OpenEntry(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC)
	entry := &domain.TimeEntry{Owner: "jane@example.com", CheckIn: checkIn}

	row := EntryRow(entry, "15:04", time.UTC)

	assert.Equal(t, "-", row[3])
	assert.Equal(t, "0h : 0min : 0sec", row[4])
}

func TestHistoryTable_TotalRowOnlyWithRange(t *testing.T) {
	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	entries := []*domain.TimeEntry{domain.NewTimeEntry("jane@example.com", day, day.Add(time.Hour))}

	unfiltered := HistoryTable(history.Summarize(entries, nil), "15:04", time.UTC)
	assert.Equal(t, 1, strings.Count(unfiltered, "Total"))

	filtered := HistoryTable(history.Summarize(entries, history.DayRange(day, day)), "15:04", time.UTC)
	assert.Equal(t, 2, strings.Count(filtered, "Total"))
	assert.Contains(t, filtered, "1h : 0min : 0sec")
}

func TestDailyRows(t *testing.T) {
	rows := DailyRows([]history.DailyTotal{{Date: "3/4/2024", Day: "Monday", Entries: 2, Total: 2 * time.Hour}})

	assert.Equal(t, [][]string{{"3/4/2024", "Monday", "2", "2h : 0min : 0sec"}}, rows)
}
