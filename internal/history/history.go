// Package history filters and totals persisted attendance intervals.
// Every function here is pure and recomputed on each range change.
package history

import (
	"fmt"
	"time"

	"clockin/internal/domain"
)

// Filter returns the entries whose CheckIn lies within rng, bounds included.
// A nil range returns entries unchanged.
func Filter(entries []*domain.TimeEntry, rng *domain.DateRange) []*domain.TimeEntry {
	if rng == nil {
		return entries
	}

	filtered := make([]*domain.TimeEntry, 0, len(entries))
	for _, entry := range entries {
		if rng.Contains(entry.CheckIn) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// TotalDuration sums CheckOut - CheckIn. Open entries contribute zero.
func TotalDuration(entries []*domain.TimeEntry) time.Duration {
	var total time.Duration
	for _, entry := range entries {
		total += entry.Duration()
	}
	return total
}

// FormatDuration renders seconds as "{h}h : {m}min : {s}sec".
// seconds must not be negative.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh : %dmin : %dsec", h, m, s)
}

// FormatElapsed formats a duration truncated to whole seconds.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return FormatDuration(int64(d / time.Second))
}

// Derive overwrites the derived fields of a closed entry from its
// check-in and check-out.
func Derive(entry *domain.TimeEntry) {
	entry.Date = entry.CheckIn.Format(domain.DateLayout)
	entry.Day = entry.CheckIn.Weekday().String()
	if entry.CheckOut != nil {
		entry.TotalTime = FormatElapsed(entry.Duration())
	}
}

// Complete fills the derived fields of entry that are still empty.
func Complete(entry *domain.TimeEntry) {
	if entry.Date == "" {
		entry.Date = entry.CheckIn.Format(domain.DateLayout)
	}
	if entry.Day == "" {
		entry.Day = entry.CheckIn.Weekday().String()
	}
	if entry.TotalTime == "" && entry.CheckOut != nil {
		entry.TotalTime = FormatElapsed(entry.Duration())
	}
}
