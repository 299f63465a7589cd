package history

import (
	"time"

	"clockin/internal/domain"
)

// Summary is the filtered view shown under the history table.
type Summary struct {
	Entries        []*domain.TimeEntry
	Range          *domain.DateRange
	Count          int
	Total          time.Duration
	FormattedTotal string
}

// DailyTotal is the worked time of one calendar date.
type DailyTotal struct {
	Date    string
	Day     string
	Entries int
	Total   time.Duration
}

// Summarize filters entries by rng and totals the result.
func Summarize(entries []*domain.TimeEntry, rng *domain.DateRange) *Summary {
	filtered := Filter(entries, rng)
	total := TotalDuration(filtered)

	return &Summary{
		Entries:        filtered,
		Range:          rng,
		Count:          len(filtered),
		Total:          total,
		FormattedTotal: FormatElapsed(total),
	}
}

// DailyTotals groups entries by check-in date, keeping first-seen order.
func DailyTotals(entries []*domain.TimeEntry) []DailyTotal {
	index := make(map[string]int)
	totals := make([]DailyTotal, 0)

	for _, entry := range entries {
		date := entry.CheckIn.Format(domain.DateLayout)
		i, ok := index[date]
		if !ok {
			i = len(totals)
			index[date] = i
			totals = append(totals, DailyTotal{
				Date: date,
				Day:  entry.CheckIn.Weekday().String(),
			})
		}
		totals[i].Entries++
		totals[i].Total += entry.Duration()
	}
	return totals
}
