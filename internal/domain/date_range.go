package domain

import "time"

// DateRange is an inclusive [Start, End] window over check-in times.
// A nil *DateRange means no range is selected.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// IsValid returns false when End precedes Start.
func (r DateRange) IsValid() bool {
	return !r.End.Before(r.Start)
}
