package history

import (
	"regexp"
	"strconv"
	"time"

	"clockin/internal/domain"
	"clockin/internal/errors"
)

// InputDateLayout is the form accepted for --from and --to.
const InputDateLayout = "2006-01-02"

var shorthandPattern = regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the same day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DayRange covers the whole calendar day of start through the whole day of end.
func DayRange(start, end time.Time) *domain.DateRange {
	return &domain.DateRange{Start: StartOfDay(start), End: EndOfDay(end)}
}

// ParseRange builds a range from two dates in InputDateLayout.
// Both empty means no range. A single bound leaves the other open.
func ParseRange(from, to string, loc *time.Location) (*domain.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}

	rng := &domain.DateRange{
		Start: time.Time{},
		End:   time.Date(9999, 12, 31, 23, 59, 59, 0, loc),
	}

	if from != "" {
		start, err := time.ParseInLocation(InputDateLayout, from, loc)
		if err != nil {
			return nil, errors.NewInvalidInputError("from", from, "expected YYYY-MM-DD")
		}
		rng.Start = StartOfDay(start)
	}
	if to != "" {
		end, err := time.ParseInLocation(InputDateLayout, to, loc)
		if err != nil {
			return nil, errors.NewInvalidInputError("to", to, "expected YYYY-MM-DD")
		}
		rng.End = EndOfDay(end)
	}

	if !rng.IsValid() {
		return nil, errors.NewInvalidInputError("to", to, "end date is before start date")
	}
	return rng, nil
}

// ParseShorthand converts "30m", "2h", "1d", "2w", "3mo" or "1y" into the
// range ending at now.
func ParseShorthand(shorthand string, now time.Time) (*domain.DateRange, error) {
	matches := shorthandPattern.FindStringSubmatch(shorthand)
	if matches == nil {
		return nil, errors.NewInvalidInputError("since", shorthand, "use a number followed by m, h, d, w, mo or y")
	}

	n, err := strconv.Atoi(matches[1])
	if err != nil || n <= 0 {
		return nil, errors.NewInvalidInputError("since", shorthand, "amount must be positive")
	}

	var start time.Time
	switch matches[2] {
	case "m":
		start = now.Add(-time.Duration(n) * time.Minute)
	case "h":
		start = now.Add(-time.Duration(n) * time.Hour)
	case "d":
		start = now.AddDate(0, 0, -n)
	case "w":
		start = now.AddDate(0, 0, -7*n)
	case "mo":
		start = now.AddDate(0, -n, 0)
	case "y":
		start = now.AddDate(-n, 0, 0)
	}

	return &domain.DateRange{Start: start, End: now}, nil
}
