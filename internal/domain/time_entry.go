package domain

import (
	"time"
)

// DateLayout is the display form of TimeEntry.Date.
const DateLayout = "1/2/2006"

// TimeEntry is one closed attendance interval of an owner.
// Entries are append-only: once CheckOut is set nothing mutates them.
type TimeEntry struct {
	ID        string     `json:"id,omitempty"`
	Owner     string     `json:"email"`
	Date      string     `json:"date"`
	Day       string     `json:"day"`
	CheckIn   time.Time  `json:"checkIn"`
	CheckOut  *time.Time `json:"checkOut,omitempty"`
	TotalTime string     `json:"totalTime"`
}

// NewTimeEntry builds a closed entry and derives Date and Day from checkIn.
// TotalTime is left for the caller to format.
func NewTimeEntry(owner string, checkIn, checkOut time.Time) *TimeEntry {
	return &TimeEntry{
		Owner:    owner,
		Date:     checkIn.Format(DateLayout),
		Day:      checkIn.Weekday().String(),
		CheckIn:  checkIn,
		CheckOut: &checkOut,
	}
}

// Clone returns a copy that shares no memory with te.
func (te *TimeEntry) Clone() *TimeEntry {
	c := *te
	if te.CheckOut != nil {
		out := *te.CheckOut
		c.CheckOut = &out
	}
	return &c
}

// IsOpen returns true while the interval has no check-out.
func (te TimeEntry) IsOpen() bool {
	return te.CheckOut == nil
}

// Duration returns CheckOut - CheckIn, or zero for an open entry.
func (te TimeEntry) Duration() time.Duration {
	if te.CheckOut == nil {
		return 0
	}
	return te.CheckOut.Sub(te.CheckIn)
}

// IsValid checks if the time entry has valid data.
func (te TimeEntry) IsValid() bool {
	if te.Owner == "" {
		return false
	}
	if te.CheckIn.IsZero() {
		return false
	}
	if te.CheckOut != nil && !te.CheckOut.After(te.CheckIn) {
		return false
	}
	return true
}
