package domain

import "time"

// SessionStateKey is the fixed key the session snapshot is stored under.
const SessionStateKey = "attendance.session"

// SessionState is the durable snapshot of an attendance session.
type SessionState struct {
	CheckInTime time.Time `json:"checkInTime"`
	IsActive    bool      `json:"isActive"`
}

// ActiveSince returns the snapshot written on check-in.
func ActiveSince(checkIn time.Time) SessionState {
	return SessionState{CheckInTime: checkIn, IsActive: true}
}
