package services

import (
	"context"
	"time"

	"clockin/internal/domain"
	"clockin/internal/history"
	"clockin/internal/repository"
	"clockin/internal/session"
)

// SessionStatus is a point-in-time reading of the attendance clock
type SessionStatus struct {
	Owner            string        `json:"email"`
	Active           bool          `json:"isActive"`
	CheckInTime      *time.Time    `json:"checkInTime,omitempty"`
	Elapsed          time.Duration `json:"-"`
	FormattedElapsed string        `json:"elapsed"`
}

// CheckoutResult is the outcome of closing a check-in. Checkout resolves
// once the store has answered.
type CheckoutResult struct {
	Entry    *domain.TimeEntry
	Checkout *session.Checkout
	// Warning is set when the local snapshot could not be cleared
	Warning error
}

// HistoryReport is the filtered history shown to the user
type HistoryReport struct {
	Summary *history.Summary
	Daily   []history.DailyTotal
	// Stale means the store could not be reached and the last good list is shown
	Stale bool
}

// AttendanceService drives the check-in/check-out workflow
type AttendanceService interface {
	CheckIn(ctx context.Context) (*SessionStatus, error)
	CheckOut(ctx context.Context) (*CheckoutResult, error)
	Status() *SessionStatus
	Watch(ctx context.Context, interval time.Duration) <-chan session.Tick
}

// ReportingService loads and aggregates persisted entries
type ReportingService interface {
	FetchEntries(ctx context.Context) ([]*domain.TimeEntry, error)
	BuildReport(entries []*domain.TimeEntry, rng *domain.DateRange) *HistoryReport
	History(ctx context.Context, rng *domain.DateRange) (*HistoryReport, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	AttendanceService AttendanceService
	ReportingService  ReportingService
}

// NewServiceContainer wires the services for one session
func NewServiceContainer(sess *session.Session, repo repository.TimeEntryRepository, clock session.Clock) *ServiceContainer {
	if clock == nil {
		clock = time.Now
	}
	return &ServiceContainer{
		AttendanceService: NewAttendanceService(sess, clock),
		ReportingService:  NewReportingService(sess.Owner(), repo),
	}
}
