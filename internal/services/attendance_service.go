package services

import (
	"context"
	"time"

	"clockin/internal/errors"
	"clockin/internal/history"
	"clockin/internal/session"
)

// attendanceServiceImpl implements the AttendanceService interface
type attendanceServiceImpl struct {
	session *session.Session
	clock   session.Clock
}

// NewAttendanceService creates a new AttendanceService instance
func NewAttendanceService(sess *session.Session, clock session.Clock) AttendanceService {
	if clock == nil {
		clock = time.Now
	}
	return &attendanceServiceImpl{session: sess, clock: clock}
}

// CheckIn opens a check-in now. An open check-in is reported as an
// invalid-state error and left untouched.
func (a *attendanceServiceImpl) CheckIn(ctx context.Context) (*SessionStatus, error) {
	started, err := a.session.Start(a.clock())
	if err != nil {
		return nil, err
	}
	if !started {
		return a.Status(), errors.NewInvalidStateError("check in", "already clocked in")
	}
	return a.Status(), nil
}

// CheckOut closes the open check-in now and starts recording it.
func (a *attendanceServiceImpl) CheckOut(ctx context.Context) (*CheckoutResult, error) {
	checkout, stopped, err := a.session.Stop(ctx, a.clock())
	if !stopped {
		if err != nil {
			return nil, err
		}
		return nil, errors.NewInvalidStateError("check out", "not clocked in")
	}
	return &CheckoutResult{
		Entry:    checkout.Entry,
		Checkout: checkout,
		Warning:  err,
	}, nil
}

// Status reads the session without changing it
func (a *attendanceServiceImpl) Status() *SessionStatus {
	now := a.clock()
	status := &SessionStatus{Owner: a.session.Owner()}

	if checkIn, active := a.session.CheckInTime(); active {
		status.Active = true
		status.CheckInTime = &checkIn
		status.Elapsed = a.session.Elapsed(now)
	}
	status.FormattedElapsed = history.FormatElapsed(status.Elapsed)
	return status
}

func (a *attendanceServiceImpl) Watch(ctx context.Context, interval time.Duration) <-chan session.Tick {
	return a.session.Watch(ctx, interval, a.clock)
}
