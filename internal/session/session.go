// Package session models one owner's attendance clock: an idle or active
// check-in, its elapsed time, and the hand-off of closed intervals to the
// time-entry store.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/history"
	"clockin/internal/logging"
)

// DefaultWriteTimeout bounds the background create of a closed entry.
const DefaultWriteTimeout = 10 * time.Second

// StateStore saves and restores the durable session snapshot.
type StateStore interface {
	Load() (domain.SessionState, error)
	Save(state domain.SessionState) error
	Clear() error
}

// EntryWriter receives closed entries.
type EntryWriter interface {
	CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error
}

// Session is one owner's open/closed check-in state.
// Only Start and Stop mutate it; readers such as Watch take the read lock.
type Session struct {
	mu      sync.RWMutex
	owner   string
	store   StateStore
	entries EntryWriter

	active  bool
	checkIn time.Time
	stopped chan struct{}

	writeTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithWriteTimeout sets the bound on the background create.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithLogger sets the logger used by the persistence goroutine.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns an idle session for owner.
func New(owner string, store StateStore, entries EntryWriter, opts ...Option) *Session {
	stopped := make(chan struct{})
	close(stopped)

	s := &Session{
		owner:        owner,
		store:        store,
		entries:      entries,
		stopped:      stopped,
		writeTimeout: DefaultWriteTimeout,
		logger:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore reads the durable snapshot once. An active snapshot resumes from
// its stored check-in time. When the store cannot be read the returned
// session is idle and the error is reported alongside it.
func Restore(owner string, store StateStore, entries EntryWriter, opts ...Option) (*Session, error) {
	s := New(owner, store, entries, opts...)

	state, err := store.Load()
	if err != nil {
		return s, err
	}
	if state.IsActive && !state.CheckInTime.IsZero() {
		s.active = true
		s.checkIn = state.CheckInTime
		s.stopped = make(chan struct{})
		logging.Debugf("session: restored active check-in at %s\n", state.CheckInTime.Format(time.RFC3339))
	}
	return s, nil
}

// Owner returns the owner identifier.
func (s *Session) Owner() string {
	return s.owner
}

// IsActive reports whether a check-in is open.
func (s *Session) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// CheckInTime returns the open check-in, if any.
func (s *Session) CheckInTime() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkIn, s.active
}

// Elapsed returns now - checkIn while active and zero while idle.
func (s *Session) Elapsed(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return 0
	}
	if d := now.Sub(s.checkIn); d > 0 {
		return d
	}
	return 0
}

// Start opens a check-in at now. It returns false without error when a
// check-in is already open. If the snapshot cannot be saved the session
// stays idle.
func (s *Session) Start(now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return false, nil
	}
	if err := s.store.Save(domain.ActiveSince(now)); err != nil {
		return false, err
	}

	s.active = true
	s.checkIn = now
	s.stopped = make(chan struct{})
	logging.Debugf("session: %s checked in at %s\n", s.owner, now.Format(time.RFC3339))
	return true, nil
}

// Stop closes the open check-in at now and hands the entry to the store in
// the background. It returns false without error while idle.
//
// now must be after the check-in; otherwise a validation error is returned
// and the session stays active. Once the entry is built the session is idle
// for good: a failure to clear the snapshot is returned together with the
// Checkout, and a failed create only shows up on the Checkout.
func (s *Session) Stop(ctx context.Context, now time.Time) (*Checkout, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil, false, nil
	}
	if !now.After(s.checkIn) {
		return nil, false, errors.NewValidationError("check-out must be after check-in", nil).
			WithContext("checkIn", s.checkIn).
			WithContext("checkOut", now)
	}

	entry := domain.NewTimeEntry(s.owner, s.checkIn, now)
	history.Complete(entry)

	s.active = false
	s.checkIn = time.Time{}
	close(s.stopped)

	var clearErr error
	if err := s.store.Clear(); err != nil {
		clearErr = err
	}

	checkout := s.persist(ctx, entry)
	logging.Debugf("session: %s checked out at %s (%s)\n", s.owner, now.Format(time.RFC3339), entry.TotalTime)
	return checkout, true, clearErr
}

// persist creates a copy of entry on its own goroutine; stores may write
// back into what they are given. The write outlives ctx cancellation and is
// bounded by the write timeout instead.
func (s *Session) persist(ctx context.Context, entry *domain.TimeEntry) *Checkout {
	checkout := newCheckout(entry)
	stored := entry.Clone()
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	owner := s.owner
	entries := s.entries
	logger := s.logger

	go func() {
		defer cancel()
		var err error
		if entries == nil {
			err = errors.NewInvalidStateError("record a check-out", "no time-entry store is configured")
		} else {
			err = entries.CreateTimeEntry(writeCtx, stored)
		}
		if err != nil {
			err = errors.NewPersistenceError(owner, err)
			logger.Error("check-out not recorded", "owner", owner, "checkIn", stored.CheckIn, "error", err)
		} else {
			logger.Info("check-out recorded", "owner", owner, "id", stored.ID, "totalTime", stored.TotalTime)
		}
		checkout.finish(stored, err)
	}()
	return checkout
}
