package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockin/internal/domain"
	apperrors "clockin/internal/errors"
	"clockin/internal/history"
)

type memoryStateStore struct {
	mu       sync.Mutex
	state    *domain.SessionState
	saveErr  error
	clearErr error
	loadErr  error
}

func (m *memoryStateStore) Load() (domain.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.SessionState{}, m.loadErr
	}
	if m.state == nil {
		return domain.SessionState{}, nil
	}
	return *m.state, nil
}

func (m *memoryStateStore) Save(state domain.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = &state
	return nil
}

func (m *memoryStateStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.state = nil
	return nil
}

type recordingWriter struct {
	mu      sync.Mutex
	entries []*domain.TimeEntry
	err     error
	block   chan struct{}
}

func (r *recordingWriter) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	entry.ID = "generated"
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingWriter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func TestStartStop_TotalTimeMatchesFormattedDuration(t *testing.T) {
	for _, d := range []time.Duration{time.Second, 59 * time.Second, 3661 * time.Second, 9*time.Hour + 30*time.Minute} {
		t.Run(d.String(), func(t *testing.T) {
			store := &memoryStateStore{}
			writer := &recordingWriter{}
			s := New("jane@example.com", store, writer)

			started, err := s.Start(t0)
			require.NoError(t, err)
			require.True(t, started)

			checkout, stopped, err := s.Stop(context.Background(), t0.Add(d))
			require.NoError(t, err)
			require.True(t, stopped)
			require.NoError(t, checkout.Wait(context.Background()))

			assert.Equal(t, history.FormatDuration(int64(d/time.Second)), checkout.Entry.TotalTime)
			assert.Equal(t, "jane@example.com", checkout.Entry.Owner)
			assert.Equal(t, "3/4/2024", checkout.Entry.Date)
			assert.Equal(t, "Monday", checkout.Entry.Day)
			assert.Equal(t, 1, writer.count())
			assert.False(t, s.IsActive())
		})
	}
}

func TestStop_WhileIdleIsNoop(t *testing.T) {
	store := &memoryStateStore{}
	writer := &recordingWriter{}
	s := New("jane@example.com", store, writer)

	checkout, stopped, err := s.Stop(context.Background(), t0)

	require.NoError(t, err)
	assert.False(t, stopped)
	assert.Nil(t, checkout)
	assert.False(t, s.IsActive())
	assert.Nil(t, store.state)
	assert.Equal(t, 0, writer.count())
}

func TestStart_WhileActivePreservesCheckIn(t *testing.T) {
	store := &memoryStateStore{}
	s := New("jane@example.com", store, &recordingWriter{})

	_, err := s.Start(t0)
	require.NoError(t, err)

	started, err := s.Start(t0.Add(time.Hour))

	require.NoError(t, err)
	assert.False(t, started)
	checkIn, active := s.CheckInTime()
	assert.True(t, active)
	assert.Equal(t, t0, checkIn)
	assert.Equal(t, t0, store.state.CheckInTime)
}

func TestStart_SaveFailureStaysIdle(t *testing.T) {
	store := &memoryStateStore{saveErr: errors.New("read-only file system")}
	s := New("jane@example.com", store, &recordingWriter{})

	started, err := s.Start(t0)

	require.Error(t, err)
	assert.False(t, started)
	assert.False(t, s.IsActive())
}

func TestStart_WritesDurableSnapshot(t *testing.T) {
	store := &memoryStateStore{}
	s := New("jane@example.com", store, &recordingWriter{})

	_, err := s.Start(t0)
	require.NoError(t, err)
	require.NotNil(t, store.state)
	assert.Equal(t, domain.ActiveSince(t0), *store.state)

	checkout, _, err := s.Stop(context.Background(), t0.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, checkout.Wait(context.Background()))
	assert.Nil(t, store.state)
}

func TestRestore_ActiveResumesElapsed(t *testing.T) {
	store := &memoryStateStore{state: &domain.SessionState{CheckInTime: t0, IsActive: true}}

	s, err := Restore("jane@example.com", store, &recordingWriter{})

	require.NoError(t, err)
	assert.True(t, s.IsActive())
	assert.Equal(t, 60*time.Second, s.Elapsed(t0.Add(60*time.Second)))
}

func TestRestore_IdleAndLoadFailure(t *testing.T) {
	s, err := Restore("jane@example.com", &memoryStateStore{}, &recordingWriter{})
	require.NoError(t, err)
	assert.False(t, s.IsActive())
	assert.Equal(t, time.Duration(0), s.Elapsed(t0))

	s, err = Restore("jane@example.com", &memoryStateStore{loadErr: errors.New("permission denied")}, &recordingWriter{})
	require.Error(t, err)
	require.NotNil(t, s)
	assert.False(t, s.IsActive())
}

func TestElapsed(t *testing.T) {
	s := New("jane@example.com", &memoryStateStore{}, &recordingWriter{})
	assert.Equal(t, time.Duration(0), s.Elapsed(t0))

	_, err := s.Start(t0)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, s.Elapsed(t0.Add(90*time.Minute)))
	assert.Equal(t, time.Duration(0), s.Elapsed(t0.Add(-time.Minute)))
}

func TestStop_RejectsNonPositiveDuration(t *testing.T) {
	writer := &recordingWriter{}
	s := New("jane@example.com", &memoryStateStore{}, writer)
	_, err := s.Start(t0)
	require.NoError(t, err)

	checkout, stopped, err := s.Stop(context.Background(), t0)

	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
	assert.False(t, stopped)
	assert.Nil(t, checkout)
	assert.True(t, s.IsActive())
	assert.Equal(t, 0, writer.count())
}

func TestStop_PersistenceFailureKeepsIdle(t *testing.T) {
	writer := &recordingWriter{err: errors.New("503 Service Unavailable")}
	s := New("jane@example.com", &memoryStateStore{}, writer)
	_, err := s.Start(t0)
	require.NoError(t, err)

	checkout, stopped, err := s.Stop(context.Background(), t0.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, stopped)

	err = checkout.Wait(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypePersistence))
	assert.Equal(t, err, checkout.Err())
	assert.False(t, s.IsActive())
	assert.Equal(t, 0, writer.count())
	assert.Nil(t, checkout.Stored())
}

func TestStop_ClearFailureStillGoesIdle(t *testing.T) {
	store := &memoryStateStore{}
	s := New("jane@example.com", store, &recordingWriter{})
	_, err := s.Start(t0)
	require.NoError(t, err)
	store.clearErr = errors.New("disk full")

	checkout, stopped, err := s.Stop(context.Background(), t0.Add(time.Minute))

	require.Error(t, err)
	assert.True(t, stopped)
	require.NotNil(t, checkout)
	assert.False(t, s.IsActive())
	assert.NoError(t, checkout.Wait(context.Background()))
}

func TestStop_PersistenceOutlivesCallerContext(t *testing.T) {
	writer := &recordingWriter{block: make(chan struct{})}
	s := New("jane@example.com", &memoryStateStore{}, writer)
	_, err := s.Start(t0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	checkout, _, err := s.Stop(ctx, t0.Add(time.Minute))
	require.NoError(t, err)
	cancel()

	assert.Nil(t, checkout.Err())
	select {
	case <-checkout.Done():
		t.Fatal("checkout finished before the store answered")
	default:
	}

	close(writer.block)
	require.NoError(t, checkout.Wait(context.Background()))
	assert.Equal(t, 1, writer.count())
}

func TestStop_StoreWritesDoNotReachCallerEntry(t *testing.T) {
	writer := &recordingWriter{block: make(chan struct{})}
	s := New("jane@example.com", &memoryStateStore{}, writer)
	_, err := s.Start(t0)
	require.NoError(t, err)

	checkout, _, err := s.Stop(context.Background(), t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, checkout.Stored())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = checkout.Entry.TotalTime
			_ = *checkout.Entry.CheckOut
			_ = checkout.Entry.ID
		}
	}()
	close(writer.block)
	require.NoError(t, checkout.Wait(context.Background()))
	wg.Wait()

	assert.Empty(t, checkout.Entry.ID)
	require.NotNil(t, checkout.Stored())
	assert.Equal(t, "generated", checkout.Stored().ID)
	assert.Equal(t, checkout.Entry.TotalTime, checkout.Stored().TotalTime)
	assert.NotSame(t, checkout.Entry.CheckOut, checkout.Stored().CheckOut)
}

func TestStop_AcceptsMultiDaySession(t *testing.T) {
	writer := &recordingWriter{}
	s := New("jane@example.com", &memoryStateStore{}, writer)
	_, err := s.Start(t0)
	require.NoError(t, err)

	checkout, stopped, err := s.Stop(context.Background(), t0.Add(25*time.Hour))
	require.NoError(t, err)
	require.True(t, stopped)
	require.NoError(t, checkout.Wait(context.Background()))

	assert.Equal(t, "25h : 0min : 0sec", checkout.Entry.TotalTime)
	assert.Equal(t, 1, writer.count())
}

func TestStop_WriteTimeout(t *testing.T) {
	writer := &recordingWriter{block: make(chan struct{})}
	defer close(writer.block)
	s := New("jane@example.com", &memoryStateStore{}, writer, WithWriteTimeout(20*time.Millisecond))
	_, err := s.Start(t0)
	require.NoError(t, err)

	checkout, _, err := s.Stop(context.Background(), t0.Add(time.Minute))
	require.NoError(t, err)

	err = checkout.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCheckout_WaitHonoursContext(t *testing.T) {
	c := newCheckout(&domain.TimeEntry{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Wait(ctx), context.Canceled)
}
