package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func TestWatch_PublishesElapsed(t *testing.T) {
	s := New("jane@example.com", &memoryStateStore{}, &recordingWriter{})
	_, err := s.Start(t0)
	require.NoError(t, err)

	clock := &fakeClock{now: t0}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := s.Watch(ctx, time.Millisecond, clock.Now)

	first := <-ticks
	second := <-ticks
	assert.True(t, first.Active)
	assert.Equal(t, time.Second, first.Elapsed)
	assert.Equal(t, 2*time.Second, second.Elapsed)
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	s := New("jane@example.com", &memoryStateStore{}, &recordingWriter{})
	_, err := s.Start(t0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := s.Watch(ctx, time.Hour, nil)
	<-ticks
	cancel()

	select {
	case _, ok := <-ticks:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_ClosesOnStop(t *testing.T) {
	s := New("jane@example.com", &memoryStateStore{}, &recordingWriter{})
	_, err := s.Start(t0)
	require.NoError(t, err)

	ticks := s.Watch(context.Background(), time.Hour, func() time.Time { return t0.Add(time.Minute) })
	first := <-ticks
	assert.True(t, first.Active)

	checkout, _, err := s.Stop(context.Background(), t0.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, checkout.Wait(context.Background()))

	var last Tick
	timeout := time.After(time.Second)
	for {
		select {
		case tick, ok := <-ticks:
			if !ok {
				assert.False(t, last.Active)
				assert.Equal(t, time.Duration(0), last.Elapsed)
				return
			}
			last = tick
		case <-timeout:
			t.Fatal("watch did not stop after session stop")
		}
	}
}
