package session

import (
	"context"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Tick is one published elapsed-time reading.
type Tick struct {
	At      time.Time
	Elapsed time.Duration
	Active  bool
}

// Watch publishes the elapsed time every interval until ctx is cancelled or
// the session is stopped, then closes the channel. A final tick is sent
// when the session goes idle. Watch only reads the session.
func (s *Session) Watch(ctx context.Context, interval time.Duration, clock Clock) <-chan Tick {
	if clock == nil {
		clock = time.Now
	}
	if interval <= 0 {
		interval = time.Second
	}

	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()

	ticks := make(chan Tick, 1)
	go func() {
		defer close(ticks)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		publish := func() bool {
			now := clock()
			tick := Tick{At: now, Elapsed: s.Elapsed(now), Active: s.IsActive()}
			select {
			case ticks <- tick:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !publish() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopped:
				publish()
				return
			case <-ticker.C:
				if !publish() {
					return
				}
			}
		}
	}()
	return ticks
}
