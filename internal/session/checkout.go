package session

import (
	"context"

	"clockin/internal/domain"
)

// Checkout tracks the background create of one closed entry.
// There is no retry: a failed create is final for that entry.
//
// Entry is never touched by the store and is safe to read at any time.
// The store's version, with its ID, is available from Stored once Done
// is closed.
type Checkout struct {
	Entry *domain.TimeEntry

	done   chan struct{}
	err    error
	stored *domain.TimeEntry
}

func newCheckout(entry *domain.TimeEntry) *Checkout {
	return &Checkout{Entry: entry, done: make(chan struct{})}
}

func (c *Checkout) finish(stored *domain.TimeEntry, err error) {
	if err == nil {
		c.stored = stored
	}
	c.err = err
	close(c.done)
}

// Done is closed once the store has answered.
func (c *Checkout) Done() <-chan struct{} {
	return c.done
}

// Err returns the persistence failure, or nil. It is nil until Done is closed.
func (c *Checkout) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Stored returns the entry as the store recorded it. It is nil until Done
// is closed and stays nil when the create failed.
func (c *Checkout) Stored() *domain.TimeEntry {
	select {
	case <-c.done:
		return c.stored
	default:
		return nil
	}
}

// Wait blocks until the store answers or ctx ends.
func (c *Checkout) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
