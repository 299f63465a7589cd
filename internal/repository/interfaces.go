// Package repository defines the remote time-entry store the attendance
// clock writes closed intervals to. Entries are append-only: stores expose
// no update or delete.
package repository

import (
	"context"

	"clockin/internal/domain"
)

// TimeEntryRepository lists and creates time entries.
type TimeEntryRepository interface {
	// ListTimeEntries returns the owner's entries ordered by check-in.
	ListTimeEntries(ctx context.Context, owner string) ([]*domain.TimeEntry, error)
	// CreateTimeEntry stores a closed entry. The store assigns entry.ID.
	CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error
	Close() error
}
