package sqlite

import (
	"database/sql"
	"fmt"

	"clockin/internal/domain"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTimeEntry scans a single time entry from a database row.
// Column order: id, owner, date, day, check_in, check_out, total_time.
func ScanTimeEntry(scanner Scanner) (*domain.TimeEntry, error) {
	entry := &domain.TimeEntry{}
	var checkIn string
	var checkOut sql.NullString

	err := scanner.Scan(
		&entry.ID,
		&entry.Owner,
		&entry.Date,
		&entry.Day,
		&checkIn,
		&checkOut,
		&entry.TotalTime,
	)
	if err != nil {
		return nil, err
	}

	entry.CheckIn, err = ParseTimeFromDB(checkIn)
	if err != nil {
		return nil, fmt.Errorf("time entry %s: parse check_in: %w", entry.ID, err)
	}
	if checkOut.Valid {
		t, err := ParseTimeFromDB(checkOut.String)
		if err != nil {
			return nil, fmt.Errorf("time entry %s: parse check_out: %w", entry.ID, err)
		}
		entry.CheckOut = &t
	}

	return entry, nil
}

// ScanTimeEntries scans multiple time entries from database rows
func ScanTimeEntries(rows Rows) ([]*domain.TimeEntry, error) {
	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry, err := ScanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
