package migrations

import (
	"database/sql"
	"fmt"
	"time"

	"clockin/internal/domain"
	"clockin/internal/history"
)

func init() {
	RegisterGoMigration(3, Up_000003_backfill_derived_fields, Down_000003_backfill_derived_fields)
}

// Up_000003_backfill_derived_fields fills date, day and total_time for rows
// written by clients that only sent check_in and check_out.
func Up_000003_backfill_derived_fields(tx *sql.Tx) error {
	type row struct {
		id       string
		checkIn  string
		checkOut sql.NullString
	}
	var rows []row

	result, err := tx.Query(`SELECT id, check_in, check_out FROM time_entries WHERE date = '' OR day = '' OR total_time = ''`)
	if err != nil {
		return fmt.Errorf("failed to query time entries: %w", err)
	}
	for result.Next() {
		var r row
		if err := result.Scan(&r.id, &r.checkIn, &r.checkOut); err != nil {
			result.Close()
			return fmt.Errorf("failed to scan time entry: %w", err)
		}
		rows = append(rows, r)
	}
	if err := result.Err(); err != nil {
		result.Close()
		return fmt.Errorf("error iterating time entries: %w", err)
	}
	result.Close()

	stmt, err := tx.Prepare(`UPDATE time_entries SET date = ?, day = ?, total_time = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare backfill statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		checkIn, err := time.Parse(time.RFC3339Nano, r.checkIn)
		if err != nil {
			return fmt.Errorf("time entry %s has unparseable check_in %q: %w", r.id, r.checkIn, err)
		}

		entry := &domain.TimeEntry{CheckIn: checkIn}
		if r.checkOut.Valid {
			checkOut, err := time.Parse(time.RFC3339Nano, r.checkOut.String)
			if err != nil {
				return fmt.Errorf("time entry %s has unparseable check_out %q: %w", r.id, r.checkOut.String, err)
			}
			entry.CheckOut = &checkOut
		}
		history.Complete(entry)

		if _, err := stmt.Exec(entry.Date, entry.Day, entry.TotalTime, r.id); err != nil {
			return fmt.Errorf("failed to backfill time entry %s: %w", r.id, err)
		}
	}
	return nil
}

// Down_000003_backfill_derived_fields is a no-op: the derived values stay valid.
func Down_000003_backfill_derived_fields(tx *sql.Tx) error {
	return nil
}
