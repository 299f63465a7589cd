package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/history"
	"clockin/internal/repository"
	"clockin/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

const selectColumns = `id, owner, date, day, check_in, check_out, total_time`

var _ repository.TimeEntryRepository = (*SQLiteRepository)(nil)

// SQLiteRepository stores time entries in a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// New opens dbPath, enables WAL and runs migrations.
// ":memory:" is allowed and pinned to a single connection.
func New(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("set WAL mode", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// CreateTimeEntry inserts a closed entry, assigning a UUID and any missing
// derived fields.
func (r *SQLiteRepository) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	if !entry.IsValid() || entry.IsOpen() {
		return errors.NewValidationError("time entry needs an owner and a check-out after its check-in", nil)
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	history.Complete(entry)

	query := `
	INSERT INTO time_entries (id, owner, date, day, check_in, check_out, total_time)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	return ExecuteInsert(ctx, r.db, query,
		entry.ID,
		entry.Owner,
		entry.Date,
		entry.Day,
		FormatTimeForDB(entry.CheckIn),
		FormatTimePtrForDB(entry.CheckOut),
		entry.TotalTime,
	)
}

// ListTimeEntries returns the owner's entries ordered by check-in.
func (r *SQLiteRepository) ListTimeEntries(ctx context.Context, owner string) ([]*domain.TimeEntry, error) {
	query := `
	SELECT ` + selectColumns + `
	FROM time_entries
	WHERE owner = ?
	ORDER BY check_in ASC`

	return QueryMultiple(ctx, r.db, query, ScanTimeEntries, "time entries", owner)
}
