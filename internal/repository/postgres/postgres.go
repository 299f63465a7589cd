// Package postgres stores time entries in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/history"
	"clockin/internal/logging"
	"clockin/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS time_entries (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    date TEXT NOT NULL,
    day TEXT NOT NULL,
    check_in TIMESTAMPTZ NOT NULL,
    check_out TIMESTAMPTZ NOT NULL CHECK (check_out > check_in),
    total_time TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_time_entries_owner_check_in ON time_entries (owner, check_in);
`

var _ repository.TimeEntryRepository = (*Repository)(nil)

// PoolOptions tunes the connection pool.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

// DefaultPoolOptions returns the pool sizing used when none is configured.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:        10,
		MinConns:        1,
		MaxConnIdleTime: 5 * time.Minute,
	}
}

// Repository is a PostgreSQL time-entry store.
type Repository struct {
	pool *pgxpool.Pool
}

// New connects to dsn, checks the connection and creates the schema.
func New(ctx context.Context, dsn string, opts PoolOptions) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.NewDatabaseError("parse postgres dsn", err)
	}

	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.NewDatabaseError("connect to postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewDatabaseError("ping postgres", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, errors.NewDatabaseError("create schema", err)
	}

	logging.Debugf("postgres: connected to %s:%d/%s\n", cfg.ConnConfig.Host, cfg.ConnConfig.Port, cfg.ConnConfig.Database)
	return &Repository{pool: pool}, nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// Ping checks the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// CreateTimeEntry inserts a closed entry, assigning a UUID and any missing
// derived fields.
func (r *Repository) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	if !entry.IsValid() || entry.IsOpen() {
		return errors.NewValidationError("time entry needs an owner and a check-out after its check-in", nil)
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	history.Complete(entry)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO time_entries (id, owner, date, day, check_in, check_out, total_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.Owner, entry.Date, entry.Day, entry.CheckIn, *entry.CheckOut, entry.TotalTime)
	if err != nil {
		return errors.NewDatabaseError("insert time entry", err)
	}
	return nil
}

// ListTimeEntries returns the owner's entries ordered by check-in.
func (r *Repository) ListTimeEntries(ctx context.Context, owner string) ([]*domain.TimeEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner, date, day, check_in, check_out, total_time
		FROM time_entries
		WHERE owner = $1
		ORDER BY check_in ASC
	`, owner)
	if err != nil {
		return nil, errors.NewDatabaseError("query time entries", err)
	}

	entries, err := pgx.CollectRows(rows, scanTimeEntry)
	if err != nil {
		return nil, errors.NewDatabaseError("scan time entries", err)
	}
	return entries, nil
}

func scanTimeEntry(row pgx.CollectableRow) (*domain.TimeEntry, error) {
	entry := &domain.TimeEntry{}
	var checkOut *time.Time
	err := row.Scan(
		&entry.ID,
		&entry.Owner,
		&entry.Date,
		&entry.Day,
		&entry.CheckIn,
		&checkOut,
		&entry.TotalTime,
	)
	if err != nil {
		return nil, err
	}
	entry.CheckOut = checkOut
	return entry, nil
}
