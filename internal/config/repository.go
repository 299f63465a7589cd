package config

import (
	"context"
	"fmt"
	"os"

	"clockin/internal/remote"
	"clockin/internal/repository"
	"clockin/internal/repository/postgres"
	"clockin/internal/repository/sqlite"
	"clockin/internal/statestore"
)

// CreateRepository creates the time-entry store selected by the configuration.
// A remote URL wins over the database driver.
func CreateRepository(ctx context.Context, config *Config) (repository.TimeEntryRepository, error) {
	if config.Remote.URL != "" {
		client, err := remote.NewClient(ctx, config.Remote.URL, config.Remote.Token, config.Remote.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize remote store: %w", err)
		}
		return client, nil
	}

	switch config.Database.Driver {
	case DriverPostgres:
		opts := postgres.DefaultPoolOptions()
		if config.Database.MaxConns > 0 {
			opts.MaxConns = int32(config.Database.MaxConns)
		}
		connectCtx, cancel := context.WithTimeout(ctx, config.GetQueryTimeout())
		defer cancel()

		repo, err := postgres.New(connectCtx, config.Database.DSN, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	default:
		if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		repo, err := sqlite.New(config.GetDatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	}
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (repository.TimeEntryRepository, error) {
	repo, err := sqlite.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return repo, nil
}

// CreateSessionStore opens the local snapshot file holding the active session.
func CreateSessionStore(config *Config) (*statestore.SessionStore, error) {
	kv, err := statestore.Open(config.Session.StateFile)
	if err != nil {
		return nil, err
	}
	return statestore.NewSessionStore(kv), nil
}
