package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockin/internal/domain"
	apperrors "clockin/internal/errors"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("CLOCKIN_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("CLOCKIN_TEST_PG_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := New(ctx, dsn, DefaultPoolOptions())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_CreateAndList(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	owner := uuid.New().String() + "@example.com"
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	later := domain.NewTimeEntry(owner, base.AddDate(0, 0, 1), base.AddDate(0, 0, 1).Add(time.Hour))
	earlier := domain.NewTimeEntry(owner, base, base.Add(3661*time.Second))
	require.NoError(t, repo.CreateTimeEntry(ctx, later))
	require.NoError(t, repo.CreateTimeEntry(ctx, earlier))

	entries, err := repo.ListTimeEntries(ctx, owner)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, earlier.ID, entries[0].ID)
	assert.Equal(t, "1h : 1min : 1sec", entries[0].TotalTime)
	assert.True(t, base.Equal(entries[0].CheckIn))
	require.NotNil(t, entries[0].CheckOut)
	assert.Equal(t, later.ID, entries[1].ID)
}

func TestRepository_RejectsInvalid(t *testing.T) {
	repo := setupTestRepo(t)
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	err := repo.CreateTimeEntry(context.Background(), domain.NewTimeEntry("a@b.c", base, base))

	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
}

func TestNew_BadDSN(t *testing.T) {
	_, err := New(context.Background(), "postgres://%zz", DefaultPoolOptions())

	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeDatabase))
}

func TestDefaultPoolOptions(t *testing.T) {
	opts := DefaultPoolOptions()

	assert.Equal(t, int32(10), opts.MaxConns)
	assert.Equal(t, int32(1), opts.MinConns)
	assert.Equal(t, 5*time.Minute, opts.MaxConnIdleTime)
}
