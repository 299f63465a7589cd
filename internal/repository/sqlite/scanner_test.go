package sqlite

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanner implements the Scanner interface for testing
type TestScanner struct {
	data []interface{}
	err  error
}

func (ts *TestScanner) Scan(dest ...interface{}) error {
	if ts.err != nil {
		return ts.err
	}
	if len(dest) != len(ts.data) {
		return errors.New("mismatch in number of destinations")
	}

	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			*v = ts.data[i].(string)
		case *sql.NullString:
			*v = ts.data[i].(sql.NullString)
		}
	}
	return nil
}

// TestRows implements the Rows interface over a list of scanners
type TestRows struct {
	rows []*TestScanner
	pos  int
	err  error
}

func (tr *TestRows) Next() bool {
	if tr.pos >= len(tr.rows) {
		return false
	}
	tr.pos++
	return true
}

func (tr *TestRows) Scan(dest ...interface{}) error {
	return tr.rows[tr.pos-1].Scan(dest...)
}

func (tr *TestRows) Err() error {
	return tr.err
}

func row(id, checkIn string, checkOut sql.NullString) *TestScanner {
	return &TestScanner{data: []interface{}{
		id, "jane@example.com", "1/15/2024", "Monday", checkIn, checkOut, "1h : 0min : 0sec",
	}}
}

func TestScanTimeEntry(t *testing.T) {
	t.Run("closed entry", func(t *testing.T) {
		entry, err := ScanTimeEntry(row("a", "2024-01-15T10:00:00Z", sql.NullString{String: "2024-01-15T11:00:00Z", Valid: true}))

		require.NoError(t, err)
		assert.Equal(t, "a", entry.ID)
		assert.Equal(t, "jane@example.com", entry.Owner)
		assert.Equal(t, "1/15/2024", entry.Date)
		assert.Equal(t, "Monday", entry.Day)
		assert.True(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC).Equal(entry.CheckIn))
		require.NotNil(t, entry.CheckOut)
		assert.Equal(t, time.Hour, entry.Duration())
		assert.Equal(t, "1h : 0min : 0sec", entry.TotalTime)
	})

	t.Run("null check-out", func(t *testing.T) {
		entry, err := ScanTimeEntry(row("b", "2024-01-15T10:00:00Z", sql.NullString{}))

		require.NoError(t, err)
		assert.Nil(t, entry.CheckOut)
	})

	t.Run("bad check-in", func(t *testing.T) {
		_, err := ScanTimeEntry(row("c", "yesterday", sql.NullString{}))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse check_in")
	})

	t.Run("bad check-out", func(t *testing.T) {
		_, err := ScanTimeEntry(row("d", "2024-01-15T10:00:00Z", sql.NullString{String: "later", Valid: true}))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse check_out")
	})

	t.Run("scanner error", func(t *testing.T) {
		entry, err := ScanTimeEntry(&TestScanner{err: sql.ErrNoRows})

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, entry)
	})
}

func TestScanTimeEntries(t *testing.T) {
	closed := sql.NullString{String: "2024-01-15T11:00:00Z", Valid: true}

	t.Run("several rows", func(t *testing.T) {
		rows := &TestRows{rows: []*TestScanner{
			row("a", "2024-01-15T10:00:00Z", closed),
			row("b", "2024-01-15T10:30:00Z", closed),
		}}

		entries, err := ScanTimeEntries(rows)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "a", entries[0].ID)
		assert.Equal(t, "b", entries[1].ID)
	})

	t.Run("no rows gives empty slice", func(t *testing.T) {
		entries, err := ScanTimeEntries(&TestRows{})

		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("rows error", func(t *testing.T) {
		_, err := ScanTimeEntries(&TestRows{err: errors.New("cursor broke")})

		assert.Error(t, err)
	})
}
