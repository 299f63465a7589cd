package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCommand_Execute(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()
	cmd := NewStartCommand(env.app)

	t.Run("clocks in", func(t *testing.T) {
		require.NoError(t, cmd.Execute(ctx, nil))
		assert.Equal(t, "Clocked In: 09:00 AM\n", env.out.String())

		state, err := env.store.Load()
		require.NoError(t, err)
		assert.True(t, state.IsActive)
	})

	t.Run("starting twice keeps the first check-in", func(t *testing.T) {
		env.out.Reset()
		env.clock.Advance(10 * time.Minute)

		require.NoError(t, cmd.Execute(ctx, nil))
		assert.Contains(t, env.out.String(), "Already clocked in since 09:00 AM")
		assert.Contains(t, env.out.String(), "0h : 10min : 0sec")
	})

	t.Run("rejects arguments", func(t *testing.T) {
		err := cmd.Execute(ctx, []string{"extra"})
		assert.Error(t, err)
	})
}

func TestStartCommand_RequiresOwner(t *testing.T) {
	blank := setupTestAppWithOwner(t, "")
	err := NewStartCommand(blank.app).Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clock in")
}

func TestStopCommand_Execute(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()
	cmd := NewStopCommand(env.app)

	t.Run("stopping while idle is not an error", func(t *testing.T) {
		require.NoError(t, cmd.Execute(ctx, nil))
		assert.Equal(t, "Not clocked in\n", env.out.String())
	})

	t.Run("clocks out and records the entry", func(t *testing.T) {
		require.NoError(t, NewStartCommand(env.app).Execute(ctx, nil))
		env.clock.Advance(time.Hour + time.Minute + time.Second)
		env.out.Reset()

		require.NoError(t, cmd.Execute(ctx, nil))
		assert.Contains(t, env.out.String(), "Clocked out at 10:01 AM")
		assert.Contains(t, env.out.String(), "Worked: 1h : 1min : 1sec")
		assert.Empty(t, env.err.String())

		entries, err := env.repo.ListTimeEntries(ctx, testOwner)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "1h : 1min : 1sec", entries[0].TotalTime)

		state, err := env.store.Load()
		require.NoError(t, err)
		assert.False(t, state.IsActive)
	})
}

func TestStatusCommand_Execute(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()
	cmd := NewStatusCommand(env.app)

	t.Run("idle", func(t *testing.T) {
		require.NoError(t, cmd.Execute(ctx, nil))
		assert.Contains(t, env.out.String(), "IDLE")
		assert.NotContains(t, env.out.String(), "Elapsed")
	})

	t.Run("active", func(t *testing.T) {
		require.NoError(t, NewStartCommand(env.app).Execute(ctx, nil))
		env.clock.Advance(90 * time.Second)
		env.out.Reset()

		require.NoError(t, cmd.Execute(ctx, nil))
		assert.Contains(t, env.out.String(), "CLOCKED IN")
		assert.Contains(t, env.out.String(), "Clocked In: 09:00 AM")
		assert.Contains(t, env.out.String(), "Elapsed: 0h : 1min : 30sec")
	})

	t.Run("json", func(t *testing.T) {
		env.out.Reset()
		require.NoError(t, cmd.Execute(ctx, []string{"--json"}))

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(env.out.Bytes(), &payload))
		assert.Equal(t, testOwner, payload["email"])
		assert.Equal(t, true, payload["isActive"])
		assert.Equal(t, "0h : 1min : 30sec", payload["elapsed"])
	})

	t.Run("rejects unknown flags", func(t *testing.T) {
		assert.Error(t, cmd.Execute(ctx, []string{"--nope"}))
	})
}

func TestStatusCommand_WatchEndsOnCheckout(t *testing.T) {
	env := setupTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, NewStartCommand(env.app).Execute(ctx, nil))
	env.clock.Advance(time.Minute)

	done := make(chan error, 1)
	go func() {
		done <- NewStatusCommand(env.app).Run(ctx, StatusOptions{Watch: true, Interval: 10 * time.Millisecond})
	}()

	time.Sleep(50 * time.Millisecond)
	result, err := env.app.businessAPI.CheckOut(ctx)
	require.NoError(t, err)
	require.NoError(t, result.Checkout.Wait(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("watch did not stop after check-out")
	}
}

func TestHistoryCommand_Execute(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()
	cmd := NewHistoryCommand(env.app)

	t.Run("empty history", func(t *testing.T) {
		require.NoError(t, cmd.Execute(ctx, nil))
		assert.Equal(t, "No time entries found\n", env.out.String())
	})

	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	env.seed(t, day1, time.Hour)
	env.seed(t, day1.AddDate(0, 0, 1), 30*time.Minute)
	env.seed(t, day1.AddDate(0, 0, 2), 2*time.Hour)

	t.Run("table without range has no total row", func(t *testing.T) {
		env.out.Reset()
		require.NoError(t, cmd.Execute(ctx, nil))
		out := env.out.String()
		assert.Contains(t, out, "3/1/2024")
		assert.Contains(t, out, "3/3/2024")
		assert.Equal(t, 1, strings.Count(out, "Total"))
		assert.Contains(t, out, "3 entries")
	})

	t.Run("range filters and totals", func(t *testing.T) {
		env.out.Reset()
		require.NoError(t, cmd.Execute(ctx, []string{"--from", "2024-03-01", "--to", "2024-03-02"}))
		out := env.out.String()
		assert.Contains(t, out, "3/2/2024")
		assert.NotContains(t, out, "3/3/2024")
		assert.Contains(t, out, "1h : 30min : 0sec")
		assert.Contains(t, out, "2 entries")
	})

	t.Run("csv", func(t *testing.T) {
		env.out.Reset()
		require.NoError(t, cmd.Execute(ctx, []string{"--format", "csv", "--from", "2024-03-03"}))

		records, err := csv.NewReader(strings.NewReader(env.out.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"Date", "Day", "Check In", "Check Out", "Total Time"}, records[0])
		assert.Equal(t, []string{"3/3/2024", "Sunday", "09:00 AM", "11:00 AM", "2h : 0min : 0sec"}, records[1])
		assert.Equal(t, "Total", records[2][0])
	})

	t.Run("json", func(t *testing.T) {
		env.out.Reset()
		require.NoError(t, cmd.Execute(ctx, []string{"--format", "json"}))

		var payload historyJSON
		require.NoError(t, json.Unmarshal(env.out.Bytes(), &payload))
		assert.Equal(t, 3, payload.Count)
		assert.Equal(t, "3h : 30min : 0sec", payload.TotalTime)
	})

	t.Run("rejects since with from", func(t *testing.T) {
		err := cmd.Execute(ctx, []string{"--since", "1d", "--from", "2024-03-01"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "either --since or --from/--to")
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		assert.Error(t, cmd.Execute(ctx, []string{"--format", "xml"}))
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		err := cmd.Execute(ctx, []string{"--from", "03/01/2024"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load history")
	})
}

func TestSummaryCommand_Execute(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()

	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	env.seed(t, day, time.Hour)
	env.seed(t, day.Add(4*time.Hour), 30*time.Minute)
	env.seed(t, day.AddDate(0, 0, 1), 15*time.Minute)

	require.NoError(t, NewSummaryCommand(env.app).Execute(ctx, nil))
	out := env.out.String()
	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "1h : 30min : 0sec")
	assert.Contains(t, out, "1h : 45min : 0sec")
	assert.Contains(t, out, "3 entries across 2 days")
}

func TestExportCommand_Execute(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()
	cmd := NewExportCommand(env.app)

	env.seed(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), time.Hour)

	t.Run("csv to stdout by default", func(t *testing.T) {
		require.NoError(t, cmd.Execute(ctx, nil))
		assert.True(t, strings.HasPrefix(env.out.String(), "Date,Day,Check In,Check Out,Total Time\n"))
		assert.Contains(t, env.out.String(), "3/1/2024,Friday,09:00 AM,10:00 AM,1h : 0min : 0sec")
	})

	t.Run("json to a file", func(t *testing.T) {
		env.out.Reset()
		path := filepath.Join(t.TempDir(), "entries.json")
		require.NoError(t, cmd.Execute(ctx, []string{"--format", "json", "-o", path}))
		assert.Contains(t, env.out.String(), "Exported 1 entry to "+path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var payload historyJSON
		require.NoError(t, json.Unmarshal(data, &payload))
		require.Len(t, payload.Entries, 1)
		assert.Equal(t, testOwner, payload.Entries[0].Owner)
	})

	t.Run("table is not an export format", func(t *testing.T) {
		assert.Error(t, cmd.Execute(ctx, []string{"--format", "table"}))
	})
}
