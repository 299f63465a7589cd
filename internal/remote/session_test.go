package remote_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockin/internal/remote"
	"clockin/internal/session"
	"clockin/internal/statestore"
)

func newRemoteSession(t *testing.T) (*session.Session, *remote.Client, *statestore.SessionStore) {
	t.Helper()
	_, ts := newService(t)
	client, err := remote.NewClient(context.Background(), ts.URL, "", 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	kv, err := statestore.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	store := statestore.NewSessionStore(kv)

	return session.New(owner, store, client), client, store
}

func TestSession_CheckoutThroughClient(t *testing.T) {
	s, client, store := newRemoteSession(t)
	checkIn := time.Now().Add(-2 * time.Hour).Truncate(time.Second)

	_, err := s.Start(checkIn)
	require.NoError(t, err)
	checkout, stopped, err := s.Stop(context.Background(), checkIn.Add(3661*time.Second))
	require.NoError(t, err)
	require.True(t, stopped)

	// the caller reads its entry while the create is in flight
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = checkout.Entry.TotalTime
			_ = *checkout.Entry.CheckOut
			_ = checkout.Entry.ID
		}
	}()
	require.NoError(t, checkout.Wait(context.Background()))
	wg.Wait()

	assert.Equal(t, "1h : 1min : 1sec", checkout.Entry.TotalTime)
	assert.Empty(t, checkout.Entry.ID)
	stored := checkout.Stored()
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.ID)

	entries, err := client.ListTimeEntries(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, stored.ID, entries[0].ID)
	assert.Equal(t, "1h : 1min : 1sec", entries[0].TotalTime)

	state, err := store.Load()
	require.NoError(t, err)
	assert.False(t, state.IsActive)
}

func TestSession_MultiDayCheckoutIsStored(t *testing.T) {
	s, client, _ := newRemoteSession(t)
	checkIn := time.Now().Add(-26 * time.Hour).Truncate(time.Second)

	_, err := s.Start(checkIn)
	require.NoError(t, err)
	checkout, stopped, err := s.Stop(context.Background(), checkIn.Add(25*time.Hour))
	require.NoError(t, err)
	require.True(t, stopped)

	require.NoError(t, checkout.Wait(context.Background()))

	entries, err := client.ListTimeEntries(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "25h : 0min : 0sec", entries[0].TotalTime)
}
