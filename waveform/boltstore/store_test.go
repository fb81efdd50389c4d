package boltstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/cwbudde/algo-studio/waveform"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "waveforms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func collect(t *testing.T, s *Store) []string {
	t.Helper()

	var keys []string
	for e, err := range s.ScanByTimestamp(context.Background()) {
		require.NoError(t, err)
		keys = append(keys, e.Key)
	}
	return keys
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := waveform.Entry{Key: "a", Peaks: []float64{0.5, 1}, DurationSeconds: 3.5, TimestampMs: 1000}
	require.NoError(t, s.Put(ctx, want))

	got, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScanByTimestampOrdersOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i, ts := range []int64{300, 100, 200, 100} {
		require.NoError(t, s.Put(ctx, waveform.Entry{Key: fmt.Sprintf("k%d", i), TimestampMs: ts}))
	}

	assert.Equal(t, []string{"k1", "k3", "k2", "k0"}, collect(t, s))
}

func TestPutReplacesIndexRecord(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, waveform.Entry{Key: "a", TimestampMs: 100}))
	require.NoError(t, s.Put(ctx, waveform.Entry{Key: "b", TimestampMs: 200}))
	require.NoError(t, s.Put(ctx, waveform.Entry{Key: "a", TimestampMs: 300}))

	assert.Equal(t, []string{"b", "a"}, collect(t, s))
}

func TestDeleteAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i := range 3 {
		require.NoError(t, s.Put(ctx, waveform.Entry{Key: fmt.Sprintf("k%d", i), TimestampMs: int64(i)}))
	}

	require.NoError(t, s.Delete(ctx, "k1"))
	require.NoError(t, s.Delete(ctx, "never-existed"))
	assert.Equal(t, []string{"k0", "k2"}, collect(t, s))

	require.NoError(t, s.DeleteAll(ctx))
	assert.Empty(t, collect(t, s))

	require.NoError(t, s.Put(ctx, waveform.Entry{Key: "after", TimestampMs: 1}))
	assert.Equal(t, []string{"after"}, collect(t, s))
}

func TestScanStopsEarly(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i := range 5 {
		require.NoError(t, s.Put(ctx, waveform.Entry{Key: fmt.Sprintf("k%d", i), TimestampMs: int64(i)}))
	}

	seen := 0
	for range s.ScanByTimestamp(ctx) {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestCanceledContext(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(context.Background(), waveform.Entry{Key: "a"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Put(ctx, waveform.Entry{Key: "b"}), context.Canceled)

	var scanErr error
	for _, err := range s.ScanByTimestamp(ctx) {
		scanErr = err
	}
	assert.ErrorIs(t, scanErr, context.Canceled)
}

func TestNewLeavesDatabaseOpen(t *testing.T) {
	db, err := bolt.Open(filepath.Join(t.TempDir(), "shared.db"), 0o600, nil)
	require.NoError(t, err)
	defer db.Close()

	s, err := New(db)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, db.View(func(tx *bolt.Tx) error { return nil }))
}

func TestCacheOverBoltSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	logger, _ := logrustest.NewNullLogger()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	s, err := Open(path)
	require.NoError(t, err)
	c, err := waveform.New(waveform.WithStore(s), waveform.WithClock(clock), waveform.WithLogger(logrus.NewEntry(logger)))
	require.NoError(t, err)

	c.Set(ctx, "stale", []float64{1}, 1)
	now = now.Add(5 * 24 * time.Hour)
	c.Set(ctx, "track", []float64{0.2, 1}, 4)
	require.NoError(t, s.Close())

	now = now.Add(3 * 24 * time.Hour)

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	fresh, err := waveform.New(waveform.WithStore(reopened), waveform.WithClock(clock), waveform.WithLogger(logrus.NewEntry(logger)))
	require.NoError(t, err)

	e, ok := fresh.Get(ctx, "track")
	require.True(t, ok)
	assert.Equal(t, []float64{0.2, 1}, e.Peaks)

	_, ok = fresh.Get(ctx, "stale")
	assert.False(t, ok)

	assert.Equal(t, 1, fresh.ClearExpired(ctx))
	assert.Equal(t, []string{"track"}, collect(t, reopened))
}
