package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	require.NoError(t, store.Record(ctx, Run{
		StartedAt:  base,
		Duration:   1500 * time.Millisecond,
		ExitCode:   0,
		BinaryPath: "/tmp/t1",
	}))
	require.NoError(t, store.Record(ctx, Run{
		StartedAt: base.Add(time.Minute),
		Duration:  700 * time.Millisecond,
		ExitCode:  101,
	}))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, 101, runs[0].ExitCode)
	assert.Empty(t, runs[0].BinaryPath)
	assert.Equal(t, "/tmp/t1", runs[1].BinaryPath)
	assert.Equal(t, 1500*time.Millisecond, runs[1].Duration)
	assert.NotEmpty(t, runs[0].ID)
}

func TestRecentLimit(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, Run{ExitCode: i}))
	}

	runs, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestPersistentFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), Run{BinaryPath: "/tmp/bin"}))
	require.NoError(t, store.Close())

	// Reopen and read back.
	store, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "/tmp/bin", runs[0].BinaryPath)
}
