package benchstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "bench.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestStore_SaveAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	startedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := Run{
		ID:        NewRunID(),
		StartedAt: startedAt,
		Frames:    100,
		FrameTime: 16 * time.Millisecond,
		Duration:  40 * time.Millisecond,
		Entities:  42,
		Systems: []SystemTiming{
			{Stage: "FixedUpdate", System: "move", Count: 200, Min: time.Microsecond, Max: 9 * time.Microsecond, Average: 3 * time.Microsecond},
			{Stage: "Update", System: "spawn", Count: 100, Min: 2 * time.Microsecond, Max: 5 * time.Microsecond, Average: 4 * time.Microsecond},
		},
	}

	second := Run{
		ID:        NewRunID(),
		StartedAt: startedAt.Add(time.Minute),
		Frames:    10,
		FrameTime: 16 * time.Millisecond,
		Duration:  5 * time.Millisecond,
		Entities:  3,
	}

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	require.Equal(t, second.ID, runs[0].ID)
	require.Empty(t, runs[0].Systems)

	require.Equal(t, first.ID, runs[1].ID)
	require.True(t, first.StartedAt.Equal(runs[1].StartedAt))
	require.Equal(t, first.Frames, runs[1].Frames)
	require.Equal(t, first.FrameTime, runs[1].FrameTime)
	require.Equal(t, first.Duration, runs[1].Duration)
	require.Equal(t, first.Entities, runs[1].Entities)
	require.Equal(t, first.Systems, runs[1].Systems)

	runs, err = store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestStore_DuplicateRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := Run{
		ID:        NewRunID(),
		StartedAt: time.Now(),
		Systems:   []SystemTiming{{Stage: "Update", System: "spawn"}},
	}

	require.NoError(t, store.Save(ctx, run))
	require.Error(t, store.Save(ctx, run))

	// the failed save did not leave partial rows behind
	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Len(t, runs[0].Systems, 1)
}

func TestNewRunID(t *testing.T) {
	id, err := uuid.Parse(NewRunID())
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), id.Version())
}
