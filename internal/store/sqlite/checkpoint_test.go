package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_Empty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "expected zero time for empty database, got %v", got)
}

func TestCheckpoint_WithSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveSession(ctx, testSession("old", older)))
	require.NoError(t, s.SaveSession(ctx, testSession("new", newer)))

	got, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(newer), "got %v, want %v", got, newer)
}

func TestCheckpoint_IncludesActivePointer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sessionTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveSession(ctx, testSession("l1", sessionTime)))

	pinned := time.Date(2030, 3, 4, 5, 6, 7, 0, time.UTC)
	s.now = func() time.Time { return pinned }
	require.NoError(t, s.SetActiveSessionID(ctx, "l1"))

	got, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(pinned), "got %v, want %v", got, pinned)
}
