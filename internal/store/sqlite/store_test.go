package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/grid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSession(listID string, updated time.Time) *domain.ListSession {
	return &domain.ListSession{
		ID:            listID,
		ListSize:      3,
		GridItems:     grid.NewGrid(3),
		BacklogGroups: []domain.Group{},
		CreatedAt:     updated.Add(-time.Hour),
		UpdatedAt:     updated,
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	for _, table := range []string{"list_sessions", "store_state"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, s1.SaveSession(context.Background(), testSession("l1", time.Now())))
	require.NoError(t, s1.Close())

	s2, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetSession(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "l1", got.ID)
}

func TestSaveSession_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

	sess := testSession("l1", now)
	require.NoError(t, s.SaveSession(ctx, sess))

	updated := sess.Clone()
	updated.UpdatedAt = now.Add(time.Minute)
	updated.LastSavedAt = &updated.UpdatedAt
	updated.Synced = true
	updated.Category = "sports"
	require.NoError(t, s.SaveSession(ctx, updated))

	got, err := s.GetSession(ctx, "l1")
	require.NoError(t, err)
	assert.True(t, got.Synced)
	assert.Equal(t, "sports", got.Category)
	assert.True(t, got.UpdatedAt.Equal(now.Add(time.Minute)))
	assert.True(t, got.CreatedAt.Equal(sess.CreatedAt))

	sums, err := s.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, "sports", sums[0].Category)
	assert.Equal(t, 3, sums[0].ListSize)
	assert.True(t, sums[0].Synced)
	require.NotNil(t, sums[0].SavedAt)
	assert.True(t, sums[0].SavedAt.Equal(updated.UpdatedAt))
}

func TestGetSession_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessions_OrderAndCorruptRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveSession(ctx, testSession("old", base)))
	require.NoError(t, s.SaveSession(ctx, testSession("new", base.Add(time.Hour))))
	_, err := s.db.Exec(`INSERT INTO list_sessions (list_id, list_size, data, created_at, updated_at)
		VALUES ('broken', 1, '{nope', ?, ?)`, formatTime(base), formatTime(base))
	require.NoError(t, err)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[1].ID)
}

func TestActiveSessionAndState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id, err := s.ActiveSessionID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, s.SaveSession(ctx, testSession("a", now)))
	require.NoError(t, s.SaveSession(ctx, testSession("b", now)))
	require.NoError(t, s.SetActiveSessionID(ctx, "a"))
	require.NoError(t, s.SetActiveSessionID(ctx, "b"))

	state, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", state.ActiveSessionID)
	assert.Len(t, state.ListSessions, 2)

	// Deleting the active session clears the pointer; others keep it.
	require.NoError(t, s.DeleteSession(ctx, "a"))
	id, err = s.ActiveSessionID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", id)

	require.NoError(t, s.DeleteSession(ctx, "b"))
	id, err = s.ActiveSessionID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, s.DeleteSession(ctx, "never-existed"))
}

func TestLoadState_DanglingActiveID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetActiveSessionID(ctx, "ghost"))
	state, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.ActiveSessionID)
	assert.Empty(t, state.ListSessions)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, testSession("a", time.Now())))
	require.NoError(t, s.SetActiveSessionID(ctx, "a"))
	require.NoError(t, s.Clear(ctx))

	state, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.ListSessions)
	assert.Empty(t, state.ActiveSessionID)

	require.NoError(t, s.SetActiveSessionID(ctx, ""))
}
