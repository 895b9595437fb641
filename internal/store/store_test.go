package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/grid"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	s, err := New("", nil)
	require.NoError(t, err)

	return s, func() { _ = s.Close() }
}

func testSession(listID string, updated time.Time) *domain.ListSession {
	return &domain.ListSession{
		ID:            listID,
		ListSize:      2,
		GridItems:     grid.NewGrid(2),
		BacklogGroups: []domain.Group{},
		CreatedAt:     updated.Add(-time.Hour),
		UpdatedAt:     updated,
	}
}

func TestSaveAndGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := testSession("list-1", now)
	sess.BacklogGroups = []domain.Group{{
		ID: "g1", Name: "Strikers", ItemCount: 1,
		Items: []domain.Item{{ID: "i1", Name: "Ronaldo", Tags: []string{"brazil"}}},
	}}

	require.NoError(t, s.Save(ctx, sess))

	got, err := s.Get(ctx, "list-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "list-1", got.ID)
	assert.True(t, got.UpdatedAt.Equal(now))
	assert.Equal(t, sess.GridItems, got.GridItems)
	require.Len(t, got.BacklogGroups, 1)
	assert.Equal(t, "Ronaldo", got.BacklogGroups[0].Items[0].Name)
}

func TestGet_Missing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := s.Get(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSave_DropsOlderRecord(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	newer := testSession("list-1", now)
	newer.Synced = true
	require.NoError(t, s.Save(ctx, newer))

	older := testSession("list-1", now.Add(-time.Second))
	assert.ErrorIs(t, s.Save(ctx, older), ErrStale)

	got, err := s.Get(ctx, "list-1")
	require.NoError(t, err)
	assert.True(t, got.Synced)

	// Same timestamp overwrites.
	same := testSession("list-1", now)
	require.NoError(t, s.Save(ctx, same))
	got, err = s.Get(ctx, "list-1")
	require.NoError(t, err)
	assert.False(t, got.Synced)
}

func TestDeleteAndClear(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now().UTC()
	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, s.Save(ctx, testSession(id, now)))
	}

	ids, err := s.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	require.NoError(t, s.Delete(ctx, "b"))
	require.NoError(t, s.Delete(ctx, "missing"))
	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Clear(ctx))
	ids, err = s.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGet_LegacyRecord(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	legacy := `{"listId":"old","listSize":1,"updatedAt":1700000000000,
		"gridItems":[{"matched":false}],
		"backlogGroups":[{"title":"G","id":"g","items":[{"id":"x","title":"X"}]}]}`
	require.NoError(t, s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey("old"), []byte(legacy))
	}))

	got, err := s.Get(context.Background(), "old")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "old", got.ID)
	assert.Equal(t, grid.SlotID(0), got.GridItems[0].ID)
	assert.Equal(t, 1, got.BacklogGroups[0].ItemCount)

	// A legacy record's epoch-ms timestamp still gates stale writes.
	stale := testSession("old", time.UnixMilli(1700000000000).Add(-time.Minute))
	assert.ErrorIs(t, s.Save(context.Background(), stale), ErrStale)
}

func TestGet_Corrupt(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey("bad"), []byte("{not json"))
	}))

	_, err := s.Get(context.Background(), "bad")
	assert.Error(t, err)

	// Corrupt records never block a save.
	require.NoError(t, s.Save(context.Background(), testSession("bad", time.Now())))
}

func TestCanceledContext(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, testSession("x", time.Now())), context.Canceled)
	_, err := s.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Delete(ctx, "x"), context.Canceled)
}

func TestNew_OnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "offline")

	s, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), testSession("persisted", time.Now().UTC())))
	require.NoError(t, s.Close())

	_, err = os.Stat(dir)
	require.NoError(t, err)

	reopened, err := New(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), "persisted")
	require.NoError(t, err)
	require.NotNil(t, got)
}
