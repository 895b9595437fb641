// Package store is the offline session mirror: one record per list kept in
// an embedded Badger database, independent of the synchronous local store.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/tidwall/gjson"

	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/session"
)

// ErrStale is returned by Save when the stored record for the list is newer
// than the one offered. The stored record is kept.
var ErrStale = errors.New("offline record is newer")

// Store persists sessions in Badger under "session:{listID}".
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens the Badger database at path. An empty path opens an in-memory
// database, which tests use.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil // Badger's own logger is too chatty

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("offline store opened", "path", path, "in_memory", path == "")
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing offline store")
	}
	return s.db.Close()
}

// Save writes sess unless the stored record for the same list has a later
// updated_at, in which case ErrStale is returned. The check and the write
// happen in one transaction.
func (s *Store) Save(ctx context.Context, sess *domain.ListSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := session.Encode(sess)
	if err != nil {
		return err
	}
	key := sessionKey(sess.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("read offline session %s: %w", sess.ID, err)
		default:
			var stored time.Time
			if err := item.Value(func(val []byte) error {
				stored = storedUpdatedAt(val)
				return nil
			}); err != nil {
				return err
			}
			if stored.After(sess.UpdatedAt) {
				return ErrStale
			}
		}
		return txn.Set(key, data)
	})
}

// Get returns the stored session for listID, or nil and no error when there
// is none.
func (s *Store) Get(ctx context.Context, listID string) (*domain.ListSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(listID))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read offline session %s: %w", listID, err)
	}

	sess, err := session.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode offline session %s: %w", listID, err)
	}
	return sess, nil
}

// Delete removes the record for listID. Deleting a missing record is not an
// error.
func (s *Store) Delete(ctx context.Context, listID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(listID))
	})
}

// Clear removes every session record.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ids, err := s.ListIDs(ctx)
	if err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, id := range ids {
		if err := wb.Delete(sessionKey(id)); err != nil {
			return fmt.Errorf("clear offline sessions: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("clear offline sessions: %w", err)
	}
	return nil
}

// ListIDs returns the list ids with a stored record, in key order.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(sessionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids = append(ids, listIDFromKey(it.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list offline sessions: %w", err)
	}
	return ids, nil
}

// storedUpdatedAt reads updated_at from a persisted record of either shape.
// Unreadable records report the zero time so they never block a save.
func storedUpdatedAt(val []byte) time.Time {
	r := gjson.GetBytes(val, "updated_at")
	if !r.Exists() {
		r = gjson.GetBytes(val, "updatedAt")
	}
	if r.Type == gjson.Number {
		return time.UnixMilli(r.Int())
	}
	t, err := time.Parse(time.RFC3339Nano, r.String())
	if err != nil {
		return time.Time{}
	}
	return t
}
