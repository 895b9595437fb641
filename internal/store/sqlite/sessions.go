package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/session"
)

const activeSessionKey = "active_session_id"

// summaryColumns is the ordered list of columns selected in summary queries.
// Must match the scan order in scanSummary.
const summaryColumns = `list_id, category, list_size, synced, created_at, updated_at, saved_at`

// Summary is a session row without its payload.
type Summary struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	SavedAt   *time.Time
	ListID    string
	Category  string
	ListSize  int
	Synced    bool
}

func scanSummary(scanner interface{ Scan(dest ...any) error }) (*Summary, error) {
	var (
		sum       Summary
		category  sql.NullString
		synced    int
		createdAt string
		updatedAt string
		savedAt   sql.NullString
	)
	err := scanner.Scan(&sum.ListID, &category, &sum.ListSize, &synced, &createdAt, &updatedAt, &savedAt)
	if err != nil {
		return nil, err
	}

	sum.Category = category.String
	sum.Synced = synced != 0
	if sum.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sum.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if savedAt.Valid && savedAt.String != "" {
		t, err := parseTime(savedAt.String)
		if err != nil {
			return nil, err
		}
		sum.SavedAt = &t
	}
	return &sum, nil
}

// SaveSession inserts or replaces the row for sess.ID.
func (s *Store) SaveSession(ctx context.Context, sess *domain.ListSession) error {
	data, err := session.Encode(sess)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO list_sessions (list_id, category, list_size, synced, data, created_at, updated_at, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(list_id) DO UPDATE SET
			category = excluded.category,
			list_size = excluded.list_size,
			synced = excluded.synced,
			data = excluded.data,
			updated_at = excluded.updated_at,
			saved_at = excluded.saved_at`,
		sess.ID, sess.Category, sess.ListSize, boolToInt(sess.Synced), string(data),
		formatTime(sess.CreatedAt), formatTime(sess.UpdatedAt), nullTime(sess.LastSavedAt),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// GetSession returns the session for listID.
// Returns ErrNotFound if there is none.
func (s *Store) GetSession(ctx context.Context, listID string) (*domain.ListSession, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM list_sessions WHERE list_id = ?`, listID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", listID, err)
	}
	return session.Decode([]byte(data))
}

// ListSessions returns every stored session, most recently updated first.
// Rows that fail to decode are logged and skipped.
func (s *Store) ListSessions(ctx context.Context) ([]*domain.ListSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT list_id, data FROM list_sessions ORDER BY updated_at DESC, list_id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*domain.ListSession
	for rows.Next() {
		var listID, data string
		if err := rows.Scan(&listID, &data); err != nil {
			return nil, err
		}
		sess, err := session.Decode([]byte(data))
		if err != nil {
			s.logger.Warn("skipping unreadable session row", "list_id", listID, "error", err)
			continue
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// ListSummaries returns the listing columns of every row, most recently
// updated first, without decoding payloads.
func (s *Store) ListSummaries(ctx context.Context) ([]*Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM list_sessions ORDER BY updated_at DESC, list_id`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []*Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteSession removes the row for listID and clears the active id when it
// pointed at listID. Deleting a missing session is not an error.
func (s *Store) DeleteSession(ctx context.Context, listID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM list_sessions WHERE list_id = ?`, listID); err != nil {
		return fmt.Errorf("delete session %s: %w", listID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM store_state WHERE key = ? AND value = ?`, activeSessionKey, listID); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return tx.Commit()
}

// SetActiveSessionID records listID as active. An empty id clears it.
func (s *Store) SetActiveSessionID(ctx context.Context, listID string) error {
	var err error
	if listID == "" {
		_, err = s.db.ExecContext(ctx, `DELETE FROM store_state WHERE key = ?`, activeSessionKey)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO store_state (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			activeSessionKey, listID, formatTime(s.now()),
		)
	}
	if err != nil {
		return fmt.Errorf("set active session: %w", err)
	}
	return nil
}

// ActiveSessionID returns the recorded active list id, or "" when none.
func (s *Store) ActiveSessionID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM store_state WHERE key = ?`, activeSessionKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// LoadState reads the whole local record. An active id without a session
// row is dropped.
func (s *Store) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.ActiveSessionID(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	}

	state := &domain.PersistedState{ListSessions: make(map[string]*domain.ListSession, len(sessions))}
	for _, sess := range sessions {
		state.ListSessions[sess.ID] = sess
	}
	if _, ok := state.ListSessions[active]; ok {
		state.ActiveSessionID = active
	}
	return state, nil
}

// Clear removes every session and the active id.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range []string{`DELETE FROM list_sessions`, `DELETE FROM store_state`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear local store: %w", err)
		}
	}
	return tx.Commit()
}
