package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Checkpoint returns the most recent updated_at across every stored session
// and the store state. An empty store yields the zero time.
func (s *Store) Checkpoint(ctx context.Context) (time.Time, error) {
	var maxUpdated sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(updated_at) FROM (
			SELECT updated_at FROM list_sessions
			UNION ALL
			SELECT updated_at FROM store_state
		)`).Scan(&maxUpdated)
	if err != nil {
		return time.Time{}, fmt.Errorf("query checkpoint: %w", err)
	}

	if !maxUpdated.Valid || maxUpdated.String == "" {
		return time.Time{}, nil
	}

	t, err := parseTime(maxUpdated.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse checkpoint time: %w", err)
	}

	return t, nil
}
