// Package session builds, validates and measures individual ranking
// sessions. Every helper returns a new session value; inputs are left as is.
package session

import (
	"math"
	"time"

	"github.com/xkazm04/goat-sub002/internal/domain"
	domainerrors "github.com/xkazm04/goat-sub002/internal/errors"
	"github.com/xkazm04/goat-sub002/internal/grid"
	"github.com/xkazm04/goat-sub002/internal/validation"
)

// Manager constructs and checks sessions using an injected clock.
type Manager struct {
	validator *validation.Validator
	now       func() time.Time
}

// NewManager creates a Manager. A nil clock uses time.Now in UTC.
func NewManager(v *validation.Validator, now func() time.Time) *Manager {
	if v == nil {
		v = validation.New()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{validator: v, now: now}
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// CreateEmptySession returns an unsynced session with size empty slots and
// no backlog.
func (m *Manager) CreateEmptySession(listID string, size int) *domain.ListSession {
	now := m.now()
	return &domain.ListSession{
		ID:            listID,
		ListSize:      size,
		GridItems:     grid.NewGrid(size),
		BacklogGroups: []domain.Group{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ValidateSession reports the first structural problem with s: missing
// fields, a grid whose length or slot ids disagree with ListSize, broken
// backlog bookkeeping, or a broken slot <-> item reference.
func (m *Manager) ValidateSession(s *domain.ListSession) error {
	if s == nil {
		return domainerrors.Validation("session is nil")
	}
	if err := m.validator.Validate(s); err != nil {
		return err
	}
	if len(s.GridItems) != s.ListSize {
		return domainerrors.Validationf("grid has %d slots, list size is %d", len(s.GridItems), s.ListSize)
	}

	groupIDs := make(map[string]struct{}, len(s.BacklogGroups))
	itemIDs := make(map[string]string)
	for _, g := range s.BacklogGroups {
		if g.ID == "" {
			return domainerrors.Validation("backlog group without id")
		}
		if _, dup := groupIDs[g.ID]; dup {
			return domainerrors.Validationf("duplicate backlog group %q", g.ID)
		}
		groupIDs[g.ID] = struct{}{}

		if g.ItemCount != len(g.Items) {
			return domainerrors.Validationf("group %q item_count %d, has %d items", g.ID, g.ItemCount, len(g.Items))
		}
		for _, item := range g.Items {
			if item.ID == "" {
				return domainerrors.Validationf("group %q has an item without id", g.ID)
			}
			if owner, dup := itemIDs[item.ID]; dup {
				return domainerrors.Validationf("item %q appears in groups %q and %q", item.ID, owner, g.ID)
			}
			itemIDs[item.ID] = g.ID
		}
	}

	if err := grid.CheckConsistency(s.GridItems, s.BacklogGroups); err != nil {
		return domainerrors.Validation("inconsistent grid").WithCause(err)
	}
	return nil
}

// CalculateProgress counts occupied slots. Percentage is rounded to the
// nearest integer and the grid is complete at 100%.
func CalculateProgress(gridItems []domain.GridItem) domain.Progress {
	matched := len(grid.MatchedItems(gridItems))
	total := len(gridItems)

	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(matched) / float64(total) * 100))
	}
	return domain.Progress{
		MatchedCount: matched,
		TotalSize:    total,
		Percentage:   pct,
		IsComplete:   pct >= 100,
	}
}

// HasUnsavedChanges reports whether s changed after its last save.
func HasUnsavedChanges(s *domain.ListSession) bool {
	if s == nil {
		return false
	}
	return s.LastSavedAt == nil || s.UpdatedAt.After(*s.LastSavedAt)
}

// GetSessionMetadata summarises s for listings.
func GetSessionMetadata(s *domain.ListSession) domain.SessionMetadata {
	items := 0
	for _, g := range s.BacklogGroups {
		items += len(g.Items)
	}
	return domain.SessionMetadata{
		ListID:            s.ID,
		Category:          s.Category,
		ListSize:          s.ListSize,
		Progress:          CalculateProgress(s.GridItems),
		GroupCount:        len(s.BacklogGroups),
		ItemCount:         items,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		LastSavedAt:       s.LastSavedAt,
		Synced:            s.Synced,
		HasUnsavedChanges: HasUnsavedChanges(s),
	}
}

// UpdateSessionTimestamp returns a copy of s with UpdatedAt set to now.
func (m *Manager) UpdateSessionTimestamp(s *domain.ListSession) *domain.ListSession {
	next := s.Clone()
	next.UpdatedAt = m.now()
	return next
}

// MarkSessionSynced returns a copy of s flagged as seen by the backend.
func (m *Manager) MarkSessionSynced(s *domain.ListSession) *domain.ListSession {
	next := s.Clone()
	next.Synced = true
	next.UpdatedAt = m.now()
	return next
}

// MarkSessionSaved returns a copy of s stamped as saved now. UpdatedAt and
// LastSavedAt are equal afterwards, so the copy is clean.
func (m *Manager) MarkSessionSaved(s *domain.ListSession) *domain.ListSession {
	next := s.Clone()
	now := m.now()
	next.UpdatedAt = now
	next.LastSavedAt = &now
	return next
}
