package sessionstore

import (
	"cmp"
	"slices"

	"github.com/xkazm04/goat-sub002/internal/backlog"
	"github.com/xkazm04/goat-sub002/internal/domain"
	domainerrors "github.com/xkazm04/goat-sub002/internal/errors"
	"github.com/xkazm04/goat-sub002/internal/grid"
	"github.com/xkazm04/goat-sub002/internal/session"
)

// Slices returned by the read methods may be shared with the store and
// must be treated as read-only.

// ActiveSessionID returns the active list id, or "" when none is active.
func (s *Store) ActiveSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// ActiveSession returns the active session with its live backlog.
func (s *Store) ActiveSession() (*domain.ListSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeLocked(); err != nil {
		return nil, err
	}
	return s.viewLocked(), nil
}

// Session returns the in-memory session of listID.
func (s *Store) Session(listID string) (*domain.ListSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if listID != "" && listID == s.activeID {
		return s.viewLocked(), nil
	}
	sess, ok := s.sessions[listID]
	if !ok {
		return nil, domainerrors.NotFoundf("session %s not found", listID)
	}
	return sess, nil
}

// Sessions lists metadata for every known session, most recently updated
// first.
func (s *Store) Sessions() []domain.SessionMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.SessionMetadata, 0, len(s.sessions))
	for listID, sess := range s.sessions {
		if listID != s.activeID {
			out = append(out, session.GetSessionMetadata(sess))
			continue
		}
		md := session.GetSessionMetadata(s.viewLocked())
		md.HasUnsavedChanges = s.dirty
		out = append(out, md)
	}
	slices.SortFunc(out, func(a, b domain.SessionMetadata) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ListID, b.ListID)
	})
	return out
}

// BacklogGroups returns the active backlog as a tree. Repeated calls
// without an intervening change return the same slice.
func (s *Store) BacklogGroups() ([]domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeLocked(); err != nil {
		return nil, err
	}
	return s.memo.Denormalize(s.data), nil
}

// GroupItems returns one group's items in display order.
func (s *Store) GroupItems(groupID string) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeLocked(); err != nil {
		return nil, err
	}
	if _, ok := s.data.GroupsByID[groupID]; !ok {
		return nil, domainerrors.NotFoundf("group %s not found", groupID)
	}
	return backlog.GroupItems(s.data, groupID), nil
}

// AvailableItems returns every backlog item not placed on the grid.
func (s *Store) AvailableItems() ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeLocked(); err != nil {
		return nil, err
	}
	return grid.AvailableBacklogItems(s.memo.Denormalize(s.data)), nil
}

// SearchGroups filters the active backlog by a case-insensitive term.
func (s *Store) SearchGroups(term string) ([]domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeLocked(); err != nil {
		return nil, err
	}
	return backlog.SearchGroups(s.data, term), nil
}

// GroupsByCategory filters the active backlog by category and optional
// subcategory.
func (s *Store) GroupsByCategory(category, subcategory string) ([]domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeLocked(); err != nil {
		return nil, err
	}
	return backlog.GroupsByCategory(s.data, category, subcategory), nil
}

// GridItems returns the active grid.
func (s *Store) GridItems() ([]domain.GridItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return nil, err
	}
	return cur.GridItems, nil
}

// Progress returns how much of the active grid is filled.
func (s *Store) Progress() (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return domain.Progress{}, err
	}
	return session.CalculateProgress(cur.GridItems), nil
}

// IsDirty reports whether the active session changed since its last save.
func (s *Store) IsDirty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeLocked(); err != nil {
		return false, err
	}
	return s.dirty, nil
}

// Metadata summarises the active session.
func (s *Store) Metadata() (domain.SessionMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeLocked(); err != nil {
		return domain.SessionMetadata{}, err
	}
	md := session.GetSessionMetadata(s.viewLocked())
	md.HasUnsavedChanges = s.dirty
	return md, nil
}
