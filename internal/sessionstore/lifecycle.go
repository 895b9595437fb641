package sessionstore

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/xkazm04/goat-sub002/internal/backlog"
	"github.com/xkazm04/goat-sub002/internal/domain"
	domainerrors "github.com/xkazm04/goat-sub002/internal/errors"
	"github.com/xkazm04/goat-sub002/internal/session"
)

// Where a loaded session came from.
const (
	sourceLocal   = "local"
	sourceOffline = "offline"
	sourceNew     = "new"
)

// CreateSession starts an empty session for listID and makes it active,
// replacing any stored session of that list. The outgoing active session is
// saved first. A size of 0 uses the default list size.
func (s *Store) CreateSession(ctx context.Context, listID string, size int) (*domain.ListSession, error) {
	if listID == "" {
		return nil, domainerrors.Validation("list id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushOutgoingLocked(ctx, listID)

	fresh := s.manager.CreateEmptySession(listID, s.sizeOrDefault(size))
	s.activeID = listID
	s.sessions[listID] = fresh
	s.data = domain.EmptyBacklog()

	_, err := s.saveLocked(ctx, false)
	s.setActiveLocal(ctx, listID)
	s.emit(EventSessionCreated, listID, session.GetSessionMetadata(fresh))

	s.logger.Info("session created", "list_id", listID, "size", fresh.ListSize)
	return s.viewLocked(), err
}

// SwitchToSession saves the active session, waiting for its offline copy to
// be written, and then loads listID. Switching to the active list is a
// no-op. size is used only when a new session has to be created.
func (s *Store) SwitchToSession(ctx context.Context, listID string, size int) (*domain.ListSession, error) {
	if listID == "" {
		return nil, domainerrors.Validation("list id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == listID {
		return s.viewLocked(), nil
	}
	s.flushOutgoingLocked(ctx, listID)
	s.loadLocked(ctx, listID, size)
	return s.viewLocked(), nil
}

// LoadSession makes listID active without forcing a save of the outgoing
// session; unsaved changes of the active session, including listID itself,
// are written first so the reload cannot drop them. The local and offline
// copies are reconciled by UpdatedAt, the later one winning and the local
// copy winning a tie. Copies that fail validation are ignored; when neither
// is usable a new empty session is created.
func (s *Store) LoadSession(ctx context.Context, listID string, size int) (*domain.ListSession, error) {
	if listID == "" {
		return nil, domainerrors.Validation("list id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != "" && s.dirty {
		if _, err := s.saveLocked(ctx, false); err != nil {
			s.logger.Error("pending save failed", "list_id", s.activeID, "error", err)
		}
	}
	s.loadLocked(ctx, listID, size)
	return s.viewLocked(), nil
}

// SaveCurrentSession persists the active session now: the local store
// synchronously and the offline store in the background. It returns nil and
// no error when no session is active.
func (s *Store) SaveCurrentSession(ctx context.Context) (*domain.ListSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(ctx, false)
}

// DeleteSession forgets listID everywhere. Deleting the active session
// leaves no session active and drops its pending save.
func (s *Store) DeleteSession(ctx context.Context, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, known := s.sessions[listID]
	if listID == s.activeID {
		s.saves.cancel()
		s.dirty = false
		s.activeID = ""
		s.data = domain.EmptyBacklog()
		s.memo.Reset()
	}
	delete(s.sessions, listID)

	err := s.local.DeleteSession(ctx, listID)
	s.forgetOffline(ctx, listID)

	if known {
		s.emit(EventSessionDeleted, listID, nil)
		s.logger.Info("session deleted", "list_id", listID)
	}
	if err != nil {
		return fmt.Errorf("delete session %s: %w", listID, err)
	}
	return nil
}

// ResetStore drops every session from memory and both stores and cancels
// any pending save.
func (s *Store) ResetStore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saves.cancel()
	s.dirty = false
	s.sessions = make(map[string]*domain.ListSession)
	s.activeID = ""
	s.data = domain.EmptyBacklog()
	s.memo.Reset()

	err := s.local.Clear(ctx)
	s.clearOffline(ctx)

	s.emit(EventStoreReset, "", nil)
	s.logger.Info("session store reset")
	if err != nil {
		return fmt.Errorf("reset local store: %w", err)
	}
	return nil
}

// SyncWithBackend replaces the backlog of listID with the backend's groups
// for category. Items still placed on the grid stay matched; slots whose
// item disappeared are emptied. On success the session is marked synced.
// Concurrent syncs of the same list and category share one fetch.
func (s *Store) SyncWithBackend(ctx context.Context, listID, category string) (*domain.ListSession, error) {
	if listID == "" {
		return nil, domainerrors.Validation("list id is required")
	}
	if s.backend == nil {
		return nil, domainerrors.Unavailable(nil, "backend sync is not configured")
	}

	// The fetch outlives any one caller; each caller waits on its own ctx.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.syncs.DoChan(listID+"\x00"+category, func() (any, error) {
		return s.backend.FetchGroups(fetchCtx, listID, category)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		s.logger.Warn("backend sync abandoned", "list_id", listID, "category", category, "error", ctx.Err())
		return nil, domainerrors.Unavailable(ctx.Err(), "backend sync canceled")
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		s.logger.Warn("backend sync failed", "list_id", listID, "category", category, "error", err)
		return nil, domainerrors.Unavailable(err, "backend sync failed")
	}
	groups, _ := v.([]domain.Group)

	s.mu.Lock()
	defer s.mu.Unlock()

	data := backlog.Normalize(groups)
	s.logger.Info("backend sync fetched groups",
		"list_id", listID, "category", category, "groups", len(data.GroupOrder), "items", len(data.ItemsByID), "shared", shared)

	if listID == s.activeID {
		cur := s.sessions[listID]
		gridItems, data := reconcileGrid(cur.GridItems, data)
		next := cur.Clone()
		next.GridItems = gridItems
		next.Category = category
		next.Synced = true
		next.SelectedBacklogItem = keepSelection(next.SelectedBacklogItem, data)
		s.commitLocked(next, data, EventSessionSynced, session.CalculateProgress(gridItems))
		return s.viewLocked(), nil
	}

	cur := s.sessions[listID]
	if cur == nil {
		cur = s.manager.CreateEmptySession(listID, s.defaultSize)
	}
	gridItems, data := reconcileGrid(cur.GridItems, data)
	next := cur.Clone()
	next.GridItems = gridItems
	next.BacklogGroups = backlog.Denormalize(data)
	next.Category = category
	saved := s.manager.MarkSessionSaved(s.manager.MarkSessionSynced(next))
	s.sessions[listID] = saved

	err = s.local.SaveSession(ctx, saved)
	s.mirrorAsync(saved)
	s.emit(EventSessionSynced, listID, session.CalculateProgress(gridItems))
	if err != nil {
		return saved, fmt.Errorf("save synced session %s: %w", listID, err)
	}
	return saved, nil
}

// flushOutgoingLocked saves the active session, unless it is nextID, and
// waits for the offline write.
func (s *Store) flushOutgoingLocked(ctx context.Context, nextID string) {
	if s.activeID == "" || s.activeID == nextID {
		return
	}
	if _, err := s.saveLocked(ctx, true); err != nil {
		s.logger.Error("saving outgoing session failed", "list_id", s.activeID, "error", err)
	}
}

// saveLocked writes the active session. The in-memory commit always
// happens; a local store failure is returned after the offline write was
// started. With awaitOffline the offline write finishes before returning.
func (s *Store) saveLocked(ctx context.Context, awaitOffline bool) (*domain.ListSession, error) {
	if s.activeID == "" {
		return nil, nil
	}
	s.saves.cancel()

	saved := s.manager.MarkSessionSaved(s.viewLocked())
	s.sessions[s.activeID] = saved

	err := s.local.SaveSession(ctx, saved)
	s.dirty = err != nil
	if awaitOffline {
		s.writeOffline(ctx, saved, s.mirror.ticket(saved.ID))
	} else {
		s.mirrorAsync(saved)
	}

	s.emit(EventSessionSaved, saved.ID, session.GetSessionMetadata(saved))
	s.logger.Debug("session saved", "list_id", saved.ID, "await_offline", awaitOffline)
	if err != nil {
		return saved, fmt.Errorf("save session %s locally: %w", saved.ID, err)
	}
	return saved, nil
}

// loadLocked activates listID using the reconciliation rules of LoadSession.
func (s *Store) loadLocked(ctx context.Context, listID string, size int) {
	var localCopy *domain.ListSession
	if listID == s.activeID {
		localCopy = s.viewLocked()
	} else {
		localCopy = s.sessions[listID]
	}
	offlineCopy := s.readOffline(ctx, listID)

	winner, source := s.pickSession(listID, localCopy, offlineCopy)
	if winner == nil {
		winner, source = s.manager.CreateEmptySession(listID, s.sizeOrDefault(size)), sourceNew
	}

	s.saves.cancel()
	s.dirty = false
	s.activeID = listID
	s.sessions[listID] = winner
	s.data = backlog.Normalize(winner.BacklogGroups)

	if source != sourceLocal {
		if _, err := s.saveLocked(ctx, false); err != nil {
			s.logger.Error("persisting loaded session failed", "list_id", listID, "error", err)
		}
	}
	s.setActiveLocal(ctx, listID)

	s.emit(EventSessionLoaded, listID, map[string]string{"source": source})
	s.logger.Info("session loaded", "list_id", listID, "source", source)
}

// pickSession applies last-writer-wins to the usable copies.
func (s *Store) pickSession(listID string, local, offline *domain.ListSession) (*domain.ListSession, string) {
	localOK := s.usable(listID, local, sourceLocal)
	offlineOK := s.usable(listID, offline, sourceOffline)

	switch {
	case localOK && offlineOK:
		if offline.UpdatedAt.After(local.UpdatedAt) {
			return offline, sourceOffline
		}
		return local, sourceLocal
	case localOK:
		return local, sourceLocal
	case offlineOK:
		return offline, sourceOffline
	default:
		return nil, ""
	}
}

func (s *Store) usable(listID string, sess *domain.ListSession, source string) bool {
	if sess == nil {
		return false
	}
	if sess.ID != listID {
		s.logger.Warn("discarding session stored under another id", "list_id", listID, "source", source, "session_id", sess.ID)
		return false
	}
	if err := s.manager.ValidateSession(sess); err != nil {
		s.logger.Warn("discarding invalid session", "list_id", listID, "source", source, "error", err)
		return false
	}
	return true
}

func (s *Store) setActiveLocal(ctx context.Context, listID string) {
	if err := s.local.SetActiveSessionID(ctx, listID); err != nil {
		s.logger.Warn("recording active session failed", "list_id", listID, "error", err)
	}
}
