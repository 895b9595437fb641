package sessionstore

import (
	"slices"

	"github.com/xkazm04/goat-sub002/internal/backlog"
	"github.com/xkazm04/goat-sub002/internal/domain"
	domainerrors "github.com/xkazm04/goat-sub002/internal/errors"
	"github.com/xkazm04/goat-sub002/internal/grid"
	"github.com/xkazm04/goat-sub002/internal/id"
)

// Backlog change ops.
const (
	opSetGroups   = "set_groups"
	opToggleGroup = "toggle_group"
	opAddItem     = "add_item"
	opRemoveItem  = "remove_item"
	opUpdateGroup = "update_group"
)

// activeLocked returns the active session or ErrNoActiveSession.
func (s *Store) activeLocked() (*domain.ListSession, error) {
	cur, ok := s.sessions[s.activeID]
	if s.activeID == "" || !ok {
		return nil, domainerrors.ErrNoActiveSession
	}
	return cur, nil
}

// SetBacklogGroups replaces the whole backlog of the active session. Items
// keep their grid placement when a slot still holds them; slots whose item
// is gone are emptied.
func (s *Store) SetBacklogGroups(groups []domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return err
	}

	gridItems, data := reconcileGrid(cur.GridItems, backlog.Normalize(groups))
	next := cur.Clone()
	next.GridItems = gridItems
	next.SelectedBacklogItem = keepSelection(next.SelectedBacklogItem, data)
	s.commitLocked(next, data, EventBacklogChanged, BacklogChange{Op: opSetGroups})
	return nil
}

// ToggleBacklogGroup flips a group's open flag. It reports false when the
// group does not exist.
func (s *Store) ToggleBacklogGroup(groupID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return false, err
	}

	data := backlog.ToggleGroup(s.data, groupID)
	if data == s.data {
		return false, nil
	}
	s.commitLocked(cur.Clone(), data, EventBacklogChanged, BacklogChange{Op: opToggleGroup, GroupID: groupID})
	return true, nil
}

// AddItemToGroup appends item to a group. An item without an id gets a
// generated one. The stored item is returned; false means the group does
// not exist or the id is already taken.
func (s *Store) AddItemToGroup(groupID string, item domain.Item) (domain.Item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return domain.Item{}, false, err
	}

	if item.ID == "" {
		generated, err := id.Generate(id.PrefixItem)
		if err != nil {
			return domain.Item{}, false, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate item id")
		}
		item.ID = generated
	}
	item.InitTimestamps(s.manager.Now())

	data := backlog.AddItem(s.data, groupID, item)
	if data == s.data {
		return domain.Item{}, false, nil
	}
	s.commitLocked(cur.Clone(), data, EventBacklogChanged, BacklogChange{Op: opAddItem, GroupID: groupID, ItemID: item.ID})
	return data.ItemsByID[item.ID].Item, true, nil
}

// RemoveItemFromGroup deletes an item. A placed item's slot is emptied and a
// selection of it is cleared.
func (s *Store) RemoveItemFromGroup(groupID, itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return false, err
	}

	data := backlog.RemoveItem(s.data, groupID, itemID)
	if data == s.data {
		return false, nil
	}

	next := cur.Clone()
	if i := slices.IndexFunc(cur.GridItems, func(g domain.GridItem) bool {
		return g.Matched && g.MatchedWith == itemID
	}); i >= 0 {
		next.GridItems = slices.Clone(cur.GridItems)
		next.GridItems[i] = grid.EmptySlot(i)
	}
	next.SelectedBacklogItem = keepSelection(next.SelectedBacklogItem, data)
	s.commitLocked(next, data, EventBacklogChanged, BacklogChange{Op: opRemoveItem, GroupID: groupID, ItemID: itemID})
	return true, nil
}

// UpdateGroupItems replaces a group's items. Items without an id get a
// generated one. Placement is reconciled against the grid afterwards.
func (s *Store) UpdateGroupItems(groupID string, items []domain.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return false, err
	}
	if _, ok := s.data.GroupsByID[groupID]; !ok {
		return false, nil
	}

	now := s.manager.Now()
	prepared := make([]domain.Item, len(items))
	for i, item := range items {
		if item.ID == "" {
			generated, err := id.Generate(id.PrefixItem)
			if err != nil {
				return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate item id")
			}
			item.ID = generated
		}
		item.InitTimestamps(now)
		prepared[i] = item
	}

	gridItems, data := reconcileGrid(cur.GridItems, backlog.UpdateGroupItems(s.data, groupID, prepared))
	next := cur.Clone()
	next.GridItems = gridItems
	next.SelectedBacklogItem = keepSelection(next.SelectedBacklogItem, data)
	s.commitLocked(next, data, EventBacklogChanged, BacklogChange{Op: opUpdateGroup, GroupID: groupID})
	return true, nil
}

// reconcileGrid restores the slot <-> item reference after the backlog was
// replaced. A slot keeps its item when the item still exists and no earlier
// slot claimed it; other occupied slots are emptied. Every item is then
// flagged to match the surviving slots.
func reconcileGrid(gridItems []domain.GridItem, data *domain.NormalizedBacklogData) ([]domain.GridItem, *domain.NormalizedBacklogData) {
	next := gridItems
	cloned := false
	placed := make(map[string]string, len(gridItems))

	for i, slot := range gridItems {
		if !slot.Matched {
			continue
		}
		_, known := data.ItemsByID[slot.MatchedWith]
		_, dup := placed[slot.MatchedWith]
		if known && !dup {
			placed[slot.MatchedWith] = slot.ID
			continue
		}
		if !cloned {
			next = slices.Clone(gridItems)
			cloned = true
		}
		next[i] = grid.EmptySlot(i)
	}

	changes := make(map[string]string)
	for itemID, item := range data.ItemsByID {
		slot := placed[itemID]
		if item.Matched != (slot != "") || item.MatchedWith != slot {
			changes[itemID] = slot
		}
	}
	return next, backlog.SetItemMatches(data, changes)
}

// keepSelection drops a backlog selection whose item no longer exists.
func keepSelection(selected *string, data *domain.NormalizedBacklogData) *string {
	if selected == nil {
		return nil
	}
	if _, ok := data.ItemsByID[*selected]; !ok {
		return nil
	}
	return selected
}
