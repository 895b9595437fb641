package sessionstore

import (
	"slices"

	"github.com/xkazm04/goat-sub002/internal/backlog"
	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/grid"
	"github.com/xkazm04/goat-sub002/internal/session"
)

// Grid change ops.
const (
	opAssign = "assign"
	opRemove = "remove"
	opMove   = "move"
	opClear  = "clear"
)

// AssignToGrid places a backlog item at position. It reports false when the
// position is out of range or occupied, or the item is unknown or already
// placed.
func (s *Store) AssignToGrid(itemID string, position int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return false, err
	}
	item, ok := backlog.FindItem(s.data, itemID)
	if !ok {
		return false, nil
	}

	res := grid.Assign(cur.GridItems, s.memo.Denormalize(s.data), item.Item, position)
	if res == nil {
		return false, nil
	}
	data := backlog.SetItemMatch(s.data, itemID, true, grid.SlotID(position))
	s.commitGridLocked(cur, res.GridItems, data, GridChange{Op: opAssign, Positions: []int{position}, ItemIDs: []string{itemID}})
	return true, nil
}

// RemoveFromGrid empties the slot at position and returns its item to the
// backlog. It reports false when the position is out of range or empty.
func (s *Store) RemoveFromGrid(position int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return false, err
	}

	res := grid.Remove(cur.GridItems, s.memo.Denormalize(s.data), position)
	if res == nil {
		return false, nil
	}
	itemID := cur.GridItems[position].MatchedWith
	data := backlog.SetItemMatch(s.data, itemID, false, "")
	s.commitGridLocked(cur, res.GridItems, data, GridChange{Op: opRemove, Positions: []int{position}, ItemIDs: []string{itemID}})
	return true, nil
}

// MoveGridItem moves the item at from to to, swapping with an occupant of
// to. It reports false when either position is out of range, they are
// equal, or from is empty.
func (s *Store) MoveGridItem(from, to int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return false, err
	}

	res := grid.Move(cur.GridItems, s.memo.Denormalize(s.data), from, to)
	if res == nil {
		return false, nil
	}

	changes := make(map[string]string, 2)
	ids := make([]string, 0, 2)
	for _, pos := range []int{from, to} {
		if slot := res.GridItems[pos]; slot.Matched {
			changes[slot.MatchedWith] = slot.ID
			ids = append(ids, slot.MatchedWith)
		}
	}
	data := backlog.SetItemMatches(s.data, changes)
	s.commitGridLocked(cur, res.GridItems, data, GridChange{Op: opMove, Positions: []int{from, to}, ItemIDs: ids})
	return true, nil
}

// ClearGrid empties every slot. It reports false when nothing is placed.
func (s *Store) ClearGrid() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return false, err
	}
	placed := grid.MatchedItems(cur.GridItems)
	if len(placed) == 0 {
		return false, nil
	}

	changes := make(map[string]string, len(placed))
	ids := make([]string, 0, len(placed))
	for _, slot := range placed {
		changes[slot.MatchedWith] = ""
		ids = append(ids, slot.MatchedWith)
	}
	data := backlog.SetItemMatches(s.data, changes)

	next := cur.Clone()
	next.SelectedGridItem = nil
	s.commitGridLocked(next, grid.NewGrid(len(cur.GridItems)), data, GridChange{Op: opClear, ItemIDs: ids})
	return true, nil
}

func (s *Store) commitGridLocked(cur *domain.ListSession, gridItems []domain.GridItem, data *domain.NormalizedBacklogData, change GridChange) {
	next := cur.Clone()
	next.GridItems = gridItems
	change.Progress = session.CalculateProgress(gridItems)
	s.commitLocked(next, data, EventGridChanged, change)
}

// SelectBacklogItem records the selected backlog item. An empty id clears
// the selection. It reports false for an unknown item or an unchanged
// selection.
func (s *Store) SelectBacklogItem(itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return false, err
	}
	if itemID != "" {
		if _, ok := s.data.ItemsByID[itemID]; !ok {
			return false, nil
		}
	}
	if sameSelection(cur.SelectedBacklogItem, itemID) {
		return false, nil
	}

	next := cur.Clone()
	next.SelectedBacklogItem = selection(itemID)
	s.commitLocked(next, s.data, EventSelectionChange, map[string]string{"backlog_item": itemID})
	return true, nil
}

// SelectGridItem records the selected grid slot by slot id. An empty id
// clears the selection.
func (s *Store) SelectGridItem(slotID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return false, err
	}
	if slotID != "" && !slices.ContainsFunc(cur.GridItems, func(g domain.GridItem) bool { return g.ID == slotID }) {
		return false, nil
	}
	if sameSelection(cur.SelectedGridItem, slotID) {
		return false, nil
	}

	next := cur.Clone()
	next.SelectedGridItem = selection(slotID)
	s.commitLocked(next, s.data, EventSelectionChange, map[string]string{"grid_item": slotID})
	return true, nil
}

func selection(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func sameSelection(cur *string, id string) bool {
	if cur == nil {
		return id == ""
	}
	return *cur == id
}
