package sessionstore

import (
	"github.com/xkazm04/goat-sub002/internal/backlog"
	domainerrors "github.com/xkazm04/goat-sub002/internal/errors"
	"github.com/xkazm04/goat-sub002/internal/placement"
)

// DropZones scores the active grid's positions for dragging itemID with the
// pointer over hover (placement.NoHover when outside the grid).
func (s *Store) DropZones(itemID string, hover int) ([]placement.DropZone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return nil, err
	}
	item, ok := backlog.FindItem(s.data, itemID)
	if !ok {
		return nil, domainerrors.NotFoundf("item %s not found", itemID)
	}
	return placement.ScoreDropZones(cur.GridItems, item.Item, hover), nil
}

// PredictPosition suggests where itemID should go on the active grid. It
// reports false when the grid has no empty slot.
func (s *Store) PredictPosition(itemID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.activeLocked()
	if err != nil {
		return 0, false, err
	}
	item, ok := backlog.FindItem(s.data, itemID)
	if !ok {
		return 0, false, domainerrors.NotFoundf("item %s not found", itemID)
	}
	pos, ok := placement.PredictPosition(cur.GridItems, item.Item)
	return pos, ok, nil
}
