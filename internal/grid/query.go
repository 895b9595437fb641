package grid

import (
	"fmt"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

// AvailableBacklogItems returns every unmatched item across all groups.
func AvailableBacklogItems(groups []domain.Group) []domain.Item {
	items := make([]domain.Item, 0)
	for i := range groups {
		for _, item := range groups[i].Items {
			if !item.Matched {
				items = append(items, item)
			}
		}
	}
	return items
}

// MatchedItems returns the occupied slots in position order.
func MatchedItems(gridItems []domain.GridItem) []domain.GridItem {
	out := make([]domain.GridItem, 0)
	for _, slot := range gridItems {
		if slot.Matched {
			out = append(out, slot)
		}
	}
	return out
}

// NextAvailablePosition returns the first empty position.
func NextAvailablePosition(gridItems []domain.GridItem) (int, bool) {
	for i, slot := range gridItems {
		if !slot.Matched {
			return i, true
		}
	}
	return 0, false
}

// CanAddAtPosition reports whether position exists and is empty.
func CanAddAtPosition(gridItems []domain.GridItem, position int) bool {
	return inRange(gridItems, position) && !gridItems[position].Matched
}

// CheckConsistency verifies slot identity and the one-to-one reference
// between occupied slots and matched backlog items, returning the first
// violation.
func CheckConsistency(gridItems []domain.GridItem, groups []domain.Group) error {
	items := make(map[string]domain.Item)
	for i := range groups {
		for _, item := range groups[i].Items {
			items[item.ID] = item
		}
	}

	placed := make(map[string]int, len(gridItems))
	for i, slot := range gridItems {
		if slot.Position != i || slot.ID != SlotID(i) {
			return fmt.Errorf("slot %d has id %q and position %d", i, slot.ID, slot.Position)
		}
		if !slot.Matched {
			if slot.MatchedWith != "" {
				return fmt.Errorf("empty slot %d references item %q", i, slot.MatchedWith)
			}
			continue
		}

		item, ok := items[slot.MatchedWith]
		if !ok {
			return fmt.Errorf("slot %d references unknown item %q", i, slot.MatchedWith)
		}
		if !item.Matched || item.MatchedWith != slot.ID {
			return fmt.Errorf("slot %d holds item %q which points at %q", i, item.ID, item.MatchedWith)
		}
		if prev, dup := placed[item.ID]; dup {
			return fmt.Errorf("item %q placed in slots %d and %d", item.ID, prev, i)
		}
		placed[item.ID] = i
	}

	for id, item := range items {
		if item.Matched {
			if _, ok := placed[id]; !ok {
				return fmt.Errorf("item %q is matched with %q but no slot holds it", id, item.MatchedWith)
			}
		}
	}
	return nil
}
