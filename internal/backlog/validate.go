package backlog

import (
	"errors"
	"fmt"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

// Validate checks the structural invariants of the normalized backlog and
// returns the first violation found.
func Validate(data *domain.NormalizedBacklogData) error {
	if data == nil {
		return errors.New("backlog is nil")
	}
	if len(data.GroupOrder) != len(data.GroupsByID) {
		return fmt.Errorf("group order has %d entries for %d groups", len(data.GroupOrder), len(data.GroupsByID))
	}

	owner := make(map[string]string, len(data.ItemsByID))
	seenGroups := make(map[string]bool, len(data.GroupOrder))
	for _, groupID := range data.GroupOrder {
		if seenGroups[groupID] {
			return fmt.Errorf("group %q appears twice in group order", groupID)
		}
		seenGroups[groupID] = true

		meta, ok := data.GroupsByID[groupID]
		if !ok {
			return fmt.Errorf("group order references unknown group %q", groupID)
		}
		if meta.ItemCount != len(meta.ItemIDs) {
			return fmt.Errorf("group %q: item_count %d != %d item ids", groupID, meta.ItemCount, len(meta.ItemIDs))
		}
		for _, itemID := range meta.ItemIDs {
			if prev, dup := owner[itemID]; dup {
				return fmt.Errorf("item %q in groups %q and %q", itemID, prev, groupID)
			}
			owner[itemID] = groupID

			item, ok := data.ItemsByID[itemID]
			if !ok {
				return fmt.Errorf("group %q references unknown item %q", groupID, itemID)
			}
			if item.GroupID != groupID {
				return fmt.Errorf("item %q back-references group %q, owned by %q", itemID, item.GroupID, groupID)
			}
		}
	}

	if len(owner) != len(data.ItemsByID) {
		return fmt.Errorf("%d items are not owned by any group", len(data.ItemsByID)-len(owner))
	}
	return nil
}
