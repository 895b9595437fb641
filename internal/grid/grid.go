// Package grid implements the pure operations that place backlog items into
// a fixed-length ranking grid and keep the slot <-> item references in sync.
//
// Every mutating function takes the current grid and the backlog tree and
// returns a new pair, or nil when a precondition does not hold. Inputs are
// never modified.
package grid

import (
	"slices"
	"strconv"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

// Result is the grid and backlog produced by a successful operation.
type Result struct {
	GridItems     []domain.GridItem
	BacklogGroups []domain.Group
}

// SlotID returns the stable id of the slot at position.
func SlotID(position int) string {
	return "grid-" + strconv.Itoa(position)
}

// NewGrid returns size empty slots.
func NewGrid(size int) []domain.GridItem {
	items := make([]domain.GridItem, max(size, 0))
	for i := range items {
		items[i] = EmptySlot(i)
	}
	return items
}

// EmptySlot returns the unoccupied slot at position.
func EmptySlot(position int) domain.GridItem {
	return domain.GridItem{
		ID:       SlotID(position),
		Position: position,
		Tags:     []string{},
	}
}

// occupy renders item into the slot at position.
func occupy(position int, item domain.Item) domain.GridItem {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.GridItem{
		ID:          SlotID(position),
		Position:    position,
		Title:       item.Name,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		Tags:        tags,
		Matched:     true,
		MatchedWith: item.ID,
	}
}

// relocate moves an occupied slot's content to position.
func relocate(slot domain.GridItem, position int) domain.GridItem {
	slot.ID = SlotID(position)
	slot.Position = position
	return slot
}

func inRange(gridItems []domain.GridItem, position int) bool {
	return position >= 0 && position < len(gridItems)
}

// Assign places item at position. It fails when position is out of range,
// the slot is occupied, or the item is not an unmatched backlog item.
func Assign(gridItems []domain.GridItem, groups []domain.Group, item domain.Item, position int) *Result {
	if !inRange(gridItems, position) || gridItems[position].Matched {
		return nil
	}
	current, ok := findItem(groups, item.ID)
	if !ok || current.Matched {
		return nil
	}

	next := slices.Clone(gridItems)
	next[position] = occupy(position, current)

	return &Result{
		GridItems:     next,
		BacklogGroups: setMatches(groups, map[string]string{item.ID: SlotID(position)}),
	}
}

// Remove empties the slot at position and releases its item back to the
// backlog. It fails when position is out of range or the slot is empty.
func Remove(gridItems []domain.GridItem, groups []domain.Group, position int) *Result {
	if !inRange(gridItems, position) || !gridItems[position].Matched {
		return nil
	}

	itemID := gridItems[position].MatchedWith
	next := slices.Clone(gridItems)
	next[position] = EmptySlot(position)

	return &Result{
		GridItems:     next,
		BacklogGroups: setMatches(groups, map[string]string{itemID: ""}),
	}
}

// Move relocates the item at fromIndex to toIndex. When toIndex is occupied
// the two items trade places; otherwise fromIndex is left empty. It fails
// when either index is out of range, they are equal, or fromIndex is empty.
func Move(gridItems []domain.GridItem, groups []domain.Group, fromIndex, toIndex int) *Result {
	if !inRange(gridItems, fromIndex) || !inRange(gridItems, toIndex) || fromIndex == toIndex {
		return nil
	}
	src := gridItems[fromIndex]
	if !src.Matched {
		return nil
	}
	dst := gridItems[toIndex]

	next := slices.Clone(gridItems)
	changes := map[string]string{src.MatchedWith: SlotID(toIndex)}

	next[toIndex] = relocate(src, toIndex)
	if dst.Matched {
		next[fromIndex] = relocate(dst, fromIndex)
		changes[dst.MatchedWith] = SlotID(fromIndex)
	} else {
		next[fromIndex] = EmptySlot(fromIndex)
	}

	return &Result{
		GridItems:     next,
		BacklogGroups: setMatches(groups, changes),
	}
}

// Clear empties every slot and unflags every backlog item.
func Clear(gridItems []domain.GridItem, groups []domain.Group) *Result {
	changes := make(map[string]string)
	for i := range groups {
		for _, item := range groups[i].Items {
			if item.Matched {
				changes[item.ID] = ""
			}
		}
	}
	return &Result{
		GridItems:     NewGrid(len(gridItems)),
		BacklogGroups: setMatches(groups, changes),
	}
}

// setMatches returns groups with the listed items' placement rewritten: a
// non-empty slot id marks the item matched with that slot, an empty one
// unmatches it. Only groups containing a listed item are copied.
func setMatches(groups []domain.Group, changes map[string]string) []domain.Group {
	next := slices.Clone(groups)
	if len(changes) == 0 {
		return next
	}

	for gi := range next {
		var items []domain.Item
		for ii, item := range next[gi].Items {
			slot, ok := changes[item.ID]
			if !ok {
				continue
			}
			if items == nil {
				items = slices.Clone(next[gi].Items)
			}
			items[ii].Matched = slot != ""
			items[ii].MatchedWith = slot
		}
		if items != nil {
			next[gi].Items = items
		}
	}
	return next
}

func findItem(groups []domain.Group, itemID string) (domain.Item, bool) {
	if itemID == "" {
		return domain.Item{}, false
	}
	for i := range groups {
		for _, item := range groups[i].Items {
			if item.ID == itemID {
				return item, true
			}
		}
	}
	return domain.Item{}, false
}
