package backlog

import (
	"maps"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

// AddItem appends item to the end of a group. It returns data unchanged when
// the group does not exist, the item has no id, or the id is already taken.
// New items always enter the backlog unmatched.
func AddItem(data *domain.NormalizedBacklogData, groupID string, item domain.Item) *domain.NormalizedBacklogData {
	meta, ok := data.GroupsByID[groupID]
	if !ok || item.ID == "" {
		return data
	}
	if _, exists := data.ItemsByID[item.ID]; exists {
		return data
	}

	item.Matched = false
	item.MatchedWith = ""

	next := cloneData(data)
	next.ItemsByID = maps.Clone(data.ItemsByID)
	next.ItemsByID[item.ID] = domain.NormalizedItem{Item: withDefaults(item), GroupID: groupID}

	meta.ItemIDs = appendID(meta.ItemIDs, item.ID)
	meta.ItemCount = len(meta.ItemIDs)
	next.GroupsByID = maps.Clone(data.GroupsByID)
	next.GroupsByID[groupID] = meta

	return next
}

// RemoveItem deletes an item from its group. Only the owning group's id list
// is scanned. Missing groups, missing items and items owned by a different
// group leave data unchanged.
func RemoveItem(data *domain.NormalizedBacklogData, groupID, itemID string) *domain.NormalizedBacklogData {
	meta, ok := data.GroupsByID[groupID]
	if !ok {
		return data
	}
	item, ok := data.ItemsByID[itemID]
	if !ok || item.GroupID != groupID {
		return data
	}

	next := cloneData(data)
	next.ItemsByID = maps.Clone(data.ItemsByID)
	delete(next.ItemsByID, itemID)

	ids := make([]string, 0, max(len(meta.ItemIDs)-1, 0))
	for _, id := range meta.ItemIDs {
		if id != itemID {
			ids = append(ids, id)
		}
	}
	meta.ItemIDs = ids
	meta.ItemCount = len(ids)
	next.GroupsByID = maps.Clone(data.GroupsByID)
	next.GroupsByID[groupID] = meta

	return next
}

// UpdateGroupItems replaces a group's membership wholesale. Items previously
// owned by the group are deleted; the new items are inserted in order.
// Items without an id, repeated ids and ids owned by another group are
// skipped.
func UpdateGroupItems(data *domain.NormalizedBacklogData, groupID string, items []domain.Item) *domain.NormalizedBacklogData {
	meta, ok := data.GroupsByID[groupID]
	if !ok {
		return data
	}

	next := cloneData(data)
	next.ItemsByID = maps.Clone(data.ItemsByID)
	for _, id := range meta.ItemIDs {
		delete(next.ItemsByID, id)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, taken := next.ItemsByID[item.ID]; taken {
			continue
		}
		next.ItemsByID[item.ID] = domain.NormalizedItem{Item: withDefaults(item), GroupID: groupID}
		ids = append(ids, item.ID)
	}

	meta.ItemIDs = ids
	meta.ItemCount = len(ids)
	next.GroupsByID = maps.Clone(data.GroupsByID)
	next.GroupsByID[groupID] = meta

	return next
}

// ToggleGroup flips the open/closed flag of a group.
func ToggleGroup(data *domain.NormalizedBacklogData, groupID string) *domain.NormalizedBacklogData {
	meta, ok := data.GroupsByID[groupID]
	if !ok {
		return data
	}
	return SetGroupOpen(data, groupID, !meta.IsOpen)
}

// SetGroupOpen sets the open/closed flag of a group.
func SetGroupOpen(data *domain.NormalizedBacklogData, groupID string, open bool) *domain.NormalizedBacklogData {
	meta, ok := data.GroupsByID[groupID]
	if !ok || meta.IsOpen == open {
		return data
	}

	meta.IsOpen = open
	next := cloneData(data)
	next.GroupsByID = maps.Clone(data.GroupsByID)
	next.GroupsByID[groupID] = meta
	return next
}

// SetItemMatch updates the placement flags of a single item. matchedWith is
// ignored when matched is false.
func SetItemMatch(data *domain.NormalizedBacklogData, itemID string, matched bool, matchedWith string) *domain.NormalizedBacklogData {
	item, ok := data.ItemsByID[itemID]
	if !ok {
		return data
	}
	if !matched {
		matchedWith = ""
	}
	if item.Matched == matched && item.MatchedWith == matchedWith {
		return data
	}

	item.Matched = matched
	item.MatchedWith = matchedWith
	next := cloneData(data)
	next.ItemsByID = maps.Clone(data.ItemsByID)
	next.ItemsByID[itemID] = item
	return next
}

// SetItemMatches applies several placement updates with one copy of the
// item map. changes maps item id to slot id; an empty slot id unmatches the
// item. Unknown ids are skipped.
func SetItemMatches(data *domain.NormalizedBacklogData, changes map[string]string) *domain.NormalizedBacklogData {
	var items map[string]domain.NormalizedItem
	for itemID, slot := range changes {
		item, ok := data.ItemsByID[itemID]
		if !ok {
			continue
		}
		matched := slot != ""
		if item.Matched == matched && item.MatchedWith == slot {
			continue
		}
		if items == nil {
			items = maps.Clone(data.ItemsByID)
		}
		item.Matched = matched
		item.MatchedWith = slot
		items[itemID] = item
	}
	if items == nil {
		return data
	}
	next := cloneData(data)
	next.ItemsByID = items
	return next
}
