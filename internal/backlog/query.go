package backlog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

// GroupItems returns the items of one group in display order.
func GroupItems(data *domain.NormalizedBacklogData, groupID string) []domain.Item {
	meta, ok := data.GroupsByID[groupID]
	if !ok {
		return []domain.Item{}
	}
	items := make([]domain.Item, 0, len(meta.ItemIDs))
	for _, id := range meta.ItemIDs {
		if item, ok := data.ItemsByID[id]; ok {
			items = append(items, item.Item)
		}
	}
	return items
}

// AllItems returns every item, grouped in GroupOrder and item order.
func AllItems(data *domain.NormalizedBacklogData) []domain.Item {
	items := make([]domain.Item, 0, len(data.ItemsByID))
	for _, groupID := range data.GroupOrder {
		items = append(items, GroupItems(data, groupID)...)
	}
	return items
}

// FindItem looks up an item by id.
func FindItem(data *domain.NormalizedBacklogData, itemID string) (domain.NormalizedItem, bool) {
	item, ok := data.ItemsByID[itemID]
	return item, ok
}

// SearchGroups returns, in GroupOrder, every group whose name or description
// contains term, or which has at least one item whose name, description or
// any tag contains term. Matching is case-insensitive. A blank term matches
// every group.
func SearchGroups(data *domain.NormalizedBacklogData, term string) []domain.Group {
	term = strings.TrimSpace(term)
	if term == "" {
		return Denormalize(data)
	}

	fold := cases.Fold()
	needle := fold.String(term)
	contains := func(s string) bool {
		return s != "" && strings.Contains(fold.String(s), needle)
	}

	groups := make([]domain.Group, 0)
	for _, groupID := range data.GroupOrder {
		meta, ok := data.GroupsByID[groupID]
		if !ok {
			continue
		}
		if contains(meta.Name) || contains(meta.Description) || anyItemMatches(data, meta, contains) {
			groups = append(groups, toGroup(data, meta))
		}
	}
	return groups
}

func anyItemMatches(data *domain.NormalizedBacklogData, meta domain.NormalizedGroupMeta, contains func(string) bool) bool {
	for _, id := range meta.ItemIDs {
		item, ok := data.ItemsByID[id]
		if !ok {
			continue
		}
		if contains(item.Name) || contains(item.Description) {
			return true
		}
		for _, tag := range item.Tags {
			if contains(tag) {
				return true
			}
		}
	}
	return false
}

// GroupsByCategory returns groups whose category equals category and, when
// subcategory is non-empty, whose subcategory equals it too.
func GroupsByCategory(data *domain.NormalizedBacklogData, category, subcategory string) []domain.Group {
	groups := make([]domain.Group, 0)
	for _, groupID := range data.GroupOrder {
		meta, ok := data.GroupsByID[groupID]
		if !ok || meta.Category != category {
			continue
		}
		if subcategory != "" && meta.Subcategory != subcategory {
			continue
		}
		groups = append(groups, toGroup(data, meta))
	}
	return groups
}
