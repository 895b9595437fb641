// Package backlog implements the normalized backlog store: flat id-indexed
// maps of groups and items with pure, copy-on-write operations and
// conversion to and from the nested group tree.
package backlog

import (
	"slices"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

// Normalize converts the tree form into the flat form in one pass over all
// items. Groups and items without an id are dropped, as are repeated ids:
// the first occurrence wins so that no item belongs to two groups.
// ItemCount is recomputed from the kept items; nil tags become empty.
func Normalize(groups []domain.Group) *domain.NormalizedBacklogData {
	total := 0
	for i := range groups {
		total += len(groups[i].Items)
	}

	data := &domain.NormalizedBacklogData{
		Version:    domain.BacklogVersion,
		GroupsByID: make(map[string]domain.NormalizedGroupMeta, len(groups)),
		ItemsByID:  make(map[string]domain.NormalizedItem, total),
		GroupOrder: make([]string, 0, len(groups)),
	}

	for i := range groups {
		g := &groups[i]
		if g.ID == "" {
			continue
		}
		if _, dup := data.GroupsByID[g.ID]; dup {
			continue
		}

		meta := domain.NormalizedGroupMeta{
			Timestamps:  g.Timestamps,
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			Category:    g.Category,
			Subcategory: g.Subcategory,
			IsOpen:      g.IsOpen,
			ItemIDs:     make([]string, 0, len(g.Items)),
		}

		for j := range g.Items {
			item := g.Items[j]
			if item.ID == "" {
				continue
			}
			if _, dup := data.ItemsByID[item.ID]; dup {
				continue
			}
			data.ItemsByID[item.ID] = domain.NormalizedItem{
				Item:    withDefaults(item),
				GroupID: g.ID,
			}
			meta.ItemIDs = append(meta.ItemIDs, item.ID)
		}
		meta.ItemCount = len(meta.ItemIDs)

		data.GroupsByID[g.ID] = meta
		data.GroupOrder = append(data.GroupOrder, g.ID)
	}

	return data
}

// Denormalize rebuilds the tree form in GroupOrder order. It walks every
// item, so callers on a hot read path should go through a Memo.
func Denormalize(data *domain.NormalizedBacklogData) []domain.Group {
	if data == nil {
		return []domain.Group{}
	}

	groups := make([]domain.Group, 0, len(data.GroupOrder))
	for _, groupID := range data.GroupOrder {
		meta, ok := data.GroupsByID[groupID]
		if !ok {
			continue
		}
		groups = append(groups, toGroup(data, meta))
	}
	return groups
}

// toGroup expands one group meta into its tree form.
func toGroup(data *domain.NormalizedBacklogData, meta domain.NormalizedGroupMeta) domain.Group {
	items := make([]domain.Item, 0, len(meta.ItemIDs))
	for _, id := range meta.ItemIDs {
		if item, ok := data.ItemsByID[id]; ok {
			items = append(items, item.Item)
		}
	}
	return domain.Group{
		Timestamps:  meta.Timestamps,
		ID:          meta.ID,
		Name:        meta.Name,
		Description: meta.Description,
		Category:    meta.Category,
		Subcategory: meta.Subcategory,
		Items:       items,
		ItemCount:   meta.ItemCount,
		IsOpen:      meta.IsOpen,
	}
}

// withDefaults fills the optional fields that have a documented default.
func withDefaults(item domain.Item) domain.Item {
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if !item.Matched {
		item.MatchedWith = ""
	}
	return item
}

// cloneData returns a shallow copy of the aggregate. The maps and GroupOrder
// are shared with the original; callers copy what they are about to change.
func cloneData(data *domain.NormalizedBacklogData) *domain.NormalizedBacklogData {
	c := *data
	return &c
}

// appendID appends to a copy of ids, never into the original backing array.
func appendID(ids []string, id string) []string {
	return append(slices.Clip(ids), id)
}
