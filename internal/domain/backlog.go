package domain

// BacklogVersion tags the normalized backlog shape. Persisted records with no
// version are the legacy nested-array shape and go through migration.
const BacklogVersion = 2

// Group is the tree form of a backlog group: metadata plus its items in
// display order. It is what gets persisted and rendered.
type Group struct {
	Timestamps
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Items       []Item `json:"items"`
	ItemCount   int    `json:"item_count"`
	IsOpen      bool   `json:"is_open"`
}

// NormalizedGroupMeta is a group in the flat representation. ItemIDs is the
// only source of membership and order; ItemCount always equals len(ItemIDs).
type NormalizedGroupMeta struct {
	Timestamps
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	ItemIDs     []string `json:"item_ids"`
	ItemCount   int      `json:"item_count"`
	IsOpen      bool     `json:"is_open"`
}

// NormalizedBacklogData is the aggregate root of the backlog. Values are
// never modified after construction: every operation returns a new pointer,
// so pointer identity can be used to detect change.
type NormalizedBacklogData struct {
	GroupsByID map[string]NormalizedGroupMeta `json:"groups_by_id"`
	ItemsByID  map[string]NormalizedItem      `json:"items_by_id"`
	GroupOrder []string                       `json:"group_order"`
	Version    int                            `json:"version"`
}

// EmptyBacklog returns an empty normalized backlog.
func EmptyBacklog() *NormalizedBacklogData {
	return &NormalizedBacklogData{
		Version:    BacklogVersion,
		GroupsByID: map[string]NormalizedGroupMeta{},
		ItemsByID:  map[string]NormalizedItem{},
		GroupOrder: []string{},
	}
}
