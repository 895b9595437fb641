package domain

// YearRange is the optional period an item belongs to (e.g. a film's release
// year, a player's career). End is zero for open or single-year ranges.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end,omitempty"`
}

// Item is the public shape of a backlog item: a candidate that can be placed
// into one grid position.
type Item struct {
	Timestamps
	YearRange   *YearRange `json:"year_range,omitempty"`
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Subcategory string     `json:"subcategory,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	// MatchedWith is the grid slot id ("grid-{position}") holding this item.
	MatchedWith string   `json:"matched_with,omitempty"`
	Tags        []string `json:"tags"`
	Matched     bool     `json:"matched"`
}

// NormalizedItem is an Item stored in the flat item map, carrying a
// back-reference to the group that owns it.
type NormalizedItem struct {
	Item
	GroupID string `json:"group_id"`
}
