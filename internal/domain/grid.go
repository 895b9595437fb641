package domain

// GridItem is one fixed ranking position. ID is always "grid-{Position}";
// an occupied slot has Matched set and MatchedWith naming the backlog item.
// Title, Description, ImageURL and Tags mirror the occupant for display.
type GridItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	MatchedWith string   `json:"matched_with,omitempty"`
	Tags        []string `json:"tags"`
	Position    int      `json:"position"`
	Matched     bool     `json:"matched"`
}
