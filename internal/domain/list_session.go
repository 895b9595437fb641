package domain

import "time"

// ListSession is the complete ranking state for one list.
type ListSession struct {
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	LastSavedAt         *time.Time `json:"last_saved_at,omitempty"`
	SelectedBacklogItem *string    `json:"selected_backlog_item"`
	SelectedGridItem    *string    `json:"selected_grid_item"`
	ID                  string     `json:"id" validate:"required"`
	Category            string     `json:"category,omitempty"`
	GridItems           []GridItem `json:"grid_items" validate:"required"`
	BacklogGroups       []Group    `json:"backlog_groups"`
	ListSize            int        `json:"list_size" validate:"gt=0"`
	Synced              bool       `json:"synced"`
}

// Clone returns a shallow copy with its own top-level struct. Slices are
// shared; callers replace them wholesale rather than writing into them.
func (s *ListSession) Clone() *ListSession {
	c := *s
	return &c
}

// PersistedState is the record held by the synchronous local store.
type PersistedState struct {
	ListSessions    map[string]*ListSession `json:"list_sessions"`
	ActiveSessionID string                  `json:"active_session_id,omitempty"`
}

// Progress summarises how much of the grid is filled.
type Progress struct {
	MatchedCount int  `json:"matched_count"`
	TotalSize    int  `json:"total_size"`
	Percentage   int  `json:"percentage"`
	IsComplete   bool `json:"is_complete"`
}

// SessionMetadata is the lightweight view of a session used in listings.
type SessionMetadata struct {
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastSavedAt       *time.Time `json:"last_saved_at,omitempty"`
	ListID            string     `json:"list_id"`
	Category          string     `json:"category,omitempty"`
	Progress          Progress   `json:"progress"`
	ListSize          int        `json:"list_size"`
	GroupCount        int        `json:"group_count"`
	ItemCount         int        `json:"item_count"`
	Synced            bool       `json:"synced"`
	HasUnsavedChanges bool       `json:"has_unsaved_changes"`
}
