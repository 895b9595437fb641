package domain

import "time"

// Timestamps carries the creation and update times shared by backlog
// items, groups and sessions. It gets embedded so the JSON stays flat.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now when they are unset.
// Records arriving from the backend keep their own times.
func (t *Timestamps) InitTimestamps(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
}
