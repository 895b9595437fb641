package sessionstore

import (
	"time"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

// EventType names a session store transition.
type EventType string

// Event types.
const (
	EventSessionCreated  EventType = "session.created"
	EventSessionLoaded   EventType = "session.loaded"
	EventSessionSaved    EventType = "session.saved"
	EventSessionDeleted  EventType = "session.deleted"
	EventSessionSynced   EventType = "session.synced"
	EventStoreReset      EventType = "store.reset"
	EventBacklogChanged  EventType = "backlog.changed"
	EventGridChanged     EventType = "grid.changed"
	EventSelectionChange EventType = "selection.changed"
)

// Event is emitted after every state transition.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Type      EventType `json:"type"`
	ListID    string    `json:"list_id,omitempty"`
}

// EventEmitter receives events. Emit is called with the store lock held and
// must not block or call back into the store.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter discards events.
type NoopEmitter struct{}

// Emit does nothing.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter returns an emitter that discards events.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// GridChange describes a grid mutation.
type GridChange struct {
	Op        string          `json:"op"`
	Positions []int           `json:"positions,omitempty"`
	ItemIDs   []string        `json:"item_ids,omitempty"`
	Progress  domain.Progress `json:"progress"`
}

// BacklogChange describes a backlog mutation.
type BacklogChange struct {
	Op      string `json:"op"`
	GroupID string `json:"group_id,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
}

func (s *Store) emit(t EventType, listID string, data any) {
	s.emitter.Emit(Event{
		Type:      t,
		ListID:    listID,
		Timestamp: s.manager.Now(),
		Data:      data,
	})
}
