// Package sse streams session store events to connected clients as
// Server-Sent Events.
package sse

import (
	"time"

	"github.com/xkazm04/goat-sub002/internal/sessionstore"
)

// EventType is the SSE event name.
type EventType string

// Stream-level events. Session store events keep their own type names.
const (
	EventConnected EventType = "connected"
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on the stream.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Type      EventType `json:"type"`
	// ListID scopes delivery: clients subscribed to another list skip it.
	// Empty means every client.
	ListID string `json:"list_id,omitempty"`
}

// HeartbeatEventData is the payload of heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// ConnectedEventData is the payload of the first event on a stream.
type ConnectedEventData struct {
	ClientID string `json:"client_id"`
	ListID   string `json:"list_id,omitempty"`
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Timestamp: now,
		Data:      HeartbeatEventData{ServerTime: now},
	}
}

// FromStoreEvent converts a session store event for the stream.
func FromStoreEvent(e sessionstore.Event) Event {
	return Event{
		Type:      EventType(e.Type),
		Timestamp: e.Timestamp,
		Data:      e.Data,
		ListID:    e.ListID,
	}
}
