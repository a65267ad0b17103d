package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeThreadOpen  = "thread.open"
	EventTypeThreadClose = "thread.close"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypeThreadSnapshot = "thread.snapshot"
	EventTypeMessageNew     = "message.new"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	ThreadID  string          `json:"thread_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

// ThreadOpenPayload names the thread either directly or by the other
// participant's account id.
type ThreadOpenPayload struct {
	ThreadID string     `json:"thread_id,omitempty"`
	UserID   *uuid.UUID `json:"user_id,omitempty"`
}

// --- Server → Client payloads ---

type SnapshotPayload struct {
	ThreadID string           `json:"thread_id"`
	Messages []domain.Message `json:"messages"`
}

type MessagePayload struct {
	domain.Message
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType, threadID string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		ThreadID:  threadID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}

func encodeEvent(eventType, threadID string, payload any) ([]byte, error) {
	evt, err := NewEvent(eventType, threadID, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(evt)
}
