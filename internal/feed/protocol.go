package feed

import (
	"encoding/json"
	"time"
)

// MessageType identifies the kind of WebSocket frame on the feed.
type MessageType string

// Frame types pushed to feed subscribers.
const (
	MsgHello   MessageType = "hello"
	MsgMessage MessageType = "message"
)

// Envelope is the wire format for all feed frames.
type Envelope struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// HelloPayload is sent once when a subscriber connects.
type HelloPayload struct {
	ClientID string `json:"client_id"`
}
