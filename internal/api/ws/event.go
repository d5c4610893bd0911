package ws

import "encoding/json"

// Event is the wire shape of every websocket message.
type Event struct {
	Type   string          `json:"type"`
	Reason string          `json:"reason"`
	Data   json.RawMessage `json:"data,omitempty"`
}
