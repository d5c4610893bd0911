package services

import (
	"database/sql"
	"encoding/json"

	"gorm.io/gorm"
)

// Event is the payload broadcast to every socket watching a hangout after a
// state change commits.
type Event struct {
	Type   string          `json:"type"`
	Reason string          `json:"reason"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Notifier delivers an event to every live connection of a hangout. Wired to
// the websocket hub in main; a no-op in tests. Called strictly after commit.
type Notifier func(hangoutID string, evt Event)

func NewEvent(eventType, reason string, data any) Event {
	evt := Event{Type: eventType, Reason: reason}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			evt.Data = b
		}
	}
	return evt
}

// serializable runs fn inside one serializable transaction. Every multi-step
// check-then-act sequence in this package goes through here; on any error the
// transaction rolls back and nothing is visible to other transactions.
func serializable(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
}
