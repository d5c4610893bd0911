package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub manages websocket rooms keyed by hangout id.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

var hub = &Hub{rooms: make(map[string]*Room)}

func getHub() *Hub { return hub }

// GetRoom returns the existing room for a hangout or creates a new one.
func GetRoom(hangoutID string) *Room {
	h := getHub()
	h.mu.RLock()
	r := h.rooms[hangoutID]
	h.mu.RUnlock()
	if r != nil {
		return r
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if r = h.rooms[hangoutID]; r == nil {
		r = newRoom(hangoutID)
		h.rooms[hangoutID] = r
	}
	return r
}

// Broadcast sends the given event to all websocket clients of a hangout.
// Called only after the originating transaction has committed.
func Broadcast(hangoutID string, event Event) {
	b, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws marshal error: %v", err)
		return
	}

	h := getHub()
	h.mu.RLock()
	r := h.rooms[hangoutID]
	h.mu.RUnlock()
	if r == nil {
		// nobody watching
		return
	}
	select {
	case r.broadcastChan <- b:
	case <-r.stopChan:
	}
}

// SweepDead pings every client and prunes connections that failed their last
// ping. A room its sweep leaves empty retires itself from the registry and
// exits its event loop. Run periodically from cron.
func SweepDead() {
	h := getHub()
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	for _, r := range rooms {
		select {
		case r.sweepChan <- struct{}{}:
		default:
			// a sweep is already pending
		}
	}
}
