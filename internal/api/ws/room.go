package ws

import (
	"sync/atomic"
)

// Room maintains the active clients of one hangout and broadcasts events to
// them.
type Room struct {
	hangoutID      string
	clients        map[*Client]bool
	clientCount    atomic.Int64
	registerChan   chan *Client
	unregisterChan chan *Client
	broadcastChan  chan []byte
	sweepChan      chan struct{}
	stopChan       chan struct{}
}

// newRoom constructs a room and starts its event loop goroutine.
func newRoom(hangoutID string) *Room {
	r := &Room{
		hangoutID:      hangoutID,
		clients:        make(map[*Client]bool),
		registerChan:   make(chan *Client),
		unregisterChan: make(chan *Client),
		broadcastChan:  make(chan []byte, 256),
		sweepChan:      make(chan struct{}, 1),
		stopChan:       make(chan struct{}),
	}
	go r.run()
	return r
}

// run is the room event loop; it serializes all room state changes and fans
// out broadcasts. It exits once the room has been retired from the registry.
func (r *Room) run() {
	for {
		select {
		case c := <-r.registerChan:
			r.clients[c] = true
			r.clientCount.Store(int64(len(r.clients)))
		case c := <-r.unregisterChan:
			if _, ok := r.clients[c]; ok {
				delete(r.clients, c)
				close(c.send)
			}
			r.clientCount.Store(int64(len(r.clients)))
		case msg := <-r.broadcastChan:
			r.broadcastToClients(msg)
		case <-r.sweepChan:
			r.dropDead()
			if len(r.clients) == 0 && r.retire() {
				return
			}
		}
	}
}

// register adds the client to the room. It reports false when the room has
// already been retired; the caller must fetch a fresh room and retry.
func (r *Room) register(c *Client) bool {
	select {
	case r.registerChan <- c:
		return true
	case <-r.stopChan:
		return false
	}
}

func (r *Room) unregister(c *Client) {
	select {
	case r.unregisterChan <- c:
	case <-r.stopChan:
	}
}

// retire removes the empty room from the registry and closes stopChan so
// blocked registrants fall through to a fresh room. A client that slipped
// onto registerChan before the registry lock was taken aborts the retirement.
func (r *Room) retire() bool {
	h := getHub()
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case c := <-r.registerChan:
		r.clients[c] = true
		r.clientCount.Store(int64(len(r.clients)))
		return false
	default:
	}

	delete(h.rooms, r.hangoutID)
	close(r.stopChan)
	return true
}

// broadcastToClients sends a raw websocket message to all connected clients.
// A slow or failed client is dropped without blocking delivery to the rest.
func (r *Room) broadcastToClients(msg []byte) {
	for c := range r.clients {
		select {
		case c.send <- msg:
		default:
			// slow client; drop
			delete(r.clients, c)
			close(c.send)
		}
	}
	r.clientCount.Store(int64(len(r.clients)))
}

// dropDead removes clients that failed to answer their previous ping and
// pings the rest.
func (r *Room) dropDead() {
	for c := range r.clients {
		if !c.alive.Load() {
			delete(r.clients, c)
			close(c.send)
			continue
		}
		c.alive.Store(false)
		select {
		case c.ping <- struct{}{}:
		default:
		}
	}
	r.clientCount.Store(int64(len(r.clients)))
}
