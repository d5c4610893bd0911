package ws

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Client represents a single websocket connection of a hangout member.
type Client struct {
	room     *Room
	conn     *websocket.Conn
	memberID uint
	send     chan []byte
	ping     chan struct{}
	alive    atomic.Bool
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Serve upgrades an already-authenticated connection and joins the hangout's
// room. The caller has verified the session and the membership freshly.
func Serve(w http.ResponseWriter, r *http.Request, hangoutID string, memberID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		conn:     conn,
		memberID: memberID,
		send:     make(chan []byte, 256),
		ping:     make(chan struct{}, 1),
	}
	client.alive.Store(true)

	// The room may retire between lookup and registration; fetch a fresh
	// one until the registration lands.
	for {
		room := GetRoom(hangoutID)
		if room.register(client) {
			client.room = room
			break
		}
	}

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.room.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(1 << 20)
	c.conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})
	for {
		// Incoming client messages are ephemeral status events.
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil || evt.Type == "" {
			// Ignore malformed input; keep the connection alive.
			continue
		}

		switch evt.Type {
		case "typing", "stoppedTyping":
			// Fan out ephemeral status events to everyone in the hangout.
			select {
			case c.room.broadcastChan <- data:
			case <-c.room.stopChan:
			}
		default:
			// Ignore other incoming event types.
		}
	}
}

func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.ping:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
