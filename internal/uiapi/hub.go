// Package uiapi is the optional reference operator UI: an HTTP/JSON
// command surface that turns requests into bus messages, plus a
// websocket hub that streams CurrentPosition/EndstopHit events and log
// lines back out. It is a collaborator, not part of the core's four
// control loops - the core never blocks on it and keeps running with or
// without a UI attached.
package uiapi

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// EventType discriminates the kinds of event pushed to UI clients.
type EventType string

const (
	EventPosition EventType = "position"
	EventEndstop  EventType = "endstop"
	EventLog      EventType = "log"
)

// Event is one message pushed down every connected client's websocket.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Event
}

// Hub fans Events out to every connected UI client. It never blocks the
// caller: a client whose send buffer is full simply misses an update.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// Broadcast pushes an event to every connected client.
func (h *Hub) Broadcast(eventType EventType, data map[string]interface{}) {
	evt := Event{Type: eventType, Timestamp: time.Now(), Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- evt:
		default:
		}
	}
}

// ClientCount reports how many UI clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades conn into a tracked client and blocks until it
// disconnects, pumping outgoing events and discarding inbound traffic
// (the UI only ever reads this stream).
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan Event, 64)}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c.id)
		h.mu.Unlock()
		close(c.send)
		conn.Close()
	}()

	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
