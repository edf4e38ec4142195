// Package feed broadcasts lifecycle events to connected websocket clients.
// The game layer publishes an event after each committed state change and
// every subscribed client receives it as JSON.
package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types published by the game layer.
const (
	EventOfferCreated      = "offer_created"
	EventOfferCompleted    = "offer_completed"
	EventOfferCancelled    = "offer_cancelled"
	EventBuildingStarted   = "building_started"
	EventBuildingCompleted = "building_completed"
	EventBuildingUpgraded  = "building_upgraded"
)

// Event is the wire format sent to clients.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second

	// sendBuffer bounds per-client queueing; a client that falls this far
	// behind is dropped instead of blocking the hub.
	sendBuffer = 32
)

// Client is one websocket subscriber.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to all connected clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens via the bearer token middleware, not the origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve upgrades the request and registers the connection until it closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := &Client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(client)
	go client.writePump(h)
	client.readPump(h)
}

// Publish sends an event to every connected client. Never blocks: clients
// with full send buffers are dropped.
func (h *Hub) Publish(eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		slog.Error("encoding feed event", "type", eventType, "error", err)
		return
	}

	h.mu.Lock()
	var slow []*Client
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	for _, client := range slow {
		h.removeLocked(client)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	h.removeLocked(client)
	h.mu.Unlock()
}

// removeLocked must be called with h.mu held.
func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	client.conn.Close()
}

// readPump discards inbound messages; the feed is one-way. It returns when
// the peer disconnects, unregistering the client.
func (c *Client) readPump(h *Hub) {
	defer h.unregister(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pumps events from the send channel to the connection and keeps
// it alive with pings.
func (c *Client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
