// Package push fans mutation events out to connected WebSocket
// clients. Each client is bound to one user; events never cross user
// boundaries.
package push

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event tells a client that a collection changed and which period the
// change touched, so it can refetch the affected views.
type Event struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
	RecordID   string `json:"record_id,omitempty"`
	Year       int    `json:"year,omitempty"`
	Month      int    `json:"month,omitempty"`
}

type client struct {
	conn   *websocket.Conn
	userID string
}

type userEvent struct {
	userID string
	body   []byte
}

// Hub tracks connections and broadcasts events to one user's clients.
type Hub struct {
	mu         sync.Mutex
	clients    map[*websocket.Conn]string
	broadcast  chan userEvent
	register   chan client
	unregister chan *websocket.Conn
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		broadcast:  make(chan userEvent, 16),
		register:   make(chan client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop until Stop is called.
func (h *Hub) Start() {
	go func() {
		for {
			select {
			case c := <-h.register:
				h.mu.Lock()
				h.clients[c.conn] = c.userID
				total := len(h.clients)
				h.mu.Unlock()
				slog.Info("WebSocket client connected", "component", "push", "user_id", c.userID, "total_clients", total)
			case conn := <-h.unregister:
				h.mu.Lock()
				if _, ok := h.clients[conn]; ok {
					delete(h.clients, conn)
					conn.Close()
				}
				total := len(h.clients)
				h.mu.Unlock()
				slog.Info("WebSocket client disconnected", "component", "push", "total_clients", total)
			case ev := <-h.broadcast:
				h.mu.Lock()
				for conn, userID := range h.clients {
					if userID != ev.userID {
						continue
					}
					conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, ev.body); err != nil {
						slog.Warn("Dropping WebSocket client", "component", "push", "error", err)
						conn.Close()
						delete(h.clients, conn)
					}
				}
				h.mu.Unlock()
			case <-h.done:
				h.mu.Lock()
				for conn := range h.clients {
					conn.Close()
					delete(h.clients, conn)
				}
				h.mu.Unlock()
				return
			}
		}
	}()
}

// Stop closes every connection and ends the hub loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Register binds a connection to a user. After Stop the connection is
// closed instead, so a late upgrade never strands its handler.
func (h *Hub) Register(conn *websocket.Conn, userID string) {
	select {
	case h.register <- client{conn: conn, userID: userID}:
	case <-h.done:
		conn.Close()
	}
}

// Unregister drops a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
		conn.Close()
	}
}

// Notify broadcasts an event to all of a user's clients. Never blocks
// the caller; if the hub is saturated the event is dropped, clients
// resync on their next fetch anyway.
func (h *Hub) Notify(userID string, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to marshal push event", "component", "push", "error", err)
		return
	}
	select {
	case h.broadcast <- userEvent{userID: userID, body: body}:
	default:
		slog.Warn("Push buffer full, dropping event", "component", "push", "user_id", userID)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
