package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBufferSize = 256
)

// Event names carried in Message.Event
const (
	EventStateUpdate = "state_update"
	EventGameOver    = "game_over"
	EventVictory     = "victory"
	EventDeleted     = "session_deleted"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the JSON frame pushed to clients
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// Client is one websocket connection subscribed to a session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub fans game updates out to the clients watching each session
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to sessionID.
// A non-nil initial state is sent as the first frame.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.GameState) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "session", sessionID, "error", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		sessionID: sessionKey(sessionID),
	}

	if initial != nil {
		if data, err := json.Marshal(&Message{SessionID: sessionID, GameState: initial, Event: EventStateUpdate}); err == nil {
			client.send <- data
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession queues a state update for every client of sessionID.
// Terminal states are followed by a game_over or victory event.
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(&Message{SessionID: sessionID, GameState: state, Event: EventStateUpdate})

	if state == nil {
		return
	}
	switch state.State {
	case engine.Won:
		h.BroadcastEvent(sessionID, EventVictory, state.Message)
	case engine.Dead:
		h.BroadcastEvent(sessionID, EventGameOver, state.Message)
	}
}

// BroadcastEvent queues a custom event for every client of sessionID
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{SessionID: sessionID, Event: event, Data: data})
}

// ClientCount returns the number of clients watching sessionID
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionKey(sessionID)])
}

// sessionKey matches the session manager's case-insensitive IDs
func sessionKey(id string) string {
	return strings.ToLower(id)
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		logger.Warn("websocket broadcast queue full, dropping message",
			"session", message.SessionID, "event", message.Event)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	logger.Debug("websocket client registered",
		"session", client.sessionID, "clients", len(h.sessions[client.sessionID]))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. Callers hold h.mu.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	logger.Debug("websocket client unregistered",
		"session", client.sessionID, "remaining", len(clients))
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("failed to marshal websocket message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.sessions[sessionKey(message.SessionID)] {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.sessions {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// readPump discards client frames and keeps the read deadline fresh
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", "session", c.sessionID, "error", err)
			}
			return
		}
	}
}

// writePump writes queued frames and pings the peer
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
