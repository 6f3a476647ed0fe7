package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func readMessage(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data := <-ch:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)
	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)
	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}
	if _, ok := <-client1.send; ok {
		t.Error("Expected send channel of unregistered client to be closed")
	}

	// Unregistering twice must not panic on the closed channel
	hub.unregisterClient(client1)

	hub.unregisterClient(client2)
	if _, exists := hub.sessions[sessionID]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	watcher := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other-session")
	hub.registerClient(watcher)
	hub.registerClient(other)

	state := &engine.GameState{Width: 3, Height: 2, MineCount: 1, State: engine.Playing}
	hub.BroadcastToSession("broadcast-test", state)

	message := readMessage(t, watcher.send)
	if message.SessionID != "broadcast-test" {
		t.Errorf("Expected sessionID broadcast-test, got %s", message.SessionID)
	}
	if message.Event != EventStateUpdate {
		t.Errorf("Expected event '%s', got %s", EventStateUpdate, message.Event)
	}
	if message.GameState == nil || message.GameState.Width != 3 || message.GameState.State != engine.Playing {
		t.Errorf("GameState not correctly transmitted: %+v", message.GameState)
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastTerminalEvents(t *testing.T) {
	tests := []struct {
		name  string
		state engine.State
		event string
	}{
		{"victory", engine.Won, EventVictory},
		{"game over", engine.Dead, EventGameOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go hub.Run(ctx)

			client := newTestClient(hub, "s1")
			hub.registerClient(client)

			hub.BroadcastToSession("s1", &engine.GameState{State: tt.state, Message: "done"})

			if first := readMessage(t, client.send); first.Event != EventStateUpdate {
				t.Errorf("Expected first event '%s', got '%s'", EventStateUpdate, first.Event)
			}
			second := readMessage(t, client.send)
			if second.Event != tt.event {
				t.Errorf("Expected event '%s', got '%s'", tt.event, second.Event)
			}
			if second.Data != "done" {
				t.Errorf("Expected data 'done', got %v", second.Data)
			}
		})
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message received within timeout")
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := newTestClient(hub, "s1")
	hub.register <- client
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if hub.ClientCount("s1") != 0 {
		t.Errorf("Expected clients closed on shutdown, got %d", hub.ClientCount("s1"))
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	initial := &engine.GameState{Width: 9, Height: 9, MineCount: 10, State: engine.Initialized}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), initial)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("Failed to read initial state: %v", err)
	}
	if first.GameState == nil || first.GameState.State != engine.Initialized {
		t.Errorf("Expected initial state frame, got %+v", first)
	}

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 1 })

	hub.BroadcastToSession("ws-test", &engine.GameState{Width: 9, Height: 9, State: engine.Playing, RevealedCount: 12})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var update Message
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	if update.GameState == nil || update.GameState.RevealedCount != 12 {
		t.Errorf("Expected revealed count 12, got %+v", update.GameState)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 0 })
}

func TestWebSocketSessionIDIgnoresCase(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), nil)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ABC"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("abc") == 1 })

	hub.BroadcastToSession("abc", &engine.GameState{Width: 2, Height: 2, State: engine.Playing})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var update Message
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("Expected update for differently cased ID, got %v", err)
	}
	if update.GameState == nil || update.GameState.State != engine.Playing {
		t.Errorf("Expected playing state, got %+v", update.GameState)
	}
}
