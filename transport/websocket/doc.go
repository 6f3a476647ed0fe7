// Package websocket pushes live game updates to browser clients.
//
// A Hub keeps a registry of clients per session. Clients connect with
// /ws?session=<id>, receive the current state as their first frame and then
// a state_update frame after every command applied to that session. When a
// game ends the update is followed by a victory or game_over event.
//
// Frames are JSON:
//
//	{"session_id": "ab12cd34", "event": "state_update", "game_state": {...}}
//
// Incoming frames are read only to service ping/pong; the hub is push-only.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.BroadcastToSession(id, state)
package websocket
