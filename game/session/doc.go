// Package session provides session management for the Minesweeper server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Session ID generation
//   - Pluggable persistence (JSON files, SQLite, Redis)
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// SessionPersistence is implemented by FilePersistence, SQLitePersistence and
// RedisPersistence. Every backend stores the same PersistedSessionData record,
// which embeds the board config and the full game state.
//
// Session Identifiers:
//
// Generated IDs are the first 8 characters of a random UUID. Lookups are
// case-insensitive.
//
// Usage:
//
//	persistence, err := session.NewSQLitePersistence("sessions.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", config)
//
// Cleanup:
//
// CleanupExpiredSessions drops idle sessions from memory only; a persisted
// session is loaded again the next time it is requested.
package session
