// Package service provides the business logic layer for the Minesweeper server.
//
// The service package implements:
//   - Multi-session game management
//   - Command processing (start, reveal, mark, bulk actions)
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board presets.
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the game engine. Boards are not safe for concurrent use, so the service
// serializes every command and persists the session afterwards.
//
// States returned to callers are redacted: hidden tiles do not expose mines
// or counts until the game has ended.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "beginner")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.Start(ctx, info.ID)
//	result, err := gameService.Reveal(ctx, info.ID, 4, 4)
package service
