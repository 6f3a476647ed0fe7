// Package mcp exposes the game to Model Context Protocol clients.
//
// Client is a thin proxy: every tool call is translated into a request
// against the REST API (package api) and the JSON reply is rendered as text
// for the model. The board is drawn with engine.RenderBoard, so hidden tiles
// appear as '#', marks as 'F' and revealed tiles as '.' or their count.
//
// Tools: create_session, list_sessions, get_session, game_state,
// start_game, reveal, mark, bulk_actions, reset_game, move_history,
// list_configs, game_instructions, describe_tile.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
