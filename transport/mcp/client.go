package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Minesweeper",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Minesweeper - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Reveal every tile that is not a mine. Revealing a mine ends the game.

AVAILABLE TOOLS:
- create_session: Create a new game session from a preset
- list_sessions / get_session: Inspect sessions
- game_state: Current board (hidden tiles shown as #)
- start_game: Move a fresh board into play
- reveal: Reveal the tile at (x, y)
- mark: Toggle a flag on the tile at (x, y)
- bulk_actions: Several start/reveal/mark commands in one call
- reset_game: Fresh board from the same preset
- move_history: Past commands
- list_configs: Available presets
- game_instructions: Full rules
- describe_tile: Details about a single tile

NOTE: The 'intent' parameter on reveal/mark/bulk_actions is a place to explain your reasoning.`),
	)

	c.registerTools()
}

// sessionArg and the coordinate args are shared by most tools
func sessionArg() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

func coordinateArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Column, 0-based from the left")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Row, 0-based from the top")),
	}
}

func tool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)...)
}

func (c *Client) registerTools() {
	intent := func(text string) mcp.ToolOption {
		return mcp.WithString("intent", mcp.Description(text))
	}
	tileTool := func(name, description string) mcp.Tool {
		opts := append([]mcp.ToolOption{sessionArg()}, coordinateArgs()...)
		return tool(name, description, append(opts, intent("Brief explanation of why this tile was chosen"))...)
	}

	c.mcpServer.AddTools(
		server.ServerTool{Tool: tool("create_session", "Create a new game session with optional config selection",
			mcp.WithString("config_id", mcp.Description("Preset to use, e.g. beginner, intermediate, expert (optional)"))),
			Handler: c.handleCreateSession},
		server.ServerTool{Tool: tool("list_sessions", "List all active game sessions"), Handler: c.handleListSessions},
		server.ServerTool{Tool: tool("get_session", "Get details of a specific session", sessionArg()), Handler: c.handleGetSession},

		server.ServerTool{Tool: tool("game_state", "Get the current board and counters", sessionArg()), Handler: c.handleGameState},
		server.ServerTool{Tool: tool("start_game", "Start a freshly created or reset game", sessionArg()), Handler: c.handleStart},
		server.ServerTool{Tool: tileTool("reveal", "Reveal the tile at (x, y). Zero tiles open their neighbourhood; "+
			"a numbered tile whose neighbouring marks match its number reveals its unmarked neighbours."), Handler: c.handleReveal},
		server.ServerTool{Tool: tileTool("mark", "Toggle the mine mark on the hidden tile at (x, y)"), Handler: c.handleMark},
		server.ServerTool{Tool: tool("bulk_actions",
			fmt.Sprintf("Execute up to %d commands in order, stopping at the first failure or when the game ends", engine.MaxBulkActions),
			sessionArg(),
			mcp.WithArray("actions", mcp.Required(), mcp.Description("Commands to run"), mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action": map[string]any{"type": "string", "enum": []string{engine.ActionStart, engine.ActionReveal, engine.ActionMark}},
					"x":      map[string]any{"type": "integer"},
					"y":      map[string]any{"type": "integer"},
				},
				"required": []string{"action"},
			})),
			intent("Brief explanation of the plan behind this sequence"),
			mcp.WithBoolean("reset", mcp.Description("Reset before running the commands"))),
			Handler: c.handleBulkActions},
		server.ServerTool{Tool: tool("reset_game", "Replace the board with a fresh one from the same preset", sessionArg()), Handler: c.handleReset},
		server.ServerTool{Tool: tool("move_history", "Get command history for a session",
			sessionArg(),
			mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
			mcp.WithNumber("limit", mcp.Description("Entries per page"))),
			Handler: c.handleMoveHistory},

		server.ServerTool{Tool: tool("list_configs", "List available game presets"), Handler: c.handleListConfigs},
		server.ServerTool{Tool: tool("game_instructions", "Get the rules and a legend for the board rendering"), Handler: c.handleGameInstructions},
		server.ServerTool{Tool: tool("describe_tile", "Get detailed information about a single tile: whether it is revealed or marked, "+
			"its count, and its hidden and marked neighbours.", append([]mcp.ToolOption{sessionArg()}, coordinateArgs()...)...),
			Handler: c.handleDescribeTile},
	)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// intArg reads a JSON number argument
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func sessionPath(args map[string]any, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

func coordinates(args map[string]any) (int, int, error) {
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return 0, 0, fmt.Errorf("x and y are required integers")
	}
	return x, y, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		state := "unknown"
		if s.GameState != nil {
			state = string(s.GameState.State)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, State: %s, Created: %s)\n",
			s.ID, s.ConfigName, state, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleReveal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.tileAction(ctx, request, "/reveal")
}

func (c *Client) handleMark(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.tileAction(ctx, request, "/mark")
}

func (c *Client) tileAction(ctx context.Context, request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, suffix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, y, err := coordinates(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", path, map[string]int{"x": x, "y": y}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleBulkActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/bulk")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reset, _ := args["reset"].(bool)
	rawActions, _ := args["actions"].([]any)

	actions := make([]service.BulkAction, 0, len(rawActions))
	for i, raw := range rawActions {
		entry, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("action %d must be an object", i+1)), nil
		}
		name, _ := entry["action"].(string)
		x, _ := intArg(entry, "x")
		y, _ := intArg(entry, "y")
		actions = append(actions, service.BulkAction{Action: name, X: x, Y: y})
	}

	body := map[string]any{
		"actions": actions,
		"reset":   reset,
	}

	var result service.BulkActionResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %dx%d, Mines: %d (%.1f%%)\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Width, config.Height, config.MineCount, config.Density*100)
	}
	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `Minesweeper - Complete Instructions

GAME OBJECTIVE:
Reveal every tile that does not hold a mine. The game is won the moment the
last safe tile is revealed. Revealing a mine loses immediately.

LIFECYCLE:
• A new or reset board is "initialized"; start_game moves it to "playing"
• Reveal is accepted while initialized or playing
• After "won" or "dead" only reset_game changes the board

BOARD LEGEND:
• # - hidden tile
• F - hidden tile you marked as a mine
• . - revealed tile with no neighbouring mines
• 1-8 - revealed tile with that many mines among its 8 neighbours
• * - mine (only shown once the game is over)
Rows are labelled on the left, columns on top (last digit of the index).

REVEAL RULES:
• Revealing a zero tile opens every neighbour, and keeps going through
  neighbouring zero tiles
• Revealing an already revealed number whose neighbouring marks equal its
  number reveals all of its other neighbours (a chord). A wrong mark there
  can still lose the game, so mark carefully
• Marks are only a note for you; a marked tile can still be revealed

STRATEGY:
• Start in a corner or the middle; large zero regions are common
• A number equal to its hidden neighbour count means all of them are mines
• A number already satisfied by its marks means its other hidden
  neighbours are safe; reveal the number to chord them
• Use describe_tile to check counts and neighbours before guessing

API USAGE:
• Coordinates are 0-based: x is the column, y the row
• bulk_actions runs several commands and stops at the first error or when
  the game ends
• move_history lists every command, including rejected ones`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, y, err := coordinates(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := describeTile(&state, x, y)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}
