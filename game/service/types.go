package service

import (
	"time"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

// Event types reported in ActionResult.Events
const (
	EventStart   = "start"
	EventReveal  = "reveal"
	EventMark    = "mark"
	EventUnmark  = "unmark"
	EventChord   = "chord"
	EventMine    = "mine"
	EventVictory = "victory"
	EventReset   = "reset"
	EventNoop    = "noop"
)

// Stop reason codes for bulk actions
const (
	StopGameOver = "game_over"
	StopVictory  = "victory"
	StopError    = "error"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ActionResult contains the result of a single command
type ActionResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Revealed  []engine.Position `json:"revealed,omitempty"`
}

// BulkAction is one entry of a bulk request
type BulkAction struct {
	Action string `json:"action"` // "start", "reveal" or "mark"
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// BulkActionResult contains the result of a sequence of commands
type BulkActionResult struct {
	ActionsExecuted  int               `json:"actions_executed"`
	RequestedActions int               `json:"requested_actions"`
	Success          bool              `json:"success"`
	GameState        *engine.GameState `json:"game_state"`
	Events           []GameEvent       `json:"events"`
	StoppedReason    string            `json:"stopped_reason,omitempty"`
	StopReasonCode   string            `json:"stop_reason_code,omitempty"` // game_over|victory|error
	StoppedOnAction  int               `json:"stopped_on_action,omitempty"`
	Truncated        bool              `json:"truncated,omitempty"`
	Limit            int               `json:"limit,omitempty"`
	RevealedTotal    int               `json:"revealed_total"`
	Steps            []StepInfo        `json:"steps,omitempty"`
	Message          string            `json:"message,omitempty"`
}

// StepInfo is a compact record for each executed command in a bulk call
type StepInfo struct {
	Idx      int          `json:"idx"`
	Action   string       `json:"action"`
	X        int          `json:"x"`
	Y        int          `json:"y"`
	Success  bool         `json:"success"`
	Revealed int          `json:"revealed,omitempty"`
	State    engine.State `json:"state"`
	Error    string       `json:"error,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string  `json:"filename"`
	ConfigID    string  `json:"config_id"` // The identifier to use for session creation
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	MineCount   int     `json:"mine_count"`
	Density     float64 `json:"density"`
}
