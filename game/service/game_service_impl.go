package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/logger"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(sess *Session) string {
	if sess.ConfigID != "" {
		return sess.ConfigID
	}
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == sess.Config.Name {
				return cfg.ConfigID
			}
		}
	}
	if sess.Config.Name == "" {
		return "default"
	}
	return sess.Config.Name
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Redacted(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, configIDs, ErrConfigNotFound)
				}
				return nil, fmt.Errorf("config '%s' not found, use /api/configs to list available configurations: %w", configName, ErrConfigNotFound)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configName
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(sess)
	}
	s.persist(sess.ID)

	logger.Info("session created", "session_id", sess.ID, "config", sess.ConfigID,
		"width", config.Width, "height", config.Height, "mines", config.MineCount)
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	// touching the access time writes the session
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	logger.Info("session deleted", "session_id", sessionID)
	return nil
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return sess, nil
}

// persist saves the session; failures are logged, not returned
func (s *gameServiceImpl) persist(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Warn("failed to persist session", "session_id", sessionID, "error", err)
	}
}

// Start moves a session's board into play
func (s *gameServiceImpl) Start(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.runAction(sessionID, engine.ActionStart, 0, 0)
}

// Reveal uncovers a tile
func (s *gameServiceImpl) Reveal(ctx context.Context, sessionID string, x, y int) (*ActionResult, error) {
	return s.runAction(sessionID, engine.ActionReveal, x, y)
}

// Mark toggles the mark on a tile
func (s *gameServiceImpl) Mark(ctx context.Context, sessionID string, x, y int) (*ActionResult, error) {
	return s.runAction(sessionID, engine.ActionMark, x, y)
}

func (s *gameServiceImpl) runAction(sessionID, action string, x, y int) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result, err := applyAction(sess.Engine, action, x, y)
	// failed commands are still recorded in the history
	s.persist(sessionID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyAction runs one command against an engine and describes its effect
func applyAction(eng *engine.GameEngine, action string, x, y int) (*ActionResult, error) {
	now := time.Now()
	pos := engine.Position{X: x, Y: y}
	var events []GameEvent
	var revealed []engine.Position

	switch strings.ToLower(action) {
	case engine.ActionStart:
		if err := eng.Start(); err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		events = append(events, GameEvent{Type: EventStart, Message: "Game started", Timestamp: now})

	case engine.ActionReveal:
		res, err := eng.Reveal(x, y)
		if err != nil {
			return nil, fmt.Errorf("reveal (%d, %d): %w", x, y, err)
		}
		revealed = res.Revealed
		events = append(events, revealEvents(eng, res, pos, now)...)

	case engine.ActionMark:
		changed, err := eng.Mark(x, y)
		if err != nil {
			return nil, fmt.Errorf("mark (%d, %d): %w", x, y, err)
		}
		tile, _ := eng.GetBoard().TileAt(x, y)
		switch {
		case !changed:
			events = append(events, GameEvent{Type: EventNoop, Message: "Tile already revealed", Timestamp: now, Position: pos})
		case tile.Marked:
			events = append(events, GameEvent{Type: EventMark, Message: fmt.Sprintf("Marked (%d, %d)", x, y), Timestamp: now, Position: pos})
		default:
			events = append(events, GameEvent{Type: EventUnmark, Message: fmt.Sprintf("Unmarked (%d, %d)", x, y), Timestamp: now, Position: pos})
		}

	default:
		return nil, fmt.Errorf("%w: %q (expected start, reveal or mark)", ErrInvalidAction, action)
	}

	state := eng.GetState()
	return &ActionResult{
		Success:   true,
		GameState: state.Redacted(),
		Message:   state.Message,
		Events:    events,
		Revealed:  revealed,
	}, nil
}

func revealEvents(eng *engine.GameEngine, res *engine.RevealResult, pos engine.Position, now time.Time) []GameEvent {
	if res.HitMine {
		return []GameEvent{{Type: EventMine, Message: fmt.Sprintf("Mine hit at (%d, %d)", pos.X, pos.Y), Timestamp: now, Position: pos}}
	}

	var events []GameEvent
	tile, _ := eng.GetBoard().TileAt(pos.X, pos.Y)
	switch {
	case res.Expanded && tile.AdjacentMines > 0:
		events = append(events, GameEvent{Type: EventChord, Message: fmt.Sprintf("Chord revealed %d tile(s)", len(res.Revealed)), Timestamp: now, Position: pos})
	case len(res.Revealed) == 0:
		events = append(events, GameEvent{Type: EventNoop, Message: "Nothing new to reveal", Timestamp: now, Position: pos})
	default:
		events = append(events, GameEvent{Type: EventReveal, Message: fmt.Sprintf("Revealed %d tile(s)", len(res.Revealed)), Timestamp: now, Position: pos})
	}
	if res.State == engine.Won {
		events = append(events, GameEvent{Type: EventVictory, Message: "All safe tiles revealed", Timestamp: now})
	}
	return events
}

// BulkActions executes several commands in order, stopping at the first
// failure or when the game ends.
func (s *gameServiceImpl) BulkActions(ctx context.Context, sessionID string, actions []BulkAction, reset bool) (*BulkActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkActionResult{
		RequestedActions: len(actions),
		Events:           make([]GameEvent, 0),
		Success:          true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, GameEvent{
			Type:      EventReset,
			Message:   "Game reset to a fresh board",
			Timestamp: time.Now(),
		})
	}

	// Limit actions to prevent abuse
	if len(actions) > engine.MaxBulkActions {
		result.Truncated = true
		result.Limit = engine.MaxBulkActions
		actions = actions[:engine.MaxBulkActions]
	}

	for i, a := range actions {
		if ctx.Err() != nil {
			result.Success = false
			result.StopReasonCode = StopError
			result.StoppedReason = ctx.Err().Error()
			result.StoppedOnAction = i + 1
			break
		}
		if sess.Engine.IsGameOver() {
			result.StopReasonCode = StopGameOver
			result.StoppedReason = "game is over"
			result.StoppedOnAction = i + 1
			break
		}

		step := StepInfo{Idx: i + 1, Action: strings.ToLower(a.Action), X: a.X, Y: a.Y}
		res, err := applyAction(sess.Engine, a.Action, a.X, a.Y)
		step.State = sess.Engine.GetBoard().State()
		if err != nil {
			step.Error = err.Error()
			result.Steps = append(result.Steps, step)
			result.Success = false
			result.StopReasonCode = StopError
			result.StoppedReason = fmt.Sprintf("action %d failed: %v", i+1, err)
			result.StoppedOnAction = i + 1
			break
		}

		step.Success = true
		step.Revealed = len(res.Revealed)
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, res.Events...)
		result.RevealedTotal += len(res.Revealed)
		result.ActionsExecuted++
	}

	state := sess.Engine.GetState()
	if result.StopReasonCode == "" {
		switch state.State {
		case engine.Won:
			result.StopReasonCode = StopVictory
		case engine.Dead:
			result.StopReasonCode = StopGameOver
		}
	}
	result.GameState = state.Redacted()
	result.Message = state.Message

	s.persist(sessionID)
	return result, nil
}

// Reset replaces the session's board with a fresh one
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()
	s.persist(sessionID)

	return state.Redacted(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	// touching the access time writes the session
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Redacted(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return paginateHistory(sess.Engine.GetMoveHistory(), opts), nil
}

func paginateHistory(history []engine.MoveHistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
