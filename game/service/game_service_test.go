package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	seed := uint64(99)
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test": {
				Name:        "Test",
				Description: "Test configuration",
				Width:       6,
				Height:      5,
				MineCount:   5,
				Seed:        &seed,
			},
			"empty": {
				Name:        "Empty",
				Description: "No mines at all",
				Width:       3,
				Height:      3,
				MineCount:   0,
			},
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var configs []*service.ConfigInfo
	for id, config := range m.configs {
		configs = append(configs, &service.ConfigInfo{
			Filename:  id + ".json",
			ConfigID:  id,
			Name:      config.Name,
			Width:     config.Width,
			Height:    config.Height,
			MineCount: config.MineCount,
		})
	}
	return configs, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["test"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	return service.NewGameService(sessions, NewMockConfigManager()), sessions
}

func findTile(t *testing.T, sessions *MockSessionManager, id string, mine bool) engine.Tile {
	t.Helper()
	for _, tile := range sessions.sessions[id].Engine.GetBoard().Tiles() {
		if tile.Mine == mine && !tile.Revealed {
			return tile
		}
	}
	t.Fatalf("No hidden tile with mine=%v", mine)
	return engine.Tile{}
}

func TestGameService_CreateSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("named config", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "test")
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.ConfigName != "test" {
			t.Errorf("Expected config name 'test', got %s", info.ConfigName)
		}
		if info.GameState.State != engine.Initialized {
			t.Errorf("Expected state %s, got %s", engine.Initialized, info.GameState.State)
		}
		if engine.CountMines(info.GameState.Tiles) != 0 {
			t.Error("Expected mines to be hidden from a new session")
		}
	})

	t.Run("default config", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "")
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.ConfigName != "test" {
			t.Errorf("Expected default config id 'test', got %s", info.ConfigName)
		}
	})

	t.Run("unknown config", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "nope")
		if !errors.Is(err, service.ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestGameService_SessionNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("GetSession: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Reveal(ctx, "missing", 0, 0); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Reveal: expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.DeleteSession(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("DeleteSession: expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_StartRevealMark(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "test")

	result, err := svc.Start(ctx, info.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if result.GameState.State != engine.Playing {
		t.Errorf("Expected state %s, got %s", engine.Playing, result.GameState.State)
	}
	if len(result.Events) != 1 || result.Events[0].Type != service.EventStart {
		t.Errorf("Expected a start event, got %+v", result.Events)
	}

	if _, err := svc.Start(ctx, info.ID); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on second start, got %v", err)
	}

	mine := findTile(t, sessions, info.ID, true)
	result, err = svc.Mark(ctx, info.ID, mine.X, mine.Y)
	if err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if result.Events[0].Type != service.EventMark {
		t.Errorf("Expected mark event, got %s", result.Events[0].Type)
	}
	if result.GameState.RemainingMines != 4 {
		t.Errorf("Expected 4 remaining mines, got %d", result.GameState.RemainingMines)
	}

	result, _ = svc.Mark(ctx, info.ID, mine.X, mine.Y)
	if result.Events[0].Type != service.EventUnmark {
		t.Errorf("Expected unmark event, got %s", result.Events[0].Type)
	}

	safe := findTile(t, sessions, info.ID, false)
	result, err = svc.Reveal(ctx, info.ID, safe.X, safe.Y)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if len(result.Revealed) == 0 {
		t.Error("Expected at least one revealed tile")
	}

	if _, err := svc.Reveal(ctx, info.ID, 99, 0); !errors.Is(err, engine.ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestGameService_RevealMine(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "test")
	svc.Start(ctx, info.ID)

	mine := findTile(t, sessions, info.ID, true)
	result, err := svc.Reveal(ctx, info.ID, mine.X, mine.Y)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if result.Events[0].Type != service.EventMine {
		t.Errorf("Expected mine event, got %s", result.Events[0].Type)
	}
	if result.GameState.State != engine.Dead {
		t.Errorf("Expected state %s, got %s", engine.Dead, result.GameState.State)
	}
	if engine.CountMines(result.GameState.Tiles) != 5 {
		t.Error("Expected mines to be visible once the game is lost")
	}

	if _, err := svc.Mark(ctx, info.ID, 0, 0); !errors.Is(err, engine.ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
}

func TestGameService_Victory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "empty")

	result, err := svc.Reveal(ctx, info.ID, 1, 1)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if len(result.Revealed) != 9 {
		t.Errorf("Expected 9 revealed tiles, got %d", len(result.Revealed))
	}
	last := result.Events[len(result.Events)-1]
	if last.Type != service.EventVictory {
		t.Errorf("Expected victory event, got %s", last.Type)
	}
}

func TestGameService_BulkActions(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	t.Run("stops on error", func(t *testing.T) {
		info, _ := svc.CreateSession(ctx, "test")
		safe := findTile(t, sessions, info.ID, false)

		result, err := svc.BulkActions(ctx, info.ID, []service.BulkAction{
			{Action: "start"},
			{Action: "mark", X: safe.X, Y: safe.Y},
			{Action: "jump", X: 0, Y: 0},
			{Action: "reveal", X: 0, Y: 0},
		}, false)
		if err != nil {
			t.Fatalf("BulkActions failed: %v", err)
		}
		if result.ActionsExecuted != 2 {
			t.Errorf("Expected 2 executed actions, got %d", result.ActionsExecuted)
		}
		if result.Success || result.StopReasonCode != service.StopError || result.StoppedOnAction != 3 {
			t.Errorf("Expected stop on action 3 with error, got %+v", result)
		}
		if len(result.Steps) != 3 || result.Steps[2].Error == "" {
			t.Errorf("Expected failing step to carry the error, got %+v", result.Steps)
		}
	})

	t.Run("stops at game over", func(t *testing.T) {
		info, _ := svc.CreateSession(ctx, "test")
		mine := findTile(t, sessions, info.ID, true)

		result, err := svc.BulkActions(ctx, info.ID, []service.BulkAction{
			{Action: "reveal", X: mine.X, Y: mine.Y},
			{Action: "mark", X: 0, Y: 0},
		}, false)
		if err != nil {
			t.Fatalf("BulkActions failed: %v", err)
		}
		if result.ActionsExecuted != 1 {
			t.Errorf("Expected 1 executed action, got %d", result.ActionsExecuted)
		}
		if result.StopReasonCode != service.StopGameOver || result.StoppedOnAction != 2 {
			t.Errorf("Expected game_over stop on action 2, got %s/%d", result.StopReasonCode, result.StoppedOnAction)
		}
	})

	t.Run("victory", func(t *testing.T) {
		info, _ := svc.CreateSession(ctx, "empty")
		result, _ := svc.BulkActions(ctx, info.ID, []service.BulkAction{{Action: "reveal", X: 0, Y: 0}}, false)
		if result.StopReasonCode != service.StopVictory {
			t.Errorf("Expected victory, got %s", result.StopReasonCode)
		}
		if result.RevealedTotal != 9 {
			t.Errorf("Expected 9 revealed, got %d", result.RevealedTotal)
		}
	})

	t.Run("truncates and resets", func(t *testing.T) {
		info, _ := svc.CreateSession(ctx, "test")
		svc.Start(ctx, info.ID)

		actions := make([]service.BulkAction, engine.MaxBulkActions+10)
		for i := range actions {
			actions[i] = service.BulkAction{Action: "mark", X: 0, Y: 0}
		}
		result, err := svc.BulkActions(ctx, info.ID, actions, true)
		if err != nil {
			t.Fatalf("BulkActions failed: %v", err)
		}
		if !result.Truncated || result.Limit != engine.MaxBulkActions {
			t.Errorf("Expected truncation to %d, got %+v", engine.MaxBulkActions, result.Limit)
		}
		if result.ActionsExecuted != engine.MaxBulkActions {
			t.Errorf("Expected %d actions, got %d", engine.MaxBulkActions, result.ActionsExecuted)
		}
		if result.Events[0].Type != service.EventReset {
			t.Errorf("Expected first event to be reset, got %s", result.Events[0].Type)
		}
		if result.GameState.State != engine.Initialized {
			t.Errorf("Expected reset board to be %s, got %s", engine.Initialized, result.GameState.State)
		}
	})
}

func TestGameService_GetMoveHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "test")
	svc.Start(ctx, info.ID)
	for i := 0; i < 5; i++ {
		svc.Mark(ctx, info.ID, i, 0)
	}

	history, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{})
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if history.TotalMoves != 6 || len(history.Moves) != 6 {
		t.Errorf("Expected 6 moves, got %d/%d", history.TotalMoves, len(history.Moves))
	}
	if history.Moves[0].MoveNumber != 6 {
		t.Errorf("Expected newest move first, got move %d", history.Moves[0].MoveNumber)
	}
	if history.PageSize != 20 {
		t.Errorf("Expected default page size 20, got %d", history.PageSize)
	}

	history, _ = svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 2, Limit: 4, Order: "asc"})
	if len(history.Moves) != 2 || history.Moves[0].MoveNumber != 5 {
		t.Errorf("Expected moves 5 and 6 on page 2, got %+v", history.Moves)
	}
	if history.HasNext || !history.HasPrevious || history.TotalPages != 2 {
		t.Errorf("Unexpected pagination flags: %+v", history)
	}

	history, _ = svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 2, Limit: 4})
	if len(history.Moves) != 2 || history.Moves[0].MoveNumber != 2 || history.Moves[1].MoveNumber != 1 {
		t.Errorf("Expected moves 2 and 1 on the second desc page, got %+v", history.Moves)
	}

	history, _ = svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Limit: 500})
	if history.PageSize != 100 {
		t.Errorf("Expected page size capped at 100, got %d", history.PageSize)
	}
}

func TestGameService_ListSessions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.CreateSession(ctx, "test")
	svc.CreateSession(ctx, "empty")

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(sessions))
	}
}

func TestGameService_Reset(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "test")
	svc.Start(ctx, info.ID)
	svc.Mark(ctx, info.ID, 0, 0)

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.State != engine.Initialized || state.MarkedCount != 0 {
		t.Errorf("Expected a fresh board, got %s with %d marks", state.State, state.MarkedCount)
	}
	if state.TotalMoves != 2 {
		t.Errorf("Expected cumulative history to survive reset, got %d", state.TotalMoves)
	}
	if sessions.saves == 0 {
		t.Error("Expected the session to be persisted")
	}
}

func TestGameService_DeleteSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "test")

	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected deleted session to be gone, got %v", err)
	}
}

func TestGameService_Configs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	configs, err := svc.ListConfigs(ctx)
	if err != nil || len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d (%v)", len(configs), err)
	}

	custom := &engine.GameConfig{Name: "Custom", Description: "custom", Width: 4, Height: 4, MineCount: 3}
	if err := svc.SaveConfig(ctx, "custom", custom); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := svc.LoadConfig(ctx, "custom")
	if err != nil || loaded.MineCount != 3 {
		t.Errorf("Expected saved config to load, got %+v (%v)", loaded, err)
	}

	bad := &engine.GameConfig{Name: "Bad", Description: "bad", Width: 2, Height: 2, MineCount: 4}
	if err := svc.SaveConfig(ctx, "bad", bad); !errors.Is(err, engine.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
}
