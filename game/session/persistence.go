package session

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. The board config is
// embedded so a session survives its preset being edited or removed.
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Config         *engine.GameConfig `json:"config"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
}

func toPersisted(session *service.Session) (*PersistedSessionData, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	return &PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.ConfigID,
		Config:         session.Config,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
	}, nil
}

// restore rebuilds a live session from its stored form
func (data *PersistedSessionData) restore() (*service.Session, error) {
	if data.Config == nil || data.GameState == nil {
		return nil, fmt.Errorf("session %s: incomplete record", data.ID)
	}

	gameEngine, err := engine.NewEngine(data.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if err := gameEngine.SetState(data.GameState); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		ConfigID:       data.ConfigName,
		Engine:         gameEngine,
		Config:         data.Config,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
