package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/logger"
)

// sessionIDLength is the number of UUID characters kept for an ID
const sessionIDLength = 8

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager keeps the live boards in memory, keyed by lowercased ID. With a
// persistence layer every change is written through and sessions missing
// from memory are loaded on demand.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates a memory-only session manager
func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence creates a session manager backed by persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

func key(id string) string {
	return strings.ToLower(id)
}

// persist writes s through to the store, logging instead of failing
func (m *Manager) persist(s *service.Session, reason string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(s); err != nil {
		logger.Warn("failed to persist session", "session_id", s.ID, "reason", reason, "error", err)
	}
}

// Create builds a board from config under id, or under a fresh ID when id is
// empty. IDs are unique regardless of case.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case id == "":
		id = m.generateSessionID()
	case !validSessionID(id):
		return nil, ErrInvalidSessionID
	case m.sessions[key(id)] != nil:
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	s := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = s
	m.persist(s, "create")

	return s, nil
}

// Get returns the session for id, loading it from the store if it was
// evicted from memory.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	s := m.sessions[key(id)]
	m.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	if m.persistence == nil || !validSessionID(id) || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another caller may have loaded it meanwhile
	if existing := m.sessions[key(id)]; existing != nil {
		return existing, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

// GetOrCreate returns the session for id, creating it from config if unknown
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	s, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return s, err
}

// List returns the sessions held in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}

// Delete removes a session from memory and from the store. It fails with
// ErrSessionNotFound only when neither holds it.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))
	m.mu.Unlock()

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a session without touching the store
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed refreshes the session's access time, which keeps it
// clear of CleanupExpiredSessions.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	s := m.sessions[key(id)]
	if s != nil {
		s.LastAccessedAt = time.Now()
	}
	m.mu.Unlock()

	if s == nil {
		return ErrSessionNotFound
	}
	m.persist(s, "access")
	return nil
}

// Save writes the current board of one session to the store
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	s := m.sessions[key(id)]
	m.mu.RUnlock()

	if s == nil {
		return ErrSessionNotFound
	}
	return m.persistence.Save(s)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge.
// Persisted copies are kept and reload on demand.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for k, s := range m.sessions {
		if s.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			removed++
		}
	}

	if removed > 0 {
		logger.Info("expired sessions removed", "count", removed, "max_age", maxAge.String())
	}
	return removed
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns an unused 8-character ID cut from a random UUID.
// Callers must hold m.mu.
func (m *Manager) generateSessionID() string {
	for {
		id := uuid.New().String()[:sessionIDLength]
		if _, taken := m.sessions[key(id)]; !taken {
			return id
		}
	}
}

// validSessionID accepts short IDs safe to use as file names and keys
func validSessionID(id string) bool {
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// LoadPersistedSessions pulls every stored session not already in memory.
// Sessions that fail to load are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if _, ok := m.sessions[key(id)]; ok {
			continue
		}

		s, err := m.persistence.Load(id)
		if err != nil {
			logger.Warn("failed to load persisted session", "session_id", id, "error", err)
			continue
		}
		m.sessions[key(id)] = s
		loaded++
	}

	if loaded > 0 {
		logger.Info("loaded persisted sessions", "count", loaded)
	}
	return nil
}

// SaveAllSessions writes every in-memory session to the store, returning
// the joined errors of the sessions that failed.
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	var errs []error
	for _, s := range m.List() {
		if err := m.persistence.Save(s); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", s.ID, err))
		}
	}
	return errors.Join(errs...)
}
