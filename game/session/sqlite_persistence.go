package session

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wricardo/mcp-training/minesweeper/game/service"
)

//go:embed schema/sessions.sql
var ddl string

// SQLitePersistence implements SessionPersistence on a SQLite database
type SQLitePersistence struct {
	DB *sql.DB
}

// InitializeTables creates the sessions table if it does not exist
func InitializeTables(db *sql.DB) error {
	_, err := db.Exec(ddl)
	return err
}

// NewSQLitePersistence opens (or creates) the database at path
func NewSQLitePersistence(path string) (*SQLitePersistence, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path not set")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Need to ping the database to check if the file could be opened
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if err := InitializeTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLitePersistence{DB: db}, nil
}

// Close closes the database
func (sp *SQLitePersistence) Close() error {
	return sp.DB.Close()
}

// Save upserts a session row
func (sp *SQLitePersistence) Save(session *service.Session) error {
	data, err := toPersisted(session)
	if err != nil {
		return err
	}
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	_, err = sp.DB.Exec(`
		INSERT INTO sessions (id, config_name, state, created_at, last_accessed_at, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_name = excluded.config_name,
			state = excluded.state,
			last_accessed_at = excluded.last_accessed_at,
			data = excluded.data`,
		strings.ToLower(data.ID), data.ConfigName, string(data.GameState.State),
		data.CreatedAt.UTC(), data.LastAccessedAt.UTC(), string(blob))
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", data.ID, err)
	}
	return nil
}

// Load reads a session row
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	var blob string
	err := sp.DB.QueryRow(`SELECT data FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return data.restore()
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.DB.Exec(`DELETE FROM sessions WHERE id = ?`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns every stored session ID, most recently used first
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.DB.Query(`SELECT id FROM sessions ORDER BY last_accessed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.DB.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&one)
	return err == nil
}
