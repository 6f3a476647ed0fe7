package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/minesweeper/game/service"
)

const sessionFileExt = ".json"

// FilePersistence stores one indented JSON document per session in a
// directory. File names are the lowercased session IDs.
type FilePersistence struct {
	dir string
}

// NewFilePersistence stores sessions under dir, creating it if needed
func NewFilePersistence(dir string) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{dir: dir}, nil
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.dir, strings.ToLower(filepath.Base(id))+sessionFileExt)
}

// Save writes the session to a uniquely named temp file and renames it into
// place, so neither a crash nor a concurrent save leaves a truncated board.
func (fp *FilePersistence) Save(s *service.Session) error {
	record, err := toPersisted(s)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", s.ID, err)
	}

	target := fp.path(s.ID)
	tmp, err := os.CreateTemp(fp.dir, strings.ToLower(filepath.Base(s.ID))+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", s.ID, err)
	}
	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), target)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session %s: %w", s.ID, err)
	}
	return nil
}

// Load reads and restores a session
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	data, err := os.ReadFile(fp.path(id))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrSessionNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var record PersistedSessionData
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return record.restore()
}

// Delete removes the session file
func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrSessionNotFound
	case err != nil:
		return fmt.Errorf("failed to remove session %s: %w", id, err)
	}
	return nil
}

// ListAll returns the stored session IDs in name order. Leftover temp files
// are ignored.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != sessionFileExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, sessionFileExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Exists reports whether a file is stored for id
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.path(id))
	return err == nil
}
