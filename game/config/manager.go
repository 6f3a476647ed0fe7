package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/logger"
)

// DefaultConfigName is the preset used when no default has been set
const DefaultConfigName = "beginner"

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// supported file extensions, in lookup order
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// configID strips a supported extension from name
func configID(name string) string {
	base := filepath.Base(name)
	for _, ext := range extensions {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}

// LoadConfig loads a configuration by name. The name may omit its extension.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	config, err := m.readConfig(id)
	if err != nil {
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// readConfig finds and parses the file for id. Callers hold m.mu.
func (m *Manager) readConfig(id string) (*engine.GameConfig, error) {
	for _, ext := range extensions {
		configPath := filepath.Join(m.configDir, id+ext)
		data, err := os.ReadFile(configPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config, err := engine.ParseGameConfig(data, ext)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, id+ext, err)
		}
		return config, nil
	}
	return nil, ErrConfigNotFound
}

// ListConfigs returns information about all valid configurations, sorted by file name
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasSupportedExt(entry.Name()) {
			continue
		}
		id := configID(entry.Name())
		if seen[id] {
			continue
		}
		seen[id] = true

		config, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid configs
			logger.Debug("skipping config", "file", entry.Name(), "error", err)
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Width:       config.Width,
			Height:      config.Height,
			MineCount:   config.MineCount,
			Density:     float64(config.MineCount) / float64(config.Width*config.Height),
		})
	}

	return configs, nil
}

func hasSupportedExt(name string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached configuration and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// ReloadConfig re-reads a single configuration from disk
func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	delete(m.configs, configID(name))
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

// Count returns the number of cached configurations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// loadDefaultConfig picks beginner, then the first valid preset, then the
// built-in board.
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config = engine.DefaultGameConfig()
		} else if config, err = m.LoadConfig(configs[0].ConfigID); err != nil {
			config = engine.DefaultGameConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates and writes a configuration as JSON
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || id == "." || id == string(filepath.Separator) {
		return fmt.Errorf("%w: config name is required", ErrInvalidConfig)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, id+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	logger.Info("config saved", "config", id, "path", configPath)
	return nil
}
