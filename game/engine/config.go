package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateGameConfig validates a board preset. Board-shape failures wrap
// ErrInvalidConfiguration so callers can match them with errors.Is.
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: %w", ErrInvalidConfiguration)
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.Width < MinBoardSize || config.Width > MaxBoardSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d: %w",
			MinBoardSize, MaxBoardSize, config.Width, ErrInvalidConfiguration)
	}
	if config.Height < MinBoardSize || config.Height > MaxBoardSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d: %w",
			MinBoardSize, MaxBoardSize, config.Height, ErrInvalidConfiguration)
	}
	if config.MineCount < 0 || config.MineCount >= config.Width*config.Height {
		return fmt.Errorf("config validation: %w",
			&InvalidConfigError{Width: config.Width, Height: config.Height, MineCount: config.MineCount})
	}

	return nil
}

// ParseGameConfig decodes a preset. format is "json" or "yaml"/"yml".
func ParseGameConfig(data []byte, format string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a preset from a .json, .yaml or .yml file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(data, filepath.Ext(configPath))
}

// DefaultGameConfig returns the beginner preset used when no config directory is available
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "beginner",
		Description: "Beginner 9x9 board with 10 mines",
		Width:       9,
		Height:      9,
		MineCount:   10,
	}
}
