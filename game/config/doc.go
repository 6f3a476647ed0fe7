// Package config provides board preset management for the Minesweeper server.
//
// The config package handles:
//   - Loading presets from JSON or YAML files
//   - Validation through engine.ValidateGameConfig
//   - Default preset selection
//   - Preset discovery and listing
//
// Configuration Format:
//
// A preset names a board size and mine count, and may pin a seed so every
// game created from it has the same layout:
//
//	{
//	  "name": "Beginner",
//	  "description": "9x9 board with 10 mines",
//	  "width": 9,
//	  "height": 9,
//	  "mine_count": 10
//	}
//
// The same fields are accepted in .yaml and .yml files.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("expert")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
