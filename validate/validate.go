// Command validate checks the board presets in a config directory
// (../configs by default, or the first argument). It checks:
//   - JSON/YAML structure and required fields
//   - Board dimensions and mine count
//   - Mine density, warning on boards that leave little room to play
//   - Duplicate preset ids across extensions
//   - Seeded layouts: the fixed board is generated and its 3BV reported
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"gopkg.in/yaml.v3"
)

const (
	// maxDensity is the mine ratio above which a preset gets a warning
	maxDensity   = 0.5
	// minSafeTiles is the number of safe tiles below which a preset gets a warning
	minSafeTiles = 2
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the preset invalid; Warnings and Info are reported only.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// decodeConfig decodes without validating so every problem can be reported
func decodeConfig(data []byte, ext string) (*engine.GameConfig, error) {
	var config engine.GameConfig
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
	return &config, nil
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := decodeConfig(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}

	for _, dim := range []struct {
		name  string
		value int
	}{{"width", config.Width}, {"height", config.Height}} {
		if dim.value < engine.MinBoardSize || dim.value > engine.MaxBoardSize {
			result.fail("%s must be between %d and %d, got %d",
				dim.name, engine.MinBoardSize, engine.MaxBoardSize, dim.value)
		}
	}

	tiles := config.Width * config.Height
	switch {
	case config.MineCount < 0:
		result.fail("mine_count must not be negative, got %d", config.MineCount)
	case config.MineCount >= tiles && tiles > 0:
		result.fail("mine_count (%d) must be less than the number of tiles (%d)", config.MineCount, tiles)
	}

	// cross-check against the engine rules
	if result.Valid {
		if err := engine.ValidateGameConfig(config); err != nil {
			result.fail("%v", err)
		}
	}

	if !result.Valid {
		return result
	}

	density := float64(config.MineCount) / float64(tiles)
	if density > maxDensity {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Mine density %.0f%% is above %.0f%%", density*100, maxDensity*100))
	}
	if safe := tiles - config.MineCount; safe < minSafeTiles {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Only %d safe tile(s)", safe))
	}
	if config.MineCount == 0 {
		result.Warnings = append(result.Warnings, "No mines: the first reveal wins")
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Board: %dx%d", config.Width, config.Height),
		fmt.Sprintf("✓ Mines: %d (%.1f%%)", config.MineCount, density*100))

	if config.Seed != nil {
		board, err := engine.NewBoard(config.Width, config.Height, config.MineCount, engine.NewSeededSource(*config.Seed))
		if err != nil {
			result.fail("Seeded board could not be built: %v", err)
			return result
		}
		result.Info = append(result.Info,
			fmt.Sprintf("✓ Seed %d: 3BV %d", *config.Seed, engine.ThreeBV(board)))
	}

	return result
}

// presetFiles lists the preset files in dir in name order
func presetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// duplicateIDs reports preset ids provided by more than one file. The config
// manager only loads one of them, so the others are silently shadowed.
func duplicateIDs(files []string) map[string][]string {
	byID := make(map[string][]string)
	for _, f := range files {
		base := filepath.Base(f)
		id := strings.TrimSuffix(base, filepath.Ext(base))
		byID[id] = append(byID[id], base)
	}

	dups := make(map[string][]string)
	for id, names := range byID {
		if len(names) > 1 {
			dups[id] = names
		}
	}
	return dups
}

// validateDir validates every preset in dir, printing a report. It returns
// false if any preset is invalid or shadowed.
func validateDir(dir string) (bool, error) {
	files, err := presetFiles(dir)
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no preset files found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, w := range result.Warnings {
			fmt.Println("  ⚠️  " + w)
		}
	}

	dups := duplicateIDs(files)
	ids := make([]string, 0, len(dups))
	for id := range dups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		allValid = false
		fmt.Printf("\n❌ Preset %q is defined by %s\n", id, strings.Join(dups[id], ", "))
	}

	return allValid, nil
}

// main validates ../configs or the directory given as the first argument,
// exiting with non-zero status if any preset is invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	allValid, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
