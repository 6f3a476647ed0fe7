// Command analyze prints quick, human-readable statistics about the board
// presets in a config directory. For each preset it reports the mine density
// and samples seeded boards to estimate how much of the board opens up on its
// own (zero tiles) and how many clicks a perfect game needs (3BV).
//
// Usage: analyze [config-dir] [samples]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/wricardo/mcp-training/minesweeper/game/config"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

const defaultSamples = 100

// Analysis summarizes sampled boards for one preset
type Analysis struct {
	ConfigID     string
	Name         string
	Width        int
	Height       int
	MineCount    int
	Density      float64
	Samples      int
	ZeroFraction float64 // mean share of safe tiles with no adjacent mines
	AvgThreeBV   float64
	MinThreeBV   int
	MaxThreeBV   int
}

// zeroFraction is the share of safe tiles on b with no adjacent mines
func zeroFraction(b *engine.Board) float64 {
	safe, zeros := 0, 0
	for _, t := range b.Tiles() {
		if t.Mine {
			continue
		}
		safe++
		if t.AdjacentMines == 0 {
			zeros++
		}
	}
	if safe == 0 {
		return 0
	}
	return float64(zeros) / float64(safe)
}

// analyzeConfig samples boards for cfg. Seeds are 1..samples so runs are
// repeatable; a preset with its own seed has a fixed layout and is sampled once.
func analyzeConfig(id string, cfg *engine.GameConfig, samples int) (*Analysis, error) {
	if samples <= 0 {
		samples = 1
	}

	seeds := make([]uint64, 0, samples)
	if cfg.Seed != nil {
		seeds = append(seeds, *cfg.Seed)
	} else {
		for i := 1; i <= samples; i++ {
			seeds = append(seeds, uint64(i))
		}
	}

	a := &Analysis{
		ConfigID:  id,
		Name:      cfg.Name,
		Width:     cfg.Width,
		Height:    cfg.Height,
		MineCount: cfg.MineCount,
		Density:   float64(cfg.MineCount) / float64(cfg.Width*cfg.Height),
		Samples:   len(seeds),
	}

	var zeroSum float64
	bvSum := 0
	for i, seed := range seeds {
		board, err := engine.NewBoard(cfg.Width, cfg.Height, cfg.MineCount, engine.NewSeededSource(seed))
		if err != nil {
			return nil, err
		}

		zeroSum += zeroFraction(board)
		bv := engine.ThreeBV(board)
		bvSum += bv
		if i == 0 || bv < a.MinThreeBV {
			a.MinThreeBV = bv
		}
		if bv > a.MaxThreeBV {
			a.MaxThreeBV = bv
		}
	}

	a.ZeroFraction = zeroSum / float64(len(seeds))
	a.AvgThreeBV = float64(bvSum) / float64(len(seeds))
	return a, nil
}

// analyzeDir analyzes every preset the config manager finds in dir
func analyzeDir(dir string, samples int) ([]*Analysis, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		return nil, err
	}

	results := make([]*Analysis, 0, len(infos))
	for _, info := range infos {
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", info.Filename, err)
		}
		a, err := analyzeConfig(info.ConfigID, cfg, samples)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", info.Filename, err)
		}
		results = append(results, a)
	}
	return results, nil
}

func printAnalysis(a *Analysis) {
	fmt.Printf("\n=== Analyzing %s ===\n", a.ConfigID)
	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Board: %d x %d\n", a.Width, a.Height)
	fmt.Printf("Mines: %d (density %.1f%%)\n", a.MineCount, a.Density*100)
	fmt.Printf("Samples: %d\n", a.Samples)
	fmt.Printf("Zero tiles: %.1f%% of safe tiles\n", a.ZeroFraction*100)
	fmt.Printf("3BV: avg %.1f, min %d, max %d\n", a.AvgThreeBV, a.MinThreeBV, a.MaxThreeBV)

	if a.ZeroFraction == 0 && a.MineCount > 0 {
		fmt.Printf("⚠️  WARNING: no openings, every safe tile needs its own click\n")
	}
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	samples := defaultSamples
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			fmt.Printf("Invalid sample count %q\n", os.Args[2])
			os.Exit(1)
		}
		samples = n
	}

	results, err := analyzeDir(dir, samples)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, a := range results {
		printAnalysis(a)
	}
}
