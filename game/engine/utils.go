package engine

import "strings"

// CountMines counts the mine tiles in a tile slice
func CountMines(tiles []Tile) int {
	count := 0
	for _, t := range tiles {
		if t.Mine {
			count++
		}
	}
	return count
}

// TileChar returns the single character used to draw a tile.
// Hidden tiles are '#', marked tiles 'F', mines '*', zero tiles '.'.
func TileChar(t Tile, revealAll bool) byte {
	switch {
	case t.Revealed || revealAll:
		if t.Mine {
			return '*'
		}
		if t.AdjacentMines == 0 {
			return '.'
		}
		return byte('0' + t.AdjacentMines)
	case t.Marked:
		return 'F'
	default:
		return '#'
	}
}

// RenderBoard draws the state as text rows with column and row indexes
func RenderBoard(state *GameState, revealAll bool) string {
	if state == nil || state.Width == 0 || len(state.Tiles) != state.Width*state.Height {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("   ")
	for x := 0; x < state.Width; x++ {
		sb.WriteByte(byte('0' + x%10))
	}
	sb.WriteByte('\n')
	for y := 0; y < state.Height; y++ {
		sb.WriteByte(byte('0' + (y/10)%10))
		sb.WriteByte(byte('0' + y%10))
		sb.WriteByte(' ')
		for x := 0; x < state.Width; x++ {
			sb.WriteByte(TileChar(state.Tiles[y*state.Width+x], revealAll))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ThreeBV returns the minimum number of reveals needed to clear the board
// without marking: one per connected zero region plus one per numbered tile
// that does not border a zero tile.
func ThreeBV(b *Board) int {
	seen := make([]bool, len(b.tiles))
	clicks := 0

	for i := range b.tiles {
		if seen[i] || b.tiles[i].Mine || b.tiles[i].AdjacentMines != 0 {
			continue
		}
		clicks++
		seen[i] = true
		stack := []int{i}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, n := range b.neighborIndexes(cur) {
				if seen[n] || b.tiles[n].Mine {
					continue
				}
				seen[n] = true
				if b.tiles[n].AdjacentMines == 0 {
					stack = append(stack, n)
				}
			}
		}
	}

	for i := range b.tiles {
		if !seen[i] && !b.tiles[i].Mine {
			clicks++
		}
	}
	return clicks
}
