package engine

// Redacted returns a copy safe to send to players. While the game is still
// running, unrevealed tiles hide whether they are mines and their counts.
func (s *GameState) Redacted() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Tiles = make([]Tile, len(s.Tiles))
	copy(out.Tiles, s.Tiles)
	if s.State.IsTerminal() {
		return &out
	}
	for i := range out.Tiles {
		if !out.Tiles[i].Revealed {
			out.Tiles[i].Mine = false
			out.Tiles[i].AdjacentMines = 0
		}
	}
	return &out
}

// TileAt returns the tile at (x, y) and whether it exists
func (s *GameState) TileAt(x, y int) (Tile, bool) {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height || len(s.Tiles) != s.Width*s.Height {
		return Tile{}, false
	}
	return s.Tiles[y*s.Width+x], true
}
