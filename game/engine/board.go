package engine

// Board owns the tile grid and the game lifecycle state
type Board struct {
	width     int
	height    int
	mineCount int
	tiles     []Tile
	state     State
}

// NewBoard validates the parameters, places mines using rng and computes
// adjacency counts. The returned board is in the Initialized state.
// A nil rng uses DefaultSource.
func NewBoard(width, height, mineCount int, rng RandomSource) (*Board, error) {
	if width <= 0 || height <= 0 || mineCount < 0 || mineCount >= width*height {
		return nil, &InvalidConfigError{Width: width, Height: height, MineCount: mineCount}
	}
	if rng == nil {
		rng = DefaultSource
	}

	b := &Board{
		width:     width,
		height:    height,
		mineCount: mineCount,
		state:     Created,
	}
	b.initialize(rng)
	return b, nil
}

// initialize allocates tiles, places mines by rejection sampling and
// precomputes every tile's adjacent mine count.
func (b *Board) initialize(rng RandomSource) {
	count := b.TileCount()
	b.tiles = make([]Tile, count)
	for i := range b.tiles {
		b.tiles[i] = Tile{X: i % b.width, Y: i / b.width, Index: i}
	}

	placed := 0
	for placed < b.mineCount {
		idx := rng.IntN(count)
		if !b.tiles[idx].Mine {
			b.tiles[idx].Mine = true
			placed++
		}
	}

	b.computeAdjacency()
	b.state = Initialized
}

func (b *Board) computeAdjacency() {
	for i := range b.tiles {
		mines := 0
		for _, n := range b.neighborIndexes(i) {
			if b.tiles[n].Mine {
				mines++
			}
		}
		b.tiles[i].AdjacentMines = mines
	}
}

// Start moves an initialized board into play
func (b *Board) Start() error {
	if b.state != Initialized {
		return ErrInvalidTransition
	}
	b.state = Playing
	return nil
}

// Reveal uncovers the tile at (x, y) and propagates the reveal through
// zero-count tiles. Revealing a mine kills the game immediately.
func (b *Board) Reveal(x, y int) (*RevealResult, error) {
	idx, err := b.IndexOf(x, y)
	if err != nil {
		return nil, err
	}
	if b.state.IsTerminal() {
		return nil, ErrGameOver
	}

	result := &RevealResult{Revealed: []Position{}}
	tile := &b.tiles[idx]
	if !tile.Revealed {
		result.Revealed = append(result.Revealed, Position{X: tile.X, Y: tile.Y})
	}
	tile.Revealed = true

	if tile.Mine {
		b.state = Dead
		result.HitMine = true
		result.State = b.state
		return result, nil
	}

	marked := 0
	neighbors := b.neighborIndexes(idx)
	for _, n := range neighbors {
		if b.tiles[n].Marked {
			marked++
		}
	}

	if tile.AdjacentMines == 0 || marked == tile.AdjacentMines {
		result.Expanded = true
		// Zero-count tiles are flagged revealed when pushed so each is expanded once.
		stack := b.expand(neighbors, nil, result)
		for len(stack) > 0 {
			next := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack = b.expand(b.neighborIndexes(next), stack, result)
		}
	}

	if b.IsGameWon() {
		b.state = Won
	}
	result.State = b.state
	return result, nil
}

// expand reveals the unrevealed, non-mine tiles among neighbors. Zero-count
// tiles are appended to stack for further expansion.
func (b *Board) expand(neighbors []int, stack []int, result *RevealResult) []int {
	for _, n := range neighbors {
		t := &b.tiles[n]
		if t.Revealed || t.Mine {
			continue
		}
		t.Revealed = true
		result.Revealed = append(result.Revealed, Position{X: t.X, Y: t.Y})
		if t.AdjacentMines == 0 {
			stack = append(stack, n)
		}
	}
	return stack
}

// Mark toggles the marked flag on an unrevealed tile. It reports whether the
// tile changed; marking a revealed tile is a no-op.
func (b *Board) Mark(x, y int) (bool, error) {
	idx, err := b.IndexOf(x, y)
	if err != nil {
		return false, err
	}
	if b.state.IsTerminal() {
		return false, ErrGameOver
	}

	tile := &b.tiles[idx]
	if tile.Revealed {
		return false, nil
	}
	tile.Marked = !tile.Marked
	return true, nil
}

// IsGameWon reports whether every unrevealed tile is a mine
func (b *Board) IsGameWon() bool {
	for i := range b.tiles {
		if !b.tiles[i].Revealed && !b.tiles[i].Mine {
			return false
		}
	}
	return true
}

// State returns the lifecycle state
func (b *Board) State() State {
	return b.state
}

// Width returns the number of columns
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows
func (b *Board) Height() int {
	return b.height
}

// MineCount returns the number of mines placed on the board
func (b *Board) MineCount() int {
	return b.mineCount
}

// TileCount returns width*height
func (b *Board) TileCount() int {
	return b.width * b.height
}

// TileAt returns a copy of the tile at (x, y)
func (b *Board) TileAt(x, y int) (Tile, error) {
	idx, err := b.IndexOf(x, y)
	if err != nil {
		return Tile{}, err
	}
	return b.tiles[idx], nil
}

// Tiles returns a row-major copy of every tile
func (b *Board) Tiles() []Tile {
	tiles := make([]Tile, len(b.tiles))
	copy(tiles, b.tiles)
	return tiles
}

// MarkedCount returns the number of marked tiles
func (b *Board) MarkedCount() int {
	count := 0
	for i := range b.tiles {
		if b.tiles[i].Marked {
			count++
		}
	}
	return count
}

// RevealedCount returns the number of revealed tiles
func (b *Board) RevealedCount() int {
	count := 0
	for i := range b.tiles {
		if b.tiles[i].Revealed {
			count++
		}
	}
	return count
}

// RestoreBoard rebuilds a board from persisted tiles. Tile coordinates are
// reassigned from their position and adjacency counts are recomputed.
func RestoreBoard(width, height int, tiles []Tile, state State) (*Board, error) {
	if width <= 0 || height <= 0 || len(tiles) != width*height {
		return nil, &InvalidConfigError{Width: width, Height: height, MineCount: CountMines(tiles)}
	}
	switch state {
	case Initialized, Playing, Won, Dead:
	default:
		return nil, ErrInvalidTransition
	}

	b := &Board{
		width:  width,
		height: height,
		tiles:  make([]Tile, len(tiles)),
		state:  state,
	}
	copy(b.tiles, tiles)
	for i := range b.tiles {
		b.tiles[i].X, b.tiles[i].Y, b.tiles[i].Index = i%width, i/width, i
	}
	b.mineCount = CountMines(b.tiles)
	if b.mineCount >= len(b.tiles) {
		return nil, &InvalidConfigError{Width: width, Height: height, MineCount: b.mineCount}
	}
	b.computeAdjacency()
	return b, nil
}
