package engine

// compass offsets in NW, N, NE, E, SE, S, SW, W order
var neighborOffsets = [8]struct{ dx, dy int }{
	{-1, -1},
	{0, -1},
	{1, -1},
	{1, 0},
	{1, 1},
	{0, 1},
	{-1, 1},
	{-1, 0},
}

// InBounds reports whether (x, y) lies on the board
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// IndexOf maps (x, y) to its row-major index
func (b *Board) IndexOf(x, y int) (int, error) {
	if !b.InBounds(x, y) {
		return 0, &OutOfBoundsError{X: x, Y: y, Width: b.width, Height: b.height}
	}
	return y*b.width + x, nil
}

// CoordinateOf maps a row-major index back to (x, y)
func (b *Board) CoordinateOf(index int) (Position, error) {
	if index < 0 || index >= b.TileCount() {
		return Position{}, &OutOfBoundsError{Index: index, ByIndex: true, Width: b.width, Height: b.height}
	}
	return Position{X: index % b.width, Y: index / b.width}, nil
}

// Neighbors returns copies of the in-bounds tiles around (x, y) in
// NW, N, NE, E, SE, S, SW, W order.
func (b *Board) Neighbors(x, y int) ([]Tile, error) {
	idx, err := b.IndexOf(x, y)
	if err != nil {
		return nil, err
	}
	indexes := b.neighborIndexes(idx)
	tiles := make([]Tile, len(indexes))
	for i, n := range indexes {
		tiles[i] = b.tiles[n]
	}
	return tiles, nil
}

func (b *Board) neighborIndexes(idx int) []int {
	x, y := idx%b.width, idx/b.width
	indexes := make([]int, 0, len(neighborOffsets))
	for _, off := range neighborOffsets {
		nx, ny := x+off.dx, y+off.dy
		if b.InBounds(nx, ny) {
			indexes = append(indexes, ny*b.width+nx)
		}
	}
	return indexes
}
