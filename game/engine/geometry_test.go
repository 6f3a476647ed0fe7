package engine

import "testing"

func TestNeighborCounts(t *testing.T) {
	b := newTestBoard(t, 3, 3)

	tests := []struct {
		name     string
		x, y     int
		expected int
	}{
		{"corner", 0, 0, 3},
		{"opposite corner", 2, 2, 3},
		{"edge", 1, 0, 5},
		{"side edge", 0, 1, 5},
		{"interior", 1, 1, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			neighbors, err := b.Neighbors(tt.x, tt.y)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(neighbors) != tt.expected {
				t.Errorf("Expected %d neighbors, got %d", tt.expected, len(neighbors))
			}
		})
	}
}

func TestNeighborOrder(t *testing.T) {
	b := newTestBoard(t, 3, 3)

	neighbors, _ := b.Neighbors(1, 1)
	// NW, N, NE, E, SE, S, SW, W
	expected := []int{0, 1, 2, 5, 8, 7, 6, 3}
	for i, tile := range neighbors {
		if tile.Index != expected[i] {
			t.Errorf("Neighbor %d: expected index %d, got %d", i, expected[i], tile.Index)
		}
	}

	neighbors, _ = b.Neighbors(0, 0)
	expected = []int{1, 4, 3}
	for i, tile := range neighbors {
		if tile.Index != expected[i] {
			t.Errorf("Corner neighbor %d: expected index %d, got %d", i, expected[i], tile.Index)
		}
	}
}

func TestSingleTileBoardHasNoNeighbors(t *testing.T) {
	b := newTestBoard(t, 1, 1)
	neighbors, err := b.Neighbors(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(neighbors) != 0 {
		t.Errorf("Expected no neighbors, got %d", len(neighbors))
	}
}

func TestIndexCoordinateRoundTrip(t *testing.T) {
	b := newTestBoard(t, 7, 4)
	for i := 0; i < b.TileCount(); i++ {
		pos, err := b.CoordinateOf(i)
		if err != nil {
			t.Fatalf("CoordinateOf(%d): %v", i, err)
		}
		idx, err := b.IndexOf(pos.X, pos.Y)
		if err != nil {
			t.Fatalf("IndexOf(%d, %d): %v", pos.X, pos.Y, err)
		}
		if idx != i {
			t.Errorf("Expected index %d, got %d", i, idx)
		}
	}
}

func TestThreeBV(t *testing.T) {
	tests := []struct {
		name     string
		board    *Board
		expected int
	}{
		{"empty 3x3", newTestBoard(t, 3, 3), 1},
		{"two corner mines", newTestBoard(t, 3, 3, 0, 2), 2},
		{"two tiles", newTestBoard(t, 2, 1, 0), 1},
		{"strip", newTestBoard(t, 5, 1, 4), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThreeBV(tt.board); got != tt.expected {
				t.Errorf("Expected 3BV %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestRenderBoard(t *testing.T) {
	// reveal before marking so the chord gate stays shut and (2,0) stays hidden
	b := newTestBoard(t, 3, 1, 0)
	b.Reveal(1, 0)
	b.Mark(0, 0)

	state := &GameState{Width: 3, Height: 1, Tiles: b.Tiles()}

	expected := "   012\n00 F1#\n"
	if got := RenderBoard(state, false); got != expected {
		t.Errorf("Expected:\n%q\ngot:\n%q", expected, got)
	}

	expected = "   012\n00 *1.\n"
	if got := RenderBoard(state, true); got != expected {
		t.Errorf("Expected:\n%q\ngot:\n%q", expected, got)
	}

	if RenderBoard(nil, false) != "" {
		t.Error("Expected empty render for nil state")
	}
}
