package engine

// State is the lifecycle state of a board
type State string

const (
	Created     State = "created"
	Initialized State = "initialized"
	Playing     State = "playing"
	Won         State = "won"
	Dead        State = "dead"

	// Validation constants
	MinBoardSize   = 1
	MaxBoardSize   = 100
	MaxBulkActions = 50
)

// IsTerminal reports whether no command can move the board out of s.
func (s State) IsTerminal() bool {
	return s == Won || s == Dead
}

// Action names recorded in the move history
const (
	ActionStart  = "start"
	ActionReveal = "reveal"
	ActionMark   = "mark"
)

// Tile represents a single board cell
type Tile struct {
	X             int  `json:"x"`
	Y             int  `json:"y"`
	Index         int  `json:"index"`
	Mine          bool `json:"mine"`
	Revealed      bool `json:"revealed"`
	Marked        bool `json:"marked"`
	AdjacentMines int  `json:"adjacent_mines"`
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameConfig represents a board preset loaded from JSON or YAML
type GameConfig struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Width       int     `json:"width" yaml:"width"`
	Height      int     `json:"height" yaml:"height"`
	MineCount   int     `json:"mine_count" yaml:"mine_count"`
	Seed        *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// RevealResult describes the effect of a single Reveal call
type RevealResult struct {
	Revealed []Position `json:"revealed"`
	Expanded bool       `json:"expanded"`
	HitMine  bool       `json:"hit_mine"`
	State    State      `json:"state"`
}

// GameState represents the complete serializable game state
type GameState struct {
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	MineCount      int                `json:"mine_count"`
	State          State              `json:"state"`
	Tiles          []Tile             `json:"tiles"`
	MarkedCount    int                `json:"marked_count"`
	RevealedCount  int                `json:"revealed_count"`
	RemainingMines int                `json:"remaining_mines"`
	Message        string             `json:"message"`
	ConfigName     string             `json:"config_name"`
	MoveHistory    []MoveHistoryEntry `json:"move_history"`
	TotalMoves     int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single command in the game history
type MoveHistoryEntry struct {
	Action     string `json:"action"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Success    bool   `json:"success"`
	Revealed   int    `json:"revealed"`
	State      State  `json:"state"`
	Timestamp  int64  `json:"timestamp"`
	MoveNumber int    `json:"move_number"`
}
