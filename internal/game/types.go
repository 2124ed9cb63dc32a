// internal/game/types.go
//
// Core type definitions for the dice grid engine.
// Defines:
//   - Cell: a single grid slot (unset or a die face 1–6).
//   - Coord: a (row, col) position on the grid.
//   - Dice: the pair of current die values (0 = not rolled yet).
//   - Phase: the coarse game-level state derived from State.
//   - Rules: opt-in rule variations.
//   - State: the whole game, as a comparable value.

package game

// Size is the width and height of the grid.
const Size = 5

// Die face bounds.
const (
	MinFace = 1
	MaxFace = 6
)

// Cell holds Unset or a die face in [MinFace, MaxFace].
type Cell uint8

// Unset is the zero Cell.
const Unset Cell = 0

// IsSet reports whether the cell holds a value.
func (c Cell) IsSet() bool { return c != Unset }

// Coord identifies a cell on the grid.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Origin is the top-left cell, the seed of every path.
var Origin = Coord{Row: 0, Col: 0}

// InBounds reports whether c lies on the grid.
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Dice is the pair of current die values. 0 means "unrolled".
type Dice [2]int

// Has reports whether v is one of the two current values.
func (d Dice) Has(v int) bool { return v != 0 && (d[0] == v || d[1] == v) }

// Phase is the game-level state:
//
//	awaiting-initial-selection → awaiting-roll ⇄ awaiting-die-placement
type Phase string

const (
	PhaseAwaitingInitial   Phase = "awaiting-initial-selection"
	PhaseAwaitingRoll      Phase = "awaiting-roll"
	PhaseAwaitingPlacement Phase = "awaiting-die-placement"
)

// Rules holds opt-in variations. The zero value is the reference rule set.
type Rules struct {
	// AnchorAtSeed makes the seed cell count as the last filled cell until
	// the first generic fill lands. Off by default: with it off, only the
	// origin is adjacent while LastFilled is absent.
	AnchorAtSeed bool `json:"anchorAtSeed"`
}

// State is one game. It is a plain comparable value; every transition
// returns a new State and leaves the receiver untouched.
type State struct {
	Grid          [Size][Size]Cell // Unset until filled, then immutable.
	Dice          Dice             // Replaced wholesale by a roll.
	LastFilled    Coord            // Valid only when HasLastFilled.
	HasLastFilled bool             // False until the first generic fill.
	Selected      int              // Valid only when HasSelected.
	HasSelected   bool             // Set by SelectDie, cleared by roll/fill.
	InitialFilled bool             // Monotonic.
	Rules         Rules
}
