// internal/game/engine.go
//
// Core rule engine for a single dice grid game.
// Responsibilities:
//   - Create empty games.
//   - Roll and select dice.
//   - Seed the top-left cell, then grow an orthogonal path from it.
//   - Derive the game phase and the enable/visibility rules a front end needs.
//
// Notes:
//   - Every transition is a value-receiver method that returns the next State.
//   - An illegal move is never an error: the returned State equals the input.
//   - There is no end condition; a full grid simply accepts no more fills.
package game

// New returns an empty game using the given rules.
func New(rules Rules) State {
	return State{Rules: rules}
}

// ChooseInitial stages v as both dice, the way the numbered buttons do before
// the seed cell is placed. Rejected once the seed is in or when v is not a
// die face.
func (s State) ChooseInitial(v int) State {
	if s.InitialFilled || !validFace(v) {
		return s
	}
	s.Dice = Dice{v, v}
	return s
}

// RollDice replaces both dice with fresh values from r and clears any
// selected die. It does not check InitialFilled; front ends gate it with
// CanRoll.
func (s State) RollDice(r Roller) State {
	s.Dice = r.Roll()
	s.Selected, s.HasSelected = 0, false
	return s
}

// SelectDie stages v as the value to place next. Any value is accepted and a
// second call overwrites the first; front ends gate it with CanSelect.
func (s State) SelectDie(v int) State {
	s.Selected, s.HasSelected = v, true
	return s
}

// FillInitialCell writes v into the origin and marks the seed as placed.
func (s State) FillInitialCell(v int) State {
	if s.InitialFilled || !validFace(v) {
		return s
	}
	s.Grid[Origin.Row][Origin.Col] = Cell(v)
	s.InitialFilled = true
	return s
}

// FillCell is the single entry point for a click on (row, col).
//
//   - Before the seed: a click on the origin places the first die's staged
//     value; every other cell is rejected.
//   - After: the click lands only if a die is selected, the cell is unset and
//     IsAdjacent holds. The path then advances to (row, col) and the
//     selection is consumed.
func (s State) FillCell(row, col int) State {
	at := Coord{Row: row, Col: col}
	if !at.InBounds() {
		return s
	}
	if !s.InitialFilled && at == Origin {
		return s.FillInitialCell(s.Dice[0])
	}
	if !s.HasSelected || !validFace(s.Selected) {
		return s
	}
	if s.Grid[row][col].IsSet() || !s.IsAdjacent(row, col) {
		return s
	}
	s.Grid[row][col] = Cell(s.Selected)
	s.LastFilled, s.HasLastFilled = at, true
	s.Selected, s.HasSelected = 0, false
	return s
}

// IsAdjacent reports whether (row, col) is a 4-neighbour of the last filled
// cell. With no last filled cell only the origin qualifies, unless
// Rules.AnchorAtSeed is on and the seed has been placed.
func (s State) IsAdjacent(row, col int) bool {
	anchor, ok := s.LastFilled, s.HasLastFilled
	if !ok && s.Rules.AnchorAtSeed && s.InitialFilled {
		anchor, ok = Origin, true
	}
	if !ok {
		return row == Origin.Row && col == Origin.Col
	}
	return abs(anchor.Row-row)+abs(anchor.Col-col) == 1
}

// Cell returns the value at (row, col), or Unset when out of bounds.
func (s State) Cell(row, col int) Cell {
	if !(Coord{Row: row, Col: col}).InBounds() {
		return Unset
	}
	return s.Grid[row][col]
}

// FilledCount is the number of set cells.
func (s State) FilledCount() int {
	n := 0
	for r := range s.Grid {
		for c := range s.Grid[r] {
			if s.Grid[r][c].IsSet() {
				n++
			}
		}
	}
	return n
}

// Phase derives the game-level state.
func (s State) Phase() Phase {
	switch {
	case !s.InitialFilled:
		return PhaseAwaitingInitial
	case s.HasSelected:
		return PhaseAwaitingPlacement
	default:
		return PhaseAwaitingRoll
	}
}

// CanChooseInitial reports whether the numbered initial buttons are shown.
func (s State) CanChooseInitial() bool { return !s.InitialFilled }

// CanRoll reports whether the roll trigger is enabled.
func (s State) CanRoll() bool { return s.InitialFilled && !s.HasSelected }

// ShowDice reports whether the current dice are displayed.
func (s State) ShowDice() bool {
	return s.InitialFilled && s.Dice[0] != 0 && s.Dice[1] != 0
}

// CanSelect reports whether the place buttons are enabled.
func (s State) CanSelect() bool { return s.ShowDice() && !s.HasSelected }

func validFace(v int) bool { return v >= MinFace && v <= MaxFace }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
