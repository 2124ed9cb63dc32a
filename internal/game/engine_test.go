package game

import "testing"

// seqRoller returns the queued pairs in order, repeating the last one.
type seqRoller struct {
	pairs []Dice
	n     int
}

func (r *seqRoller) Roll() Dice {
	d := r.pairs[len(r.pairs)-1]
	if r.n < len(r.pairs) {
		d = r.pairs[r.n]
	}
	r.n++
	return d
}

// seeded returns a game whose origin holds v.
func seeded(t *testing.T, rules Rules, v int) State {
	t.Helper()
	s := New(rules).ChooseInitial(v).FillCell(0, 0)
	if !s.InitialFilled || s.Grid[0][0] != Cell(v) {
		t.Fatalf("seed %d not placed: %+v", v, s)
	}
	return s
}

func TestOnlyOriginFillableBeforeSeed(t *testing.T) {
	start := New(Rules{}).ChooseInitial(3).SelectDie(3)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if r == 0 && c == 0 {
				continue
			}
			if got := start.FillCell(r, c); got != start {
				t.Fatalf("FillCell(%d,%d) before seed changed state", r, c)
			}
		}
	}
	got := start.FillCell(0, 0)
	if got.Grid[0][0] != 3 || !got.InitialFilled {
		t.Fatalf("origin not seeded: %+v", got.Grid[0])
	}
}

func TestScenarioASeedOrigin(t *testing.T) {
	s := New(Rules{}).FillInitialCell(4)
	if s.Grid[0][0] != 4 {
		t.Fatalf("Grid[0][0] = %d, want 4", s.Grid[0][0])
	}
	if !s.InitialFilled {
		t.Fatal("InitialFilled = false, want true")
	}
	if s.Phase() != PhaseAwaitingRoll {
		t.Fatalf("phase = %s, want %s", s.Phase(), PhaseAwaitingRoll)
	}
}

func TestFillInitialCellClosedAfterSeed(t *testing.T) {
	s := New(Rules{}).FillInitialCell(4)
	if got := s.FillInitialCell(2); got != s {
		t.Fatal("second FillInitialCell changed state")
	}
	if got := s.ChooseInitial(2).FillCell(0, 0); got.Grid[0][0] != 4 {
		t.Fatalf("origin rewritten to %d", got.Grid[0][0])
	}
}

func TestFillInitialCellRejectsNonFace(t *testing.T) {
	for _, v := range []int{-1, 0, 7} {
		s := New(Rules{})
		if got := s.FillInitialCell(v); got != s {
			t.Errorf("FillInitialCell(%d) changed state", v)
		}
	}
	// Clicking the origin before any number is staged uses the unrolled die.
	s := New(Rules{})
	if got := s.FillCell(0, 0); got != s {
		t.Fatal("origin filled with an unrolled die")
	}
}

func TestScenarioBBootstrapRejectsFirstPlacement(t *testing.T) {
	r := &seqRoller{pairs: []Dice{{2, 5}}}
	s := seeded(t, Rules{}, 4).RollDice(r)
	if s.Dice != (Dice{2, 5}) {
		t.Fatalf("dice = %v", s.Dice)
	}
	s = s.SelectDie(s.Dice[0])
	got := s.FillCell(0, 1)
	if got != s {
		t.Fatalf("first placement at (0,1) landed; want rejection while LastFilled is absent")
	}
	if got.Grid[0][1].IsSet() {
		t.Fatalf("Grid[0][1] = %d, want unset", got.Grid[0][1])
	}
	// Every cell is rejected: the origin is taken and nothing else is adjacent.
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if s.FillCell(row, col) != s {
				t.Fatalf("FillCell(%d,%d) landed", row, col)
			}
		}
	}
}

func TestScenarioBWithSeedAnchor(t *testing.T) {
	r := &seqRoller{pairs: []Dice{{2, 5}, {6, 1}}}
	s := seeded(t, Rules{AnchorAtSeed: true}, 4).RollDice(r).SelectDie(2)

	if got := s.FillCell(1, 1); got != s {
		t.Fatal("diagonal of the seed accepted")
	}
	s = s.FillCell(0, 1)
	if s.Grid[0][1] != 2 {
		t.Fatalf("Grid[0][1] = %d, want 2", s.Grid[0][1])
	}
	if !s.HasLastFilled || s.LastFilled != (Coord{0, 1}) {
		t.Fatalf("LastFilled = %+v/%v", s.LastFilled, s.HasLastFilled)
	}
	if s.HasSelected {
		t.Fatal("selection not consumed")
	}

	// The path now follows (0,1); (1,0) touches the seed but not the path head.
	s = s.RollDice(r).SelectDie(6)
	if got := s.FillCell(1, 0); got != s {
		t.Fatal("(1,0) accepted although it is not next to (0,1)")
	}
	s = s.FillCell(1, 1)
	if s.Grid[1][1] != 6 || s.LastFilled != (Coord{1, 1}) {
		t.Fatalf("(1,1) not filled: %+v", s)
	}
	if s.FilledCount() != 3 {
		t.Fatalf("FilledCount = %d, want 3", s.FilledCount())
	}
}

func TestIsAdjacent(t *testing.T) {
	withLast := func(c Coord) State {
		s := New(Rules{}).FillInitialCell(1)
		s.LastFilled, s.HasLastFilled = c, true
		return s
	}

	tests := []struct {
		name string
		s    State
		at   Coord
		want bool
	}{
		{"no last, origin", New(Rules{}), Coord{0, 0}, true},
		{"no last, right of origin", New(Rules{}), Coord{0, 1}, false},
		{"no last, seeded, right of origin", New(Rules{}).FillInitialCell(1), Coord{0, 1}, false},
		{"anchor before seed", New(Rules{AnchorAtSeed: true}), Coord{0, 1}, false},
		{"anchor after seed", New(Rules{AnchorAtSeed: true}).FillInitialCell(1), Coord{1, 0}, true},
		{"up", withLast(Coord{2, 2}), Coord{1, 2}, true},
		{"down", withLast(Coord{2, 2}), Coord{3, 2}, true},
		{"left", withLast(Coord{2, 2}), Coord{2, 1}, true},
		{"right", withLast(Coord{2, 2}), Coord{2, 3}, true},
		{"same cell", withLast(Coord{2, 2}), Coord{2, 2}, false},
		{"diagonal", withLast(Coord{2, 2}), Coord{3, 3}, false},
		{"two away", withLast(Coord{2, 2}), Coord{2, 4}, false},
		{"no wraparound", withLast(Coord{0, 4}), Coord{0, 0}, false},
		{"no wraparound vertical", withLast(Coord{4, 1}), Coord{0, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.IsAdjacent(tt.at.Row, tt.at.Col); got != tt.want {
				t.Errorf("IsAdjacent(%d,%d) = %v, want %v", tt.at.Row, tt.at.Col, got, tt.want)
			}
		})
	}
}

func TestIsAdjacentIsManhattanOne(t *testing.T) {
	for lr := 0; lr < Size; lr++ {
		for lc := 0; lc < Size; lc++ {
			s := State{LastFilled: Coord{lr, lc}, HasLastFilled: true}
			for r := 0; r < Size; r++ {
				for c := 0; c < Size; c++ {
					want := abs(r-lr)+abs(c-lc) == 1
					if got := s.IsAdjacent(r, c); got != want {
						t.Fatalf("last (%d,%d) IsAdjacent(%d,%d) = %v", lr, lc, r, c, got)
					}
				}
			}
		}
	}
}

func TestFillCellPreconditions(t *testing.T) {
	base := State{InitialFilled: true, LastFilled: Coord{2, 2}, HasLastFilled: true}
	base.Grid[0][0] = 1
	base.Grid[2][2] = 3
	base.Grid[2][3] = 5

	tests := []struct {
		name  string
		s     State
		at    Coord
		lands bool
	}{
		{"selected, unset, adjacent", base.SelectDie(4), Coord{1, 2}, true},
		{"no selection", base, Coord{1, 2}, false},
		{"occupied neighbour", base.SelectDie(4), Coord{2, 3}, false},
		{"not adjacent", base.SelectDie(4), Coord{4, 4}, false},
		{"out of bounds", base.SelectDie(4), Coord{2, 5}, false},
		{"negative", base.SelectDie(4), Coord{-1, 2}, false},
		{"selected non-face", base.SelectDie(9), Coord{1, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.s.FillCell(tt.at.Row, tt.at.Col)
			if !tt.lands {
				if got != tt.s {
					t.Fatalf("rejected fill changed state")
				}
				return
			}
			if got.Grid[tt.at.Row][tt.at.Col] != Cell(tt.s.Selected) {
				t.Fatalf("cell = %d, want %d", got.Grid[tt.at.Row][tt.at.Col], tt.s.Selected)
			}
			if got.FilledCount() != tt.s.FilledCount()+1 {
				t.Fatalf("FilledCount %d → %d, want exactly one more", tt.s.FilledCount(), got.FilledCount())
			}
			if got.HasSelected || got.LastFilled != tt.at {
				t.Fatalf("after fill: selected=%v last=%+v", got.HasSelected, got.LastFilled)
			}
		})
	}
}

func TestScenarioCFilledCellNeverChanges(t *testing.T) {
	s := State{InitialFilled: true, LastFilled: Coord{1, 1}, HasLastFilled: true}
	s.Grid[0][0] = 2
	s.Grid[1][1] = 5
	s.Grid[1][2] = 6

	for _, sel := range []int{0, 1, 6} {
		cur := s
		if sel != 0 {
			cur = cur.SelectDie(sel)
		}
		for _, at := range []Coord{{0, 0}, {1, 1}, {1, 2}} {
			if got := cur.FillCell(at.Row, at.Col); got != cur {
				t.Fatalf("FillCell(%d,%d) with selection %d changed state", at.Row, at.Col, sel)
			}
		}
	}
}

func TestRollDice(t *testing.T) {
	s := seeded(t, Rules{}, 2).SelectDie(2)
	r := NewRoller(7)
	for i := 0; i < 500; i++ {
		s = s.RollDice(r)
		for _, d := range s.Dice {
			if d < MinFace || d > MaxFace {
				t.Fatalf("roll %d produced %v", i, s.Dice)
			}
		}
		if s.HasSelected {
			t.Fatal("roll kept the selection")
		}
		s = s.SelectDie(s.Dice[1])
	}
}

func TestScenarioDRollTwice(t *testing.T) {
	r := &seqRoller{pairs: []Dice{{1, 2}, {3, 4}}}
	s := seeded(t, Rules{}, 5)
	s = s.RollDice(r).SelectDie(1)
	s = s.RollDice(r)
	if s.HasSelected {
		t.Fatal("second roll kept the selection")
	}
	if s.Dice != (Dice{3, 4}) {
		t.Fatalf("dice = %v, want fresh values [3 4]", s.Dice)
	}
}

func TestSelectDieTwiceOverwrites(t *testing.T) {
	s := seeded(t, Rules{}, 1).RollDice(&seqRoller{pairs: []Dice{{2, 6}}})

	first := s.SelectDie(2).SelectDie(6)
	if first.Selected != 6 {
		t.Fatalf("Selected = %d, want the second value 6", first.Selected)
	}
	second := s.SelectDie(6).SelectDie(2)
	if second.Selected != 2 {
		t.Fatalf("Selected = %d, want the second value 2", second.Selected)
	}
	// Front ends block the second click instead.
	if s.SelectDie(2).CanSelect() {
		t.Fatal("CanSelect with a die already selected")
	}
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	s := seeded(t, Rules{AnchorAtSeed: true}, 3)
	before := s
	_ = s.RollDice(NewRoller(1)).SelectDie(4).FillCell(0, 1)
	_ = s.SelectDie(2).FillCell(1, 0)
	if s != before {
		t.Fatal("transition mutated its receiver")
	}
}

func TestGating(t *testing.T) {
	s := New(Rules{})
	if !s.CanChooseInitial() || s.CanRoll() || s.CanSelect() || s.ShowDice() {
		t.Fatalf("fresh game gating wrong")
	}
	s = s.ChooseInitial(4)
	if s.ShowDice() {
		t.Fatal("dice shown before the seed")
	}
	s = s.FillCell(0, 0)
	if s.CanChooseInitial() {
		t.Fatal("initial buttons after the seed")
	}
	// The staged value is still on both dice until the first roll.
	if !s.ShowDice() || s.Dice != (Dice{4, 4}) || !s.CanSelect() || !s.CanRoll() {
		t.Fatalf("seeded gating wrong: %+v", s)
	}
	s = s.SelectDie(4)
	if s.CanRoll() || s.CanSelect() || s.Phase() != PhaseAwaitingPlacement {
		t.Fatal("controls enabled with a die selected")
	}
}

func TestChooseInitial(t *testing.T) {
	s := New(Rules{})
	if got := s.ChooseInitial(0); got != s {
		t.Fatal("ChooseInitial(0) accepted")
	}
	if got := s.ChooseInitial(7); got != s {
		t.Fatal("ChooseInitial(7) accepted")
	}
	s = s.ChooseInitial(2).ChooseInitial(6)
	if s.Dice != (Dice{6, 6}) {
		t.Fatalf("dice = %v, want [6 6]", s.Dice)
	}
}
