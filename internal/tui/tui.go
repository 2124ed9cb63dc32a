// Package tui is a terminal front end for the dice grid game.
//
// Layout: the 5x5 board on the left, controls on the right (six numbered
// buttons before the seed, then the roll trigger and two place buttons), a
// status line underneath. Mouse and keys both work:
//
//	1-6     pick the seed value
//	enter   fill the highlighted cell
//	r       roll
//	a / b   place the first / second die
//	q, esc  quit
package tui

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/robalobadob/crisscross/internal/game"
)

// App owns the widgets and the local game state.
type App struct {
	App      *tview.Application
	Board    *tview.Table
	Controls *tview.Flex
	Status   *tview.TextView
	Layout   *tview.Flex

	rollBtn  *tview.Button
	placeBtn [2]*tview.Button
	initBtn  [game.MaxFace]*tview.Button

	state  game.State
	roller game.Roller
	log    zerolog.Logger
}

// New builds the widgets for a fresh game.
func New(rules game.Rules, roller game.Roller, logger zerolog.Logger) *App {
	a := &App{
		App:      tview.NewApplication(),
		Board:    tview.NewTable(),
		Controls: tview.NewFlex().SetDirection(tview.FlexRow),
		Status:   tview.NewTextView(),
		state:    game.New(rules),
		roller:   roller,
		log:      logger,
	}

	a.rollBtn = tview.NewButton("Roll Dice").SetSelectedFunc(func() {
		a.Dispatch(game.Command{Type: game.CmdRoll})
	})
	for i := range a.placeBtn {
		die := i
		a.placeBtn[i] = tview.NewButton("").SetSelectedFunc(func() {
			a.Dispatch(game.Command{Type: game.CmdSelect, Value: a.state.Dice[die]})
		})
	}
	for i := range a.initBtn {
		v := i + game.MinFace
		a.initBtn[i] = tview.NewButton(strconv.Itoa(v)).SetSelectedFunc(func() {
			a.Dispatch(game.Command{Type: game.CmdChooseInitial, Value: v})
		})
	}

	a.Board.SetBorders(true).SetSelectable(true, true)
	a.Board.SetSelectedFunc(func(row, col int) {
		a.Dispatch(game.Command{Type: game.CmdFill, Row: row, Col: col})
	})
	a.Board.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			a.App.Stop()
		}
	})
	a.Board.SetTitle(" Dice Grid Game ").SetBorder(true)

	a.Layout = tview.NewFlex().
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(a.Board, 0, 1, true).
			AddItem(a.Status, 3, 0, false), 0, 2, true).
		AddItem(a.Controls, 0, 1, false)

	a.App.SetInputCapture(a.capture)
	a.App.SetRoot(a.Layout, true).SetFocus(a.Board)
	a.App.EnableMouse(true)
	a.render()
	return a
}

// Run blocks until the user quits.
func (a *App) Run() error { return a.App.Run() }

// State returns the current game.
func (a *App) State() game.State { return a.state }

// Dispatch gates cmd like the disabled controls would, applies it, and
// redraws. It reports whether the command took effect.
func (a *App) Dispatch(cmd game.Command) bool {
	if !a.state.Permitted(cmd) {
		a.log.Debug().Str("cmd", string(cmd.Type)).Str("phase", string(a.state.Phase())).Msg("control disabled")
		return false
	}
	next, applied, err := game.Reduce(a.state, cmd, a.roller)
	if err != nil {
		a.log.Error().Err(err).Str("cmd", string(cmd.Type)).Msg("reduce")
		return false
	}
	a.state = next
	a.log.Debug().
		Str("cmd", string(cmd.Type)).
		Int("value", cmd.Value).
		Int("row", cmd.Row).
		Int("col", cmd.Col).
		Bool("applied", applied).
		Msg("command")
	a.render()
	return applied
}

// capture maps shortcut keys to commands.
func (a *App) capture(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() == tcell.KeyEscape {
		a.App.Stop()
		return nil
	}
	if ev.Key() != tcell.KeyRune {
		return ev
	}
	if ev.Rune() == 'q' {
		a.App.Stop()
		return nil
	}
	if cmd, ok := keyCommand(a.state, ev.Rune()); ok {
		a.Dispatch(cmd)
		return nil
	}
	return ev
}

// keyCommand translates a shortcut rune into a command for state s.
func keyCommand(s game.State, r rune) (game.Command, bool) {
	switch {
	case r >= '1' && r <= '6':
		return game.Command{Type: game.CmdChooseInitial, Value: int(r - '0')}, true
	case r == 'r':
		return game.Command{Type: game.CmdRoll}, true
	case r == 'a':
		return game.Command{Type: game.CmdSelect, Value: s.Dice[0]}, true
	case r == 'b':
		return game.Command{Type: game.CmdSelect, Value: s.Dice[1]}, true
	}
	return game.Command{}, false
}

// render redraws every widget from a.state.
func (a *App) render() {
	s := a.state
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			cell := tview.NewTableCell(cellText(s.Grid[r][c])).
				SetAlign(tview.AlignCenter).
				SetExpansion(1)
			if s.HasLastFilled && s.LastFilled == (game.Coord{Row: r, Col: c}) {
				cell.SetTextColor(tcell.ColorYellow)
			}
			a.Board.SetCell(r, c, cell)
		}
	}

	a.Controls.Clear()
	if s.CanChooseInitial() {
		a.Controls.AddItem(tview.NewTextView().SetText("Select a number for the first cell:"), 2, 0, false)
		for _, b := range a.initBtn {
			a.Controls.AddItem(b, 1, 0, false)
		}
	}
	setEnabled(a.rollBtn, s.CanRoll())
	a.Controls.AddItem(a.rollBtn, 1, 0, false)
	if s.ShowDice() {
		a.Controls.AddItem(tview.NewTextView().SetText(fmt.Sprintf("Dice Rolls: %d and %d", s.Dice[0], s.Dice[1])), 2, 0, false)
		for i, b := range a.placeBtn {
			b.SetLabel(fmt.Sprintf("Place %d", s.Dice[i]))
			setEnabled(b, s.CanSelect())
			a.Controls.AddItem(b, 1, 0, false)
		}
	}

	a.Status.SetText(statusLine(s))
}

// setEnabled dims a button whose control is currently unavailable.
func setEnabled(b *tview.Button, on bool) {
	if on {
		b.SetLabelColor(tview.Styles.PrimaryTextColor)
		b.SetBackgroundColor(tview.Styles.ContrastBackgroundColor)
		return
	}
	b.SetLabelColor(tview.Styles.TertiaryTextColor)
	b.SetBackgroundColor(tview.Styles.PrimitiveBackgroundColor)
}

func cellText(c game.Cell) string {
	if !c.IsSet() {
		return " "
	}
	return strconv.Itoa(int(c))
}

func statusLine(s game.State) string {
	switch s.Phase() {
	case game.PhaseAwaitingInitial:
		if s.Dice[0] == 0 {
			return "Pick a number (1-6), then click the top-left cell."
		}
		return fmt.Sprintf("Click the top-left cell to place %d.", s.Dice[0])
	case game.PhaseAwaitingPlacement:
		return fmt.Sprintf("Place %d next to the last filled cell. %d/%d filled.", s.Selected, s.FilledCount(), game.Size*game.Size)
	default:
		return fmt.Sprintf("Roll the dice or place one. %d/%d filled.", s.FilledCount(), game.Size*game.Size)
	}
}
