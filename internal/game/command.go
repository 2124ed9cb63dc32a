package game

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is returned by Reduce for a command type it does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoRoller is returned by Reduce for a roll without a Roller.
	ErrNoRoller = errors.New("no roller")
)

// CommandType names a user action.
type CommandType string

const (
	CmdChooseInitial CommandType = "choose_initial"
	CmdRoll          CommandType = "roll"
	CmdSelect        CommandType = "select"
	CmdFill          CommandType = "fill"
)

// Valid reports whether t is a known command type.
func (t CommandType) Valid() bool {
	switch t {
	case CmdChooseInitial, CmdRoll, CmdSelect, CmdFill:
		return true
	}
	return false
}

// Command is one user action.
//
//	choose_initial  Value = face for the seed cell
//	roll            no fields
//	select          Value = die value to place
//	fill            Row, Col = clicked cell
type Command struct {
	Type  CommandType `json:"type"`
	Value int         `json:"value,omitempty"`
	Row   int         `json:"row,omitempty"`
	Col   int         `json:"col,omitempty"`
}

// Reduce applies cmd to s. applied reports whether the action took effect; a
// rejected action returns s unchanged with applied == false and a nil error.
// r is consulted only for roll commands.
func Reduce(s State, cmd Command, r Roller) (next State, applied bool, err error) {
	switch cmd.Type {
	case CmdChooseInitial:
		next = s.ChooseInitial(cmd.Value)
	case CmdRoll:
		if r == nil {
			return s, false, ErrNoRoller
		}
		// A roll can repeat the previous dice, so it counts as applied
		// without comparing states.
		return s.RollDice(r), true, nil
	case CmdSelect:
		next = s.SelectDie(cmd.Value)
	case CmdFill:
		next = s.FillCell(cmd.Row, cmd.Col)
	default:
		return s, false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	return next, next != s, nil
}

// Permitted reports whether a front end should let cmd through in state s.
// It encodes the disabled and hidden controls:
//
//   - initial buttons only before the seed
//   - roll only after the seed and with no die selected
//   - place buttons only while dice are shown, no die is selected, and only
//     for a value currently on the dice
//   - grid clicks always
//
// The core itself stays permissive; Reduce does not call Permitted.
func (s State) Permitted(cmd Command) bool {
	switch cmd.Type {
	case CmdChooseInitial:
		return s.CanChooseInitial()
	case CmdRoll:
		return s.CanRoll()
	case CmdSelect:
		return s.CanSelect() && s.Dice.Has(cmd.Value)
	case CmdFill:
		return true
	default:
		return false
	}
}
