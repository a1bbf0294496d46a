// Package move defines the tagged action variant for a Quoridor turn: a
// pawn move, a wall placement, or a power bomb. Every switch over an
// ActionType should handle all three kinds.
package move

import (
	"fmt"

	"github.com/domino14/quoridor/board"
)

// ActionType tags the kind of an Action.
type ActionType uint8

const (
	ActionMovePawn ActionType = iota
	ActionPlaceWall
	ActionPowerBomb
)

func (t ActionType) String() string {
	switch t {
	case ActionMovePawn:
		return "move"
	case ActionPlaceWall:
		return "wall"
	case ActionPowerBomb:
		return "bomb"
	}
	return "unknown"
}

// An Action is one player's ply. Only the fields for its type are
// meaningful. Applying a power bomb records the destroyed walls (with their
// original owners) on the action itself so that undo is an exact structural
// inverse.
type Action struct {
	atype  ActionType
	origin board.Coord
	dest   board.Coord
	wall   board.Wall
	center board.Coord

	destroyed []board.Wall
	applied   bool
}

func NewPawnMove(origin, dest board.Coord) *Action {
	return &Action{atype: ActionMovePawn, origin: origin, dest: dest}
}

func NewWallPlacement(w board.Wall) *Action {
	return &Action{atype: ActionPlaceWall, wall: w}
}

func NewPowerBomb(center board.Coord) *Action {
	return &Action{atype: ActionPowerBomb, center: center}
}

func (a *Action) Type() ActionType    { return a.atype }
func (a *Action) Origin() board.Coord { return a.origin }
func (a *Action) Dest() board.Coord   { return a.dest }
func (a *Action) Wall() board.Wall    { return a.wall }
func (a *Action) Center() board.Coord { return a.center }

// Destroyed returns the walls a power bomb removed, recorded at apply time.
func (a *Action) Destroyed() []board.Wall { return a.destroyed }

// SetDestroyed records the power bomb's undo data. The game layer calls
// this during apply; it overwrites any previous record.
func (a *Action) SetDestroyed(walls []board.Wall) { a.destroyed = walls }

// Applied reports whether the most recent apply actually mutated state.
// Wall placements and power bombs degrade to no-ops when the resource is
// gone or the wall already stands; undo consults this so the round trip
// stays symmetric.
func (a *Action) Applied() bool { return a.applied }

// SetApplied records the apply outcome. The game layer calls this.
func (a *Action) SetApplied(ok bool) { a.applied = ok }

// Equals compares the identity of two actions (type and target fields). It
// ignores apply-time undo records.
func (a *Action) Equals(other *Action) bool {
	if a == nil || other == nil {
		return a == other
	}
	if a.atype != other.atype {
		return false
	}
	switch a.atype {
	case ActionMovePawn:
		return a.origin == other.origin && a.dest == other.dest
	case ActionPlaceWall:
		return a.wall.SameSlot(other.wall)
	case ActionPowerBomb:
		return a.center == other.center
	}
	return false
}

// String provides a string just for debugging purposes.
func (a *Action) String() string {
	switch a.atype {
	case ActionMovePawn:
		return fmt.Sprintf("<action: move %v -> %v>", a.origin, a.dest)
	case ActionPlaceWall:
		return fmt.Sprintf("<action: wall %v>", a.wall)
	case ActionPowerBomb:
		return fmt.Sprintf("<action: bomb %v>", a.center)
	}
	return "<action: unknown>"
}

// ShortDescription is a compact human-readable form for shell output.
func (a *Action) ShortDescription() string {
	switch a.atype {
	case ActionMovePawn:
		return fmt.Sprintf("move to %d,%d", a.dest.Row, a.dest.Col)
	case ActionPlaceWall:
		o := "v"
		if a.wall.Horizontal {
			o = "h"
		}
		return fmt.Sprintf("wall %d,%d %s", a.wall.Coord.Row, a.wall.Coord.Col, o)
	case ActionPowerBomb:
		return fmt.Sprintf("bomb at %d,%d", a.center.Row, a.center.Col)
	}
	return "unknown"
}
