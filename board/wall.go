package board

import "fmt"

// NoOwner marks a wall with no owning pawn (e.g. a candidate that has not
// been played yet).
const NoOwner = -1

// A Wall occupies one slot, addressed by the top-left cell of the 2x2 cell
// square it sits inside. A horizontal wall at (r,c) blocks the south edges
// of (r,c) and (r,c+1); a vertical wall blocks the east edges of (r,c) and
// (r+1,c). Owner records which pawn placed it, so a power bomb can refund
// the right player.
type Wall struct {
	Coord      Coord
	Horizontal bool
	Owner      int
}

func NewWall(c Coord, horizontal bool, owner int) Wall {
	return Wall{Coord: c, Horizontal: horizontal, Owner: owner}
}

// SameSlot reports whether two walls occupy the same slot, regardless of
// orientation or owner. Two walls in one slot always overlap physically.
func (w Wall) SameSlot(other Wall) bool {
	return w.Coord == other.Coord
}

// Collides reports whether w physically overlaps other: same slot, two
// parallel walls in adjacent slots along their long axis, or crossing
// perpendicular walls in the same slot.
func (w Wall) Collides(other Wall) bool {
	if w.SameSlot(other) {
		return true
	}
	if w.Horizontal != other.Horizontal {
		return false
	}
	if w.Horizontal {
		if w.Coord.Row != other.Coord.Row {
			return false
		}
		d := w.Coord.Col - other.Coord.Col
		return d == 1 || d == -1
	}
	if w.Coord.Col != other.Coord.Col {
		return false
	}
	d := w.Coord.Row - other.Coord.Row
	return d == 1 || d == -1
}

// Touches reports whether c is one of the four cells around w's slot.
func (w Wall) Touches(c Coord) bool {
	return c.Row >= w.Coord.Row && c.Row <= w.Coord.Row+1 &&
		c.Col >= w.Coord.Col && c.Col <= w.Coord.Col+1
}

type edge struct {
	cell Coord
	dir  Direction
}

// blockedEdges returns the two cell edges this wall closes. Closing an edge
// closes it from both sides; setEdge handles the mirror.
func (w Wall) blockedEdges() [2]edge {
	if w.Horizontal {
		return [2]edge{
			{cell: w.Coord, dir: South},
			{cell: C(w.Coord.Row, w.Coord.Col+1), dir: South},
		}
	}
	return [2]edge{
		{cell: w.Coord, dir: East},
		{cell: C(w.Coord.Row+1, w.Coord.Col), dir: East},
	}
}

func (w Wall) String() string {
	o := "v"
	if w.Horizontal {
		o = "h"
	}
	return fmt.Sprintf("%v%s", w.Coord, o)
}
