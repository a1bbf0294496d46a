// Package board implements the Quoridor grid: coordinates, walls, and the
// cell adjacency graph that wall placement mutates.
package board

import (
	"strings"
)

// A GameBoard is the rows x cols grid plus the set of placed walls. Each
// cell carries a bitmask of the directions still open for traversal; placing
// or removing a wall edits those masks on both sides of each blocked edge.
type GameBoard struct {
	rows  int
	cols  int
	open  []uint8 // bitmask indexed by row*cols+col; bit d set = open toward d
	walls []Wall
}

func NewBoard(rows, cols int) *GameBoard {
	b := &GameBoard{
		rows: rows,
		cols: cols,
		open: make([]uint8, rows*cols),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var m uint8
			for _, d := range Directions {
				n := Coord{r, c}.Add(d.Delta())
				if b.InRange(n) {
					m |= 1 << d
				}
			}
			b.open[r*cols+c] = m
		}
	}
	return b
}

func (b *GameBoard) Rows() int { return b.rows }
func (b *GameBoard) Cols() int { return b.cols }

func (b *GameBoard) InRange(c Coord) bool {
	return c.Row >= 0 && c.Row < b.rows && c.Col >= 0 && c.Col < b.cols
}

// WallInRange reports whether a wall's reference coord is a legal wall slot.
// Walls span two segments, so the last row and column are not valid slots.
func (b *GameBoard) WallInRange(c Coord) bool {
	return c.Row >= 0 && c.Row < b.rows-1 && c.Col >= 0 && c.Col < b.cols-1
}

// CanTraverse reports whether the edge from c toward d is open. Out-of-range
// cells are never traversable.
func (b *GameBoard) CanTraverse(c Coord, d Direction) bool {
	if !b.InRange(c) {
		return false
	}
	return b.open[c.Row*b.cols+c.Col]&(1<<d) != 0
}

func (b *GameBoard) setEdge(c Coord, d Direction, openEdge bool) {
	n := c.Add(d.Delta())
	if !b.InRange(c) || !b.InRange(n) {
		return
	}
	if openEdge {
		b.open[c.Row*b.cols+c.Col] |= 1 << d
		b.open[n.Row*b.cols+n.Col] |= 1 << d.Opposite()
	} else {
		b.open[c.Row*b.cols+c.Col] &^= 1 << d
		b.open[n.Row*b.cols+n.Col] &^= 1 << d.Opposite()
	}
}

// HasWall reports whether a wall with the same slot is already placed.
func (b *GameBoard) HasWall(w Wall) bool {
	for _, pw := range b.walls {
		if pw.SameSlot(w) {
			return true
		}
	}
	return false
}

// WallCollides reports whether w geometrically collides with any placed wall.
func (b *GameBoard) WallCollides(w Wall) bool {
	for _, pw := range b.walls {
		if pw.Collides(w) {
			return true
		}
	}
	return false
}

// PlaceWall puts w on the board and closes its two edges. It is a no-op if
// a wall already occupies the same slot.
func (b *GameBoard) PlaceWall(w Wall) {
	if b.HasWall(w) {
		return
	}
	b.walls = append(b.walls, w)
	for _, e := range w.blockedEdges() {
		b.setEdge(e.cell, e.dir, false)
	}
}

// RemoveWall takes w off the board and reopens its edges. It is a no-op if
// no wall occupies that slot.
func (b *GameBoard) RemoveWall(w Wall) {
	idx := -1
	for i, pw := range b.walls {
		if pw.SameSlot(w) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	b.walls = append(b.walls[:idx], b.walls[idx+1:]...)
	for _, e := range w.blockedEdges() {
		b.setEdge(e.cell, e.dir, true)
	}
}

// Walls returns the placed walls. The slice is owned by the board; callers
// must not mutate it.
func (b *GameBoard) Walls() []Wall {
	return b.walls
}

// WallsTouching returns every placed wall bordering the given cell.
func (b *GameBoard) WallsTouching(c Coord) []Wall {
	var touching []Wall
	for _, w := range b.walls {
		if w.Touches(c) {
			touching = append(touching, w)
		}
	}
	return touching
}

// WallBitmap encodes wall occupancy as a fixed-width bitmap: two bits per
// wall slot in row-major order (horizontal bit, then vertical bit). The
// encoding depends only on which slots hold walls, never on placement order
// or ownership, so it is usable as a cache-key component.
func (b *GameBoard) WallBitmap() []byte {
	slots := (b.rows - 1) * (b.cols - 1)
	bm := make([]byte, (slots*2+7)/8)
	for _, w := range b.walls {
		slot := w.Coord.Row*(b.cols-1) + w.Coord.Col
		bit := slot * 2
		if !w.Horizontal {
			bit++
		}
		bm[bit/8] |= 1 << (bit % 8)
	}
	return bm
}

// Copy returns a deep copy of the board.
func (b *GameBoard) Copy() *GameBoard {
	nb := &GameBoard{
		rows:  b.rows,
		cols:  b.cols,
		open:  make([]uint8, len(b.open)),
		walls: make([]Wall, len(b.walls)),
	}
	copy(nb.open, b.open)
	copy(nb.walls, b.walls)
	return nb
}

// CopyFrom restores this board's state from another board of the same
// dimensions.
func (b *GameBoard) CopyFrom(other *GameBoard) {
	copy(b.open, other.open)
	b.walls = b.walls[:0]
	b.walls = append(b.walls, other.walls...)
}

// ToDisplayText returns a human-readable picture of the grid with walls,
// for the shell and for debugging. pawnAt reports which pawn, if any, sits
// on a cell; it may be nil.
func (b *GameBoard) ToDisplayText(pawnAt func(Coord) (int, bool)) string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < b.cols; c++ {
		sb.WriteString("  ")
		sb.WriteByte(byte('0' + c%10))
		sb.WriteString(" ")
	}
	sb.WriteString("\n")
	for r := 0; r < b.rows; r++ {
		sb.WriteString("  ")
		sb.WriteByte(byte('0' + r%10))
		for c := 0; c < b.cols; c++ {
			sb.WriteString("  ")
			marker := "."
			if pawnAt != nil {
				if id, ok := pawnAt(Coord{r, c}); ok {
					marker = string(byte('A' + id))
				}
			}
			sb.WriteString(marker)
			if c < b.cols-1 && !b.CanTraverse(Coord{r, c}, East) {
				sb.WriteString("|")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
		if r < b.rows-1 {
			sb.WriteString("   ")
			for c := 0; c < b.cols; c++ {
				if !b.CanTraverse(Coord{r, c}, South) {
					sb.WriteString(" ---")
				} else {
					sb.WriteString("    ")
				}
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
