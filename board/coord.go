package board

import "fmt"

// A Coord addresses a cell; row 0 is the top edge.
type Coord struct {
	Row int
	Col int
}

// C is shorthand for constructing a Coord.
func C(row, col int) Coord {
	return Coord{Row: row, Col: col}
}

func (c Coord) Add(d Coord) Coord {
	return Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

// Manhattan is the L1 distance to other.
func (c Coord) Manhattan(other Coord) int {
	dr := c.Row - other.Row
	if dr < 0 {
		dr = -dr
	}
	dc := c.Col - other.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Direction indexes the four orthogonal neighbors. The numeric values are
// bit positions in the board's per-cell open mask.
type Direction uint8

const (
	North Direction = iota
	South
	East
	West
)

// Directions is the fixed expansion order for neighbor scans; keeping it
// stable keeps path reconstruction deterministic.
var Directions = [4]Direction{North, South, East, West}

func (d Direction) Delta() Coord {
	switch d {
	case North:
		return Coord{Row: -1}
	case South:
		return Coord{Row: 1}
	case East:
		return Coord{Col: 1}
	case West:
		return Coord{Col: -1}
	}
	return Coord{}
}

func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return d
}

// Perpendicular returns the two directions orthogonal to d, used for the
// diagonal side-step rule.
func (d Direction) Perpendicular() [2]Direction {
	if d == North || d == South {
		return [2]Direction{East, West}
	}
	return [2]Direction{North, South}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	}
	return "?"
}
