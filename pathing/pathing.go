// Package pathing computes shortest paths from a pawn to its goal cells
// under the current wall configuration. Walls alone determine the adjacency
// graph; other pawns never block traversal for this computation.
package pathing

import (
	"errors"

	"github.com/domino14/quoridor/board"
)

// Unreachable is the sentinel distance for a cut-off goal. It only appears
// transiently while hypothetical walls are being tested; the wall legality
// check rejects any placement that would make it stick.
const Unreachable = 1 << 30

// ErrNoPathToGoal is returned when a pawn has no path to any goal cell in a
// committed position. That violates the board invariant, so callers treat
// it as a fatal internal-consistency error.
var ErrNoPathToGoal = errors.New("pawn has no path to any goal cell")

// Search runs a breadth-first search from origin to the nearest goal cell
// over b's adjacency graph. All edges have weight 1. It returns the
// distance and one witness shortest path (origin through goal, inclusive);
// ties among equal-length paths go to the first goal reached with neighbors
// expanded in N,S,E,W order. If no goal is reachable it returns
// (Unreachable, nil).
func Search(b *board.GameBoard, origin board.Coord, goals []board.Coord) (int, []board.Coord) {
	goalSet := make(map[board.Coord]bool, len(goals))
	for _, g := range goals {
		goalSet[g] = true
	}
	if goalSet[origin] {
		return 0, []board.Coord{origin}
	}

	prev := make(map[board.Coord]board.Coord)
	seen := map[board.Coord]bool{origin: true}
	frontier := []board.Coord{origin}
	dist := 0

	for len(frontier) > 0 {
		dist++
		var next []board.Coord
		for _, cur := range frontier {
			for _, d := range board.Directions {
				if !b.CanTraverse(cur, d) {
					continue
				}
				n := cur.Add(d.Delta())
				if seen[n] {
					continue
				}
				seen[n] = true
				prev[n] = cur
				if goalSet[n] {
					return dist, reconstruct(prev, origin, n)
				}
				next = append(next, n)
			}
		}
		frontier = next
	}
	return Unreachable, nil
}

func reconstruct(prev map[board.Coord]board.Coord, origin, goal board.Coord) []board.Coord {
	var rev []board.Coord
	for c := goal; c != origin; c = prev[c] {
		rev = append(rev, c)
	}
	rev = append(rev, origin)
	path := make([]board.Coord, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// Reachable reports whether any goal cell can be reached from origin.
func Reachable(b *board.GameBoard, origin board.Coord, goals []board.Coord) bool {
	d, _ := Search(b, origin, goals)
	return d != Unreachable
}
