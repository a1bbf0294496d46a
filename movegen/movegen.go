// Package movegen enumerates the legal actions for the pawn on turn,
// ordered so that alpha-beta search can cut off early: pawn moves first
// (preferring progress toward the goal, penalizing recently visited cells),
// then the power bomb, then wall placements (preferring walls near an
// opponent that block its forward progress).
//
// The full wall placement space is combinatorially large, so the generator
// restricts wall candidates to a strategic subset: slots within a small
// Manhattan radius of any pawn, slots that cut a pawn's current shortest
// path, and slots near the midpoint between the active pawn and each
// opponent.
package movegen

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash"
	"github.com/samber/lo"

	"github.com/domino14/quoridor/board"
	"github.com/domino14/quoridor/cache"
	"github.com/domino14/quoridor/game"
	"github.com/domino14/quoridor/move"
)

// pawnRadius is the Manhattan radius around each pawn searched for wall
// slots.
const pawnRadius = 2

// Ordering tiers; higher tiers are explored first.
const (
	tierWall = 1000.0 * float64(iota)
	tierBomb
	tierMove
)

type Generator struct {
	g *game.Game

	// wallCache memoizes validated wall candidates per canonical state.
	// The strategic subset follows the pawns and the reachability check
	// depends on where they stand, so the key covers pawns and walls both.
	wallCache cache.Store
}

// NewGenerator creates a generator for g. The store backs the wall
// candidate cache and may be nil to disable it.
func NewGenerator(g *game.Game, store cache.Store) *Generator {
	return &Generator{g: g, wallCache: store}
}

// Game returns the game this generator is bound to.
func (gen *Generator) Game() *game.Game { return gen.g }

// SetGame rebinds the generator, e.g. to an isolated search copy.
func (gen *Generator) SetGame(g *game.Game) { gen.g = g }

// GenAll returns the complete legal action set for p (which must be the
// pawn on turn), sorted by descending exploration priority.
func (gen *Generator) GenAll(p *game.Pawn) []*move.Action {
	actions := lo.Map(gen.g.ValidMoves(p), func(dest board.Coord, _ int) *move.Action {
		return move.NewPawnMove(p.Coord(), dest)
	})
	if p.PowerBombs() > 0 {
		actions = append(actions, move.NewPowerBomb(p.Coord()))
	}
	if p.Walls() > 0 {
		for _, w := range gen.wallCandidates() {
			w.Owner = p.ID()
			actions = append(actions, move.NewWallPlacement(w))
		}
	}

	estimates := make([]float64, len(actions))
	for i, a := range actions {
		estimates[i] = gen.estimate(p, a)
	}
	sorter := &actionSorter{estimates: estimates, actions: actions}
	sort.Stable(sorter)
	return sorter.actions
}

type actionSorter struct {
	estimates []float64
	actions   []*move.Action
}

func (s *actionSorter) Len() int { return len(s.actions) }
func (s *actionSorter) Swap(i, j int) {
	s.estimates[i], s.estimates[j] = s.estimates[j], s.estimates[i]
	s.actions[i], s.actions[j] = s.actions[j], s.actions[i]
}
func (s *actionSorter) Less(i, j int) bool {
	return s.estimates[j] < s.estimates[i]
}

// estimate scores an action for ordering only; it never touches the board.
func (gen *Generator) estimate(p *game.Pawn, a *move.Action) float64 {
	switch a.Type() {
	case move.ActionMovePawn:
		progress := goalGap(p, a.Origin()) - goalGap(p, a.Dest())
		recency := p.RecentlyVisited(a.Dest())
		return tierMove + float64(10*progress-goalGap(p, a.Dest())-5*recency)
	case move.ActionPowerBomb:
		return tierBomb
	case move.ActionPlaceWall:
		return tierWall + gen.wallEstimate(p, a.Wall())
	}
	return 0
}

// goalGap is the cheap geometric distance from c to p's goal line.
func goalGap(p *game.Pawn, c board.Coord) int {
	best := -1
	for _, gc := range p.Goals() {
		d := c.Manhattan(gc)
		if best == -1 || d < best {
			best = d
		}
	}
	return best
}

// wallEstimate prefers walls near an opponent, with a bonus for walls that
// sit between an opponent and its goal line.
func (gen *Generator) wallEstimate(p *game.Pawn, w board.Wall) float64 {
	nearest := -1
	blocking := 0
	for _, opp := range gen.g.Pawns() {
		if opp.ID() == p.ID() {
			continue
		}
		d := w.Coord.Manhattan(opp.Coord())
		if nearest == -1 || d < nearest {
			nearest = d
		}
		if blocksForward(opp, w) {
			blocking += 5
		}
	}
	return float64(blocking - nearest)
}

// blocksForward reports whether w lies across opp's direction of travel,
// between opp and its goal line.
func blocksForward(opp *game.Pawn, w board.Wall) bool {
	goals := opp.Goals()
	first, last := goals[0], goals[len(goals)-1]
	if first.Row == last.Row {
		// Goal is a row; horizontal walls block row progress.
		if !w.Horizontal {
			return false
		}
		if first.Row < opp.Coord().Row {
			return w.Coord.Row < opp.Coord().Row
		}
		return w.Coord.Row >= opp.Coord().Row
	}
	// Goal is a column; vertical walls block column progress.
	if w.Horizontal {
		return false
	}
	if first.Col < opp.Coord().Col {
		return w.Coord.Col < opp.Coord().Col
	}
	return w.Coord.Col >= opp.Coord().Col
}

// wallCandidates returns the validated strategic wall subset for the
// current position, consulting the candidate cache first.
func (gen *Generator) wallCandidates() []board.Wall {
	var key string
	if gen.wallCache != nil {
		key = "w:" + strconv.FormatUint(xxhash.Sum64String(gen.g.StateKey()), 16)
		if v, ok := gen.wallCache.Get(key); ok {
			if walls, ok := decodeWalls(v); ok {
				return walls
			}
			gen.wallCache.Delete(key)
		}
	}

	var candidates []board.Wall
	for _, pos := range gen.strategicPositions() {
		for _, horizontal := range []bool{false, true} {
			w := board.NewWall(pos, horizontal, board.NoOwner)
			if gen.g.Board().WallCollides(w) {
				continue
			}
			if !gen.g.CanPlaceWall(w) {
				continue
			}
			candidates = append(candidates, w)
		}
	}

	if gen.wallCache != nil {
		gen.wallCache.Set(key, encodeWalls(candidates))
	}
	return candidates
}

// strategicPositions collects the wall slots worth considering: near every
// pawn, along every pawn's current shortest path, and around the midpoint
// between the active pawn and each opponent. The result is sorted so that
// candidate order, and with it seeded tie-breaking, is reproducible.
func (gen *Generator) strategicPositions() []board.Coord {
	positions := make(map[board.Coord]bool)
	b := gen.g.Board()
	add := func(c board.Coord) {
		if b.WallInRange(c) {
			positions[c] = true
		}
	}

	active := gen.g.PlayerOnTurn()
	for _, p := range gen.g.Pawns() {
		pc := p.Coord()
		for dr := -pawnRadius; dr <= pawnRadius; dr++ {
			for dc := -pawnRadius; dc <= pawnRadius; dc++ {
				if abs(dr)+abs(dc) > pawnRadius {
					continue
				}
				add(board.C(pc.Row+dr, pc.Col+dc))
			}
		}
		for _, c := range gen.pathBlockers(p) {
			add(c)
		}
		if p.ID() != active.ID() {
			mid := board.C((pc.Row+active.Coord().Row)/2, (pc.Col+active.Coord().Col)/2)
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					add(board.C(mid.Row+dr, mid.Col+dc))
				}
			}
		}
	}
	sorted := lo.Keys(positions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})
	return sorted
}

// pathBlockers returns the wall slots that would cut an edge of p's
// current shortest path.
func (gen *Generator) pathBlockers(p *game.Pawn) []board.Coord {
	path := p.Distances().ShortestPath()
	if len(path) < 2 {
		return nil
	}
	var blockers []board.Coord
	for i := 0; i+1 < len(path); i++ {
		cur, next := path[i], path[i+1]
		if cur.Row == next.Row {
			// Horizontal step; a vertical wall at either row-adjacent slot
			// of the crossed boundary cuts it.
			col := min(cur.Col, next.Col)
			blockers = append(blockers, board.C(cur.Row, col), board.C(cur.Row-1, col))
		} else {
			// Vertical step; a horizontal wall at either col-adjacent slot
			// cuts it.
			row := min(cur.Row, next.Row)
			blockers = append(blockers, board.C(row, cur.Col), board.C(row, cur.Col-1))
		}
	}
	return blockers
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

// Candidate cache value layout: 3 bytes per wall (row, col, orientation).
func encodeWalls(walls []board.Wall) []byte {
	buf := make([]byte, 0, 3*len(walls))
	for _, w := range walls {
		h := byte(0)
		if w.Horizontal {
			h = 1
		}
		buf = append(buf, byte(w.Coord.Row), byte(w.Coord.Col), h)
	}
	return buf
}

func decodeWalls(buf []byte) ([]board.Wall, bool) {
	if len(buf)%3 != 0 {
		return nil, false
	}
	walls := make([]board.Wall, 0, len(buf)/3)
	for i := 0; i+3 <= len(buf); i += 3 {
		walls = append(walls, board.NewWall(
			board.C(int(buf[i]), int(buf[i+1])), buf[i+2] == 1, board.NoOwner))
	}
	return walls, true
}
