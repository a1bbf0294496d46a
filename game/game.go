// Package game holds the authoritative Quoridor state — board, pawns, turn
// order — and the reversible action model: applying and exactly undoing
// pawn moves, wall placements, and power bombs.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/quoridor/board"
	"github.com/domino14/quoridor/cache"
	"github.com/domino14/quoridor/move"
	"github.com/domino14/quoridor/pathing"
)

// ErrIllegalAction is returned when an action fails its legality contract.
// The generator is the sole producer of actions, so hitting this indicates
// an internal-consistency fault, not a recoverable condition.
var ErrIllegalAction = errors.New("illegal action")

// A Game owns its board and pawns exclusively. The search never mutates a
// live game; it works on a Copy.
type Game struct {
	board  *board.GameBoard
	pawns  []*Pawn
	onturn int

	// stateKey caches the canonical serialization; any mutation clears it.
	stateKey string

	// distStore backs every pawn's distance memo. Copies share it; its
	// keys are derived from position content, not board identity.
	distStore cache.Store
}

// Rules bundles the knobs for a new game.
type Rules struct {
	Rows           int
	Cols           int
	WallsPerPlayer int
	BombsPerPlayer int
	NumPlayers     int
}

// NewGame sets up pawns at the midpoints of opposite edges, each with a
// goal set spanning the far edge. Two and four player games are supported.
func NewGame(rules Rules) (*Game, error) {
	if rules.NumPlayers != 2 && rules.NumPlayers != 4 {
		return nil, fmt.Errorf("unsupported number of players: %d", rules.NumPlayers)
	}
	if rules.Rows < 3 || rules.Cols < 3 {
		return nil, fmt.Errorf("board too small: %dx%d", rules.Rows, rules.Cols)
	}
	b := board.NewBoard(rules.Rows, rules.Cols)
	g := &Game{board: b, distStore: cache.NewMemStore()}

	starts := []board.Coord{
		{Row: rules.Rows - 1, Col: rules.Cols / 2},
		{Row: 0, Col: rules.Cols / 2},
		{Row: rules.Rows / 2, Col: 0},
		{Row: rules.Rows / 2, Col: rules.Cols - 1},
	}
	goalLines := [][]board.Coord{
		goalRow(b, 0),
		goalRow(b, rules.Rows-1),
		goalCol(b, rules.Cols-1),
		goalCol(b, 0),
	}
	for i := 0; i < rules.NumPlayers; i++ {
		goals := goalLines[i]
		goalSet := make(map[board.Coord]bool, len(goals))
		for _, gc := range goals {
			goalSet[gc] = true
		}
		p := &Pawn{
			id:         i,
			coord:      starts[i],
			walls:      rules.WallsPerPlayer,
			powerBombs: rules.BombsPerPlayer,
			goals:      goals,
			goalSet:    goalSet,
		}
		p.distances = pathing.NewDistances(b, p.coord, goals, g.distStore)
		g.pawns = append(g.pawns, p)
	}
	return g, nil
}

func goalRow(b *board.GameBoard, row int) []board.Coord {
	goals := make([]board.Coord, b.Cols())
	for c := range goals {
		goals[c] = board.C(row, c)
	}
	return goals
}

func goalCol(b *board.GameBoard, col int) []board.Coord {
	goals := make([]board.Coord, b.Rows())
	for r := range goals {
		goals[r] = board.C(r, col)
	}
	return goals
}

func (g *Game) Board() *board.GameBoard { return g.board }
func (g *Game) Pawns() []*Pawn          { return g.pawns }
func (g *Game) NumPlayers() int         { return len(g.pawns) }

// PlayerOnTurn returns the active pawn.
func (g *Game) PlayerOnTurn() *Pawn {
	return g.pawns[g.onturn]
}

func (g *Game) OnTurn() int { return g.onturn }

// SetOnTurn forces the active player index. Used when preparing an isolated
// search copy.
func (g *Game) SetOnTurn(idx int) {
	g.onturn = idx
	g.stateKey = ""
}

// NextPlayer advances the turn.
func (g *Game) NextPlayer() {
	g.onturn = (g.onturn + 1) % len(g.pawns)
	g.stateKey = ""
}

// PrevPlayer rewinds the turn; the inverse of NextPlayer during search
// unwinding.
func (g *Game) PrevPlayer() {
	g.onturn = (g.onturn + len(g.pawns) - 1) % len(g.pawns)
	g.stateKey = ""
}

// Finished reports whether any pawn stands on one of its goal cells.
func (g *Game) Finished() bool {
	for _, p := range g.pawns {
		if p.AtGoal() {
			return true
		}
	}
	return false
}

// Winner returns the pawn on its goal, or nil if the game is still going.
func (g *Game) Winner() *Pawn {
	for _, p := range g.pawns {
		if p.AtGoal() {
			return p
		}
	}
	return nil
}

// PawnAt returns the pawn occupying c, if any.
func (g *Game) PawnAt(c board.Coord) (*Pawn, bool) {
	for _, p := range g.pawns {
		if p.coord == c {
			return p, true
		}
	}
	return nil, false
}

func (g *Game) occupied(c board.Coord) bool {
	_, ok := g.PawnAt(c)
	return ok
}

// ValidMoves enumerates the cells p may move to this turn: open orthogonal
// neighbors, a straight jump over an adjacent pawn when the far cell is
// open, or the diagonal side-steps when the straight jump is blocked by a
// wall or the board edge.
func (g *Game) ValidMoves(p *Pawn) []board.Coord {
	var moves []board.Coord
	from := p.coord
	for _, d := range board.Directions {
		if !g.board.CanTraverse(from, d) {
			continue
		}
		n := from.Add(d.Delta())
		if !g.occupied(n) {
			moves = append(moves, n)
			continue
		}
		// A pawn sits on the neighbor; try to jump it.
		if g.board.CanTraverse(n, d) {
			far := n.Add(d.Delta())
			if !g.occupied(far) {
				moves = append(moves, far)
				continue
			}
		}
		// Straight jump blocked; diagonal side-steps.
		for _, pd := range d.Perpendicular() {
			if !g.board.CanTraverse(n, pd) {
				continue
			}
			diag := n.Add(pd.Delta())
			if !g.occupied(diag) {
				moves = append(moves, diag)
			}
		}
	}
	return moves
}

// CanPlaceWall reports whether w is a legal placement for the pawn on turn:
// the pawn must hold a wall, the slot must be in range with no geometric
// collision, and the placement must leave every pawn a path to its goal.
func (g *Game) CanPlaceWall(w board.Wall) bool {
	if g.PlayerOnTurn().walls <= 0 {
		return false
	}
	if !g.board.WallInRange(w.Coord) {
		return false
	}
	if g.board.WallCollides(w) {
		return false
	}
	g.board.PlaceWall(w)
	ok := true
	for _, p := range g.pawns {
		if !pathing.Reachable(g.board, p.coord, p.goals) {
			ok = false
			break
		}
	}
	g.board.RemoveWall(w)
	return ok
}

// PlayAction applies an action for the pawn on turn. Pawn moves must
// already be validated by the generator; an illegal destination returns
// ErrIllegalAction. A wall placement or power bomb with no resource left
// degrades to a logged no-op rather than corrupting state.
//
// Every apply invalidates the canonical state key and each pawn's distance
// handle before any heuristic can read them.
func (g *Game) PlayAction(a *move.Action) error {
	p := g.PlayerOnTurn()
	switch a.Type() {
	case move.ActionMovePawn:
		if !g.validDest(p, a.Dest()) {
			return fmt.Errorf("%w: %s for pawn %d at %v", ErrIllegalAction,
				a.ShortDescription(), p.id, p.coord)
		}
		p.pushHistory(p.coord)
		p.coord = a.Dest()
		p.distances.Locate(p.coord)

	case move.ActionPlaceWall:
		a.SetApplied(false)
		if p.walls <= 0 {
			log.Warn().Int("pawn", p.id).Msg("wall-placement-with-no-walls-left")
			return nil
		}
		w := a.Wall()
		w.Owner = p.id
		if g.board.HasWall(w) {
			return nil
		}
		g.board.PlaceWall(w)
		p.walls--
		a.SetApplied(true)
		g.invalidateDistances()

	case move.ActionPowerBomb:
		a.SetApplied(false)
		if p.powerBombs <= 0 {
			log.Warn().Int("pawn", p.id).Msg("power-bomb-with-none-left")
			return nil
		}
		a.SetDestroyed(g.detonate(a.Center()))
		p.powerBombs--
		a.SetApplied(true)
		g.invalidateDistances()
	}
	g.stateKey = ""
	return nil
}

// UnplayAction is the exact structural inverse of PlayAction, using the
// undo data recorded at apply time. It must run with the same pawn on turn
// that played the action. An apply that degraded to a no-op undoes to
// another no-op.
func (g *Game) UnplayAction(a *move.Action) {
	p := g.PlayerOnTurn()
	switch a.Type() {
	case move.ActionMovePawn:
		p.coord = a.Origin()
		p.popHistory()
		p.distances.Locate(p.coord)

	case move.ActionPlaceWall:
		if !a.Applied() {
			return
		}
		g.board.RemoveWall(a.Wall())
		p.walls++
		g.invalidateDistances()

	case move.ActionPowerBomb:
		if !a.Applied() {
			return
		}
		for _, w := range a.Destroyed() {
			// Re-insert only if absent, in case of a double-application bug
			// upstream.
			if !g.board.HasWall(w) {
				g.board.PlaceWall(w)
			}
			if w.Owner >= 0 && w.Owner < len(g.pawns) {
				g.pawns[w.Owner].walls--
			}
		}
		p.powerBombs++
		g.invalidateDistances()
	}
	g.stateKey = ""
}

// detonate removes every wall touching the 3x3 neighborhood of center,
// refunds a wall credit to each destroyed wall's owner, and returns the
// destroyed walls for undo. Out-of-range neighborhood cells are skipped; a
// wall touching the area from two directions is removed once.
func (g *Game) detonate(center board.Coord) []board.Wall {
	var destroyed []board.Wall
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			cell := board.C(center.Row+dr, center.Col+dc)
			if !g.board.InRange(cell) {
				continue
			}
			for _, w := range g.board.WallsTouching(cell) {
				if containsSlot(destroyed, w) {
					continue
				}
				destroyed = append(destroyed, w)
			}
		}
	}
	for _, w := range destroyed {
		g.board.RemoveWall(w)
		if w.Owner >= 0 && w.Owner < len(g.pawns) {
			g.pawns[w.Owner].walls++
		}
	}
	if len(destroyed) > 0 {
		log.Debug().Int("walls", len(destroyed)).Msg("power-bomb-destroyed-walls")
	}
	return destroyed
}

func containsSlot(walls []board.Wall, w board.Wall) bool {
	for _, x := range walls {
		if x.SameSlot(w) {
			return true
		}
	}
	return false
}

func (g *Game) validDest(p *Pawn, dest board.Coord) bool {
	for _, c := range g.ValidMoves(p) {
		if c == dest {
			return true
		}
	}
	return false
}

func (g *Game) invalidateDistances() {
	for _, p := range g.pawns {
		p.distances.Invalidate()
	}
}

// UpdateDistances forces every pawn's distance handle current.
func (g *Game) UpdateDistances() {
	for _, p := range g.pawns {
		p.distances.Update()
	}
}

// StateKey is the canonical serialization of all game-relevant content:
// the active player, each pawn's coord and resource counts in pawn order,
// and the wall-occupancy bitmap. It is a pure function of that content —
// two games with identical content produce identical keys — and it is the
// cache key for every memo table.
func (g *Game) StateKey() string {
	if g.stateKey != "" {
		return g.stateKey
	}
	buf := make([]byte, 0, 1+4*len(g.pawns)+8)
	buf = append(buf, byte(g.onturn))
	for _, p := range g.pawns {
		buf = append(buf, byte(p.coord.Row), byte(p.coord.Col),
			byte(p.walls), byte(p.powerBombs))
	}
	buf = append(buf, g.board.WallBitmap()...)
	g.stateKey = string(buf)
	return g.stateKey
}

// StateKeyPrefixLen is the length of the turn-and-pawns prefix of StateKey;
// the wall bitmap occupies the remainder.
func (g *Game) StateKeyPrefixLen() int {
	return 1 + 4*len(g.pawns)
}

// WallStateKey is the wall-bitmap portion of the canonical state, used
// when pruning memo entries down to wall layouts still reachable from the
// live board.
func (g *Game) WallStateKey() string {
	return g.StateKey()[g.StateKeyPrefixLen():]
}

// Copy returns a deep, isolated copy for search. Distance memo stores are
// shared (their keys are position-derived); everything mutable is cloned,
// so no partial-search mutation can leak into the live game.
func (g *Game) Copy() *Game {
	nb := g.board.Copy()
	ng := &Game{
		board:     nb,
		onturn:    g.onturn,
		stateKey:  g.stateKey,
		distStore: g.distStore,
	}
	for _, p := range g.pawns {
		np := p.copy()
		np.distances = p.distances.Copy(nb)
		ng.pawns = append(ng.pawns, np)
	}
	return ng
}

// ToDisplayText renders the board with pawn letters for the shell.
func (g *Game) ToDisplayText() string {
	return g.board.ToDisplayText(func(c board.Coord) (int, bool) {
		if p, ok := g.PawnAt(c); ok {
			return p.id, true
		}
		return 0, false
	})
}
