// Package ai implements the decision engine: depth-bounded alpha-beta
// minimax over the legal-action generator, with per-node memoization,
// distance-based leaf evaluation, loop detection, and randomized
// tie-breaking.
package ai

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/quoridor/cache"
	"github.com/domino14/quoridor/game"
	"github.com/domino14/quoridor/move"
	"github.com/domino14/quoridor/movegen"
	"github.com/domino14/quoridor/pathing"
)

// Heuristic weights. Pure numeric terms, no branches:
//
//	urgencyWeight  punishes letting the nearest opponent get close to its goal.
//	progressWeight rewards getting close to our own goal.
//	loopPenalty    taxes re-entering a recently seen board state.
const (
	urgencyWeight  = 12.0
	progressWeight = 5.0
	loopPenalty    = 0.2
)

const hugeNumber = float64(1e7)

// WinScore is the score reported for an immediate winning move.
const WinScore = hugeNumber

const (
	tieEpsilon  = 1e-9
	jitterScale = 0.01
)

// stateHistorySize bounds the recent-state record used for loop detection.
const stateHistorySize = 4

var (
	ErrNoDecision = errors.New("no legal action available")
)

// Stats counts memo-table traffic for one solver. It is owned by the
// solver and returned alongside each decision; there is no process-wide
// state.
type Stats struct {
	Created uint64
	Lookups uint64
	Hits    uint64
}

// A Solver owns one pawn's decision making against a live game. Solve
// never mutates the live game: it deep-copies it once per decision and
// discards the copy afterward, so no partial-search mutation can leak into
// the authoritative state even if the search aborts.
//
// A Solver is single-threaded; the only value it shares with a concurrent
// reader is the pawn's atomic progress cell.
type Solver struct {
	game    *game.Game
	working *game.Game
	gen     *movegen.Generator

	// level is the depth bound: recursion stops and the leaf collapses
	// into a direct 1-ply heuristic comparison when depth reaches it.
	level int

	memo           cache.Store
	persistentMemo bool

	// pruningOptim gates alpha-beta cutoffs; disabling it yields the full
	// minimax the pruned search must agree with.
	pruningOptim bool

	rng *frand.RNG

	// jitter scales the random perturbation applied to exactly tied leaf
	// values. Zero disables it, making values exact.
	jitter float64

	lastStates []string
	stats      Stats
	livePawn   *game.Pawn
}

// NewSolver creates a solver for the pawn on turn of g. The memo store
// holds search nodes; persistent marks it as surviving across moves (it is
// then pruned conservatively instead of per-move).
func NewSolver(g *game.Game, level int, memo cache.Store, persistent bool) *Solver {
	if memo == nil {
		memo = cache.NewMemStore()
	}
	s := &Solver{
		game:           g,
		gen:            movegen.NewGenerator(g, cache.NewMemStore()),
		level:          level,
		memo:           memo,
		persistentMemo: persistent,
		pruningOptim:   true,
		rng:            frand.New(),
		jitter:         jitterScale,
	}
	log.Info().Int("level", level).Bool("persistent-memo", persistent).
		Msg("created-solver")
	return s
}

// SetSeed makes the tie-break RNG deterministic. Decisions become a pure
// function of (board, level) for a fixed seed.
func (s *Solver) SetSeed(seed []byte) {
	key := make([]byte, 32)
	copy(key, seed)
	s.rng = frand.NewCustom(key, 1024, 12)
}

// SetPruning toggles alpha-beta cutoffs; used to check pruned search
// against full minimax.
func (s *Solver) SetPruning(on bool) {
	s.pruningOptim = on
}

// SetLevel changes the depth bound.
func (s *Solver) SetLevel(level int) {
	s.level = level
}

func (s *Solver) Stats() Stats { return s.stats }

// RecordCommitted notes a canonical state that actually occurred in the
// game, for loop detection. The host should call it after committing any
// real action.
func (s *Solver) RecordCommitted(stateKey string) {
	s.recordState(stateKey)
}

// Solve returns the best action for the pawn on turn, with its score from
// that pawn's perspective (higher is better), and the memo statistics for
// this solver so far.
//
// An immediate winning move short-circuits the search entirely. Otherwise
// the depth-bounded tree runs to completion; there is no cancellation —
// callers wanting responsiveness bound the level instead.
func (s *Solver) Solve() (*move.Action, float64, Stats, error) {
	p := s.game.PlayerOnTurn()
	s.livePawn = p
	tstart := time.Now()

	// A committed position must leave every pawn a route to its goal; a
	// cut-off pawn is only a transient condition inside hypothetical lines.
	for _, q := range s.game.Pawns() {
		if q.Distances().ShortestPathLen() == pathing.Unreachable {
			return nil, 0, s.stats, pathing.ErrNoPathToGoal
		}
	}

	// Can we win right now? O(legal moves), no recursion.
	for _, c := range s.game.ValidMoves(p) {
		if p.IsGoal(c) {
			log.Debug().Int("pawn", p.ID()).Msg("immediate-winning-move")
			return move.NewPawnMove(p.Coord(), c), WinScore, s.stats, nil
		}
	}

	s.working = s.game.Copy()
	s.gen.SetGame(s.working)
	defer func() {
		s.gen.SetGame(s.game)
		s.working = nil
	}()

	p.SetProgress(0)
	best, value, _, _, err := s.search(0, hugeNumber, -hugeNumber, true)
	p.SetProgress(1)
	if err != nil {
		return nil, 0, s.stats, err
	}
	if best == nil {
		return nil, 0, s.stats, ErrNoDecision
	}
	if !s.persistentMemo {
		s.CleanMemo()
	}
	p.Distances().CleanMemo()

	log.Info().
		Uint64("memo-created", s.stats.Created).
		Uint64("memo-lookups", s.stats.Lookups).
		Uint64("memo-hits", s.stats.Hits).
		Float64("value", value).
		Str("action", best.ShortDescription()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")

	// Actions carry plain coordinates, so the chosen action applies to the
	// live board as-is.
	return best, value, s.stats, nil
}

// search is the recursive minimax. The node's value space alternates sign
// each ply: maximizing nodes negate the raw heuristic so that higher is
// better for the searching player at the root.
//
// Cutoff policy: a maximizing node prunes once its running value reaches
// alpha, a minimizing node once it falls to beta, and the opposing bound
// is tightened on non-cutoff improvements.
func (s *Solver) search(depth int, alpha, beta float64, maximizing bool) (
	*move.Action, float64, float64, float64, error) {

	key := memoKey(s.level-depth, s.working.StateKey())
	s.stats.Lookups++
	if v, ok := s.memo.Get(key); ok {
		if a, value, al, be, ok := decodeEntry(v); ok {
			s.stats.Hits++
			return a, value, al, be, nil
		}
		s.memo.Delete(key)
	}
	s.stats.Created++

	if depth >= s.level {
		return s.searchLeaf(key, alpha, beta, maximizing)
	}

	best := hugeNumber
	if maximizing {
		best = -hugeNumber
	}
	var bestAction *move.Action
	stop := false

	actor := s.working.PlayerOnTurn()
	actor.Distances().PushState()
	defer actor.Distances().PopState()

	actions := s.gen.GenAll(actor)
	total := float64(len(actions))
	for i, a := range actions {
		if depth == 0 {
			s.livePawn.SetProgress(float64(i+1) / total)
		}
		if err := s.playAction(a, true); err != nil {
			return nil, 0, 0, 0, err
		}
		s.working.NextPlayer()
		_, h, _, _, err := s.search(depth+1, alpha, beta, !maximizing)
		s.working.PrevPlayer()
		s.working.UnplayAction(a)
		if err != nil {
			return nil, 0, 0, 0, err
		}

		if maximizing {
			if h > best {
				bestAction, best = a, h
				if best >= alpha {
					alpha = best
					stop = true
				} else {
					beta = best
				}
			}
		} else {
			if h < best {
				bestAction, best = a, h
				if best <= beta {
					beta = best
					stop = true
				} else {
					alpha = best
				}
			}
		}
		if stop && s.pruningOptim {
			break
		}
	}

	s.memo.Set(key, encodeEntry(bestAction, best, alpha, beta))
	return bestAction, best, alpha, beta, nil
}

// searchLeaf collapses the final ply: instead of recursing once more, the
// pawn on turn scores each of its own legal actions directly with the
// distance heuristic and keeps the best for this node's perspective.
func (s *Solver) searchLeaf(key string, alpha, beta float64, maximizing bool) (
	*move.Action, float64, float64, float64, error) {

	best := hugeNumber
	if maximizing {
		best = -hugeNumber
	}
	var bestAction *move.Action
	stop := false

	actor := s.working.PlayerOnTurn()
	for _, a := range s.gen.GenAll(actor) {
		if err := s.playAction(a, false); err != nil {
			return nil, 0, 0, 0, err
		}
		h, repeated := s.evaluate(actor)

		// Tiny random jitter breaks exact ties so symmetric options don't
		// freeze the search; repeated states keep their penalty unjittered.
		nodeValue := h
		if maximizing {
			nodeValue = -h
		}
		if math.Abs(nodeValue-best) < tieEpsilon && !repeated && s.jitter > 0 {
			h += (s.rng.Float64() - 0.5) * s.jitter
			nodeValue = h
			if maximizing {
				nodeValue = -h
			}
		}

		if maximizing {
			if nodeValue > best {
				bestAction, best = a, nodeValue
				if best >= alpha {
					alpha = best
					stop = true
				}
			} else if nodeValue == best && s.rng.Float64() < 0.5 {
				bestAction = a
			}
		} else {
			if nodeValue < best {
				bestAction, best = a, nodeValue
				if best <= beta {
					beta = best
					stop = true
				}
			} else if nodeValue == best && s.rng.Float64() < 0.5 {
				bestAction = a
			}
		}

		s.working.UnplayAction(a)
		if stop && s.pruningOptim {
			break
		}
	}

	s.memo.Set(key, encodeEntry(bestAction, best, alpha, beta))
	return bestAction, best, alpha, beta, nil
}

// evaluate scores the current (post-action) position from the acting
// pawn's perspective; lower is better for the actor. It also reports
// whether the position repeats a recently recorded state.
//
// A pawn cut off from its goal scores the position as already decided:
// the worst value when it is the actor, the best when it is an opponent.
func (s *Solver) evaluate(actor *game.Pawn) (float64, bool) {
	h1 := actor.Distances().ShortestPathLen()
	hh1 := pathing.Unreachable
	for _, p := range s.working.Pawns() {
		if p.ID() == actor.ID() {
			continue
		}
		if d := p.Distances().ShortestPathLen(); d < hh1 {
			hh1 = d
		}
	}
	if h1 == pathing.Unreachable {
		return hugeNumber, false
	}
	if hh1 == pathing.Unreachable {
		return -hugeNumber, false
	}

	base := float64(h1 - hh1)
	urgency := urgencyWeight / ((float64(hh1) + 0.5) * (float64(hh1) + 0.5))
	progress := -progressWeight / ((float64(h1) + 0.5) * (float64(h1) + 0.5))
	h := base + urgency + progress

	repeated := s.isRepeatedState()
	if repeated {
		h += loopPenalty
	}
	return h, repeated
}

// playAction applies a on the working copy. Interior plies record the
// resulting state for loop detection; leaf evaluations do not, since those
// positions are scored, not entered.
func (s *Solver) playAction(a *move.Action, record bool) error {
	if err := s.working.PlayAction(a); err != nil {
		return err
	}
	if record {
		s.recordState(s.working.StateKey())
	}
	return nil
}

func (s *Solver) recordState(key string) {
	s.lastStates = append(s.lastStates, key)
	if len(s.lastStates) > stateHistorySize {
		s.lastStates = s.lastStates[1:]
	}
}

func (s *Solver) isRepeatedState() bool {
	key := s.working.StateKey()
	for _, st := range s.lastStates {
		if st == key {
			return true
		}
	}
	return false
}

// CleanMemo prunes every memo entry whose wall bitmap is not a subset of
// the live board's walls. Such states are unreachable going forward (a
// power bomb can only remove walls the board has), so the entries would
// just leak across the rest of the game.
func (s *Solver) CleanMemo() {
	cur := s.game.StateKey()
	prefix := s.game.StateKeyPrefixLen()
	curWalls := s.game.WallStateKey()
	removed := 0
	for _, k := range s.memo.Keys() {
		if len(k) != len(cur) {
			s.memo.Delete(k)
			removed++
			continue
		}
		walls := k[prefix:]
		subset := true
		for i := 0; i < len(walls); i++ {
			if walls[i]&^curWalls[i] != 0 {
				subset = false
				break
			}
		}
		if !subset {
			s.memo.Delete(k)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("cleaned-memo-entries")
	}
}

// memoKey is (remaining search depth, canonical state minus the turn
// byte). Alternation is already determined by depth below a fixed root
// player, so the turn byte is redundant; keying on the depth still to be
// searched keeps an entry meaningful when the level changes between
// decisions or a persistent store is reopened at another level.
func memoKey(remaining int, stateKey string) string {
	return string(byte(remaining)) + stateKey[1:]
}
