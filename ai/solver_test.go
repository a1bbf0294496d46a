package ai

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/quoridor/board"
	"github.com/domino14/quoridor/cache"
	"github.com/domino14/quoridor/game"
	"github.com/domino14/quoridor/move"
	"github.com/domino14/quoridor/pathing"
)

func newTestGame(t *testing.T, rules game.Rules) *game.Game {
	t.Helper()
	g, err := game.NewGame(rules)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestImmediateWinShortCircuits(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 3, Cols: 3, WallsPerPlayer: 2, NumPlayers: 2})
	p := g.PlayerOnTurn()
	is.NoErr(g.PlayAction(move.NewPawnMove(p.Coord(), board.C(1, 1))))

	s := NewSolver(g, 2, nil, false)
	a, value, stats, err := s.Solve()
	is.NoErr(err)
	is.Equal(value, WinScore)
	is.Equal(a.Type(), move.ActionMovePawn)
	is.True(p.IsGoal(a.Dest()))
	// No tree was searched.
	is.Equal(stats.Created, uint64(0))

	is.NoErr(g.PlayAction(a))
	is.Equal(g.Winner(), p)
}

func TestDepthOneAdvancesTowardGoal(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, WallsPerPlayer: 5, NumPlayers: 2})
	s := NewSolver(g, 1, nil, false)
	s.SetSeed([]byte("depth-one"))

	a, value, stats, err := s.Solve()
	is.NoErr(err)
	is.Equal(a.Type(), move.ActionMovePawn)
	// The only move that shortens the path to the goal row.
	is.Equal(a.Dest(), board.C(3, 2))
	is.True(value > 0)
	is.True(stats.Created > 0)
	is.True(stats.Lookups >= stats.Created)

	is.NoErr(g.PlayAction(a))
	is.Equal(g.PlayerOnTurn().Distances().ShortestPathLen(), 3)
}

func TestSeededDeterminism(t *testing.T) {
	is := is.New(t)
	run := func() (*move.Action, float64) {
		g := newTestGame(t, game.Rules{
			Rows: 5, Cols: 5, WallsPerPlayer: 3, BombsPerPlayer: 1, NumPlayers: 2})
		s := NewSolver(g, 1, cache.NewMemStore(), false)
		s.SetSeed([]byte("fixed seed"))
		a, value, _, err := s.Solve()
		is.NoErr(err)
		return a, value
	}
	a1, v1 := run()
	a2, v2 := run()
	is.True(a1.Equals(a2))
	is.Equal(v1, v2)
}

func TestPruningMatchesFullMinimax(t *testing.T) {
	is := is.New(t)
	run := func(prune bool) (*move.Action, float64) {
		g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, NumPlayers: 2})
		s := NewSolver(g, 2, cache.NewMemStore(), false)
		s.jitter = 0
		s.SetPruning(prune)
		a, value, _, err := s.Solve()
		is.NoErr(err)
		return a, value
	}
	pa, pv := run(true)
	fa, fv := run(false)
	is.True(pa.Equals(fa))
	is.Equal(pv, fv)
}

func TestSolveAtLevelThreeWithWalls(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, WallsPerPlayer: 2, NumPlayers: 2})
	s := NewSolver(g, 3, nil, false)
	s.SetSeed([]byte("level-three"))

	// Deeper plies move the pawns around, so wall candidates validated for
	// one pawn placement must not leak into another and trap a pawn.
	a, _, stats, err := s.Solve()
	is.NoErr(err)
	is.True(a != nil)
	is.True(stats.Created > 0)
	is.NoErr(g.PlayAction(a))
}

func TestSetLevelSearchesDeeper(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, WallsPerPlayer: 2, NumPlayers: 2})
	s := NewSolver(g, 1, cache.NewMemStore(), false)
	s.SetSeed([]byte("set-level"))

	_, _, first, err := s.Solve()
	is.NoErr(err)

	// Memo keys carry the remaining search depth, so the shallow root entry
	// cannot answer for the deeper root and the level-3 tree actually runs.
	s.SetLevel(3)
	_, _, second, err := s.Solve()
	is.NoErr(err)
	is.True(second.Created > first.Created)
}

func TestEvaluateScoresSealedPawnAsDecided(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, WallsPerPlayer: 3, NumPlayers: 2})
	s := NewSolver(g, 1, nil, false)
	s.working = g.Copy()

	// Three walls seal the actor into its starting corner region.
	for _, w := range []board.Wall{
		board.NewWall(board.C(3, 1), true, board.NoOwner),
		board.NewWall(board.C(3, 0), false, board.NoOwner),
		board.NewWall(board.C(3, 2), false, board.NoOwner),
	} {
		is.NoErr(s.working.PlayAction(move.NewWallPlacement(w)))
	}

	h, repeated := s.evaluate(s.working.Pawns()[0])
	is.True(!repeated)
	is.Equal(h, hugeNumber)

	// From the opponent's perspective the same seal is a won position.
	h, repeated = s.evaluate(s.working.Pawns()[1])
	is.True(!repeated)
	is.Equal(h, -hugeNumber)
}

func TestSolveRejectsStrandedLiveGame(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, WallsPerPlayer: 3, NumPlayers: 2})
	for _, w := range []board.Wall{
		board.NewWall(board.C(3, 1), true, board.NoOwner),
		board.NewWall(board.C(3, 0), false, board.NoOwner),
		board.NewWall(board.C(3, 2), false, board.NoOwner),
	} {
		is.NoErr(g.PlayAction(move.NewWallPlacement(w)))
	}

	s := NewSolver(g, 1, nil, false)
	_, _, _, err := s.Solve()
	is.True(errors.Is(err, pathing.ErrNoPathToGoal))
}

func TestLoopPenalty(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, NumPlayers: 2})
	s := NewSolver(g, 1, nil, false)
	s.working = g.Copy()
	actor := s.working.PlayerOnTurn()

	h0, repeated := s.evaluate(actor)
	is.True(!repeated)

	s.recordState(s.working.StateKey())
	h1, repeated := s.evaluate(actor)
	is.True(repeated)
	is.Equal(h1, h0+loopPenalty)
}

func TestLoopAvoidancePrefersFreshState(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, NumPlayers: 2})
	s := NewSolver(g, 1, nil, false)
	s.working = g.Copy()
	actor := s.working.PlayerOnTurn()

	// Enter (4,1) once so its state lands in the history, then retreat. The
	// history keeps the entry; undo does not erase where we have been.
	back := move.NewPawnMove(board.C(4, 2), board.C(4, 1))
	is.NoErr(s.playAction(back, true))
	s.working.UnplayAction(back)

	// Re-entering (4,1) and stepping to (4,3) are mirror images with equal
	// distances; only the repeat carries the penalty, so the engine scores
	// the fresh side strictly better (lower) for the acting pawn.
	is.NoErr(s.playAction(back, false))
	hRepeat, repeated := s.evaluate(actor)
	is.True(repeated)
	s.working.UnplayAction(back)

	fresh := move.NewPawnMove(board.C(4, 2), board.C(4, 3))
	is.NoErr(s.playAction(fresh, false))
	hFresh, repeated := s.evaluate(actor)
	is.True(!repeated)
	s.working.UnplayAction(fresh)

	is.Equal(hRepeat, hFresh+loopPenalty)
	is.True(hFresh < hRepeat)
}

func TestStateHistoryBounded(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, NumPlayers: 2})
	s := NewSolver(g, 1, nil, false)
	for i := 0; i < 10; i++ {
		s.recordState(string(rune('a' + i)))
	}
	is.Equal(len(s.lastStates), stateHistorySize)
	is.Equal(s.lastStates[0], "g")
}

func TestMemoReusedAcrossSolves(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, WallsPerPlayer: 3, NumPlayers: 2})
	s := NewSolver(g, 1, cache.NewMemStore(), false)
	s.SetSeed([]byte("memo"))

	_, _, first, err := s.Solve()
	is.NoErr(err)
	// The game has not changed, so every node is still valid and the second
	// decision starts with a root hit.
	_, _, second, err := s.Solve()
	is.NoErr(err)
	is.True(second.Hits > first.Hits)
}

func TestCleanMemoDropsSupersetWallStates(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{Rows: 5, Cols: 5, WallsPerPlayer: 3, NumPlayers: 2})
	s := NewSolver(g, 1, cache.NewMemStore(), false)

	emptyKey := memoKey(0, g.StateKey())

	w := move.NewWallPlacement(board.NewWall(board.C(2, 2), true, board.NoOwner))
	is.NoErr(g.PlayAction(w))
	walledKey := memoKey(0, g.StateKey())
	g.UnplayAction(w)

	s.memo.Set(emptyKey, []byte{1})
	s.memo.Set(walledKey, []byte{1})
	s.CleanMemo()

	// The current board has no walls: the walled entry is unreachable going
	// forward, the wall-free entry is not.
	_, ok := s.memo.Get(emptyKey)
	is.True(ok)
	_, ok = s.memo.Get(walledKey)
	is.True(!ok)
}

func TestSolveDoesNotMutateLiveGame(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t, game.Rules{
		Rows: 5, Cols: 5, WallsPerPlayer: 3, BombsPerPlayer: 1, NumPlayers: 2})
	s := NewSolver(g, 1, nil, false)
	s.SetSeed([]byte("no-mutate"))
	before := g.StateKey()

	a, _, _, err := s.Solve()
	is.NoErr(err)
	is.Equal(g.StateKey(), before)
	is.Equal(len(g.Board().Walls()), 0)

	// The chosen action must apply cleanly to the live game.
	is.NoErr(g.PlayAction(a))
}

func TestMemoEntryRoundTrip(t *testing.T) {
	is := is.New(t)
	a := move.NewPawnMove(board.C(4, 2), board.C(3, 2))
	buf := encodeEntry(a, 0.25, 1e7, -1e7)
	got, value, alpha, beta, ok := decodeEntry(buf)
	is.True(ok)
	is.True(got.Equals(a))
	is.Equal(value, 0.25)
	is.Equal(alpha, 1e7)
	is.Equal(beta, -1e7)

	buf = encodeEntry(nil, 0, 0, 0)
	got, _, _, _, ok = decodeEntry(buf)
	is.True(ok)
	is.True(got == nil)

	_, _, _, _, ok = decodeEntry([]byte("short"))
	is.True(!ok)
}
