package game

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/quoridor/board"
	"github.com/domino14/quoridor/move"
)

func testRules() Rules {
	return Rules{Rows: 9, Cols: 9, WallsPerPlayer: 10, BombsPerPlayer: 1, NumPlayers: 2}
}

func TestNewGameSetup(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(testRules())
	is.NoErr(err)
	is.Equal(g.NumPlayers(), 2)

	p0, p1 := g.Pawns()[0], g.Pawns()[1]
	is.Equal(p0.Coord(), board.C(8, 4))
	is.Equal(p1.Coord(), board.C(0, 4))
	is.Equal(p0.Walls(), 10)
	is.Equal(p0.PowerBombs(), 1)
	is.True(p0.IsGoal(board.C(0, 7)))
	is.True(!p0.IsGoal(board.C(8, 7)))
	is.True(p1.IsGoal(board.C(8, 0)))
	is.Equal(p0.Distances().ShortestPathLen(), 8)
	is.True(!g.Finished())
}

func TestFourPlayerSetup(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(Rules{Rows: 9, Cols: 9, WallsPerPlayer: 5, NumPlayers: 4})
	is.NoErr(err)
	is.Equal(g.NumPlayers(), 4)
	is.Equal(g.Pawns()[2].Coord(), board.C(4, 0))
	is.Equal(g.Pawns()[3].Coord(), board.C(4, 8))
	is.True(g.Pawns()[2].IsGoal(board.C(4, 8)))
	is.True(g.Pawns()[3].IsGoal(board.C(4, 0)))
}

func TestUnsupportedPlayerCount(t *testing.T) {
	is := is.New(t)
	_, err := NewGame(Rules{Rows: 9, Cols: 9, NumPlayers: 3})
	is.True(err != nil)
}

func TestMoveRoundTrip(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(testRules())
	is.NoErr(err)
	p := g.PlayerOnTurn()
	before := g.StateKey()

	a := move.NewPawnMove(p.Coord(), board.C(7, 4))
	is.NoErr(g.PlayAction(a))
	is.Equal(p.Coord(), board.C(7, 4))
	is.True(g.StateKey() != before)

	g.UnplayAction(a)
	is.Equal(p.Coord(), board.C(8, 4))
	is.Equal(g.StateKey(), before)
}

func TestIllegalMoveRejected(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(testRules())
	is.NoErr(err)
	p := g.PlayerOnTurn()
	before := g.StateKey()

	err = g.PlayAction(move.NewPawnMove(p.Coord(), board.C(5, 4)))
	is.True(err != nil)
	is.Equal(g.StateKey(), before)
}

func TestWallRoundTrip(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(testRules())
	is.NoErr(err)
	p := g.PlayerOnTurn()
	before := g.StateKey()

	w := board.NewWall(board.C(4, 4), true, board.NoOwner)
	a := move.NewWallPlacement(w)
	is.NoErr(g.PlayAction(a))
	is.Equal(p.Walls(), 9)
	is.True(g.Board().HasWall(w))
	is.Equal(p.Distances().ShortestPathLen(), 9)

	g.UnplayAction(a)
	is.Equal(p.Distances().ShortestPathLen(), 8)
	is.Equal(p.Walls(), 10)
	is.True(!g.Board().HasWall(w))
	is.Equal(g.StateKey(), before)
}

func TestPowerBombRoundTrip(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(testRules())
	is.NoErr(err)
	p0, p1 := g.Pawns()[0], g.Pawns()[1]

	// Each player contributes one wall inside the future blast area.
	is.NoErr(g.PlayAction(move.NewWallPlacement(
		board.NewWall(board.C(4, 4), true, board.NoOwner))))
	g.NextPlayer()
	is.NoErr(g.PlayAction(move.NewWallPlacement(
		board.NewWall(board.C(2, 4), false, board.NoOwner))))
	g.NextPlayer()
	is.Equal(p0.Walls(), 9)
	is.Equal(p1.Walls(), 9)

	before := g.StateKey()
	bomb := move.NewPowerBomb(board.C(4, 4))
	is.NoErr(g.PlayAction(bomb))
	// Wall (4,4)h touches the area directly; wall (2,4)v touches it at row 3.
	is.Equal(len(bomb.Destroyed()), 2)
	is.Equal(p0.PowerBombs(), 0)
	is.Equal(p0.Walls(), 10)
	is.Equal(p1.Walls(), 10)
	is.Equal(len(g.Board().Walls()), 0)

	g.UnplayAction(bomb)
	is.Equal(p0.PowerBombs(), 1)
	is.Equal(p0.Walls(), 9)
	is.Equal(p1.Walls(), 9)
	is.Equal(len(g.Board().Walls()), 2)
	is.Equal(g.StateKey(), before)
}

func TestPowerBombNoWalls(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(testRules())
	is.NoErr(err)
	before := g.StateKey()

	bomb := move.NewPowerBomb(board.C(4, 4))
	is.NoErr(g.PlayAction(bomb))
	is.Equal(len(bomb.Destroyed()), 0)
	is.Equal(g.PlayerOnTurn().PowerBombs(), 0)

	g.UnplayAction(bomb)
	is.Equal(g.StateKey(), before)
}

func TestPowerBombWithNoneLeftIsNoOp(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(Rules{Rows: 9, Cols: 9, WallsPerPlayer: 10, NumPlayers: 2})
	is.NoErr(err)
	before := g.StateKey()

	bomb := move.NewPowerBomb(board.C(4, 4))
	is.NoErr(g.PlayAction(bomb))
	is.True(!bomb.Applied())
	is.Equal(g.StateKey(), before)

	// Undoing the no-op must not mint a bomb out of thin air.
	g.UnplayAction(bomb)
	is.Equal(g.PlayerOnTurn().PowerBombs(), 0)
	is.Equal(g.StateKey(), before)
}

func TestWallAlreadyPresentNoOpRoundTrip(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(testRules())
	is.NoErr(err)
	p0, p1 := g.Pawns()[0], g.Pawns()[1]

	w := board.NewWall(board.C(4, 4), true, board.NoOwner)
	is.NoErr(g.PlayAction(move.NewWallPlacement(w)))
	g.NextPlayer()

	// p1 plays the occupied slot: the apply degrades to a no-op, and the
	// undo must neither remove p0's wall nor refund p1.
	a := move.NewWallPlacement(w)
	before := g.StateKey()
	is.NoErr(g.PlayAction(a))
	is.True(!a.Applied())
	is.Equal(p1.Walls(), 10)

	g.UnplayAction(a)
	is.True(g.Board().HasWall(w))
	is.Equal(p0.Walls(), 9)
	is.Equal(p1.Walls(), 10)
	is.Equal(g.StateKey(), before)
}

func TestWallWithNoneLeftNoOpRoundTrip(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(Rules{Rows: 9, Cols: 9, NumPlayers: 2})
	is.NoErr(err)
	before := g.StateKey()

	a := move.NewWallPlacement(board.NewWall(board.C(4, 4), true, board.NoOwner))
	is.NoErr(g.PlayAction(a))
	is.True(!a.Applied())

	g.UnplayAction(a)
	is.Equal(g.PlayerOnTurn().Walls(), 0)
	is.Equal(len(g.Board().Walls()), 0)
	is.Equal(g.StateKey(), before)
}

func TestStateKeyPurity(t *testing.T) {
	is := is.New(t)
	g1, err := NewGame(testRules())
	is.NoErr(err)
	g2, err := NewGame(testRules())
	is.NoErr(err)
	is.Equal(g1.StateKey(), g2.StateKey())

	p := g1.PlayerOnTurn()
	a := move.NewPawnMove(p.Coord(), board.C(7, 4))
	is.NoErr(g1.PlayAction(a))
	is.True(g1.StateKey() != g2.StateKey())
	g1.UnplayAction(a)
	is.Equal(g1.StateKey(), g2.StateKey())

	// The turn index is part of the key.
	g1.NextPlayer()
	is.True(g1.StateKey() != g2.StateKey())
}

func TestJumpOverAdjacentPawn(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(Rules{Rows: 5, Cols: 5, WallsPerPlayer: 5, NumPlayers: 2})
	is.NoErr(err)
	p0, p1 := g.Pawns()[0], g.Pawns()[1]

	is.NoErr(g.PlayAction(move.NewPawnMove(p0.Coord(), board.C(3, 2))))
	g.NextPlayer()
	is.NoErr(g.PlayAction(move.NewPawnMove(p1.Coord(), board.C(1, 2))))
	g.NextPlayer()
	is.NoErr(g.PlayAction(move.NewPawnMove(p0.Coord(), board.C(2, 2))))
	g.NextPlayer()

	// p1 at (1,2) faces p0 at (2,2): the straight jump lands at (3,2).
	moves := g.ValidMoves(p1)
	is.True(containsCoord(moves, board.C(3, 2)))
	is.True(!containsCoord(moves, board.C(2, 2)))
}

func TestDiagonalSideStepWhenJumpBlocked(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(Rules{Rows: 5, Cols: 5, WallsPerPlayer: 5, NumPlayers: 2})
	is.NoErr(err)
	p0, p1 := g.Pawns()[0], g.Pawns()[1]

	is.NoErr(g.PlayAction(move.NewPawnMove(p0.Coord(), board.C(3, 2))))
	g.NextPlayer()
	is.NoErr(g.PlayAction(move.NewPawnMove(p1.Coord(), board.C(1, 2))))
	g.NextPlayer()
	is.NoErr(g.PlayAction(move.NewPawnMove(p0.Coord(), board.C(2, 2))))
	g.NextPlayer()

	// Wall behind p0 blocks the straight jump; the side-steps open up.
	g.Board().PlaceWall(board.NewWall(board.C(2, 2), true, board.NoOwner))
	moves := g.ValidMoves(p1)
	is.True(!containsCoord(moves, board.C(3, 2)))
	is.True(containsCoord(moves, board.C(2, 1)))
	is.True(containsCoord(moves, board.C(2, 3)))
}

func TestCanPlaceWallPreservesReachability(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(Rules{Rows: 5, Cols: 5, WallsPerPlayer: 5, NumPlayers: 2})
	is.NoErr(err)

	// Two walls almost box in p0 at (4,2); the third would seal it off.
	g.Board().PlaceWall(board.NewWall(board.C(3, 1), true, board.NoOwner))
	g.Board().PlaceWall(board.NewWall(board.C(3, 0), false, board.NoOwner))

	is.True(!g.CanPlaceWall(board.NewWall(board.C(3, 2), false, board.NoOwner)))
	is.True(g.CanPlaceWall(board.NewWall(board.C(0, 0), true, board.NoOwner)))

	// The hypothetical wall from the rejected check must not stick.
	is.True(!g.Board().HasWall(board.NewWall(board.C(3, 2), false, board.NoOwner)))
}

func TestCanPlaceWallRejectsCollisionsAndRange(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(testRules())
	is.NoErr(err)
	is.NoErr(g.PlayAction(move.NewWallPlacement(
		board.NewWall(board.C(4, 4), true, board.NoOwner))))

	is.True(!g.CanPlaceWall(board.NewWall(board.C(4, 4), false, board.NoOwner)))
	is.True(!g.CanPlaceWall(board.NewWall(board.C(4, 5), true, board.NoOwner)))
	is.True(!g.CanPlaceWall(board.NewWall(board.C(8, 0), true, board.NoOwner)))
	is.True(g.CanPlaceWall(board.NewWall(board.C(4, 6), true, board.NoOwner)))
}

func TestWinnerDetection(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(Rules{Rows: 3, Cols: 3, WallsPerPlayer: 2, NumPlayers: 2})
	is.NoErr(err)
	p0 := g.Pawns()[0]

	is.NoErr(g.PlayAction(move.NewPawnMove(p0.Coord(), board.C(1, 1))))
	is.True(!g.Finished())
	// p1 sits on (0,1); side-step diagonally onto the goal row.
	is.NoErr(g.PlayAction(move.NewPawnMove(p0.Coord(), board.C(0, 0))))
	is.True(g.Finished())
	is.Equal(g.Winner(), p0)
}

func TestCopyIsolation(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(testRules())
	is.NoErr(err)
	cp := g.Copy()
	is.Equal(cp.StateKey(), g.StateKey())

	p := cp.PlayerOnTurn()
	is.NoErr(cp.PlayAction(move.NewPawnMove(p.Coord(), board.C(7, 4))))
	is.NoErr(cp.PlayAction(move.NewWallPlacement(
		board.NewWall(board.C(4, 4), true, board.NoOwner))))

	is.True(cp.StateKey() != g.StateKey())
	is.Equal(g.PlayerOnTurn().Coord(), board.C(8, 4))
	is.Equal(g.PlayerOnTurn().Walls(), 10)
	is.Equal(len(g.Board().Walls()), 0)
}

func containsCoord(coords []board.Coord, c board.Coord) bool {
	for _, x := range coords {
		if x == c {
			return true
		}
	}
	return false
}
