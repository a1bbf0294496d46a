// Package shell is the interactive front end: a readline loop that hosts a
// game between the human and the engine, with live progress display while
// the engine thinks.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/quoridor/ai"
	"github.com/domino14/quoridor/board"
	"github.com/domino14/quoridor/cache"
	"github.com/domino14/quoridor/config"
	"github.com/domino14/quoridor/game"
	"github.com/domino14/quoridor/move"
)

var errExit = errors.New("sentinel: exit")

type ShellController struct {
	l   *readline.Instance
	cfg *config.Config

	g      *game.Game
	solver *ai.Solver

	memo      cache.Store
	memoClose func() error
}

func NewShellController(cfg *config.Config) (*ShellController, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "quoridor> ",
		HistoryFile:     "/tmp/readline-quoridor.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	sc := &ShellController{l: l, cfg: cfg}
	if err := sc.newGame(cfg.Level); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *ShellController) showMessage(msg string) {
	log.Info().Msg(msg)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) newGame(level int) error {
	settings := config.SettingsForLevel(level)
	g, err := game.NewGame(game.Rules{
		Rows:           settings.Rows,
		Cols:           settings.Cols,
		WallsPerPlayer: settings.WallsPerPlayer,
		BombsPerPlayer: sc.cfg.BombsPerPlayer,
		NumPlayers:     sc.cfg.NumPlayers,
	})
	if err != nil {
		return err
	}
	sc.cfg.Level = level
	sc.g = g

	if sc.memoClose != nil {
		sc.memoClose()
		sc.memoClose = nil
	}
	if sc.cfg.PersistentCache {
		store, err := cache.NewSQLiteStore(sc.cfg.CachePath)
		if err != nil {
			log.Warn().Err(err).Msg("persistent-cache-unavailable; using memory")
			sc.memo = cache.NewMemStore()
		} else {
			sc.memo = store
			sc.memoClose = store.Close
		}
	} else {
		sc.memo = cache.NewMemStore()
	}

	sc.solver = ai.NewSolver(g, level, sc.memo, sc.cfg.PersistentCache)
	if sc.cfg.Seed != "" {
		sc.solver.SetSeed([]byte(sc.cfg.Seed))
	}
	return nil
}

// Loop runs the REPL until exit or EOF.
func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	sc.showMessage(sc.g.ToDisplayText())
	for {
		line, err := sc.l.Readline()
		switch err {
		case readline.ErrInterrupt:
			if len(line) == 0 {
				sig <- os.Interrupt
				return
			}
			continue
		case io.EOF:
			sig <- os.Interrupt
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := sc.execLine(line); err != nil {
			if errors.Is(err, errExit) {
				sig <- os.Interrupt
				return
			}
			sc.showError(err)
		}
	}
}

func (sc *ShellController) execLine(line string) error {
	fields, err := shellquote.Split(line)
	if err != nil {
		return err
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "new":
		return sc.handleNew(args)
	case "show", "s":
		sc.showMessage(sc.g.ToDisplayText())
		return nil
	case "move", "m":
		return sc.handleMove(args)
	case "wall", "w":
		return sc.handleWall(args)
	case "bomb", "b":
		return sc.handleBomb(args)
	case "ai":
		return sc.handleEngineTurn()
	case "set":
		return sc.handleSet(args)
	case "help", "?":
		usage(sc)
		return nil
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("command %v not found", cmd)
	}
}

func usage(sc *ShellController) {
	sc.showMessage(`Commands:
  new [level]       start a new game (board size follows the level)
  show              redraw the board
  move <row> <col>  move your pawn
  wall <row> <col> <h|v>
                    place a wall with its top-left corner at row,col
  bomb [row col]    detonate a power bomb (default: at your pawn)
  ai                let the engine take the turn for the pawn on turn
  set level <n>     change the engine's search depth
  exit              quit`)
}

func (sc *ShellController) handleNew(args []string) error {
	level := sc.cfg.Level
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		level = n
	}
	if err := sc.newGame(level); err != nil {
		return err
	}
	sc.showMessage(sc.g.ToDisplayText())
	return nil
}

func (sc *ShellController) handleSet(args []string) error {
	if len(args) != 2 || args[0] != "level" {
		return errors.New("usage: set level <n>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	sc.cfg.Level = n
	sc.solver.SetLevel(n)
	sc.showMessage("level set to " + args[1])
	return nil
}

func parseCoord(args []string) (board.Coord, error) {
	if len(args) < 2 {
		return board.Coord{}, errors.New("need a row and a column")
	}
	r, err := strconv.Atoi(args[0])
	if err != nil {
		return board.Coord{}, err
	}
	c, err := strconv.Atoi(args[1])
	if err != nil {
		return board.Coord{}, err
	}
	return board.C(r, c), nil
}

func (sc *ShellController) handleMove(args []string) error {
	dest, err := parseCoord(args)
	if err != nil {
		return err
	}
	p := sc.g.PlayerOnTurn()
	a := move.NewPawnMove(p.Coord(), dest)
	return sc.commit(a)
}

func (sc *ShellController) handleWall(args []string) error {
	c, err := parseCoord(args)
	if err != nil {
		return err
	}
	if len(args) < 3 || (args[2] != "h" && args[2] != "v") {
		return errors.New("usage: wall <row> <col> <h|v>")
	}
	w := board.NewWall(c, args[2] == "h", sc.g.OnTurn())
	if !sc.g.CanPlaceWall(w) {
		return errors.New("illegal wall placement")
	}
	return sc.commit(move.NewWallPlacement(w))
}

func (sc *ShellController) handleBomb(args []string) error {
	p := sc.g.PlayerOnTurn()
	center := p.Coord()
	if len(args) >= 2 {
		c, err := parseCoord(args)
		if err != nil {
			return err
		}
		center = c
	}
	if p.PowerBombs() <= 0 {
		return errors.New("no power bombs left")
	}
	return sc.commit(move.NewPowerBomb(center))
}

// commit applies an action to the live game, records the resulting state
// for the engine's loop detection, and advances the turn.
func (sc *ShellController) commit(a *move.Action) error {
	if err := sc.g.PlayAction(a); err != nil {
		return err
	}
	sc.solver.RecordCommitted(sc.g.StateKey())
	if w := sc.g.Winner(); w != nil {
		sc.showMessage(sc.g.ToDisplayText())
		sc.showMessage(fmt.Sprintf("pawn %d wins!", w.ID()))
		return nil
	}
	sc.g.NextPlayer()
	sc.showMessage(sc.g.ToDisplayText())
	return nil
}

// handleEngineTurn runs the solver for the pawn on turn, displaying its
// progress fraction while the search runs.
func (sc *ShellController) handleEngineTurn() error {
	p := sc.g.PlayerOnTurn()
	ctx, cancel := context.WithCancel(context.Background())
	eg, _ := errgroup.WithContext(ctx)

	var best *move.Action
	var value float64
	var solveErr error
	eg.Go(func() error {
		defer cancel()
		best, value, _, solveErr = sc.solver.Solve()
		return solveErr
	})
	eg.Go(func() error {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				fmt.Printf("  thinking... %3.0f%%\r", p.Progress()*100)
			}
		}
	})
	if err := eg.Wait(); err != nil {
		return err
	}
	fmt.Print("                      \r")
	sc.showMessage(fmt.Sprintf("engine plays: %s (value %.3f)", best.ShortDescription(), value))
	return sc.commit(best)
}
