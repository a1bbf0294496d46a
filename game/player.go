package game

import (
	"math"
	"sync/atomic"

	"github.com/domino14/quoridor/board"
	"github.com/domino14/quoridor/pathing"
)

// historyLength bounds the per-pawn record of recently occupied cells. The
// generator penalizes moves back into these cells to discourage oscillating
// loops.
const historyLength = 4

// A Pawn is one player's piece plus its bounded resources: walls left to
// place and power bombs left to detonate. It owns a Distances handle for
// its goal set and an advisory progress cell the search publishes to while
// a decision is being computed.
type Pawn struct {
	id         int
	coord      board.Coord
	walls      int
	powerBombs int
	goals      []board.Coord
	goalSet    map[board.Coord]bool
	distances  *pathing.Distances

	history []board.Coord

	// progress is the search's advisory completion fraction in [0, 1],
	// stored as float64 bits. Single writer (the search), single reader
	// (whatever displays it); the atomic gives defined visibility with no
	// ordering guarantee beyond that.
	progress atomic.Uint64
}

func (p *Pawn) ID() int                       { return p.id }
func (p *Pawn) Coord() board.Coord            { return p.coord }
func (p *Pawn) Walls() int                    { return p.walls }
func (p *Pawn) PowerBombs() int               { return p.powerBombs }
func (p *Pawn) Goals() []board.Coord          { return p.goals }
func (p *Pawn) Distances() *pathing.Distances { return p.distances }

// IsGoal reports whether c is in the pawn's goal set.
func (p *Pawn) IsGoal(c board.Coord) bool {
	return p.goalSet[c]
}

// AtGoal reports whether the pawn has reached its goal.
func (p *Pawn) AtGoal() bool {
	return p.goalSet[p.coord]
}

// SetProgress publishes the advisory search completion fraction.
func (p *Pawn) SetProgress(f float64) {
	p.progress.Store(math.Float64bits(f))
}

// Progress reads the advisory search completion fraction.
func (p *Pawn) Progress() float64 {
	return math.Float64frombits(p.progress.Load())
}

// RecentlyVisited returns a recency score for c: 0 if c is not in the
// pawn's recent history, otherwise higher the more recently it was left.
func (p *Pawn) RecentlyVisited(c board.Coord) int {
	for i, h := range p.history {
		if h == c {
			return i + 1
		}
	}
	return 0
}

func (p *Pawn) pushHistory(c board.Coord) {
	p.history = append(p.history, c)
	if len(p.history) > historyLength {
		p.history = p.history[1:]
	}
}

func (p *Pawn) popHistory() {
	if len(p.history) > 0 {
		p.history = p.history[:len(p.history)-1]
	}
}

// copy duplicates the pawn's game-relevant state. The goal set is immutable
// and shared; the progress cell is deliberately not copied — only the live
// pawn is observed.
func (p *Pawn) copy() *Pawn {
	return &Pawn{
		id:         p.id,
		coord:      p.coord,
		walls:      p.walls,
		powerBombs: p.powerBombs,
		goals:      p.goals,
		goalSet:    p.goalSet,
		history:    append([]board.Coord(nil), p.history...),
	}
}
