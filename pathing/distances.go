package pathing

import (
	"encoding/binary"
	"strconv"

	"github.com/cespare/xxhash"

	"github.com/domino14/quoridor/board"
	"github.com/domino14/quoridor/cache"
)

// Distances is one pawn's handle into the shortest-path engine. It tracks
// the pawn's current origin, recomputes lazily, and memoizes results by
// (origin, wall bitmap) — the only board content that affects reachability.
//
// PushState/PopState give the search a LIFO stack of hypothetical states so
// a frame can score many wall configurations and roll back to its entry
// state without a BFS per rollback.
type Distances struct {
	b      *board.GameBoard
	origin board.Coord
	goals  []board.Coord

	dist  int
	path  []board.Coord
	dirty bool

	stack []snapshot
	store cache.Store
}

type snapshot struct {
	origin board.Coord
	dist   int
	path   []board.Coord
	dirty  bool
}

// NewDistances creates a handle for a pawn at origin aiming for goals. The
// store may be nil to disable memoization.
func NewDistances(b *board.GameBoard, origin board.Coord, goals []board.Coord, store cache.Store) *Distances {
	return &Distances{
		b:      b,
		origin: origin,
		goals:  goals,
		dirty:  true,
		store:  store,
	}
}

// Rebind attaches the handle to a different board. The memo store is
// shared; its keys depend only on origin and wall bitmap, never on board
// identity.
func (d *Distances) Rebind(b *board.GameBoard) {
	d.b = b
	d.dirty = true
}

// Copy returns an isolated handle for the same pawn, rebound to b and
// sharing the memo store. Used when a game is deep-copied for search.
func (d *Distances) Copy(b *board.GameBoard) *Distances {
	nd := &Distances{origin: d.origin, goals: d.goals, store: d.store}
	nd.Rebind(b)
	return nd
}

// Locate moves the origin, typically after the pawn itself moves.
func (d *Distances) Locate(c board.Coord) {
	if d.origin == c {
		return
	}
	d.origin = c
	d.dirty = true
}

// Invalidate marks the cached result stale. Called after any wall mutation.
func (d *Distances) Invalidate() {
	d.dirty = true
}

// Update recomputes the shortest path if anything changed since the last
// computation. It consults the memo store first.
func (d *Distances) Update() {
	if !d.dirty {
		return
	}
	d.dirty = false
	key := d.memoKey()
	if d.store != nil {
		if v, ok := d.store.Get(key); ok {
			if dist, path, ok := decodeDistances(v); ok {
				d.dist, d.path = dist, path
				return
			}
			// A corrupt entry is a miss; overwrite it below.
			d.store.Delete(key)
		}
	}
	d.dist, d.path = Search(d.b, d.origin, d.goals)
	if d.store != nil {
		d.store.Set(key, encodeDistances(d.dist, d.path))
	}
}

// ShortestPathLen returns the number of moves to the nearest goal cell, or
// Unreachable if every goal is cut off.
func (d *Distances) ShortestPathLen() int {
	d.Update()
	return d.dist
}

// ShortestPath returns one witness shortest path, origin through goal. The
// slice is owned by the handle; callers must not mutate it.
func (d *Distances) ShortestPath() []board.Coord {
	d.Update()
	return d.path
}

// PushState saves the current state for later rollback.
func (d *Distances) PushState() {
	d.stack = append(d.stack, snapshot{
		origin: d.origin,
		dist:   d.dist,
		path:   d.path,
		dirty:  d.dirty,
	})
}

// PopState undoes exactly the most recent unpopped PushState. Popping an
// empty stack is a discipline violation and panics.
func (d *Distances) PopState() {
	if len(d.stack) == 0 {
		panic("pathing: PopState without matching PushState")
	}
	top := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	d.origin = top.origin
	d.dist = top.dist
	d.path = top.path
	d.dirty = top.dirty
}

// CleanMemo drops every memoized entry except the one for the current
// configuration. Entries for hypothetical wall layouts from the finished
// search are unreachable until re-derived, so they are only holding memory.
func (d *Distances) CleanMemo() {
	if d.store == nil {
		return
	}
	d.Update()
	keep := d.memoKey()
	for _, k := range d.store.Keys() {
		if k != keep {
			d.store.Delete(k)
		}
	}
}

// memoKey hashes (origin, wall bitmap) to a compact string key.
func (d *Distances) memoKey() string {
	bm := d.b.WallBitmap()
	buf := make([]byte, 2, 2+len(bm))
	buf[0] = byte(d.origin.Row)
	buf[1] = byte(d.origin.Col)
	buf = append(buf, bm...)
	return strconv.FormatUint(xxhash.Sum64(buf), 16)
}

// Memo value layout: int32 distance, then the path as (row, col) byte
// pairs. An Unreachable distance encodes with an empty path.
func encodeDistances(dist int, path []board.Coord) []byte {
	buf := make([]byte, 4+2*len(path))
	binary.LittleEndian.PutUint32(buf, uint32(dist))
	for i, c := range path {
		buf[4+2*i] = byte(c.Row)
		buf[4+2*i+1] = byte(c.Col)
	}
	return buf
}

func decodeDistances(buf []byte) (int, []board.Coord, bool) {
	if len(buf) < 4 || (len(buf)-4)%2 != 0 {
		return 0, nil, false
	}
	dist := int(int32(binary.LittleEndian.Uint32(buf)))
	n := (len(buf) - 4) / 2
	path := make([]board.Coord, n)
	for i := 0; i < n; i++ {
		path[i] = board.C(int(buf[4+2*i]), int(buf[4+2*i+1]))
	}
	if n == 0 {
		path = nil
	}
	return dist, path, true
}
