package move

import (
	"errors"

	"github.com/domino14/quoridor/board"
)

// Encoded action layout, 6 bytes fixed width:
//
//	byte 0: action type
//	move:   origin row, origin col, dest row, dest col, 0
//	wall:   row, col, orientation (1 = horizontal), owner+1 (0 = none)
//	bomb:   center row, center col, 0, 0
//
// Only the action's identity is encoded; apply-time undo records are not.
// The fixed width keeps memo-table values a stable size across the memory
// and sqlite stores.
const EncodedLength = 6

var ErrBadEncoding = errors.New("malformed action encoding")

func (a *Action) Encode() []byte {
	buf := make([]byte, EncodedLength)
	buf[0] = byte(a.atype)
	switch a.atype {
	case ActionMovePawn:
		buf[1] = byte(a.origin.Row)
		buf[2] = byte(a.origin.Col)
		buf[3] = byte(a.dest.Row)
		buf[4] = byte(a.dest.Col)
	case ActionPlaceWall:
		buf[1] = byte(a.wall.Coord.Row)
		buf[2] = byte(a.wall.Coord.Col)
		if a.wall.Horizontal {
			buf[3] = 1
		}
		buf[4] = byte(a.wall.Owner + 1)
	case ActionPowerBomb:
		buf[1] = byte(a.center.Row)
		buf[2] = byte(a.center.Col)
	}
	return buf
}

func Decode(buf []byte) (*Action, error) {
	if len(buf) < EncodedLength {
		return nil, ErrBadEncoding
	}
	switch ActionType(buf[0]) {
	case ActionMovePawn:
		return NewPawnMove(
			board.C(int(buf[1]), int(buf[2])),
			board.C(int(buf[3]), int(buf[4]))), nil
	case ActionPlaceWall:
		w := board.NewWall(board.C(int(buf[1]), int(buf[2])), buf[3] == 1, int(buf[4])-1)
		return NewWallPlacement(w), nil
	case ActionPowerBomb:
		return NewPowerBomb(board.C(int(buf[1]), int(buf[2]))), nil
	}
	return nil, ErrBadEncoding
}
