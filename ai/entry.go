package ai

import (
	"encoding/binary"
	"math"

	"github.com/domino14/quoridor/move"
)

// Memo entry layout: a presence flag, the encoded best action, then the
// node's value and final bounds as float64 bits. Fixed width so a decode
// failure can only mean a foreign or corrupt entry.
const entryLength = 1 + move.EncodedLength + 3*8

func encodeEntry(a *move.Action, value, alpha, beta float64) []byte {
	buf := make([]byte, entryLength)
	if a != nil {
		buf[0] = 1
		copy(buf[1:], a.Encode())
	}
	off := 1 + move.EncodedLength
	binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(value))
	binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(alpha))
	binary.LittleEndian.PutUint64(buf[off+16:], math.Float64bits(beta))
	return buf
}

func decodeEntry(buf []byte) (*move.Action, float64, float64, float64, bool) {
	if len(buf) != entryLength {
		return nil, 0, 0, 0, false
	}
	var a *move.Action
	if buf[0] == 1 {
		var err error
		a, err = move.Decode(buf[1 : 1+move.EncodedLength])
		if err != nil {
			return nil, 0, 0, 0, false
		}
	}
	off := 1 + move.EncodedLength
	value := math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
	alpha := math.Float64frombits(binary.LittleEndian.Uint64(buf[off+8:]))
	beta := math.Float64frombits(binary.LittleEndian.Uint64(buf[off+16:]))
	return a, value, alpha, beta, true
}
