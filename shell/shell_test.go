package shell

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/quoridor/board"
)

func TestParseCoord(t *testing.T) {
	is := is.New(t)
	c, err := parseCoord([]string{"3", "5"})
	is.NoErr(err)
	is.Equal(c, board.C(3, 5))

	_, err = parseCoord([]string{"3"})
	is.True(err != nil)
	_, err = parseCoord([]string{"x", "5"})
	is.True(err != nil)
	_, err = parseCoord([]string{"3", "y"})
	is.True(err != nil)
}
