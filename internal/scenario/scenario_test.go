package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hexradius/internal/game"
)

const validYAML = `
fog_of_war: false
king_of_the_hill: false
colours: [RED, BLUE]
tiles:
  - {col: 0, row: 0, height: 0}
  - {col: 1, row: 0, height: 1}
  - {col: 0, row: 1, height: -1}
pawns:
  - {col: 0, row: 0, colour: RED}
  - {col: 1, row: 0, colour: BLUE}
`

func TestParseValidScenario(t *testing.T) {
	sc, err := Parse([]byte(validYAML), 1)
	require.NoError(t, err)
	require.True(t, sc.Colours[game.Red])
	require.True(t, sc.Colours[game.Blue])

	th, ok := sc.State.TileAt(1, 0)
	require.True(t, ok)
	require.Equal(t, 1, sc.State.Tile(th).Height)

	_, ok = sc.State.PawnAt(0, 0)
	require.True(t, ok, "RED pawn should be placed at (0,0)")
}

func TestParseRejectsUnknownKey(t *testing.T) {
	bad := validYAML + "\nunknown_top_level_key: true\n"
	_, err := Parse([]byte(bad), 1)
	require.ErrorIs(t, err, ErrMalformedScenario)
}

func TestParseRejectsOutOfRangeHeight(t *testing.T) {
	bad := `
colours: [RED]
tiles:
  - {col: 0, row: 0, height: 5}
`
	_, err := Parse([]byte(bad), 1)
	require.ErrorIs(t, err, ErrMalformedScenario)
}

func TestParseRejectsDuplicateCoordinate(t *testing.T) {
	bad := `
colours: [RED]
tiles:
  - {col: 0, row: 0, height: 0}
  - {col: 0, row: 0, height: 1}
`
	_, err := Parse([]byte(bad), 1)
	require.ErrorIs(t, err, ErrMalformedScenario)
}

func TestParseRejectsPawnOnNonexistentTile(t *testing.T) {
	bad := `
colours: [RED]
tiles:
  - {col: 0, row: 0, height: 0}
pawns:
  - {col: 9, row: 9, colour: RED}
`
	_, err := Parse([]byte(bad), 1)
	require.ErrorIs(t, err, ErrMalformedScenario)
}

func TestParseRejectsHillWithoutKingOfTheHill(t *testing.T) {
	bad := `
king_of_the_hill: false
colours: [RED]
tiles:
  - {col: 0, row: 0, height: 0, hill: true}
`
	_, err := Parse([]byte(bad), 1)
	require.ErrorIs(t, err, ErrMalformedScenario)
}

func TestParseRejectsPawnColourNotInColoursList(t *testing.T) {
	bad := `
colours: [RED]
tiles:
  - {col: 0, row: 0, height: 0}
pawns:
  - {col: 0, row: 0, colour: BLUE}
`
	_, err := Parse([]byte(bad), 1)
	require.ErrorIs(t, err, ErrMalformedScenario)
}

func TestParseAppliesWrapEdges(t *testing.T) {
	withWrap := `
colours: [RED]
tiles:
  - {col: 0, row: 0, height: 0, wrap: [W]}
  - {col: 2, row: 0, height: 0, wrap: [E]}
`
	sc, err := Parse([]byte(withWrap), 1)
	require.NoError(t, err)

	west, _ := sc.State.TileAt(0, 0)
	east, _ := sc.State.TileAt(2, 0)
	require.True(t, sc.State.Tile(west).Wrap.Has(game.WrapWest))
	require.True(t, sc.State.Tile(east).Wrap.Has(game.WrapEast))
}
