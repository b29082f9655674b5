package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func smallBoard() *State {
	s := NewState(false, false, 1)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			s.AddTile(col, row)
		}
	}
	return s
}

func TestTileAtAndPawnAt(t *testing.T) {
	s := smallBoard()
	h, ok := s.TileAt(1, 1)
	require.True(t, ok, "tile should exist at (1,1)")

	_, ok = s.PawnAt(1, 1)
	require.False(t, ok, "no pawn should be present yet")

	ph := s.SpawnPawn(Red, h)
	found, ok := s.PawnAt(1, 1)
	require.True(t, ok, "pawn should be found after spawn")
	require.Equal(t, ph, found, "pawn_at should return the spawned handle")
}

func TestMovePawnUpdatesBothTiles(t *testing.T) {
	s := smallBoard()
	from, _ := s.TileAt(0, 0)
	to, _ := s.TileAt(1, 0)
	ph := s.SpawnPawn(Blue, from)

	s.MovePawn(ph, to)

	_, ok := s.PawnAt(0, 0)
	require.False(t, ok, "old tile should be vacated")
	found, ok := s.PawnAt(1, 0)
	require.True(t, ok, "new tile should hold the pawn")
	require.Equal(t, ph, found)
	require.Equal(t, to, s.Pawn(ph).CurTile, "cur_tile must follow the move")
}

func TestDestroyPawnIsTerminal(t *testing.T) {
	s := smallBoard()
	tile, _ := s.TileAt(0, 0)
	ph := s.SpawnPawn(Green, tile)

	s.DestroyPawn(ph)

	require.Nil(t, s.Pawn(ph), "destroyed pawn must not be returned by Pawn()")
	_, ok := s.PawnAt(0, 0)
	require.False(t, ok, "destroyed pawn's tile must be vacated")
}

func TestRaiseLowerRoundTrip(t *testing.T) {
	s := smallBoard()
	h, _ := s.TileAt(0, 0)
	tile := s.Tile(h)

	require.True(t, tile.Raise())
	require.True(t, tile.Lower())
	require.Equal(t, 0, tile.Height, "raise then lower should restore height")
}

func TestRaiseAtCeilingIsIllegal(t *testing.T) {
	s := smallBoard()
	h, _ := s.TileAt(0, 0)
	tile := s.Tile(h)
	tile.Height = 2

	require.False(t, tile.Raise(), "raising at height 2 must be illegal")
	require.Equal(t, 2, tile.Height)
}

func TestLowerAtUnsmashedFloorSmashesAndApplies(t *testing.T) {
	s := smallBoard()
	h, _ := s.TileAt(0, 0)
	tile := s.Tile(h)
	tile.Height = -2 // scenario-loaded at the floor without Smashed set

	require.True(t, tile.Lower(), "lowering an unsmashed tile already at height -2 must still count as a real change")
	require.True(t, tile.Smashed)
	require.Equal(t, -2, tile.Height)
}

func TestLowerAtAlreadySmashedFloorIsIllegal(t *testing.T) {
	s := smallBoard()
	h, _ := s.TileAt(0, 0)
	tile := s.Tile(h)
	tile.Height = -2
	tile.Smashed = true

	require.False(t, tile.Lower(), "lowering an already-smashed floor tile again is Illegal")
	require.True(t, tile.Smashed)
}

func TestRadialTiles(t *testing.T) {
	s := smallBoard()
	center, _ := s.TileAt(1, 1)

	within := s.RadialTiles(center, 1)
	require.NotEmpty(t, within)
	for _, h := range within {
		tile := s.Tile(h)
		require.LessOrEqual(t, HexDistance(Coord{1, 1}, Coord{tile.Col, tile.Row}), 1)
	}
}

func TestLinearTilesStopsAtBoardEdgeWithoutWrap(t *testing.T) {
	s := smallBoard()
	from, _ := s.TileAt(0, 1)

	line := s.LinearTiles(from, DirEast)
	require.Len(t, line, 2, "should walk east across the remaining two columns")
}

func TestLinearTilesFollowsWrap(t *testing.T) {
	s := smallBoard()
	east, _ := s.TileAt(2, 1)
	west, _ := s.TileAt(0, 1)
	s.Tile(east).Wrap |= WrapEast
	s.Tile(west).Wrap |= WrapWest

	from, _ := s.TileAt(1, 1)
	line := s.LinearTiles(from, DirEast)
	require.Contains(t, line, west, "wrap edge should relocate traversal to the matching edge")
}

func TestRandomTilesWithoutReplacement(t *testing.T) {
	s := smallBoard()
	picked := s.RandomTiles(func(t *Tile) bool { return true }, 4)
	require.Len(t, picked, 4)

	seen := make(map[TileHandle]bool)
	for _, h := range picked {
		require.False(t, seen[h], "random tiles must be drawn without replacement")
		seen[h] = true
	}
}

func TestCheckInvariantsCatchesBrokenBackReference(t *testing.T) {
	s := smallBoard()
	tile, _ := s.TileAt(0, 0)
	s.SpawnPawn(Red, tile)

	other, _ := s.TileAt(1, 0)
	s.Tile(other).Pawn = s.Tile(tile).Pawn // corrupt: two tiles claim the same pawn

	require.ErrorIs(t, s.CheckInvariants(), ErrInvariantViolated)
}
