package visibility

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hexradius/internal/game"
)

func fogBoard() *game.State {
	s := game.NewState(true, false, 3)
	for row := 0; row < 7; row++ {
		for col := 0; col < 7; col++ {
			s.AddTile(col, row)
		}
	}
	return s
}

func TestFilterWithoutFogOfWarSeesEverything(t *testing.T) {
	s := game.NewState(false, false, 1)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			s.AddTile(col, row)
		}
	}
	view := Filter(s, game.Red)
	require.Len(t, view.Tiles, 9)
}

func TestFilterRestrictsToRangePlusOne(t *testing.T) {
	s := fogBoard()
	center, _ := s.TileAt(3, 3)
	s.SpawnPawn(game.Red, center)

	view := Filter(s, game.Red)

	near, _ := s.TileAt(3, 4)
	far, _ := s.TileAt(6, 6)
	require.True(t, view.TileVisible(near))
	require.False(t, view.TileVisible(far))
}

func TestFilterOmitsPawnOnHiddenTile(t *testing.T) {
	s := fogBoard()
	redTile, _ := s.TileAt(0, 0)
	s.SpawnPawn(game.Red, redTile)
	farTile, _ := s.TileAt(6, 6)
	enemy := s.SpawnPawn(game.Blue, farTile)

	view := Filter(s, game.Red)
	require.False(t, view.PawnVisible(enemy))
}

func TestFilterHidesInvisibleEnemyPawn(t *testing.T) {
	s := fogBoard()
	redTile, _ := s.TileAt(3, 3)
	s.SpawnPawn(game.Red, redTile)
	adjacent, _ := s.TileAt(3, 4)
	enemyH := s.SpawnPawn(game.Blue, adjacent)
	s.Pawn(enemyH).Flags |= game.FlagInvisible

	view := Filter(s, game.Red)
	require.True(t, view.TileVisible(adjacent), "the tile itself is still visible")
	require.False(t, view.PawnVisible(enemyH), "an invisible enemy pawn is omitted")
}

func TestFilterRevealsInvisiblePawnToOwnColour(t *testing.T) {
	s := fogBoard()
	tile, _ := s.TileAt(3, 3)
	ownH := s.SpawnPawn(game.Red, tile)
	s.Pawn(ownH).Flags |= game.FlagInvisible

	view := Filter(s, game.Red)
	require.True(t, view.PawnVisible(ownH))
}

func TestFilterOwnedEyeExtendsVisibility(t *testing.T) {
	s := fogBoard()
	redTile, _ := s.TileAt(0, 0)
	s.SpawnPawn(game.Red, redTile)

	eyeTile, _ := s.TileAt(6, 6)
	s.Tile(eyeTile).HasEye = true
	s.Tile(eyeTile).EyeColour = game.Red

	view := Filter(s, game.Red)
	require.True(t, view.TileVisible(eyeTile), "an owned eye's own tile is visible")
	neighbor, _ := s.TileAt(5, 6)
	require.True(t, view.TileVisible(neighbor), "an owned eye reveals its radius-1 neighborhood")
}

func TestSpectateSeesEverythingIncludingInvisible(t *testing.T) {
	s := fogBoard()
	tile, _ := s.TileAt(0, 0)
	h := s.SpawnPawn(game.Blue, tile)
	s.Pawn(h).Flags |= game.FlagInvisible

	view := Filter(s, game.Spectate)
	require.True(t, view.PawnVisible(h))
}
