package power

import "hexradius/internal/game"

// goodFlags is the "good" subset of PawnFlags that Purify powers clear,
// per spec.md 4.3. Confuse/Bomb/Invisible are left untouched: they are not
// the kind of buff Purify is meant to strip.
const goodFlags = game.FlagShield | game.FlagClimb | game.FlagInfravision | game.FlagJump

func destroyEnemies(s *game.State, actor *game.Pawn, tiles []game.TileHandle) (Outcome, Delta) {
	d := Delta{}
	applied := false
	for _, h := range s.SortedByRowCol(tiles) {
		ph, ok := s.PawnAt(s.Tile(h).Col, s.Tile(h).Row)
		if !ok {
			continue
		}
		target := s.Pawn(ph)
		if target == nil || target.Colour == actor.Colour {
			continue
		}
		if target.Flags.Has(game.FlagShield) {
			target.Flags &^= game.FlagShield
		} else {
			s.DestroyPawn(ph)
		}
		d.Pawns = append(d.Pawns, ph)
		applied = true
	}
	if !applied {
		return Illegal, Delta{}
	}
	return Applied, d
}

func makeDestroy(lineSelector func(s *game.State, actor *game.Pawn) []game.TileHandle) EffectFunc {
	return func(s *game.State, actor *game.Pawn, dir game.Direction, target *game.TileHandle) (Outcome, Delta) {
		return destroyEnemies(s, actor, lineSelector(s, actor))
	}
}

func rowTiles(s *game.State, actor *game.Pawn) []game.TileHandle {
	return s.LineTiles(actor.CurTile, game.DirEastWest)
}

func diagBSTiles(s *game.State, actor *game.Pawn) []game.TileHandle {
	return s.LineTiles(actor.CurTile, game.DirNortheastSouthwest)
}

func diagFSTiles(s *game.State, actor *game.Pawn) []game.TileHandle {
	return s.LineTiles(actor.CurTile, game.DirNorthwestSoutheast)
}

func radialTiles(radius func(*game.Pawn) int) func(*game.State, *game.Pawn) []game.TileHandle {
	return func(s *game.State, actor *game.Pawn) []game.TileHandle {
		return s.RadialTiles(actor.CurTile, radius(actor))
	}
}

func pawnRange(p *game.Pawn) int { return p.Range }

func effectRaise(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
	tile := s.Tile(actor.CurTile)
	if !tile.Raise() {
		return Illegal, Delta{}
	}
	return Applied, Delta{Tiles: []game.TileHandle{actor.CurTile}}
}

func effectLower(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
	tile := s.Tile(actor.CurTile)
	before := tile.Smashed
	if !tile.Lower() && before {
		return Illegal, Delta{}
	}
	return Applied, Delta{Tiles: []game.TileHandle{actor.CurTile}}
}

// makeElevateDig raises (delta=+1) or lowers (delta=-1) every tile in the
// set selected by lineSelector, emitting a tile-animation delta whose
// per-tile delay is proportional to hex distance from the actor, per
// spec.md 4.3.
func makeElevateDig(lineSelector func(*game.State, *game.Pawn) []game.TileHandle, delta int) EffectFunc {
	return func(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
		tiles := s.SortedByRowCol(lineSelector(s, actor))
		center := s.Tile(actor.CurTile)
		d := Delta{Animation: "tile_elevate"}
		applied := false
		for _, h := range tiles {
			t := s.Tile(h)
			if t.SetHeight(t.Height + delta) {
				applied = true
			}
			d.Tiles = append(d.Tiles, h)
			d.DelayFactors = append(d.DelayFactors, game.HexDistance(game.Coord{Col: center.Col, Row: center.Row}, game.Coord{Col: t.Col, Row: t.Row}))
		}
		if !applied {
			return Illegal, Delta{}
		}
		return Applied, d
	}
}

func effectIncreaseRange(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
	if actor.Range >= 3 {
		return Illegal, Delta{}
	}
	actor.Range++
	return Applied, Delta{Pawns: []game.PawnHandle{actor.Handle()}}
}

func makeSetFlagOnce(flag game.PawnFlags) EffectFunc {
	return func(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
		if actor.Flags.Has(flag) {
			return Illegal, Delta{}
		}
		actor.Flags |= flag
		return Applied, Delta{Pawns: []game.PawnHandle{actor.Handle()}}
	}
}

func effectBomb(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
	if actor.Flags.Has(game.FlagBomb) {
		return Illegal, Delta{}
	}
	actor.Flags |= game.FlagBomb
	return Applied, Delta{Pawns: []game.PawnHandle{actor.Handle()}}
}

// effectConfuse is Targeted: target must be an enemy-occupied tile. Per
// SPEC_FULL.md 12's Open Question decision, the server-side USE handler
// (not this effect) is what scrambles the *acting* player's next
// direction bit; this effect only marks the victim.
func effectConfuse(s *game.State, actor *game.Pawn, _ game.Direction, target *game.TileHandle) (Outcome, Delta) {
	if target == nil {
		return Illegal, Delta{}
	}
	ph, ok := s.PawnAt(s.Tile(*target).Col, s.Tile(*target).Row)
	if !ok {
		return Illegal, Delta{}
	}
	victim := s.Pawn(ph)
	if victim == nil || victim.Colour == actor.Colour {
		return Illegal, Delta{}
	}
	victim.Flags |= game.FlagConfused
	return Applied, Delta{Pawns: []game.PawnHandle{ph}}
}

func effectInvisible(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
	if actor.Flags.Has(game.FlagInvisible) {
		return Illegal, Delta{}
	}
	actor.Flags |= game.FlagInvisible
	return Applied, Delta{Pawns: []game.PawnHandle{actor.Handle()}}
}

// effectJump grants FlagJump; the MOVE validator consults
// State.JumpCandidates for the actual long-range relocation (spec.md 4.3,
// 4.4).
func effectJump(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
	if actor.Flags.Has(game.FlagJump) {
		return Illegal, Delta{}
	}
	actor.Flags |= game.FlagJump
	return Applied, Delta{Pawns: []game.PawnHandle{actor.Handle()}}
}

func makePurify(lineSelector func(*game.State, *game.Pawn) []game.TileHandle) EffectFunc {
	return func(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
		d := Delta{}
		applied := false
		for _, h := range s.SortedByRowCol(lineSelector(s, actor)) {
			ph, ok := s.PawnAt(s.Tile(h).Col, s.Tile(h).Row)
			if !ok {
				continue
			}
			p := s.Pawn(ph)
			if p.Flags&goodFlags == 0 {
				continue
			}
			p.Flags &^= goodFlags
			d.Pawns = append(d.Pawns, ph)
			applied = true
		}
		if !applied {
			return Illegal, Delta{}
		}
		return Applied, d
	}
}

// effectTeleport implements spec.md 4.3's Teleport: a random same-colour
// landing pad, or a uniformly random empty tile if none exist.
func effectTeleport(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
	pad, ok := s.RandomTile(func(t *game.Tile) bool {
		return t.HasLandingPad && t.LandingPadColour == actor.Colour && t.Pawn == game.InvalidHandle
	})
	if !ok {
		pad, ok = s.RandomTile(func(t *game.Tile) bool {
			return t.Pawn == game.InvalidHandle && !t.Smashed && !t.HasBlackHole
		})
	}
	if !ok {
		return Illegal, Delta{}
	}
	from := actor.CurTile
	s.MovePawn(actor.Handle(), pad)
	return Applied, Delta{
		Tiles:     []game.TileHandle{from, pad},
		Pawns:     []game.PawnHandle{actor.Handle()},
		Relocated: map[game.PawnHandle]game.TileHandle{actor.Handle(): from},
	}
}

// wallTiles is the shared body of wall_row/wall_column, grounded on the
// original OctRadius wall_tiles: raises every tile in the set to the
// ceiling instantly, unlike Elevate's +1-per-use adjustment.
func wallTiles(s *game.State, tiles []game.TileHandle) (Outcome, Delta) {
	d := Delta{}
	applied := false
	for _, h := range s.SortedByRowCol(tiles) {
		t := s.Tile(h)
		if t.Height != 2 {
			t.SetHeight(2)
			applied = true
		}
		d.Tiles = append(d.Tiles, h)
	}
	if !applied {
		return Illegal, Delta{}
	}
	return Applied, d
}

// effectWallRow is a supplemented power (SPEC_FULL.md 11), grounded on the
// original OctRadius wall_row, which calls wall_tiles(pawn->RowList()).
func effectWallRow(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
	return wallTiles(s, rowTiles(s, actor))
}

// effectWallColumn is wall_row's counterpart, grounded on the original's
// wall_column (wall_tiles(pawn->ColumnList())). The original's square grid
// has row and column as its two straight axes; on HexRadius's hex grid the
// row axis is DirEastWest and the two remaining straight axes are the
// diagonals, so wall_column takes over the DirNortheastSouthwest axis the
// same way destroy_diagonal_bs/elevate_diagonal_bs already stand in for a
// second straight-line axis distinct from the row.
func effectWallColumn(s *game.State, actor *game.Pawn, _ game.Direction, _ *game.TileHandle) (Outcome, Delta) {
	return wallTiles(s, diagBSTiles(s, actor))
}

// Catalogue is the closed set of powers HexRadius implements. New powers
// are added by appending an entry here (spec.md 9's "closed variant set
// plus dispatch", realized as a table of closures).
var Catalogue = []Def{
	{ID: "destroy_row", Name: "Destroy Row", DirectionMask: game.DirEastWest, SpawnWeight: 6, Effect: makeDestroy(rowTiles)},
	{ID: "destroy_radial", Name: "Destroy Radial", DirectionMask: game.DirRadial, SpawnWeight: 6, Effect: makeDestroy(radialTiles(pawnRange))},
	{ID: "destroy_diagonal_bs", Name: "Destroy Diagonal \\", DirectionMask: game.DirNortheastSouthwest, SpawnWeight: 6, Effect: makeDestroy(diagBSTiles)},
	{ID: "destroy_diagonal_fs", Name: "Destroy Diagonal /", DirectionMask: game.DirNorthwestSoutheast, SpawnWeight: 6, Effect: makeDestroy(diagFSTiles)},

	{ID: "raise", Name: "Raise", DirectionMask: game.DirUndirected, SpawnWeight: 8, Effect: effectRaise},
	{ID: "lower", Name: "Lower", DirectionMask: game.DirUndirected, SpawnWeight: 8, Effect: effectLower},

	{ID: "elevate_row", Name: "Elevate Row", DirectionMask: game.DirEastWest, SpawnWeight: 4, Effect: makeElevateDig(rowTiles, 1)},
	{ID: "elevate_radial", Name: "Elevate Radial", DirectionMask: game.DirRadial, SpawnWeight: 4, Effect: makeElevateDig(radialTiles(pawnRange), 1)},
	{ID: "elevate_diagonal_bs", Name: "Elevate Diagonal \\", DirectionMask: game.DirNortheastSouthwest, SpawnWeight: 4, Effect: makeElevateDig(diagBSTiles, 1)},
	{ID: "elevate_diagonal_fs", Name: "Elevate Diagonal /", DirectionMask: game.DirNorthwestSoutheast, SpawnWeight: 4, Effect: makeElevateDig(diagFSTiles, 1)},

	{ID: "dig_row", Name: "Dig Row", DirectionMask: game.DirEastWest, SpawnWeight: 4, Effect: makeElevateDig(rowTiles, -1)},
	{ID: "dig_radial", Name: "Dig Radial", DirectionMask: game.DirRadial, SpawnWeight: 4, Effect: makeElevateDig(radialTiles(pawnRange), -1)},
	{ID: "dig_diagonal_bs", Name: "Dig Diagonal \\", DirectionMask: game.DirNortheastSouthwest, SpawnWeight: 4, Effect: makeElevateDig(diagBSTiles, -1)},
	{ID: "dig_diagonal_fs", Name: "Dig Diagonal /", DirectionMask: game.DirNorthwestSoutheast, SpawnWeight: 4, Effect: makeElevateDig(diagFSTiles, -1)},

	{ID: "increase_range", Name: "Increase Range", DirectionMask: game.DirUndirected, SpawnWeight: 6, Effect: effectIncreaseRange},
	{ID: "climb", Name: "Climb", DirectionMask: game.DirUndirected, SpawnWeight: 6, Effect: makeSetFlagOnce(game.FlagClimb)},
	{ID: "shield", Name: "Shield", DirectionMask: game.DirUndirected, SpawnWeight: 8, Effect: makeSetFlagOnce(game.FlagShield)},
	{ID: "infravision", Name: "Infravision", DirectionMask: game.DirUndirected, SpawnWeight: 5, Effect: makeSetFlagOnce(game.FlagInfravision)},
	{ID: "bomb", Name: "Bomb", DirectionMask: game.DirUndirected, SpawnWeight: 3, Effect: effectBomb},
	{ID: "confuse", Name: "Confuse", DirectionMask: game.DirTargeted, SpawnWeight: 4, Effect: effectConfuse},
	{ID: "invisible", Name: "Invisible", DirectionMask: game.DirUndirected, SpawnWeight: 4, Effect: effectInvisible},
	{ID: "jump", Name: "Jump", DirectionMask: game.DirUndirected, SpawnWeight: 5, Effect: effectJump},

	{ID: "purify_row", Name: "Purify Row", DirectionMask: game.DirEastWest, SpawnWeight: 3, Effect: makePurify(rowTiles)},
	{ID: "purify_radial", Name: "Purify Radial", DirectionMask: game.DirRadial, SpawnWeight: 3, Effect: makePurify(radialTiles(pawnRange))},
	{ID: "purify_diagonal_bs", Name: "Purify Diagonal \\", DirectionMask: game.DirNortheastSouthwest, SpawnWeight: 3, Effect: makePurify(diagBSTiles)},
	{ID: "purify_diagonal_fs", Name: "Purify Diagonal /", DirectionMask: game.DirNorthwestSoutheast, SpawnWeight: 3, Effect: makePurify(diagFSTiles)},

	{ID: "teleport", Name: "Teleport", DirectionMask: game.DirUndirected, SpawnWeight: 5, Effect: effectTeleport},

	{ID: "wall_row", Name: "Wall Row", DirectionMask: game.DirEastWest, SpawnWeight: 2, Effect: effectWallRow},
	{ID: "wall_column", Name: "Wall Column", DirectionMask: game.DirNortheastSouthwest, SpawnWeight: 2, Effect: effectWallColumn},
}
