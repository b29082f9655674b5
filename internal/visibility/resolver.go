// Package visibility computes the per-observer fog-of-war filter spec.md
// 4.7 describes, grounded on internal/game's query surface
// (RadialTiles/LinearTiles/AllPawns) the same way the teacher's UI layer
// composes lower-level models package queries into a presentation-ready
// view, rather than duplicating traversal logic here.
package visibility

import "hexradius/internal/game"

// View is the subset of the board an observer is permitted to see, ready
// to be projected into a wire.UpdatePayload/BeginPayload by
// internal/server.
type View struct {
	Tiles map[game.TileHandle]bool
	Pawns map[game.PawnHandle]bool
}

func (v View) TileVisible(h game.TileHandle) bool { return v.Tiles[h] }
func (v View) PawnVisible(h game.PawnHandle) bool { return v.Pawns[h] }

// Filter computes the View for a single observing colour, per spec.md 4.7.
// SPECTATE always sees everything.
func Filter(s *game.State, observer game.Colour) View {
	view := View{Tiles: make(map[game.TileHandle]bool), Pawns: make(map[game.PawnHandle]bool)}

	if !s.FogOfWar || observer == game.Spectate {
		for _, h := range s.AllTiles() {
			view.Tiles[h] = true
		}
		for _, h := range s.AllPawns() {
			if visibleToObserver(s, observer, h) {
				view.Pawns[h] = true
			}
		}
		return view
	}

	ownPawns := s.PlayerPawns(observer)
	for _, ph := range ownPawns {
		p := s.Pawn(ph)
		for _, h := range s.RadialTiles(p.CurTile, p.Range+1) {
			view.Tiles[h] = true
		}
		if p.Flags.Has(game.FlagInfravision) {
			addInfravisionLines(s, p, view.Tiles)
		}
	}
	for _, h := range s.AllTiles() {
		t := s.Tile(h)
		if t.HasEye && t.EyeColour == observer {
			for _, n := range s.RadialTiles(h, 1) {
				view.Tiles[n] = true
			}
		}
	}

	for _, ph := range s.AllPawns() {
		p := s.Pawn(ph)
		if !view.Tiles[p.CurTile] {
			continue
		}
		if visibleToObserver(s, observer, ph) {
			view.Pawns[ph] = true
		}
	}

	return view
}

// visibleToObserver applies the PWR_INVISIBLE exception of spec.md 4.7,
// independent of the fog-of-war tile filter above.
func visibleToObserver(s *game.State, observer game.Colour, ph game.PawnHandle) bool {
	p := s.Pawn(ph)
	if !p.Flags.Has(game.FlagInvisible) {
		return true
	}
	if p.Colour == observer || observer == game.Spectate {
		return true
	}
	return witnessedByEnemyInfravision(s, observer, p)
}

// witnessedByEnemyInfravision checks whether any of the observer's own
// pawns holding FlagInfravision has this pawn's tile on its infravision
// line, per spec.md 4.7's exception clause.
func witnessedByEnemyInfravision(s *game.State, observer game.Colour, target *game.Pawn) bool {
	for _, ph := range s.PlayerPawns(observer) {
		p := s.Pawn(ph)
		if !p.Flags.Has(game.FlagInfravision) {
			continue
		}
		lines := make(map[game.TileHandle]bool)
		addInfravisionLines(s, p, lines)
		if lines[target.CurTile] {
			return true
		}
	}
	return false
}

func addInfravisionLines(s *game.State, p *game.Pawn, into map[game.TileHandle]bool) {
	for _, dir := range game.SingleDirections {
		for _, h := range s.LinearTiles(p.CurTile, dir) {
			into[h] = true
		}
	}
}
