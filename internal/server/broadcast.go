package server

import (
	"hexradius/internal/game"
	"hexradius/internal/visibility"
	"hexradius/internal/wire"
)

// viewFor computes the fog-of-war filtered View a player of the given
// colour may see, per SPEC_FULL.md 6.9.
func viewFor(s *game.State, colour game.Colour) visibility.View {
	return visibility.Filter(s, colour)
}

// fullTileUpdates renders every visible tile as a complete TileUpdate, for
// BEGIN.
func fullTileUpdates(s *game.State, view visibility.View) []wire.TileUpdate {
	out := make([]wire.TileUpdate, 0)
	for _, h := range s.AllTiles() {
		if !view.TileVisible(h) {
			continue
		}
		out = append(out, tileUpdate(s.Tile(h)))
	}
	return out
}

// fullPawnUpdates renders every visible pawn as a complete PawnUpdate, for
// BEGIN.
func fullPawnUpdates(s *game.State, view visibility.View) []wire.PawnUpdate {
	out := make([]wire.PawnUpdate, 0)
	for _, h := range s.AllPawns() {
		if !view.PawnVisible(h) {
			continue
		}
		out = append(out, pawnUpdate(s, s.Pawn(h), nil))
	}
	return out
}

func tileUpdate(t *game.Tile) wire.TileUpdate {
	height, smashed, hasPower, hasBlackHole, hill := t.Height, t.Smashed, t.HasPower, t.HasBlackHole, t.Hill
	wrap := int(t.Wrap)
	u := wire.TileUpdate{
		Col: t.Col, Row: t.Row,
		Height: &height, Smashed: &smashed, HasPower: &hasPower,
		HasBlackHole: &hasBlackHole, Hill: &hill, Wrap: &wrap,
	}
	if t.HasPower {
		u.PowerID = &t.PowerID
	}
	if t.HasMine {
		mc := t.MineColour.String()
		u.HasMine, u.MineColour = &t.HasMine, &mc
	}
	if t.HasLandingPad {
		lc := t.LandingPadColour.String()
		u.HasLandingPad, u.LandingPadColour = &t.HasLandingPad, &lc
	}
	if t.HasEye {
		ec := t.EyeColour.String()
		u.HasEye, u.EyeColour = &t.HasEye, &ec
	}
	return u
}

// pawnUpdate renders p as a wire PawnUpdate. When from is non-nil and names
// a tile different from p's current one, Col/Row report the pawn's
// pre-move position and NewCol/NewRow carry where it relocated to, per
// spec.md 4.6's UPDATE contract — a client keys its mirror by Col/Row, so
// reporting the already-moved position under both fields would leave a
// stale duplicate at the old tile instead of relocating it.
func pawnUpdate(s *game.State, p *game.Pawn, from *game.TileHandle) wire.PawnUpdate {
	tile := s.Tile(p.CurTile)
	powers := make([]string, 0, len(p.Powers))
	for id := range p.Powers {
		powers = append(powers, id)
	}
	u := wire.PawnUpdate{
		Col: tile.Col, Row: tile.Row,
		Colour: p.Colour.String(), Flags: uint16(p.Flags), Range: p.Range,
		Powers: powers,
	}
	if from != nil {
		fromTile := s.Tile(*from)
		if fromTile.Col != tile.Col || fromTile.Row != tile.Row {
			newCol, newRow := tile.Col, tile.Row
			u.Col, u.Row = fromTile.Col, fromTile.Row
			u.NewCol, u.NewRow = &newCol, &newRow
		}
	}
	return u
}

// broadcastUpdate sends a per-observer visibility-filtered UPDATE built
// from the tiles/pawns a validator step touched, per spec.md 4.4 step ii.
// relocated names, for any touched pawn whose board position this step
// changed, the tile it moved from.
func (s *Server) broadcastUpdate(touchedTiles []game.TileHandle, touchedPawns []game.PawnHandle, relocated map[game.PawnHandle]game.TileHandle, randVals []int) {
	for _, sess := range s.sessions.All() {
		view := viewFor(s.state, sess.Player.Colour)
		payload := wire.UpdatePayload{PowerRandVals: randVals}
		for _, h := range touchedTiles {
			if view.TileVisible(h) {
				payload.Tiles = append(payload.Tiles, tileUpdate(s.state.Tile(h)))
			}
		}
		for _, h := range touchedPawns {
			p := s.state.Pawn(h)
			if p == nil {
				continue
			}
			var from *game.TileHandle
			if fh, ok := relocated[h]; ok {
				from = &fh
			}
			if view.PawnVisible(h) {
				payload.Pawns = append(payload.Pawns, pawnUpdate(s.state, p, from))
				continue
			}
			// The pawn moved out of this observer's fog-of-war coverage: it
			// was visible at from but its new tile isn't, so PawnVisible is
			// false with no MOVE-level signal of the removal. Per spec.md 8's
			// fog-of-war scenario the observer's mirror must still drop the
			// pawn from the tile it last saw it on, using the same
			// Destroyed-style entry broadcastDestroyed sends for an actual
			// kill.
			if from != nil && view.TileVisible(*from) {
				fromTile := s.state.Tile(*from)
				payload.Pawns = append(payload.Pawns, wire.PawnUpdate{
					Col: fromTile.Col, Row: fromTile.Row,
					Colour: p.Colour.String(), Destroyed: true,
				})
			}
		}
		if len(payload.Tiles) == 0 && len(payload.Pawns) == 0 {
			continue
		}
		msg, _ := wire.Pack(wire.TagUpdate, payload)
		sess.Enqueue(msg)
	}
}

// broadcastDestroyed sends a per-observer UPDATE for a pawn that was
// removed from the board, since the destroyed handle no longer resolves
// via s.state.Pawn.
func (s *Server) broadcastDestroyed(colour game.Colour, col, row int) {
	for _, sess := range s.sessions.All() {
		payload := wire.UpdatePayload{Pawns: []wire.PawnUpdate{{
			Col: col, Row: row, Colour: colour.String(), Destroyed: true,
		}}}
		msg, _ := wire.Pack(wire.TagUpdate, payload)
		sess.Enqueue(msg)
	}
}

// broadcastAll sends msg to every connected session unfiltered, used for
// TURN/GOVER/echoed actions.
func (s *Server) broadcastAll(msg wire.Message) {
	for _, sess := range s.sessions.All() {
		sess.Enqueue(msg)
	}
}
