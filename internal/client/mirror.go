// Package client is a thin, replicated view of a HexRadius game: it holds
// no rules logic of its own, only whatever the server has chosen to reveal
// through BEGIN/UPDATE (spec.md 4.7's fog-of-war contract already strips
// what this player shouldn't see before it ever reaches here). Grounded on
// the teacher's internal/client package (client.go/network_handler.go/
// ui_termbox.go), replacing its login-then-matchmake-then-UDP-state flow
// with HexRadius's single TCP stream of tagged messages.
package client

import (
	"sync"

	"hexradius/internal/wire"
)

// TileView is the client-local mirror of one visible tile.
type TileView struct {
	Col, Row         int
	Height           int
	Smashed          bool
	HasPower         bool
	PowerID          string
	HasMine          bool
	MineColour       string
	HasLandingPad    bool
	LandingPadColour string
	HasBlackHole     bool
	HasEye           bool
	EyeColour        string
	Wrap             int
	Hill             bool
}

// PawnView is the client-local mirror of one visible pawn.
type PawnView struct {
	Col, Row int
	Colour   string
	Flags    uint16
	Range    int
	Powers   []string
}

// Mirror is the replica board state a client builds up from BEGIN and
// keeps current with UPDATE deltas, grounded on the teacher's
// TermboxUI.UpdateGameInfo pattern (server pushes a diff, UI holds the
// latest values) but modeling the whole board instead of a scalar
// timer/mana pair.
type Mirror struct {
	mu sync.RWMutex

	Players       []wire.PlayerInfo
	MapName       string
	FogOfWar      bool
	KingOfTheHill bool

	tiles map[[2]int]*TileView
	pawns map[[2]int]*PawnView

	CurrentPlayerID uint16
	Over            bool
	Draw            bool
	WinnerColour    string
}

// NewMirror returns an empty replica, populated by the first ApplyBegin.
func NewMirror() *Mirror {
	return &Mirror{
		tiles: make(map[[2]int]*TileView),
		pawns: make(map[[2]int]*PawnView),
	}
}

// ApplyGInfo records the lobby snapshot a GINFO message carries.
func (m *Mirror) ApplyGInfo(p wire.GInfoPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Players = p.Players
	m.MapName = p.MapName
	m.FogOfWar = p.FogOfWar
	m.KingOfTheHill = p.KingOfTheHill
}

// ApplyBegin replaces the entire board with the full snapshot BEGIN
// carries, per spec.md 4.6.
func (m *Mirror) ApplyBegin(p wire.BeginPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Players = p.Players
	m.FogOfWar = p.FogOfWar
	m.KingOfTheHill = p.KingOfTheHill
	m.tiles = make(map[[2]int]*TileView, len(p.Tiles))
	m.pawns = make(map[[2]int]*PawnView, len(p.Pawns))
	for _, t := range p.Tiles {
		m.tiles[[2]int{t.Col, t.Row}] = tileViewFromUpdate(t)
	}
	for _, pw := range p.Pawns {
		m.pawns[[2]int{pw.Col, pw.Row}] = pawnViewFromUpdate(pw)
	}
}

// ApplyUpdate folds an UPDATE's partial tile/pawn deltas into the replica,
// per spec.md 4.6's field-optional partial-update contract: only fields
// present on the wire overwrite the mirrored value.
func (m *Mirror) ApplyUpdate(p wire.UpdatePayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range p.Tiles {
		key := [2]int{t.Col, t.Row}
		existing, ok := m.tiles[key]
		if !ok {
			existing = &TileView{Col: t.Col, Row: t.Row}
			m.tiles[key] = existing
		}
		mergeTileView(existing, t)
	}
	for _, pw := range p.Pawns {
		key := [2]int{pw.Col, pw.Row}
		if pw.Destroyed {
			delete(m.pawns, key)
			continue
		}
		if pw.NewCol != nil && pw.NewRow != nil {
			newKey := [2]int{*pw.NewCol, *pw.NewRow}
			if existing, ok := m.pawns[key]; ok {
				delete(m.pawns, key)
				existing.Col, existing.Row = newKey[0], newKey[1]
				m.pawns[newKey] = existing
				key = newKey
			}
		}
		existing, ok := m.pawns[key]
		if !ok {
			existing = &PawnView{Col: key[0], Row: key[1]}
			m.pawns[key] = existing
		}
		existing.Colour = pw.Colour
		existing.Flags = pw.Flags
		existing.Range = pw.Range
		if pw.Powers != nil {
			existing.Powers = pw.Powers
		}
	}
}

// ApplyTurn records whose turn it now is.
func (m *Mirror) ApplyTurn(p wire.TurnPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CurrentPlayerID = p.PlayerID
}

// ApplyGOver records the terminal game-over state.
func (m *Mirror) ApplyGOver(p wire.GOverPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Over = true
	m.Draw = p.Draw
	if p.WinnerColour != nil {
		m.WinnerColour = *p.WinnerColour
	}
}

// ApplyScoreUpdate records a player's new King-of-the-Hill score.
func (m *Mirror) ApplyScoreUpdate(p wire.ScoreUpdatePayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Players {
		if m.Players[i].ID == p.PlayerID {
			m.Players[i].Score = p.Score
			return
		}
	}
}

// Tiles returns a snapshot of every mirrored tile, for rendering.
func (m *Mirror) Tiles() []TileView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TileView, 0, len(m.tiles))
	for _, t := range m.tiles {
		out = append(out, *t)
	}
	return out
}

// Pawns returns a snapshot of every mirrored pawn, for rendering.
func (m *Mirror) Pawns() []PawnView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PawnView, 0, len(m.pawns))
	for _, p := range m.pawns {
		out = append(out, *p)
	}
	return out
}

func tileViewFromUpdate(t wire.TileUpdate) *TileView {
	v := &TileView{Col: t.Col, Row: t.Row}
	mergeTileView(v, t)
	return v
}

func mergeTileView(v *TileView, t wire.TileUpdate) {
	if t.Height != nil {
		v.Height = *t.Height
	}
	if t.Smashed != nil {
		v.Smashed = *t.Smashed
	}
	if t.HasPower != nil {
		v.HasPower = *t.HasPower
	}
	if t.PowerID != nil {
		v.PowerID = *t.PowerID
	}
	if t.HasMine != nil {
		v.HasMine = *t.HasMine
	}
	if t.MineColour != nil {
		v.MineColour = *t.MineColour
	}
	if t.HasLandingPad != nil {
		v.HasLandingPad = *t.HasLandingPad
	}
	if t.LandingPadColour != nil {
		v.LandingPadColour = *t.LandingPadColour
	}
	if t.HasBlackHole != nil {
		v.HasBlackHole = *t.HasBlackHole
	}
	if t.HasEye != nil {
		v.HasEye = *t.HasEye
	}
	if t.EyeColour != nil {
		v.EyeColour = *t.EyeColour
	}
	if t.Wrap != nil {
		v.Wrap = *t.Wrap
	}
	if t.Hill != nil {
		v.Hill = *t.Hill
	}
}

func pawnViewFromUpdate(p wire.PawnUpdate) *PawnView {
	return &PawnView{
		Col: p.Col, Row: p.Row,
		Colour: p.Colour, Flags: p.Flags, Range: p.Range, Powers: p.Powers,
	}
}
