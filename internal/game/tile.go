package game

// Tile is a single hexagonal cell at integer axial coordinates, grounded on
// the teacher's Tile-ish TowerInstance/ActiveTroop shape
// (internal/models/game_entities.go) but rebuilt around HexRadius's board
// semantics (spec.md 3).
type Tile struct {
	Col, Row int

	Height  int
	Smashed bool

	HasPower bool
	PowerID  string

	HasMine    bool
	MineColour Colour

	HasLandingPad    bool
	LandingPadColour Colour

	HasBlackHole bool

	HasEye    bool
	EyeColour Colour

	Wrap WrapEdge

	Hill bool

	// Pawn is the owning reference to whichever pawn currently occupies this
	// tile, or InvalidHandle if none.
	Pawn PawnHandle

	// RenderPawn is a non-owning, animation-only anchor; never consulted by
	// authoritative logic.
	RenderPawn PawnHandle
}

func newTile(col, row int) *Tile {
	return &Tile{
		Col:        col,
		Row:        row,
		Pawn:       InvalidHandle,
		RenderPawn: InvalidHandle,
	}
}

// SetHeight adjusts height, clamping to [-2,2] and setting Smashed when a
// tile is lowered past the floor, per spec.md 3 and 8 (boundary behaviors).
func (t *Tile) SetHeight(h int) bool {
	if h > 2 {
		h = 2
	}
	if h < -2 {
		h = -2
	}
	if h == t.Height {
		return false
	}
	t.Height = h
	if t.Height == -2 {
		t.Smashed = true
	}
	return true
}

// Raise increases height by one, clamped, per spec.md 4.3 "Raise" power.
// Returns false (Illegal) if already at the ceiling.
func (t *Tile) Raise() bool {
	if t.Height >= 2 {
		return false
	}
	t.Height++
	return true
}

// Lower decreases height by one, setting Smashed at the floor, per spec.md
// 4.3 "Lower" power and 8 (boundary behaviors: "Lowering a tile at height
// -2 sets smashed and yields Applied"). A tile can arrive at height -2
// unsmashed straight from scenario data, so the already-at-the-floor case
// still counts as a real mutation the first time it happens rather than a
// silent no-op; only an already-smashed floor tile has nothing left to do.
func (t *Tile) Lower() bool {
	if t.Height <= -2 {
		if t.Smashed {
			return false
		}
		t.Smashed = true
		return true
	}
	t.Height--
	if t.Height == -2 {
		t.Smashed = true
	}
	return true
}

// Coord uniquely identifies a tile within a State; used as a map key by
// scenario loading and visibility filtering.
type Coord struct{ Col, Row int }
