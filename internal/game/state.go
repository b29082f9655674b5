// Package game implements the authoritative HexRadius board model: tiles,
// pawns, players, and the per-turn counters that the server's turn engine
// mutates. It is grounded on the teacher's internal/models package
// (game_entities.go, player.go, config.go) but rebuilt around the arena/
// handle graph described in spec.md 9, since HexRadius's Tile<->Pawn
// back-references have no safe Go analogue as raw pointers.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog/log"
)

// ErrInvariantViolated is returned by CheckInvariants. The scenario loader
// rejects a board that fails the check; the server's game loop does not
// run the check, so a violation during play is not detected there.
var ErrInvariantViolated = errors.New("game: invariant violated")

// State owns every Tile and Pawn in a single running game, plus the RNG
// stream and per-turn counters spec.md 4.4/4.5 describe. All mutation is
// expected to happen from a single owning goroutine (spec.md 5/7).
type State struct {
	tiles []*Tile
	pawns []*Pawn

	coordIndex map[Coord]TileHandle

	FogOfWar      bool
	KingOfTheHill bool

	rng *rand.Rand

	// randVals accumulates the RNG draws consumed by the action currently
	// being applied, so the validator can copy them into power_rand_vals for
	// deterministic client-side animation replay (spec.md 4.4, 9).
	randVals []int

	CurrentTurnID        int
	PlayersInOrder       []uint16
	PowersSpawnCountdown int
	PowersSpawnBatch     int
}

// NewState creates an empty board. seed drives the single RNG stream that
// both power draws and power-teleport destinations consume from, per
// spec.md 6 (RNG collaborator) and 9 (determinism).
func NewState(fogOfWar, kingOfTheHill bool, seed int64) *State {
	return &State{
		coordIndex:           make(map[Coord]TileHandle),
		FogOfWar:             fogOfWar,
		KingOfTheHill:        kingOfTheHill,
		rng:                  rand.New(rand.NewSource(seed)),
		PowersSpawnCountdown: 2,
		PowersSpawnBatch:     1,
	}
}

// AddTile inserts a new tile at (col,row). The scenario loader is the only
// expected caller; tiles are immutable in number once a game starts
// (spec.md 3, Lifecycle).
func (s *State) AddTile(col, row int) TileHandle {
	t := newTile(col, row)
	h := TileHandle(len(s.tiles))
	s.tiles = append(s.tiles, t)
	s.coordIndex[Coord{col, row}] = h
	return h
}

// Tile dereferences a TileHandle. Callers within this package trust the
// handle is live; external callers should go through TileAt/PawnAt.
func (s *State) Tile(h TileHandle) *Tile {
	if h == InvalidHandle {
		return nil
	}
	return s.tiles[h]
}

// Pawn dereferences a PawnHandle, or nil for InvalidHandle or a destroyed
// pawn's recycled slot.
func (s *State) Pawn(h PawnHandle) *Pawn {
	if h == InvalidHandle {
		return nil
	}
	p := s.pawns[h]
	if p == nil || p.Destroyed {
		return nil
	}
	return p
}

// TileAt implements spec.md 4.2's tile_at query.
func (s *State) TileAt(col, row int) (TileHandle, bool) {
	h, ok := s.coordIndex[Coord{col, row}]
	return h, ok
}

// PawnAt implements spec.md 4.2's pawn_at query.
func (s *State) PawnAt(col, row int) (PawnHandle, bool) {
	h, ok := s.TileAt(col, row)
	if !ok {
		return InvalidHandle, false
	}
	tile := s.Tile(h)
	if tile.Pawn == InvalidHandle {
		return InvalidHandle, false
	}
	return tile.Pawn, true
}

// SpawnPawn places a new live pawn on tile h, which must currently be
// unoccupied. Used by the scenario loader at game start.
func (s *State) SpawnPawn(colour Colour, h TileHandle) PawnHandle {
	tile := s.Tile(h)
	p := newPawn(colour, h)
	ph := PawnHandle(len(s.pawns))
	p.self = ph
	s.pawns = append(s.pawns, p)
	tile.Pawn = ph
	return ph
}

// DestroyPawn marks a pawn terminal and clears it from its tile, per
// spec.md 3, "Destruction is final". RenderPawn anchors pointing at this
// pawn are cleared first, matching the non-owning-snapshot-handle
// requirement in spec.md 9.
func (s *State) DestroyPawn(h PawnHandle) {
	p := s.Pawn(h)
	if p == nil {
		return
	}
	for _, t := range s.tiles {
		if t.RenderPawn == h {
			t.RenderPawn = InvalidHandle
		}
	}
	if tile := s.Tile(p.CurTile); tile != nil && tile.Pawn == h {
		tile.Pawn = InvalidHandle
	}
	p.Destroyed = true
}

// MovePawn relocates a live pawn to an unoccupied tile, updating both the
// old and new tile's Pawn field and the pawn's CurTile/LastTile anchors.
func (s *State) MovePawn(h PawnHandle, dest TileHandle) {
	p := s.Pawn(h)
	if p == nil {
		return
	}
	if old := s.Tile(p.CurTile); old != nil && old.Pawn == h {
		old.Pawn = InvalidHandle
	}
	p.LastTile = p.CurTile
	p.CurTile = dest
	s.Tile(dest).Pawn = h
}

// AllPawns implements spec.md 4.2's all_pawns query, live pawns only.
func (s *State) AllPawns() []PawnHandle {
	out := make([]PawnHandle, 0, len(s.pawns))
	for i, p := range s.pawns {
		if p != nil && !p.Destroyed {
			out = append(out, PawnHandle(i))
		}
	}
	return out
}

// PlayerPawns implements spec.md 4.2's player_pawns query.
func (s *State) PlayerPawns(colour Colour) []PawnHandle {
	out := make([]PawnHandle, 0)
	for _, h := range s.AllPawns() {
		if s.Pawn(h).Colour == colour {
			out = append(out, h)
		}
	}
	return out
}

// AllTiles returns every tile handle, in stable creation order. This is not
// the (row, col) order effects are applied in; SortedByRowCol gives that.
func (s *State) AllTiles() []TileHandle {
	out := make([]TileHandle, len(s.tiles))
	for i := range s.tiles {
		out[i] = TileHandle(i)
	}
	return out
}

// SortedByRowCol sorts a slice of tile handles by (row, col), the fixed
// enumeration order spec.md 4.4 mandates for effect application.
func (s *State) SortedByRowCol(handles []TileHandle) []TileHandle {
	out := append([]TileHandle(nil), handles...)
	sort.Slice(out, func(i, j int) bool {
		a, b := s.Tile(out[i]), s.Tile(out[j])
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	return out
}

// RadialTiles implements spec.md 4.2's radial_tiles query: tiles whose hex
// distance from center is <= radius.
func (s *State) RadialTiles(center TileHandle, radius int) []TileHandle {
	c := s.Tile(center)
	out := make([]TileHandle, 0)
	for i, t := range s.tiles {
		if HexDistance(Coord{c.Col, c.Row}, Coord{t.Col, t.Row}) <= radius {
			out = append(out, TileHandle(i))
		}
	}
	return out
}

// LinearTiles implements spec.md 4.2's linear_tiles query: tiles on the
// infinite line from the pawn's current tile in one of the six hex
// directions, following edge-wraps (spec.md 3, "wrap") until the board runs
// out or a step would revisit an already-emitted tile.
func (s *State) LinearTiles(from TileHandle, dir Direction) []TileHandle {
	offset, ok := axialOffsets[dir]
	if !ok {
		return nil
	}

	visited := make(map[TileHandle]bool)
	out := make([]TileHandle, 0)

	cur := from
	for step := 0; step < len(s.tiles)*2; step++ {
		curTile := s.Tile(cur)
		next, found := s.TileAt(curTile.Col+offset[0], curTile.Row+offset[1])
		if !found {
			if curTile.Wrap&directionWrapBit[dir] == 0 {
				break
			}
			next, found = s.findWrapDestination(dir)
			if !found {
				break
			}
		}
		if visited[next] {
			break
		}
		visited[next] = true
		out = append(out, next)
		cur = next
	}
	return out
}

// findWrapDestination locates a tile tagged with the mirrored wrap edge for
// dir, i.e. the "matching edge elsewhere" spec.md 3 describes.
func (s *State) findWrapDestination(dir Direction) (TileHandle, bool) {
	mirrorBit := directionWrapBit[oppositeDirection[dir]]
	for i, t := range s.tiles {
		if t.Wrap&mirrorBit != 0 {
			return TileHandle(i), true
		}
	}
	return InvalidHandle, false
}

// Rand exposes the single server-owned RNG stream (spec.md 6, RNG
// collaborator) directly. Draws made through it are not recorded into
// randVals; only RollIntn records draws for power_rand_vals.
func (s *State) Rand() *rand.Rand { return s.rng }

// RollIntn draws a uniform int in [0,n) from the shared RNG stream and
// records it for replay, per spec.md 9's determinism requirement.
func (s *State) RollIntn(n int) int {
	v := s.rng.Intn(n)
	s.randVals = append(s.randVals, v)
	return v
}

// DrainRandVals returns and clears the RNG draws consumed since the last
// drain; the validator calls this once per action to populate
// power_rand_vals.
func (s *State) DrainRandVals() []int {
	v := s.randVals
	s.randVals = nil
	return v
}

// RandomTile draws a single tile uniformly among those matching pred, or
// (InvalidHandle, false) if none qualify. Grounded on the original
// implementation's RandomTiles(list, 1, false) call site for power
// teleport's random-empty-tile fallback (see SPEC_FULL.md 11).
func (s *State) RandomTile(pred func(*Tile) bool) (TileHandle, bool) {
	candidates := s.candidateTiles(pred)
	if len(candidates) == 0 {
		return InvalidHandle, false
	}
	return candidates[s.RollIntn(len(candidates))], true
}

// RandomTiles draws n distinct tiles without replacement among those
// matching pred, per spec.md 4.5's power spawn algorithm.
func (s *State) RandomTiles(pred func(*Tile) bool, n int) []TileHandle {
	candidates := s.candidateTiles(pred)
	out := make([]TileHandle, 0, n)
	for len(candidates) > 0 && len(out) < n {
		i := s.RollIntn(len(candidates))
		out = append(out, candidates[i])
		candidates[i] = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]
	}
	return out
}

func (s *State) candidateTiles(pred func(*Tile) bool) []TileHandle {
	out := make([]TileHandle, 0)
	for i, t := range s.tiles {
		if pred(t) {
			out = append(out, TileHandle(i))
		}
	}
	return out
}

// CheckInvariants verifies the universally-quantified invariants of
// spec.md 3 and 8. scenario.Parse calls it on every loaded board; the
// server does not call it during play.
func (s *State) CheckInvariants() error {
	seen := make(map[Coord]bool)
	for i, t := range s.tiles {
		c := Coord{t.Col, t.Row}
		if seen[c] {
			return fmt.Errorf("%w: duplicate tile coordinate %v", ErrInvariantViolated, c)
		}
		seen[c] = true

		if t.Height < -2 || t.Height > 2 {
			return fmt.Errorf("%w: tile %v height %d out of range", ErrInvariantViolated, c, t.Height)
		}
		if t.Smashed && t.Height != -2 {
			return fmt.Errorf("%w: tile %v smashed but height %d", ErrInvariantViolated, c, t.Height)
		}
		if t.Hill && !s.KingOfTheHill {
			return fmt.Errorf("%w: tile %v is a hill but king_of_the_hill is off", ErrInvariantViolated, c)
		}
		if t.Pawn != InvalidHandle {
			p := s.Pawn(t.Pawn)
			if p == nil {
				return fmt.Errorf("%w: tile %v references destroyed pawn %d", ErrInvariantViolated, c, t.Pawn)
			}
			if p.CurTile != TileHandle(i) {
				return fmt.Errorf("%w: pawn %d cur_tile does not point back at tile %v", ErrInvariantViolated, t.Pawn, c)
			}
		}
	}

	for _, h := range s.AllPawns() {
		p := s.Pawn(h)
		for id, count := range p.Powers {
			if count <= 0 {
				return fmt.Errorf("%w: pawn %d holds non-positive count of power %q", ErrInvariantViolated, h, id)
			}
		}
	}

	return nil
}

// LogInvariantViolation logs a CheckInvariants failure as an error-level
// diagnostic. Nothing in the server calls it, and it does not end the game
// or broadcast anything itself.
func LogInvariantViolation(err error) {
	log.Error().Err(err).Msg("game state invariant violated")
}
