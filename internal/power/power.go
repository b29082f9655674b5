// Package power implements the HexRadius power catalogue: a static table of
// {name, direction mask, spawn weight, effect} entries dispatched by id,
// grounded on the original OctRadius Powers::Power table
// (original_source/src/powers.hpp/.cpp) and rebuilt as a table of Go
// closures rather than C function pointers — the closed-variant-plus-
// dispatch design spec.md 9 calls for, realized the idiomatic Go way since
// Go has no sealed sum types (SPEC_FULL.md 6.3).
package power

import "hexradius/internal/game"

// Outcome is the result of attempting to apply a power, per spec.md 4.3.
type Outcome int

const (
	Illegal Outcome = iota
	Applied
)

// Delta records which tiles and pawns an effect mutated, so the caller can
// build a minimal UPDATE message (spec.md 4.4).
type Delta struct {
	Tiles []game.TileHandle
	Pawns []game.PawnHandle

	// Animation, if non-empty, names a tile/particle animation event the
	// effect wants broadcast alongside the UPDATE (spec.md 4.4 step iii).
	Animation string
	// DelayFactors parallels Tiles when Animation is a tile animation whose
	// per-tile delay is proportional to hex distance from the effect's
	// center (spec.md 4.3, Elevate/Dig).
	DelayFactors []int

	// Relocated records, for a pawn in Pawns whose board position this
	// effect changed (Teleport), the tile it moved from. The caller needs
	// this to report the pawn's pre-move Col/Row on the wire rather than
	// its already-updated position.
	Relocated map[game.PawnHandle]game.TileHandle
}

// EffectFunc is the pure function spec.md 4.3 describes:
// (GameState, actor, direction_bit, target_tile?) -> EffectOutcome.
type EffectFunc func(s *game.State, actor *game.Pawn, dir game.Direction, target *game.TileHandle) (Outcome, Delta)

// Def is one catalogue entry.
type Def struct {
	ID            string
	Name          string
	DirectionMask game.Direction
	SpawnWeight   int
	Effect        EffectFunc
}

// ByID looks up a catalogue entry, used by the validator's USE handler.
func ByID(id string) (Def, bool) {
	for _, d := range Catalogue {
		if d.ID == id {
			return d, true
		}
	}
	return Def{}, false
}

// RandomPower draws a power id weighted by SpawnWeight, using the shared
// server RNG stream so the draw is replayable via power_rand_vals
// (spec.md 4.4, "Upon moving onto a tile with has_power").
func RandomPower(s *game.State) string {
	total := 0
	for _, d := range Catalogue {
		total += d.SpawnWeight
	}
	roll := s.RollIntn(total)
	for _, d := range Catalogue {
		if roll < d.SpawnWeight {
			return d.ID
		}
		roll -= d.SpawnWeight
	}
	return Catalogue[len(Catalogue)-1].ID
}
