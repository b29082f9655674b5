package server

import (
	"hexradius/internal/game"
	"hexradius/internal/power"
)

// runPowerSpawn implements spec.md 4.5: PowersSpawnBatch uniformly-random
// eligible tiles (no pawn, no power, not smashed) each get a weighted-
// random power. Called from advanceTurn once TickPowerSpawn reaches zero;
// the countdown/batch reset itself happens in the caller via
// State.ResetPowerSpawn, matching the teacher's habit of keeping the
// "what changed" and "when does it change again" concerns in separate
// calls.
func (s *Server) runPowerSpawn() {
	eligible := func(t *game.Tile) bool {
		return t.Pawn == game.InvalidHandle && !t.HasPower && !t.Smashed
	}
	tiles := s.state.RandomTiles(eligible, s.state.PowersSpawnBatch)
	if len(tiles) == 0 {
		return
	}
	for _, h := range tiles {
		t := s.state.Tile(h)
		t.HasPower = true
		t.PowerID = power.RandomPower(s.state)
	}
	randVals := s.state.DrainRandVals()
	s.broadcastUpdate(tiles, nil, nil, randVals)
}
