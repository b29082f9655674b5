package game

// CurrentPlayerID returns the id of the player whose turn it is, per the
// turn engine state spec.md 4.4 requires (CurrentTurnID indexes
// PlayersInOrder). Returns 0 (no valid player id) if no players are
// registered.
func (s *State) CurrentPlayerID() uint16 {
	if len(s.PlayersInOrder) == 0 {
		return 0
	}
	return s.PlayersInOrder[s.CurrentTurnID%len(s.PlayersInOrder)]
}

// AdvanceTurn moves CurrentTurnID to the next player for whom alive
// returns true, per spec.md 4.4 ("skip defeated players"). Returns false
// if no player in PlayersInOrder is alive (the game is over).
func (s *State) AdvanceTurn(alive func(id uint16) bool) bool {
	n := len(s.PlayersInOrder)
	if n == 0 {
		return false
	}
	for i := 1; i <= n; i++ {
		idx := (s.CurrentTurnID + i) % n
		if alive(s.PlayersInOrder[idx]) {
			s.CurrentTurnID = idx
			return true
		}
	}
	return false
}

// TickPowerSpawn decrements PowersSpawnCountdown and reports whether it has
// reached zero, per spec.md 4.5. It does not reset the countdown; the
// caller does that after running the spawn.
func (s *State) TickPowerSpawn() bool {
	s.PowersSpawnCountdown--
	return s.PowersSpawnCountdown <= 0
}

// ResetPowerSpawn re-arms the countdown/batch with uniform(1..4) and
// uniform(1..2) draws from the shared RNG stream, per spec.md 4.5.
func (s *State) ResetPowerSpawn() {
	s.PowersSpawnCountdown = 1 + s.RollIntn(4)
	s.PowersSpawnBatch = 1 + s.RollIntn(2)
}
