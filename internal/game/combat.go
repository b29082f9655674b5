package game

// ResolveCombat implements spec.md 4.4's move-onto-enemy rule and 8's
// boundary behavior: the attacker wins unless the defender carries
// FlagShield, in which case the shield is consumed and the defender
// survives. Grounded on the teacher's game/combat.go
// (CalculateDamage/ApplyDamage), reduced to HexRadius's binary
// destroy-or-absorb outcome — there is no HP pool in this domain, only
// shields.
//
// Returns true if the defender was destroyed.
func ResolveCombat(s *State, defender PawnHandle) bool {
	d := s.Pawn(defender)
	if d == nil {
		return false
	}
	if d.Flags.Has(FlagShield) {
		d.Flags &^= FlagShield
		return false
	}
	s.DestroyPawn(defender)
	return true
}
