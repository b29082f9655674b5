package server

import (
	"github.com/rs/zerolog/log"

	"hexradius/internal/game"
	"hexradius/internal/power"
	"hexradius/internal/wire"
)

// bombBlastRadius bounds a detonated PWR_BOMB pawn's radial destroy
// (spec.md 4.3, "next destruction triggers a radial destroy"). The bomb
// carrier is already gone by the time it detonates, so the blast can't
// borrow the victim's own Range the way destroy_radial does.
const bombBlastRadius = 2

// kingOfTheHillThreshold is the score a colour must reach to win a
// King-of-the-Hill game; spec.md names the mode but leaves the number
// unspecified (SPEC_FULL.md Open Question territory), so it is fixed here.
const kingOfTheHillThreshold = 10

// runGameLoop is the sole mutator of s.state, exactly the single-goroutine
// design SPEC_FULL.md 7 requires: it drains join notifications and
// player actions from the same two channels for as long as the server
// runs. It does not run State.CheckInvariants between actions.
func (s *Server) runGameLoop() {
	for {
		select {
		case sess := <-s.joins:
			s.handleJoin(sess)
		case a := <-s.actions:
			s.handleAction(a)
		}
	}
}

// handleJoin registers a newly connected player into turn order and sends
// its GINFO/PJOIN/BEGIN sequence, done inside the game loop so
// PlayersInOrder is never touched by more than one goroutine.
func (s *Server) handleJoin(sess *Session) {
	s.state.PlayersInOrder = append(s.state.PlayersInOrder, sess.Player.ID)
	s.sendCColour(sess)
	s.sendGInfo(sess)
	s.broadcastPJoin(sess)
	s.sendBegin(sess)
}

// sendCColour tells a newly joined session its own assigned identity,
// per spec.md 4.6's CCOLOUR tag: a client otherwise has no way to tell
// which entry of GINFO/BEGIN's players[] is itself.
func (s *Server) sendCColour(sess *Session) {
	msg, _ := wire.Pack(wire.TagCColour, wire.CColourPayload{
		PlayerID: sess.Player.ID, Colour: sess.Player.Colour.String(),
	})
	sess.Enqueue(msg)
}

func (s *Server) handleAction(a Action) {
	switch a.Msg.Tag {
	case wire.TagMove:
		s.handleMove(a.Session, a.Msg)
	case wire.TagUse:
		s.handleUse(a.Session, a.Msg)
	case wire.TagResign:
		s.handleResign(a.Session)
	case wire.TagChangeSetting:
		s.handleChangeSetting(a.Session, a.Msg)
	case wire.TagChangeMap:
		s.handleChangeMap(a.Session, a.Msg)
	case wire.TagAddAI:
		s.handleAddAI(a.Session, a.Msg)
	case wire.TagKick:
		s.handleKick(a.Session, a.Msg)
	default:
		s.badMove(a.Session, "unrecognized action")
	}
}

// requireTurn is the only "is it your turn" check: handleConnection forwards
// every frame onto the channel, and RESIGN and admin actions are not
// turn-checked at all, so handleMove/handleUse call this directly.
func (s *Server) requireTurn(sess *Session) bool {
	if sess.Player.ID != s.state.CurrentPlayerID() {
		s.badMove(sess, "not your turn")
		return false
	}
	return true
}

func (s *Server) badMove(sess *Session, reason string) {
	msg, _ := wire.Pack(wire.TagBadMove, wire.BadMovePayload{Reason: reason})
	sess.Enqueue(msg)
}

// handleMove implements spec.md 4.4's MOVE legality and side effects:
// adjacency-or-climb-or-jump legality, combat on enemy occupancy, mine and
// black-hole self-destruction, power pickup, and wrap-edge traversal
// (handled transparently by LinearTiles/Neighbors already).
func (s *Server) handleMove(sess *Session, msg wire.Message) {
	if !s.requireTurn(sess) {
		return
	}
	var payload wire.MovePayload
	if err := msg.Unpack(&payload); err != nil {
		s.badMove(sess, "malformed move payload")
		return
	}

	fromH, ok := s.state.TileAt(payload.FromCol, payload.FromRow)
	if !ok {
		s.badMove(sess, "source tile does not exist")
		return
	}
	toH, ok := s.state.TileAt(payload.ToCol, payload.ToRow)
	if !ok {
		s.badMove(sess, "destination tile does not exist")
		return
	}
	pawnH, ok := s.state.PawnAt(payload.FromCol, payload.FromRow)
	if !ok {
		s.badMove(sess, "no pawn at source tile")
		return
	}
	pawn := s.state.Pawn(pawnH)
	if pawn.Colour != sess.Player.Colour {
		s.badMove(sess, "not your pawn")
		return
	}
	toTile := s.state.Tile(toH)
	if toTile.Smashed {
		s.badMove(sess, "destination tile is destroyed")
		return
	}

	jumping := false
	if pawn.Flags.Has(game.FlagJump) {
		for _, cand := range s.state.JumpCandidates(pawn) {
			if cand == toH {
				jumping = true
				break
			}
		}
	}
	adjacent := s.state.IsAdjacent(fromH, toH)
	heightOK := adjacent && s.state.HeightDelta(fromH, toH) <= 1
	climbing := adjacent && pawn.Flags.Has(game.FlagClimb)
	if !(heightOK || climbing || jumping) {
		s.badMove(sess, "illegal move")
		return
	}
	if jumping {
		pawn.Flags &^= game.FlagJump
	}

	touchedTiles := []game.TileHandle{fromH, toH}
	touchedPawns := []game.PawnHandle{pawnH}
	relocated := map[game.PawnHandle]game.TileHandle{pawnH: fromH}

	if defenderH, occupied := s.state.PawnAt(payload.ToCol, payload.ToRow); occupied {
		defender := s.state.Pawn(defenderH)
		if defender.Colour == pawn.Colour {
			s.badMove(sess, "destination occupied by a friendly pawn")
			return
		}
		wasBomb := defender.Flags.Has(game.FlagBomb)
		defenderColour := defender.Colour
		if game.ResolveCombat(s.state, defenderH) {
			s.state.MovePawn(pawnH, toH)
			s.echoAndFinish(sess, wire.TagMove, payload, touchedTiles, append(touchedPawns, s.bombDetonation(wasBomb, defenderColour, toH)...), relocated)
			s.broadcastDestroyed(defenderColour, payload.ToCol, payload.ToRow)
			s.afterSuccessfulAction()
			return
		}
		// Shield absorbed the hit: the shield is consumed but the defender
		// survives, and spec.md 8's boundary behavior is explicit that
		// "the attacker occupies the tile" regardless — since a tile can
		// hold at most one pawn, the surviving defender is displaced onto
		// the tile the attacker vacated.
		s.state.MovePawn(pawnH, toH)
		s.state.MovePawn(defenderH, fromH)
		swapRelocated := map[game.PawnHandle]game.TileHandle{pawnH: fromH, defenderH: toH}
		s.echoAndFinish(sess, wire.TagMove, payload, touchedTiles, []game.PawnHandle{pawnH, defenderH}, swapRelocated)
		s.afterSuccessfulAction()
		return
	}

	s.state.MovePawn(pawnH, toH)

	if toTile.HasMine && toTile.MineColour != pawn.Colour {
		if game.ResolveCombat(s.state, pawnH) {
			s.echoAndFinish(sess, wire.TagMove, payload, touchedTiles, touchedPawns, relocated)
			s.broadcastDestroyed(pawn.Colour, payload.ToCol, payload.ToRow)
			s.afterSuccessfulAction()
			return
		}
		s.echoAndFinish(sess, wire.TagMove, payload, touchedTiles, touchedPawns, relocated)
		s.afterSuccessfulAction()
		return
	}
	if toTile.HasBlackHole {
		s.state.DestroyPawn(pawnH)
		s.echoAndFinish(sess, wire.TagMove, payload, touchedTiles, touchedPawns, relocated)
		s.broadcastDestroyed(pawn.Colour, payload.ToCol, payload.ToRow)
		s.afterSuccessfulAction()
		return
	}

	var pickupNotif *wire.Message
	if toTile.HasPower {
		powerID := power.RandomPower(s.state)
		pawn.AddPower(powerID)
		toTile.HasPower = false
		toTile.PowerID = ""
		notif, _ := wire.Pack(wire.TagAddPowerNotification, wire.AddPowerNotificationPayload{
			Col: payload.ToCol, Row: payload.ToRow, PowerID: powerID,
		})
		pickupNotif = &notif
	}

	s.echoAndFinish(sess, wire.TagMove, payload, touchedTiles, touchedPawns, relocated)
	if pickupNotif != nil {
		s.broadcastAll(*pickupNotif)
	}
	s.afterSuccessfulAction()
}

// bombDetonation runs the radial destroy a PWR_BOMB victim triggers on
// death, returning the pawns it additionally touched.
func (s *Server) bombDetonation(wasBomb bool, victimColour game.Colour, at game.TileHandle) []game.PawnHandle {
	if !wasBomb {
		return nil
	}
	touched := []game.PawnHandle{}
	for _, h := range s.state.SortedByRowCol(s.state.RadialTiles(at, bombBlastRadius)) {
		ph, ok := s.state.PawnAt(s.state.Tile(h).Col, s.state.Tile(h).Row)
		if !ok {
			continue
		}
		p := s.state.Pawn(ph)
		if p == nil || p.Colour == victimColour {
			continue
		}
		col, row := s.state.Tile(h).Col, s.state.Tile(h).Row
		colour := p.Colour
		if game.ResolveCombat(s.state, ph) {
			s.broadcastDestroyed(colour, col, row)
		}
		touched = append(touched, ph)
	}
	return touched
}

// echoAndFinish echoes the originating action unchanged and broadcasts the
// resulting per-observer UPDATE, per spec.md 4.4 steps i-ii. relocated
// names, for any touched pawn this step actually moved on the board, the
// tile it moved from.
func (s *Server) echoAndFinish(sess *Session, tag wire.MessageTag, payload interface{}, touchedTiles []game.TileHandle, touchedPawns []game.PawnHandle, relocated map[game.PawnHandle]game.TileHandle) {
	echo, _ := wire.Pack(tag, payload)
	s.broadcastAll(echo)
	randVals := s.state.DrainRandVals()
	s.broadcastUpdate(touchedTiles, touchedPawns, relocated, randVals)
}

// handleUse implements spec.md 4.4's USE legality and dispatch, including
// SPEC_FULL.md 12's Open Question decision on PWR_CONFUSED: it scrambles
// only the submitted direction bit, XORing it against a server-drawn
// random bit from the power's own DirectionMask, leaving any target tile
// untouched.
func (s *Server) handleUse(sess *Session, msg wire.Message) {
	if !s.requireTurn(sess) {
		return
	}
	var payload wire.UsePayload
	if err := msg.Unpack(&payload); err != nil {
		s.badMove(sess, "malformed use payload")
		return
	}

	pawnH, ok := s.state.PawnAt(payload.PawnCol, payload.PawnRow)
	if !ok {
		s.badMove(sess, "no pawn at that tile")
		return
	}
	pawn := s.state.Pawn(pawnH)
	if pawn.Colour != sess.Player.Colour {
		s.badMove(sess, "not your pawn")
		return
	}

	def, ok := power.ByID(payload.PowerID)
	if !ok {
		s.badMove(sess, "unknown power")
		return
	}
	if pawn.Powers[payload.PowerID] <= 0 {
		s.badMove(sess, "power not held")
		return
	}

	dir := game.Direction(payload.PowerDirection)
	switch def.DirectionMask {
	case game.DirUndirected, game.DirTargeted, game.DirPoint:
		dir = def.DirectionMask
	default:
		if dir == 0 || dir&^def.DirectionMask != 0 {
			s.badMove(sess, "direction not a subset of this power's mask")
			return
		}
	}

	var target *game.TileHandle
	if def.DirectionMask == game.DirTargeted || def.DirectionMask == game.DirPoint {
		if payload.TargetCol == nil || payload.TargetRow == nil {
			s.badMove(sess, "power requires a target tile")
			return
		}
		th, ok := s.state.TileAt(*payload.TargetCol, *payload.TargetRow)
		if !ok {
			s.badMove(sess, "target tile does not exist")
			return
		}
		target = &th
	}

	if pawn.Flags.Has(game.FlagConfused) && def.DirectionMask.IsDirected() {
		dir ^= scrambleDirection(s.state, def.DirectionMask)
		pawn.Flags &^= game.FlagConfused
	}

	outcome, delta := def.Effect(s.state, pawn, dir, target)
	if outcome == power.Illegal {
		s.badMove(sess, "power effect was illegal in this context")
		return
	}
	pawn.SpendPower(payload.PowerID)

	s.echoAndFinish(sess, wire.TagUse, payload, delta.Tiles, uniquePawns(append(delta.Pawns, pawnH)), delta.Relocated)
	if delta.Animation != "" {
		s.broadcastPowerAnimation(delta)
	}
	notif, _ := wire.Pack(wire.TagUsePowerNotification, wire.UsePowerNotificationPayload{
		PlayerID: sess.Player.ID, PowerID: payload.PowerID,
	})
	s.broadcastAll(notif)

	ok2, _ := wire.Pack(wire.TagOK, nil)
	sess.Enqueue(ok2)

	s.afterSuccessfulAction()
}

func uniquePawns(in []game.PawnHandle) []game.PawnHandle {
	seen := make(map[game.PawnHandle]bool, len(in))
	out := make([]game.PawnHandle, 0, len(in))
	for _, h := range in {
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// scrambleDirection XORs a random single bit drawn from mask, replaying
// through State.RollIntn so the draw appears in power_rand_vals like every
// other RNG consumption (spec.md 9).
func scrambleDirection(s *game.State, mask game.Direction) game.Direction {
	bits := make([]game.Direction, 0, 16)
	for i := 0; i < 16; i++ {
		bit := game.Direction(1 << uint(i))
		if mask&bit != 0 {
			bits = append(bits, bit)
		}
	}
	if len(bits) == 0 {
		return 0
	}
	return bits[s.RollIntn(len(bits))]
}

func (s *Server) broadcastPowerAnimation(delta power.Delta) {
	if delta.Animation == "tile_elevate" {
		for i, h := range delta.Tiles {
			t := s.state.Tile(h)
			factor := 0
			if i < len(delta.DelayFactors) {
				factor = delta.DelayFactors[i]
			}
			msg, _ := wire.Pack(wire.TagTileAnimation, wire.TileAnimationPayload{
				Col: t.Col, Row: t.Row, AnimationName: delta.Animation, DelayFactor: factor,
			})
			s.broadcastAll(msg)
		}
		return
	}
	msg, _ := wire.Pack(wire.TagParticleAnimation, wire.ParticleAnimationPayload{AnimationName: delta.Animation})
	s.broadcastAll(msg)
}

// handleResign implements spec.md 4.4's RESIGN: destroy all of the
// sender's pawns. Per the worked example in spec.md 4.8 ("no turn
// advance" when it wasn't the resigning player's turn), the turn is only
// advanced if resignation happens to leave the current player defeated.
func (s *Server) handleResign(sess *Session) {
	wasCurrentTurn := sess.Player.ID == s.state.CurrentPlayerID()
	for _, ph := range s.state.PlayerPawns(sess.Player.Colour) {
		p := s.state.Pawn(ph)
		tile := s.state.Tile(p.CurTile)
		col, row := tile.Col, tile.Row
		s.state.DestroyPawn(ph)
		s.broadcastDestroyed(sess.Player.Colour, col, row)
	}
	pquit, _ := wire.Pack(wire.TagPQuit, wire.PQuitPayload{PlayerID: sess.Player.ID, QuitMsg: "resigned"})
	s.broadcastAll(pquit)

	if s.checkEndOfGame() {
		return
	}
	if wasCurrentTurn {
		s.advanceTurn()
	}
}

// afterSuccessfulAction implements spec.md 4.4 steps iv-v: King-of-the-Hill
// scoring, end-of-game check, then turn advance (which itself runs the
// power-spawn tick).
func (s *Server) afterSuccessfulAction() {
	if s.tickKingOfTheHillScoring() {
		return
	}
	if s.checkEndOfGame() {
		return
	}
	s.advanceTurn()
}

func (s *Server) tickKingOfTheHillScoring() bool {
	if !s.state.KingOfTheHill {
		return false
	}
	scored := make(map[game.Colour]bool)
	for _, h := range s.state.AllTiles() {
		t := s.state.Tile(h)
		if !t.Hill || t.Pawn == game.InvalidHandle {
			continue
		}
		p := s.state.Pawn(t.Pawn)
		if p != nil {
			scored[p.Colour] = true
		}
	}
	var winner *game.Colour
	for _, sess := range s.sessions.All() {
		if !scored[sess.Player.Colour] {
			continue
		}
		sess.Player.Score++
		msg, _ := wire.Pack(wire.TagScoreUpdate, wire.ScoreUpdatePayload{PlayerID: sess.Player.ID, Score: sess.Player.Score})
		s.broadcastAll(msg)
		if sess.Player.Score >= kingOfTheHillThreshold {
			c := sess.Player.Colour
			winner = &c
		}
	}
	if winner != nil {
		s.endGame(winner)
		return true
	}
	return false
}

// checkEndOfGame implements spec.md 4.4 step iv's non-KOTH clause: one
// team with live pawns wins, zero teams is a draw.
func (s *Server) checkEndOfGame() bool {
	alive := make(map[game.Colour]bool)
	for _, h := range s.state.AllPawns() {
		alive[s.state.Pawn(h).Colour] = true
	}
	switch len(alive) {
	case 0:
		s.endGame(nil)
		return true
	case 1:
		for c := range alive {
			s.endGame(&c)
		}
		return true
	default:
		return false
	}
}

func (s *Server) endGame(winner *game.Colour) {
	payload := wire.GOverPayload{Draw: winner == nil}
	if winner != nil {
		wc := winner.String()
		payload.WinnerColour = &wc
	}
	msg, _ := wire.Pack(wire.TagGOver, payload)
	s.broadcastAll(msg)
	log.Info().Interface("winner", payload.WinnerColour).Bool("draw", payload.Draw).Msg("game over")
}

// advanceTurn implements spec.md 4.4 step v: skip SPECTATE/defeated
// players, run the power-spawn tick, broadcast TURN.
func (s *Server) advanceTurn() {
	alive := func(id uint16) bool {
		sess, ok := s.sessions.Get(id)
		if !ok {
			return false
		}
		return sess.Player.Colour != game.Spectate && len(s.state.PlayerPawns(sess.Player.Colour)) > 0
	}
	if !s.state.AdvanceTurn(alive) {
		return
	}
	if s.state.TickPowerSpawn() {
		s.runPowerSpawn()
		s.state.ResetPowerSpawn()
	}
	turnMsg, _ := wire.Pack(wire.TagTurn, wire.TurnPayload{PlayerID: s.state.CurrentPlayerID()})
	s.broadcastAll(turnMsg)
}
