package server

import (
	"github.com/rs/zerolog/log"

	"hexradius/internal/game"
	"hexradius/internal/wire"
)

// requireAdmin rejects the action with BADMOVE unless the sender is
// player id 1, per spec.md 3's Admin definition and 4.4's admin-only
// action list.
func (s *Server) requireAdmin(sess *Session) bool {
	if !sess.Player.IsAdmin() {
		s.badMove(sess, "admin only")
		return false
	}
	return true
}

// handleChangeSetting toggles FogOfWar/KingOfTheHill on the live game,
// the one piece of lobby state spec.md 4.4 allows to change mid-session.
func (s *Server) handleChangeSetting(sess *Session, msg wire.Message) {
	if !s.requireAdmin(sess) {
		return
	}
	var payload wire.ChangeSettingPayload
	if err := msg.Unpack(&payload); err != nil {
		s.badMove(sess, "malformed change_setting payload")
		return
	}
	if payload.FogOfWar != nil {
		s.state.FogOfWar = *payload.FogOfWar
	}
	if payload.KingOfTheHill != nil {
		s.state.KingOfTheHill = *payload.KingOfTheHill
	}
	echo, _ := wire.Pack(wire.TagChangeSetting, payload)
	s.broadcastAll(echo)
}

// handleChangeMap is accepted and echoed but does not reload a scenario
// mid-game (spec.md 1 Non-goals excludes save/restore of in-progress
// games, and there is no well-defined way to swap GameState under a
// running turn engine without one); a real deployment would restart the
// process with the new scenario file instead.
func (s *Server) handleChangeMap(sess *Session, msg wire.Message) {
	if !s.requireAdmin(sess) {
		return
	}
	var payload wire.ChangeMapPayload
	if err := msg.Unpack(&payload); err != nil {
		s.badMove(sess, "malformed change_map payload")
		return
	}
	log.Warn().Str("map", payload.MapName).Msg("change_map requested; requires a server restart to take effect")
	echo, _ := wire.Pack(wire.TagChangeMap, payload)
	s.broadcastAll(echo)
}

// handleAddAI admits an AI-controlled participant into the next open
// colour slot. Move-selection policy for AI players is out of scope
// (spec.md 1 Non-goals); this only performs the admission side of it.
func (s *Server) handleAddAI(sess *Session, msg wire.Message) {
	if !s.requireAdmin(sess) {
		return
	}
	var payload wire.AddAIPayload
	if err := msg.Unpack(&payload); err != nil {
		s.badMove(sess, "malformed add_ai payload")
		return
	}
	colour, ok := game.ParseColour(payload.Colour)
	if !ok {
		s.badMove(sess, "unknown colour")
		return
	}
	aiSess, err := s.sessions.RegisterAI(colour)
	if err != nil {
		s.badMove(sess, err.Error())
		return
	}
	s.joins <- aiSess
}

// handleKick drops a session, converting to the same PQUIT/RESIGN
// sequence a voluntary disconnect produces.
func (s *Server) handleKick(sess *Session, msg wire.Message) {
	if !s.requireAdmin(sess) {
		return
	}
	var payload wire.KickPayload
	if err := msg.Unpack(&payload); err != nil {
		s.badMove(sess, "malformed kick payload")
		return
	}
	target, ok := s.sessions.Get(payload.PlayerID)
	if !ok {
		s.badMove(sess, "no such player")
		return
	}
	s.handleResign(target)
	s.sessions.Remove(payload.PlayerID)
	target.Close()
}
