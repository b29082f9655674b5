package server

import (
	"net"

	"github.com/rs/zerolog/log"

	"hexradius/internal/game"
	"hexradius/internal/power"
	"hexradius/internal/wire"
)

// DefaultListenAddress mirrors the teacher's package const
// (internal/server/server.go); internal/config.Load supplies the
// environment-driven override (SPEC_FULL.md 3.3).
const DefaultListenAddress = "localhost:8080"

// Action is one validated-enough-to-reach-the-loop request: a session plus
// the wire message it sent. The single game-loop goroutine is the only
// mutator of State, per SPEC_FULL.md 7.
type Action struct {
	Session *Session
	Msg     wire.Message
}

// Server owns the authoritative board and every connected Session,
// grounded on the teacher's Server/GameSessionManager pair
// (internal/server/server.go, session_manager.go) collapsed into one
// struct because HexRadius has a single shared board rather than many
// parallel matched-pair sessions.
type Server struct {
	listenAddr string
	mapName    string

	state    *game.State
	sessions *SessionManager

	actions chan Action
	joins   chan *Session
}

// NewServer wires a loaded scenario into a running Server, per
// SPEC_FULL.md 6.7.
func NewServer(listenAddr, mapName string, state *game.State, colours map[game.Colour]bool) *Server {
	if listenAddr == "" {
		listenAddr = DefaultListenAddress
	}
	return &Server{
		listenAddr: listenAddr,
		mapName:    mapName,
		state:      state,
		sessions:   NewSessionManager(colours),
		actions:    make(chan Action, 64),
		joins:      make(chan *Session, 8),
	}
}

// Start accepts TCP connections in a loop and spawns handleConnection
// goroutines, exactly like the teacher's Server.Start, and launches the
// single game-loop goroutine that owns all board mutation.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error().Err(err).Str("addr", s.listenAddr).Msg("failed to listen")
		return err
	}
	defer listener.Close()
	log.Info().Str("addr", s.listenAddr).Msg("server listening")

	go s.runGameLoop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if opErr, ok := err.(*net.OpError); ok && !opErr.Temporary() {
				log.Error().Err(err).Msg("permanent accept error, shutting down")
				return err
			}
			log.Warn().Err(err).Msg("temporary accept error")
			continue
		}
		go s.handleConnection(conn)
	}
}

// handleConnection performs the INIT handshake and then relays every
// subsequent frame onto the shared actions channel, grounded on the
// teacher's handleConnection (internal/server/server.go) but replacing its
// one-shot login+matchmaking sequence with HexRadius's INIT-then-stream
// protocol.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	msg, err := wire.ReadMessage(conn)
	if err != nil {
		log.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("failed to read INIT frame")
		return
	}
	if msg.Tag != wire.TagInit {
		log.Warn().Str("tag", string(msg.Tag)).Msg("first message was not INIT, dropping connection")
		return
	}
	var initPayload wire.InitPayload
	if err := msg.Unpack(&initPayload); err != nil {
		log.Warn().Err(err).Msg("malformed INIT payload")
		return
	}

	sess, err := s.sessions.Register(conn, initPayload.PlayerName)
	if err != nil {
		quitMsg, _ := wire.Pack(wire.TagQuit, wire.QuitPayload{Reason: "server full"})
		_ = wire.WriteMessage(conn, quitMsg)
		log.Info().Str("name", initPayload.PlayerName).Msg("rejected connection: no colour slots remain")
		return
	}
	defer s.sessions.Remove(sess.Player.ID)

	log.Info().Str("name", sess.Player.Name).Uint16("id", sess.Player.ID).Str("colour", sess.Player.Colour.String()).Msg("player joined")

	s.joins <- sess

	for {
		frame, err := wire.ReadMessage(conn)
		if err != nil {
			log.Info().Err(err).Str("name", sess.Player.Name).Msg("connection closed")
			s.actions <- Action{Session: sess, Msg: wire.Message{Tag: wire.TagResign}}
			return
		}
		s.actions <- Action{Session: sess, Msg: frame}
	}
}

func (s *Server) sendGInfo(sess *Session) {
	players := s.playerInfos()
	msg, _ := wire.Pack(wire.TagGInfo, wire.GInfoPayload{
		Players:       players,
		MapName:       s.mapName,
		FogOfWar:      s.state.FogOfWar,
		KingOfTheHill: s.state.KingOfTheHill,
	})
	sess.Enqueue(msg)
}

func (s *Server) broadcastPJoin(sess *Session) {
	payload := wire.PJoinPayload{Player: playerInfo(sess.Player)}
	msg, _ := wire.Pack(wire.TagPJoin, payload)
	for _, other := range s.sessions.All() {
		if other.Player.ID != sess.Player.ID {
			other.Enqueue(msg)
		}
	}
}

func (s *Server) sendBegin(sess *Session) {
	view := viewFor(s.state, sess.Player.Colour)
	msg, _ := wire.Pack(wire.TagBegin, wire.BeginPayload{
		Players:       s.playerInfos(),
		Tiles:         fullTileUpdates(s.state, view),
		Pawns:         fullPawnUpdates(s.state, view),
		FogOfWar:      s.state.FogOfWar,
		KingOfTheHill: s.state.KingOfTheHill,
	})
	sess.Enqueue(msg)
}

func (s *Server) playerInfos() []wire.PlayerInfo {
	all := s.sessions.All()
	out := make([]wire.PlayerInfo, 0, len(all))
	for _, sess := range all {
		out = append(out, playerInfo(sess.Player))
	}
	return out
}

func playerInfo(p *game.Player) wire.PlayerInfo {
	return wire.PlayerInfo{ID: p.ID, Name: p.Name, Colour: p.Colour.String(), Score: p.Score}
}

// RandomPowerCatalogueSize is exposed for the CLI's startup log line; it
// has no bearing on gameplay.
func RandomPowerCatalogueSize() int { return len(power.Catalogue) }
