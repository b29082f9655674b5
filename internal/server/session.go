// Package server implements HexRadius's authoritative game server: the
// TCP accept loop, per-connection session bookkeeping, the single-
// goroutine turn engine, and the power-spawn timer. Grounded on the
// teacher's internal/server package (server.go's accept loop,
// session_manager.go's GameSessionManager, game_session.go's action-
// channel game loop) but rebuilt around one shared board instead of one
// GameSession per matched pair (SPEC_FULL.md 6.7).
package server

import (
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hexradius/internal/game"
	"hexradius/internal/wire"
)

// Session is one connected participant: a TCP connection, the Player it
// was assigned, and a per-connection session token minted on INIT since
// HexRadius has no persistent accounts to authenticate against (spec.md 1
// Non-goals). Grounded on the teacher's PlayerQueueEntry/PlayerInGame
// split, collapsed into one struct.
type Session struct {
	Token  uuid.UUID
	Conn   net.Conn
	Player *game.Player

	send   chan wire.Message
	closed chan struct{}
}

func newSession(conn net.Conn, player *game.Player) *Session {
	return &Session{
		Token:  uuid.New(),
		Conn:   conn,
		Player: player,
		send:   make(chan wire.Message, 32),
		closed: make(chan struct{}),
	}
}

// Enqueue queues msg for this session's writer goroutine, realizing
// spec.md 5's "outbound messages are queued per-connection". A full queue
// means the client isn't draining fast enough; the session is dropped
// rather than blocking the shared game loop.
func (s *Session) Enqueue(msg wire.Message) {
	select {
	case <-s.closed:
		return
	default:
	}
	select {
	case s.send <- msg:
	case <-s.closed:
	default:
		log.Warn().Str("player", s.Player.Name).Msg("session send queue full, dropping connection")
		s.Close()
	}
}

// Close is idempotent; it may be called from the writer goroutine on a
// write error or from the game loop on KICK/disconnect handling.
func (s *Session) Close() {
	select {
	case <-s.closed:
		return
	default:
		close(s.closed)
		s.Conn.Close()
	}
}

// writeLoop drains the send queue and writes framed messages to the
// connection; the dedicated per-connection writer goroutine SPEC_FULL.md 7
// calls for.
func (s *Session) writeLoop() {
	for {
		select {
		case msg := <-s.send:
			if err := wire.WriteMessage(s.Conn, msg); err != nil {
				log.Warn().Err(err).Str("player", s.Player.Name).Msg("write failed, closing session")
				s.Close()
				return
			}
		case <-s.closed:
			return
		}
	}
}
