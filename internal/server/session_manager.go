package server

import (
	"fmt"
	"io"
	"net"
	"sort"
	"sync"

	"hexradius/internal/game"
	"hexradius/internal/wire"
)

// SessionManager tracks connected sessions and assigns player identity and
// team colour on INIT, grounded on the teacher's GameSessionManager
// (internal/server/session_manager.go) but keyed by player id rather than
// a game id string: HexRadius runs one shared board for every connected
// participant instead of one GameSession per matched pair.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[uint16]*Session
	nextID   uint16
	colours  []game.Colour // admitted, non-SPECTATE colours, in scan order
}

// NewSessionManager admits every colour the loaded scenario's Colours set
// names, excluding SPECTATE (spectators never occupy a colour slot).
func NewSessionManager(admitted map[game.Colour]bool) *SessionManager {
	colours := make([]game.Colour, 0, len(admitted))
	for c := range admitted {
		if c != game.Spectate {
			colours = append(colours, c)
		}
	}
	sort.Slice(colours, func(i, j int) bool { return colours[i] < colours[j] })
	return &SessionManager{
		sessions: make(map[uint16]*Session),
		nextID:   1,
		colours:  colours,
	}
}

// ErrServerFull is returned by Register when every admitted colour already
// has a session occupying it, per SPEC_FULL.md 11's colour-slot exhaustion
// check (grounded on original_source/src/network.cpp's four-colour scan).
var ErrServerFull = fmt.Errorf("server: no colour slots remain")

// Register scans for the first admitted colour with no session yet, mints
// a Session for it, and assigns the next sequential player id (id 1 is
// ADMIN, per spec.md 3, "the first joiner").
func (m *SessionManager) Register(conn net.Conn, name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	taken := make(map[game.Colour]bool, len(m.sessions))
	for _, s := range m.sessions {
		taken[s.Player.Colour] = true
	}

	var assigned game.Colour
	found := false
	for _, c := range m.colours {
		if !taken[c] {
			assigned, found = c, true
			break
		}
	}
	if !found {
		return nil, ErrServerFull
	}

	id := m.nextID
	m.nextID++
	player := &game.Player{ID: id, Name: name, Colour: assigned}
	sess := newSession(conn, player)
	m.sessions[id] = sess
	go sess.writeLoop()
	return sess, nil
}

// RegisterAI admits an AI-controlled participant into colour, which must
// be both scenario-admitted and currently unoccupied. It mints a Session
// over an unpaired net.Pipe() end whose peer is silently drained, since
// spec.md 1 puts AI move-selection policy out of scope: this only wires
// the AI into session/turn bookkeeping as a plug-compatible participant,
// grounded on the same Session/writeLoop plumbing a human connection uses.
func (m *SessionManager) RegisterAI(colour game.Colour) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	admitted := false
	for _, c := range m.colours {
		if c == colour {
			admitted = true
			break
		}
	}
	if !admitted {
		return nil, fmt.Errorf("server: colour %s is not admitted by this scenario", colour)
	}
	for _, s := range m.sessions {
		if s.Player.Colour == colour {
			return nil, fmt.Errorf("server: colour %s is already occupied", colour)
		}
	}

	id := m.nextID
	m.nextID++
	local, remote := net.Pipe()
	go io.Copy(io.Discard, remote)

	player := &game.Player{ID: id, Name: "AI-" + colour.String(), Colour: colour}
	sess := newSession(local, player)
	m.sessions[id] = sess
	go sess.writeLoop()
	return sess, nil
}

// Remove drops a session, e.g. after disconnect or KICK.
func (m *SessionManager) Remove(id uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Close()
		delete(m.sessions, id)
	}
}

// Get looks up a session by player id.
func (m *SessionManager) Get(id uint16) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// All returns a snapshot of every connected session, for broadcast.
func (m *SessionManager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Broadcast enqueues msg on every connected session.
func (m *SessionManager) Broadcast(msg func(observer *Session) wire.Message) {
	for _, s := range m.All() {
		s.Enqueue(msg(s))
	}
}
