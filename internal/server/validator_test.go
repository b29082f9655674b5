package server

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hexradius/internal/client"
	"hexradius/internal/game"
	"hexradius/internal/wire"
)

// connPair returns both ends of an in-memory pipe: local is handed to the
// session under test, remote stays with the test so it can decode exactly
// what the server's writeLoop puts on the wire, exercising the real codec
// end to end (grounded on codec_test.go's round-trip style).
func connPair() (local, remote net.Conn) {
	return net.Pipe()
}

func readMessages(t *testing.T, conn net.Conn, n int) []wire.Message {
	t.Helper()
	out := make([]wire.Message, 0, n)
	for i := 0; i < n; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		msg, err := wire.ReadMessage(conn)
		require.NoError(t, err)
		out = append(out, msg)
	}
	return out
}

func tagsOf(msgs []wire.Message) []wire.MessageTag {
	out := make([]wire.MessageTag, len(msgs))
	for i, m := range msgs {
		out[i] = m.Tag
	}
	return out
}

// newDuelServer builds a 3x2 board (six tiles, all adjacent along row 0
// and row 1) with two colours and two joined sessions: red joins first
// (and so holds the first turn), blue second.
func newDuelServer(t *testing.T) (srv *Server, red, blue *Session, redConn, blueConn net.Conn) {
	t.Helper()
	st := game.NewState(false, false, 7)
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			st.AddTile(col, row)
		}
	}
	srv = NewServer("", "duel", st, map[game.Colour]bool{game.Red: true, game.Blue: true})

	var redLocal, blueLocal net.Conn
	redLocal, redConn = connPair()
	blueLocal, blueConn = connPair()

	var err error
	red, err = srv.sessions.Register(redLocal, "red-player")
	require.NoError(t, err)
	srv.handleJoin(red)

	blue, err = srv.sessions.Register(blueLocal, "blue-player")
	require.NoError(t, err)
	srv.handleJoin(blue)

	// Drain the CCOLOUR/GINFO/BEGIN/PJOIN handshake so later assertions
	// only see action-triggered traffic.
	readMessages(t, redConn, 4)  // CCOLOUR, GINFO, BEGIN, PJOIN(blue)
	readMessages(t, blueConn, 3) // CCOLOUR, GINFO, BEGIN

	return srv, red, blue, redConn, blueConn
}

func tileHandleAt(t *testing.T, st *game.State, col, row int) game.TileHandle {
	t.Helper()
	h, ok := st.TileAt(col, row)
	require.True(t, ok)
	return h
}

func TestHandleMoveRelocatesOntoEmptyAdjacentTile(t *testing.T) {
	srv, red, _, redConn, _ := newDuelServer(t)
	pawnH := srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))
	srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 2, 1))

	msg, err := wire.Pack(wire.TagMove, wire.MovePayload{FromCol: 0, FromRow: 0, ToCol: 1, ToRow: 0})
	require.NoError(t, err)
	srv.handleMove(red, msg)

	got := tagsOf(readMessages(t, redConn, 3))
	require.Equal(t, []wire.MessageTag{wire.TagMove, wire.TagUpdate, wire.TagTurn}, got)

	p := srv.state.Pawn(pawnH)
	require.Equal(t, 1, srv.state.Tile(p.CurTile).Col)
}

// TestHandleMoveUpdateLeavesNoGhostPawnInClientMirror round-trips a MOVE's
// UPDATE through a client Mirror seeded exactly as BEGIN would seed it,
// verifying the mirror ends up with the pawn at its new tile and nothing
// left behind at the old one, per spec.md 4.6's Col/Row-is-the-pre-move-
// key, NewCol/NewRow-is-relocation contract.
func TestHandleMoveUpdateLeavesNoGhostPawnInClientMirror(t *testing.T) {
	srv, red, _, redConn, _ := newDuelServer(t)
	srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))
	srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 2, 1))

	mirror := client.NewMirror()
	mirror.ApplyBegin(wire.BeginPayload{
		Pawns: []wire.PawnUpdate{{Col: 0, Row: 0, Colour: "RED", Range: 1}},
	})

	msg, err := wire.Pack(wire.TagMove, wire.MovePayload{FromCol: 0, FromRow: 0, ToCol: 1, ToRow: 0})
	require.NoError(t, err)
	srv.handleMove(red, msg)

	got := readMessages(t, redConn, 3) // MOVE echo, UPDATE, TURN
	require.Equal(t, wire.TagUpdate, got[1].Tag)
	var payload wire.UpdatePayload
	require.NoError(t, got[1].Unpack(&payload))
	mirror.ApplyUpdate(payload)

	pawns := mirror.Pawns()
	require.Len(t, pawns, 1)
	require.Equal(t, 1, pawns[0].Col)
	require.Equal(t, 0, pawns[0].Row)
}

func TestHandleMoveRejectsWrongTurn(t *testing.T) {
	srv, _, blue, _, blueConn := newDuelServer(t)
	srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 1, 0))

	msg, err := wire.Pack(wire.TagMove, wire.MovePayload{FromCol: 1, FromRow: 0, ToCol: 2, ToRow: 0})
	require.NoError(t, err)
	srv.handleMove(blue, msg)

	got := readMessages(t, blueConn, 1)
	require.Equal(t, wire.TagBadMove, got[0].Tag)
}

func TestHandleMoveCombatDestroysUnshieldedDefender(t *testing.T) {
	srv, red, _, redConn, _ := newDuelServer(t)
	redPawn := srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))
	bluePawn := srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 1, 0))
	srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 2, 1))

	msg, err := wire.Pack(wire.TagMove, wire.MovePayload{FromCol: 0, FromRow: 0, ToCol: 1, ToRow: 0})
	require.NoError(t, err)
	srv.handleMove(red, msg)

	readMessages(t, redConn, 4) // MOVE echo, UPDATE, UPDATE(destroyed), TURN
	require.Nil(t, srv.state.Pawn(bluePawn))

	survivor := srv.state.Pawn(redPawn)
	require.NotNil(t, survivor)
	require.Equal(t, 1, srv.state.Tile(survivor.CurTile).Col, "the attacker must occupy the tile after a killing blow")
}

func TestHandleMoveCombatShieldAbsorbsAndAttackerOccupiesTile(t *testing.T) {
	srv, red, _, redConn, _ := newDuelServer(t)
	redPawn := srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))
	bluePawn := srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 1, 0))
	srv.state.Pawn(bluePawn).Flags |= game.FlagShield

	msg, err := wire.Pack(wire.TagMove, wire.MovePayload{FromCol: 0, FromRow: 0, ToCol: 1, ToRow: 0})
	require.NoError(t, err)
	srv.handleMove(red, msg)

	readMessages(t, redConn, 3)

	attacker := srv.state.Pawn(redPawn)
	require.NotNil(t, attacker)
	require.Equal(t, 1, srv.state.Tile(attacker.CurTile).Col, "the attacker must occupy the tile per spec.md's shield boundary case")

	survivor := srv.state.Pawn(bluePawn)
	require.NotNil(t, survivor)
	require.False(t, survivor.Flags.Has(game.FlagShield))
	require.Equal(t, 0, srv.state.Tile(survivor.CurTile).Col, "the surviving defender is displaced onto the tile the attacker vacated")
}

// TestBroadcastUpdateRemovesPawnThatMovedOutOfFogOfWarView reproduces
// spec.md 8's fog-of-war scenario: an observer whose view already includes
// the mover's old tile receives a MOVE whose accompanying UPDATE omits the
// pawn's new tile entirely (out of view), and must still drop the pawn from
// its mirror rather than leaving a ghost behind at the old tile.
func TestBroadcastUpdateRemovesPawnThatMovedOutOfFogOfWarView(t *testing.T) {
	st := game.NewState(true, false, 7)
	for col := 0; col < 5; col++ {
		st.AddTile(col, 0)
	}
	srv := NewServer("", "duel", st, map[game.Colour]bool{game.Red: true, game.Blue: true})

	redLocal, redConn := connPair()
	blueLocal, blueConn := connPair()

	red, err := srv.sessions.Register(redLocal, "red-player")
	require.NoError(t, err)
	srv.handleJoin(red)

	blue, err := srv.sessions.Register(blueLocal, "blue-player")
	require.NoError(t, err)
	srv.handleJoin(blue)

	readMessages(t, redConn, 4)  // CCOLOUR, GINFO, BEGIN, PJOIN(blue)
	readMessages(t, blueConn, 3) // CCOLOUR, GINFO, BEGIN

	srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))
	srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 2, 0))
	srv.state.CurrentTurnID = 1 // blue's turn; red's own pawn never moves in this test

	mirror := client.NewMirror()
	mirror.ApplyBegin(wire.BeginPayload{
		Pawns: []wire.PawnUpdate{
			{Col: 0, Row: 0, Colour: "RED", Range: 1},
			{Col: 2, Row: 0, Colour: "BLUE", Range: 1},
		},
	})

	// Red's pawn (range 1, so radius 2) can see (2,0) but not (3,0).
	msg, err := wire.Pack(wire.TagMove, wire.MovePayload{FromCol: 2, FromRow: 0, ToCol: 3, ToRow: 0})
	require.NoError(t, err)
	srv.handleMove(blue, msg)

	got := readMessages(t, redConn, 3) // MOVE echo, UPDATE, TURN
	require.Equal(t, wire.TagUpdate, got[1].Tag)
	var payload wire.UpdatePayload
	require.NoError(t, got[1].Unpack(&payload))

	require.Len(t, payload.Pawns, 1)
	require.Equal(t, 2, payload.Pawns[0].Col)
	require.Equal(t, 0, payload.Pawns[0].Row)
	require.True(t, payload.Pawns[0].Destroyed, "the pawn moved out of view, so the observer must be told to drop it")

	mirror.ApplyUpdate(payload)
	pawns := mirror.Pawns()
	require.Len(t, pawns, 1, "only red's own pawn should remain in the mirror")
	require.Equal(t, "RED", pawns[0].Colour)
	for _, p := range pawns {
		require.NotEqual(t, 3, p.Col, "the blue pawn must not have been placed anywhere by this update")
	}
}

func TestHandleMoveOntoBlackHoleDestroysSelf(t *testing.T) {
	srv, red, _, redConn, _ := newDuelServer(t)
	pawnH := srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))
	srv.state.Tile(tileHandleAt(t, srv.state, 1, 0)).HasBlackHole = true

	msg, err := wire.Pack(wire.TagMove, wire.MovePayload{FromCol: 0, FromRow: 0, ToCol: 1, ToRow: 0})
	require.NoError(t, err)
	srv.handleMove(red, msg)

	readMessages(t, redConn, 3)
	require.Nil(t, srv.state.Pawn(pawnH))
}

func TestHandleMovePicksUpPowerAndNotifies(t *testing.T) {
	srv, red, _, redConn, _ := newDuelServer(t)
	srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))
	srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 2, 1))
	dest := srv.state.Tile(tileHandleAt(t, srv.state, 1, 0))
	dest.HasPower = true
	dest.PowerID = "raise"

	msg, err := wire.Pack(wire.TagMove, wire.MovePayload{FromCol: 0, FromRow: 0, ToCol: 1, ToRow: 0})
	require.NoError(t, err)
	srv.handleMove(red, msg)

	got := tagsOf(readMessages(t, redConn, 4))
	require.Equal(t, []wire.MessageTag{wire.TagMove, wire.TagUpdate, wire.TagAddPowerNotification, wire.TagTurn}, got)
	require.False(t, dest.HasPower)
}

func TestHandleUseAppliesUndirectedPower(t *testing.T) {
	srv, red, _, redConn, _ := newDuelServer(t)
	pawnH := srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))
	srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 2, 1))
	srv.state.Pawn(pawnH).AddPower("increase_range")

	msg, err := wire.Pack(wire.TagUse, wire.UsePayload{PawnCol: 0, PawnRow: 0, PowerID: "increase_range"})
	require.NoError(t, err)
	srv.handleUse(red, msg)

	got := tagsOf(readMessages(t, redConn, 5))
	require.Equal(t, []wire.MessageTag{
		wire.TagUse, wire.TagUpdate, wire.TagUsePowerNotification, wire.TagOK, wire.TagTurn,
	}, got)
	require.Equal(t, 2, srv.state.Pawn(pawnH).Range)
	require.False(t, srv.state.Pawn(pawnH).Flags.Has(game.FlagHasPower))
}

func TestHandleUseRejectsPowerNotHeld(t *testing.T) {
	srv, red, _, redConn, _ := newDuelServer(t)
	srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))

	msg, err := wire.Pack(wire.TagUse, wire.UsePayload{PawnCol: 0, PawnRow: 0, PowerID: "increase_range"})
	require.NoError(t, err)
	srv.handleUse(red, msg)

	got := readMessages(t, redConn, 1)
	require.Equal(t, wire.TagBadMove, got[0].Tag)
}

func TestHandleResignDestroysPawnsAndEndsGame(t *testing.T) {
	srv, red, _, redConn, blueConn := newDuelServer(t)
	srv.state.SpawnPawn(game.Red, tileHandleAt(t, srv.state, 0, 0))
	srv.state.SpawnPawn(game.Blue, tileHandleAt(t, srv.state, 1, 0))

	srv.handleResign(red)

	redGot := tagsOf(readMessages(t, redConn, 3)) // UPDATE(destroyed), PQUIT, GOVER
	blueGot := tagsOf(readMessages(t, blueConn, 3))
	require.Equal(t, []wire.MessageTag{wire.TagUpdate, wire.TagPQuit, wire.TagGOver}, redGot)
	require.Equal(t, redGot, blueGot)
	require.Empty(t, srv.state.PlayerPawns(game.Red))
}
