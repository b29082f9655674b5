package client

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hexradius/internal/wire"
)

func newTestClient(t *testing.T) (c *Client, remote net.Conn) {
	t.Helper()
	local, remote := net.Pipe()
	return &Client{Conn: local, Mirror: NewMirror(), Events: NewEventLog()}, remote
}

func TestDispatchAppliesUpdateToMirror(t *testing.T) {
	c, remote := newTestClient(t)
	defer remote.Close()

	go func() {
		msg, _ := wire.Pack(wire.TagUpdate, wire.UpdatePayload{
			Pawns: []wire.PawnUpdate{{Col: 1, Row: 1, Colour: "RED", Range: 1}},
		})
		require.NoError(t, wire.WriteMessage(remote, msg))
	}()

	require.NoError(t, c.Conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msg, err := wire.ReadMessage(c.Conn)
	require.NoError(t, err)
	require.NoError(t, c.dispatch(msg))

	pawns := c.Mirror.Pawns()
	require.Len(t, pawns, 1)
	require.Equal(t, "RED", pawns[0].Colour)
}

func TestDispatchRecordsOwnIdentityFromCColour(t *testing.T) {
	c, remote := newTestClient(t)
	defer remote.Close()

	msg, err := wire.Pack(wire.TagCColour, wire.CColourPayload{PlayerID: 3, Colour: "GREEN"})
	require.NoError(t, err)
	require.NoError(t, c.dispatch(msg))

	require.Equal(t, uint16(3), c.PlayerID)
	require.Equal(t, "GREEN", c.Colour)
}

func TestDispatchRecordsBadMoveInEventLog(t *testing.T) {
	c, remote := newTestClient(t)
	defer remote.Close()

	msg, err := wire.Pack(wire.TagBadMove, wire.BadMovePayload{Reason: "not your turn"})
	require.NoError(t, err)
	require.NoError(t, c.dispatch(msg))

	require.Equal(t, []string{"rejected: not your turn"}, c.Events.Recent(1))
}

func TestSendMoveWritesFramedMoveMessage(t *testing.T) {
	c, remote := newTestClient(t)
	defer remote.Close()

	done := make(chan error, 1)
	go func() { done <- c.SendMove(0, 0, 1, 0) }()

	require.NoError(t, remote.SetReadDeadline(time.Now().Add(2*time.Second)))
	msg, err := wire.ReadMessage(remote)
	require.NoError(t, err)
	require.NoError(t, <-done)

	require.Equal(t, wire.TagMove, msg.Tag)
	var payload wire.MovePayload
	require.NoError(t, msg.Unpack(&payload))
	require.Equal(t, wire.MovePayload{FromCol: 0, FromRow: 0, ToCol: 1, ToRow: 0}, payload)
}
