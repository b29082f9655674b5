package client

import (
	"fmt"
	"net"

	"github.com/rs/zerolog/log"

	"hexradius/internal/wire"
)

// Client owns one connection to a HexRadius server plus the replicated
// board and event scrollback it feeds, grounded on the teacher's Client
// struct (internal/client/client.go) but replacing its
// PlayerAccount/TCPConn/UDPConn login-session shape with a single TCP
// connection and no persisted account, per HexRadius's Non-goal on
// cryptographic authentication.
type Client struct {
	Conn   net.Conn
	Mirror *Mirror
	Events *EventLog

	PlayerID uint16
	Colour   string
}

// Dial connects to addr and sends INIT, modelled on the teacher's
// Authenticate (dial, send credentials) with the login exchange swapped for
// HexRadius's INIT. It returns without waiting for a reply; the server's
// CCOLOUR/GINFO/BEGIN sequence is read later by ListenForMessages.
func Dial(addr, playerName string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}
	init, err := wire.Pack(wire.TagInit, wire.InitPayload{PlayerName: playerName})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := wire.WriteMessage(conn, init); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: sending INIT: %w", err)
	}
	return &Client{
		Conn:   conn,
		Mirror: NewMirror(),
		Events: NewEventLog(),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.Conn.Close()
}

// ListenForMessages runs the client's read loop, mirroring the teacher's
// ListenForUDPMessages (internal/client/network_handler.go): decode one
// frame, dispatch by tag, repeat until the connection errors. onRedraw is
// invoked after any message that changes what should be on screen; it may
// be nil.
func (c *Client) ListenForMessages(onRedraw func()) error {
	redraw := onRedraw
	if redraw == nil {
		redraw = func() {}
	}
	for {
		msg, err := wire.ReadMessage(c.Conn)
		if err != nil {
			return fmt.Errorf("client: connection closed: %w", err)
		}
		if err := c.dispatch(msg); err != nil {
			log.Warn().Err(err).Str("tag", string(msg.Tag)).Msg("failed to handle message")
			continue
		}
		redraw()
	}
}

func (c *Client) dispatch(msg wire.Message) error {
	switch msg.Tag {
	case wire.TagCColour:
		var p wire.CColourPayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.PlayerID = p.PlayerID
		c.Colour = p.Colour
	case wire.TagGInfo:
		var p wire.GInfoPayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Mirror.ApplyGInfo(p)
	case wire.TagBegin:
		var p wire.BeginPayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Mirror.ApplyBegin(p)
	case wire.TagUpdate:
		var p wire.UpdatePayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Mirror.ApplyUpdate(p)
	case wire.TagTurn:
		var p wire.TurnPayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Mirror.ApplyTurn(p)
	case wire.TagGOver:
		var p wire.GOverPayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Mirror.ApplyGOver(p)
	case wire.TagScoreUpdate:
		var p wire.ScoreUpdatePayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Mirror.ApplyScoreUpdate(p)
	case wire.TagPJoin:
		var p wire.PJoinPayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Events.Add(fmt.Sprintf("%s joined as %s", p.Player.Name, p.Player.Colour))
	case wire.TagPQuit:
		var p wire.PQuitPayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Events.Add(fmt.Sprintf("player %d left: %s", p.PlayerID, p.QuitMsg))
	case wire.TagAddPowerNotification:
		var p wire.AddPowerNotificationPayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Events.Add(fmt.Sprintf("power %s picked up at (%d,%d)", p.PowerID, p.Col, p.Row))
	case wire.TagUsePowerNotification:
		var p wire.UsePowerNotificationPayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Events.Add(fmt.Sprintf("player %d used %s", p.PlayerID, p.PowerID))
	case wire.TagBadMove:
		var p wire.BadMovePayload
		if err := msg.Unpack(&p); err != nil {
			return err
		}
		c.Events.Add("rejected: " + p.Reason)
	case wire.TagTileAnimation, wire.TagParticleAnimation, wire.TagPawnAnimation,
		wire.TagMove, wire.TagUse, wire.TagOK, wire.TagChangeSetting,
		wire.TagChangeMap, wire.TagQuit, wire.TagForceMove, wire.TagDestroy:
		// Purely cosmetic or already reflected by the UPDATE that
		// accompanies it; nothing further to mirror.
	default:
		return fmt.Errorf("unrecognized tag %q", msg.Tag)
	}
	return nil
}

// SendMove submits a MOVE action, per spec.md 4.4.
func (c *Client) SendMove(fromCol, fromRow, toCol, toRow int) error {
	return c.send(wire.TagMove, wire.MovePayload{FromCol: fromCol, FromRow: fromRow, ToCol: toCol, ToRow: toRow})
}

// SendUse submits a USE action, targeting a tile only when the power
// requires one.
func (c *Client) SendUse(pawnCol, pawnRow int, powerID string, direction uint16, targetCol, targetRow *int) error {
	return c.send(wire.TagUse, wire.UsePayload{
		PawnCol: pawnCol, PawnRow: pawnRow, PowerID: powerID,
		PowerDirection: direction, TargetCol: targetCol, TargetRow: targetRow,
	})
}

// SendResign submits a RESIGN action.
func (c *Client) SendResign() error {
	return c.send(wire.TagResign, nil)
}

// SendChangeSetting is an admin-only lobby toggle.
func (c *Client) SendChangeSetting(fogOfWar, kingOfTheHill *bool) error {
	return c.send(wire.TagChangeSetting, wire.ChangeSettingPayload{FogOfWar: fogOfWar, KingOfTheHill: kingOfTheHill})
}

// SendAddAI is an admin-only AI-admission request.
func (c *Client) SendAddAI(colour string) error {
	return c.send(wire.TagAddAI, wire.AddAIPayload{Colour: colour})
}

// SendKick is an admin-only player-eviction request.
func (c *Client) SendKick(playerID uint16) error {
	return c.send(wire.TagKick, wire.KickPayload{PlayerID: playerID})
}

func (c *Client) send(tag wire.MessageTag, payload interface{}) error {
	msg, err := wire.Pack(tag, payload)
	if err != nil {
		return err
	}
	return wire.WriteMessage(c.Conn, msg)
}
