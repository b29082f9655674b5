// Package wire implements HexRadius's length-prefixed binary message
// protocol (spec.md 4.6): every message on the wire is a big-endian u32
// length followed by a JSON payload tagged with a MessageTag. Grounded on
// the teacher's internal/network.EncodeJSON/DecodeJSON (encoding/json
// marshal/unmarshal at the edges) plus the length-prefix framing pattern
// christopherWilliams98-risk-agent uses encoding/binary for elsewhere
// (game/state.go's StateHash), combined here into an actual wire framer
// since the teacher streams bare json.Decoder/Encoder without a frame
// length.
package wire

import "encoding/json"

// MessageTag enumerates the tag set spec.md 4.6 requires verbatim.
type MessageTag string

const (
	TagInit                     MessageTag = "INIT"
	TagGInfo                    MessageTag = "GINFO"
	TagPJoin                    MessageTag = "PJOIN"
	TagPQuit                    MessageTag = "PQUIT"
	TagCColour                  MessageTag = "CCOLOUR"
	TagChangeSetting            MessageTag = "CHANGE_SETTING"
	TagChangeMap                MessageTag = "CHANGE_MAP"
	TagAddAI                    MessageTag = "ADD_AI"
	TagKick                     MessageTag = "KICK"
	TagBegin                    MessageTag = "BEGIN"
	TagTurn                     MessageTag = "TURN"
	TagMove                     MessageTag = "MOVE"
	TagForceMove                MessageTag = "FORCE_MOVE"
	TagDestroy                  MessageTag = "DESTROY"
	TagUse                      MessageTag = "USE"
	TagUpdate                   MessageTag = "UPDATE"
	TagGOver                    MessageTag = "GOVER"
	TagQuit                     MessageTag = "QUIT"
	TagBadMove                  MessageTag = "BADMOVE"
	TagOK                       MessageTag = "OK"
	TagResign                   MessageTag = "RESIGN"
	TagPawnAnimation            MessageTag = "PAWN_ANIMATION"
	TagTileAnimation            MessageTag = "TILE_ANIMATION"
	TagParticleAnimation        MessageTag = "PARTICLE_ANIMATION"
	TagAddPowerNotification     MessageTag = "ADD_POWER_NOTIFICATION"
	TagUsePowerNotification     MessageTag = "USE_POWER_NOTIFICATION"
	TagScoreUpdate              MessageTag = "SCORE_UPDATE"
)

// Message is the self-describing envelope every frame carries, the same
// tag+raw-payload shape the teacher's TCPMessage envelope uses in
// internal/network, generalized from a single fixed struct to a raw
// json.RawMessage payload since HexRadius's tag set is far larger.
type Message struct {
	Tag     MessageTag      `json:"tag"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Pack marshals a typed payload into a Message carrying the given tag.
func Pack(tag MessageTag, payload interface{}) (Message, error) {
	if payload == nil {
		return Message{Tag: tag}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Tag: tag, Payload: raw}, nil
}

// Unpack decodes a Message's payload into dst, mirroring the teacher's
// DecodeJSON(data, v) contract.
func (m Message) Unpack(dst interface{}) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, dst)
}

// PlayerInfo is the players[] tuple of spec.md 4.6.
type PlayerInfo struct {
	ID     uint16 `json:"id"`
	Name   string `json:"name"`
	Colour string `json:"colour"`
	Score  int    `json:"score"`
}

// TileUpdate is one tiles[] record: coord always present, every other
// field optional so an UPDATE can carry a partial delta (spec.md 4.6).
type TileUpdate struct {
	Col              int     `json:"col"`
	Row              int     `json:"row"`
	Height           *int    `json:"height,omitempty"`
	Smashed          *bool   `json:"smashed,omitempty"`
	HasPower         *bool   `json:"has_power,omitempty"`
	PowerID          *string `json:"power_id,omitempty"`
	HasMine          *bool   `json:"has_mine,omitempty"`
	MineColour       *string `json:"mine_colour,omitempty"`
	HasLandingPad    *bool   `json:"has_landing_pad,omitempty"`
	LandingPadColour *string `json:"landing_pad_colour,omitempty"`
	HasBlackHole     *bool   `json:"has_black_hole,omitempty"`
	HasEye           *bool   `json:"has_eye,omitempty"`
	EyeColour        *string `json:"eye_colour,omitempty"`
	Wrap             *int    `json:"wrap,omitempty"`
	Hill             *bool   `json:"hill,omitempty"`
}

// PawnUpdate is one pawns[] record per spec.md 4.6's field table.
type PawnUpdate struct {
	Col      int      `json:"col"`
	Row      int      `json:"row"`
	NewCol   *int     `json:"new_col,omitempty"`
	NewRow   *int     `json:"new_row,omitempty"`
	Colour   string   `json:"colour"`
	Flags    uint16   `json:"flags"`
	Range    int      `json:"range"`
	Powers   []string `json:"powers,omitempty"`
	UsePower *string  `json:"use_power,omitempty"`
	// Destroyed marks this pawn removed from the board; not part of
	// spec.md's literal field list but required so UPDATE can express a
	// destruction without a client needing to diff a missing pawn.
	Destroyed bool `json:"destroyed,omitempty"`
}

// MiscArg is one free-form animation argument (spec.md 4.6, "misc[]
// (key,int/float/string)").
type MiscArg struct {
	Key        string   `json:"key"`
	IntVal     *int     `json:"int_val,omitempty"`
	FloatVal   *float64 `json:"float_val,omitempty"`
	StringVal  *string  `json:"string_val,omitempty"`
}

type InitPayload struct {
	PlayerName string `json:"player_name"`
}

type GInfoPayload struct {
	Players       []PlayerInfo `json:"players"`
	MapName       string       `json:"map_name"`
	FogOfWar      bool         `json:"fog_of_war"`
	KingOfTheHill bool         `json:"king_of_the_hill"`
}

type PJoinPayload struct {
	Player PlayerInfo `json:"player"`
}

type PQuitPayload struct {
	PlayerID uint16 `json:"player_id"`
	QuitMsg  string `json:"quit_msg"`
}

type CColourPayload struct {
	PlayerID uint16 `json:"player_id"`
	Colour   string `json:"colour"`
}

type ChangeSettingPayload struct {
	FogOfWar      *bool `json:"fog_of_war,omitempty"`
	KingOfTheHill *bool `json:"king_of_the_hill,omitempty"`
}

type ChangeMapPayload struct {
	MapName string `json:"map_name"`
}

type AddAIPayload struct {
	Colour string `json:"colour"`
}

type KickPayload struct {
	PlayerID uint16 `json:"player_id"`
}

type BeginPayload struct {
	Players       []PlayerInfo `json:"players"`
	Tiles         []TileUpdate `json:"tiles"`
	Pawns         []PawnUpdate `json:"pawns"`
	FogOfWar      bool         `json:"fog_of_war"`
	KingOfTheHill bool         `json:"king_of_the_hill"`
}

type TurnPayload struct {
	PlayerID uint16 `json:"player_id"`
}

type MovePayload struct {
	FromCol int `json:"from_col"`
	FromRow int `json:"from_row"`
	ToCol   int `json:"to_col"`
	ToRow   int `json:"to_row"`
}

type ForceMovePayload struct {
	MovePayload
	PawnColour string `json:"pawn_colour"`
}

type DestroyPayload struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

type UsePayload struct {
	PawnCol        int    `json:"pawn_col"`
	PawnRow        int    `json:"pawn_row"`
	PowerID        string `json:"power_id"`
	PowerDirection uint16 `json:"power_direction"`
	TargetCol      *int   `json:"target_col,omitempty"`
	TargetRow      *int   `json:"target_row,omitempty"`
}

type UpdatePayload struct {
	Tiles         []TileUpdate `json:"tiles,omitempty"`
	Pawns         []PawnUpdate `json:"pawns,omitempty"`
	PowerRandVals []int        `json:"power_rand_vals,omitempty"`
}

type GOverPayload struct {
	WinnerColour *string `json:"winner_colour,omitempty"`
	Draw         bool    `json:"draw"`
}

type QuitPayload struct {
	Reason string `json:"reason"`
}

type BadMovePayload struct {
	Reason string `json:"reason"`
}

type PawnAnimationPayload struct {
	Col           int       `json:"col"`
	Row           int       `json:"row"`
	AnimationName string    `json:"animation_name"`
	Misc          []MiscArg `json:"misc,omitempty"`
}

type TileAnimationPayload struct {
	Col           int    `json:"col"`
	Row           int    `json:"row"`
	AnimationName string `json:"animation_name"`
	DelayFactor   int    `json:"delay_factor"`
}

type ParticleAnimationPayload struct {
	Col           int    `json:"col"`
	Row           int    `json:"row"`
	AnimationName string `json:"animation_name"`
}

type AddPowerNotificationPayload struct {
	Col     int    `json:"col"`
	Row     int    `json:"row"`
	PowerID string `json:"power_id"`
}

type UsePowerNotificationPayload struct {
	PlayerID uint16 `json:"player_id"`
	PowerID  string `json:"power_id"`
}

type ScoreUpdatePayload struct {
	PlayerID uint16 `json:"player_id"`
	Score    int    `json:"score"`
}
