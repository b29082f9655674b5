// Package scenario loads a YAML board description into an initial
// *game.State, grounded on the teacher's persistence.LoadTowerConfig
// (internal/persistence/storage.go: "read file, unmarshal, return typed
// value or error") but retargeted at HexRadius's YAML scenario format
// (SPEC_FULL.md 6.1) instead of the teacher's JSON troop/tower config.
package scenario

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"hexradius/internal/game"
)

// ErrMalformedScenario wraps every scenario validation failure, per
// SPEC_FULL.md 3.2's sentinel-error convention.
var ErrMalformedScenario = errors.New("scenario: malformed")

// tileDef is the on-disk shape of one tile entry.
type tileDef struct {
	Col              int      `yaml:"col"`
	Row              int      `yaml:"row"`
	Height           int      `yaml:"height"`
	HasMine          bool     `yaml:"has_mine"`
	MineColour       string   `yaml:"mine_colour"`
	HasLandingPad    bool     `yaml:"has_landing_pad"`
	LandingPadColour string   `yaml:"landing_pad_colour"`
	HasBlackHole     bool     `yaml:"has_black_hole"`
	HasEye           bool     `yaml:"has_eye"`
	EyeColour        string   `yaml:"eye_colour"`
	Wrap             []string `yaml:"wrap"`
	Hill             bool     `yaml:"hill"`
}

// pawnDef is the on-disk shape of one starting pawn entry.
type pawnDef struct {
	Col    int    `yaml:"col"`
	Row    int    `yaml:"row"`
	Colour string `yaml:"colour"`
}

// document is the root shape of a scenario YAML file.
type document struct {
	FogOfWar      bool      `yaml:"fog_of_war"`
	KingOfTheHill bool      `yaml:"king_of_the_hill"`
	Colours       []string  `yaml:"colours"`
	Tiles         []tileDef `yaml:"tiles"`
	Pawns         []pawnDef `yaml:"pawns"`
}

var wrapBits = map[string]game.WrapEdge{
	"E": game.WrapEast, "SE": game.WrapSoutheast, "SW": game.WrapSouthwest,
	"W": game.WrapWest, "NW": game.WrapNorthwest, "NE": game.WrapNortheast,
}

// Scenario is the loaded, validated result: an initial game state plus the
// set of team colours this map admits.
type Scenario struct {
	State   *game.State
	Colours map[game.Colour]bool
}

// Parse decodes and validates raw YAML bytes into a Scenario. Unknown keys
// are rejected via yaml.v3's KnownFields strict decoding, per SPEC_FULL.md
// 6.1.
func Parse(data []byte, seed int64) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedScenario, err)
	}

	s := game.NewState(doc.FogOfWar, doc.KingOfTheHill, seed)

	colours := make(map[game.Colour]bool, len(doc.Colours))
	for _, c := range doc.Colours {
		col, ok := game.ParseColour(c)
		if !ok {
			return nil, fmt.Errorf("%w: unknown colour %q in colours list", ErrMalformedScenario, c)
		}
		colours[col] = true
	}

	seen := make(map[game.Coord]bool, len(doc.Tiles))
	for _, td := range doc.Tiles {
		coord := game.Coord{Col: td.Col, Row: td.Row}
		if seen[coord] {
			return nil, fmt.Errorf("%w: duplicate tile at (%d,%d)", ErrMalformedScenario, td.Col, td.Row)
		}
		seen[coord] = true

		if td.Height < -2 || td.Height > 2 {
			return nil, fmt.Errorf("%w: tile (%d,%d) height %d out of range [-2,2]", ErrMalformedScenario, td.Col, td.Row, td.Height)
		}
		if td.Hill && !doc.KingOfTheHill {
			return nil, fmt.Errorf("%w: tile (%d,%d) marked hill but king_of_the_hill is false", ErrMalformedScenario, td.Col, td.Row)
		}

		h := s.AddTile(td.Col, td.Row)
		tile := s.Tile(h)
		tile.Height = td.Height
		tile.Hill = td.Hill
		tile.HasBlackHole = td.HasBlackHole

		if td.HasMine {
			mc, ok := game.ParseColour(td.MineColour)
			if !ok {
				return nil, fmt.Errorf("%w: tile (%d,%d) has_mine with unknown mine_colour %q", ErrMalformedScenario, td.Col, td.Row, td.MineColour)
			}
			tile.HasMine, tile.MineColour = true, mc
		}
		if td.HasLandingPad {
			lc, ok := game.ParseColour(td.LandingPadColour)
			if !ok {
				return nil, fmt.Errorf("%w: tile (%d,%d) has_landing_pad with unknown landing_pad_colour %q", ErrMalformedScenario, td.Col, td.Row, td.LandingPadColour)
			}
			tile.HasLandingPad, tile.LandingPadColour = true, lc
		}
		if td.HasEye {
			ec, ok := game.ParseColour(td.EyeColour)
			if !ok {
				return nil, fmt.Errorf("%w: tile (%d,%d) has_eye with unknown eye_colour %q", ErrMalformedScenario, td.Col, td.Row, td.EyeColour)
			}
			tile.HasEye, tile.EyeColour = true, ec
		}
		for _, w := range td.Wrap {
			bit, ok := wrapBits[w]
			if !ok {
				return nil, fmt.Errorf("%w: tile (%d,%d) unknown wrap edge %q", ErrMalformedScenario, td.Col, td.Row, w)
			}
			tile.Wrap |= bit
		}
	}

	for _, pd := range doc.Pawns {
		th, ok := s.TileAt(pd.Col, pd.Row)
		if !ok {
			return nil, fmt.Errorf("%w: pawn at (%d,%d) references a nonexistent tile", ErrMalformedScenario, pd.Col, pd.Row)
		}
		col, ok := game.ParseColour(pd.Colour)
		if !ok {
			return nil, fmt.Errorf("%w: pawn at (%d,%d) has unknown colour %q", ErrMalformedScenario, pd.Col, pd.Row, pd.Colour)
		}
		if !colours[col] {
			return nil, fmt.Errorf("%w: pawn at (%d,%d) colour %q is not in this scenario's colours list", ErrMalformedScenario, pd.Col, pd.Row, pd.Colour)
		}
		if _, occupied := s.PawnAt(pd.Col, pd.Row); occupied {
			return nil, fmt.Errorf("%w: two pawns placed on tile (%d,%d)", ErrMalformedScenario, pd.Col, pd.Row)
		}
		s.SpawnPawn(col, th)
	}

	if err := s.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedScenario, err)
	}

	return &Scenario{State: s, Colours: colours}, nil
}
