// Package persistence reads scenario files from disk, grounded on the
// teacher's internal/persistence/storage.go LoadTowerConfig/LoadTroopConfig
// shape ("read file, unmarshal, return typed value or error") but retargeted
// at HexRadius's YAML scenario format instead of the teacher's JSON game
// config. The player-account persistence the teacher builds around bcrypt
// has no counterpart here: HexRadius has no persistent accounts (spec.md 1
// Non-goals, "no cryptographic authentication").
package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"hexradius/internal/scenario"
)

// LoadScenario reads "<dir>/<name>.yaml" and parses it into a Scenario,
// per SPEC_FULL.md 6.1. seed drives the resulting game.State's RNG stream.
func LoadScenario(dir, name string, seed int64) (*scenario.Scenario, error) {
	path := filepath.Join(dir, name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persistence: reading scenario %q: %w", path, err)
	}
	sc, err := scenario.Parse(data, seed)
	if err != nil {
		return nil, fmt.Errorf("persistence: loading scenario %q: %w", path, err)
	}
	return sc, nil
}

// ListScenarios returns the base names (without extension) of every
// ".yaml" file in dir, for the server's GINFO/lobby map-listing response.
func ListScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("persistence: listing scenario dir %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, e.Name()[:len(e.Name())-len(".yaml")])
	}
	return names, nil
}
