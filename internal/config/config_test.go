package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("HEXRADIUS_LISTEN_ADDR")
	os.Unsetenv("HEXRADIUS_SCENARIO_DIR")
	os.Unsetenv("HEXRADIUS_LOG_LEVEL")
	os.Unsetenv("HEXRADIUS_KING_OF_THE_HILL")

	cfg := Load()

	require.Equal(t, DefaultListenAddress, cfg.ListenAddr)
	require.Equal(t, DefaultScenarioDir, cfg.ScenarioDir)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.False(t, cfg.KingOfTheHill)
}

func TestLoadReadsOverridesFromEnvironment(t *testing.T) {
	os.Setenv("HEXRADIUS_LISTEN_ADDR", "0.0.0.0:9090")
	os.Setenv("HEXRADIUS_KING_OF_THE_HILL", "true")
	defer os.Unsetenv("HEXRADIUS_LISTEN_ADDR")
	defer os.Unsetenv("HEXRADIUS_KING_OF_THE_HILL")

	cfg := Load()

	require.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	require.True(t, cfg.KingOfTheHill)
}

func TestLoadIgnoresUnparseableBoolean(t *testing.T) {
	os.Setenv("HEXRADIUS_KING_OF_THE_HILL", "not-a-bool")
	defer os.Unsetenv("HEXRADIUS_KING_OF_THE_HILL")

	cfg := Load()

	require.False(t, cfg.KingOfTheHill, "an unparseable override must fall back to the default")
}
