// Package config loads HexRadius's process configuration from a .env file
// and the environment, per SPEC_FULL.md 3.3, grounded on the pack's
// garbhj-motion-demo/server/config/config.go (godotenv.Load then
// os.Getenv), replacing the teacher's hardcoded
// DefaultListenAddress package const with env-driven values while keeping
// the teacher's default when a variable is unset.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultListenAddress = "localhost:8080"
	DefaultScenarioDir   = "scenario/"
	DefaultLogLevel      = "info"
)

// Config holds every process-level setting the server and client read,
// per SPEC_FULL.md 3.3.
type Config struct {
	ListenAddr    string
	ScenarioDir   string
	LogLevel      string
	KingOfTheHill bool
}

// Load reads a .env file if present (godotenv.Load returns an error when the
// file is missing; Load logs that error at debug level and carries on,
// unlike the teacher's InitConfig, which treats a missing .env as fatal),
// then resolves each setting from the environment, falling back to the
// defaults above.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file found, using process environment only")
	}

	cfg := Config{
		ListenAddr:    getEnvOr("HEXRADIUS_LISTEN_ADDR", DefaultListenAddress),
		ScenarioDir:   getEnvOr("HEXRADIUS_SCENARIO_DIR", DefaultScenarioDir),
		LogLevel:      getEnvOr("HEXRADIUS_LOG_LEVEL", DefaultLogLevel),
		KingOfTheHill: getEnvBool("HEXRADIUS_KING_OF_THE_HILL", false),
	}
	log.Info().
		Str("listen_addr", cfg.ListenAddr).
		Str("scenario_dir", cfg.ScenarioDir).
		Str("log_level", cfg.LogLevel).
		Bool("king_of_the_hill", cfg.KingOfTheHill).
		Msg("configuration loaded")
	return cfg
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("could not parse boolean env var, using default")
		return fallback
	}
	return b
}
