// Command hexradius-server runs the authoritative HexRadius game server,
// grounded on the teacher's cmd/tcr-server-enhanced/main.go accept-loop
// entry point, replaced end to end with internal/config-driven setup and
// internal/scenario-loaded state instead of the teacher's hardcoded
// listen address and bare ping/pong TCP handler.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hexradius/internal/config"
	"hexradius/internal/persistence"
	"hexradius/internal/server"
)

func main() {
	mapName := flag.String("map", "duel", "scenario name to load, without .yaml extension")
	seed := flag.Int64("seed", 1, "RNG seed for this game")
	flag.Parse()

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	sc, err := persistence.LoadScenario(cfg.ScenarioDir, *mapName, *seed)
	if err != nil {
		log.Fatal().Err(err).Str("map", *mapName).Msg("failed to load scenario")
	}
	if cfg.KingOfTheHill {
		sc.State.KingOfTheHill = true
	}

	log.Info().
		Str("map", *mapName).
		Int("power_catalogue_size", server.RandomPowerCatalogueSize()).
		Msg("starting hexradius server")

	srv := server.NewServer(cfg.ListenAddr, *mapName, sc.State, sc.Colours)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
