// main.go
//
// Entry point for the runner game server.
//   - Loads configuration from `.env` and the environment.
//   - Sets up zerolog (console for development, JSON for production).
//   - Opens SQLite, applies embedded migrations, picks the leaderboard backend.
//   - Serves HTTP until SIGINT/SIGTERM, then drains pending run recordings.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/runner/assets"
	"github.com/robalobadob/runner/internal/config"
	"github.com/robalobadob/runner/internal/db"
	"github.com/robalobadob/runner/internal/httpserver"
	"github.com/robalobadob/runner/internal/leaderboard"
	"github.com/robalobadob/runner/internal/store"
)

func main() {
	cfg, err := config.Load()
	setupLogging(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer conn.Close()
	if err := db.Migrate(conn, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	var board leaderboard.Store
	switch cfg.LeaderboardBackend {
	case config.BackendMemory:
		board = leaderboard.NewMemoryStore()
	default:
		board = leaderboard.NewSQLStore(conn)
	}

	reserved, err := assets.ReservedNames()
	if err != nil {
		log.Fatal().Err(err).Msg("load reserved names")
	}

	srv := httpserver.New(httpserver.Options{
		Config:      cfg,
		Sessions:    store.NewMemoryStore(),
		Leaderboard: board,
		DB:          conn,
		Reserved:    reserved,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("port", cfg.Port).
		Str("leaderboard", cfg.LeaderboardBackend).
		Int("tickRate", cfg.TickRate).
		Msg("starting runner server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT. It runs before config
// validation so that a bad config is still reported readably.
func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogFormat != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
