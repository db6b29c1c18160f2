// cmd/runner-term/main.go
//
// Terminal client for the runner. Plays one local session in a tcell
// screen with beep sound effects and submits finished runs to a local
// leaderboard.
//
// Usage:
//
//	runner-term -name Ann [-db ./data/runner.db] [-seed 42] [-log runner.log]
//
// Without -db the leaderboard lives in memory for the lifetime of the process.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/robalobadob/runner/assets"
	"github.com/robalobadob/runner/internal/db"
	"github.com/robalobadob/runner/internal/game"
	"github.com/robalobadob/runner/internal/leaderboard"
)

func main() {
	name := flag.String("name", "", "player name shown on the leaderboard")
	dbPath := flag.String("db", "", "SQLite leaderboard path (in-memory when empty)")
	seed := flag.Uint64("seed", 0, "random seed (0 picks one)")
	logPath := flag.String("log", "", "write debug logs to this file")
	flag.Parse()

	player, err := game.NormalizeName(*name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v (use -name)\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := openLog(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	board, closeBoard, err := openBoard(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open leaderboard: %v\n", err)
		os.Exit(1)
	}
	defer closeBoard()

	if *seed == 0 {
		*seed = rand.Uint64()
	}
	logger.Info().Str("name", player).Uint64("seed", *seed).Msg("starting")
	session, err := game.NewSession(player, game.DefaultConfig(), rand.New(rand.NewPCG(*seed, *seed>>1|1)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	c := newClient(screen, session, board, logger)
	if err := c.initAudio(); err != nil {
		// Non-fatal, the game runs without sound
		logger.Warn().Err(err).Msg("audio initialization failed")
	}
	defer c.cleanup()

	c.run()
}

func openLog(path string) (zerolog.Logger, func(), error) {
	if path == "" {
		return zerolog.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return zerolog.New(f).With().Timestamp().Logger(), func() { f.Close() }, nil
}

func openBoard(path string) (leaderboard.Store, func(), error) {
	if path == "" {
		return leaderboard.NewMemoryStore(), func() {}, nil
	}
	conn, err := db.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(conn, assets.Migrations()); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return leaderboard.NewSQLStore(conn), func() { conn.Close() }, nil
}
