// Command crisscross-tui plays the dice grid game in a terminal.
//
// Settings come from the same environment as the server (ANCHOR_AT_SEED,
// DAILY_SALT, LOG_LEVEL). Logs go to -log, or nowhere, since the terminal
// belongs to the UI.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/crisscross/internal/config"
	"github.com/robalobadob/crisscross/internal/daily"
	"github.com/robalobadob/crisscross/internal/game"
	"github.com/robalobadob/crisscross/internal/tui"
)

func main() {
	dailyMode := flag.Bool("daily", false, "use today's shared dice sequence")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger := zerolog.Nop()
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("path", *logPath).Msg("open log file")
		}
		defer f.Close()
		lvl, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			lvl = zerolog.InfoLevel
		}
		logger = zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	}

	var seed int64
	if *dailyMode {
		seed = daily.Seed(time.Now(), cfg.DailySalt)
	} else if seed, err = game.NewSeed(); err != nil {
		log.Fatal().Err(err).Msg("seed roller")
	}

	app := tui.New(game.Rules{AnchorAtSeed: cfg.AnchorAtSeed}, game.NewRoller(seed), logger)
	logger.Info().Bool("daily", *dailyMode).Bool("anchorAtSeed", cfg.AnchorAtSeed).Msg("starting tui")
	if err := app.Run(); err != nil {
		log.Fatal().Err(err).Msg("tui exited")
	}
}
