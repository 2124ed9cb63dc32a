package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/crisscross/internal/config"
	"github.com/robalobadob/crisscross/internal/game"
	"github.com/robalobadob/crisscross/internal/httpserver"
	"github.com/robalobadob/crisscross/internal/session"
	"github.com/robalobadob/crisscross/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.SessionSecret == "dev_secret_change_me" {
		log.Warn().Msg("SESSION_SECRET is the development default")
	}

	tokens, err := session.New(session.Options{
		Secret:     cfg.SessionSecret,
		TTL:        cfg.SessionTTL,
		CookieName: cfg.CookieName,
		Secure:     cfg.Production,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up sessions")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, tokens, httpserver.Options{
		ClientOrigin:   cfg.ClientOrigin,
		DailySalt:      cfg.DailySalt,
		Rules:          game.Rules{AnchorAtSeed: cfg.AnchorAtSeed},
		RequestTimeout: cfg.RequestTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("port", cfg.Port).Bool("anchorAtSeed", cfg.AnchorAtSeed).Msg("starting crisscross server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
