package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nutriscan/backend/config"
	"github.com/nutriscan/backend/internal/app"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := config.NewLogger(cfg.Server.Environment, cfg.Log.Level)
	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Dur("cache_ttl", cfg.Cache.TTL).
		Msg("starting NutriScan backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise application")
	}

	if err := application.Serve(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
}
