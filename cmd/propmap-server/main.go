package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"propmap/internal/basemap"
	"propmap/internal/config"
	"propmap/internal/geom"
	"propmap/internal/logger"
	"propmap/internal/observability"
	"propmap/internal/pipeline"
	"propmap/internal/render"
	"propmap/internal/server"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "server",
	}, os.Stdout)
	zl.Info().
		Str("addr", cfg.Addr).
		Str("version", Version).
		Str("drivers", cfg.Drivers.String()).
		Bool("basemap", cfg.Basemap.Enabled).
		Msg("starting propmap-server")

	tiles, err := basemap.New(cfg.Basemap, zl)
	if err != nil {
		zl.Error().Err(err).Msg("basemap setup failed")
		return 1
	}
	renderer, err := render.NewRenderer(tiles, zl)
	if err != nil {
		zl.Error().Err(err).Msg("renderer setup failed")
		return 1
	}
	metrics := observability.New(Version)
	pipe := pipeline.New(geom.NewLoader(cfg.Drivers), renderer, metrics, zl)
	api := server.NewAPI(cfg, pipe, metrics, zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg.Addr, api.Router(), zl); err != nil {
		zl.Error().Err(err).Msg("server exited with error")
		return 1
	}
	zl.Info().Msg("server stopped")
	return 0
}
