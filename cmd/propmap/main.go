package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"propmap/internal/basemap"
	"propmap/internal/config"
	"propmap/internal/geom"
	"propmap/internal/logger"
	"propmap/internal/observability"
	"propmap/internal/pipeline"
	"propmap/internal/render"
	"propmap/internal/tui"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	outDir := flag.String("out", ".", "directory for exported maps")
	flag.Parse()

	cfg := config.FromEnv()

	// the alt-screen owns stdout, so logs go to a file or nowhere
	logOut, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		return 1
	}
	defer logOut.Close()
	zl := logger.Build(logger.Config{Level: cfg.LogLevel, Component: "tui"}, logOut)
	zl.Info().Str("version", Version).Str("drivers", cfg.Drivers.String()).Msg("starting propmap")

	tiles, err := basemap.New(cfg.Basemap, zl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "basemap: %v\n", err)
		return 1
	}
	renderer, err := render.NewRenderer(tiles, zl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "renderer: %v\n", err)
		return 1
	}
	pipe := pipeline.New(geom.NewLoader(cfg.Drivers), renderer, observability.New(Version), zl)

	opts := tui.Options{Pipeline: pipe, Lang: cfg.Lang, PurchaseURL: cfg.PurchaseURL, OutDir: *outDir}
	var m tea.Model
	if flag.NArg() > 0 {
		m = tui.NewWithPath(opts, flag.Arg(0))
	} else {
		m = tui.New(opts)
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		zl.Error().Err(err).Msg("tui exited with error")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
