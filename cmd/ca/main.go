//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"eca-morph/internal/app"
	"eca-morph/internal/core"
	"eca-morph/internal/logging"
	_ "eca-morph/internal/sims/elementary"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	log, err := logging.New(os.Stderr, "info", "text")
	if err != nil {
		slog.Error("logger setup failed", "error", err)
		os.Exit(1)
	}
	logging.SetLogger(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid flags", "error", err)
		os.Exit(2)
	}
	factory, ok := core.Lookup(cfg.Sim)
	if !ok {
		log.Error("unknown sim", "sim", cfg.Sim, "available", core.Names())
		os.Exit(2)
	}

	sim := factory(cfg.Set)
	sim.Reset(cfg.Seed)

	game := app.New(sim, cfg)
	size := sim.Size()

	ebiten.SetWindowTitle("eca-morph: " + sim.Name())
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.HUDWidth, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("viewer stopped", "error", err)
		os.Exit(1)
	}
}
