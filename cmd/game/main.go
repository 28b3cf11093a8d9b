package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/Garsondee/Boid-Drill/internal/config"
	"github.com/Garsondee/Boid-Drill/internal/game"
	"github.com/Garsondee/Boid-Drill/internal/logging"
	"github.com/Garsondee/Boid-Drill/internal/sim"
)

// feedHistory bounds the in-memory event history behind the side panel.
const feedHistory = 5000

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "TOML config file (defaults when empty)")
	flag.Parse()

	cfg := config.Defaults()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	rng := rand.New(rand.NewSource(cfg.Sim.Seed)) // #nosec G404 -- simulation, not crypto
	world := sim.NewWorld(rng, sim.NewSimLog(false).WithLogger(logger).WithLimit(feedHistory))
	for _, gc := range cfg.Groups {
		world.SpawnGroup(sim.V(gc.X, gc.Y), gc.Count)
	}
	logger.Info("world ready",
		zap.Int("groups", len(cfg.Groups)),
		zap.Int64("seed", cfg.Sim.Seed),
		zap.Float64("dt", cfg.Sim.DT),
	)

	ebiten.SetWindowTitle("Boid Drill")
	ebiten.SetWindowSize(cfg.View.Width, cfg.View.Height)
	if err := ebiten.RunGame(game.New(cfg, world, logger)); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
