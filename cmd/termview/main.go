package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/Garsondee/Boid-Drill/internal/config"
	"github.com/Garsondee/Boid-Drill/internal/logging"
	"github.com/Garsondee/Boid-Drill/internal/sim"
)

const logHistory = 5000

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "termview: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath string
	var scale float64
	flag.StringVar(&cfgPath, "config", "", "TOML config file (defaults when empty)")
	flag.Float64Var(&scale, "scale", 8, "world units per terminal column")
	flag.Parse()

	cfg := config.Defaults()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
	}

	// The terminal owns the screen; only log when a file is configured.
	logger := zap.NewNop()
	if cfg.Logging.File != "" {
		var err error
		if logger, err = logging.New(cfg.Logging); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
	}
	defer func() { _ = logger.Sync() }()

	rng := rand.New(rand.NewSource(cfg.Sim.Seed)) // #nosec G404 -- simulation, not crypto
	world := sim.NewWorld(rng, sim.NewSimLog(false).WithLogger(logger).WithLimit(logHistory))
	for _, gc := range cfg.Groups {
		world.SpawnGroup(sim.V(gc.X, gc.Y), gc.Count)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	logger.Info("termview started", zap.Int("groups", len(cfg.Groups)))
	NewViewer(screen, world, logger, cfg.Sim.DT, scale).Run()
	return nil
}
