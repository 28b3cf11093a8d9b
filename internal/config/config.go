package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

// maxGroupSize mirrors sim.GroupCapacity; a group holds strictly fewer agents.
const maxGroupSize = 256

type Config struct {
	Sim      SimConfig      `toml:"sim"`
	Groups   []GroupConfig  `toml:"groups"`
	View     ViewConfig     `toml:"view"`
	Logging  LoggingConfig  `toml:"logging"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

type SimConfig struct {
	DT    float64 `toml:"dt"`    // seconds per step
	Seed  int64   `toml:"seed"`  // RNG seed for spawning and random formations
	Ticks int     `toml:"ticks"` // step budget for headless runs
}

// GroupConfig spawns Count randomly scattered agents around (X, Y).
type GroupConfig struct {
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
	Count int     `toml:"count"`
}

type ViewConfig struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Zoom   float64 `toml:"zoom"`
	Speed  int     `toml:"speed"` // steps per frame
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // empty logs to stderr
}

type SnapshotConfig struct {
	Path string `toml:"path"`
}

// Load reads the TOML file at path over Defaults. Keys the file sets that no
// field takes are reported as errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a TOML document over Defaults and validates the result. A
// document that lists groups replaces the default ones.
func Parse(doc string) (*Config, error) {
	cfg := Defaults()
	cfg.Groups = nil
	md, err := toml.Decode(doc, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse: unknown keys %s", strings.Join(keys, ", "))
	}
	if !md.IsDefined("groups") {
		cfg.Groups = Defaults().Groups
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Sim: SimConfig{
			DT:    1.0 / 60.0,
			Seed:  1,
			Ticks: 6000,
		},
		Groups: []GroupConfig{
			{X: 300, Y: 300, Count: 32},
			{X: 900, Y: 400, Count: 24},
		},
		View: ViewConfig{
			Width:  1280,
			Height: 720,
			Zoom:   1,
			Speed:  1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Snapshot: SnapshotConfig{
			Path: "boid-drill.yaml",
		},
	}
}

// Validate reports every setting the simulation cannot run with.
func (c *Config) Validate() error {
	var err error
	if c.Sim.DT <= 0 {
		err = multierr.Append(err, fmt.Errorf("sim.dt must be positive, got %v", c.Sim.DT))
	}
	if c.Sim.Ticks < 0 {
		err = multierr.Append(err, fmt.Errorf("sim.ticks must not be negative, got %d", c.Sim.Ticks))
	}
	for i, g := range c.Groups {
		if g.Count < 0 || g.Count >= maxGroupSize {
			err = multierr.Append(err, fmt.Errorf("groups[%d].count must be in [0,%d), got %d", i, maxGroupSize, g.Count))
		}
	}
	if c.View.Width <= 0 || c.View.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("view size must be positive, got %dx%d", c.View.Width, c.View.Height))
	}
	if c.View.Zoom <= 0 {
		err = multierr.Append(err, fmt.Errorf("view.zoom must be positive, got %v", c.View.Zoom))
	}
	if c.View.Speed < 1 {
		err = multierr.Append(err, fmt.Errorf("view.speed must be at least 1, got %d", c.View.Speed))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return err
}
