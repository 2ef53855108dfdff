// Package config holds the explicit simulation configuration.
// Constructors take a Config value instead of reading ambient globals,
// so tests can vary decay rates, thresholds, and speeds per run.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "60s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Tuning holds the rule constants that drive agent behavior.
type Tuning struct {
	NeedDecay   float64 `yaml:"need_decay"`   // Per-tick decay applied to every need
	Critical    float64 `yaml:"critical"`     // Below this a need drains health
	Low         float64 `yaml:"low"`          // Below this a need is flagged LOW to the oracle
	MaxHealth   float64 `yaml:"max_health"`
	HealthDrain float64 `yaml:"health_drain"` // Per critical need, per tick
	HealthRegen float64 `yaml:"health_regen"` // Per tick when no need is critical
	MoveSpeed   float64 `yaml:"move_speed"`   // Map units per tick
	GraphDegree int     `yaml:"graph_degree"` // Nearest neighbors per zone in the nav graph
}

// Oracle holds the decision service parameters.
type Oracle struct {
	URL           string   `yaml:"url"`
	Timeout       Duration `yaml:"timeout"`
	ThinkInterval uint64   `yaml:"think_interval"` // Ticks between Decide() calls
	MaxTokens     int      `yaml:"max_tokens"`
	Temperature   float64  `yaml:"temperature"`
	Stop          []string `yaml:"stop"`
}

// API holds the observation surface parameters.
type API struct {
	Port              int      `yaml:"port"`
	BroadcastInterval Duration `yaml:"broadcast_interval"` // WebSocket snapshot cadence
}

// Journal holds the diagnostic journal parameters.
type Journal struct {
	Path string `yaml:"path"`
}

// World selects how the zone layout is built.
type World struct {
	Layout string `yaml:"layout"` // "static" or "generated"
	Homes  int    `yaml:"homes"`  // Home zone count for generated layouts
}

// Config is the full simulation configuration.
type Config struct {
	Seed    int64   `yaml:"seed"`
	World   World   `yaml:"world"`
	Tuning  Tuning  `yaml:"tuning"`
	Oracle  Oracle  `yaml:"oracle"`
	API     API     `yaml:"api"`
	Journal Journal `yaml:"journal"`
}

// Default returns the configuration matching the reference world.
func Default() Config {
	return Config{
		Seed: 42,
		World: World{
			Layout: "static",
			Homes:  3,
		},
		Tuning: Tuning{
			NeedDecay:   0.006,
			Critical:    2.5,
			Low:         4.0,
			MaxHealth:   100.0,
			HealthDrain: 0.03,
			HealthRegen: 0.01,
			MoveSpeed:   5.0,
			GraphDegree: 4,
		},
		Oracle: Oracle{
			URL:           "http://127.0.0.1:8080/completion",
			Timeout:       Duration(60 * time.Second),
			ThinkInterval: 90,
			MaxTokens:     120,
			Temperature:   0.25,
			Stop:          []string{"<|im_end|>"},
		},
		API: API{
			Port:              8090,
			BroadcastInterval: Duration(250 * time.Millisecond),
		},
		Journal: Journal{
			Path: "data/lifesim.db",
		},
	}
}

// Load reads a YAML config file, filling unset sections from Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c Config) Validate() error {
	if c.Tuning.MoveSpeed <= 0 {
		return fmt.Errorf("move_speed must be positive, got %v", c.Tuning.MoveSpeed)
	}
	if c.Tuning.MaxHealth <= 0 {
		return fmt.Errorf("max_health must be positive, got %v", c.Tuning.MaxHealth)
	}
	if c.Tuning.GraphDegree < 1 {
		return fmt.Errorf("graph_degree must be at least 1, got %d", c.Tuning.GraphDegree)
	}
	if c.Oracle.ThinkInterval == 0 {
		return fmt.Errorf("think_interval must be nonzero")
	}
	if c.World.Layout != "static" && c.World.Layout != "generated" {
		return fmt.Errorf("layout must be static or generated, got %q", c.World.Layout)
	}
	return nil
}
