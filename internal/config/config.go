// Package config loads runtime settings for the ecsframe commands from TOML
// or YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/plus3/ecsframe/ecs"
)

// Config is the root of a config file. Each section maps to one table.
type Config struct {
	Pipeline PipelineConfig `toml:"pipeline" yaml:"pipeline"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Stress   StressConfig   `toml:"stress" yaml:"stress"`
	Window   WindowConfig   `toml:"window" yaml:"window"`
}

// PipelineConfig selects the command flush policy and frame pacing.
type PipelineConfig struct {
	FlushPolicy string        `toml:"flush_policy" yaml:"flush_policy"` // "stage" or "frame"
	TickRate    time.Duration `toml:"tick_rate" yaml:"tick_rate"`       // 0 runs frames back to back
}

// LoggingConfig controls the zap logger built by internal/logging.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// StressConfig parameterizes the ecs-stress run.
type StressConfig struct {
	Duration       time.Duration `toml:"duration" yaml:"duration"`
	Entities       int           `toml:"entities" yaml:"entities"`
	SpawnPerFrame  int           `toml:"spawn_per_frame" yaml:"spawn_per_frame"`
	MaxLifetime    int           `toml:"max_lifetime" yaml:"max_lifetime"` // frames
	Seed           uint64        `toml:"seed" yaml:"seed"`
	GCPauseMetrics bool          `toml:"gc_pause_metrics" yaml:"gc_pause_metrics"`
}

// WindowConfig sizes the ecs-demo window.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// Load reads path over the defaults. The format is chosen by extension:
// .toml, or .yaml / .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("parse config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			FlushPolicy: "stage",
			TickRate:    0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Stress: StressConfig{
			Duration:      10 * time.Second,
			Entities:      10000,
			SpawnPerFrame: 50,
			MaxLifetime:   240,
			Seed:          1,
		},
		Window: WindowConfig{
			Title:  "ecsframe demo",
			Width:  1280,
			Height: 720,
		},
	}
}

// Policy converts the configured flush policy name.
func (c PipelineConfig) Policy() (ecs.FlushPolicy, error) {
	switch strings.ToLower(c.FlushPolicy) {
	case "", "stage":
		return ecs.FlushPerStage, nil
	case "frame":
		return ecs.FlushPerFrame, nil
	default:
		return 0, fmt.Errorf("unknown flush_policy %q", c.FlushPolicy)
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if _, err := c.Pipeline.Policy(); err != nil {
		return err
	}
	if c.Pipeline.TickRate < 0 {
		return fmt.Errorf("pipeline.tick_rate must not be negative, got %s", c.Pipeline.TickRate)
	}
	if c.Stress.Entities < 0 || c.Stress.SpawnPerFrame < 0 {
		return fmt.Errorf("stress entity counts must not be negative")
	}
	if c.Stress.MaxLifetime <= 0 {
		return fmt.Errorf("stress.max_lifetime must be positive, got %d", c.Stress.MaxLifetime)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}
