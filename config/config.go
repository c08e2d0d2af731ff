// Package config loads the server configuration: YAML over built-in
// defaults, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"frontier-realm/server/services"
	"frontier-realm/server/worldgen"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Server      ServerConfig            `yaml:"server"`
	World       worldgen.Config         `yaml:"world"`
	Viewport    services.ViewportConfig `yaml:"viewport"`
	Exploration ExplorationConfig       `yaml:"exploration"`
	Objective   ObjectiveConfig         `yaml:"objective"`
	Persistence PersistenceConfig       `yaml:"persistence"`
	Log         LogConfig               `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	SampleInterval  time.Duration `yaml:"sample_interval"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type ExplorationConfig struct {
	Radius int `yaml:"radius"`
}

type ObjectiveConfig struct {
	// Target destroyed structures; 0 means all of them.
	Target int `yaml:"target"`
}

type PersistenceConfig struct {
	Type string `yaml:"type"` // json, sqlite, postgres, none
	File string `yaml:"file"`
	DSN  string `yaml:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			SweepInterval:   5 * time.Second,
			SampleInterval:  10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		World:       worldgen.DefaultConfig(),
		Viewport:    services.DefaultViewportConfig(),
		Exploration: ExplorationConfig{Radius: 8},
		Persistence: PersistenceConfig{
			Type: "json",
			File: "diagnostics.json",
			DSN:  "host=localhost user=frontier password=frontier dbname=frontier_realm sslmode=disable",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path over Default, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DB_TYPE"); v != "" {
		c.Persistence.Type = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Persistence.DSN = v
	}
	if v := os.Getenv("DB_FILE"); v != "" {
		c.Persistence.File = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Server.Port == "":
		return fmt.Errorf("server.port is empty: %w", ErrInvalid)
	case c.Viewport.RenderRadius <= 0:
		return fmt.Errorf("viewport.render_radius %d: %w", c.Viewport.RenderRadius, ErrInvalid)
	case c.Viewport.Hysteresis < 0:
		return fmt.Errorf("viewport.hysteresis %d: %w", c.Viewport.Hysteresis, ErrInvalid)
	case c.Exploration.Radius <= 0 || c.Exploration.Radius >= c.Viewport.RenderRadius:
		return fmt.Errorf("exploration.radius %d must be in (0, %d): %w", c.Exploration.Radius, c.Viewport.RenderRadius, ErrInvalid)
	case c.Objective.Target < 0:
		return fmt.Errorf("objective.target %d: %w", c.Objective.Target, ErrInvalid)
	}
	switch c.Persistence.Type {
	case "json", "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("persistence.type %q: %w", c.Persistence.Type, ErrInvalid)
	}
	world := c.World
	if err := world.Normalize(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	return nil
}

// WorldServiceConfig returns the runtime service tuning.
func (c Config) WorldServiceConfig() services.WorldConfig {
	return services.WorldConfig{
		Viewport:          c.Viewport,
		ExplorationRadius: c.Exploration.Radius,
		ObjectiveTarget:   c.Objective.Target,
		SweepInterval:     c.Server.SweepInterval,
		SampleInterval:    c.Server.SampleInterval,
	}
}
