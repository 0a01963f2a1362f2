// Package config loads server settings from an optional TOML file and
// RUBIK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config is the full set of server settings.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr" env:"ADDR"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`
	// DBPath locates the sqlite journal. Empty disables journaling.
	DBPath string `toml:"db_path" env:"DB_PATH"`

	Solver   SolverConfig   `toml:"solver" envPrefix:"SOLVER_"`
	Sessions SessionsConfig `toml:"sessions" envPrefix:"SESSIONS_"`
	CORS     CORSConfig     `toml:"cors" envPrefix:"CORS_"`
	Metrics  MetricsConfig  `toml:"metrics" envPrefix:"METRICS_"`
}

// SolverConfig selects the external solver process.
type SolverConfig struct {
	Command string   `toml:"command" env:"COMMAND"`
	Args    []string `toml:"args" env:"ARGS" envSeparator:" "`
	Timeout Duration `toml:"timeout" env:"TIMEOUT"`
}

// SessionsConfig controls idle session reaping.
type SessionsConfig struct {
	IdleTimeout  Duration `toml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ReapInterval Duration `toml:"reap_interval" env:"REAP_INTERVAL"`
	Max          int      `toml:"max" env:"MAX"`
}

// CORSConfig lists the origins allowed to call the API.
type CORSConfig struct {
	Origins []string `toml:"origins" env:"ORIGINS" envSeparator:","`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Path    string `toml:"path" env:"PATH"`
}

// Duration is a time.Duration that decodes from strings like "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML and env.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:     ":8000",
		LogLevel: "info",
		Solver: SolverConfig{
			Command: "kociemba",
			Timeout: Duration{10 * time.Second},
		},
		Sessions: SessionsConfig{
			IdleTimeout:  Duration{30 * time.Minute},
			ReapInterval: Duration{time.Minute},
			Max:          1024,
		},
		CORS:    CORSConfig{Origins: []string{"*"}},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "RUBIK_"

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
			}
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("config env failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("config missing addr")
	}
	if strings.TrimSpace(c.Solver.Command) == "" {
		return fmt.Errorf("config missing solver command")
	}
	if c.Solver.Timeout.Duration < 0 {
		return fmt.Errorf("solver timeout must not be negative")
	}
	if c.Sessions.IdleTimeout.Duration < 0 {
		return fmt.Errorf("session idle timeout must not be negative")
	}
	if c.Sessions.IdleTimeout.Duration > 0 && c.Sessions.ReapInterval.Duration <= 0 {
		return fmt.Errorf("session reap interval must be positive when idle timeout is set")
	}
	if c.Sessions.Max < 0 {
		return fmt.Errorf("session max must not be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path %q must start with /", c.Metrics.Path)
	}
	return nil
}
