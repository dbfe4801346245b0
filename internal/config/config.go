// Package config reads the auction service configuration from
// environment variables and command-line flags.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime parameters of the auction service.
type Config struct {
	RunAddress    string        `env:"RUN_ADDRESS"`
	JWTSecret     string        `env:"JWT_SECRET"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Parse reads the configuration from environment variables and
// command-line flags. Environment variables take precedence.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envJWTSecret := cfg.JWTSecret
	envSweepInterval := cfg.SweepInterval
	envProbeInterval := cfg.ProbeInterval

	flag.StringVar(&cfg.RunAddress, "a", ":8080", "address and port for HTTP server")
	flag.StringVar(&cfg.JWTSecret, "s", "", "secret key for signing auth tokens")
	flag.DurationVar(&cfg.SweepInterval, "sweep", time.Minute, "period of the auction status sweep")
	flag.DurationVar(&cfg.ProbeInterval, "probe", 30*time.Second, "websocket liveness probe interval")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envJWTSecret != "" {
		cfg.JWTSecret = envJWTSecret
	}
	if envSweepInterval != 0 {
		cfg.SweepInterval = envSweepInterval
	}
	if envProbeInterval != 0 {
		cfg.ProbeInterval = envProbeInterval
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = ":8080"
	}

	return cfg, nil
}
