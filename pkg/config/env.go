package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides are the settings that may be overridden from the environment.
type EnvOverrides struct {
	ListenAddr    string         `env:"GREENHOUSE_LISTEN_ADDR"`
	HTTPPort      int            `env:"GREENHOUSE_HTTP_PORT"`
	Months        int            `env:"GREENHOUSE_MONTHS"`
	Duration      time.Duration  `env:"GREENHOUSE_DURATION"`
	TickInterval  time.Duration  `env:"GREENHOUSE_TICK_INTERVAL"`
	RevealStagger *time.Duration `env:"GREENHOUSE_REVEAL_STAGGER"`
	Debug         bool           `env:"GREENHOUSE_DEBUG"`
	LogFile       string         `env:"GREENHOUSE_LOG_FILE"`
}

// ApplyEnv overrides cfg with any GREENHOUSE_* variables set in the process
// environment.
func ApplyEnv(cfg *ConfigData) error {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return applyOverrides(cfg, o)
}

// ApplyEnvFrom is ApplyEnv reading from the given variables instead of the
// process environment.
func ApplyEnvFrom(cfg *ConfigData, environ map[string]string) error {
	var o EnvOverrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return applyOverrides(cfg, o)
}

func applyOverrides(cfg *ConfigData, o EnvOverrides) error {
	if o.ListenAddr != "" {
		cfg.Server.ListenAddr = o.ListenAddr
	}
	if o.HTTPPort != 0 {
		cfg.Server.HTTPPort = o.HTTPPort
	}
	if o.Months != 0 {
		cfg.Simulation.Months = o.Months
	}
	if o.Duration != 0 {
		cfg.Simulation.Duration = o.Duration
	}
	if o.TickInterval != 0 {
		cfg.Simulation.TickInterval = o.TickInterval
	}
	if o.RevealStagger != nil {
		cfg.Simulation.RevealStagger = *o.RevealStagger
	}
	if o.Debug {
		cfg.Logging.Debug = true
	}
	if o.LogFile != "" {
		cfg.Logging.File = o.LogFile
	}

	cfg.ApplyDefaults()
	return cfg.Validate()
}
