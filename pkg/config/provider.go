package config

import (
	"fmt"
	"time"

	"github.com/chrissnell/greenhouse/internal/simulation"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSimulationConfig() (*SimulationData, error)
	GetGreenhouses() ([]GreenhouseData, error)
	GetServerConfig() (*ServerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Simulation  SimulationData   `json:"simulation"`
	Greenhouses []GreenhouseData `json:"greenhouses"`
	Server      ServerData       `json:"server"`
	Logging     LoggingData      `json:"logging"`
}

// SimulationData holds the run timing settings. A zero RevealStagger reveals
// every harvest at once; sources that omit it get the default instead.
type SimulationData struct {
	Months        int           `json:"months"`
	Duration      time.Duration `json:"duration"`
	TickInterval  time.Duration `json:"tick_interval"`
	RevealStagger time.Duration `json:"reveal_stagger"`
}

// GreenhouseData holds one greenhouse and the initial values of its controls
type GreenhouseData struct {
	Name        string `json:"name"`
	Temperature int    `json:"temperature"`
	Lights      int    `json:"lights"`
	CO2         int    `json:"co2"`
}

// ServerData holds the HTTP rendering adapter settings
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	HTTPPort   int    `json:"http_port,omitempty"`
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	EnableCORS bool   `json:"enable_cors,omitempty"`
}

// LoggingData holds log output settings
type LoggingData struct {
	Debug bool   `json:"debug,omitempty"`
	File  string `json:"file,omitempty"`
}

// Simulation defaults are owned by the simulation package.
const (
	DefaultListenAddr = "0.0.0.0"
	DefaultHTTPPort   = 8080
)

// Default returns a configuration with every default applied.
func Default() *ConfigData {
	cfg := &ConfigData{
		Simulation: SimulationData{RevealStagger: simulation.DefaultRevealStagger},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in every unset value. RevealStagger is only corrected
// when negative, since zero is a valid setting.
func (c *ConfigData) ApplyDefaults() {
	if c.Simulation.Months <= 0 {
		c.Simulation.Months = simulation.DefaultMonths
	}
	if c.Simulation.Duration <= 0 {
		c.Simulation.Duration = simulation.DefaultDuration
	}
	if c.Simulation.TickInterval <= 0 {
		c.Simulation.TickInterval = simulation.DefaultTickInterval
	}
	if c.Simulation.RevealStagger < 0 {
		c.Simulation.RevealStagger = 0
	}
	if len(c.Greenhouses) == 0 {
		for _, spec := range simulation.DefaultGreenhouses() {
			c.Greenhouses = append(c.Greenhouses, GreenhouseData{
				Name:        spec.Name,
				Temperature: spec.Defaults.Temperature,
				Lights:      spec.Defaults.Lights,
				CO2:         spec.Defaults.CO2,
			})
		}
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = DefaultHTTPPort
	}
}

// Validate checks the configuration for values that cannot be clamped.
func (c *ConfigData) Validate() error {
	if c.Simulation.TickInterval >= c.Simulation.Duration {
		return fmt.Errorf("tick interval %v must be shorter than the run duration %v", c.Simulation.TickInterval, c.Simulation.Duration)
	}

	seen := make(map[string]bool, len(c.Greenhouses))
	for i, g := range c.Greenhouses {
		if g.Name == "" {
			return fmt.Errorf("greenhouse %d has no name", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("duplicate greenhouse name: %s", g.Name)
		}
		seen[g.Name] = true
	}

	if (c.Server.Cert == "") != (c.Server.Key == "") {
		return fmt.Errorf("server cert and key must be set together")
	}

	return nil
}

// parseStagger is parseDuration with an absent value meaning the default
// stagger rather than zero.
func parseStagger(value string) (time.Duration, error) {
	if value == "" {
		return simulation.DefaultRevealStagger, nil
	}
	return parseDuration("reveal_stagger", value)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}
