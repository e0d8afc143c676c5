package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

type simulationYAML struct {
	Months        int    `yaml:"months,omitempty"`
	Duration      string `yaml:"duration,omitempty"`
	TickInterval  string `yaml:"tick_interval,omitempty"`
	RevealStagger string `yaml:"reveal_stagger,omitempty"`
}

type greenhouseYAML struct {
	Name        string `yaml:"name"`
	Temperature int    `yaml:"temperature"`
	Lights      int    `yaml:"lights"`
	CO2         int    `yaml:"co2"`
}

type serverYAML struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
	HTTPPort   int    `yaml:"http_port,omitempty"`
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	EnableCORS bool   `yaml:"enable_cors,omitempty"`
}

type loggingYAML struct {
	Debug bool   `yaml:"debug,omitempty"`
	File  string `yaml:"file,omitempty"`
}

type configYAML struct {
	Simulation  simulationYAML   `yaml:"simulation,omitempty"`
	Greenhouses []greenhouseYAML `yaml:"greenhouses,omitempty"`
	Server      serverYAML       `yaml:"server,omitempty"`
	Logging     loggingYAML      `yaml:"logging,omitempty"`
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// ParseYAML converts a YAML document into configuration data with defaults
// applied.
func ParseYAML(data []byte) (*ConfigData, error) {
	var yamlConfig configYAML
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}

	// Convert to our internal format
	config := &ConfigData{
		Simulation: SimulationData{
			Months: yamlConfig.Simulation.Months,
		},
		Greenhouses: make([]GreenhouseData, len(yamlConfig.Greenhouses)),
		Server: ServerData{
			ListenAddr: yamlConfig.Server.ListenAddr,
			HTTPPort:   yamlConfig.Server.HTTPPort,
			Cert:       yamlConfig.Server.Cert,
			Key:        yamlConfig.Server.Key,
			EnableCORS: yamlConfig.Server.EnableCORS,
		},
		Logging: LoggingData{
			Debug: yamlConfig.Logging.Debug,
			File:  yamlConfig.Logging.File,
		},
	}

	var err error
	if config.Simulation.Duration, err = parseDuration("duration", yamlConfig.Simulation.Duration); err != nil {
		return nil, err
	}
	if config.Simulation.TickInterval, err = parseDuration("tick_interval", yamlConfig.Simulation.TickInterval); err != nil {
		return nil, err
	}
	if config.Simulation.RevealStagger, err = parseStagger(yamlConfig.Simulation.RevealStagger); err != nil {
		return nil, err
	}

	for i, g := range yamlConfig.Greenhouses {
		config.Greenhouses[i] = GreenhouseData{
			Name:        g.Name,
			Temperature: g.Temperature,
			Lights:      g.Lights,
			CO2:         g.CO2,
		}
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// GetSimulationConfig returns the simulation timing settings
func (y *YAMLProvider) GetSimulationConfig() (*SimulationData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Simulation, nil
}

// GetGreenhouses returns greenhouse configurations from the YAML file
func (y *YAMLProvider) GetGreenhouses() ([]GreenhouseData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.Greenhouses, nil
}

// GetServerConfig returns the HTTP server settings
func (y *YAMLProvider) GetServerConfig() (*ServerData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Server, nil
}

// IsReadOnly returns true since YAML files are read-only
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close does nothing for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
