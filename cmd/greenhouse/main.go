package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/greenhouse/internal/app"
	"github.com/chrissnell/greenhouse/internal/constants"
	"github.com/chrissnell/greenhouse/internal/log"
	"github.com/chrissnell/greenhouse/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to configuration source:\n\t\t\t  YAML: greenhouse.yaml\n\t\t\t  SQLite: greenhouse.db\n\t\t\t  Use 'config-convert' tool to convert YAML→SQLite\n\t\t\t  Built-in defaults are used when empty")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("greenhouse %s\n", constants.Version)
		os.Exit(0)
	}

	// Load configuration
	cfgData, err := loadConfig(*cfgFile, *cfgBackend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := config.ApplyEnv(cfgData); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid environment configuration: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfgData.Logging.Debug = true
	}

	// Set up logging
	if err := log.Init(log.Options{Debug: cfgData.Logging.Debug, File: cfgData.Logging.File}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Create and run the application
	application := app.New(cfgData, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}

	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	var err error

	switch cfgBackend {
	case "yaml":
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		provider, err = config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
