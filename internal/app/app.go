package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/greenhouse/internal/controllers/restserver"
	"github.com/chrissnell/greenhouse/internal/log"
	"github.com/chrissnell/greenhouse/internal/simulation"
	"github.com/chrissnell/greenhouse/pkg/config"
	"github.com/chrissnell/greenhouse/pkg/growth"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// SessionConfig converts loaded configuration into simulation settings.
func SessionConfig(cfg *config.ConfigData) simulation.Config {
	specs := make([]simulation.GreenhouseSpec, len(cfg.Greenhouses))
	for i, g := range cfg.Greenhouses {
		specs[i] = simulation.GreenhouseSpec{
			Name: g.Name,
			Defaults: growth.Inputs{
				Temperature: g.Temperature,
				Lights:      g.Lights,
				CO2:         g.CO2,
			},
		}
	}

	return simulation.Config{
		Months:        cfg.Simulation.Months,
		Duration:      cfg.Simulation.Duration,
		TickInterval:  cfg.Simulation.TickInterval,
		RevealStagger: cfg.Simulation.RevealStagger,
		Greenhouses:   specs,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := simulation.NewSession(SessionConfig(a.cfg), simulation.WithLogger(a.logger))
	runner := simulation.NewRunner(session, a.logger)

	rest, err := restserver.NewController(ctx, &wg, a.cfg.Server, runner, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Infow("Application started successfully",
		"greenhouses", session.GreenhouseNames(),
		"weeks", session.TotalWeeks(),
		"duration", a.cfg.Simulation.Duration,
	)

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	runner.Wait()
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
