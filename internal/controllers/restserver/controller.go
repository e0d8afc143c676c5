// Package restserver is the HTTP rendering adapter: it serves the page that
// draws the greenhouses and exposes the simulation frame and commands as a
// small JSON/MessagePack API.
package restserver

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/greenhouse/internal/log"
	"github.com/chrissnell/greenhouse/internal/simulation"
	"github.com/chrissnell/greenhouse/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	cfg      config.ServerData
	runner   *simulation.Runner
	Server   http.Server
	FS       fs.FS
	logger   *zap.SugaredLogger
	handlers *Handlers
	metrics  *Metrics
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg config.ServerData, runner *simulation.Runner, logger *zap.SugaredLogger) (*Controller, error) {
	if runner == nil {
		return nil, fmt.Errorf("REST server needs a simulation runner")
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if cfg.ListenAddr == "" {
		logger.Info("server.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		cfg.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if cfg.HTTPPort == 0 {
		logger.Infof("server.http_port not provided; defaulting to %d", config.DefaultHTTPPort)
		cfg.HTTPPort = config.DefaultHTTPPort
	}

	ctrl := &Controller{
		ctx:     ctx,
		wg:      wg,
		cfg:     cfg,
		runner:  runner,
		FS:      GetAssets(),
		logger:  logger,
		metrics: NewMetrics(runner.Session()),
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", cfg.ListenAddr, cfg.HTTPPort)
	ctrl.Server.Handler = ctrl.Handler()

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.cfg.Cert != "" && c.cfg.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.cfg.Cert, c.cfg.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// Handler returns the fully wrapped HTTP handler.
func (c *Controller) Handler() http.Handler {
	var h http.Handler = c.setupRouter()
	if c.cfg.EnableCORS {
		h = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins([]string{"*"}),
			gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
			gorillahandlers.AllowedHeaders([]string{"Content-Type", "Accept"}),
		)(h)
	}
	return h
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	// The page polls /api/frame several times a second.
	router.Use(log.HTTPMiddleware(c.logger, "/api/frame", "/metrics"))
	router.Use(c.metrics.Middleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/frame", c.handlers.GetFrame).Methods(http.MethodGet)
	api.HandleFunc("/start", c.handlers.StartRun).Methods(http.MethodPost)
	api.HandleFunc("/reset", c.handlers.ResetRun).Methods(http.MethodPost)
	api.HandleFunc("/greenhouses", c.handlers.GetGreenhouses).Methods(http.MethodGet)
	api.HandleFunc("/greenhouses/{name}/controls", c.handlers.UpdateControls).Methods(http.MethodPut)
	api.HandleFunc("/version", c.handlers.GetVersion).Methods(http.MethodGet)

	router.Handle("/metrics", c.metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/", c.handlers.ServeIndex).Methods(http.MethodGet)

	return router
}
