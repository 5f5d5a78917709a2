package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
	"github.com/ridgeworth/caraudio-core/internal/audio/topology"
	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/config"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/logging"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/mqtt"
	"github.com/ridgeworth/caraudio-core/internal/settings"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// TopologyProvider is the read side of the published topology state.
// *topology.Loader satisfies it; tests use a stub.
type TopologyProvider interface {
	Zones() map[int]*audio.Zone
	Zone(id int) (*audio.Zone, bool)
	OccupantZoneMapping() map[int]int
	MirrorDevices() []audio.DeviceInfo
	Mode() topology.RoutingMode
	Generation() string
}

// HALStatus is the subset of the wrapper the API reads for /hal.
type HALStatus interface {
	SupportsFeature(feature hal.Feature) bool
	State() hal.ConnState
	Stats() hal.Stats
	Revision() int
	InterfaceVersion() int
}

// SettingsReader exposes the persisted volume state for inspection.
// *settings.Store satisfies it.
type SettingsReader interface {
	Snapshot(ctx context.Context) ([]settings.GroupSetting, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Logger   *logging.Logger
	Topology TopologyProvider
	HAL      HALStatus
	Diag     *diagnostics.Log
	Settings SettingsReader // optional
	MQTT     *mqtt.Client   // optional, reported in /health only

	// Reload reruns the topology load. Wired to the same path the
	// module-change callback takes. Optional; POST /reload returns 503
	// when absent.
	Reload func(ctx context.Context) topology.LoadResult

	// ExternalHub, if set, is used instead of creating a hub. The
	// orchestrator shares it so load events reach connected clients.
	ExternalHub *Hub

	Version string
}

// Server is the diagnostics HTTP server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	topo        TopologyProvider
	hal         HALStatus
	diag        *diagnostics.Log
	store       SettingsReader
	mqtt        *mqtt.Client
	reload      func(ctx context.Context) topology.LoadResult
	version     string
	server      *http.Server
	hub         *Hub
	externalHub bool               // true if hub was injected externally
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, topology, HAL, diagnostics)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Topology == nil {
		return nil, fmt.Errorf("topology provider is required")
	}
	if deps.HAL == nil {
		return nil, fmt.Errorf("hal status is required")
	}
	if deps.Diag == nil {
		return nil, fmt.Errorf("diagnostics log is required")
	}

	s := &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		logger:  deps.Logger,
		topo:    deps.Topology,
		hal:     deps.HAL,
		diag:    deps.Diag,
		store:   deps.Settings,
		mqtt:    deps.MQTT,
		reload:  deps.Reload,
		version: deps.Version,
	}

	// Use externally-provided hub if available (needed when the
	// orchestrator also broadcasts load events through it).
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	}

	return s, nil
}

// Hub returns the WebSocket hub, creating one on first use if none was
// injected. The orchestrator broadcasts load and death events through it.
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, and launches the HTTP
// listener in a background goroutine. The server can be stopped with
// Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	// Create WebSocket hub (unless one was injected externally)
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	// Build router
	router := s.buildRouter()

	// Create HTTP server
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	// Start listening in background
	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
