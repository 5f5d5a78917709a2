package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Topology endpoints
		r.Route("/topology", func(r chi.Router) {
			r.Get("/", s.handleTopology)
			r.Get("/zones/{id}", s.handleTopologyZone)
		})

		// HAL connection state
		r.Get("/hal", s.handleHAL)

		// Conversion diagnostics ring
		r.Get("/diagnostics", s.handleDiagnostics)

		// Persisted volume state
		r.Get("/settings/volumes", s.handleVolumeSettings)

		// Operator-triggered reload
		r.Post("/reload", s.handleReload)

		// WebSocket event stream
		r.Get("/events", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	mqttConnected := false
	if s.mqtt != nil {
		mqttConnected = s.mqtt.IsConnected()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    s.version,
		"mode":       s.topo.Mode(),
		"hal_state":  s.hal.State(),
		"mqtt":       mqttConnected,
		"generation": s.topo.Generation(),
	})
}
