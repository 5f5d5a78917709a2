package api

import (
	"context"
	"net/http"
	"time"
)

// reloadTimeout bounds an operator-triggered reload. Loading a described
// topology is a handful of HAL round trips; anything slower than this is
// a wedged bridge.
const reloadTimeout = 30 * time.Second

// handleDiagnostics dumps the conversion diagnostics ring.
func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"capacity": s.diag.Capacity(),
		"entries":  s.diag.Entries(),
	})
}

// handleVolumeSettings returns the persisted volume state the next load
// would seed from.
func (s *Server) handleVolumeSettings(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeUnavailable(w, "settings store not configured")
		return
	}

	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("volume settings snapshot failed", "error", err)
		writeInternalError(w, "reading volume settings failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"settings": snapshot,
	})
}

// handleReload reruns the topology load through the orchestrator and
// returns the outcome. The reload path is identical to the HAL's
// module-change callback.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		writeUnavailable(w, "reload not available")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reloadTimeout)
	defer cancel()

	result := s.reload(ctx)

	s.logger.Info("operator-triggered reload",
		"generation", result.Generation,
		"mode", result.Mode,
		"succeeded", result.Succeeded,
		"zones", result.Zones,
	)

	writeJSON(w, http.StatusOK, result)
}
