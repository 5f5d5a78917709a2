package api

import (
	"net/http"

	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
)

// handleHAL returns the negotiated wrapper revision, version, feature map
// and transport state.
func (s *Server) handleHAL(w http.ResponseWriter, _ *http.Request) {
	features := make(map[string]bool, len(hal.AllFeatures()))
	for _, f := range hal.AllFeatures() {
		features[f.String()] = s.hal.SupportsFeature(f)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"revision": s.hal.Revision(),
		"version":  s.hal.InterfaceVersion(),
		"state":    s.hal.State(),
		"features": features,
		"stats":    s.hal.Stats(),
	})
}
