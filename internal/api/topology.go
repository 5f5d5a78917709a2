package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ridgeworth/caraudio-core/internal/audio"
)

// zoneSummary is the per-zone row in the topology listing.
type zoneSummary struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Primary        bool   `json:"primary"`
	Configs        int    `json:"configs"`
	Groups         int    `json:"groups"`
	Devices        int    `json:"devices"`
	InputDevices   int    `json:"input_devices"`
	OccupantZoneID int    `json:"occupant_zone_id"`
}

// groupView expands a volume group's context bindings, which the model
// keeps unexported.
type groupView struct {
	ID               int                    `json:"id"`
	Name             string                 `json:"name"`
	Activation       audio.ActivationConfig `json:"activation"`
	InitialGainIndex int                    `json:"initial_gain_index"`
	Muted            bool                   `json:"muted"`
	Bindings         []bindingView          `json:"bindings"`
}

// bindingView is one context→device route inside a volume group.
type bindingView struct {
	ContextID int    `json:"context_id"`
	Address   string `json:"address"`
	Type      string `json:"type"`
}

// configView is one zone configuration with its groups expanded.
type configView struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	IsDefault    bool        `json:"is_default"`
	VolumeGroups []groupView `json:"volume_groups"`
}

// zoneView is the full zone detail response.
type zoneView struct {
	ID             int                `json:"id"`
	Name           string             `json:"name"`
	Primary        bool               `json:"primary"`
	OccupantZoneID int                `json:"occupant_zone_id"`
	Configs        []configView       `json:"configs"`
	InputDevices   []audio.DeviceInfo `json:"input_devices,omitempty"`
}

// handleTopology returns a summary of the published topology.
func (s *Server) handleTopology(w http.ResponseWriter, _ *http.Request) {
	zones := s.topo.Zones()

	summaries := make([]zoneSummary, 0, len(zones))
	totalConfigs, totalGroups, totalDevices := 0, 0, 0
	for _, z := range zones {
		zs := zoneSummary{
			ID:             z.ID,
			Name:           z.Name,
			Primary:        z.IsPrimary(),
			Configs:        len(z.Configs),
			InputDevices:   len(z.InputDevices),
			OccupantZoneID: z.OccupantZoneID,
		}
		for _, zc := range z.Configs {
			zs.Groups += len(zc.VolumeGroups)
			zs.Devices += len(zc.Addresses())
		}
		totalConfigs += zs.Configs
		totalGroups += zs.Groups
		totalDevices += zs.Devices
		summaries = append(summaries, zs)
	}

	// Stable order for tooling; map iteration is random.
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":             s.topo.Mode(),
		"generation":       s.topo.Generation(),
		"zones":            summaries,
		"zone_count":       len(summaries),
		"config_count":     totalConfigs,
		"group_count":      totalGroups,
		"device_count":     totalDevices,
		"occupant_mapping": s.topo.OccupantZoneMapping(),
		"mirror_devices":   s.topo.MirrorDevices(),
	})
}

// handleTopologyZone returns one zone in full.
func (s *Server) handleTopologyZone(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "zone id must be an integer")
		return
	}

	zone, ok := s.topo.Zone(id)
	if !ok {
		writeNotFound(w, "zone not found")
		return
	}

	writeJSON(w, http.StatusOK, buildZoneView(zone))
}

// buildZoneView flattens a zone into its API representation, expanding
// the volume groups' context bindings.
func buildZoneView(zone *audio.Zone) zoneView {
	zv := zoneView{
		ID:             zone.ID,
		Name:           zone.Name,
		Primary:        zone.IsPrimary(),
		OccupantZoneID: zone.OccupantZoneID,
		InputDevices:   zone.InputDevices,
	}

	for _, zc := range zone.Configs {
		cv := configView{
			ID:        zc.ID,
			Name:      zc.Name,
			IsDefault: zc.IsDefault,
		}
		for _, g := range zc.VolumeGroups {
			gv := groupView{
				ID:               g.ID,
				Name:             g.Name,
				Activation:       g.Activation,
				InitialGainIndex: g.InitialGainIndex,
				Muted:            g.Muted,
			}
			for _, ctxID := range g.ContextIDs() {
				dev, _ := g.DeviceForContext(ctxID)
				gv.Bindings = append(gv.Bindings, bindingView{
					ContextID: ctxID,
					Address:   dev.Address,
					Type:      string(dev.Type),
				})
			}
			cv.VolumeGroups = append(cv.VolumeGroups, gv)
		}
		zv.Configs = append(zv.Configs, cv)
	}

	return zv
}
