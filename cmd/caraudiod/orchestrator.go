package main

import (
	"context"
	"errors"
	"sync"

	"github.com/ridgeworth/caraudio-core/internal/api"
	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
	"github.com/ridgeworth/caraudio-core/internal/audio/topology"
	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/influxdb"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/logging"
)

// orchestrator owns the load/reload lifecycle: it runs the initial load,
// re-registers HAL callbacks and reloads after bridge death, and serves
// the operator-triggered reload from the API. Reloads are serialised by
// a mutex; the loader publishes atomically so readers never see a
// half-swapped topology.
type orchestrator struct {
	wrapper hal.Wrapper
	loader  *topology.Loader
	hub     *api.Hub
	influx  *influxdb.Client // nil when telemetry is disabled
	diag    *diagnostics.Log
	log     *logging.Logger

	reloadMu sync.Mutex

	resultMu sync.Mutex
	last     topology.LoadResult
}

// start runs the initial topology load and arms the HAL callbacks.
func (o *orchestrator) start(ctx context.Context) {
	o.wrapper.SetDeathRecipient(func() {
		o.onBridgeRestored(ctx)
	})
	if err := o.wrapper.LinkToDeath(); err != nil {
		o.log.Warn("linking bridge death notification failed", "error", err)
	}

	o.registerModuleCallback()
	o.reload(ctx)
}

// reload reruns the topology load. Serialised: a module-change callback
// racing an operator reload runs the load twice, not concurrently.
func (o *orchestrator) reload(ctx context.Context) topology.LoadResult {
	o.reloadMu.Lock()
	defer o.reloadMu.Unlock()

	zones := o.loader.LoadZones(ctx)
	o.log.Info("topology load finished",
		"generation", o.loader.Generation(),
		"mode", o.loader.Mode(),
		"zones", len(zones),
	)

	o.resultMu.Lock()
	defer o.resultMu.Unlock()
	return o.last
}

// onLoad receives every load outcome from the loader, inside LoadZones
// but outside the state lock. It fans the result out to the event
// stream and telemetry.
func (o *orchestrator) onLoad(result topology.LoadResult) {
	o.resultMu.Lock()
	o.last = result
	o.resultMu.Unlock()

	o.hub.Broadcast(api.EventTopologyLoad, result)

	if o.influx != nil {
		o.influx.WriteTopologyLoad(influxdb.TopologyLoad{
			Mode:       string(result.Mode),
			Generation: result.Generation,
			Succeeded:  result.Succeeded,
			Zones:      result.Zones,
			Configs:    result.Configs,
			Groups:     result.Groups,
			Devices:    result.Devices,
			Duration:   result.Duration,
		})
		o.influx.WriteDiagnosticCount(o.diag.Len(), o.diag.Capacity())
	}
}

// onBridgeDied runs when the bridge's last will marks it offline. The
// published topology is left in place; the bridge that described it is
// expected back, and onBridgeRestored rebuilds it when it returns.
func (o *orchestrator) onBridgeDied() {
	o.hub.Broadcast(api.EventHALDeath, nil)
	if o.influx != nil {
		// Revision and version are unknown until the bridge reannounces.
		o.influx.WriteHALConnection(string(hal.StateDying), 0, 0)
	}
}

// onBridgeRestored runs after the bridge died and came back. Callback
// registrations were dropped on death; re-apply them and rebuild the
// topology from the restarted HAL.
func (o *orchestrator) onBridgeRestored(ctx context.Context) {
	o.log.Info("audio control bridge restored, reloading topology")
	o.hub.Broadcast(api.EventHALReconnect, map[string]any{
		"revision": o.wrapper.Revision(),
		"version":  o.wrapper.InterfaceVersion(),
	})
	if o.influx != nil {
		o.influx.WriteHALConnection(string(o.wrapper.State()),
			o.wrapper.Revision(), o.wrapper.InterfaceVersion())
	}

	o.registerModuleCallback()
	o.reload(ctx)
}

// registerModuleCallback arms the module-change callback so HAL device
// set changes trigger a reload. Clear-and-retry on an occupied slot is
// handled inside the wrapper; a second rejection leaves the feature off.
func (o *orchestrator) registerModuleCallback() {
	if !o.wrapper.SupportsFeature(hal.FeatureAudioModuleCallback) {
		return
	}

	err := o.wrapper.SetModuleChangeCallback(func(ports []hal.PortDescriptor) {
		o.log.Info("HAL module change", "ports", len(ports))
		// Callbacks run on transport goroutines and must not block.
		go o.reload(context.Background())
	})
	if err != nil && !errors.Is(err, hal.ErrUnsupported) {
		o.log.Warn("module change callback registration failed", "error", err)
	}
}
