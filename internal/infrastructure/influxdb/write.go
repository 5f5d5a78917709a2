package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// millisecondsPerMetric converts a duration to fractional milliseconds.
const millisecondsPerMetric = float64(time.Millisecond)

// TopologyLoad describes one zone loading attempt for telemetry.
type TopologyLoad struct {
	// Mode is the routing mode the load resolved to
	// ("described", "legacy_fallback", "no_routing").
	Mode string

	// Generation is the load's correlation ID.
	Generation string

	// Succeeded reports whether the load produced a zone map.
	Succeeded bool

	// Zones, Configs, Groups and Devices count the converted topology.
	// All zero when the load failed.
	Zones   int
	Configs int
	Groups  int
	Devices int

	// Duration is the wall time the load took.
	Duration time.Duration
}

// WriteTopologyLoad records the outcome of a zone loading attempt.
//
// This is the primary telemetry stream: one point per (re)load, tagged
// by routing mode so dashboards can spot a vehicle that degraded from
// described topology to legacy fallback.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - load: Load outcome to record
func (c *Client) WriteTopologyLoad(load TopologyLoad) {
	if !c.IsConnected() {
		return
	}

	succeeded := 0
	if load.Succeeded {
		succeeded = 1
	}

	point := write.NewPoint(
		"topology_load",
		map[string]string{
			"mode": load.Mode,
		},
		map[string]interface{}{
			"generation":  load.Generation,
			"succeeded":   succeeded,
			"zones":       load.Zones,
			"configs":     load.Configs,
			"groups":      load.Groups,
			"devices":     load.Devices,
			"duration_ms": float64(load.Duration) / millisecondsPerMetric,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteHALConnection records a HAL transport state transition.
//
// Used for tracking binder liveness: connects, disconnects and death
// notifications, tagged with the negotiated protocol revision.
//
// Parameters:
//   - state: Transport state ("connected", "disconnected", "died")
//   - revision: Negotiated wrapper revision (1-3)
//   - minorVersion: Negotiated minor version within the revision
func (c *Client) WriteHALConnection(state string, revision int, minorVersion int) {
	if !c.IsConnected() {
		return
	}

	connected := 0
	if state == "connected" {
		connected = 1
	}

	point := write.NewPoint(
		"hal_connection",
		map[string]string{
			"state": state,
		},
		map[string]interface{}{
			"connected":     connected,
			"revision":      revision,
			"minor_version": minorVersion,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDiagnosticCount records the current depth of the conversion
// diagnostics ring. A rising count across loads means the HAL is
// describing topology the converter keeps rejecting.
//
// Parameters:
//   - entries: Number of entries currently retained
//   - capacity: Ring capacity
func (c *Client) WriteDiagnosticCount(entries, capacity int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"conversion_diagnostics",
		nil,
		map[string]interface{}{
			"entries":  entries,
			"capacity": capacity,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
