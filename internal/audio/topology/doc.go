// Package topology builds the validated audio topology from the vendor
// HAL's zone description, or from the static legacy fallback.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                            Loader                                 │
//	│                                                                   │
//	│  hal.Wrapper ── device configuration ──► routing mode dispatch    │
//	│                                             │                     │
//	│        ┌────────────────────────────────────┼─────────────┐       │
//	│        ▼                                    ▼             ▼       │
//	│   Described                          LegacyFallback   NoRouting   │
//	│   zone descriptors ──► Converter     XML resource +   empty map   │
//	│   (per-zone, pure)                   bus-per-context              │
//	│        │                                    │                     │
//	│        └──────────────┬─────────────────────┘                     │
//	│                       ▼                                           │
//	│        aggregate validation (primary zone, unique ids)            │
//	│                       ▼                                           │
//	│        published state under one lock: zones, context,            │
//	│        occupant map, mirror devices, policy flags                 │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Loading Semantics
//
// Loading runs once during service initialisation and again after a HAL
// reconnection or module change. It either produces a fully valid
// topology or nothing: any zone conversion failure, duplicate id or
// missing primary zone discards every converted zone, and the service
// falls back to zone-agnostic routing. An empty zone map always means
// "use fallback routing", never "the vehicle has one trivial zone".
//
// Conversion failures never cross the zone boundary as panics. Each is
// recorded to the service diagnostic log as a human-readable reason
// naming the zone, configuration, group and offending field, so a broken
// vendor description is diagnosable from the ring dump alone.
//
// # Routing Modes
//
//   - Described: the HAL supports topology description and reports a
//     non-default routing mode; zones come from the HAL descriptors.
//   - LegacyFallback: description is unsupported or the HAL reports
//     default routing, and a legacy volume groups resource plus a
//     bus-capable revision 1 bridge are available.
//   - NoRouting: neither applies; the topology is empty.
//
// The Loader's accessors (Zones, Context, OccupantZoneMapping,
// MirrorDevices and the policy flag getters) are the entire surface the
// rest of the audio service may depend on.
package topology
