// Package audio defines the internal audio topology model for caraudio-core.
//
// The model is the validated, immutable output of the topology load: zones,
// their configurations, volume groups, audio contexts and device bindings.
// It is constructed once per boot (or per reload after a HAL reconnection)
// by the topology package and consumed read-only by the rest of the audio
// service.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                        Audio Model                               │
//	│                                                                  │
//	│  Zone ──┬── Context (ordered ContextInfo set, id/name lookup)    │
//	│         ├── ZoneConfig (one default) ── VolumeGroup*             │
//	│         │       │                          │                     │
//	│         │       └── Fade configuration     └── context → device  │
//	│         │           (default + transient)      route bindings    │
//	│         └── InputDevices []DeviceInfo                            │
//	│                                                                  │
//	│  DeviceInfo: address-keyed endpoint descriptor (bus, speaker,    │
//	│  mic, wired/BT/USB/BLE dynamic endpoints)                        │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Zone: one independently routable audio region (zone 0 is the primary)
//   - Context: deduplicated, ordered set of ContextInfo (usage groupings)
//   - ZoneConfig: an orderable set of volume groups, exactly one default per zone
//   - VolumeGroup: contexts sharing one gain control and their bound devices
//   - DeviceInfo: an audio endpoint identified by address and device type
//   - FadeConfiguration: gain ramp policy, optionally overridden per usage set
//
// # Invariants
//
// Zone ids are unique process-wide and zone 0 must exist in any non-empty
// topology. (zone, config) and (zone, config, group) ids are unique within
// their scope. Every zone carries exactly one default configuration. Context
// ids are positive; InvalidContextID (0) is reserved. Within one zone config
// an output device address belongs to at most one volume group.
//
// The types here validate their own structural rules; cross-reference
// resolution against live device enumeration and HAL descriptors lives in
// the topology package.
package audio
