// Package settings persists per-group volume state in SQLite.
//
// Each car volume group carries a last-known gain index and mute flag,
// keyed by (zone, config, group). The topology loader reads this state
// when it builds the zone map so that a restart restores the volumes the
// occupants last chose; the volume runtime writes through on every
// change.
//
// The schema is owned by an embedded migration (see migrations/) and the
// store operates on a connection opened through
// internal/infrastructure/database. Reads used during zone loading never
// fail the load: a missing row or a query error simply means "no saved
// state" and the group keeps its converted defaults.
package settings
