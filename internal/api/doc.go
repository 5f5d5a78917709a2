// Package api provides the diagnostics HTTP API and WebSocket event
// stream for caraudiod.
//
// This package provides:
//   - REST endpoints for the published topology, HAL state and the
//     conversion diagnostics ring
//   - An operator-triggered topology reload (same path as the HAL's
//     module-change callback)
//   - WebSocket hub broadcasting service events (load, reload, death,
//     reconnect)
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - TLS support for bench deployments
//
// # Architecture
//
// The server sits beside the topology loader and reads its published
// state through accessors; it never mutates topology itself. Reloads are
// delegated to the orchestrator via a callback so the API stays out of
// the loader's locking.
//
// This is a service surface for engineering tools and the vehicle
// diagnostic port. It listens on localhost by default and carries no
// user authentication.
package api
