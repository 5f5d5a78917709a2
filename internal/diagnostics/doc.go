// Package diagnostics provides a bounded in-memory event log for the
// audio service.
//
// The service records significant lifecycle events here: topology load
// attempts and their outcome, HAL connection loss and recovery, fallback
// decisions, and conversion failures. The log keeps a fixed number of
// recent entries so a long-running service never grows unbounded, while
// still holding enough history to explain the current topology when a
// problem is reported hours after boot.
//
// Entries are also mirrored to the service logger at warning level, so
// the persistent log stream and the in-memory ring stay consistent.
//
// # Usage
//
//	diag := diagnostics.New(diagnostics.DefaultCapacity, log)
//	diag.Record("audio zone load failed for zone %d: %v", zoneID, err)
//
//	for _, e := range diag.Entries() {
//		fmt.Println(e.Time, e.Message)
//	}
//
// All methods are safe for concurrent use.
package diagnostics
