package hal

import "errors"

// HAL wrapper errors.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, hal.ErrUnsupported) {
//	    // fall back to the legacy configuration path
//	}
var (
	// ErrUnsupported is returned when an operation is not available on the
	// negotiated protocol revision. It is signalled loudly so callers can
	// distinguish "this revision cannot describe zones" from "the HAL
	// described no zones".
	ErrUnsupported = errors.New("hal: operation not supported by this interface revision")

	// ErrAlreadyRegistered is reported by the bridge when a callback slot is
	// still held by a previous, uncleanly terminated session.
	ErrAlreadyRegistered = errors.New("hal: callback already registered")

	// ErrNotConnected is returned when a request is attempted while the
	// bridge is not in the connected state.
	ErrNotConnected = errors.New("hal: audio control bridge not connected")

	// ErrBridgeDied is returned to requests that were in flight when the
	// bridge went offline.
	ErrBridgeDied = errors.New("hal: audio control bridge died")

	// ErrTimeout is returned when the bridge does not answer a request
	// within the configured request timeout.
	ErrTimeout = errors.New("hal: request timed out")

	// ErrRequestFailed is returned when the bridge answers a request with a
	// failure result.
	ErrRequestFailed = errors.New("hal: request failed")

	// ErrInvalidResponse is returned when a bridge response cannot be
	// decoded.
	ErrInvalidResponse = errors.New("hal: invalid response payload")

	// ErrClosed is returned when the wrapper has been closed.
	ErrClosed = errors.New("hal: wrapper closed")

	// ErrUnknownRevision is returned by Connect when the bridge announces a
	// protocol revision this service has no wrapper for.
	ErrUnknownRevision = errors.New("hal: unknown interface revision")
)
