package audio

import "errors"

// Domain errors for the audio model.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, audio.ErrDuplicateContextName) {
//	    // handle duplicate definition
//	}
var (
	// ErrEmptyContext is returned when a context is built from no entries.
	ErrEmptyContext = errors.New("audio: context has no entries")

	// ErrInvalidContextID is returned when a context id is the reserved
	// invalid id or negative.
	ErrInvalidContextID = errors.New("audio: invalid context id")

	// ErrDuplicateContextID is returned when two context entries share an id.
	ErrDuplicateContextID = errors.New("audio: duplicate context id")

	// ErrDuplicateContextName is returned when two context entries share a
	// name (case-insensitive, trimmed).
	ErrDuplicateContextName = errors.New("audio: duplicate context name")

	// ErrNoAttributes is returned when a context entry carries no audio
	// attributes.
	ErrNoAttributes = errors.New("audio: context entry has no attributes")

	// ErrContextBound is returned when a volume group binds a context id that
	// is already routed within the group.
	ErrContextBound = errors.New("audio: context already bound in group")

	// ErrInvalidDeviceType is returned when a device type is not recognised.
	ErrInvalidDeviceType = errors.New("audio: invalid device type")

	// ErrInvalidUsage is returned when a usage value is not recognised.
	ErrInvalidUsage = errors.New("audio: invalid usage")

	// ErrNoDefaultConfig is returned when a zone has no default configuration.
	ErrNoDefaultConfig = errors.New("audio: zone has no default config")

	// ErrMultipleDefaultConfigs is returned when a zone marks more than one
	// configuration as default.
	ErrMultipleDefaultConfigs = errors.New("audio: zone has multiple default configs")

	// ErrDuplicateConfigID is returned when two configurations in one zone
	// share an id.
	ErrDuplicateConfigID = errors.New("audio: duplicate config id")
)
