// Package enumeration loads the platform's installed audio endpoint
// inventory from a YAML resource.
//
// A board build ships a fixed set of audio endpoints: the output buses the
// vendor HAL routes zones through and the input devices (microphones)
// available to capture. The topology loader resolves every device address
// the HAL references against this inventory, so the inventory is the
// authority on which addresses exist.
//
// The resource lists one entry per endpoint:
//
//	devices:
//	  - address: bus0_media
//	    type: bus
//	    role: output
//	  - address: Built-In Mic
//	    type: builtin_mic
//	    role: input
//
// Entries are validated on load: the type must be a known device type, the
// role must be output or input, and addresses must be unique within a role.
// A resource that fails validation fails the service start; a wrong
// inventory would otherwise surface later as unexplained conversion
// failures.
package enumeration
