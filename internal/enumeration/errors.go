package enumeration

import "errors"

// Inventory errors.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, enumeration.ErrDuplicateAddress) {
//	    // two entries share an address within a role
//	}
var (
	// ErrEmptyInventory is returned when the resource lists no devices.
	ErrEmptyInventory = errors.New("enumeration: inventory lists no devices")

	// ErrMissingAddress is returned when an entry has no address.
	ErrMissingAddress = errors.New("enumeration: device entry has no address")

	// ErrInvalidRole is returned when an entry's role is neither output
	// nor input.
	ErrInvalidRole = errors.New("enumeration: invalid device role")

	// ErrDuplicateAddress is returned when two entries of the same role
	// share an address.
	ErrDuplicateAddress = errors.New("enumeration: duplicate device address")
)
