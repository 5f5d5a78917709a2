package topology

import "errors"

// Topology loading errors.
//
// Conversion and loading failures are reported as wrapped sentinels so
// callers and tests can classify them with errors.Is():
//
//	if errors.Is(err, topology.ErrUnresolvedDevice) {
//	    // the HAL referenced an address the board does not have
//	}
var (
	// ErrNoZones is recorded when the HAL accepted the zone query but
	// described no zones. An empty description is a vendor defect, not a
	// valid empty topology.
	ErrNoZones = errors.New("topology: hal described no zones")

	// ErrDuplicateZoneID is recorded when two zone descriptors share an id.
	ErrDuplicateZoneID = errors.New("topology: duplicate zone id")

	// ErrMissingPrimaryZone is recorded when the converted topology has no
	// zone with the primary zone id.
	ErrMissingPrimaryZone = errors.New("topology: primary zone missing")

	// ErrNoConfigs is returned when a zone descriptor carries no zone
	// configurations.
	ErrNoConfigs = errors.New("topology: zone has no configurations")

	// ErrNoVolumeGroups is returned when a zone configuration carries no
	// volume groups.
	ErrNoVolumeGroups = errors.New("topology: configuration has no volume groups")

	// ErrDuplicateGroupID is returned when two volume groups in one
	// configuration share an id.
	ErrDuplicateGroupID = errors.New("topology: duplicate volume group id")

	// ErrNoRoutes is returned when a volume group descriptor carries no
	// device routes.
	ErrNoRoutes = errors.New("topology: volume group has no routes")

	// ErrEmptyRouteContexts is returned when a device route names no
	// contexts. A silent route would leave its device unreachable.
	ErrEmptyRouteContexts = errors.New("topology: route names no contexts")

	// ErrUnknownContext is returned when a route names a context absent
	// from the zone's context list.
	ErrUnknownContext = errors.New("topology: route names unknown context")

	// ErrUnresolvedDevice is returned when a referenced device address is
	// not present in the enumerated device set.
	ErrUnresolvedDevice = errors.New("topology: device address not enumerated")

	// ErrDuplicateDeviceBinding is returned when one output address is
	// bound by two volume groups of the same configuration.
	ErrDuplicateDeviceBinding = errors.New("topology: device bound by multiple groups")

	// ErrDynamicDevicesDisabled is returned when a descriptor routes a
	// non-bus port while the dynamic devices feature flag is off.
	ErrDynamicDevicesDisabled = errors.New("topology: dynamic devices disabled")

	// ErrUnresolvedStrategy is returned under core audio routing when a
	// context cannot be resolved to a routing strategy id.
	ErrUnresolvedStrategy = errors.New("topology: no routing strategy for context")

	// ErrMissingDefaultFade is returned when a configuration carries fade
	// data without the mandatory default fade configuration.
	ErrMissingDefaultFade = errors.New("topology: fade data without default configuration")

	// ErrInvalidFadeState is returned when a fade configuration carries an
	// unknown fade state value.
	ErrInvalidFadeState = errors.New("topology: invalid fade state")

	// ErrEmptyTransientUsages is returned when a transient fade entry
	// declares no usages.
	ErrEmptyTransientUsages = errors.New("topology: transient fade without usages")

	// ErrInvalidFadeOverride is returned when a fade duration override
	// names neither a usage nor an attribute.
	ErrInvalidFadeOverride = errors.New("topology: fade override names no target")

	// ErrLegacyResource is returned when the legacy volume groups resource
	// cannot be read or parsed.
	ErrLegacyResource = errors.New("topology: invalid legacy volume groups resource")

	// ErrDuplicateBus is returned on the legacy path when two enumerated
	// output addresses map to the same bus number.
	ErrDuplicateBus = errors.New("topology: duplicate bus number")

	// ErrUnassignedBus is returned on the legacy path when a context has
	// no output bus, either unassigned by the HAL or without a matching
	// enumerated device.
	ErrUnassignedBus = errors.New("topology: context has no output bus")
)
