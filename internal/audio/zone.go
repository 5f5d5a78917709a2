package audio

import "fmt"

// ZoneConfig is one selectable configuration of a zone: an ordered set of
// volume groups plus optional fade policy. Identity is (ZoneID, ID); config
// ids are assigned sequentially from zero and exactly one config per zone
// is the default.
type ZoneConfig struct {
	ZoneID    int    `json:"zone_id"`
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`

	VolumeGroups []*VolumeGroup `json:"volume_groups"`

	// DefaultFade is nil when the configuration carries no fade policy.
	DefaultFade    *FadeConfiguration           `json:"default_fade,omitempty"`
	TransientFades []TransientFadeConfiguration `json:"transient_fades,omitempty"`
}

// Addresses returns the distinct output device addresses bound by any
// volume group of this configuration, in first-bound order.
func (zc *ZoneConfig) Addresses() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range zc.VolumeGroups {
		for _, addr := range g.Addresses() {
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}

// Zone is one independently routable audio region. Identity is the
// process-wide zone id; zone 0 is the primary zone. Zones are built by the
// topology package and immutable afterwards.
type Zone struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	Context *Context `json:"-"`

	Configs []*ZoneConfig `json:"configs"`

	InputDevices []DeviceInfo `json:"input_devices,omitempty"`

	// OccupantZoneID binds the zone to an occupant zone; negative means
	// unbound.
	OccupantZoneID int `json:"occupant_zone_id"`
}

// NewZone creates a zone with no configurations and no occupant binding.
func NewZone(id int, name string, context *Context) *Zone {
	return &Zone{
		ID:             id,
		Name:           name,
		Context:        context,
		OccupantZoneID: -1,
	}
}

// IsPrimary reports whether this is the primary zone.
func (z *Zone) IsPrimary() bool {
	return z.ID == PrimaryZoneID
}

// HasOccupantBinding reports whether the zone declares an occupant zone.
func (z *Zone) HasOccupantBinding() bool {
	return z.OccupantZoneID >= 0
}

// DefaultConfig returns the default configuration, or nil when none is
// marked (an invalid zone).
func (z *Zone) DefaultConfig() *ZoneConfig {
	for _, zc := range z.Configs {
		if zc.IsDefault {
			return zc
		}
	}
	return nil
}

// ConfigByID looks a configuration up by id.
func (z *Zone) ConfigByID(id int) (*ZoneConfig, bool) {
	for _, zc := range z.Configs {
		if zc.ID == id {
			return zc, true
		}
	}
	return nil, false
}

// AddInputDevice appends an input device unless its address is already
// present.
func (z *Zone) AddInputDevice(d DeviceInfo) {
	if z.HasInputDevice(d.Address) {
		return
	}
	z.InputDevices = append(z.InputDevices, d)
}

// HasInputDevice reports whether an input device with the address is
// attached to the zone.
func (z *Zone) HasInputDevice(address string) bool {
	for _, d := range z.InputDevices {
		if d.Address == address {
			return true
		}
	}
	return false
}

// InputAddresses returns the attached input device addresses in order.
func (z *Zone) InputAddresses() []string {
	out := make([]string, len(z.InputDevices))
	for i, d := range z.InputDevices {
		out[i] = d.Address
	}
	return out
}

// Validate checks the zone's structural invariants: a context is attached,
// at least one configuration exists, configuration ids are unique and
// exactly one configuration is the default.
func (z *Zone) Validate() error {
	if z.Context == nil {
		return fmt.Errorf("zone %d: %w", z.ID, ErrEmptyContext)
	}
	if len(z.Configs) == 0 {
		return fmt.Errorf("zone %d: %w", z.ID, ErrNoDefaultConfig)
	}

	seen := make(map[int]struct{}, len(z.Configs))
	defaults := 0
	for _, zc := range z.Configs {
		if _, dup := seen[zc.ID]; dup {
			return fmt.Errorf("zone %d: %w: %d", z.ID, ErrDuplicateConfigID, zc.ID)
		}
		seen[zc.ID] = struct{}{}
		if zc.IsDefault {
			defaults++
		}
	}
	switch {
	case defaults == 0:
		return fmt.Errorf("zone %d: %w", z.ID, ErrNoDefaultConfig)
	case defaults > 1:
		return fmt.Errorf("zone %d: %w", z.ID, ErrMultipleDefaultConfigs)
	}
	return nil
}
