package topology

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
)

// Legacy volume groups resource.
//
// Vehicles on a revision 1 bridge carry a static XML resource describing
// volume groups as sets of context names:
//
//	<volumeGroups>
//	  <group>
//	    <context name="music"/>
//	    <context name="announcement"/>
//	  </group>
//	  <group>
//	    <context name="navigation"/>
//	  </group>
//	</volumeGroups>
//
// The context-to-bus assignment comes from the bridge's BusForContext
// query, and buses resolve to devices through the enumerated outputs'
// bus-style addresses. The result is always exactly one zone: the
// primary, with bus-addressed devices only.

type legacyGroupsFile struct {
	XMLName xml.Name      `xml:"volumeGroups"`
	Groups  []legacyGroup `xml:"group"`
}

type legacyGroup struct {
	Contexts []legacyContextRef `xml:"context"`
}

type legacyContextRef struct {
	Name string `xml:"name,attr"`
}

// ParseLegacyVolumeGroups parses the legacy volume groups resource into
// per-group context name lists, in file order.
func ParseLegacyVolumeGroups(data []byte) ([][]string, error) {
	var file legacyGroupsFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLegacyResource, err)
	}
	if len(file.Groups) == 0 {
		return nil, fmt.Errorf("%w: no volume groups", ErrLegacyResource)
	}

	out := make([][]string, 0, len(file.Groups))
	for i, g := range file.Groups {
		if len(g.Contexts) == 0 {
			return nil, fmt.Errorf("%w: group %d names no contexts", ErrLegacyResource, i)
		}
		names := make([]string, 0, len(g.Contexts))
		for _, c := range g.Contexts {
			if c.Name == "" {
				return nil, fmt.Errorf("%w: group %d has a context without a name", ErrLegacyResource, i)
			}
			names = append(names, c.Name)
		}
		out = append(out, names)
	}
	return out, nil
}

// busDeviceMap maps bus numbers onto the enumerated output devices whose
// addresses parse as bus addresses. Two addresses resolving to one bus
// number is a vendor configuration bug and fails hard.
func busDeviceMap(outputs []audio.DeviceInfo) (map[int]audio.DeviceInfo, error) {
	m := make(map[int]audio.DeviceInfo)
	for _, d := range outputs {
		bus, ok := audio.ParseBusAddress(d.Address)
		if !ok {
			continue
		}
		if prev, dup := m[bus]; dup {
			return nil, fmt.Errorf("%w: %d claimed by %q and %q",
				ErrDuplicateBus, bus, prev.Address, d.Address)
		}
		m[bus] = d
	}
	return m, nil
}

// buildLegacyZones builds the single-zone legacy topology: the default
// context table, bus assignments from the bridge, and volume groups from
// the parsed resource. Microphone inputs are attached to the zone.
func buildLegacyZones(ctx context.Context, bus hal.BusQuerier, groups [][]string,
	outputs, inputs []audio.DeviceInfo) (map[int]*audio.Zone, error) {

	carCtx := audio.DefaultContext()

	contextToBus := make(map[int]int)
	for _, id := range audio.NonCarSystemContextIDs() {
		busNum, err := bus.BusForContext(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnassignedBus, err)
		}
		contextToBus[id] = busNum
	}

	busToDevice, err := busDeviceMap(outputs)
	if err != nil {
		return nil, err
	}

	zone := audio.NewZone(audio.PrimaryZoneID, "Primary zone", carCtx)
	zc := &audio.ZoneConfig{
		ZoneID:    audio.PrimaryZoneID,
		ID:        0,
		Name:      "Primary zone config 0",
		IsDefault: true,
	}

	for gi, names := range groups {
		group := audio.NewVolumeGroup(audio.PrimaryZoneID, 0, gi, fmt.Sprintf("legacy group %d", gi))
		// Legacy groups restore their gain once, at boot.
		group.Activation = audio.ActivationConfig{
			Invocation:    audio.ActivationOnBoot,
			MinPercentage: audio.MinActivationVolumePercentage,
			MaxPercentage: audio.MaxActivationVolumePercentage,
		}

		for _, name := range names {
			info, ok := carCtx.InfoByName(name)
			if !ok {
				return nil, fmt.Errorf("group %d: context %q: %w", gi, name, ErrUnknownContext)
			}
			busNum, ok := contextToBus[info.ID]
			if !ok {
				return nil, fmt.Errorf("group %d: context %q is not bus-routable: %w",
					gi, name, ErrUnassignedBus)
			}
			dev, ok := busToDevice[busNum]
			if !ok {
				return nil, fmt.Errorf("group %d: context %q: bus %d: %w",
					gi, name, busNum, ErrUnresolvedDevice)
			}
			if err := group.Bind(info.ID, dev); err != nil {
				return nil, fmt.Errorf("group %d: %w", gi, err)
			}
		}

		zc.VolumeGroups = append(zc.VolumeGroups, group)
	}

	zone.Configs = append(zone.Configs, zc)

	for _, d := range inputs {
		if audio.IsMicrophone(d) {
			zone.AddInputDevice(d)
		}
	}

	if err := zone.Validate(); err != nil {
		return nil, err
	}
	return map[int]*audio.Zone{zone.ID: zone}, nil
}
