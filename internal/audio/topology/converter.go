package topology

import (
	"fmt"
	"strings"
	"time"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
)

// StrategyResolver resolves an audio context to the core audio engine's
// routing strategy id. Consulted only when the HAL reports core audio
// routing; a context without a strategy fails its whole zone.
type StrategyResolver interface {
	// StrategyForContext resolves a context name (matched on the trimmed,
	// lower-cased form) to a strategy id.
	StrategyForContext(name string) (int, bool)
}

// StrategyMap is a StrategyResolver backed by a name-to-id map, typically
// the routing.core_strategies configuration section.
type StrategyMap map[string]int

// StrategyForContext looks the normalised context name up in the map.
func (m StrategyMap) StrategyForContext(name string) (int, bool) {
	id, ok := m[audio.NormalizeContextName(name)]
	return id, ok
}

// ConverterOptions carries the deployment flags and product configuration
// the conversion depends on.
type ConverterOptions struct {
	// Strategies resolves contexts to core routing strategies. Required
	// only when the HAL reports core audio routing.
	Strategies StrategyResolver

	// FadeManagerConfiguration enables conversion of fade descriptors.
	// With the flag off, fade data on a descriptor is ignored entirely.
	FadeManagerConfiguration bool

	// DynamicDevices enables non-bus output ports. With the flag off, a
	// descriptor routing a dynamic port fails its zone.
	DynamicDevices bool
}

// Converter turns HAL zone descriptors into validated audio.Zone values.
// Conversion is pure: all device resolution happens against the device
// maps captured at construction, and no call leaves the process.
type Converter struct {
	outputs map[string]audio.DeviceInfo
	inputs  map[string]audio.DeviceInfo
	opts    ConverterOptions
}

// NewConverter builds a converter resolving against the given enumerated
// devices.
func NewConverter(outputs, inputs []audio.DeviceInfo, opts ConverterOptions) *Converter {
	return &Converter{
		outputs: audio.AddressToDeviceMap(outputs),
		inputs:  audio.InputAddressMap(inputs),
		opts:    opts,
	}
}

// ConvertZone converts one zone descriptor into the internal model.
//
// On any structural problem the whole zone is rejected with an error that
// names the configuration, group and offending field. A zone is never
// returned partially converted: a group with one bad route would produce
// silently wrong volume control, which is worse than no topology at all.
//
// Parameters:
//   - desc: the deserialized zone descriptor from the HAL
//   - devCfg: the HAL device configuration governing this load
//
// Returns:
//   - *audio.Zone: the converted zone, nil on failure
//   - error: the reason the zone was rejected
func (c *Converter) ConvertZone(desc hal.ZoneDescriptor, devCfg hal.DeviceConfiguration) (*audio.Zone, error) {
	zoneCtx, err := c.convertContext(desc.Contexts, devCfg.UseCoreAudioRouting)
	if err != nil {
		return nil, fmt.Errorf("zone %d: %w", desc.ID, err)
	}

	name := desc.Name
	if name == "" {
		name = fmt.Sprintf("audio zone %d", desc.ID)
	}
	zone := audio.NewZone(desc.ID, name, zoneCtx)
	if desc.OccupantZoneID != nil {
		zone.OccupantZoneID = *desc.OccupantZoneID
	}

	if len(desc.Configs) == 0 {
		return nil, fmt.Errorf("zone %d: %w", desc.ID, ErrNoConfigs)
	}
	for i, cd := range desc.Configs {
		zc, err := c.convertConfig(desc.ID, i, cd, zoneCtx)
		if err != nil {
			return nil, fmt.Errorf("zone %d: %w", desc.ID, err)
		}
		zone.Configs = append(zone.Configs, zc)
	}

	for _, port := range desc.InputPorts {
		if port.Address == "" {
			return nil, fmt.Errorf("zone %d: input port without address: %w", desc.ID, ErrUnresolvedDevice)
		}
		dev, ok := c.inputs[port.Address]
		if !ok {
			return nil, fmt.Errorf("zone %d: input %q: %w", desc.ID, port.Address, ErrUnresolvedDevice)
		}
		zone.AddInputDevice(dev)
	}

	if err := zone.Validate(); err != nil {
		return nil, err
	}
	return zone, nil
}

// convertContext builds the zone's audio context from its descriptors.
//
// Ids are taken from the descriptor when positive; otherwise the next
// sequential id above audio.InvalidContextID is allocated, advancing only
// when consumed, so assignment is deterministic and order-preserving.
// Under core audio routing the descriptor id is ignored and the context
// must resolve to an externally defined strategy id instead.
func (c *Converter) convertContext(descs []hal.ContextInfoDescriptor, coreRouting bool) (*audio.Context, error) {
	if len(descs) == 0 {
		return nil, audio.ErrEmptyContext
	}

	infos := make([]audio.ContextInfo, 0, len(descs))
	nextID := audio.InvalidContextID + 1
	for _, cd := range descs {
		if len(cd.Attrs) == 0 {
			return nil, fmt.Errorf("context %q: %w", cd.Name, audio.ErrNoAttributes)
		}

		var id int
		switch {
		case coreRouting:
			if c.opts.Strategies == nil {
				return nil, fmt.Errorf("context %q: no strategy resolver configured: %w",
					cd.Name, ErrUnresolvedStrategy)
			}
			sid, ok := c.opts.Strategies.StrategyForContext(cd.Name)
			if !ok {
				return nil, fmt.Errorf("context %q: %w", cd.Name, ErrUnresolvedStrategy)
			}
			id = sid
		case cd.ID > audio.InvalidContextID:
			id = cd.ID
		default:
			id = nextID
			nextID++
		}

		name := strings.TrimSpace(cd.Name)
		if name == "" {
			name = fmt.Sprintf("Context %d", id)
		}

		attrs := make([]audio.Attr, len(cd.Attrs))
		for i, ad := range cd.Attrs {
			attrs[i] = ad.Attr()
		}
		infos = append(infos, audio.ContextInfo{ID: id, Name: name, Attrs: attrs})
	}

	return audio.NewContext(infos)
}

// convertConfig converts one zone configuration and its volume groups.
// Config ids are assigned sequentially in descriptor order.
func (c *Converter) convertConfig(zoneID, configID int, cd hal.ZoneConfigDescriptor, zoneCtx *audio.Context) (*audio.ZoneConfig, error) {
	name := cd.Name
	if name == "" {
		name = fmt.Sprintf("zone %d config %d", zoneID, configID)
	}
	zc := &audio.ZoneConfig{
		ZoneID:    zoneID,
		ID:        configID,
		Name:      name,
		IsDefault: cd.IsDefault,
	}

	if len(cd.VolumeGroups) == 0 {
		return nil, fmt.Errorf("config %d: %w", configID, ErrNoVolumeGroups)
	}

	// One output address belongs to at most one group per configuration;
	// the owner map catches cross-group duplicates.
	addressOwner := make(map[string]int)
	seenGroupIDs := make(map[int]struct{}, len(cd.VolumeGroups))

	for gi, gd := range cd.VolumeGroups {
		groupID := gd.ID
		if groupID <= 0 {
			groupID = gi
		}
		if _, dup := seenGroupIDs[groupID]; dup {
			return nil, fmt.Errorf("config %d: group id %d: %w", configID, groupID, ErrDuplicateGroupID)
		}
		seenGroupIDs[groupID] = struct{}{}

		groupName := gd.Name
		if groupName == "" {
			groupName = fmt.Sprintf("config %d group %d", configID, groupID)
		}
		group := audio.NewVolumeGroup(zoneID, configID, groupID, groupName)
		group.Activation = convertActivation(gd.Activation)

		if len(gd.Routes) == 0 {
			return nil, fmt.Errorf("config %d group %q: %w", configID, groupName, ErrNoRoutes)
		}
		for _, rd := range gd.Routes {
			dev, err := c.resolveOutputPort(rd.Device)
			if err != nil {
				return nil, fmt.Errorf("config %d group %q: %w", configID, groupName, err)
			}
			if len(rd.Contexts) == 0 {
				return nil, fmt.Errorf("config %d group %q device %q: %w",
					configID, groupName, dev.Address, ErrEmptyRouteContexts)
			}
			if owner, bound := addressOwner[dev.Address]; bound && owner != groupID {
				return nil, fmt.Errorf("config %d: device %q bound by groups %d and %d: %w",
					configID, dev.Address, owner, groupID, ErrDuplicateDeviceBinding)
			}
			addressOwner[dev.Address] = groupID

			for _, ctxName := range rd.Contexts {
				info, ok := zoneCtx.InfoByName(ctxName)
				if !ok {
					return nil, fmt.Errorf("config %d group %q: context %q: %w",
						configID, groupName, ctxName, ErrUnknownContext)
				}
				if err := group.Bind(info.ID, dev); err != nil {
					return nil, fmt.Errorf("config %d: %w", configID, err)
				}
			}
		}

		zc.VolumeGroups = append(zc.VolumeGroups, group)
	}

	if c.opts.FadeManagerConfiguration && cd.Fade != nil {
		if err := c.convertFade(zc, cd.Fade); err != nil {
			return nil, fmt.Errorf("config %d: %w", configID, err)
		}
	}

	return zc, nil
}

// resolveOutputPort turns a port descriptor into a device. Bus ports must
// resolve by exact address against the enumerated outputs; every other
// port kind is synthesised from its type and connection and need not
// pre-exist in the address map.
func (c *Converter) resolveOutputPort(port hal.PortDescriptor) (audio.DeviceInfo, error) {
	if port.Type.IsBus() {
		if port.Address == "" {
			return audio.DeviceInfo{}, fmt.Errorf("bus port without address: %w", ErrUnresolvedDevice)
		}
		dev, ok := c.outputs[port.Address]
		if !ok {
			return audio.DeviceInfo{}, fmt.Errorf("bus %q: %w", port.Address, ErrUnresolvedDevice)
		}
		return dev, nil
	}

	if !c.opts.DynamicDevices {
		return audio.DeviceInfo{}, fmt.Errorf("port %q/%q: %w",
			port.Type.Type, port.Type.Connection, ErrDynamicDevicesDisabled)
	}
	return audio.DeviceInfo{
		Address: port.Address,
		Type:    deviceTypeForPort(port.Type),
	}, nil
}

// convertActivation turns an activation descriptor into the internal
// policy. A missing descriptor, an unknown invocation type or an invalid
// percentage window falls back to the default policy rather than failing
// the group; activation volume is advisory, not structural.
func convertActivation(d *hal.ActivationDescriptor) audio.ActivationConfig {
	def := audio.DefaultActivationConfig()
	if d == nil || len(d.Entries) == 0 {
		return def
	}

	// The platform supports one activation window per group; only the
	// first entry is honoured.
	e := d.Entries[0]

	var invocation audio.ActivationInvocation
	switch e.InvocationType {
	case hal.InvocationOnBoot:
		invocation = audio.ActivationOnBoot
	case hal.InvocationOnSourceChanged:
		invocation = audio.ActivationOnBoot | audio.ActivationOnSourceChanged
	case hal.InvocationOnPlaybackChanged:
		invocation = audio.ActivationOnBoot | audio.ActivationOnSourceChanged |
			audio.ActivationOnPlaybackChanged
	default:
		return def
	}

	if !audio.IsValidActivationPercentage(e.MinPercentage) ||
		!audio.IsValidActivationPercentage(e.MaxPercentage) ||
		e.MinPercentage >= e.MaxPercentage {
		return def
	}

	return audio.ActivationConfig{
		Invocation:    invocation,
		MinPercentage: e.MinPercentage,
		MaxPercentage: e.MaxPercentage,
	}
}

// convertFade attaches the configuration's fade policy. The default fade
// configuration is mandatory whenever fade data is present; transient
// entries are optional and each converts independently.
func (c *Converter) convertFade(zc *audio.ZoneConfig, fd *hal.ZoneFadeDescriptor) error {
	if fd.Default == nil {
		return ErrMissingDefaultFade
	}
	def, err := convertFadeConfiguration(*fd.Default)
	if err != nil {
		return fmt.Errorf("default fade: %w", err)
	}
	zc.DefaultFade = &def

	for i, td := range fd.Transients {
		if len(td.Usages) == 0 {
			return fmt.Errorf("transient fade %d: %w", i, ErrEmptyTransientUsages)
		}
		if td.Config == nil {
			return fmt.Errorf("transient fade %d: no configuration: %w", i, ErrMissingDefaultFade)
		}
		fc, err := convertFadeConfiguration(*td.Config)
		if err != nil {
			return fmt.Errorf("transient fade %d: %w", i, err)
		}
		usages := make([]audio.Usage, 0, len(td.Usages))
		for _, u := range td.Usages {
			usage := audio.Usage(u)
			if err := audio.ValidateUsage(usage); err != nil {
				return fmt.Errorf("transient fade %d: %w", i, err)
			}
			usages = append(usages, usage)
		}
		zc.TransientFades = append(zc.TransientFades, audio.TransientFadeConfiguration{
			Usages: usages,
			Config: fc,
		})
	}
	return nil
}

func convertFadeConfiguration(d hal.FadeConfigurationDescriptor) (audio.FadeConfiguration, error) {
	var state audio.FadeState
	switch d.FadeState {
	case hal.FadeStateEnabledDefault:
		state = audio.FadeStateEnabledDefault
	case hal.FadeStateDisabled:
		state = audio.FadeStateDisabled
	default:
		return audio.FadeConfiguration{}, fmt.Errorf("state %d: %w", d.FadeState, ErrInvalidFadeState)
	}

	fc := audio.FadeConfiguration{
		Name:                    d.Name,
		State:                   state,
		FadeInDuration:          time.Duration(d.FadeInDurationMillis) * time.Millisecond,
		FadeOutDuration:         time.Duration(d.FadeOutDurationMillis) * time.Millisecond,
		FadeInDelayForOffenders: time.Duration(d.FadeInDelayForOffendersMillis) * time.Millisecond,
	}

	for _, u := range d.FadeableUsages {
		usage := audio.Usage(u)
		if err := audio.ValidateUsage(usage); err != nil {
			return audio.FadeConfiguration{}, err
		}
		fc.FadeableUsages = append(fc.FadeableUsages, usage)
	}
	for _, ct := range d.UnfadeableContentTypes {
		fc.UnfadeableContentTypes = append(fc.UnfadeableContentTypes, audio.ContentType(ct))
	}
	for _, ad := range d.UnfadeableAttrs {
		fc.UnfadeableAttrs = append(fc.UnfadeableAttrs, ad.Attr())
	}

	var err error
	fc.FadeOutOverrides, err = convertFadeOverrides(d.FadeOutOverrides)
	if err != nil {
		return audio.FadeConfiguration{}, err
	}
	fc.FadeInOverrides, err = convertFadeOverrides(d.FadeInOverrides)
	if err != nil {
		return audio.FadeConfiguration{}, err
	}
	return fc, nil
}

// convertFadeOverrides converts per-usage or per-attribute duration
// overrides. A usage wins when both are set.
func convertFadeOverrides(descs []hal.FadeOverrideDescriptor) ([]audio.AttrDurationOverride, error) {
	if len(descs) == 0 {
		return nil, nil
	}
	out := make([]audio.AttrDurationOverride, 0, len(descs))
	for i, od := range descs {
		var attr audio.Attr
		switch {
		case od.Usage != "":
			usage := audio.Usage(od.Usage)
			if err := audio.ValidateUsage(usage); err != nil {
				return nil, fmt.Errorf("override %d: %w", i, err)
			}
			attr = audio.Attr{Usage: usage}
		case od.Attr != nil:
			attr = od.Attr.Attr()
		default:
			return nil, fmt.Errorf("override %d: %w", i, ErrInvalidFadeOverride)
		}
		out = append(out, audio.AttrDurationOverride{
			Attr:     attr,
			Duration: time.Duration(od.DurationMillis) * time.Millisecond,
		})
	}
	return out, nil
}
