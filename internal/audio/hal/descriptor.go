package hal

import (
	"github.com/ridgeworth/caraudio-core/internal/audio"
)

// Wire descriptors exchanged with the audio control bridge.
//
// Descriptors are encoded as CBOR maps with integer keys, so field numbers
// are part of the protocol and must not be reused. The structures mirror
// what the vendor HAL describes; conversion into the internal model and
// all validation live in the topology package.

// UnassignedContextID marks a context info the HAL did not assign an id
// for. The converter allocates an id instead. Values at or below
// audio.InvalidContextID are treated the same way.
const UnassignedContextID = -1

// RoutingConfig is the routing mode announced by the HAL device
// configuration.
type RoutingConfig int

// Routing modes, in wire order.
const (
	// DefaultAudioRouting means the HAL declines to describe a topology;
	// the service falls back to static routing.
	DefaultAudioRouting RoutingConfig = iota

	// DynamicAudioRouting means the HAL describes zones and the platform
	// routes them directly.
	DynamicAudioRouting

	// ConfigurableEngineRouting means the HAL describes zones whose
	// context ids must resolve to core audio engine strategies.
	ConfigurableEngineRouting
)

// String returns the routing mode name used in logs and API responses.
func (r RoutingConfig) String() string {
	switch r {
	case DefaultAudioRouting:
		return "default"
	case DynamicAudioRouting:
		return "dynamic"
	case ConfigurableEngineRouting:
		return "configurable_engine"
	default:
		return "unknown"
	}
}

// DeviceConfiguration is the HAL's global device configuration: the
// routing mode plus the policy flags the rest of the audio service keys
// its behaviour on.
type DeviceConfiguration struct {
	RoutingConfig           RoutingConfig `cbor:"1,keyasint" json:"routing_config"`
	UseCoreAudioVolume      bool          `cbor:"2,keyasint,omitempty" json:"use_core_audio_volume"`
	UseCoreAudioRouting     bool          `cbor:"3,keyasint,omitempty" json:"use_core_audio_routing"`
	UseHalDuckingSignals    bool          `cbor:"4,keyasint,omitempty" json:"use_hal_ducking_signals"`
	UseCarVolumeGroupMuting bool          `cbor:"5,keyasint,omitempty" json:"use_car_volume_group_muting"`
}

// DefaultDeviceConfiguration is the documented HAL-absent answer: default
// routing with every policy flag off.
func DefaultDeviceConfiguration() DeviceConfiguration {
	return DeviceConfiguration{RoutingConfig: DefaultAudioRouting}
}

// ZoneDescriptor describes one audio zone.
type ZoneDescriptor struct {
	ID       int                     `cbor:"1,keyasint"`
	Name     string                  `cbor:"2,keyasint,omitempty"`
	Contexts []ContextInfoDescriptor `cbor:"3,keyasint,omitempty"`
	Configs  []ZoneConfigDescriptor  `cbor:"4,keyasint,omitempty"`

	// InputPorts resolve by address against the enumerated input devices.
	InputPorts []PortDescriptor `cbor:"5,keyasint,omitempty"`

	// OccupantZoneID binds the zone to an occupant zone; nil means
	// unbound.
	OccupantZoneID *int `cbor:"6,keyasint,omitempty"`
}

// ContextInfoDescriptor describes one audio context of a zone.
type ContextInfoDescriptor struct {
	// ID is the HAL-assigned context id. UnassignedContextID (or any
	// value at or below audio.InvalidContextID) lets the converter
	// allocate one.
	ID    int                    `cbor:"1,keyasint"`
	Name  string                 `cbor:"2,keyasint,omitempty"`
	Attrs []AttributesDescriptor `cbor:"3,keyasint,omitempty"`
}

// AttributesDescriptor is one audio attribute on the wire.
type AttributesDescriptor struct {
	Usage       string `cbor:"1,keyasint,omitempty"`
	ContentType string `cbor:"2,keyasint,omitempty"`
	Tags        string `cbor:"3,keyasint,omitempty"`
}

// Attr converts the descriptor into the internal attribute form. No
// validation is applied; the converter validates usages where required.
func (d AttributesDescriptor) Attr() audio.Attr {
	return audio.Attr{
		Usage:       audio.Usage(d.Usage),
		ContentType: audio.ContentType(d.ContentType),
		Tags:        d.Tags,
	}
}

// descriptorFromAttr is the inverse of AttributesDescriptor.Attr, used
// when reporting focus changes back to the HAL.
func descriptorFromAttr(a audio.Attr) AttributesDescriptor {
	return AttributesDescriptor{
		Usage:       string(a.Usage),
		ContentType: string(a.ContentType),
		Tags:        a.Tags,
	}
}

// ZoneConfigDescriptor describes one selectable configuration of a zone.
// Config ids are not carried on the wire; they are assigned sequentially
// in descriptor order.
type ZoneConfigDescriptor struct {
	Name         string                  `cbor:"1,keyasint,omitempty"`
	IsDefault    bool                    `cbor:"2,keyasint,omitempty"`
	VolumeGroups []VolumeGroupDescriptor `cbor:"3,keyasint,omitempty"`

	// Fade is nil when the configuration carries no fade policy.
	Fade *ZoneFadeDescriptor `cbor:"4,keyasint,omitempty"`
}

// ZoneFadeDescriptor is the fade policy of a zone configuration. Default
// is mandatory whenever fade data is carried at all; Transients are
// optional.
type ZoneFadeDescriptor struct {
	Default    *FadeConfigurationDescriptor `cbor:"1,keyasint,omitempty"`
	Transients []TransientFadeDescriptor    `cbor:"2,keyasint,omitempty"`
}

// Fade states, in wire order.
const (
	FadeStateEnabledDefault = 0
	FadeStateDisabled       = 1
)

// FadeConfigurationDescriptor is one fade configuration: ramp durations,
// which usages fade, which content is exempt, and per-attribute duration
// overrides.
type FadeConfigurationDescriptor struct {
	Name      string `cbor:"1,keyasint,omitempty"`
	FadeState int    `cbor:"2,keyasint"`

	FadeInDurationMillis          int64 `cbor:"3,keyasint,omitempty"`
	FadeOutDurationMillis         int64 `cbor:"4,keyasint,omitempty"`
	FadeInDelayForOffendersMillis int64 `cbor:"5,keyasint,omitempty"`

	FadeableUsages         []string               `cbor:"6,keyasint,omitempty"`
	UnfadeableContentTypes []string               `cbor:"7,keyasint,omitempty"`
	UnfadeableAttrs        []AttributesDescriptor `cbor:"8,keyasint,omitempty"`

	FadeOutOverrides []FadeOverrideDescriptor `cbor:"9,keyasint,omitempty"`
	FadeInOverrides  []FadeOverrideDescriptor `cbor:"10,keyasint,omitempty"`
}

// FadeOverrideDescriptor pins a fade duration for one usage or one full
// attribute. Usage wins when both are set.
type FadeOverrideDescriptor struct {
	DurationMillis int64                 `cbor:"1,keyasint"`
	Usage          string                `cbor:"2,keyasint,omitempty"`
	Attr           *AttributesDescriptor `cbor:"3,keyasint,omitempty"`
}

// TransientFadeDescriptor applies an alternate fade configuration while
// any of its usages hold focus. Usages must be non-empty and Config must
// be present, or the zone configuration is rejected.
type TransientFadeDescriptor struct {
	Usages []string                     `cbor:"1,keyasint,omitempty"`
	Config *FadeConfigurationDescriptor `cbor:"2,keyasint,omitempty"`
}

// VolumeGroupDescriptor describes one volume group of a configuration.
type VolumeGroupDescriptor struct {
	// ID is the HAL-assigned group id. Zero or negative means unassigned;
	// the group then takes its position within the configuration.
	ID   int    `cbor:"1,keyasint,omitempty"`
	Name string `cbor:"2,keyasint,omitempty"`

	Routes []RouteDescriptor `cbor:"3,keyasint,omitempty"`

	// Activation is nil when the HAL declares no activation policy; the
	// default policy applies then.
	Activation *ActivationDescriptor `cbor:"4,keyasint,omitempty"`
}

// RouteDescriptor binds one output device to a set of context names.
// A route with no context names invalidates its volume group.
type RouteDescriptor struct {
	Device   PortDescriptor `cbor:"1,keyasint"`
	Contexts []string       `cbor:"2,keyasint,omitempty"`
}

// Audio port types, as announced by the HAL.
const (
	PortTypeOutBus       = "out_bus"
	PortTypeOutSpeaker   = "out_speaker"
	PortTypeOutHeadphone = "out_headphone"
	PortTypeOutHeadset   = "out_headset"
	PortTypeOutAccessory = "out_accessory"
	PortTypeOutLineAux   = "out_line_aux"
	PortTypeOutBroadcast = "out_broadcast"
	PortTypeOutDevice    = "out_device"
	PortTypeInMic        = "in_mic"
)

// Audio port connections.
const (
	ConnectionBus    = "bus"
	ConnectionAnalog = "analog"
	ConnectionBTA2DP = "bt_a2dp"
	ConnectionBTLE   = "bt_le"
	ConnectionBTSCO  = "bt_sco"
	ConnectionUSB    = "usb"
	ConnectionHDMI   = "hdmi"
	ConnectionSPDIF  = "spdif"
	ConnectionIP     = "ip"
)

// PortDescriptor describes one audio device endpoint on the wire.
type PortDescriptor struct {
	Type    PortTypeDescriptor `cbor:"1,keyasint"`
	Address string             `cbor:"2,keyasint,omitempty"`
}

// PortTypeDescriptor is the (type, connection) pair classifying a port.
type PortTypeDescriptor struct {
	Type       string `cbor:"1,keyasint,omitempty"`
	Connection string `cbor:"2,keyasint,omitempty"`
}

// IsBus reports whether the port is a bus endpoint, which must resolve
// by exact address against the enumerated devices. Every other port kind
// is synthesised from its type and connection.
func (t PortTypeDescriptor) IsBus() bool {
	return t.Type == PortTypeOutBus &&
		(t.Connection == "" || t.Connection == ConnectionBus)
}

// Activation invocation types, in wire order. The converter expands them
// into the cumulative internal trigger mask.
const (
	InvocationOnBoot            = 0
	InvocationOnSourceChanged   = 1
	InvocationOnPlaybackChanged = 2
)

// ActivationDescriptor is the activation volume policy of a volume group.
// Only the first entry is honoured; the platform supports a single
// activation window per group.
type ActivationDescriptor struct {
	Name    string                      `cbor:"1,keyasint,omitempty"`
	Entries []ActivationEntryDescriptor `cbor:"2,keyasint,omitempty"`
}

// ActivationEntryDescriptor is one activation window: the invocation
// type plus the percentage window the gain is pulled into.
type ActivationEntryDescriptor struct {
	InvocationType int `cbor:"1,keyasint"`
	MinPercentage  int `cbor:"2,keyasint"`
	MaxPercentage  int `cbor:"3,keyasint"`
}
