package hal

import (
	"context"

	"github.com/fxamacker/cbor/v2"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
)

// DeathRecipient is notified after the bridge died and announced itself
// online again, once LinkToDeath is active. Callback registrations were
// dropped by then; the recipient re-applies them and reloads whatever
// state it derived from the HAL.
type DeathRecipient func()

// FocusListener receives focus requests and abandons originating from
// the HAL. Callbacks run on the transport's event goroutines and must
// not block.
type FocusListener interface {
	RequestAudioFocus(request FocusRequest)
	AbandonAudioFocus(request FocusRequest)
}

// FocusRequest is one HAL-originated focus action. Metadata is nil
// unless the bridge negotiated metadata focus.
type FocusRequest struct {
	Usage     audio.Usage
	ZoneID    int
	FocusGain int
	Metadata  *audio.Attr
}

// GainCallback receives HAL-initiated gain changes.
type GainCallback func(reasons []int, gains []GainInfo)

// GainInfo is one changed gain: the device address within a zone and
// its new volume index.
type GainInfo struct {
	ZoneID  int    `cbor:"1,keyasint" json:"zone_id"`
	Address string `cbor:"2,keyasint,omitempty" json:"address"`
	Index   int    `cbor:"3,keyasint" json:"index"`
}

// ModuleChangeCallback receives audio ports that appeared or changed on
// the HAL module.
type ModuleChangeCallback func(ports []PortDescriptor)

// DuckingInfo tells the HAL which devices to duck and release for one
// zone, and which usages hold focus there.
type DuckingInfo struct {
	ZoneID             int      `cbor:"1,keyasint" json:"zone_id"`
	AddressesToDuck    []string `cbor:"2,keyasint,omitempty" json:"addresses_to_duck,omitempty"`
	AddressesToUnduck  []string `cbor:"3,keyasint,omitempty" json:"addresses_to_unduck,omitempty"`
	UsagesHoldingFocus []string `cbor:"4,keyasint,omitempty" json:"usages_holding_focus,omitempty"`
}

// MutingInfo tells the HAL which devices to mute and unmute for one
// zone.
type MutingInfo struct {
	ZoneID            int      `cbor:"1,keyasint" json:"zone_id"`
	AddressesToMute   []string `cbor:"2,keyasint,omitempty" json:"addresses_to_mute,omitempty"`
	AddressesToUnmute []string `cbor:"3,keyasint,omitempty" json:"addresses_to_unmute,omitempty"`
}

// Wrapper is the revision-independent facade over the audio control
// HAL. Operations a revision cannot serve return ErrUnsupported;
// callers gate on SupportsFeature rather than on revision numbers.
type Wrapper interface {
	// SupportsFeature reports whether the negotiated revision serves the
	// feature.
	SupportsFeature(feature Feature) bool

	// AudioDeviceConfiguration returns the HAL's routing mode and policy
	// flags. Revisions without the query return ErrUnsupported; a
	// transport failure on a revision with it yields the default
	// configuration instead of an error.
	AudioDeviceConfiguration(ctx context.Context) (DeviceConfiguration, error)

	// AudioZones returns the HAL-described zone topology.
	// ErrUnsupported when the configuration feature is not active; a nil
	// slice without error when the bridge failed mid-query.
	AudioZones(ctx context.Context) ([]ZoneDescriptor, error)

	// OutputMirroringDevices returns the ports usable for zone
	// mirroring, under the same contract as AudioZones.
	OutputMirroringDevices(ctx context.Context) ([]PortDescriptor, error)

	// RegisterFocusListener registers the receiver for HAL focus
	// traffic. Failure to register is returned loudly; focus is the one
	// callback the service cannot run without.
	RegisterFocusListener(ctx context.Context, listener FocusListener) error

	// UnregisterFocusListener detaches the focus listener. Best effort.
	UnregisterFocusListener(ctx context.Context) error

	// RequestedFocusChange reports the framework's focus decision back
	// to the HAL.
	RequestedFocusChange(ctx context.Context, attr audio.Attr, zoneID, focusChange int) error

	// RegisterGainCallback registers the receiver for HAL gain changes.
	RegisterGainCallback(ctx context.Context, callback GainCallback) error

	// SetModuleChangeCallback registers the module change receiver on
	// the registration goroutine. When the bridge reports the callback
	// slot occupied, it is cleared and the registration retried once;
	// a second rejection leaves the feature inactive.
	SetModuleChangeCallback(callback ModuleChangeCallback) error

	// ClearModuleChangeCallback releases the module change slot.
	ClearModuleChangeCallback() error

	// DevicesToDuckChange forwards ducking transitions to the HAL.
	DevicesToDuckChange(ctx context.Context, ducking []DuckingInfo) error

	// DevicesToMuteChange forwards muting transitions to the HAL.
	DevicesToMuteChange(ctx context.Context, muting []MutingInfo) error

	// SetDeathRecipient installs the reconnect notification target.
	SetDeathRecipient(recipient DeathRecipient)

	// LinkToDeath arms death notification for the installed recipient.
	LinkToDeath() error

	// UnlinkToDeath disarms death notification.
	UnlinkToDeath()

	// State returns the bridge connection state.
	State() ConnState

	// Stats returns a transport counter snapshot.
	Stats() Stats

	// Revision returns the major protocol revision (1, 2 or 3).
	Revision() int

	// InterfaceVersion returns the negotiated minor version, zero for
	// revisions that do not version.
	InterfaceVersion() int

	// Close tears the transport down. The wrapper is unusable after.
	Close() error
}

// BusQuerier is the legacy context-to-bus query only revision 1 serves.
// The topology loader type-asserts for it when building legacy routing.
type BusQuerier interface {
	// BusForContext returns the output bus assigned to a context id.
	// A HAL answer without an assigned bus is an error; legacy routing
	// cannot proceed with holes in the bus map.
	BusForContext(ctx context.Context, contextID int) (int, error)
}

// transport is the seam between the wrappers and the bridge client,
// kept narrow so wrapper tests can script it.
type transport interface {
	invoke(ctx context.Context, op string, params, result any) error
	submit(task func()) error
	setEventHandler(kind string, handler eventHandler)
	clearEventHandler(kind string)
	setDeathRecipient(recipient DeathRecipient)
	linkToDeath() error
	unlinkToDeath()
	state() ConnState
	revision() int
	version() int
	stats() Stats
	close() error
}

var _ transport = (*client)(nil)

// focusEventHandler adapts a FocusListener to one focus event kind.
// Malformed events are dropped with a diagnostic entry; a bad event must
// not take down focus handling.
func focusEventHandler(listener FocusListener, abandon, withMetadata bool, diag *diagnostics.Log) eventHandler {
	return func(payload []byte) {
		var ev focusEvent
		if err := cbor.Unmarshal(payload, &ev); err != nil {
			diag.Record("malformed focus event dropped: %v", err)
			return
		}
		req := FocusRequest{
			Usage:     audio.Usage(ev.Usage),
			ZoneID:    ev.ZoneID,
			FocusGain: ev.FocusGain,
		}
		if withMetadata && ev.Metadata != nil {
			attr := ev.Metadata.Attr()
			req.Metadata = &attr
		}
		if abandon {
			listener.AbandonAudioFocus(req)
		} else {
			listener.RequestAudioFocus(req)
		}
	}
}

func gainEventHandler(callback GainCallback, diag *diagnostics.Log) eventHandler {
	return func(payload []byte) {
		var ev gainEvent
		if err := cbor.Unmarshal(payload, &ev); err != nil {
			diag.Record("malformed gain event dropped: %v", err)
			return
		}
		callback(ev.Reasons, ev.Gains)
	}
}

func moduleEventHandler(callback ModuleChangeCallback, diag *diagnostics.Log) eventHandler {
	return func(payload []byte) {
		var ev moduleChangeEvent
		if err := cbor.Unmarshal(payload, &ev); err != nil {
			diag.Record("malformed module change event dropped: %v", err)
			return
		}
		callback(ev.Ports)
	}
}
