package hal

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Bridge protocol: request/response envelopes and event payloads.
//
// Requests publish to caraudio/hal/request/<op> with a reply-to topic;
// the bridge answers on that topic with a response envelope carrying the
// same correlation id. Unsolicited events arrive on
// caraudio/hal/event/<kind>. Envelopes and payloads are CBOR maps with
// integer keys.

// Operation names, forming the request topic suffix.
const (
	opAudioDeviceConfiguration  = "audio_device_configuration"
	opAudioZones                = "audio_zones"
	opOutputMirroringDevices    = "output_mirroring_devices"
	opRegisterFocusListener     = "register_focus_listener"
	opUnregisterFocusListener   = "unregister_focus_listener"
	opAudioFocusChange          = "audio_focus_change"
	opRegisterGainCallback      = "register_gain_callback"
	opSetModuleChangeCallback   = "set_module_change_callback"
	opClearModuleChangeCallback = "clear_module_change_callback"
	opDevicesToDuck             = "devices_to_duck"
	opDevicesToMute             = "devices_to_mute"
	opBusForContext             = "bus_for_context"
)

// Event kinds, forming the event topic suffix.
const (
	eventFocusRequest = "focus_request"
	eventFocusAbandon = "focus_abandon"
	eventGainChange   = "gain_change"
	eventModuleChange = "module_change"
)

// Response codes.
const (
	codeOK                = 0
	codeFailed            = 1
	codeUnsupported       = 2
	codeAlreadyRegistered = 3
)

type requestEnvelope struct {
	ID      string          `cbor:"1,keyasint"`
	ReplyTo string          `cbor:"2,keyasint"`
	Params  cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

type responseEnvelope struct {
	ID     string          `cbor:"1,keyasint"`
	Code   int             `cbor:"2,keyasint"`
	Error  string          `cbor:"3,keyasint,omitempty"`
	Result cbor.RawMessage `cbor:"4,keyasint,omitempty"`
}

// decodeResponse maps a response envelope onto the matching sentinel
// error, or decodes the result into out when the call succeeded. A nil
// out discards the result.
func decodeResponse(env responseEnvelope, out any) error {
	switch env.Code {
	case codeOK:
		if out == nil || len(env.Result) == 0 {
			return nil
		}
		if err := cbor.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return nil
	case codeUnsupported:
		return ErrUnsupported
	case codeAlreadyRegistered:
		return ErrAlreadyRegistered
	case codeFailed:
		if env.Error != "" {
			return fmt.Errorf("%w: %s", ErrRequestFailed, env.Error)
		}
		return ErrRequestFailed
	default:
		return fmt.Errorf("%w: unknown response code %d", ErrInvalidResponse, env.Code)
	}
}

// bridgeStatus is the retained JSON document on caraudio/hal/status.
// The bridge's last-will publishes the offline form.
type bridgeStatus struct {
	Status   string `json:"status"`
	Revision int    `json:"revision,omitempty"`
	Version  int    `json:"version,omitempty"`
}

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// focusEvent announces a focus request or abandon from the HAL.
// Metadata is only present on bridges that negotiated metadata focus.
type focusEvent struct {
	Usage     string                `cbor:"1,keyasint,omitempty"`
	ZoneID    int                   `cbor:"2,keyasint"`
	FocusGain int                   `cbor:"3,keyasint"`
	Metadata  *AttributesDescriptor `cbor:"4,keyasint,omitempty"`
}

// gainEvent announces HAL-initiated gain changes.
type gainEvent struct {
	Reasons []int      `cbor:"1,keyasint,omitempty"`
	Gains   []GainInfo `cbor:"2,keyasint,omitempty"`
}

// moduleChangeEvent announces audio ports appearing or changing on the
// HAL module.
type moduleChangeEvent struct {
	Ports []PortDescriptor `cbor:"1,keyasint,omitempty"`
}

// focusChangeParams reports the framework's focus decision back to the
// HAL.
type focusChangeParams struct {
	Usage       string                `cbor:"1,keyasint,omitempty"`
	ZoneID      int                   `cbor:"2,keyasint"`
	FocusChange int                   `cbor:"3,keyasint"`
	Metadata    *AttributesDescriptor `cbor:"4,keyasint,omitempty"`
}

type busForContextParams struct {
	ContextID int `cbor:"1,keyasint"`
}

type busForContextResult struct {
	Bus int `cbor:"1,keyasint"`
}
