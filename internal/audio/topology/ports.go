package topology

import (
	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
)

// deviceTypeForPort maps a wire-level port (type, connection) pair onto
// the internal device type vocabulary. Bus ports are handled by address
// lookup before this is consulted; everything else is synthesised.
//
// An out_device port with an unrecognised connection falls back to the
// bus type, matching the platform's treatment of unknown endpoints as
// statically addressed.
func deviceTypeForPort(t hal.PortTypeDescriptor) audio.DeviceType {
	switch t.Type {
	case hal.PortTypeOutSpeaker:
		return audio.DeviceTypeBuiltinSpeaker
	case hal.PortTypeOutHeadphone:
		return audio.DeviceTypeWiredHeadphones
	case hal.PortTypeOutHeadset:
		switch t.Connection {
		case hal.ConnectionBTLE:
			return audio.DeviceTypeBLEHeadset
		case hal.ConnectionUSB:
			return audio.DeviceTypeUSBHeadset
		default:
			return audio.DeviceTypeWiredHeadset
		}
	case hal.PortTypeOutAccessory:
		return audio.DeviceTypeUSBAccessory
	case hal.PortTypeOutLineAux:
		return audio.DeviceTypeAuxLine
	case hal.PortTypeOutBroadcast:
		return audio.DeviceTypeBLEBroadcast
	case hal.PortTypeOutDevice:
		switch t.Connection {
		case hal.ConnectionBTA2DP:
			return audio.DeviceTypeBluetoothA2DP
		case hal.ConnectionBTLE:
			return audio.DeviceTypeBLESpeaker
		case hal.ConnectionHDMI:
			return audio.DeviceTypeHDMI
		case hal.ConnectionUSB:
			return audio.DeviceTypeUSBDevice
		case hal.ConnectionAnalog:
			return audio.DeviceTypeAuxLine
		default:
			return audio.DeviceTypeBus
		}
	case hal.PortTypeInMic:
		return audio.DeviceTypeBuiltinMic
	default:
		return audio.DeviceTypeBus
	}
}
