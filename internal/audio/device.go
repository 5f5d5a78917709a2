package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceType classifies an audio endpoint. Bus and builtin devices are
// static (fixed by the board build); the remainder are dynamic endpoints
// that appear and disappear at runtime.
type DeviceType string

// Known device types.
const (
	DeviceTypeBus             DeviceType = "bus"
	DeviceTypeBuiltinSpeaker  DeviceType = "builtin_speaker"
	DeviceTypeBuiltinMic      DeviceType = "builtin_mic"
	DeviceTypeWiredHeadset    DeviceType = "wired_headset"
	DeviceTypeWiredHeadphones DeviceType = "wired_headphones"
	DeviceTypeBluetoothA2DP   DeviceType = "bluetooth_a2dp"
	DeviceTypeHDMI            DeviceType = "hdmi"
	DeviceTypeUSBAccessory    DeviceType = "usb_accessory"
	DeviceTypeUSBDevice       DeviceType = "usb_device"
	DeviceTypeUSBHeadset      DeviceType = "usb_headset"
	DeviceTypeAuxLine         DeviceType = "aux_line"
	DeviceTypeBLEHeadset      DeviceType = "ble_headset"
	DeviceTypeBLESpeaker      DeviceType = "ble_speaker"
	DeviceTypeBLEBroadcast    DeviceType = "ble_broadcast"
)

// AllDeviceTypes returns every known device type.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeBus,
		DeviceTypeBuiltinSpeaker,
		DeviceTypeBuiltinMic,
		DeviceTypeWiredHeadset,
		DeviceTypeWiredHeadphones,
		DeviceTypeBluetoothA2DP,
		DeviceTypeHDMI,
		DeviceTypeUSBAccessory,
		DeviceTypeUSBDevice,
		DeviceTypeUSBHeadset,
		DeviceTypeAuxLine,
		DeviceTypeBLEHeadset,
		DeviceTypeBLESpeaker,
		DeviceTypeBLEBroadcast,
	}
}

// validDeviceTypes is precomputed for O(1) validation.
var validDeviceTypes map[DeviceType]struct{}

func init() {
	validDeviceTypes = make(map[DeviceType]struct{}, len(AllDeviceTypes()))
	for _, t := range AllDeviceTypes() {
		validDeviceTypes[t] = struct{}{}
	}
}

// ValidateDeviceType checks whether a device type is recognised.
func ValidateDeviceType(t DeviceType) error {
	if _, ok := validDeviceTypes[t]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceType, t)
	}
	return nil
}

// IsDynamic reports whether endpoints of this type attach and detach at
// runtime (wired, Bluetooth, USB, auxiliary and BLE endpoints). Bus and
// builtin devices are static.
func (t DeviceType) IsDynamic() bool {
	switch t {
	case DeviceTypeWiredHeadset,
		DeviceTypeWiredHeadphones,
		DeviceTypeBluetoothA2DP,
		DeviceTypeHDMI,
		DeviceTypeUSBAccessory,
		DeviceTypeUSBDevice,
		DeviceTypeUSBHeadset,
		DeviceTypeAuxLine,
		DeviceTypeBLEHeadset,
		DeviceTypeBLESpeaker,
		DeviceTypeBLEBroadcast:
		return true
	default:
		return false
	}
}

// DeviceInfo describes one audio endpoint. Address is the unique key within
// a role (output or input).
type DeviceInfo struct {
	Address string     `json:"address"`
	Type    DeviceType `json:"type"`
	IsInput bool       `json:"is_input"`
}

// IsMicrophone reports whether the device is a builtin microphone input.
func IsMicrophone(d DeviceInfo) bool {
	return d.Type == DeviceTypeBuiltinMic
}

// ParseBusAddress extracts the bus number from a bus-style device address.
// The expected format is "bus<N>" optionally followed by "_<suffix>", for
// example "bus0_media". Matching on the prefix is case-insensitive.
//
// Returns:
//   - int: the bus number (>= 0)
//   - bool: false when the address is not a valid bus address
func ParseBusAddress(address string) (int, bool) {
	head, _, _ := strings.Cut(address, "_")
	if len(head) <= len("bus") || !strings.EqualFold(head[:3], "bus") {
		return 0, false
	}
	n, err := strconv.Atoi(head[3:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// AddressToDeviceMap indexes devices by address. Devices with an empty
// address are skipped.
func AddressToDeviceMap(devices []DeviceInfo) map[string]DeviceInfo {
	m := make(map[string]DeviceInfo, len(devices))
	for _, d := range devices {
		if d.Address == "" {
			continue
		}
		m[d.Address] = d
	}
	return m
}

// InputAddressMap indexes input devices by address. Output devices and
// devices with an empty address are skipped.
func InputAddressMap(devices []DeviceInfo) map[string]DeviceInfo {
	m := make(map[string]DeviceInfo)
	for _, d := range devices {
		if !d.IsInput || d.Address == "" {
			continue
		}
		m[d.Address] = d
	}
	return m
}
