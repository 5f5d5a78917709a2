package enumeration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ridgeworth/caraudio-core/internal/audio"
)

// Device roles accepted by the inventory resource.
const (
	RoleOutput = "output"
	RoleInput  = "input"
)

// deviceEntry is one endpoint in the YAML resource.
type deviceEntry struct {
	Address string `yaml:"address"`
	Type    string `yaml:"type"`
	Role    string `yaml:"role"`
}

// inventoryFile is the root of the YAML resource.
type inventoryFile struct {
	Devices []deviceEntry `yaml:"devices"`
}

// Inventory is the validated set of installed audio endpoints, split by
// role. It is immutable after Load and safe for concurrent reads.
type Inventory struct {
	outputs []audio.DeviceInfo
	inputs  []audio.DeviceInfo
}

// Load reads and validates the device inventory resource.
//
// Parameters:
//   - path: Path to the YAML inventory file
//
// Returns:
//   - *Inventory: the validated inventory
//   - error: if the file cannot be read, parsed, or an entry is invalid
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading device inventory: %w", err)
	}
	return Parse(data)
}

// Parse validates a device inventory document. Split from Load so tests
// and embedded resources can feed bytes directly.
func Parse(data []byte) (*Inventory, error) {
	var file inventoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing device inventory: %w", err)
	}
	if len(file.Devices) == 0 {
		return nil, ErrEmptyInventory
	}

	inv := &Inventory{}
	seenOutputs := make(map[string]struct{})
	seenInputs := make(map[string]struct{})

	for i, entry := range file.Devices {
		if entry.Address == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrMissingAddress, i)
		}
		devType := audio.DeviceType(entry.Type)
		if err := audio.ValidateDeviceType(devType); err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, entry.Address, err)
		}

		switch entry.Role {
		case RoleOutput:
			if _, dup := seenOutputs[entry.Address]; dup {
				return nil, fmt.Errorf("%w: output %q", ErrDuplicateAddress, entry.Address)
			}
			seenOutputs[entry.Address] = struct{}{}
			inv.outputs = append(inv.outputs, audio.DeviceInfo{
				Address: entry.Address,
				Type:    devType,
			})
		case RoleInput:
			if _, dup := seenInputs[entry.Address]; dup {
				return nil, fmt.Errorf("%w: input %q", ErrDuplicateAddress, entry.Address)
			}
			seenInputs[entry.Address] = struct{}{}
			inv.inputs = append(inv.inputs, audio.DeviceInfo{
				Address: entry.Address,
				Type:    devType,
				IsInput: true,
			})
		default:
			return nil, fmt.Errorf("%w: %q on entry %d", ErrInvalidRole, entry.Role, i)
		}
	}

	return inv, nil
}

// OutputDevices returns the installed output endpoints in resource order.
func (inv *Inventory) OutputDevices() []audio.DeviceInfo {
	out := make([]audio.DeviceInfo, len(inv.outputs))
	copy(out, inv.outputs)
	return out
}

// InputDevices returns the installed input endpoints in resource order.
func (inv *Inventory) InputDevices() []audio.DeviceInfo {
	out := make([]audio.DeviceInfo, len(inv.inputs))
	copy(out, inv.inputs)
	return out
}

// OutputByAddress indexes the output endpoints by address.
func (inv *Inventory) OutputByAddress() map[string]audio.DeviceInfo {
	return audio.AddressToDeviceMap(inv.outputs)
}

// InputByAddress indexes the input endpoints by address.
func (inv *Inventory) InputByAddress() map[string]audio.DeviceInfo {
	return audio.InputAddressMap(inv.inputs)
}
