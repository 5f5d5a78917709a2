package audio

import "fmt"

// ActivationInvocation is a bitmask of the triggers that re-evaluate a
// volume group's activation volume policy.
type ActivationInvocation uint8

// Activation triggers. The set is cumulative: a group activated on playback
// change is also activated on source change and on boot.
const (
	ActivationOnBoot ActivationInvocation = 1 << iota
	ActivationOnSourceChanged
	ActivationOnPlaybackChanged
)

// Activation volume bounds.
const (
	MinActivationVolumePercentage = 0
	MaxActivationVolumePercentage = 100
)

// ActivationConfig is the activation volume policy of a volume group: the
// percentage window the gain is pulled into and the triggers that apply it.
type ActivationConfig struct {
	Invocation    ActivationInvocation `json:"invocation"`
	MinPercentage int                  `json:"min_percentage"`
	MaxPercentage int                  `json:"max_percentage"`
}

// DefaultActivationConfig is applied when a descriptor carries no
// activation policy or an invalid one.
func DefaultActivationConfig() ActivationConfig {
	return ActivationConfig{
		Invocation:    ActivationOnBoot | ActivationOnSourceChanged | ActivationOnPlaybackChanged,
		MinPercentage: MinActivationVolumePercentage,
		MaxPercentage: MaxActivationVolumePercentage,
	}
}

// IsValidActivationPercentage reports whether the value lies within the
// allowed activation volume window.
func IsValidActivationPercentage(v int) bool {
	return v >= MinActivationVolumePercentage && v <= MaxActivationVolumePercentage
}

// VolumeGroup is a set of contexts sharing one gain control, each bound to
// an output device. Identity is (ZoneID, ConfigID, ID).
type VolumeGroup struct {
	ZoneID   int    `json:"zone_id"`
	ConfigID int    `json:"config_id"`
	ID       int    `json:"id"`
	Name     string `json:"name"`

	Activation ActivationConfig `json:"activation"`

	// InitialGainIndex and Muted are seeded from the persisted settings
	// store at build time; the volume runtime owns them afterwards.
	InitialGainIndex int  `json:"initial_gain_index"`
	Muted            bool `json:"muted"`

	routes       map[int]DeviceInfo
	contextOrder []int
}

// NewVolumeGroup creates an empty volume group. Contexts are attached with
// Bind during conversion.
func NewVolumeGroup(zoneID, configID, id int, name string) *VolumeGroup {
	return &VolumeGroup{
		ZoneID:     zoneID,
		ConfigID:   configID,
		ID:         id,
		Name:       name,
		Activation: DefaultActivationConfig(),
		routes:     make(map[int]DeviceInfo),
	}
}

// Bind routes a context through the given output device. A context can be
// bound at most once per group.
func (g *VolumeGroup) Bind(contextID int, device DeviceInfo) error {
	if _, exists := g.routes[contextID]; exists {
		return fmt.Errorf("%w: context %d in group %q", ErrContextBound, contextID, g.Name)
	}
	g.routes[contextID] = device
	g.contextOrder = append(g.contextOrder, contextID)
	return nil
}

// DeviceForContext returns the device a context is routed through.
func (g *VolumeGroup) DeviceForContext(contextID int) (DeviceInfo, bool) {
	d, ok := g.routes[contextID]
	return d, ok
}

// HasContext reports whether the context is routed by this group.
func (g *VolumeGroup) HasContext(contextID int) bool {
	_, ok := g.routes[contextID]
	return ok
}

// ContextIDs returns the bound context ids in binding order.
func (g *VolumeGroup) ContextIDs() []int {
	out := make([]int, len(g.contextOrder))
	copy(out, g.contextOrder)
	return out
}

// Devices returns the bound output devices, deduplicated by address, in
// first-bound order.
func (g *VolumeGroup) Devices() []DeviceInfo {
	seen := make(map[string]struct{}, len(g.contextOrder))
	out := make([]DeviceInfo, 0, len(g.contextOrder))
	for _, id := range g.contextOrder {
		d := g.routes[id]
		if _, dup := seen[d.Address]; dup {
			continue
		}
		seen[d.Address] = struct{}{}
		out = append(out, d)
	}
	return out
}

// Addresses returns the distinct bound device addresses in first-bound
// order.
func (g *VolumeGroup) Addresses() []string {
	devices := g.Devices()
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.Address
	}
	return out
}

// HasDynamicDevices reports whether any bound device is a dynamic endpoint
// type.
func (g *VolumeGroup) HasDynamicDevices() bool {
	for _, id := range g.contextOrder {
		if g.routes[id].Type.IsDynamic() {
			return true
		}
	}
	return false
}
