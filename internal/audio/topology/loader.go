package topology

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
	"github.com/ridgeworth/caraudio-core/internal/enumeration"
)

// RoutingMode is the three-way outcome of the routing decision made at
// the start of every load.
type RoutingMode string

// Routing modes.
const (
	// ModeDescribed means the HAL described the zone topology.
	ModeDescribed RoutingMode = "described"

	// ModeLegacyFallback means the topology came from the static legacy
	// resource and the bridge's bus assignments.
	ModeLegacyFallback RoutingMode = "legacy_fallback"

	// ModeNoRouting means no topology is available; the service operates
	// zone-agnostically on fallback routing.
	ModeNoRouting RoutingMode = "no_routing"
)

// Logger is the logging interface the loader needs, matching the service
// logger's methods.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// GainStore supplies persisted per-group volume state used to seed the
// built topology. Implemented by the settings store.
type GainStore interface {
	// GroupVolume returns the stored gain index and mute flag for a
	// volume group. ok is false when the store has no row for the group.
	GroupVolume(zoneID, configID, groupID int) (gainIndex int, muted bool, ok bool)
}

// LoadResult summarises one load attempt for logging, telemetry and the
// event stream.
type LoadResult struct {
	Generation string        `json:"generation"`
	Mode       RoutingMode   `json:"mode"`
	Succeeded  bool          `json:"succeeded"`
	Zones      int           `json:"zones"`
	Configs    int           `json:"configs"`
	Groups     int           `json:"groups"`
	Devices    int           `json:"devices"`
	Duration   time.Duration `json:"duration"`
}

// LoaderOptions carries the loader's collaborators beyond the required
// wrapper, inventory and converter.
type LoaderOptions struct {
	// LegacyResource is the path to the legacy volume groups XML. Empty
	// disables the legacy fallback.
	LegacyResource string

	// Settings seeds group gain state. Optional.
	Settings GainStore

	// OnLoad is invoked after every load attempt, successful or not,
	// outside the state lock. Optional.
	OnLoad func(LoadResult)

	// Logger receives load progress logging. Optional.
	Logger Logger
}

// Loader decides where the topology comes from, drives the converter and
// publishes the validated result. One instance lives for the whole
// service; LoadZones runs at startup and again after HAL reconnection or
// module change.
type Loader struct {
	wrapper   hal.Wrapper
	inventory *enumeration.Inventory
	converter *Converter
	diag      *diagnostics.Log
	opts      LoaderOptions
	logger    Logger

	// mu guards the published state below. Accessors take it read-side;
	// publish() swaps everything at once. No remote call happens under
	// it.
	mu         sync.RWMutex
	zones      map[int]*audio.Zone
	carContext *audio.Context
	devCfg     hal.DeviceConfiguration
	occupant   map[int]int
	mirrors    []audio.DeviceInfo
	mode       RoutingMode
	generation string
}

// NewLoader builds a loader over the given wrapper, device inventory and
// converter.
func NewLoader(wrapper hal.Wrapper, inventory *enumeration.Inventory, converter *Converter,
	diag *diagnostics.Log, opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Loader{
		wrapper:   wrapper,
		inventory: inventory,
		converter: converter,
		diag:      diag,
		opts:      opts,
		logger:    logger,
		zones:     make(map[int]*audio.Zone),
		occupant:  make(map[int]int),
		mode:      ModeNoRouting,
	}
}

// LoadZones resolves and publishes the audio topology.
//
// The routing decision is made once, at the top: a HAL that describes a
// topology wins; otherwise the legacy fallback applies when a legacy
// resource and a bus-capable bridge are available; otherwise the topology
// is empty. Any conversion failure, duplicate id or missing primary zone
// discards everything — the only line drawn is "fully valid topology"
// versus "nothing".
//
// Returns:
//   - map[int]*audio.Zone: the published zones keyed by zone id; empty
//     means "use fallback routing"
func (l *Loader) LoadZones(ctx context.Context) map[int]*audio.Zone {
	start := time.Now()
	generation := uuid.NewString()
	l.logger.Info("loading audio topology", "generation", generation)

	devCfg := l.deviceConfiguration(ctx)

	var (
		zones   map[int]*audio.Zone
		mirrors []audio.DeviceInfo
		mode    RoutingMode
	)
	switch {
	case devCfg.RoutingConfig != hal.DefaultAudioRouting:
		mode = ModeDescribed
		zones, mirrors = l.loadDescribed(ctx, devCfg)
	case l.legacyAvailable():
		mode = ModeLegacyFallback
		zones = l.loadLegacy(ctx)
	default:
		mode = ModeNoRouting
		l.logger.Info("no topology source available, using fallback routing")
	}
	if zones == nil {
		zones = make(map[int]*audio.Zone)
	}

	l.seedVolumes(zones)

	result := l.publish(zones, devCfg, mirrors, mode, generation)
	result.Duration = time.Since(start)

	if result.Succeeded {
		l.logger.Info("audio topology loaded",
			"generation", generation, "mode", string(mode),
			"zones", result.Zones, "groups", result.Groups,
			"devices", result.Devices, "duration", result.Duration)
	} else {
		l.logger.Warn("audio topology empty, falling back to default routing",
			"generation", generation, "mode", string(mode))
	}
	if l.opts.OnLoad != nil {
		l.opts.OnLoad(result)
	}

	return l.Zones()
}

// deviceConfiguration queries the HAL device configuration, mapping an
// unsupported query onto the documented default.
func (l *Loader) deviceConfiguration(ctx context.Context) hal.DeviceConfiguration {
	devCfg, err := l.wrapper.AudioDeviceConfiguration(ctx)
	if err != nil {
		if !errors.Is(err, hal.ErrUnsupported) {
			l.diag.Record("device configuration query failed, using default: %v", err)
		}
		return hal.DefaultDeviceConfiguration()
	}
	return devCfg
}

// legacyAvailable reports whether the legacy fallback can run: a resource
// path is configured and the bridge answers bus queries.
func (l *Loader) legacyAvailable() bool {
	if l.opts.LegacyResource == "" {
		return false
	}
	_, ok := l.wrapper.(hal.BusQuerier)
	return ok
}

// loadDescribed loads and converts the HAL-described topology. A nil
// return means the whole load is discarded.
func (l *Loader) loadDescribed(ctx context.Context, devCfg hal.DeviceConfiguration) (map[int]*audio.Zone, []audio.DeviceInfo) {
	descs, err := l.wrapper.AudioZones(ctx)
	if err != nil {
		l.diag.Record("audio zones query rejected: %v", err)
		return nil, nil
	}
	if len(descs) == 0 {
		l.diag.Record("%v", ErrNoZones)
		return nil, nil
	}

	converted := make(map[int]*audio.Zone, len(descs))
	failed := false
	seen := make(map[int]struct{}, len(descs))
	for _, zd := range descs {
		if _, dup := seen[zd.ID]; dup {
			l.diag.Record("zone %d: %v", zd.ID, ErrDuplicateZoneID)
			failed = true
			continue
		}
		seen[zd.ID] = struct{}{}

		zone, err := l.converter.ConvertZone(zd, devCfg)
		if err != nil {
			// Keep converting the remaining zones so the diagnostic log
			// reports every defect in one pass.
			l.diag.Record("zone conversion failed: %v", err)
			failed = true
			continue
		}
		converted[zone.ID] = zone
	}
	if failed {
		l.diag.Record("discarding all %d converted zones: topology must be fully valid", len(converted))
		return nil, nil
	}

	primary, ok := converted[audio.PrimaryZoneID]
	if !ok {
		l.diag.Record("%v: %d zones described without zone %d",
			ErrMissingPrimaryZone, len(converted), audio.PrimaryZoneID)
		return nil, nil
	}

	mirrors, ok := l.resolveMirrorDevices(ctx)
	if !ok {
		return nil, nil
	}

	l.attachUnclaimedMicrophones(primary, converted)

	return converted, mirrors
}

// resolveMirrorDevices fetches and resolves the HAL's mirroring ports.
// An unresolvable address discards the load; a bridge without the query
// simply has no mirror devices.
func (l *Loader) resolveMirrorDevices(ctx context.Context) ([]audio.DeviceInfo, bool) {
	ports, err := l.wrapper.OutputMirroringDevices(ctx)
	if err != nil {
		if errors.Is(err, hal.ErrUnsupported) {
			return nil, true
		}
		l.diag.Record("output mirroring devices query failed: %v", err)
		return nil, true
	}
	if len(ports) == 0 {
		return nil, true
	}

	byAddress := l.inventory.OutputByAddress()
	mirrors := make([]audio.DeviceInfo, 0, len(ports))
	for _, port := range ports {
		dev, ok := byAddress[port.Address]
		if !ok {
			l.diag.Record("mirror device %q: %v", port.Address, ErrUnresolvedDevice)
			return nil, false
		}
		mirrors = append(mirrors, dev)
	}
	return mirrors, true
}

// attachUnclaimedMicrophones appends every enumerated microphone no zone
// claimed to the primary zone. This is intentional fallback wiring so
// capture always has a home, not an error.
func (l *Loader) attachUnclaimedMicrophones(primary *audio.Zone, zones map[int]*audio.Zone) {
	claimed := make(map[string]struct{})
	for _, z := range zones {
		for _, addr := range z.InputAddresses() {
			claimed[addr] = struct{}{}
		}
	}
	for _, d := range l.inventory.InputDevices() {
		if !audio.IsMicrophone(d) {
			continue
		}
		if _, ok := claimed[d.Address]; ok {
			continue
		}
		primary.AddInputDevice(d)
	}
}

// loadLegacy builds the single-zone legacy topology from the configured
// resource and the bridge's bus assignments.
func (l *Loader) loadLegacy(ctx context.Context) map[int]*audio.Zone {
	bus, ok := l.wrapper.(hal.BusQuerier)
	if !ok {
		return nil
	}

	data, err := os.ReadFile(l.opts.LegacyResource)
	if err != nil {
		l.diag.Record("legacy volume groups resource: %v", err)
		return nil
	}
	groups, err := ParseLegacyVolumeGroups(data)
	if err != nil {
		l.diag.Record("%v", err)
		return nil
	}

	zones, err := buildLegacyZones(ctx, bus, groups,
		l.inventory.OutputDevices(), l.inventory.InputDevices())
	if err != nil {
		l.diag.Record("legacy topology rejected: %v", err)
		return nil
	}
	return zones
}

// seedVolumes applies persisted gain state to every converted group.
// Groups without a stored row keep their zero defaults.
func (l *Loader) seedVolumes(zones map[int]*audio.Zone) {
	if l.opts.Settings == nil {
		return
	}
	for _, z := range zones {
		for _, zc := range z.Configs {
			for _, g := range zc.VolumeGroups {
				if gain, muted, ok := l.opts.Settings.GroupVolume(z.ID, zc.ID, g.ID); ok {
					g.InitialGainIndex = gain
					g.Muted = muted
				}
			}
		}
	}
}

// publish swaps the loader's published state under the lock and returns
// the load summary.
func (l *Loader) publish(zones map[int]*audio.Zone, devCfg hal.DeviceConfiguration,
	mirrors []audio.DeviceInfo, mode RoutingMode, generation string) LoadResult {

	occupant := make(map[int]int)
	var carContext *audio.Context
	configs, groups := 0, 0
	devices := make(map[string]struct{})
	for _, z := range zones {
		if z.HasOccupantBinding() {
			occupant[z.ID] = z.OccupantZoneID
		}
		if z.IsPrimary() {
			carContext = z.Context
		}
		for _, zc := range z.Configs {
			configs++
			groups += len(zc.VolumeGroups)
			for _, addr := range zc.Addresses() {
				devices[addr] = struct{}{}
			}
		}
	}

	l.mu.Lock()
	l.zones = zones
	l.carContext = carContext
	l.devCfg = devCfg
	l.occupant = occupant
	l.mirrors = mirrors
	l.mode = mode
	l.generation = generation
	l.mu.Unlock()

	return LoadResult{
		Generation: generation,
		Mode:       mode,
		Succeeded:  len(zones) > 0,
		Zones:      len(zones),
		Configs:    configs,
		Groups:     groups,
		Devices:    len(devices),
	}
}

// Zones returns the published topology keyed by zone id. The map is a
// copy; the zones themselves are shared and immutable.
func (l *Loader) Zones() map[int]*audio.Zone {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[int]*audio.Zone, len(l.zones))
	for id, z := range l.zones {
		out[id] = z
	}
	return out
}

// Zone looks one published zone up by id.
func (l *Loader) Zone(id int) (*audio.Zone, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	z, ok := l.zones[id]
	return z, ok
}

// Context returns the primary zone's audio context, nil when no topology
// is published.
func (l *Loader) Context() *audio.Context {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.carContext
}

// OccupantZoneMapping returns the zone-id to occupant-zone-id map built
// from zones declaring an occupant binding.
func (l *Loader) OccupantZoneMapping() map[int]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[int]int, len(l.occupant))
	for k, v := range l.occupant {
		out[k] = v
	}
	return out
}

// MirrorDevices returns the resolved zone mirroring devices.
func (l *Loader) MirrorDevices() []audio.DeviceInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]audio.DeviceInfo, len(l.mirrors))
	copy(out, l.mirrors)
	return out
}

// DeviceConfiguration returns the device configuration governing the
// published topology.
func (l *Loader) DeviceConfiguration() hal.DeviceConfiguration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.devCfg
}

// Mode returns the routing mode of the last load.
func (l *Loader) Mode() RoutingMode {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.mode
}

// Generation returns the id of the last load attempt.
func (l *Loader) Generation() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.generation
}

// UseCoreAudioRouting reports whether context routing goes through core
// audio engine strategies.
func (l *Loader) UseCoreAudioRouting() bool {
	return l.DeviceConfiguration().UseCoreAudioRouting
}

// UseCoreAudioVolume reports whether volume is managed by the core audio
// engine.
func (l *Loader) UseCoreAudioVolume() bool {
	return l.DeviceConfiguration().UseCoreAudioVolume
}

// UseVolumeGroupMuting reports whether group muting is delegated to the
// HAL.
func (l *Loader) UseVolumeGroupMuting() bool {
	return l.DeviceConfiguration().UseCarVolumeGroupMuting
}

// UseHalDuckingSignalOrDefault returns the HAL's ducking signal flag when
// the bridge can describe its configuration, and the caller's default
// otherwise.
func (l *Loader) UseHalDuckingSignalOrDefault(def bool) bool {
	if !l.wrapper.SupportsFeature(hal.FeatureAudioConfiguration) {
		return def
	}
	return l.DeviceConfiguration().UseHalDuckingSignals
}
