package topology

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
)

func testOutputs() []audio.DeviceInfo {
	return []audio.DeviceInfo{
		{Address: "bus0_media", Type: audio.DeviceTypeBus},
		{Address: "bus1_navigation", Type: audio.DeviceTypeBus},
		{Address: "bus100_rear", Type: audio.DeviceTypeBus},
	}
}

func testInputs() []audio.DeviceInfo {
	return []audio.DeviceInfo{
		{Address: "Built-In Mic", Type: audio.DeviceTypeBuiltinMic, IsInput: true},
		{Address: "fm_tuner", Type: audio.DeviceTypeBus, IsInput: true},
	}
}

func busPort(address string) hal.PortDescriptor {
	return hal.PortDescriptor{
		Type:    hal.PortTypeDescriptor{Type: hal.PortTypeOutBus, Connection: hal.ConnectionBus},
		Address: address,
	}
}

func contextDescriptors() []hal.ContextInfoDescriptor {
	return []hal.ContextInfoDescriptor{
		{ID: hal.UnassignedContextID, Name: "music",
			Attrs: []hal.AttributesDescriptor{{Usage: string(audio.UsageMedia)}}},
		{ID: hal.UnassignedContextID, Name: "nav",
			Attrs: []hal.AttributesDescriptor{{Usage: string(audio.UsageNavigationGuidance)}}},
	}
}

// validZoneDescriptor routes music through bus0 and nav through bus1 in
// one group, in one default config.
func validZoneDescriptor(id int) hal.ZoneDescriptor {
	return hal.ZoneDescriptor{
		ID:       id,
		Name:     "test zone",
		Contexts: contextDescriptors(),
		Configs: []hal.ZoneConfigDescriptor{{
			Name:      "default",
			IsDefault: true,
			VolumeGroups: []hal.VolumeGroupDescriptor{{
				Name: "media",
				Routes: []hal.RouteDescriptor{
					{Device: busPort("bus0_media"), Contexts: []string{"music"}},
					{Device: busPort("bus1_navigation"), Contexts: []string{"nav"}},
				},
			}},
		}},
		InputPorts: []hal.PortDescriptor{{
			Type:    hal.PortTypeDescriptor{Type: hal.PortTypeInMic},
			Address: "Built-In Mic",
		}},
	}
}

func newTestConverter(opts ConverterOptions) *Converter {
	return NewConverter(testOutputs(), testInputs(), opts)
}

func TestConvertZoneValid(t *testing.T) {
	c := newTestConverter(ConverterOptions{})
	zone, err := c.ConvertZone(validZoneDescriptor(0), hal.DeviceConfiguration{
		RoutingConfig: hal.DynamicAudioRouting,
	})
	if err != nil {
		t.Fatalf("ConvertZone() error = %v", err)
	}

	if zone.ID != 0 || zone.Name != "test zone" {
		t.Errorf("zone identity = %d %q", zone.ID, zone.Name)
	}
	def := zone.DefaultConfig()
	if def == nil {
		t.Fatal("no default config")
	}
	if len(def.VolumeGroups) != 1 {
		t.Fatalf("groups = %d, want 1", len(def.VolumeGroups))
	}
	if !zone.HasInputDevice("Built-In Mic") {
		t.Error("input device not attached")
	}
	if zone.HasOccupantBinding() {
		t.Error("unexpected occupant binding")
	}
}

func TestContextIDAssignmentSequential(t *testing.T) {
	// Unassigned ids are allocated sequentially from InvalidContextID+1
	// in input order; the sequence only advances when consumed.
	c := newTestConverter(ConverterOptions{})
	zone, err := c.ConvertZone(validZoneDescriptor(0), hal.DeviceConfiguration{})
	if err != nil {
		t.Fatalf("ConvertZone() error = %v", err)
	}

	ids := zone.Context.IDs()
	want := []int{audio.InvalidContextID + 1, audio.InvalidContextID + 2}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("context ids = %v, want %v", ids, want)
	}

	music, _ := zone.Context.InfoByName("music")
	nav, _ := zone.Context.InfoByName("nav")
	if music.ID != want[0] || nav.ID != want[1] {
		t.Errorf("ids out of input order: music=%d nav=%d", music.ID, nav.ID)
	}
}

func TestContextExplicitIDKept(t *testing.T) {
	c := newTestConverter(ConverterOptions{})
	desc := validZoneDescriptor(0)
	desc.Contexts[0].ID = 7
	desc.Contexts[1].ID = hal.UnassignedContextID

	zone, err := c.ConvertZone(desc, hal.DeviceConfiguration{})
	if err != nil {
		t.Fatalf("ConvertZone() error = %v", err)
	}
	music, _ := zone.Context.InfoByName("music")
	nav, _ := zone.Context.InfoByName("nav")
	if music.ID != 7 {
		t.Errorf("explicit id not kept: %d", music.ID)
	}
	if nav.ID != audio.InvalidContextID+1 {
		t.Errorf("allocated id = %d, want %d", nav.ID, audio.InvalidContextID+1)
	}
}

func TestContextUnnamedGetsFallbackName(t *testing.T) {
	c := newTestConverter(ConverterOptions{})
	ctx, err := c.convertContext([]hal.ContextInfoDescriptor{
		{ID: 4, Attrs: []hal.AttributesDescriptor{{Usage: string(audio.UsageMedia)}}},
	}, false)
	if err != nil {
		t.Fatalf("convertContext() error = %v", err)
	}
	if _, ok := ctx.InfoByName("Context 4"); !ok {
		t.Errorf("fallback name missing, have %v", ctx.Infos())
	}
}

func TestContextConversionFailures(t *testing.T) {
	c := newTestConverter(ConverterOptions{})

	tests := []struct {
		name    string
		descs   []hal.ContextInfoDescriptor
		wantErr error
	}{
		{
			name:    "empty list",
			descs:   nil,
			wantErr: audio.ErrEmptyContext,
		},
		{
			name: "entry without attributes",
			descs: []hal.ContextInfoDescriptor{
				{ID: 1, Name: "music"},
			},
			wantErr: audio.ErrNoAttributes,
		},
		{
			name: "duplicate name",
			descs: []hal.ContextInfoDescriptor{
				{ID: 1, Name: "Music", Attrs: []hal.AttributesDescriptor{{Usage: "media"}}},
				{ID: 2, Name: " music ", Attrs: []hal.AttributesDescriptor{{Usage: "game"}}},
			},
			wantErr: audio.ErrDuplicateContextName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.convertContext(tt.descs, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("convertContext() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCoreRoutingStrategyResolution(t *testing.T) {
	strategies := StrategyMap{"music": 31, "nav": 32}
	c := newTestConverter(ConverterOptions{Strategies: strategies})

	coreCfg := hal.DeviceConfiguration{
		RoutingConfig:       hal.ConfigurableEngineRouting,
		UseCoreAudioRouting: true,
	}
	zone, err := c.ConvertZone(validZoneDescriptor(0), coreCfg)
	if err != nil {
		t.Fatalf("ConvertZone() error = %v", err)
	}
	music, _ := zone.Context.InfoByName("music")
	if music.ID != 31 {
		t.Errorf("strategy id = %d, want 31", music.ID)
	}

	// An unresolvable context is a hard failure for the whole zone.
	c = newTestConverter(ConverterOptions{Strategies: StrategyMap{"music": 31}})
	if _, err := c.ConvertZone(validZoneDescriptor(0), coreCfg); !errors.Is(err, ErrUnresolvedStrategy) {
		t.Errorf("ConvertZone() error = %v, want ErrUnresolvedStrategy", err)
	}
}

func TestRouteUnknownContextFailsZone(t *testing.T) {
	c := newTestConverter(ConverterOptions{})
	desc := validZoneDescriptor(0)
	desc.Configs[0].VolumeGroups[0].Routes[0].Contexts = []string{"podcast"}

	zone, err := c.ConvertZone(desc, hal.DeviceConfiguration{})
	if !errors.Is(err, ErrUnknownContext) {
		t.Errorf("ConvertZone() error = %v, want ErrUnknownContext", err)
	}
	if zone != nil {
		t.Error("partial zone returned on failure")
	}
}

func TestRouteConversionFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*hal.ZoneDescriptor)
		wantErr error
	}{
		{
			name: "no configs",
			mutate: func(d *hal.ZoneDescriptor) {
				d.Configs = nil
			},
			wantErr: ErrNoConfigs,
		},
		{
			name: "config without groups",
			mutate: func(d *hal.ZoneDescriptor) {
				d.Configs[0].VolumeGroups = nil
			},
			wantErr: ErrNoVolumeGroups,
		},
		{
			name: "group without routes",
			mutate: func(d *hal.ZoneDescriptor) {
				d.Configs[0].VolumeGroups[0].Routes = nil
			},
			wantErr: ErrNoRoutes,
		},
		{
			name: "route without contexts",
			mutate: func(d *hal.ZoneDescriptor) {
				d.Configs[0].VolumeGroups[0].Routes[0].Contexts = nil
			},
			wantErr: ErrEmptyRouteContexts,
		},
		{
			name: "unresolvable bus address",
			mutate: func(d *hal.ZoneDescriptor) {
				d.Configs[0].VolumeGroups[0].Routes[0].Device = busPort("bus9_missing")
			},
			wantErr: ErrUnresolvedDevice,
		},
		{
			name: "dynamic port with flag off",
			mutate: func(d *hal.ZoneDescriptor) {
				d.Configs[0].VolumeGroups[0].Routes[0].Device = hal.PortDescriptor{
					Type:    hal.PortTypeDescriptor{Type: hal.PortTypeOutDevice, Connection: hal.ConnectionBTA2DP},
					Address: "bt_speaker",
				}
			},
			wantErr: ErrDynamicDevicesDisabled,
		},
		{
			name: "unresolvable input device",
			mutate: func(d *hal.ZoneDescriptor) {
				d.InputPorts[0].Address = "missing_mic"
			},
			wantErr: ErrUnresolvedDevice,
		},
		{
			name: "no default config",
			mutate: func(d *hal.ZoneDescriptor) {
				d.Configs[0].IsDefault = false
			},
			wantErr: audio.ErrNoDefaultConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConverter(ConverterOptions{})
			desc := validZoneDescriptor(0)
			tt.mutate(&desc)

			zone, err := c.ConvertZone(desc, hal.DeviceConfiguration{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ConvertZone() error = %v, want %v", err, tt.wantErr)
			}
			if zone != nil {
				t.Error("partial zone returned on failure")
			}
		})
	}
}

func TestDuplicateDeviceBindingAcrossGroups(t *testing.T) {
	// Two volume groups in the same config binding one address is a
	// vendor configuration bug, never resolved by last-one-wins.
	c := newTestConverter(ConverterOptions{})
	desc := validZoneDescriptor(0)
	desc.Configs[0].VolumeGroups = []hal.VolumeGroupDescriptor{
		{Name: "media", Routes: []hal.RouteDescriptor{
			{Device: busPort("bus0_media"), Contexts: []string{"music"}},
		}},
		{Name: "nav", Routes: []hal.RouteDescriptor{
			{Device: busPort("bus0_media"), Contexts: []string{"nav"}},
		}},
	}

	_, err := c.ConvertZone(desc, hal.DeviceConfiguration{})
	if !errors.Is(err, ErrDuplicateDeviceBinding) {
		t.Errorf("ConvertZone() error = %v, want ErrDuplicateDeviceBinding", err)
	}
}

func TestDynamicDeviceSynthesis(t *testing.T) {
	c := newTestConverter(ConverterOptions{DynamicDevices: true})
	desc := validZoneDescriptor(0)
	desc.Configs[0].VolumeGroups[0].Routes = []hal.RouteDescriptor{
		{
			Device: hal.PortDescriptor{
				Type:    hal.PortTypeDescriptor{Type: hal.PortTypeOutDevice, Connection: hal.ConnectionBTA2DP},
				Address: "bt_speaker",
			},
			Contexts: []string{"music"},
		},
		{Device: busPort("bus1_navigation"), Contexts: []string{"nav"}},
	}

	zone, err := c.ConvertZone(desc, hal.DeviceConfiguration{})
	if err != nil {
		t.Fatalf("ConvertZone() error = %v", err)
	}
	group := zone.DefaultConfig().VolumeGroups[0]
	music, _ := zone.Context.InfoByName("music")
	dev, ok := group.DeviceForContext(music.ID)
	if !ok {
		t.Fatal("music not bound")
	}
	if dev.Type != audio.DeviceTypeBluetoothA2DP || dev.Address != "bt_speaker" {
		t.Errorf("synthesised device = %+v", dev)
	}
	if !group.HasDynamicDevices() {
		t.Error("HasDynamicDevices() = false")
	}
}

func TestRouteBindingRoundTrip(t *testing.T) {
	// Re-deriving the group-to-context bindings from the converted zone
	// must reproduce the descriptor's route table exactly.
	c := newTestConverter(ConverterOptions{})
	desc := validZoneDescriptor(0)
	zone, err := c.ConvertZone(desc, hal.DeviceConfiguration{})
	if err != nil {
		t.Fatalf("ConvertZone() error = %v", err)
	}

	group := zone.DefaultConfig().VolumeGroups[0]
	derived := make(map[string][]string)
	for _, id := range group.ContextIDs() {
		info, ok := zone.Context.InfoByID(id)
		if !ok {
			t.Fatalf("bound context %d missing from zone context", id)
		}
		dev, _ := group.DeviceForContext(id)
		derived[dev.Address] = append(derived[dev.Address], info.Name)
	}

	want := make(map[string][]string)
	for _, rd := range desc.Configs[0].VolumeGroups[0].Routes {
		want[rd.Device.Address] = append(want[rd.Device.Address], rd.Contexts...)
	}
	if !reflect.DeepEqual(derived, want) {
		t.Errorf("derived bindings = %v, want %v", derived, want)
	}
}

func TestConvertActivation(t *testing.T) {
	def := audio.DefaultActivationConfig()
	tests := []struct {
		name string
		desc *hal.ActivationDescriptor
		want audio.ActivationConfig
	}{
		{
			name: "nil descriptor",
			desc: nil,
			want: def,
		},
		{
			name: "on boot window",
			desc: &hal.ActivationDescriptor{Entries: []hal.ActivationEntryDescriptor{
				{InvocationType: hal.InvocationOnBoot, MinPercentage: 20, MaxPercentage: 80},
			}},
			want: audio.ActivationConfig{
				Invocation:    audio.ActivationOnBoot,
				MinPercentage: 20,
				MaxPercentage: 80,
			},
		},
		{
			name: "playback change implies the full trigger set",
			desc: &hal.ActivationDescriptor{Entries: []hal.ActivationEntryDescriptor{
				{InvocationType: hal.InvocationOnPlaybackChanged, MinPercentage: 10, MaxPercentage: 90},
			}},
			want: audio.ActivationConfig{
				Invocation: audio.ActivationOnBoot | audio.ActivationOnSourceChanged |
					audio.ActivationOnPlaybackChanged,
				MinPercentage: 10,
				MaxPercentage: 90,
			},
		},
		{
			name: "min at or above max falls back",
			desc: &hal.ActivationDescriptor{Entries: []hal.ActivationEntryDescriptor{
				{InvocationType: hal.InvocationOnBoot, MinPercentage: 50, MaxPercentage: 50},
			}},
			want: def,
		},
		{
			name: "percentage out of range falls back",
			desc: &hal.ActivationDescriptor{Entries: []hal.ActivationEntryDescriptor{
				{InvocationType: hal.InvocationOnBoot, MinPercentage: -1, MaxPercentage: 110},
			}},
			want: def,
		},
		{
			name: "unknown invocation falls back",
			desc: &hal.ActivationDescriptor{Entries: []hal.ActivationEntryDescriptor{
				{InvocationType: 9, MinPercentage: 20, MaxPercentage: 80},
			}},
			want: def,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertActivation(tt.desc); got != tt.want {
				t.Errorf("convertActivation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFadeConversion(t *testing.T) {
	fadeDesc := &hal.ZoneFadeDescriptor{
		Default: &hal.FadeConfigurationDescriptor{
			Name:                  "relaxed",
			FadeState:             hal.FadeStateEnabledDefault,
			FadeInDurationMillis:  500,
			FadeOutDurationMillis: 1000,
			FadeableUsages:        []string{string(audio.UsageMedia)},
			FadeOutOverrides: []hal.FadeOverrideDescriptor{
				{Usage: string(audio.UsageAssistant), DurationMillis: 150},
			},
		},
		Transients: []hal.TransientFadeDescriptor{{
			Usages: []string{string(audio.UsageEmergency)},
			Config: &hal.FadeConfigurationDescriptor{FadeState: hal.FadeStateDisabled},
		}},
	}

	c := newTestConverter(ConverterOptions{FadeManagerConfiguration: true})
	desc := validZoneDescriptor(0)
	desc.Configs[0].Fade = fadeDesc

	zone, err := c.ConvertZone(desc, hal.DeviceConfiguration{})
	if err != nil {
		t.Fatalf("ConvertZone() error = %v", err)
	}
	zc := zone.DefaultConfig()
	if zc.DefaultFade == nil {
		t.Fatal("default fade missing")
	}
	if zc.DefaultFade.FadeInDuration != 500*time.Millisecond {
		t.Errorf("fade in = %v", zc.DefaultFade.FadeInDuration)
	}
	if len(zc.DefaultFade.FadeOutOverrides) != 1 ||
		zc.DefaultFade.FadeOutOverrides[0].Attr.Usage != audio.UsageAssistant {
		t.Errorf("overrides = %+v", zc.DefaultFade.FadeOutOverrides)
	}
	if len(zc.TransientFades) != 1 || zc.TransientFades[0].Config.State != audio.FadeStateDisabled {
		t.Errorf("transients = %+v", zc.TransientFades)
	}
}

func TestFadeConversionFailures(t *testing.T) {
	tests := []struct {
		name    string
		fade    *hal.ZoneFadeDescriptor
		wantErr error
	}{
		{
			name:    "fade data without default",
			fade:    &hal.ZoneFadeDescriptor{},
			wantErr: ErrMissingDefaultFade,
		},
		{
			name: "transient without usages",
			fade: &hal.ZoneFadeDescriptor{
				Default: &hal.FadeConfigurationDescriptor{FadeState: hal.FadeStateEnabledDefault},
				Transients: []hal.TransientFadeDescriptor{{
					Config: &hal.FadeConfigurationDescriptor{FadeState: hal.FadeStateDisabled},
				}},
			},
			wantErr: ErrEmptyTransientUsages,
		},
		{
			name: "unknown fade state",
			fade: &hal.ZoneFadeDescriptor{
				Default: &hal.FadeConfigurationDescriptor{FadeState: 42},
			},
			wantErr: ErrInvalidFadeState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConverter(ConverterOptions{FadeManagerConfiguration: true})
			desc := validZoneDescriptor(0)
			desc.Configs[0].Fade = tt.fade

			if _, err := c.ConvertZone(desc, hal.DeviceConfiguration{}); !errors.Is(err, tt.wantErr) {
				t.Errorf("ConvertZone() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFadeIgnoredWithoutFlag(t *testing.T) {
	// Even malformed fade data is ignored when the deployment flag is
	// off; the topology is fade-free then.
	c := newTestConverter(ConverterOptions{})
	desc := validZoneDescriptor(0)
	desc.Configs[0].Fade = &hal.ZoneFadeDescriptor{}

	zone, err := c.ConvertZone(desc, hal.DeviceConfiguration{})
	if err != nil {
		t.Fatalf("ConvertZone() error = %v", err)
	}
	if zone.DefaultConfig().DefaultFade != nil {
		t.Error("fade converted with flag off")
	}
}

func TestOccupantBinding(t *testing.T) {
	c := newTestConverter(ConverterOptions{})
	occupant := 3
	desc := validZoneDescriptor(2)
	desc.OccupantZoneID = &occupant

	zone, err := c.ConvertZone(desc, hal.DeviceConfiguration{})
	if err != nil {
		t.Fatalf("ConvertZone() error = %v", err)
	}
	if !zone.HasOccupantBinding() || zone.OccupantZoneID != 3 {
		t.Errorf("occupant binding = %d", zone.OccupantZoneID)
	}
}

func TestDeviceTypeForPort(t *testing.T) {
	tests := []struct {
		port hal.PortTypeDescriptor
		want audio.DeviceType
	}{
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutSpeaker}, audio.DeviceTypeBuiltinSpeaker},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutHeadphone, Connection: hal.ConnectionAnalog}, audio.DeviceTypeWiredHeadphones},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutHeadset, Connection: hal.ConnectionAnalog}, audio.DeviceTypeWiredHeadset},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutHeadset, Connection: hal.ConnectionUSB}, audio.DeviceTypeUSBHeadset},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutHeadset, Connection: hal.ConnectionBTLE}, audio.DeviceTypeBLEHeadset},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutAccessory, Connection: hal.ConnectionUSB}, audio.DeviceTypeUSBAccessory},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutLineAux}, audio.DeviceTypeAuxLine},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutBroadcast, Connection: hal.ConnectionBTLE}, audio.DeviceTypeBLEBroadcast},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutDevice, Connection: hal.ConnectionBTA2DP}, audio.DeviceTypeBluetoothA2DP},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutDevice, Connection: hal.ConnectionHDMI}, audio.DeviceTypeHDMI},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutDevice, Connection: hal.ConnectionUSB}, audio.DeviceTypeUSBDevice},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutDevice, Connection: hal.ConnectionBTLE}, audio.DeviceTypeBLESpeaker},
		{hal.PortTypeDescriptor{Type: hal.PortTypeOutDevice, Connection: "carrier_pigeon"}, audio.DeviceTypeBus},
		{hal.PortTypeDescriptor{Type: hal.PortTypeInMic}, audio.DeviceTypeBuiltinMic},
	}
	for _, tt := range tests {
		if got := deviceTypeForPort(tt.port); got != tt.want {
			t.Errorf("deviceTypeForPort(%+v) = %v, want %v", tt.port, got, tt.want)
		}
	}
}
