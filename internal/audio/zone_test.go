package audio

import (
	"errors"
	"testing"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext([]ContextInfo{
		{ID: 1, Name: "music", Attrs: []Attr{{Usage: UsageMedia}}},
		{ID: 2, Name: "nav", Attrs: []Attr{{Usage: UsageNavigationGuidance}}},
	})
	if err != nil {
		t.Fatalf("NewContext() error: %v", err)
	}
	return ctx
}

func TestVolumeGroupBind(t *testing.T) {
	g := NewVolumeGroup(0, 0, 0, "entertainment")
	dev := DeviceInfo{Address: "bus0_media", Type: DeviceTypeBus}

	if err := g.Bind(1, dev); err != nil {
		t.Fatalf("Bind(1) error: %v", err)
	}
	if err := g.Bind(2, dev); err != nil {
		t.Fatalf("Bind(2) error: %v", err)
	}
	if err := g.Bind(1, dev); !errors.Is(err, ErrContextBound) {
		t.Fatalf("rebinding context 1 = %v, want ErrContextBound", err)
	}

	if got := g.ContextIDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("ContextIDs() = %v, want [1 2]", got)
	}
	// Two contexts through one device: a single distinct address.
	if got := g.Addresses(); len(got) != 1 || got[0] != "bus0_media" {
		t.Errorf("Addresses() = %v, want [bus0_media]", got)
	}
	if d, ok := g.DeviceForContext(2); !ok || d.Address != "bus0_media" {
		t.Errorf("DeviceForContext(2) = %+v, %v", d, ok)
	}
}

func TestVolumeGroupDevicesOrder(t *testing.T) {
	g := NewVolumeGroup(0, 0, 0, "all")
	busA := DeviceInfo{Address: "bus0_media", Type: DeviceTypeBus}
	busB := DeviceInfo{Address: "bus1_nav", Type: DeviceTypeBus}

	if err := g.Bind(1, busA); err != nil {
		t.Fatal(err)
	}
	if err := g.Bind(2, busB); err != nil {
		t.Fatal(err)
	}
	if err := g.Bind(3, busA); err != nil {
		t.Fatal(err)
	}

	devices := g.Devices()
	if len(devices) != 2 || devices[0].Address != "bus0_media" || devices[1].Address != "bus1_nav" {
		t.Errorf("Devices() = %v, want first-bound order [bus0_media bus1_nav]", devices)
	}
}

func TestVolumeGroupHasDynamicDevices(t *testing.T) {
	g := NewVolumeGroup(0, 0, 0, "media")
	if err := g.Bind(1, DeviceInfo{Address: "bus0_media", Type: DeviceTypeBus}); err != nil {
		t.Fatal(err)
	}
	if g.HasDynamicDevices() {
		t.Error("HasDynamicDevices() = true for bus-only group")
	}
	if err := g.Bind(2, DeviceInfo{Address: "bt_headset", Type: DeviceTypeBLEHeadset}); err != nil {
		t.Fatal(err)
	}
	if !g.HasDynamicDevices() {
		t.Error("HasDynamicDevices() = false after binding a BLE endpoint")
	}
}

func TestDefaultActivationConfig(t *testing.T) {
	cfg := DefaultActivationConfig()
	want := ActivationOnBoot | ActivationOnSourceChanged | ActivationOnPlaybackChanged
	if cfg.Invocation != want {
		t.Errorf("Invocation = %b, want %b", cfg.Invocation, want)
	}
	if cfg.MinPercentage != 0 || cfg.MaxPercentage != 100 {
		t.Errorf("window = %d..%d, want 0..100", cfg.MinPercentage, cfg.MaxPercentage)
	}

	if IsValidActivationPercentage(-1) || IsValidActivationPercentage(101) {
		t.Error("IsValidActivationPercentage accepted out-of-range value")
	}
	if !IsValidActivationPercentage(0) || !IsValidActivationPercentage(100) {
		t.Error("IsValidActivationPercentage rejected boundary value")
	}
}

func TestZoneValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func(t *testing.T) *Zone
		wantErr error
	}{
		{
			name: "valid single default config",
			build: func(t *testing.T) *Zone {
				z := NewZone(PrimaryZoneID, "primary", testContext(t))
				z.Configs = []*ZoneConfig{{ZoneID: 0, ID: 0, Name: "default", IsDefault: true}}
				return z
			},
		},
		{
			name: "no context",
			build: func(t *testing.T) *Zone {
				z := NewZone(1, "rear", nil)
				z.Configs = []*ZoneConfig{{ZoneID: 1, ID: 0, IsDefault: true}}
				return z
			},
			wantErr: ErrEmptyContext,
		},
		{
			name: "no configs",
			build: func(t *testing.T) *Zone {
				return NewZone(1, "rear", testContext(t))
			},
			wantErr: ErrNoDefaultConfig,
		},
		{
			name: "no default config",
			build: func(t *testing.T) *Zone {
				z := NewZone(1, "rear", testContext(t))
				z.Configs = []*ZoneConfig{{ZoneID: 1, ID: 0, Name: "a"}}
				return z
			},
			wantErr: ErrNoDefaultConfig,
		},
		{
			name: "multiple defaults",
			build: func(t *testing.T) *Zone {
				z := NewZone(1, "rear", testContext(t))
				z.Configs = []*ZoneConfig{
					{ZoneID: 1, ID: 0, Name: "a", IsDefault: true},
					{ZoneID: 1, ID: 1, Name: "b", IsDefault: true},
				}
				return z
			},
			wantErr: ErrMultipleDefaultConfigs,
		},
		{
			name: "duplicate config id",
			build: func(t *testing.T) *Zone {
				z := NewZone(1, "rear", testContext(t))
				z.Configs = []*ZoneConfig{
					{ZoneID: 1, ID: 0, Name: "a", IsDefault: true},
					{ZoneID: 1, ID: 0, Name: "b"},
				}
				return z
			},
			wantErr: ErrDuplicateConfigID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build(t).Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestZoneInputDevices(t *testing.T) {
	z := NewZone(PrimaryZoneID, "primary", testContext(t))
	mic := DeviceInfo{Address: "mic_cabin", Type: DeviceTypeBuiltinMic, IsInput: true}

	z.AddInputDevice(mic)
	z.AddInputDevice(mic) // duplicate address ignored
	if len(z.InputDevices) != 1 {
		t.Fatalf("InputDevices = %d entries, want 1", len(z.InputDevices))
	}
	if !z.HasInputDevice("mic_cabin") {
		t.Error("HasInputDevice(mic_cabin) = false")
	}
	if got := z.InputAddresses(); len(got) != 1 || got[0] != "mic_cabin" {
		t.Errorf("InputAddresses() = %v", got)
	}
}

func TestZoneDefaultConfig(t *testing.T) {
	z := NewZone(PrimaryZoneID, "primary", testContext(t))
	z.Configs = []*ZoneConfig{
		{ZoneID: 0, ID: 0, Name: "base"},
		{ZoneID: 0, ID: 1, Name: "bt", IsDefault: true},
	}

	if dc := z.DefaultConfig(); dc == nil || dc.ID != 1 {
		t.Errorf("DefaultConfig() = %+v, want config id 1", dc)
	}
	if _, ok := z.ConfigByID(0); !ok {
		t.Error("ConfigByID(0) not found")
	}
	if _, ok := z.ConfigByID(9); ok {
		t.Error("ConfigByID(9) unexpectedly found")
	}
	if !z.IsPrimary() {
		t.Error("IsPrimary() = false for zone 0")
	}
	if z.HasOccupantBinding() {
		t.Error("HasOccupantBinding() = true for new zone")
	}
}
