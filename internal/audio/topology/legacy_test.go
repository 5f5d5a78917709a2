package topology

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
)

const legacyResource = `
<volumeGroups>
  <group>
    <context name="music"/>
    <context name="system_sound"/>
  </group>
  <group>
    <context name="navigation"/>
    <context name="voice_command"/>
    <context name="call_ring"/>
    <context name="call"/>
    <context name="alarm"/>
    <context name="notification"/>
  </group>
</volumeGroups>
`

func TestParseLegacyVolumeGroups(t *testing.T) {
	groups, err := ParseLegacyVolumeGroups([]byte(legacyResource))
	if err != nil {
		t.Fatalf("ParseLegacyVolumeGroups() error = %v", err)
	}
	want := [][]string{
		{"music", "system_sound"},
		{"navigation", "voice_command", "call_ring", "call", "alarm", "notification"},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("groups = %v, want %v", groups, want)
	}
}

func TestParseLegacyVolumeGroupsErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", "volumeGroups: []"},
		{"no groups", "<volumeGroups/>"},
		{"group without contexts", "<volumeGroups><group/></volumeGroups>"},
		{"context without name", "<volumeGroups><group><context/></group></volumeGroups>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLegacyVolumeGroups([]byte(tt.doc)); !errors.Is(err, ErrLegacyResource) {
				t.Errorf("error = %v, want ErrLegacyResource", err)
			}
		})
	}
}

// legacyBuses assigns every non-car-system context a bus that exists in
// the test inventory: the media group's contexts on bus 0, everything
// else on bus 1.
func legacyBuses() map[int]int {
	buses := make(map[int]int)
	for _, id := range audio.NonCarSystemContextIDs() {
		buses[id] = 1
	}
	buses[audio.ContextMusic] = 0
	buses[audio.ContextSystemSound] = 0
	return buses
}

func writeLegacyResource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "volume_groups.xml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadZonesLegacyFallback(t *testing.T) {
	w := &fakeBusWrapper{
		fakeWrapper: fakeWrapper{devCfgErr: hal.ErrUnsupported},
		buses:       legacyBuses(),
	}
	l, _ := newTestLoader(t, w, LoaderOptions{
		LegacyResource: writeLegacyResource(t, legacyResource),
	})

	zones := l.LoadZones(context.Background())
	if len(zones) != 1 {
		t.Fatalf("LoadZones() len = %d, want 1", len(zones))
	}
	if l.Mode() != ModeLegacyFallback {
		t.Errorf("Mode() = %v", l.Mode())
	}

	primary := zones[audio.PrimaryZoneID]
	if primary == nil {
		t.Fatal("legacy topology must be the primary zone")
	}
	if primary.Name != "Primary zone" {
		t.Errorf("zone name = %q", primary.Name)
	}
	def := primary.DefaultConfig()
	if def == nil || def.ID != 0 {
		t.Fatalf("default config = %+v", def)
	}
	if len(def.VolumeGroups) != 2 {
		t.Fatalf("groups = %d, want 2", len(def.VolumeGroups))
	}

	// File order with sequential ids, activation restored at boot only.
	first := def.VolumeGroups[0]
	if first.ID != 0 {
		t.Errorf("first group id = %d", first.ID)
	}
	if first.Activation.Invocation != audio.ActivationOnBoot {
		t.Errorf("activation = %+v", first.Activation)
	}
	dev, ok := first.DeviceForContext(audio.ContextMusic)
	if !ok || dev.Address != "bus0_media" {
		t.Errorf("music device = %+v ok=%v", dev, ok)
	}

	second := def.VolumeGroups[1]
	dev, ok = second.DeviceForContext(audio.ContextNavigation)
	if !ok || dev.Address != "bus1_navigation" {
		t.Errorf("navigation device = %+v ok=%v", dev, ok)
	}

	// Microphones are appended to the single legacy zone.
	if !primary.HasInputDevice("Built-In Mic") || !primary.HasInputDevice("Rear Mic") {
		t.Errorf("legacy inputs = %v", primary.InputAddresses())
	}
	if primary.HasInputDevice("fm_tuner") {
		t.Error("non-microphone input attached")
	}
}

func TestLegacyFallbackUnassignedBus(t *testing.T) {
	// The bridge answering "no bus" for any routable context fails the
	// whole legacy build.
	buses := legacyBuses()
	delete(buses, audio.ContextAlarm)
	w := &fakeBusWrapper{
		fakeWrapper: fakeWrapper{devCfgErr: hal.ErrUnsupported},
		buses:       buses,
	}
	l, diag := newTestLoader(t, w, LoaderOptions{
		LegacyResource: writeLegacyResource(t, legacyResource),
	})

	if zones := l.LoadZones(context.Background()); len(zones) != 0 {
		t.Fatalf("LoadZones() len = %d, want 0", len(zones))
	}
	if !diagContains(diag, "no output bus") {
		t.Errorf("diagnostics missing bus entry: %v", diag.Entries())
	}
}

func TestLegacyFallbackUnknownContextName(t *testing.T) {
	resource := `<volumeGroups><group><context name="podcast"/></group></volumeGroups>`
	w := &fakeBusWrapper{
		fakeWrapper: fakeWrapper{devCfgErr: hal.ErrUnsupported},
		buses:       legacyBuses(),
	}
	l, diag := newTestLoader(t, w, LoaderOptions{
		LegacyResource: writeLegacyResource(t, resource),
	})

	if zones := l.LoadZones(context.Background()); len(zones) != 0 {
		t.Fatalf("LoadZones() len = %d, want 0", len(zones))
	}
	if !diagContains(diag, "podcast") {
		t.Errorf("diagnostics missing context entry: %v", diag.Entries())
	}
}

func TestLegacyNotAvailableWithoutBusQuery(t *testing.T) {
	// A plain wrapper without the bus query cannot serve the legacy
	// path even when a resource is configured.
	w := &fakeWrapper{devCfgErr: hal.ErrUnsupported}
	l, _ := newTestLoader(t, w, LoaderOptions{
		LegacyResource: writeLegacyResource(t, legacyResource),
	})

	if zones := l.LoadZones(context.Background()); len(zones) != 0 {
		t.Fatalf("LoadZones() len = %d, want 0", len(zones))
	}
	if l.Mode() != ModeNoRouting {
		t.Errorf("Mode() = %v", l.Mode())
	}
}

func TestBusDeviceMapDuplicateBus(t *testing.T) {
	outputs := []audio.DeviceInfo{
		{Address: "bus0_media", Type: audio.DeviceTypeBus},
		{Address: "BUS0_alt", Type: audio.DeviceTypeBus},
	}
	if _, err := busDeviceMap(outputs); !errors.Is(err, ErrDuplicateBus) {
		t.Errorf("busDeviceMap() error = %v, want ErrDuplicateBus", err)
	}
}

func TestBusDeviceMapSkipsNonBusAddresses(t *testing.T) {
	outputs := []audio.DeviceInfo{
		{Address: "bus2_rear", Type: audio.DeviceTypeBus},
		{Address: "speaker_front", Type: audio.DeviceTypeBuiltinSpeaker},
	}
	m, err := busDeviceMap(outputs)
	if err != nil {
		t.Fatalf("busDeviceMap() error = %v", err)
	}
	if len(m) != 1 {
		t.Fatalf("map len = %d, want 1", len(m))
	}
	if m[2].Address != "bus2_rear" {
		t.Errorf("bus 2 = %+v", m[2])
	}
}
