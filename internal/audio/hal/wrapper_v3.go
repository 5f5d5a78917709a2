package hal

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
)

// V3Wrapper serves revision 3 bridges, the current generation. Focus,
// ducking and group muting are always available; the remaining features
// depend on the negotiated minor version, and topology description is
// additionally gated by the audio configuration deployment flag.
type V3Wrapper struct {
	t                      transport
	flagAudioConfiguration bool
	logger                 Logger
	diag                   *diagnostics.Log
}

var _ Wrapper = (*V3Wrapper)(nil)

// SupportsFeature decides support from the negotiated minor version.
// FeatureAudioConfiguration also requires the deployment flag, so a
// fleet can hold back HAL-described topologies independently of the
// bridge version it ships.
func (w *V3Wrapper) SupportsFeature(feature Feature) bool {
	switch feature {
	case FeatureAudioFocus, FeatureAudioDucking, FeatureAudioGroupMuting:
		return true
	case FeatureAudioFocusWithMetadata, FeatureAudioGainCallback:
		return w.t.version() > 1
	case FeatureAudioModuleCallback:
		return w.t.version() > 2
	case FeatureAudioConfiguration:
		return w.flagAudioConfiguration && w.t.version() > 4
	default:
		return false
	}
}

// AudioDeviceConfiguration queries the HAL's routing mode and policy
// flags. Without the configuration feature, and on any transport
// failure, the default configuration is the answer; the service always
// has a device configuration to key on.
func (w *V3Wrapper) AudioDeviceConfiguration(ctx context.Context) (DeviceConfiguration, error) {
	if !w.SupportsFeature(FeatureAudioConfiguration) {
		return DefaultDeviceConfiguration(), nil
	}
	var config DeviceConfiguration
	if err := w.t.invoke(ctx, opAudioDeviceConfiguration, nil, &config); err != nil {
		w.logger.Warn("audio device configuration query failed, using default", "error", err)
		w.diag.Record("audio device configuration query failed, using default: %v", err)
		return DefaultDeviceConfiguration(), nil
	}
	return config, nil
}

// AudioZones queries the HAL-described zone topology. A transport
// failure yields an empty result with a diagnostic entry; the loader
// then falls back rather than booting with half a topology.
func (w *V3Wrapper) AudioZones(ctx context.Context) ([]ZoneDescriptor, error) {
	if !w.SupportsFeature(FeatureAudioConfiguration) {
		return nil, fmt.Errorf("audio zones on version %d: %w", w.t.version(), ErrUnsupported)
	}
	var zones []ZoneDescriptor
	if err := w.t.invoke(ctx, opAudioZones, nil, &zones); err != nil {
		w.logger.Warn("audio zones query failed", "error", err)
		w.diag.Record("audio zones query failed: %v", err)
		return nil, nil
	}
	return zones, nil
}

// OutputMirroringDevices queries the ports usable for zone mirroring,
// under the same failure contract as AudioZones.
func (w *V3Wrapper) OutputMirroringDevices(ctx context.Context) ([]PortDescriptor, error) {
	if !w.SupportsFeature(FeatureAudioConfiguration) {
		return nil, fmt.Errorf("output mirroring devices on version %d: %w", w.t.version(), ErrUnsupported)
	}
	var ports []PortDescriptor
	if err := w.t.invoke(ctx, opOutputMirroringDevices, nil, &ports); err != nil {
		w.logger.Warn("output mirroring devices query failed", "error", err)
		w.diag.Record("output mirroring devices query failed: %v", err)
		return nil, nil
	}
	return ports, nil
}

func (w *V3Wrapper) RegisterFocusListener(ctx context.Context, listener FocusListener) error {
	if listener == nil {
		return fmt.Errorf("register focus listener: nil listener")
	}
	withMetadata := w.SupportsFeature(FeatureAudioFocusWithMetadata)
	w.t.setEventHandler(eventFocusRequest, focusEventHandler(listener, false, withMetadata, w.diag))
	w.t.setEventHandler(eventFocusAbandon, focusEventHandler(listener, true, withMetadata, w.diag))
	if err := w.t.invoke(ctx, opRegisterFocusListener, nil, nil); err != nil {
		w.t.clearEventHandler(eventFocusRequest)
		w.t.clearEventHandler(eventFocusAbandon)
		return fmt.Errorf("register focus listener: %w", err)
	}
	return nil
}

func (w *V3Wrapper) UnregisterFocusListener(ctx context.Context) error {
	w.t.clearEventHandler(eventFocusRequest)
	w.t.clearEventHandler(eventFocusAbandon)
	if err := w.t.invoke(ctx, opUnregisterFocusListener, nil, nil); err != nil {
		w.diag.Record("unregister focus listener failed: %v", err)
	}
	return nil
}

// RequestedFocusChange reports a focus decision to the HAL, carrying the
// full attribute when metadata focus was negotiated and the bare usage
// otherwise.
func (w *V3Wrapper) RequestedFocusChange(ctx context.Context, attr audio.Attr, zoneID, focusChange int) error {
	params := focusChangeParams{
		Usage:       string(attr.Usage),
		ZoneID:      zoneID,
		FocusChange: focusChange,
	}
	if w.SupportsFeature(FeatureAudioFocusWithMetadata) {
		meta := descriptorFromAttr(attr)
		params.Metadata = &meta
	}
	if err := w.t.invoke(ctx, opAudioFocusChange, params, nil); err != nil {
		w.diag.Record("focus change report failed: %v", err)
	}
	return nil
}

func (w *V3Wrapper) RegisterGainCallback(ctx context.Context, callback GainCallback) error {
	if !w.SupportsFeature(FeatureAudioGainCallback) {
		return fmt.Errorf("gain callback on version %d: %w", w.t.version(), ErrUnsupported)
	}
	if callback == nil {
		return fmt.Errorf("register gain callback: nil callback")
	}
	w.t.setEventHandler(eventGainChange, gainEventHandler(callback, w.diag))
	if err := w.t.invoke(ctx, opRegisterGainCallback, nil, nil); err != nil {
		w.t.clearEventHandler(eventGainChange)
		return fmt.Errorf("register gain callback: %w", err)
	}
	return nil
}

// SetModuleChangeCallback queues the registration on the registration
// goroutine and returns once queued. A bridge that reports the callback
// slot occupied (a previous service run died without clearing it) gets
// one clear-and-retry; a second rejection leaves the feature inactive
// with a diagnostic entry.
func (w *V3Wrapper) SetModuleChangeCallback(callback ModuleChangeCallback) error {
	if callback == nil {
		return fmt.Errorf("set module change callback: nil callback")
	}
	if !w.SupportsFeature(FeatureAudioModuleCallback) {
		return fmt.Errorf("module change callback on version %d: %w", w.t.version(), ErrUnsupported)
	}
	return w.t.submit(func() { w.registerModuleCallback(callback) })
}

func (w *V3Wrapper) registerModuleCallback(callback ModuleChangeCallback) {
	ctx := context.Background()

	w.t.setEventHandler(eventModuleChange, moduleEventHandler(callback, w.diag))
	err := w.t.invoke(ctx, opSetModuleChangeCallback, nil, nil)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrAlreadyRegistered) {
		w.t.clearEventHandler(eventModuleChange)
		w.logger.Error("set module change callback failed", "error", err)
		return
	}

	// The slot is held by a stale registration from a service run that
	// died without clearing it.
	w.logger.Warn("module change callback already set, retrying after clear")
	if err := w.t.invoke(ctx, opClearModuleChangeCallback, nil, nil); err != nil {
		w.t.clearEventHandler(eventModuleChange)
		w.logger.Error("clear before module change callback retry failed", "error", err)
		return
	}
	if err := w.t.invoke(ctx, opSetModuleChangeCallback, nil, nil); err != nil {
		w.t.clearEventHandler(eventModuleChange)
		w.logger.Error("set module change callback failed after retry", "error", err)
		w.diag.Record("module change callback retry failed, feature inactive: %v", err)
	}
}

func (w *V3Wrapper) ClearModuleChangeCallback() error {
	if !w.SupportsFeature(FeatureAudioModuleCallback) {
		return fmt.Errorf("module change callback on version %d: %w", w.t.version(), ErrUnsupported)
	}
	return w.t.submit(func() {
		w.t.clearEventHandler(eventModuleChange)
		if err := w.t.invoke(context.Background(), opClearModuleChangeCallback, nil, nil); err != nil {
			w.logger.Warn("clear module change callback failed", "error", err)
		}
	})
}

func (w *V3Wrapper) DevicesToDuckChange(ctx context.Context, ducking []DuckingInfo) error {
	if err := w.t.invoke(ctx, opDevicesToDuck, ducking, nil); err != nil {
		w.diag.Record("ducking notification failed: %v", err)
	}
	return nil
}

func (w *V3Wrapper) DevicesToMuteChange(ctx context.Context, muting []MutingInfo) error {
	if len(muting) == 0 {
		return fmt.Errorf("muting change: no muting info provided")
	}
	if err := w.t.invoke(ctx, opDevicesToMute, muting, nil); err != nil {
		w.diag.Record("muting notification failed: %v", err)
	}
	return nil
}

func (w *V3Wrapper) SetDeathRecipient(recipient DeathRecipient) { w.t.setDeathRecipient(recipient) }
func (w *V3Wrapper) LinkToDeath() error                         { return w.t.linkToDeath() }
func (w *V3Wrapper) UnlinkToDeath()                             { w.t.unlinkToDeath() }
func (w *V3Wrapper) State() ConnState                           { return w.t.state() }
func (w *V3Wrapper) Stats() Stats                               { return w.t.stats() }

// Revision returns 3.
func (w *V3Wrapper) Revision() int { return 3 }

// InterfaceVersion returns the negotiated minor version.
func (w *V3Wrapper) InterfaceVersion() int { return w.t.version() }

func (w *V3Wrapper) Close() error { return w.t.close() }
