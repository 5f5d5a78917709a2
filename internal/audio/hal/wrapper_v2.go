package hal

import (
	"context"
	"fmt"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
)

// V2Wrapper serves revision 2 bridges: audio focus, HAL ducking and
// group muting, as a fixed feature set. Revision 2 has no topology
// description and no minor versioning.
type V2Wrapper struct {
	t      transport
	logger Logger
	diag   *diagnostics.Log
}

var _ Wrapper = (*V2Wrapper)(nil)

// SupportsFeature reports true for focus, ducking and group muting.
func (w *V2Wrapper) SupportsFeature(feature Feature) bool {
	switch feature {
	case FeatureAudioFocus, FeatureAudioDucking, FeatureAudioGroupMuting:
		return true
	default:
		return false
	}
}

func (w *V2Wrapper) AudioDeviceConfiguration(context.Context) (DeviceConfiguration, error) {
	return DeviceConfiguration{}, w.unsupported("audio device configuration")
}

func (w *V2Wrapper) AudioZones(context.Context) ([]ZoneDescriptor, error) {
	return nil, w.unsupported("audio zones")
}

func (w *V2Wrapper) OutputMirroringDevices(context.Context) ([]PortDescriptor, error) {
	return nil, w.unsupported("output mirroring devices")
}

func (w *V2Wrapper) RegisterFocusListener(ctx context.Context, listener FocusListener) error {
	if listener == nil {
		return fmt.Errorf("register focus listener: nil listener")
	}
	w.t.setEventHandler(eventFocusRequest, focusEventHandler(listener, false, false, w.diag))
	w.t.setEventHandler(eventFocusAbandon, focusEventHandler(listener, true, false, w.diag))
	if err := w.t.invoke(ctx, opRegisterFocusListener, nil, nil); err != nil {
		w.t.clearEventHandler(eventFocusRequest)
		w.t.clearEventHandler(eventFocusAbandon)
		return fmt.Errorf("register focus listener: %w", err)
	}
	return nil
}

func (w *V2Wrapper) UnregisterFocusListener(ctx context.Context) error {
	w.t.clearEventHandler(eventFocusRequest)
	w.t.clearEventHandler(eventFocusAbandon)
	if err := w.t.invoke(ctx, opUnregisterFocusListener, nil, nil); err != nil {
		w.diag.Record("unregister focus listener failed: %v", err)
	}
	return nil
}

func (w *V2Wrapper) RequestedFocusChange(ctx context.Context, attr audio.Attr, zoneID, focusChange int) error {
	params := focusChangeParams{
		Usage:       string(attr.Usage),
		ZoneID:      zoneID,
		FocusChange: focusChange,
	}
	if err := w.t.invoke(ctx, opAudioFocusChange, params, nil); err != nil {
		w.diag.Record("focus change report failed: %v", err)
	}
	return nil
}

func (w *V2Wrapper) RegisterGainCallback(context.Context, GainCallback) error {
	return w.unsupported("gain callback")
}

func (w *V2Wrapper) SetModuleChangeCallback(ModuleChangeCallback) error {
	return w.unsupported("module change callback")
}

func (w *V2Wrapper) ClearModuleChangeCallback() error {
	return w.unsupported("module change callback")
}

// DevicesToDuckChange forwards ducking transitions. Transport failures
// drop the notification with a diagnostic entry; ducking state is
// re-sent on the next focus evaluation anyway.
func (w *V2Wrapper) DevicesToDuckChange(ctx context.Context, ducking []DuckingInfo) error {
	if err := w.t.invoke(ctx, opDevicesToDuck, ducking, nil); err != nil {
		w.diag.Record("ducking notification failed: %v", err)
	}
	return nil
}

func (w *V2Wrapper) DevicesToMuteChange(ctx context.Context, muting []MutingInfo) error {
	if len(muting) == 0 {
		return fmt.Errorf("muting change: no muting info provided")
	}
	if err := w.t.invoke(ctx, opDevicesToMute, muting, nil); err != nil {
		w.diag.Record("muting notification failed: %v", err)
	}
	return nil
}

func (w *V2Wrapper) SetDeathRecipient(recipient DeathRecipient) { w.t.setDeathRecipient(recipient) }
func (w *V2Wrapper) LinkToDeath() error                         { return w.t.linkToDeath() }
func (w *V2Wrapper) UnlinkToDeath()                             { w.t.unlinkToDeath() }
func (w *V2Wrapper) State() ConnState                           { return w.t.state() }
func (w *V2Wrapper) Stats() Stats                               { return w.t.stats() }

// Revision returns 2.
func (w *V2Wrapper) Revision() int { return 2 }

// InterfaceVersion returns 0; revision 2 does not minor-version.
func (w *V2Wrapper) InterfaceVersion() int { return 0 }

func (w *V2Wrapper) Close() error { return w.t.close() }

func (w *V2Wrapper) unsupported(operation string) error {
	return fmt.Errorf("%s on revision 2: %w", operation, ErrUnsupported)
}
