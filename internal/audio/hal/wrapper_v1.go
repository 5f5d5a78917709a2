package hal

import (
	"context"
	"fmt"

	"github.com/ridgeworth/caraudio-core/internal/audio"
	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
)

// V1Wrapper serves revision 1 bridges: audio focus plus the legacy
// context-to-bus query. Everything else is unsupported.
type V1Wrapper struct {
	t      transport
	logger Logger
	diag   *diagnostics.Log
}

var (
	_ Wrapper    = (*V1Wrapper)(nil)
	_ BusQuerier = (*V1Wrapper)(nil)
)

// SupportsFeature reports true only for audio focus.
func (w *V1Wrapper) SupportsFeature(feature Feature) bool {
	return feature == FeatureAudioFocus
}

func (w *V1Wrapper) AudioDeviceConfiguration(context.Context) (DeviceConfiguration, error) {
	return DeviceConfiguration{}, w.unsupported("audio device configuration")
}

func (w *V1Wrapper) AudioZones(context.Context) ([]ZoneDescriptor, error) {
	return nil, w.unsupported("audio zones")
}

func (w *V1Wrapper) OutputMirroringDevices(context.Context) ([]PortDescriptor, error) {
	return nil, w.unsupported("output mirroring devices")
}

func (w *V1Wrapper) RegisterFocusListener(ctx context.Context, listener FocusListener) error {
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

func (w *V1Wrapper) UnregisterFocusListener(ctx context.Context) error {
	w.t.clearEventHandler(eventFocusRequest)
	w.t.clearEventHandler(eventFocusAbandon)
	if err := w.t.invoke(ctx, opUnregisterFocusListener, nil, nil); err != nil {
		w.diag.Record("unregister focus listener failed: %v", err)
	}
	return nil
}

// RequestedFocusChange reports a focus decision by usage only; revision
// 1 has no attribute vocabulary.
func (w *V1Wrapper) RequestedFocusChange(ctx context.Context, attr audio.Attr, zoneID, focusChange int) error {
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

func (w *V1Wrapper) RegisterGainCallback(context.Context, GainCallback) error {
	return w.unsupported("gain callback")
}

func (w *V1Wrapper) SetModuleChangeCallback(ModuleChangeCallback) error {
	return w.unsupported("module change callback")
}

func (w *V1Wrapper) ClearModuleChangeCallback() error {
	return w.unsupported("module change callback")
}

func (w *V1Wrapper) DevicesToDuckChange(context.Context, []DuckingInfo) error {
	return w.unsupported("ducking")
}

func (w *V1Wrapper) DevicesToMuteChange(context.Context, []MutingInfo) error {
	return w.unsupported("muting")
}

// BusForContext resolves the output bus assigned to a context id. Any
// transport failure is returned as-is: legacy routing is built from
// these answers and cannot tolerate holes.
func (w *V1Wrapper) BusForContext(ctx context.Context, contextID int) (int, error) {
	var res busForContextResult
	params := busForContextParams{ContextID: contextID}
	if err := w.t.invoke(ctx, opBusForContext, params, &res); err != nil {
		return 0, fmt.Errorf("bus for context %d: %w", contextID, err)
	}
	if res.Bus < 0 {
		return 0, fmt.Errorf("context %d has no assigned output bus", contextID)
	}
	return res.Bus, nil
}

func (w *V1Wrapper) SetDeathRecipient(recipient DeathRecipient) { w.t.setDeathRecipient(recipient) }
func (w *V1Wrapper) LinkToDeath() error                         { return w.t.linkToDeath() }
func (w *V1Wrapper) UnlinkToDeath()                             { w.t.unlinkToDeath() }
func (w *V1Wrapper) State() ConnState                           { return w.t.state() }
func (w *V1Wrapper) Stats() Stats                               { return w.t.stats() }

// Revision returns 1.
func (w *V1Wrapper) Revision() int { return 1 }

// InterfaceVersion returns 0; revision 1 does not minor-version.
func (w *V1Wrapper) InterfaceVersion() int { return 0 }

func (w *V1Wrapper) Close() error { return w.t.close() }

func (w *V1Wrapper) unsupported(operation string) error {
	return fmt.Errorf("%s on revision 1: %w", operation, ErrUnsupported)
}
