// Package hal provides versioned access to the vendor audio control HAL.
//
// The HAL is a separate local process (the audio control bridge) reached
// over the platform MQTT broker. Three protocol revisions exist in the
// field; each gets its own wrapper implementing the same Wrapper facade,
// so callers branch on capability, never on revision:
//
//	V1Wrapper - audio focus only, plus the legacy context-to-bus query
//	V2Wrapper - focus, ducking and group muting; fixed feature set
//	V3Wrapper - current generation with a negotiated minor version (1-5)
//
// Connect reads the bridge's retained status announcement and returns the
// wrapper matching the announced revision:
//
//	wrapper, err := hal.Connect(ctx, bus, hal.Options{
//	    ClientID:       cfg.MQTT.Broker.ClientID,
//	    RequestTimeout: cfg.GetHALRequestTimeout(),
//	    StatusTimeout:  cfg.GetHALStatusTimeout(),
//	    Logger:         logger.With("component", "hal"),
//	})
//	if err != nil {
//	    return fmt.Errorf("connect audio control HAL: %w", err)
//	}
//	defer wrapper.Close()
//
//	if wrapper.SupportsFeature(hal.FeatureAudioConfiguration) {
//	    zones, _ := wrapper.AudioZones(ctx)
//	    // ...
//	}
//
// Feature Negotiation:
//   - Feature support is decided by interface version number, except
//     FeatureAudioConfiguration which is additionally gated by the
//     features.audio_configuration deployment flag.
//   - Calling an operation the revision does not support returns
//     ErrUnsupported, never silently empty data. The one documented
//     exception is AudioDeviceConfiguration on a V3 wrapper, where the
//     default-routing configuration is the correct HAL-absent answer.
//
// Transport Failures:
//   - A timed-out or failed request on a supported operation is treated as
//     "feature unavailable this call": queries return an empty result,
//     notifications become no-ops, and the failure is recorded to the
//     service diagnostic log.
//
// Death and Reconnection:
//   - The bridge's status topic is retained with a broker LWT, so a bridge
//     crash flips it to offline. The wrapper then drops every callback
//     registration, waits for the bridge to announce online again, and
//     notifies the registered death recipient so the owner can re-apply
//     registrations and reload the topology.
//   - Long-lived callback registration and clearing is funnelled through a
//     single registration goroutine so changes appear atomic to the HAL.
package hal
