package hal

// Feature identifies one optional capability of the audio control HAL.
// The numeric values are part of the bridge protocol and must not be
// reordered.
type Feature int

// Audio control HAL features.
const (
	// FeatureAudioFocus is the ability to receive focus requests from the
	// HAL and report focus results back. Supported by every revision.
	FeatureAudioFocus Feature = iota

	// FeatureAudioDucking is the ability to report ducked device sets.
	FeatureAudioDucking

	// FeatureAudioGroupMuting is the ability to report muted device sets.
	FeatureAudioGroupMuting

	// FeatureAudioFocusWithMetadata extends focus traffic with full
	// playback attributes instead of a bare usage.
	FeatureAudioFocusWithMetadata

	// FeatureAudioGainCallback is the ability to receive gain change
	// notifications initiated by the HAL.
	FeatureAudioGainCallback

	// FeatureAudioModuleCallback is the ability to receive audio port
	// change notifications when the HAL's device set changes.
	FeatureAudioModuleCallback

	// FeatureAudioConfiguration is the ability to describe the zone
	// topology and device configuration. Additionally gated by the
	// features.audio_configuration deployment flag.
	FeatureAudioConfiguration
)

// AllFeatures returns every known feature in wire order.
func AllFeatures() []Feature {
	return []Feature{
		FeatureAudioFocus,
		FeatureAudioDucking,
		FeatureAudioGroupMuting,
		FeatureAudioFocusWithMetadata,
		FeatureAudioGainCallback,
		FeatureAudioModuleCallback,
		FeatureAudioConfiguration,
	}
}

// String returns the feature name used in logs and diagnostics.
func (f Feature) String() string {
	switch f {
	case FeatureAudioFocus:
		return "audio_focus"
	case FeatureAudioDucking:
		return "audio_ducking"
	case FeatureAudioGroupMuting:
		return "audio_group_muting"
	case FeatureAudioFocusWithMetadata:
		return "audio_focus_with_metadata"
	case FeatureAudioGainCallback:
		return "audio_gain_callback"
	case FeatureAudioModuleCallback:
		return "audio_module_callback"
	case FeatureAudioConfiguration:
		return "audio_configuration"
	default:
		return "unknown"
	}
}
