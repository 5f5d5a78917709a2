package audio

import "time"

// FadeState controls whether fading applies to a zone configuration.
type FadeState string

// Fade states.
const (
	FadeStateEnabledDefault FadeState = "enabled_default"
	FadeStateDisabled       FadeState = "disabled"
)

// AttrDurationOverride pins a fade duration for streams matching one
// attribute, overriding the configuration-wide duration.
type AttrDurationOverride struct {
	Attr     Attr          `json:"attr"`
	Duration time.Duration `json:"duration"`
}

// FadeConfiguration is the gain ramp policy of a zone configuration: how
// long sources fade in and out, which usages fade at all, and which content
// is exempt.
type FadeConfiguration struct {
	Name  string    `json:"name,omitempty"`
	State FadeState `json:"state"`

	FadeInDuration  time.Duration `json:"fade_in_duration"`
	FadeOutDuration time.Duration `json:"fade_out_duration"`

	// FadeInDelayForOffenders delays the fade-in of a stream that lost
	// focus repeatedly.
	FadeInDelayForOffenders time.Duration `json:"fade_in_delay_for_offenders"`

	FadeableUsages         []Usage       `json:"fadeable_usages,omitempty"`
	UnfadeableContentTypes []ContentType `json:"unfadeable_content_types,omitempty"`
	UnfadeableAttrs        []Attr        `json:"unfadeable_attrs,omitempty"`

	FadeOutOverrides []AttrDurationOverride `json:"fade_out_overrides,omitempty"`
	FadeInOverrides  []AttrDurationOverride `json:"fade_in_overrides,omitempty"`
}

// TransientFadeConfiguration applies an alternate fade configuration only
// while any of its usages hold audio focus. Usages must be non-empty.
type TransientFadeConfiguration struct {
	Usages []Usage           `json:"usages"`
	Config FadeConfiguration `json:"config"`
}
