package audio

import (
	"fmt"
	"strings"
)

// Reserved identifiers.
const (
	// PrimaryZoneID is the zone id of the primary audio zone. A non-empty
	// topology must always contain this zone.
	PrimaryZoneID = 0

	// InvalidContextID is the reserved "no context" sentinel. Assigned
	// context ids start immediately above it.
	InvalidContextID = 0
)

// Usage classifies what an audio stream is for. Values follow the platform
// audio attribute vocabulary; car contexts group one or more usages.
type Usage string

// Known usages.
const (
	UsageUnknown                Usage = "unknown"
	UsageMedia                  Usage = "media"
	UsageGame                   Usage = "game"
	UsageVoiceCommunication     Usage = "voice_communication"
	UsageVoiceCommSignalling    Usage = "voice_communication_signalling"
	UsageAlarm                  Usage = "alarm"
	UsageNotification           Usage = "notification"
	UsageNotificationRingtone   Usage = "notification_ringtone"
	UsageAccessibility          Usage = "assistance_accessibility"
	UsageNavigationGuidance     Usage = "assistance_navigation_guidance"
	UsageSonification           Usage = "assistance_sonification"
	UsageAssistant              Usage = "assistant"
	UsageCallAssistant          Usage = "call_assistant"
	UsageEmergency              Usage = "emergency"
	UsageSafety                 Usage = "safety"
	UsageVehicleStatus          Usage = "vehicle_status"
	UsageAnnouncement           Usage = "announcement"
)

// AllUsages returns every known usage value.
func AllUsages() []Usage {
	return []Usage{
		UsageUnknown,
		UsageMedia,
		UsageGame,
		UsageVoiceCommunication,
		UsageVoiceCommSignalling,
		UsageAlarm,
		UsageNotification,
		UsageNotificationRingtone,
		UsageAccessibility,
		UsageNavigationGuidance,
		UsageSonification,
		UsageAssistant,
		UsageCallAssistant,
		UsageEmergency,
		UsageSafety,
		UsageVehicleStatus,
		UsageAnnouncement,
	}
}

// validUsages is precomputed for O(1) validation.
var validUsages map[Usage]struct{}

func init() {
	validUsages = make(map[Usage]struct{}, len(AllUsages()))
	for _, u := range AllUsages() {
		validUsages[u] = struct{}{}
	}
}

// ValidateUsage checks whether a usage value is recognised.
func ValidateUsage(u Usage) error {
	if _, ok := validUsages[u]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidUsage, u)
	}
	return nil
}

// ContentType classifies the content carried by a stream. Used by fade
// configurations to exempt content from fading.
type ContentType string

// Known content types.
const (
	ContentTypeUnknown      ContentType = "unknown"
	ContentTypeSpeech       ContentType = "speech"
	ContentTypeMusic        ContentType = "music"
	ContentTypeMovie        ContentType = "movie"
	ContentTypeSonification ContentType = "sonification"
)

// Attr is one audio attribute: a usage, optionally narrowed by content type
// and free-form tags.
type Attr struct {
	Usage       Usage       `json:"usage"`
	ContentType ContentType `json:"content_type,omitempty"`
	Tags        string      `json:"tags,omitempty"`
}

// ContextInfo is one entry of a Context: an id, a display name and the
// audio attributes routed through it.
type ContextInfo struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Attrs []Attr `json:"attrs"`
}

// NormalizeContextName is the canonical form used for name comparison and
// lookup: trimmed and lower-cased.
func NormalizeContextName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Context is an ordered, deduplicated set of ContextInfo entries. It is
// immutable after construction and safe for concurrent reads.
type Context struct {
	infos  []ContextInfo
	byID   map[int]ContextInfo
	byName map[string]ContextInfo
}

// NewContext validates the given entries and builds a Context.
//
// Validation rules:
//   - at least one entry
//   - every id is positive (above InvalidContextID) and unique
//   - every name is unique after normalisation
//   - every entry carries at least one attribute
//
// Returns:
//   - *Context: the built context
//   - error: a wrapped sentinel describing the first violation
func NewContext(infos []ContextInfo) (*Context, error) {
	if len(infos) == 0 {
		return nil, ErrEmptyContext
	}

	c := &Context{
		infos:  make([]ContextInfo, 0, len(infos)),
		byID:   make(map[int]ContextInfo, len(infos)),
		byName: make(map[string]ContextInfo, len(infos)),
	}

	for _, info := range infos {
		if info.ID <= InvalidContextID {
			return nil, fmt.Errorf("%w: %d for %q", ErrInvalidContextID, info.ID, info.Name)
		}
		if len(info.Attrs) == 0 {
			return nil, fmt.Errorf("%w: %q (id %d)", ErrNoAttributes, info.Name, info.ID)
		}
		if _, exists := c.byID[info.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateContextID, info.ID)
		}
		key := NormalizeContextName(info.Name)
		if _, exists := c.byName[key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateContextName, info.Name)
		}

		cp := cloneInfo(info)

		c.infos = append(c.infos, cp)
		c.byID[cp.ID] = cp
		c.byName[key] = cp
	}

	return c, nil
}

// cloneInfo copies an entry so its Attrs slice shares no backing array
// with the original. Accessors hand clones out; mutating a returned
// entry must never reach the context's internal state.
func cloneInfo(info ContextInfo) ContextInfo {
	cp := info
	cp.Attrs = make([]Attr, len(info.Attrs))
	copy(cp.Attrs, info.Attrs)
	return cp
}

// Infos returns the entries in definition order.
func (c *Context) Infos() []ContextInfo {
	out := make([]ContextInfo, len(c.infos))
	for i, info := range c.infos {
		out[i] = cloneInfo(info)
	}
	return out
}

// Len returns the number of entries.
func (c *Context) Len() int {
	return len(c.infos)
}

// InfoByID looks an entry up by context id.
func (c *Context) InfoByID(id int) (ContextInfo, bool) {
	info, ok := c.byID[id]
	if !ok {
		return ContextInfo{}, false
	}
	return cloneInfo(info), true
}

// InfoByName looks an entry up by name. Matching is case-insensitive on the
// trimmed name.
func (c *Context) InfoByName(name string) (ContextInfo, bool) {
	info, ok := c.byName[NormalizeContextName(name)]
	if !ok {
		return ContextInfo{}, false
	}
	return cloneInfo(info), true
}

// IDs returns all context ids in definition order.
func (c *Context) IDs() []int {
	out := make([]int, len(c.infos))
	for i, info := range c.infos {
		out[i] = info.ID
	}
	return out
}

// Default car context table. The legacy fallback path and product defaults
// route these twelve contexts; ids are stable and start at 1.
const (
	ContextMusic = iota + 1
	ContextNavigation
	ContextVoiceCommand
	ContextCallRing
	ContextCall
	ContextAlarm
	ContextNotification
	ContextSystemSound
	ContextEmergency
	ContextSafety
	ContextVehicleStatus
	ContextAnnouncement
)

// DefaultContext returns the built-in car context table used when the HAL
// does not describe contexts (legacy fallback path).
func DefaultContext() *Context {
	ctx, err := NewContext(defaultContextInfos())
	if err != nil {
		// The table is a compile-time constant; a violation is a programming
		// error, not an input error.
		panic(fmt.Sprintf("audio: default context table invalid: %v", err))
	}
	return ctx
}

func defaultContextInfos() []ContextInfo {
	return []ContextInfo{
		{ID: ContextMusic, Name: "music", Attrs: []Attr{
			{Usage: UsageUnknown}, {Usage: UsageMedia}, {Usage: UsageGame},
		}},
		{ID: ContextNavigation, Name: "navigation", Attrs: []Attr{
			{Usage: UsageNavigationGuidance},
		}},
		{ID: ContextVoiceCommand, Name: "voice_command", Attrs: []Attr{
			{Usage: UsageAccessibility}, {Usage: UsageAssistant},
		}},
		{ID: ContextCallRing, Name: "call_ring", Attrs: []Attr{
			{Usage: UsageNotificationRingtone},
		}},
		{ID: ContextCall, Name: "call", Attrs: []Attr{
			{Usage: UsageVoiceCommunication}, {Usage: UsageCallAssistant},
			{Usage: UsageVoiceCommSignalling},
		}},
		{ID: ContextAlarm, Name: "alarm", Attrs: []Attr{
			{Usage: UsageAlarm},
		}},
		{ID: ContextNotification, Name: "notification", Attrs: []Attr{
			{Usage: UsageNotification},
		}},
		{ID: ContextSystemSound, Name: "system_sound", Attrs: []Attr{
			{Usage: UsageSonification},
		}},
		{ID: ContextEmergency, Name: "emergency", Attrs: []Attr{
			{Usage: UsageEmergency},
		}},
		{ID: ContextSafety, Name: "safety", Attrs: []Attr{
			{Usage: UsageSafety},
		}},
		{ID: ContextVehicleStatus, Name: "vehicle_status", Attrs: []Attr{
			{Usage: UsageVehicleStatus},
		}},
		{ID: ContextAnnouncement, Name: "announcement", Attrs: []Attr{
			{Usage: UsageAnnouncement},
		}},
	}
}

// NonCarSystemContextIDs returns the context ids a vendor HAL may describe
// buses for on the legacy path. Emergency, safety, vehicle status and
// announcement are car-system contexts routed internally and excluded.
func NonCarSystemContextIDs() []int {
	return []int{
		ContextMusic,
		ContextNavigation,
		ContextVoiceCommand,
		ContextCallRing,
		ContextCall,
		ContextAlarm,
		ContextNotification,
		ContextSystemSound,
	}
}
