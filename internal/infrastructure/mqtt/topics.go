package mqtt

import "fmt"

// Topic prefixes for the car audio platform bus.
//
// The audio service and the vendor HAL bridge share a local broker.
// HAL topics carry the request/response/event traffic between the two;
// service topics carry the audio service's own status and events.
const (
	// TopicPrefix is the base for all car audio topics.
	TopicPrefix = "caraudio"

	// TopicPrefixHAL is the base for audio control HAL bridge topics.
	TopicPrefixHAL = "caraudio/hal"

	// TopicPrefixService is the base for audio service topics.
	TopicPrefixService = "caraudio/service"
)

// Topics provides builders for car audio MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	reqTopic := topics.HALRequest("audio_zones")
//	// Returns: "caraudio/hal/request/audio_zones"
type Topics struct{}

// =============================================================================
// HAL Bridge Topics
// =============================================================================

// HALRequest returns the topic for requests to the HAL bridge.
//
// Example: caraudio/hal/request/audio_zones
func (Topics) HALRequest(op string) string {
	return fmt.Sprintf("%s/request/%s", TopicPrefixHAL, op)
}

// HALResponse returns the topic for HAL bridge responses to a specific
// client's request.
//
// Example: caraudio/hal/response/caraudio-core/req-abc123
func (Topics) HALResponse(clientID, requestID string) string {
	return fmt.Sprintf("%s/response/%s/%s", TopicPrefixHAL, clientID, requestID)
}

// HALEvent returns the topic for asynchronous HAL events.
//
// Example: caraudio/hal/event/focus_change
func (Topics) HALEvent(kind string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixHAL, kind)
}

// HALStatus returns the retained HAL bridge status topic.
//
// The bridge publishes {status, revision, version} here on startup and
// its broker LWT flips it to offline on death.
//
// Example: caraudio/hal/status
func (Topics) HALStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixHAL)
}

// =============================================================================
// Service Topics
// =============================================================================

// ServiceStatus returns the audio service status topic.
//
// Example: caraudio/service/status
func (Topics) ServiceStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixService)
}

// ServiceEvent returns the topic for audio service events.
//
// Example: caraudio/service/event/topology_reloaded
func (Topics) ServiceEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixService, eventType)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllHALEvents returns a pattern matching all asynchronous HAL events.
//
// Pattern: caraudio/hal/event/+
func (Topics) AllHALEvents() string {
	return fmt.Sprintf("%s/event/+", TopicPrefixHAL)
}

// HALResponses returns a pattern matching all HAL responses addressed to
// the given client.
//
// Pattern: caraudio/hal/response/caraudio-core/+
func (Topics) HALResponses(clientID string) string {
	return fmt.Sprintf("%s/response/%s/+", TopicPrefixHAL, clientID)
}

// AllServiceEvents returns a pattern matching all audio service events.
//
// Pattern: caraudio/service/event/+
func (Topics) AllServiceEvents() string {
	return fmt.Sprintf("%s/event/+", TopicPrefixService)
}

// AllTopics returns a pattern matching all car audio topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: caraudio/#
func (Topics) AllTopics() string {
	return "caraudio/#"
}
