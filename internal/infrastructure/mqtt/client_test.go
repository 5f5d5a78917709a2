package mqtt

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// mockLogger implements Logger interface for testing.
type mockLogger struct {
	errors []string
	warns  []string
	mu     sync.Mutex
}

func (l *mockLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "HALRequest",
			builder: func() string {
				return Topics{}.HALRequest("audio_zones")
			},
			expected: "caraudio/hal/request/audio_zones",
		},
		{
			name: "HALResponse",
			builder: func() string {
				return Topics{}.HALResponse("caraudio-core", "req-abc123")
			},
			expected: "caraudio/hal/response/caraudio-core/req-abc123",
		},
		{
			name: "HALEvent",
			builder: func() string {
				return Topics{}.HALEvent("focus_change")
			},
			expected: "caraudio/hal/event/focus_change",
		},
		{
			name: "HALStatus",
			builder: func() string {
				return Topics{}.HALStatus()
			},
			expected: "caraudio/hal/status",
		},
		{
			name: "ServiceStatus",
			builder: func() string {
				return Topics{}.ServiceStatus()
			},
			expected: "caraudio/service/status",
		},
		{
			name: "ServiceEvent",
			builder: func() string {
				return Topics{}.ServiceEvent("topology_reloaded")
			},
			expected: "caraudio/service/event/topology_reloaded",
		},
		{
			name: "AllHALEvents",
			builder: func() string {
				return Topics{}.AllHALEvents()
			},
			expected: "caraudio/hal/event/+",
		},
		{
			name: "HALResponses",
			builder: func() string {
				return Topics{}.HALResponses("caraudio-core")
			},
			expected: "caraudio/hal/response/caraudio-core/+",
		},
		{
			name: "AllServiceEvents",
			builder: func() string {
				return Topics{}.AllServiceEvents()
			},
			expected: "caraudio/service/event/+",
		},
		{
			name: "AllTopics",
			builder: func() string {
				return Topics{}.AllTopics()
			},
			expected: "caraudio/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

// =============================================================================
// Validation Tests (no broker required)
// =============================================================================

// unconnectedClient returns a client that never connected, for exercising
// the validation paths that run before any broker interaction.
func unconnectedClient() *Client {
	return &Client{subscriptions: make(map[string]subscription)}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := unconnectedClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := client.HealthCheck(ctx)
	if err == nil {
		t.Error("HealthCheck() expected error for cancelled context")
	}
}

func TestPublishEmptyTopic(t *testing.T) {
	client := unconnectedClient()

	err := client.Publish("", []byte("test"), 1, false)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	client := unconnectedClient()

	err := client.Publish("caraudio/test", []byte("test"), 3, false)
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishOversizedPayload(t *testing.T) {
	client := unconnectedClient()

	payload := make([]byte, maxPayloadSize+1)
	err := client.Publish("caraudio/test", payload, 1, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribeEmptyTopic(t *testing.T) {
	client := unconnectedClient()

	err := client.Subscribe("", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribeInvalidQoS(t *testing.T) {
	client := unconnectedClient()

	err := client.Subscribe("caraudio/test", 3, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	client := unconnectedClient()

	err := client.Subscribe("caraudio/test", 1, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() error = %v, want ErrSubscribeFailed", err)
	}
}

func TestUnsubscribeEmptyTopic(t *testing.T) {
	client := unconnectedClient()

	err := client.Unsubscribe("")
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	client := unconnectedClient()

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	client := unconnectedClient()

	if client.HasSubscription("nonexistent/topic") {
		t.Error("HasSubscription() should be false for unsubscribed topic")
	}
}

func TestLoggerSetAndClear(t *testing.T) {
	client := unconnectedClient()

	logger := &mockLogger{}
	client.SetLogger(logger)

	if client.getLogger() == nil {
		t.Error("getLogger() = nil after SetLogger()")
	}

	client.SetLogger(nil)

	if client.getLogger() != nil {
		t.Error("getLogger() should be nil after SetLogger(nil)")
	}
}
