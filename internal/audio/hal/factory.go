package hal

import (
	"context"
	"fmt"
	"time"

	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/mqtt"
)

// Defaults applied by Connect when Options leaves a field zero.
const (
	defaultClientID       = "caraudio-core"
	defaultRequestTimeout = 5 * time.Second
	defaultStatusTimeout  = 10 * time.Second
)

// Options configures the bridge connection.
type Options struct {
	// ClientID namespaces the response topics of this service instance.
	ClientID string

	// QoS applies to every bridge subscription and publish.
	QoS byte

	// RequestTimeout bounds each request/response round trip.
	RequestTimeout time.Duration

	// StatusTimeout bounds how long Connect waits for the bridge's
	// retained status announcement.
	StatusTimeout time.Duration

	// AudioConfiguration is the deployment flag gating HAL-described
	// topologies on revision 3 bridges.
	AudioConfiguration bool

	// Logger receives transport and negotiation logging. Optional.
	Logger Logger

	// Diagnostics receives dropped-event and degraded-feature entries.
	// Optional; a private log is created when nil.
	Diagnostics *diagnostics.Log

	// OnDeath is invoked when the bridge's last will flips the status
	// document to offline. Runs on a transport goroutine. Optional.
	OnDeath func()
}

func (o Options) withDefaults() Options {
	if o.ClientID == "" {
		o.ClientID = defaultClientID
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	if o.StatusTimeout <= 0 {
		o.StatusTimeout = defaultStatusTimeout
	}
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
	if o.Diagnostics == nil {
		o.Diagnostics = diagnostics.New(diagnostics.DefaultCapacity, nil)
	}
	return o
}

// Connect attaches to the audio control bridge over the platform broker
// and returns the wrapper matching the revision the bridge announced.
// It blocks until the bridge's retained status arrives, ctx is done, or
// the status timeout expires.
func Connect(ctx context.Context, bus *mqtt.Client, opts Options) (Wrapper, error) {
	opts = opts.withDefaults()

	c := newClient(bus, opts)
	if err := c.start(ctx); err != nil {
		c.close()
		return nil, fmt.Errorf("connect audio control bridge: %w", err)
	}

	rev := c.revision()
	opts.Logger.Info("audio control bridge negotiated",
		"revision", rev, "version", c.version())

	switch rev {
	case 1:
		return &V1Wrapper{t: c, logger: opts.Logger, diag: opts.Diagnostics}, nil
	case 2:
		return &V2Wrapper{t: c, logger: opts.Logger, diag: opts.Diagnostics}, nil
	case 3:
		return &V3Wrapper{
			t:                      c,
			flagAudioConfiguration: opts.AudioConfiguration,
			logger:                 opts.Logger,
			diag:                   opts.Diagnostics,
		}, nil
	default:
		c.close()
		return nil, fmt.Errorf("%w: revision %d", ErrUnknownRevision, rev)
	}
}
