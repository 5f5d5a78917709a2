package hal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/mqtt"
)

// ConnState describes the bridge connection lifecycle.
type ConnState string

// Connection states.
const (
	// StateDisconnected means no connection attempt is active; the
	// terminal state after Close.
	StateDisconnected ConnState = "disconnected"

	// StateConnecting means subscriptions are up and the client is
	// waiting for the bridge's status announcement.
	StateConnecting ConnState = "connecting"

	// StateConnected means the bridge announced itself online; requests
	// may be issued.
	StateConnected ConnState = "connected"

	// StateDying means the bridge's last-will fired. Callback
	// registrations are dropped and requests fail until the bridge
	// announces itself online again.
	StateDying ConnState = "dying"
)

// Stats is a snapshot of bridge transport counters.
type Stats struct {
	State        ConnState `json:"state"`
	Revision     int       `json:"revision"`
	Version      int       `json:"version"`
	RequestsTx   uint64    `json:"requests_tx"`
	ResponsesRx  uint64    `json:"responses_rx"`
	EventsRx     uint64    `json:"events_rx"`
	ErrorsTotal  uint64    `json:"errors_total"`
	Deaths       uint64    `json:"deaths"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}

// Logger is the logging interface the hal package needs. It matches the
// service logger's methods so callers can pass it straight through.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type pendingResult struct {
	env responseEnvelope
	err error
}

type eventHandler func(payload []byte)

// client is the shared bridge transport under every wrapper revision.
//
// Thread Safety:
//   - stateMu guards connection state, revision/version and death
//     linkage; pendingMu guards in-flight request correlation;
//     handlerMu guards event handler registration. The three are never
//     held together.
//   - Message handlers run on the MQTT client's handler goroutines.
type client struct {
	bus      *mqtt.Client
	topics   mqtt.Topics
	clientID string
	qos      byte

	requestTimeout time.Duration
	statusTimeout  time.Duration
	logger         Logger
	diag           *diagnostics.Log
	onDeath        func()

	stateMu   sync.RWMutex
	connState ConnState
	rev       int
	ver       int
	linked    bool
	recipient DeathRecipient

	ready     chan struct{}
	readyOnce sync.Once

	pendingMu sync.Mutex
	pending   map[string]chan pendingResult

	handlerMu sync.RWMutex
	handlers  map[string]eventHandler

	reg    *registrar
	closed atomic.Bool

	requestsTx   atomic.Uint64
	responsesRx  atomic.Uint64
	eventsRx     atomic.Uint64
	errorsTotal  atomic.Uint64
	deaths       atomic.Uint64
	lastActivity atomic.Int64
}

func newClient(bus *mqtt.Client, opts Options) *client {
	return &client{
		bus:            bus,
		clientID:       opts.ClientID,
		qos:            opts.QoS,
		requestTimeout: opts.RequestTimeout,
		statusTimeout:  opts.StatusTimeout,
		logger:         opts.Logger,
		diag:           opts.Diagnostics,
		onDeath:        opts.OnDeath,
		connState:      StateDisconnected,
		ready:          make(chan struct{}),
		pending:        make(map[string]chan pendingResult),
		handlers:       make(map[string]eventHandler),
		reg:            newRegistrar(opts.Logger),
	}
}

// start subscribes to the bridge topics and waits for the retained
// status announcement. It returns ErrTimeout when the bridge never
// announces itself within the status timeout.
func (c *client) start(ctx context.Context) error {
	c.setState(StateConnecting)

	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{c.topics.HALStatus(), c.handleStatus},
		{c.topics.HALResponses(c.clientID), c.handleResponse},
		{c.topics.AllHALEvents(), c.handleEvent},
	}
	for _, s := range subs {
		if err := c.bus.Subscribe(s.topic, c.qos, s.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", s.topic, err)
		}
	}

	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.statusTimeout):
		return fmt.Errorf("no bridge status within %v: %w", c.statusTimeout, ErrTimeout)
	}
}

// handleStatus processes the retained bridge status document. Online
// transitions publish revision and version; the broker LWT flips the
// document to offline when the bridge dies.
func (c *client) handleStatus(_ string, payload []byte) error {
	var status bridgeStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		c.errorsTotal.Add(1)
		return fmt.Errorf("decode bridge status: %w", err)
	}

	switch status.Status {
	case statusOnline:
		c.transitionOnline(status.Revision, status.Version)
	case statusOffline:
		c.transitionOffline()
	default:
		c.logger.Warn("unknown bridge status", "status", status.Status)
	}
	return nil
}

func (c *client) transitionOnline(rev, ver int) {
	c.stateMu.Lock()
	prev := c.connState
	prevRev, prevVer := c.rev, c.ver
	c.connState = StateConnected
	c.rev = rev
	c.ver = ver
	linked := c.linked
	recipient := c.recipient
	c.stateMu.Unlock()

	c.lastActivity.Store(time.Now().UnixNano())
	c.readyOnce.Do(func() { close(c.ready) })

	switch prev {
	case StateConnected:
		// Duplicate retained announcement.
	case StateDying:
		if prevRev != rev || prevVer != ver {
			c.logger.Warn("bridge restarted with a different interface",
				"old_revision", prevRev, "old_version", prevVer,
				"new_revision", rev, "new_version", ver)
		}
		c.logger.Info("audio control bridge restored",
			"revision", rev, "version", ver, "deaths", c.deaths.Load())
		if linked && recipient != nil {
			go recipient()
		}
	default:
		c.logger.Info("audio control bridge online", "revision", rev, "version", ver)
	}
}

func (c *client) transitionOffline() {
	c.stateMu.Lock()
	prev := c.connState
	if prev != StateConnected {
		c.stateMu.Unlock()
		c.logger.Debug("bridge offline announcement ignored", "state", string(prev))
		return
	}
	c.connState = StateDying
	c.stateMu.Unlock()

	c.deaths.Add(1)
	c.clearAllEventHandlers()
	c.failPending(ErrBridgeDied)
	c.diag.Record("audio control bridge died (death #%d), callback registrations dropped", c.deaths.Load())
	c.logger.Warn("audio control bridge died", "deaths", c.deaths.Load())

	if c.onDeath != nil {
		go c.onDeath()
	}
}

// handleResponse correlates a bridge response with its in-flight
// request. Responses arriving after the caller gave up are dropped.
func (c *client) handleResponse(_ string, payload []byte) error {
	var env responseEnvelope
	if err := cbor.Unmarshal(payload, &env); err != nil {
		c.errorsTotal.Add(1)
		return fmt.Errorf("decode bridge response: %w", err)
	}

	c.lastActivity.Store(time.Now().UnixNano())

	c.pendingMu.Lock()
	ch, ok := c.pending[env.ID]
	if ok {
		delete(c.pending, env.ID)
	}
	c.pendingMu.Unlock()
	if !ok {
		c.logger.Debug("unmatched bridge response", "request_id", env.ID)
		return nil
	}
	ch <- pendingResult{env: env}
	return nil
}

// handleEvent dispatches an unsolicited bridge event to its registered
// handler. Events without a handler are normal before registration and
// after a death dropped the registrations.
func (c *client) handleEvent(topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	kind := parts[len(parts)-1]

	c.eventsRx.Add(1)
	c.lastActivity.Store(time.Now().UnixNano())

	c.handlerMu.RLock()
	handler := c.handlers[kind]
	c.handlerMu.RUnlock()
	if handler == nil {
		c.logger.Debug("bridge event without handler", "kind", kind)
		return nil
	}
	handler(payload)
	return nil
}

// invoke issues one request to the bridge and decodes the response into
// result. A nil result discards the response body. The call is bounded
// by the request timeout and by ctx.
func (c *client) invoke(ctx context.Context, op string, params, result any) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.state() != StateConnected {
		return fmt.Errorf("%s: %w", op, ErrNotConnected)
	}

	id := uuid.NewString()
	env := requestEnvelope{ID: id, ReplyTo: c.topics.HALResponse(c.clientID, id)}
	if params != nil {
		raw, err := cbor.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode %s params: %w", op, err)
		}
		env.Params = raw
	}
	body, err := cbor.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	ch := make(chan pendingResult, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if err := c.bus.Publish(c.topics.HALRequest(op), body, c.qos, false); err != nil {
		c.errorsTotal.Add(1)
		return fmt.Errorf("publish %s: %w", op, err)
	}
	c.requestsTx.Add(1)

	select {
	case res := <-ch:
		if res.err != nil {
			c.errorsTotal.Add(1)
			return fmt.Errorf("%s: %w", op, res.err)
		}
		c.responsesRx.Add(1)
		if err := decodeResponse(res.env, result); err != nil {
			c.errorsTotal.Add(1)
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		c.errorsTotal.Add(1)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", op, ErrTimeout)
		}
		return ctx.Err()
	}
}

// failPending resolves every in-flight request with err.
func (c *client) failPending(err error) {
	c.pendingMu.Lock()
	waiting := make([]chan pendingResult, 0, len(c.pending))
	for id, ch := range c.pending {
		waiting = append(waiting, ch)
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	for _, ch := range waiting {
		ch <- pendingResult{err: err}
	}
}

func (c *client) submit(task func()) error {
	return c.reg.submit(task)
}

func (c *client) setEventHandler(kind string, handler eventHandler) {
	c.handlerMu.Lock()
	c.handlers[kind] = handler
	c.handlerMu.Unlock()
}

func (c *client) clearEventHandler(kind string) {
	c.handlerMu.Lock()
	delete(c.handlers, kind)
	c.handlerMu.Unlock()
}

func (c *client) clearAllEventHandlers() {
	c.handlerMu.Lock()
	c.handlers = make(map[string]eventHandler)
	c.handlerMu.Unlock()
}

func (c *client) setDeathRecipient(recipient DeathRecipient) {
	c.stateMu.Lock()
	c.recipient = recipient
	c.stateMu.Unlock()
}

func (c *client) linkToDeath() error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.stateMu.Lock()
	c.linked = true
	c.stateMu.Unlock()
	return nil
}

func (c *client) unlinkToDeath() {
	c.stateMu.Lock()
	c.linked = false
	c.stateMu.Unlock()
}

func (c *client) setState(s ConnState) {
	c.stateMu.Lock()
	c.connState = s
	c.stateMu.Unlock()
}

func (c *client) state() ConnState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.connState
}

func (c *client) revision() int {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.rev
}

func (c *client) version() int {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.ver
}

func (c *client) stats() Stats {
	s := Stats{
		State:       c.state(),
		Revision:    c.revision(),
		Version:     c.version(),
		RequestsTx:  c.requestsTx.Load(),
		ResponsesRx: c.responsesRx.Load(),
		EventsRx:    c.eventsRx.Load(),
		ErrorsTotal: c.errorsTotal.Load(),
		Deaths:      c.deaths.Load(),
	}
	if ns := c.lastActivity.Load(); ns > 0 {
		s.LastActivity = time.Unix(0, ns)
	}
	return s
}

// close tears down subscriptions and fails anything still in flight.
// Safe to call more than once.
func (c *client) close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.reg.close()

	for _, topic := range []string{
		c.topics.HALStatus(),
		c.topics.HALResponses(c.clientID),
		c.topics.AllHALEvents(),
	} {
		if err := c.bus.Unsubscribe(topic); err != nil {
			c.logger.Debug("unsubscribe during close failed", "topic", topic, "error", err)
		}
	}

	c.failPending(ErrClosed)
	c.clearAllEventHandlers()
	c.setState(StateDisconnected)
	c.logger.Info("audio control bridge connection closed")
	return nil
}
