package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/capture"
	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/protocol"
)

// Defaults applied by New for zero-valued Config durations.
const (
	DefaultRetryInterval          = 10 * time.Second
	DefaultLivenessReconnectDelay = 10 * time.Second
	DefaultSettleDelay            = 2 * time.Second
	DefaultDialTimeout            = 10 * time.Second
)

// Update is delivered to the subscriber for every forwarded inbound message
// and for synthetic connectivity notifications. Connectivity notifications
// use DomainNone and attribute 0.
type Update struct {
	Domain    protocol.Domain
	Attribute byte
	Fields    protocol.Fields
}

// IsStatus reports whether u is a connectivity notification.
func (u Update) IsStatus() bool {
	return u.Domain == protocol.DomainNone && u.Attribute == 0
}

// FrameRecorder receives every raw frame buffer read from or written to the
// socket.
type FrameRecorder interface {
	Record(dir capture.Direction, remote string, data []byte) error
}

// Config configures a Client.
type Config struct {
	Host string
	Port int // Defaults to protocol.DefaultPort

	// OnUpdate is called synchronously from the connection goroutines for
	// every forwarded message and connectivity change. It must not block for
	// long and must not call Stop.
	OnUpdate func(Update)

	// Logger receives client logs. Defaults to the global logger named "client".
	Logger *zap.Logger

	// ReconnectInterval forces a fresh connection after this long connected.
	// Zero disables the liveness reconnect.
	ReconnectInterval time.Duration

	// RetryInterval is the wait between failed connect attempts and before
	// reconnecting after a dropped connection.
	RetryInterval time.Duration

	// LivenessReconnectDelay is the pause between dropping the socket and
	// redialing on a liveness reconnect.
	LivenessReconnectDelay time.Duration

	FlushInterval time.Duration // Defaults to protocol.QueueFrequency
	SettleDelay   time.Duration // Wait after connect before the bootstrap sequence
	DialTimeout   time.Duration

	// Dial overrides how the socket is opened. Host and Port are ignored
	// when set.
	Dial DialFunc

	// Recorder, when set, captures raw frames.
	Recorder FrameRecorder
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = protocol.DefaultPort
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.LivenessReconnectDelay <= 0 {
		c.LivenessReconnectDelay = DefaultLivenessReconnectDelay
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = protocol.QueueFrequency
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.Logger == nil {
		c.Logger = logging.Named("client")
	}
}

// Address returns host:port.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Client maintains a single connection to one thermostat. Commands are
// queued and written on the next flush; inbound messages are delivered to
// OnUpdate and to any AwaitResponse callers.
type Client struct {
	cfg     Config
	log     *zap.Logger
	queue   *outboundQueue
	waiters *waiterTable
	sup     *supervisor
	seq     atomic.Uint32
	started atomic.Bool

	mu      sync.Mutex
	session *session

	wg sync.WaitGroup
}

// New creates a client. It does not connect until Start.
func New(cfg Config) (*Client, error) {
	if cfg.Dial == nil && cfg.Host == "" {
		return nil, errors.New("host is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	cfg.applyDefaults()

	c := &Client{
		cfg:     cfg,
		log:     cfg.Logger,
		queue:   &outboundQueue{},
		waiters: newWaiterTable(),
	}

	dial := cfg.Dial
	if dial == nil {
		addr := cfg.Address()
		dialer := &net.Dialer{Timeout: cfg.DialTimeout}
		dial = func(ctx context.Context) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp", addr)
		}
	}

	c.sup = &supervisor{
		dial:              dial,
		addr:              cfg.Address(),
		retry:             backoff.NewConstantBackOff(cfg.RetryInterval),
		retryInterval:     cfg.RetryInterval,
		reconnectInterval: cfg.ReconnectInterval,
		livenessDelay:     cfg.LivenessReconnectDelay,
		log:               c.log,
		onConnect:         c.attach,
		onDisconnect:      c.teardown,
		onStatus:          c.statusChanged,
		stopped:           true,
	}

	return c, nil
}

// Start begins connecting in the background. Calling Start on a running
// client has no effect.
func (c *Client) Start() {
	c.log.Info("Starting client", zap.String("addr", c.cfg.Address()))
	c.started.Store(true)
	c.sup.start()
}

// Stop disconnects, suppresses further reconnects and waits for background
// goroutines to exit.
func (c *Client) Stop() {
	if n := c.waiters.rejectAll(ErrClientStopped); n > 0 {
		c.log.Debug("Rejected pending waiters", zap.Int("count", n))
	}
	c.sup.stop()
	c.sup.wait()
	c.wg.Wait()
	c.log.Info("Client stopped")
}

// Status returns the current connectivity state.
func (c *Client) Status() Status {
	return c.sup.status()
}

// Send queues packets for the next flush, stamping each with the next
// sequence number.
func (c *Client) Send(packets ...*protocol.Packet) {
	for _, p := range packets {
		p.Sequence = c.nextSequence()
		c.log.Debug("Queuing message",
			zap.Uint8("sequence", p.Sequence),
			zap.Stringer("action", p.Action),
			zap.Stringer("domain", p.Domain),
			zap.Uint8("attribute", p.Attribute),
		)
	}
	c.queue.push(packets...)
}

// Write queues a write of fields to domain/attribute.
func (c *Client) Write(domain protocol.Domain, attribute byte, fields protocol.Fields) {
	c.Send(protocol.Write(domain, attribute, fields))
}

// Read queues a read request for domain/attribute.
func (c *Client) Read(domain protocol.Domain, attribute byte) {
	c.Send(protocol.ReadRequest(domain, attribute))
}

// AwaitResponse blocks until a message for domain/attribute is dispatched,
// timeout elapses (ErrNoResponse), the connection drops (ErrSessionClosed) or
// ctx is done. A zero timeout waits on ctx alone. It fails fast with
// ErrNotStarted or ErrClientStopped when the client is not running.
func (c *Client) AwaitResponse(ctx context.Context, domain protocol.Domain, attribute byte, timeout time.Duration) (protocol.Fields, error) {
	if err := c.checkRunning(); err != nil {
		return nil, err
	}
	w := c.waiters.register(protocol.AttributeKey{Domain: domain, Attribute: attribute}, c.sup.generation())
	return c.wait(ctx, w, timeout)
}

// Request registers a waiter for p's domain and attribute, sends p and waits
// for the answer. Registering first guarantees a fast reply is not missed.
func (c *Client) Request(ctx context.Context, p *protocol.Packet, timeout time.Duration) (protocol.Fields, error) {
	if err := c.checkRunning(); err != nil {
		return nil, err
	}
	w := c.waiters.register(p.Key(), c.sup.generation())
	c.Send(p)
	return c.wait(ctx, w, timeout)
}

func (c *Client) wait(ctx context.Context, w *waiter, timeout time.Duration) (protocol.Fields, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case r := <-w.ch:
		return r.fields, r.err
	case <-expired:
		c.waiters.cancel(w)
		c.log.Error("Timed out waiting for response",
			zap.Duration("timeout", timeout),
			zap.Stringer("domain", w.key.Domain),
			zap.Uint8("attribute", w.key.Attribute),
		)
		return nil, ErrNoResponse
	case <-ctx.Done():
		c.waiters.cancel(w)
		return nil, ctx.Err()
	}
}

func (c *Client) checkRunning() error {
	if !c.started.Load() {
		return ErrNotStarted
	}
	if c.sup.status().Stopped {
		return ErrClientStopped
	}
	return nil
}

func (c *Client) nextSequence() byte {
	for {
		old := c.seq.Load()
		next := (old + 1) % protocol.SequenceModulo
		if c.seq.CompareAndSwap(old, next) {
			return byte(next)
		}
	}
}

// dispatch forwards an update to the subscriber and resolves waiters.
func (c *Client) dispatch(u Update) {
	if c.cfg.OnUpdate != nil {
		c.cfg.OnUpdate(u)
	}
	if u.Domain == protocol.DomainNone || u.Attribute == 0 {
		return
	}
	if n := c.waiters.resolve(protocol.AttributeKey{Domain: u.Domain, Attribute: u.Attribute}, u.Fields); n > 0 {
		c.log.Debug("Resolved waiters",
			zap.Stringer("domain", u.Domain),
			zap.Uint8("attribute", u.Attribute),
			zap.Int("count", n),
		)
	}
}

func (c *Client) statusChanged(st Status) {
	c.log.Debug("Connection state changed",
		zap.Stringer("state", st.State),
		zap.Bool("connected", st.Connected),
		zap.Bool("stopped", st.Stopped),
		zap.Bool("reconnecting", st.Reconnecting),
	)
	if c.cfg.OnUpdate != nil {
		c.cfg.OnUpdate(Update{Domain: protocol.DomainNone, Attribute: 0, Fields: st.Fields()})
	}
}

// attach is called by the supervisor with each new socket.
func (c *Client) attach(conn net.Conn, gen uint64) {
	s := newSession(c, conn, gen)
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	s.start()
}

// teardown closes the current session, if any.
func (c *Client) teardown() {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()
	if s != nil {
		s.close()
	}
}

// detach forgets s if it is still the current session.
func (c *Client) detach(s *session) {
	c.mu.Lock()
	if c.session == s {
		c.session = nil
	}
	c.mu.Unlock()
}

func (c *Client) spawn(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Client) record(dir capture.Direction, remote string, data []byte) {
	if c.cfg.Recorder == nil {
		return
	}
	if err := c.cfg.Recorder.Record(dir, remote, data); err != nil {
		c.log.Warn("Failed to record frame", zap.Error(err))
	}
}
