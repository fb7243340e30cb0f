package client

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/protocol"
)

// State is the connection lifecycle state.
type State uint8

const (
	// StateStopped indicates the client is not trying to connect.
	StateStopped State = iota

	// StateConnecting indicates a connect attempt (or retry wait) is in progress.
	StateConnecting

	// StateConnected indicates a live socket.
	StateConnected

	// StateAutoReconnecting indicates a scheduled liveness reconnect is in
	// progress on an otherwise healthy link.
	StateAutoReconnecting
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateAutoReconnecting:
		return "AUTO_RECONNECTING"
	default:
		return "UNKNOWN"
	}
}

// Status is the connectivity tuple surfaced to subscribers.
type Status struct {
	State        State
	Connected    bool
	Stopped      bool
	Reconnecting bool
}

// Fields renders the status as the payload of a connectivity notification.
func (s Status) Fields() protocol.Fields {
	return protocol.Fields{
		protocol.FieldConnected:    s.Connected,
		protocol.FieldStopped:      s.Stopped,
		protocol.FieldReconnecting: s.Reconnecting,
	}
}

// DialFunc opens the transport to the thermostat.
type DialFunc func(ctx context.Context) (net.Conn, error)

// supervisor owns connect, disconnect, retry and liveness refresh. It knows
// nothing about message content; onConnect hands each new socket to the
// session layer and onDisconnect tears the current one down.
type supervisor struct {
	dial              DialFunc
	addr              string
	retry             backoff.BackOff
	retryInterval     time.Duration
	reconnectInterval time.Duration
	livenessDelay     time.Duration
	log               *zap.Logger

	onConnect    func(conn net.Conn, gen uint64)
	onDisconnect func()
	onStatus     func(Status)

	mu           sync.Mutex
	connected    bool
	stopped      bool
	reconnecting bool
	auto         bool
	gen          uint64
	liveness     chan struct{} // closed to cut the liveness wait short
	ctx          context.Context
	cancel       context.CancelFunc

	wg sync.WaitGroup
}

func (s *supervisor) status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *supervisor) statusLocked() Status {
	st := Status{Connected: s.connected, Stopped: s.stopped, Reconnecting: s.reconnecting}
	switch {
	case s.stopped:
		st.State = StateStopped
	case s.connected:
		st.State = StateConnected
	case s.reconnecting && s.auto:
		st.State = StateAutoReconnecting
	default:
		st.State = StateConnecting
	}
	return st
}

// generation returns the number of the current or most recent connection.
func (s *supervisor) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *supervisor) notify(st Status) {
	if s.onStatus != nil {
		s.onStatus(st)
	}
}

// goLocked runs fn on a tracked goroutine. Callers hold s.mu and have checked
// that the supervisor is not stopped, so wait never races with Add.
func (s *supervisor) goLocked(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *supervisor) start() {
	s.mu.Lock()
	if !s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = false
	s.ctx, s.cancel = context.WithCancel(context.Background())
	st := s.statusLocked()
	s.goLocked(func() { s.reconnect(0, false) })
	s.mu.Unlock()

	s.notify(st)
}

func (s *supervisor) stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.cancel()
	st := s.statusLocked()
	s.mu.Unlock()

	s.notify(st)
	s.disconnect()
}

// wait blocks until every supervisor goroutine has exited. Only meaningful
// after stop.
func (s *supervisor) wait() {
	s.wg.Wait()
}

func (s *supervisor) disconnect() {
	s.mu.Lock()
	if s.liveness != nil {
		close(s.liveness)
		s.liveness = nil
	}
	s.connected = false
	st := s.statusLocked()
	s.mu.Unlock()

	s.notify(st)
	if s.onDisconnect != nil {
		s.onDisconnect()
	}
}

// reconnect tears down any current connection, waits, then dials until it
// succeeds or the supervisor is stopped. A call while another reconnect is in
// flight is a no-op.
func (s *supervisor) reconnect(wait time.Duration, auto bool) {
	s.mu.Lock()
	if s.reconnecting || s.stopped {
		s.mu.Unlock()
		return
	}
	s.reconnecting = true
	s.auto = auto
	ctx := s.ctx
	st := s.statusLocked()
	s.mu.Unlock()

	s.notify(st)
	s.disconnect()

	if wait > 0 && !sleepContext(ctx, wait) {
		s.abandon()
		return
	}

	s.retry.Reset()
	for attempt := 1; ; attempt++ {
		conn, err := s.dial(ctx)
		if err == nil {
			if s.established(ctx, conn) {
				return
			}
			conn.Close()
			s.abandon()
			return
		}

		if ctx.Err() != nil {
			s.abandon()
			return
		}

		delay := s.retry.NextBackOff()
		if delay == backoff.Stop {
			delay = s.retryInterval
		}
		ce := ClassifyConnectError(err, s.addr)
		s.log.Error("Failed to connect to thermostat",
			zap.String("addr", s.addr),
			zap.Int("attempt", attempt),
			zap.String("type", ce.Type.String()),
			zap.Bool("retryable", ce.Retryable),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)

		if !sleepContext(ctx, delay) {
			s.abandon()
			return
		}
	}
}

// established records a new live connection and hands it to the session
// layer. It reports false if the supervisor was stopped meanwhile.
func (s *supervisor) established(ctx context.Context, conn net.Conn) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.connected = true
	s.reconnecting = false
	s.auto = false
	s.gen++
	s.onConnect(conn, s.gen)
	if s.reconnectInterval > 0 {
		live := make(chan struct{})
		s.liveness = live
		s.goLocked(func() { s.livenessLoop(ctx, live) })
	}
	st := s.statusLocked()
	s.mu.Unlock()

	s.notify(st)
	return true
}

func (s *supervisor) abandon() {
	s.mu.Lock()
	s.reconnecting = false
	s.auto = false
	s.mu.Unlock()
}

// connectionLost is called by the session layer when the socket for
// generation gen closes. Closes the supervisor initiated are ignored.
func (s *supervisor) connectionLost(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.reconnecting || !s.connected || gen != s.gen {
		return
	}
	s.goLocked(func() { s.reconnect(s.retryInterval, false) })
}

// livenessLoop forces a reconnect after reconnectInterval unless live is
// closed first.
func (s *supervisor) livenessLoop(ctx context.Context, live <-chan struct{}) {
	timer := time.NewTimer(s.reconnectInterval)
	defer timer.Stop()

	select {
	case <-live:
		return
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	s.log.Info("Refreshing thermostat connection",
		zap.Duration("interval", s.reconnectInterval),
		zap.Duration("delay", s.livenessDelay),
	)
	s.reconnect(s.livenessDelay, true)
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
