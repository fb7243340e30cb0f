package client

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/capture"
	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/protocol"
)

const readBufferSize = 4096

// session binds one live socket to the client's queue, waiter table and
// subscriber. It is created for every successful connect and never reused.
type session struct {
	client *Client
	conn   net.Conn
	gen    uint64
	remote string
	log    *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(c *Client, conn net.Conn, gen uint64) *session {
	remote := ""
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return &session{
		client: c,
		conn:   conn,
		gen:    gen,
		remote: remote,
		log:    c.log.With(zap.Uint64("session", gen)),
		done:   make(chan struct{}),
	}
}

// start discards stale outbound messages and launches the read, flush and
// bootstrap goroutines. Must not block.
func (s *session) start() {
	if dropped := s.client.queue.clear(); dropped > 0 {
		s.log.Debug("Discarded stale queued messages", zap.Int("count", dropped))
	}
	logging.LogConnection(s.log, s.remote, "connected")

	s.client.spawn(s.readLoop)
	s.client.spawn(s.flushLoop)
	s.client.spawn(s.bootstrap)
}

// close tears the session down. Safe to call more than once.
func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *session) bootstrap() {
	timer := time.NewTimer(s.client.cfg.SettleDelay)
	defer timer.Stop()

	select {
	case <-s.done:
		return
	case <-timer.C:
	}

	s.client.Send(protocol.Bootstrap()...)
}

func (s *session) flushLoop() {
	ticker := time.NewTicker(s.client.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.flush()
		}
	}
}

// flush writes everything queued in FIFO order. Messages drained after the
// socket is gone are dropped.
func (s *session) flush() {
	packets := s.client.queue.drain()
	for _, p := range packets {
		if s.closed() {
			s.log.Debug("Dropping message, no connection", zap.Stringer("packet", p))
			continue
		}

		data, err := p.Serialize()
		if err != nil {
			s.log.Error("Failed to serialize message", zap.Stringer("packet", p), zap.Error(err))
			continue
		}

		logging.LogFrame(s.log, "sent", s.remote, data)
		s.client.record(capture.DirectionOut, s.remote, data)

		if _, err := s.conn.Write(data); err != nil {
			s.log.Warn("Failed to write message", zap.Stringer("packet", p), zap.Error(err))
			s.close()
		}
	}
}

func (s *session) readLoop() {
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.handle(append([]byte(nil), buf[:n]...))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.closed() {
				s.log.Warn("Read failed", zap.Error(err))
			}
			break
		}
	}
	s.lost()
}

// handle decodes one read and dispatches each message.
func (s *session) handle(data []byte) {
	logging.LogFrame(s.log, "received", s.remote, data)
	s.client.record(capture.DirectionIn, s.remote, data)

	for p := range protocol.Parse(data) {
		s.log.Debug("Received message", zap.Stringer("packet", p))

		if p.IsNack() {
			s.log.Error("Received NACK", zap.Uint8("attribute", p.NackAttribute))
			continue
		}

		if code, ok := p.Fields.Int(protocol.FieldError); ok && code != 0 {
			s.log.Error("Thermostat error", zap.Int("error", code))
		}

		// The device briefly reports mode 1 while applying a change; the
		// real value only arrives on a fresh read.
		if p.Action == protocol.ActionCOS && p.Domain == protocol.DomainControl && p.Attribute == protocol.AttrControl {
			if mode, ok := p.Fields.Int(protocol.FieldMode); ok && mode == 1 {
				s.log.Info("Re-reading control after COS with mode 1")
				s.client.Send(protocol.ReadControl())
				continue
			}
		}

		s.client.dispatch(Update{Domain: p.Domain, Attribute: p.Attribute, Fields: p.Fields})
	}
}

func (s *session) lost() {
	s.close()
	logging.LogConnection(s.log, s.remote, "lost")

	if n := s.client.waiters.rejectThrough(s.gen, ErrSessionClosed); n > 0 {
		s.log.Debug("Rejected pending waiters", zap.Int("count", n))
	}
	s.client.detach(s)
	s.client.dispatch(Update{
		Domain:    protocol.DomainNone,
		Attribute: 0,
		Fields:    protocol.Fields{protocol.FieldAvailable: false},
	})
	s.client.sup.connectionLost(s.gen)
}
