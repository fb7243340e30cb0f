package simulator

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/protocol"
)

// connection drives one client socket: inbound frames are applied to the
// device, responses are queued and written every flush interval.
type connection struct {
	conn   net.Conn
	remote string
	device *Device
	config Config
	log    *zap.Logger

	mu    sync.Mutex
	queue []*protocol.Packet
	seq   byte

	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(conn net.Conn, device *Device, config Config, log *zap.Logger) *connection {
	remote := conn.RemoteAddr().String()
	return &connection{
		conn:   conn,
		remote: remote,
		device: device,
		config: config,
		log:    log.With(zap.String("remote_addr", remote)),
		done:   make(chan struct{}),
	}
}

func (c *connection) run() {
	logging.LogConnection(c.log, c.remote, "connection_accepted")
	defer logging.LogConnection(c.log, c.remote, "connection_closed")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.flushLoop()
	}()
	go func() {
		defer wg.Done()
		c.statusLoop()
	}()

	c.readLoop()
	c.close()
	wg.Wait()
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *connection) enqueue(packets ...*protocol.Packet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range packets {
		c.seq = (c.seq + 1) % protocol.SequenceModulo
		p.Sequence = c.seq
		c.queue = append(c.queue, p)
	}
}

func (c *connection) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			data := buf[:n]
			logging.LogFrame(c.log, "received", c.remote, data)
			for p := range protocol.Parse(data) {
				c.log.Debug("Received message", zap.Stringer("packet", p))
				c.enqueue(c.device.Handle(p)...)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.log.Info("Connection closed or error reading", zap.Error(err))
			}
			return
		}
	}
}

func (c *connection) flushLoop() {
	ticker := time.NewTicker(c.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.flush()
		}
	}
}

func (c *connection) flush() {
	c.mu.Lock()
	packets := c.queue
	c.queue = nil
	c.mu.Unlock()

	for _, p := range packets {
		data, err := p.Serialize()
		if err != nil {
			c.log.Error("Failed to serialize message", zap.Stringer("packet", p), zap.Error(err))
			continue
		}
		logging.LogFrame(c.log, "sent", c.remote, data)
		if _, err := c.conn.Write(data); err != nil {
			c.log.Info("Write failed", zap.Error(err))
			c.close()
			return
		}
	}
}

func (c *connection) statusLoop() {
	ticker := time.NewTicker(c.config.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.enqueue(c.device.StatusBurst()...)
		}
	}
}
