package simulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/discovery"
	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/protocol"
)

// DefaultStatusInterval is how often a connected client receives the full
// status burst unprompted.
const DefaultStatusInterval = 30 * time.Second

// Config holds the simulator configuration
type Config struct {
	Host           string
	Port           int
	Identity       Identity
	StatusInterval time.Duration // Defaults to DefaultStatusInterval
	FlushInterval  time.Duration // Defaults to protocol.QueueFrequency

	// Advertise registers the simulator over mDNS under Instance.
	Advertise bool
	Instance  string
}

// Server is a TCP listener that behaves like a thermostat's automation port.
// Every connection gets its own device state.
type Server struct {
	config      Config
	log         *zap.Logger
	listener    net.Listener
	advert      *discovery.Advertisement
	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*connection
}

// New creates a new Server instance
func New(config Config) *Server {
	if config.Port == 0 {
		config.Port = protocol.DefaultPort
	}
	if config.StatusInterval <= 0 {
		config.StatusInterval = DefaultStatusInterval
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = protocol.QueueFrequency
	}
	if config.Identity == (Identity{}) {
		config.Identity = DefaultIdentity
	}
	if config.Instance == "" {
		config.Instance = "Aprilaire " + config.Identity.Name
	}

	return &Server{
		config:      config,
		log:         logging.Named("simulator"),
		activeConns: make(map[string]*connection),
	}
}

// Listen binds the listening socket and, if enabled, starts advertising.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.log.Info("Simulator listening for connections",
		zap.String("addr", listener.Addr().String()),
		zap.String("name", s.config.Identity.Name),
		zap.String("mac", s.config.Identity.MAC),
		zap.Duration("status_interval", s.config.StatusInterval),
	)

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		advert, err := discovery.Register(s.config.Instance, port, s.config.Identity.MAC, s.config.Identity.Name, s.config.Identity.Model)
		if err != nil {
			_ = listener.Close()
			return err
		}
		s.advert = advert
	}
	return nil
}

// Addr returns the bound address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start listens and serves until SIGINT or SIGTERM.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-sigChan:
		s.log.Info("Shutdown signal received, stopping simulator...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	c := newConnection(conn, NewDevice(s.config.Identity), s.config, s.log)

	s.mu.Lock()
	s.activeConns[c.remote] = c
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.activeConns, c.remote)
		s.mu.Unlock()
	}()

	c.run()
}

// Shutdown stops advertising, closes the listener and every connection, and
// waits for connection goroutines to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down simulator...")

	s.advert.Shutdown()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Error("Error closing listener", zap.Error(err))
		}
	}

	s.mu.Lock()
	for addr, c := range s.activeConns {
		s.log.Info("Closing active connection", zap.String("remote_addr", addr))
		c.close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("All connections closed gracefully")
	case <-ctx.Done():
		s.log.Warn("Shutdown timeout, forcing close")
		return ctx.Err()
	case <-time.After(10 * time.Second):
		s.log.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()
	return nil
}

// GetActiveConnections returns the number of active connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
