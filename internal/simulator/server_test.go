package simulator

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/protocol"
)

func startSimulator(t *testing.T) *Server {
	t.Helper()
	s := New(Config{
		Host:           "127.0.0.1",
		FlushInterval:  5 * time.Millisecond,
		StatusInterval: time.Hour,
	})
	s.config.Port = 0 // ephemeral
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go s.Serve()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

func newSimClient(t *testing.T, s *Server, onUpdate func(client.Update)) *client.Client {
	t.Helper()
	addr := s.Addr().(*net.TCPAddr)
	c, err := client.New(client.Config{
		Host:          "127.0.0.1",
		Port:          addr.Port,
		OnUpdate:      onUpdate,
		FlushInterval: 5 * time.Millisecond,
		SettleDelay:   10 * time.Millisecond,
		RetryInterval: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	c.Start()
	t.Cleanup(c.Stop)
	return c
}

func TestServerRequestResponse(t *testing.T) {
	s := startSimulator(t)
	c := newSimClient(t, s, nil)

	fields, err := c.Request(context.Background(), protocol.ReadMACAddress(), 2*time.Second)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if mac, _ := fields.Text(protocol.FieldMACAddress); mac != "1:2:3:4:5:6" {
		t.Errorf("mac_address = %q, want %q", mac, "1:2:3:4:5:6")
	}

	fields, err = c.Request(context.Background(), protocol.ReadThermostatName(), 2*time.Second)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if name, _ := fields.Text(protocol.FieldName); name != "Mock" {
		t.Errorf("name = %q, want %q", name, "Mock")
	}

	if n := s.GetActiveConnections(); n != 1 {
		t.Errorf("GetActiveConnections() = %d, want 1", n)
	}
}

func TestServerModeChangeAfterSync(t *testing.T) {
	s := startSimulator(t)

	modes := make(chan int, 64)
	c := newSimClient(t, s, func(u client.Update) {
		if u.Domain == protocol.DomainControl && u.Attribute == protocol.AttrControl {
			if mode, ok := u.Fields.Int(protocol.FieldMode); ok {
				modes <- mode
			}
		}
	})

	// The bootstrap sync makes the simulator send mode 1, which the client
	// must swallow and resolve by re-reading. Mode 1 never reaches us.
	deadline := time.After(2 * time.Second)
	for seen := 0; seen < 2; {
		select {
		case mode := <-modes:
			if mode == 1 {
				t.Fatal("transient mode 1 forwarded to subscriber")
			}
			seen++
		case <-deadline:
			t.Fatalf("saw %d control updates, want at least 2", seen)
		}
	}

	c.UpdateMode(3)
	deadline = time.After(2 * time.Second)
	for {
		select {
		case mode := <-modes:
			if mode == 3 {
				return
			}
		case <-deadline:
			t.Fatal("mode change not reported")
		}
	}
}

func TestServerShutdownClosesConnections(t *testing.T) {
	s := New(Config{Host: "127.0.0.1", FlushInterval: 5 * time.Millisecond})
	s.config.Port = 0
	if err := s.Listen(); err != nil {
		t.Fatal(err)
	}
	go s.Serve()

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.GetActiveConnections() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection not tracked")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Read(make([]byte, 1)); err == nil {
		t.Error("connection still open after Shutdown")
	}
}
