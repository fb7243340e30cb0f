package bridge

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/protocol"
)

type call struct {
	write     bool
	domain    protocol.Domain
	attribute byte
	fields    protocol.Fields
}

type fakeThermostat struct {
	mu    sync.Mutex
	calls []call
	seen  chan struct{}
}

func newFakeThermostat() *fakeThermostat {
	return &fakeThermostat{seen: make(chan struct{}, 16)}
}

func (f *fakeThermostat) Read(domain protocol.Domain, attribute byte) {
	f.record(call{domain: domain, attribute: attribute})
}

func (f *fakeThermostat) Write(domain protocol.Domain, attribute byte, fields protocol.Fields) {
	f.record(call{write: true, domain: domain, attribute: attribute, fields: fields})
}

func (f *fakeThermostat) record(c call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	f.seen <- struct{}{}
}

func (f *fakeThermostat) last(t *testing.T) call {
	t.Helper()
	select {
	case <-f.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("no command reached the thermostat")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func setup(t *testing.T) (*Bridge, *fakeThermostat, string) {
	t.Helper()
	thermo := newFakeThermostat()
	b := New(thermo)
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(func() {
		b.Close()
		srv.Close()
	})
	return b, thermo, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, b *Bridge, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Clients() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Clients() = %d, want %d", b.Clients(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHello(t *testing.T) {
	_, _, url := setup(t)
	conn := dial(t, url)

	msg := readMessage(t, conn)
	if msg.Type != TypeHello {
		t.Errorf("Type = %q, want %q", msg.Type, TypeHello)
	}
	if msg.ID == "" {
		t.Error("hello carries no client ID")
	}
}

func TestPublishBroadcast(t *testing.T) {
	b, _, url := setup(t)
	first := dial(t, url)
	second := dial(t, url)
	readMessage(t, first)
	readMessage(t, second)
	waitForClients(t, b, 2)

	b.Publish(client.Update{
		Domain:    protocol.DomainControl,
		Attribute: 1,
		Fields:    protocol.Fields{protocol.FieldMode: 2},
	})

	for i, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		if msg.Type != TypeUpdate || msg.Domain != "control" || msg.Attribute != 1 {
			t.Errorf("client %d got %+v, want control/1 update", i, msg)
		}
		if mode, _ := msg.Fields.Int(protocol.FieldMode); mode != 2 {
			t.Errorf("client %d mode = %d, want 2", i, mode)
		}
	}
}

func TestSnapshotForLateClient(t *testing.T) {
	b, _, url := setup(t)

	b.Publish(client.Update{Fields: protocol.Fields{"connected": true}})
	b.Publish(client.Update{Domain: protocol.DomainSensors, Attribute: 2, Fields: protocol.Fields{"indoor_temperature_controlling_sensor_value": 21.5}})
	b.Publish(client.Update{Domain: protocol.DomainControl, Attribute: 1, Fields: protocol.Fields{protocol.FieldMode: 1}})
	b.Publish(client.Update{Domain: protocol.DomainControl, Attribute: 1, Fields: protocol.Fields{protocol.FieldMode: 3}})

	conn := dial(t, url)
	readMessage(t, conn) // hello

	want := []struct {
		typ    string
		domain string
	}{
		{TypeStatus, ""},
		{TypeUpdate, "control"},
		{TypeUpdate, "sensors"},
	}
	for _, w := range want {
		msg := readMessage(t, conn)
		if msg.Type != w.typ || msg.Domain != w.domain {
			t.Fatalf("got %s/%s, want %s/%s", msg.Type, msg.Domain, w.typ, w.domain)
		}
		if w.domain == "control" {
			if mode, _ := msg.Fields.Int(protocol.FieldMode); mode != 3 {
				t.Errorf("snapshot mode = %d, want latest value 3", mode)
			}
		}
	}
}

func TestCommands(t *testing.T) {
	_, thermo, url := setup(t)
	conn := dial(t, url)
	readMessage(t, conn)

	if err := conn.WriteJSON(Message{Type: TypeRead, Domain: "sensors", Attribute: 2}); err != nil {
		t.Fatal(err)
	}
	got := thermo.last(t)
	if got.write || got.domain != protocol.DomainSensors || got.attribute != 2 {
		t.Errorf("read = %+v, want sensors/2 read", got)
	}

	if err := conn.WriteJSON(Message{Type: TypeWrite, Domain: "scheduling", Attribute: 4, Fields: protocol.Fields{protocol.FieldHold: 1}}); err != nil {
		t.Fatal(err)
	}
	got = thermo.last(t)
	if !got.write || got.domain != protocol.DomainScheduling || got.attribute != 4 {
		t.Errorf("write = %+v, want scheduling/4 write", got)
	}
	if hold, _ := got.fields.Int(protocol.FieldHold); hold != 1 {
		t.Errorf("hold = %d, want 1", hold)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"malformed", `{"type":`, "invalid message"},
		{"unknown domain", `{"type":"read","domain":"garage","attribute":1}`, "unknown domain"},
		{"unknown type", `{"type":"delete","domain":"control","attribute":1}`, "unknown message type"},
		{"attribute range", `{"type":"read","domain":"control","attribute":300}`, "out of range"},
		{"unknown attribute", `{"type":"write","domain":"control","attribute":99}`, "not in schema"},
		{"bad field", `{"type":"write","domain":"scheduling","attribute":4,"fields":{"hold":"soon"}}`, "hold"},
	}

	_, thermo, url := setup(t)
	conn := dial(t, url)
	readMessage(t, conn)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.raw)); err != nil {
				t.Fatal(err)
			}
			msg := readMessage(t, conn)
			if msg.Type != TypeError {
				t.Fatalf("Type = %q, want %q", msg.Type, TypeError)
			}
			if !strings.Contains(msg.Error, tt.want) {
				t.Errorf("Error = %q, want containing %q", msg.Error, tt.want)
			}
		})
	}

	thermo.mu.Lock()
	defer thermo.mu.Unlock()
	if len(thermo.calls) != 0 {
		t.Errorf("rejected commands reached the thermostat: %+v", thermo.calls)
	}
}

func TestClientLeaves(t *testing.T) {
	b, _, url := setup(t)
	conn := dial(t, url)
	readMessage(t, conn)
	waitForClients(t, b, 1)

	conn.Close()
	waitForClients(t, b, 0)

	// Publishing with nobody listening still updates the snapshot.
	b.Publish(client.Update{Domain: protocol.DomainControl, Attribute: 1, Fields: protocol.Fields{protocol.FieldMode: 1}})
	if got := len(b.backlogLocked()); got != 1 {
		t.Errorf("backlog = %d messages, want 1", got)
	}
}
