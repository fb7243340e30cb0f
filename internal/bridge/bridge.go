package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Messages buffered per browser before it is considered too slow
	sendBuffer = 64
)

// Message types exchanged over the socket.
const (
	TypeHello  = "hello"  // server: first message, carries the client ID
	TypeUpdate = "update" // server: a thermostat message
	TypeStatus = "status" // server: connectivity change
	TypeRead   = "read"   // client: queue a read request
	TypeWrite  = "write"  // client: queue a write
	TypeError  = "error"  // server: the last command was rejected
)

// Message is the JSON envelope for both directions.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Domain    string          `json:"domain,omitempty"`
	Attribute int             `json:"attribute,omitempty"`
	Fields    protocol.Fields `json:"fields,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Thermostat is the subset of the client the bridge drives.
type Thermostat interface {
	Read(domain protocol.Domain, attribute byte)
	Write(domain protocol.Domain, attribute byte, fields protocol.Fields)
}

// Bridge fans thermostat updates out to browser WebSocket clients and turns
// their JSON commands into queued protocol messages. New clients receive the
// latest value of every attribute seen so far.
type Bridge struct {
	thermostat Thermostat
	upgrader   websocket.Upgrader
	log        *zap.Logger

	mu       sync.Mutex
	clients  map[*peer]struct{}
	snapshot map[protocol.AttributeKey]Message
	status   *Message

	wg sync.WaitGroup
}

type peer struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.closed)
		_ = p.conn.Close()
	})
}

// New creates a bridge driving t.
func New(t Thermostat) *Bridge {
	return &Bridge{
		thermostat: t,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:      logging.Named("bridge"),
		clients:  make(map[*peer]struct{}),
		snapshot: make(map[protocol.AttributeKey]Message),
	}
}

// Publish forwards a client update to every connected browser. It is meant
// to be used as, or called from, client.Config.OnUpdate.
func (b *Bridge) Publish(u client.Update) {
	msg := Message{Type: TypeUpdate, Domain: u.Domain.String(), Attribute: int(u.Attribute), Fields: u.Fields}
	if u.IsStatus() {
		msg = Message{Type: TypeStatus, Fields: u.Fields}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("Failed to encode update", zap.Error(err))
		return
	}

	b.mu.Lock()
	if u.IsStatus() {
		b.status = &msg
	} else {
		b.snapshot[protocol.AttributeKey{Domain: u.Domain, Attribute: u.Attribute}] = msg
	}
	peers := make([]*peer, 0, len(b.clients))
	for p := range b.clients {
		peers = append(peers, p)
	}
	b.mu.Unlock()

	for _, p := range peers {
		b.deliver(p, data)
	}
}

// deliver queues data for p, dropping p if it has fallen behind.
func (b *Bridge) deliver(p *peer, data []byte) {
	select {
	case p.send <- data:
	case <-p.closed:
	default:
		b.log.Warn("Dropping slow client", zap.String("client", p.id))
		b.remove(p)
	}
}

// Clients returns the number of connected browsers.
func (b *Bridge) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Handler returns the HTTP handler serving the socket at /ws.
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.ServeHTTP)
	return mux
}

// ServeHTTP upgrades the request and serves one browser until it leaves.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("WebSocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	p := &peer{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
	logging.LogConnection(b.log, conn.RemoteAddr().String(), "websocket_connected")

	hello, _ := json.Marshal(Message{Type: TypeHello, ID: p.id})
	p.send <- hello

	b.mu.Lock()
	for _, msg := range b.backlogLocked() {
		data, _ := json.Marshal(msg)
		select {
		case p.send <- data:
		default:
		}
	}
	b.clients[p] = struct{}{}
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.writePump(p)
	}()
	b.readPump(p)
}

func (b *Bridge) backlogLocked() []Message {
	out := make([]Message, 0, len(b.snapshot)+1)
	if b.status != nil {
		out = append(out, *b.status)
	}
	for _, key := range protocol.Attributes() {
		if msg, ok := b.snapshot[key]; ok {
			out = append(out, msg)
		}
	}
	return out
}

func (b *Bridge) remove(p *peer) {
	b.mu.Lock()
	_, ok := b.clients[p]
	delete(b.clients, p)
	b.mu.Unlock()

	p.close()
	if ok {
		logging.LogConnection(b.log, p.conn.RemoteAddr().String(), "websocket_closed")
	}
}

func (b *Bridge) readPump(p *peer) {
	defer b.remove(p)

	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.log.Info("WebSocket read failed", zap.String("client", p.id), zap.Error(err))
			}
			return
		}
		logging.LogWebSocketMessage(b.log, p.conn.RemoteAddr().String(), "received", msgType, data)

		if err := b.handleCommand(data); err != nil {
			reply, _ := json.Marshal(Message{Type: TypeError, Error: err.Error()})
			b.deliver(p, reply)
		}
	}
}

func (b *Bridge) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-p.closed:
			return
		case data := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				b.remove(p)
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				b.remove(p)
				return
			}
		}
	}
}

func (b *Bridge) handleCommand(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	domain, err := protocol.ParseDomain(msg.Domain)
	if err != nil {
		return err
	}
	if msg.Attribute < 0 || msg.Attribute > 255 {
		return fmt.Errorf("attribute %d out of range", msg.Attribute)
	}
	attr := byte(msg.Attribute)

	switch msg.Type {
	case TypeRead:
		b.thermostat.Read(domain, attr)
	case TypeWrite:
		if _, ok := protocol.LookupSchema(protocol.ActionWrite, domain, attr); !ok {
			return fmt.Errorf("%w: %s/%d", protocol.ErrUnknownAttribute, domain, attr)
		}
		// Fail here rather than silently in the flush loop.
		probe := protocol.Write(domain, attr, msg.Fields)
		if _, err := probe.Serialize(); err != nil {
			return err
		}
		b.thermostat.Write(domain, attr, msg.Fields)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}

	b.log.Debug("Queued command from browser",
		zap.String("type", msg.Type),
		zap.Stringer("domain", domain),
		zap.Uint8("attribute", attr),
	)
	return nil
}

// Close disconnects every browser and waits for their writers to exit.
func (b *Bridge) Close() {
	b.mu.Lock()
	peers := make([]*peer, 0, len(b.clients))
	for p := range b.clients {
		peers = append(peers, p)
	}
	b.mu.Unlock()

	for _, p := range peers {
		b.remove(p)
	}
	b.wg.Wait()
}
