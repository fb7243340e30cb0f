package client

import (
	"sync"

	"github.com/muurk/aprilaire/internal/protocol"
)

// outboundQueue is an unbounded FIFO of messages waiting for the next flush.
type outboundQueue struct {
	mu    sync.Mutex
	items []*protocol.Packet
}

func (q *outboundQueue) push(packets ...*protocol.Packet) {
	q.mu.Lock()
	q.items = append(q.items, packets...)
	q.mu.Unlock()
}

// drain removes and returns everything queued, oldest first.
func (q *outboundQueue) drain() []*protocol.Packet {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// clear discards everything queued and reports how many were dropped.
func (q *outboundQueue) clear() int {
	return len(q.drain())
}

func (q *outboundQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
