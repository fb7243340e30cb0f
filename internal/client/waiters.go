package client

import (
	"sync"

	"github.com/muurk/aprilaire/internal/protocol"
)

type result struct {
	fields protocol.Fields
	err    error
}

// waiter is a one-shot result slot. It is removed from the table exactly once
// under the table lock, so at most one result is ever sent on ch. gen is the
// connection generation current when it was registered.
type waiter struct {
	key protocol.AttributeKey
	gen uint64
	ch  chan result
}

// waiterTable correlates inbound messages with callers awaiting a specific
// domain and attribute.
type waiterTable struct {
	mu      sync.Mutex
	pending map[protocol.AttributeKey][]*waiter
}

func newWaiterTable() *waiterTable {
	return &waiterTable{pending: make(map[protocol.AttributeKey][]*waiter)}
}

func (t *waiterTable) register(key protocol.AttributeKey, gen uint64) *waiter {
	w := &waiter{key: key, gen: gen, ch: make(chan result, 1)}
	t.mu.Lock()
	t.pending[key] = append(t.pending[key], w)
	t.mu.Unlock()
	return w
}

// resolve hands fields to every waiter for key and clears the key. Each
// waiter gets its own copy.
func (t *waiterTable) resolve(key protocol.AttributeKey, fields protocol.Fields) int {
	t.mu.Lock()
	waiters := t.pending[key]
	delete(t.pending, key)
	t.mu.Unlock()

	for _, w := range waiters {
		w.ch <- result{fields: fields.Clone()}
	}
	return len(waiters)
}

// cancel removes w if it is still pending. Resolving or rejecting a waiter
// that was already removed is not possible, so a late cancel is a no-op.
func (t *waiterTable) cancel(w *waiter) {
	t.mu.Lock()
	defer t.mu.Unlock()

	list := t.pending[w.key]
	for i, candidate := range list {
		if candidate == w {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(t.pending, w.key)
	} else {
		t.pending[w.key] = list
	}
}

// rejectAll fails every pending waiter with err.
func (t *waiterTable) rejectAll(err error) int {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[protocol.AttributeKey][]*waiter)
	t.mu.Unlock()

	n := 0
	for _, list := range pending {
		for _, w := range list {
			w.ch <- result{err: err}
			n++
		}
	}
	return n
}

// rejectThrough fails the waiters registered at or before generation gen.
// Waiters that belong to a newer connection stay pending.
func (t *waiterTable) rejectThrough(gen uint64, err error) int {
	t.mu.Lock()
	var rejected []*waiter
	for key, list := range t.pending {
		kept := list[:0:0]
		for _, w := range list {
			if w.gen <= gen {
				rejected = append(rejected, w)
			} else {
				kept = append(kept, w)
			}
		}
		if len(kept) == 0 {
			delete(t.pending, key)
		} else {
			t.pending[key] = kept
		}
	}
	t.mu.Unlock()

	for _, w := range rejected {
		w.ch <- result{err: err}
	}
	return len(rejected)
}

func (t *waiterTable) count(key protocol.AttributeKey) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending[key])
}
