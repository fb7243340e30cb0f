package client

import (
	"testing"

	"github.com/muurk/aprilaire/internal/protocol"
)

func TestOutboundQueue(t *testing.T) {
	q := &outboundQueue{}
	a, b, c := protocol.ReadControl(), protocol.ReadSensors(), protocol.Sync()

	q.push(a)
	q.push(b, c)
	if got := q.len(); got != 3 {
		t.Errorf("len() = %d, want 3", got)
	}

	got := q.drain()
	want := []*protocol.Packet{a, b, c}
	if len(got) != len(want) {
		t.Fatalf("drain() returned %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drain()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if q.len() != 0 {
		t.Errorf("len() after drain = %d, want 0", q.len())
	}

	q.push(a, b)
	if n := q.clear(); n != 2 {
		t.Errorf("clear() = %d, want 2", n)
	}
	if got := q.drain(); len(got) != 0 {
		t.Errorf("drain() after clear = %v, want empty", got)
	}
}
