package client

import (
	"errors"
	"testing"

	"github.com/muurk/aprilaire/internal/protocol"
)

func TestWaiterTable(t *testing.T) {
	control := protocol.AttributeKey{Domain: protocol.DomainControl, Attribute: protocol.AttrControl}
	sensors := protocol.AttributeKey{Domain: protocol.DomainSensors, Attribute: protocol.AttrSensorsControlling}

	t.Run("resolve only matching key", func(t *testing.T) {
		tbl := newWaiterTable()
		w1 := tbl.register(control, 1)
		w2 := tbl.register(control, 1)
		other := tbl.register(sensors, 1)

		if n := tbl.resolve(control, protocol.Fields{protocol.FieldMode: 3}); n != 2 {
			t.Errorf("resolve() = %d, want 2", n)
		}
		for i, w := range []*waiter{w1, w2} {
			r := <-w.ch
			if mode, _ := r.fields.Int(protocol.FieldMode); mode != 3 || r.err != nil {
				t.Errorf("waiter %d = %+v, want mode 3", i, r)
			}
		}
		if tbl.count(control) != 0 {
			t.Errorf("control waiters remain after resolve")
		}
		if tbl.count(sensors) != 1 {
			t.Errorf("sensors waiter removed")
		}
		select {
		case r := <-other.ch:
			t.Errorf("unrelated waiter resolved with %+v", r)
		default:
		}
	})

	t.Run("resolve without waiters", func(t *testing.T) {
		tbl := newWaiterTable()
		if n := tbl.resolve(control, protocol.Fields{}); n != 0 {
			t.Errorf("resolve() = %d, want 0", n)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		tbl := newWaiterTable()
		w1 := tbl.register(control, 1)
		w2 := tbl.register(control, 1)
		tbl.cancel(w1)
		tbl.cancel(w1)
		if got := tbl.count(control); got != 1 {
			t.Errorf("count() = %d, want 1", got)
		}
		tbl.resolve(control, protocol.Fields{})
		if len(w1.ch) != 0 {
			t.Errorf("canceled waiter received a result")
		}
		if len(w2.ch) != 1 {
			t.Errorf("remaining waiter not resolved")
		}
	})

	t.Run("reject all", func(t *testing.T) {
		tbl := newWaiterTable()
		w1 := tbl.register(control, 1)
		w2 := tbl.register(sensors, 1)
		if n := tbl.rejectAll(ErrSessionClosed); n != 2 {
			t.Errorf("rejectAll() = %d, want 2", n)
		}
		for _, w := range []*waiter{w1, w2} {
			if r := <-w.ch; !errors.Is(r.err, ErrSessionClosed) {
				t.Errorf("err = %v, want %v", r.err, ErrSessionClosed)
			}
		}
		if n := tbl.rejectAll(ErrSessionClosed); n != 0 {
			t.Errorf("second rejectAll() = %d, want 0", n)
		}
	})

	t.Run("reject through generation", func(t *testing.T) {
		tbl := newWaiterTable()
		beforeConnect := tbl.register(control, 0)
		old := tbl.register(sensors, 1)
		current := tbl.register(control, 2)

		if n := tbl.rejectThrough(1, ErrSessionClosed); n != 2 {
			t.Errorf("rejectThrough() = %d, want 2", n)
		}
		for _, w := range []*waiter{beforeConnect, old} {
			if r := <-w.ch; !errors.Is(r.err, ErrSessionClosed) {
				t.Errorf("err = %v, want %v", r.err, ErrSessionClosed)
			}
		}
		if tbl.count(control) != 1 || tbl.count(sensors) != 0 {
			t.Errorf("count = %d/%d, want 1/0", tbl.count(control), tbl.count(sensors))
		}

		tbl.resolve(control, protocol.Fields{protocol.FieldMode: 2})
		if r := <-current.ch; r.err != nil {
			t.Errorf("newer waiter err = %v, want nil", r.err)
		}
	})
}
