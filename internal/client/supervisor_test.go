package client

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

func newTestSupervisor(d *pipeDialer) (*supervisor, *atomic.Uint64) {
	var lastGen atomic.Uint64
	s := &supervisor{
		dial:          d.dial,
		addr:          "pipe",
		retry:         backoff.NewConstantBackOff(5 * time.Millisecond),
		retryInterval: 5 * time.Millisecond,
		livenessDelay: 5 * time.Millisecond,
		log:           zap.NewNop(),
		onConnect: func(conn net.Conn, gen uint64) {
			lastGen.Store(gen)
		},
		stopped: true,
	}
	return s, &lastGen
}

func TestSupervisorIgnoresStaleGeneration(t *testing.T) {
	d := newPipeDialer()
	s, gen := newTestSupervisor(d)
	s.start()
	defer func() {
		s.stop()
		s.wait()
	}()

	d.accept(t)
	waitFor(t, func() bool { return s.status().State == StateConnected })
	current := gen.Load()

	s.connectionLost(current - 1)
	time.Sleep(20 * time.Millisecond)
	if got := d.attempts.Load(); got != 1 {
		t.Fatalf("dial attempts after stale loss = %d, want 1", got)
	}

	s.connectionLost(current)
	d.accept(t)
	waitFor(t, func() bool { return gen.Load() == current+1 })
	if st := s.status(); st.State != StateConnected {
		t.Errorf("State = %v, want %v", st.State, StateConnected)
	}
}

func TestSupervisorStopDuringRetryWait(t *testing.T) {
	d := newPipeDialer()
	d.fail.Store(true)
	s, _ := newTestSupervisor(d)
	s.retry = backoff.NewConstantBackOff(time.Hour)
	s.start()

	waitFor(t, func() bool { return d.attempts.Load() == 1 })

	done := make(chan struct{})
	go func() {
		s.stop()
		s.wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("stop did not interrupt the retry wait")
	}

	st := s.status()
	if st.State != StateStopped || st.Reconnecting {
		t.Errorf("Status() = %+v, want stopped and not reconnecting", st)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "STOPPED"},
		{StateConnecting, "CONNECTING"},
		{StateConnected, "CONNECTED"},
		{StateAutoReconnecting, "AUTO_RECONNECTING"},
		{State(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSleepContext(t *testing.T) {
	if !sleepContext(context.Background(), time.Millisecond) {
		t.Error("sleepContext() = false, want true")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepContext(ctx, time.Hour) {
		t.Error("sleepContext() with canceled context = true, want false")
	}
}
