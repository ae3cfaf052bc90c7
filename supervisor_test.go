package slcand

import (
	"io"
	"log/slog"
	"syscall"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLifecycleStateString(t *testing.T) {
	tests := []struct {
		state LifecycleState
		want  string
	}{
		{StateInitializing, "initializing"},
		{StateConfiguring, "configuring"},
		{StateRunning, "running"},
		{StateShuttingDown, "shutting down"},
		{StateTerminated, "terminated"},
		{LifecycleState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSupervisorSignalShutdown(t *testing.T) {
	s := NewSupervisor(testLogger(), "/dev/ttyUSB0")
	s.interval = time.Millisecond

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	s.handleSignal(syscall.SIGTERM)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after signal")
	}
	if got, want := s.ExitCode(), 128+int(syscall.SIGTERM); got != want {
		t.Errorf("ExitCode() = %d, want %d", got, want)
	}
	if s.State() != StateShuttingDown {
		t.Errorf("State() = %v, want %v", s.State(), StateShuttingDown)
	}
	s.Terminate()
	if s.State() != StateTerminated {
		t.Errorf("State() = %v, want %v", s.State(), StateTerminated)
	}
}

func TestSupervisorNormalStop(t *testing.T) {
	s := NewSupervisor(testLogger(), "/dev/ttyUSB0")
	s.interval = time.Millisecond

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after Stop")
	}
	if got := s.ExitCode(); got != 0 {
		t.Errorf("ExitCode() = %d, want 0", got)
	}
}

func TestStateNeverMovesBackwards(t *testing.T) {
	s := NewSupervisor(testLogger(), "/dev/ttyUSB0")
	s.advance(StateRunning)
	s.advance(StateConfiguring)
	if s.State() != StateRunning {
		t.Errorf("State() = %v, want %v after backwards request", s.State(), StateRunning)
	}
}
