package slcand

import (
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
)

// LifecycleState tracks where the daemon is in its life. Transitions are
// one directional; no state is ever revisited.
type LifecycleState int32

const (
	StateInitializing LifecycleState = iota
	StateConfiguring
	StateRunning
	StateShuttingDown
	StateTerminated
)

func (s LifecycleState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateConfiguring:
		return "configuring"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Supervisor owns the lifecycle state and the only process-wide mutable
// values: the running flag and the pending exit status. Both are written
// from the signal goroutine and read from the wait loop, nothing else
// touches them.
type Supervisor struct {
	log      *slog.Logger
	tty      string
	interval time.Duration

	state    atomic.Int32
	running  atomic.Bool
	exitCode atomic.Int32

	sigs chan os.Signal
}

func NewSupervisor(log *slog.Logger, tty string) *Supervisor {
	s := &Supervisor{log: log, tty: tty, interval: time.Second}
	s.running.Store(true)
	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() LifecycleState {
	return LifecycleState(s.state.Load())
}

// advance moves the state forward. Requests to move backwards are ignored.
func (s *Supervisor) advance(next LifecycleState) {
	for {
		cur := s.state.Load()
		if int32(next) <= cur {
			return
		}
		if s.state.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}

// TrapSignals installs the foreground-mode shutdown handlers. Detached mode
// never calls this; there the only way out is external process termination.
func (s *Supervisor) TrapSignals() {
	s.sigs = make(chan os.Signal, 1)
	signal.Notify(s.sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGALRM, syscall.SIGCHLD)
	go func() {
		for sig := range s.sigs {
			s.handleSignal(sig)
		}
	}()
}

// handleSignal stores the exit status and clears the running flag. The wait
// loop picks the change up on its next wake.
func (s *Supervisor) handleSignal(sig os.Signal) {
	num, ok := sig.(syscall.Signal)
	if !ok {
		return
	}
	Notice(s.log, "received signal", "signal", int(num), "tty", s.tty)
	s.exitCode.Store(128 + int32(num))
	s.running.Store(false)
}

// Stop unblocks Wait without touching the exit status.
func (s *Supervisor) Stop() {
	s.running.Store(false)
}

// Wait blocks in Running until the running flag is cleared, waking once per
// interval to check it. The daemon does no work of its own while running;
// the kernel side carries the traffic.
func (s *Supervisor) Wait() {
	s.advance(StateRunning)
	for s.running.Load() {
		time.Sleep(s.interval)
	}
	s.advance(StateShuttingDown)
	if s.sigs != nil {
		signal.Stop(s.sigs)
	}
}

// ExitCode is 0 after a plain Stop and 128 plus the signal number after a
// signal-triggered shutdown.
func (s *Supervisor) ExitCode() int {
	return int(s.exitCode.Load())
}

// Terminate marks the end of teardown.
func (s *Supervisor) Terminate() {
	s.advance(StateTerminated)
}
