//go:build linux

package slcand

import (
	"errors"
	"reflect"
	"syscall"
	"testing"
	"time"
)

type fakePort struct {
	calls      []string
	writes     []string
	detachErr  error
	restoreErr error
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.calls = append(f.calls, "write")
	f.writes = append(f.writes, string(p))
	return len(p), nil
}

func (f *fakePort) Close() error {
	f.calls = append(f.calls, "close")
	return nil
}

func (f *fakePort) Path() string { return "/dev/ttyUSB0" }

func (f *fakePort) DetachLineDiscipline() error {
	f.calls = append(f.calls, "detach")
	return f.detachErr
}

func (f *fakePort) Restore() error {
	f.calls = append(f.calls, "restore")
	return f.restoreErr
}

func TestTeardownOrderWithClose(t *testing.T) {
	f := &fakePort{}
	cfg := Config{Commands: CommandSet{Close: true}}
	if err := teardown(cfg, f, testLogger()); err != nil {
		t.Fatalf("teardown() error = %v", err)
	}
	want := []string{"detach", "write", "restore", "close"}
	if !reflect.DeepEqual(f.calls, want) {
		t.Errorf("calls = %v, want %v", f.calls, want)
	}
	if !reflect.DeepEqual(f.writes, []string{"C\r"}) {
		t.Errorf("writes = %q, want [\"C\\r\"]", f.writes)
	}
}

func TestTeardownWithoutClose(t *testing.T) {
	f := &fakePort{}
	if err := teardown(Config{}, f, testLogger()); err != nil {
		t.Fatalf("teardown() error = %v", err)
	}
	want := []string{"detach", "restore", "close"}
	if !reflect.DeepEqual(f.calls, want) {
		t.Errorf("calls = %v, want %v", f.calls, want)
	}
}

func TestTeardownRestoreFailureIsFatal(t *testing.T) {
	f := &fakePort{restoreErr: errors.New("ioctl failed")}
	err := teardown(Config{}, f, testLogger())
	if err == nil {
		t.Fatal("teardown() error = nil, want restore failure")
	}
	for _, c := range f.calls {
		if c == "close" {
			t.Error("descriptor closed after failed restore")
		}
	}
}

func TestSuperviseSignalPath(t *testing.T) {
	f := &fakePort{}
	sup := NewSupervisor(testLogger(), "/dev/ttyUSB0")
	sup.interval = time.Millisecond
	cfg := Config{TTYPath: "/dev/ttyUSB0", Foreground: true, Commands: CommandSet{Close: true}}

	codeCh := make(chan int, 1)
	go func() {
		codeCh <- supervise(cfg, f, "slcan0", sup, testLogger())
	}()
	sup.handleSignal(syscall.SIGINT)

	var code int
	select {
	case code = <-codeCh:
	case <-time.After(time.Second):
		t.Fatal("supervise did not return after signal")
	}
	if want := 128 + int(syscall.SIGINT); code != want {
		t.Errorf("exit code = %d, want %d", code, want)
	}
	if len(f.calls) == 0 || f.calls[0] != "detach" {
		t.Errorf("teardown did not run on the signal path: calls = %v", f.calls)
	}
	if sup.State() != StateTerminated {
		t.Errorf("State() = %v, want %v", sup.State(), StateTerminated)
	}
}

func TestSuperviseNormalStopPath(t *testing.T) {
	f := &fakePort{}
	sup := NewSupervisor(testLogger(), "/dev/ttyUSB0")
	sup.interval = time.Millisecond

	codeCh := make(chan int, 1)
	go func() {
		codeCh <- supervise(Config{TTYPath: "/dev/ttyUSB0"}, f, "slcan0", sup, testLogger())
	}()
	sup.Stop()

	select {
	case code := <-codeCh:
		if code != 0 {
			t.Errorf("exit code = %d, want 0", code)
		}
	case <-time.After(time.Second):
		t.Fatal("supervise did not return after Stop")
	}
	want := []string{"detach", "restore", "close"}
	if !reflect.DeepEqual(f.calls, want) {
		t.Errorf("calls = %v, want %v", f.calls, want)
	}
}

func TestSuperviseTeardownFailure(t *testing.T) {
	f := &fakePort{detachErr: errors.New("ioctl failed")}
	sup := NewSupervisor(testLogger(), "/dev/ttyUSB0")
	sup.interval = time.Millisecond

	codeCh := make(chan int, 1)
	go func() {
		codeCh <- supervise(Config{TTYPath: "/dev/ttyUSB0"}, f, "slcan0", sup, testLogger())
	}()
	sup.Stop()

	select {
	case code := <-codeCh:
		if code != 1 {
			t.Errorf("exit code = %d, want 1 on teardown failure", code)
		}
	case <-time.After(time.Second):
		t.Fatal("supervise did not return")
	}
}
