//go:build linux

package slcand

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// State handed from the foreground parent to the detached child across the
// re-exec.
const (
	envDaemonized = "SLCAND_DAEMONIZED"
	envSnapshot   = "SLCAND_TERMIOS"
	envNetdev     = "SLCAND_NETDEV"
)

// daemonized reports whether this process is the detached child.
func daemonized() bool {
	return os.Getenv(envDaemonized) == "1"
}

// daemonize detaches from the controlling terminal by re-executing the
// process, the Go equivalent of daemon(0, 0): new session, working
// directory /, stdio on /dev/null. The open tty descriptor is inherited as
// fd 3 and the termios snapshot travels in the environment. The parent
// must not restore the line afterwards; the child owns the device from
// here on.
func daemonize(dev *Device, netdev string) error {
	snap, err := json.Marshal(dev.Snapshot())
	if err != nil {
		return fmt.Errorf("%w: failed to encode termios snapshot: %v", ErrDevice, err)
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("%w: failed to locate own executable: %v", ErrDevice, err)
	}
	null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", ErrDevice, os.DevNull, err)
	}
	defer null.Close()

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Dir = "/"
	cmd.Stdin = null
	cmd.Stdout = null
	cmd.Stderr = null
	cmd.ExtraFiles = []*os.File{dev.File()}
	cmd.Env = append(os.Environ(),
		envDaemonized+"=1",
		envSnapshot+"="+string(snap),
		envNetdev+"="+netdev,
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to daemonize: %v", ErrDevice, err)
	}
	return nil
}

// inheritedDevice rebuilds the device handle around the descriptor and
// snapshot passed down by the daemonizing parent.
func inheritedDevice(path string) (*Device, string, error) {
	var old unix.Termios
	if err := json.Unmarshal([]byte(os.Getenv(envSnapshot)), &old); err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode termios snapshot: %v", ErrDevice, err)
	}
	f := os.NewFile(3, path)
	if f == nil {
		return nil, "", fmt.Errorf("%w: missing inherited descriptor for %s", ErrDevice, path)
	}
	return &Device{f: f, path: path, old: old}, os.Getenv(envNetdev), nil
}
