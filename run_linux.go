//go:build linux

package slcand

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// linePort is the slice of *Device the supervised part of the lifecycle
// needs. Tests substitute a recording fake.
type linePort interface {
	io.Writer
	io.Closer
	Path() string
	DetachLineDiscipline() error
	Restore() error
}

// Seam for tests; the real thing talks SIOCSIFNAME.
var renameInterface = RenameInterface

// Run drives the whole device lifecycle and returns the process exit code:
// 0 on a clean stop, 128+signal after a signal, 1 on any fatal error.
func Run(cfg Config) int {
	log, logCloser, err := NewLogger(cfg.Foreground)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logCloser.Close()

	sup := NewSupervisor(log, cfg.TTYPath)

	if daemonized() {
		// Detached child: the parent already did the full setup and we
		// inherit the live descriptor. No signal handlers are installed
		// here; the only exit from detached mode is external process
		// termination.
		dev, netdev, err := inheritedDevice(cfg.TTYPath)
		if err != nil {
			log.Error(err.Error())
			return 1
		}
		return supervise(cfg, dev, netdev, sup, log)
	}

	sup.advance(StateConfiguring)
	log.Info("starting on TTY device " + cfg.TTYPath)

	dev, err := OpenDevice(cfg.TTYPath)
	if err != nil {
		Notice(log, "failed to open TTY device", "device", cfg.TTYPath, "error", err)
		return 1
	}
	if err := dev.Configure(cfg.UARTBaud, cfg.Flow, log); err != nil {
		Notice(log, err.Error())
		return 1
	}
	if err := cfg.Commands.Prime(dev); err != nil {
		log.Error(err.Error())
		return 1
	}
	if err := dev.AttachLineDiscipline(); err != nil {
		log.Error(err.Error())
		return 1
	}
	netdev, err := dev.InterfaceName()
	if err != nil {
		log.Error(err.Error())
		return 1
	}
	Notice(log, "attached TTY to netdevice", "tty", cfg.TTYPath, "netdevice", netdev)

	if cfg.Name != "" {
		if err := renameInterface(netdev, cfg.Name); err != nil {
			Notice(log, "netdevice rename failed", "from", netdev, "to", cfg.Name)
			log.Error(err.Error())
			return 1
		}
		Notice(log, "netdevice renamed", "from", netdev, "to", cfg.Name)
		netdev = cfg.Name
	}

	if !cfg.Foreground {
		if err := daemonize(dev, netdev); err != nil {
			log.Error(err.Error())
			return 1
		}
		// Parent side: the child owns the device now, leave the line alone.
		return 0
	}

	sup.TrapSignals()
	return supervise(cfg, dev, netdev, sup, log)
}

// supervise blocks in Running until the supervisor unblocks, then mirrors
// setup in reverse. Teardown runs on both the signaled and the normal stop
// path before the exit code is returned.
func supervise(cfg Config, dev linePort, netdev string, sup *Supervisor, log *slog.Logger) int {
	sup.Wait()
	code := sup.ExitCode()
	if err := teardown(cfg, dev, log); err != nil {
		log.Error(err.Error())
		return 1
	}
	sup.Terminate()
	fmt.Printf("Netdevice %s attached to device '%s' stopped gracefully.\n", netdev, cfg.TTYPath)
	return code
}

// teardown undoes setup: standard discipline back, deferred close command
// out, original line settings restored, descriptor released.
func teardown(cfg Config, dev linePort, log *slog.Logger) error {
	log.Info("stopping on TTY device " + dev.Path())
	if err := dev.DetachLineDiscipline(); err != nil {
		return err
	}
	if err := cfg.Commands.SendClose(dev); err != nil {
		return err
	}
	if err := dev.Restore(); err != nil {
		return err
	}
	if err := dev.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", ErrDevice, dev.Path(), err)
	}
	Notice(log, "terminated on "+dev.Path())
	return nil
}
