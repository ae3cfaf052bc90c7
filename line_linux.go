//go:build linux

package slcand

import (
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Device is the exclusively owned serial descriptor together with the
// pre-mutation termios snapshot needed to put the line back on exit.
type Device struct {
	f    *os.File
	path string
	old  unix.Termios
}

// OpenDevice opens the tty read/write, non blocking, without becoming the
// controlling terminal, and captures the original line configuration
// before anything is mutated.
func OpenDevice(path string) (*Device, error) {
	f, err := os.OpenFile(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open TTY device %s: %v", ErrDevice, path, err)
	}
	old, err := unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS2)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: failed to get attributes for TTY device %s: %v", ErrDevice, path, err)
	}
	return &Device{f: f, path: path, old: *old}, nil
}

func (d *Device) Path() string           { return d.path }
func (d *Device) Fd() int                { return int(d.f.Fd()) }
func (d *Device) File() *os.File         { return d.f }
func (d *Device) Snapshot() unix.Termios { return d.old }

func (d *Device) Write(p []byte) (int, error) { return d.f.Write(p) }
func (d *Device) Close() error                { return d.f.Close() }

// Configure puts the line into the requested baud and flow control mode,
// starting from the snapshot taken at open. On apply failure the
// descriptor is closed and the device is unusable.
func (d *Device) Configure(baud uint32, flow FlowControl, log *slog.Logger) error {
	d.setLowLatency(log)

	tios := d.old
	applyLineConfig(&tios, baud, flow)
	if err := unix.IoctlSetTermios(d.Fd(), unix.TCSETS2, &tios); err != nil {
		d.f.Close()
		return fmt.Errorf("%w: cannot set attributes for device %s: %v", ErrDevice, d.path, err)
	}
	return nil
}

// applyLineConfig assembles the new line settings. Kept free of ioctls so
// the flow control exclusivity is testable without a device.
func applyLineConfig(tios *unix.Termios, baud uint32, flow FlowControl) {
	// Drop whatever flow control the line had before picking the
	// requested mode.
	tios.Iflag &^= unix.IXON | unix.IXOFF
	tios.Cflag &^= unix.CRTSCTS

	// Custom divisor baud, both directions.
	tios.Cflag &^= unix.CBAUD
	tios.Cflag |= unix.BOTHER
	tios.Ispeed = baud
	tios.Ospeed = baud

	switch flow {
	case FlowHardware:
		tios.Cflag |= unix.CRTSCTS
	case FlowSoftware:
		tios.Iflag |= unix.IXON | unix.IXOFF
	}
}

// Restore reapplies the snapshot captured at open, unconditionally.
func (d *Device) Restore() error {
	if err := unix.IoctlSetTermios(d.Fd(), unix.TCSETS2, &d.old); err != nil {
		return fmt.Errorf("%w: failed to reset attributes for device %s: %v", ErrDevice, d.path, err)
	}
	return nil
}

// asyncLowLatency is ASYNC_LOW_LATENCY from linux/serial.h.
const asyncLowLatency = 1 << 13

// serialInfo mirrors struct serial_struct from linux/serial.h.
type serialInfo struct {
	typ           uint32
	line          uint32
	port          uint32
	irq           uint32
	flags         int32
	xmitFifoSize  uint32
	customDivisor uint32
	baudBase      uint32
	closeDelay    uint16
	ioType        byte
	reservedChar  byte
	hub6          int32
	closingWait   uint16
	closingWait2  uint16
	iomemBase     uintptr
	iomemRegShift uint16
	portHigh      uint32
	iomapBase     int64
}

func ioctlSerialInfo(fd int, req uint, si *serialInfo) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(si)))
	if errno != 0 {
		return errno
	}
	return nil
}

// setLowLatency flags the serial core for low latency receive; since the
// tty scheduling rework the slcan discipline is unusable without it on
// some adapters. Best effort, failures are logged and dropped.
func (d *Device) setLowLatency(log *slog.Logger) {
	var si serialInfo
	if err := ioctlSerialInfo(d.Fd(), unix.TIOCGSERIAL, &si); err != nil {
		Notice(log, "failed to get latency flags", "device", d.path, "error", err)
		return
	}
	si.flags |= asyncLowLatency
	if err := ioctlSerialInfo(d.Fd(), unix.TIOCSSERIAL, &si); err != nil {
		Notice(log, "failed to set latency flags", "device", d.path, "error", err)
	}
}
