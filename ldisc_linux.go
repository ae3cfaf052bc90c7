//go:build linux

package slcand

import (
	"fmt"
	"time"
	"unsafe"

	retry "github.com/avast/retry-go"
	"golang.org/x/sys/unix"
)

// Line disciplines from linux/tty.h.
const (
	ldiscTTY   = 0  // N_TTY
	ldiscSLCAN = 17 // N_SLCAN
)

// AttachLineDiscipline installs the slcan line discipline on the
// descriptor; the kernel registers a CAN netdevice for it.
func (d *Device) AttachLineDiscipline() error {
	if err := unix.IoctlSetPointerInt(d.Fd(), unix.TIOCSETD, ldiscSLCAN); err != nil {
		return fmt.Errorf("%w: failed to set slcan line discipline on %s: %v", ErrDevice, d.path, err)
	}
	return nil
}

// DetachLineDiscipline puts the standard discipline back.
func (d *Device) DetachLineDiscipline() error {
	if err := unix.IoctlSetPointerInt(d.Fd(), unix.TIOCSETD, ldiscTTY); err != nil {
		return fmt.Errorf("%w: failed to reset line discipline on %s: %v", ErrDevice, d.path, err)
	}
	return nil
}

// InterfaceName queries the name of the CAN netdevice the kernel assigned
// to the attached discipline. Registration can still be in flight right
// after attach, so the query gets a couple of short retries before the
// failure is fatal.
func (d *Device) InterfaceName() (string, error) {
	var name [unix.IFNAMSIZ]byte
	err := retry.Do(
		func() error {
			_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.Fd()), unix.SIOCGIFNAME, uintptr(unsafe.Pointer(&name[0])))
			if errno != 0 {
				return errno
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(10*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get netdevice name for %s: %v", ErrDevice, d.path, err)
	}
	return unix.ByteSliceToString(name[:]), nil
}

// ifreq mirrors struct ifreq. SIOCSIFNAME reads the rename target from the
// first IFNAMSIZ bytes of the union.
type ifreq struct {
	name [unix.IFNAMSIZ]byte
	data [24]byte
}

// RenameInterface renames the netdevice through a throwaway datagram
// socket used purely as an ioctl handle.
func RenameInterface(current, target string) error {
	s, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return fmt.Errorf("%w: failed to open socket for interface rename: %v", ErrDevice, err)
	}
	defer unix.Close(s)

	var req ifreq
	copy(req.name[:unix.IFNAMSIZ-1], current)
	copy(req.data[:unix.IFNAMSIZ-1], target)
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(s), unix.SIOCSIFNAME, uintptr(unsafe.Pointer(&req))); errno != 0 {
		return fmt.Errorf("%w: failed to rename netdevice %s to %s: %v", ErrDevice, current, target, errno)
	}
	return nil
}
