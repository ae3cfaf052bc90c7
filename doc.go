// Package slcand implements the userspace side of the serial line CAN
// interface driver: it configures a serial device, primes the attached
// SLCAN adapter with its control commands, installs the slcan line
// discipline so the kernel exposes a CAN netdevice, and keeps the device
// attached until the process is told to stop, at which point the original
// line settings are restored.
package slcand
