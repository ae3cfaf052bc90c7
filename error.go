package slcand

import "errors"

// Error kinds. Nearly everything in this daemon is fatal by design; the
// kind decides what the CLI does on the way out, not whether we recover.
var (
	// ErrInvalidArgument marks bad input caught before any device is touched.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDevice marks a failed open/query/configure of the serial device.
	ErrDevice = errors.New("device error")
	// ErrIO marks a failed write of an adapter protocol command.
	ErrIO = errors.New("i/o error")
)
