package slcand

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	devPrefix = "/dev/"

	// maxUARTBaud is the ceiling of the custom divisor mechanism.
	maxUARTBaud = 6000000

	// maxBTRLen bounds the bit timing register value string.
	maxBTRLen = 8
)

// FlowControl selects the UART flow control mode. Exactly one mode is
// active on the line at any time.
type FlowControl int

const (
	FlowNone FlowControl = iota
	FlowHardware
	FlowSoftware
)

func (f FlowControl) String() string {
	switch f {
	case FlowHardware:
		return "hw"
	case FlowSoftware:
		return "sw"
	default:
		return "none"
	}
}

// Options holds the raw command line input before validation.
type Options struct {
	TTY        string // device path or bare name
	Name       string // optional rename target for the CAN netdevice
	SendOpen   bool
	SendClose  bool
	SendListen bool
	ReadStatus bool
	Speed      string // CAN speed code, single digit 0..8
	UARTBaud   uint32
	Flow       string // "hw", "sw" or empty
	BTR        string // bit timing register value, hex string
	Foreground bool
}

// Config is the validated, normalized form of Options.
type Config struct {
	TTYPath    string
	Name       string
	UARTBaud   uint32
	Flow       FlowControl
	Commands   CommandSet
	Foreground bool
}

// Resolve validates the options and normalizes the device path. It has no
// side effects; every rejection happens before any device is opened.
func (o Options) Resolve() (Config, error) {
	if o.TTY == "" {
		return Config{}, fmt.Errorf("%w: no tty device given", ErrInvalidArgument)
	}
	if len(o.Speed) > 1 {
		return Config{}, fmt.Errorf("%w: CAN speed code %q is longer than one character", ErrInvalidArgument, o.Speed)
	}
	if len(o.BTR) > maxBTRLen {
		return Config{}, fmt.Errorf("%w: bit timing register value %q exceeds %d characters", ErrInvalidArgument, o.BTR, maxBTRLen)
	}
	if o.UARTBaud > maxUARTBaud {
		return Config{}, fmt.Errorf("%w: unsupported UART speed %d", ErrInvalidArgument, o.UARTBaud)
	}
	if len(o.Name) > unix.IFNAMSIZ-1 {
		return Config{}, fmt.Errorf("%w: interface name %q exceeds %d characters", ErrInvalidArgument, o.Name, unix.IFNAMSIZ-1)
	}

	cfg := Config{
		Name:       o.Name,
		UARTBaud:   o.UARTBaud,
		Foreground: o.Foreground,
		Commands: CommandSet{
			Speed:      o.Speed,
			BTR:        o.BTR,
			ReadStatus: o.ReadStatus,
			Listen:     o.SendListen,
			Open:       o.SendOpen,
			Close:      o.SendClose,
		},
	}

	switch o.Flow {
	case "":
		cfg.Flow = FlowNone
	case "hw":
		cfg.Flow = FlowHardware
	case "sw":
		cfg.Flow = FlowSoftware
	default:
		return Config{}, fmt.Errorf("%w: unsupported flow control type %q", ErrInvalidArgument, o.Flow)
	}

	if strings.HasPrefix(o.TTY, devPrefix) {
		cfg.TTYPath = o.TTY
	} else {
		cfg.TTYPath = devPrefix + o.TTY
	}
	return cfg, nil
}
