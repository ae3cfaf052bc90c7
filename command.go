package slcand

import (
	"fmt"
	"io"
)

// CommandSet is the fixed vocabulary of Lawicel control commands sent to
// the adapter. Startup commands go out before the line discipline is
// attached, the close command is deferred to teardown. Nothing is ever
// read back; adapter state is the adapter's problem.
type CommandSet struct {
	Speed      string // non-empty: C\rS<code>\r
	BTR        string // non-empty: C\rs<btr>\r
	ReadStatus bool   // F\r
	Listen     bool   // L\r, wins over Open
	Open       bool   // O\r
	Close      bool   // C\r at teardown
}

// Startup returns the command byte strings in wire order.
func (cs CommandSet) Startup() [][]byte {
	var cmds [][]byte
	if cs.Speed != "" {
		cmds = append(cmds, []byte("C\rS"+cs.Speed+"\r"))
	}
	if cs.BTR != "" {
		cmds = append(cmds, []byte("C\rs"+cs.BTR+"\r"))
	}
	if cs.ReadStatus {
		cmds = append(cmds, []byte("F\r"))
	}
	if cs.Listen {
		cmds = append(cmds, []byte("L\r"))
	} else if cs.Open {
		cmds = append(cmds, []byte("O\r"))
	}
	return cmds
}

// Prime writes the startup commands to the already configured line.
func (cs CommandSet) Prime(w io.Writer) error {
	for _, cmd := range cs.Startup() {
		if _, err := w.Write(cmd); err != nil {
			return fmt.Errorf("%w: failed to write command %q: %v", ErrIO, cmd, err)
		}
	}
	return nil
}

// SendClose writes the deferred close command, if one was requested.
func (cs CommandSet) SendClose(w io.Writer) error {
	if !cs.Close {
		return nil
	}
	if _, err := w.Write([]byte("C\r")); err != nil {
		return fmt.Errorf("%w: failed to write close command: %v", ErrIO, err)
	}
	return nil
}
