//go:build linux

package slcand

import (
	"testing"

	"golang.org/x/sys/unix"
)

// baseline with both flow control modes dirty, to prove Configure always
// ends up with exactly the requested one.
func dirtyTermios() unix.Termios {
	return unix.Termios{
		Iflag: unix.IXON | unix.IXOFF | unix.ICRNL,
		Cflag: unix.CRTSCTS | unix.CS8 | unix.CREAD | unix.B9600,
	}
}

func TestApplyLineConfigFlowExclusivity(t *testing.T) {
	tests := []struct {
		name   string
		flow   FlowControl
		wantHW bool
		wantSW bool
	}{
		{"none", FlowNone, false, false},
		{"hardware", FlowHardware, true, false},
		{"software", FlowSoftware, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tios := dirtyTermios()
			applyLineConfig(&tios, 115200, tt.flow)

			gotHW := tios.Cflag&unix.CRTSCTS != 0
			gotSW := tios.Iflag&(unix.IXON|unix.IXOFF) != 0
			if gotHW != tt.wantHW {
				t.Errorf("CRTSCTS = %v, want %v", gotHW, tt.wantHW)
			}
			if gotSW != tt.wantSW {
				t.Errorf("IXON/IXOFF = %v, want %v", gotSW, tt.wantSW)
			}
			if gotHW && gotSW {
				t.Error("both flow control modes active")
			}
		})
	}
}

func TestApplyLineConfigBaud(t *testing.T) {
	tios := dirtyTermios()
	applyLineConfig(&tios, 115200, FlowNone)

	if got := tios.Cflag & unix.CBAUD; got != unix.BOTHER {
		t.Errorf("Cflag&CBAUD = %#x, want BOTHER (%#x)", got, unix.BOTHER)
	}
	if tios.Ispeed != 115200 || tios.Ospeed != 115200 {
		t.Errorf("speeds = %d/%d, want 115200 both ways", tios.Ispeed, tios.Ospeed)
	}
}

func TestApplyLineConfigZeroBaud(t *testing.T) {
	// No -S given still selects the custom baud mechanism with speed 0,
	// matching the reference daemon.
	tios := dirtyTermios()
	applyLineConfig(&tios, 0, FlowNone)
	if tios.Ispeed != 0 || tios.Ospeed != 0 {
		t.Errorf("speeds = %d/%d, want 0 both ways", tios.Ispeed, tios.Ospeed)
	}
}

func TestApplyLineConfigPreservesUnrelatedFlags(t *testing.T) {
	tios := dirtyTermios()
	applyLineConfig(&tios, 115200, FlowSoftware)

	if tios.Cflag&unix.CS8 == 0 || tios.Cflag&unix.CREAD == 0 {
		t.Errorf("character size/read flags lost: Cflag = %#x", tios.Cflag)
	}
	if tios.Iflag&unix.ICRNL == 0 {
		t.Errorf("unrelated input flags lost: Iflag = %#x", tios.Iflag)
	}
}
