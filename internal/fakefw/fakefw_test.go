package fakefw

import (
	"testing"
	"unsafe"

	"github.com/metalbridge/bbapi/internal/biosdef"
)

func invoke(f *Firmware, group, offset uint32, in, out []byte) (uint32, biosdef.Status) {
	var inPtr, outPtr uintptr
	if len(in) > 0 {
		inPtr = uintptr(unsafe.Pointer(&in[0]))
	}
	if len(out) > 0 {
		outPtr = uintptr(unsafe.Pointer(&out[0]))
	}
	var written uint32
	st := f.Invoke(group, offset, inPtr, uint32(len(in)), outPtr, uint32(len(out)), &written)
	return written, biosdef.Status(st)
}

func TestInvokeReportsWrittenBytes(t *testing.T) {
	f := New(Config{})

	out := make([]byte, 3)
	written, st := invoke(f, biosdef.GroupGeneral, biosdef.GeneralVersion, nil, out)
	if st != biosdef.StatusOK {
		t.Fatalf("Version read status %v", st)
	}
	if written != 3 {
		t.Fatalf("Version read reported %d bytes written", written)
	}
	if f.Calls() != 1 {
		t.Fatalf("Call counter %d", f.Calls())
	}
}

func TestInvokeEnforcesExactSizes(t *testing.T) {
	f := New(Config{})

	out := make([]byte, 2)
	if _, st := invoke(f, biosdef.GroupGeneral, biosdef.GeneralVersion, nil, out); st != biosdef.StatusInvalidSize {
		t.Fatalf("Short output buffer status %v, want invalid size", st)
	}
	if _, st := invoke(f, biosdef.GroupGeneral, 0x7F, nil, nil); st != biosdef.StatusSrvNotSupp {
		t.Fatalf("Unknown operation status %v, want service not supported", st)
	}
}

func TestInvokeParameterValidation(t *testing.T) {
	f := New(Config{})

	if _, st := invoke(f, biosdef.GroupSUPS, biosdef.SUPSEnable, []byte{2}, nil); st != biosdef.StatusInvalidParm {
		t.Fatalf("Out-of-range enable value status %v, want invalid parameter", st)
	}
	if _, st := invoke(f, biosdef.GroupSUPS, biosdef.SUPSEnable, []byte{1}, nil); st != biosdef.StatusOK {
		t.Fatalf("Enable status %v", st)
	}
}

func TestDisabledSubsystems(t *testing.T) {
	f := New(Config{NoCXUPS: true})

	out := make([]byte, 1)
	if _, st := invoke(f, biosdef.GroupCXUPS, biosdef.CXUPSBatteryCapacity, nil, out); st != biosdef.StatusSrvNotSupp {
		t.Fatalf("Disabled UPS answered %v", st)
	}
}
