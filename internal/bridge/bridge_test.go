package bridge

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/metalbridge/bbapi/internal/biosdef"
	"github.com/metalbridge/bbapi/internal/fakefw"
)

func newTestBridge(t testing.TB, cfg fakefw.Config) (*Bridge, *fakefw.Firmware) {
	t.Helper()
	fw := fakefw.New(cfg)
	return New(fw, DefaultErrSpace), fw
}

func TestExecuteRead(t *testing.T) {
	b, _ := newTestBridge(t, fakefw.Config{})

	out := make([]byte, 3)
	var written uint32
	n, err := b.Execute(Request{
		Group:        biosdef.GroupGeneral,
		Offset:       biosdef.GeneralVersion,
		Out:          out,
		BytesWritten: &written,
	})
	if err != nil {
		t.Fatalf("Execute version read: %v", err)
	}
	if n != 3 || written != 3 {
		t.Fatalf("Version read reported %d bytes (written %d), want 3", n, written)
	}
	if !bytes.Equal(out, []byte{3, 14, 7}) {
		t.Fatalf("Version read returned %v", out)
	}
}

func TestExecuteWriteReadBack(t *testing.T) {
	b, _ := newTestBridge(t, fakefw.Config{})

	if _, err := b.Execute(Request{
		Group:  biosdef.GroupSUPS,
		Offset: biosdef.SUPSSetShutdownType,
		In:     []byte{0xA5},
	}); err != nil {
		t.Fatalf("Write shutdown type: %v", err)
	}

	out := make([]byte, 1)
	if _, err := b.Execute(Request{
		Group:  biosdef.GroupSUPS,
		Offset: biosdef.SUPSGetShutdownType,
		Out:    out,
	}); err != nil {
		t.Fatalf("Read shutdown type back: %v", err)
	}
	if out[0] != 0xA5 {
		t.Fatalf("Shutdown type read back as 0x%02x, want 0xa5", out[0])
	}
}

func TestExecuteRejectsPrivilegedOffset(t *testing.T) {
	b, fw := newTestBridge(t, fakefw.Config{})

	_, err := b.Execute(Request{
		Group:  biosdef.GroupGeneral,
		Offset: PrivilegedOffset,
	})
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("Privileged offset returned %v, want ErrNotPermitted", err)
	}
	_, err = b.Execute(Request{
		Group:  biosdef.GroupGeneral,
		Offset: biosdef.ExtOSShutdown,
	})
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("Service table offset returned %v, want ErrNotPermitted", err)
	}
	if fw.Calls() != 0 {
		t.Fatalf("Rejected requests still reached the firmware %d times", fw.Calls())
	}
}

func TestExecuteRejectsOversizedBuffers(t *testing.T) {
	b, fw := newTestBridge(t, fakefw.Config{})

	big := make([]byte, BufferSize+1)
	if _, err := b.Execute(Request{Group: biosdef.GroupGeneral, In: big}); !errors.Is(err, ErrBufferTooLarge) {
		t.Fatalf("Oversized input returned %v, want ErrBufferTooLarge", err)
	}
	if _, err := b.Execute(Request{Group: biosdef.GroupGeneral, Out: big}); !errors.Is(err, ErrBufferTooLarge) {
		t.Fatalf("Oversized output returned %v, want ErrBufferTooLarge", err)
	}
	if fw.Calls() != 0 {
		t.Fatalf("Rejected requests still reached the firmware %d times", fw.Calls())
	}
}

func TestExecuteRejectsReservedField(t *testing.T) {
	b, fw := newTestBridge(t, fakefw.Config{})

	_, err := b.Execute(Request{
		Group:    biosdef.GroupGeneral,
		Offset:   biosdef.GeneralVersion,
		Reserved: 1,
	})
	if !errors.Is(err, ErrReservedField) {
		t.Fatalf("Non-zero reserved field returned %v, want ErrReservedField", err)
	}
	if fw.Calls() != 0 {
		t.Fatalf("Rejected request still reached the firmware")
	}
}

func TestExecuteNilBridge(t *testing.T) {
	var b *Bridge
	if _, err := b.Execute(Request{}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Nil bridge returned %v, want ErrNotInitialized", err)
	}
}

func TestStatusErrorSpace(t *testing.T) {
	b, _ := newTestBridge(t, fakefw.Config{})

	// Offset 0x7F exists in no group; the firmware answers
	// "service not supported".
	_, err := b.Execute(Request{Group: biosdef.GroupGeneral, Offset: 0x7F})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Unknown operation returned %v, want StatusError", err)
	}
	if se.Status != biosdef.StatusSrvNotSupp {
		t.Fatalf("Unknown operation status %v", se.Status)
	}
	if got := se.Errno(); got != -int32(uint32(biosdef.StatusSrvNotSupp)|DefaultErrSpace) {
		t.Fatalf("Errno %d does not carry the error space", got)
	}
}

func TestStatusErrorLegacySpace(t *testing.T) {
	fw := fakefw.New(fakefw.Config{})
	b := New(fw, 0)

	_, err := b.Execute(Request{Group: biosdef.GroupGeneral, Offset: 0x7F})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Unknown operation returned %v, want StatusError", err)
	}
	if got := se.Errno(); got != -1 {
		t.Fatalf("Legacy errno %d, want -1", got)
	}
}

func TestDisplayLineRoundTrip(t *testing.T) {
	b, _ := newTestBridge(t, fakefw.Config{})

	var line [biosdef.DisplayLineLen]byte
	copy(line[:], "hello operator")
	if err := b.Write(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppDisplayLine1, line[:]); err != nil {
		t.Fatalf("Write display line: %v", err)
	}

	got := make([]byte, biosdef.DisplayLineLen)
	n, err := b.Read(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppDisplayLine1, got)
	if err != nil {
		t.Fatalf("Read display line back: %v", err)
	}
	if n != biosdef.DisplayLineLen || !bytes.Equal(got, line[:]) {
		t.Fatalf("Display line read back as %q (%d bytes)", got, n)
	}
}

func TestCallsNeverOverlap(t *testing.T) {
	b, fw := newTestBridge(t, fakefw.Config{Hold: 100 * time.Microsecond})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := make([]byte, 3)
			for j := 0; j < 50; j++ {
				if _, err := b.Read(biosdef.GroupGeneral, biosdef.GeneralVersion, out); err != nil {
					t.Errorf("Concurrent version read: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if fw.Overlapped() {
		t.Fatalf("Firmware observed overlapping invocations")
	}
	if fw.Calls() != 8*50 {
		t.Fatalf("Firmware saw %d calls, want %d", fw.Calls(), 8*50)
	}
}

func TestSupports(t *testing.T) {
	b, fw := newTestBridge(t, fakefw.Config{})

	if !b.Supports(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppType) {
		t.Fatalf("Power supply type should probe as present")
	}
	if b.Supports(biosdef.GroupGeneral, 0x7F) {
		t.Fatalf("Unknown operation should probe as absent")
	}
	if fw.Calls() != 2 {
		t.Fatalf("Probe issued %d calls, want 2", fw.Calls())
	}
}

func TestProbeCapabilities(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  fakefw.Config
		want Capabilities
	}{
		{"full board", fakefw.Config{}, Capabilities{Display: true, PowerSupply: true, SUPS: true}},
		{"no display", fakefw.Config{NoDisplay: true}, Capabilities{PowerSupply: true, SUPS: true}},
		{"no power supply", fakefw.Config{NoPowerSupply: true}, Capabilities{Display: true, SUPS: true}},
		{"no sups", fakefw.Config{NoSUPS: true}, Capabilities{Display: true, PowerSupply: true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, _ := newTestBridge(t, tc.cfg)
			if got := ProbeCapabilities(b); got != tc.want {
				t.Fatalf("Capabilities %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSUPSEnableStatusReadback(t *testing.T) {
	b, _ := newTestBridge(t, fakefw.Config{})

	status := make([]byte, 1)
	if _, err := b.Read(biosdef.GroupSUPS, biosdef.SUPSStatus, status); err != nil {
		t.Fatalf("Read initial charge status: %v", err)
	}
	if status[0] != 0x00 {
		t.Fatalf("Charge status 0x%02x before enabling", status[0])
	}

	if err := b.Write(biosdef.GroupSUPS, biosdef.SUPSEnable, []byte{1}); err != nil {
		t.Fatalf("Enable supercapacitor UPS: %v", err)
	}
	if _, err := b.Read(biosdef.GroupSUPS, biosdef.SUPSStatus, status); err != nil {
		t.Fatalf("Read charge status: %v", err)
	}
	if status[0] != 0x64 {
		t.Fatalf("Charge status 0x%02x after enabling, want 0x64", status[0])
	}
}
