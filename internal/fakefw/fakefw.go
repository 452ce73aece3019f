// Package fakefw is a simulated firmware backend. It implements the
// same invocation contract as the relocated vendor routine, operating
// on the raw staging pointers it is handed, and reproduces the status
// codes real firmware uses: wrong buffer sizes answer "invalid size",
// unknown operations answer "service not supported". It also
// instruments entry and exit so tests can assert that invocations
// never overlap.
package fakefw

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/metalbridge/bbapi/internal/biosdef"
)

// Config selects which optional subsystems the simulated board has.
type Config struct {
	NoDisplay     bool
	NoPowerSupply bool
	NoSUPS        bool
	NoCXUPS       bool

	// Hold keeps every invocation busy for the given duration,
	// widening the race window for concurrency tests.
	Hold time.Duration
}

// Firmware is one simulated board.
type Firmware struct {
	cfg Config

	calls      atomic.Int64
	inFlight   atomic.Int32
	overlapped atomic.Bool

	mu            sync.Mutex
	backlight     byte
	displayLines  [2][biosdef.DisplayLineLen]byte
	supsEnabled   byte
	shutdownType  byte
	capTestResult byte
	extosLoaded   bool
}

// New returns a simulated board with plausible telemetry.
func New(cfg Config) *Firmware {
	f := &Firmware{cfg: cfg}
	f.capTestResult = 0x01 // last self test passed
	return f
}

// Calls returns how many times the firmware entry was invoked.
func (f *Firmware) Calls() int64 { return f.calls.Load() }

// Overlapped reports whether two invocations were ever in flight at
// once. The call contract forbids it.
func (f *Firmware) Overlapped() bool { return f.overlapped.Load() }

// Invoke implements fwcall.Invoker.
func (f *Firmware) Invoke(group, offset uint32, in uintptr, inSize uint32, out uintptr, outSize uint32, bytesWritten *uint32) uint32 {
	f.calls.Add(1)
	if f.inFlight.Add(1) != 1 {
		f.overlapped.Store(true)
	}
	defer f.inFlight.Add(-1)

	if f.cfg.Hold > 0 {
		time.Sleep(f.cfg.Hold)
	}

	var inBuf, outBuf []byte
	if in != 0 && inSize > 0 {
		inBuf = unsafe.Slice((*byte)(unsafe.Pointer(in)), inSize)
	}
	if out != 0 && outSize > 0 {
		outBuf = unsafe.Slice((*byte)(unsafe.Pointer(out)), outSize)
	}

	written, st := f.dispatch(group, offset, inBuf, outBuf)
	if st == biosdef.StatusOK && bytesWritten != nil {
		*bytesWritten = uint32(written)
	}
	return uint32(st)
}

func (f *Firmware) dispatch(group, offset uint32, in, out []byte) (int, biosdef.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch group {
	case biosdef.GroupGeneral:
		return f.general(offset, in, out)
	case biosdef.GroupPwrCtrl:
		return f.pwrCtrl(offset, in, out)
	case biosdef.GroupSystem:
		return f.system(offset, in, out)
	case biosdef.GroupSUPS:
		if f.cfg.NoSUPS {
			return 0, biosdef.StatusSrvNotSupp
		}
		return f.sups(offset, in, out)
	case biosdef.GroupCXPwrSupp:
		return f.cxPwrSupp(offset, in, out)
	case biosdef.GroupCXUPS:
		if f.cfg.NoCXUPS {
			return 0, biosdef.StatusSrvNotSupp
		}
		return f.cxUPS(offset, in, out)
	}
	return 0, biosdef.StatusSrvNotSupp
}

// fixed serves a read-only operation with an exact wire size.
func fixed(in, out []byte, record []byte) (int, biosdef.Status) {
	if len(in) != 0 || len(out) != len(record) {
		return 0, biosdef.StatusInvalidSize
	}
	copy(out, record)
	return len(record), biosdef.StatusOK
}

func u16(v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return b[:]
}

func u32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func (f *Firmware) general(offset uint32, in, out []byte) (int, biosdef.Status) {
	switch offset {
	case biosdef.GeneralVersion:
		return fixed(in, out, []byte{3, 14, 7})
	case biosdef.GeneralBoardName:
		if len(in) != 0 || len(out) == 0 {
			return 0, biosdef.StatusInvalidSize
		}
		var name [16]byte
		copy(name[:], "CBS3400")
		n := copy(out, name[:])
		return n, biosdef.StatusOK
	case biosdef.GeneralBoardInfo:
		rec := make([]byte, 18)
		copy(rec, "CBS3400")
		rec[16], rec[17] = 1, 2
		return fixed(in, out, rec)
	case biosdef.GeneralPlatformInfo:
		return fixed(in, out, []byte{0x01})
	case biosdef.ExtOSInit:
		if len(in) == 0 || len(in)%16 != 0 {
			return 0, biosdef.StatusInvalidSize
		}
		f.extosLoaded = true
		return 0, biosdef.StatusOK
	case biosdef.ExtOSShutdown:
		if len(in) != 0 || len(out) != 0 {
			return 0, biosdef.StatusInvalidSize
		}
		f.extosLoaded = false
		return 0, biosdef.StatusOK
	}
	return 0, biosdef.StatusSrvNotSupp
}

func (f *Firmware) pwrCtrl(offset uint32, in, out []byte) (int, biosdef.Status) {
	switch offset {
	case biosdef.PwrCtrlBootloaderRev:
		return fixed(in, out, []byte{1, 0, 22})
	case biosdef.PwrCtrlFirmwareRev:
		return fixed(in, out, []byte{2, 3, 41})
	case biosdef.PwrCtrlDeviceID:
		return fixed(in, out, []byte{0x0C})
	case biosdef.PwrCtrlOperatingTime:
		return fixed(in, out, u32(51840)) // minutes
	case biosdef.PwrCtrlBoardTemp:
		return fixed(in, out, []byte{18, 42}) // min, max
	case biosdef.PwrCtrlInputVoltage:
		return fixed(in, out, []byte{23, 25})
	case biosdef.PwrCtrlSerialNumber:
		rec := make([]byte, 17)
		copy(rec, "BB1937-0042")
		return fixed(in, out, rec)
	case biosdef.PwrCtrlBootCounter:
		return fixed(in, out, u16(412))
	case biosdef.PwrCtrlProductionDate:
		return fixed(in, out, []byte{37, 19}) // week, year
	case biosdef.PwrCtrlBoardPosition:
		return fixed(in, out, []byte{0x00})
	case biosdef.PwrCtrlShutdownReason:
		return fixed(in, out, []byte{0, 0, 1})
	case biosdef.PwrCtrlTestCounter:
		return fixed(in, out, []byte{3})
	case biosdef.PwrCtrlTestNumber:
		rec := make([]byte, 7)
		copy(rec, "171031")
		return fixed(in, out, rec)
	}
	return 0, biosdef.StatusSrvNotSupp
}

func (f *Firmware) system(offset uint32, in, out []byte) (int, biosdef.Status) {
	sensors := []biosdef.SensorInfo{
		{Type: 1, Location: 1, Value: 38},
		{Type: 2, Location: 3, Value: 24120},
	}
	if offset == biosdef.SystemCountSensors {
		return fixed(in, out, u32(uint32(len(sensors))))
	}
	if offset >= 1 && int(offset) <= len(sensors) {
		s := sensors[offset-1]
		rec := make([]byte, biosdef.SensorInfoLen)
		binary.LittleEndian.PutUint16(rec[0:2], s.Type)
		binary.LittleEndian.PutUint16(rec[2:4], s.Location)
		binary.LittleEndian.PutUint32(rec[4:8], uint32(s.Value))
		copy(rec[8:20], "sensor")
		return fixed(in, out, rec)
	}
	return 0, biosdef.StatusSrvNotSupp
}

func (f *Firmware) sups(offset uint32, in, out []byte) (int, biosdef.Status) {
	switch offset {
	case biosdef.SUPSEnable:
		if len(in) != 1 || len(out) != 0 {
			return 0, biosdef.StatusInvalidSize
		}
		if in[0] > 1 {
			return 0, biosdef.StatusInvalidParm
		}
		f.supsEnabled = in[0]
		return 0, biosdef.StatusOK
	case biosdef.SUPSStatus:
		status := byte(0x00)
		if f.supsEnabled != 0 {
			status = 0x64 // fully charged
		}
		return fixed(in, out, []byte{status})
	case biosdef.SUPSRevision:
		return fixed(in, out, []byte{2, 7})
	case biosdef.SUPSPwrFailCounter:
		return fixed(in, out, u16(9))
	case biosdef.SUPSPwrFailTimes:
		rec := make([]byte, 12)
		binary.LittleEndian.PutUint32(rec[0:4], 190233)
		binary.LittleEndian.PutUint32(rec[4:8], 201811)
		binary.LittleEndian.PutUint32(rec[8:12], 224410)
		return fixed(in, out, rec)
	case biosdef.SUPSSetShutdownType:
		if len(in) != 1 || len(out) != 0 {
			return 0, biosdef.StatusInvalidSize
		}
		f.shutdownType = in[0]
		return 0, biosdef.StatusOK
	case biosdef.SUPSGetShutdownType:
		return fixed(in, out, []byte{f.shutdownType})
	case biosdef.SUPSActiveCount:
		return fixed(in, out, []byte{2})
	case biosdef.SUPSInternalPwrFStatus:
		return fixed(in, out, []byte{0})
	case biosdef.SUPSCapacityTest:
		if len(in) != 0 || len(out) != 0 {
			return 0, biosdef.StatusInvalidSize
		}
		f.capTestResult = 0x01
		return 0, biosdef.StatusOK
	case biosdef.SUPSTestResult:
		return fixed(in, out, []byte{f.capTestResult})
	case biosdef.SUPSGPIOPin:
		return fixed(in, out, u32(0x00060010))
	case biosdef.SUPSGPIOPinEx:
		rec := make([]byte, 8)
		binary.LittleEndian.PutUint64(rec, 0x0000000400060010)
		return fixed(in, out, rec)
	}
	return 0, biosdef.StatusSrvNotSupp
}

func (f *Firmware) cxPwrSupp(offset uint32, in, out []byte) (int, biosdef.Status) {
	if f.cfg.NoPowerSupply {
		// Telemetry absent; the display may still exist on its own.
		switch offset {
		case biosdef.CXPwrSuppEnableBacklight, biosdef.CXPwrSuppDisplayLine1, biosdef.CXPwrSuppDisplayLine2:
		default:
			return 0, biosdef.StatusSrvNotSupp
		}
	}
	switch offset {
	case biosdef.CXPwrSuppType:
		return fixed(in, out, u32(91))
	case biosdef.CXPwrSuppSerialNo:
		return fixed(in, out, u32(170529))
	case biosdef.CXPwrSuppFwVersion:
		return fixed(in, out, []byte{4, 9})
	case biosdef.CXPwrSuppBootCounter:
		return fixed(in, out, u32(412))
	case biosdef.CXPwrSuppOperationTime:
		return fixed(in, out, u32(51840))
	case biosdef.CXPwrSupp5Volt, biosdef.CXPwrSuppMax5Volt:
		return fixed(in, out, u16(5040))
	case biosdef.CXPwrSupp12Volt, biosdef.CXPwrSuppMax12Volt:
		return fixed(in, out, u16(12110))
	case biosdef.CXPwrSupp24Volt, biosdef.CXPwrSuppMax24Volt:
		return fixed(in, out, u16(24200))
	case biosdef.CXPwrSuppTemp, biosdef.CXPwrSuppMinTemp, biosdef.CXPwrSuppMaxTemp:
		return fixed(in, out, []byte{34})
	case biosdef.CXPwrSuppCurrent, biosdef.CXPwrSuppMaxCurrent:
		return fixed(in, out, u16(1310))
	case biosdef.CXPwrSuppPower, biosdef.CXPwrSuppMaxPower:
		return fixed(in, out, u32(31440))
	case biosdef.CXPwrSuppButtonState:
		return fixed(in, out, []byte{0x00})
	case biosdef.CXPwrSuppEnableBacklight:
		if f.cfg.NoDisplay {
			return 0, biosdef.StatusSrvNotSupp
		}
		if len(in) != 1 || len(out) != 0 {
			return 0, biosdef.StatusInvalidSize
		}
		f.backlight = in[0]
		return 0, biosdef.StatusOK
	case biosdef.CXPwrSuppDisplayLine1, biosdef.CXPwrSuppDisplayLine2:
		if f.cfg.NoDisplay {
			return 0, biosdef.StatusSrvNotSupp
		}
		line := &f.displayLines[offset-biosdef.CXPwrSuppDisplayLine1]
		switch {
		case len(in) == biosdef.DisplayLineLen && len(out) == 0:
			copy(line[:], in)
			return 0, biosdef.StatusOK
		case len(in) == 0 && len(out) == biosdef.DisplayLineLen:
			copy(out, line[:])
			return biosdef.DisplayLineLen, biosdef.StatusOK
		}
		return 0, biosdef.StatusInvalidSize
	}
	return 0, biosdef.StatusSrvNotSupp
}

func (f *Firmware) cxUPS(offset uint32, in, out []byte) (int, biosdef.Status) {
	switch offset {
	case biosdef.CXUPSEnabled:
		return fixed(in, out, []byte{0x01})
	case biosdef.CXUPSSetEnabled:
		if len(in) != 1 || len(out) != 0 {
			return 0, biosdef.StatusInvalidSize
		}
		if in[0] > 1 {
			return 0, biosdef.StatusInvalidParm
		}
		return 0, biosdef.StatusOK
	case biosdef.CXUPSFirmwareVer:
		return fixed(in, out, []byte{6, 2})
	case biosdef.CXUPSPowerStatus:
		return fixed(in, out, []byte{0x01}) // online
	case biosdef.CXUPSBatteryStatus:
		return fixed(in, out, []byte{0x00})
	case biosdef.CXUPSBatteryCapacity:
		return fixed(in, out, []byte{100})
	case biosdef.CXUPSBatteryRuntime:
		return fixed(in, out, u32(1800))
	case biosdef.CXUPSBootCounter:
		return fixed(in, out, u32(412))
	case biosdef.CXUPSOperationTime:
		return fixed(in, out, u32(51840))
	case biosdef.CXUPSPowerFailCount:
		return fixed(in, out, u32(9))
	case biosdef.CXUPSBatteryCritical:
		return fixed(in, out, []byte{0x00})
	case biosdef.CXUPSBatteryPresent:
		return fixed(in, out, []byte{0x01})
	case biosdef.CXUPSSetShutdownMode:
		if len(in) != 1 || len(out) != 0 {
			return 0, biosdef.StatusInvalidSize
		}
		return 0, biosdef.StatusOK
	case biosdef.CXUPSOutputVolt, biosdef.CXUPSMaxOutputVolt:
		return fixed(in, out, u16(24180))
	case biosdef.CXUPSInputVolt, biosdef.CXUPSMaxInputVolt:
		return fixed(in, out, u16(24310))
	case biosdef.CXUPSTemp, biosdef.CXUPSMinTemp, biosdef.CXUPSMaxTemp:
		return fixed(in, out, []byte{31})
	case biosdef.CXUPSChargingCurrent, biosdef.CXUPSMaxChargingCurrent:
		return fixed(in, out, u16(120))
	case biosdef.CXUPSChargingPower, biosdef.CXUPSMaxChargingPower:
		return fixed(in, out, u32(2900))
	case biosdef.CXUPSDischargeCurrent, biosdef.CXUPSMaxDischargeCurrent:
		return fixed(in, out, u16(0))
	case biosdef.CXUPSDischargePower, biosdef.CXUPSMaxDischargePower:
		return fixed(in, out, u32(0))
	}
	return 0, biosdef.StatusSrvNotSupp
}

// Backlight returns the current backlight register, for tests.
func (f *Firmware) Backlight() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backlight
}

// ServiceTableLoaded reports whether the external service table was
// installed and not yet torn down.
func (f *Firmware) ServiceTableLoaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extosLoaded
}
