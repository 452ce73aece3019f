package fwcall

import (
	"runtime"
	"unsafe"
)

// Signature marks the start of the 64-bit x86 firmware image
// ("BBAPIX64").
const Signature uint64 = 0x3436584950414242

// callFrame mirrors the argument order the trampoline feeds to the
// entry point. Field offsets are fixed; call_amd64.s indexes into it.
type callFrame struct {
	group        uint32  // +0
	offset       uint32  // +4
	in           uintptr // +8
	inSize       uint32  // +16
	_            uint32
	out          uintptr // +24
	outSize      uint32  // +32
	_            uint32
	bytesWritten uintptr // +40
}

// winCall transfers control to entry using the Microsoft x64
// convention. Implemented in call_amd64.s.
func winCall(entry uintptr, frame *callFrame) uint32

type entryInvoker struct {
	entry uintptr
}

// NewEntryInvoker returns the invoker for a relocated entry point. On
// amd64 the firmware expects the Microsoft x64 convention, which the
// host cannot express as an ordinary function call, so every
// invocation runs through the assembly trampoline.
func NewEntryInvoker(entry uintptr) (Invoker, error) {
	return &entryInvoker{entry: entry}, nil
}

func (e *entryInvoker) Invoke(group, offset uint32, in uintptr, inSize uint32, out uintptr, outSize uint32, bytesWritten *uint32) uint32 {
	frame := callFrame{
		group:        group,
		offset:       offset,
		in:           in,
		inSize:       inSize,
		out:          out,
		outSize:      outSize,
		bytesWritten: uintptr(unsafe.Pointer(bytesWritten)),
	}
	ret := winCall(e.entry, &frame)
	runtime.KeepAlive(&frame)
	return ret
}
