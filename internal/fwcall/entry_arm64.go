package fwcall

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// Signature marks the start of the arm64 firmware image ("BBAPIA64").
const Signature uint64 = 0x3436414950414242

type entryInvoker struct {
	entry uintptr
}

// NewEntryInvoker returns the invoker for a relocated entry point. On
// arm64 the firmware convention coincides with the platform C ABI, so
// the entry address is called as an ordinary C function pointer.
func NewEntryInvoker(entry uintptr) (Invoker, error) {
	return &entryInvoker{entry: entry}, nil
}

func (e *entryInvoker) Invoke(group, offset uint32, in uintptr, inSize uint32, out uintptr, outSize uint32, bytesWritten *uint32) uint32 {
	ret, _, _ := purego.SyscallN(e.entry,
		uintptr(group),
		uintptr(offset),
		in,
		uintptr(inSize),
		out,
		uintptr(outSize),
		uintptr(unsafe.Pointer(bytesWritten)),
	)
	return uint32(ret)
}
