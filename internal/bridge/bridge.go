// Package bridge turns raw firmware access into a validated,
// serialized call protocol. All client traffic funnels through
// Bridge.Execute: buffer bounds are enforced against fixed staging
// buffers, caller data is copied in and out of them, and at most one
// firmware invocation is in flight at any instant.
package bridge

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"github.com/metalbridge/bbapi/internal/biosdef"
	"github.com/metalbridge/bbapi/internal/fwcall"
)

const (
	// BufferSize is the staging buffer capacity. It bounds worst-case
	// copy cost per call; requests beyond it are rejected, never
	// accommodated.
	BufferSize = 256

	// PrivilegedOffset is the first offset reserved for in-driver use.
	// Execute rejects anything at or above it.
	PrivilegedOffset uint32 = 0xB0
)

// Request is one client call, constructed from caller-supplied data
// and discarded after Execute.
type Request struct {
	Group  uint32
	Offset uint32
	In     []byte
	Out    []byte

	// BytesWritten, when non-nil, receives the byte count the
	// firmware reported. The legacy protocol cannot carry it.
	BytesWritten *uint32

	// Reserved must stay zero.
	Reserved uintptr
}

// Bridge owns the relocated firmware access path: the invoker, the two
// staging buffers, and the exclusive-access lock that serializes every
// invocation system-wide. Construct one per firmware image and inject
// it; there is no ambient instance.
type Bridge struct {
	mu  sync.Mutex
	inv fwcall.Invoker

	errSpace uint32

	in  [BufferSize]byte
	out [BufferSize]byte
}

// New returns a bridge over inv. errSpace is folded into firmware
// status codes (DefaultErrSpace, or 0 for legacy numbering).
func New(inv fwcall.Invoker, errSpace uint32) *Bridge {
	return &Bridge{inv: inv, errSpace: errSpace}
}

// Execute validates and runs one client request, returning the number
// of bytes the firmware wrote. Validation happens before any copying
// or firmware contact, each cause with its own error.
func (b *Bridge) Execute(req Request) (uint32, error) {
	if b == nil || b.inv == nil {
		return 0, ErrNotInitialized
	}
	if req.Reserved != 0 {
		return 0, ErrReservedField
	}
	if req.Offset >= PrivilegedOffset {
		return 0, fmt.Errorf("%w: 0x%x:0x%x", ErrNotPermitted, req.Group, req.Offset)
	}
	if len(req.In) > BufferSize {
		return 0, fmt.Errorf("%w: input %d bytes", ErrBufferTooLarge, len(req.In))
	}
	if len(req.Out) > BufferSize {
		return 0, fmt.Errorf("%w: output %d bytes", ErrBufferTooLarge, len(req.Out))
	}
	return b.call(req.Group, req.Offset, req.In, req.Out, req.BytesWritten)
}

// Read issues a read-style call. It skips the privilege screen and is
// for in-driver use only.
func (b *Bridge) Read(group, offset uint32, out []byte) (uint32, error) {
	if b == nil || b.inv == nil {
		return 0, ErrNotInitialized
	}
	if len(out) > BufferSize {
		return 0, fmt.Errorf("%w: output %d bytes", ErrBufferTooLarge, len(out))
	}
	return b.call(group, offset, nil, out, nil)
}

// Write issues a write-style call. It skips the privilege screen and
// is for in-driver use only.
func (b *Bridge) Write(group, offset uint32, in []byte) error {
	if b == nil || b.inv == nil {
		return ErrNotInitialized
	}
	if len(in) > BufferSize {
		return fmt.Errorf("%w: input %d bytes", ErrBufferTooLarge, len(in))
	}
	_, err := b.call(group, offset, in, nil, nil)
	return err
}

// call performs the serialized copy-in / invoke / copy-out sequence.
// The firmware operates on the staging buffers only, never on caller
// memory.
func (b *Bridge) call(group, offset uint32, in, out []byte, bytesWritten *uint32) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	copy(b.in[:], in)

	var written uint32
	status := b.inv.Invoke(group, offset,
		uintptr(unsafe.Pointer(&b.in[0])), uint32(len(in)),
		uintptr(unsafe.Pointer(&b.out[0])), uint32(len(out)),
		&written)
	runtime.KeepAlive(b)

	if status != 0 {
		slog.Debug("firmware call failed",
			"group", fmt.Sprintf("0x%x", group),
			"offset", fmt.Sprintf("0x%x", offset),
			"status", fmt.Sprintf("0x%x", status))
		return 0, &StatusError{Status: biosdef.Status(status), Space: b.errSpace}
	}

	// The firmware reports at most outSize bytes; clamp regardless so
	// a misbehaving image cannot drive the copy past the staging
	// buffer.
	if written > uint32(len(out)) {
		written = uint32(len(out))
	}
	copy(out, b.out[:written])
	if bytesWritten != nil {
		*bytesWritten = written
	}
	return written, nil
}
