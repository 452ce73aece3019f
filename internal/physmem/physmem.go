// Package physmem provides read access to physical-memory windows and
// the map/unmap services the firmware requests from the host. The real
// implementation is backed by /dev/mem on Linux; tests use Buffer.
package physmem

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrUnsupportedPlatform is returned when the host has no way to
	// map physical memory.
	ErrUnsupportedPlatform = errors.New("physmem: physical memory access unsupported on this platform")
)

// Window is a mapped view of a physical address range. Reads never
// touch memory outside the window.
type Window interface {
	io.ReaderAt
	io.Closer

	// Size returns the window length in bytes.
	Size() uint64
}

// Buffer is an in-memory Window used by tests and the simulated
// firmware backend.
type Buffer []byte

func (b Buffer) Size() uint64 { return uint64(len(b)) }

func (b Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b)) {
		return 0, fmt.Errorf("physmem: read offset 0x%x out of window", off)
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (b Buffer) Close() error { return nil }
