// Package fwimage locates the firmware service routine in a physical
// memory window and shadows it into executable RAM. The firmware ships
// in slow flash; calling it in place would stall every invocation, so
// the image is copied out once at startup and never touched again.
package fwimage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/metalbridge/bbapi/internal/physmem"
)

const (
	// stepSize is the signature placement granularity promised by the
	// firmware vendor. The true alignment of the signature inside the
	// window is not guaranteed to coincide with it, so the scan walks
	// every sub-alignment.
	stepSize = 0x10

	// MaxSearchArea bounds the signature search window. Oversized
	// windows are a configuration error, not something to clamp.
	MaxSearchArea = 0x200000
)

// ErrNotPresent means the whole window was scanned without finding the
// signature: the firmware does not exist on this host.
var ErrNotPresent = errors.New("fwimage: firmware signature not found")

// Locate scans the window for the 8-byte signature and returns its
// byte offset. The signature is read as two 32-bit halves, low half
// first, the way the memory-mapped flash presents it.
func Locate(w physmem.Window, signature uint64) (uint64, error) {
	size := w.Size()
	if size > MaxSearchArea {
		return 0, fmt.Errorf("fwimage: search window 0x%x exceeds limit 0x%x", size, MaxSearchArea)
	}
	if size < stepSize {
		return 0, ErrNotPresent
	}

	buf := make([]byte, size)
	if _, err := w.ReadAt(buf, 0); err != nil {
		return 0, fmt.Errorf("fwimage: read search window: %w", err)
	}

	for off := uint64(0); off < stepSize; off++ {
		for pos := off; pos+stepSize <= size; pos += stepSize {
			low := binary.LittleEndian.Uint32(buf[pos:])
			high := binary.LittleEndian.Uint32(buf[pos+4:])
			if uint64(high)<<32|uint64(low) == signature {
				return pos, nil
			}
		}
	}
	return 0, ErrNotPresent
}
