package fwimage

import (
	"fmt"
	"unsafe"

	"github.com/metalbridge/bbapi/internal/physmem"
)

const (
	// The 32-bit entry-point offset immediately follows the 8-byte
	// signature.
	entryFieldOffset = 8

	// trailingMargin covers the entry trampoline and the tables past
	// the nominal image body; the entry offset is documented to sit at
	// most one page before the end of the image.
	trailingMargin = 4096
)

// Image is the relocated firmware: one contiguous executable mapping,
// immutable after construction. Clients never see pointers into it.
type Image struct {
	mem   []byte
	entry uintptr
}

// Relocate copies the firmware image at sigOff out of the window into
// fresh executable memory and resolves the entry point. It is the only
// place that obtains execute permission on host memory.
func Relocate(w physmem.Window, sigOff uint64) (*Image, error) {
	var field [4]byte
	if _, err := w.ReadAt(field[:], int64(sigOff+entryFieldOffset)); err != nil {
		return nil, fmt.Errorf("fwimage: read entry offset field: %w", err)
	}
	entryOff := uint64(field[0]) | uint64(field[1])<<8 | uint64(field[2])<<16 | uint64(field[3])<<24

	size := entryOff + trailingMargin
	if sigOff+size > w.Size() {
		return nil, fmt.Errorf("fwimage: image of 0x%x bytes at 0x%x extends past search window", size, sigOff)
	}

	mem, err := allocAnon(int(size))
	if err != nil {
		return nil, fmt.Errorf("fwimage: allocate %d bytes for firmware shadow: %w", size, err)
	}
	if _, err := w.ReadAt(mem, int64(sigOff)); err != nil {
		releaseAnon(mem)
		return nil, fmt.Errorf("fwimage: copy firmware image: %w", err)
	}
	// The region is sealed read+execute here and never written again.
	if err := sealExec(mem); err != nil {
		releaseAnon(mem)
		return nil, fmt.Errorf("fwimage: mark firmware shadow executable: %w", err)
	}

	img := &Image{
		mem:   mem,
		entry: uintptr(unsafe.Pointer(unsafe.SliceData(mem))) + uintptr(entryOff),
	}
	return img, nil
}

// Entry returns the absolute address of the firmware entry point. It
// lies strictly inside the image mapping.
func (i *Image) Entry() uintptr { return i.entry }

// Size returns the mapped image length in bytes.
func (i *Image) Size() int { return len(i.mem) }

// Close releases the executable mapping. The image must not be
// invoked afterwards.
func (i *Image) Close() error {
	if i.mem == nil {
		return nil
	}
	err := releaseAnon(i.mem)
	i.mem = nil
	i.entry = 0
	return err
}
