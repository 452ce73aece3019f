//go:build linux

package physmem

import (
	"fmt"
	"io"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultDevice is the physical memory device used when the caller
// does not override it.
const DefaultDevice = "/dev/mem"

type devWindow struct {
	mem  []byte
	base uint64
}

// Map maps size bytes of physical memory starting at physAddr,
// read-only. physAddr must be page aligned.
func Map(device string, physAddr, size uint64) (Window, error) {
	if device == "" {
		device = DefaultDevice
	}
	f, err := os.OpenFile(device, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("physmem: open %s: %w", device, err)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), int64(physAddr), int(size),
		unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("physmem: map 0x%x+0x%x: %w", physAddr, size, err)
	}
	return &devWindow{mem: mem, base: physAddr}, nil
}

func (w *devWindow) Size() uint64 { return uint64(len(w.mem)) }

func (w *devWindow) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(w.mem)) {
		return 0, fmt.Errorf("physmem: read offset 0x%x out of window", off)
	}
	n := copy(p, w.mem[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (w *devWindow) Close() error {
	if w.mem == nil {
		return nil
	}
	err := unix.Munmap(w.mem)
	w.mem = nil
	return err
}

// Scratch mappings handed out to the firmware through the external
// service table. The firmware returns only the base address on unmap,
// so the backing slices are kept here until then.
var (
	scratchMu sync.Mutex
	scratch   = map[uintptr][]byte{}
)

// MapPhys maps a physical scratch region read-write on behalf of the
// firmware and returns its base address, or 0 on failure. The
// signature is dictated by the service-table contract, which has no
// error channel.
func MapPhys(physAddr int64, size uint32) uintptr {
	f, err := os.OpenFile(DefaultDevice, os.O_RDWR, 0)
	if err != nil {
		return 0
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), physAddr, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return 0
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
	scratchMu.Lock()
	scratch[base] = mem
	scratchMu.Unlock()
	return base
}

// UnmapPhys releases a mapping previously handed out by MapPhys.
// Unknown addresses are ignored; the firmware occasionally unmaps
// regions it never mapped.
func UnmapPhys(base uintptr, size uint32) {
	scratchMu.Lock()
	mem, ok := scratch[base]
	if ok {
		delete(scratch, base)
	}
	scratchMu.Unlock()
	if ok {
		_ = unix.Munmap(mem)
	}
}
