//go:build !linux

package physmem

// Map is unavailable without /dev/mem.
func Map(device string, physAddr, size uint64) (Window, error) {
	return nil, ErrUnsupportedPlatform
}

// MapPhys always fails on hosts without physical memory access.
func MapPhys(physAddr int64, size uint32) uintptr { return 0 }

// UnmapPhys is a no-op on hosts without physical memory access.
func UnmapPhys(base uintptr, size uint32) {}
