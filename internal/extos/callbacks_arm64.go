package extos

import (
	"github.com/ebitengine/purego"

	"github.com/metalbridge/bbapi/internal/physmem"
)

// On arm64 the firmware calls table entries with the platform C ABI,
// so Go functions can back them directly.
func callbacks() (mapFn, unmapFn uintptr) {
	mapFn = purego.NewCallback(func(physAddr int64, size uint32) uintptr {
		return physmem.MapPhys(physAddr, size)
	})
	unmapFn = purego.NewCallback(func(base uintptr, size uint32) uintptr {
		physmem.UnmapPhys(base, size)
		return 0
	})
	return mapFn, unmapFn
}
