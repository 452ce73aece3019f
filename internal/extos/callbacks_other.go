//go:build !arm64

package extos

// The amd64 firmware expects Microsoft-convention callbacks, which the
// host cannot emit; the slots stay as placeholders and the firmware
// treats the services as unavailable, the same contract the reserved
// slots use.
func callbacks() (mapFn, unmapFn uintptr) {
	return 0, 0
}
