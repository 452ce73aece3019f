//go:build !amd64 && !arm64

package fwcall

// Signature is unused on platforms without a call variant; the
// locator never runs because NewEntryInvoker fails first.
const Signature uint64 = 0

// NewEntryInvoker fails on platforms the firmware was never built for.
func NewEntryInvoker(entry uintptr) (Invoker, error) {
	return nil, ErrUnsupportedPlatform
}
