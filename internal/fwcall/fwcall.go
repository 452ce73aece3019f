// Package fwcall invokes the relocated firmware entry point. The
// firmware was not compiled against the host's native calling
// convention on every architecture, so the actual call goes through an
// architecture-specific variant selected at build time; there is never
// a runtime branch between conventions.
package fwcall

import "errors"

// ErrUnsupportedPlatform means no call variant exists for this build
// target.
var ErrUnsupportedPlatform = errors.New("fwcall: no firmware call convention for this platform")

// Invoker performs one firmware call and returns the raw firmware
// status. A nonzero status is reported verbatim; Invoke never retries
// and never aborts the process. Implementations may block for as long
// as the firmware pleases; there is no way to interrupt a call once
// control has transferred.
type Invoker interface {
	Invoke(group, offset uint32, in uintptr, inSize uint32, out uintptr, outSize uint32, bytesWritten *uint32) uint32
}
