package bridge

import (
	"errors"
	"fmt"

	"github.com/metalbridge/bbapi/internal/biosdef"
)

// Host-origin rejection causes. Each is raised before the firmware is
// invoked, except ErrCopyFault which covers inaccessible caller
// buffers during copy-in/copy-out.
var (
	ErrNotInitialized = errors.New("bridge: firmware not initialized")
	ErrReservedField  = errors.New("bridge: reserved field must be empty")
	ErrNotPermitted   = errors.New("bridge: offset not available to unprivileged callers")
	ErrBufferTooLarge = errors.New("bridge: buffer exceeds staging capacity")
	ErrCopyFault      = errors.New("bridge: caller buffer inaccessible")
)

// DefaultErrSpace is the constant folded into firmware status codes so
// they cannot collide with host error numbers. A zero space selects the
// legacy numbering, where the two spaces are allowed to collide; that
// ambiguity is historical and deliberate.
const DefaultErrSpace uint32 = 0x20000000

// StatusError is a firmware-reported failure, carried verbatim. The
// bridge never retries on its behalf.
type StatusError struct {
	Status biosdef.Status
	Space  uint32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bridge: firmware status 0x%x (%s)", uint32(e.Status), e.Status)
}

// Errno returns the status in the negative host error convention:
// -(code | space).
func (e *StatusError) Errno() int32 {
	return -int32(uint32(e.Status) | e.Space)
}
