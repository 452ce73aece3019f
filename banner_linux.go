//go:build linux

package bbapi

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/metalbridge/bbapi/internal/biosdef"
)

// hostBanner returns "sysname release" trimmed to one display line.
func hostBanner() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "Linux"
	}
	s := fmt.Sprintf("%s %s", biosdef.CString(uts.Sysname[:]), biosdef.CString(uts.Release[:]))
	if len(s) > biosdef.DisplayLineLen-1 {
		s = s[:biosdef.DisplayLineLen-1]
	}
	return s
}
