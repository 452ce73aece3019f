//go:build !linux

package bbapi

import "runtime"

func hostBanner() string {
	return runtime.GOOS
}
