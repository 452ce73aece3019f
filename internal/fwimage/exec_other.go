//go:build !linux

package fwimage

import "github.com/metalbridge/bbapi/internal/physmem"

func allocAnon(size int) ([]byte, error) {
	return nil, physmem.ErrUnsupportedPlatform
}

func sealExec(mem []byte) error {
	return physmem.ErrUnsupportedPlatform
}

func releaseAnon(mem []byte) error { return nil }
