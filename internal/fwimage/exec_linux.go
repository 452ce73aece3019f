//go:build linux

package fwimage

import "golang.org/x/sys/unix"

func allocAnon(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANONYMOUS|unix.MAP_PRIVATE)
}

func sealExec(mem []byte) error {
	return unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC)
}

func releaseAnon(mem []byte) error {
	return unix.Munmap(mem)
}
