package fwimage

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/metalbridge/bbapi/internal/physmem"
)

func TestRelocate(t *testing.T) {
	const (
		sigOff   = 0x540
		entryOff = 0x100
	)
	w := windowWithSignature(0x2000, sigOff)
	binary.LittleEndian.PutUint32(w[sigOff+entryFieldOffset:], entryOff)

	img, err := Relocate(w, sigOff)
	if errors.Is(err, physmem.ErrUnsupportedPlatform) {
		t.Skipf("Executable mappings not available: %v", err)
	}
	if err != nil {
		t.Fatalf("Relocate firmware image: %v", err)
	}
	defer img.Close()

	if img.Size() != entryOff+trailingMargin {
		t.Fatalf("Image size %d, want %d", img.Size(), entryOff+trailingMargin)
	}
	if img.Entry() == 0 {
		t.Fatalf("Image entry not resolved")
	}

	// The shadow starts at the signature itself.
	if got := img.mem[:8]; binary.LittleEndian.Uint64(got) != testSignature {
		t.Fatalf("Relocated image does not start with the signature: %x", got)
	}

	if err := img.Close(); err != nil {
		t.Fatalf("Close image: %v", err)
	}
	// Close is idempotent.
	if err := img.Close(); err != nil {
		t.Fatalf("Second close: %v", err)
	}
}

func TestRelocateImagePastWindow(t *testing.T) {
	const sigOff = 0x540
	w := windowWithSignature(0x1000, sigOff)
	// Entry offset places the image end far past the window.
	binary.LittleEndian.PutUint32(w[sigOff+entryFieldOffset:], 0x100000)

	if _, err := Relocate(w, sigOff); err == nil {
		t.Fatalf("Image extending past the window was accepted")
	}
}
