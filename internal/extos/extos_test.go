package extos

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/metalbridge/bbapi/internal/bridge"
	"github.com/metalbridge/bbapi/internal/fakefw"
)

func TestTableLayout(t *testing.T) {
	table := Table()

	if len(table)%entryLen != 0 {
		t.Fatalf("Table length %d is not a multiple of %d", len(table), entryLen)
	}
	if len(table) != (len(slots)+1)*entryLen {
		t.Fatalf("Table length %d, want %d entries plus terminator", len(table), len(slots))
	}

	for i, name := range slots {
		e := table[i*entryLen : (i+1)*entryLen]
		var want [8]byte
		copy(want[:], name)
		if !bytes.Equal(e[:8], want[:]) {
			t.Fatalf("Entry %d name %q, want %q", i, e[:8], name)
		}
	}

	terminator := table[len(slots)*entryLen:]
	if !bytes.Equal(terminator, make([]byte, entryLen)) {
		t.Fatalf("Table terminator not zero: %x", terminator)
	}
}

func TestTablePlaceholders(t *testing.T) {
	table := Table()

	for i, name := range slots {
		ptr := binary.LittleEndian.Uint64(table[i*entryLen+8 : (i+1)*entryLen])
		switch name {
		case "MAPMEM", "UNMAPMEM":
			// Populated on platforms that can surface callbacks,
			// placeholder elsewhere; either way the slot must exist.
		default:
			if ptr != 0 {
				t.Fatalf("Reserved slot %q carries pointer 0x%x", name, ptr)
			}
		}
	}
}

func TestInstallShutdown(t *testing.T) {
	fw := fakefw.New(fakefw.Config{})
	b := bridge.New(fw, bridge.DefaultErrSpace)

	Install(b)
	if !fw.ServiceTableLoaded() {
		t.Fatalf("Service table not installed")
	}

	Shutdown(b)
	if fw.ServiceTableLoaded() {
		t.Fatalf("Service table still loaded after shutdown")
	}
}
