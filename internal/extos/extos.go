// Package extos builds and installs the external service table: the
// fixed list of host callbacks the firmware may invoke when it needs
// operating-system services, chiefly mapping scratch windows of
// physical memory.
package extos

import (
	"encoding/binary"
	"log/slog"

	"github.com/metalbridge/bbapi/internal/biosdef"
	"github.com/metalbridge/bbapi/internal/bridge"
)

// Each entry is an 8-byte service name followed by an 8-byte function
// pointer or placeholder. A zero name marks the end of the table.
const entryLen = 16

// Declared service slots, in table order. Only MAPMEM and UNMAPMEM are
// populated; the rest are reserved for firmware revisions that want
// them and stay as placeholders.
var slots = []string{
	"READMSR",
	"GETBUSDT",
	"MAPMEM",
	"UNMAPMEM",
	"WRITEMSR",
	"SETBUSDT",
}

// Table serializes the service table, terminator included.
func Table() []byte {
	mapFn, unmapFn := callbacks()
	buf := make([]byte, (len(slots)+1)*entryLen)
	for i, name := range slots {
		e := buf[i*entryLen:]
		copy(e[:8], name)
		switch name {
		case "MAPMEM":
			binary.LittleEndian.PutUint64(e[8:16], uint64(mapFn))
		case "UNMAPMEM":
			binary.LittleEndian.PutUint64(e[8:16], uint64(unmapFn))
		}
	}
	return buf
}

// Install pushes the service table into the firmware. Must happen
// once, before any client traffic. A firmware refusal is reported but
// is not fatal to the host.
func Install(b *bridge.Bridge) {
	if err := b.Write(biosdef.GroupGeneral, biosdef.ExtOSInit, Table()); err != nil {
		slog.Warn("installing external service table failed", "err", err)
	}
}

// Shutdown signals firmware teardown at unload. Failures are logged,
// never fatal.
func Shutdown(b *bridge.Bridge) {
	if err := b.Write(biosdef.GroupGeneral, biosdef.ExtOSShutdown, nil); err != nil {
		slog.Warn("firmware teardown call failed", "err", err)
	}
}
