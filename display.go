package bbapi

import (
	"fmt"
	"log/slog"

	"github.com/metalbridge/bbapi/internal/biosdef"
)

// EnableBacklight switches the status display backlight.
func (d *Device) EnableBacklight(on bool) error {
	v := byte(0x00)
	if on {
		v = 0xFF
	}
	return d.Write(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppEnableBacklight, []byte{v})
}

// DisplayLine writes one line (1 or 2) of the status display. Text
// beyond 16 characters is truncated; shorter text is zero padded.
func (d *Device) DisplayLine(line int, text string) error {
	var offset uint32
	switch line {
	case 1:
		offset = biosdef.CXPwrSuppDisplayLine1
	case 2:
		offset = biosdef.CXPwrSuppDisplayLine2
	default:
		return fmt.Errorf("bbapi: display has no line %d", line)
	}
	var buf [biosdef.DisplayLineLen]byte
	copy(buf[:biosdef.DisplayLineLen-1], text)
	return d.Write(biosdef.GroupCXPwrSupp, offset, buf[:])
}

// UpdateDisplay pushes the startup banner: board name on line 1, the
// host OS identification on line 2, backlight on. Only meaningful when
// the display capability was probed present; failures are logged and
// swallowed since a missing banner never blocks startup.
func (d *Device) UpdateDisplay() {
	if !d.caps.Display {
		return
	}
	if err := d.DisplayLine(2, hostBanner()); err != nil {
		slog.Warn("writing display banner failed", "err", err)
	}
	if name, err := d.BoardName(); err == nil {
		if err := d.DisplayLine(1, name); err != nil {
			slog.Warn("writing board name to display failed", "err", err)
		}
	}
	if err := d.EnableBacklight(true); err != nil {
		slog.Warn("enabling display backlight failed", "err", err)
	}
}
