package bridge

import (
	"errors"

	"github.com/metalbridge/bbapi/internal/biosdef"
)

// Supports reports whether the firmware implements (group, offset). A
// zero-size read with deliberately wrong arguments is issued: "invalid
// size" or "invalid parameter" means the operation exists and objected
// to the probe, anything else - including success - means it does not.
func (b *Bridge) Supports(group, offset uint32) bool {
	_, err := b.Read(group, offset, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Status {
	case biosdef.StatusInvalidSize, biosdef.StatusInvalidParm:
		return true
	}
	return false
}

// Capabilities records which optional hardware subsystems the firmware
// exposes. Computed once at startup, read-only afterwards.
type Capabilities struct {
	Display     bool
	PowerSupply bool
	SUPS        bool
}

// ProbeCapabilities discovers the optional subsystems. The
// supercapacitor UPS moved its GPIO info between firmware revisions,
// so presence is accepted from either location.
func ProbeCapabilities(b *Bridge) Capabilities {
	return Capabilities{
		Display:     b.Supports(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppEnableBacklight),
		PowerSupply: b.Supports(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppType),
		SUPS: b.Supports(biosdef.GroupSUPS, biosdef.SUPSGPIOPinEx) ||
			b.Supports(biosdef.GroupSUPS, biosdef.SUPSGPIOPin),
	}
}
