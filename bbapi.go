// Package bbapi is a bridge to the firmware service routine embedded
// on industrial controller boards. At startup the routine is located
// in a physical-memory window, shadowed into executable RAM, and
// wrapped in a validated, serialized call-forwarding interface. Every
// firmware operation is addressed by a (group, offset) pair and
// exchanges small fixed-size buffers; the meaning of each operation
// belongs to the firmware alone.
package bbapi

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/metalbridge/bbapi/internal/bridge"
	"github.com/metalbridge/bbapi/internal/extos"
	"github.com/metalbridge/bbapi/internal/fwcall"
	"github.com/metalbridge/bbapi/internal/fwimage"
	"github.com/metalbridge/bbapi/internal/physmem"
)

// Request is one client call. See Execute.
type Request = bridge.Request

// Capabilities lists the optional hardware subsystems the firmware
// reported at startup.
type Capabilities = bridge.Capabilities

// StatusError is a firmware-reported failure.
type StatusError = bridge.StatusError

// Rejection causes, re-exported for callers.
var (
	ErrNotInitialized = bridge.ErrNotInitialized
	ErrReservedField  = bridge.ErrReservedField
	ErrNotPermitted   = bridge.ErrNotPermitted
	ErrBufferTooLarge = bridge.ErrBufferTooLarge
	ErrCopyFault      = bridge.ErrCopyFault

	// ErrNotPresent means the firmware signature was not found: the
	// bridge must not install itself on this host.
	ErrNotPresent = fwimage.ErrNotPresent
)

// Device is an opened firmware bridge. All methods are safe for
// concurrent use; invocations are serialized internally.
type Device struct {
	br   *bridge.Bridge
	img  *fwimage.Image
	caps Capabilities
}

// Open locates, relocates and initializes the firmware. Any failure
// before the bridge is ready is fatal and nothing is retried: a host
// without the signature simply has no firmware.
func Open(cfg Config) (*Device, error) {
	cfg = cfg.withDefaults()
	if cfg.SearchArea > fwimage.MaxSearchArea {
		return nil, fmt.Errorf("bbapi: search area 0x%x exceeds limit 0x%x", cfg.SearchArea, uint64(fwimage.MaxSearchArea))
	}

	w, err := physmem.Map(cfg.Device, cfg.PhysAddr, cfg.SearchArea)
	if err != nil {
		return nil, fmt.Errorf("bbapi: map search window: %w", err)
	}
	defer w.Close()

	sigOff, err := fwimage.Locate(w, fwcall.Signature)
	if err != nil {
		if errors.Is(err, fwimage.ErrNotPresent) {
			return nil, fmt.Errorf("bbapi: firmware not available on this host: %w", err)
		}
		return nil, err
	}

	img, err := fwimage.Relocate(w, sigOff)
	if err != nil {
		return nil, err
	}
	slog.Info("firmware relocated",
		"phys", fmt.Sprintf("0x%x", cfg.PhysAddr+sigOff),
		"size", img.Size())

	inv, err := fwcall.NewEntryInvoker(img.Entry())
	if err != nil {
		img.Close()
		return nil, err
	}

	d := newDevice(inv, cfg.LegacyErrors)
	d.img = img
	return d, nil
}

// OpenBackend wires the bridge over an arbitrary invoker, bypassing
// discovery and relocation. It backs the simulator and tests.
func OpenBackend(inv fwcall.Invoker, cfg Config) *Device {
	return newDevice(inv, cfg.LegacyErrors)
}

func newDevice(inv fwcall.Invoker, legacyErrors bool) *Device {
	space := bridge.DefaultErrSpace
	if legacyErrors {
		// Historical numbering: firmware codes share the host errno
		// space. Collisions are expected and tolerated.
		space = 0
	}
	d := &Device{br: bridge.New(inv, space)}
	d.caps = bridge.ProbeCapabilities(d.br)
	slog.Info("firmware capabilities",
		"display", d.caps.Display,
		"powerSupply", d.caps.PowerSupply,
		"sups", d.caps.SUPS)
	extos.Install(d.br)
	return d
}

// Capabilities returns the startup probe results.
func (d *Device) Capabilities() Capabilities { return d.caps }

// Execute validates and forwards one client request, returning the
// number of bytes the firmware wrote into Request.Out.
func (d *Device) Execute(req Request) (uint32, error) {
	return d.br.Execute(req)
}

// Read issues an unscreened read-style call. Reserved for
// driver-internal consumers; external traffic goes through Execute.
func (d *Device) Read(group, offset uint32, out []byte) (uint32, error) {
	return d.br.Read(group, offset, out)
}

// Write issues an unscreened write-style call. Reserved for
// driver-internal consumers.
func (d *Device) Write(group, offset uint32, in []byte) error {
	return d.br.Write(group, offset, in)
}

// Close signals firmware teardown and releases the relocated image.
// The device must not be used afterwards.
func (d *Device) Close() error {
	if d.br == nil {
		return nil
	}
	extos.Shutdown(d.br)
	d.br = nil
	if d.img != nil {
		err := d.img.Close()
		d.img = nil
		return err
	}
	return nil
}
