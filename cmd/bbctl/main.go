// Command bbctl is a diagnostic client for bbapid. It dials the unix
// socket, issues firmware calls over the framed protocol and prints
// the board telemetry. With a YAML board profile it doubles as a
// conformance check against known-good values.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/metalbridge/bbapi/internal/biosdef"
	"github.com/metalbridge/bbapi/internal/bridge"
	"github.com/metalbridge/bbapi/internal/proto"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: bbctl [flags] <command> [args]

commands:
  info                 board identity, firmware revision, capabilities
  supply               power supply telemetry
  ups                  battery UPS telemetry
  sups                 supercapacitor UPS state
  sensors              dump the hardware sensor table
  display <l1> [l2]    write the status display lines
  backlight on|off     switch the display backlight
  verify <profile>     check the board against a YAML profile

flags:
  -socket <path>   bbapid unix socket (default /run/bbapid.sock)
  -legacy          speak the legacy request layout
  -no-color        disable colored output
`)
	os.Exit(2)
}

func main() {
	fs := parseFlags()
	cmd := fs.command

	conn, err := net.Dial("unix", fs.socket)
	if err != nil {
		log.Fatalf("Dial %s: %v", fs.socket, err)
	}
	defer conn.Close()

	c := &client{conn: conn, legacy: fs.legacy}
	out := newPrinter(fs.noColor)

	switch cmd {
	case "info":
		err = runInfo(c, out)
	case "supply":
		err = runSupply(c, out)
	case "ups":
		err = runUPS(c, out)
	case "sups":
		err = runSUPS(c, out)
	case "sensors":
		err = runSensors(c, out)
	case "display":
		err = runDisplay(c, fs.args)
	case "backlight":
		err = runBacklight(c, fs.args)
	case "verify":
		err = runVerify(c, out, fs.args)
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

type flags struct {
	socket  string
	legacy  bool
	noColor bool
	command string
	args    []string
}

func parseFlags() flags {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.Usage = usage

	socket := fs.String("socket", "/run/bbapid.sock", "bbapid unix socket path")
	legacy := fs.Bool("legacy", false, "speak the legacy request layout")
	noColor := fs.Bool("no-color", false, "disable colored output")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Parse flags: %v", err)
	}
	if fs.NArg() < 1 {
		usage()
	}
	return flags{
		socket:  *socket,
		legacy:  *legacy,
		noColor: *noColor,
		command: fs.Arg(0),
		args:    fs.Args()[1:],
	}
}

// client issues firmware calls over one bbapid connection.
type client struct {
	conn   net.Conn
	legacy bool
}

// call performs one round trip. A negative wire status comes back as
// *callError.
func (c *client) call(group, offset uint32, in []byte, outSize uint32) ([]byte, error) {
	frame := proto.EncodeRequest(proto.Request{
		Group:   group,
		Offset:  offset,
		In:      in,
		OutSize: outSize,
	}, c.legacy)
	if err := proto.WriteFrame(c.conn, frame); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	reply, err := proto.ReadFrame(c.conn)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	resp, err := proto.DecodeResponse(reply)
	if err != nil {
		return nil, err
	}
	if resp.Status != 0 {
		return nil, &callError{status: resp.Status}
	}
	return resp.Out, nil
}

// callError is a non-zero wire status.
type callError struct {
	status int32
}

func (e *callError) Error() string {
	return fmt.Sprintf("firmware call failed: status %d", e.status)
}

// firmwareStatus recovers the firmware status code when the wire
// status carries one, stripping the error space bits.
func (e *callError) firmwareStatus() (biosdef.Status, bool) {
	if e.status >= 0 {
		return 0, false
	}
	code := uint32(-e.status) &^ bridge.DefaultErrSpace
	if code > uint32(biosdef.StatusBusy) {
		return 0, false
	}
	return biosdef.Status(code), true
}

// supports mirrors the capability probe on the daemon side: a zero
// byte read either succeeds outright or fails with a size or
// parameter complaint when the service exists at all.
func (c *client) supports(group, offset uint32) (bool, error) {
	_, err := c.call(group, offset, nil, 0)
	if err == nil {
		return true, nil
	}
	ce, ok := err.(*callError)
	if !ok {
		return false, err
	}
	if st, ok := ce.firmwareStatus(); ok {
		switch st {
		case biosdef.StatusInvalidSize, biosdef.StatusInvalidParm:
			return true, nil
		}
	}
	return false, nil
}

func (c *client) readString(group, offset, size uint32) (string, error) {
	out, err := c.call(group, offset, nil, size)
	if err != nil {
		return "", err
	}
	return biosdef.CString(out), nil
}

func (c *client) readU8(group, offset uint32) (uint8, error) {
	out, err := c.call(group, offset, nil, 1)
	if err != nil || len(out) < 1 {
		return 0, err
	}
	return out[0], err
}

func (c *client) readU16(group, offset uint32) (uint16, error) {
	out, err := c.call(group, offset, nil, 2)
	if err != nil {
		return 0, err
	}
	if len(out) < 2 {
		return 0, fmt.Errorf("short reply: %d bytes", len(out))
	}
	return uint16(out[0]) | uint16(out[1])<<8, nil
}

func (c *client) readU32(group, offset uint32) (uint32, error) {
	out, err := c.call(group, offset, nil, 4)
	if err != nil {
		return 0, err
	}
	if len(out) < 4 {
		return 0, fmt.Errorf("short reply: %d bytes", len(out))
	}
	return uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16 | uint32(out[3])<<24, nil
}

func runInfo(c *client, out *printer) error {
	name, err := c.readString(biosdef.GroupGeneral, biosdef.GeneralBoardName, 16)
	if err != nil {
		return fmt.Errorf("read board name: %w", err)
	}
	fmt.Printf("board:     %s\n", name)

	raw, err := c.call(biosdef.GroupGeneral, biosdef.GeneralVersion, nil, 3)
	if err != nil {
		return fmt.Errorf("read firmware revision: %w", err)
	}
	ver, err := biosdef.DecodeVersion(raw)
	if err != nil {
		return err
	}
	fmt.Printf("firmware:  %s\n", ver)

	if raw, err := c.call(biosdef.GroupGeneral, biosdef.GeneralBoardInfo, nil, 18); err == nil {
		if info, err := biosdef.DecodeMainboardInfo(raw); err == nil {
			fmt.Printf("mainboard: %s\n", info)
		}
	}

	platform, err := c.readU8(biosdef.GroupGeneral, biosdef.GeneralPlatformInfo)
	if err != nil {
		return fmt.Errorf("read platform info: %w", err)
	}
	bits := 32
	if platform == 0x01 {
		bits = 64
	}
	fmt.Printf("platform:  %d bit\n", bits)

	for _, probe := range []struct {
		name   string
		group  uint32
		offset uint32
	}{
		{"display", biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppEnableBacklight},
		{"power supply", biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppType},
		{"sups", biosdef.GroupSUPS, biosdef.SUPSGPIOPinEx},
	} {
		present, err := c.supports(probe.group, probe.offset)
		if err != nil {
			return fmt.Errorf("probe %s: %w", probe.name, err)
		}
		fmt.Printf("%-12s %s\n", probe.name+":", out.presence(present))
	}
	return nil
}

func runSupply(c *client, out *printer) error {
	typ, err := c.readU8(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppType)
	if err != nil {
		return fmt.Errorf("read supply type: %w", err)
	}
	fmt.Printf("type:         %d\n", typ)

	for _, rail := range []struct {
		name   string
		offset uint32
	}{
		{"5V rail", biosdef.CXPwrSupp5Volt},
		{"12V rail", biosdef.CXPwrSupp12Volt},
		{"24V rail", biosdef.CXPwrSupp24Volt},
	} {
		mv, err := c.readU16(biosdef.GroupCXPwrSupp, rail.offset)
		if err != nil {
			return fmt.Errorf("read %s: %w", rail.name, err)
		}
		fmt.Printf("%-13s %d mV\n", rail.name+":", mv)
	}

	if ma, err := c.readU16(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppCurrent); err == nil {
		fmt.Printf("current:      %d mA\n", ma)
	}
	if t, err := c.readU8(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppTemp); err == nil {
		fmt.Printf("temperature:  %d C\n", int8(t))
	}
	boots, err := c.readU32(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppBootCounter)
	if err != nil {
		return fmt.Errorf("read boot counter: %w", err)
	}
	fmt.Printf("boot counter: %d\n", boots)

	if serial, err := c.readString(biosdef.GroupPwrCtrl, biosdef.PwrCtrlSerialNumber, 17); err == nil {
		fmt.Printf("controller:   %s\n", serial)
	}
	return nil
}

func runUPS(c *client, out *printer) error {
	pct, err := c.readU8(biosdef.GroupCXUPS, biosdef.CXUPSBatteryCapacity)
	if err != nil {
		return fmt.Errorf("read battery capacity: %w", err)
	}
	fmt.Printf("battery:      %d%%\n", pct)

	status, err := c.readU8(biosdef.GroupCXUPS, biosdef.CXUPSPowerStatus)
	if err != nil {
		return fmt.Errorf("read power status: %w", err)
	}
	fmt.Printf("power status: 0x%02x\n", status)
	return nil
}

func runSUPS(c *client, out *printer) error {
	present, err := c.supports(biosdef.GroupSUPS, biosdef.SUPSGPIOPinEx)
	if err != nil {
		return err
	}
	if !present {
		if present, err = c.supports(biosdef.GroupSUPS, biosdef.SUPSGPIOPin); err != nil {
			return err
		}
	}
	fmt.Printf("present:       %s\n", out.presence(present))
	if !present {
		return nil
	}

	if status, err := c.readU8(biosdef.GroupSUPS, biosdef.SUPSStatus); err == nil {
		fmt.Printf("charge status: 0x%02x\n", status)
	}
	typ, err := c.readU8(biosdef.GroupSUPS, biosdef.SUPSGetShutdownType)
	if err != nil {
		return fmt.Errorf("read shutdown type: %w", err)
	}
	fmt.Printf("shutdown type: 0x%02x\n", typ)

	if result, err := c.readU8(biosdef.GroupSUPS, biosdef.SUPSTestResult); err == nil {
		fmt.Printf("last test:     0x%02x\n", result)
	}
	return nil
}

func runSensors(c *client, out *printer) error {
	count, err := c.readU32(biosdef.GroupSystem, biosdef.SystemCountSensors)
	if err != nil {
		return fmt.Errorf("read sensor count: %w", err)
	}
	fmt.Printf("%d sensors\n", count)
	for i := uint32(1); i <= count; i++ {
		raw, err := c.call(biosdef.GroupSystem, i, nil, biosdef.SensorInfoLen)
		if err != nil {
			return fmt.Errorf("read sensor %d: %w", i, err)
		}
		s, err := biosdef.DecodeSensorInfo(raw)
		if err != nil {
			return err
		}
		fmt.Printf("  %2d: %s\n", i, s)
	}
	return nil
}

func runDisplay(c *client, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		usage()
	}
	lines := []uint32{biosdef.CXPwrSuppDisplayLine1, biosdef.CXPwrSuppDisplayLine2}
	for i, text := range args {
		var buf [biosdef.DisplayLineLen]byte
		copy(buf[:biosdef.DisplayLineLen-1], text)
		if _, err := c.call(biosdef.GroupCXPwrSupp, lines[i], buf[:], 0); err != nil {
			return fmt.Errorf("write line %d: %w", i+1, err)
		}
	}
	_, err := c.call(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppEnableBacklight, []byte{0xFF}, 0)
	return err
}

func runBacklight(c *client, args []string) error {
	if len(args) != 1 {
		usage()
	}
	var v byte
	switch args[0] {
	case "on":
		v = 0xFF
	case "off":
		v = 0x00
	default:
		usage()
	}
	_, err := c.call(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppEnableBacklight, []byte{v}, 0)
	return err
}
