package bbapi

import (
	"encoding/binary"
	"fmt"

	"github.com/metalbridge/bbapi/internal/biosdef"
)

// Typed accessors over the operation catalog. Each is a thin wrapper
// around one firmware call; none of them interpret failures beyond
// reporting them.

// BoardName returns the zero-trimmed board name.
func (d *Device) BoardName() (string, error) {
	var buf [16]byte
	if _, err := d.Read(biosdef.GroupGeneral, biosdef.GeneralBoardName, buf[:]); err != nil {
		return "", err
	}
	return biosdef.CString(buf[:]), nil
}

// BoardIs reports whether the board name matches exactly.
func (d *Device) BoardIs(name string) bool {
	got, err := d.BoardName()
	return err == nil && got == name
}

// Version returns the firmware API revision.
func (d *Device) Version() (biosdef.Version, error) {
	var buf [3]byte
	if _, err := d.Read(biosdef.GroupGeneral, biosdef.GeneralVersion, buf[:]); err != nil {
		return biosdef.Version{}, err
	}
	return biosdef.DecodeVersion(buf[:])
}

// Platform64Bit reports whether the firmware identifies the platform
// as 64 bit.
func (d *Device) Platform64Bit() (bool, error) {
	var buf [1]byte
	if _, err := d.Read(biosdef.GroupGeneral, biosdef.GeneralPlatformInfo, buf[:]); err != nil {
		return false, err
	}
	return buf[0] == 0x01, nil
}

func (d *Device) readU8(group, offset uint32) (uint8, error) {
	var buf [1]byte
	_, err := d.Read(group, offset, buf[:])
	return buf[0], err
}

func (d *Device) readU16(group, offset uint32) (uint16, error) {
	var buf [2]byte
	if _, err := d.Read(group, offset, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (d *Device) readU32(group, offset uint32) (uint32, error) {
	var buf [4]byte
	if _, err := d.Read(group, offset, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// SupplyVoltage returns the named power-supply rail in millivolts.
// rail must be 5, 12 or 24.
func (d *Device) SupplyVoltage(rail int) (uint16, error) {
	var offset uint32
	switch rail {
	case 5:
		offset = biosdef.CXPwrSupp5Volt
	case 12:
		offset = biosdef.CXPwrSupp12Volt
	case 24:
		offset = biosdef.CXPwrSupp24Volt
	default:
		return 0, fmt.Errorf("bbapi: no %dV rail", rail)
	}
	return d.readU16(biosdef.GroupCXPwrSupp, offset)
}

// SupplyCurrent returns the power-supply output current in mA.
func (d *Device) SupplyCurrent() (uint16, error) {
	return d.readU16(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppCurrent)
}

// SupplyTemp returns the power-supply temperature in °C.
func (d *Device) SupplyTemp() (int8, error) {
	v, err := d.readU8(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppTemp)
	return int8(v), err
}

// SupplyBootCounter returns the power-supply boot counter.
func (d *Device) SupplyBootCounter() (uint32, error) {
	return d.readU32(biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppBootCounter)
}

// ControllerSerial returns the power controller serial number.
func (d *Device) ControllerSerial() (string, error) {
	var buf [17]byte
	if _, err := d.Read(biosdef.GroupPwrCtrl, biosdef.PwrCtrlSerialNumber, buf[:]); err != nil {
		return "", err
	}
	return biosdef.CString(buf[:]), nil
}

// ControllerBootCounter returns the power controller boot counter.
func (d *Device) ControllerBootCounter() (uint16, error) {
	return d.readU16(biosdef.GroupPwrCtrl, biosdef.PwrCtrlBootCounter)
}

// UPSBatteryCapacity returns the UPS battery capacity in percent.
func (d *Device) UPSBatteryCapacity() (uint8, error) {
	return d.readU8(biosdef.GroupCXUPS, biosdef.CXUPSBatteryCapacity)
}

// UPSPowerStatus returns the raw UPS power status register.
func (d *Device) UPSPowerStatus() (uint8, error) {
	return d.readU8(biosdef.GroupCXUPS, biosdef.CXUPSPowerStatus)
}

// SetUPSShutdownMode configures UPS shutdown behaviour.
func (d *Device) SetUPSShutdownMode(enable bool) error {
	v := byte(0)
	if enable {
		v = 1
	}
	return d.Write(biosdef.GroupCXUPS, biosdef.CXUPSSetShutdownMode, []byte{v})
}

// SetShutdownType writes the supercapacitor UPS shutdown type.
func (d *Device) SetShutdownType(t byte) error {
	return d.Write(biosdef.GroupSUPS, biosdef.SUPSSetShutdownType, []byte{t})
}

// ShutdownType reads back the supercapacitor UPS shutdown type.
func (d *Device) ShutdownType() (byte, error) {
	return d.readU8(biosdef.GroupSUPS, biosdef.SUPSGetShutdownType)
}

// StartCapacitorTest launches the supercapacitor self test. The
// result becomes available at CapacitorTestResult once the firmware
// finishes.
func (d *Device) StartCapacitorTest() error {
	return d.Write(biosdef.GroupSUPS, biosdef.SUPSCapacityTest, nil)
}

// CapacitorTestResult reads the last self-test result register.
func (d *Device) CapacitorTestResult() (byte, error) {
	return d.readU8(biosdef.GroupSUPS, biosdef.SUPSTestResult)
}

// Sensors reads the whole hardware sensor table.
func (d *Device) Sensors() ([]biosdef.SensorInfo, error) {
	count, err := d.readU32(biosdef.GroupSystem, biosdef.SystemCountSensors)
	if err != nil {
		return nil, err
	}
	sensors := make([]biosdef.SensorInfo, 0, count)
	for i := uint32(1); i <= count; i++ {
		var buf [biosdef.SensorInfoLen]byte
		if _, err := d.Read(biosdef.GroupSystem, i, buf[:]); err != nil {
			return sensors, err
		}
		s, err := biosdef.DecodeSensorInfo(buf[:])
		if err != nil {
			return sensors, err
		}
		sensors = append(sensors, s)
	}
	return sensors, nil
}
