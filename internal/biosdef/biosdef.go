// Package biosdef holds the published address catalog of the board
// firmware: index groups, index offsets within each group, and the raw
// status codes the service routine reports. The bridge treats all of
// these as opaque; they are collected here for the typed helpers and
// the diagnostic tools.
package biosdef

// Status is a raw firmware status code, before translation into the
// host error convention.
type Status uint32

const (
	StatusOK            Status = 0x00
	StatusSrvNotSupp    Status = 0x01 // operation not implemented by this firmware
	StatusInvalidSize   Status = 0x02 // in/out size does not match the operation
	StatusInvalidParm   Status = 0x03 // parameter rejected
	StatusPortNotOpen   Status = 0x04
	StatusInvalidHandle Status = 0x05
	StatusBusy          Status = 0x06
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSrvNotSupp:
		return "service not supported"
	case StatusInvalidSize:
		return "invalid size"
	case StatusInvalidParm:
		return "invalid parameter"
	case StatusPortNotOpen:
		return "port not open"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusBusy:
		return "busy"
	}
	return "unknown status"
}

// Index groups. A group selects an operation namespace; offsets below
// are only meaningful within their group.
const (
	GroupGeneral   uint32 = 0x00000000
	GroupLED       uint32 = 0x00000001
	GroupWatchdog  uint32 = 0x00000002
	GroupPwrCtrl   uint32 = 0x00000003
	GroupSUPS      uint32 = 0x00000004
	GroupSystem    uint32 = 0x00000005
	GroupCXPwrSupp uint32 = 0x00000006
	GroupCXUPS     uint32 = 0x00000007
)

// Group 0 service offsets. These are driver-internal: InitExtOS and
// ShutdownExtOS sit above the unprivileged offset ceiling on purpose.
const (
	ExtOSInit     uint32 = 0x000000FE
	ExtOSShutdown uint32 = 0x000000FF
)

// GroupGeneral offsets.
const (
	GeneralVersion      uint32 = 0x00000000 // R: 4 (Version)
	GeneralBoardName    uint32 = 0x00000001 // R: 16 bytes, zero padded
	GeneralBoardInfo    uint32 = 0x00000002 // R: MainboardInfo
	GeneralPlatformInfo uint32 = 0x00000003 // R: 1 (0x00 32 bit, 0x01 64 bit)
)

// GroupPwrCtrl offsets.
const (
	PwrCtrlBootloaderRev  uint32 = 0x00000000 // R: 3 (Revision)
	PwrCtrlFirmwareRev    uint32 = 0x00000001 // R: 3 (Revision)
	PwrCtrlDeviceID       uint32 = 0x00000002 // R: 1
	PwrCtrlOperatingTime  uint32 = 0x00000003 // R: 4, minutes
	PwrCtrlBoardTemp      uint32 = 0x00000004 // R: 2, min/max
	PwrCtrlInputVoltage   uint32 = 0x00000005 // R: 2, min/max
	PwrCtrlSerialNumber   uint32 = 0x00000006 // R: 17 bytes
	PwrCtrlBootCounter    uint32 = 0x00000007 // R: 2
	PwrCtrlProductionDate uint32 = 0x00000008 // R: 2, week/year
	PwrCtrlBoardPosition  uint32 = 0x00000009 // R: 1
	PwrCtrlShutdownReason uint32 = 0x0000000A // R: 3
	PwrCtrlTestCounter    uint32 = 0x0000000B // R: 1
	PwrCtrlTestNumber     uint32 = 0x0000000C // R: 7 bytes
)

// GroupSUPS (supercapacitor UPS) offsets. GPIO info moved from
// GPIOPin to GPIOPinEx across firmware revisions; presence probes must
// try both.
const (
	SUPSEnable             uint32 = 0x00000000 // W: 1 (0 disable, 1 enable)
	SUPSStatus             uint32 = 0x00000001 // R: 1 (0 off, 0x64 charged)
	SUPSRevision           uint32 = 0x00000002 // R: 2
	SUPSPwrFailCounter     uint32 = 0x00000003 // R: 2
	SUPSPwrFailTimes       uint32 = 0x00000004 // R: 12, last three times
	SUPSSetShutdownType    uint32 = 0x00000005 // W: 1
	SUPSGetShutdownType    uint32 = 0x00000006 // R: 1
	SUPSActiveCount        uint32 = 0x00000007 // R: 1
	SUPSInternalPwrFStatus uint32 = 0x00000008 // R: 1
	SUPSCapacityTest       uint32 = 0x00000009 // W: 0, starts self test
	SUPSTestResult         uint32 = 0x0000000A // R: 1
	SUPSGPIOPin            uint32 = 0x000000A0 // R: 4 (legacy location)
	SUPSGPIOPinEx          uint32 = 0x000000A1 // R: 8
)

// GroupSystem offsets. Sensor records are read at offset 1..count.
const (
	SystemCountSensors uint32 = 0x00000000 // R: 4
)

// GroupCXPwrSupp (CX power supply) offsets.
const (
	CXPwrSuppType            uint32 = 0x00000010 // R: 4
	CXPwrSuppSerialNo        uint32 = 0x00000011 // R: 4
	CXPwrSuppFwVersion       uint32 = 0x00000012 // R: 2
	CXPwrSuppBootCounter     uint32 = 0x00000013 // R: 4
	CXPwrSuppOperationTime   uint32 = 0x00000014 // R: 4, minutes
	CXPwrSupp5Volt           uint32 = 0x00000030 // R: 2, mV
	CXPwrSuppMax5Volt        uint32 = 0x00000031 // R: 2, mV
	CXPwrSupp12Volt          uint32 = 0x00000032 // R: 2, mV
	CXPwrSuppMax12Volt       uint32 = 0x00000033 // R: 2, mV
	CXPwrSupp24Volt          uint32 = 0x00000034 // R: 2, mV
	CXPwrSuppMax24Volt       uint32 = 0x00000035 // R: 2, mV
	CXPwrSuppTemp            uint32 = 0x00000036 // R: 1, signed °C
	CXPwrSuppMinTemp         uint32 = 0x00000037 // R: 1, signed °C
	CXPwrSuppMaxTemp         uint32 = 0x00000038 // R: 1, signed °C
	CXPwrSuppCurrent         uint32 = 0x00000039 // R: 2, mA
	CXPwrSuppMaxCurrent      uint32 = 0x0000003A // R: 2, mA
	CXPwrSuppPower           uint32 = 0x0000003B // R: 4, mW
	CXPwrSuppMaxPower        uint32 = 0x0000003C // R: 4, mW
	CXPwrSuppButtonState     uint32 = 0x00000040 // R: 1
	CXPwrSuppEnableBacklight uint32 = 0x00000060 // W: 1 (0x00 off, 0xFF on)
	CXPwrSuppDisplayLine1    uint32 = 0x00000061 // W: 17, zero terminated
	CXPwrSuppDisplayLine2    uint32 = 0x00000062 // W: 17, zero terminated
)

// GroupCXUPS offsets.
const (
	CXUPSEnabled             uint32 = 0x00000000 // R: 1
	CXUPSSetEnabled          uint32 = 0x00000001 // W: 1
	CXUPSFirmwareVer         uint32 = 0x00000002 // R: 2
	CXUPSPowerStatus         uint32 = 0x00000003 // R: 1
	CXUPSBatteryStatus       uint32 = 0x00000004 // R: 1
	CXUPSBatteryCapacity     uint32 = 0x00000005 // R: 1, percent
	CXUPSBatteryRuntime      uint32 = 0x00000006 // R: 4, seconds
	CXUPSBootCounter         uint32 = 0x00000007 // R: 4
	CXUPSOperationTime       uint32 = 0x00000008 // R: 4, minutes
	CXUPSPowerFailCount      uint32 = 0x00000009 // R: 4
	CXUPSBatteryCritical     uint32 = 0x0000000A // R: 1
	CXUPSBatteryPresent      uint32 = 0x0000000B // R: 1
	CXUPSSetShutdownMode     uint32 = 0x0000000E // W: 1
	CXUPSOutputVolt          uint32 = 0x00000010 // R: 2, mV
	CXUPSMaxOutputVolt       uint32 = 0x00000011 // R: 2, mV
	CXUPSInputVolt           uint32 = 0x00000012 // R: 2, mV
	CXUPSMaxInputVolt        uint32 = 0x00000013 // R: 2, mV
	CXUPSTemp                uint32 = 0x00000014 // R: 1, signed °C
	CXUPSMinTemp             uint32 = 0x00000015 // R: 1, signed °C
	CXUPSMaxTemp             uint32 = 0x00000016 // R: 1, signed °C
	CXUPSChargingCurrent     uint32 = 0x00000017 // R: 2, mA
	CXUPSMaxChargingCurrent  uint32 = 0x00000018 // R: 2, mA
	CXUPSChargingPower       uint32 = 0x00000019 // R: 4, mW
	CXUPSMaxChargingPower    uint32 = 0x0000001A // R: 4, mW
	CXUPSDischargeCurrent    uint32 = 0x0000001B // R: 2, mA
	CXUPSMaxDischargeCurrent uint32 = 0x0000001C // R: 2, mA
	CXUPSDischargePower      uint32 = 0x0000001D // R: 4, mW
	CXUPSMaxDischargePower   uint32 = 0x0000001E // R: 4, mW
)

// DisplayLineLen is the wire size of one display line write: 16
// characters plus the terminating zero.
const DisplayLineLen = 17
