package biosdef

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Version is the three-part revision record reported by GeneralVersion
// and the power controller revision offsets.
type Version struct {
	Major, Minor, Build uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d-%d", v.Major, v.Minor, v.Build)
}

// DecodeVersion decodes a 3-byte revision record.
func DecodeVersion(b []byte) (Version, error) {
	if len(b) < 3 {
		return Version{}, fmt.Errorf("biosdef: version record too short: %d bytes", len(b))
	}
	return Version{Major: b[0], Minor: b[1], Build: b[2]}, nil
}

// PairVersion is the two-part firmware revision used by the CX power
// supply and UPS subsystems.
type PairVersion struct {
	Major, Minor uint8
}

func (v PairVersion) String() string {
	return fmt.Sprintf("%d-%d", v.Major, v.Minor)
}

// MainboardInfo is the fixed record behind GeneralBoardInfo.
type MainboardInfo struct {
	Name  [16]byte
	Major uint8
	Minor uint8
}

func (m MainboardInfo) String() string {
	return fmt.Sprintf("%s hw %d.%d", CString(m.Name[:]), m.Major, m.Minor)
}

// DecodeMainboardInfo decodes the 18-byte mainboard record.
func DecodeMainboardInfo(b []byte) (MainboardInfo, error) {
	var m MainboardInfo
	if len(b) < 18 {
		return m, fmt.Errorf("biosdef: mainboard record too short: %d bytes", len(b))
	}
	copy(m.Name[:], b[:16])
	m.Major = b[16]
	m.Minor = b[17]
	return m, nil
}

// SensorInfo is one record of the GroupSystem sensor table.
type SensorInfo struct {
	Type     uint16
	Location uint16
	Value    int32
	Name     [12]byte
}

// SensorInfoLen is the wire size of one sensor record.
const SensorInfoLen = 20

// DecodeSensorInfo decodes a sensor record as reported at
// GroupSystem offsets 1..count.
func DecodeSensorInfo(b []byte) (SensorInfo, error) {
	var s SensorInfo
	if len(b) < SensorInfoLen {
		return s, fmt.Errorf("biosdef: sensor record too short: %d bytes", len(b))
	}
	s.Type = binary.LittleEndian.Uint16(b[0:2])
	s.Location = binary.LittleEndian.Uint16(b[2:4])
	s.Value = int32(binary.LittleEndian.Uint32(b[4:8]))
	copy(s.Name[:], b[8:20])
	return s, nil
}

func (s SensorInfo) String() string {
	return fmt.Sprintf("%s type=%d loc=%d value=%d", CString(s.Name[:]), s.Type, s.Location, s.Value)
}

// CString interprets b as a zero-padded fixed-size string.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
