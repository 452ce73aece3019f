package biosdef

import "testing"

func TestDecodeVersion(t *testing.T) {
	v, err := DecodeVersion([]byte{3, 14, 7})
	if err != nil {
		t.Fatalf("Decode version: %v", err)
	}
	if v.String() != "3.14-7" {
		t.Fatalf("Version formats as %q", v)
	}
	if _, err := DecodeVersion([]byte{1, 2}); err == nil {
		t.Fatalf("Short version record accepted")
	}
}

func TestDecodeMainboardInfo(t *testing.T) {
	rec := make([]byte, 18)
	copy(rec, "CBS3400")
	rec[16], rec[17] = 1, 2

	m, err := DecodeMainboardInfo(rec)
	if err != nil {
		t.Fatalf("Decode mainboard record: %v", err)
	}
	if got := CString(m.Name[:]); got != "CBS3400" {
		t.Fatalf("Mainboard name %q", got)
	}
	if m.Major != 1 || m.Minor != 2 {
		t.Fatalf("Hardware revision %d.%d", m.Major, m.Minor)
	}
}

func TestDecodeSensorInfo(t *testing.T) {
	rec := make([]byte, SensorInfoLen)
	rec[0] = 1
	rec[2] = 3
	rec[4] = 42
	copy(rec[8:], "cpu temp")

	s, err := DecodeSensorInfo(rec)
	if err != nil {
		t.Fatalf("Decode sensor record: %v", err)
	}
	if s.Type != 1 || s.Location != 3 || s.Value != 42 {
		t.Fatalf("Sensor record %+v", s)
	}
	if got := CString(s.Name[:]); got != "cpu temp" {
		t.Fatalf("Sensor name %q", got)
	}
}

func TestStatusString(t *testing.T) {
	if got := StatusInvalidSize.String(); got == "" {
		t.Fatalf("Status has no text")
	}
	if got := Status(99).String(); got == "" {
		t.Fatalf("Unknown status has no text")
	}
}
