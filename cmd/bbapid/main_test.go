package main

import (
	"bytes"
	"testing"

	"github.com/metalbridge/bbapi"
	"github.com/metalbridge/bbapi/internal/biosdef"
	"github.com/metalbridge/bbapi/internal/fakefw"
	"github.com/metalbridge/bbapi/internal/proto"
)

func testDevice(t testing.TB, legacy bool) *bbapi.Device {
	t.Helper()
	dev := bbapi.OpenBackend(fakefw.New(fakefw.Config{}), bbapi.Config{LegacyErrors: legacy})
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestHandleRead(t *testing.T) {
	dev := testDevice(t, false)

	frame := proto.EncodeRequest(proto.Request{
		Group:       biosdef.GroupGeneral,
		Offset:      biosdef.GeneralVersion,
		OutSize:     3,
		WantWritten: true,
	}, false)

	resp := handle(frame, dev, false)
	if resp.Status != 0 {
		t.Fatalf("Version read status %d", resp.Status)
	}
	if resp.BytesWritten != 3 || !bytes.Equal(resp.Out, []byte{3, 14, 7}) {
		t.Fatalf("Version read reply %+v", resp)
	}
}

func TestHandleLegacyLayout(t *testing.T) {
	dev := testDevice(t, true)

	frame := proto.EncodeRequest(proto.Request{
		Group:   biosdef.GroupGeneral,
		Offset:  biosdef.GeneralVersion,
		OutSize: 3,
	}, true)

	resp := handle(frame, dev, true)
	if resp.Status != 0 {
		t.Fatalf("Legacy version read status %d", resp.Status)
	}
	if resp.BytesWritten != 0 {
		t.Fatalf("Legacy reply carries a written count: %d", resp.BytesWritten)
	}
	if !bytes.Equal(resp.Out, []byte{3, 14, 7}) {
		t.Fatalf("Legacy version read reply %v", resp.Out)
	}
}

func TestHandleRejectsPrivilegedOffset(t *testing.T) {
	dev := testDevice(t, false)

	frame := proto.EncodeRequest(proto.Request{
		Group:  biosdef.GroupGeneral,
		Offset: biosdef.ExtOSShutdown,
	}, false)

	resp := handle(frame, dev, false)
	if resp.Status != -13 {
		t.Fatalf("Privileged offset status %d, want -13", resp.Status)
	}
}

func TestHandleRejectsReservedField(t *testing.T) {
	dev := testDevice(t, false)

	frame := proto.EncodeRequest(proto.Request{
		Group:    biosdef.GroupGeneral,
		Offset:   biosdef.GeneralVersion,
		OutSize:  3,
		Reserved: 7,
	}, false)

	resp := handle(frame, dev, false)
	if resp.Status != -22 {
		t.Fatalf("Reserved field status %d, want -22", resp.Status)
	}
}

func TestHandleTruncatedFrame(t *testing.T) {
	dev := testDevice(t, false)

	resp := handle([]byte{1, 2, 3}, dev, false)
	if resp.Status != -14 {
		t.Fatalf("Truncated frame status %d, want -14", resp.Status)
	}
}

func TestHandleFirmwareStatus(t *testing.T) {
	dev := testDevice(t, false)

	frame := proto.EncodeRequest(proto.Request{
		Group:  biosdef.GroupGeneral,
		Offset: 0x7F,
	}, false)

	resp := handle(frame, dev, false)
	want := -int32(uint32(biosdef.StatusSrvNotSupp) | 0x20000000)
	if resp.Status != want {
		t.Fatalf("Unknown operation status %d, want %d", resp.Status, want)
	}
}

func TestHandleBoundsOutputSize(t *testing.T) {
	dev := testDevice(t, false)

	frame := proto.EncodeRequest(proto.Request{
		Group:   biosdef.GroupGeneral,
		Offset:  biosdef.GeneralVersion,
		OutSize: proto.MaxFrameLen + 1,
	}, false)

	resp := handle(frame, dev, false)
	if resp.Status != -22 {
		t.Fatalf("Runaway output size status %d, want -22", resp.Status)
	}
}
