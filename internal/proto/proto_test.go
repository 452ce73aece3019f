package proto

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalbridge/bbapi/internal/biosdef"
	"github.com/metalbridge/bbapi/internal/bridge"
)

func TestRequestRoundTrip(t *testing.T) {
	req := Request{
		Group:       0x00000003,
		Offset:      0x00000061,
		In:          []byte("line one payload"),
		OutSize:     17,
		WantWritten: true,
	}

	frame := EncodeRequest(req, false)
	require.Len(t, frame, HeaderLen+len(req.In))

	got, err := DecodeRequest(frame, false)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestRequestRoundTripLegacy(t *testing.T) {
	req := Request{
		Group:   0x00000004,
		Offset:  0x00000001,
		In:      []byte{},
		OutSize: 1,
	}

	frame := EncodeRequest(req, true)
	require.Len(t, frame, LegacyHeaderLen)

	got, err := DecodeRequest(frame, true)
	require.NoError(t, err)
	assert.Equal(t, req, got)
	assert.False(t, got.WantWritten, "legacy frames cannot request a written count")
}

func TestDecodeRequestTruncated(t *testing.T) {
	frame := EncodeRequest(Request{In: []byte{1, 2, 3, 4}}, false)

	for _, cut := range []int{0, 4, HeaderLen - 1, len(frame) - 1} {
		_, err := DecodeRequest(frame[:cut], false)
		assert.ErrorIs(t, err, bridge.ErrCopyFault, "frame cut to %d bytes", cut)
	}
}

func TestDecodeRequestOverlong(t *testing.T) {
	frame := EncodeRequest(Request{In: []byte{1, 2, 3, 4}}, false)
	frame = append(frame, 0xEE)

	_, err := DecodeRequest(frame, false)
	assert.ErrorIs(t, err, bridge.ErrCopyFault)
}

func TestDecodeRequestReservedSurvives(t *testing.T) {
	frame := EncodeRequest(Request{Reserved: 0xDEAD}, false)
	got, err := DecodeRequest(frame, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xDEAD), got.Reserved, "reserved bits must reach the bridge for rejection")
}

func TestResponseRoundTrip(t *testing.T) {
	resp := Response{Status: -22, BytesWritten: 3, Out: []byte{3, 14, 7}}

	got, err := DecodeResponse(EncodeResponse(resp))
	require.NoError(t, err)
	assert.Equal(t, resp, got)

	_, err = DecodeResponse([]byte{0, 0, 0})
	assert.ErrorIs(t, err, bridge.ErrCopyFault)
}

func TestErrno(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want int32
	}{
		{"nil", nil, 0},
		{"firmware status", &bridge.StatusError{Status: biosdef.StatusBusy, Space: bridge.DefaultErrSpace}, -int32(6 | 0x20000000)},
		{"legacy firmware status", &bridge.StatusError{Status: biosdef.StatusSrvNotSupp}, -1},
		{"not permitted", fmt.Errorf("wrap: %w", bridge.ErrNotPermitted), -13},
		{"copy fault", fmt.Errorf("wrap: %w", bridge.ErrCopyFault), -14},
		{"reserved field", bridge.ErrReservedField, -22},
		{"oversized buffer", bridge.ErrBufferTooLarge, -22},
		{"unknown", errors.New("boom"), -22},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Errno(tc.err))
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("framed request")

	require.NoError(t, WriteFrame(&buf, payload))
	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameRejectsHugeLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	_, err := ReadFrame(&buf)
	require.Error(t, err)
}

func TestWriteFrameRejectsHugePayload(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, make([]byte, MaxFrameLen+1))
	require.Error(t, err)
	assert.Zero(t, buf.Len(), "nothing may reach the stream on rejection")
}
