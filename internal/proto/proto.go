// Package proto is the wire form of the call-forwarding protocol as
// exchanged with external clients. Frames are fixed-layout
// little-endian images of the client request structure; the buffer
// pointers of the in-process form are replaced by inline payload and
// explicit sizes. A legacy layout omits the two trailing fields and is
// only decoded when the bridge was configured for it.
package proto

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/metalbridge/bbapi/internal/bridge"
)

const (
	// HeaderLen is the modern request header:
	// group(4) offset(4) inSize(4) outSize(4) bytesWrittenRef(8) reserved(8).
	HeaderLen = 32

	// LegacyHeaderLen omits bytesWrittenRef and reserved.
	LegacyHeaderLen = 16

	// RespHeaderLen is status(4) followed by bytesWritten(4).
	RespHeaderLen = 8
)

// Request is a decoded client frame.
type Request struct {
	Group   uint32
	Offset  uint32
	In      []byte
	OutSize uint32

	// WantWritten is set when the caller supplied a bytes-written
	// destination. Never set for legacy frames, which cannot carry
	// one.
	WantWritten bool

	// Reserved must decode to zero; the bridge rejects anything else.
	Reserved uint64
}

// DecodeRequest parses one request frame. Truncated or overlong frames
// mean the caller's buffer description does not match its memory; they
// surface as ErrCopyFault.
func DecodeRequest(data []byte, legacy bool) (Request, error) {
	hdrLen := HeaderLen
	if legacy {
		hdrLen = LegacyHeaderLen
	}
	if len(data) < hdrLen {
		return Request{}, fmt.Errorf("%w: frame of %d bytes", bridge.ErrCopyFault, len(data))
	}

	req := Request{
		Group:   binary.LittleEndian.Uint32(data[0:4]),
		Offset:  binary.LittleEndian.Uint32(data[4:8]),
		OutSize: binary.LittleEndian.Uint32(data[12:16]),
	}
	inSize := binary.LittleEndian.Uint32(data[8:12])
	if !legacy {
		req.WantWritten = binary.LittleEndian.Uint64(data[16:24]) != 0
		req.Reserved = binary.LittleEndian.Uint64(data[24:32])
	}

	payload := data[hdrLen:]
	if uint64(len(payload)) != uint64(inSize) {
		return Request{}, fmt.Errorf("%w: payload %d bytes, declared %d", bridge.ErrCopyFault, len(payload), inSize)
	}
	req.In = payload
	return req, nil
}

// EncodeRequest builds the frame for req in the chosen layout. Legacy
// frames drop WantWritten and Reserved entirely.
func EncodeRequest(req Request, legacy bool) []byte {
	hdrLen := HeaderLen
	if legacy {
		hdrLen = LegacyHeaderLen
	}
	buf := make([]byte, hdrLen+len(req.In))
	binary.LittleEndian.PutUint32(buf[0:4], req.Group)
	binary.LittleEndian.PutUint32(buf[4:8], req.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(req.In)))
	binary.LittleEndian.PutUint32(buf[12:16], req.OutSize)
	if !legacy {
		if req.WantWritten {
			binary.LittleEndian.PutUint64(buf[16:24], 1)
		}
		binary.LittleEndian.PutUint64(buf[24:32], req.Reserved)
	}
	copy(buf[hdrLen:], req.In)
	return buf
}

// Response is the reply to one request. Status uses the negative host
// error convention; zero is success.
type Response struct {
	Status       int32
	BytesWritten uint32
	Out          []byte
}

// EncodeResponse builds a response frame.
func EncodeResponse(resp Response) []byte {
	buf := make([]byte, RespHeaderLen+len(resp.Out))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(resp.Status))
	binary.LittleEndian.PutUint32(buf[4:8], resp.BytesWritten)
	copy(buf[RespHeaderLen:], resp.Out)
	return buf
}

// DecodeResponse parses a response frame.
func DecodeResponse(data []byte) (Response, error) {
	if len(data) < RespHeaderLen {
		return Response{}, fmt.Errorf("%w: response of %d bytes", bridge.ErrCopyFault, len(data))
	}
	return Response{
		Status:       int32(binary.LittleEndian.Uint32(data[0:4])),
		BytesWritten: binary.LittleEndian.Uint32(data[4:8]),
		Out:          data[RespHeaderLen:],
	}, nil
}

// Host error numbers used on the wire (Linux numbering; the protocol
// predates any other host).
const (
	errnoAcces = 13
	errnoFault = 14
	errnoInval = 22
)

// Errno translates a bridge error into the negative wire status.
func Errno(err error) int32 {
	var se *bridge.StatusError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &se):
		return se.Errno()
	case errors.Is(err, bridge.ErrNotPermitted):
		return -errnoAcces
	case errors.Is(err, bridge.ErrCopyFault):
		return -errnoFault
	default:
		// Reserved-field misuse, oversized buffers and an
		// uninitialized bridge all reject as invalid argument.
		return -errnoInval
	}
}
