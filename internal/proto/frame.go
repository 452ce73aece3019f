package proto

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameLen bounds one frame on the stream. Well above any valid
// request (staging capacity plus header) but small enough that a
// corrupt length prefix cannot drive a large allocation.
const MaxFrameLen = 64 << 10

// WriteFrame writes one length-prefixed frame.
func WriteFrame(w io.Writer, frame []byte) error {
	if len(frame) > MaxFrameLen {
		return fmt.Errorf("proto: frame of %d bytes exceeds limit", len(frame))
	}
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(frame)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(frame)
	return err
}

// ReadFrame reads one length-prefixed frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(prefix[:])
	if n > MaxFrameLen {
		return nil, fmt.Errorf("proto: frame of %d bytes exceeds limit", n)
	}
	frame := make([]byte, n)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}
	return frame, nil
}
