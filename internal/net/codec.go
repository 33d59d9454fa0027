package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const frameHeaderSize = 4

// DefaultMaxFrameSize bounds a single frame. Update packets for a crowded
// area can exceed 64 KiB, hence the 32-bit length.
const DefaultMaxFrameSize = 4 << 20

var ErrFrameTooLarge = errors.New("frame exceeds size limit")

// ReadFrame reads one packet frame from r.
// Wire format: [4 bytes LE: total length including header][payload].
// Returns the payload bytes (without the length header).
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	totalLen := int(binary.LittleEndian.Uint32(header[:]))
	payloadLen := totalLen - frameHeaderSize
	if payloadLen <= 0 {
		return nil, fmt.Errorf("invalid frame length: %d", totalLen)
	}
	if maxSize > 0 && payloadLen > maxSize {
		return nil, fmt.Errorf("%w: %d", ErrFrameTooLarge, payloadLen)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", payloadLen, err)
	}
	return payload, nil
}

// WriteFrame writes one packet frame to w in a single write.
// Wire format: [4 bytes LE: len(data)+4][data].
func WriteFrame(w io.Writer, data []byte) error {
	buf := make([]byte, frameHeaderSize+len(data))
	binary.LittleEndian.PutUint32(buf, uint32(len(buf)))
	copy(buf[frameHeaderSize:], data)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
