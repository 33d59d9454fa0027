package packet

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortRead is reported by Reader.Err after any read past the end.
var ErrShortRead = errors.New("packet: read past end of buffer")

// Reader reads packet fields. Reads past the end return zero values and set a
// sticky error, so callers check Err once after a run of reads.
type Reader struct {
	data   []byte
	off    int
	bitPos uint8
	curBit byte
	err    error
}

// NewReader reads a client payload; byte 0 is the opcode and is skipped.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 1, bitPos: 8}
}

// NewRawReader starts at offset 0.
func NewRawReader(data []byte) *Reader {
	return &Reader{data: data, bitPos: 8}
}

func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

func (r *Reader) take(n int) []byte {
	r.bitPos = 8
	if r.off+n > len(r.data) {
		r.off = len(r.data)
		r.err = ErrShortRead
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	return int32(r.ReadDU())
}

// ReadDU reads 4 bytes as little-endian uint32.
func (r *Reader) ReadDU() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadQ reads 8 bytes as little-endian uint64.
func (r *Reader) ReadQ() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadF reads an IEEE-754 float32.
func (r *Reader) ReadF() float32 {
	return math.Float32frombits(r.ReadDU())
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadBit reads one bit, most significant first.
func (r *Reader) ReadBit() bool {
	if r.bitPos == 8 {
		if r.off >= len(r.data) {
			r.err = ErrShortRead
			return false
		}
		r.curBit = r.data[r.off]
		r.off++
		r.bitPos = 0
	}
	bit := r.curBit&(0x80>>r.bitPos) != 0
	r.bitPos++
	return bit
}

// ReadBits reads n bits into the low end of the result, high bit first.
func (r *Reader) ReadBits(n int) uint32 {
	var v uint32
	for i := n - 1; i >= 0; i-- {
		if r.ReadBit() {
			v |= 1 << uint(i)
		}
	}
	return v
}

// ReadCount reads a bits-wide element count for elements of at least
// elemSize bytes each. A count the unread bytes cannot hold is a short
// read and returns 0, so callers can size allocations from it.
func (r *Reader) ReadCount(bits, elemSize int) int {
	n := int(r.ReadBits(bits))
	if elemSize > 0 && n > r.Remaining()/elemSize {
		r.err = ErrShortRead
		return 0
	}
	return n
}

// ReadGuidMask reads presence bits for the listed guid bytes into mask.
func (r *Reader) ReadGuidMask(mask *[8]bool, order ...int) {
	for _, i := range order {
		mask[i] = r.ReadBit()
	}
}

// ReadGuidBytes reads the present guid bytes in the listed order into guid.
func (r *Reader) ReadGuidBytes(mask *[8]bool, guid *uint64, order ...int) {
	for _, i := range order {
		if !mask[i] {
			continue
		}
		b := r.ReadC() ^ 1
		*guid |= uint64(b) << (uint(i) * 8)
	}
}

// ReadPackedGUID reads a mask byte and the bytes it selects.
func (r *Reader) ReadPackedGUID() uint64 {
	mask := r.ReadC()
	var guid uint64
	for i := 0; i < 8; i++ {
		if mask&(1<<uint(i)) != 0 {
			guid |= uint64(r.ReadC()) << (uint(i) * 8)
		}
	}
	return guid
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Err returns ErrShortRead if any read ran past the end.
func (r *Reader) Err() error {
	return r.err
}
