package packet

import (
	"encoding/binary"
	"math"
)

// Writer builds a server packet. All multi-byte writes are little-endian.
//
// Bit writes are packed most-significant bit first into a pending byte. Any
// byte-aligned write flushes the pending byte first, so bit runs and values
// can be interleaved freely.
type Writer struct {
	buf    []byte
	bitPos uint8 // bits still free in curBits, 8 = nothing pending
	curBit byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64), bitPos: 8}
}

func NewWriterWithOpcode(opcode byte) *Writer {
	w := NewWriter()
	w.WriteC(opcode)
	return w
}

// NewWriterSize preallocates n bytes. Update blocks use this since most are a
// few hundred bytes.
func NewWriterSize(n int) *Writer {
	return &Writer{buf: make([]byte, 0, n), bitPos: 8}
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v byte) {
	w.FlushBits()
	w.buf = append(w.buf, v)
}

// WriteH writes 2 bytes little-endian.
func (w *Writer) WriteH(v uint16) {
	w.FlushBits()
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteD writes 4 bytes little-endian (signed or unsigned via cast).
func (w *Writer) WriteD(v int32) {
	w.WriteDU(uint32(v))
}

// WriteDU writes 4 bytes little-endian unsigned.
func (w *Writer) WriteDU(v uint32) {
	w.FlushBits()
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteQ writes 8 bytes little-endian.
func (w *Writer) WriteQ(v uint64) {
	w.FlushBits()
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteF writes an IEEE-754 float32.
func (w *Writer) WriteF(v float32) {
	w.WriteDU(math.Float32bits(v))
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.FlushBits()
	w.buf = append(w.buf, b...)
}

// WriteBit appends one bit and reports whether it was set.
func (w *Writer) WriteBit(bit bool) bool {
	w.bitPos--
	if bit {
		w.curBit |= 1 << w.bitPos
	}
	if w.bitPos == 0 {
		w.buf = append(w.buf, w.curBit)
		w.curBit = 0
		w.bitPos = 8
	}
	return bit
}

// WriteBits appends the low n bits of v, high bit first.
func (w *Writer) WriteBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.WriteBit((v>>uint(i))&1 != 0)
	}
}

// FlushBits pads the pending bit byte with zeros and appends it.
func (w *Writer) FlushBits() {
	if w.bitPos == 8 {
		return
	}
	w.buf = append(w.buf, w.curBit)
	w.curBit = 0
	w.bitPos = 8
}

// WriteGuidMask writes one presence bit per listed guid byte.
func (w *Writer) WriteGuidMask(guid uint64, order ...int) {
	for _, i := range order {
		w.WriteBit(guidByte(guid, i) != 0)
	}
}

// WriteGuidBytes writes the listed guid bytes that are non-zero, each xor 1.
func (w *Writer) WriteGuidBytes(guid uint64, order ...int) {
	for _, i := range order {
		if b := guidByte(guid, i); b != 0 {
			w.WriteC(b ^ 1)
		}
	}
}

// WritePackedGUID writes a presence mask byte followed by the non-zero bytes
// of guid in ascending order.
func (w *Writer) WritePackedGUID(guid uint64) {
	w.FlushBits()
	maskPos := len(w.buf)
	w.buf = append(w.buf, 0)
	var mask byte
	for i := 0; i < 8; i++ {
		if b := guidByte(guid, i); b != 0 {
			mask |= 1 << uint(i)
			w.buf = append(w.buf, b)
		}
	}
	w.buf[maskPos] = mask
}

// Bytes returns the packet content. Pending bits are flushed.
func (w *Writer) Bytes() []byte {
	w.FlushBits()
	return w.buf
}

// Len returns the current length, counting a partially filled bit byte.
func (w *Writer) Len() int {
	if w.bitPos != 8 {
		return len(w.buf) + 1
	}
	return len(w.buf)
}

// PutUint32At overwrites 4 bytes at off. Used to back-patch counts.
func (w *Writer) PutUint32At(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[off:], v)
}

func guidByte(guid uint64, i int) byte {
	return byte(guid >> (uint(i) * 8))
}
