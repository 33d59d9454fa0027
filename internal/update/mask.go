package update

import "math/bits"

// Mask is the per-viewer field bitset of one block. It is built fresh for
// every encode and never stored.
type Mask struct {
	count  int
	blocks []uint32
}

// NewMask returns an empty mask over count fields.
func NewMask(count int) *Mask {
	return &Mask{count: count, blocks: make([]uint32, (count+31)/32)}
}

func (m *Mask) Set(i int)        { m.blocks[i>>5] |= 1 << uint(i&31) }
func (m *Mask) Unset(i int)      { m.blocks[i>>5] &^= 1 << uint(i&31) }
func (m *Mask) Get(i int) bool   { return m.blocks[i>>5]&(1<<uint(i&31)) != 0 }
func (m *Mask) Count() int       { return m.count }
func (m *Mask) BlockCount() int  { return len(m.blocks) }
func (m *Mask) Blocks() []uint32 { return m.blocks }

// Len is the number of set bits.
func (m *Mask) Len() int {
	n := 0
	for _, b := range m.blocks {
		n += bits.OnesCount32(b)
	}
	return n
}

// Indices lists the set bits in ascending order.
func (m *Mask) Indices() []int {
	out := make([]int, 0, m.Len())
	for bi, b := range m.blocks {
		for b != 0 {
			i := bits.TrailingZeros32(b)
			out = append(out, bi*32+i)
			b &= b - 1
		}
	}
	return out
}
