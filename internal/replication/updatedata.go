package replication

import (
	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/update"
)

// UpdateData collects everything one viewer receives in a tick.
type UpdateData struct {
	blocks     [][]byte
	size       int
	outOfRange []object.GUID
	oorSeen    map[object.GUID]struct{}
}

func (u *UpdateData) AddBlock(b []byte) {
	if len(b) == 0 {
		return
	}
	u.blocks = append(u.blocks, b)
	u.size += len(b)
}

// AddOutOfRange queues guid for removal on the client. Duplicates are
// dropped.
func (u *UpdateData) AddOutOfRange(g object.GUID) {
	if u.oorSeen == nil {
		u.oorSeen = make(map[object.GUID]struct{})
	}
	if _, ok := u.oorSeen[g]; ok {
		return
	}
	u.oorSeen[g] = struct{}{}
	u.outOfRange = append(u.outOfRange, g)
}

func (u *UpdateData) HasData() bool {
	return len(u.blocks) > 0 || len(u.outOfRange) > 0
}

// BlockCount is the value written into the packet header.
func (u *UpdateData) BlockCount() uint32 {
	n := uint32(len(u.blocks))
	if len(u.outOfRange) > 0 {
		n++
	}
	return n
}

// BuildPacket frames the batch as
// [opcode][u16 map][u32 blocks][out-of-range block][blocks...].
func (u *UpdateData) BuildPacket(mapID uint16) []byte {
	w := packet.NewWriterSize(16 + u.size + len(u.outOfRange)*9)
	w.WriteC(packet.S_OPCODE_UPDATE_OBJECT)
	w.WriteH(mapID)
	w.WriteDU(u.BlockCount())
	if len(u.outOfRange) > 0 {
		w.WriteC(byte(update.TypeOutOfRange))
		w.WriteDU(uint32(len(u.outOfRange)))
		for _, g := range u.outOfRange {
			w.WritePackedGUID(uint64(g))
		}
	}
	for _, b := range u.blocks {
		w.WriteBytes(b)
	}
	return w.Bytes()
}

func (u *UpdateData) Reset() {
	u.blocks = u.blocks[:0]
	u.size = 0
	u.outOfRange = u.outOfRange[:0]
	clear(u.oorSeen)
}
