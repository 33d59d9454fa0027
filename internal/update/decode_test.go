package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
)

func TestDecodePacket(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)
	gone := object.MakeGUID(11, 100, object.HighUnit)

	create := mustCreate(t, e, u, viewer)
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_UPDATE_OBJECT)
	w.WriteH(530)
	w.WriteDU(2)
	w.WriteC(byte(TypeOutOfRange))
	w.WriteDU(1)
	w.WritePackedGUID(uint64(gone))
	w.WriteBytes(create)

	p, err := Decode(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(530), p.MapID)
	require.Len(t, p.Blocks, 2)
	assert.Equal(t, TypeOutOfRange, p.Blocks[0].Type)
	assert.Equal(t, []object.GUID{gone}, p.Blocks[0].OutOfRange)
	assert.Equal(t, u.GUID(), p.Blocks[1].GUID)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{packet.S_OPCODE_PONG, 0, 0})
	assert.ErrorIs(t, err, ErrBadOpcode)

	_, err = Decode([]byte{packet.S_OPCODE_UPDATE_OBJECT, 0, 0, 1, 0, 0, 0, 9})
	assert.ErrorIs(t, err, ErrUnknownBlock)

	_, err = Decode([]byte{packet.S_OPCODE_UPDATE_OBJECT, 0})
	assert.Error(t, err, "truncated header")
}

func TestDecodeDestroy(t *testing.T) {
	g := object.MakeGUID(0x1234, 6491, object.HighUnit)
	got, onDeath, err := DecodeDestroy(BuildDestroyPacket(g, true))
	require.NoError(t, err)
	assert.Equal(t, g, got)
	assert.True(t, onDeath)

	_, _, err = DecodeDestroy([]byte{packet.S_OPCODE_UPDATE_OBJECT})
	assert.ErrorIs(t, err, ErrBadOpcode)
}

func TestDecodeRejectsOversizedCounts(t *testing.T) {
	data := []byte{
		packet.S_OPCODE_UPDATE_OBJECT, 0, 0, 1, 0, 0, 0,
		byte(TypeCreateObject), 0x00, byte(object.TypeIDUnit),
		0x00,             // movement flags
		0xFF, 0xFF, 0xFC, // 22-bit frame count, all ones
		0, 0, 0, 0,
	}
	_, err := Decode(data)
	assert.ErrorIs(t, err, packet.ErrShortRead)
}
