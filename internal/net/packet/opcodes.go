package packet

// Client → server opcodes.
const (
	C_OPCODE_ENTER_WORLD byte = 0x01 // [u64 player guid][u32 map][f32 x,y,z,o]
	C_OPCODE_MOVE        byte = 0x02 // [f32 x,y,z,o]
	C_OPCODE_LOGOUT      byte = 0x03
	C_OPCODE_PING        byte = 0x04 // [u32 seq]
)

// Server → client opcodes.
const (
	S_OPCODE_HELLO          byte = 0x80 // [16B session token]
	S_OPCODE_UPDATE_OBJECT  byte = 0xA9
	S_OPCODE_DESTROY_OBJECT byte = 0xAA
	S_OPCODE_PONG           byte = 0xAB
)
