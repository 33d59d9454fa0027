package handler

import (
	"github.com/l1jgo/replicore/internal/net"
	"github.com/l1jgo/replicore/internal/net/packet"
)

// HandlePing processes C_OPCODE_PING: [u32 seq], echoed back in S_OPCODE_PONG.
func HandlePing(sess *net.Session, r *packet.Reader, _ *Deps) {
	seq := r.ReadDU()
	if r.Err() != nil {
		return
	}
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PONG)
	w.WriteDU(seq)
	sess.Send(w.Bytes())
}
