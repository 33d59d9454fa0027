package handler

import (
	"math"

	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/net"
	"github.com/l1jgo/replicore/internal/net/packet"
)

// HandleMove processes C_OPCODE_MOVE: [f32 x,y,z,o]. The new position
// reaches other viewers through the next visibility sweep.
func HandleMove(sess *net.Session, r *packet.Reader, deps *Deps) {
	info := deps.World.GetBySession(sess.ID)
	if info == nil {
		return
	}
	x, y, z, o := r.ReadF(), r.ReadF(), r.ReadF(), r.ReadF()
	if r.Err() != nil || !finite(x, y, z, o) {
		deps.Log.Debug("移動封包格式錯誤", zap.Uint64("session", sess.ID))
		return
	}
	pl := info.Player
	if !inBounds(deps, pl.MapID(), x, y) {
		deps.Log.Debug("移動超出地圖範圍",
			zap.Stringer("guid", pl.GUID()),
			zap.Float32("x", x),
			zap.Float32("y", y),
		)
		return
	}
	info.Partition.Relocate(pl, x, y, z, o)
}

// inBounds checks the map grid when the map has one.
func inBounds(deps *Deps, mapID uint32, x, y float32) bool {
	if deps.Maps == nil {
		return true
	}
	mi := deps.Maps.GetInfo(mapID)
	if mi == nil || mi.Width == 0 || mi.Height == 0 {
		return true
	}
	return deps.Maps.IsInMap(mapID, x, y)
}

func finite(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
