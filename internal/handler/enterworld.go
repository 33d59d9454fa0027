package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/core/event"
	"github.com/l1jgo/replicore/internal/net"
	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/world"
)

const (
	defaultHealth = 100
	snapshotWait  = 5 * time.Second
)

// HandleEnterWorld processes C_OPCODE_ENTER_WORLD: [u64 guid][u32 map][f32 x,y,z,o].
// A saved snapshot, when present, wins over the requested map and position.
func HandleEnterWorld(sess *net.Session, r *packet.Reader, deps *Deps) {
	guid := object.GUID(r.ReadQ())
	mapID := r.ReadDU()
	x, y, z, o := r.ReadF(), r.ReadF(), r.ReadF(), r.ReadF()
	if r.Err() != nil || !finite(x, y, z, o) {
		deps.Log.Warn("進入世界: 封包格式錯誤", zap.Uint64("session", sess.ID))
		return
	}
	if !guid.IsPlayer() {
		deps.Log.Warn("進入世界: 非玩家 GUID", zap.Stringer("guid", guid))
		return
	}
	if deps.World.GetByGUID(guid) != nil {
		deps.Log.Warn("進入世界: 角色已在線上", zap.Stringer("guid", guid))
		return
	}

	pl := object.NewPlayer()
	pl.Create(guid.Low())
	pl.SetMaxHealth(defaultHealth)
	pl.SetHealth(defaultHealth)
	pl.SetMap(mapID, 0)
	pl.Relocate(x, y, z, o)
	loadSnapshot(pl, deps)

	if deps.Maps != nil && deps.Maps.GetInfo(pl.MapID()) == nil {
		deps.Log.Warn("進入世界: 地圖不存在", zap.Uint32("map", pl.MapID()))
		return
	}

	part := deps.Manager.Partition(pl.MapID(), pl.InstanceID())
	info := &world.PlayerInfo{
		SessionID: sess.ID,
		Session:   sess,
		Player:    pl,
		Partition: part,
	}
	// Bound before Add so the self create block finds the session.
	deps.World.AddPlayer(info)
	if err := part.Add(pl); err != nil {
		deps.World.RemovePlayer(sess.ID)
		deps.Log.Warn("進入世界: 加入地圖分區失敗", zap.Stringer("guid", guid), zap.Error(err))
		return
	}
	sess.SetState(packet.StateInWorld)
	event.Emit(deps.Bus, event.PlayerEntered{
		GUID:       guid,
		SessionID:  sess.ID,
		MapID:      part.Key().MapID,
		InstanceID: part.Key().InstanceID,
	})

	deps.Log.Info("玩家進入世界",
		zap.Uint64("session", sess.ID),
		zap.Stringer("guid", guid),
		zap.Stringer("partition", part.Key()),
	)
}

func loadSnapshot(pl *object.Player, deps *Deps) {
	if deps.Snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotWait)
	defer cancel()

	snap, err := deps.Snapshots.Load(ctx, pl.GUID())
	if err != nil {
		deps.Log.Error("讀取物件快照失敗", zap.Stringer("guid", pl.GUID()), zap.Error(err))
		return
	}
	if snap == nil {
		return
	}
	if err := snap.Apply(pl); err != nil {
		deps.Log.Warn("套用物件快照失敗", zap.Stringer("guid", pl.GUID()), zap.Error(err))
	}
}
