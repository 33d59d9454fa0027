package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/core/event"
	"github.com/l1jgo/replicore/internal/net"
	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/persist"
)

// HandleLogout processes C_OPCODE_LOGOUT. The session stays open and may
// enter the world again.
func HandleLogout(sess *net.Session, _ *packet.Reader, deps *Deps) {
	if LeaveWorld(sess.ID, deps) {
		sess.SetState(packet.StateConnected)
	}
}

// LeaveWorld saves and removes the session's player: nearby viewers get a
// destroy packet and pending updates are dropped. Also called for dead
// sessions. Reports whether a player was in world.
func LeaveWorld(sessionID uint64, deps *Deps) bool {
	info := deps.World.GetBySession(sessionID)
	if info == nil {
		return false
	}
	pl := info.Player

	if deps.Snapshots != nil {
		if snap, err := persist.Capture(pl); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), snapshotWait)
			if err := deps.Snapshots.SaveBatch(ctx, []*persist.Snapshot{snap}); err != nil {
				deps.Log.Error("離線存檔失敗", zap.Stringer("guid", pl.GUID()), zap.Error(err))
			}
			cancel()
		}
	}

	if deps.Parties != nil {
		deps.Parties.RemoveMember(pl)
	}
	info.Partition.Remove(pl.GUID())
	deps.World.RemovePlayer(sessionID)
	event.Emit(deps.Bus, event.PlayerLeft{GUID: pl.GUID(), SessionID: sessionID})

	deps.Log.Info("玩家離開世界",
		zap.Uint64("session", sessionID),
		zap.Stringer("guid", pl.GUID()),
	)
	return true
}
