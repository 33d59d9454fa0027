package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/replicore/internal/core/system"
	"github.com/l1jgo/replicore/internal/handler"
	"github.com/l1jgo/replicore/internal/persist"
	"github.com/l1jgo/replicore/internal/world"
)

const saveTimeout = 10 * time.Second

// PersistenceSystem periodically snapshots the fields of every in-world
// player. Phase 4 (Persist).
type PersistenceSystem struct {
	world     *world.State
	store     handler.SnapshotStore
	log       *zap.Logger
	tickCount int
	interval  int // save every N ticks
}

func NewPersistenceSystem(ws *world.State, store handler.SnapshotStore, intervalTicks int, log *zap.Logger) *PersistenceSystem {
	return &PersistenceSystem{
		world:    ws,
		store:    store,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if _, err := s.SaveAll(ctx); err != nil {
		s.log.Error("自動存檔失敗", zap.Error(err))
	}
}

// SaveAll snapshots every in-world player in one batch. Also called on
// shutdown.
func (s *PersistenceSystem) SaveAll(ctx context.Context) (int, error) {
	var snaps []*persist.Snapshot
	s.world.AllPlayers(func(p *world.PlayerInfo) {
		snap, err := persist.Capture(p.Player)
		if err != nil {
			s.log.Warn("快照擷取失敗", zap.Stringer("guid", p.Player.GUID()), zap.Error(err))
			return
		}
		snaps = append(snaps, snap)
	})
	if len(snaps) == 0 {
		return 0, nil
	}
	if err := s.store.SaveBatch(ctx, snaps); err != nil {
		return 0, err
	}
	s.log.Debug("自動存檔完成", zap.Int("count", len(snaps)))
	return len(snaps), nil
}
