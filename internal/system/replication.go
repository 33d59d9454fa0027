package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/replicore/internal/core/system"
	"github.com/l1jgo/replicore/internal/world"
)

// ReplicationSystem ticks every partition: visibility sweep when due,
// registry flush, batch send. Phase 2 (Update).
type ReplicationSystem struct {
	ctx     context.Context
	manager *world.Manager
	log     *zap.Logger
	slow    time.Duration
}

// NewReplicationSystem logs ticks slower than slow; zero disables that.
func NewReplicationSystem(ctx context.Context, manager *world.Manager, slow time.Duration, log *zap.Logger) *ReplicationSystem {
	return &ReplicationSystem{ctx: ctx, manager: manager, slow: slow, log: log}
}

func (s *ReplicationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ReplicationSystem) Update(_ time.Duration) {
	start := time.Now()
	if err := s.manager.Tick(s.ctx); err != nil && s.ctx.Err() == nil {
		s.log.Error("複製更新失敗", zap.Error(err))
	}
	if elapsed := time.Since(start); s.slow > 0 && elapsed > s.slow {
		s.log.Warn("複製更新過慢",
			zap.Duration("elapsed", elapsed),
			zap.Int("partitions", s.manager.Count()),
		)
	}
}
