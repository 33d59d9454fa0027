package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/core/event"
	coresys "github.com/l1jgo/replicore/internal/core/system"
	"github.com/l1jgo/replicore/internal/world"
)

// CleanupSystem removes despawned objects at tick end and unloads
// partitions left with nothing in them. Phase 5 (Cleanup).
type CleanupSystem struct {
	manager *world.Manager
	bus     *event.Bus
	log     *zap.Logger
}

func NewCleanupSystem(manager *world.Manager, bus *event.Bus, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{manager: manager, bus: bus, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	var empty []world.PartitionKey
	removed := 0
	s.manager.Each(func(p *world.Partition) {
		for _, g := range p.RemoveDespawned() {
			event.Emit(s.bus, event.ObjectDespawned{GUID: g, MapID: p.Key().MapID})
			removed++
		}
		if p.ObjectCount() == 0 {
			empty = append(empty, p.Key())
		}
	})
	if removed > 0 {
		s.log.Debug("已清除消失物件", zap.Int("count", removed))
	}
	for _, key := range empty {
		if s.manager.Unload(key) {
			event.Emit(s.bus, event.PartitionUnloaded{MapID: key.MapID, InstanceID: key.InstanceID})
		}
	}
}
