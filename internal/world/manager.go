package world

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/replicore/internal/detect"
	"github.com/l1jgo/replicore/internal/replication"
	"github.com/l1jgo/replicore/internal/update"
)

// Deps are the collaborators every partition is built from.
type Deps struct {
	Services   update.Services
	Options    update.Options
	Detect     detect.Config
	DetectDeps detect.Deps
	Sink       replication.Sink

	CellSize   float32
	SweepEvery int
}

// Manager owns every partition. Partitions are spread over a fixed number
// of workers by key hash, so a partition is always ticked by the same
// worker slot and two workers never touch the same partition.
type Manager struct {
	mu         sync.Mutex
	deps       Deps
	workers    int
	partitions map[PartitionKey]*Partition
	log        *zap.Logger
}

func NewManager(deps Deps, workers int, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		deps:       deps,
		workers:    max(workers, 1),
		partitions: make(map[PartitionKey]*Partition),
		log:        log,
	}
}

// Partition returns the partition for a map instance, creating it on
// first use.
func (m *Manager) Partition(mapID, instanceID uint32) *Partition {
	key := PartitionKey{MapID: mapID, InstanceID: instanceID}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partitions[key]
	if !ok {
		p = newPartition(key, m.deps, m.log.With(zap.Stringer("partition", key)))
		m.partitions[key] = p
		m.log.Info("地圖分區建立", zap.Stringer("partition", key))
	}
	return p
}

func (m *Manager) Find(mapID, instanceID uint32) (*Partition, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partitions[PartitionKey{MapID: mapID, InstanceID: instanceID}]
	return p, ok
}

// Count returns the number of live partitions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.partitions)
}

// Each visits partitions in key order.
func (m *Manager) Each(fn func(*Partition)) {
	for _, p := range m.sorted() {
		fn(p)
	}
}

// Unload drops an empty partition. Partitions holding players are kept.
func (m *Manager) Unload(key PartitionKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partitions[key]
	if !ok || p.PlayerCount() > 0 {
		return false
	}
	delete(m.partitions, key)
	m.log.Info("地圖分區卸載", zap.Stringer("partition", key))
	return true
}

func (m *Manager) sorted() []*Partition {
	m.mu.Lock()
	list := make([]*Partition, 0, len(m.partitions))
	for _, p := range m.partitions {
		list = append(list, p)
	}
	m.mu.Unlock()
	slices.SortFunc(list, func(a, b *Partition) int {
		if c := cmp.Compare(a.key.MapID, b.key.MapID); c != 0 {
			return c
		}
		return cmp.Compare(a.key.InstanceID, b.key.InstanceID)
	})
	return list
}

// WorkerOf returns the worker slot a partition is ticked on.
func (m *Manager) WorkerOf(key PartitionKey) int {
	return int(xxhash.Sum64String(key.String()) % uint64(m.workers))
}

// Tick runs one replication tick over every partition. Partitions on
// different workers run in parallel. A panic inside one partition is
// recovered and does not stop the others; every such failure is joined
// into the returned error. A cancelled ctx stops workers between
// partitions.
func (m *Manager) Tick(ctx context.Context) error {
	shards := make([][]*Partition, m.workers)
	for _, p := range m.sorted() {
		w := m.WorkerOf(p.key)
		shards[w] = append(shards[w], p)
	}

	var g errgroup.Group
	failed := make([][]error, len(shards))
	for i, shard := range shards {
		if len(shard) == 0 {
			continue
		}
		g.Go(func() error {
			for _, p := range shard {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := m.tickOne(p); err != nil {
					failed[i] = append(failed[i], err)
				}
			}
			return nil
		})
	}
	errs := []error{g.Wait()}
	for _, f := range failed {
		errs = append(errs, f...)
	}
	return errors.Join(errs...)
}

func (m *Manager) tickOne(p *Partition) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("分區更新 panic 已恢復", zap.Stringer("partition", p.key), zap.Any("panic", r))
			err = fmt.Errorf("partition %s: panic: %v", p.key, r)
		}
	}()
	p.Tick()
	return nil
}
