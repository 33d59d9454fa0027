package world

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/detect"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/replication"
	"github.com/l1jgo/replicore/internal/update"
)

var (
	ErrDuplicateObject = errors.New("world: object already in partition")
	ErrWrongPartition  = errors.New("world: object belongs to another map")
)

// PartitionKey identifies one map instance.
type PartitionKey struct {
	MapID      uint32
	InstanceID uint32
}

func (k PartitionKey) String() string { return fmt.Sprintf("%d:%d", k.MapID, k.InstanceID) }

// Partition is one map instance: its objects, spatial index, update
// registry and scheduler. Everything in it is driven by exactly one
// goroutine per tick.
type Partition struct {
	key     PartitionKey
	grid    *Grid
	det     *detect.Detector
	sched   *replication.Scheduler
	objects map[object.GUID]object.Entity
	players map[object.GUID]*object.Player
	log     *zap.Logger

	sweepEvery int
	ticks      int
}

func newPartition(key PartitionKey, deps Deps, log *zap.Logger) *Partition {
	p := &Partition{
		key:        key,
		grid:       NewGrid(deps.CellSize),
		objects:    make(map[object.GUID]object.Entity),
		players:    make(map[object.GUID]*object.Player),
		log:        log,
		sweepEvery: max(deps.SweepEvery, 1),
	}
	dd := deps.DetectDeps
	dd.Units = p
	p.det = detect.New(deps.Detect, dd, log)
	enc := update.NewEncoder(deps.Services, deps.Options, log)
	p.sched = replication.NewScheduler(replication.NewRegistry(), enc, p.det, p.grid, deps.Sink, log)
	return p
}

func (p *Partition) Key() PartitionKey                 { return p.key }
func (p *Partition) Scheduler() *replication.Scheduler { return p.sched }
func (p *Partition) Detector() *detect.Detector        { return p.det }
func (p *Partition) Grid() *Grid                       { return p.grid }
func (p *Partition) ObjectCount() int                  { return len(p.objects) }
func (p *Partition) PlayerCount() int                  { return len(p.players) }

func (p *Partition) Get(g object.GUID) object.Entity { return p.objects[g] }

// UnitByGUID implements detect.UnitLookup.
func (p *Partition) UnitByGUID(g object.GUID) *object.Unit {
	if e := p.objects[g]; e != nil {
		return e.Base().ToUnit()
	}
	return nil
}

// Add puts e into the world. A player is sent its own create block
// at once; everything else becomes visible on the next sweep.
func (p *Partition) Add(e object.Entity) error {
	g := e.GUID()
	if _, ok := p.objects[g]; ok {
		return ErrDuplicateObject
	}
	if w := e.Base().ToWorld(); w != nil && (w.MapID() != p.key.MapID || w.InstanceID() != p.key.InstanceID) {
		return ErrWrongPartition
	}
	p.objects[g] = e
	p.grid.Add(e)
	e.Base().AddToWorld(p.sched.Registry())

	if pl := e.Base().ToPlayer(); pl != nil {
		p.players[g] = pl
		if err := p.sched.SendCreateToPlayer(pl, pl); err != nil {
			p.log.Warn("發送自身建立封包失敗", zap.Stringer("guid", g), zap.Error(err))
		}
	}
	if it := e.Base().ToItem(); it != nil && it.Owner() != nil {
		if err := p.sched.UpdateVisibilityOf(it, it.Owner()); err != nil {
			p.log.Warn("物品建立失敗", zap.Stringer("guid", g), zap.Error(err))
		}
	}
	return nil
}

// Remove takes an object out of the world. Players that know it are told
// to destroy it now; its pending changes are dropped. Items of a leaving
// player leave with it.
func (p *Partition) Remove(g object.GUID) object.Entity {
	e, ok := p.objects[g]
	if !ok {
		return nil
	}
	if e.Base().ToItem() == nil {
		p.sched.DestroyForNearbyPlayers(e)
	}
	p.detach(e)

	if _, isPlayer := p.players[g]; isPlayer {
		delete(p.players, g)
		p.sched.DropViewer(g)
		for _, oe := range p.objects {
			if it := oe.Base().ToItem(); it != nil && it.OwnerGUID() == g {
				p.detach(oe)
			}
		}
	}
	return e
}

func (p *Partition) detach(e object.Entity) {
	p.sched.Remove(e)
	p.grid.Remove(e.GUID())
	e.Base().RemoveFromWorld()
	delete(p.objects, e.GUID())
}

// RemoveDespawned takes every despawned non-player object out of the
// world and returns their GUIDs in order.
func (p *Partition) RemoveDespawned() []object.GUID {
	var gone []object.GUID
	for g, e := range p.objects {
		if _, isPlayer := p.players[g]; isPlayer {
			continue
		}
		if w := e.Base().ToWorld(); w != nil && w.IsDespawned() {
			gone = append(gone, g)
		}
	}
	slices.Sort(gone)
	for _, g := range gone {
		p.Remove(g)
	}
	return gone
}

// Relocate moves e and re-buckets it in the grid.
func (p *Partition) Relocate(e object.Entity, x, y, z, o float32) {
	w := e.Base().ToWorld()
	if w == nil {
		return
	}
	w.Relocate(x, y, z, o)
	p.grid.Move(e)
}

// Tick runs the visibility sweep when it is due, then flushes and sends
// every batch.
func (p *Partition) Tick() {
	p.ticks++
	if p.ticks >= p.sweepEvery {
		p.ticks = 0
		p.UpdateVisibility()
	}
	p.sched.Flush()
	p.sched.Send()
}

// UpdateVisibility re-evaluates every player's view: objects around the
// viewpoint and active objects are checked for appearance, and every known
// object outside that set is checked for disappearance.
func (p *Partition) UpdateVisibility() {
	var active []object.Entity
	for _, e := range p.objects {
		if w := e.Base().ToWorld(); w != nil && w.IsActive() {
			active = append(active, e)
		}
	}

	for _, pl := range p.players {
		candidates := make(map[object.GUID]struct{})
		check := func(e object.Entity) {
			if _, done := candidates[e.GUID()]; done || e.GUID() == pl.GUID() {
				return
			}
			candidates[e.GUID()] = struct{}{}
			if err := p.sched.UpdateVisibilityOf(e, pl); err != nil {
				p.log.Warn("更新視野失敗",
					zap.Stringer("guid", e.GUID()),
					zap.Stringer("viewer", pl.GUID()),
					zap.Error(err),
				)
			}
		}

		for _, e := range p.grid.QueryNearby(pl.Viewpoint(), p.det.SightRange(pl, nil)) {
			check(e)
		}
		for _, e := range active {
			check(e)
		}
		for _, g := range pl.ClientGUIDs() {
			if _, done := candidates[g]; done || g == pl.GUID() {
				continue
			}
			e, ok := p.objects[g]
			switch {
			case !ok:
				p.sched.ForgetFor(g, pl)
			case e.Base().ToItem() != nil:
			default:
				check(e)
			}
		}
	}
}
