// Package replication decides, once per tick, which viewer receives which
// update block, and hands the framed packets to the network layer.
package replication

import (
	"errors"

	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/detect"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/update"
)

// Index answers range queries over the objects of one partition.
type Index interface {
	QueryNearby(center *object.WorldObject, radius float32) []object.Entity
}

// Encoder builds per-viewer blocks; *update.Encoder is the production one.
type Encoder interface {
	BuildCreateBlock(ent object.Entity, viewer *object.Player) ([]byte, error)
	BuildValuesBlock(ent object.Entity, viewer *object.Player) ([]byte, error)
}

// Sink delivers a framed packet to the session bound to viewer.
type Sink interface {
	Send(viewer object.GUID, data []byte) error
}

var ErrNotInWorld = errors.New("replication: object not in world")

type batch struct {
	viewer *object.Player
	data   UpdateData
}

// Scheduler owns one partition's registry and per-viewer batches. It is
// driven from a single goroutine.
type Scheduler struct {
	reg   *Registry
	enc   Encoder
	det   *detect.Detector
	index Index
	sink  Sink
	log   *zap.Logger

	batches map[object.GUID]*batch
	order   []object.GUID
}

func NewScheduler(reg *Registry, enc Encoder, det *detect.Detector, index Index, sink Sink, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		reg:     reg,
		enc:     enc,
		det:     det,
		index:   index,
		sink:    sink,
		log:     log,
		batches: make(map[object.GUID]*batch),
	}
}

func (s *Scheduler) Registry() *Registry { return s.reg }

// Flush builds blocks for every registered object. An object leaves the
// registry only after it was handled, so a panic partway through leaves
// the rest registered and dirty. An object whose encoding failed for any
// viewer keeps its dirty state and stays registered for the next flush.
func (s *Scheduler) Flush() {
	for _, ent := range s.reg.pending() {
		o := ent.Base()
		if !o.IsInWorld() || !o.IsQueued() {
			s.reg.RemoveUpdateObject(ent)
			continue
		}
		if s.flushObject(ent) {
			o.ClearUpdateMask(true)
			s.reg.RemoveUpdateObject(ent)
		}
	}
}

func (s *Scheduler) flushObject(ent object.Entity) bool {
	ok := true
	seen := make(map[object.GUID]struct{})
	visit := func(p *object.Player, reconcile bool) {
		if p == nil || !p.IsInWorld() {
			return
		}
		if _, dup := seen[p.GUID()]; dup {
			return
		}
		seen[p.GUID()] = struct{}{}

		var err error
		switch {
		case reconcile:
			err = s.reconcile(ent, p)
		case p.HaveAtClient(ent.GUID()):
			err = s.queueValues(ent, p)
		}
		if err != nil {
			ok = false
			s.log.Warn("建立更新區塊失敗",
				zap.Uint64("guid", uint64(ent.GUID())),
				zap.Uint64("viewer", uint64(p.GUID())),
				zap.Error(err),
			)
		}
	}

	o := ent.Base()
	if it := o.ToItem(); it != nil {
		visit(it.Owner(), true)
		return ok
	}
	w := o.ToWorld()
	if w == nil {
		return ok
	}
	if p := o.ToPlayer(); p != nil {
		visit(p, true)
	}
	for _, near := range s.index.QueryNearby(w, s.det.VisibilityRange(ent)) {
		visit(near.Base().ToPlayer(), true)
	}
	// Viewers looking through someone else's eyes only get values for
	// what they already know.
	if u := o.ToUnit(); u != nil {
		for _, p := range u.SharedVision() {
			visit(p, false)
		}
	}
	if d := o.ToDynamicObject(); d != nil {
		if c := d.Caster(); c != nil {
			if p := c.ToPlayer(); p != nil && p.FarsightGUID() == d.GUID() {
				visit(p, false)
			}
		}
	}
	return ok
}

// reconcile moves viewer's view of ent to where detection says it should
// be: values for known and visible, create for newly visible, out of range
// for known but no longer visible.
func (s *Scheduler) reconcile(ent object.Entity, viewer *object.Player) error {
	g := ent.GUID()
	known := viewer.HaveAtClient(g)
	visible := s.isVisible(ent, viewer)
	switch {
	case visible && known:
		return s.queueValues(ent, viewer)
	case visible:
		return s.queueCreate(ent, viewer)
	case known:
		s.batchFor(viewer).AddOutOfRange(g)
		viewer.RemoveClientGUID(g)
	}
	return nil
}

func (s *Scheduler) isVisible(ent object.Entity, viewer *object.Player) bool {
	if it := ent.Base().ToItem(); it != nil {
		return it.OwnerGUID() == viewer.GUID()
	}
	return s.det.CanSeeOrDetect(viewer, ent, false, true)
}

func (s *Scheduler) queueValues(ent object.Entity, viewer *object.Player) error {
	blk, err := s.enc.BuildValuesBlock(ent, viewer)
	if err != nil {
		return err
	}
	s.batchFor(viewer).AddBlock(blk)
	return nil
}

func (s *Scheduler) queueCreate(ent object.Entity, viewer *object.Player) error {
	blk, err := s.enc.BuildCreateBlock(ent, viewer)
	if err != nil {
		return err
	}
	s.batchFor(viewer).AddBlock(blk)
	viewer.AddClientGUID(ent.GUID())
	return nil
}

func (s *Scheduler) batchFor(viewer *object.Player) *UpdateData {
	b, ok := s.batches[viewer.GUID()]
	if !ok {
		b = &batch{viewer: viewer}
		s.batches[viewer.GUID()] = b
		s.order = append(s.order, viewer.GUID())
	}
	b.viewer = viewer
	return &b.data
}

// SendUpdateToPlayer sends viewer the current state of ent right away,
// outside of the tick batch.
func (s *Scheduler) SendUpdateToPlayer(ent object.Entity, viewer *object.Player) error {
	if !viewer.HaveAtClient(ent.GUID()) {
		return s.SendCreateToPlayer(ent, viewer)
	}
	return s.sendNow(ent, viewer, s.enc.BuildValuesBlock)
}

// SendCreateToPlayer sends a create block even if viewer already knows
// ent. Used for a player's own object on entering the world.
func (s *Scheduler) SendCreateToPlayer(ent object.Entity, viewer *object.Player) error {
	if err := s.sendNow(ent, viewer, s.enc.BuildCreateBlock); err != nil {
		return err
	}
	viewer.AddClientGUID(ent.GUID())
	return nil
}

func (s *Scheduler) sendNow(ent object.Entity, viewer *object.Player, build func(object.Entity, *object.Player) ([]byte, error)) error {
	if !viewer.IsInWorld() {
		return ErrNotInWorld
	}
	blk, err := build(ent, viewer)
	if err != nil {
		return err
	}
	var data UpdateData
	data.AddBlock(blk)
	return s.sink.Send(viewer.GUID(), data.BuildPacket(uint16(viewer.MapID())))
}

// UpdateVisibilityOf queues a create or out-of-range block when viewer's
// detection of ent changed since it was last told about it.
func (s *Scheduler) UpdateVisibilityOf(ent object.Entity, viewer *object.Player) error {
	g := ent.GUID()
	if g == viewer.GUID() {
		return nil
	}
	known := viewer.HaveAtClient(g)
	visible := ent.Base().IsInWorld() && s.isVisible(ent, viewer)
	switch {
	case visible && !known:
		return s.queueCreate(ent, viewer)
	case !visible && known:
		s.batchFor(viewer).AddOutOfRange(g)
		viewer.RemoveClientGUID(g)
	}
	return nil
}

// ForgetFor queues an out-of-range entry for a guid the viewer knows but
// which is no longer present in the partition.
func (s *Scheduler) ForgetFor(g object.GUID, viewer *object.Player) {
	if !viewer.HaveAtClient(g) || g == viewer.GUID() {
		return
	}
	s.batchFor(viewer).AddOutOfRange(g)
	viewer.RemoveClientGUID(g)
}

// DestroyForPlayer tells viewer to drop ent immediately.
func (s *Scheduler) DestroyForPlayer(ent object.Entity, viewer *object.Player, onDeath bool) error {
	if err := s.sink.Send(viewer.GUID(), update.BuildDestroyPacket(ent.GUID(), onDeath)); err != nil {
		return err
	}
	viewer.RemoveClientGUID(ent.GUID())
	return nil
}

// DestroyForNearbyPlayers sends a destroy to every nearby player that
// currently knows ent.
func (s *Scheduler) DestroyForNearbyPlayers(ent object.Entity) {
	w := ent.Base().ToWorld()
	if w == nil {
		return
	}
	for _, near := range s.index.QueryNearby(w, s.det.VisibilityRange(ent)) {
		p := near.Base().ToPlayer()
		if p == nil || p.GUID() == ent.GUID() || !p.HaveAtClient(ent.GUID()) {
			continue
		}
		if err := s.DestroyForPlayer(ent, p, false); err != nil {
			s.log.Debug("發送銷毀封包失敗",
				zap.Uint64("guid", uint64(ent.GUID())),
				zap.Uint64("viewer", uint64(p.GUID())),
				zap.Error(err),
			)
		}
	}
}

// Remove cancels pending replication of ent. Its dirty fields are
// discarded and nothing is sent.
func (s *Scheduler) Remove(ent object.Entity) {
	o := ent.Base()
	if o.IsQueued() {
		o.ClearUpdateMask(true)
	}
	s.reg.RemoveUpdateObject(ent)
}

// DropViewer discards the pending batch of a player leaving the partition.
func (s *Scheduler) DropViewer(g object.GUID) {
	if _, ok := s.batches[g]; !ok {
		return
	}
	delete(s.batches, g)
	for i, v := range s.order {
		if v == g {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Send frames every pending batch and passes it to the sink. Batches for
// viewers without a session are dropped.
func (s *Scheduler) Send() {
	for _, g := range s.order {
		b := s.batches[g]
		if !b.data.HasData() {
			continue
		}
		pkt := b.data.BuildPacket(uint16(b.viewer.MapID()))
		if err := s.sink.Send(g, pkt); err != nil {
			s.log.Debug("玩家連線不存在，略過更新",
				zap.Uint64("viewer", uint64(g)),
				zap.Error(err),
			)
		}
		b.data.Reset()
	}
}
