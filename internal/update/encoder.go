// Package update turns object field state into per-viewer update blocks.
//
// Every block is built for one viewer: which fields are present and what
// value each one carries can differ between two clients looking at the
// same object. The field store is only ever read here.
package update

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
)

// Type is the leading byte of a block.
type Type uint8

const (
	TypeValues        Type = 0
	TypeCreateObject  Type = 1
	TypeCreateObject2 Type = 2
	TypeOutOfRange    Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeValues:
		return "VALUES"
	case TypeCreateObject:
		return "CREATE_OBJECT"
	case TypeCreateObject2:
		return "CREATE_OBJECT2"
	case TypeOutOfRange:
		return "OUT_OF_RANGE"
	}
	return "UNKNOWN"
}

var (
	ErrNilViewer  = errors.New("update: nil viewer")
	ErrNotCreated = errors.New("update: object has no fields")
)

// Encoder builds create and values blocks. It holds no per-object state
// and is safe to share inside one partition.
type Encoder struct {
	svc  Services
	opts Options
	log  *zap.Logger
	now  func() uint32
}

// NewEncoder returns an encoder over svc. A nil logger is replaced by a
// no-op one.
func NewEncoder(svc Services, opts Options, log *zap.Logger) *Encoder {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	return &Encoder{
		svc:  svc,
		opts: opts,
		log:  log,
		now:  func() uint32 { return uint32(time.Since(start).Milliseconds()) },
	}
}

// SetClock replaces the millisecond clock written into movement and
// transport timestamps.
func (e *Encoder) SetClock(now func() uint32) { e.now = now }

// CreateType decides between CREATE_OBJECT and CREATE_OBJECT2 and adds the
// viewer dependent movement flags.
func CreateType(ent object.Entity, viewer *object.Player) (Type, object.UpdateFlag) {
	o := ent.Base()
	typ := TypeCreateObject
	flags := o.UpdateFlags()

	if viewer != nil && o.GUID() == viewer.GUID() {
		flags |= object.UpdateFlagSelf
	}

	if flags&object.UpdateFlagStationaryPosition != 0 {
		if g := o.ToGameObject(); g != nil {
			switch g.GoType() {
			case object.GameObjectTypeTrap, object.GameObjectTypeDuelArbiter,
				object.GameObjectTypeFlagStand, object.GameObjectTypeFlagDrop:
				typ = TypeCreateObject2
			case object.GameObjectTypeTransport:
				flags |= object.UpdateFlagTransport
			}
		}
	}

	if u := o.ToUnit(); u != nil && u.Victim() != nil {
		flags |= object.UpdateFlagHasTarget
	}

	switch o.GUID().High() {
	case object.HighPlayer, object.HighPet, object.HighCorpse,
		object.HighDynamicObject, object.HighAreaTrigger:
		typ = TypeCreateObject2
	case object.HighUnit:
		if u := o.ToUnit(); u != nil && u.IsTempSummon() && u.SummonerGUID().IsPlayer() {
			typ = TypeCreateObject2
		}
	case object.HighGameObject:
		if g := o.ToGameObject(); g != nil && g.OwnerGUID().IsPlayer() {
			typ = TypeCreateObject2
		}
	}
	return typ, flags
}

// BuildCreateBlock encodes the full state of ent as viewer may see it.
func (e *Encoder) BuildCreateBlock(ent object.Entity, viewer *object.Player) ([]byte, error) {
	if viewer == nil {
		return nil, ErrNilViewer
	}
	o := ent.Base()
	if !o.IsCreated() {
		return nil, ErrNotCreated
	}

	typ, flags := CreateType(ent, viewer)
	rel := RelationOf(ent, viewer, e.svc.Groups)

	w := packet.NewWriterSize(512)
	w.WriteC(byte(typ))
	w.WritePackedGUID(uint64(o.GUID()))
	w.WriteC(byte(o.TypeID()))

	mv := describeMovement(ent, flags, e.now())
	mv.writeBits(w)
	mv.writeValues(w)

	mask := createMask(o, rel)
	questActive := e.forceCreateFields(ent, viewer, mask)
	e.writeFields(w, ent, viewer, mask, questActive)
	writeDynamic(w, o, viewer, true)
	return w.Bytes(), nil
}

// BuildValuesBlock encodes the dirty fields of ent as viewer may see
// them. A clean object yields a block with an empty mask.
func (e *Encoder) BuildValuesBlock(ent object.Entity, viewer *object.Player) ([]byte, error) {
	if viewer == nil {
		return nil, ErrNilViewer
	}
	o := ent.Base()
	if !o.IsCreated() {
		return nil, ErrNotCreated
	}

	rel := RelationOf(ent, viewer, e.svc.Groups)

	w := packet.NewWriterSize(128)
	w.WriteC(byte(TypeValues))
	w.WritePackedGUID(uint64(o.GUID()))

	mask := valuesMask(o, rel)
	questActive := e.forceValuesFields(ent, viewer, mask)
	e.writeFields(w, ent, viewer, mask, questActive)
	writeDynamic(w, o, viewer, false)
	return w.Bytes(), nil
}

func (e *Encoder) activateToQuest(g *object.GameObject, viewer *object.Player) bool {
	return e.svc.Rules != nil && e.svc.Rules.ActivateToQuest(g, viewer)
}

// forceCreateFields adds the fields a create block always carries for some
// variants and reports whether the game object is quest active for viewer.
func (e *Encoder) forceCreateFields(ent object.Entity, viewer *object.Player, m *Mask) bool {
	o := ent.Base()
	if g := o.ToGameObject(); g != nil {
		if g.IsDynTransport() {
			return false
		}
		if g.ArtKit() != 0 {
			m.Set(object.GameObjectFieldBytes1)
		}
		return e.activateToQuest(g, viewer)
	}
	if u := o.ToUnit(); u != nil && u.HasFlag(object.UnitFieldAuraState, object.PerCasterAuraStateMask) {
		m.Set(object.UnitFieldAuraState)
	}
	return false
}

// forceValuesFields is the values block counterpart of forceCreateFields.
// Nothing is forced into the block of a clean object.
func (e *Encoder) forceValuesFields(ent object.Entity, viewer *object.Player, m *Mask) bool {
	o := ent.Base()
	dirty := o.HasChanges()
	if g := o.ToGameObject(); g != nil {
		if g.IsTransport() {
			return false
		}
		if dirty {
			m.Set(object.GameObjectFieldBytes1)
			if g.GoType() == object.GameObjectTypeChest && g.UseGroupLootRules && g.HasLootRecipient() {
				m.Set(object.GameObjectFieldFlags)
			}
		}
		return e.activateToQuest(g, viewer)
	}
	if u := o.ToUnit(); u != nil && dirty && u.HasFlag(object.UnitFieldAuraState, object.PerCasterAuraStateMask) {
		m.Set(object.UnitFieldAuraState)
	}
	return false
}

// writeFields writes [u8 blockCount][mask][values ascending].
func (e *Encoder) writeFields(w *packet.Writer, ent object.Entity, viewer *object.Player, m *Mask, questActive bool) {
	w.WriteC(byte(m.BlockCount()))
	for _, b := range m.Blocks() {
		w.WriteDU(b)
	}
	for _, i := range m.Indices() {
		w.WriteDU(e.valueFor(ent, i, viewer, questActive))
	}
}

// BuildDestroyPacket tells one client to forget guid. onDeath lets the
// client play the death animation instead of fading the object out.
func BuildDestroyPacket(guid object.GUID, onDeath bool) []byte {
	g := uint64(guid)
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_DESTROY_OBJECT)
	w.WriteGuidMask(g, 7, 2, 6, 3, 1, 4)
	w.WriteBit(onDeath)
	w.WriteGuidMask(g, 5, 0)
	w.WriteGuidBytes(g, 4, 3, 2, 7, 0, 1, 6, 5)
	return w.Bytes()
}
