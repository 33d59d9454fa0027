package object

import "errors"

var (
	// ErrStillInWorld is returned by Destroy for an object that was never
	// removed from its partition.
	ErrStillInWorld = errors.New("object still in world")
	// ErrPendingUpdate is returned by Destroy for an object still queued for replication.
	ErrPendingUpdate = errors.New("object still queued for update")
)

// UpdateQueue receives objects whose fields became dirty while in world.
// Each partition owns one; see replication.Registry.
type UpdateQueue interface {
	AddUpdateObject(e Entity)
	RemoveUpdateObject(e Entity)
}

// Entity is the closed set of replicated variants. Only types in this
// package implement it.
type Entity interface {
	Base() *Object
	GUID() GUID
	Kind() Kind
	sealed()
}

// Object is the part every variant shares: identity, field store and
// update registration state.
type Object struct {
	FieldStore

	guid        GUID
	typeID      TypeID
	typeMask    TypeMask
	updateFlags UpdateFlag
	notifyFlags uint32

	valuesCount  int
	dynamicCount int

	inWorld bool
	updated bool
	queue   UpdateQueue
	self    Entity
}

func (o *Object) init(self Entity, typeID TypeID, mask TypeMask, values, dynamic int) {
	o.self = self
	o.typeID = typeID
	o.typeMask = TypeMaskObject | mask
	o.valuesCount = values
	o.dynamicCount = dynamic
}

// create allocates the field arrays, writes identity fields and leaves the
// store clean.
func (o *Object) create(guid GUID, entry uint32) {
	o.FieldStore.init(o.valuesCount, o.dynamicCount)
	o.FieldStore.onDirty = o.markUpdated
	o.guid = guid
	o.SetGuid(ObjectFieldGUID, guid)
	o.SetUint32(ObjectFieldType, uint32(o.typeMask))
	o.SetUint32(ObjectFieldEntry, entry)
	o.SetFloat(ObjectFieldScaleX, 1)
	o.resetChanges()
}

func (o *Object) markUpdated() {
	if !o.inWorld || o.updated || o.queue == nil {
		return
	}
	o.queue.AddUpdateObject(o.self)
	o.updated = true
}

func (o *Object) Base() *Object { return o }
func (o *Object) GUID() GUID    { return o.guid }
func (o *Object) sealed()       {}

func (o *Object) TypeID() TypeID     { return o.typeID }
func (o *Object) TypeMask() TypeMask { return o.typeMask }

// IsType reports whether the object is any of the types in mask.
func (o *Object) IsType(mask TypeMask) bool { return o.typeMask&mask != 0 }

func (o *Object) Entry() uint32 { return o.Uint32(ObjectFieldEntry) }

func (o *Object) IsCreated() bool { return o.values != nil }
func (o *Object) IsInWorld() bool { return o.inWorld }

// IsQueued reports whether the object sits in its partition's update registry.
func (o *Object) IsQueued() bool { return o.updated }

func (o *Object) UpdateFlags() UpdateFlag { return o.updateFlags }

func (o *Object) SetUpdateFlag(f UpdateFlag, on bool) {
	if on {
		o.updateFlags |= f
	} else {
		o.updateFlags &^= f
	}
}

// NotifyFlags are field visibility flags forced into every block for this
// object regardless of viewer relation.
func (o *Object) NotifyFlags() uint32 { return o.notifyFlags }

func (o *Object) SetFieldNotifyFlag(f uint32)    { o.notifyFlags |= f }
func (o *Object) RemoveFieldNotifyFlag(f uint32) { o.notifyFlags &^= f }

func (o *Object) ObjectScale() float32 { return o.Float(ObjectFieldScaleX) }

func (o *Object) SetObjectScale(s float32) { o.SetFloat(ObjectFieldScaleX, s) }

// AddToWorld makes the object eligible for replication through q.
func (o *Object) AddToWorld(q UpdateQueue) {
	if o.inWorld {
		return
	}
	o.queue = q
	o.inWorld = true
	o.ClearUpdateMask(true)
}

// RemoveFromWorld drops the object from replication without flushing
// pending changes.
func (o *Object) RemoveFromWorld() {
	if !o.inWorld {
		return
	}
	o.ClearUpdateMask(true)
	o.inWorld = false
	o.queue = nil
}

// ClearUpdateMask resets every dirty flag. With remove set, the object is
// also taken out of the update registry; the registry itself passes false
// while it is iterating.
func (o *Object) ClearUpdateMask(remove bool) {
	o.resetChanges()
	if !o.updated {
		return
	}
	if remove && o.queue != nil {
		o.queue.RemoveUpdateObject(o.self)
	}
	o.updated = false
}

// Destroy releases the field arrays. The object must already be out of the
// world and out of the update registry.
func (o *Object) Destroy() error {
	if o.inWorld {
		return ErrStillInWorld
	}
	if o.updated {
		return ErrPendingUpdate
	}
	o.values = nil
	o.changed = nil
	o.dynamic = nil
	o.dynamicChanged = nil
	return nil
}
