package object

// DynamicObject is a spell's ground effect or far sight anchor.
type DynamicObject struct {
	WorldObject

	caster   *Unit
	dynType  DynamicObjectType
	visualID uint32
}

func NewDynamicObject() *DynamicObject {
	d := &DynamicObject{}
	d.init(d, TypeIDDynamicObject, TypeMaskDynamicObject, DynamicObjectEnd, 0)
	d.initWorld(true)
	d.updateFlags = UpdateFlagStationaryPosition
	return d
}

func (d *DynamicObject) Kind() Kind { return KindDynamicObject }

// Create places the object and binds it to its caster.
func (d *DynamicObject) Create(low uint32, caster *Unit, spellID, visualID uint32, t DynamicObjectType, radius float32, x, y, z float32) {
	d.create(MakeGUID(low, 0, HighDynamicObject), spellID)
	d.Relocate(x, y, z, 0)
	d.caster = caster
	d.dynType = t
	d.visualID = visualID
	if caster != nil {
		d.SetGuid(DynamicObjectFieldCaster, caster.GUID())
		d.SetPhaseMask(caster.PhaseMask())
	}
	d.SetUint32(DynamicObjectFieldBytes, uint32(t)<<28|visualID&0x0FFFFFFF)
	d.SetUint32(DynamicObjectFieldSpellID, spellID)
	d.SetFloat(DynamicObjectFieldRadius, radius)
	d.resetChanges()
}

func (d *DynamicObject) Caster() *Unit           { return d.caster }
func (d *DynamicObject) CasterGUID() GUID        { return d.Guid(DynamicObjectFieldCaster) }
func (d *DynamicObject) Type() DynamicObjectType { return d.dynType }
func (d *DynamicObject) VisualID() uint32        { return d.visualID }

// Corpse is what a dead player leaves behind.
type Corpse struct {
	WorldObject
}

func NewCorpse() *Corpse {
	c := &Corpse{}
	c.init(c, TypeIDCorpse, TypeMaskCorpse, CorpseEnd, 0)
	c.initWorld(true)
	c.updateFlags = UpdateFlagStationaryPosition
	return c
}

func (c *Corpse) Kind() Kind { return KindCorpse }

// Create places a corpse for owner at the owner's position.
func (c *Corpse) Create(low uint32, owner *Player) {
	c.create(MakeGUID(low, 0, HighCorpse), 0)
	pos := owner.Position()
	c.Relocate(pos.X, pos.Y, pos.Z, pos.O)
	c.SetMap(owner.MapID(), owner.InstanceID())
	c.SetPhaseMask(owner.PhaseMask())
	c.SetGuid(CorpseFieldOwner, owner.GUID())
	c.SetGuid(CorpseFieldPartyGUID, owner.Group())
	c.resetChanges()
}

func (c *Corpse) OwnerGUID() GUID { return c.Guid(CorpseFieldOwner) }

// AreaTriggerShape is the geometry of an area trigger as the create block
// sends it.
type AreaTriggerShape struct {
	Polygon        uint32 // >1 also sends the target vertices
	PolygonPoints  [][2]float32
	Cylinder       bool
	Height         float32
	HeightTarget   float32
	Radius         float32
	RadiusTarget   float32
	Float4, Float5 float32

	VisualScale       float32
	VisualScaleTarget float32

	AbsoluteOrientation bool
	FollowsTerrain      bool
	FaceMovementDir     bool
	Attached            bool
	DynamicShape        bool

	MoveCurveID   uint32
	MorphCurveID  uint32
	FacingCurveID uint32
	ScaleCurveID  uint32
	ElapsedTime   uint32

	// Spline points of a moving trigger.
	Path [][3]float32
}

func (s *AreaTriggerShape) IsPolygon() bool { return s.Polygon > 0 && len(s.PolygonPoints) > 0 }
func (s *AreaTriggerShape) IsMoving() bool  { return len(s.Path) > 0 }

// AreaTrigger is a spell shaped region.
type AreaTrigger struct {
	WorldObject

	caster *Unit
	Shape  AreaTriggerShape
}

func NewAreaTrigger() *AreaTrigger {
	a := &AreaTrigger{}
	a.init(a, TypeIDAreaTrigger, TypeMaskAreaTrigger, AreaTriggerEnd, 0)
	a.initWorld(true)
	a.updateFlags = UpdateFlagStationaryPosition | UpdateFlagAreaTrigger
	return a
}

func (a *AreaTrigger) Kind() Kind { return KindAreaTrigger }

// Create places the trigger and binds it to its caster.
func (a *AreaTrigger) Create(low, entry uint32, caster *Unit, spellID, visualID uint32, x, y, z, o float32) {
	a.create(MakeGUID(low, entry, HighAreaTrigger), entry)
	a.Relocate(x, y, z, o)
	a.caster = caster
	if caster != nil {
		a.SetGuid(AreaTriggerFieldCaster, caster.GUID())
		a.SetPhaseMask(caster.PhaseMask())
	}
	a.SetUint32(AreaTriggerFieldSpellID, spellID)
	a.SetUint32(AreaTriggerFieldSpellVisualID, visualID)
	a.SetFloat(AreaTriggerFieldExplicitScale, 1)
	a.resetChanges()
}

func (a *AreaTrigger) Caster() *Unit    { return a.caster }
func (a *AreaTrigger) CasterGUID() GUID { return a.Guid(AreaTriggerFieldCaster) }

// Item is an inventory object. It has no position; it replicates to its owner.
type Item struct {
	Object

	owner *Player
}

// NewItem returns an item shell. bag selects the container schema.
func NewItem(bag bool) *Item {
	i := &Item{}
	if bag {
		i.init(i, TypeIDContainer, TypeMaskItem|TypeMaskContainer, ContainerEnd, ItemDynamicEnd)
	} else {
		i.init(i, TypeIDItem, TypeMaskItem, ItemEnd, ItemDynamicEnd)
	}
	return i
}

func (i *Item) Kind() Kind { return KindItem }

func (i *Item) Create(low, entry uint32, owner *Player) {
	i.create(MakeGUID(low, 0, HighItem), entry)
	i.owner = owner
	if owner != nil {
		i.SetGuid(ItemFieldOwner, owner.GUID())
		i.SetGuid(ItemFieldContainedIn, owner.GUID())
	}
	i.SetUint32(ItemFieldStackCount, 1)
	i.resetChanges()
}

func (i *Item) IsBag() bool { return i.typeMask&TypeMaskContainer != 0 }

func (i *Item) Owner() *Player  { return i.owner }
func (i *Item) OwnerGUID() GUID { return i.Guid(ItemFieldOwner) }
