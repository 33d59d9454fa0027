package object

import "math"

// GameObject is a static or animated world object: doors, chests, traps,
// transports.
type GameObject struct {
	WorldObject

	goType   GameObjectType
	owner    GUID
	rotation int64
	spawned  bool

	// Template derived state.
	UseGroupLootRules bool
	ServerOnly        bool
	WorldEffectID     uint32
	ManualAnim        bool
	TransportFrames   []uint32

	lootRecipient GUID
}

// NewGameObject returns a game object shell. Call Create before use.
func NewGameObject() *GameObject {
	g := &GameObject{}
	g.initGameObject(g)
	return g
}

func (g *GameObject) initGameObject(self Entity) {
	g.init(self, TypeIDGameObject, TypeMaskGameObject, GameObjectEnd, GameObjectDynamicEnd)
	g.initWorld(false)
	g.updateFlags = UpdateFlagStationaryPosition | UpdateFlagRotation
	g.spawned = true
}

func (g *GameObject) Kind() Kind { return KindGameObject }

// Create gives the object its GUID and places it.
func (g *GameObject) Create(low, entry uint32, goType GameObjectType, x, y, z, o float32) {
	g.createGameObject(MakeGUID(low, entry, HighGameObject), entry, goType, x, y, z, o)
}

func (g *GameObject) createGameObject(guid GUID, entry uint32, goType GameObjectType, x, y, z, o float32) {
	g.create(guid, entry)
	g.goType = goType
	g.Relocate(x, y, z, o)
	g.SetByte(GameObjectFieldBytes1, 1, uint8(goType))
	g.SetByte(GameObjectFieldBytes1, 0, 1) // ready
	g.SetByte(GameObjectFieldBytes1, 3, 255)
	g.SetRotation(0, 0, math.Sin(float64(o)/2), math.Cos(float64(o)/2))
	g.resetChanges()
}

func (g *GameObject) GoType() GameObjectType { return g.goType }

func (g *GameObject) IsTransport() bool {
	return g.goType == GameObjectTypeTransport || g.goType == GameObjectTypeMOTransport
}

// IsDynTransport is an elevator style transport driven by the client animation.
func (g *GameObject) IsDynTransport() bool {
	return g.goType == GameObjectTypeTransport
}

func (g *GameObject) OwnerGUID() GUID { return g.owner }

// SetOwner records the creator, mirrored into GameObjectFieldCreatedBy.
func (g *GameObject) SetOwner(owner GUID) {
	g.owner = owner
	g.SetGuid(GameObjectFieldCreatedBy, owner)
}

func (g *GameObject) ArtKit() uint8     { return g.Byte(GameObjectFieldBytes1, 2) }
func (g *GameObject) SetArtKit(k uint8) { g.SetByte(GameObjectFieldBytes1, 2, k) }

func (g *GameObject) IsSpawned() bool    { return g.spawned }
func (g *GameObject) SetSpawned(on bool) { g.spawned = on }

func (g *GameObject) Rotation() int64 { return g.rotation }

// SetRotation packs a quaternion into the 64-bit wire form and mirrors it
// into the parent rotation fields.
func (g *GameObject) SetRotation(x, y, z, w float64) {
	const (
		zBits = 20
		yBits = 21
		xBits = 22
	)
	const (
		zMult = float64(1 << (zBits - 1))
		yMult = float64(1 << (yBits - 1))
		xMult = float64(1 << (xBits - 1))
	)
	sign := 1.0
	if w < 0 {
		sign = -1
	}
	ix := int64(x*xMult*sign) & (1<<xBits - 1)
	iy := int64(y*yMult*sign) & (1<<yBits - 1)
	iz := int64(z*zMult*sign) & (1<<zBits - 1)
	g.rotation = iz | iy<<zBits | ix<<(yBits+zBits)

	g.SetFloat(GameObjectFieldParentRotation+0, float32(x))
	g.SetFloat(GameObjectFieldParentRotation+1, float32(y))
	g.SetFloat(GameObjectFieldParentRotation+2, float32(z))
	g.SetFloat(GameObjectFieldParentRotation+3, float32(w))
}

func (g *GameObject) LootRecipient() GUID     { return g.lootRecipient }
func (g *GameObject) SetLootRecipient(r GUID) { g.lootRecipient = r }
func (g *GameObject) HasLootRecipient() bool  { return g.lootRecipient != 0 }

// Transport is a game object that carries passengers along a path.
type Transport struct {
	GameObject

	pathTimer  uint32
	passengers map[GUID]*WorldObject
}

// NewTransport returns a transport shell. Call Create before use.
func NewTransport() *Transport {
	t := &Transport{passengers: make(map[GUID]*WorldObject)}
	t.initGameObject(t)
	t.updateFlags = UpdateFlagTransport | UpdateFlagStationaryPosition | UpdateFlagRotation
	t.SetActive(true)
	return t
}

func (t *Transport) Kind() Kind { return KindTransport }

// Create places a moving transport. Transports use their own GUID kind.
func (t *Transport) Create(low, entry uint32, x, y, z, o float32) {
	t.createGameObject(MakeGUID(low, entry, HighMOTransport), entry, GameObjectTypeMOTransport, x, y, z, o)
}

func (t *Transport) PathTimer() uint32 { return t.pathTimer }

// AdvancePath moves the transport clock forward by dt milliseconds, wrapping
// at period.
func (t *Transport) AdvancePath(dt, period uint32) {
	if period == 0 {
		return
	}
	t.pathTimer = (t.pathTimer + dt) % period
	t.SetUint32(GameObjectFieldLevel, t.pathTimer)
}

// AddPassenger attaches w at the given offset.
func (t *Transport) AddPassenger(w *WorldObject, offset [4]float32) {
	w.Movement.Transport.GUID = uint64(t.GUID())
	w.Movement.Transport.Offset.X = offset[0]
	w.Movement.Transport.Offset.Y = offset[1]
	w.Movement.Transport.Offset.Z = offset[2]
	w.Movement.Transport.Offset.O = offset[3]
	t.passengers[w.GUID()] = w
}

func (t *Transport) RemovePassenger(w *WorldObject) {
	if _, ok := t.passengers[w.GUID()]; !ok {
		return
	}
	w.Movement.ClearTransport()
	delete(t.passengers, w.GUID())
}

func (t *Transport) Passengers() int { return len(t.passengers) }
