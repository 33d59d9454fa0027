package object

import "github.com/l1jgo/replicore/internal/object/movement"

// Default sight of a creature without template override.
const DefaultCreatureSightDistance float32 = 50

// AuraEffects is the slice of a unit's aura state that replication and
// detection read. The spell system keeps it current.
type AuraEffects struct {
	// Stealth types this unit always detects regardless of range.
	DetectStealthMask uint32
	SeeWhileInvisible bool
	ModFaction        bool

	// Percent bonus applied to sent min/max damage.
	AutoAttackDamagePct int32

	// Creature entry the unit is transformed into, 0 when none.
	TransformEntry uint32

	empathyCasters map[GUID]struct{}
	stalkedBy      map[GUID]struct{}
	perCaster      map[GUID]uint32
}

func addCaster(m *map[GUID]struct{}, g GUID) {
	if *m == nil {
		*m = make(map[GUID]struct{})
	}
	(*m)[g] = struct{}{}
}

func (a *AuraEffects) AddEmpathy(caster GUID)    { addCaster(&a.empathyCasters, caster) }
func (a *AuraEffects) RemoveEmpathy(caster GUID) { delete(a.empathyCasters, caster) }

func (a *AuraEffects) HasEmpathyFrom(caster GUID) bool {
	_, ok := a.empathyCasters[caster]
	return ok
}

func (a *AuraEffects) AddStalkedBy(caster GUID)    { addCaster(&a.stalkedBy, caster) }
func (a *AuraEffects) RemoveStalkedBy(caster GUID) { delete(a.stalkedBy, caster) }

func (a *AuraEffects) IsStalkedBy(caster GUID) bool {
	_, ok := a.stalkedBy[caster]
	return ok
}

func (a *AuraEffects) DetectsStealthType(t uint) bool {
	return a.DetectStealthMask&(1<<t) != 0
}

// LootState is the tap state of a creature.
type LootState struct {
	Recipient      GUID
	RecipientGroup GUID
	Personal       bool
}

func (l LootState) HasRecipient() bool { return l.Recipient != 0 || l.RecipientGroup != 0 }

// Unit is a creature, pet, vehicle or the living part of a player.
type Unit struct {
	WorldObject

	Auras AuraEffects
	Loot  LootState

	Speeds movement.Speeds
	Spline *movement.Spline

	charmer  *Unit
	owner    *Unit
	victim   *Unit
	summoner GUID

	dead          bool
	sightDistance float32
	vehicleID     uint32

	// True while the unit is being seated as a vehicle accessory.
	accessoryInit bool

	sharedVision []*Player
}

// NewUnit returns a creature shell. Call Create before use.
func NewUnit() *Unit {
	u := &Unit{}
	u.initUnit(u, TypeIDUnit, TypeMaskUnit, UnitEnd, UnitDynamicEnd)
	u.updateFlags = UpdateFlagLiving
	return u
}

func (u *Unit) initUnit(self Entity, id TypeID, mask TypeMask, values, dynamic int) {
	u.init(self, id, mask, values, dynamic)
	u.initWorld(true)
	u.Speeds = movement.BaseSpeeds
	u.sightDistance = DefaultCreatureSightDistance
}

func (u *Unit) Kind() Kind { return KindUnit }

// Create gives the unit its GUID. high selects creature, pet or vehicle.
func (u *Unit) Create(low, entry uint32, high HighGUID) {
	u.create(MakeGUID(low, entry, high), entry)
	u.SetFloat(UnitFieldCombatReach, 1.5)
	u.SetFloat(UnitFieldBoundingRadius, DefaultWorldObjectSize)
	u.resetChanges()
}

// IsCreature reports a non-player unit.
func (u *Unit) IsCreature() bool { return u.typeID == TypeIDUnit }

func (u *Unit) Level() uint32     { return u.Uint32(UnitFieldLevel) }
func (u *Unit) SetLevel(l uint32) { u.SetUint32(UnitFieldLevel, l) }

func (u *Unit) Faction() uint32     { return u.Uint32(UnitFieldFactionTemplate) }
func (u *Unit) SetFaction(f uint32) { u.SetUint32(UnitFieldFactionTemplate, f) }

func (u *Unit) Health() uint32     { return u.Uint32(UnitFieldHealth) }
func (u *Unit) SetHealth(h uint32) { u.SetUint32(UnitFieldHealth, h) }

func (u *Unit) MaxHealth() uint32     { return u.Uint32(UnitFieldMaxHealth) }
func (u *Unit) SetMaxHealth(h uint32) { u.SetUint32(UnitFieldMaxHealth, h) }

func (u *Unit) CombatReach() float32 { return u.Float(UnitFieldCombatReach) }

func (u *Unit) IsAlive() bool { return !u.dead }
func (u *Unit) IsDead() bool  { return u.dead }

func (u *Unit) SetDead(dead bool) { u.dead = dead }

// ---------- control ----------

func (u *Unit) OwnerGUID() GUID   { return u.Guid(UnitFieldSummonedBy) }
func (u *Unit) CharmerGUID() GUID { return u.Guid(UnitFieldCharmedBy) }

func (u *Unit) Owner() *Unit   { return u.owner }
func (u *Unit) Charmer() *Unit { return u.charmer }

// SetOwner records the summoning unit. nil clears it.
func (u *Unit) SetOwner(owner *Unit) {
	u.owner = owner
	if owner == nil {
		u.SetGuid(UnitFieldSummonedBy, 0)
		return
	}
	u.SetGuid(UnitFieldSummonedBy, owner.GUID())
}

// SetCharmer records the controlling unit. nil clears it.
func (u *Unit) SetCharmer(charmer *Unit) {
	u.charmer = charmer
	if charmer == nil {
		u.SetGuid(UnitFieldCharmedBy, 0)
		return
	}
	u.SetGuid(UnitFieldCharmedBy, charmer.GUID())
}

func (u *Unit) CharmerOrOwnerGUID() GUID {
	if g := u.CharmerGUID(); g != 0 {
		return g
	}
	return u.OwnerGUID()
}

func (u *Unit) CharmerOrOwner() *Unit {
	if u.charmer != nil {
		return u.charmer
	}
	return u.owner
}

// CharmerOrOwnerPlayerOrSelf walks one step of control and returns the
// player at the end, if any.
func (u *Unit) CharmerOrOwnerPlayerOrSelf() *Player {
	if c := u.CharmerOrOwner(); c != nil {
		if p := c.ToPlayer(); p != nil {
			return p
		}
	}
	return u.ToPlayer()
}

// IsControlledByPlayer reports a player or anything a player summoned or charmed.
func (u *Unit) IsControlledByPlayer() bool {
	if u.typeID == TypeIDPlayer {
		return true
	}
	return u.CharmerOrOwnerGUID().IsPlayer()
}

// SetSummoner marks the unit as a temporary summon of g.
func (u *Unit) SetSummoner(g GUID) { u.summoner = g }
func (u *Unit) SummonerGUID() GUID { return u.summoner }
func (u *Unit) IsTempSummon() bool { return u.summoner != 0 }

func (u *Unit) Victim() *Unit     { return u.victim }
func (u *Unit) SetVictim(v *Unit) { u.victim = v }

func (u *Unit) VehicleID() uint32 { return u.vehicleID }

func (u *Unit) SetVehicleID(id uint32) {
	u.vehicleID = id
	u.SetUpdateFlag(UpdateFlagVehicle, id != 0)
}

func (u *Unit) SightDistance() float32     { return u.sightDistance }
func (u *Unit) SetSightDistance(d float32) { u.sightDistance = d }

func (u *Unit) IsAccessoryInit() bool    { return u.accessoryInit }
func (u *Unit) SetAccessoryInit(on bool) { u.accessoryInit = on }

// IsSplineEnabled reports an unfinished path.
func (u *Unit) IsSplineEnabled() bool { return u.Spline != nil && !u.Spline.Finalized() }

// ---------- shared vision ----------

func (u *Unit) SharedVision() []*Player { return u.sharedVision }

func (u *Unit) AddSharedVision(p *Player) {
	for _, s := range u.sharedVision {
		if s == p {
			return
		}
	}
	u.sharedVision = append(u.sharedVision, p)
}

func (u *Unit) RemoveSharedVision(p *Player) {
	for i, s := range u.sharedVision {
		if s == p {
			u.sharedVision = append(u.sharedVision[:i], u.sharedVision[i+1:]...)
			return
		}
	}
}

// ---------- aura state ----------

// SetPerCasterAuraState records aura state bits that only caster should see.
func (u *Unit) SetPerCasterAuraState(caster GUID, bits uint32) {
	bits &= PerCasterAuraStateMask
	if bits == 0 {
		delete(u.Auras.perCaster, caster)
	} else {
		if u.Auras.perCaster == nil {
			u.Auras.perCaster = make(map[GUID]uint32)
		}
		u.Auras.perCaster[caster] = bits
	}
	var union uint32
	for _, b := range u.Auras.perCaster {
		union |= b
	}
	cur := u.Uint32(UnitFieldAuraState)
	u.SetUint32(UnitFieldAuraState, cur&^PerCasterAuraStateMask|union)
}

// AuraStateFor is the aura state as viewer should see it: shared bits plus
// the per-caster bits viewer applied itself.
func (u *Unit) AuraStateFor(viewer GUID) uint32 {
	return u.Uint32(UnitFieldAuraState)&^PerCasterAuraStateMask | u.Auras.perCaster[viewer]
}

// ---------- conversions ----------

// ToUnit returns the unit part of units and players.
func (o *Object) ToUnit() *Unit {
	switch v := o.self.(type) {
	case *Unit:
		return v
	case *Player:
		return &v.Unit
	}
	return nil
}

func (o *Object) ToPlayer() *Player {
	p, _ := o.self.(*Player)
	return p
}

// ToCreature returns non-player units only.
func (o *Object) ToCreature() *Unit {
	u, _ := o.self.(*Unit)
	return u
}

func (o *Object) ToGameObject() *GameObject {
	switch v := o.self.(type) {
	case *GameObject:
		return v
	case *Transport:
		return &v.GameObject
	}
	return nil
}

func (o *Object) ToDynamicObject() *DynamicObject {
	d, _ := o.self.(*DynamicObject)
	return d
}

func (o *Object) ToCorpse() *Corpse {
	c, _ := o.self.(*Corpse)
	return c
}

func (o *Object) ToAreaTrigger() *AreaTrigger {
	a, _ := o.self.(*AreaTrigger)
	return a
}

func (o *Object) ToItem() *Item {
	i, _ := o.self.(*Item)
	return i
}

// ToWorld returns the world part of any located variant.
func (o *Object) ToWorld() *WorldObject {
	if l, ok := o.self.(Located); ok {
		return l.World()
	}
	return nil
}

// Self returns the variant that owns o.
func (o *Object) Self() Entity { return o.self }
