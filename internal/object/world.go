package object

import (
	"math"

	"github.com/l1jgo/replicore/internal/object/movement"
)

// DefaultWorldObjectSize is the radius of anything without a combat reach.
const DefaultWorldObjectSize float32 = 0.388999998569489

// PhaseMaskNormal is the phase every object starts in.
const PhaseMaskNormal uint32 = 0x00000001

// Located is an Entity with a place in the world. Every variant except
// Item is one.
type Located interface {
	Entity
	World() *WorldObject
}

// WorldObject is an Object with a position, a map and visibility state.
type WorldObject struct {
	Object

	pos        movement.Position
	mapID      uint32
	instanceID uint32
	zoneID     uint32
	phaseMask  uint32

	active      bool
	worldObject bool

	// Despawned objects stay in the grid until cleanup but are never shown.
	despawned bool

	Movement movement.Info

	Stealth                    FlaggedValues
	StealthDetect              FlaggedValues
	Invisibility               FlaggedValues
	InvisibilityDetect         FlaggedValues
	ServerSideVisibility       FlaggedValues
	ServerSideVisibilityDetect FlaggedValues

	visibilityList map[GUID]struct{}
	hideFor        map[GUID]struct{}
}

func (w *WorldObject) initWorld(worldObject bool) {
	w.phaseMask = PhaseMaskNormal
	w.worldObject = worldObject
	w.ServerSideVisibility.SetValue(ServerSideVisibilityGhost, GhostVisibilityAlive|GhostVisibilityGhost)
	w.ServerSideVisibilityDetect.SetValue(ServerSideVisibilityGhost, GhostVisibilityAlive)
}

func (w *WorldObject) World() *WorldObject { return w }

// ---------- position ----------

func (w *WorldObject) Position() movement.Position { return w.pos }

func (w *WorldObject) X() float32           { return w.pos.X }
func (w *WorldObject) Y() float32           { return w.pos.Y }
func (w *WorldObject) Z() float32           { return w.pos.Z }
func (w *WorldObject) Orientation() float32 { return w.pos.O }

// Relocate moves the object. Grid bookkeeping is the caller's job.
func (w *WorldObject) Relocate(x, y, z, o float32) {
	w.pos = movement.Position{X: x, Y: y, Z: z, O: movement.NormalizeOrientation(o)}
}

func (w *WorldObject) MapID() uint32      { return w.mapID }
func (w *WorldObject) InstanceID() uint32 { return w.instanceID }

func (w *WorldObject) SetMap(mapID, instanceID uint32) {
	w.mapID = mapID
	w.instanceID = instanceID
}

// InMap reports whether both objects share a map instance.
func (w *WorldObject) InMap(o *WorldObject) bool {
	return w.mapID == o.mapID && w.instanceID == o.instanceID
}

func (w *WorldObject) ZoneID() uint32     { return w.zoneID }
func (w *WorldObject) SetZoneID(z uint32) { w.zoneID = z }

func (w *WorldObject) PhaseMask() uint32     { return w.phaseMask }
func (w *WorldObject) SetPhaseMask(m uint32) { w.phaseMask = m }

func (w *WorldObject) InSamePhase(o *WorldObject) bool {
	return w.phaseMask&o.phaseMask != 0
}

// IsActive objects keep their surroundings simulated and are broadcast at
// maximum visibility distance.
func (w *WorldObject) IsActive() bool { return w.active }

// SetActive is ignored for players, which are always active.
func (w *WorldObject) SetActive(on bool) {
	if w.typeID == TypeIDPlayer {
		return
	}
	w.active = on
}

func (w *WorldObject) IsWorldObject() bool { return w.worldObject }

func (w *WorldObject) IsDespawned() bool    { return w.despawned }
func (w *WorldObject) SetDespawned(on bool) { w.despawned = on }

// SetVisible toggles GM-only visibility.
func (w *WorldObject) SetVisible(on bool) {
	if on {
		w.ServerSideVisibility.SetValue(ServerSideVisibilityGM, SecPlayer)
	} else {
		w.ServerSideVisibility.SetValue(ServerSideVisibilityGM, SecGameMaster)
	}
}

// ObjectSize is the combat reach for units and a fixed radius otherwise.
func (w *WorldObject) ObjectSize() float32 {
	if w.valuesCount > UnitFieldCombatReach && w.IsType(TypeMaskUnit) {
		return w.Float(UnitFieldCombatReach)
	}
	return DefaultWorldObjectSize
}

// ---------- geometry ----------

func (w *WorldObject) ExactDist2dSq(o *WorldObject) float32 {
	dx := w.pos.X - o.pos.X
	dy := w.pos.Y - o.pos.Y
	return dx*dx + dy*dy
}

func (w *WorldObject) ExactDist2d(o *WorldObject) float32 {
	return float32(math.Sqrt(float64(w.ExactDist2dSq(o))))
}

func (w *WorldObject) ExactDist(o *WorldObject) float32 {
	dz := w.pos.Z - o.pos.Z
	return float32(math.Sqrt(float64(w.ExactDist2dSq(o) + dz*dz)))
}

// AngleTo is the absolute bearing from w to o in [0, 2π).
func (w *WorldObject) AngleTo(o *WorldObject) float32 {
	dx := o.pos.X - w.pos.X
	dy := o.pos.Y - w.pos.Y
	a := float32(math.Atan2(float64(dy), float64(dx)))
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// HasInArc reports whether o lies within an arc of the given width
// centred on w's facing.
func (w *WorldObject) HasInArc(arc float32, o *WorldObject) bool {
	if w == o {
		return true
	}
	arc = movement.NormalizeOrientation(arc)
	angle := w.AngleTo(o) - w.pos.O
	// move angle into [-π, π]
	angle = movement.NormalizeOrientation(angle)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	lborder := -1 * (arc / 2)
	rborder := arc / 2
	return angle >= lborder && angle <= rborder
}

func (w *WorldObject) IsInFront(o *WorldObject, arc float32) bool {
	return w.HasInArc(arc, o)
}

func (w *WorldObject) IsInBack(o *WorldObject, arc float32) bool {
	return !w.HasInArc(2*math.Pi-arc, o)
}

// IsWithinDist compares against dist plus both object sizes. The bound is
// exclusive. Objects on the same transport compare transport offsets.
func (w *WorldObject) IsWithinDist(o *WorldObject, dist float32, is3D bool) bool {
	return w.isWithinDist(o, dist, is3D, true)
}

func (w *WorldObject) isWithinDist(o *WorldObject, dist float32, is3D, size bool) bool {
	maxdist := dist
	if size {
		maxdist += w.ObjectSize() + o.ObjectSize()
	}
	if t := w.Movement.Transport.GUID; t != 0 && t == o.Movement.Transport.GUID {
		a, b := w.Movement.Transport.Offset, o.Movement.Transport.Offset
		dx, dy := a.X-b.X, a.Y-b.Y
		sq := dx*dx + dy*dy
		if is3D {
			dz := a.Z - b.Z
			sq += dz * dz
		}
		return sq < maxdist*maxdist
	}
	sq := w.ExactDist2dSq(o)
	if is3D {
		dz := w.pos.Z - o.pos.Z
		sq += dz * dz
	}
	return sq < maxdist*maxdist
}

// ---------- personal visibility ----------

// AddToPersonalVisibilityList restricts visibility to listed players and
// groups. Only player and group GUIDs are accepted.
func (w *WorldObject) AddToPersonalVisibilityList(g GUID) {
	if !g.IsPlayer() && !g.IsGroup() {
		return
	}
	if w.visibilityList == nil {
		w.visibilityList = make(map[GUID]struct{})
	}
	w.visibilityList[g] = struct{}{}
}

func (w *WorldObject) RemoveFromPersonalVisibilityList(g GUID) {
	delete(w.visibilityList, g)
}

// MustBeVisibleOnlyForSomePlayers reports whether a personal list is in force.
func (w *WorldObject) MustBeVisibleOnlyForSomePlayers() bool {
	return len(w.visibilityList) > 0
}

func (w *WorldObject) IsPlayerInPersonalVisibilityList(g GUID) bool {
	if !g.IsPlayer() {
		return false
	}
	_, ok := w.visibilityList[g]
	return ok
}

func (w *WorldObject) IsGroupInPersonalVisibilityList(g GUID) bool {
	if !g.IsGroup() {
		return false
	}
	_, ok := w.visibilityList[g]
	return ok
}

func (w *WorldObject) AddHideFor(g GUID) {
	if w.hideFor == nil {
		w.hideFor = make(map[GUID]struct{})
	}
	w.hideFor[g] = struct{}{}
}

func (w *WorldObject) RemoveHideFor(g GUID) { delete(w.hideFor, g) }

func (w *WorldObject) HideForSomePlayers() bool { return len(w.hideFor) > 0 }

func (w *WorldObject) ShouldHideFor(g GUID) bool {
	_, ok := w.hideFor[g]
	return ok
}

// CleanupsBeforeDelete leaves the world and drops visibility overrides.
func (w *WorldObject) CleanupsBeforeDelete() {
	w.RemoveFromWorld()
	w.visibilityList = nil
	w.hideFor = nil
}
