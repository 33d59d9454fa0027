// Package detect decides whether one object can perceive another at all:
// personal visibility lists, range, GM and ghost visibility, despawn,
// invisibility and stealth. It never looks at fields a viewer may or may
// not receive; that is the update package's job.
package detect

import (
	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/data"
	"github.com/l1jgo/replicore/internal/object"
)

// GroupService answers party questions. world.GroupManager implements it.
type GroupService interface {
	SameGroup(a, b *object.Player) bool
	SameRaid(a, b *object.Player) bool
}

// LineOfSight is the map geometry. data.MapGeometry implements it.
type LineOfSight interface {
	IsInLineOfSight(mapID uint32, x1, y1, z1, x2, y2, z2 float32) bool
}

// ContentRules are per-content escape hatches, usually script backed.
type ContentRules interface {
	IsNeverVisible(e object.Entity) bool
	IsAlwaysVisibleFor(e object.Entity, seer object.Entity) bool
}

// Friendliness decides whether a unit treats another as friendly.
type Friendliness interface {
	IsFriendlyTo(a, b *object.Unit) bool
}

// UnitLookup resolves an owner GUID to a live unit in the same partition.
type UnitLookup interface {
	UnitByGUID(g object.GUID) *object.Unit
}

// Deps are the optional collaborators of a Detector. Every one may be nil.
type Deps struct {
	Groups    GroupService
	LOS       LineOfSight
	Overrides *data.LOSOverrides
	Scripts   ContentRules
	Factions  Friendliness
	Units     UnitLookup
}

// Detector evaluates visibility between two objects. It keeps no state
// between calls.
type Detector struct {
	cfg  Config
	deps Deps
	log  *zap.Logger
}

func New(cfg Config, deps Deps, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxStealthDetectRange <= 0 {
		cfg.MaxStealthDetectRange = DefaultMaxStealthDetectRange
	}
	return &Detector{cfg: cfg, deps: deps, log: log}
}

func (d *Detector) Config() Config { return d.cfg }

// CanSeeOrDetect runs the visibility gates in order and stops at the
// first one that decides.
func (d *Detector) CanSeeOrDetect(seer, obj object.Entity, ignoreStealth, distanceCheck bool) bool {
	sb, ob := seer.Base(), obj.Base()
	if sb == ob {
		return true
	}
	sw, ow := sb.ToWorld(), ob.ToWorld()
	if sw == nil || ow == nil {
		return false
	}
	seerPlayer := sb.ToPlayer()

	if seerPlayer != nil {
		if ow.MustBeVisibleOnlyForSomePlayers() {
			group := seerPlayer.Group()
			if !ow.IsPlayerInPersonalVisibilityList(seerPlayer.GUID()) &&
				(group == 0 || !ow.IsGroupInPersonalVisibilityList(group)) {
				return false
			}
		}
		if ow.HideForSomePlayers() && ow.ShouldHideFor(seerPlayer.GUID()) {
			return false
		}
		if ob.GUID().IsGameObject() && seerPlayer.IsLootCooldown(ob.Entry()) {
			return false
		}
	}

	if d.isNeverVisible(obj) || canNeverSee(sw, ow) {
		return false
	}
	if d.isAlwaysVisibleFor(obj, seer) || canAlwaysSee(seerPlayer, ob) {
		return true
	}

	corpseVisibility := false
	if distanceCheck {
		corpseCheck := false
		onArena := false
		if seerPlayer != nil {
			if seerPlayer.HaveExtraLook(ob.GUID()) {
				return true
			}
			if c := ob.ToCreature(); c != nil && c.IsAccessoryInit() {
				return false
			}
			onArena = seerPlayer.InArena()

			if isGhost(seerPlayer) &&
				ow.ServerSideVisibility.Value(object.ServerSideVisibilityGhost)&
					sw.ServerSideVisibility.Value(object.ServerSideVisibilityGhost)&
					object.GhostVisibilityGhost == 0 {
				if corpse := seerPlayer.Corpse(); corpse != nil {
					corpseCheck = true
					sight := d.SightRange(seer, obj)
					if corpse.IsWithinDist(&seerPlayer.WorldObject, sight, false) &&
						corpse.IsWithinDist(ow, sight, false) {
						corpseVisibility = true
					}
				}
			}
		}

		viewpoint := sw
		if seerPlayer != nil {
			viewpoint = seerPlayer.Viewpoint()
		}
		if !corpseCheck && !onArena && !viewpoint.IsWithinDist(ow, d.SightRange(seer, obj), false) {
			return false
		}
	}

	// GM visibility off or hidden NPC
	objGM := ow.ServerSideVisibility.Value(object.ServerSideVisibilityGM)
	seerGM := sw.ServerSideVisibilityDetect.Value(object.ServerSideVisibilityGM)
	if objGM == 0 {
		if seerGM != 0 {
			return true
		}
	} else {
		return seerGM >= objGM
	}

	// ghosts, spirit healers and friends
	if !corpseVisibility &&
		ow.ServerSideVisibility.Value(object.ServerSideVisibilityGhost)&
			sw.ServerSideVisibilityDetect.Value(object.ServerSideVisibilityGhost) == 0 {
		objPlayer := ob.ToPlayer()
		if seerPlayer == nil || objPlayer == nil {
			return false
		}
		if seerPlayer.Team() != objPlayer.Team() || !d.isGroupVisibleFor(objPlayer, seerPlayer) {
			return false
		}
	}

	if isInvisibleDueToDespawn(obj) {
		return false
	}

	return d.CanDetect(seer, obj, ignoreStealth)
}

// isGhost is a dead player that still has health: released spirit.
func isGhost(p *object.Player) bool {
	return p.IsDead() && p.Health() > 0
}

func canNeverSee(seer, obj *object.WorldObject) bool {
	return !seer.InMap(obj) || !seer.InSamePhase(obj)
}

// canAlwaysSee covers a player's own far sight target.
func canAlwaysSee(seer *object.Player, obj *object.Object) bool {
	if seer == nil {
		return false
	}
	if g := seer.FarsightGUID(); g != 0 && g == obj.GUID() {
		return true
	}
	return false
}

func (d *Detector) isNeverVisible(e object.Entity) bool {
	o := e.Base()
	if !o.IsInWorld() {
		return true
	}
	if g := o.ToGameObject(); g != nil && g.ServerOnly && g.GoType() == object.GameObjectTypeSpellFocus {
		return true
	}
	return d.deps.Scripts != nil && d.deps.Scripts.IsNeverVisible(e)
}

func (d *Detector) isAlwaysVisibleFor(e, seer object.Entity) bool {
	o := e.Base()
	sb := seer.Base()
	switch e.Kind() {
	case object.KindUnit, object.KindPlayer:
		u := o.ToUnit()
		if g := u.CharmerOrOwnerGUID(); g != 0 && g == sb.GUID() {
			return true
		}
		if sp := sb.ToPlayer(); sp != nil {
			if owner := u.Owner(); owner != nil {
				if op := owner.ToPlayer(); op != nil && d.isGroupVisibleFor(op, sp) {
					return true
				}
			}
		}
	case object.KindGameObject, object.KindTransport:
		g := o.ToGameObject()
		if g.IsTransport() {
			return true
		}
		if owner := g.OwnerGUID(); owner != 0 {
			if owner == sb.GUID() {
				return true
			}
			if d.ownerFriendlyTo(g, sb.ToUnit()) {
				return true
			}
		}
	}
	return d.deps.Scripts != nil && d.deps.Scripts.IsAlwaysVisibleFor(e, seer)
}

func (d *Detector) ownerFriendlyTo(g *object.GameObject, seer *object.Unit) bool {
	if seer == nil || d.deps.Units == nil || d.deps.Factions == nil {
		return false
	}
	owner := d.deps.Units.UnitByGUID(g.OwnerGUID())
	return owner != nil && d.deps.Factions.IsFriendlyTo(owner, seer)
}

// isGroupVisibleFor decides whether viewer shares enough with p to see
// its ghost and see through its stealth.
func (d *Detector) isGroupVisibleFor(p, viewer *object.Player) bool {
	switch d.cfg.GroupVisibility {
	case GroupVisibilityRaid:
		return d.deps.Groups != nil && d.deps.Groups.SameRaid(p, viewer)
	case GroupVisibilityTeam:
		return p.Team() == viewer.Team()
	}
	return d.deps.Groups != nil && d.deps.Groups.SameGroup(p, viewer)
}

func isInvisibleDueToDespawn(e object.Entity) bool {
	o := e.Base()
	if w := o.ToWorld(); w != nil && w.IsDespawned() {
		return true
	}
	if g := o.ToGameObject(); g != nil && !g.IsSpawned() {
		return true
	}
	return false
}
