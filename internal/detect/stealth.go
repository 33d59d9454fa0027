package detect

import (
	"math"

	"github.com/l1jgo/replicore/internal/object"
)

// CanDetect checks the always-detectable cases, then invisibility and
// stealth. Pets and charmed units detect with their controller's senses.
func (d *Detector) CanDetect(seer, obj object.Entity, ignoreStealth bool) bool {
	if u := seer.Base().ToUnit(); u != nil {
		if c := u.CharmerOrOwner(); c != nil {
			seer = c.Self()
		}
	}

	if d.isAlwaysDetectableFor(obj, seer) {
		return true
	}
	if !ignoreStealth && !d.CanDetectInvisibilityOf(seer, obj) {
		return false
	}
	if !ignoreStealth && !d.CanDetectStealthOf(seer, obj) {
		return false
	}
	return true
}

func (d *Detector) isAlwaysDetectableFor(e, seer object.Entity) bool {
	o := e.Base()
	sb := seer.Base()
	switch e.Kind() {
	case object.KindUnit, object.KindPlayer:
		if o.ToUnit().Auras.IsStalkedBy(sb.GUID()) {
			return true
		}
		if p := o.ToPlayer(); p != nil {
			if sp := sb.ToPlayer(); sp != nil && d.isGroupVisibleFor(p, sp) {
				return true
			}
		}
	case object.KindGameObject, object.KindTransport:
		return d.ownerFriendlyTo(o.ToGameObject(), sb.ToUnit())
	}
	return false
}

// CanDetectInvisibilityOf requires every invisibility type of obj to be
// detected, each with at least the same magnitude.
func (d *Detector) CanDetectInvisibilityOf(seer, obj object.Entity) bool {
	sw, ow := seer.Base().ToWorld(), obj.Base().ToWorld()
	if sw == nil || ow == nil {
		return false
	}
	objFlags := ow.Invisibility.Flags()
	mask := objFlags & sw.InvisibilityDetect.Flags()
	if mask != objFlags {
		return false
	}

	// an invisible seer can only see units that see it back
	if obj.Base().ToUnit() != nil {
		own := sw.Invisibility.Flags()
		if own&ow.InvisibilityDetect.Flags() != own {
			su := seer.Base().ToUnit()
			if objFlags != 0 || su == nil || !su.Auras.SeeWhileInvisible {
				return false
			}
		}
	}

	for i := uint(0); i < totalInvisibilityTypes; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		if sw.InvisibilityDetect.Value(i) < ow.Invisibility.Value(i) {
			return false
		}
	}
	return true
}

// CanDetectStealthOf compares the distance against StealthDetectRange for
// every stealth type obj has. obj must also be in the seer's front half.
func (d *Detector) CanDetectStealthOf(seer, obj object.Entity) bool {
	sw, ow := seer.Base().ToWorld(), obj.Base().ToWorld()
	if sw == nil || ow == nil {
		return false
	}
	if ow.Stealth.Flags() == 0 {
		return true
	}

	distance := sw.ExactDist(ow)
	if !sw.HasInArc(math.Pi, ow) {
		return false
	}

	su := seer.Base().ToUnit()
	for i := uint(0); i < totalStealthTypes; i++ {
		if !ow.Stealth.HasFlag(i) {
			continue
		}
		if su != nil && su.Auras.DetectsStealthType(i) {
			return true
		}
		if distance > d.StealthDetectRange(seer, obj, i) {
			return false
		}
	}
	return true
}

// StealthDetectRange is how close seer must be to notice stealth type t
// on obj: 30 points, plus 5 per seer level above 1, plus detection, minus
// stealth, at 0.3 yd per point plus combat reach, capped.
func (d *Detector) StealthDetectRange(seer, obj object.Entity, t uint) float32 {
	sw, ow := seer.Base().ToWorld(), obj.Base().ToWorld()
	if sw == nil || ow == nil {
		return 0
	}

	value := stealthBaseDetection
	value += (int32(d.levelFor(seer)) - 1) * stealthDetectionPerLevel
	value += sw.StealthDetect.Value(t)
	if g := seer.Base().ToGameObject(); g != nil {
		if owner := d.ownerOf(g); owner != nil {
			value -= (int32(owner.Level()) - 1) * stealthDetectionPerLevel
		}
	}
	value -= ow.Stealth.Value(t)

	var reach float32
	if su := seer.Base().ToUnit(); su != nil {
		reach = su.CombatReach()
	}
	r := float32(value)*stealthRangePerPoint + reach
	if r > d.cfg.MaxStealthDetectRange {
		r = d.cfg.MaxStealthDetectRange
	}
	return r
}

// levelFor is the level e uses in detection: its own for units, its
// owner's for game objects, 1 otherwise.
func (d *Detector) levelFor(e object.Entity) uint32 {
	o := e.Base()
	if u := o.ToUnit(); u != nil {
		return u.Level()
	}
	if g := o.ToGameObject(); g != nil {
		if owner := d.ownerOf(g); owner != nil {
			return owner.Level()
		}
	}
	return 1
}

func (d *Detector) ownerOf(g *object.GameObject) *object.Unit {
	if d.deps.Units == nil || g.OwnerGUID() == 0 {
		return nil
	}
	return d.deps.Units.UnitByGUID(g.OwnerGUID())
}
