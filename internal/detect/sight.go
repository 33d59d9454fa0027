package detect

import "github.com/l1jgo/replicore/internal/object"

// SightRange is how far seer looks for target. Players use the zone
// radius, or the maximum for active non-player targets; creatures use
// their own sight distance; other units a fixed radius; non-units 0.
func (d *Detector) SightRange(seer, target object.Entity) float32 {
	sb := seer.Base()
	u := sb.ToUnit()
	if u == nil {
		return 0
	}
	if p := sb.ToPlayer(); p != nil {
		if target != nil {
			tb := target.Base()
			if tw := tb.ToWorld(); tw != nil && tw.IsActive() && tb.ToPlayer() == nil {
				return MaxVisibilityDistance
			}
		}
		return d.cfg.visibilityFor(p.MapID(), p.ZoneID())
	}
	if u.IsCreature() {
		return u.SightDistance()
	}
	return SightRangeUnit
}

// VisibilityRange is the radius within which obj is broadcast.
func (d *Detector) VisibilityRange(obj object.Entity) float32 {
	o := obj.Base()
	w := o.ToWorld()
	if w == nil {
		return MaxVisibilityDistance
	}
	if w.IsActive() && o.ToPlayer() == nil {
		return MaxVisibilityDistance
	}
	if o.ToUnit() != nil {
		return d.cfg.visibilityFor(w.MapID(), w.ZoneID())
	}
	return d.cfg.visibilityFor(w.MapID(), 0)
}

// IsWithinLOSInMap checks map geometry between both objects. Listed
// creature entries skip the check on their map. Visibility does not
// consult it; it serves game-rule callers such as targeting and aggro.
func (d *Detector) IsWithinLOSInMap(a, b object.Entity) bool {
	aw, bw := a.Base().ToWorld(), b.Base().ToWorld()
	if aw == nil || bw == nil || !aw.InMap(bw) {
		return false
	}
	if d.deps.Overrides.Exempt(aw.MapID(), creatureEntry(a), creatureEntry(b)) {
		return true
	}
	if d.deps.LOS == nil {
		return true
	}
	return d.deps.LOS.IsInLineOfSight(aw.MapID(), aw.X(), aw.Y(), aw.Z(), bw.X(), bw.Y(), bw.Z())
}

func creatureEntry(e object.Entity) uint32 {
	if c := e.Base().ToCreature(); c != nil {
		return c.Entry()
	}
	return 0
}
