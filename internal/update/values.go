package update

import (
	"math"

	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/object"
)

// Models sent for trigger creatures whose template has no model of its own.
const (
	triggerModelGM     uint32 = 17519
	triggerModelPlayer uint32 = 11686
)

// valueFor returns field i of e as viewer should see it. The store is only
// read. questActive is the game object quest state computed once per block.
func (e *Encoder) valueFor(ent object.Entity, i int, viewer *object.Player, questActive bool) uint32 {
	o := ent.Base()
	switch ent.Kind() {
	case object.KindUnit, object.KindPlayer:
		return e.unitValue(o.ToUnit(), i, viewer)
	case object.KindGameObject, object.KindTransport:
		return e.gameObjectValue(o.ToGameObject(), i, viewer, questActive)
	case object.KindDynamicObject:
		if i == object.DynamicObjectFieldBytes {
			return e.dynamicObjectBytes(o.ToDynamicObject(), viewer)
		}
	case object.KindAreaTrigger:
		if i == object.AreaTriggerFieldSpellVisualID {
			return e.areaTriggerVisual(o.ToAreaTrigger(), viewer)
		}
	}
	return o.Uint32(i)
}

func inSpan(i, start, size int) bool { return i >= start && i < start+size }

func (e *Encoder) unitValue(u *object.Unit, i int, viewer *object.Player) uint32 {
	raw := u.Uint32(i)
	switch {
	case i == object.UnitFieldNpcFlags:
		return e.npcFlags(u, viewer, raw)
	case i == object.UnitFieldAuraState:
		return u.AuraStateFor(viewer.GUID())
	case i >= object.UnitFieldMinDamage && i <= object.UnitFieldMaxOffhandDamage:
		f := u.Float(i)
		return math.Float32bits(f + f*float32(u.Auras.AutoAttackDamagePct)/100)
	case i >= object.UnitFieldBaseAttackTime && i <= object.UnitFieldRangedAttackTime:
		f := u.Float(i)
		if f < 0 {
			return 0
		}
		return uint32(math.Round(float64(f/10))) * 10
	case inSpan(i, object.UnitFieldNegStats, 5),
		inSpan(i, object.UnitFieldPosStats, 5),
		inSpan(i, object.UnitFieldResistanceBuffModsPositive, 7),
		inSpan(i, object.UnitFieldResistanceBuffModsNegative, 7):
		// stored as float, sent as integer
		return uint32(int32(u.Float(i)))
	case i == object.UnitFieldFlags:
		if viewer.IsGameMaster() {
			return raw &^ object.UnitFlagNotSelectable
		}
	case i == object.UnitFieldDisplayID:
		if u.IsCreature() {
			return e.creatureDisplayID(u, viewer, raw)
		}
	case i == object.ObjectFieldDynamicFlags:
		return e.unitDynamicFlags(u, viewer, raw)
	case i == object.UnitFieldBytes2, i == object.UnitFieldFactionTemplate:
		if e.showAsFriendly(u, viewer) {
			if i == object.UnitFieldBytes2 {
				return raw & (object.UnitByte2FlagSanctuary << 8)
			}
			return viewer.Faction()
		}
	}
	return raw
}

func (e *Encoder) npcFlags(u *object.Unit, viewer *object.Player, v uint32) uint32 {
	if !u.IsCreature() || e.svc.Rules == nil {
		return v
	}
	if !e.svc.Rules.CanSeeSpellClickOn(viewer, u) {
		v &^= object.UnitNpcFlagSpellClick
	}
	if v&object.UnitNpcFlagTrainer != 0 && !e.svc.Rules.CanTrain(u, viewer) {
		v &^= object.UnitNpcFlagTrainer | object.UnitNpcFlagTrainerClass | object.UnitNpcFlagTrainerProfession
	}
	return v
}

func (e *Encoder) isHostile(u *object.Unit, viewer *object.Player) bool {
	return u != nil && e.svc.Rules != nil && e.svc.Rules.IsHostileTo(u, viewer)
}

// creatureDisplayID substitutes hostile models and hides trigger creatures
// from players.
func (e *Encoder) creatureDisplayID(u *object.Unit, viewer *object.Player, raw uint32) uint32 {
	content := e.svc.Content
	if content == nil {
		return raw
	}
	tmpl, ok := content.CreatureTemplate(u.Entry())
	if t := u.Auras.TransformEntry; t != 0 {
		if tt, found := content.CreatureTemplate(t); found {
			tmpl, ok = tt, true
		}
	}
	if mi, found := content.ModelInfo(raw); found && mi.HostileID != 0 && e.isHostile(u, viewer) {
		return mi.HostileID
	}
	if !ok {
		e.log.Debug("生物模板不存在", zap.Uint32("entry", u.Entry()), zap.Stringer("guid", u.GUID()))
		return raw
	}
	if !tmpl.IsTrigger() {
		return raw
	}
	if viewer.IsGameMaster() {
		if tmpl.ModelID1 != 0 {
			return tmpl.ModelID1
		}
		return triggerModelGM
	}
	if tmpl.ModelID2 != 0 {
		return tmpl.ModelID2
	}
	return triggerModelPlayer
}

// unitDynamicFlags applies the tap and loot state of the viewer.
func (e *Encoder) unitDynamicFlags(u *object.Unit, viewer *object.Player, v uint32) uint32 {
	if u.IsCreature() {
		loot := e.svc.Loot
		switch {
		case !u.Loot.HasRecipient():
			v &^= object.UnitDynFlagTapped | object.UnitDynFlagTappedByPlayer
		case u.Loot.Personal:
			v |= object.UnitDynFlagTapped | object.UnitDynFlagTappedByPlayer | object.UnitDynFlagTappedByAllThreatList
		case loot != nil && loot.IsTappedBy(u, viewer):
			v |= object.UnitDynFlagTapped | object.UnitDynFlagTappedByPlayer
		default:
			v |= object.UnitDynFlagTapped
			v &^= object.UnitDynFlagTappedByPlayer
		}
		if loot == nil || !loot.IsAllowedToLoot(viewer, u) {
			v &^= object.UnitDynFlagLootable
		}
	}
	if v&object.UnitDynFlagTrackUnit != 0 && !u.Auras.IsStalkedBy(viewer.GUID()) {
		v &^= object.UnitDynFlagTrackUnit
	}
	return v
}

// showAsFriendly reports whether a player controlled unit of a hostile
// faction should appear friendly to a raid mate.
func (e *Encoder) showAsFriendly(u *object.Unit, viewer *object.Player) bool {
	if !e.opts.AllowTwoSideInteractionGroup || u.Auras.ModFaction || !u.IsControlledByPlayer() {
		return false
	}
	if u.GUID() == viewer.GUID() || e.svc.Groups == nil || e.svc.Rules == nil {
		return false
	}
	p := u.CharmerOrOwnerPlayerOrSelf()
	if p == nil || !e.svc.Groups.SameRaid(p, viewer) {
		return false
	}
	return !e.svc.Rules.IsFriendlyFaction(u.Faction(), viewer.Faction())
}

func (e *Encoder) gameObjectValue(g *object.GameObject, i int, viewer *object.Player, questActive bool) uint32 {
	raw := g.Uint32(i)
	switch i {
	case object.ObjectFieldDynamicFlags:
		var lo uint16
		if questActive || viewer.IsGameMaster() {
			switch g.GoType() {
			case object.GameObjectTypeChest, object.GameObjectTypeGoober:
				lo = object.GameObjectDynFlagActivate
				if questActive {
					lo |= object.GameObjectDynFlagSparkle
				}
			case object.GameObjectTypeGeneric, object.GameObjectTypeSpellFocus:
				if questActive {
					lo = object.GameObjectDynFlagSparkle
				}
			}
		}
		// high half is always all ones
		return uint32(lo) | 0xFFFF<<16
	case object.GameObjectFieldFlags:
		if g.GoType() == object.GameObjectTypeChest && g.UseGroupLootRules &&
			(e.svc.Loot == nil || !e.svc.Loot.IsLootAllowedFor(g, viewer)) {
			return raw | object.GameObjectFlagLocked | object.GameObjectFlagNotSelectable
		}
	case object.GameObjectFieldBytes1:
		if g.GoType() == object.GameObjectTypeTransport {
			return raw | object.GameObjectStateTransportSpec
		}
	}
	return raw
}

func (e *Encoder) hostileVisual(caster *object.Unit, visualID uint32, viewer *object.Player) (uint32, bool) {
	if caster == nil || e.svc.Content == nil {
		return 0, false
	}
	vis, ok := e.svc.Content.SpellVisual(visualID)
	if !ok || vis.HostileID == 0 || !e.isHostile(caster, viewer) {
		return 0, false
	}
	return vis.HostileID, true
}

func (e *Encoder) dynamicObjectBytes(d *object.DynamicObject, viewer *object.Player) uint32 {
	if id, ok := e.hostileVisual(d.Caster(), d.VisualID(), viewer); ok {
		return uint32(d.Type())<<28 | id
	}
	return d.Uint32(object.DynamicObjectFieldBytes)
}

func (e *Encoder) areaTriggerVisual(a *object.AreaTrigger, viewer *object.Player) uint32 {
	raw := a.Uint32(object.AreaTriggerFieldSpellVisualID)
	if id, ok := e.hostileVisual(a.Caster(), raw, viewer); ok {
		return id
	}
	return raw
}
