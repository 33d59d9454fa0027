package update

import "github.com/l1jgo/replicore/internal/object"

// Relation is how a viewer stands to an object for field access.
type Relation struct {
	IsSelf         bool
	IsOwner        bool
	IsItemOwner    bool
	IsPartyMember  bool
	HasSpecialInfo bool
}

// RelationOf computes the viewer's relation to e. groups may be nil, in
// which case nobody is a party member.
func RelationOf(e object.Entity, viewer *object.Player, groups GroupService) Relation {
	o := e.Base()
	vg := viewer.GUID()
	rel := Relation{IsSelf: o.GUID() == vg}

	switch e.Kind() {
	case object.KindItem:
		it := o.ToItem()
		rel.IsOwner = it.OwnerGUID() == vg
		rel.IsItemOwner = rel.IsOwner
	case object.KindUnit, object.KindPlayer:
		u := o.ToUnit()
		rel.IsOwner = u.OwnerGUID() == vg
		rel.HasSpecialInfo = u.Auras.HasEmpathyFrom(vg)
		if p := u.CharmerOrOwnerPlayerOrSelf(); p != nil && groups != nil {
			rel.IsPartyMember = groups.SameGroup(p, viewer)
		}
	case object.KindGameObject, object.KindTransport:
		rel.IsOwner = o.ToGameObject().OwnerGUID() == vg
	case object.KindDynamicObject:
		rel.IsOwner = o.ToDynamicObject().CasterGUID() == vg
	case object.KindCorpse:
		rel.IsOwner = o.ToCorpse().OwnerGUID() == vg
	case object.KindAreaTrigger:
		rel.IsOwner = o.Guid(object.AreaTriggerFieldCaster) == vg
	}
	return rel
}

// IsFieldVisible reports whether a field tagged flags may be sent to a
// viewer with the given relation.
func IsFieldVisible(flags FieldFlag, rel Relation) bool {
	switch {
	case flags == FlagNone:
		return false
	case flags&(FlagPublic|FlagDynamic) != 0:
		return true
	case flags&FlagPrivate != 0 && rel.IsSelf:
		return true
	case flags&(FlagOwner|FlagItemOwner) != 0 && (rel.IsOwner || rel.IsItemOwner):
		return true
	case flags&FlagPartyMember != 0 && rel.IsPartyMember:
		return true
	case flags&FlagSpecialInfo != 0 && rel.HasSpecialInfo:
		return true
	case flags&FlagUnitAll != 0:
		return true
	}
	return false
}

// fieldCount is the number of fields a viewer receives. Other players only
// get the public part of a player.
func fieldCount(o *object.Object, rel Relation) int {
	if o.TypeID() == object.TypeIDPlayer && !rel.IsSelf {
		return object.PlayerEndNotSelf
	}
	return o.ValuesCount()
}

// createMask selects the fields of a create block: notify-flagged fields,
// dynamic fields, special info the viewer is entitled to, and every
// visible non-zero field.
func createMask(o *object.Object, rel Relation) *Mask {
	flags := FieldFlags(o.TypeID())
	n := fieldCount(o, rel)
	m := NewMask(n)
	notify := FieldFlag(o.NotifyFlags())
	for i := 0; i < n; i++ {
		f := flags[i]
		if notify&f != 0 || f&FlagDynamic != 0 ||
			(f&FlagSpecialInfo != 0 && rel.HasSpecialInfo) ||
			(o.Uint32(i) != 0 && IsFieldVisible(f, rel)) {
			m.Set(i)
		}
	}
	return m
}

// valuesMask selects the dirty visible fields of a values block. Notify
// flags only force fields while the object has changes to send.
func valuesMask(o *object.Object, rel Relation) *Mask {
	flags := FieldFlags(o.TypeID())
	n := fieldCount(o, rel)
	m := NewMask(n)
	dirty := o.HasChanges()
	notify := FieldFlag(o.NotifyFlags())
	for i := 0; i < n; i++ {
		f := flags[i]
		if (dirty && notify&f != 0) || (o.IsChanged(i) && IsFieldVisible(f, rel)) {
			m.Set(i)
		}
	}
	return m
}
