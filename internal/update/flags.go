package update

import "github.com/l1jgo/replicore/internal/object"

// FieldFlag tags a field index with who may receive it.
type FieldFlag uint16

const (
	FlagNone            FieldFlag = 0x0000
	FlagPublic          FieldFlag = 0x0001
	FlagPrivate         FieldFlag = 0x0002
	FlagOwner           FieldFlag = 0x0004
	FlagItemOwner       FieldFlag = 0x0010
	FlagSpecialInfo     FieldFlag = 0x0020
	FlagPartyMember     FieldFlag = 0x0040
	FlagUnitAll         FieldFlag = 0x0080
	FlagDynamic         FieldFlag = 0x0100
	FlagViewerDependent FieldFlag = 0x0200
	FlagUrgent          FieldFlag = 0x0400
	FlagUrgentSelfOnly  FieldFlag = 0x0800
)

type span struct {
	start, size int
	flag        FieldFlag
}

func buildFlags(count int, spans ...[]span) []FieldFlag {
	t := make([]FieldFlag, count)
	for _, group := range spans {
		for _, s := range group {
			for i := s.start; i < s.start+s.size; i++ {
				t[i] = s.flag
			}
		}
	}
	return t
}

var objectSpans = []span{
	{object.ObjectFieldGUID, 2, FlagPublic},
	{object.ObjectFieldData, 2, FlagPublic},
	{object.ObjectFieldType, 1, FlagPublic},
	{object.ObjectFieldEntry, 1, FlagDynamic | FlagViewerDependent},
	{object.ObjectFieldDynamicFlags, 1, FlagDynamic | FlagViewerDependent | FlagUrgent},
	{object.ObjectFieldScaleX, 1, FlagPublic},
}

var itemFieldFlags = buildFlags(object.ContainerEnd, objectSpans, []span{
	{object.ItemFieldOwner, 2, FlagPublic},
	{object.ItemFieldContainedIn, 2, FlagPublic},
	{object.ItemFieldCreator, 2, FlagPublic},
	{object.ItemFieldGiftCreator, 2, FlagPublic},
	{object.ItemFieldStackCount, 1, FlagOwner},
	{object.ItemFieldExpiration, 1, FlagOwner},
	{object.ItemFieldSpellCharges, 5, FlagOwner},
	{object.ItemFieldDynamicFlags, 1, FlagPublic},
	{object.ItemFieldEnchantment, 39, FlagPublic},
	{object.ItemFieldPropertySeed, 1, FlagPublic},
	{object.ItemFieldRandomPropertiesID, 1, FlagPublic},
	{object.ItemFieldDurability, 1, FlagOwner},
	{object.ItemFieldMaxDurability, 1, FlagOwner},
	{object.ItemFieldCreatePlayedTime, 1, FlagPublic},
	{object.ItemFieldModifiersMask, 1, FlagOwner},
	{object.ContainerFieldSlots, 72, FlagPublic},
	{object.ContainerFieldNumSlots, 1, FlagPublic},
})

const privOwner = FlagPrivate | FlagOwner

var unitFieldFlags = buildFlags(object.PlayerEnd, objectSpans, []span{
	{object.UnitFieldCharm, 2, FlagPublic},
	{object.UnitFieldSummon, 2, FlagPublic},
	{object.UnitFieldCritter, 2, FlagPrivate},
	{object.UnitFieldCharmedBy, 2, FlagPublic},
	{object.UnitFieldSummonedBy, 2, FlagPublic},
	{object.UnitFieldCreatedBy, 2, FlagPublic},
	{object.UnitFieldDemonCreator, 2, FlagPublic},
	{object.UnitFieldTarget, 2, FlagPublic},
	{object.UnitFieldBattlePetCompanionGUID, 2, FlagPublic},
	{object.UnitFieldChannelObject, 2, FlagPublic | FlagUrgent},
	{object.UnitFieldChannelSpell, 1, FlagPublic | FlagUrgent},
	{object.UnitFieldSummonedByHomeRealm, 1, FlagPublic},
	{object.UnitFieldBytes0, 1, FlagPublic},
	{object.UnitFieldDisplayPower, 1, FlagPublic},
	{object.UnitFieldOverrideDisplayPowerID, 1, FlagPublic},
	{object.UnitFieldHealth, 1, FlagPublic},
	{object.UnitFieldPower, 5, FlagPublic | FlagUrgentSelfOnly},
	{object.UnitFieldMaxHealth, 1, FlagPublic},
	{object.UnitFieldMaxPower, 5, FlagPublic},
	{object.UnitFieldPowerRegenFlatModifier, 5, privOwner | FlagUnitAll},
	{object.UnitFieldPowerRegenInterruptedFlatModifier, 5, privOwner | FlagUnitAll},
	{object.UnitFieldLevel, 1, FlagPublic},
	{object.UnitFieldEffectiveLevel, 1, FlagPublic},
	{object.UnitFieldFactionTemplate, 1, FlagPublic | FlagViewerDependent},
	{object.UnitFieldVirtualItemID, 3, FlagPublic},
	{object.UnitFieldFlags, 1, FlagPublic | FlagUrgent | FlagViewerDependent},
	{object.UnitFieldFlags2, 1, FlagPublic | FlagUrgent},
	{object.UnitFieldAuraState, 1, FlagPublic | FlagViewerDependent},
	{object.UnitFieldBaseAttackTime, 2, FlagPublic},
	{object.UnitFieldRangedAttackTime, 1, FlagPrivate},
	{object.UnitFieldBoundingRadius, 1, FlagPublic},
	{object.UnitFieldCombatReach, 1, FlagPublic},
	{object.UnitFieldDisplayID, 1, FlagDynamic | FlagUrgent | FlagViewerDependent},
	{object.UnitFieldNativeDisplayID, 1, FlagPublic | FlagUrgent},
	{object.UnitFieldMountDisplayID, 1, FlagPublic | FlagUrgent},
	{object.UnitFieldMinDamage, 4, privOwner | FlagSpecialInfo},
	{object.UnitFieldBytes1, 1, FlagPublic},
	{object.UnitFieldPetNumber, 1, FlagPublic},
	{object.UnitFieldPetNameTimestamp, 1, FlagPublic},
	{object.UnitFieldPetExperience, 1, FlagOwner},
	{object.UnitFieldPetNextLevelExp, 1, FlagOwner},
	{object.UnitFieldModCastingSpeed, 5, FlagPublic},
	{object.UnitFieldCreatedBySpell, 1, FlagPublic},
	{object.UnitFieldNpcFlags, 2, FlagPublic | FlagViewerDependent},
	{object.UnitFieldEmoteState, 1, FlagPublic},
	{object.UnitFieldStats, 5, privOwner},
	{object.UnitFieldPosStats, 5, privOwner},
	{object.UnitFieldNegStats, 5, privOwner},
	{object.UnitFieldResistances, 7, privOwner | FlagSpecialInfo},
	{object.UnitFieldResistanceBuffModsPositive, 7, privOwner},
	{object.UnitFieldResistanceBuffModsNegative, 7, privOwner},
	{object.UnitFieldBaseMana, 1, FlagPublic},
	{object.UnitFieldBaseHealth, 1, privOwner},
	{object.UnitFieldBytes2, 1, FlagPublic | FlagViewerDependent},
	{object.UnitFieldAttackPower, 8, privOwner},
	{object.UnitFieldMinRangedDamage, 2, privOwner},
	{object.UnitFieldPowerCostModifier, 7, privOwner},
	{object.UnitFieldPowerCostMultiplier, 7, privOwner},
	{object.UnitFieldMaxHealthModifier, 1, privOwner},
	{object.UnitFieldHoverHeight, 1, FlagPublic},
	{object.UnitFieldMinItemLevel, 1, FlagPublic},
	{object.UnitFieldMaxItemLevel, 1, FlagPublic},
	{object.UnitFieldWildBattlePetLevel, 1, FlagPublic},
	{object.UnitFieldBattlePetCompanionNameTimestamp, 1, FlagPublic},
	{object.UnitFieldInteractSpellID, 1, FlagPublic},
}, []span{
	{object.PlayerFieldDuelArbiter, 2, FlagPublic},
	{object.PlayerFieldPlayerFlags, 1, FlagPublic},
	{object.PlayerFieldGuildRankID, 1, FlagPublic},
	{object.PlayerFieldGuildDeleteDate, 1, FlagPublic},
	{object.PlayerFieldGuildLevel, 1, FlagPublic},
	{object.PlayerFieldBytes, 3, FlagPublic},
	{object.PlayerFieldDuelTeam, 1, FlagPublic},
	{object.PlayerFieldGuildTimestamp, 1, FlagPublic},
	{object.PlayerFieldQuestLog, 100, FlagPartyMember},
	{object.PlayerFieldVisibleItems, 38, FlagPublic},
	{object.PlayerFieldChosenTitle, 1, FlagPublic},
	{object.PlayerFieldFakeInebriation, 1, FlagPublic},
	{object.PlayerFieldVirtualPlayerRealm, 1, FlagPublic},
	{object.PlayerFieldCurrentSpecID, 1, FlagPublic},
	{object.PlayerFieldTaxiMountAnimKitID, 1, FlagPublic},
	{object.PlayerFieldCurrentBattlePetBreedQuality, 1, FlagPublic},
	{object.PlayerEndNotSelf, object.PlayerEnd - object.PlayerEndNotSelf, FlagPrivate},
})

var gameObjectFieldFlags = buildFlags(object.GameObjectEnd, objectSpans, []span{
	{object.GameObjectFieldCreatedBy, 2, FlagPublic},
	{object.GameObjectFieldDisplayID, 1, FlagDynamic | FlagUrgent},
	{object.GameObjectFieldFlags, 1, FlagPublic | FlagUrgent | FlagViewerDependent},
	{object.GameObjectFieldParentRotation, 4, FlagPublic},
	{object.GameObjectFieldAnimProgress, 1, FlagDynamic},
	{object.GameObjectFieldFactionTemplate, 1, FlagPublic},
	{object.GameObjectFieldLevel, 1, FlagPublic},
	{object.GameObjectFieldPercentHealth, 1, FlagPublic | FlagUrgent},
	{object.GameObjectFieldBytes1, 1, FlagPublic | FlagUrgent | FlagViewerDependent},
	{object.GameObjectFieldStateSpellVisualID, 1, FlagPublic | FlagUrgent},
	{object.GameObjectFieldStateAnimID, 1, FlagPublic | FlagUrgent},
	{object.GameObjectFieldStateAnimKitID, 1, FlagPublic | FlagUrgent},
	{object.GameObjectFieldStateWorldEffectID, 4, FlagPublic | FlagUrgent},
})

var dynamicObjectFieldFlags = buildFlags(object.DynamicObjectEnd, objectSpans, []span{
	{object.DynamicObjectFieldCaster, 2, FlagPublic},
	{object.DynamicObjectFieldBytes, 1, FlagDynamic | FlagViewerDependent},
	{object.DynamicObjectFieldSpellID, 1, FlagPublic},
	{object.DynamicObjectFieldRadius, 1, FlagPublic},
	{object.DynamicObjectFieldCastTime, 1, FlagPublic},
})

var corpseFieldFlags = buildFlags(object.CorpseEnd, objectSpans, []span{
	{object.CorpseFieldOwner, 2, FlagPublic},
	{object.CorpseFieldAccountID, 2, FlagPublic},
	{object.CorpseFieldPartyGUID, 2, FlagPublic},
	{object.CorpseFieldDisplayID, 1, FlagPublic},
	{object.CorpseFieldItems, 19, FlagPublic},
	{object.CorpseFieldSkinID, 1, FlagPublic},
	{object.CorpseFieldFacialHairStyle, 1, FlagPublic},
	{object.CorpseFieldFlags, 1, FlagPublic},
	{object.CorpseFieldDynamicFlags, 1, FlagDynamic},
	{object.CorpseFieldFactionTemplate, 1, FlagPublic},
})

var areaTriggerFieldFlags = buildFlags(object.AreaTriggerEnd, objectSpans, []span{
	{object.AreaTriggerFieldCaster, 2, FlagPublic},
	{object.AreaTriggerFieldDuration, 1, FlagPublic},
	{object.AreaTriggerFieldSpellID, 1, FlagPublic},
	{object.AreaTriggerFieldSpellVisualID, 1, FlagDynamic | FlagViewerDependent},
	{object.AreaTriggerFieldExplicitScale, 1, FlagPublic | FlagUrgent},
})

// FieldFlags returns the access table of a variant. Item and container share
// one table, as do unit and player. The returned slice must not be modified.
func FieldFlags(t object.TypeID) []FieldFlag {
	switch t {
	case object.TypeIDItem, object.TypeIDContainer:
		return itemFieldFlags
	case object.TypeIDUnit, object.TypeIDPlayer:
		return unitFieldFlags
	case object.TypeIDGameObject:
		return gameObjectFieldFlags
	case object.TypeIDDynamicObject:
		return dynamicObjectFieldFlags
	case object.TypeIDCorpse:
		return corpseFieldFlags
	case object.TypeIDAreaTrigger:
		return areaTriggerFieldFlags
	}
	return nil
}
