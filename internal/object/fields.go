package object

// Field layout. Every index is a 32-bit slot; 64-bit values take two slots.
// The layout is shared with the client, so indices never move.

const (
	ObjectFieldGUID         = 0x0000 // size 2
	ObjectFieldData         = 0x0002 // size 2
	ObjectFieldType         = 0x0004
	ObjectFieldEntry        = 0x0005
	ObjectFieldDynamicFlags = 0x0006
	ObjectFieldScaleX       = 0x0007
	ObjectEnd               = 0x0008
)

const (
	ItemFieldOwner              = ObjectEnd + 0x0000 // size 2
	ItemFieldContainedIn        = ObjectEnd + 0x0002 // size 2
	ItemFieldCreator            = ObjectEnd + 0x0004 // size 2
	ItemFieldGiftCreator        = ObjectEnd + 0x0006 // size 2
	ItemFieldStackCount         = ObjectEnd + 0x0008
	ItemFieldExpiration         = ObjectEnd + 0x0009
	ItemFieldSpellCharges       = ObjectEnd + 0x000A // size 5
	ItemFieldDynamicFlags       = ObjectEnd + 0x000F
	ItemFieldEnchantment        = ObjectEnd + 0x0010 // size 39
	ItemFieldPropertySeed       = ObjectEnd + 0x0037
	ItemFieldRandomPropertiesID = ObjectEnd + 0x0038
	ItemFieldDurability         = ObjectEnd + 0x0039
	ItemFieldMaxDurability      = ObjectEnd + 0x003A
	ItemFieldCreatePlayedTime   = ObjectEnd + 0x003B
	ItemFieldModifiersMask      = ObjectEnd + 0x003C
	ItemEnd                     = ObjectEnd + 0x003D
)

const (
	ContainerFieldSlots    = ItemEnd + 0x0000 // size 72
	ContainerFieldNumSlots = ItemEnd + 0x0048
	ContainerEnd           = ItemEnd + 0x0049
)

const (
	UnitFieldCharm                             = ObjectEnd + 0x0000 // size 2
	UnitFieldSummon                            = ObjectEnd + 0x0002 // size 2
	UnitFieldCritter                           = ObjectEnd + 0x0004 // size 2
	UnitFieldCharmedBy                         = ObjectEnd + 0x0006 // size 2
	UnitFieldSummonedBy                        = ObjectEnd + 0x0008 // size 2
	UnitFieldCreatedBy                         = ObjectEnd + 0x000A // size 2
	UnitFieldDemonCreator                      = ObjectEnd + 0x000C // size 2
	UnitFieldTarget                            = ObjectEnd + 0x000E // size 2
	UnitFieldBattlePetCompanionGUID            = ObjectEnd + 0x0010 // size 2
	UnitFieldChannelObject                     = ObjectEnd + 0x0012 // size 2
	UnitFieldChannelSpell                      = ObjectEnd + 0x0014
	UnitFieldSummonedByHomeRealm               = ObjectEnd + 0x0015
	UnitFieldBytes0                            = ObjectEnd + 0x0016
	UnitFieldDisplayPower                      = ObjectEnd + 0x0017
	UnitFieldOverrideDisplayPowerID            = ObjectEnd + 0x0018
	UnitFieldHealth                            = ObjectEnd + 0x0019
	UnitFieldPower                             = ObjectEnd + 0x001A // size 5
	UnitFieldMaxHealth                         = ObjectEnd + 0x001F
	UnitFieldMaxPower                          = ObjectEnd + 0x0020 // size 5
	UnitFieldPowerRegenFlatModifier            = ObjectEnd + 0x0025 // size 5
	UnitFieldPowerRegenInterruptedFlatModifier = ObjectEnd + 0x002A // size 5
	UnitFieldLevel                             = ObjectEnd + 0x002F
	UnitFieldEffectiveLevel                    = ObjectEnd + 0x0030
	UnitFieldFactionTemplate                   = ObjectEnd + 0x0031
	UnitFieldVirtualItemID                     = ObjectEnd + 0x0032 // size 3
	UnitFieldFlags                             = ObjectEnd + 0x0035
	UnitFieldFlags2                            = ObjectEnd + 0x0036
	UnitFieldAuraState                         = ObjectEnd + 0x0037
	UnitFieldBaseAttackTime                    = ObjectEnd + 0x0038 // size 2
	UnitFieldRangedAttackTime                  = ObjectEnd + 0x003A
	UnitFieldBoundingRadius                    = ObjectEnd + 0x003B
	UnitFieldCombatReach                       = ObjectEnd + 0x003C
	UnitFieldDisplayID                         = ObjectEnd + 0x003D
	UnitFieldNativeDisplayID                   = ObjectEnd + 0x003E
	UnitFieldMountDisplayID                    = ObjectEnd + 0x003F
	UnitFieldMinDamage                         = ObjectEnd + 0x0040
	UnitFieldMaxDamage                         = ObjectEnd + 0x0041
	UnitFieldMinOffhandDamage                  = ObjectEnd + 0x0042
	UnitFieldMaxOffhandDamage                  = ObjectEnd + 0x0043
	UnitFieldBytes1                            = ObjectEnd + 0x0044
	UnitFieldPetNumber                         = ObjectEnd + 0x0045
	UnitFieldPetNameTimestamp                  = ObjectEnd + 0x0046
	UnitFieldPetExperience                     = ObjectEnd + 0x0047
	UnitFieldPetNextLevelExp                   = ObjectEnd + 0x0048
	UnitFieldModCastingSpeed                   = ObjectEnd + 0x0049
	UnitFieldModSpellHaste                     = ObjectEnd + 0x004A
	UnitFieldModHaste                          = ObjectEnd + 0x004B
	UnitFieldModRangedHaste                    = ObjectEnd + 0x004C
	UnitFieldModHasteRegen                     = ObjectEnd + 0x004D
	UnitFieldCreatedBySpell                    = ObjectEnd + 0x004E
	UnitFieldNpcFlags                          = ObjectEnd + 0x004F // size 2
	UnitFieldEmoteState                        = ObjectEnd + 0x0051
	UnitFieldStats                             = ObjectEnd + 0x0052 // size 5
	UnitFieldPosStats                          = ObjectEnd + 0x0057 // size 5
	UnitFieldNegStats                          = ObjectEnd + 0x005C // size 5
	UnitFieldResistances                       = ObjectEnd + 0x0061 // size 7
	UnitFieldResistanceBuffModsPositive        = ObjectEnd + 0x0068 // size 7
	UnitFieldResistanceBuffModsNegative        = ObjectEnd + 0x006F // size 7
	UnitFieldBaseMana                          = ObjectEnd + 0x0076
	UnitFieldBaseHealth                        = ObjectEnd + 0x0077
	UnitFieldBytes2                            = ObjectEnd + 0x0078
	UnitFieldAttackPower                       = ObjectEnd + 0x0079
	UnitFieldAttackPowerModPos                 = ObjectEnd + 0x007A
	UnitFieldAttackPowerModNeg                 = ObjectEnd + 0x007B
	UnitFieldAttackPowerMultiplier             = ObjectEnd + 0x007C
	UnitFieldRangedAttackPower                 = ObjectEnd + 0x007D
	UnitFieldRangedAttackPowerModPos           = ObjectEnd + 0x007E
	UnitFieldRangedAttackPowerModNeg           = ObjectEnd + 0x007F
	UnitFieldRangedAttackPowerMultiplier       = ObjectEnd + 0x0080
	UnitFieldMinRangedDamage                   = ObjectEnd + 0x0081
	UnitFieldMaxRangedDamage                   = ObjectEnd + 0x0082
	UnitFieldPowerCostModifier                 = ObjectEnd + 0x0083 // size 7
	UnitFieldPowerCostMultiplier               = ObjectEnd + 0x008A // size 7
	UnitFieldMaxHealthModifier                 = ObjectEnd + 0x0091
	UnitFieldHoverHeight                       = ObjectEnd + 0x0092
	UnitFieldMinItemLevel                      = ObjectEnd + 0x0093
	UnitFieldMaxItemLevel                      = ObjectEnd + 0x0094
	UnitFieldWildBattlePetLevel                = ObjectEnd + 0x0095
	UnitFieldBattlePetCompanionNameTimestamp   = ObjectEnd + 0x0096
	UnitFieldInteractSpellID                   = ObjectEnd + 0x0097
	UnitEnd                                    = ObjectEnd + 0x0098
)

const (
	PlayerFieldDuelArbiter                  = UnitEnd + 0x0000 // size 2
	PlayerFieldPlayerFlags                  = UnitEnd + 0x0002
	PlayerFieldGuildRankID                  = UnitEnd + 0x0003
	PlayerFieldGuildDeleteDate              = UnitEnd + 0x0004
	PlayerFieldGuildLevel                   = UnitEnd + 0x0005
	PlayerFieldBytes                        = UnitEnd + 0x0006
	PlayerFieldBytes2                       = UnitEnd + 0x0007
	PlayerFieldBytes3                       = UnitEnd + 0x0008
	PlayerFieldDuelTeam                     = UnitEnd + 0x0009
	PlayerFieldGuildTimestamp               = UnitEnd + 0x000A
	PlayerFieldQuestLog                     = UnitEnd + 0x000B // size 100, 25 quests x 4
	PlayerFieldVisibleItems                 = UnitEnd + 0x006F // size 38
	PlayerFieldChosenTitle                  = UnitEnd + 0x0095
	PlayerFieldFakeInebriation              = UnitEnd + 0x0096
	PlayerFieldVirtualPlayerRealm           = UnitEnd + 0x0097
	PlayerFieldCurrentSpecID                = UnitEnd + 0x0098
	PlayerFieldTaxiMountAnimKitID           = UnitEnd + 0x0099
	PlayerFieldCurrentBattlePetBreedQuality = UnitEnd + 0x009A
	PlayerEndNotSelf                        = UnitEnd + 0x009B

	PlayerFieldInvSlots          = PlayerEndNotSelf + 0x0000 // size 172
	PlayerFieldFarsight          = PlayerEndNotSelf + 0x00AC // size 2
	PlayerFieldKnownTitles       = PlayerEndNotSelf + 0x00AE // size 10
	PlayerFieldCoinage           = PlayerEndNotSelf + 0x00B8 // size 2
	PlayerFieldXP                = PlayerEndNotSelf + 0x00BA
	PlayerFieldNextLevelXP       = PlayerEndNotSelf + 0x00BB
	PlayerFieldSkill             = PlayerEndNotSelf + 0x00BC // size 192
	PlayerFieldCharacterPoints   = PlayerEndNotSelf + 0x017C
	PlayerFieldMaxTalentTiers    = PlayerEndNotSelf + 0x017D
	PlayerFieldTrackCreatures    = PlayerEndNotSelf + 0x017E
	PlayerFieldTrackResources    = PlayerEndNotSelf + 0x017F
	PlayerFieldExpertise         = PlayerEndNotSelf + 0x0180
	PlayerFieldBlockPercentage   = PlayerEndNotSelf + 0x0181
	PlayerFieldDodgePercentage   = PlayerEndNotSelf + 0x0182
	PlayerFieldParryPercentage   = PlayerEndNotSelf + 0x0183
	PlayerFieldCritPercentage    = PlayerEndNotSelf + 0x0184
	PlayerFieldExploredZones     = PlayerEndNotSelf + 0x0185 // size 200
	PlayerFieldRestStateXP       = PlayerEndNotSelf + 0x024D
	PlayerFieldModHealingPct     = PlayerEndNotSelf + 0x024E
	PlayerFieldWatchedFaction    = PlayerEndNotSelf + 0x024F
	PlayerFieldMaxLevel          = PlayerEndNotSelf + 0x0250
	PlayerFieldLifetimeKills     = PlayerEndNotSelf + 0x0251
	PlayerFieldBytesPrivate      = PlayerEndNotSelf + 0x0252
	PlayerFieldOverrideSpellsID  = PlayerEndNotSelf + 0x0253
	PlayerFieldLFGBonusFactionID = PlayerEndNotSelf + 0x0254
	PlayerFieldLootSpecID        = PlayerEndNotSelf + 0x0255
	PlayerEnd                    = PlayerEndNotSelf + 0x0256
)

const (
	GameObjectFieldCreatedBy          = ObjectEnd + 0x0000 // size 2
	GameObjectFieldDisplayID          = ObjectEnd + 0x0002
	GameObjectFieldFlags              = ObjectEnd + 0x0003
	GameObjectFieldParentRotation     = ObjectEnd + 0x0004 // size 4
	GameObjectFieldAnimProgress       = ObjectEnd + 0x0008
	GameObjectFieldFactionTemplate    = ObjectEnd + 0x0009
	GameObjectFieldLevel              = ObjectEnd + 0x000A
	GameObjectFieldPercentHealth      = ObjectEnd + 0x000B
	GameObjectFieldBytes1             = ObjectEnd + 0x000C
	GameObjectFieldStateSpellVisualID = ObjectEnd + 0x000D
	GameObjectFieldStateAnimID        = ObjectEnd + 0x000E
	GameObjectFieldStateAnimKitID     = ObjectEnd + 0x000F
	GameObjectFieldStateWorldEffectID = ObjectEnd + 0x0010 // size 4
	GameObjectEnd                     = ObjectEnd + 0x0014
)

const (
	DynamicObjectFieldCaster   = ObjectEnd + 0x0000 // size 2
	DynamicObjectFieldBytes    = ObjectEnd + 0x0002 // type<<28 | visual
	DynamicObjectFieldSpellID  = ObjectEnd + 0x0003
	DynamicObjectFieldRadius   = ObjectEnd + 0x0004
	DynamicObjectFieldCastTime = ObjectEnd + 0x0005
	DynamicObjectEnd           = ObjectEnd + 0x0006
)

const (
	CorpseFieldOwner           = ObjectEnd + 0x0000 // size 2
	CorpseFieldAccountID       = ObjectEnd + 0x0002 // size 2
	CorpseFieldPartyGUID       = ObjectEnd + 0x0004 // size 2
	CorpseFieldDisplayID       = ObjectEnd + 0x0006
	CorpseFieldItems           = ObjectEnd + 0x0007 // size 19
	CorpseFieldSkinID          = ObjectEnd + 0x001A
	CorpseFieldFacialHairStyle = ObjectEnd + 0x001B
	CorpseFieldFlags           = ObjectEnd + 0x001C
	CorpseFieldDynamicFlags    = ObjectEnd + 0x001D
	CorpseFieldFactionTemplate = ObjectEnd + 0x001E
	CorpseEnd                  = ObjectEnd + 0x001F
)

const (
	AreaTriggerFieldCaster        = ObjectEnd + 0x0000 // size 2
	AreaTriggerFieldDuration      = ObjectEnd + 0x0002
	AreaTriggerFieldSpellID       = ObjectEnd + 0x0003
	AreaTriggerFieldSpellVisualID = ObjectEnd + 0x0004
	AreaTriggerFieldExplicitScale = ObjectEnd + 0x0005
	AreaTriggerEnd                = ObjectEnd + 0x0006
)

// Dynamic tables per variant.
const (
	ItemDynamicModifiers = 0
	ItemDynamicEnd       = 1

	UnitDynamicPassiveSpells = 0
	UnitDynamicWorldEffects  = 1
	UnitDynamicEnd           = 2

	PlayerDynamicResearchSites    = UnitDynamicEnd + 0
	PlayerDynamicDailyQuests      = UnitDynamicEnd + 1
	PlayerDynamicResearchProgress = UnitDynamicEnd + 2
	PlayerDynamicEnd              = UnitDynamicEnd + 3

	GameObjectDynamicEnableDoodadSets = 0
	GameObjectDynamicEnd              = 1
)

// DynamicSlots is the fixed width of every dynamic table.
const DynamicSlots = 32

// Value bits referenced by replication.
const (
	UnitFlagNotSelectable uint32 = 0x02000000

	UnitNpcFlagGossip            uint32 = 0x00000001
	UnitNpcFlagTrainer           uint32 = 0x00000010
	UnitNpcFlagTrainerClass      uint32 = 0x00000020
	UnitNpcFlagTrainerProfession uint32 = 0x00000040
	UnitNpcFlagSpellClick        uint32 = 0x01000000

	UnitDynFlagLootable              uint32 = 0x0001
	UnitDynFlagTrackUnit             uint32 = 0x0002
	UnitDynFlagTapped                uint32 = 0x0004
	UnitDynFlagTappedByPlayer        uint32 = 0x0008
	UnitDynFlagSpecialInfo           uint32 = 0x0010
	UnitDynFlagDead                  uint32 = 0x0020
	UnitDynFlagTappedByAllThreatList uint32 = 0x0080

	UnitByte2FlagSanctuary uint32 = 0x08

	GameObjectFlagLocked        uint32 = 0x00000002
	GameObjectFlagNotSelectable uint32 = 0x00000010

	GameObjectDynFlagActivate uint16 = 0x01
	GameObjectDynFlagSparkle  uint16 = 0x08

	GameObjectStateTransportSpec uint32 = 24

	// Aura states that are tracked per caster rather than globally.
	PerCasterAuraStateMask uint32 = 1<<(16-1) | 1<<(20-1)
)
