package object

// TypeID is the wire tag of an object variant.
type TypeID uint8

const (
	TypeIDObject        TypeID = 0
	TypeIDItem          TypeID = 1
	TypeIDContainer     TypeID = 2
	TypeIDUnit          TypeID = 3
	TypeIDPlayer        TypeID = 4
	TypeIDGameObject    TypeID = 5
	TypeIDDynamicObject TypeID = 6
	TypeIDCorpse        TypeID = 7
	TypeIDAreaTrigger   TypeID = 8
)

func (t TypeID) String() string {
	switch t {
	case TypeIDObject:
		return "object"
	case TypeIDItem:
		return "item"
	case TypeIDContainer:
		return "container"
	case TypeIDUnit:
		return "unit"
	case TypeIDPlayer:
		return "player"
	case TypeIDGameObject:
		return "gameobject"
	case TypeIDDynamicObject:
		return "dynamicobject"
	case TypeIDCorpse:
		return "corpse"
	case TypeIDAreaTrigger:
		return "areatrigger"
	}
	return "unknown"
}

// TypeMask is the set of types an object is, written to ObjectFieldType.
type TypeMask uint32

const (
	TypeMaskObject        TypeMask = 0x0001
	TypeMaskItem          TypeMask = 0x0002
	TypeMaskContainer     TypeMask = 0x0004
	TypeMaskUnit          TypeMask = 0x0008
	TypeMaskPlayer        TypeMask = 0x0010
	TypeMaskGameObject    TypeMask = 0x0020
	TypeMaskDynamicObject TypeMask = 0x0040
	TypeMaskCorpse        TypeMask = 0x0080
	TypeMaskAreaTrigger   TypeMask = 0x0100

	TypeMaskBag = TypeMaskContainer
)

// Kind is the closed set of replicated variants.
type Kind uint8

const (
	KindItem Kind = iota
	KindUnit
	KindPlayer
	KindGameObject
	KindDynamicObject
	KindCorpse
	KindAreaTrigger
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "Item"
	case KindUnit:
		return "Unit"
	case KindPlayer:
		return "Player"
	case KindGameObject:
		return "GameObject"
	case KindDynamicObject:
		return "DynamicObject"
	case KindCorpse:
		return "Corpse"
	case KindAreaTrigger:
		return "AreaTrigger"
	case KindTransport:
		return "Transport"
	}
	return "Unknown"
}

// UpdateFlag selects the optional parts of a create block's movement section.
type UpdateFlag uint16

const (
	UpdateFlagNone                UpdateFlag = 0x0000
	UpdateFlagSelf                UpdateFlag = 0x0001
	UpdateFlagTransport           UpdateFlag = 0x0002
	UpdateFlagHasTarget           UpdateFlag = 0x0004
	UpdateFlagLiving              UpdateFlag = 0x0008
	UpdateFlagStationaryPosition  UpdateFlag = 0x0010
	UpdateFlagVehicle             UpdateFlag = 0x0020
	UpdateFlagGOTransportPosition UpdateFlag = 0x0040
	UpdateFlagRotation            UpdateFlag = 0x0080
	UpdateFlagAnimKits            UpdateFlag = 0x0100
	UpdateFlagAreaTrigger         UpdateFlag = 0x0200
	UpdateFlagHasWorldEffectID    UpdateFlag = 0x0400
)

// GameObjectType is the behaviour class of a game object template.
type GameObjectType uint8

const (
	GameObjectTypeDoor        GameObjectType = 0
	GameObjectTypeButton      GameObjectType = 1
	GameObjectTypeQuestGiver  GameObjectType = 2
	GameObjectTypeChest       GameObjectType = 3
	GameObjectTypeBinder      GameObjectType = 4
	GameObjectTypeGeneric     GameObjectType = 5
	GameObjectTypeTrap        GameObjectType = 6
	GameObjectTypeChair       GameObjectType = 7
	GameObjectTypeSpellFocus  GameObjectType = 8
	GameObjectTypeText        GameObjectType = 9
	GameObjectTypeGoober      GameObjectType = 10
	GameObjectTypeTransport   GameObjectType = 11
	GameObjectTypeDuelArbiter GameObjectType = 16
	GameObjectTypeFlagStand   GameObjectType = 24
	GameObjectTypeFlagDrop    GameObjectType = 26
	GameObjectTypeMOTransport GameObjectType = 15
)

// DynamicObjectType is stored in the top nibble of DynamicObjectFieldBytes.
type DynamicObjectType uint8

const (
	DynamicObjectPortal        DynamicObjectType = 0
	DynamicObjectAreaSpell     DynamicObjectType = 1
	DynamicObjectFarsightFocus DynamicObjectType = 2
)

// Team is a player's allegiance.
type Team uint32

const (
	TeamNone     Team = 0
	TeamAlliance Team = 469
	TeamHorde    Team = 67
)
