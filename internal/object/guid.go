package object

import "fmt"

// GUID is the 64-bit object identifier. The high part tags the variant.
type GUID uint64

// HighGUID is the kind tag carried in the top bits of a GUID.
type HighGUID uint32

const (
	HighItem          HighGUID = 0x400
	HighContainer     HighGUID = 0x400
	HighPlayer        HighGUID = 0x000
	HighGameObject    HighGUID = 0xF11
	HighTransport     HighGUID = 0xF12
	HighUnit          HighGUID = 0xF13
	HighPet           HighGUID = 0xF14
	HighVehicle       HighGUID = 0xF15
	HighDynamicObject HighGUID = 0xF10
	HighCorpse        HighGUID = 0xF101
	HighAreaTrigger   HighGUID = 0xF102
	HighMOTransport   HighGUID = 0x1FC
	HighGroup         HighGUID = 0x1F5
)

// wideHigh reports whether h is stored in the full top 16 bits instead of
// the top 12.
func wideHigh(h HighGUID) bool {
	return h == HighCorpse || h == HighAreaTrigger
}

// hasEntry reports whether GUIDs of kind h carry a template entry in bits 32..51.
func hasEntry(h HighGUID) bool {
	switch h {
	case HighGameObject, HighTransport, HighUnit, HighPet, HighVehicle, HighMOTransport:
		return true
	}
	return false
}

// MakeGUID composes a GUID from its low counter, template entry and kind.
func MakeGUID(low uint32, entry uint32, high HighGUID) GUID {
	shift := uint(52)
	if wideHigh(high) {
		shift = 48
	}
	v := uint64(low) | uint64(high)<<shift
	if hasEntry(high) {
		v |= uint64(entry&0xFFFFF) << 32
	}
	return GUID(v)
}

func (g GUID) High() HighGUID {
	t := HighGUID((uint64(g) >> 48) & 0xFFFF)
	if wideHigh(t) {
		return t
	}
	return (t >> 4) & 0xFFF
}

func (g GUID) Low() uint32 { return uint32(g) }

func (g GUID) Entry() uint32 {
	if !hasEntry(g.High()) {
		return 0
	}
	return uint32(uint64(g)>>32) & 0xFFFFF
}

func (g GUID) IsEmpty() bool { return g == 0 }

func (g GUID) IsPlayer() bool { return g != 0 && g.High() == HighPlayer }

func (g GUID) IsGroup() bool { return g != 0 && g.High() == HighGroup }

func (g GUID) IsGameObject() bool { return g.High() == HighGameObject }

func (g GUID) IsUnit() bool { return g.High() == HighUnit }

func (g GUID) IsPet() bool { return g.High() == HighPet }

func (g GUID) IsCreatureOrPet() bool {
	h := g.High()
	return h == HighUnit || h == HighPet || h == HighVehicle
}

// TypeName names the GUID kind for logs.
func (g GUID) TypeName() string {
	switch g.High() {
	case HighItem:
		return "Item"
	case HighPlayer:
		if g == 0 {
			return "None"
		}
		return "Player"
	case HighGameObject:
		return "Gameobject"
	case HighTransport:
		return "Transport"
	case HighUnit:
		return "Creature"
	case HighPet:
		return "Pet"
	case HighVehicle:
		return "Vehicle"
	case HighDynamicObject:
		return "DynObject"
	case HighCorpse:
		return "Corpse"
	case HighAreaTrigger:
		return "AreaTrigger"
	case HighMOTransport:
		return "MoTransport"
	case HighGroup:
		return "Group"
	}
	return "<unknown>"
}

func (g GUID) String() string {
	return fmt.Sprintf("%s (Low: %d, Entry: %d, Full: 0x%016X)", g.TypeName(), g.Low(), g.Entry(), uint64(g))
}
