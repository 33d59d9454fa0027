package object

// FlaggedValues is a bit set of up to 32 types with a magnitude per type.
// Stealth, invisibility and server side visibility all use it, on both the
// "has" and the "can detect" side.
type FlaggedValues struct {
	flags  uint32
	values [32]int32
}

func (f *FlaggedValues) Flags() uint32 { return f.flags }

func (f *FlaggedValues) HasFlag(t uint) bool { return f.flags&(1<<t) != 0 }
func (f *FlaggedValues) AddFlag(t uint)      { f.flags |= 1 << t }
func (f *FlaggedValues) DelFlag(t uint)      { f.flags &^= 1 << t }

func (f *FlaggedValues) Value(t uint) int32       { return f.values[t] }
func (f *FlaggedValues) SetValue(t uint, v int32) { f.values[t] = v }
func (f *FlaggedValues) AddValue(t uint, v int32) { f.values[t] += v }

// Stealth types.
const (
	StealthGeneral uint = 0
	StealthTrap    uint = 1
)

// Invisibility types.
const (
	InvisibilityGeneral uint = 0
	InvisibilityUnk1    uint = 1
	InvisibilityDrunk   uint = 6
	InvisibilityUnk10   uint = 10
	InvisibilityTotal   uint = 32
)

// Server side visibility types.
const (
	ServerSideVisibilityGM    uint = 0
	ServerSideVisibilityGhost uint = 1
)

// Ghost visibility bits, stored as the value of ServerSideVisibilityGhost.
const (
	GhostVisibilityAlive int32 = 0x1
	GhostVisibilityGhost int32 = 0x2
)

// Security levels stored as the value of ServerSideVisibilityGM.
const (
	SecPlayer     int32 = 0
	SecModerator  int32 = 1
	SecGameMaster int32 = 2
	SecAdmin      int32 = 3
)
