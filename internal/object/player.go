package object

// DefaultPlayerCombatReach matches a standard humanoid.
const DefaultPlayerCombatReach float32 = 1.5

// Player is a connected character. It carries the full schema, of which
// other viewers only receive the part below PlayerEndNotSelf.
type Player struct {
	Unit

	team      Team
	group     GUID
	subGroup  uint8
	inArena   bool
	loggingIn bool

	corpse    *Corpse
	viewpoint *WorldObject

	// Objects this client currently has a create block for.
	clientGUIDs map[GUID]struct{}
	extraLook   map[GUID]struct{}
	lootCD      map[uint32]struct{}
}

// NewPlayer returns a player shell. Call Create before use.
func NewPlayer() *Player {
	p := &Player{clientGUIDs: make(map[GUID]struct{})}
	p.initUnit(p, TypeIDPlayer, TypeMaskUnit|TypeMaskPlayer, PlayerEnd, PlayerDynamicEnd)
	p.updateFlags = UpdateFlagLiving
	p.sightDistance = 0
	return p
}

func (p *Player) Kind() Kind { return KindPlayer }

// Create gives the player its GUID.
func (p *Player) Create(low uint32) {
	p.create(MakeGUID(low, 0, HighPlayer), 0)
	p.SetFloat(UnitFieldCombatReach, DefaultPlayerCombatReach)
	p.SetFloat(UnitFieldBoundingRadius, DefaultWorldObjectSize)
	p.SetUint32(UnitFieldLevel, 1)
	p.resetChanges()
}

// IsGameMaster reports GM mode: detection of GM-hidden objects at or
// above player security.
func (p *Player) IsGameMaster() bool {
	return p.ServerSideVisibilityDetect.Value(ServerSideVisibilityGM) > SecPlayer
}

// SetGameMaster toggles GM mode. A GM is also hidden from lower levels.
func (p *Player) SetGameMaster(level int32) {
	p.ServerSideVisibilityDetect.SetValue(ServerSideVisibilityGM, level)
	p.ServerSideVisibility.SetValue(ServerSideVisibilityGM, level)
}

func (p *Player) Team() Team     { return p.team }
func (p *Player) SetTeam(t Team) { p.team = t }

func (p *Player) Class() uint8     { return p.Byte(UnitFieldBytes0, 1) }
func (p *Player) SetClass(c uint8) { p.SetByte(UnitFieldBytes0, 1, c) }

// Group is the GUID of the player's group, 0 when ungrouped.
func (p *Player) Group() GUID     { return p.group }
func (p *Player) SubGroup() uint8 { return p.subGroup }
func (p *Player) SetGroup(g GUID, sub uint8) {
	p.group = g
	p.subGroup = sub
}

func (p *Player) InArena() bool      { return p.inArena }
func (p *Player) SetInArena(on bool) { p.inArena = on }

// IsLoggingIn hides the player while the client is still loading.
func (p *Player) IsLoggingIn() bool    { return p.loggingIn }
func (p *Player) SetLoggingIn(on bool) { p.loggingIn = on }

func (p *Player) Corpse() *Corpse     { return p.corpse }
func (p *Player) SetCorpse(c *Corpse) { p.corpse = c }

// Viewpoint is where the client's camera is. Defaults to the player.
func (p *Player) Viewpoint() *WorldObject {
	if p.viewpoint != nil {
		return p.viewpoint
	}
	return &p.WorldObject
}

// SetViewpoint moves the camera to w (far sight, possession). nil resets it.
func (p *Player) SetViewpoint(w *WorldObject) {
	p.viewpoint = w
	if w == nil || w == &p.WorldObject {
		p.viewpoint = nil
		p.SetGuid(PlayerFieldFarsight, 0)
		return
	}
	p.SetGuid(PlayerFieldFarsight, w.GUID())
}

func (p *Player) FarsightGUID() GUID { return p.Guid(PlayerFieldFarsight) }

// ---------- client known set ----------

func (p *Player) HaveAtClient(g GUID) bool {
	if g == p.guid {
		return true
	}
	_, ok := p.clientGUIDs[g]
	return ok
}

func (p *Player) AddClientGUID(g GUID)    { p.clientGUIDs[g] = struct{}{} }
func (p *Player) RemoveClientGUID(g GUID) { delete(p.clientGUIDs, g) }

// ClientGUIDs returns a snapshot of the known set.
func (p *Player) ClientGUIDs() []GUID {
	out := make([]GUID, 0, len(p.clientGUIDs))
	for g := range p.clientGUIDs {
		out = append(out, g)
	}
	return out
}

// ---------- extra look / loot cooldown ----------

// AddExtraLook lets the player see g regardless of range.
func (p *Player) AddExtraLook(g GUID) {
	if p.extraLook == nil {
		p.extraLook = make(map[GUID]struct{})
	}
	p.extraLook[g] = struct{}{}
}

func (p *Player) RemoveExtraLook(g GUID) { delete(p.extraLook, g) }

func (p *Player) HaveExtraLook(g GUID) bool {
	_, ok := p.extraLook[g]
	return ok
}

// SetLootCooldown hides game objects of entry while on cooldown.
func (p *Player) SetLootCooldown(entry uint32, on bool) {
	if !on {
		delete(p.lootCD, entry)
		return
	}
	if p.lootCD == nil {
		p.lootCD = make(map[uint32]struct{})
	}
	p.lootCD[entry] = struct{}{}
}

func (p *Player) IsLootCooldown(entry uint32) bool {
	_, ok := p.lootCD[entry]
	return ok
}

// Quest log layout: each slot is [quest id][state][counters][timer].
const (
	MaxQuestLogSize = 25
	questSlotSize   = 4

	QuestStateComplete uint32 = 1
	QuestStateFailed   uint32 = 2
)

// SetQuestSlot writes a quest log slot. The log is visible to party members.
func (p *Player) SetQuestSlot(slot int, questID, state uint32) {
	if slot < 0 || slot >= MaxQuestLogSize {
		panic(&IndexError{Op: "quest slot", Index: slot, Limit: MaxQuestLogSize})
	}
	base := PlayerFieldQuestLog + slot*questSlotSize
	p.SetUint32(base, questID)
	p.SetUint32(base+1, state)
}

// HasIncompleteQuest reports whether id is in the log and neither
// complete nor failed.
func (p *Player) HasIncompleteQuest(id uint32) bool {
	if id == 0 {
		return false
	}
	for slot := 0; slot < MaxQuestLogSize; slot++ {
		base := PlayerFieldQuestLog + slot*questSlotSize
		if p.Uint32(base) == id {
			return p.Uint32(base+1)&(QuestStateComplete|QuestStateFailed) == 0
		}
	}
	return false
}
