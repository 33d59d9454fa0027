package update

import (
	"github.com/l1jgo/replicore/internal/data"
	"github.com/l1jgo/replicore/internal/object"
)

// GroupService answers party membership questions. world.GroupManager
// implements it.
type GroupService interface {
	// SameGroup reports whether both players share a party sub-group.
	SameGroup(a, b *object.Player) bool
	// SameRaid reports whether both players share a group of any size.
	SameRaid(a, b *object.Player) bool
}

// LootRights decides tap and loot state per viewer.
type LootRights interface {
	IsTappedBy(creature *object.Unit, viewer *object.Player) bool
	IsAllowedToLoot(viewer *object.Player, creature *object.Unit) bool
	IsLootAllowedFor(g *object.GameObject, viewer *object.Player) bool
}

// GameRules is the slice of game logic the encoder consults.
type GameRules interface {
	IsHostileTo(u *object.Unit, viewer *object.Player) bool
	IsFriendlyFaction(a, b uint32) bool
	CanSeeSpellClickOn(viewer *object.Player, creature *object.Unit) bool
	CanTrain(creature *object.Unit, viewer *object.Player) bool
	ActivateToQuest(g *object.GameObject, viewer *object.Player) bool
}

// ContentLookup resolves static content by id.
type ContentLookup interface {
	CreatureTemplate(entry uint32) (*data.CreatureTemplate, bool)
	ModelInfo(displayID uint32) (*data.ModelInfo, bool)
	SpellVisual(id uint32) (*data.SpellVisual, bool)
}

// Services bundles the collaborators of an Encoder.
type Services struct {
	Groups  GroupService
	Loot    LootRights
	Rules   GameRules
	Content ContentLookup
}

// Options are the encoder switches read from config.
type Options struct {
	// Lets grouped players of opposed factions see each other as friendly.
	AllowTwoSideInteractionGroup bool
}
