package world

import (
	"github.com/l1jgo/replicore/internal/data"
	"github.com/l1jgo/replicore/internal/object"
)

// Spell click teams of a creature template.
const (
	SpellClickAnyTeam  uint8 = 0
	SpellClickAlliance uint8 = 1
	SpellClickHorde    uint8 = 2
)

// QuestHook lets scripts light up game objects beyond the template quest
// list. scripting.Engine implements it.
type QuestHook interface {
	ActivateToQuest(g *object.GameObject, viewer *object.Player) (bool, bool)
}

// Rules answers the per-viewer game questions the encoder and detector
// ask, from static content and party state. It is read only after
// startup and shared by every partition.
type Rules struct {
	content *data.Content
	parties *PartyManager
	quests  QuestHook
}

func NewRules(content *data.Content, parties *PartyManager, quests QuestHook) *Rules {
	return &Rules{content: content, parties: parties, quests: quests}
}

func (r *Rules) factions() *data.FactionTable {
	if r.content == nil {
		return nil
	}
	return r.content.Factions
}

func (r *Rules) creatureTemplate(entry uint32) *data.CreatureTemplate {
	if r.content == nil {
		return nil
	}
	return r.content.Creatures.Get(entry)
}

// IsHostileTo compares faction templates of u and viewer.
func (r *Rules) IsHostileTo(u *object.Unit, viewer *object.Player) bool {
	f := r.factions()
	return f != nil && f.IsHostile(u.Faction(), viewer.Faction())
}

func (r *Rules) IsFriendlyFaction(a, b uint32) bool {
	f := r.factions()
	return f != nil && f.IsFriendly(a, b)
}

// IsFriendlyTo implements detect.Friendliness.
func (r *Rules) IsFriendlyTo(a, b *object.Unit) bool {
	return r.IsFriendlyFaction(a.Faction(), b.Faction())
}

// CanSeeSpellClickOn hides the spell click flag from the wrong team.
func (r *Rules) CanSeeSpellClickOn(viewer *object.Player, creature *object.Unit) bool {
	tmpl := r.creatureTemplate(creature.Entry())
	if tmpl == nil {
		return true
	}
	switch tmpl.SpellClickTeam {
	case SpellClickAlliance:
		return viewer.Team() == object.TeamAlliance
	case SpellClickHorde:
		return viewer.Team() == object.TeamHorde
	}
	return true
}

// CanTrain hides class trainers from other classes.
func (r *Rules) CanTrain(creature *object.Unit, viewer *object.Player) bool {
	tmpl := r.creatureTemplate(creature.Entry())
	if tmpl == nil {
		return false
	}
	switch tmpl.TrainerType {
	case data.TrainerTypeNone:
		return false
	case data.TrainerTypeClass:
		return tmpl.TrainerClass == 0 || tmpl.TrainerClass == viewer.Class()
	}
	return true
}

// ActivateToQuest lights up g when viewer has one of its quests
// incomplete. A script verdict wins over the template.
func (r *Rules) ActivateToQuest(g *object.GameObject, viewer *object.Player) bool {
	if r.quests != nil {
		if active, handled := r.quests.ActivateToQuest(g, viewer); handled {
			return active
		}
	}
	if r.content == nil {
		return false
	}
	tmpl := r.content.GameObjects.Get(g.Entry())
	if tmpl == nil {
		return false
	}
	for _, q := range tmpl.Quests {
		if viewer.HasIncompleteQuest(q) {
			return true
		}
	}
	return false
}

// IsTappedBy reports whether viewer or their group holds the tap.
func (r *Rules) IsTappedBy(creature *object.Unit, viewer *object.Player) bool {
	l := creature.Loot
	if l.Recipient == viewer.GUID() {
		return true
	}
	return l.RecipientGroup != 0 && l.RecipientGroup == viewer.Group()
}

// IsAllowedToLoot: only a dead creature's tapper may loot it.
func (r *Rules) IsAllowedToLoot(viewer *object.Player, creature *object.Unit) bool {
	if creature.IsAlive() || !creature.Loot.HasRecipient() {
		return false
	}
	return creature.Loot.Personal || r.IsTappedBy(creature, viewer)
}

// IsLootAllowedFor decides group loot chests.
func (r *Rules) IsLootAllowedFor(g *object.GameObject, viewer *object.Player) bool {
	if !g.HasLootRecipient() {
		return true
	}
	rec := g.LootRecipient()
	if rec == viewer.GUID() {
		return true
	}
	return rec.IsGroup() && rec == viewer.Group()
}
