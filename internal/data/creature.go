package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Creature flags_extra bits that matter to replication.
const (
	CreatureFlagExtraTrigger   uint32 = 0x00000080 // invisible spell helper, hidden from players
	CreatureFlagExtraWorldboss uint32 = 0x00000040
)

// Trainer kinds of a creature template.
const (
	TrainerTypeNone       uint8 = 0
	TrainerTypeClass      uint8 = 1
	TrainerTypeMounts     uint8 = 2
	TrainerTypeTradeskill uint8 = 3
	TrainerTypePets       uint8 = 4
)

// CreatureTemplate holds static data for a creature entry loaded from YAML.
type CreatureTemplate struct {
	Entry          uint32 `yaml:"entry"`
	Name           string `yaml:"name"`
	ModelID1       uint32 `yaml:"model_id1"` // trigger model shown to game masters
	ModelID2       uint32 `yaml:"model_id2"` // trigger model shown to players
	Faction        uint32 `yaml:"faction"`
	NpcFlags       uint32 `yaml:"npc_flags"`
	FlagsExtra     uint32 `yaml:"flags_extra"`
	TrainerType    uint8  `yaml:"trainer_type"`
	TrainerClass   uint8  `yaml:"trainer_class"`
	SpellClickTeam uint8  `yaml:"spell_click_team"` // 0 = every team
}

func (c *CreatureTemplate) IsTrigger() bool { return c.FlagsExtra&CreatureFlagExtraTrigger != 0 }

// ModelInfo is the per display id model data.
type ModelInfo struct {
	DisplayID      uint32  `yaml:"display_id"`
	BoundingRadius float32 `yaml:"bounding_radius"`
	CombatReach    float32 `yaml:"combat_reach"`
	HostileID      uint32  `yaml:"hostile_id"` // model sent to hostile viewers, 0 = none
}

// SpellVisual pairs a spell visual with its hostile variant.
type SpellVisual struct {
	ID        uint32 `yaml:"id"`
	HostileID uint32 `yaml:"hostile_id"`
}

type creatureListFile struct {
	Creatures []CreatureTemplate `yaml:"creatures"`
}

type modelInfoListFile struct {
	Models []ModelInfo `yaml:"models"`
}

type spellVisualListFile struct {
	Visuals []SpellVisual `yaml:"visuals"`
}

// CreatureTable holds creature templates indexed by entry.
type CreatureTable struct {
	templates map[uint32]*CreatureTemplate
}

// LoadCreatureTable loads creature templates from a YAML file.
func LoadCreatureTable(path string) (*CreatureTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read creature_template: %w", err)
	}
	var f creatureListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse creature_template: %w", err)
	}
	return NewCreatureTable(f.Creatures), nil
}

// NewCreatureTable indexes an in-memory list.
func NewCreatureTable(list []CreatureTemplate) *CreatureTable {
	t := &CreatureTable{templates: make(map[uint32]*CreatureTemplate, len(list))}
	for i := range list {
		c := &list[i]
		t.templates[c.Entry] = c
	}
	return t
}

// Get returns a creature template by entry, or nil if not found.
func (t *CreatureTable) Get(entry uint32) *CreatureTemplate {
	if t == nil {
		return nil
	}
	return t.templates[entry]
}

func (t *CreatureTable) Count() int { return len(t.templates) }

// ModelInfoTable holds model info indexed by display id.
type ModelInfoTable struct {
	models map[uint32]*ModelInfo
}

// LoadModelInfoTable loads model info from a YAML file.
func LoadModelInfoTable(path string) (*ModelInfoTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model_info: %w", err)
	}
	var f modelInfoListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse model_info: %w", err)
	}
	t := &ModelInfoTable{models: make(map[uint32]*ModelInfo, len(f.Models))}
	for i := range f.Models {
		m := &f.Models[i]
		t.models[m.DisplayID] = m
	}
	return t, nil
}

func (t *ModelInfoTable) Get(displayID uint32) *ModelInfo {
	if t == nil {
		return nil
	}
	return t.models[displayID]
}

func (t *ModelInfoTable) Count() int { return len(t.models) }

// SpellVisualTable holds spell visuals indexed by id.
type SpellVisualTable struct {
	visuals map[uint32]*SpellVisual
}

// LoadSpellVisualTable loads spell visuals from a YAML file.
func LoadSpellVisualTable(path string) (*SpellVisualTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spell_visual: %w", err)
	}
	var f spellVisualListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spell_visual: %w", err)
	}
	t := &SpellVisualTable{visuals: make(map[uint32]*SpellVisual, len(f.Visuals))}
	for i := range f.Visuals {
		v := &f.Visuals[i]
		t.visuals[v.ID] = v
	}
	return t, nil
}

func (t *SpellVisualTable) Get(id uint32) *SpellVisual {
	if t == nil {
		return nil
	}
	return t.visuals[id]
}

func (t *SpellVisualTable) Count() int { return len(t.visuals) }
