package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GameObjectTemplate holds the static data of a game object entry.
type GameObjectTemplate struct {
	Entry          uint32   `yaml:"entry"`
	Name           string   `yaml:"name"`
	Type           uint8    `yaml:"type"`
	DisplayID      uint32   `yaml:"display_id"`
	GroupLootRules bool     `yaml:"group_loot_rules"`
	ServerOnly     bool     `yaml:"server_only"`
	WorldEffectID  uint32   `yaml:"world_effect_id"`
	ManualAnim     bool     `yaml:"manual_anim"`
	Quests         []uint32 `yaml:"quests"` // sparkles for players with one of these incomplete
}

type gameObjectListFile struct {
	GameObjects []GameObjectTemplate `yaml:"gameobjects"`
}

// GameObjectTable holds game object templates indexed by entry.
type GameObjectTable struct {
	templates map[uint32]*GameObjectTemplate
}

// LoadGameObjectTable loads game object templates from a YAML file.
func LoadGameObjectTable(path string) (*GameObjectTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gameobject_template: %w", err)
	}
	var f gameObjectListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse gameobject_template: %w", err)
	}
	return NewGameObjectTable(f.GameObjects), nil
}

func NewGameObjectTable(list []GameObjectTemplate) *GameObjectTable {
	t := &GameObjectTable{templates: make(map[uint32]*GameObjectTemplate, len(list))}
	for i := range list {
		g := &list[i]
		t.templates[g.Entry] = g
	}
	return t
}

// Get returns a game object template by entry, or nil if not found.
func (t *GameObjectTable) Get(entry uint32) *GameObjectTemplate {
	if t == nil {
		return nil
	}
	return t.templates[entry]
}

func (t *GameObjectTable) Count() int { return len(t.templates) }
