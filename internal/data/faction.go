package data

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// FactionTemplate decides friend and foe between two faction template ids.
type FactionTemplate struct {
	ID           uint32   `yaml:"id"`
	Faction      uint32   `yaml:"faction"`
	OurMask      uint32   `yaml:"our_mask"`
	FriendlyMask uint32   `yaml:"friendly_mask"`
	HostileMask  uint32   `yaml:"hostile_mask"`
	Enemies      []uint32 `yaml:"enemies"`
	Friends      []uint32 `yaml:"friends"`
}

// IsFriendlyTo checks explicit lists first, then the group masks.
func (f *FactionTemplate) IsFriendlyTo(o *FactionTemplate) bool {
	if f.ID == o.ID {
		return true
	}
	if slices.Contains(f.Enemies, o.Faction) {
		return false
	}
	if slices.Contains(f.Friends, o.Faction) {
		return true
	}
	return f.FriendlyMask&o.OurMask != 0 || f.OurMask&o.FriendlyMask != 0
}

func (f *FactionTemplate) IsHostileTo(o *FactionTemplate) bool {
	if f.ID == o.ID {
		return false
	}
	if slices.Contains(f.Enemies, o.Faction) {
		return true
	}
	if slices.Contains(f.Friends, o.Faction) {
		return false
	}
	return f.HostileMask&o.OurMask != 0
}

type factionListFile struct {
	Factions []FactionTemplate `yaml:"factions"`
}

// FactionTable holds faction templates indexed by id.
type FactionTable struct {
	templates map[uint32]*FactionTemplate
}

// LoadFactionTable loads faction templates from a YAML file.
func LoadFactionTable(path string) (*FactionTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faction_template: %w", err)
	}
	var f factionListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse faction_template: %w", err)
	}
	return NewFactionTable(f.Factions), nil
}

// NewFactionTable indexes an in-memory list.
func NewFactionTable(list []FactionTemplate) *FactionTable {
	t := &FactionTable{templates: make(map[uint32]*FactionTemplate, len(list))}
	for i := range list {
		ft := &list[i]
		t.templates[ft.ID] = ft
	}
	return t
}

func (t *FactionTable) Get(id uint32) *FactionTemplate {
	if t == nil {
		return nil
	}
	return t.templates[id]
}

func (t *FactionTable) Count() int { return len(t.templates) }

// IsFriendly reports whether template a treats b as friendly. Unknown
// templates are neither friendly nor hostile.
func (t *FactionTable) IsFriendly(a, b uint32) bool {
	fa, fb := t.Get(a), t.Get(b)
	if fa == nil || fb == nil {
		return false
	}
	return fa.IsFriendlyTo(fb)
}

func (t *FactionTable) IsHostile(a, b uint32) bool {
	fa, fb := t.Get(a), t.Get(b)
	if fa == nil || fb == nil {
		return false
	}
	return fa.IsHostileTo(fb)
}
