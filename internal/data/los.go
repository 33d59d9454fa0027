package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LOSOverride lets a creature entry see and be seen through geometry on
// one map. Used for bosses that fight from inside level art.
type LOSOverride struct {
	MapID uint32 `yaml:"map_id"`
	Entry uint32 `yaml:"entry"`
	Note  string `yaml:"note"`
}

type losOverrideFile struct {
	Overrides []LOSOverride `yaml:"overrides"`
}

type losKey struct {
	mapID uint32
	entry uint32
}

// LOSOverrides is the set of (map, creature entry) pairs exempt from line
// of sight checks.
type LOSOverrides struct {
	set map[losKey]struct{}
}

// LoadLOSOverrides loads the exemption list. A missing file yields an
// empty list.
func LoadLOSOverrides(path string) (*LOSOverrides, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLOSOverrides(nil), nil
		}
		return nil, fmt.Errorf("read los_override: %w", err)
	}
	var f losOverrideFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse los_override: %w", err)
	}
	return NewLOSOverrides(f.Overrides), nil
}

func NewLOSOverrides(list []LOSOverride) *LOSOverrides {
	o := &LOSOverrides{set: make(map[losKey]struct{}, len(list))}
	for _, e := range list {
		o.set[losKey{e.MapID, e.Entry}] = struct{}{}
	}
	return o
}

// Exempt reports whether either creature entry skips LOS on mapID. Pass 0
// for an object that is not a creature.
func (o *LOSOverrides) Exempt(mapID, entryA, entryB uint32) bool {
	if o == nil {
		return false
	}
	for _, e := range [2]uint32{entryA, entryB} {
		if e == 0 {
			continue
		}
		if _, ok := o.set[losKey{mapID, e}]; ok {
			return true
		}
	}
	return false
}

func (o *LOSOverrides) Count() int {
	if o == nil {
		return 0
	}
	return len(o.set)
}
