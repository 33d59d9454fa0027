package data

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Content bundles every static table the server reads at startup.
type Content struct {
	Creatures    *CreatureTable
	Models       *ModelInfoTable
	SpellVisuals *SpellVisualTable
	Factions     *FactionTable
	GameObjects  *GameObjectTable
	LOS          *LOSOverrides
	Maps         *MapGeometry
}

// LoadContent loads all tables from dir. Map tiles are read from
// dir/maps; maps without a tile file simply have no geometry.
func LoadContent(dir string, log *zap.Logger) (*Content, error) {
	c := &Content{}
	var err error

	if c.Creatures, err = LoadCreatureTable(filepath.Join(dir, "creature_template.yaml")); err != nil {
		return nil, err
	}
	log.Info("生物模板載入完成", zap.Int("數量", c.Creatures.Count()))

	if c.Models, err = LoadModelInfoTable(filepath.Join(dir, "model_info.yaml")); err != nil {
		return nil, err
	}
	log.Info("模型資料載入完成", zap.Int("數量", c.Models.Count()))

	if c.SpellVisuals, err = LoadSpellVisualTable(filepath.Join(dir, "spell_visual.yaml")); err != nil {
		return nil, err
	}

	if c.Factions, err = LoadFactionTable(filepath.Join(dir, "faction_template.yaml")); err != nil {
		return nil, err
	}
	log.Info("陣營模板載入完成", zap.Int("數量", c.Factions.Count()))

	if c.GameObjects, err = LoadGameObjectTable(filepath.Join(dir, "gameobject_template.yaml")); err != nil {
		return nil, err
	}

	if c.LOS, err = LoadLOSOverrides(filepath.Join(dir, "los_override.yaml")); err != nil {
		return nil, err
	}

	if c.Maps, err = LoadMapGeometry(filepath.Join(dir, "map_list.yaml"), filepath.Join(dir, "maps")); err != nil {
		return nil, fmt.Errorf("load maps: %w", err)
	}
	log.Info("地圖資料載入完成", zap.Int("數量", c.Maps.Count()), zap.Int("視線例外", c.LOS.Count()))
	return c, nil
}

// CreatureTemplate implements update.ContentLookup.
func (c *Content) CreatureTemplate(entry uint32) (*CreatureTemplate, bool) {
	t := c.Creatures.Get(entry)
	return t, t != nil
}

func (c *Content) ModelInfo(displayID uint32) (*ModelInfo, bool) {
	m := c.Models.Get(displayID)
	return m, m != nil
}

func (c *Content) SpellVisual(id uint32) (*SpellVisual, bool) {
	v := c.SpellVisuals.Get(id)
	return v, v != nil
}
