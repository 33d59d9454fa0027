package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadContentSampleData(t *testing.T) {
	c, err := LoadContent(filepath.Join("..", "..", "data"), zap.NewNop())
	require.NoError(t, err)

	wolf, ok := c.CreatureTemplate(100)
	require.True(t, ok)
	assert.Equal(t, "Forest Wolf", wolf.Name)
	stalker, _ := c.CreatureTemplate(15214)
	assert.True(t, stalker.IsTrigger())

	m, ok := c.ModelInfo(20520)
	require.True(t, ok)
	assert.Equal(t, uint32(20521), m.HostileID)
	_, ok = c.SpellVisual(5622)
	assert.True(t, ok)

	assert.True(t, c.Factions.IsHostile(1, 14))
	assert.True(t, c.Factions.IsHostile(1, 2))
	assert.True(t, c.Factions.IsFriendly(1, 12))
	assert.False(t, c.Factions.IsFriendly(1, 999), "unknown template")

	assert.Equal(t, []uint32{11123}, c.GameObjects.Get(180001).Quests)
	assert.True(t, c.LOS.Exempt(571, 0, 29811))
	assert.False(t, c.LOS.Exempt(1, 29811, 0))

	info := c.Maps.GetInfo(489)
	require.NotNil(t, info)
	assert.True(t, info.Battleground)
	assert.Equal(t, float32(533), info.VisibilityDistance)
}

func TestSampleMapWallBlocksSight(t *testing.T) {
	c, err := LoadContent(filepath.Join("..", "..", "data"), zap.NewNop())
	require.NoError(t, err)

	assert.False(t, c.Maps.IsInLineOfSight(0, -100, 0, 0, 100, 0, 0), "wall column at x 0..64")
	assert.True(t, c.Maps.IsInLineOfSight(0, -100, -300, 0, 100, -300, 0))
	assert.True(t, c.Maps.IsInLineOfSight(1, -100, 0, 0, 100, 0, 0), "no grid")
	assert.True(t, c.Maps.IsInMap(0, 319, -320))
	assert.False(t, c.Maps.IsInMap(0, 320, 0))
}

func TestLoadMapGeometryTiles(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "map_list.yaml")
	require.NoError(t, os.WriteFile(list, []byte("maps:\n  - map_id: 7\n    tile_size: 1\n    width: 3\n    height: 2\n  - map_id: 8\n    tile_size: 1\n    width: 2\n    height: 2\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "maps"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maps", "7.txt"), []byte("# comment\n0,255,0\n0,0,x\n"), 0o644))

	g, err := LoadMapGeometry(list, filepath.Join(dir, "maps"))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Count())
	assert.Equal(t, uint8(255), g.maps[7].obstacle(1.5, 0.5))
	assert.Equal(t, uint8(0), g.maps[7].obstacle(2.5, 1.5), "bad token reads as open")
	assert.Nil(t, g.maps[8].heights, "missing tile file")

	g.SetObstacle(7, 1.5, 0.5, 0)
	assert.Equal(t, uint8(0), g.maps[7].obstacle(1.5, 0.5))
}

func TestLoadContentMissingTable(t *testing.T) {
	_, err := LoadContent(t.TempDir(), zap.NewNop())
	assert.Error(t, err)
}
