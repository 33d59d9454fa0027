package data

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MapInfo holds metadata for a single map, loaded from map_list.yaml.
type MapInfo struct {
	MapID    uint32  `yaml:"map_id"`
	Name     string  `yaml:"name"`
	StartX   float32 `yaml:"start_x"`
	StartY   float32 `yaml:"start_y"`
	TileSize float32 `yaml:"tile_size"` // yards per tile edge
	Width    int     `yaml:"width"`     // tiles along X
	Height   int     `yaml:"height"`    // tiles along Y
	// Instance style maps override the default sight distance. 0 keeps
	// the configured default.
	VisibilityDistance float32 `yaml:"visibility_distance"`
	Instanceable       bool    `yaml:"instanceable"`
	Battleground       bool    `yaml:"battleground"`
}

// mapEntry stores loaded obstacle heights + metadata for one map.
type mapEntry struct {
	info    MapInfo
	heights []uint8 // flat array [x * height + y], row-major by X
}

// MapGeometry answers line of sight queries from coarse obstacle grids.
// Each tile holds the height in yards of whatever stands on it; 0 is open
// ground and 255 blocks at any height.
type MapGeometry struct {
	maps map[uint32]*mapEntry
}

const (
	// Eye height added to both ends of a sight line.
	losEyeHeight float32 = 2.0
	tileWall     uint8   = 255
)

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// LoadMapGeometry loads map metadata from YAML and obstacle grids from text files.
// yamlPath: path to map_list.yaml
// tileDir: directory containing {mapid}.txt tile files
func LoadMapGeometry(yamlPath, tileDir string) (*MapGeometry, error) {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", yamlPath, err)
	}
	var file mapListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}

	g := &MapGeometry{maps: make(map[uint32]*mapEntry, len(file.Maps))}
	for _, info := range file.Maps {
		e := &mapEntry{info: info}
		if info.Width > 0 && info.Height > 0 && info.TileSize > 0 {
			heights, err := loadTileFile(tileDir, info.MapID, info.Width, info.Height)
			if err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("map %d tiles: %w", info.MapID, err)
			}
			e.heights = heights
		}
		g.maps[info.MapID] = e
	}
	return g, nil
}

// NewMapGeometry builds geometry in memory. heights may be nil for a map
// without obstacles.
func NewMapGeometry(info MapInfo, heights []uint8) *MapGeometry {
	g := &MapGeometry{maps: make(map[uint32]*mapEntry)}
	g.Add(info, heights)
	return g
}

// Add registers or replaces one map.
func (g *MapGeometry) Add(info MapInfo, heights []uint8) {
	g.maps[info.MapID] = &mapEntry{info: info, heights: heights}
}

// loadTileFile reads a CSV tile file: each line is a row of comma-separated byte values.
// File rows are Y lines, columns are X values.
func loadTileFile(dir string, mapID uint32, xSize, ySize int) ([]uint8, error) {
	path := filepath.Join(dir, strconv.FormatUint(uint64(mapID), 10)+".txt")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	heights := make([]uint8, xSize*ySize)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	y := 0
	for scanner.Scan() && y < ySize {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		x := 0
		for _, tok := range strings.Split(line, ",") {
			if x >= xSize {
				break
			}
			val, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 8)
			if err != nil {
				val = 0
			}
			heights[x*ySize+y] = uint8(val)
			x++
		}
		y++
	}

	return heights, scanner.Err()
}

// Count returns the number of known maps.
func (g *MapGeometry) Count() int {
	if g == nil {
		return 0
	}
	return len(g.maps)
}

// GetInfo returns metadata for a map, or nil if not found.
func (g *MapGeometry) GetInfo(mapID uint32) *MapInfo {
	if g == nil {
		return nil
	}
	e := g.maps[mapID]
	if e == nil {
		return nil
	}
	return &e.info
}

// obstacle returns the obstacle height at world coordinates, 0 when out of
// bounds or the map has no grid.
func (e *mapEntry) obstacle(x, y float32) uint8 {
	if e.heights == nil {
		return 0
	}
	lx := int(math.Floor(float64((x - e.info.StartX) / e.info.TileSize)))
	ly := int(math.Floor(float64((y - e.info.StartY) / e.info.TileSize)))
	if lx < 0 || lx >= e.info.Width || ly < 0 || ly >= e.info.Height {
		return 0
	}
	return e.heights[lx*e.info.Height+ly]
}

// IsInLineOfSight samples the segment between both points (raised by eye
// height) once per half tile and fails on the first obstacle that stands
// taller than the sight line. Unknown maps never block.
func (g *MapGeometry) IsInLineOfSight(mapID uint32, x1, y1, z1, x2, y2, z2 float32) bool {
	if g == nil {
		return true
	}
	e := g.maps[mapID]
	if e == nil || e.heights == nil {
		return true
	}
	z1 += losEyeHeight
	z2 += losEyeHeight

	dx, dy := x2-x1, y2-y1
	dist := float32(math.Hypot(float64(dx), float64(dy)))
	steps := int(dist/(e.info.TileSize/2)) + 1
	for i := 1; i < steps; i++ {
		t := float32(i) / float32(steps)
		h := e.obstacle(x1+dx*t, y1+dy*t)
		if h == 0 {
			continue
		}
		if h == tileWall || float32(h) > z1+(z2-z1)*t {
			return false
		}
	}
	return true
}

// IsInMap checks if world coordinates are within the map grid bounds.
func (g *MapGeometry) IsInMap(mapID uint32, x, y float32) bool {
	e := g.maps[mapID]
	if e == nil {
		return false
	}
	ex := e.info.StartX + float32(e.info.Width)*e.info.TileSize
	ey := e.info.StartY + float32(e.info.Height)*e.info.TileSize
	return e.info.StartX <= x && x < ex && e.info.StartY <= y && y < ey
}

// SetObstacle changes one tile at runtime, e.g. when a door opens.
func (g *MapGeometry) SetObstacle(mapID uint32, x, y float32, height uint8) {
	e := g.maps[mapID]
	if e == nil || e.heights == nil {
		return
	}
	lx := int(math.Floor(float64((x - e.info.StartX) / e.info.TileSize)))
	ly := int(math.Floor(float64((y - e.info.StartY) / e.info.TileSize)))
	if lx < 0 || lx >= e.info.Width || ly < 0 || ly >= e.info.Height {
		return
	}
	e.heights[lx*e.info.Height+ly] = height
}
