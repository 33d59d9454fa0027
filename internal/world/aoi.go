package world

import (
	"math"

	"github.com/l1jgo/replicore/internal/object"
)

// Grid is a cell based index of the objects in one partition. Range
// queries visit every cell the radius touches and then filter by exact 2D
// distance. Accessed only from the goroutine ticking the partition, no
// locks.
type Grid struct {
	cellSize float32
	cells    map[cellKey]map[object.GUID]object.Entity
	where    map[object.GUID]cellKey
}

// DefaultCellSize keeps a query at default visibility within a 5x5 block.
const DefaultCellSize float32 = 40

type cellKey struct {
	cx int32
	cy int32
}

func NewGrid(cellSize float32) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[object.GUID]object.Entity),
		where:    make(map[object.GUID]cellKey),
	}
}

func (g *Grid) toCell(v float32) int32 {
	return int32(math.Floor(float64(v / g.cellSize)))
}

func (g *Grid) key(x, y float32) cellKey {
	return cellKey{cx: g.toCell(x), cy: g.toCell(y)}
}

// Add places an object at its current position. Objects without a
// position are ignored.
func (g *Grid) Add(e object.Entity) {
	w := e.Base().ToWorld()
	if w == nil {
		return
	}
	if _, ok := g.where[e.GUID()]; ok {
		g.Move(e)
		return
	}
	g.put(e, g.key(w.X(), w.Y()))
}

func (g *Grid) put(e object.Entity, k cellKey) {
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[object.GUID]object.Entity)
		g.cells[k] = cell
	}
	cell[e.GUID()] = e
	g.where[e.GUID()] = k
}

// Remove takes an object out of the grid.
func (g *Grid) Remove(guid object.GUID) {
	k, ok := g.where[guid]
	if !ok {
		return
	}
	delete(g.where, guid)
	if cell := g.cells[k]; cell != nil {
		delete(cell, guid)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move re-buckets an object after its position changed.
func (g *Grid) Move(e object.Entity) {
	w := e.Base().ToWorld()
	if w == nil {
		return
	}
	newK := g.key(w.X(), w.Y())
	oldK, ok := g.where[e.GUID()]
	if ok && oldK == newK {
		return
	}
	g.Remove(e.GUID())
	g.put(e, newK)
}

func (g *Grid) Contains(guid object.GUID) bool {
	_, ok := g.where[guid]
	return ok
}

func (g *Grid) Len() int { return len(g.where) }

// QueryNearby returns every object within radius of center, center
// included. Implements replication.Index.
func (g *Grid) QueryNearby(center *object.WorldObject, radius float32) []object.Entity {
	minX, maxX := g.toCell(center.X()-radius), g.toCell(center.X()+radius)
	minY, maxY := g.toCell(center.Y()-radius), g.toCell(center.Y()+radius)
	r2 := radius * radius

	var result []object.Entity
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			for _, e := range g.cells[cellKey{cx: cx, cy: cy}] {
				if e.Base().ToWorld().ExactDist2dSq(center) <= r2 {
					result = append(result, e)
				}
			}
		}
	}
	return result
}
