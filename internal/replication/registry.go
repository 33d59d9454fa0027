package replication

import "github.com/l1jgo/replicore/internal/object"

// Registry is the set of objects with unsent field changes in one
// partition. Registration is idempotent; order of first registration is
// kept so flushes are deterministic.
//
// Removal leaves a nil slot behind; the queue is compacted once dead slots
// outnumber live ones.
type Registry struct {
	index map[object.GUID]int
	queue []object.Entity
	dead  int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[object.GUID]int)}
}

// AddUpdateObject implements object.UpdateQueue.
func (r *Registry) AddUpdateObject(e object.Entity) {
	g := e.GUID()
	if _, ok := r.index[g]; ok {
		return
	}
	r.index[g] = len(r.queue)
	r.queue = append(r.queue, e)
}

// RemoveUpdateObject implements object.UpdateQueue.
func (r *Registry) RemoveUpdateObject(e object.Entity) {
	g := e.GUID()
	i, ok := r.index[g]
	if !ok {
		return
	}
	r.queue[i] = nil
	delete(r.index, g)
	r.dead++
	if len(r.index) == 0 {
		clear(r.queue)
		r.queue = r.queue[:0]
		r.dead = 0
	} else if r.dead > len(r.index) {
		r.compact()
	}
}

func (r *Registry) compact() {
	n := 0
	for _, e := range r.queue {
		if e == nil {
			continue
		}
		r.queue[n] = e
		r.index[e.GUID()] = n
		n++
	}
	clear(r.queue[n:])
	r.queue = r.queue[:n]
	r.dead = 0
}

func (r *Registry) Len() int { return len(r.index) }

func (r *Registry) Contains(g object.GUID) bool {
	_, ok := r.index[g]
	return ok
}

// pending returns the registered objects in registration order. The
// registry is left untouched; callers remove each object once handled.
func (r *Registry) pending() []object.Entity {
	out := make([]object.Entity, 0, len(r.index))
	for _, e := range r.queue {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
