package update

import (
	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
)

// writeDynamic writes the dynamic table section. A create block carries
// every non-empty table, a values block every table marked changed. A
// changed table is always re-sent whole.
func writeDynamic(w *packet.Writer, o *object.Object, viewer *object.Player, create bool) {
	if !hasDynamicSection(o, viewer, create) {
		w.WriteC(0)
		return
	}

	var tables uint32
	for t := 0; t < o.DynamicCount(); t++ {
		if (create && slotMask(o.DynamicTable(t)) != 0) || (!create && o.IsDynamicChanged(t)) {
			tables |= 1 << uint(t)
		}
	}
	if tables == 0 {
		w.WriteC(0)
		return
	}

	w.WriteC(1)
	w.WriteDU(tables)
	for t := 0; t < o.DynamicCount(); t++ {
		if tables&(1<<uint(t)) == 0 {
			continue
		}
		tab := o.DynamicTable(t)
		slots := slotMask(tab)
		if slots == 0 {
			w.WriteC(0)
			continue
		}
		w.WriteC(1)
		w.WriteDU(slots)
		for s, v := range tab {
			if slots&(1<<uint(s)) != 0 {
				w.WriteDU(v)
			}
		}
	}
}

// hasDynamicSection is false for bags, objects without tables and the
// values blocks of a player sent to somebody else.
func hasDynamicSection(o *object.Object, viewer *object.Player, create bool) bool {
	if o.DynamicCount() == 0 {
		return false
	}
	if it := o.ToItem(); it != nil && it.IsBag() {
		return false
	}
	if !create && o.TypeID() == object.TypeIDPlayer && o.GUID() != viewer.GUID() {
		return false
	}
	return true
}

func slotMask(tab [object.DynamicSlots]uint32) uint32 {
	var m uint32
	for s, v := range tab {
		if v != 0 {
			m |= 1 << uint(s)
		}
	}
	return m
}
