package object

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IndexError is raised (via panic) when a field, byte lane or dynamic slot
// outside the object's schema is addressed. Such an access is a programming
// error; callers never get a clamped or silently ignored write.
type IndexError struct {
	Op    string
	Index int
	Limit int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("object: %s index %d out of range (limit %d)", e.Op, e.Index, e.Limit)
}

// FieldStore holds the replicated state of one object: a fixed array of 32-bit
// slots with a dirty flag each, plus fixed 32-slot dynamic tables that are
// dirtied as a whole.
//
// Not safe for concurrent use; an object is only touched by its partition's
// tick goroutine.
type FieldStore struct {
	values         []uint32
	changed        []bool
	dynamic        [][DynamicSlots]uint32
	dynamicChanged []bool

	// onDirty fires on every effective change. The owning Object turns it
	// into a single registry insertion per flush cycle.
	onDirty func()
}

func (s *FieldStore) init(count, tables int) {
	s.values = make([]uint32, count)
	s.changed = make([]bool, count)
	s.dynamic = make([][DynamicSlots]uint32, tables)
	s.dynamicChanged = make([]bool, tables)
}

// ValuesCount is the schema size. Zero until Create.
func (s *FieldStore) ValuesCount() int { return len(s.values) }

// DynamicCount is the number of dynamic tables.
func (s *FieldStore) DynamicCount() int { return len(s.dynamic) }

func (s *FieldStore) check(op string, index, width int) {
	if index < 0 || index+width > len(s.values) {
		panic(&IndexError{Op: op, Index: index, Limit: len(s.values)})
	}
}

func (s *FieldStore) checkDynamic(op string, table, slot int) {
	if table < 0 || table >= len(s.dynamic) {
		panic(&IndexError{Op: op + " table", Index: table, Limit: len(s.dynamic)})
	}
	if slot < 0 || slot >= DynamicSlots {
		panic(&IndexError{Op: op + " slot", Index: slot, Limit: DynamicSlots})
	}
}

func (s *FieldStore) touch(index int) {
	s.changed[index] = true
	if s.onDirty != nil {
		s.onDirty()
	}
}

// ---------- getters ----------

func (s *FieldStore) Uint32(index int) uint32 {
	s.check("get", index, 1)
	return s.values[index]
}

func (s *FieldStore) Int32(index int) int32 {
	return int32(s.Uint32(index))
}

func (s *FieldStore) Float(index int) float32 {
	return math.Float32frombits(s.Uint32(index))
}

// Uint64 reads a 64-bit value stored low part first.
func (s *FieldStore) Uint64(index int) uint64 {
	s.check("get64", index, 2)
	return uint64(s.values[index]) | uint64(s.values[index+1])<<32
}

func (s *FieldStore) Guid(index int) GUID { return GUID(s.Uint64(index)) }

// Byte reads byte lane offset (0..3) of a slot.
func (s *FieldStore) Byte(index int, offset uint8) uint8 {
	if offset > 3 {
		panic(&IndexError{Op: "byte offset", Index: int(offset), Limit: 4})
	}
	return uint8(s.Uint32(index) >> (offset * 8))
}

// Uint16 reads half-word lane offset (0..1) of a slot.
func (s *FieldStore) Uint16(index int, offset uint8) uint16 {
	if offset > 1 {
		panic(&IndexError{Op: "uint16 offset", Index: int(offset), Limit: 2})
	}
	return uint16(s.Uint32(index) >> (offset * 16))
}

func (s *FieldStore) HasFlag(index int, flag uint32) bool {
	return s.Uint32(index)&flag != 0
}

func (s *FieldStore) HasByteFlag(index int, offset uint8, flag uint8) bool {
	return s.Byte(index, offset)&flag != 0
}

// IsChanged reports the dirty flag of one slot.
func (s *FieldStore) IsChanged(index int) bool {
	s.check("changed", index, 1)
	return s.changed[index]
}

// ---------- setters ----------

func (s *FieldStore) SetUint32(index int, v uint32) {
	s.check("set", index, 1)
	if s.values[index] == v {
		return
	}
	s.values[index] = v
	s.touch(index)
}

func (s *FieldStore) SetInt32(index int, v int32) { s.SetUint32(index, uint32(v)) }

// SetFloat compares bit patterns, so 0.0 -> -0.0 counts as a change.
func (s *FieldStore) SetFloat(index int, v float32) { s.SetUint32(index, math.Float32bits(v)) }

// SetUint64 writes two adjacent slots and dirties both when anything differs.
func (s *FieldStore) SetUint64(index int, v uint64) {
	s.check("set64", index, 2)
	if s.Uint64(index) == v {
		return
	}
	s.values[index] = uint32(v)
	s.values[index+1] = uint32(v >> 32)
	s.changed[index+1] = true
	s.touch(index)
}

func (s *FieldStore) SetGuid(index int, g GUID) { s.SetUint64(index, uint64(g)) }

// SetByte replaces byte lane offset (0..3) of a slot.
func (s *FieldStore) SetByte(index int, offset uint8, v uint8) {
	if offset > 3 {
		panic(&IndexError{Op: "byte offset", Index: int(offset), Limit: 4})
	}
	cur := s.Uint32(index)
	shift := offset * 8
	s.SetUint32(index, cur&^(0xFF<<shift)|uint32(v)<<shift)
}

// SetUint16 replaces half-word lane offset (0..1) of a slot.
func (s *FieldStore) SetUint16(index int, offset uint8, v uint16) {
	if offset > 1 {
		panic(&IndexError{Op: "uint16 offset", Index: int(offset), Limit: 2})
	}
	cur := s.Uint32(index)
	shift := offset * 16
	s.SetUint32(index, cur&^(0xFFFF<<shift)|uint32(v)<<shift)
}

func (s *FieldStore) SetFlag(index int, flag uint32) {
	s.SetUint32(index, s.Uint32(index)|flag)
}

func (s *FieldStore) RemoveFlag(index int, flag uint32) {
	s.SetUint32(index, s.Uint32(index)&^flag)
}

func (s *FieldStore) ToggleFlag(index int, flag uint32) {
	if s.HasFlag(index, flag) {
		s.RemoveFlag(index, flag)
	} else {
		s.SetFlag(index, flag)
	}
}

func (s *FieldStore) ApplyFlag(index int, flag uint32, apply bool) {
	if apply {
		s.SetFlag(index, flag)
	} else {
		s.RemoveFlag(index, flag)
	}
}

func (s *FieldStore) SetByteFlag(index int, offset uint8, flag uint8) {
	s.SetByte(index, offset, s.Byte(index, offset)|flag)
}

func (s *FieldStore) RemoveByteFlag(index int, offset uint8, flag uint8) {
	s.SetByte(index, offset, s.Byte(index, offset)&^flag)
}

func (s *FieldStore) ApplyByteFlag(index int, offset uint8, flag uint8, apply bool) {
	if apply {
		s.SetByteFlag(index, offset, flag)
	} else {
		s.RemoveByteFlag(index, offset, flag)
	}
}

// AddUint64 stores v only when the slot pair is empty. Reports whether it did.
func (s *FieldStore) AddUint64(index int, v uint64) bool {
	if v == 0 || s.Uint64(index) != 0 {
		return false
	}
	s.SetUint64(index, v)
	return true
}

// RemoveUint64 clears the slot pair only when it holds v.
func (s *FieldStore) RemoveUint64(index int, v uint64) bool {
	if v == 0 || s.Uint64(index) != v {
		return false
	}
	s.SetUint64(index, 0)
	return true
}

// ApplyModUint32 adds or subtracts val, clamping at zero.
func (s *FieldStore) ApplyModUint32(index int, val int32, apply bool) {
	cur := int64(s.Int32(index))
	if apply {
		cur += int64(val)
	} else {
		cur -= int64(val)
	}
	if cur < 0 {
		cur = 0
	}
	s.SetUint32(index, uint32(cur))
}

func (s *FieldStore) ApplyModInt32(index int, val int32, apply bool) {
	cur := s.Int32(index)
	if apply {
		cur += val
	} else {
		cur -= val
	}
	s.SetInt32(index, cur)
}

func (s *FieldStore) ApplyModSignedFloat(index int, val float32, apply bool) {
	cur := s.Float(index)
	if apply {
		cur += val
	} else {
		cur -= val
	}
	s.SetFloat(index, cur)
}

func (s *FieldStore) ApplyModPositiveFloat(index int, val float32, apply bool) {
	cur := s.Float(index)
	if apply {
		cur += val
	} else {
		cur -= val
	}
	if cur < 0 {
		cur = 0
	}
	s.SetFloat(index, cur)
}

// ApplyPercentModFloat scales the slot by (100+val)% or its inverse.
func (s *FieldStore) ApplyPercentModFloat(index int, val float32, apply bool) {
	if val == -100 && !apply {
		return
	}
	mult := (100 + val) / 100
	if !apply {
		mult = 100 / (100 + val)
	}
	s.SetFloat(index, s.Float(index)*mult)
}

func (s *FieldStore) SetStatInt32(index int, v int32) {
	if v < 0 {
		v = 0
	}
	s.SetUint32(index, uint32(v))
}

func (s *FieldStore) SetStatFloat(index int, v float32) {
	if v < 0 {
		v = 0
	}
	s.SetFloat(index, v)
}

// ForceValuesUpdateAtIndex dirties a slot without changing it, so the next
// values block resends it.
func (s *FieldStore) ForceValuesUpdateAtIndex(index int) {
	s.check("force", index, 1)
	s.touch(index)
}

// UpdateUint32 writes a slot without dirtying it. Used for server-side
// bookkeeping that the client derives on its own.
func (s *FieldStore) UpdateUint32(index int, v uint32) {
	s.check("update", index, 1)
	s.values[index] = v
}

func (s *FieldStore) UpdateFloat(index int, v float32) {
	s.UpdateUint32(index, math.Float32bits(v))
}

// ---------- dynamic tables ----------

func (s *FieldStore) DynamicUint32(table, slot int) uint32 {
	s.checkDynamic("dynamic get", table, slot)
	return s.dynamic[table][slot]
}

// SetDynamicUint32 dirties the whole table on change.
func (s *FieldStore) SetDynamicUint32(table, slot int, v uint32) {
	s.checkDynamic("dynamic set", table, slot)
	if s.dynamic[table][slot] == v {
		return
	}
	s.dynamic[table][slot] = v
	s.dynamicChanged[table] = true
	if s.onDirty != nil {
		s.onDirty()
	}
}

func (s *FieldStore) IsDynamicChanged(table int) bool {
	s.checkDynamic("dynamic changed", table, 0)
	return s.dynamicChanged[table]
}

// DynamicTable returns a copy of a table.
func (s *FieldStore) DynamicTable(table int) [DynamicSlots]uint32 {
	s.checkDynamic("dynamic table", table, 0)
	return s.dynamic[table]
}

// ---------- dirty state ----------

// HasChanges reports whether any slot or table is dirty.
func (s *FieldStore) HasChanges() bool {
	for _, c := range s.changed {
		if c {
			return true
		}
	}
	for _, c := range s.dynamicChanged {
		if c {
			return true
		}
	}
	return false
}

func (s *FieldStore) resetChanges() {
	clear(s.changed)
	clear(s.dynamicChanged)
}

// ---------- text snapshot ----------

// ConcatFields renders count slots starting at start as space separated
// decimals, each followed by a space.
func (s *FieldStore) ConcatFields(start, count int) string {
	s.check("concat", start, count)
	var b strings.Builder
	for i := start; i < start+count; i++ {
		b.WriteString(strconv.FormatUint(uint64(s.values[i]), 10))
		b.WriteByte(' ')
	}
	return b.String()
}

// LoadIntoDataField parses a ConcatFields string back into count slots
// starting at start. Loaded slots are marked dirty.
func (s *FieldStore) LoadIntoDataField(data string, start, count int) error {
	if data == "" {
		return nil
	}
	s.check("load", start, count)
	tokens := strings.Fields(data)
	if len(tokens) != count {
		return fmt.Errorf("load field range %d+%d: got %d values", start, count, len(tokens))
	}
	for i, tok := range tokens {
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return fmt.Errorf("load field %d: %w", start+i, err)
		}
		s.values[start+i] = uint32(v)
		s.touch(start + i)
	}
	return nil
}
