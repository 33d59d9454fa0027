package persist

import (
	"errors"
	"fmt"

	"github.com/l1jgo/replicore/internal/object"
)

var ErrSnapshotMismatch = errors.New("persist: snapshot does not fit object")

// Snapshot is the saved field state of one world object. Fields holds the
// values from FieldStart to the end of the object's field range, in the
// text form of FieldStore.ConcatFields. The object header is not saved;
// it is rebuilt by Create.
type Snapshot struct {
	GUID        object.GUID
	TypeID      object.TypeID
	MapID       uint32
	InstanceID  uint32
	X, Y, Z, O  float32
	FieldStart  int
	Fields      string
}

// Capture snapshots a created world object.
func Capture(e object.Entity) (*Snapshot, error) {
	b := e.Base()
	w := b.ToWorld()
	if w == nil || !b.IsCreated() {
		return nil, ErrSnapshotMismatch
	}
	return &Snapshot{
		GUID:       b.GUID(),
		TypeID:     b.TypeID(),
		MapID:      w.MapID(),
		InstanceID: w.InstanceID(),
		X:          w.X(),
		Y:          w.Y(),
		Z:          w.Z(),
		O:          w.Orientation(),
		FieldStart: object.ObjectEnd,
		Fields:     b.ConcatFields(object.ObjectEnd, b.ValuesCount()-object.ObjectEnd),
	}, nil
}

// Apply loads the snapshot into e, which must already be created with the
// same GUID and type and must not be in world yet.
func (s *Snapshot) Apply(e object.Entity) error {
	b := e.Base()
	w := b.ToWorld()
	if w == nil || b.GUID() != s.GUID || b.TypeID() != s.TypeID {
		return ErrSnapshotMismatch
	}
	if b.IsInWorld() {
		return fmt.Errorf("apply snapshot %s: object is in world", s.GUID)
	}
	if s.FieldStart < object.ObjectEnd || s.FieldStart > b.ValuesCount() {
		return fmt.Errorf("apply snapshot %s: field start %d: %w", s.GUID, s.FieldStart, ErrSnapshotMismatch)
	}
	if err := b.LoadIntoDataField(s.Fields, s.FieldStart, b.ValuesCount()-s.FieldStart); err != nil {
		return fmt.Errorf("apply snapshot %s: %w", s.GUID, err)
	}
	w.SetMap(s.MapID, s.InstanceID)
	w.Relocate(s.X, s.Y, s.Z, s.O)
	return nil
}
