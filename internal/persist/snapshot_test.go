package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/replicore/internal/object"
)

func newPlayer(low uint32) *object.Player {
	p := object.NewPlayer()
	p.Create(low)
	p.SetMap(571, 2)
	p.Relocate(10, 20, 30, 1.5)
	return p
}

func TestCaptureApply(t *testing.T) {
	src := newPlayer(9)
	src.SetHealth(77)
	src.SetClass(4)
	src.SetUint32(object.PlayerFieldXP, 1234)

	snap, err := Capture(src)
	require.NoError(t, err)
	assert.Equal(t, object.ObjectEnd, snap.FieldStart)
	assert.Equal(t, uint32(571), snap.MapID)

	dst := object.NewPlayer()
	dst.Create(9)
	require.NoError(t, snap.Apply(dst))
	assert.Equal(t, uint32(77), dst.Uint32(object.UnitFieldHealth))
	assert.Equal(t, uint8(4), dst.Class())
	assert.Equal(t, uint32(1234), dst.Uint32(object.PlayerFieldXP))
	assert.Equal(t, uint32(571), dst.MapID())
	assert.Equal(t, uint32(2), dst.InstanceID())
	assert.Equal(t, float32(30), dst.Z())
	assert.True(t, dst.IsChanged(object.UnitFieldHealth), "loaded fields are dirty")
}

func TestApplyRejectsOtherObject(t *testing.T) {
	snap, err := Capture(newPlayer(1))
	require.NoError(t, err)

	other := object.NewPlayer()
	other.Create(2)
	assert.ErrorIs(t, snap.Apply(other), ErrSnapshotMismatch)

	u := object.NewUnit()
	u.Create(1, 100, object.HighUnit)
	assert.ErrorIs(t, snap.Apply(u), ErrSnapshotMismatch)

	same := object.NewPlayer()
	same.Create(1)
	snap.Fields = "1 2 3"
	assert.Error(t, snap.Apply(same))
}

func TestCaptureRequiresCreated(t *testing.T) {
	_, err := Capture(object.NewPlayer())
	assert.ErrorIs(t, err, ErrSnapshotMismatch)
}
