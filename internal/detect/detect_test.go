package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/replicore/internal/data"
	"github.com/l1jgo/replicore/internal/object"
)

type nopQueue struct{}

func (nopQueue) AddUpdateObject(object.Entity)    {}
func (nopQueue) RemoveUpdateObject(object.Entity) {}

type fakeGroups map[object.GUID]object.GUID

func (f fakeGroups) SameGroup(a, b *object.Player) bool {
	ga, ok := f[a.GUID()]
	return ok && ga == f[b.GUID()]
}

func (f fakeGroups) SameRaid(a, b *object.Player) bool { return f.SameGroup(a, b) }

type blockAll struct{}

func (blockAll) IsInLineOfSight(uint32, float32, float32, float32, float32, float32, float32) bool {
	return false
}

func newPlayer(low uint32, x, y float32) *object.Player {
	p := object.NewPlayer()
	p.Create(low)
	p.SetMap(0, 0)
	p.Relocate(x, y, 0, 0)
	p.SetTeam(object.TeamAlliance)
	p.SetHealth(100)
	p.AddToWorld(nopQueue{})
	return p
}

func newCreature(low, entry uint32, x, y float32) *object.Unit {
	u := object.NewUnit()
	u.Create(low, entry, object.HighUnit)
	u.SetMap(0, 0)
	u.Relocate(x, y, 0, 0)
	u.SetLevel(1)
	u.SetHealth(100)
	u.AddToWorld(nopQueue{})
	return u
}

func newDetector(deps Deps) *Detector {
	return New(DefaultConfig(), deps, nil)
}

func TestStealthDetectRange(t *testing.T) {
	d := newDetector(Deps{})
	seer := newCreature(1, 100, 0, 0)
	target := newPlayer(2, 5, 0)
	target.Stealth.AddFlag(object.StealthGeneral)

	// 30 points at 0.3 yd plus 1.5 combat reach
	assert.InDelta(t, 10.5, d.StealthDetectRange(seer, target, object.StealthGeneral), 0.001)

	target.Stealth.SetValue(object.StealthGeneral, 10)
	assert.InDelta(t, 7.5, d.StealthDetectRange(seer, target, object.StealthGeneral), 0.001)

	seer.StealthDetect.SetValue(object.StealthGeneral, 10)
	seer.SetLevel(3)
	assert.InDelta(t, 13.5, d.StealthDetectRange(seer, target, object.StealthGeneral), 0.001)

	seer.SetLevel(80)
	assert.Equal(t, DefaultMaxStealthDetectRange, d.StealthDetectRange(seer, target, object.StealthGeneral))
}

func TestCanDetectStealthOf(t *testing.T) {
	d := newDetector(Deps{})
	seer := newCreature(1, 100, 0, 0)
	target := newPlayer(2, 0, 0)
	target.Stealth.AddFlag(object.StealthGeneral)

	tests := []struct {
		name string
		x, y float32
		want bool
	}{
		{"well inside", 5, 0, true},
		{"just inside", 10.4, 0, true},
		{"just outside", 10.6, 0, false},
		{"behind", -3, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target.Relocate(tt.x, tt.y, 0, 0)
			assert.Equal(t, tt.want, d.CanDetectStealthOf(seer, target))
		})
	}

	t.Run("detect aura ignores range", func(t *testing.T) {
		target.Relocate(25, 0, 0, 0)
		seer.Auras.DetectStealthMask = 1 << object.StealthGeneral
		defer func() { seer.Auras.DetectStealthMask = 0 }()
		assert.True(t, d.CanDetectStealthOf(seer, target))
	})

	t.Run("no stealth", func(t *testing.T) {
		other := newPlayer(3, -40, 0)
		assert.True(t, d.CanDetectStealthOf(seer, other))
	})
}

func TestStealthRangeIsCapped(t *testing.T) {
	d := newDetector(Deps{})
	seer := newCreature(1, 100, 0, 0)
	seer.SetLevel(80)
	target := newPlayer(2, 29.5, 0)
	target.Stealth.AddFlag(object.StealthGeneral)
	assert.True(t, d.CanDetectStealthOf(seer, target))

	target.Relocate(31, 0, 0, 0)
	assert.False(t, d.CanDetectStealthOf(seer, target))
}

func TestCanDetectInvisibilityOf(t *testing.T) {
	d := newDetector(Deps{})
	seer := newPlayer(1, 0, 0)
	target := newCreature(2, 100, 3, 0)

	assert.True(t, d.CanDetectInvisibilityOf(seer, target))

	target.Invisibility.AddFlag(object.InvisibilityGeneral)
	target.Invisibility.SetValue(object.InvisibilityGeneral, 40)
	assert.False(t, d.CanDetectInvisibilityOf(seer, target), "type not detected")

	seer.InvisibilityDetect.AddFlag(object.InvisibilityGeneral)
	seer.InvisibilityDetect.SetValue(object.InvisibilityGeneral, 30)
	assert.False(t, d.CanDetectInvisibilityOf(seer, target), "magnitude too low")

	seer.InvisibilityDetect.SetValue(object.InvisibilityGeneral, 40)
	assert.True(t, d.CanDetectInvisibilityOf(seer, target))
}

func TestInvisibleSeerNeedsToBeSeenBack(t *testing.T) {
	d := newDetector(Deps{})
	seer := newPlayer(1, 0, 0)
	target := newCreature(2, 100, 3, 0)
	seer.Invisibility.AddFlag(object.InvisibilityGeneral)

	assert.False(t, d.CanDetectInvisibilityOf(seer, target))

	seer.Auras.SeeWhileInvisible = true
	assert.True(t, d.CanDetectInvisibilityOf(seer, target))

	target.InvisibilityDetect.AddFlag(object.InvisibilityGeneral)
	seer.Auras.SeeWhileInvisible = false
	assert.True(t, d.CanDetectInvisibilityOf(seer, target))
}

func TestCanSeeOrDetectRange(t *testing.T) {
	d := newDetector(Deps{})
	seer := newPlayer(1, 0, 0)
	near := newCreature(2, 100, 80, 0)
	far := newCreature(3, 100, 120, 0)

	assert.True(t, d.CanSeeOrDetect(seer, seer, false, true))
	assert.True(t, d.CanSeeOrDetect(seer, near, false, true))
	assert.False(t, d.CanSeeOrDetect(seer, far, false, true))
	assert.True(t, d.CanSeeOrDetect(seer, far, false, false), "no distance check")

	far.SetActive(true)
	assert.True(t, d.CanSeeOrDetect(seer, far, false, true), "active objects use max range")
}

func TestCanSeeOrDetectPhaseAndMap(t *testing.T) {
	d := newDetector(Deps{})
	seer := newPlayer(1, 0, 0)
	target := newCreature(2, 100, 5, 0)

	target.SetPhaseMask(2)
	assert.False(t, d.CanSeeOrDetect(seer, target, false, true))

	target.SetPhaseMask(object.PhaseMaskNormal)
	target.SetMap(1, 0)
	assert.False(t, d.CanSeeOrDetect(seer, target, false, true))
}

func TestCanSeeOrDetectGM(t *testing.T) {
	d := newDetector(Deps{})
	seer := newPlayer(1, 0, 0)
	hidden := newCreature(2, 100, 5, 0)
	hidden.SetVisible(false)

	assert.False(t, d.CanSeeOrDetect(seer, hidden, false, true))

	seer.SetGameMaster(object.SecModerator)
	assert.False(t, d.CanSeeOrDetect(seer, hidden, false, true), "level below object")

	seer.SetGameMaster(object.SecGameMaster)
	assert.True(t, d.CanSeeOrDetect(seer, hidden, false, true))

	stealthy := newCreature(3, 100, 5, 0)
	stealthy.Invisibility.AddFlag(object.InvisibilityGeneral)
	stealthy.Invisibility.SetValue(object.InvisibilityGeneral, 1000)
	assert.True(t, d.CanSeeOrDetect(seer, stealthy, false, true), "GM sees through invisibility")
}

func TestCanSeeOrDetectGhost(t *testing.T) {
	groups := fakeGroups{}
	d := newDetector(Deps{Groups: groups})
	seer := newPlayer(1, 0, 0)
	ghost := newPlayer(2, 5, 0)
	ghost.ServerSideVisibility.SetValue(object.ServerSideVisibilityGhost, object.GhostVisibilityGhost)

	assert.False(t, d.CanSeeOrDetect(seer, ghost, false, true))

	g := object.MakeGUID(1, 0, object.HighGroup)
	groups[seer.GUID()] = g
	groups[ghost.GUID()] = g
	assert.True(t, d.CanSeeOrDetect(seer, ghost, false, true), "party member sees the ghost")

	ghost.SetTeam(object.TeamHorde)
	assert.False(t, d.CanSeeOrDetect(seer, ghost, false, true))

	seer.ServerSideVisibilityDetect.SetValue(object.ServerSideVisibilityGhost, object.GhostVisibilityGhost)
	assert.True(t, d.CanSeeOrDetect(seer, ghost, false, true), "dead viewer sees ghosts")
}

func TestCanSeeOrDetectPersonalList(t *testing.T) {
	d := newDetector(Deps{})
	seer := newPlayer(1, 0, 0)
	other := newPlayer(3, 0, 1)
	target := newCreature(2, 100, 5, 0)

	target.AddToPersonalVisibilityList(other.GUID())
	assert.False(t, d.CanSeeOrDetect(seer, target, false, true))
	assert.True(t, d.CanSeeOrDetect(other, target, false, true))

	g := object.MakeGUID(7, 0, object.HighGroup)
	seer.SetGroup(g, 0)
	target.AddToPersonalVisibilityList(g)
	assert.True(t, d.CanSeeOrDetect(seer, target, false, true))

	target.AddHideFor(seer.GUID())
	assert.False(t, d.CanSeeOrDetect(seer, target, false, true))
}

func TestCanSeeOrDetectDespawned(t *testing.T) {
	d := newDetector(Deps{})
	seer := newPlayer(1, 0, 0)
	target := newCreature(2, 100, 5, 0)
	target.SetDespawned(true)
	assert.False(t, d.CanSeeOrDetect(seer, target, false, true))

	target.RemoveFromWorld()
	target.SetDespawned(false)
	assert.False(t, d.CanSeeOrDetect(seer, target, false, true), "not in world")
}

func TestCanSeeOrDetectFarsight(t *testing.T) {
	d := newDetector(Deps{})
	seer := newPlayer(1, 0, 0)
	target := newCreature(2, 100, 300, 0)
	assert.False(t, d.CanSeeOrDetect(seer, target, false, true))

	seer.SetViewpoint(&target.WorldObject)
	assert.True(t, d.CanSeeOrDetect(seer, target, false, true))

	neighbour := newCreature(3, 100, 310, 0)
	assert.True(t, d.CanSeeOrDetect(seer, neighbour, false, true), "range measured from the viewpoint")
}

func TestPetUsesOwnerSenses(t *testing.T) {
	d := newDetector(Deps{})
	owner := newPlayer(1, 0, 0)
	pet := newCreature(2, 100, 0, 0)
	pet.SetOwner(&owner.Unit)
	target := newCreature(3, 100, 5, 0)
	target.Invisibility.AddFlag(object.InvisibilityGeneral)
	target.Invisibility.SetValue(object.InvisibilityGeneral, 10)

	pet.InvisibilityDetect.AddFlag(object.InvisibilityGeneral)
	pet.InvisibilityDetect.SetValue(object.InvisibilityGeneral, 10)
	assert.False(t, d.CanDetect(pet, target, false))

	owner.InvisibilityDetect.AddFlag(object.InvisibilityGeneral)
	owner.InvisibilityDetect.SetValue(object.InvisibilityGeneral, 10)
	assert.True(t, d.CanDetect(pet, target, false))
}

func TestSightRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MapVisibility = map[uint32]float32{1: 170}
	cfg.ZoneVisibility = map[uint32]float32{12: 50}
	d := New(cfg, Deps{}, nil)

	seer := newPlayer(1, 0, 0)
	target := newCreature(2, 100, 5, 0)
	assert.Equal(t, DefaultVisibilityDistance, d.SightRange(seer, target))

	target.SetActive(true)
	assert.Equal(t, MaxVisibilityDistance, d.SightRange(seer, target))

	seer.SetMap(1, 0)
	assert.Equal(t, float32(170), d.SightRange(seer, seer))
	seer.SetZoneID(12)
	assert.Equal(t, float32(50), d.SightRange(seer, seer))

	assert.Equal(t, object.DefaultCreatureSightDistance, d.SightRange(target, seer))

	g := object.NewGameObject()
	g.Create(9, 500, object.GameObjectTypeChest, 0, 0, 0, 0)
	assert.Zero(t, d.SightRange(g, seer))
}

func TestVisibilityRange(t *testing.T) {
	d := newDetector(Deps{})
	c := newCreature(2, 100, 5, 0)
	assert.Equal(t, DefaultVisibilityDistance, d.VisibilityRange(c))
	c.SetActive(true)
	assert.Equal(t, MaxVisibilityDistance, d.VisibilityRange(c))

	p := newPlayer(1, 0, 0)
	assert.Equal(t, DefaultVisibilityDistance, d.VisibilityRange(p))
}

func TestIsWithinLOSInMap(t *testing.T) {
	overrides := data.NewLOSOverrides([]data.LOSOverride{{MapID: 0, Entry: 46753}})
	d := newDetector(Deps{LOS: blockAll{}, Overrides: overrides})

	p := newPlayer(1, 0, 0)
	c := newCreature(2, 100, 5, 0)
	boss := newCreature(3, 46753, 5, 0)

	assert.False(t, d.IsWithinLOSInMap(p, c))
	assert.True(t, d.IsWithinLOSInMap(p, boss))

	boss.SetMap(1, 0)
	assert.False(t, d.IsWithinLOSInMap(p, boss), "different map")

	open := newDetector(Deps{})
	require.True(t, open.IsWithinLOSInMap(p, c))
}
