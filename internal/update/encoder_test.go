package update

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/replicore/internal/data"
	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/object/movement"
)

type fakeRules struct {
	hostile    bool
	friendly   bool
	spellClick bool
	train      bool
	quest      bool
}

func (r *fakeRules) IsHostileTo(*object.Unit, *object.Player) bool { return r.hostile }
func (r *fakeRules) IsFriendlyFaction(uint32, uint32) bool         { return r.friendly }
func (r *fakeRules) CanSeeSpellClickOn(*object.Player, *object.Unit) bool {
	return r.spellClick
}
func (r *fakeRules) CanTrain(*object.Unit, *object.Player) bool              { return r.train }
func (r *fakeRules) ActivateToQuest(*object.GameObject, *object.Player) bool { return r.quest }

type fakeContent struct {
	creatures map[uint32]*data.CreatureTemplate
	models    map[uint32]*data.ModelInfo
	visuals   map[uint32]*data.SpellVisual
}

func (c *fakeContent) CreatureTemplate(entry uint32) (*data.CreatureTemplate, bool) {
	t, ok := c.creatures[entry]
	return t, ok
}

func (c *fakeContent) ModelInfo(id uint32) (*data.ModelInfo, bool) {
	m, ok := c.models[id]
	return m, ok
}

func (c *fakeContent) SpellVisual(id uint32) (*data.SpellVisual, bool) {
	v, ok := c.visuals[id]
	return v, ok
}

func newTestEncoder(svc Services) *Encoder {
	e := NewEncoder(svc, Options{}, nil)
	e.SetClock(func() uint32 { return 1000 })
	return e
}

// decode reads one block and requires it to be consumed exactly.
func decode(t *testing.T, raw []byte) *DecodedBlock {
	t.Helper()
	r := packet.NewRawReader(raw)
	b, err := DecodeBlock(r)
	require.NoError(t, err)
	require.Zero(t, r.Remaining(), "trailing bytes")
	return b
}

func TestCreateBlockRoundTrip(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)
	u.SetLevel(5)
	u.SetHealth(100)
	u.SetUint32(object.UnitFieldStats, 42)

	raw, err := e.BuildCreateBlock(u, viewer)
	require.NoError(t, err)
	b := decode(t, raw)

	assert.Equal(t, TypeCreateObject, b.Type)
	assert.Equal(t, u.GUID(), b.GUID)
	assert.Equal(t, object.TypeIDUnit, b.TypeID)
	assert.Equal(t, uint32(5), b.Fields[object.UnitFieldLevel])
	assert.Equal(t, uint32(100), b.Fields[object.UnitFieldHealth])
	assert.Equal(t, uint32(u.GUID()), b.Fields[object.ObjectFieldGUID])
	assert.NotContains(t, b.Fields, object.UnitFieldStats, "private stat sent to a stranger")
	assert.Contains(t, b.Fields, object.UnitFieldDisplayID, "dynamic fields are always in a create block")
	assert.Equal(t, (object.UnitEnd+31)/32, b.BlockCount)

	require.NotNil(t, b.Movement)
	assert.True(t, b.Movement.Living)
	assert.Equal(t, float32(10), b.Movement.Position.X)
	assert.Equal(t, float32(20), b.Movement.Position.Y)
	assert.Equal(t, float32(30), b.Movement.Position.Z)
	assert.InDelta(t, 1.5, b.Movement.Position.O, 1e-6)
	assert.Equal(t, movement.BaseSpeeds, b.Movement.Speeds)
}

func TestCreateBlockNilViewer(t *testing.T) {
	e := newTestEncoder(Services{})
	u := newTestCreature(10, 100)
	_, err := e.BuildCreateBlock(u, nil)
	assert.ErrorIs(t, err, ErrNilViewer)
	_, err = e.BuildValuesBlock(u, nil)
	assert.ErrorIs(t, err, ErrNilViewer)

	_, err = e.BuildCreateBlock(object.NewUnit(), newTestPlayer(1))
	assert.ErrorIs(t, err, ErrNotCreated)
}

func TestValuesBlockAfterClear(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)
	u.SetHealth(100)
	u.ClearUpdateMask(false)

	raw, err := e.BuildValuesBlock(u, viewer)
	require.NoError(t, err)
	b := decode(t, raw)
	assert.Equal(t, TypeValues, b.Type)
	assert.Empty(t, b.Fields)
	assert.Empty(t, b.Dynamic)

	u.SetHealth(50)
	raw, err = e.BuildValuesBlock(u, viewer)
	require.NoError(t, err)
	b = decode(t, raw)
	assert.Equal(t, map[int]uint32{object.UnitFieldHealth: 50}, b.Fields)
}

func TestValuesBlockHidesPrivateChanges(t *testing.T) {
	e := newTestEncoder(Services{})
	p := newTestPlayer(1)
	other := newTestPlayer(2)
	p.ClearUpdateMask(false)

	p.SetUint32(object.PlayerFieldXP, 300)
	p.SetHealth(80)

	b := decode(t, mustValues(t, e, p, p))
	assert.Equal(t, uint32(300), b.Fields[object.PlayerFieldXP])
	assert.Equal(t, uint32(80), b.Fields[object.UnitFieldHealth])

	b = decode(t, mustValues(t, e, p, other))
	assert.NotContains(t, b.Fields, object.PlayerFieldXP)
	assert.Equal(t, uint32(80), b.Fields[object.UnitFieldHealth])
	assert.Equal(t, (object.PlayerEndNotSelf+31)/32, b.BlockCount)
}

func mustValues(t *testing.T, e *Encoder, ent object.Entity, viewer *object.Player) []byte {
	t.Helper()
	raw, err := e.BuildValuesBlock(ent, viewer)
	require.NoError(t, err)
	return raw
}

func mustCreate(t *testing.T, e *Encoder, ent object.Entity, viewer *object.Player) []byte {
	t.Helper()
	raw, err := e.BuildCreateBlock(ent, viewer)
	require.NoError(t, err)
	return raw
}

func TestQuestLogOnlyForParty(t *testing.T) {
	groups := fakeGroups{}
	e := newTestEncoder(Services{Groups: groups})
	p := newTestPlayer(1)
	mate := newTestPlayer(2)
	stranger := newTestPlayer(3)
	groups.join(p, 1, 0)
	groups.join(mate, 1, 0)

	p.SetQuestSlot(0, 4321, 0)

	b := decode(t, mustCreate(t, e, p, mate))
	assert.Equal(t, uint32(4321), b.Fields[object.PlayerFieldQuestLog])

	b = decode(t, mustCreate(t, e, p, stranger))
	assert.NotContains(t, b.Fields, object.PlayerFieldQuestLog)
}

func TestOwnerOnlyFields(t *testing.T) {
	e := newTestEncoder(Services{})
	owner := newTestPlayer(1)
	stranger := newTestPlayer(2)
	pet := newTestCreature(10, 100)
	pet.SetOwner(&owner.Unit)
	pet.SetUint32(object.UnitFieldPetExperience, 7)

	b := decode(t, mustCreate(t, e, pet, owner))
	assert.Equal(t, uint32(7), b.Fields[object.UnitFieldPetExperience])
	assert.Equal(t, uint32(owner.GUID()), b.Fields[object.UnitFieldSummonedBy])

	b = decode(t, mustCreate(t, e, pet, stranger))
	assert.NotContains(t, b.Fields, object.UnitFieldPetExperience)
	assert.Contains(t, b.Fields, object.UnitFieldSummonedBy)
}

func TestUnitFlagsForGameMaster(t *testing.T) {
	e := newTestEncoder(Services{})
	gm := newTestPlayer(1)
	gm.SetGameMaster(object.SecGameMaster)
	player := newTestPlayer(2)
	u := newTestCreature(10, 100)
	u.SetFlag(object.UnitFieldFlags, object.UnitFlagNotSelectable|0x2)

	b := decode(t, mustCreate(t, e, u, gm))
	assert.Equal(t, uint32(0x2), b.Fields[object.UnitFieldFlags])

	b = decode(t, mustCreate(t, e, u, player))
	assert.Equal(t, object.UnitFlagNotSelectable|0x2, b.Fields[object.UnitFieldFlags])
}

func TestAttackTimeRounding(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)

	tests := []struct {
		in   float32
		want uint32
	}{
		{2000, 2000},
		{1996, 2000},
		{2004, 2000},
		{2005, 2010},
		{-5, 0},
	}
	for _, tt := range tests {
		u.SetFloat(object.UnitFieldBaseAttackTime, tt.in)
		assert.Equal(t, tt.want, e.valueFor(u, object.UnitFieldBaseAttackTime, viewer, false), "%v", tt.in)
	}
}

func TestDamageBonus(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)
	u.SetFloat(object.UnitFieldMinDamage, 100)
	u.Auras.AutoAttackDamagePct = 20

	got := math.Float32frombits(e.valueFor(u, object.UnitFieldMinDamage, viewer, false))
	assert.InDelta(t, 120, got, 1e-4)
}

func TestTriggerCreatureModel(t *testing.T) {
	content := &fakeContent{creatures: map[uint32]*data.CreatureTemplate{
		100: {Entry: 100, FlagsExtra: data.CreatureFlagExtraTrigger},
		200: {Entry: 200, FlagsExtra: data.CreatureFlagExtraTrigger, ModelID1: 501, ModelID2: 502},
		300: {Entry: 300, ModelID1: 900},
	}}
	e := newTestEncoder(Services{Content: content})
	gm := newTestPlayer(1)
	gm.SetGameMaster(object.SecGameMaster)
	player := newTestPlayer(2)

	tests := []struct {
		entry     uint32
		gm, other uint32
	}{
		{100, triggerModelGM, triggerModelPlayer},
		{200, 501, 502},
		{300, 1234, 1234},
	}
	for _, tt := range tests {
		u := newTestCreature(tt.entry, tt.entry)
		u.SetUint32(object.UnitFieldDisplayID, 1234)
		assert.Equal(t, tt.gm, decode(t, mustCreate(t, e, u, gm)).Fields[object.UnitFieldDisplayID], "entry %d", tt.entry)
		assert.Equal(t, tt.other, decode(t, mustCreate(t, e, u, player)).Fields[object.UnitFieldDisplayID], "entry %d", tt.entry)
	}
}

func TestHostileModel(t *testing.T) {
	rules := &fakeRules{}
	content := &fakeContent{
		creatures: map[uint32]*data.CreatureTemplate{100: {Entry: 100}},
		models:    map[uint32]*data.ModelInfo{1234: {DisplayID: 1234, HostileID: 4321}},
	}
	e := newTestEncoder(Services{Rules: rules, Content: content})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)
	u.SetUint32(object.UnitFieldDisplayID, 1234)

	assert.Equal(t, uint32(1234), e.valueFor(u, object.UnitFieldDisplayID, viewer, false))
	rules.hostile = true
	assert.Equal(t, uint32(4321), e.valueFor(u, object.UnitFieldDisplayID, viewer, false))
}

func TestNpcFlagsPerViewer(t *testing.T) {
	rules := &fakeRules{}
	e := newTestEncoder(Services{Rules: rules})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)
	all := object.UnitNpcFlagSpellClick | object.UnitNpcFlagTrainer | object.UnitNpcFlagTrainerClass | object.UnitNpcFlagGossip
	u.SetUint32(object.UnitFieldNpcFlags, all)

	assert.Equal(t, object.UnitNpcFlagGossip, e.valueFor(u, object.UnitFieldNpcFlags, viewer, false))

	rules.spellClick, rules.train = true, true
	assert.Equal(t, all, e.valueFor(u, object.UnitFieldNpcFlags, viewer, false))
}

func TestTappedDynamicFlags(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)
	u.SetUint32(object.ObjectFieldDynamicFlags, object.UnitDynFlagTapped|object.UnitDynFlagLootable)

	assert.Zero(t, e.valueFor(u, object.ObjectFieldDynamicFlags, viewer, false), "no recipient clears tap and loot")

	u.Loot.Recipient = viewer.GUID()
	assert.Equal(t, object.UnitDynFlagTapped, e.valueFor(u, object.ObjectFieldDynamicFlags, viewer, false))
}

func TestPerCasterAuraState(t *testing.T) {
	e := newTestEncoder(Services{})
	caster := newTestPlayer(1)
	other := newTestPlayer(2)
	u := newTestCreature(10, 100)
	bit := uint32(1 << (16 - 1))
	u.SetPerCasterAuraState(caster.GUID(), bit)

	b := decode(t, mustCreate(t, e, u, caster))
	assert.Equal(t, bit, b.Fields[object.UnitFieldAuraState])

	b = decode(t, mustCreate(t, e, u, other))
	assert.Zero(t, b.Fields[object.UnitFieldAuraState])
	assert.Contains(t, b.Fields, object.UnitFieldAuraState, "forced into the create block")

	u.ClearUpdateMask(false)
	b = decode(t, mustValues(t, e, u, other))
	assert.Empty(t, b.Fields, "clean objects force nothing")
}

func TestGameObjectQuestSparkle(t *testing.T) {
	rules := &fakeRules{quest: true}
	e := newTestEncoder(Services{Rules: rules})
	viewer := newTestPlayer(1)
	g := object.NewGameObject()
	g.Create(5, 700, object.GameObjectTypeChest, 1, 2, 3, 0)
	g.AddToWorld(nopQueue{})

	b := decode(t, mustCreate(t, e, g, viewer))
	want := uint32(object.GameObjectDynFlagActivate|object.GameObjectDynFlagSparkle) | 0xFFFF0000
	assert.Equal(t, want, b.Fields[object.ObjectFieldDynamicFlags])

	rules.quest = false
	b = decode(t, mustCreate(t, e, g, viewer))
	assert.Equal(t, uint32(0xFFFF0000), b.Fields[object.ObjectFieldDynamicFlags])

	require.NotNil(t, b.Movement)
	assert.False(t, b.Movement.Living)
	assert.Equal(t, g.Rotation(), b.Movement.Rotation)
	assert.Equal(t, float32(2), b.Movement.Stationary.Y)
}

func TestArtKitForcesBytes1(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	g := object.NewGameObject()
	g.Create(5, 700, object.GameObjectTypeGoober, 0, 0, 0, 0)
	g.AddToWorld(nopQueue{})
	g.SetArtKit(3)

	b := decode(t, mustCreate(t, e, g, viewer))
	assert.Equal(t, uint8(3), uint8(b.Fields[object.GameObjectFieldBytes1]>>16))
}

func TestGroupLootChestIsLocked(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	g := object.NewGameObject()
	g.Create(5, 700, object.GameObjectTypeChest, 0, 0, 0, 0)
	g.UseGroupLootRules = true
	g.AddToWorld(nopQueue{})

	v := e.valueFor(g, object.GameObjectFieldFlags, viewer, false)
	assert.Equal(t, object.GameObjectFlagLocked|object.GameObjectFlagNotSelectable, v)
}

func TestCreateType(t *testing.T) {
	viewer := newTestPlayer(1)

	typ, flags := CreateType(viewer, viewer)
	assert.Equal(t, TypeCreateObject2, typ)
	assert.NotZero(t, flags&object.UpdateFlagSelf)

	other := newTestPlayer(2)
	typ, flags = CreateType(other, viewer)
	assert.Equal(t, TypeCreateObject2, typ)
	assert.Zero(t, flags&object.UpdateFlagSelf)

	u := newTestCreature(10, 100)
	typ, flags = CreateType(u, viewer)
	assert.Equal(t, TypeCreateObject, typ)
	assert.Zero(t, flags&object.UpdateFlagHasTarget)

	u.SetVictim(&viewer.Unit)
	_, flags = CreateType(u, viewer)
	assert.NotZero(t, flags&object.UpdateFlagHasTarget)

	u.SetSummoner(viewer.GUID())
	typ, _ = CreateType(u, viewer)
	assert.Equal(t, TypeCreateObject2, typ, "player summon")

	trap := object.NewGameObject()
	trap.Create(5, 700, object.GameObjectTypeTrap, 0, 0, 0, 0)
	typ, _ = CreateType(trap, viewer)
	assert.Equal(t, TypeCreateObject2, typ)

	chest := object.NewGameObject()
	chest.Create(6, 701, object.GameObjectTypeChest, 0, 0, 0, 0)
	typ, _ = CreateType(chest, viewer)
	assert.Equal(t, TypeCreateObject, typ)
	chest.SetOwner(viewer.GUID())
	typ, _ = CreateType(chest, viewer)
	assert.Equal(t, TypeCreateObject2, typ, "player owned")

	elevator := object.NewGameObject()
	elevator.Create(7, 702, object.GameObjectTypeTransport, 0, 0, 0, 0)
	_, flags = CreateType(elevator, viewer)
	assert.NotZero(t, flags&object.UpdateFlagTransport)
}

func TestCreateBlockWithTarget(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)
	u.SetVictim(&viewer.Unit)

	b := decode(t, mustCreate(t, e, u, viewer))
	assert.Equal(t, viewer.GUID(), b.Movement.Target)
}

func TestCreateBlockWithSpline(t *testing.T) {
	e := newTestEncoder(Services{})
	viewer := newTestPlayer(1)
	u := newTestCreature(10, 100)
	u.Movement.HasSpline = true
	u.Spline = &movement.Spline{
		ID:          9,
		Duration:    2000,
		Elapsed:     500,
		Points:      []movement.Position{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		Facing:      movement.FacingAngle,
		FacingAngle: 2.5,
	}

	b := decode(t, mustCreate(t, e, u, viewer))
	require.NotNil(t, b.Movement.Spline)
	assert.Equal(t, uint32(9), b.Movement.Spline.ID)
	assert.Equal(t, int32(500), b.Movement.Spline.Elapsed)
	assert.Equal(t, u.Spline.Points, b.Movement.Spline.Points)
	assert.Equal(t, float32(2.5), b.Movement.Spline.FacingAngle)
}

func TestDynamicSection(t *testing.T) {
	e := newTestEncoder(Services{})
	p := newTestPlayer(1)
	other := newTestPlayer(2)
	p.SetDynamicUint32(object.PlayerDynamicDailyQuests, 0, 123)
	p.SetDynamicUint32(object.PlayerDynamicDailyQuests, 3, 456)

	b := decode(t, mustCreate(t, e, p, p))
	assert.Equal(t, map[int]map[int]uint32{
		object.PlayerDynamicDailyQuests: {0: 123, 3: 456},
	}, b.Dynamic)

	b = decode(t, mustValues(t, e, p, other))
	assert.Empty(t, b.Dynamic, "other viewers never get a player's tables")

	p.ClearUpdateMask(false)
	p.SetDynamicUint32(object.PlayerDynamicDailyQuests, 0, 0)
	b = decode(t, mustValues(t, e, p, p))
	assert.Equal(t, map[int]map[int]uint32{
		object.PlayerDynamicDailyQuests: {3: 456},
	}, b.Dynamic, "a changed table is re-sent whole")
}

func TestBagHasNoDynamicSection(t *testing.T) {
	e := newTestEncoder(Services{})
	owner := newTestPlayer(1)
	bag := object.NewItem(true)
	bag.Create(3, 4500, owner)
	bag.SetDynamicUint32(0, 0, 1)

	b := decode(t, mustCreate(t, e, bag, owner))
	assert.Empty(t, b.Dynamic)
	assert.Equal(t, object.TypeIDContainer, b.TypeID)
}

func TestBuildDestroyPacket(t *testing.T) {
	guid := object.MakeGUID(77, 1234, object.HighUnit)
	for _, onDeath := range []bool{false, true} {
		raw := BuildDestroyPacket(guid, onDeath)
		r := packet.NewReader(raw)
		require.Equal(t, byte(packet.S_OPCODE_DESTROY_OBJECT), r.Opcode())

		var mask [8]bool
		var g uint64
		r.ReadGuidMask(&mask, 7, 2, 6, 3, 1, 4)
		gotDeath := r.ReadBit()
		r.ReadGuidMask(&mask, 5, 0)
		r.ReadGuidBytes(&mask, &g, 4, 3, 2, 7, 0, 1, 6, 5)
		require.NoError(t, r.Err())

		assert.Equal(t, onDeath, gotDeath)
		assert.Equal(t, uint64(guid), g)
		assert.Zero(t, r.Remaining())
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "CREATE_OBJECT2", TypeCreateObject2.String())
	assert.Equal(t, "UNKNOWN", Type(9).String())
}
