package replication

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/replicore/internal/detect"
	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/update"
)

type listIndex struct {
	objs []object.Entity
}

func (l *listIndex) add(es ...object.Entity) { l.objs = append(l.objs, es...) }

func (l *listIndex) QueryNearby(center *object.WorldObject, radius float32) []object.Entity {
	var out []object.Entity
	for _, e := range l.objs {
		w := e.Base().ToWorld()
		if w != nil && w.InMap(center) && w.ExactDist2d(center) <= radius {
			out = append(out, e)
		}
	}
	return out
}

var errNoSession = errors.New("no session")

type recordSink struct {
	sent    map[object.GUID][][]byte
	offline map[object.GUID]bool
}

func newRecordSink() *recordSink {
	return &recordSink{sent: map[object.GUID][][]byte{}, offline: map[object.GUID]bool{}}
}

func (r *recordSink) Send(viewer object.GUID, data []byte) error {
	if r.offline[viewer] {
		return errNoSession
	}
	r.sent[viewer] = append(r.sent[viewer], data)
	return nil
}

// countingEncoder counts calls and fails for the listed viewers.
type countingEncoder struct {
	inner  *update.Encoder
	calls  int
	failOn map[object.GUID]bool
}

var errEncode = errors.New("encode failed")

func (c *countingEncoder) BuildCreateBlock(ent object.Entity, viewer *object.Player) ([]byte, error) {
	c.calls++
	if c.failOn[viewer.GUID()] {
		return nil, errEncode
	}
	return c.inner.BuildCreateBlock(ent, viewer)
}

func (c *countingEncoder) BuildValuesBlock(ent object.Entity, viewer *object.Player) ([]byte, error) {
	c.calls++
	if c.failOn[viewer.GUID()] {
		return nil, errEncode
	}
	return c.inner.BuildValuesBlock(ent, viewer)
}

// panicEncoder panics while encoding one object.
type panicEncoder struct {
	Encoder
	target object.GUID
}

func (p *panicEncoder) BuildValuesBlock(ent object.Entity, viewer *object.Player) ([]byte, error) {
	if ent.GUID() == p.target {
		panic("encode contract violated")
	}
	return p.Encoder.BuildValuesBlock(ent, viewer)
}

type fixture struct {
	reg   *Registry
	index *listIndex
	sink  *recordSink
	enc   *countingEncoder
	s     *Scheduler
}

func newFixture() *fixture {
	f := &fixture{
		reg:   NewRegistry(),
		index: &listIndex{},
		sink:  newRecordSink(),
		enc:   &countingEncoder{inner: update.NewEncoder(update.Services{}, update.Options{}, nil), failOn: map[object.GUID]bool{}},
	}
	det := detect.New(detect.DefaultConfig(), detect.Deps{}, nil)
	f.s = NewScheduler(f.reg, f.enc, det, f.index, f.sink, nil)
	return f
}

func (f *fixture) player(low uint32, x float32) *object.Player {
	p := object.NewPlayer()
	p.Create(low)
	p.SetMap(0, 0)
	p.Relocate(x, 0, 0, 0)
	p.SetHealth(100)
	p.AddToWorld(f.reg)
	f.index.add(p)
	return p
}

func (f *fixture) creature(low uint32, x float32) *object.Unit {
	u := object.NewUnit()
	u.Create(low, 100, object.HighUnit)
	u.SetMap(0, 0)
	u.Relocate(x, 0, 0, 0)
	u.SetLevel(1)
	u.SetHealth(100)
	u.AddToWorld(f.reg)
	f.index.add(u)
	return u
}

func (f *fixture) tick() {
	f.s.Flush()
	f.s.Send()
}

func (f *fixture) last(t *testing.T, viewer object.GUID) *update.Packet {
	t.Helper()
	pkts := f.sink.sent[viewer]
	require.NotEmpty(t, pkts)
	p, err := update.Decode(pkts[len(pkts)-1])
	require.NoError(t, err)
	return p
}

func TestRegistryIsIdempotent(t *testing.T) {
	f := newFixture()
	u := f.creature(10, 5)

	u.SetHealth(50)
	u.SetHealth(40)
	u.SetLevel(2)
	assert.Equal(t, 1, f.reg.Len())
	assert.True(t, f.reg.Contains(u.GUID()))

	f.reg.RemoveUpdateObject(u)
	f.reg.RemoveUpdateObject(u)
	assert.Equal(t, 0, f.reg.Len())
}

func TestRegistryKeepsOrderOnRemove(t *testing.T) {
	r := NewRegistry()
	a, b, c := object.NewUnit(), object.NewUnit(), object.NewUnit()
	a.Create(1, 1, object.HighUnit)
	b.Create(2, 1, object.HighUnit)
	c.Create(3, 1, object.HighUnit)
	r.AddUpdateObject(a)
	r.AddUpdateObject(b)
	r.AddUpdateObject(c)

	r.RemoveUpdateObject(a)
	assert.True(t, r.Contains(c.GUID()))
	got := r.pending()
	require.Len(t, got, 2)
	assert.Equal(t, b.GUID(), got[0].GUID())
	assert.Equal(t, c.GUID(), got[1].GUID())
	assert.Equal(t, 2, r.Len(), "pending does not drain")
}

func TestRegistryCompactsAfterRemovals(t *testing.T) {
	r := NewRegistry()
	units := make([]*object.Unit, 100)
	for i := range units {
		units[i] = object.NewUnit()
		units[i].Create(uint32(i+1), 1, object.HighUnit)
		r.AddUpdateObject(units[i])
	}
	for i := 0; i < len(units); i += 2 {
		r.RemoveUpdateObject(units[i])
	}
	r.RemoveUpdateObject(units[1])

	assert.Equal(t, 49, r.Len())
	assert.LessOrEqual(t, len(r.queue), 2*r.Len()+1, "dead slots are reclaimed")
	got := r.pending()
	require.Len(t, got, 49)
	for i, e := range got {
		assert.Equal(t, units[2*i+3].GUID(), e.GUID(), "registration order kept")
	}

	r.AddUpdateObject(units[0])
	assert.Equal(t, units[0].GUID(), r.pending()[49].GUID(), "re-added objects go last")
	for _, u := range units {
		r.RemoveUpdateObject(u)
	}
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.queue)
}

func TestFlushCreatesThenSendsValues(t *testing.T) {
	f := newFixture()
	viewer := f.player(1, 0)
	u := f.creature(10, 10)

	u.SetHealth(50)
	f.tick()

	pkt := f.last(t, viewer.GUID())
	require.Len(t, pkt.Blocks, 1)
	assert.Contains(t, []update.Type{update.TypeCreateObject, update.TypeCreateObject2}, pkt.Blocks[0].Type)
	assert.Equal(t, u.GUID(), pkt.Blocks[0].GUID)
	assert.True(t, viewer.HaveAtClient(u.GUID()))
	assert.False(t, u.IsQueued())
	assert.Equal(t, 0, f.reg.Len())

	u.SetHealth(40)
	f.tick()
	pkt = f.last(t, viewer.GUID())
	require.Len(t, pkt.Blocks, 1)
	assert.Equal(t, update.TypeValues, pkt.Blocks[0].Type)
	assert.Equal(t, uint32(40), pkt.Blocks[0].Fields[object.UnitFieldHealth])
}

func TestFlushEncodesOncePerViewer(t *testing.T) {
	f := newFixture()
	a := f.player(1, 0)
	b := f.player(2, 3)
	u := f.creature(10, 10)
	a.AddClientGUID(u.GUID())
	b.AddClientGUID(u.GUID())

	for i := uint32(0); i < 5; i++ {
		u.SetHealth(90 - i)
	}
	f.tick()

	assert.Equal(t, 2, f.enc.calls)
	assert.Len(t, f.last(t, a.GUID()).Blocks, 1)
	assert.Len(t, f.last(t, b.GUID()).Blocks, 1)
}

func TestFlushSendsOutOfRangeWhenNoLongerVisible(t *testing.T) {
	f := newFixture()
	viewer := f.player(1, 0)
	u := f.creature(10, 10)
	viewer.AddClientGUID(u.GUID())

	u.SetPhaseMask(2)
	u.SetHealth(1)
	f.tick()

	pkt := f.last(t, viewer.GUID())
	require.Len(t, pkt.Blocks, 1)
	assert.Equal(t, update.TypeOutOfRange, pkt.Blocks[0].Type)
	assert.Equal(t, []object.GUID{u.GUID()}, pkt.Blocks[0].OutOfRange)
	assert.False(t, viewer.HaveAtClient(u.GUID()))
}

func TestFlushSkipsViewersOutsideRange(t *testing.T) {
	f := newFixture()
	far := f.player(1, 500)
	u := f.creature(10, 0)

	u.SetHealth(1)
	f.tick()

	assert.Empty(t, f.sink.sent[far.GUID()])
	assert.False(t, far.HaveAtClient(u.GUID()))
}

func TestFlushKeepsDirtyStateOnEncodeFailure(t *testing.T) {
	f := newFixture()
	ok := f.player(1, 0)
	bad := f.player(2, 3)
	u := f.creature(10, 10)
	f.enc.failOn[bad.GUID()] = true

	u.SetHealth(7)
	f.tick()

	assert.True(t, u.IsQueued())
	assert.True(t, f.reg.Contains(u.GUID()))
	assert.True(t, ok.HaveAtClient(u.GUID()))
	assert.False(t, bad.HaveAtClient(u.GUID()))

	delete(f.enc.failOn, bad.GUID())
	f.tick()
	assert.False(t, u.IsQueued())
	assert.True(t, bad.HaveAtClient(u.GUID()))
	pkt := f.last(t, bad.GUID())
	require.Len(t, pkt.Blocks, 1)
	assert.Equal(t, uint32(7), pkt.Blocks[0].Fields[object.UnitFieldHealth])
}

func TestSharedVisionViewerGetsValuesOnly(t *testing.T) {
	f := newFixture()
	watcher := f.player(1, 1000)
	stranger := f.player(2, 2000)
	u := f.creature(10, 0)
	u.AddSharedVision(watcher)
	u.AddSharedVision(stranger)
	watcher.AddClientGUID(u.GUID())

	u.SetHealth(3)
	f.tick()

	pkt := f.last(t, watcher.GUID())
	require.Len(t, pkt.Blocks, 1)
	assert.Equal(t, update.TypeValues, pkt.Blocks[0].Type)
	assert.Empty(t, f.sink.sent[stranger.GUID()], "no create through shared vision")
}

func TestItemReplicatesToOwnerOnly(t *testing.T) {
	f := newFixture()
	owner := f.player(1, 0)
	other := f.player(2, 1)
	it := object.NewItem(false)
	it.Create(50, 2589, owner)
	it.AddToWorld(f.reg)

	it.SetUint32(object.ItemFieldStackCount, 20)
	f.tick()

	assert.True(t, owner.HaveAtClient(it.GUID()))
	assert.Empty(t, f.sink.sent[other.GUID()])
}

func TestRemoveCancelsPendingUpdate(t *testing.T) {
	f := newFixture()
	viewer := f.player(1, 0)
	u := f.creature(10, 10)

	u.SetHealth(2)
	f.s.Remove(u)
	assert.False(t, u.IsQueued())
	assert.Equal(t, 0, f.reg.Len())

	f.tick()
	assert.Empty(t, f.sink.sent[viewer.GUID()])
}

func TestSendUpdateToPlayerIsImmediate(t *testing.T) {
	f := newFixture()
	viewer := f.player(1, 0)
	u := f.creature(10, 10)

	require.NoError(t, f.s.SendUpdateToPlayer(u, viewer))
	pkt := f.last(t, viewer.GUID())
	assert.NotEqual(t, update.TypeValues, pkt.Blocks[0].Type)
	assert.True(t, viewer.HaveAtClient(u.GUID()))

	require.NoError(t, f.s.SendUpdateToPlayer(u, viewer))
	assert.Equal(t, update.TypeValues, f.last(t, viewer.GUID()).Blocks[0].Type)

	f.sink.offline[viewer.GUID()] = true
	other := f.creature(11, 10)
	assert.ErrorIs(t, f.s.SendUpdateToPlayer(other, viewer), errNoSession)
	assert.False(t, viewer.HaveAtClient(other.GUID()))
}

func TestUpdateVisibilityOf(t *testing.T) {
	f := newFixture()
	viewer := f.player(1, 0)
	u := f.creature(10, 10)

	require.NoError(t, f.s.UpdateVisibilityOf(u, viewer))
	assert.True(t, viewer.HaveAtClient(u.GUID()))

	// no change, nothing queued
	f.s.Send()
	require.NoError(t, f.s.UpdateVisibilityOf(u, viewer))
	f.s.Send()
	assert.Len(t, f.sink.sent[viewer.GUID()], 1)

	u.SetDespawned(true)
	require.NoError(t, f.s.UpdateVisibilityOf(u, viewer))
	f.s.Send()
	pkt := f.last(t, viewer.GUID())
	assert.Equal(t, update.TypeOutOfRange, pkt.Blocks[0].Type)
	assert.False(t, viewer.HaveAtClient(u.GUID()))
}

func TestDestroyForNearbyPlayers(t *testing.T) {
	f := newFixture()
	knows := f.player(1, 0)
	unaware := f.player(2, 1)
	u := f.creature(10, 10)
	knows.AddClientGUID(u.GUID())

	f.s.DestroyForNearbyPlayers(u)

	require.Len(t, f.sink.sent[knows.GUID()], 1)
	assert.Equal(t, packet.S_OPCODE_DESTROY_OBJECT, f.sink.sent[knows.GUID()][0][0])
	assert.False(t, knows.HaveAtClient(u.GUID()))
	assert.Empty(t, f.sink.sent[unaware.GUID()])
}

func TestSendDropsBatchForMissingSession(t *testing.T) {
	f := newFixture()
	viewer := f.player(1, 0)
	u := f.creature(10, 10)
	f.sink.offline[viewer.GUID()] = true

	u.SetHealth(5)
	f.tick()
	assert.Empty(t, f.sink.sent[viewer.GUID()])

	delete(f.sink.offline, viewer.GUID())
	f.s.Send()
	assert.Empty(t, f.sink.sent[viewer.GUID()], "batch is not resent")
}

func TestBuildPacketFraming(t *testing.T) {
	var d UpdateData
	assert.False(t, d.HasData())
	g := object.MakeGUID(7, 0, object.HighUnit)
	d.AddOutOfRange(g)
	d.AddOutOfRange(g)
	d.AddBlock(nil)
	assert.Equal(t, uint32(1), d.BlockCount())

	p, err := update.Decode(d.BuildPacket(571))
	require.NoError(t, err)
	assert.Equal(t, uint16(571), p.MapID)
	require.Len(t, p.Blocks, 1)
	assert.Equal(t, []object.GUID{g}, p.Blocks[0].OutOfRange)

	d.Reset()
	assert.False(t, d.HasData())
	assert.Equal(t, uint32(0), d.BlockCount())
}

func TestFlushPanicKeepsRestRegistered(t *testing.T) {
	f := newFixture()
	viewer := f.player(1, 0)
	a := f.creature(10, 5)
	b := f.creature(11, 6)
	f.tick()
	require.True(t, viewer.HaveAtClient(a.GUID()))
	require.True(t, viewer.HaveAtClient(b.GUID()))

	pe := &panicEncoder{Encoder: f.enc, target: a.GUID()}
	f.s.enc = pe
	a.SetHealth(50)
	b.SetHealth(60)
	assert.Panics(t, f.s.Flush)

	assert.True(t, f.reg.Contains(a.GUID()))
	assert.True(t, f.reg.Contains(b.GUID()), "unhandled objects stay registered")
	assert.True(t, b.IsQueued())

	f.s.enc = f.enc
	b.SetHealth(40)
	f.tick()
	assert.Equal(t, 0, f.reg.Len())
	assert.False(t, b.IsQueued())

	var health []uint32
	for _, blk := range f.last(t, viewer.GUID()).Blocks {
		if blk.GUID == b.GUID() {
			health = append(health, blk.Fields[object.UnitFieldHealth])
		}
	}
	assert.Equal(t, []uint32{40}, health)
}
