package handler

import (
	"context"
	"errors"
	"math"
	gonet "net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/config"
	"github.com/l1jgo/replicore/internal/data"
	"github.com/l1jgo/replicore/internal/detect"
	"github.com/l1jgo/replicore/internal/net"
	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/persist"
	"github.com/l1jgo/replicore/internal/update"
	"github.com/l1jgo/replicore/internal/world"
)

type memSnapshots struct {
	saved   map[object.GUID]*persist.Snapshot
	loadErr error
}

func (m *memSnapshots) Load(_ context.Context, g object.GUID) (*persist.Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.saved[g], nil
}

func (m *memSnapshots) SaveBatch(_ context.Context, snaps []*persist.Snapshot) error {
	for _, s := range snaps {
		m.saved[s.GUID] = s
	}
	return nil
}

type harness struct {
	deps  *Deps
	reg   *packet.Registry[*net.Session]
	snaps *memSnapshots
}

func newHarness() *harness {
	state := world.NewState()
	mgr := world.NewManager(world.Deps{
		Detect:     detect.DefaultConfig(),
		Sink:       state,
		SweepEvery: 1,
	}, 1, nil)
	h := &harness{
		snaps: &memSnapshots{saved: map[object.GUID]*persist.Snapshot{}},
		reg:   packet.NewRegistry[*net.Session](zap.NewNop()),
	}
	h.deps = &Deps{
		Config:    &config.Config{},
		Log:       zap.NewNop(),
		World:     state,
		Manager:   mgr,
		Parties:   world.NewPartyManager(),
		Snapshots: h.snaps,
	}
	RegisterAll(h.reg, h.deps)
	return h
}

func (h *harness) session(t *testing.T, id uint64) *net.Session {
	a, b := gonet.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	return net.NewSession(net.NewTCPConn(a, 0), id, 8, 64, 0, zap.NewNop())
}

func (h *harness) dispatch(sess *net.Session, data []byte) error {
	return h.reg.Dispatch(sess, sess.State(), data)
}

func drain(sess *net.Session) [][]byte {
	sess.FlushOutput()
	var out [][]byte
	for {
		select {
		case p := <-sess.OutQueue:
			out = append(out, p)
		default:
			return out
		}
	}
}

func playerGUID(low uint32) object.GUID { return object.MakeGUID(low, 0, object.HighPlayer) }

func float32Inf() float32 { return float32(math.Inf(1)) }

func enterPacket(g object.GUID, mapID uint32, x, y float32) []byte {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_ENTER_WORLD)
	w.WriteQ(uint64(g))
	w.WriteDU(mapID)
	w.WriteF(x)
	w.WriteF(y)
	w.WriteF(0)
	w.WriteF(0)
	return w.Bytes()
}

func movePacket(x, y float32) []byte {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_MOVE)
	w.WriteF(x)
	w.WriteF(y)
	w.WriteF(0)
	w.WriteF(1)
	return w.Bytes()
}

func TestEnterWorldSendsSelfCreate(t *testing.T) {
	h := newHarness()
	sess := h.session(t, 1)
	g := playerGUID(5)

	require.NoError(t, h.dispatch(sess, enterPacket(g, 0, 10, 20)))
	assert.Equal(t, packet.StateInWorld, sess.State())

	info := h.deps.World.GetBySession(1)
	require.NotNil(t, info)
	assert.Equal(t, g, info.Player.GUID())
	assert.Equal(t, world.PartitionKey{MapID: 0}, info.Partition.Key())
	assert.True(t, info.Player.IsInWorld())

	out := drain(sess)
	require.Len(t, out, 1)
	p, err := update.Decode(out[0])
	require.NoError(t, err)
	require.Len(t, p.Blocks, 1)
	assert.Equal(t, g, p.Blocks[0].GUID)
	assert.NotEqual(t, update.TypeValues, p.Blocks[0].Type)
}

func TestEnterWorldRejects(t *testing.T) {
	h := newHarness()
	first := h.session(t, 1)
	require.NoError(t, h.dispatch(first, enterPacket(playerGUID(5), 0, 0, 0)))

	tests := []struct {
		name string
		data []byte
	}{
		{"already online", enterPacket(playerGUID(5), 0, 0, 0)},
		{"creature guid", enterPacket(object.MakeGUID(5, 100, object.HighUnit), 0, 0, 0)},
		{"truncated", enterPacket(playerGUID(6), 0, 0, 0)[:9]},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := h.session(t, uint64(10+i))
			require.NoError(t, h.dispatch(sess, tt.data))
			assert.Equal(t, packet.StateConnected, sess.State())
			assert.Nil(t, h.deps.World.GetBySession(sess.ID))
		})
	}
	assert.Equal(t, 1, h.deps.World.PlayerCount())
}

func TestEnterWorldUnknownMap(t *testing.T) {
	h := newHarness()
	h.deps.Maps = data.NewMapGeometry(data.MapInfo{MapID: 0}, nil)
	sess := h.session(t, 1)

	require.NoError(t, h.dispatch(sess, enterPacket(playerGUID(1), 9, 0, 0)))
	assert.Equal(t, packet.StateConnected, sess.State())
	assert.Zero(t, h.deps.Manager.Count(), "no partition for a rejected map")
}

func TestEnterWorldRestoresSnapshot(t *testing.T) {
	h := newHarness()
	saved := object.NewPlayer()
	saved.Create(3)
	saved.SetMap(1, 0)
	saved.Relocate(50, 60, 0, 0)
	saved.SetHealth(42)
	snap, err := persist.Capture(saved)
	require.NoError(t, err)
	h.snaps.saved[saved.GUID()] = snap

	sess := h.session(t, 1)
	require.NoError(t, h.dispatch(sess, enterPacket(saved.GUID(), 0, 0, 0)))

	info := h.deps.World.GetBySession(1)
	require.NotNil(t, info)
	assert.Equal(t, uint32(1), info.Partition.Key().MapID)
	assert.Equal(t, uint32(42), info.Player.Health())
	assert.Equal(t, float32(50), info.Player.X())
}

func TestEnterWorldSurvivesSnapshotError(t *testing.T) {
	h := newHarness()
	h.snaps.loadErr = errors.New("db down")
	sess := h.session(t, 1)

	require.NoError(t, h.dispatch(sess, enterPacket(playerGUID(2), 0, 0, 0)))
	assert.Equal(t, packet.StateInWorld, sess.State())
	assert.Equal(t, uint32(defaultHealth), h.deps.World.GetBySession(1).Player.Health())
}

func TestMoveRelocates(t *testing.T) {
	h := newHarness()
	sess := h.session(t, 1)
	require.NoError(t, h.dispatch(sess, enterPacket(playerGUID(1), 0, 0, 0)))

	require.NoError(t, h.dispatch(sess, movePacket(120, 80)))
	pl := h.deps.World.GetBySession(1).Player
	assert.Equal(t, float32(120), pl.X())
	assert.Equal(t, float32(80), pl.Y())
	assert.Equal(t, float32(1), pl.Orientation())

	require.NoError(t, h.dispatch(sess, movePacket(float32Inf(), 0)))
	assert.Equal(t, float32(120), pl.X(), "non-finite moves are ignored")
}

func TestMoveOutsideMapIgnored(t *testing.T) {
	h := newHarness()
	h.deps.Maps = data.NewMapGeometry(data.MapInfo{MapID: 0, TileSize: 10, Width: 10, Height: 10}, nil)
	sess := h.session(t, 1)
	require.NoError(t, h.dispatch(sess, enterPacket(playerGUID(1), 0, 5, 5)))

	require.NoError(t, h.dispatch(sess, movePacket(500, 5)))
	assert.Equal(t, float32(5), h.deps.World.GetBySession(1).Player.X())
}

func TestMoveBeforeEnterIsRejected(t *testing.T) {
	h := newHarness()
	sess := h.session(t, 1)
	assert.Error(t, h.dispatch(sess, movePacket(1, 1)))
}

func TestLogoutDestroysForNearbyAndSaves(t *testing.T) {
	h := newHarness()
	a, b := h.session(t, 1), h.session(t, 2)
	require.NoError(t, h.dispatch(a, enterPacket(playerGUID(1), 0, 0, 0)))
	require.NoError(t, h.dispatch(b, enterPacket(playerGUID(2), 0, 10, 0)))
	require.NoError(t, h.deps.Manager.Tick(context.Background()))
	drain(a)
	drain(b)

	leaving := h.deps.World.GetBySession(2).Player
	require.True(t, h.deps.World.GetBySession(1).Player.HaveAtClient(leaving.GUID()))

	require.NoError(t, h.dispatch(b, []byte{packet.C_OPCODE_LOGOUT}))
	assert.Equal(t, packet.StateConnected, b.State())
	assert.Nil(t, h.deps.World.GetBySession(2))
	assert.False(t, leaving.IsInWorld())
	assert.Contains(t, h.snaps.saved, leaving.GUID())

	out := drain(a)
	require.NotEmpty(t, out)
	assert.Equal(t, packet.S_OPCODE_DESTROY_OBJECT, out[0][0])

	// the session may come back
	require.NoError(t, h.dispatch(b, enterPacket(playerGUID(2), 0, 10, 0)))
	assert.Equal(t, packet.StateInWorld, b.State())
}

func TestLeaveWorldLeavesParty(t *testing.T) {
	h := newHarness()
	a, b := h.session(t, 1), h.session(t, 2)
	require.NoError(t, h.dispatch(a, enterPacket(playerGUID(1), 0, 0, 0)))
	require.NoError(t, h.dispatch(b, enterPacket(playerGUID(2), 0, 0, 0)))
	pa := h.deps.World.GetBySession(1).Player
	pb := h.deps.World.GetBySession(2).Player
	_, err := h.deps.Parties.CreateParty(pa, pb)
	require.NoError(t, err)

	assert.True(t, LeaveWorld(2, h.deps))
	assert.False(t, LeaveWorld(2, h.deps))
	assert.True(t, pa.Group().IsEmpty(), "two-member party dissolves")
}

func TestPing(t *testing.T) {
	h := newHarness()
	sess := h.session(t, 1)
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_PING)
	w.WriteDU(0xDEADBEEF)
	require.NoError(t, h.dispatch(sess, w.Bytes()))

	out := drain(sess)
	require.Len(t, out, 1)
	assert.Equal(t, []byte{packet.S_OPCODE_PONG, 0xEF, 0xBE, 0xAD, 0xDE}, out[0])

	require.NoError(t, h.dispatch(sess, []byte{packet.C_OPCODE_PING, 1}))
	assert.Empty(t, drain(sess), "short ping gets no reply")
}
