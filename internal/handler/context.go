package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/config"
	"github.com/l1jgo/replicore/internal/core/event"
	"github.com/l1jgo/replicore/internal/data"
	"github.com/l1jgo/replicore/internal/net"
	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/persist"
	"github.com/l1jgo/replicore/internal/world"
)

// SnapshotStore loads and saves object field snapshots.
// persist.SnapshotRepo implements it.
type SnapshotStore interface {
	Load(ctx context.Context, guid object.GUID) (*persist.Snapshot, error)
	SaveBatch(ctx context.Context, snaps []*persist.Snapshot) error
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config    *config.Config
	Log       *zap.Logger
	World     *world.State
	Manager   *world.Manager
	Parties   *world.PartyManager
	Bus       *event.Bus
	Maps      *data.MapGeometry // nil accepts any map
	Snapshots SnapshotStore     // nil disables persistence
}

// Handler is the packet handler shape used by this package.
type Handler = packet.HandlerFunc[*net.Session]

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry[*net.Session], deps *Deps) {
	bind := func(h func(*net.Session, *packet.Reader, *Deps)) Handler {
		return func(sess *net.Session, r *packet.Reader) { h(sess, r, deps) }
	}
	inWorld := []packet.SessionState{packet.StateInWorld}

	reg.Register(packet.C_OPCODE_ENTER_WORLD, []packet.SessionState{packet.StateConnected}, bind(HandleEnterWorld))
	reg.Register(packet.C_OPCODE_MOVE, inWorld, bind(HandleMove))
	reg.Register(packet.C_OPCODE_LOGOUT, inWorld, bind(HandleLogout))

	// Keepalive works before and after entering the world.
	reg.Register(packet.C_OPCODE_PING,
		[]packet.SessionState{packet.StateConnected, packet.StateInWorld},
		bind(HandlePing),
	)
}
