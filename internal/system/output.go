package system

import (
	"time"

	coresys "github.com/l1jgo/replicore/internal/core/system"
	"github.com/l1jgo/replicore/internal/net"
)

// OutputSystem hands every session's buffered packets to its writer.
// Phase 3 (Output).
type OutputSystem struct {
	store *net.SessionStore
}

func NewOutputSystem(store *net.SessionStore) *OutputSystem {
	return &OutputSystem{store: store}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	for _, sess := range s.store.Raw() {
		sess.FlushOutput()
	}
}
