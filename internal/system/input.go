package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/replicore/internal/core/system"
	"github.com/l1jgo/replicore/internal/handler"
	"github.com/l1jgo/replicore/internal/net"
	"github.com/l1jgo/replicore/internal/net/packet"
)

// SessionSource reports connection churn. net.Server implements it.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
}

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	source     SessionSource
	registry   *packet.Registry[*net.Session]
	store      *net.SessionStore
	deps       *handler.Deps
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(source SessionSource, registry *packet.Registry[*net.Session], store *net.SessionStore, deps *handler.Deps, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		source:     source,
		registry:   registry,
		store:      store,
		deps:       deps,
		maxPerTick: max(maxPerTick, 1),
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for done := false; !done; {
		select {
		case sess := <-s.source.NewSessions():
			s.store.Add(sess)
		default:
			done = true
		}
	}

	// Process dead sessions
	for done := false; !done; {
		select {
		case id := <-s.source.DeadSessions():
			if sess := s.store.Get(id); sess != nil {
				s.disconnect(sess)
			}
		default:
			done = true
		}
	}

	// Drain packets from each session (up to maxPerTick per session)
	for _, sess := range s.store.Raw() {
		if sess.IsClosed() {
			s.disconnect(sess)
			continue
		}
		s.drain(sess)
	}
}

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("封包分派錯誤",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

// disconnect handles what a closed session left queued, then takes its
// player out of the world.
func (s *InputSystem) disconnect(sess *net.Session) {
	s.drain(sess)
	handler.LeaveWorld(sess.ID, s.deps)
	s.store.Remove(sess.ID)
	s.log.Info("玩家斷線", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
}
