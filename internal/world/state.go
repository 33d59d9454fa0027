package world

import (
	"errors"
	"sync"

	"github.com/l1jgo/replicore/internal/net"
	"github.com/l1jgo/replicore/internal/object"
)

var ErrNoSession = errors.New("world: viewer has no session")

// PlayerInfo binds an in-world player to its connection.
type PlayerInfo struct {
	SessionID uint64
	Session   *net.Session
	Player    *object.Player
	Partition *Partition
}

// State tracks the players currently in world. It is written by the input
// phase and read by partition ticks, which may run in parallel; State is
// also the replication.Sink every partition sends through.
type State struct {
	mu        sync.RWMutex
	bySession map[uint64]*PlayerInfo
	byGUID    map[object.GUID]*PlayerInfo
}

func NewState() *State {
	return &State{
		bySession: make(map[uint64]*PlayerInfo),
		byGUID:    make(map[object.GUID]*PlayerInfo),
	}
}

// AddPlayer registers a player in the world.
func (s *State) AddPlayer(p *PlayerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySession[p.SessionID] = p
	s.byGUID[p.Player.GUID()] = p
}

// RemovePlayer removes a player from the world.
func (s *State) RemovePlayer(sessionID uint64) *PlayerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.bySession[sessionID]
	if !ok {
		return nil
	}
	delete(s.bySession, sessionID)
	delete(s.byGUID, p.Player.GUID())
	return p
}

// GetBySession returns a player by session ID.
func (s *State) GetBySession(sessionID uint64) *PlayerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bySession[sessionID]
}

func (s *State) GetByGUID(g object.GUID) *PlayerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byGUID[g]
}

// PlayerCount returns the number of players in-world.
func (s *State) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bySession)
}

// AllPlayers iterates all in-world players over a snapshot, so fn may add
// or remove players.
func (s *State) AllPlayers(fn func(*PlayerInfo)) {
	s.mu.RLock()
	list := make([]*PlayerInfo, 0, len(s.bySession))
	for _, p := range s.bySession {
		list = append(list, p)
	}
	s.mu.RUnlock()
	for _, p := range list {
		fn(p)
	}
}

// Send implements replication.Sink.
func (s *State) Send(viewer object.GUID, data []byte) error {
	s.mu.RLock()
	p := s.byGUID[viewer]
	s.mu.RUnlock()
	if p == nil || p.Session == nil || p.Session.IsClosed() {
		return ErrNoSession
	}
	p.Session.Send(data)
	return nil
}
