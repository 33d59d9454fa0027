package world

import (
	"errors"
	"sync"

	"github.com/l1jgo/replicore/internal/object"
)

const (
	MaxPartySize    = 5
	MaxRaidSubGroup = 8
	MaxRaidSize     = MaxPartySize * MaxRaidSubGroup
)

var (
	ErrPartyFull      = errors.New("party is full")
	ErrAlreadyInParty = errors.New("player already in a party")
	ErrNoParty        = errors.New("no such party")
)

// PartyInfo tracks a group of players. A party becomes a raid once it is
// converted; sub-groups then hold up to MaxPartySize members each.
type PartyInfo struct {
	GUID    object.GUID
	Leader  object.GUID
	Members map[object.GUID]uint8 // player → sub-group
	Raid    bool
}

func (p *PartyInfo) size() int { return len(p.Members) }

func (p *PartyInfo) capacity() int {
	if p.Raid {
		return MaxRaidSize
	}
	return MaxPartySize
}

// freeSubGroup returns the first sub-group with room.
func (p *PartyInfo) freeSubGroup() uint8 {
	var count [MaxRaidSubGroup]int
	for _, sub := range p.Members {
		count[sub]++
	}
	for i, n := range count {
		if n < MaxPartySize {
			return uint8(i)
		}
	}
	return 0
}

// PartyManager manages all parties and raids. Membership is written by
// the input phase and read by partition ticks running in parallel.
// Implements update.GroupService and detect.GroupService.
type PartyManager struct {
	mu      sync.RWMutex
	nextID  uint32
	parties map[object.GUID]*PartyInfo
	players map[object.GUID]*object.Player
}

func NewPartyManager() *PartyManager {
	return &PartyManager{
		parties: make(map[object.GUID]*PartyInfo),
		players: make(map[object.GUID]*object.Player),
	}
}

// CreateParty creates a new party with the leader and one member.
func (m *PartyManager) CreateParty(leader, member *object.Player) (*PartyInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if leader.Group() != 0 || member.Group() != 0 {
		return nil, ErrAlreadyInParty
	}
	m.nextID++
	p := &PartyInfo{
		GUID:    object.MakeGUID(m.nextID, 0, object.HighGroup),
		Leader:  leader.GUID(),
		Members: make(map[object.GUID]uint8, MaxPartySize),
	}
	m.parties[p.GUID] = p
	m.join(p, leader, 0)
	m.join(p, member, 0)
	return p, nil
}

func (m *PartyManager) join(p *PartyInfo, pl *object.Player, sub uint8) {
	p.Members[pl.GUID()] = sub
	m.players[pl.GUID()] = pl
	pl.SetGroup(p.GUID, sub)
}

// AddMember adds a player to an existing party.
func (m *PartyManager) AddMember(group object.GUID, pl *object.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.parties[group]
	if p == nil {
		return ErrNoParty
	}
	if pl.Group() != 0 {
		return ErrAlreadyInParty
	}
	if p.size() >= p.capacity() {
		return ErrPartyFull
	}
	m.join(p, pl, p.freeSubGroup())
	return nil
}

// ConvertToRaid lifts the size limit of a party.
func (m *PartyManager) ConvertToRaid(group object.GUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.parties[group]
	if p == nil {
		return ErrNoParty
	}
	p.Raid = true
	return nil
}

// ChangeSubGroup moves a raid member. Full sub-groups are refused.
func (m *PartyManager) ChangeSubGroup(pl *object.Player, sub uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.parties[pl.Group()]
	if p == nil || !p.Raid || sub >= MaxRaidSubGroup {
		return ErrNoParty
	}
	n := 0
	for _, s := range p.Members {
		if s == sub {
			n++
		}
	}
	if n >= MaxPartySize {
		return ErrPartyFull
	}
	m.join(p, pl, sub)
	return nil
}

// RemoveMember takes a player out of their party. A party left with one
// member is dissolved; a leaving leader hands over to any remaining
// member.
func (m *PartyManager) RemoveMember(pl *object.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.parties[pl.Group()]
	pl.SetGroup(0, 0)
	delete(m.players, pl.GUID())
	if p == nil {
		return
	}
	delete(p.Members, pl.GUID())
	if p.size() <= 1 {
		m.dissolve(p)
		return
	}
	if p.Leader == pl.GUID() {
		for g := range p.Members {
			p.Leader = g
			break
		}
	}
}

func (m *PartyManager) dissolve(p *PartyInfo) {
	for g := range p.Members {
		if pl := m.players[g]; pl != nil {
			pl.SetGroup(0, 0)
		}
		delete(m.players, g)
	}
	delete(m.parties, p.GUID)
}

func (m *PartyManager) GetParty(group object.GUID) *PartyInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parties[group]
}

// SameGroup reports whether both players share a party sub-group.
func (m *PartyManager) SameGroup(a, b *object.Player) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return a.Group() != 0 && a.Group() == b.Group() && a.SubGroup() == b.SubGroup()
}

// SameRaid reports whether both players are in the same party or raid.
func (m *PartyManager) SameRaid(a, b *object.Player) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return a.Group() != 0 && a.Group() == b.Group()
}
