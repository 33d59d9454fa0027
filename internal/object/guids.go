package object

import (
	"errors"
	"fmt"
)

// ErrGUIDExhausted means a low GUID counter wrapped.
var ErrGUIDExhausted = errors.New("guid counter exhausted")

const maxLowGUID uint32 = 0xFFFFFFFE

// GUIDAllocator hands out low GUID parts per kind. Counters only grow so a
// stale reference can never alias a newer object.
// Owned by one partition goroutine, no locks.
type GUIDAllocator struct {
	next map[HighGUID]uint32
}

func NewGUIDAllocator() *GUIDAllocator {
	return &GUIDAllocator{next: make(map[HighGUID]uint32)}
}

// Seed starts kind h after last, e.g. the highest low GUID found in storage.
func (a *GUIDAllocator) Seed(h HighGUID, last uint32) {
	if last >= a.next[h] {
		a.next[h] = last
	}
}

// Generate returns the next unused low part for h. Low parts start at 1.
func (a *GUIDAllocator) Generate(h HighGUID) (uint32, error) {
	cur := a.next[h]
	if cur >= maxLowGUID {
		return 0, fmt.Errorf("%s: %w", MakeGUID(0, 0, h).TypeName(), ErrGUIDExhausted)
	}
	cur++
	a.next[h] = cur
	return cur, nil
}
