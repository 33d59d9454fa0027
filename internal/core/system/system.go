package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: drain packet queues, run handlers
	PhasePreUpdate              // 1: deliver last tick's events
	PhaseUpdate                 // 2: partition ticks: sweep, flush, send
	PhaseOutput                 // 3: hand buffered packets to writers
	PhasePersist                // 4: field snapshots
	PhaseCleanup                // 5: remove despawned objects
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "Input"
	case PhasePreUpdate:
		return "PreUpdate"
	case PhaseUpdate:
		return "Update"
	case PhaseOutput:
		return "Output"
	case PhasePersist:
		return "Persist"
	case PhaseCleanup:
		return "Cleanup"
	}
	return "Unknown"
}

// System is one step of the game loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
