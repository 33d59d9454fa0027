package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stub struct {
	name  string
	phase Phase
	log   *[]string
}

func (s stub) Phase() Phase           { return s.phase }
func (s stub) Update(_ time.Duration) { *s.log = append(*s.log, s.name) }

func TestRunnerOrdersByPhaseStably(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(stub{"cleanup", PhaseCleanup, &log})
	r.Register(stub{"output", PhaseOutput, &log})
	r.Register(stub{"input-a", PhaseInput, &log})
	r.Register(stub{"update", PhaseUpdate, &log})
	r.Register(stub{"input-b", PhaseInput, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input-a", "input-b", "update", "output", "cleanup"}, log)
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(stub{"update", PhaseUpdate, &log})
	r.Register(stub{"input", PhaseInput, &log})

	r.TickPhase(PhaseInput, 0)
	assert.Equal(t, []string{"input"}, log)
	assert.Equal(t, "Persist", PhasePersist.String())
}
