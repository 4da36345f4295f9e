package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Timeout_AdvancesClock(t *testing.T) {
	s := NewSimulator(100)
	var at []float64
	s.Process("sleeper", func(p *Process) {
		at = append(at, p.Now())
		p.Timeout(2.5, func() {
			at = append(at, p.Now())
			p.Timeout(0, func() {
				at = append(at, p.Now())
				p.Exit()
			})
		})
	})

	s.Run()

	assert.Equal(t, []float64{0, 2.5, 2.5}, at)
}

func TestProcess_States(t *testing.T) {
	s := NewSimulator(10)
	var during ProcessState
	p := s.Process("p", func(p *Process) {
		p.Timeout(1, func() {
			during = p.State()
			p.Exit()
		})
	})
	require.Equal(t, StateRunnable, p.State())

	s.RunUntil(0.5)
	assert.Equal(t, StateWaiting, p.State())

	s.Run()
	assert.Equal(t, StateRunnable, during)
	assert.Equal(t, StateTerminated, p.State())
}

func TestProcess_Spawn_ChildStartsBeforeParentContinues(t *testing.T) {
	s := NewSimulator(10)
	var got []string
	s.Process("parent", func(p *Process) {
		got = append(got, "parent")
		p.Spawn("child", func(c *Process) {
			got = append(got, "child")
			c.Exit()
		}, func() {
			got = append(got, "parent-after-spawn")
			p.Exit()
		})
	})

	s.Run()

	assert.Equal(t, []string{"parent", "child", "parent-after-spawn"}, got)
}

func TestProcess_Exit_ReleasesHeldSlots(t *testing.T) {
	// GIVEN a process that exits while holding a machine, and a waiter
	s := NewSimulator(10)
	m := NewResource(s, "m", 1)
	var waiterGotItAt float64 = -1
	s.Process("holder", func(p *Process) {
		p.Acquire(m, func() {
			p.Timeout(3, p.Exit)
		})
	})
	s.Process("waiter", func(p *Process) {
		p.Acquire(m, func() {
			waiterGotItAt = p.Now()
			p.Release(m, p.Exit)
		})
	})

	s.Run()

	// THEN the waiter is granted the slot at the instant the holder exits
	assert.Equal(t, 3.0, waiterGotItAt)
	assert.Equal(t, 0, m.Count())
}

func TestProcess_ReleaseWithoutHolding_Panics(t *testing.T) {
	s := NewSimulator(10)
	m := NewResource(s, "m", 1)
	s.Process("rogue", func(p *Process) {
		p.Release(m, p.Exit)
	})

	assert.PanicsWithValue(t, InvariantViolation{Op: "Release", Detail: "rogue#0 does not hold m"}, s.Run)
}

func TestProcess_YieldAfterExit_Panics(t *testing.T) {
	s := NewSimulator(10)
	s.Process("ghost", func(p *Process) {
		p.Exit()
		p.Timeout(1, nil)
	})
	assert.Panics(t, s.Run)
}

func TestProcess_AbandonedAtHorizon_HasNoSideEffects(t *testing.T) {
	// GIVEN a process that would only finish after the horizon
	s := NewSimulator(5)
	m := NewResource(s, "m", 1)
	finished := false
	p := s.Process("slow", func(p *Process) {
		p.Acquire(m, func() {
			p.Timeout(10, func() {
				finished = true
				p.Release(m, p.Exit)
			})
		})
	})

	s.Run()

	// THEN it is left suspended, still holding its slot
	assert.False(t, finished)
	assert.Equal(t, StateWaiting, p.State())
	assert.Equal(t, 1, m.Count())
}
