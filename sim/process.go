package sim

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// ProcessState represents the lifecycle state of a process.
type ProcessState string

const (
	StateRunnable   ProcessState = "runnable"
	StateWaiting    ProcessState = "waiting"
	StateTerminated ProcessState = "terminated"
)

// Body is the code a process runs when it starts.
//
// Processes are written in continuation-passing style: each yield point
// (Timeout, Acquire, Release, Get, Put, Spawn) takes the rest of the body as
// a func() and returns immediately. The continuation runs once the yield
// point is satisfied. Code between two yield points runs atomically with
// respect to every other process.
//
//	sim.Process("cutter", func(p *sim.Process) {
//		p.Acquire(machine, func() {
//			p.Timeout(setup, func() {
//				p.Release(machine, p.Exit)
//			})
//		})
//	})
type Body func(p *Process)

// Process is a suspendable computation driven by the Simulator.
type Process struct {
	ID   int
	Name string

	sim   *Simulator
	state ProcessState
	held  []*Resource // one entry per slot held, in acquisition order
}

// Process creates a process running body and starts it at the current instant.
func (sim *Simulator) Process(name string, body Body) *Process {
	if body == nil {
		violate("Process", "body must not be nil")
	}
	p := &Process{
		ID:    sim.nextPID,
		Name:  name,
		sim:   sim,
		state: StateRunnable,
	}
	sim.nextPID++
	logrus.Tracef("[t=%.4f] spawn %s", sim.Clock, p)
	sim.Schedule(0, func() { body(p) })
	return p
}

func (p *Process) String() string {
	return fmt.Sprintf("%s#%d", p.Name, p.ID)
}

// State returns the current lifecycle state.
func (p *Process) State() ProcessState {
	return p.state
}

// Sim returns the simulator the process runs on.
func (p *Process) Sim() *Simulator {
	return p.sim
}

// Now is shorthand for p.Sim().Now().
func (p *Process) Now() float64 {
	return p.sim.Clock
}

// Timeout suspends the process for d time units, then runs next.
func (p *Process) Timeout(d float64, next func()) {
	p.mustBeAlive("Timeout")
	p.state = StateWaiting
	p.sim.Schedule(d, func() { p.resume(next) })
}

// Acquire requests one slot of r. If a slot is free and nobody is queued ahead,
// the slot is granted at once; otherwise the process joins r's FIFO queue.
// Either way next runs as a separate event at the instant of the grant.
func (p *Process) Acquire(r *Resource, next func()) {
	p.mustBeAlive("Acquire")
	p.state = StateWaiting
	r.request(p, func() { p.resume(next) })
}

// Release gives back one slot of r. The oldest waiter, if any, is granted the
// slot at the same instant before next runs.
func (p *Process) Release(r *Resource, next func()) {
	p.mustBeAlive("Release")
	r.release(p)
	p.state = StateWaiting
	p.sim.Schedule(0, func() { p.resume(next) })
}

// Get removes amount from c, waiting in FIFO order until the level allows it.
func (p *Process) Get(c *Container, amount float64, next func()) {
	p.mustBeAlive("Get")
	p.state = StateWaiting
	c.get(p, amount, func() { p.resume(next) })
}

// Put adds amount to c, waiting in FIFO order until there is room.
func (p *Process) Put(c *Container, amount float64, next func()) {
	p.mustBeAlive("Put")
	p.state = StateWaiting
	c.put(p, amount, func() { p.resume(next) })
}

// Spawn starts a sibling process running body at the current instant and then
// continues with next. The child is scheduled first.
func (p *Process) Spawn(name string, body Body, next func()) *Process {
	p.mustBeAlive("Spawn")
	child := p.sim.Process(name, body)
	p.state = StateWaiting
	p.sim.Schedule(0, func() { p.resume(next) })
	return child
}

// Exit terminates the process. Slots still held are released, most recent
// first, so that no exit path can leave a resource permanently occupied.
func (p *Process) Exit() {
	if p.state == StateTerminated {
		return
	}
	for len(p.held) > 0 {
		r := p.held[len(p.held)-1]
		logrus.Debugf("[t=%.4f] %s exited holding %s, releasing", p.sim.Clock, p, r.name)
		r.release(p)
	}
	p.state = StateTerminated
	logrus.Tracef("[t=%.4f] exit %s", p.sim.Clock, p)
}

func (p *Process) resume(next func()) {
	p.state = StateRunnable
	if next != nil {
		next()
	}
}

func (p *Process) mustBeAlive(op string) {
	if p.state == StateTerminated {
		violate(op, "process %s already terminated", p)
	}
}

func (p *Process) hold(r *Resource) {
	p.held = append(p.held, r)
}

// unhold drops the most recently acquired slot of r.
// Returns false when the process holds no slot of r.
func (p *Process) unhold(r *Resource) bool {
	for i := len(p.held) - 1; i >= 0; i-- {
		if p.held[i] == r {
			p.held = slices.Delete(p.held, i, i+1)
			return true
		}
	}
	return false
}
