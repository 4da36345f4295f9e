// sim/simulator.go
package sim

import (
	"math"

	"github.com/addrummond/heap"
	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time, the event queue
// and the bookkeeping shared by every process of one run.
// A Simulator is single-use and not safe for concurrent use: one run, one
// goroutine. Independent runs each build their own Simulator.
type Simulator struct {
	Clock   float64 // current virtual time
	Horizon float64 // Run stops once the next event lies past this instant

	queue   heap.Heap[event, heap.Min]
	pending int    // events currently queued
	nextSeq uint64 // sequence number handed to the next scheduled event
	nextPID int    // id handed to the next spawned process
	events  int    // events executed so far
}

// NewSimulator returns a Simulator at virtual time 0 that will run up to horizon.
func NewSimulator(horizon float64) *Simulator {
	if horizon < 0 || math.IsNaN(horizon) {
		violate("NewSimulator", "horizon must be >= 0, got %v", horizon)
	}
	return &Simulator{Horizon: horizon}
}

// Now returns the current virtual time.
func (sim *Simulator) Now() float64 {
	return sim.Clock
}

// Pending returns the number of events waiting in the queue.
func (sim *Simulator) Pending() int {
	return sim.pending
}

// Executed returns the number of events run so far.
func (sim *Simulator) Executed() int {
	return sim.events
}

// Schedule queues fn to run delay time units from now.
// Events scheduled for the same instant run in the order they were scheduled.
func (sim *Simulator) Schedule(delay float64, fn func()) {
	if delay < 0 || math.IsNaN(delay) {
		violate("Schedule", "delay must be >= 0, got %v", delay)
	}
	if fn == nil {
		violate("Schedule", "fn must not be nil")
	}
	heap.PushOrderable(&sim.queue, event{
		time: sim.Clock + delay,
		seq:  sim.nextSeq,
		fn:   fn,
	})
	sim.nextSeq++
	sim.pending++
}

// Run drives the simulation until Horizon.
func (sim *Simulator) Run() {
	sim.RunUntil(sim.Horizon)
}

// RunUntil pops events in (time, seq) order and executes them until the next
// event lies past horizon or the queue is empty. Events exactly at horizon
// still run. Afterwards the clock reads horizon: processes that are still
// waiting are abandoned where they stand.
func (sim *Simulator) RunUntil(horizon float64) {
	if horizon < sim.Clock {
		violate("RunUntil", "horizon %v is before the current time %v", horizon, sim.Clock)
	}
	for {
		next, ok := heap.Peek(&sim.queue)
		if !ok || next.time > horizon {
			break
		}
		ev, _ := heap.PopOrderable(&sim.queue)
		sim.pending--
		sim.Clock = ev.time
		sim.events++
		logrus.Tracef("[t=%.4f] executing event #%d", sim.Clock, ev.seq)
		ev.fn()
	}
	sim.Clock = horizon
	logrus.Debugf("[t=%.4f] simulation ended after %d events, %d still pending", sim.Clock, sim.events, sim.pending)
}
