package sim

import (
	"math"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

// resourceRequest is a parked Acquire.
type resourceRequest struct {
	proc    *Process
	granted func()
}

// Resource is a capacity-limited mutual-exclusion primitive: at most Capacity
// processes hold a slot at once, the rest wait in FIFO order.
type Resource struct {
	name     string
	sim      *Simulator
	capacity int
	users    int
	waiters  deque.Deque[resourceRequest]

	busy       float64 // integral of held slots over virtual time
	lastChange float64 // instant users last changed
	created    float64
	grants     int
}

// NewResource creates a resource with the given number of slots.
func NewResource(sim *Simulator, name string, capacity int) *Resource {
	if capacity < 1 {
		violate("NewResource", "%s: capacity must be >= 1, got %d", name, capacity)
	}
	return &Resource{
		name:       name,
		sim:        sim,
		capacity:   capacity,
		lastChange: sim.Clock,
		created:    sim.Clock,
	}
}

// Name returns the resource name.
func (r *Resource) Name() string { return r.name }

// Capacity returns the number of slots.
func (r *Resource) Capacity() int { return r.capacity }

// Count returns the number of slots currently held.
func (r *Resource) Count() int { return r.users }

// QueueLen returns the number of processes waiting for a slot.
func (r *Resource) QueueLen() int { return r.waiters.Len() }

// Grants returns how many acquisitions have been satisfied so far.
func (r *Resource) Grants() int { return r.grants }

// BusyTime returns the slot-time held up to the current instant.
// With capacity 1 this is the time the resource was in use.
// The running sum is capped at capacity times the elapsed time, which it can
// only exceed through float rounding.
func (r *Resource) BusyTime() float64 {
	held := r.busy + float64(r.users)*(r.sim.Clock-r.lastChange)
	return math.Min(held, float64(r.capacity)*(r.sim.Clock-r.created))
}

// Utilization returns BusyTime over the slot-time available in [0, horizon].
// Returns 0 for a zero horizon.
func (r *Resource) Utilization(horizon float64) float64 {
	if horizon <= 0 {
		return 0
	}
	return math.Min(1, r.BusyTime()/(float64(r.capacity)*horizon))
}

func (r *Resource) request(p *Process, granted func()) {
	if r.users < r.capacity && r.waiters.Len() == 0 {
		r.grant(p)
		r.sim.Schedule(0, granted)
		return
	}
	logrus.Tracef("[t=%.4f] %s queued on %s (%d ahead)", r.sim.Clock, p, r.name, r.waiters.Len())
	r.waiters.PushBack(resourceRequest{proc: p, granted: granted})
}

func (r *Resource) release(p *Process) {
	if !p.unhold(r) {
		violate("Release", "%s does not hold %s", p, r.name)
	}
	r.account()
	r.users--
	logrus.Tracef("[t=%.4f] %s released %s", r.sim.Clock, p, r.name)
	for r.users < r.capacity && r.waiters.Len() > 0 {
		w := r.waiters.PopFront()
		r.grant(w.proc)
		r.sim.Schedule(0, w.granted)
	}
}

func (r *Resource) grant(p *Process) {
	r.account()
	r.users++
	if r.users > r.capacity {
		violate("Acquire", "%s: %d holders exceed capacity %d", r.name, r.users, r.capacity)
	}
	r.grants++
	p.hold(r)
	logrus.Tracef("[t=%.4f] %s acquired %s (%d/%d)", r.sim.Clock, p, r.name, r.users, r.capacity)
}

func (r *Resource) account() {
	r.busy += float64(r.users) * (r.sim.Clock - r.lastChange)
	r.lastChange = r.sim.Clock
}
