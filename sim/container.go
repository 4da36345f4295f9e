package sim

import (
	"math"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

// Unbounded is the capacity of a container whose Put never blocks.
const Unbounded = math.MaxFloat64

// containerRequest is a parked Get or Put.
type containerRequest struct {
	proc   *Process
	amount float64
	done   func()
}

// Container is a numeric buffer with blocking Get and Put.
// Both queues are served strictly head-of-line: a waiter that cannot
// proceed blocks the waiters behind it.
// The level always satisfies 0 <= level <= capacity.
type Container struct {
	name     string
	sim      *Simulator
	capacity float64
	level    float64
	getQ     deque.Deque[containerRequest]
	putQ     deque.Deque[containerRequest]
}

// NewContainer creates a container holding initial out of capacity.
// Pass Unbounded for a buffer with no upper limit.
func NewContainer(sim *Simulator, name string, capacity, initial float64) *Container {
	if !(capacity > 0) {
		violate("NewContainer", "%s: capacity must be > 0, got %v", name, capacity)
	}
	if initial < 0 || initial > capacity || math.IsNaN(initial) {
		violate("NewContainer", "%s: initial level %v outside [0, %v]", name, initial, capacity)
	}
	return &Container{
		name:     name,
		sim:      sim,
		capacity: capacity,
		level:    initial,
	}
}

// Name returns the container name.
func (c *Container) Name() string { return c.name }

// Level returns the amount currently stored.
func (c *Container) Level() float64 { return c.level }

// Capacity returns the upper bound of Level, Unbounded if there is none.
func (c *Container) Capacity() float64 { return c.capacity }

// GetQueueLen returns the number of parked Get requests.
func (c *Container) GetQueueLen() int { return c.getQ.Len() }

// PutQueueLen returns the number of parked Put requests.
func (c *Container) PutQueueLen() int { return c.putQ.Len() }

func (c *Container) get(p *Process, amount float64, done func()) {
	if !(amount > 0) || amount > c.capacity {
		violate("Get", "%s: amount %v outside (0, %v]", c.name, amount, c.capacity)
	}
	c.getQ.PushBack(containerRequest{proc: p, amount: amount, done: done})
	c.settle()
}

func (c *Container) put(p *Process, amount float64, done func()) {
	if !(amount > 0) || amount > c.capacity {
		violate("Put", "%s: amount %v outside (0, %v]", c.name, amount, c.capacity)
	}
	c.putQ.PushBack(containerRequest{proc: p, amount: amount, done: done})
	c.settle()
}

// settle serves queue heads until neither can proceed. A put that frees a
// getter, or a get that frees a putter, cascades within the same instant.
func (c *Container) settle() {
	for progressed := true; progressed; {
		progressed = false
		if c.putQ.Len() > 0 {
			if req := c.putQ.Front(); c.capacity-c.level >= req.amount {
				c.putQ.PopFront()
				c.level += req.amount
				c.check("Put")
				logrus.Tracef("[t=%.4f] %s put %v into %s (level %v)", c.sim.Clock, req.proc, req.amount, c.name, c.level)
				c.sim.Schedule(0, req.done)
				progressed = true
			}
		}
		if c.getQ.Len() > 0 {
			if req := c.getQ.Front(); c.level >= req.amount {
				c.getQ.PopFront()
				c.level -= req.amount
				c.check("Get")
				logrus.Tracef("[t=%.4f] %s got %v from %s (level %v)", c.sim.Clock, req.proc, req.amount, c.name, c.level)
				c.sim.Schedule(0, req.done)
				progressed = true
			}
		}
	}
}

func (c *Container) check(op string) {
	if c.level < 0 || c.level > c.capacity {
		violate(op, "%s: level %v outside [0, %v]", c.name, c.level, c.capacity)
	}
}
