package layout

import (
	"math/rand"

	"github.com/jit-sim/jit-sim/sim"
	"github.com/jit-sim/jit-sim/sim/trace"
)

// congestionRate scales stock into the congestion-adjustment factor.
const congestionRate = 0.0075

// congestionFactor returns max(1, congestionRate*stock) once waits has any
// sample, 1 before that. It looks only at whether a wait was ever recorded,
// not at the current queue depth.
func congestionFactor(waits *sim.Series, stock float64) float64 {
	if waits.Empty() {
		return 1
	}
	return max(1, congestionRate*stock)
}

// stage is one step of a production line: optional resource, fixed setup,
// normally distributed service time scaled by an optional congestion factor.
type stage struct {
	name     string
	resource *sim.Resource // nil for stages without a machine
	setup    float64       // 0 skips the setup wait entirely
	mean     float64
	std      float64
	rng      *rand.Rand
	factor   func() float64 // nil means 1

	busy  *sim.Accumulator
	trace *trace.SimulationTrace

	// acquired runs right after the resource is granted, with the instant
	// the item started waiting.
	acquired func(p *sim.Process, queued float64)
}

// work runs one item through the stage. done is called at the end of service
// with the resource still held; it must eventually call release.
func (s *stage) work(p *sim.Process, item int, queued float64, done func()) {
	s.acquire(p, func() {
		started := p.Now()
		if s.acquired != nil {
			s.acquired(p, queued)
		}
		s.pay(p, s.setup, func() {
			factor := 1.0
			if s.factor != nil {
				factor = s.factor()
			}
			d := sim.ServiceTime(s.rng, s.mean, s.std, factor)
			s.busy.Add(s.name, d)
			p.Timeout(d, func() {
				s.trace.RecordStage(trace.StageRecord{
					Item:     item,
					Stage:    s.name,
					Queued:   queued,
					Started:  started,
					Finished: p.Now(),
				})
				done()
			})
		})
	})
}

// release gives the stage resource back, if there is one, then runs next.
func (s *stage) release(p *sim.Process, next func()) {
	if s.resource == nil {
		next()
		return
	}
	p.Release(s.resource, next)
}

func (s *stage) acquire(p *sim.Process, next func()) {
	if s.resource == nil {
		next()
		return
	}
	p.Acquire(s.resource, next)
}

func (s *stage) pay(p *sim.Process, d float64, next func()) {
	if d == 0 {
		next()
		return
	}
	p.Timeout(d, next)
}
