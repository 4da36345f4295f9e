// Tracks per-run sample series and counters used by the layouts' result aggregation.

package sim

// Series is an append-only sample series, e.g. the waits observed at a stage
// or the queue lengths sampled at each poll.
type Series struct {
	samples []float64
}

// Add appends one sample.
func (s *Series) Add(v float64) {
	s.samples = append(s.samples, v)
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.samples)
}

// Empty reports whether nothing was recorded yet.
func (s *Series) Empty() bool {
	return len(s.samples) == 0
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func (s *Series) Mean() float64 {
	return CalculateMean(s.samples)
}

// Max returns the largest sample, or 0 for an empty series.
func (s *Series) Max() float64 {
	m := 0.0
	for i, v := range s.samples {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// Values returns a copy of the samples.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.samples))
	copy(out, s.samples)
	return out
}

// Counters is a named set of integer counters (items processed per stage,
// entries and exits, ...). The zero value is not usable; use NewCounters.
type Counters struct {
	order  []string
	values map[string]int
}

// NewCounters returns counters pre-registered at 0 for each name, so that
// stages that never complete still show up in results.
func NewCounters(names ...string) *Counters {
	c := &Counters{values: make(map[string]int, len(names))}
	for _, n := range names {
		c.register(n)
	}
	return c
}

func (c *Counters) register(name string) {
	if _, ok := c.values[name]; !ok {
		c.order = append(c.order, name)
		c.values[name] = 0
	}
}

// Inc adds one to name.
func (c *Counters) Inc(name string) {
	c.Add(name, 1)
}

// Add adds delta to name.
func (c *Counters) Add(name string, delta int) {
	c.register(name)
	c.values[name] += delta
}

// Get returns the value of name (0 if never touched).
func (c *Counters) Get(name string) int {
	return c.values[name]
}

// Snapshot copies the counters into a fresh map.
func (c *Counters) Snapshot() map[string]int {
	out := make(map[string]int, len(c.values))
	for _, n := range c.order {
		out[n] = c.values[n]
	}
	return out
}

// Accumulator is a named set of float64 totals (busy time per stage, ...).
type Accumulator struct {
	values map[string]float64
}

// NewAccumulator returns totals pre-registered at 0 for each name.
func NewAccumulator(names ...string) *Accumulator {
	a := &Accumulator{values: make(map[string]float64, len(names))}
	for _, n := range names {
		a.values[n] = 0
	}
	return a
}

// Add adds v to name.
func (a *Accumulator) Add(name string, v float64) {
	a.values[name] += v
}

// Get returns the total for name.
func (a *Accumulator) Get(name string) float64 {
	return a.values[name]
}

// Snapshot copies the totals into a fresh map, each passed through scale.
func (a *Accumulator) Snapshot(scale func(float64) float64) map[string]float64 {
	out := make(map[string]float64, len(a.values))
	for n, v := range a.values {
		if scale != nil {
			v = scale(v)
		}
		out[n] = v
	}
	return out
}
