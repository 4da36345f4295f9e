package sim

import "cmp"

// event is a continuation scheduled on the virtual clock.
// Events fire in (time, seq) order; seq is assigned by Schedule so that
// events sharing a timestamp resume in the order they were scheduled.
type event struct {
	time float64 // Virtual time at which fn runs
	seq  uint64  // Insertion order, deterministic tie-breaker
	fn   func()
}

// Cmp orders events by timestamp, then by scheduling order.
func (e *event) Cmp(other *event) int {
	if c := cmp.Compare(e.time, other.time); c != 0 {
		return c
	}
	return cmp.Compare(e.seq, other.seq)
}
