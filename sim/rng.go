package sim

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical parameters
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// WallClockKey derives a key from the wall clock, for runs that were not
// given a seed. Results of such runs vary from run to run.
func WallClockKey() SimulationKey {
	return SimulationKey(time.Now().UnixNano())
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem,
// typically one per production stage, so that adding draws to one stage does
// not shift the samples seen by another.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === Sampling ===

// Normal draws from N(mean, std). A zero std returns mean without consuming
// a draw.
func Normal(rng *rand.Rand, mean, std float64) float64 {
	if std == 0 {
		return mean
	}
	return rng.NormFloat64()*std + mean
}

// ServiceTime draws a stage duration: N(mean, std) scaled by factor,
// floored at 0 so a draw can never schedule into the past.
func ServiceTime(rng *rand.Rand, mean, std, factor float64) float64 {
	return math.Max(0, Normal(rng, mean, std)*factor)
}

// Uniform draws from U[lo, hi]. The bounds may be given in either order.
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
