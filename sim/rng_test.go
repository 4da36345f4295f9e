package sim

import (
	"math"
	"math/rand"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		a := rng1.ForSubsystem("corte").Float64()
		b := rng2.ForSubsystem("corte").Float64()
		if a != b {
			t.Errorf("Value %d: got %v and %v, want identical", i, a, b)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Drawing from stage A doesn't affect stage B
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	rngB := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 10; i++ {
		rngA.ForSubsystem("corte").Float64()
	}
	aFirst := rngA.ForSubsystem("costura").Float64()
	bFirst := rngB.ForSubsystem("costura").Float64()

	if aFirst != bFirst {
		t.Errorf("costura first draw shifted by corte draws: %v vs %v", aFirst, bFirst)
	}
}

func TestPartitionedRNG_Caching(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	if rng.ForSubsystem("x") != rng.ForSubsystem("x") {
		t.Error("ForSubsystem should return the cached instance")
	}
}

func TestPartitionedRNG_DifferentSubsystems_DifferentStreams(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	a := rng.ForSubsystem("injetora").Int63()
	b := rng.ForSubsystem("flamagem").Int63()
	if a == b {
		t.Errorf("distinct subsystems produced the same first draw %d", a)
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	key := NewSimulationKey(7)
	if got := NewPartitionedRNG(key).Key(); got != key {
		t.Errorf("Key() = %d, want %d", got, key)
	}
}

// === Sampling Tests ===

func TestNormal_ZeroStd_ReturnsMeanWithoutDraw(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ref := rand.New(rand.NewSource(1))

	if got := Normal(rng, 4.4, 0); got != 4.4 {
		t.Errorf("Normal(std=0) = %v, want 4.4", got)
	}
	// The stream must be untouched.
	if rng.Float64() != ref.Float64() {
		t.Error("Normal with zero std consumed a draw")
	}
}

func TestNormal_SampleMeanConverges(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += Normal(rng, 10, 2)
	}
	if mean := sum / n; math.Abs(mean-10) > 0.1 {
		t.Errorf("sample mean %v too far from 10", mean)
	}
}

func TestServiceTime_NeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 5000; i++ {
		if d := ServiceTime(rng, 0.1, 5, 1); d < 0 {
			t.Fatalf("ServiceTime returned %v", d)
		}
	}
}

func TestServiceTime_ScalesByFactor(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	if got := ServiceTime(rng, 4, 0, 1.5); got != 6 {
		t.Errorf("ServiceTime(4, 0, 1.5) = %v, want 6", got)
	}
}

func TestUniform_WithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 5000; i++ {
		v := Uniform(rng, 3, 6)
		if v < 3 || v > 6 {
			t.Fatalf("Uniform(3, 6) = %v", v)
		}
	}
	if got := Uniform(rng, 2, 2); got != 2 {
		t.Errorf("Uniform(2, 2) = %v, want 2", got)
	}
}
