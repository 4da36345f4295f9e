package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeries_Empty(t *testing.T) {
	var s Series
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0.0, s.Mean())
	assert.Equal(t, 0.0, s.Max())
}

func TestSeries_Stats(t *testing.T) {
	var s Series
	for _, v := range []float64{2, 8, 5} {
		s.Add(v)
	}
	assert.False(t, s.Empty())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 5.0, s.Mean())
	assert.Equal(t, 8.0, s.Max())

	// Values is a copy
	vals := s.Values()
	vals[0] = 100
	assert.Equal(t, 8.0, s.Max())
}

func TestSeries_Max_AllNegative(t *testing.T) {
	var s Series
	s.Add(-3)
	s.Add(-1)
	assert.Equal(t, -1.0, s.Max())
}

func TestCounters_PreRegisteredNamesSurviveInSnapshot(t *testing.T) {
	// GIVEN counters for two stages where only one ever completes work
	c := NewCounters("corte", "costura")
	c.Inc("corte")
	c.Add("corte", 2)

	snap := c.Snapshot()

	// THEN the idle stage is reported as 0
	assert.Equal(t, map[string]int{"corte": 3, "costura": 0}, snap)
	assert.Equal(t, 0, c.Get("unknown"))

	// AND the snapshot is detached
	snap["corte"] = 99
	assert.Equal(t, 3, c.Get("corte"))
}

func TestAccumulator_SnapshotScales(t *testing.T) {
	a := NewAccumulator("injetora", "colagem")
	a.Add("injetora", 120)
	a.Add("injetora", 60)

	assert.Equal(t, 180.0, a.Get("injetora"))
	assert.Equal(t, map[string]float64{"injetora": 180, "colagem": 0}, a.Snapshot(nil))
	assert.Equal(t, map[string]float64{"injetora": 3, "colagem": 0},
		a.Snapshot(func(v float64) float64 { return v / 60 }))
}
