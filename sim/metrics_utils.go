// sim/metrics_utils.go
package sim

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculateMean is a util function that calculates the mean of a data list.
// An empty list yields 0.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	return stat.Mean(toFloat64s(numbers), nil)
}

// CalculatePercentile returns the p-th percentile (0-100) of data using linear
// interpolation between closest ranks. An empty list yields 0.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	sorted := toFloat64s(data)
	slices.Sort(sorted)
	return stat.Quantile(math.Min(math.Max(p/100, 0), 1), stat.LinInterp, sorted, nil)
}

// RoundHalfEven rounds to the nearest integer, ties to even. Reported queue
// sizes and waits are rounded this way.
func RoundHalfEven(x float64) float64 {
	return math.RoundToEven(x)
}

func toFloat64s[T IntOrFloat64](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
