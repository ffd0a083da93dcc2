package sampler

import (
	"fmt"
	"math"
	"sort"
)

// Statistic modes accepted by the reducer.
var SampleModes = []string{"median", "mean", "min", "max", "majority"}

// ValidateMode rejects unknown statistic modes. This runs once at
// configuration time so the reducer never sees a bad mode per sample.
func ValidateMode(mode string) error {
	for _, m := range SampleModes {
		if m == mode {
			return nil
		}
	}
	return fmt.Errorf("unknown statistic mode %q, must be one of %v", mode, SampleModes)
}

// Reduce collapses the filtered samples into one scalar. An empty input,
// or one that is entirely non-finite, yields the nodata sentinel.
// median, mean, min and max mask out NaN and Inf; majority counts the
// samples truncated to integers and breaks frequency ties towards the
// lowest value.
func Reduce(values []float64, mode string, noData float64) float64 {
	if len(values) == 0 {
		return noData
	}

	switch mode {
	case "median":
		finite := finiteValues(values)
		if len(finite) == 0 {
			return noData
		}
		sort.Float64s(finite)
		mid := len(finite) / 2
		if len(finite)%2 == 0 {
			return (finite[mid-1] + finite[mid]) / 2.0
		}
		return finite[mid]

	case "mean":
		sum := 0.0
		count := 0
		for _, v := range values {
			if !isFinite(v) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			return noData
		}
		return sum / float64(count)

	case "min":
		min := math.Inf(1)
		found := false
		for _, v := range values {
			if !isFinite(v) {
				continue
			}
			if v < min {
				min = v
			}
			found = true
		}
		if !found {
			return noData
		}
		return min

	case "max":
		max := math.Inf(-1)
		found := false
		for _, v := range values {
			if !isFinite(v) {
				continue
			}
			if v > max {
				max = v
			}
			found = true
		}
		if !found {
			return noData
		}
		return max

	case "majority":
		counts := make(map[int]int)
		for _, v := range values {
			if !isFinite(v) {
				continue
			}
			counts[int(v)]++
		}
		if len(counts) == 0 {
			return noData
		}
		best := 0
		bestCount := -1
		for v, n := range counts {
			if n > bestCount || (n == bestCount && v < best) {
				best = v
				bestCount = n
			}
		}
		return float64(best)
	}

	return noData
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
