package sampler

import (
	"math"
	"testing"
)

const testNoData = -9999.0

func TestReduceEmpty(t *testing.T) {
	for _, mode := range SampleModes {
		val := Reduce(nil, mode, testNoData)
		if val != testNoData {
			t.Errorf("%s of empty set: expecting %v, actual %v", mode, testNoData, val)
		}
	}
}

func TestReduceSingle(t *testing.T) {
	for _, mode := range SampleModes {
		val := Reduce([]float64{5}, mode, testNoData)
		if val != 5 {
			t.Errorf("%s of single value: expecting 5, actual %v", mode, val)
		}
	}
}

func TestReduceMedian(t *testing.T) {
	val := Reduce([]float64{9, 5, 6}, "median", testNoData)
	if val != 6 {
		t.Errorf("odd median: expecting 6, actual %v", val)
	}

	val = Reduce([]float64{4, 1, 3, 2}, "median", testNoData)
	if val != 2.5 {
		t.Errorf("even median: expecting 2.5, actual %v", val)
	}
}

func TestReduceMeanMinMax(t *testing.T) {
	values := []float64{2, 8, 5}
	if val := Reduce(values, "mean", testNoData); val != 5 {
		t.Errorf("mean: expecting 5, actual %v", val)
	}
	if val := Reduce(values, "min", testNoData); val != 2 {
		t.Errorf("min: expecting 2, actual %v", val)
	}
	if val := Reduce(values, "max", testNoData); val != 8 {
		t.Errorf("max: expecting 8, actual %v", val)
	}
}

func TestReduceMasksNonFinite(t *testing.T) {
	values := []float64{2, math.NaN(), 4, math.Inf(1)}
	if val := Reduce(values, "mean", testNoData); val != 3 {
		t.Errorf("mean with non-finite values: expecting 3, actual %v", val)
	}
	if val := Reduce(values, "max", testNoData); val != 4 {
		t.Errorf("max with non-finite values: expecting 4, actual %v", val)
	}
	if val := Reduce(values, "median", testNoData); val != 3 {
		t.Errorf("median with non-finite values: expecting 3, actual %v", val)
	}

	// all values masked degenerates to nodata
	allMasked := []float64{math.NaN(), math.Inf(-1)}
	for _, mode := range SampleModes {
		if val := Reduce(allMasked, mode, testNoData); val != testNoData {
			t.Errorf("%s of all-masked set: expecting %v, actual %v", mode, testNoData, val)
		}
	}
}

func TestReduceMajority(t *testing.T) {
	val := Reduce([]float64{1, 2, 1, 2, 1}, "majority", testNoData)
	if val != 1 {
		t.Errorf("majority: expecting 1, actual %v", val)
	}

	// ties resolve to the lowest value
	val = Reduce([]float64{2, 1, 2, 1}, "majority", testNoData)
	if val != 1 {
		t.Errorf("majority tie: expecting 1, actual %v", val)
	}

	// float inputs are truncated before counting
	val = Reduce([]float64{1.7, 1.2, 1.9, 2.1}, "majority", testNoData)
	if val != 1 {
		t.Errorf("majority of floats: expecting 1, actual %v", val)
	}
}

func TestValidateMode(t *testing.T) {
	for _, mode := range SampleModes {
		if err := ValidateMode(mode); err != nil {
			t.Errorf("mode %s rejected: %v", mode, err)
		}
	}
	for _, mode := range []string{"", "average", "Median"} {
		if err := ValidateMode(mode); err == nil {
			t.Errorf("mode %q accepted", mode)
		}
	}
}
