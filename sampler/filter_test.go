package sampler

import (
	"testing"

	"github.com/nci/pointdrill/raster"
)

func TestFilterWindowNoData(t *testing.T) {
	r := &raster.Int16Raster{Data: []int16{5, 6, -9999, 7}, Height: 2, Width: 2, NoData: -9999}
	out, err := FilterWindow(r, r.NoData, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{5, 6, 7}
	if len(out) != len(expected) {
		t.Fatalf("expecting %v, actual %v", expected, out)
	}
	for i, v := range expected {
		if out[i] != v {
			t.Errorf("expecting %v, actual %v", expected, out)
			break
		}
	}

	// without a declared nodata the sentinel value passes through
	out, err = FilterWindow(r, r.NoData, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 4 {
		t.Errorf("expecting 4 samples, actual %v", out)
	}
}

func TestFilterWindowDismissCoercion(t *testing.T) {
	// dismiss runs in the band's native type, so 6.9 truncates to 6
	r := &raster.Int16Raster{Data: []int16{5, 6, 7, 8}, Height: 2, Width: 2}
	dismiss := 6.9
	out, err := FilterWindow(r, 0, false, &dismiss)
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{5, 7, 8}
	if len(out) != len(expected) {
		t.Fatalf("expecting %v, actual %v", expected, out)
	}
	for i, v := range expected {
		if out[i] != v {
			t.Errorf("expecting %v, actual %v", expected, out)
			break
		}
	}
}

func TestFilterWindowSingleElement(t *testing.T) {
	// a single-pixel window is kept whole or emptied
	r := &raster.Int16Raster{Data: []int16{-9999}, Height: 1, Width: 1, NoData: -9999}
	out, err := FilterWindow(r, r.NoData, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("single nodata pixel: expecting empty, actual %v", out)
	}

	r = &raster.Int16Raster{Data: []int16{6}, Height: 1, Width: 1}
	dismiss := 6.0
	out, err = FilterWindow(r, 0, false, &dismiss)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("single dismissed pixel: expecting empty, actual %v", out)
	}

	out, err = FilterWindow(r, 0, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != 6 {
		t.Errorf("single valid pixel: expecting [6], actual %v", out)
	}
}

func TestFilterWindowFloat32(t *testing.T) {
	r := &raster.Float32Raster{Data: []float32{1.5, -9999, 2.5, 3.5}, Height: 2, Width: 2, NoData: -9999}
	out, err := FilterWindow(r, r.NoData, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{1.5, 2.5, 3.5}
	if len(out) != len(expected) {
		t.Fatalf("expecting %v, actual %v", expected, out)
	}
	for i, v := range expected {
		if out[i] != v {
			t.Errorf("expecting %v, actual %v", expected, out)
			break
		}
	}
}

func TestFilterWindowUnknownType(t *testing.T) {
	if _, err := FilterWindow(nil, 0, false, nil); err == nil {
		t.Error("nil raster accepted")
	}
}
