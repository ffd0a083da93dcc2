package raster

import (
	"testing"
)

func TestMemDatasetAddBand(t *testing.T) {
	ds := NewMemDataset(3, 2, GeoTransform{OriginX: 0, OriginY: 2, PixelSize: 1})

	err := ds.AddBand("short", &ByteRaster{Data: []uint8{1, 2, 3}, Height: 1, Width: 3})
	if err == nil {
		t.Error("undersized band grid accepted")
	}

	err = ds.AddBand("full", &ByteRaster{Data: []uint8{1, 2, 3, 4, 5, 6}, Height: 2, Width: 3})
	if err != nil {
		t.Fatal(err)
	}
	if ds.BandCount() != 1 {
		t.Errorf("expecting 1 band, actual %d", ds.BandCount())
	}

	band, err := ds.Band(1)
	if err != nil {
		t.Fatal(err)
	}
	if band.Description() != "full" {
		t.Errorf("band description: expecting full, actual %q", band.Description())
	}
	if band.RasterType() != "Byte" {
		t.Errorf("raster type: expecting Byte, actual %s", band.RasterType())
	}

	if _, err = ds.Band(0); err == nil {
		t.Error("band 0 accepted, bands are 1-based")
	}
}

func TestMemBandReadWindow(t *testing.T) {
	ds := NewMemDataset(3, 3, GeoTransform{OriginX: 0, OriginY: 3, PixelSize: 1})
	grid := &Float32Raster{
		Data:   []float32{1, 2, 3, 4, 5, 6, 7, 8, 9},
		Height: 3,
		Width:  3,
		NoData: -1,
	}
	if err := ds.AddBand("b", grid); err != nil {
		t.Fatal(err)
	}

	band, _ := ds.Band(1)
	win, err := band.ReadWindow(1, 0, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	r := win.(*Float32Raster)
	expected := []float32{2, 3, 5, 6, 8, 9}
	for i, v := range expected {
		if r.Data[i] != v {
			t.Errorf("window data: expecting %v, actual %v", expected, r.Data)
			break
		}
	}
	if r.GetNoData() != -1 {
		t.Errorf("window nodata: expecting -1, actual %v", r.GetNoData())
	}

	if _, err = band.ReadWindow(2, 2, 2, 2); err == nil {
		t.Error("out of bounds window accepted")
	}
	if _, err = band.ReadWindow(0, 0, 0, 1); err == nil {
		t.Error("empty window accepted")
	}
}
