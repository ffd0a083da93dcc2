package raster

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"path/filepath"
	"testing"
)

const testHeader = `ENVI
description = {
  point sampling test fixture}
samples = 4
lines = 4
bands = 2
data type = 2
interleave = bsq
byte order = 0
map info = {UTM, 1, 1, 0, 4, 1, 1, 55, South, WGS-84}
data ignore value = -9999
band names = {
  elevation, slope}
`

func writeTestRaster(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.bsq")

	var buf bytes.Buffer
	for band := 0; band < 2; band++ {
		for i := 0; i < 16; i++ {
			v := int16((i + 1) * (band + 1))
			if band == 0 && i == 9 {
				v = -9999
			}
			binary.Write(&buf, binary.LittleEndian, v)
		}
	}

	if err := ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(path+".hdr", []byte(testHeader), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenENVI(t *testing.T) {
	path := writeTestRaster(t)
	ds, err := OpenENVI(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Close()

	if ds.Width() != 4 || ds.Height() != 4 || ds.BandCount() != 2 {
		t.Errorf("unexpected shape %dx%d, %d bands", ds.Width(), ds.Height(), ds.BandCount())
	}

	transform := ds.Transform()
	expected := GeoTransform{OriginX: 0, OriginY: 4, PixelSize: 1}
	if transform != expected {
		t.Errorf("geotransform: expecting %v, actual %v", expected, transform)
	}

	band, err := ds.Band(1)
	if err != nil {
		t.Fatal(err)
	}
	if band.RasterType() != "Int16" {
		t.Errorf("raster type: expecting Int16, actual %s", band.RasterType())
	}
	if band.Description() != "elevation" {
		t.Errorf("band description: expecting elevation, actual %q", band.Description())
	}
	noData, hasNoData := band.NoData()
	if !hasNoData || noData != -9999 {
		t.Errorf("nodata: expecting -9999, actual %v (%v)", noData, hasNoData)
	}

	if _, err = ds.Band(3); err == nil {
		t.Error("band 3 of a 2 band dataset accepted")
	}
}

func TestENVIReadWindow(t *testing.T) {
	path := writeTestRaster(t)
	ds, err := OpenENVI(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Close()

	band, _ := ds.Band(1)
	win, err := band.ReadWindow(1, 1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := win.(*Int16Raster)
	if !ok {
		t.Fatalf("unexpected window type %T", win)
	}
	expected := []int16{6, 7, -9999, 11}
	for i, v := range expected {
		if r.Data[i] != v {
			t.Errorf("window data: expecting %v, actual %v", expected, r.Data)
			break
		}
	}

	// second band holds the doubled values
	band2, _ := ds.Band(2)
	win2, err := band2.ReadWindow(0, 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v := win2.(*Int16Raster).Data[0]; v != 2 {
		t.Errorf("band 2 (0,0): expecting 2, actual %v", v)
	}

	if _, err = band.ReadWindow(3, 3, 2, 2); err == nil {
		t.Error("out of bounds window accepted")
	}
}

func TestOpenENVIHeaderErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bsq")
	if err := ioutil.WriteFile(path, make([]byte, 64), 0644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		hdr  string
	}{
		{"missing header", ""},
		{"not envi", "samples = 4\nlines = 4\n"},
		{"unsupported data type", "ENVI\nsamples = 4\nlines = 4\nbands = 1\ndata type = 3\nmap info = {UTM, 1, 1, 0, 4, 1, 1}\n"},
		{"no map info", "ENVI\nsamples = 4\nlines = 4\nbands = 1\ndata type = 1\n"},
		{"bil interleave", "ENVI\nsamples = 4\nlines = 4\nbands = 1\ndata type = 1\ninterleave = bil\nmap info = {UTM, 1, 1, 0, 4, 1, 1}\n"},
		{"non-square pixels", "ENVI\nsamples = 4\nlines = 4\nbands = 1\ndata type = 1\nmap info = {UTM, 1, 1, 0, 4, 1, 2}\n"},
	}
	for _, c := range cases {
		if c.hdr != "" {
			if err := ioutil.WriteFile(path+".hdr", []byte(c.hdr), 0644); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := OpenENVI(path); err == nil {
			t.Errorf("%s: header accepted", c.name)
		}
	}
}

func TestOpenENVITruncated(t *testing.T) {
	path := writeTestRaster(t)
	if err := ioutil.WriteFile(path, make([]byte, 16), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenENVI(path); err == nil {
		t.Error("truncated raster accepted")
	}
}
