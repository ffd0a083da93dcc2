package aligner

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"testing"

	"github.com/nci/pointdrill/utils"
)

func TestNewNoop(t *testing.T) {
	// matching or unknown SRS pairs never shell out
	cases := []struct {
		pointSRS  string
		rasterSRS string
	}{
		{"EPSG:4326", "EPSG:4326"},
		{"epsg:4326", "EPSG:4326"},
		{"", "EPSG:4326"},
		{"EPSG:4326", ""},
		{"", ""},
	}
	for _, c := range cases {
		al, err := New("raster", c.pointSRS, c.rasterSRS, false)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := al.(NoopAligner); !ok {
			t.Errorf("SRS pair (%q, %q): expecting noop aligner, actual %T", c.pointSRS, c.rasterSRS, al)
		}
	}
}

func TestNewCmd(t *testing.T) {
	al, err := New("points", "EPSG:4326", "EPSG:3577", true)
	if err != nil {
		t.Fatal(err)
	}
	ca, ok := al.(*CmdAligner)
	if !ok {
		t.Fatalf("expecting command aligner, actual %T", al)
	}
	if ca.Match != "points" || ca.PointSRS != "EPSG:4326" || ca.RasterSRS != "EPSG:3577" {
		t.Errorf("unexpected aligner %+v", ca)
	}
}

func TestNewBadMatch(t *testing.T) {
	if _, err := New("neither", "EPSG:4326", "EPSG:3577", false); !errors.Is(err, utils.ErrInvalidOption) {
		t.Errorf("bad crs side: expecting invalid option, actual %v", err)
	}
}

func TestNoopAlignPassThrough(t *testing.T) {
	points, raster, err := NoopAligner{}.Align(context.Background(), "pts.json", "img.bsq")
	if err != nil {
		t.Fatal(err)
	}
	if points != "pts.json" || raster != "img.bsq" {
		t.Errorf("noop rewrote paths: %s, %s", points, raster)
	}
}

func TestCmdArgs(t *testing.T) {
	args := pointsCmdArgs("EPSG:3577", "pts_projected.json", "pts.json")
	expected := []string{"-overwrite", "-f", "GeoJSON", "-t_srs", "EPSG:3577", "pts_projected.json", "pts.json"}
	for i, a := range expected {
		if args[i] != a {
			t.Errorf("ogr2ogr args: expecting %v, actual %v", expected, args)
			break
		}
	}

	args = rasterCmdArgs("EPSG:4326", "img.tif", "img_projected.tif")
	expected = []string{"-of", "GTiff", "-overwrite", "-t_srs", "EPSG:4326", "img.tif", "img_projected.tif"}
	for i, a := range expected {
		if args[i] != a {
			t.Errorf("gdalwarp args: expecting %v, actual %v", expected, args)
			break
		}
	}
}

func TestCleanup(t *testing.T) {
	// Cleanup runs on both the deferred and the fatal-error path, so it
	// must tolerate being called more than once
	temp, err := ioutil.TempFile(t.TempDir(), "warped*.tif")
	if err != nil {
		t.Fatal(err)
	}
	temp.Close()

	ca := &CmdAligner{tempFile: temp.Name()}
	ca.Cleanup()
	if _, err = os.Stat(temp.Name()); !os.IsNotExist(err) {
		t.Errorf("temp raster not removed: %v", err)
	}
	if len(ca.tempFile) != 0 {
		t.Errorf("temp file still tracked: %q", ca.tempFile)
	}
	ca.Cleanup()

	NoopAligner{}.Cleanup()
}

func TestCmdAlignFailure(t *testing.T) {
	// a nonexistent input makes the external tool fail; the error is an
	// io failure either way, whether or not the binary is installed
	ca := &CmdAligner{Match: "raster", PointSRS: "EPSG:4326", RasterSRS: "EPSG:3577"}
	_, _, err := ca.Align(context.Background(), "/nonexistent/pts.json", "img.bsq")
	if !errors.Is(err, utils.ErrIO) {
		t.Errorf("expecting io failure, actual %v", err)
	}
}
