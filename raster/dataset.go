package raster

import (
	"fmt"
)

// GeoTransform maps grid indices to map coordinates. PixelSize is the
// ground size of one pixel; rows grow downwards from OriginY.
type GeoTransform struct {
	OriginX   float64
	OriginY   float64
	PixelSize float64
}

// Band exposes windowed read access to one raster band.
type Band interface {
	RasterType() string
	NoData() (float64, bool)
	Description() string
	ReadWindow(xOff, yOff, width, height int) (Raster, error)
}

// Dataset is the read-only raster boundary the sampler works against.
// The grid is immutable for the duration of a sampling run and windowed
// reads on disjoint windows are safe to issue concurrently.
type Dataset interface {
	Width() int
	Height() int
	Transform() GeoTransform
	BandCount() int
	Band(num int) (Band, error)
}

// RasterTypeOf reports the canonical type string for a raster window.
func RasterTypeOf(r Raster) string {
	switch r.(type) {
	case *ByteRaster:
		return "Byte"
	case *Int16Raster:
		return "Int16"
	case *UInt16Raster:
		return "UInt16"
	case *Float32Raster:
		return "Float32"
	case *Float64Raster:
		return "Float64"
	default:
		return ""
	}
}

// MemDataset holds full-size band grids in memory. It backs tests and
// callers that already have their pixels decoded.
type MemDataset struct {
	Cols      int
	Rows      int
	GeoTrans  GeoTransform
	BandData  []Raster
	BandNames []string
}

func NewMemDataset(cols, rows int, transform GeoTransform) *MemDataset {
	return &MemDataset{
		Cols:     cols,
		Rows:     rows,
		GeoTrans: transform,
	}
}

// AddBand appends a full-size grid as the next band. The raster's Data
// length must cover cols*rows.
func (md *MemDataset) AddBand(name string, grid Raster) error {
	if grid.Size() != md.Cols*md.Rows {
		return fmt.Errorf("band %s: grid has %d values, dataset is %dx%d", name, grid.Size(), md.Cols, md.Rows)
	}
	md.BandData = append(md.BandData, grid)
	md.BandNames = append(md.BandNames, name)
	return nil
}

func (md *MemDataset) Width() int {
	return md.Cols
}

func (md *MemDataset) Height() int {
	return md.Rows
}

func (md *MemDataset) Transform() GeoTransform {
	return md.GeoTrans
}

func (md *MemDataset) BandCount() int {
	return len(md.BandData)
}

func (md *MemDataset) Band(num int) (Band, error) {
	if num < 1 || num > len(md.BandData) {
		return nil, fmt.Errorf("band %d out of range, dataset has %d bands", num, len(md.BandData))
	}
	return &memBand{md, num - 1}, nil
}

type memBand struct {
	ds  *MemDataset
	idx int
}

func (mb *memBand) RasterType() string {
	return RasterTypeOf(mb.ds.BandData[mb.idx])
}

func (mb *memBand) NoData() (float64, bool) {
	nd := mb.ds.BandData[mb.idx].GetNoData()
	return nd, true
}

func (mb *memBand) Description() string {
	return mb.ds.BandNames[mb.idx]
}

func (mb *memBand) ReadWindow(xOff, yOff, width, height int) (Raster, error) {
	if xOff < 0 || yOff < 0 || width < 1 || height < 1 ||
		xOff+width > mb.ds.Cols || yOff+height > mb.ds.Rows {
		return nil, fmt.Errorf("window (%d,%d %dx%d) outside dataset bounds %dx%d",
			xOff, yOff, width, height, mb.ds.Cols, mb.ds.Rows)
	}

	cols := mb.ds.Cols
	switch t := mb.ds.BandData[mb.idx].(type) {
	case *ByteRaster:
		out := &ByteRaster{Data: make([]uint8, width*height), Width: width, Height: height, NoData: t.NoData}
		for y := 0; y < height; y++ {
			copy(out.Data[y*width:(y+1)*width], t.Data[(yOff+y)*cols+xOff:])
		}
		return out, nil
	case *Int16Raster:
		out := &Int16Raster{Data: make([]int16, width*height), Width: width, Height: height, NoData: t.NoData}
		for y := 0; y < height; y++ {
			copy(out.Data[y*width:(y+1)*width], t.Data[(yOff+y)*cols+xOff:])
		}
		return out, nil
	case *UInt16Raster:
		out := &UInt16Raster{Data: make([]uint16, width*height), Width: width, Height: height, NoData: t.NoData}
		for y := 0; y < height; y++ {
			copy(out.Data[y*width:(y+1)*width], t.Data[(yOff+y)*cols+xOff:])
		}
		return out, nil
	case *Float32Raster:
		out := &Float32Raster{Data: make([]float32, width*height), Width: width, Height: height, NoData: t.NoData}
		for y := 0; y < height; y++ {
			copy(out.Data[y*width:(y+1)*width], t.Data[(yOff+y)*cols+xOff:])
		}
		return out, nil
	case *Float64Raster:
		out := &Float64Raster{Data: make([]float64, width*height), Width: width, Height: height, NoData: t.NoData}
		for y := 0; y < height; y++ {
			copy(out.Data[y*width:(y+1)*width], t.Data[(yOff+y)*cols+xOff:])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("raster type not implemented")
	}
}
