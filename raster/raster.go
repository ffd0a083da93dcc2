package raster

// Raster is a window of pixels read out of one band. The concrete
// types carry the band's native element type so that nodata and
// dismiss comparisons happen in that type.
type Raster interface {
	GetNoData() float64
	Size() int
}

type ByteRaster struct {
	Data          []uint8
	Height, Width int
	NoData        float64
}

func (br *ByteRaster) GetNoData() float64 {
	return br.NoData
}

func (br *ByteRaster) Size() int {
	return len(br.Data)
}

type Int16Raster struct {
	Data          []int16
	Height, Width int
	NoData        float64
}

func (s16 *Int16Raster) GetNoData() float64 {
	return s16.NoData
}

func (s16 *Int16Raster) Size() int {
	return len(s16.Data)
}

type UInt16Raster struct {
	Data          []uint16
	Height, Width int
	NoData        float64
}

func (u16 *UInt16Raster) GetNoData() float64 {
	return u16.NoData
}

func (u16 *UInt16Raster) Size() int {
	return len(u16.Data)
}

type Float32Raster struct {
	Data          []float32
	Height, Width int
	NoData        float64
}

func (f32 *Float32Raster) GetNoData() float64 {
	return f32.NoData
}

func (f32 *Float32Raster) Size() int {
	return len(f32.Data)
}

type Float64Raster struct {
	Data          []float64
	Height, Width int
	NoData        float64
}

func (f64 *Float64Raster) GetNoData() float64 {
	return f64.NoData
}

func (f64 *Float64Raster) Size() int {
	return len(f64.Data)
}
