package raster

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ENVI data type codes for the element types we sample.
const (
	enviByte    = 1
	enviInt16   = 2
	enviFloat32 = 4
	enviFloat64 = 5
	enviUInt16  = 12
)

var enviTypeNames = map[int]string{
	enviByte:    "Byte",
	enviInt16:   "Int16",
	enviFloat32: "Float32",
	enviFloat64: "Float64",
	enviUInt16:  "UInt16",
}

var enviTypeSizes = map[int]int{
	enviByte:    1,
	enviInt16:   2,
	enviFloat32: 4,
	enviFloat64: 8,
	enviUInt16:  2,
}

// ENVIDataset reads band-sequential flat binary rasters described by an
// ENVI header file next to the data file.
type ENVIDataset struct {
	file      *os.File
	cols      int
	rows      int
	bands     int
	dataType  int
	byteOrder binary.ByteOrder
	transform GeoTransform
	noData    float64
	hasNoData bool
	bandNames []string
}

// OpenENVI opens the raster at path. The header is looked up at
// path+".hdr", falling back to the data file name with a .hdr extension.
func OpenENVI(path string) (*ENVIDataset, error) {
	hdrPath := path + ".hdr"
	if _, err := os.Stat(hdrPath); os.IsNotExist(err) {
		hdrPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".hdr"
	}
	hdr, err := ioutil.ReadFile(hdrPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ENVI header for %s: %v", path, err)
	}

	fields, err := parseENVIHeader(string(hdr))
	if err != nil {
		return nil, fmt.Errorf("%s: %v", hdrPath, err)
	}

	ds := &ENVIDataset{byteOrder: binary.LittleEndian}
	if ds.cols, err = enviInt(fields, "samples"); err != nil {
		return nil, err
	}
	if ds.rows, err = enviInt(fields, "lines"); err != nil {
		return nil, err
	}
	if ds.bands, err = enviInt(fields, "bands"); err != nil {
		return nil, err
	}
	if ds.dataType, err = enviInt(fields, "data type"); err != nil {
		return nil, err
	}
	if _, found := enviTypeNames[ds.dataType]; !found {
		return nil, fmt.Errorf("raster type not implemented: ENVI data type %d", ds.dataType)
	}

	if interleave, found := fields["interleave"]; found && strings.ToLower(interleave) != "bsq" {
		return nil, fmt.Errorf("unsupported interleave %s, only bsq is supported", interleave)
	}
	if order, found := fields["byte order"]; found && strings.TrimSpace(order) == "1" {
		ds.byteOrder = binary.BigEndian
	}

	if err = ds.parseMapInfo(fields); err != nil {
		return nil, err
	}

	if ignore, found := fields["data ignore value"]; found {
		nd, err := strconv.ParseFloat(strings.TrimSpace(ignore), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed data ignore value: %s", ignore)
		}
		ds.noData = nd
		ds.hasNoData = true
	}

	ds.bandNames = make([]string, ds.bands)
	if names, found := fields["band names"]; found {
		parts := strings.Split(names, ",")
		for i := 0; i < ds.bands && i < len(parts); i++ {
			ds.bandNames[i] = strings.TrimSpace(parts[i])
		}
	}

	ds.file, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %s: %v", path, err)
	}

	size := int64(ds.cols) * int64(ds.rows) * int64(ds.bands) * int64(enviTypeSizes[ds.dataType])
	stat, err := ds.file.Stat()
	if err == nil && stat.Size() < size {
		ds.file.Close()
		return nil, fmt.Errorf("raster %s is truncated: %d bytes, header implies %d", path, stat.Size(), size)
	}

	return ds, nil
}

// map info = {proj, ref px, ref py, easting, northing, px size, py size, ...}
// The reference pixel is 1-based and anchors easting/northing.
func (ds *ENVIDataset) parseMapInfo(fields map[string]string) error {
	info, found := fields["map info"]
	if !found {
		return fmt.Errorf("header has no map info, cannot derive geotransform")
	}
	parts := strings.Split(info, ",")
	if len(parts) < 7 {
		return fmt.Errorf("malformed map info: %s", info)
	}

	vals := make([]float64, 6)
	for i := 1; i < 7; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return fmt.Errorf("malformed map info field %q", parts[i])
		}
		vals[i-1] = v
	}

	refX, refY := vals[0], vals[1]
	easting, northing := vals[2], vals[3]
	xSize, ySize := vals[4], vals[5]
	if xSize != ySize {
		return fmt.Errorf("non-square pixels not supported: %v x %v", xSize, ySize)
	}

	ds.transform = GeoTransform{
		OriginX:   easting - (refX-1)*xSize,
		OriginY:   northing + (refY-1)*ySize,
		PixelSize: xSize,
	}
	return nil
}

func (ds *ENVIDataset) Close() error {
	return ds.file.Close()
}

func (ds *ENVIDataset) Width() int {
	return ds.cols
}

func (ds *ENVIDataset) Height() int {
	return ds.rows
}

func (ds *ENVIDataset) Transform() GeoTransform {
	return ds.transform
}

func (ds *ENVIDataset) BandCount() int {
	return ds.bands
}

func (ds *ENVIDataset) Band(num int) (Band, error) {
	if num < 1 || num > ds.bands {
		return nil, fmt.Errorf("band %d out of range, dataset has %d bands", num, ds.bands)
	}
	return &enviBand{ds, num - 1}, nil
}

type enviBand struct {
	ds  *ENVIDataset
	idx int
}

func (eb *enviBand) RasterType() string {
	return enviTypeNames[eb.ds.dataType]
}

func (eb *enviBand) NoData() (float64, bool) {
	return eb.ds.noData, eb.ds.hasNoData
}

func (eb *enviBand) Description() string {
	return eb.ds.bandNames[eb.idx]
}

func (eb *enviBand) ReadWindow(xOff, yOff, width, height int) (Raster, error) {
	ds := eb.ds
	if xOff < 0 || yOff < 0 || width < 1 || height < 1 ||
		xOff+width > ds.cols || yOff+height > ds.rows {
		return nil, fmt.Errorf("window (%d,%d %dx%d) outside dataset bounds %dx%d",
			xOff, yOff, width, height, ds.cols, ds.rows)
	}

	elemSize := enviTypeSizes[ds.dataType]
	bandOffset := int64(eb.idx) * int64(ds.cols) * int64(ds.rows) * int64(elemSize)
	buf := make([]byte, width*height*elemSize)
	for y := 0; y < height; y++ {
		off := bandOffset + (int64(yOff+y)*int64(ds.cols)+int64(xOff))*int64(elemSize)
		if _, err := ds.file.ReadAt(buf[y*width*elemSize:(y+1)*width*elemSize], off); err != nil {
			return nil, fmt.Errorf("raster read failed at row %d: %v", yOff+y, err)
		}
	}

	nVals := width * height
	switch ds.dataType {
	case enviByte:
		return &ByteRaster{Data: buf, Width: width, Height: height, NoData: ds.noData}, nil
	case enviInt16:
		data := make([]int16, nVals)
		for i := range data {
			data[i] = int16(ds.byteOrder.Uint16(buf[i*2:]))
		}
		return &Int16Raster{Data: data, Width: width, Height: height, NoData: ds.noData}, nil
	case enviUInt16:
		data := make([]uint16, nVals)
		for i := range data {
			data[i] = ds.byteOrder.Uint16(buf[i*2:])
		}
		return &UInt16Raster{Data: data, Width: width, Height: height, NoData: ds.noData}, nil
	case enviFloat32:
		data := make([]float32, nVals)
		for i := range data {
			data[i] = math.Float32frombits(ds.byteOrder.Uint32(buf[i*4:]))
		}
		return &Float32Raster{Data: data, Width: width, Height: height, NoData: ds.noData}, nil
	case enviFloat64:
		data := make([]float64, nVals)
		for i := range data {
			data[i] = math.Float64frombits(ds.byteOrder.Uint64(buf[i*8:]))
		}
		return &Float64Raster{Data: data, Width: width, Height: height, NoData: ds.noData}, nil
	default:
		return nil, fmt.Errorf("raster type not implemented")
	}
}

// parseENVIHeader splits "key = value" lines, joining {...} values that
// span multiple lines and stripping the braces.
func parseENVIHeader(hdr string) (map[string]string, error) {
	if !strings.HasPrefix(strings.TrimSpace(hdr), "ENVI") {
		return nil, fmt.Errorf("not an ENVI header")
	}

	fields := make(map[string]string)
	lines := strings.Split(hdr, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:eq]))
		value := strings.TrimSpace(line[eq+1:])
		if strings.HasPrefix(value, "{") {
			for !strings.Contains(value, "}") && i+1 < len(lines) {
				i++
				value += " " + strings.TrimSpace(lines[i])
			}
			value = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(value, "{"), "}"))
		}
		fields[key] = value
	}
	return fields, nil
}

func enviInt(fields map[string]string, key string) (int, error) {
	value, found := fields[key]
	if !found {
		return 0, fmt.Errorf("header field %q is missing", key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("malformed header field %q: %s", key, value)
	}
	return n, nil
}
