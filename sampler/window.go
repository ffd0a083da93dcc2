package sampler

import (
	"math"

	"github.com/nci/pointdrill/raster"
)

// Window is a read region inside a raster grid. A window clipped down
// to nothing means the point misses the grid entirely.
type Window struct {
	XOff   int
	YOff   int
	Width  int
	Height int
}

func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}

// ComputeWindow fits a sampling window of nominal side 2*radius (one
// pixel when radius is 0) around the point and clips it to the grid.
// The grid's Y axis is inverted: rows grow downwards while map Y grows
// upwards, hence the OriginY - point.Y flip.
func ComputeWindow(pt Point, transform raster.GeoTransform, radius, cols, rows int) Window {
	size := 2 * radius
	if radius == 0 {
		size = 1
	}

	xOff := int(math.Floor((pt.X-transform.OriginX)/transform.PixelSize)) - radius
	yOff := int(math.Floor((transform.OriginY-pt.Y)/transform.PixelSize)) - radius

	xOff, width := clipAxis(xOff, size, cols)
	yOff, height := clipAxis(yOff, size, rows)

	return Window{XOff: xOff, YOff: yOff, Width: width, Height: height}
}

// clipAxis shrinks the window on whichever side overflows the [0, extent)
// range. Both sides are checked independently so a window larger than the
// whole extent clips on both.
func clipAxis(off, size, extent int) (int, int) {
	if off < 0 {
		size += off
		off = 0
	}
	if off+size > extent {
		size = extent - off
	}
	return off, size
}
