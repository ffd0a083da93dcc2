package sampler

import (
	"context"
	"fmt"
	"log"

	"github.com/nci/pointdrill/raster"
)

// PointDriller samples one granule at a time against the raster
// dataset: fit the window, read it, filter it, reduce it. Granules are
// independent, so a ConcLimiter runs them on concurrent workers while
// the dataset stays read-only underneath.
type PointDriller struct {
	Context context.Context
	In      chan *SampleGranule
	Out     chan *SampleResult
	Error   chan error
}

func NewPointDriller(ctx context.Context, errChan chan error) *PointDriller {
	return &PointDriller{
		Context: ctx,
		In:      make(chan *SampleGranule, 100),
		Out:     make(chan *SampleResult, 100),
		Error:   errChan,
	}
}

func (pd *PointDriller) Run(ds raster.Dataset, workers int) {
	defer close(pd.Out)

	if workers <= 0 {
		workers = 1
	}

	cLimiter := NewConcLimiter(workers)
	for gran := range pd.In {
		if !cLimiter.Increase(pd.Context) {
			break
		}
		go func(g *SampleGranule) {
			defer cLimiter.Decrease()
			res, err := drillGranule(ds, g)
			if err != nil {
				pd.Error <- err
				return
			}
			pd.Out <- res
		}(gran)
	}
	cLimiter.Wait()
}

func drillGranule(ds raster.Dataset, g *SampleGranule) (*SampleResult, error) {
	band, err := ds.Band(g.BandNum)
	if err != nil {
		return nil, fmt.Errorf("Point Driller: %v", err)
	}

	noData, hasNoData := band.NoData()

	win := ComputeWindow(g.Point, ds.Transform(), g.Radius, ds.Width(), ds.Height())
	if win.Empty() {
		// Point (or its whole window) misses the grid. Not an error,
		// the reducer contract turns an empty sample into nodata.
		if g.Verbose {
			log.Printf("Point Driller: point %d is outside the raster", g.PointSeq)
		}
		return &SampleResult{BandSeq: g.BandSeq, PointSeq: g.PointSeq, Value: noData, NoData: noData}, nil
	}

	window, err := band.ReadWindow(win.XOff, win.YOff, win.Width, win.Height)
	if err != nil {
		return nil, fmt.Errorf("Point Driller: band %d point %d: %v", g.BandNum, g.PointSeq, err)
	}

	values, err := FilterWindow(window, noData, hasNoData, g.Dismiss)
	if err != nil {
		return nil, fmt.Errorf("Point Driller: band %d: %v", g.BandNum, err)
	}

	return &SampleResult{
		BandSeq:  g.BandSeq,
		PointSeq: g.PointSeq,
		Value:    Reduce(values, g.Mode, noData),
		NoData:   noData,
	}, nil
}
