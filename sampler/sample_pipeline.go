package sampler

import (
	"context"
	"fmt"
	"log"

	"github.com/nci/pointdrill/raster"
)

// SamplePipeline wires splitter, driller and merger together for one
// sampling run. Results come back on the returned channel; failures go
// to the shared error channel, and cancelling the context stops new
// granules from being issued while in-flight ones finish.
type SamplePipeline struct {
	Context context.Context
	Error   chan error
	DataSet raster.Dataset
}

func InitSamplePipeline(ctx context.Context, ds raster.Dataset, errChan chan error) *SamplePipeline {
	return &SamplePipeline{
		Context: ctx,
		Error:   errChan,
		DataSet: ds,
	}
}

func (sp *SamplePipeline) Process(req *SampleRequest) chan *SampleSet {
	splt := NewPointSplitter(sp.Context, sp.Error)
	driller := NewPointDriller(sp.Context, sp.Error)
	merger := NewSampleMerger(sp.Context, sp.Error)

	go func() {
		splt.In <- req
		close(splt.In)
	}()

	driller.In = splt.Out
	merger.In = driller.Out

	if req.Mode == "majority" {
		sp.warnLossyBands(req.Bands)
	}

	go splt.Run()
	go driller.Run(sp.DataSet, req.Workers)
	go merger.Run(len(req.Bands), len(req.Points), req.Verbose)

	return merger.Out
}

// Majority coercion to integers is lossy on floating bands. Warn once
// per band up front rather than once per point.
func (sp *SamplePipeline) warnLossyBands(bands []int) {
	for _, bandNum := range bands {
		band, err := sp.DataSet.Band(bandNum)
		if err != nil {
			continue
		}
		switch band.RasterType() {
		case "Float32", "Float64":
			log.Printf("Warning: mode majority only works with integer values, band %d (%s) will be truncated", bandNum, band.RasterType())
		}
	}
}

// Sample runs the pipeline synchronously and returns the merged set.
// This is the embarrassingly-parallel sampleAll contract: one value per
// (band, point), independent across granules.
func Sample(ctx context.Context, ds raster.Dataset, req *SampleRequest) (*SampleSet, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 100)
	pipeline := InitSamplePipeline(ctx, ds, errChan)
	out := pipeline.Process(req)

	for {
		select {
		case err := <-errChan:
			cancel()
			return nil, err
		case set, ok := <-out:
			if !ok {
				// Merger gave up without a set: cancelled, surface the
				// first error if one is pending.
				select {
				case err := <-errChan:
					return nil, err
				default:
				}
				return nil, fmt.Errorf("sampling cancelled: %v", ctx.Err())
			}
			return set, nil
		}
	}
}
