package sampler

import (
	"context"
	"log"
)

// SampleMerger collects the per-granule results into band-major value
// tables indexed by point sequence, so attribute attachment downstream
// sees the points in their source order. Each granule owns a distinct
// (band, point) slot, no locking needed beyond the channel.
type SampleMerger struct {
	Context context.Context
	In      chan *SampleResult
	Out     chan *SampleSet
	Error   chan error
}

func NewSampleMerger(ctx context.Context, errChan chan error) *SampleMerger {
	return &SampleMerger{
		Context: ctx,
		In:      make(chan *SampleResult, 100),
		Out:     make(chan *SampleSet, 1),
		Error:   errChan,
	}
}

func (sm *SampleMerger) Run(nBands, nPoints int, verbose bool) {
	defer close(sm.Out)

	set := &SampleSet{
		Values: make([][]float64, nBands),
		NoData: make([]float64, nBands),
	}
	for ib := range set.Values {
		set.Values[ib] = make([]float64, nPoints)
	}

	nRes := 0
	for res := range sm.In {
		set.Values[res.BandSeq][res.PointSeq] = res.Value
		set.NoData[res.BandSeq] = res.NoData
		nRes++
	}

	if nRes != nBands*nPoints {
		// Short count means the run was cancelled; drop the partial set.
		if verbose {
			log.Printf("Sample Merger: %d of %d results received, discarding", nRes, nBands*nPoints)
		}
		return
	}

	sm.Out <- set
}
