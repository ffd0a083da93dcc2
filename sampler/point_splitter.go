package sampler

import (
	"context"
	"log"
)

// PointSplitter fans a sampling request out into one granule per
// (band, point) pair. Bands iterate in caller order and points keep
// their source order, so the merger can map results back by sequence.
type PointSplitter struct {
	Context context.Context
	In      chan *SampleRequest
	Out     chan *SampleGranule
	Error   chan error
}

func NewPointSplitter(ctx context.Context, errChan chan error) *PointSplitter {
	return &PointSplitter{
		Context: ctx,
		In:      make(chan *SampleRequest, 1),
		Out:     make(chan *SampleGranule, 100),
		Error:   errChan,
	}
}

func (ps *PointSplitter) Run() {
	defer close(ps.Out)
	for req := range ps.In {
		if req.Verbose {
			log.Printf("Point Splitter: %d bands x %d points", len(req.Bands), len(req.Points))
		}
		for ib, bandNum := range req.Bands {
			for ip, point := range req.Points {
				select {
				case <-ps.Context.Done():
					return
				default:
				}

				gran := &SampleGranule{
					ConfigPayLoad: req.ConfigPayLoad,
					BandSeq:       ib,
					BandNum:       bandNum,
					PointSeq:      ip,
					Point:         point,
				}

				select {
				case <-ps.Context.Done():
					return
				case ps.Out <- gran:
				}
			}
		}
	}
}
