package sampler

// Point is one sampling coordinate in the raster's reference system.
type Point struct {
	X float64
	Y float64
}

// ConfigPayLoad carries the read-only sampling parameters shared by
// every granule of a run.
type ConfigPayLoad struct {
	Mode    string
	Radius  int
	Dismiss *float64
	Workers int
	Verbose bool
}

// SampleRequest is one sampling run: the configured bands crossed with
// the ordered point sequence.
type SampleRequest struct {
	ConfigPayLoad
	Bands  []int
	Points []Point
}

// SampleGranule is one (band, point) work item.
type SampleGranule struct {
	ConfigPayLoad
	BandSeq int
	BandNum int
	PointSeq int
	Point    Point
}

// SampleResult is the reduced scalar for one granule. NoData is the
// sentinel the scalar falls back to when the window held no valid pixels.
type SampleResult struct {
	BandSeq  int
	PointSeq int
	Value    float64
	NoData   float64
}

// SampleSet is the merged output of a run: Values[bandSeq][pointSeq],
// point order preserved, plus the per-band nodata sentinels the field
// writer needs.
type SampleSet struct {
	Values [][]float64
	NoData []float64
}
