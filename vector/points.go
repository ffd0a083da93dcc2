package vector

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	geo "github.com/nci/geometry"

	"github.com/nci/pointdrill/sampler"
	"github.com/nci/pointdrill/utils"
)

// Feature keeps the raw geometry and properties of one input feature so
// that everything we do not touch round-trips unchanged.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Collection is a GeoJSON FeatureCollection of sampling points.
type Collection struct {
	Type     string          `json:"type"`
	CRS      json.RawMessage `json:"crs,omitempty"`
	Features []*Feature      `json:"features"`
}

// LoadPoints reads a GeoJSON FeatureCollection from path.
func LoadPoints(path string) (*Collection, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading points %s: %v", utils.ErrIO, path, err)
	}

	var coll Collection
	if err = json.Unmarshal(data, &coll); err != nil {
		return nil, fmt.Errorf("%w: parsing points %s: %v", utils.ErrIO, path, err)
	}
	if len(coll.Features) == 0 {
		return nil, fmt.Errorf("%w: %s contains no features", utils.ErrInvalidOption, path)
	}
	return &coll, nil
}

// FromPoints synthesises a collection for point sources that carry no
// features of their own, e.g. the Postgres query source.
func FromPoints(points []sampler.Point) (*Collection, error) {
	coll := &Collection{Type: "FeatureCollection"}
	for i, pt := range points {
		geom, err := json.Marshal(&geo.PointView{Type: "Point", Coords: []float64{pt.X, pt.Y}})
		if err != nil {
			return nil, fmt.Errorf("point %d: %v", i, err)
		}
		coll.Features = append(coll.Features, &Feature{
			Type:       "Feature",
			Geometry:   geom,
			Properties: make(map[string]interface{}),
		})
	}
	return coll, nil
}

// Points extracts the coordinates in feature order. Every feature must
// carry a Point geometry.
func (c *Collection) Points() ([]sampler.Point, error) {
	points := make([]sampler.Point, len(c.Features))
	for i, feat := range c.Features {
		var pt geo.PointView
		if err := json.Unmarshal(feat.Geometry, &pt); err != nil {
			return nil, fmt.Errorf("feature %d: %v", i, err)
		}
		if pt.Type != "Point" || len(pt.Coords) < 2 {
			return nil, fmt.Errorf("feature %d: geometry not supported, only Point features can be sampled", i)
		}
		points[i] = sampler.Point{X: pt.Coords[0], Y: pt.Coords[1]}
	}
	return points, nil
}
