package sampler

import (
	"fmt"

	"github.com/nci/pointdrill/raster"
)

// FilterWindow flattens a raster window into the valid samples, dropping
// nodata and dismissed pixels. Comparisons run in the band's native
// element type, so the dismiss value is truncated into that type first.
//
// A single-pixel window keeps the legacy semantics: it is either kept
// whole or emptied, depending on whether the one value matches nodata
// or dismiss.
func FilterWindow(r raster.Raster, noData float64, hasNoData bool, dismiss *float64) ([]float64, error) {
	switch t := r.(type) {
	case *raster.ByteRaster:
		nd := uint8(noData)
		var dis uint8
		if dismiss != nil {
			dis = uint8(*dismiss)
		}
		out := make([]float64, 0, len(t.Data))
		for _, v := range t.Data {
			if hasNoData && v == nd {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			if dismiss != nil && v == dis {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			out = append(out, float64(v))
		}
		return out, nil

	case *raster.Int16Raster:
		nd := int16(noData)
		var dis int16
		if dismiss != nil {
			dis = int16(*dismiss)
		}
		out := make([]float64, 0, len(t.Data))
		for _, v := range t.Data {
			if hasNoData && v == nd {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			if dismiss != nil && v == dis {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			out = append(out, float64(v))
		}
		return out, nil

	case *raster.UInt16Raster:
		nd := uint16(noData)
		var dis uint16
		if dismiss != nil {
			dis = uint16(*dismiss)
		}
		out := make([]float64, 0, len(t.Data))
		for _, v := range t.Data {
			if hasNoData && v == nd {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			if dismiss != nil && v == dis {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			out = append(out, float64(v))
		}
		return out, nil

	case *raster.Float32Raster:
		nd := float32(noData)
		var dis float32
		if dismiss != nil {
			dis = float32(*dismiss)
		}
		out := make([]float64, 0, len(t.Data))
		for _, v := range t.Data {
			if hasNoData && v == nd {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			if dismiss != nil && v == dis {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			out = append(out, float64(v))
		}
		return out, nil

	case *raster.Float64Raster:
		nd := noData
		var dis float64
		if dismiss != nil {
			dis = *dismiss
		}
		out := make([]float64, 0, len(t.Data))
		for _, v := range t.Data {
			if hasNoData && v == nd {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			if dismiss != nil && v == dis {
				if len(t.Data) > 1 {
					continue
				}
				return out, nil
			}
			out = append(out, float64(v))
		}
		return out, nil

	default:
		return nil, fmt.Errorf("raster type not implemented")
	}
}
