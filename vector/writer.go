package vector

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/nci/pointdrill/utils"
)

// AttachField writes one sampled value per feature under the given
// attribute name. A pre-existing field is overwritten with a warning.
// Integer fields truncate; the nodata sentinel is written as-is so the
// attribute stays 1:1 with the point sequence.
func (c *Collection) AttachField(name string, kind utils.FieldKind, values []float64) error {
	if len(values) != len(c.Features) {
		return fmt.Errorf("field %s: %d values for %d features", name, len(values), len(c.Features))
	}

	collision := false
	for _, feat := range c.Features {
		if feat.Properties == nil {
			continue
		}
		if _, found := feat.Properties[name]; found {
			collision = true
			break
		}
	}
	if collision {
		log.Printf("Warning: field %s already exists! Values will be overwritten!", name)
	}

	for i, feat := range c.Features {
		if feat.Properties == nil {
			feat.Properties = make(map[string]interface{})
		}
		if kind == utils.FieldInteger {
			feat.Properties[name] = int(values[i])
		} else {
			feat.Properties[name] = values[i]
		}
	}
	return nil
}

// AttachNullableField writes an attribute that may be null per point,
// used for derived expression fields with no defined value.
func (c *Collection) AttachNullableField(name string, values []*float64) error {
	if len(values) != len(c.Features) {
		return fmt.Errorf("field %s: %d values for %d features", name, len(values), len(c.Features))
	}
	for i, feat := range c.Features {
		if feat.Properties == nil {
			feat.Properties = make(map[string]interface{})
		}
		if values[i] == nil {
			feat.Properties[name] = nil
		} else {
			feat.Properties[name] = *values[i]
		}
	}
	return nil
}

// Write serialises the collection. overwrite guards an existing target
// the same way the reference tool does.
func (c *Collection) Write(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%w: output file %s already exists and shall not be overwritten", utils.ErrInvalidOption, path)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", utils.ErrIO, path, err)
	}
	if err = ioutil.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", utils.ErrIO, path, err)
	}
	return nil
}
