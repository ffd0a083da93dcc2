package utils

import (
	"errors"
	"fmt"
	"io/ioutil"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/nci/pointdrill/sampler"
)

// Error kinds the CLI distinguishes: bad configuration fails fast before
// any sampling starts, I/O failures abort the run with no partial output.
var (
	ErrInvalidOption = errors.New("invalid option")
	ErrIO            = errors.New("io failure")
)

// FieldKind is the attribute type a sampled band writes.
type FieldKind int

const (
	FieldInteger FieldKind = iota
	FieldReal
)

const maxFieldNameLen = 10

var fieldNameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
var fieldNameStripRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Config holds optional defaults loaded from a YAML file. Command line
// flags override whatever is set here.
type Config struct {
	Radius   int    `yaml:"radius"`
	Mode     string `yaml:"mode"`
	Workers  int    `yaml:"workers"`
	Memcache string `yaml:"memcache"`
	Postgres string `yaml:"postgres"`
	Report   string `yaml:"report_template"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading config %s: %v", ErrIO, path, err)
	}
	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing config %s: %v", ErrInvalidOption, path, err)
	}
	return &cfg, nil
}

// SamplingOptions is the validated, immutable configuration record for
// one run. Build it once with NewSamplingOptions and hand it around
// read-only.
type SamplingOptions struct {
	Radius  int
	Mode    string
	Bands   []int
	Dismiss *float64
	Names   []string
	Workers int
}

// NewSamplingOptions validates the raw option strings. Band and name
// lists are comma separated; dismiss is optional and empty means unset.
func NewSamplingOptions(radius int, mode, bandList, dismiss, nameList string, workers int) (*SamplingOptions, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius must not be negative, got %d", ErrInvalidOption, radius)
	}
	if err := validateMode(mode); err != nil {
		return nil, err
	}

	opts := &SamplingOptions{
		Radius:  radius,
		Mode:    mode,
		Workers: workers,
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	if len(bandList) > 0 {
		for _, part := range strings.Split(bandList, ",") {
			bandNum, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || bandNum < 1 {
				return nil, fmt.Errorf("%w: malformed band index %q, band counting starts at 1", ErrInvalidOption, part)
			}
			opts.Bands = append(opts.Bands, bandNum)
		}
	}

	if len(dismiss) > 0 {
		value, err := strconv.ParseFloat(strings.TrimSpace(dismiss), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed dismiss value %q", ErrInvalidOption, dismiss)
		}
		opts.Dismiss = &value
	}

	if len(nameList) > 0 {
		for _, name := range strings.Split(nameList, ",") {
			name = strings.TrimSpace(name)
			if err := ValidateFieldName(name); err != nil {
				return nil, err
			}
			opts.Names = append(opts.Names, name)
		}
	}

	return opts, nil
}

// Resolve fills the band and name defaults against an opened dataset:
// all bands when no list was given, sanitised band descriptions (or
// band_<n>) when no names were given.
func (opts *SamplingOptions) Resolve(bandCount int, descriptions []string) error {
	if len(opts.Bands) == 0 {
		for b := 1; b <= bandCount; b++ {
			opts.Bands = append(opts.Bands, b)
		}
	}
	for _, bandNum := range opts.Bands {
		if bandNum > bandCount {
			return fmt.Errorf("%w: band %d requested, raster has %d bands", ErrInvalidOption, bandNum, bandCount)
		}
	}

	if len(opts.Names) == 0 {
		for _, bandNum := range opts.Bands {
			name := ""
			if bandNum-1 < len(descriptions) {
				name = SanitizeFieldName(descriptions[bandNum-1])
			}
			if len(name) == 0 {
				name = fmt.Sprintf("band_%d", bandNum)
			}
			opts.Names = append(opts.Names, name)
		}
	}

	if len(opts.Names) != len(opts.Bands) {
		return fmt.Errorf("%w: %d field names given for %d bands", ErrInvalidOption, len(opts.Names), len(opts.Bands))
	}
	return nil
}

// ValidateFieldName enforces the attribute naming rules: at most 10
// characters from [a-zA-Z0-9_].
func ValidateFieldName(name string) error {
	if len(name) == 0 || len(name) > maxFieldNameLen {
		return fmt.Errorf("%w: field name %q must be 1 to %d characters", ErrInvalidOption, name, maxFieldNameLen)
	}
	if !fieldNameRe.MatchString(name) {
		return fmt.Errorf("%w: field name %q may only contain a-z, A-Z, 0-9 and _", ErrInvalidOption, name)
	}
	return nil
}

// SanitizeFieldName strips disallowed characters and truncates to the
// attribute name limit.
func SanitizeFieldName(name string) string {
	name = fieldNameStripRe.ReplaceAllString(name, "")
	if len(name) > maxFieldNameLen {
		name = name[:maxFieldNameLen]
	}
	return name
}

// ElementTypeToFieldKind maps a band element type to the attribute kind
// a non-majority statistic writes. Majority always writes integers.
func ElementTypeToFieldKind(rasterType string) (FieldKind, error) {
	switch rasterType {
	case "Byte", "Int16", "UInt16":
		return FieldInteger, nil
	case "Float32", "Float64":
		return FieldReal, nil
	default:
		return FieldReal, fmt.Errorf("raster type not implemented: %s", rasterType)
	}
}

// FieldKindForMode resolves the attribute kind for a band and mode.
func FieldKindForMode(rasterType, mode string) (FieldKind, error) {
	if mode == "majority" {
		return FieldInteger, nil
	}
	return ElementTypeToFieldKind(rasterType)
}

func validateMode(mode string) error {
	if err := sampler.ValidateMode(mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	return nil
}
