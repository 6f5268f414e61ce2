package models

import (
	"fmt"
	"math"
	"strings"
)

// Filter names, in canonical pipeline order.
const (
	FilterBrightness = "brightness"
	FilterContrast   = "contrast"
	FilterSaturation = "saturation"
	FilterGrayscale  = "grayscale"
	FilterSepia      = "sepia"
	FilterBlur       = "blur"
	FilterSharpen    = "sharpen"
	FilterInvert     = "invert"
	FilterPosterize  = "posterize"
	FilterPixelation = "pixelation"
)

var filterOrder = []string{
	FilterBrightness,
	FilterContrast,
	FilterSaturation,
	FilterGrayscale,
	FilterSepia,
	FilterBlur,
	FilterSharpen,
	FilterInvert,
	FilterPosterize,
	FilterPixelation,
}

// FilterNames returns every recognised filter name in canonical order.
func FilterNames() []string {
	names := make([]string, len(filterOrder))
	copy(names, filterOrder)
	return names
}

// ParameterRange defines the valid domain and identity value of a parameter
type ParameterRange struct {
	Min      float64
	Max      float64
	Step     float64
	Identity float64
	Unit     string
}

// Contains reports whether v lies inside [Min, Max].
func (r ParameterRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var parameterRanges = map[string]ParameterRange{
	FilterBrightness: {Min: 0, Max: 200, Step: 1, Identity: 100, Unit: "%"},
	FilterContrast:   {Min: 0, Max: 200, Step: 1, Identity: 100, Unit: "%"},
	FilterSaturation: {Min: 0, Max: 200, Step: 1, Identity: 100, Unit: "%"},
	FilterGrayscale:  {Min: 0, Max: 100, Step: 1, Identity: 0, Unit: "%"},
	FilterSepia:      {Min: 0, Max: 100, Step: 1, Identity: 0, Unit: "%"},
	FilterBlur:       {Min: 0, Max: 20, Step: 1, Identity: 0, Unit: "px"},
	FilterSharpen:    {Min: 0, Max: 100, Step: 1, Identity: 0, Unit: "%"},
	FilterInvert:     {Min: 0, Max: 100, Step: 1, Identity: 0, Unit: "%"},
	FilterPosterize:  {Min: 2, Max: 256, Step: 1, Identity: 256, Unit: "levels"},
	FilterPixelation: {Min: 1, Max: 100, Step: 1, Identity: 1, Unit: "px"},
}

// Range returns the documented domain of a filter parameter.
func Range(name string) (ParameterRange, error) {
	r, ok := parameterRanges[name]
	if !ok {
		return ParameterRange{}, NewParameterError(name, nil, "unknown filter")
	}
	return r, nil
}

// FilterSettings is the flat parameter surface of the filter pipeline.
// Brightness, contrast and saturation are percentages where 100 is identity.
type FilterSettings struct {
	Brightness float64 `json:"brightness" yaml:"brightness"`
	Contrast   float64 `json:"contrast" yaml:"contrast"`
	Saturation float64 `json:"saturation" yaml:"saturation"`
	Grayscale  float64 `json:"grayscale" yaml:"grayscale"`
	Sepia      float64 `json:"sepia" yaml:"sepia"`
	Blur       float64 `json:"blur" yaml:"blur"`
	Sharpen    float64 `json:"sharpen" yaml:"sharpen"`
	Invert     float64 `json:"invert" yaml:"invert"`
	Posterize  float64 `json:"posterize" yaml:"posterize"`
	Pixelation float64 `json:"pixelation" yaml:"pixelation"`
}

// DefaultFilterSettings returns settings where every filter is at identity.
func DefaultFilterSettings() FilterSettings {
	return FilterSettings{
		Brightness: 100,
		Contrast:   100,
		Saturation: 100,
		Posterize:  256,
		Pixelation: 1,
	}
}

func (fs *FilterSettings) field(name string) (*float64, bool) {
	switch name {
	case FilterBrightness:
		return &fs.Brightness, true
	case FilterContrast:
		return &fs.Contrast, true
	case FilterSaturation:
		return &fs.Saturation, true
	case FilterGrayscale:
		return &fs.Grayscale, true
	case FilterSepia:
		return &fs.Sepia, true
	case FilterBlur:
		return &fs.Blur, true
	case FilterSharpen:
		return &fs.Sharpen, true
	case FilterInvert:
		return &fs.Invert, true
	case FilterPosterize:
		return &fs.Posterize, true
	case FilterPixelation:
		return &fs.Pixelation, true
	}
	return nil, false
}

// Get returns the value of the named parameter.
func (fs FilterSettings) Get(name string) (float64, error) {
	p, ok := fs.field(strings.ToLower(name))
	if !ok {
		return 0, NewParameterError(name, nil, "unknown filter")
	}
	return *p, nil
}

// Set validates and stores the named parameter.
func (fs *FilterSettings) Set(name string, value float64) error {
	name = strings.ToLower(name)
	p, ok := fs.field(name)
	if !ok {
		return NewParameterError(name, value, "unknown filter")
	}
	if err := validateParameter(name, value); err != nil {
		return err
	}
	*p = value
	return nil
}

// Enabled reports whether the named filter differs from its identity value.
func (fs FilterSettings) Enabled(name string) bool {
	v, err := fs.Get(name)
	if err != nil {
		return false
	}
	return v != parameterRanges[name].Identity
}

// ActiveFilters returns the enabled filter names in canonical order.
func (fs FilterSettings) ActiveFilters() []string {
	active := make([]string, 0, len(filterOrder))
	for _, name := range filterOrder {
		if fs.Enabled(name) {
			active = append(active, name)
		}
	}
	return active
}

// IsIdentity reports whether no filter is enabled.
func (fs FilterSettings) IsIdentity() bool {
	return len(fs.ActiveFilters()) == 0
}

// Validate checks every parameter against its documented domain.
func (fs FilterSettings) Validate() error {
	for _, name := range filterOrder {
		v, _ := fs.Get(name)
		if err := validateParameter(name, v); err != nil {
			return err
		}
	}
	return nil
}

// String lists the enabled filters, e.g. "brightness=120 sepia=40".
func (fs FilterSettings) String() string {
	active := fs.ActiveFilters()
	if len(active) == 0 {
		return "identity"
	}
	parts := make([]string, len(active))
	for i, name := range active {
		v, _ := fs.Get(name)
		parts[i] = fmt.Sprintf("%s=%g", name, v)
	}
	return strings.Join(parts, " ")
}

func validateParameter(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewParameterError(name, value, "must be a finite number")
	}
	r := parameterRanges[name]
	if !r.Contains(value) {
		return NewParameterError(name, value,
			fmt.Sprintf("must be within [%g, %g]", r.Min, r.Max))
	}
	return nil
}
