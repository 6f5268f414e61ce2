package models

import "strings"

// Preset is a named FilterSettings bundle.
type Preset struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Filters     FilterSettings `json:"filters" yaml:"filters"`
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() []Preset {
	return []Preset{
		{
			ID:          "1",
			Name:        "Vintage",
			Description: "Classic vintage photo effect",
			Filters: withDefaults(FilterSettings{
				Brightness: 110,
				Contrast:   120,
				Saturation: 60,
				Sepia:      40,
			}),
		},
		{
			ID:          "2",
			Name:        "Black & White",
			Description: "Classic monochrome",
			Filters: withDefaults(FilterSettings{
				Brightness: 100,
				Contrast:   110,
				Saturation: 0,
				Grayscale:  100,
			}),
		},
		{
			ID:          "3",
			Name:        "Dreamy",
			Description: "Soft, ethereal look",
			Filters: withDefaults(FilterSettings{
				Brightness: 120,
				Contrast:   90,
				Saturation: 110,
				Blur:       2,
			}),
		},
	}
}

// FindPreset looks a preset up by name, ignoring case.
func FindPreset(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) || p.ID == name {
			return p, true
		}
	}
	return Preset{}, false
}

// withDefaults fills the parameters presets never set with their identity values.
func withDefaults(fs FilterSettings) FilterSettings {
	if fs.Posterize == 0 {
		fs.Posterize = parameterRanges[FilterPosterize].Identity
	}
	if fs.Pixelation == 0 {
		fs.Pixelation = parameterRanges[FilterPixelation].Identity
	}
	return fs
}

// Normalize fills unset posterize and pixelation values with identity, so
// partially specified settings from config files stay valid.
func (fs FilterSettings) Normalize() FilterSettings {
	return withDefaults(fs)
}
