package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"image-processor/internal/models"
)

// filterFlags binds one float flag per filter parameter plus --preset.
type filterFlags struct {
	values map[string]*float64
	preset string
}

func addFilterFlags(fs *pflag.FlagSet) *filterFlags {
	ff := &filterFlags{values: make(map[string]*float64)}
	defaults := models.DefaultFilterSettings()

	for _, name := range models.FilterNames() {
		r, _ := models.Range(name)
		def, _ := defaults.Get(name)
		ff.values[name] = fs.Float64(name, def,
			fmt.Sprintf("%s [%g..%g %s], identity %g", name, r.Min, r.Max, r.Unit, r.Identity))
	}
	fs.StringVar(&ff.preset, "preset", "", "start from a named preset; explicit filter flags override it")

	return ff
}

// settings resolves the preset (if any) and applies explicitly set flags on top.
func (ff *filterFlags) settings(fs *pflag.FlagSet, app *application) (models.FilterSettings, error) {
	settings := models.DefaultFilterSettings()
	if ff.preset != "" {
		preset, err := app.cfg.Preset(ff.preset)
		if err != nil {
			return settings, err
		}
		settings = preset.Filters.Normalize()
	}

	for _, name := range models.FilterNames() {
		if !fs.Changed(name) {
			continue
		}
		if err := settings.Set(name, *ff.values[name]); err != nil {
			return settings, err
		}
	}

	return settings, settings.Validate()
}
