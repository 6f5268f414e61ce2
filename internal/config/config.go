// Package config loads the YAML configuration file: log level, batch
// options and user presets.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"image-processor/internal/imageio"
	"image-processor/internal/logger"
	"image-processor/internal/models"
)

type Config struct {
	LogLevel string          `yaml:"log_level"`
	Batch    BatchConfig     `yaml:"batch"`
	Presets  []models.Preset `yaml:"-"`
}

type BatchConfig struct {
	Workers      int           `yaml:"workers"`
	StepDelay    time.Duration `yaml:"step_delay"`
	OutputFormat string        `yaml:"output_format"`
}

// presetSpec decodes filters on top of identity settings, so a preset only
// lists the parameters it changes.
type presetSpec struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Filters     yaml.Node `yaml:"filters"`
}

type fileConfig struct {
	Config  `yaml:",inline"`
	Presets []presetSpec `yaml:"presets"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Batch: BatchConfig{
			Workers:      1,
			OutputFormat: "png",
		},
	}
}

// Load reads path, or returns the defaults when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	fc := fileConfig{Config: *Default()}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := fc.Config
	for i, spec := range fc.Presets {
		preset, err := spec.decode()
		if err != nil {
			return nil, fmt.Errorf("preset %d: %w", i, err)
		}
		cfg.Presets = append(cfg.Presets, preset)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (ps presetSpec) decode() (models.Preset, error) {
	if strings.TrimSpace(ps.Name) == "" {
		return models.Preset{}, errors.New("name is required")
	}

	filters := models.DefaultFilterSettings()
	if !ps.Filters.IsZero() {
		if err := ps.Filters.Decode(&filters); err != nil {
			return models.Preset{}, fmt.Errorf("%s: %w", ps.Name, err)
		}
	}

	id := ps.ID
	if id == "" {
		id = strings.ToLower(strings.ReplaceAll(ps.Name, " ", "-"))
	}
	return models.Preset{
		ID:          id,
		Name:        ps.Name,
		Description: ps.Description,
		Filters:     filters,
	}, nil
}

func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be >= 1, got %d", c.Batch.Workers)
	}
	if c.Batch.StepDelay < 0 {
		return fmt.Errorf("batch.step_delay must not be negative")
	}
	if err := imageio.CheckFormat(c.Batch.OutputFormat); err != nil {
		return fmt.Errorf("batch.output_format: %w", err)
	}
	for _, p := range c.Presets {
		if err := p.Filters.Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}
	return nil
}

// AllPresets returns the built-in presets followed by configured ones.
// A configured preset replaces a built-in preset of the same name.
func (c *Config) AllPresets() []models.Preset {
	presets := models.DefaultPresets()
	for _, p := range c.Presets {
		replaced := false
		for i := range presets {
			if strings.EqualFold(presets[i].Name, p.Name) {
				presets[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			presets = append(presets, p)
		}
	}
	return presets
}

// Preset finds a preset by name or ID.
func (c *Config) Preset(name string) (models.Preset, error) {
	p, ok := models.FindPreset(c.AllPresets(), name)
	if !ok {
		return models.Preset{}, fmt.Errorf("unknown preset %q", name)
	}
	return p, nil
}
