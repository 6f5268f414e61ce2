// Package editor holds one image's base buffer and live filter settings and
// re-derives the preview whenever the settings change.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"image-processor/internal/logger"
	"image-processor/internal/models"
	"image-processor/internal/processing/histogram"
)

// ErrSuperseded is returned by a render that finished after a newer edit
// (or a Commit) had already been applied. Its result is discarded.
var ErrSuperseded = errors.New("render superseded by a newer edit")

// Renderer produces a preview from the base buffer.
type Renderer interface {
	Apply(ctx context.Context, buf *models.PixelBuffer, settings models.FilterSettings) (*models.PixelBuffer, error)
}

// Editor owns exactly one base buffer. The preview is always rendered from
// the base, never from a previous preview, so settings changes do not
// accumulate rounding.
type Editor struct {
	mu               sync.RWMutex
	base             *models.PixelBuffer
	settings         models.FilterSettings
	preview          *models.PixelBuffer
	baseHistogram    *models.Histogram
	previewHistogram *models.Histogram
	renderer         Renderer
	logger           logger.Logger

	// generation increments when a render starts or a Commit happens;
	// applied is the generation whose result is currently installed.
	generation uint64
	applied    uint64
}

type Option func(*Editor)

func WithLogger(log logger.Logger) Option {
	return func(e *Editor) {
		if log != nil {
			e.logger = log
		}
	}
}

// New copies base and renders the initial preview with default settings.
// The base histogram is computed concurrently with the first render; both
// only read the base buffer.
func New(ctx context.Context, base *models.PixelBuffer, renderer Renderer, opts ...Option) (*Editor, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}

	e := &Editor{
		base:     base.Clone(),
		settings: models.DefaultFilterSettings(),
		renderer: renderer,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	var (
		preview *models.PixelBuffer
		hist    *models.Histogram
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hist, err = histogram.Calculate(e.base)
		return err
	})
	g.Go(func() error {
		var err error
		preview, err = e.renderer.Apply(gctx, e.base, e.settings)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("initial render: %w", err)
	}

	previewHist, err := histogram.Calculate(preview)
	if err != nil {
		return nil, err
	}

	e.preview = preview
	e.baseHistogram = hist
	e.previewHistogram = previewHist

	e.logger.Debug("Editor", "editor opened", map[string]interface{}{
		"width":  base.Width,
		"height": base.Height,
	})

	return e, nil
}

// SetFilter changes one parameter and re-renders.
func (e *Editor) SetFilter(ctx context.Context, name string, value float64) (*models.PixelBuffer, error) {
	settings := e.Settings()
	if err := settings.Set(name, value); err != nil {
		return nil, err
	}
	return e.ApplySettings(ctx, settings)
}

// ApplySettings replaces all parameters and re-renders. On error the
// previous settings and preview are kept. When renders overlap, the most
// recently started one wins; an older one finishing later gets ErrSuperseded.
func (e *Editor) ApplySettings(ctx context.Context, settings models.FilterSettings) (*models.PixelBuffer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	base := e.base
	e.mu.Unlock()

	preview, err := e.renderer.Apply(ctx, base, settings)
	if err != nil {
		e.logger.Error("Editor", err, map[string]interface{}{
			"filters": settings.String(),
		})
		return nil, err
	}
	hist, err := histogram.Calculate(preview)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen < e.applied {
		e.logger.Debug("Editor", "stale render discarded", map[string]interface{}{
			"filters": settings.String(),
		})
		return nil, ErrSuperseded
	}
	e.applied = gen
	e.settings = settings
	e.preview = preview
	e.previewHistogram = hist

	e.logger.Debug("Editor", "preview updated", map[string]interface{}{
		"filters": settings.String(),
	})

	return preview.Clone(), nil
}

// ApplyPreset renders with a preset's settings.
func (e *Editor) ApplyPreset(ctx context.Context, preset models.Preset) (*models.PixelBuffer, error) {
	return e.ApplySettings(ctx, preset.Filters.Normalize())
}

// Reset restores identity settings.
func (e *Editor) Reset(ctx context.Context) (*models.PixelBuffer, error) {
	return e.ApplySettings(ctx, models.DefaultFilterSettings())
}

// Commit makes the current preview the new base and resets the settings.
func (e *Editor) Commit() *models.PixelBuffer {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.applied = e.generation
	e.base = e.preview.Clone()
	e.baseHistogram = e.previewHistogram
	e.settings = models.DefaultFilterSettings()

	e.logger.Info("Editor", "preview committed", map[string]interface{}{
		"width":  e.base.Width,
		"height": e.base.Height,
	})

	return e.base.Clone()
}

// Preview returns a copy of the current preview.
func (e *Editor) Preview() *models.PixelBuffer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.preview.Clone()
}

// Base returns a copy of the base buffer.
func (e *Editor) Base() *models.PixelBuffer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.base.Clone()
}

func (e *Editor) Settings() models.FilterSettings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

func (e *Editor) BaseHistogram() models.Histogram {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return *e.baseHistogram
}

func (e *Editor) PreviewHistogram() models.Histogram {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return *e.previewHistogram
}
