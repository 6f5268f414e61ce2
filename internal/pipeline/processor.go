// Package pipeline composes the filter steps into the canonical,
// deterministic transform used by the editor and the batch executor.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"image-processor/internal/logger"
	"image-processor/internal/models"
	"image-processor/internal/processing/chain"
	"image-processor/internal/processing/filters"
)

// Pipeline applies enabled filters in a fixed order regardless of how the
// settings were built: brightness, contrast, saturation, grayscale, sepia,
// blur, then sharpen, invert, posterize and pixelation. Filters do not
// commute, so the order is part of the output contract.
//
// A Pipeline holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	chain   *chain.ProcessingChain
	logger  logger.Logger
	timings *Timings
}

type Option func(*Pipeline)

func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.logger = log
		}
	}
}

// WithTimings records the duration of every executed stage in t.
func WithTimings(t *Timings) Option {
	return func(p *Pipeline) {
		p.timings = t
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{logger: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}

	steps := []chain.ProcessingStep{
		filters.NewBrightnessStep(),
		filters.NewContrastStep(),
		filters.NewSaturationStep(),
		filters.NewGrayscaleStep(),
		filters.NewSepiaStep(),
		filters.NewBlurStep(),
		filters.NewSharpenStep(),
		filters.NewInvertStep(),
		filters.NewPosterizeStep(),
		filters.NewPixelationStep(),
	}
	for i, step := range steps {
		steps[i] = &timedStep{ProcessingStep: step, pipeline: p}
	}
	p.chain = chain.NewProcessingChain(steps)

	return p
}

// Apply returns a new buffer holding buf processed with settings.
// buf is not modified; with no enabled filter the result is a copy.
func (p *Pipeline) Apply(ctx context.Context, buf *models.PixelBuffer, settings models.FilterSettings) (*models.PixelBuffer, error) {
	return p.ApplyWithProgress(ctx, buf, settings, nil)
}

// ApplyWithProgress is Apply with a callback after each executed stage.
func (p *Pipeline) ApplyWithProgress(ctx context.Context, buf *models.PixelBuffer, settings models.FilterSettings, progress chain.ProgressFunc) (*models.PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := p.chain.Execute(ctx, buf, settings, progress)
	if err != nil {
		return nil, fmt.Errorf("filter pipeline: %w", err)
	}

	p.logger.Debug("Pipeline", "pipeline applied", map[string]interface{}{
		"size":     fmt.Sprintf("%dx%d", buf.Width, buf.Height),
		"filters":  settings.String(),
		"duration": time.Since(start).String(),
	})

	return result, nil
}

// StageNames lists every stage in execution order.
func (p *Pipeline) StageNames() []string {
	return p.chain.GetStepNames()
}

// ActiveStages lists the stages settings would execute, in order.
func (p *Pipeline) ActiveStages(settings models.FilterSettings) []string {
	active := p.chain.ActiveSteps(settings)
	names := make([]string, len(active))
	for i, step := range active {
		names[i] = step.Name()
	}
	return names
}

type timedStep struct {
	chain.ProcessingStep
	pipeline *Pipeline
}

func (t *timedStep) Apply(ctx context.Context, input *models.PixelBuffer, settings models.FilterSettings) (*models.PixelBuffer, error) {
	start := time.Now()
	out, err := t.ProcessingStep.Apply(ctx, input, settings)
	elapsed := time.Since(start)

	if t.pipeline.timings != nil && err == nil {
		t.pipeline.timings.Record(t.Name(), elapsed)
	}
	t.pipeline.logger.Debug("Pipeline", "stage applied", map[string]interface{}{
		"stage":    t.Name(),
		"duration": elapsed.String(),
	})

	return out, err
}
