// Package filters implements the per-pixel and windowed RGBA transforms.
// Every function validates its input, never mutates it, and returns a new
// buffer of the same dimensions with channels clamped to [0, 255].
package filters

import (
	"context"
	"fmt"
	"math"

	"image-processor/internal/models"
)

// Luma weights. Part of the visual contract; do not adjust.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

func luma(r, g, b float64) float64 {
	return lumaR*r + lumaG*g + lumaB*b
}

// clampByte stores v the way a clamped byte array does: saturate to
// [0, 255] and round to nearest, ties to even. NaN becomes 0.
func clampByte(v float64) byte {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(math.RoundToEven(v))
}

func prepare(buf *models.PixelBuffer) (*models.PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf.SameSize(), nil
}

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.NewParameterError(name, v, "must be a finite number")
	}
	return nil
}

func checkRange(name string, v, lo, hi float64) error {
	if err := checkFinite(name, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return models.NewParameterError(name, v, fmt.Sprintf("must be within [%g, %g]", lo, hi))
	}
	return nil
}

func checkMin(name string, v, lo float64) error {
	if err := checkFinite(name, v); err != nil {
		return err
	}
	if v < lo {
		return models.NewParameterError(name, v, fmt.Sprintf("must be >= %g", lo))
	}
	return nil
}

// pointFunc maps one pixel's RGB to new, unclamped values.
type pointFunc func(r, g, b float64) (float64, float64, float64)

// mapPixels applies fn to every pixel and passes alpha through.
func mapPixels(buf *models.PixelBuffer, fn pointFunc) (*models.PixelBuffer, error) {
	dst, err := prepare(buf)
	if err != nil {
		return nil, err
	}

	src := buf.Pix
	out := dst.Pix
	for i := 0; i < len(src); i += models.BytesPerPixel {
		r, g, b := fn(float64(src[i]), float64(src[i+1]), float64(src[i+2]))
		out[i] = clampByte(r)
		out[i+1] = clampByte(g)
		out[i+2] = clampByte(b)
		out[i+3] = src[i+3]
	}

	return dst, nil
}

// Step adapts one filter function to the processing chain.
type Step struct {
	name  string
	apply func(*models.PixelBuffer, models.FilterSettings) (*models.PixelBuffer, error)
}

// Name returns the filter name
func (s *Step) Name() string {
	return s.name
}

// ShouldExecute reports whether the filter's parameter differs from identity.
func (s *Step) ShouldExecute(settings models.FilterSettings) bool {
	return settings.Enabled(s.name)
}

// Apply runs the filter unless ctx is already done.
func (s *Step) Apply(ctx context.Context, input *models.PixelBuffer, settings models.FilterSettings) (*models.PixelBuffer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return s.apply(input, settings)
}

// NewBrightnessStep scales channels by the brightness percentage.
func NewBrightnessStep() *Step {
	return &Step{name: models.FilterBrightness, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		return AdjustBrightness(b, s.Brightness)
	}}
}

// NewContrastStep converts the contrast percentage to a signed level before applying it.
func NewContrastStep() *Step {
	return &Step{name: models.FilterContrast, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		return AdjustContrast(b, ContrastLevelFromPercent(s.Contrast))
	}}
}

// NewSaturationStep scales each channel's distance from luma.
func NewSaturationStep() *Step {
	return &Step{name: models.FilterSaturation, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		return AdjustSaturation(b, s.Saturation)
	}}
}

// NewGrayscaleStep blends toward rounded luma.
func NewGrayscaleStep() *Step {
	return &Step{name: models.FilterGrayscale, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		return ApplyGrayscale(b, s.Grayscale)
	}}
}

// NewSepiaStep blends toward the sepia matrix result.
func NewSepiaStep() *Step {
	return &Step{name: models.FilterSepia, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		return ApplySepia(b, s.Sepia)
	}}
}

// NewBlurStep rounds the blur setting to the nearest whole pixel radius.
func NewBlurStep() *Step {
	return &Step{name: models.FilterBlur, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		if err := checkMin(models.FilterBlur, s.Blur, 0); err != nil {
			return nil, err
		}
		return ApplyBlur(b, int(math.Round(s.Blur)))
	}}
}

// NewSharpenStep adds a share of the 4-neighbour Laplacian.
func NewSharpenStep() *Step {
	return &Step{name: models.FilterSharpen, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		return ApplySharpen(b, s.Sharpen)
	}}
}

// NewInvertStep blends toward the negative.
func NewInvertStep() *Step {
	return &Step{name: models.FilterInvert, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		return ApplyInvert(b, s.Invert)
	}}
}

// NewPosterizeStep rounds the level count and quantizes to it.
func NewPosterizeStep() *Step {
	return &Step{name: models.FilterPosterize, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		return ApplyPosterize(b, int(math.Round(s.Posterize)))
	}}
}

// NewPixelationStep rounds the block size and averages each block.
func NewPixelationStep() *Step {
	return &Step{name: models.FilterPixelation, apply: func(b *models.PixelBuffer, s models.FilterSettings) (*models.PixelBuffer, error) {
		return ApplyPixelation(b, int(math.Round(s.Pixelation)))
	}}
}
