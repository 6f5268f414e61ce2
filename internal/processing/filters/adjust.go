package filters

import (
	"math"

	"image-processor/internal/models"
)

// ContrastLevelFromPercent translates the 0..200 percent scale of
// FilterSettings (100 = identity) to the signed -255..255 level that
// AdjustContrast takes.
func ContrastLevelFromPercent(pct float64) float64 {
	return (pct - 100) * 255 / 100
}

// AdjustBrightness multiplies every color channel by pct/100.
func AdjustBrightness(buf *models.PixelBuffer, pct float64) (*models.PixelBuffer, error) {
	if err := checkMin(models.FilterBrightness, pct, 0); err != nil {
		return nil, err
	}

	factor := pct / 100
	return mapPixels(buf, func(r, g, b float64) (float64, float64, float64) {
		return r * factor, g * factor, b * factor
	})
}

// AdjustContrast remaps channels around the 128 midpoint. level is on the
// signed scale: 0 is identity, -255 flattens to gray, 255 is maximal.
// Values already saturated at 0 or 255 stay saturated for level >= 0, so
// contrast changes are not invertible near the extremes.
func AdjustContrast(buf *models.PixelBuffer, level float64) (*models.PixelBuffer, error) {
	if err := checkRange(models.FilterContrast, level, -255, 255); err != nil {
		return nil, err
	}

	f := (259 * (level + 255)) / (255 * (259 - level))
	return mapPixels(buf, func(r, g, b float64) (float64, float64, float64) {
		return f*(r-128) + 128, f*(g-128) + 128, f*(b-128) + 128
	})
}

// ApplyInvert blends each channel toward its negative by intensity percent.
func ApplyInvert(buf *models.PixelBuffer, intensity float64) (*models.PixelBuffer, error) {
	if err := checkRange(models.FilterInvert, intensity, 0, 100); err != nil {
		return nil, err
	}

	k := intensity / 100
	return mapPixels(buf, func(r, g, b float64) (float64, float64, float64) {
		return r*(1-k) + (255-r)*k, g*(1-k) + (255-g)*k, b*(1-k) + (255-b)*k
	})
}

// ApplyPosterize quantizes each channel to the given number of evenly
// spaced levels. 256 levels is identity.
func ApplyPosterize(buf *models.PixelBuffer, levels int) (*models.PixelBuffer, error) {
	if levels < 2 || levels > 256 {
		return nil, models.NewParameterError(models.FilterPosterize, levels, "must be within [2, 256]")
	}

	step := 255 / float64(levels-1)
	quantize := func(v float64) float64 {
		return math.Round(math.Round(v/step) * step)
	}
	return mapPixels(buf, func(r, g, b float64) (float64, float64, float64) {
		return quantize(r), quantize(g), quantize(b)
	})
}
