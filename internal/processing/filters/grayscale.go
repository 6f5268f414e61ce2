package filters

import (
	"math"

	"image-processor/internal/models"
)

// Sepia matrix rows for R', G' and B'.
var sepiaMatrix = [3][3]float64{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

// ApplyGrayscale blends each pixel toward its rounded luma by intensity percent.
// At intensity 100 the result is a projection: applying it twice changes nothing.
func ApplyGrayscale(buf *models.PixelBuffer, intensity float64) (*models.PixelBuffer, error) {
	if err := checkRange(models.FilterGrayscale, intensity, 0, 100); err != nil {
		return nil, err
	}

	k := intensity / 100
	return mapPixels(buf, func(r, g, b float64) (float64, float64, float64) {
		gray := math.Round(luma(r, g, b))
		return r*(1-k) + gray*k, g*(1-k) + gray*k, b*(1-k) + gray*k
	})
}

// ApplySepia applies the fixed sepia matrix, saturating each channel at 255,
// then blends with the original by intensity percent.
func ApplySepia(buf *models.PixelBuffer, intensity float64) (*models.PixelBuffer, error) {
	if err := checkRange(models.FilterSepia, intensity, 0, 100); err != nil {
		return nil, err
	}

	k := intensity / 100
	m := &sepiaMatrix
	return mapPixels(buf, func(r, g, b float64) (float64, float64, float64) {
		tr := math.Min(255, m[0][0]*r+m[0][1]*g+m[0][2]*b)
		tg := math.Min(255, m[1][0]*r+m[1][1]*g+m[1][2]*b)
		tb := math.Min(255, m[2][0]*r+m[2][1]*g+m[2][2]*b)
		return r*(1-k) + tr*k, g*(1-k) + tg*k, b*(1-k) + tb*k
	})
}

// AdjustSaturation scales each channel's distance from the pixel's luma.
// 100 is identity, 0 collapses to gray, values above 100 oversaturate.
func AdjustSaturation(buf *models.PixelBuffer, pct float64) (*models.PixelBuffer, error) {
	if err := checkMin(models.FilterSaturation, pct, 0); err != nil {
		return nil, err
	}

	factor := pct / 100
	return mapPixels(buf, func(r, g, b float64) (float64, float64, float64) {
		l := luma(r, g, b)
		return l + factor*(r-l), l + factor*(g-l), l + factor*(b-l)
	})
}
