package filters

import (
	"math"

	"image-processor/internal/models"
)

var (
	sobelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// DetectEdges converts the buffer to grayscale and writes the Sobel gradient
// magnitude of each interior pixel to R, G and B with alpha 255.
// The one-pixel border is left zero (transparent black), and buffers
// smaller than 3x3 produce an all-zero result.
func DetectEdges(buf *models.PixelBuffer) (*models.PixelBuffer, error) {
	gray, err := ApplyGrayscale(buf, 100)
	if err != nil {
		return nil, err
	}

	w, h := buf.Width, buf.Height
	dst := buf.SameSize()

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var gx, gy int
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := int(gray.Pix[gray.Offset(x+kx, y+ky)])
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}

			m := clampByte(math.Sqrt(float64(gx*gx + gy*gy)))
			dst.Set(x, y, [4]byte{m, m, m, 255})
		}
	}

	return dst, nil
}
