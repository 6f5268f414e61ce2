package filters

import "image-processor/internal/models"

// ApplyPixelation replaces every blockSize x blockSize block (clipped at the
// right and bottom edges) with its average RGBA. blockSize 1 is identity.
func ApplyPixelation(buf *models.PixelBuffer, blockSize int) (*models.PixelBuffer, error) {
	if blockSize < 1 {
		return nil, models.NewParameterError(models.FilterPixelation, blockSize, "must be >= 1")
	}
	dst, err := prepare(buf)
	if err != nil {
		return nil, err
	}

	w, h := buf.Width, buf.Height
	for by := 0; by < h; by += blockSize {
		for bx := 0; bx < w; bx += blockSize {
			ey := min(by+blockSize, h)
			ex := min(bx+blockSize, w)

			var sum [4]int
			for y := by; y < ey; y++ {
				for x := bx; x < ex; x++ {
					i := buf.Offset(x, y)
					for c := 0; c < 4; c++ {
						sum[c] += int(buf.Pix[i+c])
					}
				}
			}

			n := float64((ey - by) * (ex - bx))
			var avg [4]byte
			for c := 0; c < 4; c++ {
				avg[c] = clampByte(float64(sum[c]) / n)
			}

			for y := by; y < ey; y++ {
				for x := bx; x < ex; x++ {
					dst.Set(x, y, avg)
				}
			}
		}
	}

	return dst, nil
}
