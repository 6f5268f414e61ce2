package filters

import "image-processor/internal/models"

// ApplySharpen adds amount/100 of the 4-neighbour Laplacian to each color
// channel. At amount 100 this is the classic [0 -1 0; -1 5 -1; 0 -1 0]
// kernel. Neighbours outside the buffer repeat the edge pixel; alpha is
// passed through.
func ApplySharpen(buf *models.PixelBuffer, amount float64) (*models.PixelBuffer, error) {
	if err := checkRange(models.FilterSharpen, amount, 0, 100); err != nil {
		return nil, err
	}
	dst, err := prepare(buf)
	if err != nil {
		return nil, err
	}

	k := amount / 100
	w, h := buf.Width, buf.Height
	for y := 0; y < h; y++ {
		up := buf.Width * max(y-1, 0)
		down := buf.Width * min(y+1, h-1)
		for x := 0; x < w; x++ {
			left := max(x-1, 0)
			right := min(x+1, w-1)

			i := buf.Offset(x, y)
			n := [4]int{
				(up + x) * models.BytesPerPixel,
				(down + x) * models.BytesPerPixel,
				buf.Offset(left, y),
				buf.Offset(right, y),
			}
			for c := 0; c < 3; c++ {
				center := float64(buf.Pix[i+c])
				lap := 4 * center
				for _, j := range n {
					lap -= float64(buf.Pix[j+c])
				}
				dst.Pix[i+c] = clampByte(center + k*lap)
			}
			dst.Pix[i+3] = buf.Pix[i+3]
		}
	}

	return dst, nil
}
