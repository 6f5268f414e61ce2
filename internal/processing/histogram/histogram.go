package histogram

import "image-processor/internal/models"

// Calculate counts occurrences of each byte value per color channel.
// Alpha is not counted.
func Calculate(buf *models.PixelBuffer) (*models.Histogram, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	h := &models.Histogram{}
	pix := buf.Pix
	for i := 0; i < len(pix); i += models.BytesPerPixel {
		h.R[pix[i]]++
		h.G[pix[i+1]]++
		h.B[pix[i+2]]++
	}

	return h, nil
}
