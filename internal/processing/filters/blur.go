package filters

import (
	"sync"

	"image-processor/internal/models"
)

// scratchPool recycles the horizontal-sum buffers used by ApplyBlur.
var scratchPool = sync.Pool{
	New: func() any { return new([]uint32) },
}

func getScratch(n int) *[]uint32 {
	p := scratchPool.Get().(*[]uint32)
	if cap(*p) < n {
		*p = make([]uint32, n)
	}
	*p = (*p)[:n]
	return p
}

func putScratch(p *[]uint32) {
	scratchPool.Put(p)
}

// ApplyBlur is a box blur: each output pixel is the unweighted RGBA average
// of the (2r+1)x(2r+1) window clipped to the buffer. Edge pixels average
// fewer samples. radius 0 returns a copy of the input.
//
// The window sums are built separably with running sums, which yields the
// exact same integer sums (and therefore the same rounded bytes) as the
// naive per-pixel window scan.
func ApplyBlur(buf *models.PixelBuffer, radius int) (*models.PixelBuffer, error) {
	if radius < 0 {
		return nil, models.NewParameterError(models.FilterBlur, radius, "must be >= 0")
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if radius == 0 {
		return buf.Clone(), nil
	}

	w, h := buf.Width, buf.Height
	// Any larger window already covers the whole buffer; capping keeps the
	// index arithmetic below from overflowing.
	radius = min(radius, max(w, h))
	src := buf.Pix
	dst := buf.SameSize()

	rowSums := getScratch(len(src))
	defer putScratch(rowSums)
	hs := *rowSums

	// Horizontal pass: hs holds, per pixel and channel, the sum over the
	// clipped row window [x-r, x+r].
	for y := 0; y < h; y++ {
		row := y * w * models.BytesPerPixel
		var acc [4]uint32
		for x := 0; x <= min(radius, w-1); x++ {
			i := row + x*models.BytesPerPixel
			for c := 0; c < 4; c++ {
				acc[c] += uint32(src[i+c])
			}
		}
		for x := 0; x < w; x++ {
			o := row + x*models.BytesPerPixel
			copy(hs[o:o+4], acc[:])
			if in := x + radius + 1; in < w {
				i := row + in*models.BytesPerPixel
				for c := 0; c < 4; c++ {
					acc[c] += uint32(src[i+c])
				}
			}
			if out := x - radius; out >= 0 {
				i := row + out*models.BytesPerPixel
				for c := 0; c < 4; c++ {
					acc[c] -= uint32(src[i+c])
				}
			}
		}
	}

	countX := windowCounts(w, radius)
	countY := windowCounts(h, radius)

	// Vertical pass: running column sums of the row sums.
	stride := w * models.BytesPerPixel
	cols := make([]uint64, stride)
	for y := 0; y <= min(radius, h-1); y++ {
		for i := 0; i < stride; i++ {
			cols[i] += uint64(hs[y*stride+i])
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := float64(countX[x] * countY[y])
			i := x * models.BytesPerPixel
			o := y*stride + i
			for c := 0; c < 4; c++ {
				dst.Pix[o+c] = clampByte(float64(cols[i+c]) / n)
			}
		}
		if in := y + radius + 1; in < h {
			for i := 0; i < stride; i++ {
				cols[i] += uint64(hs[in*stride+i])
			}
		}
		if out := y - radius; out >= 0 {
			for i := 0; i < stride; i++ {
				cols[i] -= uint64(hs[out*stride+i])
			}
		}
	}

	return dst, nil
}

// windowCounts returns, for each index in [0, n), how many indices the
// window [i-r, i+r] covers after clipping.
func windowCounts(n, r int) []int {
	counts := make([]int, n)
	for i := range counts {
		counts[i] = min(i+r, n-1) - max(i-r, 0) + 1
	}
	return counts
}
