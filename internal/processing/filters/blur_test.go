package filters

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processor/internal/models"
)

// naiveBlur scans the full clipped window for every pixel.
func naiveBlur(buf *models.PixelBuffer, r int) *models.PixelBuffer {
	dst := buf.SameSize()
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			var sum [4]int
			n := 0
			for yy := max(y-r, 0); yy <= min(y+r, buf.Height-1); yy++ {
				for xx := max(x-r, 0); xx <= min(x+r, buf.Width-1); xx++ {
					p := buf.At(xx, yy)
					for c := 0; c < 4; c++ {
						sum[c] += int(p[c])
					}
					n++
				}
			}
			var out [4]byte
			for c := 0; c < 4; c++ {
				out[c] = clampByte(float64(sum[c]) / float64(n))
			}
			dst.Set(x, y, out)
		}
	}
	return dst
}

func TestBlurMatchesWindowScan(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 9}, {9, 1}, {7, 5}, {16, 12}}

	for _, size := range sizes {
		for radius := 0; radius <= 6; radius++ {
			t.Run(fmt.Sprintf("%dx%d r%d", size[0], size[1], radius), func(t *testing.T) {
				buf := randomBuffer(t, size[0], size[1], int64(radius*100+size[0]))

				got, err := ApplyBlur(buf, radius)
				require.NoError(t, err)
				assert.True(t, got.Equal(naiveBlur(buf, radius)))
			})
		}
	}
}

func TestBlurLargeRadiusAveragesWholeImage(t *testing.T) {
	buf, err := models.NewPixelBuffer(2, 1)
	require.NoError(t, err)
	buf.Set(0, 0, [4]byte{0, 10, 255, 255})
	buf.Set(1, 0, [4]byte{100, 20, 255, 255})

	out, err := ApplyBlur(buf, 50)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{50, 15, 255, 255}, out.At(0, 0))
	assert.Equal(t, [4]byte{50, 15, 255, 255}, out.At(1, 0))
}

func TestBlurHugeRadius(t *testing.T) {
	buf, err := models.NewPixelBuffer(3, 1)
	require.NoError(t, err)
	for x, v := range []byte{0, 30, 60} {
		buf.Set(x, 0, [4]byte{v, v, v, 255})
	}

	for _, radius := range []int{math.MaxInt, math.MaxInt - 1, 1 << 40, 3} {
		out, err := ApplyBlur(buf, radius)
		require.NoError(t, err)
		for x := 0; x < 3; x++ {
			assert.Equal(t, [4]byte{30, 30, 30, 255}, out.At(x, 0), "radius %d pixel %d", radius, x)
		}
	}
}

func TestBlurStepRoundsRadius(t *testing.T) {
	buf := randomBuffer(t, 6, 6, 5)
	settings := models.DefaultFilterSettings()
	settings.Blur = 1.6

	got, err := NewBlurStep().Apply(t.Context(), buf, settings)
	require.NoError(t, err)
	assert.True(t, got.Equal(naiveBlur(buf, 2)))
}

func BenchmarkBlur(b *testing.B) {
	buf, _ := models.NewPixelBuffer(512, 512)
	for i := range buf.Pix {
		buf.Pix[i] = byte(i * 31)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ApplyBlur(buf, 5); err != nil {
			b.Fatal(err)
		}
	}
}
