package models

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelBufferValidate(t *testing.T) {
	tests := []struct {
		name string
		buf  *PixelBuffer
		ok   bool
	}{
		{"valid", &PixelBuffer{Width: 2, Height: 3, Pix: make([]byte, 24)}, true},
		{"nil", nil, false},
		{"zero width", &PixelBuffer{Width: 0, Height: 3, Pix: nil}, false},
		{"negative height", &PixelBuffer{Width: 2, Height: -1, Pix: nil}, false},
		{"short data", &PixelBuffer{Width: 2, Height: 2, Pix: make([]byte, 15)}, false},
		{"long data", &PixelBuffer{Width: 1, Height: 1, Pix: make([]byte, 5)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buf.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidBuffer))

			var be *BufferError
			assert.True(t, errors.As(err, &be))
		})
	}
}

func TestNewPixelBuffer(t *testing.T) {
	buf, err := NewPixelBuffer(3, 2)
	require.NoError(t, err)
	assert.Len(t, buf.Pix, 24)
	assert.Equal(t, 6, buf.PixelCount())

	_, err = NewPixelBuffer(0, 2)
	assert.ErrorIs(t, err, ErrInvalidBuffer)

	_, err = FromPix(2, 2, make([]byte, 3))
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

func TestPixelBufferAccessors(t *testing.T) {
	buf, err := NewPixelBuffer(3, 2)
	require.NoError(t, err)

	buf.Set(2, 1, [4]byte{1, 2, 3, 4})
	assert.Equal(t, 20, buf.Offset(2, 1))
	assert.Equal(t, [4]byte{1, 2, 3, 4}, buf.At(2, 1))
	assert.Equal(t, [4]byte{}, buf.At(0, 0))

	clone := buf.Clone()
	assert.True(t, clone.Equal(buf))
	clone.Set(0, 0, [4]byte{9, 9, 9, 9})
	assert.False(t, clone.Equal(buf))
	assert.Equal(t, [4]byte{}, buf.At(0, 0), "clone must not share pixels")

	buf.Fill([4]byte{5, 6, 7, 8})
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			assert.Equal(t, [4]byte{5, 6, 7, 8}, buf.At(x, y))
		}
	}
}

func TestFromImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	src.SetNRGBA(10, 10, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	src.SetNRGBA(11, 10, color.NRGBA{R: 50, G: 60, B: 70, A: 255})

	buf, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Width)
	assert.Equal(t, 1, buf.Height)
	assert.Equal(t, [4]byte{10, 20, 30, 40}, buf.At(0, 0))
	assert.Equal(t, [4]byte{50, 60, 70, 255}, buf.At(1, 0))

	img := buf.ToNRGBA()
	assert.Equal(t, color.NRGBA{R: 50, G: 60, B: 70, A: 255}, img.NRGBAAt(1, 0))
}

func TestHistogramTotal(t *testing.T) {
	var h Histogram
	h.R[0] = 3
	h.R[255] = 1
	h.G[10] = 4
	assert.Equal(t, 4, h.Total(ChannelR))
	assert.Equal(t, 4, h.Total(ChannelG))
	assert.Equal(t, 0, h.Total(ChannelB))
}
