package models

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// BytesPerPixel is the stride of one RGBA pixel in a PixelBuffer.
const BytesPerPixel = 4

// PixelBuffer is an in-memory RGBA raster, row-major, 4 bytes per pixel.
// Filters treat a PixelBuffer as read-only and always return a new one.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewPixelBuffer allocates a zeroed buffer of the given dimensions.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, NewBufferError(width, height, 0, "dimensions must be positive")
	}

	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}, nil
}

// FromPix wraps pix as a buffer after validating its length against the dimensions.
func FromPix(width, height int, pix []byte) (*PixelBuffer, error) {
	buf := &PixelBuffer{Width: width, Height: height, Pix: pix}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// Validate reports ErrInvalidBuffer when the dimensions and data length disagree.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return NewBufferError(0, 0, 0, "buffer is nil")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return NewBufferError(b.Width, b.Height, len(b.Pix), "dimensions must be positive")
	}
	if len(b.Pix) != b.Width*b.Height*BytesPerPixel {
		return NewBufferError(b.Width, b.Height, len(b.Pix),
			fmt.Sprintf("data length must be %d", b.Width*b.Height*BytesPerPixel))
	}
	return nil
}

// PixelCount returns Width*Height.
func (b *PixelBuffer) PixelCount() int {
	return b.Width * b.Height
}

// Offset returns the index of the R byte of pixel (x, y).
func (b *PixelBuffer) Offset(x, y int) int {
	return (y*b.Width + x) * BytesPerPixel
}

// At returns the RGBA bytes of pixel (x, y).
func (b *PixelBuffer) At(x, y int) [4]byte {
	i := b.Offset(x, y)
	return [4]byte{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
}

// Set writes the RGBA bytes of pixel (x, y).
func (b *PixelBuffer) Set(x, y int, c [4]byte) {
	i := b.Offset(x, y)
	copy(b.Pix[i:i+BytesPerPixel], c[:])
}

// Fill sets every pixel to c.
func (b *PixelBuffer) Fill(c [4]byte) {
	for i := 0; i < len(b.Pix); i += BytesPerPixel {
		copy(b.Pix[i:i+BytesPerPixel], c[:])
	}
}

// Clone returns a deep copy.
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Equal reports whether both buffers have the same dimensions and bytes.
func (b *PixelBuffer) Equal(other *PixelBuffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.Width == other.Width && b.Height == other.Height && bytes.Equal(b.Pix, other.Pix)
}

// SameSize returns an empty buffer with the dimensions of b.
func (b *PixelBuffer) SameSize() *PixelBuffer {
	return &PixelBuffer{
		Width:  b.Width,
		Height: b.Height,
		Pix:    make([]byte, len(b.Pix)),
	}
}

// ToNRGBA exposes the buffer as a non-premultiplied image for encoders.
// The returned image shares its pixel slice with b.
func (b *PixelBuffer) ToNRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FromImage copies any image into a new buffer, converting to
// non-premultiplied RGBA.
func FromImage(img image.Image) (*PixelBuffer, error) {
	bounds := img.Bounds()
	buf, err := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < buf.Height; y++ {
			start := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(buf.Pix[y*buf.Width*BytesPerPixel:(y+1)*buf.Width*BytesPerPixel],
				src.Pix[start:start+buf.Width*BytesPerPixel])
		}
		return buf, nil
	}

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			buf.Set(x, y, [4]byte{c.R, c.G, c.B, c.A})
		}
	}

	return buf, nil
}

// Histogram holds per-channel frequency counts of byte values.
type Histogram struct {
	R [256]int `json:"r"`
	G [256]int `json:"g"`
	B [256]int `json:"b"`
}

// Channel selects one histogram channel.
type Channel int

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
)

// Total returns the sum of all counts in a channel.
func (h *Histogram) Total(ch Channel) int {
	var counts *[256]int
	switch ch {
	case ChannelR:
		counts = &h.R
	case ChannelG:
		counts = &h.G
	default:
		counts = &h.B
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
