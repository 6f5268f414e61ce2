// Package imageio decodes image files into pixel buffers and encodes
// buffers back to files. It sits outside the filter core.
package imageio

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"image-processor/internal/logger"
	"image-processor/internal/models"
)

// Loaded is a decoded image and the format it was read from.
type Loaded struct {
	Path   string
	Format string
	Buffer *models.PixelBuffer
}

type Loader struct {
	logger logger.Logger
}

func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{logger: log}
}

// LoadFile decodes the file at path.
func (l *Loader) LoadFile(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	loaded, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	loaded.Path = path
	return loaded, nil
}

// Load decodes any registered format: png, jpeg, gif, bmp, tiff, webp.
func (l *Loader) Load(r io.Reader) (*Loaded, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	buf, err := toBuffer(img)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("ImageLoader", "image decoded", map[string]interface{}{
		"format": format,
		"width":  buf.Width,
		"height": buf.Height,
	})

	return &Loaded{Format: format, Buffer: buf}, nil
}

// toBuffer converts img to non-premultiplied RGBA anchored at (0, 0).
func toBuffer(img image.Image) (*models.PixelBuffer, error) {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return models.FromImage(nrgba)
	}

	b := img.Bounds()
	dst, err := models.NewPixelBuffer(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	draw.Draw(dst.ToNRGBA(), image.Rect(0, 0, b.Dx(), b.Dy()), img, b.Min, draw.Src)
	return dst, nil
}

// IsSupported reports whether path has an extension the loader decodes.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}
