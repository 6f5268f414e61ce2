package imageio

import (
	"errors"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"image-processor/internal/logger"
	"image-processor/internal/models"
)

// ErrUnsupportedFormat marks output formats Save cannot encode.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// CheckFormat reports ErrUnsupportedFormat unless format is one Save encodes.
func CheckFormat(format string) error {
	switch format {
	case "png", "jpeg", "jpg", "gif", "bmp", "tiff", "tif":
		return nil
	}
	return fmt.Errorf("%w %q (want png, jpeg, gif, bmp or tiff)", ErrUnsupportedFormat, format)
}

type Saver struct {
	logger      logger.Logger
	jpegQuality int
}

func NewSaver(log logger.Logger) *Saver {
	if log == nil {
		log = logger.Nop()
	}
	return &Saver{logger: log, jpegQuality: 95}
}

// FormatFromPath picks an output format from the file extension, falling
// back to fallback (and then png) when the extension is not recognised.
func FormatFromPath(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	}
	if fallback != "" {
		return fallback
	}
	return "png"
}

// SaveFile encodes buf to path using the format implied by its extension.
func (s *Saver) SaveFile(path string, buf *models.PixelBuffer) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := s.Save(f, buf, FormatFromPath(path, "")); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Save encodes buf in format: png, jpeg, gif, bmp or tiff.
func (s *Saver) Save(w io.Writer, buf *models.PixelBuffer, format string) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if err := CheckFormat(format); err != nil {
		return err
	}

	img := buf.ToNRGBA()
	var err error
	switch format {
	case "jpeg", "jpg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: s.jpegQuality})
	case "png":
		err = png.Encode(w, img)
	case "gif":
		err = gif.Encode(w, img, nil)
	case "bmp":
		err = bmp.Encode(w, img)
	case "tiff", "tif":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}

	if err != nil {
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"format": format,
		})
		return err
	}

	s.logger.Debug("ImageSaver", "image encoded", map[string]interface{}{
		"format": format,
		"width":  buf.Width,
		"height": buf.Height,
	})
	return nil
}
