package storage

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrInvalidImage is returned for payloads that do not decode as a
// supported image.
var ErrInvalidImage = errors.New("not a valid image")

// maxPixels guards against decompression bombs.
const maxPixels = 89_478_485

// ImageInfo describes a validated image.
type ImageInfo struct {
	Format      string // jpeg, png, gif or webp
	Width       int
	Height      int
	Extension   string
	ContentType string
}

var formats = map[string]struct{ ext, contentType string }{
	"jpeg": {".jpg", "image/jpeg"},
	"png":  {".png", "image/png"},
	"gif":  {".gif", "image/gif"},
	"webp": {".webp", "image/webp"},
}

// ValidateImage fully decodes data and reports its format. Truncated or
// corrupt files fail even when their header is intact.
func ValidateImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage
	}
	f, ok := formats[format]
	if !ok || cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, ErrInvalidImage
	}

	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return nil, ErrInvalidImage
	}

	return &ImageInfo{
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Extension:   f.ext,
		ContentType: f.contentType,
	}, nil
}
