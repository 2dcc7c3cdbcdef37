package engine

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// decoders only
	_ "golang.org/x/image/webp"
)

// Format is a still image format
type Format string

const (
	PNG  Format = "png"
	GIF  Format = "gif"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

var extToFormat = map[string]Format{
	".png":  PNG,
	".gif":  GIF,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
}

// FormatFromPath picks format from file extension, case insensitive
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extToFormat[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrFormat, ext)
	}
	return f, nil
}

// Encode m as format f
func Encode(w io.Writer, m image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, m)
	case GIF:
		return gif.Encode(w, m, &gif.Options{NumColors: 256, Drawer: draw.FloydSteinberg})
	case JPEG:
		return jpeg.Encode(w, m, &jpeg.Options{Quality: 90})
	case BMP:
		return bmp.Encode(w, m)
	case TIFF:
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: %q", ErrFormat, f)
}

// Decode any registered format, png, gif, jpeg, bmp, tiff and webp
func Decode(r io.Reader) (image.Image, string, error) {
	m, name, err := image.Decode(r)
	if err != nil {
		if err == image.ErrFormat {
			return nil, "", fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return nil, "", err
	}
	return m, name, nil
}
