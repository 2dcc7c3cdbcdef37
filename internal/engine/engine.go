// Package engine composes canvases, text and still image codecs
//
// Rasterization is done by golang.org/x/image/font/opentype and compositing by
// image/draw, this package only glues them together.
package engine

import (
	"errors"
)

// Errors returned by the engine, wrapped with details
var (
	ErrDimensions     = errors.New("invalid dimensions")
	ErrEmptyText      = errors.New("empty text")
	ErrFormat         = errors.New("unsupported format")
	ErrFontDescriptor = errors.New("invalid font descriptor")
	ErrFontFile       = errors.New("invalid font file")
)

// MaxDimension is the largest allowed width or height
const MaxDimension = 16384

// Printer is something that printfs (used for debug logging)
type Printer interface {
	Printf(format string, v ...interface{})
}

// NopPrinter is discard printfer
type NopPrinter struct{}

// Printf nop
func (NopPrinter) Printf(format string, v ...interface{}) {}
