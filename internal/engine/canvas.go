package engine

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
)

// Canvas is an opaque sRGB image that can be drawn on
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas creates a width x height canvas filled with bg.
// Alpha of bg is ignored, canvases are always opaque.
func NewCanvas(width, height int, bg color.NRGBA) (*Canvas, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	bg.A = 0xff
	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(m, m.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &Canvas{img: m}, nil
}

// FromImage creates a canvas with a copy of m, origin moved to 0,0
func FromImage(m image.Image) *Canvas {
	b := m.Bounds()
	c := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(c, c.Bounds(), m, b.Min, draw.Src)
	return &Canvas{img: c}
}

func (c *Canvas) Width() int          { return c.img.Bounds().Dx() }
func (c *Canvas) Height() int         { return c.img.Bounds().Dy() }
func (c *Canvas) Image() *image.NRGBA { return c.img }

// Clone returns a deep copy
func (c *Canvas) Clone() *Canvas {
	return FromImage(c.img)
}

// Composite draws src over the canvas with its top left corner at x,y
func (c *Canvas) Composite(src image.Image, x, y int) {
	sb := src.Bounds()
	r := image.Rectangle{Min: image.Point{X: x, Y: y}, Max: image.Point{X: x + sb.Dx(), Y: y + sb.Dy()}}
	draw.Draw(c.img, r, src, sb.Min, draw.Over)
}

// DrawText draws text in color col with the top left of the text box at x,y.
// The canvas is untouched if an error is returned.
func (c *Canvas) DrawText(text string, x, y int, face font.Face, col color.NRGBA) error {
	mask, err := TextMask(face, text)
	if err != nil {
		return err
	}
	mb := mask.Bounds()
	r := image.Rectangle{Min: image.Point{X: x, Y: y}, Max: image.Point{X: x + mb.Dx(), Y: y + mb.Dy()}}
	draw.DrawMask(c.img, r, image.NewUniform(col), image.Point{}, mask, mb.Min, draw.Over)
	return nil
}
