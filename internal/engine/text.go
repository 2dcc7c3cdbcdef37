package engine

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Gravity is where content is placed inside a larger box, libvips compass names
type Gravity string

const (
	Centre    Gravity = "centre"
	North     Gravity = "north"
	East      Gravity = "east"
	South     Gravity = "south"
	West      Gravity = "west"
	NorthEast Gravity = "north-east"
	SouthEast Gravity = "south-east"
	SouthWest Gravity = "south-west"
	NorthWest Gravity = "north-west"
)

// ParseGravity returns gravity for name, unknown names are Centre
func ParseGravity(s string) Gravity {
	switch g := Gravity(strings.ToLower(strings.TrimSpace(s))); g {
	case North, East, South, West, NorthEast, SouthEast, SouthWest, NorthWest:
		return g
	}
	return Centre
}

// Offset of a w x h rectangle placed with gravity inside a bw x bh box
func (g Gravity) Offset(w, h, bw, bh int) image.Point {
	dx, dy := bw-w, bh-h
	switch g {
	case North:
		return image.Pt(dx/2, 0)
	case South:
		return image.Pt(dx/2, dy)
	case East:
		return image.Pt(dx, dy/2)
	case West:
		return image.Pt(0, dy/2)
	case NorthEast:
		return image.Pt(dx, 0)
	case SouthEast:
		return image.Pt(dx, dy)
	case SouthWest:
		return image.Pt(0, dy)
	case NorthWest:
		return image.Pt(0, 0)
	}
	return image.Pt(dx/2, dy/2)
}

// TextMask renders text (lines separated by \n) into an alpha mask with
// origin at 0,0. Height is line height times lines, width is the widest line.
func TextMask(face font.Face, text string) (*image.Alpha, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()
	lineHeight := m.Height.Ceil()
	if lineHeight < ascent+descent {
		lineHeight = ascent + descent
	}

	lines := strings.Split(text, "\n")
	width := 1
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > width {
			width = w
		}
	}
	height := lineHeight*(len(lines)-1) + ascent + descent
	if ascent+descent <= 0 || width > MaxDimension || height <= 0 || height > MaxDimension {
		return nil, fmt.Errorf("%w: text mask %dx%d", ErrDimensions, width, height)
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face}
	for i, l := range lines {
		d.Dot = fixed.P(0, ascent+i*lineHeight)
		d.DrawString(l)
	}

	return mask, nil
}

// TextOptions for TextImage
type TextOptions struct {
	Face  font.Face
	Color color.NRGBA
	// Box size, zero means size of text. A box smaller than the text grows
	// to fit the text.
	Width   int
	Height  int
	Gravity Gravity
	// Extra transparent rows above and below the text before placing it in the box
	PaddingTop    int
	PaddingBottom int
}

// TextImage renders text as a transparent image with colored glyphs
func TextImage(text string, o TextOptions) (*image.NRGBA, error) {
	if o.PaddingTop < 0 || o.PaddingBottom < 0 {
		return nil, fmt.Errorf("%w: negative padding", ErrDimensions)
	}
	mask, err := TextMask(o.Face, text)
	if err != nil {
		return nil, err
	}

	mw := mask.Bounds().Dx()
	mh := mask.Bounds().Dy() + o.PaddingTop + o.PaddingBottom

	bw, bh := mw, mh
	if o.Width > bw {
		bw = o.Width
	}
	if o.Height > bh {
		bh = o.Height
	}
	if bw > MaxDimension || bh > MaxDimension {
		return nil, fmt.Errorf("%w: text box %dx%d", ErrDimensions, bw, bh)
	}

	off := o.Gravity.Offset(mw, mh, bw, bh)
	off.Y += o.PaddingTop

	m := image.NewNRGBA(image.Rect(0, 0, bw, bh))
	r := mask.Bounds().Add(off)
	draw.DrawMask(m, r, image.NewUniform(o.Color), image.Point{}, mask, image.Point{}, draw.Over)

	return m, nil
}
