package countdown

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strings"

	"github.com/wader/ffcountdown/internal/engine"
	"github.com/wader/ffcountdown/internal/hexcolor"
)

// MaxDigitValue is the largest value a digit pair can show, larger values are clamped
const MaxDigitValue = 99

// Animation is a prepared countdown template, background plus labels, and
// pre rendered digit pairs 00-99.
type Animation struct {
	template  *engine.Canvas
	digits    [MaxDigitValue + 1]image.Image
	positions [4]image.Point
}

func textImage(fonts *engine.FontCache, text string, colorStr string, font string, fontFile string, o engine.TextOptions) (image.Image, error) {
	if colorStr == "" {
		colorStr = DefaultColor
	}
	c, err := hexcolor.Parse(colorStr)
	if err != nil {
		return nil, err
	}
	fd, err := engine.ParseFontDescriptor(font)
	if err != nil {
		return nil, err
	}
	face, err := fonts.Face(fd, fontFile)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	o.Face = face
	o.Color = c
	return engine.TextImage(text, o)
}

// New prepares a template. A nil Digits uses DefaultDigits. A nil fonts uses
// engine.DefaultFonts.
func New(o Options, fonts *engine.FontCache) (*Animation, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if fonts == nil {
		fonts = engine.DefaultFonts
	}
	if o.BgColor == "" {
		o.BgColor = "#FFFFFF"
	}
	bg, err := hexcolor.Parse(o.BgColor)
	if err != nil {
		return nil, err
	}
	template, err := engine.NewCanvas(o.Width, o.Height, bg)
	if err != nil {
		return nil, err
	}

	// labels are drawn in key order so overlaps are stable
	names := make([]string, 0, len(o.Labels))
	for name := range o.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		l := o.Labels[name]
		m, err := textImage(fonts, l.Text, l.Color, l.Font, l.FontFile, engine.TextOptions{
			Width:         l.Position.Width,
			Height:        l.Position.Height,
			Gravity:       engine.ParseGravity(l.TextAlignment),
			PaddingTop:    l.PaddingTop,
			PaddingBottom: l.PaddingBottom,
		})
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", name, err)
		}
		template.Composite(m, l.Position.X, l.Position.Y)
	}

	digits := o.Digits
	if digits == nil {
		digits = DefaultDigits(o.Width, o.Height)
	}

	a := &Animation{template: template}
	for i, s := range digits.Positions.slots() {
		a.positions[i] = image.Pt(s.Position.X, s.Position.Y)
	}
	for v := 0; v <= MaxDigitValue; v++ {
		text := fmt.Sprintf("%02d", v)
		if digits.TextTemplate != "" {
			text = strings.Replace(digits.TextTemplate, "%s", text, 1)
		}
		m, err := textImage(fonts, text, digits.Style.Color, digits.Style.Font, digits.Style.FontFile, engine.TextOptions{
			Width:   digits.Style.Width,
			Height:  digits.Style.Height,
			Gravity: engine.ParseGravity(digits.Style.TextAlignment),
		})
		if err != nil {
			return nil, fmt.Errorf("digits: %w", err)
		}
		a.digits[v] = m
	}

	return a, nil
}

func (a *Animation) Width() int  { return a.template.Width() }
func (a *Animation) Height() int { return a.template.Height() }

// Template returns the background with labels, without digits
func (a *Animation) Template() image.Image { return a.template.Image() }

func clampDigit(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxDigitValue {
		return MaxDigitValue
	}
	return v
}

// Frame renders moment m
func (a *Animation) Frame(m Moment) *image.NRGBA {
	c := a.template.Clone()
	for i, v := range m.Parts() {
		c.Composite(a.digits[clampDigit(v)], a.positions[i].X, a.positions[i].Y)
	}
	return c.Image()
}

// Frames renders n frames, one per second counting down from start.
// At least one frame is rendered.
func (a *Animation) Frames(start Moment, n int) []image.Image {
	if n <= 0 {
		n = 1
	}
	frames := make([]image.Image, 0, n)
	m := start
	for i := 0; i < n; i++ {
		frames = append(frames, a.Frame(m))
		m = m.Tick()
	}
	return frames
}

// Palette returns the distinct colors used by the template and digits if
// there are at most max of them, useful as an exact GIF palette.
func (a *Animation) Palette(max int) (color.Palette, bool) {
	seen := map[color.NRGBA]struct{}{}
	var p color.Palette
	add := func(m *image.NRGBA) bool {
		for i := 0; i+3 < len(m.Pix); i += 4 {
			c := color.NRGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: m.Pix[i+3]}
			if _, ok := seen[c]; ok {
				continue
			}
			if len(p) == max {
				return false
			}
			seen[c] = struct{}{}
			p = append(p, c)
		}
		return true
	}
	if !add(a.template.Image()) {
		return nil, false
	}
	// digits are blended with whatever is below them in each slot
	for _, pos := range a.positions {
		for _, m := range a.digits {
			// parts outside the canvas are never shown
			r := m.Bounds().Add(pos).Intersect(a.template.Image().Bounds())
			if r.Empty() {
				continue
			}
			scratch := image.NewNRGBA(r)
			draw.Draw(scratch, r, a.template.Image(), r.Min, draw.Src)
			draw.Draw(scratch, r, m, r.Min.Sub(pos), draw.Over)
			if !add(scratch) {
				return nil, false
			}
		}
	}
	return p, true
}
