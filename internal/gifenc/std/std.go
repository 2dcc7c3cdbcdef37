// Package std encodes GIF using image/gif
package std

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"sort"

	"github.com/wader/ffcountdown/internal/gifenc"
)

type Encoder struct{}

func (Encoder) Name() string    { return "std" }
func (Encoder) Available() bool { return true }

type colorCount struct {
	c color.NRGBA
	n int
}

// Palette of the most frequent colors in frames, at most max colors.
// exact is true if all colors fit.
func Palette(frames []image.Image, max int) (p color.Palette, exact bool) {
	counts := map[color.NRGBA]int{}
	for _, f := range frames {
		b := f.Bounds()
		if m, ok := f.(*image.NRGBA); ok {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					counts[m.NRGBAAt(x, y)]++
				}
			}
			continue
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				counts[color.NRGBAModel.Convert(f.At(x, y)).(color.NRGBA)]++
			}
		}
	}

	ccs := make([]colorCount, 0, len(counts))
	for c, n := range counts {
		ccs = append(ccs, colorCount{c: c, n: n})
	}
	sort.Slice(ccs, func(i, j int) bool {
		if ccs[i].n != ccs[j].n {
			return ccs[i].n > ccs[j].n
		}
		a, b := ccs[i].c, ccs[j].c
		return uint32(a.R)<<24|uint32(a.G)<<16|uint32(a.B)<<8|uint32(a.A) <
			uint32(b.R)<<24|uint32(b.G)<<16|uint32(b.B)<<8|uint32(b.A)
	})

	exact = len(ccs) <= max
	if !exact {
		ccs = ccs[:max]
	}
	for _, cc := range ccs {
		p = append(p, cc.c)
	}
	return p, exact
}

// Encode frames using a shared palette, dithered if the palette is not exact
func (Encoder) Encode(ctx context.Context, w io.Writer, a gifenc.Animation) error {
	if err := a.Validate(); err != nil {
		return err
	}

	p, exact := a.Palette, true
	if p == nil || len(p) > 256 {
		p, exact = Palette(a.Frames, 256)
	}
	var drawer draw.Drawer = draw.Src
	if !exact {
		drawer = draw.FloydSteinberg
	}

	delay := a.DelayCentiseconds()
	g := &gif.GIF{LoopCount: a.LoopCount}
	for _, f := range a.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := f.Bounds()
		pm := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), p)
		drawer.Draw(pm, pm.Rect, f, b.Min)
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, delay)
	}

	return gif.EncodeAll(w, g)
}
