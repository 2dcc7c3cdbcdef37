// Package hexcolor parses HTML style hexadecimal colors
package hexcolor

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
)

// ErrInvalid is returned for strings that are not a supported hex color
var ErrInvalid = errors.New("invalid hex color")

// Parse parses #RGB, #ARGB, #RRGGBB and #AARRGGBB
// Note that alpha comes first, unlike CSS.
func Parse(s string) (color.NRGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	h := s[1:]

	var parts []string
	switch len(h) {
	case 3:
		parts = []string{"f", h[0:1], h[1:2], h[2:3]}
	case 4:
		parts = []string{h[0:1], h[1:2], h[2:3], h[3:4]}
	case 6:
		parts = []string{"ff", h[0:2], h[2:4], h[4:6]}
	case 8:
		parts = []string{h[0:2], h[2:4], h[4:6], h[6:8]}
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	var v [4]uint8
	for i, p := range parts {
		// short form digit is doubled, "f" -> "ff"
		if len(p) == 1 {
			p += p
		}
		n, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		v[i] = uint8(n)
	}

	return color.NRGBA{A: v[0], R: v[1], G: v[2], B: v[3]}, nil
}

// MustParse is like Parse but panics on error
func MustParse(s string) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Opaque returns c with full alpha
func Opaque(c color.NRGBA) color.NRGBA {
	c.A = 0xff
	return c
}
