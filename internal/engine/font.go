package engine

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFontSize in pixels
const DefaultFontSize = 12

// MaxFontSize in pixels, larger sizes overflow 26.6 fixed point glyph metrics
const MaxFontSize = 1024

func validSize(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 && v <= MaxFontSize
}

// FontDescriptor is a parsed pango like font description, ex: `"Dancing Script" 400 48px`
type FontDescriptor struct {
	Family string
	Weight int
	Italic bool
	Size   float64 // pixels
}

var weightNames = map[string]int{
	"thin":       100,
	"ultralight": 200,
	"extralight": 200,
	"light":      300,
	"normal":     400,
	"regular":    400,
	"book":       400,
	"medium":     500,
	"semibold":   600,
	"demibold":   600,
	"bold":       700,
	"ultrabold":  800,
	"extrabold":  800,
	"heavy":      900,
	"black":      900,
}

func parseSize(tok string) (float64, bool) {
	s := strings.TrimSuffix(strings.TrimSuffix(tok, "px"), "pt")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !validSize(v) {
		return 0, false
	}
	return v, true
}

func isBareNumber(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func isUnitSize(tok string) bool {
	return (strings.HasSuffix(tok, "px") || strings.HasSuffix(tok, "pt")) && isBareNumber(tok[:len(tok)-2])
}

func isAttribute(tok string) bool {
	l := strings.ToLower(tok)
	if _, ok := weightNames[l]; ok {
		return true
	}
	return l == "italic" || l == "oblique" || isBareNumber(tok) || isUnitSize(tok)
}

// ParseFontDescriptor parses [family] [italic] [weight] [size]
// Family is double quoted or bare words, size is 48px, 48pt or 48 (pt is
// treated as px). An empty string gives the default font.
func ParseFontDescriptor(s string) (FontDescriptor, error) {
	fd := FontDescriptor{Weight: 400, Size: DefaultFontSize}
	rest := strings.TrimSpace(s)

	if strings.HasPrefix(rest, `"`) {
		end := strings.Index(rest[1:], `"`)
		if end < 0 {
			return FontDescriptor{}, fmt.Errorf("%w: unterminated quote in %q", ErrFontDescriptor, s)
		}
		fd.Family = rest[1 : end+1]
		rest = rest[end+2:]
	}

	toks := strings.Fields(strings.ReplaceAll(rest, ",", " "))
	if fd.Family == "" {
		var family []string
		for len(toks) > 0 && !isAttribute(toks[0]) {
			family = append(family, toks[0])
			toks = toks[1:]
		}
		fd.Family = strings.Join(family, " ")
	}

	hasUnitSize := false
	for _, t := range toks {
		if isUnitSize(t) {
			hasUnitSize = true
		}
	}

	for i, t := range toks {
		l := strings.ToLower(t)
		switch {
		case l == "italic" || l == "oblique":
			fd.Italic = true
		case weightNames[l] != 0:
			fd.Weight = weightNames[l]
		case isUnitSize(t) || (!hasUnitSize && i == len(toks)-1 && isBareNumber(t)):
			v, ok := parseSize(t)
			if !ok {
				return FontDescriptor{}, fmt.Errorf("%w: bad size %q in %q", ErrFontDescriptor, t, s)
			}
			fd.Size = v
		case isBareNumber(t):
			w, err := strconv.Atoi(t)
			if err != nil || w < 1 || w > 1000 {
				return FontDescriptor{}, fmt.Errorf("%w: bad weight %q in %q", ErrFontDescriptor, t, s)
			}
			fd.Weight = w
		default:
			return FontDescriptor{}, fmt.Errorf("%w: unexpected %q in %q", ErrFontDescriptor, t, s)
		}
	}

	return fd, nil
}

type family struct {
	regular, medium, bold            []byte
	italic, mediumItalic, boldItalic []byte
}

func (f family) pick(weight int, italic bool) []byte {
	switch {
	case weight >= 600 && italic:
		return f.boldItalic
	case weight >= 600:
		return f.bold
	case weight >= 500 && italic && f.mediumItalic != nil:
		return f.mediumItalic
	case weight >= 500 && f.medium != nil:
		return f.medium
	case italic:
		return f.italic
	}
	return f.regular
}

var builtinFamilies = map[string]family{
	"go": {
		regular: goregular.TTF, medium: gomedium.TTF, bold: gobold.TTF,
		italic: goitalic.TTF, mediumItalic: gomediumitalic.TTF, boldItalic: gobolditalic.TTF,
	},
	"go medium": {
		regular: gomedium.TTF, bold: gobold.TTF,
		italic: gomediumitalic.TTF, boldItalic: gobolditalic.TTF,
	},
	"go mono": {
		regular: gomono.TTF, bold: gomonobold.TTF,
		italic: gomonoitalic.TTF, boldItalic: gomonobolditalic.TTF,
	},
}

var familyAliases = map[string]string{
	"":           "go",
	"sans":       "go",
	"sans-serif": "go",
	"serif":      "go",
	"mono":       "go mono",
	"monospace":  "go mono",
}

// FontCache parses and caches fonts by file path or builtin name.
// Faces are not cached as they are not safe for concurrent use.
type FontCache struct {
	DebugLog Printer

	mu    sync.Mutex
	fonts map[string]*opentype.Font
}

// DefaultFonts is the shared font cache
var DefaultFonts = &FontCache{}

func (fc *FontCache) debugf(format string, v ...interface{}) {
	if fc.DebugLog != nil {
		fc.DebugLog.Printf(format, v...)
	}
}

func (fc *FontCache) load(key string, fn func() ([]byte, error)) (*opentype.Font, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if f, ok := fc.fonts[key]; ok {
		return f, nil
	}
	bs, err := fn()
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(bs)
	if err != nil {
		return nil, err
	}
	if fc.fonts == nil {
		fc.fonts = map[string]*opentype.Font{}
	}
	fc.fonts[key] = f
	return f, nil
}

func (fc *FontCache) builtin(fd FontDescriptor) (string, []byte) {
	name := strings.ToLower(fd.Family)
	if a, ok := familyAliases[name]; ok {
		name = a
	}
	fam, ok := builtinFamilies[name]
	if !ok {
		fc.debugf("font family %q not found, using Go", fd.Family)
		name = "go"
		fam = builtinFamilies[name]
	}
	return fmt.Sprintf("builtin:%s:%d:%t", name, fd.Weight, fd.Italic), fam.pick(fd.Weight, fd.Italic)
}

// Face returns a new face for descriptor, loaded from fontFile if not empty
// otherwise from the builtin Go fonts. Caller should Close the face.
func (fc *FontCache) Face(fd FontDescriptor, fontFile string) (font.Face, error) {
	var f *opentype.Font
	var err error
	if fontFile != "" {
		f, err = fc.load("file:"+fontFile, func() ([]byte, error) { return os.ReadFile(fontFile) })
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFontFile, fontFile, err)
		}
	} else {
		key, bs := fc.builtin(fd)
		f, err = fc.load(key, func() ([]byte, error) { return bs, nil })
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFontFile, key, err)
		}
	}

	size := fd.Size
	if size == 0 {
		size = DefaultFontSize
	}
	if !validSize(size) {
		return nil, fmt.Errorf("%w: size %v not in 0-%d", ErrFontDescriptor, size, MaxFontSize)
	}
	// 72 dpi makes points and pixels the same
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontFile, err)
	}
	return face, nil
}

// LoadFace parses descriptor and returns a face from the default cache
func LoadFace(descriptor string, fontFile string) (font.Face, error) {
	fd, err := ParseFontDescriptor(descriptor)
	if err != nil {
		return nil, err
	}
	return DefaultFonts.Face(fd, fontFile)
}
