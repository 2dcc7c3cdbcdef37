package engine_test

import (
	"errors"
	"image"
	"strconv"
	"strings"
	"testing"

	"github.com/wader/ffcountdown/internal/engine"
	"github.com/wader/ffcountdown/internal/hexcolor"
)

func TestGravityOffset(t *testing.T) {
	testCases := []struct {
		g        engine.Gravity
		expected image.Point
	}{
		{g: engine.Centre, expected: image.Pt(45, 40)},
		{g: engine.North, expected: image.Pt(45, 0)},
		{g: engine.South, expected: image.Pt(45, 80)},
		{g: engine.East, expected: image.Pt(90, 40)},
		{g: engine.West, expected: image.Pt(0, 40)},
		{g: engine.NorthEast, expected: image.Pt(90, 0)},
		{g: engine.SouthEast, expected: image.Pt(90, 80)},
		{g: engine.SouthWest, expected: image.Pt(0, 80)},
		{g: engine.NorthWest, expected: image.Pt(0, 0)},
		{g: engine.ParseGravity("center"), expected: image.Pt(45, 40)},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			actual := tC.g.Offset(10, 20, 100, 100)
			if tC.expected != actual {
				t.Errorf("%s: expected %v, got %v", tC.g, tC.expected, actual)
			}
		})
	}
}

func TestTextMask(t *testing.T) {
	face, err := engine.LoadFace("Go 20px", "")
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()

	if _, err := engine.TextMask(face, ""); !errors.Is(err, engine.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	one, err := engine.TextMask(face, "88")
	if err != nil {
		t.Fatal(err)
	}
	two, err := engine.TextMask(face, "88\n88")
	if err != nil {
		t.Fatal(err)
	}
	if one.Bounds().Dx() != two.Bounds().Dx() {
		t.Errorf("expected same width, got %d and %d", one.Bounds().Dx(), two.Bounds().Dx())
	}
	if two.Bounds().Dy() <= one.Bounds().Dy() {
		t.Errorf("expected two lines to be taller, got %d and %d", one.Bounds().Dy(), two.Bounds().Dy())
	}

	inked := false
	for _, a := range one.Pix {
		if a != 0 {
			inked = true
			break
		}
	}
	if !inked {
		t.Error("expected some glyph coverage")
	}
}

func TestTextImageBox(t *testing.T) {
	face, err := engine.LoadFace("", "")
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()

	mask, err := engine.TextMask(face, "12")
	if err != nil {
		t.Fatal(err)
	}

	m, err := engine.TextImage("12", engine.TextOptions{
		Face:       face,
		Color:      hexcolor.MustParse("#f00"),
		Width:      200,
		Height:     2,
		PaddingTop: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Bounds().Dx() != 200 {
		t.Errorf("expected width 200, got %d", m.Bounds().Dx())
	}
	// height smaller than text grows to fit text plus padding
	if expected := mask.Bounds().Dy() + 3; m.Bounds().Dy() != expected {
		t.Errorf("expected height %d, got %d", expected, m.Bounds().Dy())
	}
	for _, c := range []image.Point{{0, 0}, {199, 0}} {
		if a := m.NRGBAAt(c.X, c.Y).A; a != 0 {
			t.Errorf("expected transparent at %v, got alpha %d", c, a)
		}
	}

	if _, err := engine.TextImage("12", engine.TextOptions{Face: face, PaddingBottom: -1}); !errors.Is(err, engine.ErrDimensions) {
		t.Errorf("expected ErrDimensions for negative padding, got %v", err)
	}
}

func TestTextMaskTooLarge(t *testing.T) {
	face, err := engine.LoadFace("Go 12px", "")
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()

	text := strings.Repeat("8\n", 2000) + "8"
	if _, err := engine.TextMask(face, text); !errors.Is(err, engine.ErrDimensions) {
		t.Fatalf("expected ErrDimensions, got %v", err)
	}
}
