package engine_test

import (
	"bytes"
	"errors"
	"image"
	"strconv"
	"testing"

	"github.com/wader/ffcountdown/internal/engine"
	"github.com/wader/ffcountdown/internal/hexcolor"
)

func TestNewCanvasDimensions(t *testing.T) {
	testCases := []struct {
		w, h int
		err  bool
	}{
		{w: 1, h: 1},
		{w: 100, h: 100},
		{w: 0, h: 10, err: true},
		{w: 10, h: 0, err: true},
		{w: -1, h: 10, err: true},
		{w: 10, h: -100, err: true},
		{w: engine.MaxDimension + 1, h: 1, err: true},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			_, err := engine.NewCanvas(tC.w, tC.h, hexcolor.MustParse("#fff"))
			if tC.err != errors.Is(err, engine.ErrDimensions) {
				t.Errorf("%dx%d: expected err %v, got %v", tC.w, tC.h, tC.err, err)
			}
		})
	}
}

func TestCanvasOpaqueBackground(t *testing.T) {
	c, err := engine.NewCanvas(4, 4, hexcolor.MustParse("#00616161"))
	if err != nil {
		t.Fatal(err)
	}
	px := c.Image().NRGBAAt(2, 2)
	if px.A != 0xff || px.R != 0x61 {
		t.Errorf("expected opaque #616161, got %#v", px)
	}
}

func TestCanvasDrawTextAndComposite(t *testing.T) {
	c, err := engine.NewCanvas(200, 60, hexcolor.MustParse("#000"))
	if err != nil {
		t.Fatal(err)
	}
	face, err := engine.LoadFace("Go Bold 32px", "")
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()

	before := c.Clone()
	if err := c.DrawText("", 0, 0, face, hexcolor.MustParse("#fff")); !errors.Is(err, engine.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if !bytes.Equal(before.Image().Pix, c.Image().Pix) {
		t.Fatal("failed draw modified canvas")
	}

	if err := c.DrawText("Hi", 10, 10, face, hexcolor.MustParse("#0f0")); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(before.Image().Pix, c.Image().Pix) {
		t.Fatal("expected draw to modify canvas")
	}

	dot := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	dot.Pix = []byte{0xff, 0, 0, 0xff}
	c.Composite(dot, 199, 59)
	if px := c.Image().NRGBAAt(199, 59); px.R != 0xff || px.G != 0 {
		t.Errorf("expected red corner, got %#v", px)
	}
}

func TestEncodeDecode(t *testing.T) {
	c, err := engine.NewCanvas(8, 8, hexcolor.MustParse("#123456"))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []engine.Format{engine.PNG, engine.GIF, engine.JPEG, engine.BMP, engine.TIFF} {
		t.Run(string(f), func(t *testing.T) {
			b := &bytes.Buffer{}
			if err := engine.Encode(b, c.Image(), f); err != nil {
				t.Fatal(err)
			}
			m, name, err := engine.Decode(b)
			if err != nil {
				t.Fatal(err)
			}
			if name != string(f) {
				t.Errorf("expected format %s, got %s", f, name)
			}
			if m.Bounds().Dx() != 8 || m.Bounds().Dy() != 8 {
				t.Errorf("expected 8x8, got %v", m.Bounds())
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	testCases := []struct {
		path     string
		expected engine.Format
		err      bool
	}{
		{path: "output/countdown.gif", expected: engine.GIF},
		{path: "a.PNG", expected: engine.PNG},
		{path: "a.jpg", expected: engine.JPEG},
		{path: "a.tif", expected: engine.TIFF},
		{path: "a.bmp", expected: engine.BMP},
		{path: "a.webp", err: true},
		{path: "noext", err: true},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			actual, err := engine.FormatFromPath(tC.path)
			if tC.err {
				if !errors.Is(err, engine.ErrFormat) {
					t.Fatalf("expected ErrFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tC.expected != actual {
				t.Errorf("expected %s, got %s", tC.expected, actual)
			}
		})
	}
}
