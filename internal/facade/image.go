package facade

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"

	"github.com/wader/ffcountdown/internal/engine"
	"github.com/wader/ffcountdown/internal/hexcolor"
	"github.com/wader/ffcountdown/internal/sink"
)

// Image is an owned canvas. Not safe for concurrent mutation.
type Image struct {
	canvas *engine.Canvas
}

// CreateImage creates an opaque image filled with BgColor
func CreateImage(opts CreationOptions) (*Image, error) {
	bg, err := hexcolor.Parse(opts.bgColor())
	if err != nil {
		return nil, engineError("create", err)
	}
	c, err := engine.NewCanvas(opts.Width, opts.Height, bg)
	if err != nil {
		return nil, engineError("create", err)
	}
	return &Image{canvas: c}, nil
}

// OpenImage decodes a png, jpeg, gif, bmp, tiff or webp file
func OpenImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer f.Close()
	m, _, err := engine.Decode(f)
	if err != nil {
		return nil, engineError("decode", err)
	}
	return &Image{canvas: engine.FromImage(m)}, nil
}

// TextImage renders text on a transparent image
func TextImage(text string, opts TextImageOptions) (*Image, error) {
	c, err := hexcolor.Parse(opts.color())
	if err != nil {
		return nil, engineError("text", err)
	}
	face, err := engine.LoadFace(opts.Font, opts.FontFile)
	if err != nil {
		return nil, engineError("text", err)
	}
	defer face.Close()

	m, err := engine.TextImage(text, engine.TextOptions{
		Face:          face,
		Color:         c,
		Width:         opts.Width,
		Height:        opts.Height,
		Gravity:       engine.ParseGravity(opts.TextAlignment),
		PaddingTop:    opts.PaddingTop,
		PaddingBottom: opts.PaddingBottom,
	})
	if err != nil {
		return nil, engineError("text", err)
	}
	return &Image{canvas: engine.FromImage(m)}, nil
}

func (im *Image) check(op string) error {
	if im == nil || im.canvas == nil {
		return &EngineError{Op: op, Err: ErrClosed}
	}
	return nil
}

// Width is 0 for a closed image
func (im *Image) Width() int {
	if im.check("width") != nil {
		return 0
	}
	return im.canvas.Width()
}

// Height is 0 for a closed image
func (im *Image) Height() int {
	if im.check("height") != nil {
		return 0
	}
	return im.canvas.Height()
}

// Image returns the underlying image, nil if closed
func (im *Image) Image() image.Image {
	if im.check("image") != nil {
		return nil
	}
	return im.canvas.Image()
}

// DrawText draws text with the top left of the text box at x,y. The image is
// unchanged if an error is returned.
func (im *Image) DrawText(text string, x, y int, opts TextOptions) error {
	if err := im.check("drawText"); err != nil {
		return err
	}
	c, err := hexcolor.Parse(opts.color())
	if err != nil {
		return engineError("drawText", err)
	}
	face, err := engine.LoadFace(opts.Font, opts.FontFile)
	if err != nil {
		return engineError("drawText", err)
	}
	defer face.Close()
	return engineError("drawText", im.canvas.DrawText(text, x, y, face, c))
}

// Composite draws src over the image with its top left at x,y
func (im *Image) Composite(src *Image, x, y int) error {
	if err := im.check("composite"); err != nil {
		return err
	}
	if err := src.check("composite"); err != nil {
		return err
	}
	im.canvas.Composite(src.canvas.Image(), x, y)
	return nil
}

// Encode image as format, png, gif, jpeg, bmp or tiff
func (im *Image) Encode(w io.Writer, format string) error {
	if err := im.check("encode"); err != nil {
		return err
	}
	return engineError("encode", engine.Encode(w, im.canvas.Image(), engine.Format(format)))
}

// Save encodes image in the format of the path extension and writes it to a
// local path, parent directories are created, or a s3://bucket/key URL.
func (im *Image) Save(ctx context.Context, path string) error {
	if err := im.check("save"); err != nil {
		return err
	}
	f, err := engine.FormatFromPath(path)
	if err != nil {
		return engineError("save", err)
	}
	buf := &bytes.Buffer{}
	if err := engine.Encode(buf, im.canvas.Image(), f); err != nil {
		return engineError("save", err)
	}
	return writeTarget(ctx, path, buf)
}

// Close releases the image, later operations fail with ErrClosed
func (im *Image) Close() error {
	if err := im.check("close"); err != nil {
		return err
	}
	im.canvas = nil
	return nil
}

func writeTarget(ctx context.Context, path string, r io.Reader) error {
	w, err := sink.Open(ctx, path)
	if err != nil {
		return ioError("save", path, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Abort()
		return ioError("save", path, err)
	}
	return ioError("save", path, w.Close())
}
