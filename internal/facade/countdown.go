package facade

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wader/ffcountdown/internal/countdown"
	"github.com/wader/ffcountdown/internal/gifenc"
	"github.com/wader/ffcountdown/internal/gifenc/all"
	"github.com/wader/ffcountdown/internal/gifenc/ffmpeg"
	"github.com/wader/ffcountdown/internal/sink"
)

// CountdownResult describes a rendered countdown file
type CountdownResult struct {
	Path    string `json:"path"`
	Frames  int    `json:"frames"`
	Size    int64  `json:"size"`
	Encoder string `json:"encoder"`
}

// Countdown is a prepared countdown template that can render many animations
type Countdown struct {
	anim      *countdown.Animation
	encoder   gifenc.Encoder
	delay     time.Duration
	loopCount int
	palette   color.Palette
}

// FindEncoder by name, "" or "auto" picks the first available one
func FindEncoder(name string) (gifenc.Encoder, error) {
	e, err := all.Find(name)
	if err != nil {
		return nil, engineError("encoder", err)
	}
	if fe, ok := e.(ffmpeg.Encoder); ok {
		fe.DebugLog = DebugPrinter{Entry: logrus.WithField("encoder", "ffmpeg")}
		e = fe
	}
	return e, nil
}

// NewCountdown prepares background, labels and digit images
func NewCountdown(opts CountdownOptions) (*Countdown, error) {
	if opts.Start != nil {
		if err := checkStart(*opts.Start); err != nil {
			return nil, err
		}
	}
	e, err := FindEncoder(opts.Encoder)
	if err != nil {
		return nil, err
	}
	anim, err := countdown.New(opts.CountdownTemplateOptions(), nil)
	if err != nil {
		return nil, engineError("countdown", err)
	}

	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDelayMS
	}
	c := &Countdown{
		anim:      anim,
		encoder:   e,
		delay:     time.Duration(delay) * time.Millisecond,
		loopCount: opts.LoopCount,
	}
	// an exact palette avoids dithering flat colors
	if p, ok := anim.Palette(256); ok {
		c.palette = p
	}

	logrus.WithFields(logrus.Fields{
		"width":   anim.Width(),
		"height":  anim.Height(),
		"encoder": e.Name(),
		"labels":  len(opts.Labels),
	}).Debug("Countdown prepared")

	return c, nil
}

// Encoder name used for rendering
func (c *Countdown) Encoder() string { return c.encoder.Name() }

// Animation returns frames for start, frames less than 1 is one frame
func (c *Countdown) Animation(start countdown.Moment, frames int) gifenc.Animation {
	return gifenc.Animation{
		Frames:    c.anim.Frames(start, frames),
		Delay:     c.delay,
		LoopCount: c.loopCount,
		Palette:   c.palette,
	}
}

type countWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	if err != nil {
		cw.err = err
	}
	return n, err
}

// Render GIF to w counting down from start
func (c *Countdown) Render(ctx context.Context, start countdown.Moment, frames int, w io.Writer) error {
	_, err := c.render(ctx, start, frames, w, "")
	return err
}

func checkStart(m countdown.Moment) error {
	if err := m.Validate(); err != nil {
		return &EngineError{Op: "countdown", Err: fmt.Errorf("%w: start %v", ErrOptions, err)}
	}
	return nil
}

func (c *Countdown) render(ctx context.Context, start countdown.Moment, frames int, w io.Writer, path string) (int64, error) {
	if err := checkStart(start); err != nil {
		return 0, err
	}
	cw := &countWriter{w: w}
	err := c.encoder.Encode(ctx, cw, c.Animation(start, frames))
	if cw.err != nil {
		return cw.n, ioError("write", path, cw.err)
	}
	return cw.n, engineError("encode", err)
}

// RenderFile renders to a local path or s3://bucket/key
func (c *Countdown) RenderFile(ctx context.Context, start countdown.Moment, frames int, path string) (int64, error) {
	w, err := sink.Open(ctx, path)
	if err != nil {
		return 0, ioError("save", path, err)
	}
	n, err := c.render(ctx, start, frames, w, path)
	if err != nil {
		w.Abort()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, ioError("save", path, err)
	}
	return n, nil
}

// RenderCountdown prepares and renders a countdown GIF to OutFilePath
func RenderCountdown(ctx context.Context, opts CountdownOptions) (CountdownResult, error) {
	path, err := opts.OutPath()
	if err != nil {
		return CountdownResult{}, engineError("countdown", err)
	}
	if path == "" {
		return CountdownResult{}, &EngineError{Op: "countdown", Err: errMissingPath}
	}

	c, err := NewCountdown(opts)
	if err != nil {
		return CountdownResult{}, err
	}
	frames := opts.frames()
	n, err := c.RenderFile(ctx, opts.start(), frames, path)
	if err != nil {
		return CountdownResult{}, err
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"frames":  frames,
		"size":    n,
		"encoder": c.Encoder(),
	}).Info("Countdown rendered")

	return CountdownResult{Path: path, Frames: frames, Size: n, Encoder: c.Encoder()}, nil
}
