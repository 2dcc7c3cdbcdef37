// Package gifenc has animated GIF encoders
package gifenc

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"time"
)

var (
	ErrNoFrames    = errors.New("no frames")
	ErrFrameSize   = errors.New("frames differ in size")
	ErrUnavailable = errors.New("encoder not available")
	ErrUnknown     = errors.New("unknown encoder")
)

// DefaultDelay between frames
const DefaultDelay = time.Second

// Animation to encode
type Animation struct {
	Frames []image.Image
	// Delay between frames, zero is DefaultDelay. GIF has centisecond precision.
	Delay time.Duration
	// LoopCount 0 loops forever, -1 plays once, n loops n times more
	LoopCount int
	// Palette is used if not nil and has at most 256 colors
	Palette color.Palette
}

// Validate frames are present and have the same size
func (a Animation) Validate() error {
	if len(a.Frames) == 0 {
		return ErrNoFrames
	}
	size := a.Frames[0].Bounds().Size()
	for i, f := range a.Frames[1:] {
		if s := f.Bounds().Size(); s != size {
			return fmt.Errorf("%w: frame %d is %s expected %s", ErrFrameSize, i+1, s, size)
		}
	}
	return nil
}

// DelayCentiseconds is delay in 100ths of a second, at least 1
func (a Animation) DelayCentiseconds() int {
	d := a.Delay
	if d <= 0 {
		d = DefaultDelay
	}
	cs := int(d / (10 * time.Millisecond))
	if cs < 1 {
		cs = 1
	}
	return cs
}

// Encoder encodes an animation as GIF
type Encoder interface {
	Name() string
	Available() bool
	Encode(ctx context.Context, w io.Writer, a Animation) error
}
