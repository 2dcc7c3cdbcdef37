// Package ffmpeg encodes GIF by piping PNG frames through ffmpeg palettegen and paletteuse
package ffmpeg

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"strconv"

	"github.com/wader/ffcountdown/internal/gifenc"
	"github.com/wader/ffcountdown/internal/goffmpeg"
)

type Encoder struct {
	DebugLog goffmpeg.Printer
	Stderr   io.Writer
}

func (Encoder) Name() string    { return "ffmpeg" }
func (Encoder) Available() bool { return goffmpeg.Available(goffmpeg.FFmpegPath) }

// Cmd returns the ffmpeg command reading PNG frames from r and writing GIF to w
func (e Encoder) Cmd(ctx context.Context, r io.Reader, w io.Writer, a gifenc.Animation) *goffmpeg.FFmpegCmd {
	return &goffmpeg.FFmpegCmd{
		Context:  ctx,
		DebugLog: e.DebugLog,
		Stderr:   e.Stderr,
		Flags:    []string{"-loglevel", "error"},
		Inputs: []*goffmpeg.Input{{
			File:   r,
			Format: "image2pipe",
			Options: map[string]string{
				"framerate": fmt.Sprintf("100/%d", a.DelayCentiseconds()),
				"codec":     "png",
			},
		}},
		FilterGraph: &goffmpeg.FilterGraph{
			{{Name: "split", Outputs: []string{"a", "b"}}},
			{{
				Name:    "palettegen",
				Inputs:  []string{"a"},
				Options: map[string]string{"stats_mode": "full", "reserve_transparent": "0"},
				Outputs: []string{"p"},
			}},
			{{
				Name:    "paletteuse",
				Inputs:  []string{"b", "p"},
				Options: map[string]string{"dither": "floyd_steinberg"},
				Outputs: []string{"out"},
			}},
		},
		Outputs: []*goffmpeg.Output{{
			File:    w,
			Maps:    []*goffmpeg.Map{{Label: "out"}},
			Format:  "gif",
			Options: map[string]string{"loop": strconv.Itoa(a.LoopCount)},
		}},
	}
}

// Encode animation, frames are written as PNG to ffmpeg stdin
func (e Encoder) Encode(ctx context.Context, w io.Writer, a gifenc.Animation) error {
	if err := a.Validate(); err != nil {
		return err
	}

	pr, pw := io.Pipe()
	writeErrCh := make(chan error, 1)
	go func() {
		var err error
		for _, f := range a.Frames {
			if err = png.Encode(pw, f); err != nil {
				break
			}
		}
		pw.CloseWithError(err)
		writeErrCh <- err
	}()

	runErr := e.Cmd(ctx, pr, w, a).Run()
	// unblock frame writer if ffmpeg exited early
	pr.CloseWithError(io.ErrClosedPipe)
	writeErr := <-writeErrCh

	if runErr != nil {
		return runErr
	}
	return writeErr
}
