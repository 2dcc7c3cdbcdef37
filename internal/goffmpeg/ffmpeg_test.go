package goffmpeg_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/wader/ffcountdown/internal/goffmpeg"
	"github.com/wader/osleaktest"
)

func leakChecks(t *testing.T) func() {
	leakFn := leaktest.Check(t)
	osLeakFn := osleaktest.Check(t)
	return func() {
		leakFn()
		osLeakFn()
	}
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if !goffmpeg.Available(goffmpeg.FFmpegPath) || !goffmpeg.Available(goffmpeg.FFprobePath) {
		t.Skip("ffmpeg or ffprobe not found")
	}
}

func TestArgs(t *testing.T) {
	in := &goffmpeg.Input{File: "in.png"}
	testCases := []struct {
		cmd      *goffmpeg.FFmpegCmd
		expected []string
	}{
		{
			cmd: &goffmpeg.FFmpegCmd{
				Flags: []string{"-y"},
				FilterGraph: &goffmpeg.FilterGraph{
					{{Name: "split", Outputs: []string{"a", "b"}}},
					{{Name: "palettegen", Inputs: []string{"a"}, Options: map[string]string{"stats_mode": "diff"}, Outputs: []string{"p"}}},
					{{Name: "paletteuse", Inputs: []string{"b", "p"}, Outputs: []string{"out"}}},
				},
				Inputs: []*goffmpeg.Input{{File: &bytes.Buffer{}, Format: "image2pipe", Options: map[string]string{"framerate": "1"}}},
				Outputs: []*goffmpeg.Output{{
					Maps:    []*goffmpeg.Map{{Label: "out"}},
					Format:  "gif",
					Options: map[string]string{"loop": "0"},
					File:    &bytes.Buffer{},
				}},
			},
			expected: []string{
				"-nostdin", "-hide_banner", "-y",
				"-filter_complex", "split[a][b];[a]palettegen=stats_mode=diff[p];[b][p]paletteuse[out]",
				"-framerate", "1", "-f", "image2pipe", "-i", "pipe:0",
				"-map", "[out]", "-f", "gif", "-loop", "0", "pipe:1",
			},
		},
		{
			cmd: &goffmpeg.FFmpegCmd{
				Inputs: []*goffmpeg.Input{in},
				Outputs: []*goffmpeg.Output{{
					Maps: []*goffmpeg.Map{{Input: in, Specifier: "v:0", Codec: "gif", Options: map[string]string{"threads": "2"}}},
					File: "out.gif",
				}},
			},
			expected: []string{
				"-nostdin", "-hide_banner",
				"-i", "in.png",
				"-map", "0:v:0", "-codec:0", "gif", "-threads:0", "2",
				"out.gif",
			},
		},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			actual, err := tC.cmd.Args()
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(tC.expected, actual) {
				t.Errorf("expected %q, got %q", tC.expected, actual)
			}
		})
	}
}

func TestArgsPipes(t *testing.T) {
	c := &goffmpeg.FFmpegCmd{
		Inputs: []*goffmpeg.Input{{File: &bytes.Buffer{}}, {File: &bytes.Buffer{}}},
		Outputs: []*goffmpeg.Output{{
			File: "out.gif",
		}},
	}
	if _, err := c.Args(); !errors.Is(err, goffmpeg.ErrPipes) {
		t.Errorf("expected ErrPipes, got %v", err)
	}
	if _, err := (&goffmpeg.FFmpegCmd{Inputs: []*goffmpeg.Input{{File: 123}}}).Args(); err == nil {
		t.Error("expected error for unknown input type")
	}
}

func TestFilterString(t *testing.T) {
	testCases := []struct {
		f        goffmpeg.Filter
		expected string
	}{
		{f: goffmpeg.Filter{Name: "null"}, expected: "null"},
		{f: goffmpeg.Filter{Name: "fps", Options: map[string]string{"fps": "1"}}, expected: "fps=fps=1"},
		{f: goffmpeg.Filter{Name: "drawtext", Options: map[string]string{"text": "a:b,c"}}, expected: `drawtext=text=a\:b\,c`},
		{
			f:        goffmpeg.Filter{Name: "scale", Inputs: []string{"in"}, Options: map[string]string{"w": "10", "h": "20"}, Outputs: []string{"out"}},
			expected: "[in]scale=h=20:w=10[out]",
		},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if actual := tC.f.String(); tC.expected != actual {
				t.Errorf("expected %q, got %q", tC.expected, actual)
			}
		})
	}
}

func TestLastLines(t *testing.T) {
	testCases := []struct {
		writes   string
		expected string
	}{
		{writes: "", expected: ""},
		{writes: "a\n,b\n", expected: "a\nb\n"},
		{writes: "a\r", expected: "a\r"},
		{writes: "a,b,c\n", expected: "abc\n"},
		{writes: "a\n,b", expected: "a\nb"},
		{writes: "a\n,b\n,c\n,d\n", expected: "b\nc\nd\n"},
		{writes: "a\n,b\n,c\n,1\n,2\n,3\n", expected: "1\n2\n3\n"},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			ll := goffmpeg.NewLastLines(3)
			for _, w := range strings.Split(tC.writes, ",") {
				if _, err := ll.Write([]byte(w)); err != nil {
					t.Fatal(err)
				}
			}
			ll.Close()

			if tC.expected != ll.String() {
				t.Errorf("expected %q, got %q", tC.expected, ll.String())
			}
		})
	}
}

func TestRunError(t *testing.T) {
	requireFFmpeg(t)
	defer leakChecks(t)()

	c := &goffmpeg.FFmpegCmd{
		Context: context.Background(),
		Inputs:  []*goffmpeg.Input{{File: bytes.NewReader([]byte("not an image")), Format: "png_pipe"}},
		Outputs: []*goffmpeg.Output{{Format: "gif", File: &bytes.Buffer{}}},
	}
	err := c.Run()
	if err == nil {
		t.Fatal("expected error")
	}
	if c.StderrBuffer() == "" {
		t.Error("expected stderr to be buffered")
	}
}

func TestEncodeAndProbe(t *testing.T) {
	requireFFmpeg(t)
	defer leakChecks(t)()

	frames := &bytes.Buffer{}
	for i := 0; i < 3; i++ {
		m := image.NewNRGBA(image.Rect(0, 0, 16, 8))
		m.Set(i, 0, color.White)
		if err := png.Encode(frames, m); err != nil {
			t.Fatal(err)
		}
	}

	out := &bytes.Buffer{}
	c := &goffmpeg.FFmpegCmd{
		Context: context.Background(),
		Inputs: []*goffmpeg.Input{{
			File:    frames,
			Format:  "image2pipe",
			Options: map[string]string{"framerate": "1"},
		}},
		Outputs: []*goffmpeg.Output{{Format: "gif", File: out}},
		Stderr:  os.Stderr,
	}
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if _, err := gif.DecodeAll(bytes.NewReader(out.Bytes())); err != nil {
		t.Fatal(err)
	}

	pr, err := goffmpeg.Probe(context.Background(), bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if pr.FormatName() != "gif" {
		t.Errorf("expected gif format, got %s", pr.FormatName())
	}
	vs, ok := pr.FirstVideoStream()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if vs.Width != 16 || vs.Height != 8 {
		t.Errorf("expected 16x8, got %dx%d", vs.Width, vs.Height)
	}
	if vs.Frames() != 3 {
		t.Errorf("expected 3 frames, got %d", vs.Frames())
	}
}
