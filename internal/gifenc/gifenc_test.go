package gifenc_test

import (
	"errors"
	"image"
	"strconv"
	"testing"
	"time"

	"github.com/wader/ffcountdown/internal/gifenc"
)

func TestValidate(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	b := image.NewNRGBA(image.Rect(0, 0, 10, 11))
	testCases := []struct {
		frames []image.Image
		err    error
	}{
		{frames: nil, err: gifenc.ErrNoFrames},
		{frames: []image.Image{a}},
		{frames: []image.Image{a, a}},
		{frames: []image.Image{a, b}, err: gifenc.ErrFrameSize},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			err := gifenc.Animation{Frames: tC.frames}.Validate()
			if tC.err == nil && err != nil || !errors.Is(err, tC.err) {
				t.Errorf("expected %v, got %v", tC.err, err)
			}
		})
	}
}

func TestDelayCentiseconds(t *testing.T) {
	testCases := []struct {
		d        time.Duration
		expected int
	}{
		{d: 0, expected: 100},
		{d: -time.Second, expected: 100},
		{d: time.Millisecond, expected: 1},
		{d: 500 * time.Millisecond, expected: 50},
		{d: 2 * time.Second, expected: 200},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if actual := (gifenc.Animation{Delay: tC.d}).DelayCentiseconds(); tC.expected != actual {
				t.Errorf("%s: expected %d, got %d", tC.d, tC.expected, actual)
			}
		})
	}
}
