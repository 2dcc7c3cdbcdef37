package facade

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wader/ffcountdown/internal/countdown"
)

// Defaults
const (
	DefaultBgColor   = "#FFFFFF"
	DefaultTextColor = "#000000"
	DefaultFrames    = 10
	DefaultDelayMS   = 1000
)

// DefaultStart is 00:00:01:00
var DefaultStart = countdown.Moment{Minutes: 1}

// CreationOptions for a new image. OutputFile is a deprecated alias of OutFilePath.
type CreationOptions struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	BgColor     string `json:"bgColor,omitempty"`
	OutFilePath string `json:"outFilePath,omitempty"`
	OutputFile  string `json:"outputFile,omitempty"`
}

// OutPath resolves OutFilePath and the deprecated OutputFile alias
func (o CreationOptions) OutPath() (string, error) {
	if o.OutputFile == "" {
		return o.OutFilePath, nil
	}
	logrus.WithField("option", "outputFile").Warn("outputFile is deprecated, use outFilePath")
	if o.OutFilePath != "" && o.OutFilePath != o.OutputFile {
		return "", fmt.Errorf("%w: outFilePath %q and outputFile %q differ", ErrOptions, o.OutFilePath, o.OutputFile)
	}
	return o.OutputFile, nil
}

func (o CreationOptions) bgColor() string {
	if o.BgColor == "" {
		return DefaultBgColor
	}
	return o.BgColor
}

// TextOptions for drawing text, Font is a descriptor like `"Go Mono" bold 24px`
type TextOptions struct {
	Font     string `json:"font,omitempty"`
	FontFile string `json:"fontFile,omitempty"`
	Color    string `json:"color,omitempty"`
}

func (o TextOptions) color() string {
	if o.Color == "" {
		return DefaultTextColor
	}
	return o.Color
}

// TextImageOptions for a standalone text image
type TextImageOptions struct {
	TextOptions
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	TextAlignment string `json:"textAlignment,omitempty"`
	PaddingTop    int    `json:"paddingTop,omitempty"`
	PaddingBottom int    `json:"paddingBottom,omitempty"`
}

// CountdownOptions for an animated countdown GIF
type CountdownOptions struct {
	CreationOptions
	Labels map[string]countdown.Label `json:"labels,omitempty"`
	// Digits nil is a default layout of four equal columns
	Digits *countdown.Digits `json:"digits,omitempty"`
	// Start nil is DefaultStart
	Start *countdown.Moment `json:"start,omitempty"`
	// Frames 0 is DefaultFrames, negative is one frame
	Frames int `json:"frames,omitempty"`
	// Delay between frames in milliseconds, 0 is DefaultDelayMS
	Delay     int    `json:"delay,omitempty"`
	LoopCount int    `json:"loopCount,omitempty"`
	Encoder   string `json:"encoder,omitempty"`
}

func (o CountdownOptions) start() countdown.Moment {
	if o.Start == nil {
		return DefaultStart
	}
	return *o.Start
}

func (o CountdownOptions) frames() int {
	switch {
	case o.Frames == 0:
		return DefaultFrames
	case o.Frames < 0:
		return 1
	}
	return o.Frames
}

// CountdownTemplateOptions converts to countdown options
func (o CountdownOptions) CountdownTemplateOptions() countdown.Options {
	return countdown.Options{
		Width:   o.Width,
		Height:  o.Height,
		BgColor: o.bgColor(),
		Labels:  o.Labels,
		Digits:  o.Digits,
	}
}

func decodeStrict(bs []byte, v interface{}) error {
	d := json.NewDecoder(bytes.NewReader(bs))
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		return &EngineError{Op: "options", Err: fmt.Errorf("%w: %v", ErrOptions, err)}
	}
	return nil
}

// ParseCreationOptions decodes JSON rejecting unknown keys
func ParseCreationOptions(bs []byte) (CreationOptions, error) {
	var o CreationOptions
	if err := decodeStrict(bs, &o); err != nil {
		return CreationOptions{}, err
	}
	return o, nil
}

// ParseCountdownOptions decodes JSON rejecting unknown keys
func ParseCountdownOptions(bs []byte) (CountdownOptions, error) {
	var o CountdownOptions
	if err := decodeStrict(bs, &o); err != nil {
		return CountdownOptions{}, err
	}
	return o, nil
}
