// Package countdown prepares countdown templates and sequences frames
package countdown

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wader/ffcountdown/internal/engine"
)

// ErrOptions is returned for invalid countdown options
var ErrOptions = errors.New("invalid countdown options")

// DefaultColor for labels and digits
const DefaultColor = "#FFFFFF"

// decodeStrict unmarshals and rejects unknown keys
func decodeStrict(bs []byte, v interface{}) error {
	d := json.NewDecoder(bytes.NewReader(bs))
	d.DisallowUnknownFields()
	return d.Decode(v)
}

// Position of a component, x and y are required when decoded from JSON
type Position struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

func (p *Position) UnmarshalJSON(bs []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(bs, &keys); err != nil {
		return err
	}
	for _, k := range []string{"x", "y"} {
		if _, ok := keys[k]; !ok {
			return fmt.Errorf("%w: position missing %q", ErrOptions, k)
		}
	}
	type position Position
	var v position
	if err := decodeStrict(bs, &v); err != nil {
		return err
	}
	*p = Position(v)
	return nil
}

// Label is static text drawn once into the template
type Label struct {
	Text          string    `json:"text"`
	Position      *Position `json:"position"`
	Color         string    `json:"color,omitempty"`
	Font          string    `json:"font,omitempty"`
	FontFile      string    `json:"fontFile,omitempty"`
	TextAlignment string    `json:"textAlignment,omitempty"`
	PaddingTop    int       `json:"paddingTop,omitempty"`
	PaddingBottom int       `json:"paddingBottom,omitempty"`
}

// SlotPosition is where a digit pair is drawn
type SlotPosition struct {
	Position *Position `json:"position"`
}

// DigitPositions for each moment part
type DigitPositions struct {
	Days    *SlotPosition `json:"days"`
	Hours   *SlotPosition `json:"hours"`
	Minutes *SlotPosition `json:"minutes"`
	Seconds *SlotPosition `json:"seconds"`
}

func (dp DigitPositions) slots() [4]*SlotPosition {
	return [4]*SlotPosition{dp.Days, dp.Hours, dp.Minutes, dp.Seconds}
}

var partNames = [4]string{"days", "hours", "minutes", "seconds"}

// Style shared by all digits
type Style struct {
	Color         string `json:"color,omitempty"`
	Font          string `json:"font,omitempty"`
	FontFile      string `json:"fontFile,omitempty"`
	TextAlignment string `json:"textAlignment,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
}

// Digits describes how the changing numbers are drawn
type Digits struct {
	Positions *DigitPositions `json:"positions"`
	Style     Style           `json:"style,omitempty"`
	// TextTemplate where %s is replaced by the two digit value, ex: "%s days"
	TextTemplate string `json:"textTemplate,omitempty"`
}

// Options for a countdown template
type Options struct {
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	BgColor string           `json:"bgColor"`
	Labels  map[string]Label `json:"labels,omitempty"`
	Digits  *Digits          `json:"digits,omitempty"`
}

// ParseOptions decodes JSON options rejecting unknown keys
func ParseOptions(bs []byte) (Options, error) {
	var o Options
	if err := decodeStrict(bs, &o); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrOptions, err)
	}
	return o, nil
}

// Validate checks required fields, dimensions are checked by the engine
func (o Options) Validate() error {
	for name, l := range o.Labels {
		if l.Text == "" {
			return fmt.Errorf("%w: label %q missing text", ErrOptions, name)
		}
		if l.Position == nil {
			return fmt.Errorf("%w: label %q missing position", ErrOptions, name)
		}
		if l.PaddingTop < 0 || l.PaddingBottom < 0 {
			return fmt.Errorf("%w: label %q has negative padding", ErrOptions, name)
		}
	}
	if o.Digits == nil {
		return nil
	}
	if o.Digits.Positions == nil {
		return fmt.Errorf("%w: digits missing positions", ErrOptions)
	}
	for i, s := range o.Digits.Positions.slots() {
		if s == nil || s.Position == nil {
			return fmt.Errorf("%w: digits missing position for %s", ErrOptions, partNames[i])
		}
	}
	if t := o.Digits.TextTemplate; t != "" && strings.Count(t, "%s") != 1 {
		return fmt.Errorf("%w: textTemplate %q should contain exactly one %%s", ErrOptions, t)
	}
	return nil
}

// DefaultDigits lays out days, hours, minutes and seconds in four equal
// columns with white digits sized to fit.
func DefaultDigits(width, height int) *Digits {
	slotWidth := width / 4
	size := slotWidth * 10 / 14
	if s := height * 6 / 10; s < size {
		size = s
	}
	if size > engine.MaxFontSize {
		size = engine.MaxFontSize
	}
	if size < 1 {
		size = 1
	}

	slot := func(i int) *SlotPosition {
		return &SlotPosition{Position: &Position{X: i * slotWidth, Y: 0}}
	}
	return &Digits{
		Positions: &DigitPositions{
			Days:    slot(0),
			Hours:   slot(1),
			Minutes: slot(2),
			Seconds: slot(3),
		},
		Style: Style{
			Color:  DefaultColor,
			Font:   fmt.Sprintf(`"Go Mono" bold %dpx`, size),
			Width:  slotWidth,
			Height: height,
		},
	}
}
