package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wader/ffcountdown/internal/countdown"
	"github.com/wader/ffcountdown/internal/engine"
)

// Limits for rendered GIFs and request bodies
const (
	MaxFrames = 300
	// MaxSide is the largest width or height of a canvas, label box or digit box
	MaxSide = 2048
	// MaxPixels is the budget for the template, pre rendered digits and all frames
	MaxPixels = 64 << 20
	// MaxBodyBytes for JSON request bodies
	MaxBodyBytes = 1 << 20
)

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func fontSize(descriptor string) int64 {
	fd, err := engine.ParseFontDescriptor(descriptor)
	if err != nil {
		// reported when the countdown is prepared
		return engine.DefaultFontSize
	}
	return int64(fd.Size) + 1
}

// textArea estimates pixels of a text image, a glyph is assumed to be at most
// size wide and a line at most two sizes high
func textArea(text string, size int64, boxWidth, boxHeight int) int64 {
	lines := strings.Split(text, "\n")
	longest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	w := int64(longest) * size
	if int64(boxWidth) > w {
		w = int64(boxWidth)
	}
	h := int64(len(lines)) * 2 * size
	if int64(boxHeight) > h {
		h = int64(boxHeight)
	}
	return w * h
}

func checkSide(what string, v int) error {
	if v > MaxSide {
		return fmt.Errorf("%s %d larger than %d", what, v, MaxSide)
	}
	return nil
}

// checkLimits estimates the pixels needed to prepare o and render frames
func checkLimits(o countdown.Options, frames int) error {
	if err := checkSide("width", o.Width); err != nil {
		return err
	}
	if err := checkSide("height", o.Height); err != nil {
		return err
	}
	if o.Width <= 0 || o.Height <= 0 {
		// invalid dimensions are reported when the countdown is prepared
		return nil
	}

	canvas := int64(o.Width) * int64(o.Height)
	total := canvas * int64(1+frames)

	for name, l := range o.Labels {
		if l.Position == nil {
			continue
		}
		if err := checkSide("label "+name+" width", l.Position.Width); err != nil {
			return err
		}
		if err := checkSide("label "+name+" height", l.Position.Height); err != nil {
			return err
		}
		total += textArea(l.Text, fontSize(l.Font), l.Position.Width, l.Position.Height)
	}

	digits := o.Digits
	if digits == nil {
		digits = countdown.DefaultDigits(o.Width, o.Height)
	}
	if err := checkSide("digits width", digits.Style.Width); err != nil {
		return err
	}
	if err := checkSide("digits height", digits.Style.Height); err != nil {
		return err
	}
	text := "00"
	if digits.TextTemplate != "" {
		text = strings.Replace(digits.TextTemplate, "%s", text, 1)
	}
	total += (countdown.MaxDigitValue + 1) * textArea(text, fontSize(digits.Style.Font), digits.Style.Width, digits.Style.Height)

	if total > MaxPixels {
		return fmt.Errorf("countdown needs %d pixels, more than %d", total, MaxPixels)
	}
	return nil
}
