// Package all has all encoders in preferred order
package all

import (
	"fmt"
	"strings"

	"github.com/wader/ffcountdown/internal/gifenc"
	"github.com/wader/ffcountdown/internal/gifenc/ffmpeg"
	"github.com/wader/ffcountdown/internal/gifenc/std"
)

var Encoders = []gifenc.Encoder{
	ffmpeg.Encoder{},
	std.Encoder{},
}

// Names of all encoders
func Names() []string {
	var ns []string
	for _, e := range Encoders {
		ns = append(ns, e.Name())
	}
	return ns
}

// Find encoder by name, "auto" or "" is the first available one
func Find(name string) (gifenc.Encoder, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range Encoders {
		if name == "" || name == "auto" {
			if e.Available() {
				return e, nil
			}
			continue
		}
		if e.Name() != name {
			continue
		}
		if !e.Available() {
			return nil, fmt.Errorf("%w: %s", gifenc.ErrUnavailable, name)
		}
		return e, nil
	}
	if name == "" || name == "auto" {
		return nil, gifenc.ErrUnavailable
	}
	return nil, fmt.Errorf("%w: %q (%s)", gifenc.ErrUnknown, name, strings.Join(Names(), ", "))
}
