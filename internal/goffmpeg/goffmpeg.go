// Package goffmpeg runs ffmpeg and ffprobe with data piped through stdin and stdout
package goffmpeg

import (
	"errors"
	"os/exec"
	"sort"
	"strings"
)

// FFmpegPath to ffmpeg binary. Will be used as name to cmd.Command.
var FFmpegPath = "ffmpeg"

// FFprobePath to ffprobe binary. Will be used as name to cmd.Command.
var FFprobePath = "ffprobe"

// ErrPipes is returned when more than one input or output is a pipe
var ErrPipes = errors.New("only one input reader and one output writer can be used")

// Printer is something that printfs (used for debug logging)
type Printer interface {
	Printf(format string, v ...interface{})
}

// NopPrinter is discard printfer
type NopPrinter struct{}

// Printf nop
func (NopPrinter) Printf(format string, v ...interface{}) {}

// Available reports if path, or name in PATH, is an executable
func Available(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}

// sortedArgs {b: "2", a: "1"} -> [argFn("a", "1")..., argFn("b", "2")...]
func sortedArgs(m map[string]string, argFn func(k, v string) []string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var s []string
	for _, k := range keys {
		s = append(s, argFn(k, m[k])...)
	}
	return s
}

// optionArg {"k": "v"} -> ["-k"+suffix, "v"]
func optionArg(suffix string) func(k, v string) []string {
	return func(k, v string) []string {
		if !strings.HasPrefix(k, "-") {
			k = "-" + k
		}
		return []string{k + suffix, v}
	}
}
