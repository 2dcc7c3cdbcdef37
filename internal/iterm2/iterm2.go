// Package iterm2 writes inline images using the iTerm2 escape codes
package iterm2

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// IsCompatible reports if f is a terminal running in iTerm2
// TODO: query terminal instead of trusting TERM_PROGRAM
func IsCompatible(f *os.File) bool {
	return os.Getenv("TERM_PROGRAM") == "iTerm.app" && term.IsTerminal(int(f.Fd()))
}

// Columns is the width of terminal f in cells, 0 if unknown
func Columns(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// FileOptions for an inline file. Width is in cells, 0 is auto.
type FileOptions struct {
	Name  string
	Width int
}

// File writes data inline, any format the terminal can show, animated GIF included
func File(w io.Writer, data []byte, o FileOptions) error {
	args := "inline=1;size=" + strconv.Itoa(len(data))
	if o.Name != "" {
		args += ";name=" + base64.StdEncoding.EncodeToString([]byte(o.Name))
	}
	if o.Width > 0 {
		args += ";width=" + strconv.Itoa(o.Width)
	}
	if _, err := fmt.Fprintf(w, "\x1b]1337;File=%s:", args); err != nil {
		return err
	}
	enc := base64.NewEncoder(base64.StdEncoding, w)
	if _, err := enc.Write(data); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\x07")); err != nil {
		return err
	}
	return nil
}

// Image writes m inline as PNG
func Image(w io.Writer, m image.Image) error {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, m); err != nil {
		return err
	}
	return File(w, buf.Bytes(), FileOptions{})
}
