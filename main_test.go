package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func captureStdout(t *testing.T, fn func()) []byte {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "stdout")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	orig := os.Stdout
	os.Stdout = f
	defer func() { os.Stdout = orig }()
	fn()
	bs, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	return bs
}

func TestDrawTextOutput(t *testing.T) {
	defer func(text, out string, preview, probe bool) {
		*textFlag, *outFlag, *previewFlag, *probeFlag = text, out, preview, probe
	}(*textFlag, *outFlag, *previewFlag, *probeFlag)

	file := filepath.Join(t.TempDir(), "out.png")
	testCases := []struct {
		out     string
		preview bool
		stdout  bool
	}{
		{out: "", stdout: true},
		{out: "-", stdout: true},
		{out: "", preview: true, stdout: false},
		{out: file, stdout: false},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			*textFlag, *outFlag, *previewFlag, *probeFlag = "Hi", tC.out, tC.preview, false
			var bs []byte
			var err error
			stdout := captureStdout(t, func() { bs, err = drawText(context.Background()) })
			if err != nil {
				t.Fatal(err)
			}
			if _, err := png.Decode(bytes.NewReader(bs)); err != nil {
				t.Fatalf("expected png bytes: %v", err)
			}
			if tC.stdout != (len(stdout) > 0) {
				t.Fatalf("expected stdout written %v, got %d bytes", tC.stdout, len(stdout))
			}
			if tC.stdout && !bytes.Equal(stdout, bs) {
				t.Error("expected stdout to be the encoded png")
			}
		})
	}
	if _, err := os.Stat(file); err != nil {
		t.Errorf("expected %s to be saved: %v", file, err)
	}
}
