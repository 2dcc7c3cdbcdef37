package goffmpeg

import (
	"bytes"
	"strings"
	"sync"
)

// LastLines is a writer that keeps the last n lines written, used to
// include stderr output in errors.
type LastLines struct {
	mu      sync.Mutex
	partial bytes.Buffer
	lines   []string
	next    int
	full    bool
}

// NewLastLines keeps at most n lines, n less than 1 is treated as 1
func NewLastLines(n int) *LastLines {
	if n < 1 {
		n = 1
	}
	return &LastLines{lines: make([]string, n)}
}

func (ll *LastLines) add(line string) {
	ll.lines[ll.next] = line
	ll.next = (ll.next + 1) % len(ll.lines)
	if ll.next == 0 {
		ll.full = true
	}
}

func (ll *LastLines) Write(p []byte) (int, error) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	ll.partial.Write(p)
	b := ll.partial.Bytes()
	pos := 0
	for {
		// ffmpeg uses \r for status lines
		i := bytes.IndexAny(b[pos:], "\n\r")
		if i < 0 {
			break
		}
		ll.add(string(b[pos : pos+i+1]))
		pos += i + 1
	}
	rest := append([]byte(nil), b[pos:]...)
	ll.partial.Reset()
	ll.partial.Write(rest)

	return len(p), nil
}

// Close adds any unterminated data as a last line
func (ll *LastLines) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	if ll.partial.Len() > 0 {
		ll.add(ll.partial.String())
		ll.partial.Reset()
	}
	return nil
}

func (ll *LastLines) String() string {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	var ls []string
	if ll.full {
		ls = append(ls, ll.lines[ll.next:]...)
	}
	ls = append(ls, ll.lines[:ll.next]...)
	return strings.Join(ls, "")
}
