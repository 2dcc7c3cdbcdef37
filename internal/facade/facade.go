// Package facade is the public surface for creating images, drawing text and
// rendering countdown animations.
package facade

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Ping returns "pong"
func Ping() string { return "pong" }

// Add returns a + b
func Add(a, b float64) float64 { return a + b }

// ValueHolder is a sample stateful handle holding a number
type ValueHolder struct {
	mu    sync.Mutex
	value float64
}

func NewValueHolder(initial float64) *ValueHolder {
	return &ValueHolder{value: initial}
}

func (vh *ValueHolder) Value() float64 {
	vh.mu.Lock()
	defer vh.mu.Unlock()
	return vh.value
}

// Add delta and return the new value
func (vh *ValueHolder) Add(delta float64) float64 {
	vh.mu.Lock()
	defer vh.mu.Unlock()
	vh.value += delta
	return vh.value
}

// DebugPrinter adapts logrus to the Printf interfaces used for command debug logs
type DebugPrinter struct {
	Entry *logrus.Entry
}

func (p DebugPrinter) Printf(format string, v ...interface{}) {
	e := p.Entry
	if e == nil {
		e = logrus.NewEntry(logrus.StandardLogger())
	}
	e.Debugf(format, v...)
}
