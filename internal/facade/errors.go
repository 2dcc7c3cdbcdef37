package facade

import (
	"errors"
	"fmt"
)

// ErrClosed is returned for operations on a closed image
var ErrClosed = errors.New("image is closed")

// ErrOptions is returned for malformed or conflicting options
var ErrOptions = errors.New("invalid options")

var errMissingPath = fmt.Errorf("%w: outFilePath is required", ErrOptions)

// EngineError is a failure inside the imaging engine, invalid input included
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *EngineError) Unwrap() error { return e.Err }

// IOError is a failure reading or writing a file or remote object
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

func engineError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Op: op, Err: err}
}

func ioError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}
