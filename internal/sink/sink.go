// Package sink writes encoded files to a local path or an S3 object
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrTarget is returned for malformed targets
var ErrTarget = errors.New("invalid target")

// Writer buffers or streams data to a target. Close commits the write,
// Abort discards it. Calling Abort after Close is a no-op.
type Writer interface {
	Write(p []byte) (int, error)
	Close() error
	Abort() error
	Target() string
}

// S3PutAPI is the part of the S3 client used by the sink
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Opener opens writers, S3 is created from the default AWS config on first use if nil
type Opener struct {
	S3 S3PutAPI

	mu sync.Mutex
}

// DefaultOpener is used by Open
var DefaultOpener = &Opener{}

// Open target using DefaultOpener
func Open(ctx context.Context, target string) (Writer, error) {
	return DefaultOpener.Open(ctx, target)
}

// IsS3 reports if target is a s3:// URL
func IsS3(target string) bool {
	return strings.HasPrefix(target, "s3://")
}

// ParseS3 splits s3://bucket/key
func ParseS3(target string) (bucket string, key string, err error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %q", ErrTarget, target)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %q should be s3://bucket/key", ErrTarget, target)
	}
	return u.Host, key, nil
}

// EnsureDir creates dir and parents if needed, existing dirs are fine
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func (o *Opener) s3Client(ctx context.Context) (S3PutAPI, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.S3 != nil {
		return o.S3, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	o.S3 = s3.NewFromConfig(cfg)
	return o.S3, nil
}

// Open target for writing
func (o *Opener) Open(ctx context.Context, target string) (Writer, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: empty", ErrTarget)
	}
	if IsS3(target) {
		bucket, key, err := ParseS3(target)
		if err != nil {
			return nil, err
		}
		c, err := o.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		return &s3Writer{ctx: ctx, client: c, bucket: bucket, key: key, target: target}, nil
	}
	return openFile(target)
}

type fileWriter struct {
	f      *os.File
	path   string
	closed bool
}

func openFile(p string) (*fileWriter, error) {
	if err := EnsureDir(filepath.Dir(p)); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &fileWriter{f: f, path: p}, nil
}

func (w *fileWriter) Target() string              { return w.path }
func (w *fileWriter) Write(p []byte) (int, error) { return w.f.Write(p) }

func (w *fileWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.f.Close(); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	// CreateTemp uses 0600
	if err := os.Chmod(w.f.Name(), 0644); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	if err := os.Rename(w.f.Name(), w.path); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	return nil
}

func (w *fileWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.f.Close()
	return os.Remove(w.f.Name())
}

type s3Writer struct {
	ctx    context.Context
	client S3PutAPI
	bucket string
	key    string
	target string
	buf    bytes.Buffer
	closed bool
}

func (w *s3Writer) Target() string              { return w.target }
func (w *s3Writer) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	in := &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buf.Bytes()),
	}
	if ct := mime.TypeByExtension(path.Ext(w.key)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := w.client.PutObject(w.ctx, in); err != nil {
		return fmt.Errorf("failed to upload %s: %w", w.target, err)
	}
	return nil
}

func (w *s3Writer) Abort() error {
	w.closed = true
	w.buf.Reset()
	return nil
}
