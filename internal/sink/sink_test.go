package sink_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/wader/ffcountdown/internal/sink"
)

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "output", "nested", "a.gif")

	w, err := sink.Open(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("GIF89a")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("expected no file before close, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	bs, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(bs) != "GIF89a" {
		t.Errorf("expected GIF89a, got %q", bs)
	}
	if err := w.Abort(); err != nil {
		t.Errorf("expected abort after close to be a no-op, got %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Errorf("expected file to remain after abort, got %v", err)
	}
}

func TestFileWriterAbort(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.gif")
	w, err := sink.Open(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("partial"))
	if err := w.Abort(); err != nil {
		t.Fatal(err)
	}
	des, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(des) != 0 {
		t.Errorf("expected empty dir, got %d entries", len(des))
	}
}

func TestEnsureDirRepeated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	for i := 0; i < 3; i++ {
		if err := sink.EnsureDir(dir); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("expected dir, got %v", err)
	}
	if err := sink.EnsureDir(""); err != nil {
		t.Error(err)
	}
}

func TestParseS3(t *testing.T) {
	testCases := []struct {
		target string
		bucket string
		key    string
		err    bool
	}{
		{target: "s3://bucket/a.gif", bucket: "bucket", key: "a.gif"},
		{target: "s3://bucket/dir/a.gif", bucket: "bucket", key: "dir/a.gif"},
		{target: "s3://bucket", err: true},
		{target: "s3://bucket/", err: true},
		{target: "s3:///a.gif", err: true},
		{target: "file:///a.gif", err: true},
	}
	for i, tC := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			bucket, key, err := sink.ParseS3(tC.target)
			if tC.err != errors.Is(err, sink.ErrTarget) {
				t.Fatalf("%s: expected err %v, got %v", tC.target, tC.err, err)
			}
			if bucket != tC.bucket || key != tC.key {
				t.Errorf("%s: expected %s %s, got %s %s", tC.target, tC.bucket, tC.key, bucket, key)
			}
		})
	}
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	bs, err := io.ReadAll(in.Body)
	f.body = bs
	return &s3.PutObjectOutput{}, err
}

func TestS3Writer(t *testing.T) {
	fake := &fakeS3{}
	o := &sink.Opener{S3: fake}
	w, err := o.Open(context.Background(), "s3://bucket/countdowns/a.gif")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("GIF89a"))
	if fake.in != nil {
		t.Error("expected no upload before close")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(fake.in.Bucket) != "bucket" || aws.ToString(fake.in.Key) != "countdowns/a.gif" {
		t.Errorf("unexpected input %#v", fake.in)
	}
	if aws.ToString(fake.in.ContentType) != "image/gif" {
		t.Errorf("expected image/gif, got %s", aws.ToString(fake.in.ContentType))
	}
	if string(fake.body) != "GIF89a" {
		t.Errorf("expected GIF89a, got %q", fake.body)
	}
}
