// Package all opens a template store by kind
package all

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/wader/ffcountdown/internal/store"
	"github.com/wader/ffcountdown/internal/store/filesystem"
	"github.com/wader/ffcountdown/internal/store/memory"
	"github.com/wader/ffcountdown/internal/store/sqlite"
)

const (
	Memory     = "memory"
	Filesystem = "filesystem"
	SQLite     = "sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open store of kind, path is used by filesystem and dsn by sqlite.
// Empty kind is memory.
func Open(ctx context.Context, kind, path, dsn string) (store.Store, io.Closer, error) {
	fields := logrus.Fields{"storageType": kind}
	var s store.Store
	var c io.Closer = nopCloser{}
	var err error

	switch kind {
	case Filesystem:
		if path == "" {
			path = "./data"
		}
		fields["basePath"] = path
		s, err = filesystem.NewStore(path)
	case SQLite:
		if dsn == "" {
			dsn = "ffcountdown.db"
		}
		fields["dataSourceName"] = dsn
		s, c, err = sqlite.NewStore(ctx, dsn)
	case Memory, "":
		fields["storageType"] = Memory
		s = memory.NewStore()
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", kind)
	}
	if err != nil {
		return nil, nil, err
	}

	logrus.WithFields(fields).Info("Use storage")
	return s, c, nil
}
