// Package filesystem stores templates as one JSON file per id
package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wader/ffcountdown/internal/sink"
	"github.com/wader/ffcountdown/internal/store"
)

type fsStore struct {
	basePath string
}

// NewStore creates a filesystem store, basePath is created if needed
func NewStore(basePath string) (store.Store, error) {
	if err := sink.EnsureDir(basePath); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

func (s *fsStore) path(id string) (string, error) {
	if err := store.CheckID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, id+".json"), nil
}

func (s *fsStore) Create(ctx context.Context, t *store.Template) (string, error) {
	store.Prepare(t)
	p, err := s.path(t.ID)
	if err != nil {
		return "", err
	}
	log := logrus.WithFields(logrus.Fields{
		"template_id": t.ID,
		"file_path":   p,
	})

	bs, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}
	w, err := sink.Open(ctx, p)
	if err != nil {
		log.WithError(err).Error("Failed to create template")
		return "", err
	}
	if _, err := w.Write(bs); err != nil {
		w.Abort()
		log.WithError(err).Error("Failed to create template")
		return "", err
	}
	if err := w.Close(); err != nil {
		log.WithError(err).Error("Failed to create template")
		return "", err
	}

	log.Info("Template created successfully")
	return t.ID, nil
}

func (s *fsStore) Get(ctx context.Context, id string) (*store.Template, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	bs, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.WithField("template_id", id).Warn("Template with specified ID not found")
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return nil, err
	}
	var t store.Template
	if err := json.Unmarshal(bs, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template %s: %w", id, err)
	}
	return &t, nil
}

func (s *fsStore) List(ctx context.Context) ([]*store.Template, error) {
	des, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}
	var ts []*store.Template
	for _, de := range des {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		t, err := s.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			logrus.WithError(err).WithField("file", name).Warn("Skipping unreadable template")
			continue
		}
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
	return ts, nil
}

func (s *fsStore) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return err
	}
	logrus.WithField("template_id", id).Info("Template deleted successfully")
	return nil
}
