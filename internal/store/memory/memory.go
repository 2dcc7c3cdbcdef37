// Package memory is an in-memory template store
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wader/ffcountdown/internal/store"
)

type memStore struct {
	mu        sync.RWMutex
	templates map[string]store.Template
}

// NewStore creates a new in-memory store.
func NewStore() store.Store {
	return &memStore{templates: map[string]store.Template{}}
}

func (s *memStore) Create(ctx context.Context, t *store.Template) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store.Prepare(t)
	s.templates[t.ID] = *t
	logrus.WithField("template_id", t.ID).Info("Template created successfully")
	return t.ID, nil
}

func (s *memStore) Get(ctx context.Context, id string) (*store.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		logrus.WithField("template_id", id).Warn("Template with specified ID not found")
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return &t, nil
}

func (s *memStore) List(ctx context.Context) ([]*store.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts := make([]*store.Template, 0, len(s.templates))
	for _, t := range s.templates {
		t := t
		ts = append(ts, &t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
	return ts, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	delete(s.templates, id)
	logrus.WithField("template_id", id).Info("Template deleted successfully")
	return nil
}
