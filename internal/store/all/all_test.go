package all_test

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/wader/ffcountdown/internal/countdown"
	"github.com/wader/ffcountdown/internal/store"
	"github.com/wader/ffcountdown/internal/store/all"
)

func testStore(t *testing.T, s store.Store) {
	ctx := context.Background()

	ts, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 0 {
		t.Fatalf("expected empty store, got %d", len(ts))
	}

	var ids []string
	for i := 0; i < 3; i++ {
		tmpl := &store.Template{
			Name: "t" + strconv.Itoa(i),
			Options: countdown.Options{
				Width: 100, Height: 50, BgColor: "#616161",
				Labels: map[string]countdown.Label{
					"title": {Text: "Ends in", Position: &countdown.Position{X: 1, Y: 2}},
				},
			},
		}
		id, err := s.Create(ctx, tmpl)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.CheckID(id); err != nil {
			t.Fatal(err)
		}
		if tmpl.ID != id || tmpl.CreatedAt.IsZero() {
			t.Errorf("expected id and created at to be set, got %#v", tmpl)
		}
		ids = append(ids, id)
	}

	got, err := s.Get(ctx, ids[1])
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "t1" || got.Options.Width != 100 || got.Options.Labels["title"].Position.Y != 2 {
		t.Errorf("unexpected template %#v", got)
	}

	ts, err = s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(ts))
	}
	for i := range ids {
		if ts[i].ID != ids[i] {
			t.Errorf("%d: expected %s, got %s", i, ids[i], ts[i].ID)
		}
	}

	if err := s.Delete(ctx, ids[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, ids[0]); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, ids[0]); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, "../../etc/passwd"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for bad id, got %v", err)
	}
}

func TestStores(t *testing.T) {
	testCases := []struct {
		kind string
	}{
		{kind: all.Memory},
		{kind: all.Filesystem},
		{kind: all.SQLite},
	}
	for _, tC := range testCases {
		t.Run(tC.kind, func(t *testing.T) {
			dir := t.TempDir()
			s, c, err := all.Open(context.Background(), tC.kind, filepath.Join(dir, "templates"), filepath.Join(dir, "test.db"))
			if err != nil {
				t.Fatal(err)
			}
			defer c.Close()
			testStore(t, s)
		})
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, _, err := all.Open(context.Background(), "nope", "", ""); err == nil {
		t.Error("expected error")
	}
}
