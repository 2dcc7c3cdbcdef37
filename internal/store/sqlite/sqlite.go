// Package sqlite stores templates in a SQLite database
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wader/ffcountdown/internal/store"

	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore opens dataSourceName and creates the templates table if needed
func NewStore(ctx context.Context, dataSourceName string) (store.Store, io.Closer, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite allows one writer, also keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	const tableStmt = `
	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		options BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);`
	if _, err := db.ExecContext(ctx, tableStmt); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create templates table: %w", err)
	}

	return &sqliteStore{db: db}, db, nil
}

func (s *sqliteStore) Create(ctx context.Context, t *store.Template) (string, error) {
	store.Prepare(t)
	log := logrus.WithField("template_id", t.ID)

	options, err := json.Marshal(t.Options)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO templates (id, name, options, created_at) VALUES (?, ?, ?, ?)",
		t.ID, t.Name, options, t.CreatedAt.UnixNano(),
	)
	if err != nil {
		log.WithError(err).Error("Failed to create template")
		return "", err
	}
	log.Info("Template created successfully")
	return t.ID, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(sc scanner) (*store.Template, error) {
	var t store.Template
	var options []byte
	var createdAt int64
	if err := sc.Scan(&t.ID, &t.Name, &options, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &t.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template %s: %w", t.ID, err)
	}
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	return &t, nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*store.Template, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, options, created_at FROM templates WHERE id = ?", id)
	t, err := scanTemplate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			logrus.WithField("template_id", id).Warn("Template with specified ID not found")
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

func (s *sqliteStore) List(ctx context.Context) ([]*store.Template, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, options, created_at FROM templates ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ts []*store.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	logrus.WithField("template_id", id).Info("Template deleted successfully")
	return nil
}
