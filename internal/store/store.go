// Package store persists countdown templates
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/wader/ffcountdown/internal/countdown"
)

// ErrNotFound is returned when a template does not exist
var ErrNotFound = errors.New("template not found")

// ErrInvalidID is returned for ids that are not ULIDs
var ErrInvalidID = errors.New("invalid template id")

// Template is named countdown options
type Template struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Options   countdown.Options `json:"options"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Store of templates. Create assigns ID and CreatedAt. List is ordered by
// creation as IDs are ULIDs.
type Store interface {
	Create(ctx context.Context, t *Template) (string, error)
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context) ([]*Template, error)
	Delete(ctx context.Context, id string) error
}

// NewID returns a new ULID string
func NewID() string {
	return ulid.Make().String()
}

// CheckID returns ErrInvalidID if id is not a ULID, ids are used as file names
func CheckID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Prepare assigns a new ID and creation time
func Prepare(t *Template) {
	t.ID = NewID()
	t.CreatedAt = time.Now().UTC()
}
