package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/locrag"
)

// storeKey is the settings key holding the current store identifier.
const storeKey = "current_store"

// Ensure Registry implements locrag.StoreRegistry at compile time.
var _ locrag.StoreRegistry = (*Registry)(nil)

// Registry implements locrag.StoreRegistry as a row in the settings table.
type Registry struct {
	db  *DB
	now func() time.Time
}

// NewRegistry creates a new Registry.
func NewRegistry(db *DB) *Registry {
	return &Registry{db: db, now: time.Now}
}

// Load returns the persisted store identifier, or "" when none is set.
func (r *Registry) Load(ctx context.Context) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, storeKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	} else if err != nil {
		return "", locrag.IOError("load store", err)
	}
	return strings.TrimSpace(value), nil
}

// Save upserts the store identifier.
func (r *Registry) Save(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return locrag.Errorf(locrag.EINVALID, "store ID required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, storeKey, id, r.now().UTC().Format(time.RFC3339))
	if err != nil {
		return locrag.IOError("save store", err)
	}
	return nil
}

// Clear deletes the store identifier row.
func (r *Registry) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, storeKey); err != nil {
		return locrag.IOError("clear store", err)
	}
	return nil
}
