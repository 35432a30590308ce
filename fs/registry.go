// Package fs provides file-based persistence for locrag.
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/locrag"
)

// DefaultMarkerFile is the marker file name used when none is configured.
const DefaultMarkerFile = "store_name.txt"

// Ensure Registry implements locrag.StoreRegistry at compile time.
var _ locrag.StoreRegistry = (*Registry)(nil)

// Registry implements locrag.StoreRegistry with a single marker file holding
// the store identifier.
type Registry struct {
	path string
}

// NewRegistry creates a Registry backed by the file at path.
func NewRegistry(path string) *Registry {
	if path == "" {
		path = DefaultMarkerFile
	}
	return &Registry{path: path}
}

// Path returns the marker file path.
func (r *Registry) Path() string {
	return r.path
}

// Load returns the trimmed marker content. A missing or blank marker is
// reported as an empty identifier.
func (r *Registry) Load(ctx context.Context) (string, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", locrag.IOError("load store", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Save replaces the marker content. The file is written to a temporary
// file in the same directory and renamed over the marker.
func (r *Registry) Save(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return locrag.Errorf(locrag.EINVALID, "store ID required")
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return locrag.IOError("save store", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return locrag.IOError("save store", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(id + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return locrag.IOError("save store", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return locrag.IOError("save store", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return locrag.IOError("save store", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return locrag.IOError("save store", err)
	}
	return nil
}

// Clear removes the marker. A missing marker is not an error.
func (r *Registry) Clear(ctx context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return locrag.IOError("clear store", err)
	}
	return nil
}
