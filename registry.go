package locrag

import (
	"context"
	"strings"
)

// StoreRegistry remembers which remote store is current so repeated runs
// reuse it instead of creating a new store each time.
type StoreRegistry interface {
	// Load returns the persisted store identifier.
	// Returns an empty string, not an error, when nothing is persisted.
	Load(ctx context.Context) (string, error)

	// Save overwrites the persisted identifier.
	Save(ctx context.Context, id string) error

	// Clear removes the persisted identifier.
	// Clearing an empty registry is not an error.
	Clear(ctx context.Context) error
}

// Ensure OverrideRegistry implements StoreRegistry at compile time.
var _ StoreRegistry = (*OverrideRegistry)(nil)

// OverrideRegistry pins the store identifier, typically from the STORE_NAME
// environment variable. The pin is fixed for the life of the process and is
// shared by every session, so Clear only reaches the wrapped registry: a
// reset session drops to NoStore, and the next session to open sees the
// pinned store again.
type OverrideRegistry struct {
	id   string
	next StoreRegistry
}

// NewOverrideRegistry returns a registry that loads id when it is not blank
// and next otherwise.
func NewOverrideRegistry(id string, next StoreRegistry) *OverrideRegistry {
	return &OverrideRegistry{id: strings.TrimSpace(id), next: next}
}

// Load returns the pinned identifier when set, otherwise the wrapped
// registry's value.
func (r *OverrideRegistry) Load(ctx context.Context) (string, error) {
	if r.id != "" {
		return r.id, nil
	}
	return r.next.Load(ctx)
}

// Save delegates to the wrapped registry.
func (r *OverrideRegistry) Save(ctx context.Context, id string) error {
	return r.next.Save(ctx, id)
}

// Clear delegates to the wrapped registry and leaves the pin in place.
func (r *OverrideRegistry) Clear(ctx context.Context) error {
	return r.next.Clear(ctx)
}
