package mock

import (
	"context"
	"sync"

	"github.com/fwojciec/locrag"
)

var _ locrag.StoreRegistry = (*StoreRegistry)(nil)

// StoreRegistry is a mock implementation of locrag.StoreRegistry.
type StoreRegistry struct {
	LoadFn  func(ctx context.Context) (string, error)
	SaveFn  func(ctx context.Context, id string) error
	ClearFn func(ctx context.Context) error
}

func (r *StoreRegistry) Load(ctx context.Context) (string, error) {
	return r.LoadFn(ctx)
}

func (r *StoreRegistry) Save(ctx context.Context, id string) error {
	return r.SaveFn(ctx, id)
}

func (r *StoreRegistry) Clear(ctx context.Context) error {
	return r.ClearFn(ctx)
}

// MemoryRegistry returns a StoreRegistry backed by a variable, for tests
// that only need working persistence. It is safe for concurrent use.
func MemoryRegistry(initial string) *StoreRegistry {
	var mu sync.Mutex
	id := initial
	return &StoreRegistry{
		LoadFn: func(context.Context) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			return id, nil
		},
		SaveFn: func(_ context.Context, v string) error {
			mu.Lock()
			defer mu.Unlock()
			id = v
			return nil
		},
		ClearFn: func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			id = ""
			return nil
		},
	}
}
