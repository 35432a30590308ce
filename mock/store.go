package mock

import (
	"context"

	"github.com/fwojciec/locrag"
)

var _ locrag.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of locrag.DocumentStore.
type DocumentStore struct {
	CreateStoreFn   func(ctx context.Context, displayName string) (string, error)
	IngestFn        func(ctx context.Context, storeID string, upload *locrag.Upload) (*locrag.Document, error)
	QueryFn         func(ctx context.Context, storeID, question string) (*locrag.RetrievalResult, error)
	ListDocumentsFn func(ctx context.Context, storeID string) ([]*locrag.Document, error)
	DeleteStoreFn   func(ctx context.Context, storeID string) error
}

func (s *DocumentStore) CreateStore(ctx context.Context, displayName string) (string, error) {
	return s.CreateStoreFn(ctx, displayName)
}

func (s *DocumentStore) Ingest(ctx context.Context, storeID string, upload *locrag.Upload) (*locrag.Document, error) {
	return s.IngestFn(ctx, storeID, upload)
}

func (s *DocumentStore) Query(ctx context.Context, storeID, question string) (*locrag.RetrievalResult, error) {
	return s.QueryFn(ctx, storeID, question)
}

func (s *DocumentStore) ListDocuments(ctx context.Context, storeID string) ([]*locrag.Document, error) {
	return s.ListDocumentsFn(ctx, storeID)
}

func (s *DocumentStore) DeleteStore(ctx context.Context, storeID string) error {
	return s.DeleteStoreFn(ctx, storeID)
}
