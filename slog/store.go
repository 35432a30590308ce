package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/locrag"
)

// Ensure LoggingDocumentStore implements locrag.DocumentStore.
var _ locrag.DocumentStore = (*LoggingDocumentStore)(nil)

// LoggingDocumentStore wraps a DocumentStore with logging of every remote call.
type LoggingDocumentStore struct {
	next   locrag.DocumentStore
	logger *slog.Logger
}

// NewLoggingDocumentStore creates a new LoggingDocumentStore.
func NewLoggingDocumentStore(next locrag.DocumentStore, logger *slog.Logger) *LoggingDocumentStore {
	return &LoggingDocumentStore{next: next, logger: logger}
}

// CreateStore delegates to the wrapped store and logs the operation.
func (s *LoggingDocumentStore) CreateStore(ctx context.Context, displayName string) (id string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("create store",
			"display_name", displayName,
			"store", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateStore(ctx, displayName)
}

// Ingest delegates to the wrapped store and logs the operation.
func (s *LoggingDocumentStore) Ingest(ctx context.Context, storeID string, upload *locrag.Upload) (doc *locrag.Document, err error) {
	defer func(begin time.Time) {
		var name string
		if doc != nil {
			name = doc.Name
		}
		s.logger.Info("ingest",
			"store", storeID,
			"filename", upload.Filename,
			"bytes", len(upload.Content),
			"document", name,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Ingest(ctx, storeID, upload)
}

// Query delegates to the wrapped store and logs the operation.
func (s *LoggingDocumentStore) Query(ctx context.Context, storeID, question string) (result *locrag.RetrievalResult, err error) {
	defer func(begin time.Time) {
		var n int
		if result != nil {
			n = len(result.Snippets)
		}
		s.logger.Info("query",
			"store", storeID,
			"snippets", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Query(ctx, storeID, question)
}

// ListDocuments delegates to the wrapped store and logs the operation.
func (s *LoggingDocumentStore) ListDocuments(ctx context.Context, storeID string) (docs []*locrag.Document, err error) {
	defer func(begin time.Time) {
		s.logger.Info("list documents",
			"store", storeID,
			"count", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ListDocuments(ctx, storeID)
}

// DeleteStore delegates to the wrapped store and logs the operation.
func (s *LoggingDocumentStore) DeleteStore(ctx context.Context, storeID string) (err error) {
	defer func(begin time.Time) {
		s.logger.Warn("delete store",
			"store", storeID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteStore(ctx, storeID)
}
