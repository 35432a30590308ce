package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/locrag"
)

// observe records one remote call outcome.
func observe(op string, begin time.Time, err error) {
	code := "ok"
	if err != nil {
		code = locrag.ErrorCode(err)
	}
	RemoteCallsTotal.WithLabelValues(op, code).Inc()
	RemoteCallDuration.WithLabelValues(op).Observe(time.Since(begin).Seconds())
}

// Ensure DocumentStore implements locrag.DocumentStore.
var _ locrag.DocumentStore = (*DocumentStore)(nil)

// DocumentStore wraps a locrag.DocumentStore and records call metrics.
type DocumentStore struct {
	next locrag.DocumentStore
}

// NewDocumentStore creates a new instrumented DocumentStore.
func NewDocumentStore(next locrag.DocumentStore) *DocumentStore {
	return &DocumentStore{next: next}
}

func (s *DocumentStore) CreateStore(ctx context.Context, displayName string) (id string, err error) {
	defer func(begin time.Time) { observe("create_store", begin, err) }(time.Now())
	return s.next.CreateStore(ctx, displayName)
}

func (s *DocumentStore) Ingest(ctx context.Context, storeID string, upload *locrag.Upload) (doc *locrag.Document, err error) {
	defer func(begin time.Time) { observe("ingest", begin, err) }(time.Now())
	return s.next.Ingest(ctx, storeID, upload)
}

func (s *DocumentStore) Query(ctx context.Context, storeID, question string) (result *locrag.RetrievalResult, err error) {
	defer func(begin time.Time) { observe("query", begin, err) }(time.Now())
	return s.next.Query(ctx, storeID, question)
}

func (s *DocumentStore) ListDocuments(ctx context.Context, storeID string) (docs []*locrag.Document, err error) {
	defer func(begin time.Time) { observe("list_documents", begin, err) }(time.Now())
	return s.next.ListDocuments(ctx, storeID)
}

func (s *DocumentStore) DeleteStore(ctx context.Context, storeID string) (err error) {
	defer func(begin time.Time) { observe("delete_store", begin, err) }(time.Now())
	return s.next.DeleteStore(ctx, storeID)
}

// Ensure Composer implements locrag.AnswerComposer.
var _ locrag.AnswerComposer = (*Composer)(nil)

// Composer wraps a locrag.AnswerComposer and records call metrics.
type Composer struct {
	next locrag.AnswerComposer
}

// NewComposer creates a new instrumented Composer.
func NewComposer(next locrag.AnswerComposer) *Composer {
	return &Composer{next: next}
}

func (c *Composer) Answer(ctx context.Context, question string, retrieval *locrag.RetrievalResult) (answer *locrag.ComposedAnswer, err error) {
	defer func(begin time.Time) { observe("answer", begin, err) }(time.Now())
	return c.next.Answer(ctx, question, retrieval)
}
