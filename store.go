package locrag

import "context"

// DefaultStoreDisplayName is the display name given to stores created by locrag.
const DefaultStoreDisplayName = "local-rag-store"

// Snippet is one ranked passage retrieved from a store.
type Snippet struct {
	Rank         int    `json:"rank"`
	Text         string `json:"text"`
	Title        string `json:"title"`
	DocumentName string `json:"documentName"`
	URI          string `json:"uri"`
}

// Source returns the identifier used to attribute the snippet.
func (s *Snippet) Source() string {
	switch {
	case s.Title != "":
		return s.Title
	case s.DocumentName != "":
		return s.DocumentName
	default:
		return s.URI
	}
}

// RetrievalResult holds the snippets a store returned for a question,
// in rank order. An empty result means no content matched and is not an error.
type RetrievalResult struct {
	Question string    `json:"question"`
	Snippets []Snippet `json:"snippets"`
}

// Empty reports whether no snippets were retrieved.
func (r *RetrievalResult) Empty() bool {
	return r == nil || len(r.Snippets) == 0
}

// Sources returns the distinct snippet sources in rank order.
func (r *RetrievalResult) Sources() []string {
	if r.Empty() {
		return nil
	}
	seen := make(map[string]bool, len(r.Snippets))
	sources := make([]string, 0, len(r.Snippets))
	for i := range r.Snippets {
		src := r.Snippets[i].Source()
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources
}

// DocumentStore is the remote store that indexes documents for retrieval.
// All methods fail with EREMOTE when the service call fails.
type DocumentStore interface {
	// CreateStore allocates a new, empty store and returns its identifier.
	CreateStore(ctx context.Context, displayName string) (string, error)

	// Ingest uploads one document into the store and waits until it is indexed.
	Ingest(ctx context.Context, storeID string, upload *Upload) (*Document, error)

	// Query runs a semantic search against the store.
	// A store without matching content returns an empty result, not an error.
	Query(ctx context.Context, storeID, question string) (*RetrievalResult, error)

	// ListDocuments returns the documents held by the store.
	ListDocuments(ctx context.Context, storeID string) ([]*Document, error)

	// DeleteStore permanently removes the store and its documents.
	DeleteStore(ctx context.Context, storeID string) error
}
