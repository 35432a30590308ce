package gemini

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/locrag"
	"google.golang.org/genai"
)

// ContentHashKey is the custom metadata key holding the xxhash64 of an
// uploaded document's content.
const ContentHashKey = "content_hash"

// Ensure DocumentStore implements locrag.DocumentStore at compile time.
var _ locrag.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements locrag.DocumentStore using Gemini File Search.
type DocumentStore struct {
	client *genai.Client
	model  string
	topK   int32
	poller Poller
}

// StoreOption configures a DocumentStore.
type StoreOption func(*DocumentStore)

// WithQueryModel sets the model used for grounded retrieval calls.
func WithQueryModel(model string) StoreOption {
	return func(s *DocumentStore) {
		s.model = model
	}
}

// WithTopK limits the number of chunks File Search retrieves per query.
// Zero leaves the service default.
func WithTopK(k int) StoreOption {
	return func(s *DocumentStore) {
		s.topK = int32(k)
	}
}

// WithPoller sets how upload completion is polled.
func WithPoller(p Poller) StoreOption {
	return func(s *DocumentStore) {
		s.poller = p
	}
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(client *genai.Client, opts ...StoreOption) *DocumentStore {
	s := &DocumentStore{
		client: client,
		model:  DefaultModel,
		poller: Poller{Interval: DefaultPollInterval, Timeout: DefaultPollTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateStore creates an empty File Search store.
func (s *DocumentStore) CreateStore(ctx context.Context, displayName string) (string, error) {
	if displayName == "" {
		displayName = locrag.DefaultStoreDisplayName
	}
	store, err := s.client.FileSearchStores.Create(ctx, &genai.CreateFileSearchStoreConfig{
		DisplayName: displayName,
	})
	if err != nil {
		return "", remoteError("create store", err)
	}
	if store == nil || store.Name == "" {
		return "", locrag.Errorf(locrag.EREMOTE, "create store: service returned no store name")
	}
	return store.Name, nil
}

// Ingest uploads the document and blocks until the service reports it
// active.
func (s *DocumentStore) Ingest(ctx context.Context, storeID string, upload *locrag.Upload) (*locrag.Document, error) {
	if storeID == "" {
		return nil, locrag.Errorf(locrag.ENOSTORE, "store ID required")
	}
	if err := upload.Validate(); err != nil {
		return nil, err
	}

	op, err := s.client.FileSearchStores.UploadToFileSearchStore(ctx, bytes.NewReader(upload.Content), storeID,
		&genai.UploadToFileSearchStoreConfig{
			MIMEType:    upload.ContentType(),
			DisplayName: upload.Filename,
			CustomMetadata: []*genai.CustomMetadata{{
				Key:         ContentHashKey,
				StringValue: ContentHash(upload.Content),
			}},
		})
	if err != nil {
		return nil, remoteError("ingest", err)
	}

	err = s.poller.Poll(ctx, "upload of "+upload.Filename, func(ctx context.Context) (bool, error) {
		if op.Done {
			return true, nil
		}
		next, err := s.client.Operations.GetUploadToFileSearchStoreOperation(ctx, op, nil)
		if err != nil {
			return false, err
		}
		op = next
		return op.Done, nil
	})
	if err != nil {
		return nil, remoteError("ingest", err)
	}
	if len(op.Error) > 0 {
		return nil, &locrag.Error{Code: locrag.EREMOTE, Op: "ingest", Message: operationErrorMessage(op.Error)}
	}
	if op.Response == nil || op.Response.DocumentName == "" {
		return nil, &locrag.Error{Code: locrag.EREMOTE, Op: "ingest", Message: "upload completed without a document name"}
	}

	var doc *genai.Document
	err = s.poller.Poll(ctx, "indexing of "+upload.Filename, func(ctx context.Context) (bool, error) {
		d, err := s.client.FileSearchStores.Documents.Get(ctx, op.Response.DocumentName, nil)
		if err != nil {
			return false, err
		}
		doc = d
		switch d.State {
		case genai.DocumentStateActive:
			return true, nil
		case genai.DocumentStateFailed:
			return false, locrag.Errorf(locrag.EREMOTE, "document %s failed processing", upload.Filename)
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, remoteError("ingest", err)
	}

	return documentFromGenAI(doc), nil
}

// Query runs a File Search grounded generation and returns the retrieved
// chunks as snippets. Stores without documents yield an empty result.
func (s *DocumentStore) Query(ctx context.Context, storeID, question string) (*locrag.RetrievalResult, error) {
	if storeID == "" {
		return nil, locrag.Errorf(locrag.ENOSTORE, "store ID required")
	}
	if question == "" {
		return nil, locrag.Errorf(locrag.EINVALID, "question required")
	}

	store, err := s.client.FileSearchStores.Get(ctx, storeID, nil)
	if err != nil {
		return nil, remoteError("query", err)
	}

	result := &locrag.RetrievalResult{Question: question}
	if store.ActiveDocumentsCount == 0 && store.PendingDocumentsCount == 0 {
		return result, nil
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: BuildRetrievalPrompt(question)}},
		}},
		s.retrievalConfig(storeID),
	)
	if err != nil {
		return nil, remoteError("query", err)
	}
	if resp == nil {
		return nil, locrag.Errorf(locrag.EINTERNAL, "gemini returned nil result")
	}

	result.Snippets = SnippetsFromResponse(resp)
	return result, nil
}

// ListDocuments returns every document in the store.
func (s *DocumentStore) ListDocuments(ctx context.Context, storeID string) ([]*locrag.Document, error) {
	if storeID == "" {
		return nil, locrag.Errorf(locrag.ENOSTORE, "store ID required")
	}

	var docs []*locrag.Document
	for d, err := range s.client.FileSearchStores.Documents.All(ctx, storeID) {
		if err != nil {
			return nil, remoteError("list documents", err)
		}
		docs = append(docs, documentFromGenAI(d))
	}
	return docs, nil
}

// DeleteStore removes the store together with its documents.
func (s *DocumentStore) DeleteStore(ctx context.Context, storeID string) error {
	if storeID == "" {
		return locrag.Errorf(locrag.ENOSTORE, "store ID required")
	}
	force := true
	if err := s.client.FileSearchStores.Delete(ctx, storeID, &genai.DeleteFileSearchStoreConfig{Force: &force}); err != nil {
		return remoteError("delete store", err)
	}
	return nil
}

func (s *DocumentStore) retrievalConfig(storeID string) *genai.GenerateContentConfig {
	fileSearch := &genai.FileSearch{FileSearchStoreNames: []string{storeID}}
	if s.topK > 0 {
		topK := s.topK
		fileSearch.TopK = &topK
	}
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction("Use the file search tool to find passages relevant to the user's question. Reply with a short list of the relevant facts you found."),
		Temperature:       &temp,
		Tools:             []*genai.Tool{{FileSearch: fileSearch}},
	}
}

// BuildRetrievalPrompt builds the user prompt for a retrieval call.
func BuildRetrievalPrompt(question string) string {
	return "Search the documents for information that answers this question.\n\nQuestion: " + question
}

// SnippetsFromResponse extracts the retrieved contexts of the first
// candidate's grounding metadata, ranked in the order returned.
func SnippetsFromResponse(resp *genai.GenerateContentResponse) []locrag.Snippet {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var snippets []locrag.Snippet
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.RetrievedContext == nil {
			continue
		}
		rc := chunk.RetrievedContext
		snippets = append(snippets, locrag.Snippet{
			Rank:         len(snippets) + 1,
			Text:         rc.Text,
			Title:        rc.Title,
			DocumentName: rc.DocumentName,
			URI:          rc.URI,
		})
	}
	return snippets
}

// ContentHash returns the hex xxhash64 of content.
func ContentHash(content []byte) string {
	return strconv.FormatUint(xxhash.Sum64(content), 16)
}

func documentFromGenAI(d *genai.Document) *locrag.Document {
	if d == nil {
		return nil
	}
	return &locrag.Document{
		Name:        d.Name,
		DisplayName: d.DisplayName,
		State:       documentState(d.State),
		MIMEType:    d.MIMEType,
		SizeBytes:   d.SizeBytes,
		CreatedAt:   d.CreateTime,
	}
}

func documentState(s genai.DocumentState) locrag.DocumentState {
	switch s {
	case genai.DocumentStateActive:
		return locrag.DocumentStateActive
	case genai.DocumentStateFailed:
		return locrag.DocumentStateFailed
	default:
		return locrag.DocumentStatePending
	}
}

func operationErrorMessage(e map[string]any) string {
	msg, _ := e["message"].(string)
	if msg == "" {
		return fmt.Sprintf("upload failed: %v", e)
	}
	if code, ok := e["code"]; ok {
		return fmt.Sprintf("upload failed (code %v): %s", code, msg)
	}
	return "upload failed: " + msg
}
