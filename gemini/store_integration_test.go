//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestDocumentStore_Integration_IngestAndQuery(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)

	store := gemini.NewDocumentStore(client)

	storeID, err := store.CreateStore(ctx, "locrag-integration-test")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.DeleteStore(context.Background(), storeID)
	})

	empty, err := store.Query(ctx, storeID, "What is the refund policy?")
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	doc, err := store.Ingest(ctx, storeID, &locrag.Upload{
		Filename: "notes.txt",
		Content:  []byte("Refund policy: customers may return any item within 30 days for a full refund."),
	})
	require.NoError(t, err)
	assert.Equal(t, locrag.DocumentStateActive, doc.State)

	result, err := store.Query(ctx, storeID, "What is the refund policy?")
	require.NoError(t, err)
	require.False(t, result.Empty())
	assert.Contains(t, result.Sources(), "notes.txt")

	answer, err := gemini.NewComposer(client).Answer(ctx, "What is the refund policy?", result)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "30")

	docs, err := store.ListDocuments(ctx, storeID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDocumentStore_Integration_MissingStore(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)

	store := gemini.NewDocumentStore(client)

	_, err = store.Query(ctx, "fileSearchStores/does-not-exist-locrag", "anything?")
	assert.Equal(t, locrag.EREMOTE, locrag.ErrorCode(err))

	_, err = store.Ingest(ctx, "fileSearchStores/does-not-exist-locrag", &locrag.Upload{Filename: "a.txt", Content: []byte("a")})
	assert.Equal(t, locrag.EREMOTE, locrag.ErrorCode(err))
}
