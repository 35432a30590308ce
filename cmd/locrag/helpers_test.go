package main_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/locrag"
	main "github.com/fwojciec/locrag/cmd/locrag"
	"github.com/fwojciec/locrag/mock"
)

// testStore returns a DocumentStore that creates storeID and answers from
// whatever was ingested.
func testStore(storeID string) *mock.DocumentStore {
	var docs []*locrag.Document
	return &mock.DocumentStore{
		CreateStoreFn: func(context.Context, string) (string, error) { return storeID, nil },
		IngestFn: func(_ context.Context, id string, u *locrag.Upload) (*locrag.Document, error) {
			doc := &locrag.Document{Name: id + "/documents/" + u.Filename, DisplayName: u.Filename, State: locrag.DocumentStateActive}
			docs = append(docs, doc)
			return doc, nil
		},
		QueryFn: func(_ context.Context, _ string, question string) (*locrag.RetrievalResult, error) {
			result := &locrag.RetrievalResult{Question: question}
			for i, d := range docs {
				result.Snippets = append(result.Snippets, locrag.Snippet{Rank: i + 1, Title: d.DisplayName, Text: "Refunds within 30 days."})
			}
			return result, nil
		},
		ListDocumentsFn: func(context.Context, string) ([]*locrag.Document, error) { return docs, nil },
	}
}

func testComposer() *mock.AnswerComposer {
	return &mock.AnswerComposer{
		AnswerFn: func(_ context.Context, _ string, r *locrag.RetrievalResult) (*locrag.ComposedAnswer, error) {
			return &locrag.ComposedAnswer{Text: "Refunds are accepted within 30 days.", Sources: r.Sources()}, nil
		},
	}
}

type testEnv struct {
	deps     *main.Dependencies
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	registry *mock.StoreRegistry
}

// newTestEnv builds dependencies around an opened session whose registry
// initially holds storeID.
func newTestEnv(t *testing.T, store *mock.DocumentStore, storeID string) *testEnv {
	t.Helper()

	registry := mock.MemoryRegistry(storeID)
	session := locrag.NewSession(store, testComposer(), registry)
	if err := session.Open(context.Background()); err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		registry: registry,
	}
	env.deps = &main.Dependencies{
		Ctx:     context.Background(),
		Stdin:   strings.NewReader(""),
		Stdout:  env.stdout,
		Stderr:  env.stderr,
		Session: session,
		Store:   store,
	}
	return env
}
