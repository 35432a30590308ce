package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/gocache"
	locraghttp "github.com/fwojciec/locrag/http"
	"github.com/fwojciec/locrag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory DocumentStore keyed on a single store id.
type fakeStore struct {
	mu    sync.Mutex
	id    string
	files []string
}

func (f *fakeStore) mock() *mock.DocumentStore {
	return &mock.DocumentStore{
		CreateStoreFn: func(context.Context, string) (string, error) { return f.id, nil },
		IngestFn: func(_ context.Context, storeID string, u *locrag.Upload) (*locrag.Document, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.files = append(f.files, u.Filename)
			return &locrag.Document{Name: storeID + "/documents/1", DisplayName: u.Filename, State: locrag.DocumentStateActive}, nil
		},
		QueryFn: func(_ context.Context, _ string, question string) (*locrag.RetrievalResult, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			result := &locrag.RetrievalResult{Question: question}
			for i, name := range f.files {
				result.Snippets = append(result.Snippets, locrag.Snippet{Rank: i + 1, Title: name, Text: "Refunds within 30 days."})
			}
			return result, nil
		},
		ListDocumentsFn: func(context.Context, string) ([]*locrag.Document, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			docs := make([]*locrag.Document, 0, len(f.files))
			for _, name := range f.files {
				docs = append(docs, &locrag.Document{DisplayName: name, State: locrag.DocumentStateActive})
			}
			return docs, nil
		},
	}
}

func composer() *mock.AnswerComposer {
	return &mock.AnswerComposer{
		AnswerFn: func(_ context.Context, _ string, r *locrag.RetrievalResult) (*locrag.ComposedAnswer, error) {
			return &locrag.ComposedAnswer{Text: "Refunds are accepted within 30 days.", Sources: r.Sources()}, nil
		},
	}
}

type testServer struct {
	*httptest.Server
	client   *http.Client
	registry *mock.StoreRegistry
}

type testOption func(*locraghttp.Server, *[]func(*locrag.Session))

func withServer(fn func(*locraghttp.Server)) testOption {
	return func(s *locraghttp.Server, _ *[]func(*locrag.Session)) { fn(s) }
}

func withSession(fn func(*locrag.Session)) testOption {
	return func(_ *locraghttp.Server, hooks *[]func(*locrag.Session)) { *hooks = append(*hooks, fn) }
}

func newTestServer(t *testing.T, store locrag.DocumentStore, opts ...testOption) *testServer {
	t.Helper()
	registry := mock.MemoryRegistry("")

	s := locraghttp.NewServer()
	var hooks []func(*locrag.Session)
	for _, opt := range opts {
		if opt != nil {
			opt(s, &hooks)
		}
	}
	s.Sessions = gocache.NewSessionStore(time.Hour, nil)
	s.NewSession = func() *locrag.Session {
		sess := locrag.NewSession(store, composer(), registry)
		for _, hook := range hooks {
			hook(sess)
		}
		return sess
	}

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testServer{Server: srv, client: &http.Client{Jar: jar}, registry: registry}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testServer) upload(t *testing.T, path, filename, content string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := ts.client.Post(ts.URL+path, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testServer) form(t *testing.T, path string, values url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := ts.client.PostForm(ts.URL+path, values)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestServer_API(t *testing.T) {
	t.Parallel()

	t.Run("new session has no store", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock())

		resp := ts.do(t, http.MethodGet, "/api/session", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[locraghttp.SessionResponse](t, resp)
		assert.Equal(t, "no store", body.State)
		assert.Empty(t, body.StoreID)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("create upload ask reset", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock())

		resp := ts.do(t, http.MethodPost, "/api/store", nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		created := decode[locraghttp.StoreResponse](t, resp)
		assert.Equal(t, "store-123", created.StoreID)
		assert.Equal(t, "store ready", created.State)
		persisted, _ := ts.registry.Load(context.Background())
		assert.Equal(t, "store-123", persisted)

		resp = ts.upload(t, "/api/documents", "notes.txt", "Refunds are accepted within 30 days.")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		doc := decode[locrag.Document](t, resp)
		assert.Equal(t, "notes.txt", doc.DisplayName)

		resp = ts.do(t, http.MethodPost, "/api/ask", locraghttp.AskRequest{Question: "What is the refund policy?"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		turn := decode[locrag.Turn](t, resp)
		assert.Equal(t, "What is the refund policy?", turn.Question)
		assert.Equal(t, []string{"notes.txt"}, turn.Answer.Sources)

		resp = ts.do(t, http.MethodGet, "/api/documents", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		docs := decode[locraghttp.DocumentsResponse](t, resp)
		require.Len(t, docs.Documents, 1)

		resp = ts.do(t, http.MethodDelete, "/api/store", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		reset := decode[locraghttp.StoreResponse](t, resp)
		assert.Equal(t, "no store", reset.State)
		persisted, _ = ts.registry.Load(context.Background())
		assert.Empty(t, persisted)

		resp = ts.do(t, http.MethodGet, "/api/session", nil)
		session := decode[locraghttp.SessionResponse](t, resp)
		assert.Len(t, session.Turns, 1)
	})

	t.Run("ask without store is a bad request", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock())

		resp := ts.do(t, http.MethodPost, "/api/ask", locraghttp.AskRequest{Question: "What is the refund policy?"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[locraghttp.ErrorResponse](t, resp)
		assert.Equal(t, locrag.ENOSTORE, body.Error.Code)
	})

	t.Run("stale store is a bad gateway and keeps the store", func(t *testing.T) {
		t.Parallel()
		store := (&fakeStore{id: "store-123"}).mock()
		store.QueryFn = func(context.Context, string, string) (*locrag.RetrievalResult, error) {
			return nil, locrag.Errorf(locrag.EREMOTE, "404 NOT_FOUND: store not found")
		}
		ts := newTestServer(t, store)
		ts.do(t, http.MethodPost, "/api/store", nil)

		resp := ts.do(t, http.MethodPost, "/api/ask", locraghttp.AskRequest{Question: "What is the refund policy?"})

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		body := decode[locraghttp.ErrorResponse](t, resp)
		assert.Equal(t, locrag.EREMOTE, body.Error.Code)
		assert.Equal(t, "query", body.Error.Op)
		assert.Contains(t, body.Error.Message, "store not found")

		session := decode[locraghttp.SessionResponse](t, ts.do(t, http.MethodGet, "/api/session", nil))
		assert.Equal(t, locrag.StateStoreReady.String(), session.State)
		assert.Equal(t, "store-123", session.StoreID)
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock())

		resp, err := ts.client.Post(ts.URL+"/api/ask", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects oversized uploads", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock(), withServer(func(s *locraghttp.Server) {
			s.MaxUploadBytes = 8
		}))
		ts.do(t, http.MethodPost, "/api/store", nil)

		resp := ts.upload(t, "/api/documents", "notes.txt", "this is more than eight bytes")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ingests a web page", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock(), withServer(func(s *locraghttp.Server) {
			s.Fetcher = &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
				return "<html><body><h1>Refund Policy</h1></body></html>", nil
			}}
			s.Extractor = &mock.Extractor{ExtractFn: func(string) (*locrag.ExtractResult, error) {
				return &locrag.ExtractResult{Title: "Refund Policy", ContentHTML: "<h1>Refund Policy</h1>"}, nil
			}}
			s.Converter = &mock.Converter{ConvertFn: func(string) (string, error) { return "# Refund Policy\n", nil }}
		}))
		ts.do(t, http.MethodPost, "/api/store", nil)

		resp := ts.do(t, http.MethodPost, "/api/url", locraghttp.URLRequest{URL: "https://shop.example.com/refunds"})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		doc := decode[locrag.Document](t, resp)
		assert.Equal(t, "refund-policy.md", doc.DisplayName)
	})

	t.Run("render without browser is unavailable", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock())
		ts.do(t, http.MethodPost, "/api/store", nil)

		resp := ts.do(t, http.MethodPost, "/api/url", locraghttp.URLRequest{URL: "https://shop.example.com/refunds", Render: true})

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decode[locraghttp.ErrorResponse](t, resp)
		assert.Equal(t, locrag.ECONFIG, body.Error.Code)
	})

	t.Run("writes posts with images", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock(), withSession(func(sess *locrag.Session) {
			sess.Posts = &mock.PostWriter{WritePostsFn: func(_ context.Context, _ string, req *locrag.PostRequest) (string, error) {
				return "Variant 1: " + req.Topic, nil
			}}
			sess.Images = &mock.ImageGenerator{GenerateImagesFn: func(context.Context, string, string, int) ([]*locrag.Image, error) {
				return []*locrag.Image{{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}}, nil
			}}
		}))
		ts.do(t, http.MethodPost, "/api/store", nil)

		resp := ts.do(t, http.MethodPost, "/api/posts", locraghttp.PostsRequest{
			PostRequest: locrag.PostRequest{Topic: "refunds"},
			Images:      true,
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[locraghttp.PostsResponse](t, resp)
		assert.Equal(t, "Variant 1: refunds", body.Text)
		require.Len(t, body.Images, 1)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, body.Images[0].Data)
		assert.Empty(t, body.ImageError)
	})

	t.Run("image failure does not fail posts", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock(), withSession(func(sess *locrag.Session) {
			sess.Posts = &mock.PostWriter{WritePostsFn: func(context.Context, string, *locrag.PostRequest) (string, error) {
				return "Variant 1", nil
			}}
		}))
		ts.do(t, http.MethodPost, "/api/store", nil)

		resp := ts.do(t, http.MethodPost, "/api/posts", locraghttp.PostsRequest{
			PostRequest: locrag.PostRequest{Topic: "refunds"},
			Images:      true,
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[locraghttp.PostsResponse](t, resp)
		assert.Equal(t, "Variant 1", body.Text)
		assert.Contains(t, body.ImageError, "image generation not configured")
	})

	t.Run("health check", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock())

		resp := ts.do(t, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestServer_Page(t *testing.T) {
	t.Parallel()

	t.Run("shows empty state", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock())

		resp, err := ts.client.Get(ts.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(b), "No store configured yet")
		assert.Contains(t, string(b), "Create new empty store")
	})

	t.Run("create store redirects with flash", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock())

		resp, page := ts.form(t, "/store", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "/", resp.Request.URL.Path)
		assert.Contains(t, page, "Created store store-123")
		assert.Contains(t, page, "<code>store-123</code>")

		_, again := ts.form(t, "/ask", url.Values{"question": {"What is the refund policy?"}})
		assert.NotContains(t, again, "Created store store-123")
		assert.Contains(t, again, "Refunds are accepted within 30 days.")
	})

	t.Run("errors are flashed", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock())

		_, page := ts.form(t, "/ask", url.Values{"question": {"What is the refund policy?"}})

		assert.Contains(t, page, "no store configured; create one first")
	})

	t.Run("renders generated posts", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock(), withSession(func(sess *locrag.Session) {
			sess.Posts = &mock.PostWriter{WritePostsFn: func(_ context.Context, _ string, req *locrag.PostRequest) (string, error) {
				return "Draft about " + req.Topic + " for " + string(req.Platform), nil
			}}
			sess.Images = &mock.ImageGenerator{GenerateImagesFn: func(context.Context, string, string, int) ([]*locrag.Image, error) {
				return []*locrag.Image{{MIMEType: "image/png", Data: []byte("png")}}, nil
			}}
		}))
		ts.form(t, "/store", nil)

		resp, page := ts.form(t, "/posts", url.Values{
			"topic":    {"refunds"},
			"platform": {"Instagram"},
			"tone":     {"informal"},
			"words":    {"60"},
			"images":   {"on"},
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, page, "Draft about refunds for Instagram")
		assert.Contains(t, page, "data:image/png;base64,cG5n")
	})

	t.Run("rejects invalid post length", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, (&fakeStore{id: "store-123"}).mock(), withSession(func(sess *locrag.Session) {
			sess.Posts = &mock.PostWriter{}
		}))
		ts.form(t, "/store", nil)

		resp, page := ts.form(t, "/posts", url.Values{"topic": {"refunds"}, "words": {"500"}})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, page, "post length must be between 40 and 200 words")
	})
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		locrag.EINVALID:  http.StatusBadRequest,
		locrag.ENOSTORE:  http.StatusBadRequest,
		locrag.EREMOTE:   http.StatusBadGateway,
		locrag.EIO:       http.StatusInternalServerError,
		locrag.EINTERNAL: http.StatusInternalServerError,
		"unknown":        http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, locraghttp.ErrorStatusCode(code), code)
	}
}
