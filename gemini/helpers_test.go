package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeAPI is an httptest server standing in for the Gemini REST API.
// Handlers are keyed by "METHOD path".
type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

func newFakeAPI(t *testing.T) (*fakeAPI, *genai.Client) {
	t.Helper()

	api := &fakeAPI{t: t, handlers: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return api, client
}

func (a *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[pattern] = h
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	a.mu.Lock()
	a.requests = append(a.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
	h, ok := a.handlers[r.Method+" "+r.URL.Path]
	a.mu.Unlock()

	if !ok {
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", "no handler for "+r.Method+" "+r.URL.Path)
		return
	}
	h(w, r)
}

func (a *fakeAPI) calls(method, path string) []recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []recordedRequest
	for _, r := range a.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message, "status": status},
	})
}

// textResponse returns a generateContent response body with one candidate.
func textResponse(text string, chunks ...map[string]any) map[string]any {
	candidate := map[string]any{
		"content": map[string]any{
			"role":  "model",
			"parts": []any{map[string]any{"text": text}},
		},
		"finishReason": "STOP",
	}
	if len(chunks) > 0 {
		gc := make([]any, 0, len(chunks))
		for _, c := range chunks {
			gc = append(gc, map[string]any{"retrievedContext": c})
		}
		candidate["groundingMetadata"] = map[string]any{"groundingChunks": gc}
	}
	return map[string]any{"candidates": []any{candidate}}
}

// promptText returns the first text part of a generateContent request body.
func promptText(t *testing.T, body map[string]any) string {
	t.Helper()

	contents, ok := body["contents"].([]any)
	require.True(t, ok, "contents missing")
	require.NotEmpty(t, contents)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.NotEmpty(t, parts)
	return parts[0].(map[string]any)["text"].(string)
}
