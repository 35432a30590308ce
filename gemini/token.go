package gemini

import (
	"context"
	"sync"

	"github.com/fwojciec/locrag"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ locrag.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts prompt tokens locally with the model's tokenizer, so
// trimming a prompt to budget costs no API calls. It is safe for concurrent
// use.
type TokenCounter struct {
	mu  sync.Mutex
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter loads the tokenizer for model. Models without a local
// tokenizer are reported as ECONFIG.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, &locrag.Error{Code: locrag.ECONFIG, Op: "load tokenizer", Message: err.Error(), Err: err}
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens returns the number of tokens in text sent as a user turn.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	tc.mu.Lock()
	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	tc.mu.Unlock()
	if err != nil {
		return 0, locrag.WrapError(locrag.EINTERNAL, "count tokens", err)
	}
	return int(result.TotalTokens), nil
}
