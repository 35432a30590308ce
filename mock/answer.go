package mock

import (
	"context"

	"github.com/fwojciec/locrag"
)

var _ locrag.AnswerComposer = (*AnswerComposer)(nil)

// AnswerComposer is a mock implementation of locrag.AnswerComposer.
type AnswerComposer struct {
	AnswerFn func(ctx context.Context, question string, retrieval *locrag.RetrievalResult) (*locrag.ComposedAnswer, error)
}

func (c *AnswerComposer) Answer(ctx context.Context, question string, retrieval *locrag.RetrievalResult) (*locrag.ComposedAnswer, error) {
	return c.AnswerFn(ctx, question, retrieval)
}

var _ locrag.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of locrag.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
