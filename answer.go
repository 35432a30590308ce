package locrag

import "context"

// ComposedAnswer is a generated answer paired with the sources it was grounded on.
type ComposedAnswer struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}

// AnswerComposer turns a question and its retrieved snippets into an answer.
type AnswerComposer interface {
	// Answer generates an answer from the question and retrieval.
	// An empty retrieval is still sent to the generator, which is the sole
	// judge of whether the context is sufficient.
	// Returns EREMOTE if generation fails.
	Answer(ctx context.Context, question string, retrieval *RetrievalResult) (*ComposedAnswer, error)
}

// TokenCounter counts the tokens a model would see for text. Composers use
// it to keep prompts within a budget.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
