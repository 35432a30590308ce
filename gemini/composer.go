package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/locrag"
	"google.golang.org/genai"
)

// DefaultTemperature is the sampling temperature used for answers.
const DefaultTemperature = 0.4

// Ensure Composer implements locrag.AnswerComposer at compile time.
var _ locrag.AnswerComposer = (*Composer)(nil)

// Composer implements locrag.AnswerComposer using Google Gemini.
type Composer struct {
	client      *genai.Client
	model       string
	temperature float32

	// Optional prompt budget. Zero disables trimming.
	tokens    locrag.TokenCounter
	maxTokens int
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithModel sets the generation model.
func WithModel(model string) ComposerOption {
	return func(c *Composer) {
		c.model = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ComposerOption {
	return func(c *Composer) {
		c.temperature = float32(t)
	}
}

// WithTokenBudget drops the lowest-ranked snippets until the prompt fits
// within max tokens as counted by counter.
func WithTokenBudget(counter locrag.TokenCounter, max int) ComposerOption {
	return func(c *Composer) {
		c.tokens = counter
		c.maxTokens = max
	}
}

// NewComposer creates a new Composer.
func NewComposer(client *genai.Client, opts ...ComposerOption) *Composer {
	c := &Composer{
		client:      client,
		model:       DefaultModel,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Answer generates an answer to question from the retrieved snippets.
func (c *Composer) Answer(ctx context.Context, question string, retrieval *locrag.RetrievalResult) (*locrag.ComposedAnswer, error) {
	if question == "" {
		return nil, locrag.Errorf(locrag.EINVALID, "question required")
	}

	var snippets []locrag.Snippet
	if retrieval != nil {
		snippets = retrieval.Snippets
	}
	snippets, err := c.fit(ctx, snippets, question)
	if err != nil {
		return nil, err
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: BuildUserPrompt(snippets, question)}},
		}},
		BuildConfig(c.temperature),
	)
	if err != nil {
		return nil, remoteError("answer", err)
	}
	if result == nil {
		return nil, locrag.Errorf(locrag.EINTERNAL, "gemini returned nil result")
	}

	sent := &locrag.RetrievalResult{Question: question, Snippets: snippets}
	return &locrag.ComposedAnswer{
		Text:    strings.TrimSpace(result.Text()),
		Sources: sent.Sources(),
	}, nil
}

// fit trims snippets from the end until the prompt is within budget.
func (c *Composer) fit(ctx context.Context, snippets []locrag.Snippet, question string) ([]locrag.Snippet, error) {
	if c.tokens == nil || c.maxTokens <= 0 {
		return snippets, nil
	}
	for len(snippets) > 0 {
		n, err := c.tokens.CountTokens(ctx, BuildUserPrompt(snippets, question))
		if err != nil {
			return nil, locrag.WrapError(locrag.EINTERNAL, "count tokens", err)
		}
		if n <= c.maxTokens {
			break
		}
		snippets = snippets[:len(snippets)-1]
	}
	return snippets, nil
}

// BuildConfig returns the GenerateContentConfig for answer generation.
func BuildConfig(temperature float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction("You are a helpful assistant answering questions about the user's documents. " +
			"Answer based only on the snippets provided. " +
			"If the snippets do not contain the answer, say that the documents do not cover it."),
		Temperature: &temperature,
	}
}

// BuildUserPrompt builds the user prompt containing the snippets and question.
func BuildUserPrompt(snippets []locrag.Snippet, question string) string {
	var sb strings.Builder
	sb.WriteString("<snippets>\n")
	for i := range snippets {
		s := &snippets[i]
		sb.WriteString("<snippet>\n")
		fmt.Fprintf(&sb, "<rank>%d</rank>\n", s.Rank)
		fmt.Fprintf(&sb, "<source>%s</source>\n", s.Source())
		fmt.Fprintf(&sb, "<content>%s</content>\n", s.Text)
		sb.WriteString("</snippet>\n")
	}
	sb.WriteString("</snippets>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
