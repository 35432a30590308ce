package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/locrag"
)

// Ensure LoggingComposer implements locrag.AnswerComposer.
var _ locrag.AnswerComposer = (*LoggingComposer)(nil)

// LoggingComposer wraps an AnswerComposer with logging.
type LoggingComposer struct {
	next   locrag.AnswerComposer
	logger *slog.Logger
}

// NewLoggingComposer creates a new LoggingComposer.
func NewLoggingComposer(next locrag.AnswerComposer, logger *slog.Logger) *LoggingComposer {
	return &LoggingComposer{next: next, logger: logger}
}

// Answer delegates to the wrapped composer and logs the operation.
func (c *LoggingComposer) Answer(ctx context.Context, question string, retrieval *locrag.RetrievalResult) (answer *locrag.ComposedAnswer, err error) {
	defer func(begin time.Time) {
		var chars, sources int
		if answer != nil {
			chars = len(answer.Text)
			sources = len(answer.Sources)
		}
		var snippets int
		if retrieval != nil {
			snippets = len(retrieval.Snippets)
		}
		c.logger.Info("answer",
			"snippets", snippets,
			"chars", chars,
			"sources", sources,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Answer(ctx, question, retrieval)
}

// Ensure LoggingPostWriter implements locrag.PostWriter.
var _ locrag.PostWriter = (*LoggingPostWriter)(nil)

// LoggingPostWriter wraps a PostWriter with logging.
type LoggingPostWriter struct {
	next   locrag.PostWriter
	logger *slog.Logger
}

// NewLoggingPostWriter creates a new LoggingPostWriter.
func NewLoggingPostWriter(next locrag.PostWriter, logger *slog.Logger) *LoggingPostWriter {
	return &LoggingPostWriter{next: next, logger: logger}
}

// WritePosts delegates to the wrapped writer and logs the operation.
func (w *LoggingPostWriter) WritePosts(ctx context.Context, storeID string, req *locrag.PostRequest) (text string, err error) {
	defer func(begin time.Time) {
		w.logger.Info("write posts",
			"store", storeID,
			"platform", req.Platform,
			"tone", req.Tone,
			"words", req.Words,
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WritePosts(ctx, storeID, req)
}
