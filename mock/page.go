package mock

import (
	"context"

	"github.com/fwojciec/locrag"
)

var (
	_ locrag.Fetcher   = (*Fetcher)(nil)
	_ locrag.Extractor = (*Extractor)(nil)
	_ locrag.Converter = (*Converter)(nil)
)

// Fetcher is a mock implementation of locrag.Fetcher. A nil CloseFn makes
// Close a no-op.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

// Extractor is a mock implementation of locrag.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*locrag.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*locrag.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of locrag.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
