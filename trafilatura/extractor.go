// Package trafilatura strips boilerplate from fetched pages before they are
// ingested.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/locrag"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements locrag.Extractor at compile time.
var _ locrag.Extractor = (*Extractor)(nil)

// Extractor keeps the main content of a page and its title.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor. Comment sections are dropped.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
		},
	}
}

// Extract returns the main content of rawHTML as clean HTML. The title
// falls back to the site name when the page has none.
func (e *Extractor) Extract(rawHTML string) (*locrag.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, locrag.Errorf(locrag.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, locrag.Errorf(locrag.EINVALID, "no readable content: %s", err)
	}

	var buf bytes.Buffer
	if result.ContentNode != nil {
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
	}

	title := strings.TrimSpace(result.Metadata.Title)
	if title == "" {
		title = strings.TrimSpace(result.Metadata.Sitename)
	}
	return &locrag.ExtractResult{
		Title:       title,
		ContentHTML: buf.String(),
	}, nil
}
