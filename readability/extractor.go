// Package readability extracts article content with go-readability. It is
// the last extractor tried for an ingested web page.
package readability

import (
	"strings"

	"github.com/fwojciec/locrag"
	"github.com/go-shiori/go-readability"
)

var _ locrag.Extractor = (*Extractor)(nil)

// Extractor keeps the article body of a page.
type Extractor struct {
	parser readability.Parser
}

// NewExtractor returns an Extractor with go-readability's default scoring.
func NewExtractor() *Extractor {
	return &Extractor{parser: readability.NewParser()}
}

// Extract returns the article title and body HTML. Pages readability cannot
// score into an article are EINVALID so the caller can report a bad URL
// rather than upload an empty document.
func (e *Extractor) Extract(rawHTML string) (*locrag.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, locrag.Errorf(locrag.EINVALID, "empty HTML input")
	}

	article, err := e.parser.Parse(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, &locrag.Error{Code: locrag.EINVALID, Op: "readability", Message: err.Error(), Err: err}
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, locrag.Errorf(locrag.EINVALID, "no readable content")
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = strings.TrimSpace(article.SiteName)
	}
	return &locrag.ExtractResult{Title: title, ContentHTML: article.Content}, nil
}
