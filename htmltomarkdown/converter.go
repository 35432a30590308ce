// Package htmltomarkdown turns extracted page content into Markdown
// documents for ingestion.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/locrag"
)

// Ensure Converter implements locrag.Converter at compile time.
var _ locrag.Converter = (*Converter)(nil)

// Converter converts HTML to CommonMark with tables.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	return &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Convert returns the Markdown for html. Input that converts to nothing
// (scripts, empty containers) is rejected so no blank document is uploaded.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", locrag.Errorf(locrag.EINVALID, "empty HTML input")
	}

	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", locrag.Errorf(locrag.EINVALID, "converting to markdown: %s", err)
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return "", locrag.Errorf(locrag.EINVALID, "page has no text content")
	}
	return md + "\n", nil
}
