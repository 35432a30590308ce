// Package goquery extracts the main content of pages built with known
// documentation generators, using each generator's own content container.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/locrag"
)

// Site identifies a documentation generator.
type Site string

// Recognized generators.
const (
	SiteUnknown    Site = ""
	SiteDocusaurus Site = "docusaurus"
	SiteMkDocs     Site = "mkdocs"
	SiteSphinx     Site = "sphinx"
	SiteVitePress  Site = "vitepress"
	SiteVuePress   Site = "vuepress"
	SiteGitBook    Site = "gitbook"
	SiteNextra     Site = "nextra"
)

// contentSelectors lists, per generator, where the page body lives. The
// first selector that matches wins.
var contentSelectors = map[Site][]string{
	SiteDocusaurus: {".theme-doc-markdown", "article"},
	SiteMkDocs:     {"article.md-content__inner", ".md-content"},
	SiteSphinx:     {"div[role='main']", ".rst-content", ".document .body"},
	SiteVitePress:  {".vp-doc", "#VPContent main"},
	SiteVuePress:   {".theme-default-content"},
	SiteGitBook:    {"main"},
	SiteNextra:     {"article main", "article"},
}

// chrome is removed from the selected content before it is returned.
const chrome = "nav, aside, footer, script, style, noscript, " +
	".theme-edit-this-page, .pagination-nav, .hash-link, " +
	".md-source-file, .headerlink, .VPDocFooter, .edit-link"

// Ensure Extractor implements locrag.Extractor at compile time.
var _ locrag.Extractor = (*Extractor)(nil)

// Extractor implements locrag.Extractor for documentation sites. Pages from
// unrecognized generators are rejected with EINVALID so a general-purpose
// extractor can take over.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the generator's content container without navigation.
func (e *Extractor) Extract(rawHTML string) (*locrag.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, locrag.Errorf(locrag.EINVALID, "empty HTML input")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, locrag.Errorf(locrag.EINVALID, "failed to parse HTML: %v", err)
	}

	site := Detect(doc)
	if site == SiteUnknown {
		return nil, locrag.Errorf(locrag.EINVALID, "unrecognized page layout")
	}

	var content *goquery.Selection
	for _, sel := range contentSelectors[site] {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			content = s
			break
		}
	}
	if content == nil {
		return nil, locrag.Errorf(locrag.EINVALID, "no %s content container", site)
	}

	content.Find(chrome).Remove()
	if strings.TrimSpace(content.Text()) == "" {
		return nil, locrag.Errorf(locrag.EINVALID, "no readable content")
	}
	html, err := content.Html()
	if err != nil {
		return nil, locrag.Errorf(locrag.EINVALID, "failed to render content: %v", err)
	}

	return &locrag.ExtractResult{
		Title:       title(doc, content),
		ContentHTML: html,
	}, nil
}

// title prefers the content's first heading over the document title.
func title(doc *goquery.Document, content *goquery.Selection) string {
	if h := strings.TrimSpace(content.Find("h1").First().Text()); h != "" {
		return h
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Detect identifies the generator that produced doc, checking the meta
// generator tag before structural markers.
func Detect(doc *goquery.Document) Site {
	if site := detectFromGenerator(doc); site != SiteUnknown {
		return site
	}

	has := func(selector string) bool {
		return doc.Find(selector).Length() > 0
	}

	switch {
	case has("#__docusaurus_skipToContent_fallback"), has(".theme-doc-sidebar-container"):
		return SiteDocusaurus
	case has("[data-md-component]"), has("[data-md-color-scheme]"), has(".md-nav--primary"):
		return SiteMkDocs
	case has(".wy-nav-side"), has(".sphinxsidebar"), has(".toctree-wrapper"):
		return SiteSphinx
	// VitePress before VuePress; both use Vue markers.
	case has("#VPContent"), has(".VPDoc"):
		return SiteVitePress
	case has(".theme-default-content"), has(".vuepress-navbar"):
		return SiteVuePress
	case has("[data-testid='space.sidebar']"), hasGitBookClasses(doc):
		return SiteGitBook
	case has(".nextra-sidebar"), has(".nextra-navbar"), has(".nextra-toc"):
		return SiteNextra
	}
	return SiteUnknown
}

func detectFromGenerator(doc *goquery.Document) Site {
	generator, _ := doc.Find("meta[name='generator']").First().Attr("content")
	generator = strings.ToLower(generator)
	if generator == "" {
		return SiteUnknown
	}

	for _, site := range []Site{SiteSphinx, SiteGitBook, SiteDocusaurus, SiteMkDocs, SiteVitePress, SiteVuePress, SiteNextra} {
		if strings.Contains(generator, string(site)) {
			return site
		}
	}
	return SiteUnknown
}

// hasGitBookClasses reports whether the html element carries at least two
// of GitBook's theme classes.
func hasGitBookClasses(doc *goquery.Document) bool {
	class, _ := doc.Find("html").First().Attr("class")
	count := 0
	for _, c := range []string{"circular-corners", "theme-clean", "tint"} {
		if strings.Contains(class, c) {
			count++
		}
	}
	return count >= 2
}
