package locrag

import (
	"context"
	"net"
	"net/netip"
	"net/url"
	"path"
	"strings"
	"unicode"
)

// Fetcher downloads the HTML of a web page. Browser-backed implementations
// return the DOM after scripts ran.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases browsers or connections held by the fetcher.
	Close() error
}

// Converter turns extracted HTML into Markdown.
type Converter interface {
	Convert(html string) (string, error)
}

// ExtractResult is the readable part of a page.
type ExtractResult struct {
	Title string

	// ContentHTML is the main content with navigation, footers and ads removed.
	ContentHTML string
}

// Extractor finds the main content of an HTML page.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Extractors tries each extractor in order and returns the first result
// with readable content. It is useful when a precise extractor only
// understands some pages.
type Extractors []Extractor

// Extract returns the first non-empty extraction. When every extractor
// fails, the first failure is returned.
func (es Extractors) Extract(html string) (*ExtractResult, error) {
	var firstErr error
	for _, e := range es {
		result, err := e.Extract(html)
		if err == nil && result != nil && strings.TrimSpace(result.ContentHTML) != "" {
			return result, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = Errorf(EINVALID, "no readable content")
	}
	return nil, firstErr
}

// WebPage is a fetched page converted to Markdown, ready for ingestion.
type WebPage struct {
	URL      string
	Title    string
	Markdown string
}

// Upload returns the page as a Markdown upload named after its title.
func (p *WebPage) Upload() *Upload {
	return &Upload{
		Filename: PageFilename(p.URL, p.Title),
		MIMEType: "text/markdown",
		Content:  []byte(p.Markdown),
	}
}

// LoadWebPage fetches a URL, strips boilerplate and converts the main
// content to Markdown.
func LoadWebPage(ctx context.Context, fetcher Fetcher, extractor Extractor, converter Converter, rawURL string) (*WebPage, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, Errorf(EINVALID, "invalid URL %q", rawURL)
	}

	html, err := fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, WrapError(EREMOTE, "fetch", err)
	}

	extracted, err := extractor.Extract(html)
	if err != nil {
		return nil, WrapError(EINVALID, "extract", err)
	}
	if strings.TrimSpace(extracted.ContentHTML) == "" {
		return nil, Errorf(EINVALID, "no readable content at %s", u)
	}

	markdown, err := converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, WrapError(EINVALID, "convert", err)
	}

	return &WebPage{
		URL:      u.String(),
		Title:    extracted.Title,
		Markdown: markdown,
	}, nil
}

// PageFilename derives a Markdown filename from a page title, falling back
// to the last URL path segment and then the host.
func PageFilename(rawURL, title string) string {
	name := slugify(title)
	if name == "" {
		if u, err := url.Parse(rawURL); err == nil {
			name = slugify(strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path)))
			if name == "" {
				name = slugify(u.Hostname())
			}
		}
	}
	if name == "" {
		name = "page"
	}
	return name + ".md"
}

// slugify lowercases s and joins runs of letters and digits with hyphens.
func slugify(s string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if !prevHyphen && sb.Len() > 0 {
			sb.WriteRune('-')
			prevHyphen = true
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}

// PublicAddr reports whether addr is routable on the public internet.
// Loopback, private, link-local, multicast and unspecified addresses are not.
func PublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsInterfaceLocalMulticast() &&
		!addr.IsMulticast() &&
		!addr.IsUnspecified()
}

// CheckPublicHost resolves the host of rawURL and returns EINVALID unless
// every address it resolves to is public.
func CheckPublicHost(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return Errorf(EINVALID, "invalid URL %q", rawURL)
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", u.Hostname())
	if err != nil {
		return WrapError(EINVALID, "resolve "+u.Hostname(), err)
	}
	for _, addr := range addrs {
		if !PublicAddr(addr) {
			return Errorf(EINVALID, "refusing to fetch from non-public address %s", addr.Unmap())
		}
	}
	return nil
}
