// Package rod renders JavaScript pages in headless Chrome for URL ingestion.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/locrag"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRenderTimeout bounds navigation and rendering of a single page.
const DefaultRenderTimeout = 30 * time.Second

// Ensure Fetcher implements locrag.Fetcher at compile time.
var _ locrag.Fetcher = (*Fetcher)(nil)

// Fetcher returns the rendered DOM of pages using headless Chrome. The
// browser is launched on the first Fetch and kept until Close.
//
// Fetcher is safe for concurrent use.
type Fetcher struct {
	timeout      time.Duration
	allowPrivate bool

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRenderTimeout sets how long a page may take to load.
func WithRenderTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithPrivateNetworks allows rendering pages served from loopback and
// private addresses. Otherwise the page host is resolved before navigation
// and refused unless every address is public.
func WithPrivateNetworks(allow bool) Option {
	return func(f *Fetcher) {
		f.allowPrivate = allow
	}
}

// NewFetcher creates a Fetcher. No browser is started until it is needed.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{timeout: DefaultRenderTimeout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch navigates to url, waits for the page to load and returns its HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !f.allowPrivate {
		if err := locrag.CheckPublicHost(ctx, url); err != nil {
			return "", err
		}
	}

	browser, err := f.ensureBrowser()
	if err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", locrag.WrapError(locrag.EREMOTE, "render", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.timeout)
	if err := page.Navigate(url); err != nil {
		return "", locrag.WrapError(locrag.EREMOTE, "render", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", locrag.WrapError(locrag.EREMOTE, "render", err)
	}
	html, err := page.HTML()
	if err != nil {
		return "", locrag.WrapError(locrag.EREMOTE, "render", err)
	}
	return html, nil
}

// Close shuts down the browser. Close is safe to call more than once.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// Running reports whether a browser process has been started.
func (f *Fetcher) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.browser != nil
}

func (f *Fetcher) ensureBrowser() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, locrag.Errorf(locrag.EINTERNAL, "fetcher closed")
	}
	if f.browser != nil {
		return f.browser, nil
	}

	l := launcher.New().
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, locrag.WrapError(locrag.ECONFIG, "launch browser", fmt.Errorf("chrome not available: %w", err))
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, locrag.WrapError(locrag.ECONFIG, "launch browser", err)
	}

	f.browser = browser
	f.launcher = l
	return browser, nil
}
