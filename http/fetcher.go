package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"github.com/fwojciec/locrag"
)

// DefaultFetchTimeout bounds a single page download.
const DefaultFetchTimeout = 15 * time.Second

// DefaultMaxPageBytes caps the size of a fetched page.
const DefaultMaxPageBytes = 10 << 20

// UserAgent identifies locrag to the sites it fetches.
const UserAgent = "locrag/1.0 (+https://github.com/fwojciec/locrag)"

// Ensure Fetcher implements locrag.Fetcher at compile time.
var _ locrag.Fetcher = (*Fetcher)(nil)

// Fetcher downloads static HTML pages. It does not run JavaScript; use
// rod.Fetcher for pages rendered client side.
//
// Unless private networks are allowed, connections to loopback, private,
// link-local and unspecified addresses are refused after DNS resolution, so
// a URL submitted through the web interface cannot reach the host's own
// network. Redirects are checked the same way.
type Fetcher struct {
	client       *http.Client
	maxBytes     int64
	allowPrivate bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithMaxPageBytes sets the largest page accepted.
func WithMaxPageBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// WithPrivateNetworks allows fetching from loopback and private addresses.
func WithPrivateNetworks(allow bool) FetcherOption {
	return func(f *Fetcher) {
		f.allowPrivate = allow
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultFetchTimeout},
		maxBytes: DefaultMaxPageBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !f.allowPrivate {
		// A proxy would resolve the target itself and bypass the check.
		dialer.Control = refusePrivate
		transport.Proxy = nil
	}
	transport.DialContext = dialer.DialContext
	f.client.Transport = transport
	return f
}

// refusePrivate rejects connections to addresses outside the public
// internet.
func refusePrivate(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return locrag.Errorf(locrag.EINVALID, "refusing to connect to %s", address)
	}
	if !locrag.PublicAddr(ap.Addr()) {
		return locrag.Errorf(locrag.EINVALID, "refusing to fetch from non-public address %s", ap.Addr().Unmap())
	}
	return nil
}

// Fetch returns the HTML served at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", locrag.Errorf(locrag.EINVALID, "invalid URL %q", url)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return "", locrag.Errorf(locrag.EINVALID, "HTTP %d for %s", resp.StatusCode, url)
	default:
		return "", locrag.Errorf(locrag.EREMOTE, "HTTP %d for %s", resp.StatusCode, url)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ := mime.ParseMediaType(ct)
		if mediaType != "text/html" && mediaType != "application/xhtml+xml" {
			return "", locrag.Errorf(locrag.EINVALID, "%s is %s, not an HTML page", url, mediaType)
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", locrag.Errorf(locrag.EINVALID, "page at %s is larger than %d bytes", url, f.maxBytes)
	}
	return string(body), nil
}

// Close is a no-op; http.Client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}
