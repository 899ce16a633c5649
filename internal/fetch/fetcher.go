package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/docscrape/docscrape/internal/config"
)

// ErrUnavailable indicates a page could not be retrieved. Network
// failures, timeouts, and non-2xx status codes all wrap this sentinel so
// the crawl controller can treat any of them as a skippable page.
var ErrUnavailable = errors.New("page unavailable")

// Fetcher retrieves pages over HTTP and parses them into goquery
// documents. It is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the number of response body bytes read per page.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithClient replaces the underlying HTTP client. Intended for tests and
// callers that need custom transports.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// New creates a Fetcher with default timeout, User-Agent, and body-size
// limit, then applies the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: config.DefaultTimeout},
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxBodySize <= 0 {
		f.maxBodySize = config.DefaultMaxBodySize
	}
	return f
}

// Fetch retrieves url and parses the response body as HTML. The body is
// decoded to UTF-8 based on the Content-Type header and document
// metadata, so legacy-encoded pages parse correctly.
//
// All retrieval failures wrap ErrUnavailable; the caller decides whether
// an unavailable page is fatal.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", url, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %w: status %d", url, ErrUnavailable, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, f.maxBodySize)

	reader, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: decode charset: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: parse html: %w", url, err)
	}

	return doc, nil
}
