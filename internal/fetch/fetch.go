// Package fetch retrieves HTML pages over HTTP with the defaults a one-shot
// extractor needs: bounded retry on transient failures, a redirect cap, a
// content-type gate, and conditional revalidation against an on-disk cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperifyio/gomicrodata/internal/cache"
)

// Page is one fetched document snapshot.
type Page struct {
	URL         string
	Body        []byte
	ContentType string
}

// Client wraps http.Client. The zero value works; fields tune behavior.
type Client struct {
	// HTTPClient overrides the underlying client. A redirect policy is
	// attached to a clone, never to the caller's client.
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following. Zero means default (5).
	RedirectMaxHops int
	// Cache, when set, enables conditional GETs and serves 304s from disk.
	Cache *cache.PageCache
}

// statusError marks HTTP status failures so retry logic can tell server
// errors from permanent ones.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.code)
}

// Get fetches rawURL, retrying transient failures up to MaxAttempts times.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return Page{}, fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}

	var etag, lastMod string
	if c.Cache != nil {
		if meta, err := c.Cache.LoadMeta(rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(time.Duration(i) * 200 * time.Millisecond)
		}
		page, status, respETag, respLastMod, err := c.fetchOnce(ctx, rawURL, etag, lastMod)
		if err != nil {
			lastErr = err
			if !isTransient(err) {
				break
			}
			continue
		}
		if status == http.StatusNotModified && c.Cache != nil {
			body, err := c.Cache.LoadBody(rawURL)
			if err == nil {
				page.Body = body
				return page, nil
			}
			// Cached body went missing; refetch without validators.
			etag, lastMod = "", ""
			lastErr = fmt.Errorf("stale cache entry for %s", rawURL)
			continue
		}
		if c.Cache != nil {
			_ = c.Cache.Save(rawURL, page.ContentType, respETag, respLastMod, page.Body)
		}
		return page, nil
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return Page{}, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, rawURL, etag, lastMod string) (Page, int, string, string, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, 0, "", "", fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Page{}, 0, "", "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return Page{URL: rawURL, ContentType: resp.Header.Get("Content-Type")},
			resp.StatusCode, "", "", nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Page{}, resp.StatusCode, "", "", &statusError{code: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContentType(contentType) {
		return Page{}, resp.StatusCode, "", "", fmt.Errorf("unsupported content type: %s", contentType)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, resp.StatusCode, "", "", fmt.Errorf("read body: %w", err)
	}
	return Page{URL: rawURL, Body: body, ContentType: contentType},
		resp.StatusCode, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		clone := *c.HTTPClient
		clone.CheckRedirect = c.checkRedirect
		return &clone
	}
	return &http.Client{CheckRedirect: c.checkRedirect}
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	if len(via) >= max {
		return errors.New("too many redirects")
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return errors.New("redirect to unsupported scheme")
	}
	return nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *statusError
	return errors.As(err, &se) && se.code >= 500 && se.code <= 599
}

func isHTTPScheme(u *url.URL) bool {
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// Charset returns the charset parameter of a Content-Type header, or "" when
// none is declared. The result feeds the document decoder as the assumed
// encoding.
func Charset(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
