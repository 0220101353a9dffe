package base

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxPageBytes = 10 << 20

// Page is a fetched retailer page. URL is the final address after redirects.
type Page struct {
	URL    string
	HTML   string
	Status int
}

// Fetcher retrieves the markup of a product page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// StatusError reports a page that answered with a non-2xx status
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code error: %d %s", e.Code, http.StatusText(e.Code))
}

// BaseScraper handles common scraping logic
type BaseScraper struct {
	Client   *http.Client
	Limiter  *HostLimiter
	Renderer Renderer
}

// NewBaseScraper creates a new BaseScraper instance. limiter and renderer may be nil.
func NewBaseScraper(timeout time.Duration, limiter *HostLimiter, renderer Renderer) *BaseScraper {
	return &BaseScraper{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ForceAttemptHTTP2:     false,
				TLSNextProto:          make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		Limiter:  limiter,
		Renderer: renderer,
	}
}

// Fetch downloads the page with a plain HTTP request. When a renderer is
// configured it is tried only if that request failed or hit a bot check.
func (b *BaseScraper) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := b.Limiter.Wait(ctx, url); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	page, err := b.FetchHTTP(ctx, url)
	if err == nil && !looksBlocked(page.HTML) {
		return page, nil
	}
	if b.Renderer == nil {
		return page, err
	}

	if err != nil {
		slog.Warn("HTTP fetch failed, trying renderer", "url", url, "renderer", b.Renderer.Name(), "error", err)
	} else {
		slog.Warn("HTTP fetch yielded a bot check page, trying renderer", "url", url, "renderer", b.Renderer.Name())
	}

	html, rerr := b.Renderer.Render(ctx, url)
	if rerr != nil {
		slog.Warn("renderer failed", "url", url, "renderer", b.Renderer.Name(), "error", rerr)
		return page, err
	}
	return &Page{URL: url, HTML: html, Status: http.StatusOK}, nil
}

// FetchHTTP fetches the URL with browser-like headers
func (b *BaseScraper) FetchHTTP(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// Common headers to mimic a real browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Ch-Ua", `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`)
	req.Header.Set("Sec-Ch-Ua-Mobile", "?0")
	req.Header.Set("Sec-Ch-Ua-Platform", `"macOS"`)
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-User", "?1")

	res, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: res.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Page{
		URL:    res.Request.URL.String(),
		HTML:   string(body),
		Status: res.StatusCode,
	}, nil
}

// looksBlocked spots captcha and robot-check interstitials
func looksBlocked(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	title := strings.ToLower(strings.TrimSpace(doc.Find("title").Text()))
	return strings.Contains(title, "robot check") ||
		strings.Contains(title, "captcha") ||
		strings.Contains(title, "access denied")
}
