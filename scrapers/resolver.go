package scrapers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raushankrgupta/virtual-tryon/cache"
	"github.com/raushankrgupta/virtual-tryon/scrapers/base"
	"github.com/raushankrgupta/virtual-tryon/utils"
)

var (
	ErrInvalidInput     = errors.New("url is required")
	ErrFetchFailed      = errors.New("failed to fetch page")
	ErrExtractionFailed = errors.New("could not find product image on this page")
)

// Resolver turns whatever the user pasted into an absolute garment image URL
type Resolver struct {
	fetcher base.Fetcher
	cache   cache.Cache
	ttl     time.Duration
}

// NewResolver creates a Resolver. c may be nil to disable caching.
func NewResolver(fetcher base.Fetcher, c cache.Cache, ttl time.Duration) *Resolver {
	return &Resolver{fetcher: fetcher, cache: c, ttl: ttl}
}

// Resolve returns direct image links untouched and scrapes everything else
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrInvalidInput
	}
	if utils.IsDirectImageURL(input) {
		return input, nil
	}
	return r.Scrape(ctx, input)
}

// Scrape fetches a product page once and locates its main image
func (r *Resolver) Scrape(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return "", ErrInvalidInput
	}

	key := cache.ScrapeResultKey(pageURL)
	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("scrape cache read failed", "url", pageURL, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	page, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	candidate, ok := Locate(page.HTML, page.URL)
	if !ok {
		return "", ErrExtractionFailed
	}
	imageURL := utils.NormalizeImageURL(candidate.URL, page.URL)
	slog.Debug("product image located", "url", pageURL, "strategy", candidate.Strategy, "image", imageURL)

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, imageURL, r.ttl); err != nil {
			slog.Warn("scrape cache write failed", "url", pageURL, "error", err)
		}
	}
	return imageURL, nil
}
