package scrapers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/virtual-tryon/scrapers/base"
)

type fakeFetcher struct {
	page  *base.Page
	err   error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*base.Page, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

type memoryCache struct {
	data   map[string]string
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }

func TestResolve_EmptyInput(t *testing.T) {
	f := &fakeFetcher{}
	r := NewResolver(f, nil, time.Hour)

	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.calls)
}

func TestResolve_DirectImageSkipsFetch(t *testing.T) {
	f := &fakeFetcher{}
	r := NewResolver(f, nil, time.Hour)

	for _, input := range []string{
		"https://cdn.example/x.png",
		"https://cdn.example/x.JPG?w=400",
		"https://cdn.example/x.webp",
	} {
		got, err := r.Resolve(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, input, got)
	}
	assert.Empty(t, f.calls)
}

func TestResolve_PageURLFetchesOnce(t *testing.T) {
	f := &fakeFetcher{page: &base.Page{
		URL:  "https://shop.example/product/42",
		HTML: `<meta property="og:image" content="/img/42.jpg">`,
	}}
	r := NewResolver(f, nil, time.Hour)

	got, err := r.Resolve(context.Background(), "https://shop.example/product/42")
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example/img/42.jpg", got)
	assert.Equal(t, []string{"https://shop.example/product/42"}, f.calls)
}

func TestResolve_NormalizesAgainstFinalURL(t *testing.T) {
	f := &fakeFetcher{page: &base.Page{
		URL:  "https://www.amazon.in/dp/B0TEST",
		HTML: `<img id="landingImage" src="//m.media-amazon.com/images/I/main.jpg">`,
	}}
	r := NewResolver(f, nil, time.Hour)

	got, err := r.Resolve(context.Background(), "https://amzn.in/d/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://m.media-amazon.com/images/I/main.jpg", got)
}

func TestResolve_FetchFailure(t *testing.T) {
	f := &fakeFetcher{err: &base.StatusError{URL: "https://shop.example/p", Code: 503}}
	r := NewResolver(f, nil, time.Hour)

	_, err := r.Resolve(context.Background(), "https://shop.example/p")
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "503")
}

func TestResolve_NoImage(t *testing.T) {
	f := &fakeFetcher{page: &base.Page{URL: "https://shop.example/p", HTML: `<p>nothing here</p>`}}
	r := NewResolver(f, nil, time.Hour)

	_, err := r.Resolve(context.Background(), "https://shop.example/p")
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestScrape_CacheHitSkipsFetch(t *testing.T) {
	f := &fakeFetcher{page: &base.Page{
		URL:  "https://shop.example/p/1",
		HTML: `<meta property="og:image" content="https://cdn.shop.example/1.jpg">`,
	}}
	c := newMemoryCache()
	r := NewResolver(f, c, time.Hour)

	first, err := r.Scrape(context.Background(), "https://shop.example/p/1")
	require.NoError(t, err)
	second, err := r.Scrape(context.Background(), "https://shop.example/p/1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, f.calls, 1)
}

func TestScrape_CacheErrorIsIgnored(t *testing.T) {
	f := &fakeFetcher{page: &base.Page{
		URL:  "https://shop.example/p/1",
		HTML: `<meta property="og:image" content="https://cdn.shop.example/1.jpg">`,
	}}
	c := newMemoryCache()
	c.getErr = errors.New("redis down")
	r := NewResolver(f, c, time.Hour)

	got, err := r.Scrape(context.Background(), "https://shop.example/p/1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.shop.example/1.jpg", got)
	assert.Len(t, f.calls, 1)
}
