package base

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	html  string
	err   error
	calls int
}

func (f *fakeRenderer) Name() string { return "fake" }

func (f *fakeRenderer) Render(ctx context.Context, url string) (string, error) {
	f.calls++
	return f.html, f.err
}

func TestFetchHTTP_Success(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		w.Write([]byte(`<html><head><title>Shirt</title></head><body>ok</body></html>`))
	}))
	defer srv.Close()

	b := NewBaseScraper(5*time.Second, nil, nil)
	page, err := b.FetchHTTP(context.Background(), srv.URL+"/p/1")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/p/1", page.URL)
	assert.Equal(t, http.StatusOK, page.Status)
	assert.Contains(t, page.HTML, "<title>Shirt</title>")
	assert.Contains(t, userAgent, "Mozilla/5.0")
}

func TestFetchHTTP_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/product/42", http.StatusFound)
	})
	mux.HandleFunc("/product/42", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := NewBaseScraper(5*time.Second, nil, nil)
	page, err := b.FetchHTTP(context.Background(), srv.URL+"/short")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/product/42", page.URL)
}

func TestFetchHTTP_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := NewBaseScraper(5*time.Second, nil, nil)
	_, err := b.FetchHTTP(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestFetch_RendererOnlyOnFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`<html><head><title>Shirt</title></head></html>`))
	}))
	defer srv.Close()

	renderer := &fakeRenderer{html: "<html>rendered</html>"}
	b := NewBaseScraper(5*time.Second, nil, renderer)

	page, err := b.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "Shirt")
	assert.Equal(t, 0, renderer.calls)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetch_BlockedPageUsesRenderer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Robot Check</title></head></html>`))
	}))
	defer srv.Close()

	renderer := &fakeRenderer{html: "<html>rendered</html>"}
	b := NewBaseScraper(5*time.Second, nil, renderer)

	page, err := b.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", page.HTML)
	assert.Equal(t, 1, renderer.calls)
}

func TestFetch_RendererFailureKeepsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	renderer := &fakeRenderer{err: errors.New("no chrome")}
	b := NewBaseScraper(5*time.Second, nil, renderer)

	_, err := b.Fetch(context.Background(), srv.URL)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	assert.Equal(t, 1, renderer.calls)
}

func TestFetch_BlockedPageWithoutRenderer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Enter the captcha</title></head></html>`))
	}))
	defer srv.Close()

	b := NewBaseScraper(5*time.Second, nil, nil)
	page, err := b.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "captcha")
}

func TestLooksBlocked(t *testing.T) {
	assert.True(t, looksBlocked(`<title>Amazon.in: Robot Check</title>`))
	assert.True(t, looksBlocked(`<title>Access Denied</title>`))
	assert.False(t, looksBlocked(`<title>Men's Cotton Shirt</title>`))
	assert.False(t, looksBlocked(``))
}
