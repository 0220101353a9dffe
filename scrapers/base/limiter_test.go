package base

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter_NilNeverWaits(t *testing.T) {
	var l *HostLimiter
	assert.NoError(t, l.Wait(context.Background(), "https://shop.example/p/1"))
}

func TestHostLimiter_PerHostBuckets(t *testing.T) {
	l := NewHostLimiter(0.001, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Wait(ctx, "https://shop.example/p/1"))
	// Different host has its own bucket
	require.NoError(t, l.Wait(ctx, "https://other.example/p/1"))

	// Same host is out of tokens and the next one is far beyond the deadline
	assert.Error(t, l.Wait(ctx, "https://SHOP.example/p/2"))
}

func TestHostLimiter_BoundedHosts(t *testing.T) {
	l := NewHostLimiter(1, 1)
	l.MaxHosts = 3
	clock := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return clock }

	for _, host := range []string{"a.example", "b.example", "c.example"} {
		l.forHost(host)
		clock = clock.Add(time.Second)
	}
	require.Equal(t, 3, l.size())

	// All buckets are recent, so the least recently used one goes
	l.forHost("a.example")
	clock = clock.Add(time.Second)
	l.forHost("d.example")
	assert.Equal(t, 3, l.size())
	assert.NotContains(t, l.limiters, "b.example")
	assert.Contains(t, l.limiters, "a.example")

	// Idle buckets are full again and are all dropped
	clock = clock.Add(2 * time.Minute)
	l.forHost("e.example")
	assert.Equal(t, 1, l.size())
	assert.Contains(t, l.limiters, "e.example")
}

func TestHostLimiter_ManyHostsStayBounded(t *testing.T) {
	l := NewHostLimiter(1, 1)
	l.MaxHosts = 16
	for i := 0; i < 1000; i++ {
		l.forHost(fmt.Sprintf("h%d.example", i))
	}
	assert.LessOrEqual(t, l.size(), 16)
}

func TestHostKey(t *testing.T) {
	assert.Equal(t, "shop.example", hostKey("https://Shop.Example:8443/p/1"))
	assert.Equal(t, "not a url", hostKey("not a url"))
}

func TestPortManager(t *testing.T) {
	pm := NewPortManager(9500, 2)

	p1, err := pm.GetPort()
	require.NoError(t, err)
	p2, err := pm.GetPort()
	require.NoError(t, err)
	assert.Equal(t, 9500, p1)
	assert.Equal(t, 9501, p2)

	_, err = pm.GetPort()
	assert.Error(t, err)

	pm.ReleasePort(p1)
	p3, err := pm.GetPort()
	require.NoError(t, err)
	assert.Equal(t, 9500, p3)
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer("none", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = NewRenderer("chromedp", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "chromedp", r.Name())

	r, err = NewRenderer("selenium", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "selenium", r.Name())

	_, err = NewRenderer("phantomjs", time.Minute)
	assert.Error(t, err)
}
