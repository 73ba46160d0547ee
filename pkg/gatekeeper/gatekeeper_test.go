package gatekeeper_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leasekit/pkg/gatekeeper"
	"github.com/dmitrymomot/leasekit/pkg/logger"
	"github.com/dmitrymomot/leasekit/pkg/ratelimiter"
	"github.com/dmitrymomot/leasekit/pkg/useragent"
)

const (
	browserUA   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	googlebotUA = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, int, time.Duration) (int, time.Time, bool, error) {
	return 0, time.Time{}, false, errors.New("connection refused")
}

func (failingStore) Reset(context.Context, string) error { return nil }

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "private")
	_, _ = w.Write([]byte("ok"))
})

func newGatekeeper(t *testing.T, store ratelimiter.Store, opts ...gatekeeper.Option) *gatekeeper.Gatekeeper {
	t.Helper()

	cfg := gatekeeper.DefaultConfig()
	cfg.SiteDomain = "example.com"

	gk, err := gatekeeper.NewFromConfig(cfg, store, append([]gatekeeper.Option{gatekeeper.WithLogger(logger.Noop())}, opts...)...)
	require.NoError(t, err)
	return gk
}

func newMemoryStore(t *testing.T, clock *fakeClock) *ratelimiter.MemoryStore {
	t.Helper()

	var opts []ratelimiter.MemoryStoreOption
	if clock != nil {
		opts = append(opts, ratelimiter.WithClock(clock.Now))
	}
	store := ratelimiter.NewMemoryStore(opts...)
	t.Cleanup(store.Close)
	return store
}

func request(path, ua, ip string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if ua != "" {
		r.Header.Set("User-Agent", ua)
	}
	r.RemoteAddr = ip + ":52100"
	return r
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestGatekeeper_Blocking(t *testing.T) {
	t.Parallel()

	h := newGatekeeper(t, newMemoryStore(t, nil)).Middleware(okHandler)

	t.Run("deny-listed user agent gets 403 with noindex", func(t *testing.T) {
		w := serve(h, request("/", "python-requests/2.31", "198.51.100.1"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Header().Get(gatekeeper.HeaderRobotsTag), "noindex")
		assert.Equal(t, gatekeeper.RobotsNoIndex, w.Header().Get(gatekeeper.HeaderRobotsTag))
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Empty(t, w.Header().Get(gatekeeper.HeaderFrameOptions))
	})

	t.Run("signature match gets 403", func(t *testing.T) {
		w := serve(h, request("/", "Mozilla/5.0 (X11; Linux x86_64) HeadlessChrome/120.0.0.0", "198.51.100.2"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing user agent is not blocked", func(t *testing.T) {
		w := serve(h, request("/", "", "198.51.100.3"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGatekeeper_Crawler(t *testing.T) {
	t.Parallel()

	gk := newGatekeeper(t, newMemoryStore(t, nil))
	h := gk.Middleware(okHandler)

	for i := range 150 {
		w := serve(h, request("/api/listings", googlebotUA+" python-requests", "66.249.66.1"))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
}

func TestGatekeeper_RateLimit(t *testing.T) {
	t.Parallel()

	t.Run("101st request gets 429 with Retry-After 900", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
		h := newGatekeeper(t, newMemoryStore(t, clock)).Middleware(okHandler)

		for i := range 100 {
			w := serve(h, request("/", browserUA, "203.0.113.9"))
			require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		}

		w := serve(h, request("/", browserUA, "203.0.113.9"))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "900", w.Header().Get(gatekeeper.HeaderRetryAfter))
		assert.Equal(t, "100", w.Header().Get(gatekeeper.HeaderRateLimitLimit))
		assert.Equal(t, "0", w.Header().Get(gatekeeper.HeaderRateLimitRemaining))
		assert.Equal(t, strconv.FormatInt(clock.Now().Add(15*time.Minute).Unix(), 10), w.Header().Get(gatekeeper.HeaderRateLimitReset))

		other := serve(h, request("/", browserUA, "203.0.113.10"))
		assert.Equal(t, http.StatusOK, other.Code)
	})

	t.Run("window reset lets the same IP through again", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
		h := newGatekeeper(t, newMemoryStore(t, clock)).Middleware(okHandler)

		for range 100 {
			serve(h, request("/", browserUA, "203.0.113.9"))
		}
		require.Equal(t, http.StatusTooManyRequests, serve(h, request("/", browserUA, "203.0.113.9")).Code)

		clock.Advance(15 * time.Minute)

		assert.Equal(t, http.StatusOK, serve(h, request("/", browserUA, "203.0.113.9")).Code)
	})

	t.Run("store failure fails open", func(t *testing.T) {
		h := newGatekeeper(t, failingStore{}).Middleware(okHandler)

		w := serve(h, request("/", browserUA, "203.0.113.9"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("requests without an address share one key", func(t *testing.T) {
		cfg := gatekeeper.DefaultConfig()
		cfg.RateLimit = 2
		gk, err := gatekeeper.NewFromConfig(cfg, newMemoryStore(t, nil), gatekeeper.WithLogger(logger.Noop()))
		require.NoError(t, err)
		h := gk.Middleware(okHandler)

		for i := range 3 {
			r := request("/", browserUA, "")
			r.RemoteAddr = fmt.Sprintf("garbage-%d", i)
			w := serve(h, r)
			if i < 2 {
				assert.Equal(t, http.StatusOK, w.Code)
			} else {
				assert.Equal(t, http.StatusTooManyRequests, w.Code)
			}
		}
	})
}

func TestGatekeeper_ProtectedPaths(t *testing.T) {
	t.Parallel()

	h := newGatekeeper(t, newMemoryStore(t, nil)).Middleware(okHandler)

	tests := []struct {
		name    string
		path    string
		referer string
		origin  string
		want    int
	}{
		{"api without referer", "/api/whatever", "", "", http.StatusForbidden},
		{"admin without referer", "/admin", "", "", http.StatusForbidden},
		{"next assets without referer", "/_next/static/chunk.js", "", "", http.StatusForbidden},
		{"dashboard with foreign referer", "/dashboard", "https://evil.example.net/", "", http.StatusForbidden},
		{"lookalike domain", "/api/x", "https://notexample.com/", "", http.StatusForbidden},
		{"api with site referer", "/api/whatever", "https://example.com/listings", "", http.StatusOK},
		{"api with subdomain referer", "/api/whatever", "https://www.example.com/", "", http.StatusOK},
		{"api with site origin", "/api/whatever", "", "https://example.com", http.StatusOK},
		{"unprotected path", "/listings", "", "", http.StatusOK},
		{"prefix is segment aware", "/apiary", "", "", http.StatusOK},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := request(tt.path, browserUA, fmt.Sprintf("192.0.2.%d", i+1))
			if tt.referer != "" {
				r.Header.Set("Referer", tt.referer)
			}
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, serve(h, r).Code)
		})
	}

	t.Run("crawler skips the referer check", func(t *testing.T) {
		w := serve(h, request("/api/sitemap", googlebotUA, "66.249.66.2"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGatekeeper_Decoration(t *testing.T) {
	t.Parallel()

	h := newGatekeeper(t, newMemoryStore(t, nil)).Middleware(okHandler)
	w := serve(h, request("/", browserUA, "192.0.2.200"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	want := map[string]string{
		"X-Frame-Options":           "DENY",
		"X-Content-Type-Options":    "nosniff",
		"X-XSS-Protection":          "1; mode=block",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
		"Permissions-Policy":        "camera=(), microphone=(), geolocation=(), payment=()",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains; preload",
		"X-Robots-Tag":              "index, follow",
		"Cache-Control":             "public, max-age=0, must-revalidate",
	}
	for k, v := range want {
		assert.Equal(t, v, w.Header().Get(k), k)
	}

	t.Run("handler that writes nothing still gets headers", func(t *testing.T) {
		empty := newGatekeeper(t, newMemoryStore(t, nil), gatekeeper.WithCacheControl("no-store")).
			Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		w := serve(empty, request("/", browserUA, "192.0.2.201"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	})
}

func TestGatekeeper_Context(t *testing.T) {
	t.Parallel()

	var (
		got useragent.Verdict
		ok  bool
	)
	h := newGatekeeper(t, newMemoryStore(t, nil)).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = gatekeeper.VerdictFromContext(r.Context())
	}))

	serve(h, request("/", googlebotUA, "66.249.66.3"))

	require.True(t, ok)
	assert.Equal(t, useragent.ClassAllowCrawler, got.Class)
	assert.Equal(t, "Googlebot", got.BotName)
}

func TestNew(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(t, nil)
	limiter, err := ratelimiter.New(store, ratelimiter.Config{Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	_, err = gatekeeper.New(nil, limiter)
	assert.ErrorIs(t, err, gatekeeper.ErrMissingClassifier)

	_, err = gatekeeper.New(useragent.MustNew(useragent.DefaultRules()), nil)
	assert.ErrorIs(t, err, gatekeeper.ErrMissingLimiter)

	cfg := gatekeeper.DefaultConfig()
	cfg.RateLimit = 0
	_, err = gatekeeper.NewFromConfig(cfg, store)
	assert.ErrorIs(t, err, gatekeeper.ErrInvalidConfig)
}
